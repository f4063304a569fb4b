package jira

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ChecksumFields are the fields reported with a checksum by FetchIssue.
var ChecksumFields = []string{"summary", "description", "status", "assignee", "priority", "labels", "components"}

// ConflictError is returned when fields changed between read and update.
type ConflictError struct {
	Fields []string
}

func (e *ConflictError) Error() string {
	return "conflict: fields modified since read: " + strings.Join(e.Fields, ", ")
}

// Checksum returns the first 8 bytes of the SHA-256 of value, hex encoded.
func Checksum(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

// CanonicalValue extracts the string a field's checksum is computed from.
// Fields without a canonical form, or absent fields, yield "".
func CanonicalValue(field string, fields map[string]any) string {
	switch field {
	case "summary":
		return str(fields, "summary")
	case "description":
		if v := obj(fields, "description"); v != nil {
			data, _ := json.Marshal(v)
			return string(data)
		}
	case "status", "priority":
		return nameOf(fields, field)
	case "assignee":
		return str(obj(fields, "assignee"), "accountId")
	case "labels":
		raw, _ := fields["labels"].([]any)
		labels := make([]string, 0, len(raw))
		for _, l := range raw {
			if s, ok := l.(string); ok {
				labels = append(labels, s)
			}
		}
		sort.Strings(labels)
		return strings.Join(labels, ",")
	case "components":
		var names []string
		for _, c := range list(fields, "components") {
			if name := str(c, "name"); name != "" {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		return strings.Join(names, ",")
	}
	return ""
}

// Checksums computes the checksum of each named field.
func Checksums(fields map[string]any, names []string) map[string]string {
	checksums := make(map[string]string, len(names))
	for _, name := range names {
		checksums[name] = Checksum(CanonicalValue(name, fields))
	}
	return checksums
}

// verifyChecksums requires a checksum for every field in update and checks
// each against the current state of the issue.
func verifyChecksums(update map[string]any, current map[string]any, checksums map[string]string) error {
	var missing, mismatched []string
	for field := range update {
		expected, ok := checksums[field]
		if !ok {
			missing = append(missing, field)
			continue
		}
		if Checksum(CanonicalValue(field, current)) != expected {
			mismatched = append(mismatched, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errors.Errorf("missing checksums for fields: %s", strings.Join(missing, ", "))
	}
	if len(mismatched) > 0 {
		sort.Strings(mismatched)
		return &ConflictError{Fields: mismatched}
	}
	return nil
}
