package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "Text_Info", level: "info", format: "text"},
		{name: "JSON_Debug", level: "debug", format: "json"},
		{name: "Default_Format", level: "warn", format: ""},
		{name: "Bad_Level", level: "loud", format: "text", wantErr: true},
		{name: "Bad_Format", level: "info", format: "xml", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Apply(log.New(), tt.level, tt.format, &bytes.Buffer{})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestContextFields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := log.New()
	require.NoError(t, Apply(logger, "info", "json", &buf))

	ctx := WithLogger(context.Background(), log.NewEntry(logger))
	ctx, _ = WithFields(ctx, log.Fields{FieldRequestID: "req-1"})
	_, entry := WithFields(ctx, log.Fields{FieldTenant: "acme"})
	entry.Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-1", line[FieldRequestID])
	assert.Equal(t, "acme", line[FieldTenant])
	assert.Equal(t, "hello", line["msg"])
}

func TestFromContext_Default(t *testing.T) {
	t.Parallel()
	entry := FromContext(context.Background())
	require.NotNil(t, entry)
	assert.Equal(t, log.StandardLogger(), entry.Logger)
}

func TestExtractStack(t *testing.T) {
	t.Parallel()
	assert.Nil(t, ExtractStack(context.Canceled))

	wrapped := errors.Wrap(errors.New("root"), "outer")
	assert.NotNil(t, ExtractStack(wrapped))

	entry := WithStacktrace(log.NewEntry(log.New()), wrapped)
	assert.Contains(t, entry.Data, Stacktrace)
	assert.Contains(t, entry.Data, log.ErrorKey)
}
