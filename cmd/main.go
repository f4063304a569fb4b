package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"jira-mcp/internal/client"
	"jira-mcp/internal/config"
	"jira-mcp/internal/handler"
	"jira-mcp/internal/logging"
	"jira-mcp/internal/registry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		log.WithError(err).Error("jira-mcp failed")
		stop()
		os.Exit(1)
	}
}

// app carries state shared by the subcommands.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
}

func rootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "jira-mcp",
		Short:         "Expose Jira Cloud as MCP tools",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Path to config.yaml (default: ./config.yaml, $HOME/.jira-mcp, /etc/jira-mcp)")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().String("log-format", "", "Log format: text or json")
	mustBind(a.v, "logging.level", cmd.PersistentFlags().Lookup("log-level"))
	mustBind(a.v, "logging.format", cmd.PersistentFlags().Lookup("log-format"))

	cmd.AddCommand(
		stdioCmd(a),
		serveCmd(a),
		convertCmd(),
	)
	return cmd
}

func (a *app) load() error {
	if err := config.LoadEnvFile(config.DefaultEnvFile()); err != nil {
		return err
	}
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	if err := logging.Configure(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) newHandler() (*handler.Handler, error) {
	resolver, err := registry.New(a.cfg.Registry, a.cfg.Atlassian)
	if err != nil {
		return nil, errors.Wrap(err, "credential registry")
	}
	pool, err := client.NewPool(a.cfg.Jira.ClientCacheSize, client.OptionsFromConfig(a.cfg.Jira))
	if err != nil {
		return nil, err
	}
	log.WithField("registry", a.cfg.Registry.Mode).Info("credential registry ready")
	return handler.New(resolver, pool, version), nil
}
