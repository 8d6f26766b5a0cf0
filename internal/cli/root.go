// Package cli wires configuration, the metadata store, storage adapters and
// the lifecycle manager into cobra commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"docserver/internal/config"
	"docserver/internal/logging"
)

// VersionInfo is stamped into the binary at build time.
type VersionInfo struct {
	Version string
	Commit  string
}

// NewRootCommand returns the docserver command tree.
func NewRootCommand(info VersionInfo) *cobra.Command {
	env := &environment{}
	var (
		path     string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:           "docserver",
		Short:         "Document storage and placement server",
		Long:          "docserver stores documents on configured storage nodes, records their metadata, and serves them back over HTTP or the command line.",
		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(path)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			log, err := logging.NewWithWriter(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			env.cfg = cfg
			env.log = log
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&path, "config", "", "config file (YAML, TOML or JSON); environment variables win")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.Version = fmt.Sprintf("%s.%s", info.Version, info.Commit)

	cmd.AddCommand(
		newServeCommand(env),
		newMigrateCommand(env),
		newSeedCommand(env),
		newPutCommand(env),
		newGetCommand(env),
		newReplaceCommand(env),
	)
	return cmd
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path != "" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		return cfg, nil
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
