// cmd/dms-sync/root.go
package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"dms-workers/internal/common/config"
	"dms-workers/internal/common/demarches"
	httpclient "dms-workers/internal/common/http"
	"dms-workers/internal/common/logger"
	"dms-workers/internal/dms"
)

// cli holds state shared by the subcommands. Config and logger are loaded
// lazily so that offline commands such as inspect need no config file.
type cli struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "dms-sync",
		Short:         "Run Démarches Simplifiées ingestion steps by hand",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: configs/config.yaml lookup)")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level written to stderr")

	rootCmd.AddCommand(c.closedCmd())
	rootCmd.AddCommand(c.receivedCmd())
	rootCmd.AddCommand(c.bankInfoCmd())
	rootCmd.AddCommand(c.triggerCmd())
	rootCmd.AddCommand(c.inspectCmd())
	rootCmd.AddCommand(c.watermarkCmd())

	return rootCmd
}

func (c *cli) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFromFile(c.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *cli) logger() (logger.Logger, error) {
	if c.log != nil {
		return c.log, nil
	}
	zapLog, err := logger.New(c.logLevel, "console", "stderr")
	if err != nil {
		return nil, err
	}
	c.log = logger.NewZapAdapter(zapLog)
	return c.log, nil
}

func (c *cli) demarchesClient(cfg *config.Config) (*demarches.Client, error) {
	return demarches.NewClient(demarches.Config{
		LegacyBaseURL: cfg.DMS.LegacyBaseURL,
		GraphQLURL:    cfg.DMS.GraphQLURL,
	}, httpclient.NewClient(config.GetDuration(cfg.DMS.Timeout)))
}

func (c *cli) fetcher(cfg *config.Config) (*dms.Fetcher, error) {
	client, err := c.demarchesClient(cfg)
	if err != nil {
		return nil, err
	}
	return dms.NewFetcher(dms.FetcherConfig{
		Token:              cfg.DMS.Token,
		OffererProcedureID: cfg.DMS.OffererProcedureID,
		VenueProcedureID:   cfg.DMS.VenueProcedureID,
	}, client)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
