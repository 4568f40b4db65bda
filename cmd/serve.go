package cmd

import (
	"os"

	"github.com/creasty/defaults"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ethpandaops/orb/pkg/server"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	serveCfgFile string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the orb API, cache warm-up scheduler and metrics",
	Long:  `Serves event queries for every configured observer over HTTP and keeps their caches warm.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveCfgFile, "config", "orb.yaml", "config file (default is orb.yaml)")
}

func loadServerConfigFromFile(file string) (*server.Config, error) {
	if file == "" {
		file = "orb.yaml"
	}

	config := &server.Config{}

	if err := defaults.Set(config); err != nil {
		return nil, err
	}

	yamlFile, err := os.ReadFile(file) //nolint:gosec // User-provided config file path
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(yamlFile, config); err != nil {
		return nil, err
	}

	return config, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true

	config, err := loadServerConfigFromFile(serveCfgFile)
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(config.LoggingLevel)
	if err != nil {
		return err
	}

	logger.SetLevel(level)

	logger.WithField("observers", len(config.Observers)).Info("Configuration loaded")

	srv, err := server.NewServer(cmd.Context(), logger, config)
	if err != nil {
		return err
	}

	return srv.Start(cmd.Context())
}
