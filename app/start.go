package app

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/anindta/task-management-project/internal/config"
	"github.com/anindta/task-management-project/internal/daemon"
	"github.com/anindta/task-management-project/internal/logger"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")
	startCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config, missing is fine")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(migrateCmd)
}

var (
	configPath string // Path to the configuration directory
	envFile    string
	devMode    bool

	cfg config.Config

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the taskboard web service",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := daemon.New(cmd.Context(), &cfg)
			if err != nil {
				return err
			}

			log.Info().Int("port", cfg.Webserver.Port).Str("url", cfg.Webserver.URL).Msg("starting web service")

			return d.Start()
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database schema and write the seed data",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := daemon.Prepare(cmd.Context(), &cfg); err != nil {
				return err
			}

			log.Info().Str("engine", cfg.DB.GormEngine).Msg("database is up to date")

			return nil
		},
	}
)

// loadConfig reads .env, the TOML config and initialises the logger.
func loadConfig() error {
	if envFile != "" {
		// a missing file is fine, the environment may be set otherwise
		_ = godotenv.Load(envFile) //nolint:errcheck
	}

	var err error
	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	if devMode {
		cfg.DevMode = true
	}

	if err = logger.Init(cfg.Log); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	if cfg.DevMode {
		dump, errDump := config.DumpConfigJSON(&cfg)
		if errDump == nil {
			log.Debug().Msg("config:\n" + dump)
		}
	}

	return nil
}
