package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hierovision/hierovision/client"
	"github.com/hierovision/hierovision/client/internal/logger"
)

const opTimeout = 15 * time.Second

// app carries the persistent flags and the logger shared by every command.
type app struct {
	apiURL    string
	storeKind string
	storePath string
	envFile   string
	debug     bool
	jsonLogs  bool

	log zerolog.Logger
}

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "hierovision",
		Short:         "HieroVision command line client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			level := os.Getenv("HIEROVISION_LOG_LEVEL")
			if a.debug {
				level = "debug"
			}
			if a.jsonLogs {
				a.log = logger.New("hierovision-cli", cmd.ErrOrStderr()).Level(logger.ParseLevel(level))
			} else {
				a.log = logger.Console(cmd.ErrOrStderr(), level)
			}
			log.Logger = a.log
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api", "", "API base URL (default $HIEROVISION_API_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&a.storeKind, "store", "", "credential store: file, sqlite, redis or memory")
	rootCmd.PersistentFlags().StringVar(&a.storePath, "store-path", "", "path of the file or sqlite store")
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false, "log every HTTP exchange")
	rootCmd.PersistentFlags().BoolVar(&a.jsonLogs, "json-logs", false, "write logs as JSON instead of console lines")

	rootCmd.AddCommand(
		newLoginCmd(a),
		newSignupCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newProfileCmd(a),
		newLandmarksCmd(a),
		newBookmarksCmd(a),
		newReviewsCmd(a),
		newScansCmd(a),
		newBookingsCmd(a),
		newTranslateCmd(a),
		newPredictCmd(a),
	)
	return rootCmd
}

// client builds a Client from HIEROVISION_* with the flags layered on top.
func (a *app) client(ctx context.Context) (*client.Client, error) {
	cfg, err := client.LoadConfig()
	if err != nil {
		return nil, err
	}
	if a.apiURL != "" {
		cfg.APIBaseURL = a.apiURL
	}
	if a.storeKind != "" {
		cfg.Store = a.storeKind
	}
	if a.storePath != "" {
		cfg.StorePath = a.storePath
	}
	cfg.Debug = cfg.Debug || a.debug
	return client.NewFromConfig(ctx, cfg, client.WithLogger(a.log))
}

// run opens a Client, runs fn with a bounded context and closes the Client.
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context, c *client.Client) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
	defer cancel()

	c, err := a.client(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	start := time.Now()
	err = fn(ctx, c)
	a.log.Debug().Str("command", cmd.CommandPath()).Dur("elapsed", time.Since(start)).Err(err).Msg("command finished")
	return err
}
