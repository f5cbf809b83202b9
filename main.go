package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	app "github.com/rocketscienceinc/gamehub-backend/internal"
	"github.com/rocketscienceinc/gamehub-backend/internal/config"
)

const releaseVersion = "0.4.0"

// main - is the entry point of the application.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	cobra.CheckErr(newRootCmd().Execute())
}

func newRootCmd() *cobra.Command {
	var configPath string

	serve := func(*cobra.Command, []string) error {
		conf := config.MustLoad(configPath)
		logger := initLogger(conf)

		if err := app.RunApp(logger, conf); err != nil {
			return fmt.Errorf("app run failed: %w", err)
		}

		return nil
	}

	root := &cobra.Command{
		Use:           "gamehub",
		Short:         "Quiz, tic-tac-toe and checkers sessions with shareable rooms.",
		Args:          cobra.NoArgs,
		Version:       releaseVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "./config.yml", "path to the config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and websocket server",
		Args:  cobra.NoArgs,
		RunE:  serve,
	})

	root.CompletionOptions.HiddenDefaultCmd = true
	root.SetVersionTemplate("gamehub v{{.Version}}\n")

	return root
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
