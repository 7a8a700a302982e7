// Command campusbot runs the multi-tenant college assistant and its
// operator tooling.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("campusbot failed")
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "campusbot",
		Short:         "Multi-tenant college FAQ assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			setupLogging()
		},
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newSeedCommand(),
		newTenantCommand(),
		newQACommand(),
		newMissesCommand(),
		newHashCommand(),
	)
	return root
}

// setupLogging initializes structured logging from the environment.
func setupLogging() {
	level, err := zerolog.ParseLevel(os.Getenv("CAMPUSBOT_LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if os.Getenv("CAMPUSBOT_LOG_FORMAT") == "console" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}
