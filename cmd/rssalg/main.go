package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"

	"github.com/rssalg/rssalg/cmd/rssalg/commands"
	"github.com/rssalg/rssalg/errors"
	"github.com/rssalg/rssalg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		logger.Errorw("Run failed", logger.FieldError, err.Error())
		logger.Debugw("Error details", "chain", errors.Verbose(err))

		pterm.Error.WithWriter(os.Stderr).Println(commands.FatalMessage(err))
		for _, hint := range errors.GetAllHints(err) {
			pterm.Info.WithWriter(os.Stderr).Println(hint)
		}
		logger.Cleanup()
		os.Exit(1)
	}
	logger.Cleanup()
}
