package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ruteri/hostkey-panel/actions"
	"github.com/ruteri/hostkey-panel/api/panelhandler"
	"github.com/ruteri/hostkey-panel/cmd/flags"
	"github.com/ruteri/hostkey-panel/flash"
	"github.com/ruteri/hostkey-panel/hostkeys"
	"github.com/ruteri/hostkey-panel/httpserver"
	"github.com/ruteri/hostkey-panel/interfaces"
	"github.com/ruteri/hostkey-panel/names"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "panelserver",
		Usage: "Serve the OpenPGP host key publication panel",
		Flags: append([]cli.Flag{
			flags.ListenAddrFlag,
			flags.ActionsDirFlag,
			flags.SudoFlag,
			flags.ActionTimeoutFlag,
			flags.DomainsFileFlag,
			flags.WatchDomainsFlag,
			flags.FlashTTLFlag,
			flags.LogServiceFlagFn("hostkey-panel"),
		}, flags.CommonFlags...),
		Action: runServer,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runServer(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	ctx, cancel := context.WithCancel(cCtx.Context)
	defer cancel()

	domainsFile := cCtx.String(flags.DomainsFileFlag.Name)
	registry, err := names.Load(domainsFile, logger)
	if err != nil {
		logger.Error("Failed to load domain registry", "err", err)
		return err
	}
	if cCtx.Bool(flags.WatchDomainsFlag.Name) {
		if err := registry.Watch(ctx); err != nil {
			logger.Error("Failed to watch domain registry", "err", err)
			return err
		}
	}

	var runner interfaces.ActionRunner = actions.NewRunner(
		cCtx.String(flags.ActionsDirFlag.Name),
		cCtx.Bool(flags.SudoFlag.Name),
		cCtx.Duration(flags.ActionTimeoutFlag.Name),
		logger,
	)

	service := hostkeys.NewService(runner, registry, logger)
	handler := panelhandler.NewHandler(service, flash.NewStore(cCtx.Duration(flags.FlashTTLFlag.Name)), logger)

	cfg := flags.ConfigureServer(cCtx, logger, cCtx.String(flags.ListenAddrFlag.Name))
	server, err := httpserver.New(cfg, handler)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	logger.Info("Starting server")
	server.RunInBackground()

	// Wait for termination signal
	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	logger.Info("Server is running, press Ctrl+C to stop")
	<-exit
	logger.Info("Shutdown signal received")

	server.Shutdown()
	service.Cancel(nil)
	logger.Info("Server shutdown complete")

	return nil
}
