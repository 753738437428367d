package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/drowsy-go/mode"
	"github.com/khaledhikmat/drowsy-go/pipeline"
	"github.com/khaledhikmat/drowsy-go/service/config"
	"github.com/khaledhikmat/drowsy-go/service/data"
	"github.com/khaledhikmat/drowsy-go/service/lgr"
	"github.com/khaledhikmat/drowsy-go/service/tracing"
	"github.com/khaledhikmat/drowsy-go/service/webhook"
)

const appName = "drowsy-go"

var modeProcessors = map[string]mode.Processor{
	"monitor":  mode.Monitor,
	"headless": mode.Headless,
}

func main() {
	// Load env vars if we are in DEV mode
	if os.Getenv("RUN_TIME_ENV") == "dev" || os.Getenv("RUN_TIME_ENV") == "" {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			lgr.Logger.Error("error loading .env file", slog.Any("error", xerrors.New(err.Error())))
			os.Exit(1)
		}
		if err == nil {
			lgr.Logger.Info("loaded env vars from .env file")
		}
	}

	app := &cli.App{
		Name:   appName,
		Usage:  "flag probable drowsiness from a webcam feed",
		Flags:  flags(config.Defaults()),
		Action: modeAction("monitor"),
		Commands: []*cli.Command{
			{
				Name:   "monitor",
				Usage:  "show the annotated feed in a window (default)",
				Action: modeAction("monitor"),
			},
			{
				Name:   "headless",
				Usage:  "run without a window, stop with Ctrl+C",
				Action: modeAction("headless"),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		lgr.Logger.Error("drowsy-go exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func modeAction(modeType string) cli.ActionFunc {
	return func(cCtx *cli.Context) error {
		logCloser, err := lgr.Setup(lgr.Options{
			Level:      cCtx.String("log-level"),
			File:       cCtx.String("log-file"),
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 7,
		})
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		defer logCloser.Close()

		// Tracing: per-frame spans, exported to a file when asked
		tp, err := tracing.Setup(appName, tracing.Options{
			File:       cCtx.String("trace-file"),
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 7,
		})
		if err != nil {
			lgr.Logger.Error("error setting up tracing", slog.Any("error", err))
			return cli.Exit(err.Error(), 1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				lgr.Logger.Error("error shutting down tracing", slog.Any("error", err))
			}
		}()

		modeProc, ok := modeProcessors[modeType]
		if !ok {
			lgr.Logger.Error("invalid mode", slog.String("mode", modeType))
			return cli.Exit("invalid mode", 1)
		}

		// Config service
		cfgSvc, err := config.New(settingsFromCLI(cCtx))
		if err != nil {
			lgr.Logger.Error("invalid configuration", slog.Any("error", err))
			return cli.Exit(err.Error(), 1)
		}

		// Data service
		dataSvc, err := newDataService(cfgSvc)
		if err != nil {
			lgr.Logger.Error("error creating data service", slog.Any("error", err))
			return cli.Exit(err.Error(), 1)
		}
		defer func() {
			if err := dataSvc.Finalize(); err != nil {
				lgr.Logger.Error("error closing data service", slog.Any("error", err))
			}
		}()

		// Webhook service
		webhookSvc := webhook.NewNop(cfgSvc)
		if cfgSvc.GetAlerterParameters().WebhookURL != "" {
			webhookSvc = webhook.NewHTTP(cfgSvc)
		}

		svcs := pipeline.ServicesFactory{
			CfgSvc:     cfgSvc,
			DataSvc:    dataSvc,
			WebhookSvc: webhookSvc,
			Tracer:     otel.Tracer(appName),
			Clock:      clock.New(),
		}

		canxCtx, canxFn := context.WithCancel(cCtx.Context)
		defer canxFn()

		// Hook up a signal handler to cancel the context
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		modeDone := make(chan struct{})
		go func() {
			select {
			case sig := <-sigChan:
				lgr.Logger.Info(
					"received kill signal",
					slog.Any("signal", sig),
				)
				canxFn()
			case <-modeDone:
				return
			}

			// Give the mode processor a bounded time to release the camera
			select {
			case <-modeDone:
			case <-time.After(time.Duration(cfgSvc.GetModeMaxShutdownTime()) * time.Second):
				lgr.Logger.Error(
					"mode processor did not stop in time",
					slog.Int("maxShutdownSeconds", cfgSvc.GetModeMaxShutdownTime()),
				)
				os.Exit(1)
			}
		}()

		// The mode processor owns the main goroutine: the display window
		// must be driven from it.
		err = modeProc(canxCtx, svcs)
		close(modeDone)
		if err != nil {
			lgr.Logger.Error(
				"mode processor failed to start",
				slog.String("mode", modeType),
				slog.Any("error", err),
			)
			return cli.Exit("startup failed: "+err.Error(), 1)
		}

		lgr.Logger.Info(
			"drowsy-go exiting",
			slog.String("mode", modeType),
		)
		return nil
	}
}

func newDataService(cfgSvc config.IService) (data.IService, error) {
	if cfgSvc.GetDataStore() == config.DataStoreSqlite {
		return data.NewSqlite(cfgSvc)
	}
	return data.NewFilesDB(cfgSvc)
}
