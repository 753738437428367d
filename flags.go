package main

import (
	"github.com/urfave/cli/v2"

	"github.com/khaledhikmat/drowsy-go/service/config"
)

const envPrefix = "DROWSY_"

func env(name string) []string {
	return []string{envPrefix + name}
}

// flags exposes every setting as a global flag backed by a DROWSY_* env var.
func flags(d config.Settings) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "log-level", Value: "info", EnvVars: env("LOG_LEVEL"), Usage: "debug, info, warn or error"},
		&cli.StringFlag{Name: "log-file", EnvVars: env("LOG_FILE"), Usage: "also write JSON logs to this rotated file"},
		&cli.StringFlag{Name: "trace-file", EnvVars: env("TRACE_FILE"), Usage: "export per-frame spans as JSON to this rotated file"},

		&cli.IntFlag{Name: "device", Value: d.Camera.Device, EnvVars: env("DEVICE"), Usage: "camera device index"},
		&cli.StringFlag{Name: "source", Value: d.Camera.Source, EnvVars: env("SOURCE"), Usage: "video file or stream URL instead of a camera"},
		&cli.StringFlag{Name: "backend", Value: d.Camera.Backend, EnvVars: env("BACKEND"), Usage: "auto, any, dshow, msmf, v4l2, avfoundation, ffmpeg or gstreamer"},
		&cli.IntFlag{Name: "width", Value: d.Camera.Width, EnvVars: env("WIDTH")},
		&cli.IntFlag{Name: "height", Value: d.Camera.Height, EnvVars: env("HEIGHT")},
		&cli.IntFlag{Name: "read-retries", Value: d.Camera.ReadRetries, EnvVars: env("READ_RETRIES"), Usage: "extra read attempts before the stream counts as ended"},
		&cli.IntFlag{Name: "read-retry-backoff", Value: d.Camera.ReadRetryBackoff, EnvVars: env("READ_RETRY_BACKOFF"), Usage: "milliseconds"},

		&cli.StringFlag{Name: "cascades", Value: d.CascadesFolder, EnvVars: env("CASCADES"), Usage: "folder searched for cascade files"},
		&cli.StringFlag{Name: "face-cascade", Value: d.FaceDetector.Model, EnvVars: env("FACE_CASCADE")},
		&cli.Float64Flag{Name: "face-scale", Value: d.FaceDetector.ScaleFactor, EnvVars: env("FACE_SCALE")},
		&cli.IntFlag{Name: "face-neighbors", Value: d.FaceDetector.MinNeighbors, EnvVars: env("FACE_NEIGHBORS")},
		&cli.IntFlag{Name: "face-min-size", Value: d.FaceDetector.MinSize, EnvVars: env("FACE_MIN_SIZE")},
		&cli.StringFlag{Name: "eye-cascade", Value: d.EyeDetector.Model, EnvVars: env("EYE_CASCADE")},
		&cli.Float64Flag{Name: "eye-scale", Value: d.EyeDetector.ScaleFactor, EnvVars: env("EYE_SCALE")},
		&cli.IntFlag{Name: "eye-neighbors", Value: d.EyeDetector.MinNeighbors, EnvVars: env("EYE_NEIGHBORS")},
		&cli.IntFlag{Name: "eye-min-size", Value: d.EyeDetector.MinSize, EnvVars: env("EYE_MIN_SIZE")},

		&cli.IntFlag{Name: "threshold", Value: d.AlarmThreshold, EnvVars: env("ALARM_THRESHOLD"), Usage: "consecutive eyes-closed frames before alerting"},
		&cli.IntFlag{Name: "cooldown", Value: d.Alerter.CoolDownPeriod, EnvVars: env("ALERT_COOLDOWN"), Usage: "seconds between alert notifications"},
		&cli.BoolFlag{Name: "snapshots", Value: d.Alerter.Snapshots, EnvVars: env("SNAPSHOTS"), Usage: "save the alerting frame"},
		&cli.BoolFlag{Name: "bell", Value: d.Alerter.Bell, EnvVars: env("BELL")},
		&cli.StringFlag{Name: "events-log", Value: d.Alerter.EventsLog, EnvVars: env("EVENTS_LOG"), Usage: "JSON lines alert log, empty to disable"},
		&cli.StringFlag{Name: "webhook-url", Value: d.Alerter.WebhookURL, EnvVars: env("WEBHOOK_URL")},
		&cli.IntFlag{Name: "webhook-timeout", Value: d.Alerter.WebhookTimeout, EnvVars: env("WEBHOOK_TIMEOUT"), Usage: "seconds"},

		&cli.StringFlag{Name: "window", Value: d.WindowName, EnvVars: env("WINDOW")},
		&cli.StringFlag{Name: "quit-key", Value: d.QuitKey, EnvVars: env("QUIT_KEY")},
		&cli.IntFlag{Name: "key-poll-delay", Value: d.KeyPollDelay, EnvVars: env("KEY_POLL_DELAY"), Usage: "milliseconds"},

		&cli.StringFlag{Name: "settings", Value: d.InputFolder, EnvVars: env("SETTINGS_FOLDER"), Usage: "folder for the files data store"},
		&cli.StringFlag{Name: "recordings", Value: d.RecordingsFolder, EnvVars: env("RECORDINGS_FOLDER"), Usage: "folder for alert snapshots"},
		&cli.StringFlag{Name: "store", Value: d.DataStore, EnvVars: env("DATA_STORE"), Usage: "files or sqlite"},
		&cli.StringFlag{Name: "sqlite-path", Value: d.SqlitePath, EnvVars: env("SQLITE_PATH"), Usage: "defaults to drowsy.db in the settings folder"},
		&cli.IntFlag{Name: "max-shutdown", Value: d.ModeMaxShutdownTime, EnvVars: env("MAX_SHUTDOWN_TIME"), Usage: "seconds"},
	}
}

func settingsFromCLI(cCtx *cli.Context) config.Settings {
	return config.Settings{
		ModeMaxShutdownTime: cCtx.Int("max-shutdown"),
		InputFolder:         cCtx.String("settings"),
		RecordingsFolder:    cCtx.String("recordings"),
		CascadesFolder:      cCtx.String("cascades"),
		Camera: config.CameraParameters{
			Device:           cCtx.Int("device"),
			Source:           cCtx.String("source"),
			Backend:          cCtx.String("backend"),
			Width:            cCtx.Int("width"),
			Height:           cCtx.Int("height"),
			ReadRetries:      cCtx.Int("read-retries"),
			ReadRetryBackoff: cCtx.Int("read-retry-backoff"),
		},
		FaceDetector: config.DetectorParameters{
			Model:        cCtx.String("face-cascade"),
			ScaleFactor:  cCtx.Float64("face-scale"),
			MinNeighbors: cCtx.Int("face-neighbors"),
			MinSize:      cCtx.Int("face-min-size"),
		},
		EyeDetector: config.DetectorParameters{
			Model:        cCtx.String("eye-cascade"),
			ScaleFactor:  cCtx.Float64("eye-scale"),
			MinNeighbors: cCtx.Int("eye-neighbors"),
			MinSize:      cCtx.Int("eye-min-size"),
		},
		AlarmThreshold: cCtx.Int("threshold"),
		Alerter: config.AlerterParameters{
			CoolDownPeriod: cCtx.Int("cooldown"),
			Snapshots:      cCtx.Bool("snapshots"),
			Bell:           cCtx.Bool("bell"),
			EventsLog:      cCtx.String("events-log"),
			WebhookURL:     cCtx.String("webhook-url"),
			WebhookTimeout: cCtx.Int("webhook-timeout"),
		},
		WindowName:   cCtx.String("window"),
		QuitKey:      cCtx.String("quit-key"),
		KeyPollDelay: cCtx.Int("key-poll-delay"),
		DataStore:    cCtx.String("store"),
		SqlitePath:   cCtx.String("sqlite-path"),
	}
}
