package mode

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/khaledhikmat/drowsy-go/pipeline"
	"github.com/khaledhikmat/drowsy-go/service/config"
	"github.com/khaledhikmat/drowsy-go/service/lgr"
)

// Processor runs one mode to completion. A returned error means the mode
// could not start.
type Processor func(canxCtx context.Context, svcs pipeline.ServicesFactory) error

// Console receives the alert banner and the session summary.
var Console io.Writer = os.Stdout

// run opens the frame source and both cascades, then hands them to the
// monitor loop. Everything opened here is released on every exit path.
func run(canxCtx context.Context, svcs pipeline.ServicesFactory, mode string, renderer pipeline.Renderer) error {
	defer renderer.Close()

	cfgSvc := svcs.CfgSvc

	faces, err := pipeline.LoadCascade(config.FaceDetectorName,
		cfgSvc.GetDetectorParameters(config.FaceDetectorName),
		cfgSvc.GetCascadesFolder())
	if err != nil {
		return err
	}
	defer faces.Close()

	eyes, err := pipeline.LoadCascade(config.EyeDetectorName,
		cfgSvc.GetDetectorParameters(config.EyeDetectorName),
		cfgSvc.GetCascadesFolder())
	if err != nil {
		return err
	}
	defer eyes.Close()

	source, err := pipeline.OpenFrameSource(cfgSvc.GetCameraParameters())
	if err != nil {
		return err
	}
	defer closeSource(source)

	alerter := pipeline.NewAlerter(svcs, Console)
	defer alerter.Close()

	_, err = pipeline.Monitor(canxCtx, svcs, pipeline.MonitorOptions{
		Mode:     mode,
		Source:   source,
		Analyzer: pipeline.NewAnalyzer(faces, eyes),
		Renderer: renderer,
		Alerter:  alerter,
		Console:  Console,
	})
	return err
}

func closeSource(source pipeline.FrameSource) {
	if err := source.Close(); err != nil {
		lgr.Logger.Error(
			"failed to release video source",
			slog.String("source", source.Name()),
			slog.Any("error", err),
		)
	}
}
