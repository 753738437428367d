package pipeline

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gocv.io/x/gocv"

	"github.com/khaledhikmat/drowsy-go/drowsiness"
	"github.com/khaledhikmat/drowsy-go/model"
	"github.com/khaledhikmat/drowsy-go/service/lgr"
)

const tracerName = "github.com/khaledhikmat/drowsy-go/pipeline"

type MonitorOptions struct {
	Mode     string
	Source   FrameSource
	Analyzer *Analyzer
	Renderer Renderer
	Alerter  *Alerter
	// Console receives the session summary table. Nil disables it.
	Console io.Writer
}

// Monitor runs the capture, detection and display loop on the calling
// goroutine until the stream ends, the quit key is pressed or canxCtx is
// cancelled. None of these is an error; the returned error is reserved for
// setup problems.
func Monitor(canxCtx context.Context, svcs ServicesFactory, opts MonitorOptions) (model.SessionStats, error) {
	tracker, err := drowsiness.NewTracker(svcs.CfgSvc.GetAlarmThreshold())
	if err != nil {
		return model.SessionStats{}, err
	}

	tracer := svcs.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	clk := svcs.Clock
	camera := svcs.CfgSvc.GetCameraParameters()
	retryBackoff := time.Duration(camera.ReadRetryBackoff) * time.Millisecond
	quitKey := svcs.CfgSvc.GetQuitKey()
	sessionID := uuid.NewString()
	collector := newStatsCollector(sessionID, opts.Mode, opts.Source.Name(), clk.Now())

	lgr.Logger.Info(
		"monitor starting....",
		slog.String("session", sessionID),
		slog.String("mode", opts.Mode),
		slog.String("source", opts.Source.Name()),
		slog.Int("threshold", tracker.Threshold()),
	)

	frame := FrameData{Mat: gocv.NewMat()}
	defer frame.Mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()

	state := drowsiness.State{}

loop:
	for {
		select {
		case <-canxCtx.Done():
			lgr.Logger.Info(
				"monitor context cancelled",
			)
			break loop
		default:
		}

		ok, failures := readFrame(canxCtx, clk, opts.Source, &frame.Mat, camera.ReadRetries, retryBackoff)
		collector.readErrors(failures)
		if !ok {
			lgr.Logger.Info(
				"video stream ended",
				slog.String("source", opts.Source.Name()),
			)
			break loop
		}

		frame.Timestamp = clk.Now()
		ctx, span := tracer.Start(canxCtx, "monitor.frame")

		if err := opts.Analyzer.Prepare(frame.Mat, &gray); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "preprocess failed")
			span.End()
			procError(svcs, model.GenError("monitor",
				err,
				map[string]interface{}{"session": sessionID},
				"error preprocessing frame"))

			// Show the raw frame so the quit key still works
			if quitPressed(opts.Renderer, frame.Mat, quitKey) {
				break loop
			}
			continue
		}

		dets := opts.Analyzer.Analyze(gray, frame.Timestamp)

		var decision drowsiness.Decision
		state, decision = tracker.Step(state, dets)

		span.SetAttributes(
			attribute.Int("faces", decision.Faces),
			attribute.Bool("eyes", decision.EyesFound),
			attribute.Int("counter", decision.Counter),
			attribute.Bool("alert", decision.Alert),
		)

		Annotate(&frame.Mat, dets, decision, tracker.Threshold())

		if decision.Entered && opts.Alerter != nil {
			fired := opts.Alerter.Notify(ctx, AlertData{
				Mat:       &frame.Mat,
				SessionID: sessionID,
				Source:    opts.Source.Name(),
				Decision:  decision,
				Detection: dets,
				Timestamp: frame.Timestamp,
			})
			if fired {
				collector.alert()
			}
		}

		span.End()
		collector.frame(decision, clk.Since(frame.Timestamp))

		lgr.Logger.Debug(
			"frame processed",
			slog.Int("faces", decision.Faces),
			slog.Bool("eyes", decision.EyesFound),
			slog.Int("counter", decision.Counter),
			slog.Bool("alert", decision.Alert),
		)

		if quitPressed(opts.Renderer, frame.Mat, quitKey) {
			break loop
		}
	}

	summary := collector.summary(clk.Now())
	if err := svcs.DataSvc.NewSessionStats(summary); err != nil {
		lgr.Logger.Error(
			"failed to store session stats",
			slog.Any("error", err),
		)
	}

	if opts.Console != nil {
		printSummary(opts.Console, summary)
	}

	lgr.Logger.Info(
		"monitor stopped",
		slog.String("session", sessionID),
		slog.Int("frames", summary.Frames),
		slog.Int("alerts", summary.Alerts),
	)

	return summary, nil
}

func quitPressed(renderer Renderer, frame gocv.Mat, quitKey int) bool {
	key := renderer.Show(frame)
	if key < 0 || key != quitKey {
		return false
	}

	lgr.Logger.Info(
		"quit key pressed",
	)
	return true
}

func procError(svcs ServicesFactory, err interface{}) {
	lgr.Logger.Error(
		"monitor error",
		slog.Any("error", err),
	)

	errTemp := svcs.DataSvc.NewError(err)
	if errTemp != nil {
		lgr.Logger.Error(
			"failed to store error",
			slog.Any("error", errTemp),
		)
	}
}
