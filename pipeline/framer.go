package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/mdobak/go-xerrors"
	"gocv.io/x/gocv"

	"github.com/khaledhikmat/drowsy-go/service/config"
	"github.com/khaledhikmat/drowsy-go/service/lgr"
)

// FrameSource yields frames until the device fails or the stream ends.
type FrameSource interface {
	// Read fills img with the next frame. It returns false when no frame
	// could be read.
	Read(img *gocv.Mat) bool
	Name() string
	Close() error
}

type videoCaptureSource struct {
	name    string
	capture *gocv.VideoCapture
}

// OpenFrameSource opens the configured webcam, or the video file / stream
// URL when one is set, and applies the target resolution best-effort.
func OpenFrameSource(params config.CameraParameters) (FrameSource, error) {
	api := resolveBackend(params.Backend, runtime.GOOS)

	var device interface{} = params.Device
	name := fmt.Sprintf("camera:%d", params.Device)
	if params.Source != "" {
		device = params.Source
		name = params.Source
	}

	capture, err := gocv.OpenVideoCaptureWithAPI(device, api)
	if err != nil {
		return nil, xerrors.New(fmt.Sprintf("error opening video source %s", name), err)
	}

	if !capture.IsOpened() {
		capture.Close()
		return nil, xerrors.New(fmt.Sprintf("video source %s is not available", name))
	}

	if params.Source == "" {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(params.Width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(params.Height))
	}

	lgr.Logger.Info(
		"video source opened",
		slog.String("source", name),
		slog.String("backend", params.Backend),
		slog.Float64("width", capture.Get(gocv.VideoCaptureFrameWidth)),
		slog.Float64("height", capture.Get(gocv.VideoCaptureFrameHeight)),
		slog.String("openCV", gocv.Version()),
	)

	return &videoCaptureSource{
		name:    name,
		capture: capture,
	}, nil
}

func (s *videoCaptureSource) Read(img *gocv.Mat) bool {
	return s.capture.Read(img) && !img.Empty()
}

func (s *videoCaptureSource) Name() string {
	return s.name
}

func (s *videoCaptureSource) Close() error {
	return s.capture.Close()
}

// resolveBackend maps a backend name to an OpenCV capture API. "auto"
// prefers DirectShow on Windows and lets OpenCV choose elsewhere.
func resolveBackend(name, goos string) gocv.VideoCaptureAPI {
	switch strings.ToLower(name) {
	case "dshow":
		return gocv.VideoCaptureDshow
	case "msmf":
		return gocv.VideoCaptureMSMF
	case "v4l2":
		return gocv.VideoCaptureV4L2
	case "avfoundation":
		return gocv.VideoCaptureAVFoundation
	case "ffmpeg":
		return gocv.VideoCaptureFFmpeg
	case "gstreamer":
		return gocv.VideoCaptureGstreamer
	case "auto":
		if goos == "windows" {
			return gocv.VideoCaptureDshow
		}
	}
	return gocv.VideoCaptureAny
}

// readFrame reads one frame, retrying up to retries extra times with a
// linear backoff. It returns false when the stream should be treated as ended.
func readFrame(canxCtx context.Context, clk clock.Clock, src FrameSource, img *gocv.Mat, retries int, backoff time.Duration) (ok bool, failures int) {
	for attempt := 0; ; attempt++ {
		if src.Read(img) {
			return true, failures
		}

		failures++
		if attempt >= retries {
			return false, failures
		}

		lgr.Logger.Warn(
			"frame read failed, retrying",
			slog.String("source", src.Name()),
			slog.Int("attempt", attempt+1),
			slog.Int("retries", retries),
		)

		select {
		case <-canxCtx.Done():
			return false, failures
		case <-clk.After(backoff * time.Duration(attempt+1)):
		}
	}
}
