package config

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/xerrors"
)

// Settings is the full startup configuration. Every field is exposed as a
// command line flag and an environment variable by the binary.
type Settings struct {
	ModeMaxShutdownTime int
	InputFolder         string
	RecordingsFolder    string
	CascadesFolder      string

	Camera         CameraParameters
	FaceDetector   DetectorParameters
	EyeDetector    DetectorParameters
	AlarmThreshold int
	Alerter        AlerterParameters

	WindowName   string
	QuitKey      string
	KeyPollDelay int // Milliseconds

	DataStore  string
	SqlitePath string
}

// Defaults returns the stock settings:
// camera 0 at 640x480, threshold 15, OpenCV's stock cascades.
func Defaults() Settings {
	return Settings{
		ModeMaxShutdownTime: 5,
		InputFolder:         "./settings",
		RecordingsFolder:    "./recordings",
		CascadesFolder:      "./cascades",
		Camera: CameraParameters{
			Device:           0,
			Source:           "",
			Backend:          "auto",
			Width:            640,
			Height:           480,
			ReadRetries:      0,
			ReadRetryBackoff: 100,
		},
		FaceDetector: DetectorParameters{
			Model:        "haarcascade_frontalface_default.xml",
			ScaleFactor:  1.2,
			MinNeighbors: 5,
			MinSize:      100,
		},
		EyeDetector: DetectorParameters{
			Model:        "haarcascade_eye.xml",
			ScaleFactor:  1.1,
			MinNeighbors: 10,
			MinSize:      30,
		},
		AlarmThreshold: 15,
		Alerter: AlerterParameters{
			CoolDownPeriod: 5,
			Snapshots:      false,
			Bell:           true,
			EventsLog:      "alerts.log",
			WebhookURL:     "",
			WebhookTimeout: 5,
		},
		WindowName:   "Drowsiness Detector",
		QuitKey:      "q",
		KeyPollDelay: 1,
		DataStore:    DataStoreFiles,
		SqlitePath:   "", // Derived from InputFolder
	}
}

var backends = map[string]bool{
	"auto":         true,
	"any":          true,
	"dshow":        true,
	"msmf":         true,
	"v4l2":         true,
	"avfoundation": true,
	"ffmpeg":       true,
	"gstreamer":    true,
}

func (s Settings) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if s.AlarmThreshold <= 0 {
		add("alarm threshold must be positive, got %d", s.AlarmThreshold)
	}
	if s.Camera.Source == "" && s.Camera.Device < 0 {
		add("camera device must be >= 0, got %d", s.Camera.Device)
	}
	if !backends[strings.ToLower(s.Camera.Backend)] {
		add("unknown camera backend %q", s.Camera.Backend)
	}
	if s.Camera.Width <= 0 || s.Camera.Height <= 0 {
		add("frame size must be positive, got %dx%d", s.Camera.Width, s.Camera.Height)
	}
	if s.Camera.ReadRetries < 0 || s.Camera.ReadRetryBackoff < 0 {
		add("read retries and backoff must be >= 0")
	}

	for name, d := range map[string]DetectorParameters{FaceDetectorName: s.FaceDetector, EyeDetectorName: s.EyeDetector} {
		if d.Model == "" {
			add("%s detector model is required", name)
		}
		if d.ScaleFactor <= 1.0 {
			add("%s detector scale factor must be > 1, got %g", name, d.ScaleFactor)
		}
		if d.MinNeighbors < 0 {
			add("%s detector min neighbors must be >= 0, got %d", name, d.MinNeighbors)
		}
		if d.MinSize < 0 {
			add("%s detector min size must be >= 0, got %d", name, d.MinSize)
		}
	}

	if len([]rune(s.QuitKey)) != 1 {
		add("quit key must be a single character, got %q", s.QuitKey)
	}
	if s.KeyPollDelay <= 0 {
		add("key poll delay must be positive, got %d", s.KeyPollDelay)
	}
	if s.Alerter.CoolDownPeriod < 0 {
		add("alert cooldown must be >= 0, got %d", s.Alerter.CoolDownPeriod)
	}
	if s.Alerter.WebhookURL != "" {
		if u, err := url.Parse(s.Alerter.WebhookURL); err != nil || u.Scheme == "" || u.Host == "" {
			add("invalid webhook url %q", s.Alerter.WebhookURL)
		}
	}
	if s.DataStore != DataStoreFiles && s.DataStore != DataStoreSqlite {
		add("unknown data store %q", s.DataStore)
	}

	if len(problems) > 0 {
		return xerrors.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
