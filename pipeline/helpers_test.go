package pipeline

import (
	"bytes"
	"image"
	"path/filepath"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/khaledhikmat/drowsy-go/service/config"
	"github.com/khaledhikmat/drowsy-go/service/data"
	"github.com/khaledhikmat/drowsy-go/service/webhook"
)

// scriptedSource plays back a fixed number of blank 640x480 frames, or the
// read outcomes in script when one is given.
type scriptedSource struct {
	frame  gocv.Mat
	frames int
	script []bool
	reads  int
}

func newScriptedSource(frames int) *scriptedSource {
	return &scriptedSource{
		frame:  gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3),
		frames: frames,
	}
}

func (s *scriptedSource) Read(img *gocv.Mat) bool {
	defer func() { s.reads++ }()
	if s.script != nil {
		return s.reads < len(s.script) && s.script[s.reads]
	}
	if s.reads >= s.frames {
		return false
	}
	s.frame.CopyTo(img)
	return true
}

func (s *scriptedSource) Name() string {
	return "scripted"
}

func (s *scriptedSource) Close() error {
	return s.frame.Close()
}

// scriptedDetector returns the next entry of script on every call and
// repeats the last one once the script runs out.
type scriptedDetector struct {
	script [][]image.Rectangle
	calls  int
}

func (d *scriptedDetector) Detect(gocv.Mat) []image.Rectangle {
	if len(d.script) == 0 {
		return nil
	}
	i := d.calls
	if i >= len(d.script) {
		i = len(d.script) - 1
	}
	d.calls++
	return d.script[i]
}

func (d *scriptedDetector) Close() error {
	return nil
}

// keyRenderer returns keys[i] on the i-th Show and -1 afterwards.
type keyRenderer struct {
	keys  []int
	shown int
}

func (r *keyRenderer) Show(gocv.Mat) int {
	defer func() { r.shown++ }()
	if r.shown < len(r.keys) {
		return r.keys[r.shown]
	}
	return -1
}

func (r *keyRenderer) Close() error {
	return nil
}

type testEnv struct {
	svcs    ServicesFactory
	clock   *clock.Mock
	webhook *webhook.FakeService
	console *bytes.Buffer
}

func newTestEnv(t *testing.T, mutate func(*config.Settings)) testEnv {
	t.Helper()

	dir := t.TempDir()
	s := config.Defaults()
	s.InputFolder = filepath.Join(dir, "settings")
	s.RecordingsFolder = filepath.Join(dir, "recordings")
	s.SqlitePath = filepath.Join(dir, "settings", "drowsy.db")
	s.Alerter.EventsLog = filepath.Join(dir, "alerts.log")
	s.Alerter.Bell = false
	if mutate != nil {
		mutate(&s)
	}

	cfgSvc, err := config.New(s)
	require.NoError(t, err)

	dataSvc, err := data.NewFilesDB(cfgSvc)
	require.NoError(t, err)

	wh := webhook.NewFake(cfgSvc)
	mock := clock.NewMock()

	return testEnv{
		svcs: ServicesFactory{
			CfgSvc:     cfgSvc,
			DataSvc:    dataSvc,
			WebhookSvc: wh,
			Clock:      mock,
		},
		clock:   mock,
		webhook: wh,
		console: &bytes.Buffer{},
	}
}

var (
	oneFace = []image.Rectangle{image.Rect(100, 100, 300, 300)}
	twoEyes = []image.Rectangle{image.Rect(20, 40, 70, 80), image.Rect(120, 40, 170, 80)}
)
