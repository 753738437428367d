package pipeline

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/khaledhikmat/drowsy-go/service/config"
)

func TestMonitorAlertsOnceAfterThreshold(t *testing.T) {
	env := newTestEnv(t, nil)
	src := newScriptedSource(16)
	defer src.Close()

	alerter := NewAlerter(env.svcs, env.console)
	defer alerter.Close()

	stats, err := Monitor(context.Background(), env.svcs, MonitorOptions{
		Mode:     "test",
		Source:   src,
		Analyzer: NewAnalyzer(&scriptedDetector{script: [][]image.Rectangle{oneFace}}, &scriptedDetector{}),
		Renderer: &keyRenderer{},
		Alerter:  alerter,
		Console:  env.console,
	})
	require.NoError(t, err)

	assert.Equal(t, 16, stats.Frames)
	assert.Equal(t, 16, stats.EyesClosedFrames)
	assert.Equal(t, 2, stats.AlertingFrames)
	assert.Equal(t, 1, stats.Alerts)
	assert.Equal(t, 16, stats.MaxCounter)
	assert.Equal(t, 1, stats.ReadErrors)

	alerts, err := env.svcs.DataSvc.RetrieveAlerts(stats.SessionID)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, 15, alerts[0].Counter)
	assert.Equal(t, 15, alerts[0].Threshold)
	assert.Equal(t, "scripted", alerts[0].Source)

	assert.Len(t, env.webhook.Payloads, 1)
	assert.Contains(t, env.console.String(), alertText)
	assert.Contains(t, env.console.String(), stats.SessionID)

	stored, err := env.svcs.DataSvc.RetrieveSessionStats()
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, stats.SessionID, stored[0].SessionID)
}

func TestMonitorNoAlertBelowThreshold(t *testing.T) {
	env := newTestEnv(t, nil)
	src := newScriptedSource(14)
	defer src.Close()

	stats, err := Monitor(context.Background(), env.svcs, MonitorOptions{
		Mode:     "test",
		Source:   src,
		Analyzer: NewAnalyzer(&scriptedDetector{script: [][]image.Rectangle{oneFace}}, &scriptedDetector{}),
		Renderer: &keyRenderer{},
	})
	require.NoError(t, err)

	assert.Equal(t, 14, stats.Frames)
	assert.Equal(t, 0, stats.AlertingFrames)
	assert.Equal(t, 0, stats.Alerts)
	assert.Equal(t, 14, stats.MaxCounter)
}

func TestMonitorResetsOnEyesAndFaceLoss(t *testing.T) {
	env := newTestEnv(t, func(s *config.Settings) { s.AlarmThreshold = 3 })
	src := newScriptedSource(8)
	defer src.Close()

	// Frame 2 has no face; frame 3 has open eyes. The eye detector only
	// runs on frames with a face.
	faces := &scriptedDetector{script: [][]image.Rectangle{oneFace, oneFace, nil, oneFace, oneFace, oneFace, oneFace, oneFace}}
	eyes := &scriptedDetector{script: [][]image.Rectangle{nil, nil, twoEyes, nil, nil, nil, nil}}

	alerter := NewAlerter(env.svcs, env.console)
	defer alerter.Close()

	stats, err := Monitor(context.Background(), env.svcs, MonitorOptions{
		Mode:     "test",
		Source:   src,
		Analyzer: NewAnalyzer(faces, eyes),
		Renderer: &keyRenderer{},
		Alerter:  alerter,
	})
	require.NoError(t, err)

	// Counters: 1 2 0 0 1 2 3 4
	assert.Equal(t, 8, stats.Frames)
	assert.Equal(t, 1, stats.NoFaceFrames)
	assert.Equal(t, 6, stats.EyesClosedFrames)
	assert.Equal(t, 2, stats.AlertingFrames)
	assert.Equal(t, 1, stats.Alerts)
	assert.Equal(t, 4, stats.MaxCounter)
}

func TestMonitorStopsOnQuitKey(t *testing.T) {
	env := newTestEnv(t, nil)
	src := newScriptedSource(100)
	defer src.Close()

	renderer := &keyRenderer{keys: []int{-1, 'x', 'q'}}
	stats, err := Monitor(context.Background(), env.svcs, MonitorOptions{
		Mode:     "test",
		Source:   src,
		Analyzer: NewAnalyzer(&scriptedDetector{}, &scriptedDetector{}),
		Renderer: renderer,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Frames)
	assert.Equal(t, 3, stats.NoFaceFrames)
	assert.Equal(t, 3, renderer.shown)
}

func TestMonitorStopsOnCancelledContext(t *testing.T) {
	env := newTestEnv(t, nil)
	src := newScriptedSource(100)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := Monitor(ctx, env.svcs, MonitorOptions{
		Mode:     "test",
		Source:   src,
		Analyzer: NewAnalyzer(&scriptedDetector{}, &scriptedDetector{}),
		Renderer: &keyRenderer{},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Frames)
	assert.Equal(t, 0, src.reads)
}

func TestMonitorEmptyStream(t *testing.T) {
	env := newTestEnv(t, nil)
	src := newScriptedSource(0)
	defer src.Close()

	stats, err := Monitor(context.Background(), env.svcs, MonitorOptions{
		Mode:     "test",
		Source:   src,
		Analyzer: NewAnalyzer(&scriptedDetector{}, &scriptedDetector{}),
		Renderer: &keyRenderer{},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Frames)
	assert.Equal(t, 1, stats.ReadErrors)
}

func TestMonitorQuitKeyWorksWhenPreprocessFails(t *testing.T) {
	env := newTestEnv(t, nil)
	src := newScriptedSource(100)
	defer src.Close()

	analyzer := NewAnalyzer(&scriptedDetector{}, &scriptedDetector{})
	analyzer.preprocess = func(gocv.Mat, *gocv.Mat) error {
		return errors.New("bad frame")
	}

	renderer := &keyRenderer{keys: []int{-1, 'q'}}
	stats, err := Monitor(context.Background(), env.svcs, MonitorOptions{
		Mode:     "test",
		Source:   src,
		Analyzer: analyzer,
		Renderer: renderer,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, renderer.shown)
	assert.Equal(t, 2, src.reads)
	assert.Equal(t, 0, stats.Frames)

	errs, err := env.svcs.DataSvc.RetrieveErrors()
	require.NoError(t, err)
	require.Len(t, errs, 2)
	assert.Equal(t, "monitor", errs[0].Processor)
}
