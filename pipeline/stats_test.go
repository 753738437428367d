package pipeline

import (
	"bytes"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"

	"github.com/khaledhikmat/drowsy-go/drowsiness"
	"github.com/khaledhikmat/drowsy-go/model"
)

func TestStatsCollectorSummary(t *testing.T) {
	start := time.Unix(1000, 0)
	c := newStatsCollector("s1", "headless", "camera:0", start)

	c.frame(drowsiness.Decision{Faces: 0}, 10*time.Millisecond)
	c.frame(drowsiness.Decision{Faces: 1, EyesFound: true}, 10*time.Millisecond)
	c.frame(drowsiness.Decision{Faces: 1, Counter: 1}, 20*time.Millisecond)
	c.frame(drowsiness.Decision{Faces: 2, Counter: 2, Alert: true, Entered: true}, 40*time.Millisecond)
	c.readErrors(2)
	c.alert()

	s := c.summary(start.Add(2 * time.Second))
	assert.Equal(t, "s1", s.SessionID)
	assert.Equal(t, "headless", s.Mode)
	assert.Equal(t, 4, s.Frames)
	assert.Equal(t, 1, s.NoFaceFrames)
	assert.Equal(t, 2, s.EyesClosedFrames)
	assert.Equal(t, 1, s.AlertingFrames)
	assert.Equal(t, 1, s.Alerts)
	assert.Equal(t, 2, s.ReadErrors)
	assert.Equal(t, 2, s.MaxCounter)
	assert.Equal(t, int64(2), s.Uptime)
	assert.InDelta(t, 2.0, s.FPS, 1e-9)
	assert.InDelta(t, 0.02, s.AvgProcTime, 1e-9)
	assert.Greater(t, s.P95ProcTime, s.AvgProcTime)
}

func TestStatsCollectorKeepsBoundedSamples(t *testing.T) {
	start := time.Unix(0, 0)
	c := newStatsCollector("s1", "monitor", "camera:0", start)

	for i := 0; i < maxProcSamples+10; i++ {
		c.frame(drowsiness.Decision{}, time.Millisecond)
	}

	assert.Len(t, c.samples, maxProcSamples)
	assert.Equal(t, 10, c.next)
	assert.Equal(t, maxProcSamples+10, c.summary(start).Frames)
}

func TestStatsCollectorEmptySession(t *testing.T) {
	start := time.Unix(0, 0)
	s := newStatsCollector("s1", "monitor", "camera:0", start).summary(start)

	assert.Equal(t, 0, s.Frames)
	assert.Zero(t, s.FPS)
	assert.Zero(t, s.AvgProcTime)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, model.SessionStats{
		SessionID: "abc",
		Mode:      "monitor",
		Source:    "camera:0",
		Frames:    42,
		Alerts:    3,
		FPS:       29.97,
		Uptime:    90,
	})

	out := buf.String()
	assert.Contains(t, out, "drowsiness session abc")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "30.0")
	assert.Contains(t, out, "1m30s")
}

func TestAnnotateDrawsAlertBanner(t *testing.T) {
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	dets := model.FrameDetections{Faces: []model.FaceRegion{{Face: image.Rect(100, 100, 300, 300)}}}
	Annotate(&frame, dets, drowsiness.Decision{Faces: 1, Counter: 15, Alert: true}, 15)

	// Red text in BGR lands in the third channel
	banner := frame.Region(image.Rect(40, 20, 600, 60))
	defer banner.Close()
	assert.Greater(t, banner.Sum().Val3, 0.0)

	// The face box is green
	box := frame.Region(image.Rect(99, 99, 302, 102))
	defer box.Close()
	assert.Greater(t, box.Sum().Val2, 0.0)
	assert.Zero(t, box.Sum().Val3)
}
