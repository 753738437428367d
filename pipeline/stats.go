package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"

	"github.com/khaledhikmat/drowsy-go/drowsiness"
	"github.com/khaledhikmat/drowsy-go/model"
)

// Processing-time samples kept for the mean / p95 summary.
const maxProcSamples = 1024

type statsCollector struct {
	stats     model.SessionStats
	startTime time.Time
	samples   []float64
	next      int
}

func newStatsCollector(sessionID, mode, source string, start time.Time) *statsCollector {
	return &statsCollector{
		stats: model.SessionStats{
			SessionID: sessionID,
			Mode:      mode,
			Source:    source,
		},
		startTime: start,
		samples:   make([]float64, 0, maxProcSamples),
	}
}

func (c *statsCollector) frame(d drowsiness.Decision, procTime time.Duration) {
	c.stats.Frames++
	switch {
	case d.Faces == 0:
		c.stats.NoFaceFrames++
	case !d.EyesFound:
		c.stats.EyesClosedFrames++
	}
	if d.Alert {
		c.stats.AlertingFrames++
	}
	if d.Counter > c.stats.MaxCounter {
		c.stats.MaxCounter = d.Counter
	}

	if len(c.samples) < maxProcSamples {
		c.samples = append(c.samples, procTime.Seconds())
		return
	}
	c.samples[c.next] = procTime.Seconds()
	c.next = (c.next + 1) % maxProcSamples
}

func (c *statsCollector) readErrors(n int) {
	c.stats.ReadErrors += n
}

func (c *statsCollector) alert() {
	c.stats.Alerts++
}

func (c *statsCollector) summary(now time.Time) model.SessionStats {
	s := c.stats
	elapsed := now.Sub(c.startTime)
	s.Uptime = int64(elapsed.Seconds())
	if elapsed > 0 {
		s.FPS = float64(s.Frames) / elapsed.Seconds()
	}

	if len(c.samples) > 0 {
		if mean, err := stats.Mean(c.samples); err == nil {
			s.AvgProcTime = mean
		}
		if p95, err := stats.Percentile(c.samples, 95); err == nil {
			s.P95ProcTime = p95
		}
	}

	return s
}

// printSummary renders the session stats as a table.
func printSummary(w io.Writer, s model.SessionStats) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("drowsiness session " + s.SessionID)
	t.AppendHeader(table.Row{"metric", "value"})
	t.AppendRows([]table.Row{
		{"mode", s.Mode},
		{"source", s.Source},
		{"frames", s.Frames},
		{"frames without face", s.NoFaceFrames},
		{"eyes-closed frames", s.EyesClosedFrames},
		{"alerting frames", s.AlertingFrames},
		{"alerts", s.Alerts},
		{"longest run", s.MaxCounter},
		{"read errors", s.ReadErrors},
		{"fps", fmt.Sprintf("%.1f", s.FPS)},
		{"avg processing", fmt.Sprintf("%.1fms", s.AvgProcTime*1000)},
		{"p95 processing", fmt.Sprintf("%.1fms", s.P95ProcTime*1000)},
		{"uptime", (time.Duration(s.Uptime) * time.Second).String()},
	})
	t.SetStyle(table.StyleLight)
	t.Render()
}
