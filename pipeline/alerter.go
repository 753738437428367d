package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/natefinch/lumberjack"
	"gocv.io/x/gocv"

	"github.com/khaledhikmat/drowsy-go/model"
	"github.com/khaledhikmat/drowsy-go/service/config"
	"github.com/khaledhikmat/drowsy-go/service/lgr"
)

// Alerter runs the side effects of an alert: console bell and banner,
// snapshot, event log line, persisted event and webhook. It is called from
// the monitor loop only, so it needs no locking.
type Alerter struct {
	svcs      ServicesFactory
	params    config.AlerterParameters
	console   io.Writer
	events    *lumberjack.Logger
	cooldown  time.Duration
	lastAlert time.Time
	startTime time.Time
	stats     model.AlerterStats
}

func NewAlerter(svcs ServicesFactory, console io.Writer) *Alerter {
	params := svcs.CfgSvc.GetAlerterParameters()

	a := &Alerter{
		svcs:      svcs,
		params:    params,
		console:   console,
		cooldown:  time.Duration(params.CoolDownPeriod) * time.Second,
		startTime: svcs.Clock.Now(),
		stats:     model.AlerterStats{Name: "alerter"},
	}

	if params.EventsLog != "" {
		a.events = &lumberjack.Logger{
			Filename:   params.EventsLog,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     7,    // days
			Compress:   true, // compress old logs
		}
	}

	return a
}

// Notify fires the alert unless the previous one is still cooling down.
// It reports whether the alert fired.
func (a *Alerter) Notify(ctx context.Context, alert AlertData) bool {
	now := a.svcs.Clock.Now()
	if !a.lastAlert.IsZero() && now.Sub(a.lastAlert) < a.cooldown {
		a.stats.Suppressed++
		lgr.Logger.Debug(
			"alert suppressed by cooldown",
			slog.Duration("sinceLast", now.Sub(a.lastAlert)),
			slog.Duration("cooldown", a.cooldown),
		)
		return false
	}
	a.lastAlert = now
	a.stats.Alerts++

	event := model.AlertEvent{
		ID:        uuid.NewString(),
		SessionID: alert.SessionID,
		Source:    alert.Source,
		Counter:   alert.Decision.Counter,
		Threshold: a.svcs.CfgSvc.GetAlarmThreshold(),
		Faces:     alert.Decision.Faces,
		Timestamp: alert.Timestamp.Unix(),
	}

	if a.params.Snapshots && alert.Mat != nil && !alert.Mat.Empty() {
		fn, err := a.snapshot(event, *alert.Mat)
		if err != nil {
			a.procError(err, event, "error writing alert snapshot")
		}
		event.SnapshotPath = fn
	}

	if a.params.Bell {
		fmt.Fprint(a.console, "\a")
	}
	fmt.Fprintln(a.console, color.New(color.FgHiWhite, color.BgRed, color.Bold).Sprintf(
		" %s counter=%d threshold=%d ", alertText, event.Counter, event.Threshold))

	lgr.Logger.Warn(
		"drowsiness alert",
		slog.String("alertID", event.ID),
		slog.String("session", event.SessionID),
		slog.String("source", event.Source),
		slog.Int("counter", event.Counter),
		slog.Int("threshold", event.Threshold),
	)

	if err := a.logEvent(event); err != nil {
		a.procError(err, event, "error writing alert event log")
	}

	if err := a.svcs.DataSvc.NewAlert(event); err != nil {
		a.procError(err, event, "error storing alert event")
	}

	payload := map[string]interface{}{
		"id":            event.ID,
		"session":       event.SessionID,
		"source":        event.Source,
		"label":         "drowsiness",
		"counter":       event.Counter,
		"threshold":     event.Threshold,
		"faces":         event.Faces,
		"alertImageURL": event.SnapshotPath,
		"timestamp":     alert.Timestamp.Format(time.RFC3339),
	}
	if err := a.svcs.WebhookSvc.Post(ctx, payload); err != nil {
		a.procError(err, event, "error posting alert webhook")
	}

	return true
}

func (a *Alerter) snapshot(event model.AlertEvent, frame gocv.Mat) (string, error) {
	folder := a.svcs.CfgSvc.GetRecordingsFolder()
	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", err
	}

	fn := filepath.Join(folder, fmt.Sprintf("%s_alerted_frame_%d.jpg", event.SessionID, event.Timestamp))
	if !gocv.IMWrite(fn, frame) {
		return "", fmt.Errorf("could not encode %s", fn)
	}
	return fn, nil
}

func (a *Alerter) logEvent(event model.AlertEvent) error {
	if a.events == nil {
		return nil
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = a.events.Write(append(jsonData, '\n'))
	return err
}

func (a *Alerter) procError(err error, event model.AlertEvent, message string) {
	a.stats.Errors++
	lgr.Logger.Error(
		message,
		slog.String("alertID", event.ID),
		slog.Any("error", err),
	)

	e := a.svcs.DataSvc.NewError(model.GenError("monitor_alerter",
		err,
		map[string]interface{}{"alertID": event.ID, "session": event.SessionID},
		"%s", message))
	if e != nil {
		lgr.Logger.Error(
			"failed to store error",
			slog.Any("error", e),
		)
	}
}

func (a *Alerter) Stats() model.AlerterStats {
	s := a.stats
	s.Uptime = int64(a.svcs.Clock.Since(a.startTime).Seconds())
	return s
}

// Close persists the alerter stats and closes the event log.
func (a *Alerter) Close() error {
	if err := a.svcs.DataSvc.NewAlerterStats(a.Stats()); err != nil {
		lgr.Logger.Error(
			"failed to store alerter stats",
			slog.Any("error", err),
		)
	}

	if a.events != nil {
		return a.events.Close()
	}
	return nil
}
