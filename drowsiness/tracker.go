// Package drowsiness holds the per-frame decision logic of the monitor.
// It has no imaging dependency: it consumes detection counts and returns
// the updated run-length counter together with the alert flag.
package drowsiness

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/khaledhikmat/drowsy-go/model"
)

// DefaultAlarmThreshold is the number of consecutive eyes-closed frames
// before an alert is raised.
const DefaultAlarmThreshold = 15

type Status int

const (
	Awake Status = iota
	Alerting
)

func (s Status) String() string {
	switch s {
	case Awake:
		return "awake"
	case Alerting:
		return "alerting"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// State is the only quantity carried from one frame to the next.
type State struct {
	ConsecutiveEyesClosedFrames int
}

// Status derives the logical state from the counter.
func (s State) Status(threshold int) Status {
	if s.ConsecutiveEyesClosedFrames >= threshold {
		return Alerting
	}
	return Awake
}

type Tracker struct {
	threshold int
}

func NewTracker(threshold int) (Tracker, error) {
	if threshold <= 0 {
		return Tracker{}, fmt.Errorf("alarm threshold must be positive, got %d", threshold)
	}
	return Tracker{threshold: threshold}, nil
}

func (t Tracker) Threshold() int {
	return t.threshold
}

// Update applies one frame to the state. A frame without faces or with
// eyes in any face resets the counter; a frame with faces but no eyes
// increments it. The alert flag is recomputed from the counter every call.
func (t Tracker) Update(s State, faceCount int, eyesFoundInAnyFace bool) (State, bool) {
	if faceCount <= 0 || eyesFoundInAnyFace {
		return State{}, false
	}

	next := State{ConsecutiveEyesClosedFrames: s.ConsecutiveEyesClosedFrames + 1}
	return next, next.ConsecutiveEyesClosedFrames >= t.threshold
}

// EyesFoundInAnyFace reports whether at least one face region has at least
// one eye.
func EyesFoundInAnyFace(faces []model.FaceRegion) bool {
	return lo.SomeBy(faces, func(f model.FaceRegion) bool {
		return len(f.Eyes) > 0
	})
}

// Decision is the outcome of one frame.
type Decision struct {
	Faces     int
	EyesFound bool
	Counter   int
	Alert     bool
	// Entered is true on the frame that moves the tracker from AWAKE to ALERTING.
	Entered bool
}

// Step aggregates the frame detections and updates the state.
func (t Tracker) Step(s State, dets model.FrameDetections) (State, Decision) {
	eyes := EyesFoundInAnyFace(dets.Faces)
	wasAlerting := s.Status(t.threshold) == Alerting

	next, alert := t.Update(s, len(dets.Faces), eyes)
	return next, Decision{
		Faces:     len(dets.Faces),
		EyesFound: eyes,
		Counter:   next.ConsecutiveEyesClosedFrames,
		Alert:     alert,
		Entered:   alert && !wasAlerting,
	}
}
