package model

import (
	"fmt"
	"image"
	"runtime/debug"
	"time"
)

type CustomError struct {
	Processor  string                 `json:"processor"`
	Inner      error                  `json:"innerError"`
	Message    string                 `json:"message"`
	StackTrace string                 `json:"stackTrace"`
	Misc       map[string]interface{} `json:"misc"`
}

func (e CustomError) Error() string {
	if e.Inner == nil {
		return fmt.Sprintf("%s: %s", e.Processor, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Processor, e.Message, e.Inner)
}

func (e CustomError) Unwrap() error {
	return e.Inner
}

func GenError(proc string, err error, misc map[string]interface{}, messagef string, args ...interface{}) CustomError {
	return CustomError{
		Processor:  proc,
		Inner:      err,
		Message:    fmt.Sprintf(messagef, args...),
		StackTrace: string(debug.Stack()),
		Misc:       misc,
	}
}

// FaceRegion is a detected face and the eyes detected inside it.
// All rectangles are in frame coordinates.
type FaceRegion struct {
	Face image.Rectangle   `json:"face"`
	Eyes []image.Rectangle `json:"eyes"`
}

// FrameDetections holds the detector output for one frame.
type FrameDetections struct {
	Faces     []FaceRegion `json:"faces"`
	Timestamp time.Time    `json:"timestamp"`
}

type AlertEvent struct {
	ID           string `json:"id"`
	SessionID    string `json:"sessionId"`
	Source       string `json:"source"`
	Counter      int    `json:"counter"`   // Consecutive eyes-closed frames when the alert fired
	Threshold    int    `json:"threshold"` // Alarm threshold in effect
	Faces        int    `json:"faces"`
	SnapshotPath string `json:"snapshotPath"`
	Timestamp    int64  `json:"timestamp"`
}

type AlerterStats struct {
	Name       string `json:"name"`
	Alerts     int    `json:"alerts"`
	Suppressed int    `json:"suppressed"` // Alerts swallowed by the cooldown
	Errors     int    `json:"errors"`
	Uptime     int64  `json:"uptime"`
	Timestamp  int64  `json:"timestamp"`
}

type SessionStats struct {
	SessionID        string  `json:"sessionId"`
	Mode             string  `json:"mode"`
	Source           string  `json:"source"`
	Frames           int     `json:"frames"`
	NoFaceFrames     int     `json:"noFaceFrames"`
	EyesClosedFrames int     `json:"eyesClosedFrames"` // Qualifying frames (face, no eyes)
	AlertingFrames   int     `json:"alertingFrames"`
	Alerts           int     `json:"alerts"`
	ReadErrors       int     `json:"readErrors"`
	MaxCounter       int     `json:"maxCounter"`
	FPS              float64 `json:"fps"`
	AvgProcTime      float64 `json:"avgProcTime"` // Seconds
	P95ProcTime      float64 `json:"p95ProcTime"` // Seconds
	Uptime           int64   `json:"uptime"`
	Timestamp        int64   `json:"timestamp"`
}
