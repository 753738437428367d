package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	svc := NewHardCoded()

	cam := svc.GetCameraParameters()
	assert.Equal(t, 0, cam.Device)
	assert.Equal(t, 640, cam.Width)
	assert.Equal(t, 480, cam.Height)
	assert.Equal(t, 0, cam.ReadRetries)
	assert.Equal(t, 15, svc.GetAlarmThreshold())

	face := svc.GetDetectorParameters(FaceDetectorName)
	assert.Equal(t, 1.2, face.ScaleFactor)
	assert.Equal(t, 5, face.MinNeighbors)
	assert.Equal(t, 100, face.MinSize)

	eye := svc.GetDetectorParameters(EyeDetectorName)
	assert.Equal(t, 1.1, eye.ScaleFactor)
	assert.Equal(t, 10, eye.MinNeighbors)
	assert.Equal(t, 30, eye.MinSize)

	assert.Equal(t, int('q'), svc.GetQuitKey())
	assert.Equal(t, 1, svc.GetKeyPollDelay())
	assert.Equal(t, DetectorParameters{}, svc.GetDetectorParameters("mouth"))

	require.NoError(t, Defaults().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Settings)
		errMsg string
	}{
		{name: "zero threshold", mutate: func(s *Settings) { s.AlarmThreshold = 0 }, errMsg: "alarm threshold"},
		{name: "negative device", mutate: func(s *Settings) { s.Camera.Device = -1 }, errMsg: "camera device"},
		{name: "unknown backend", mutate: func(s *Settings) { s.Camera.Backend = "directx" }, errMsg: "backend"},
		{name: "bad frame size", mutate: func(s *Settings) { s.Camera.Width = 0 }, errMsg: "frame size"},
		{name: "scale factor", mutate: func(s *Settings) { s.EyeDetector.ScaleFactor = 1.0 }, errMsg: "eye detector scale factor"},
		{name: "missing model", mutate: func(s *Settings) { s.FaceDetector.Model = "" }, errMsg: "face detector model"},
		{name: "quit key", mutate: func(s *Settings) { s.QuitKey = "qq" }, errMsg: "quit key"},
		{name: "webhook url", mutate: func(s *Settings) { s.Alerter.WebhookURL = "not a url" }, errMsg: "webhook"},
		{name: "data store", mutate: func(s *Settings) { s.DataStore = "redis" }, errMsg: "data store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(&s)
			_, err := New(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewKeepsOverrides(t *testing.T) {
	s := Defaults()
	s.AlarmThreshold = 45
	s.Camera.Source = "clip.mp4"
	s.Camera.Device = -1
	s.QuitKey = "x"
	s.Alerter.WebhookURL = "http://localhost:9000/hooks/drowsy"
	s.DataStore = DataStoreSqlite
	s.SqlitePath = ""

	svc, err := New(s)
	require.NoError(t, err)
	assert.Equal(t, 45, svc.GetAlarmThreshold())
	assert.Equal(t, "clip.mp4", svc.GetCameraParameters().Source)
	assert.Equal(t, int('x'), svc.GetQuitKey())
	assert.Equal(t, filepath.Join("settings", "drowsy.db"), svc.GetSqlitePath())
	assert.Equal(t, DataStoreSqlite, svc.GetDataStore())
}

func TestSqlitePathFollowsInputFolder(t *testing.T) {
	s := Defaults()
	s.InputFolder = "/var/lib/drowsy"
	s.DataStore = DataStoreSqlite

	svc, err := New(s)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/var/lib/drowsy", "drowsy.db"), svc.GetSqlitePath())

	s.SqlitePath = "/tmp/elsewhere.db"
	svc, err = New(s)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/elsewhere.db", svc.GetSqlitePath())
}
