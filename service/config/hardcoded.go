package config

import (
	"log/slog"
	"path/filepath"

	"github.com/khaledhikmat/drowsy-go/service/lgr"
)

type settingsService struct {
	Settings Settings
}

// NewHardCoded returns the built-in defaults.
func NewHardCoded() IService {
	return &settingsService{
		Settings: Defaults(),
	}
}

// New validates the settings and wraps them in a config service.
func New(settings Settings) (IService, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settingsService{
		Settings: settings,
	}, nil
}

func (svc *settingsService) GetModeMaxShutdownTime() int {
	return svc.Settings.ModeMaxShutdownTime
}

func (svc *settingsService) GetInputFolder() string {
	return svc.Settings.InputFolder
}

func (svc *settingsService) GetRecordingsFolder() string {
	return svc.Settings.RecordingsFolder
}

func (svc *settingsService) GetCascadesFolder() string {
	return svc.Settings.CascadesFolder
}

func (svc *settingsService) GetCameraParameters() CameraParameters {
	return svc.Settings.Camera
}

func (svc *settingsService) GetDetectorParameters(name string) DetectorParameters {
	if name == FaceDetectorName {
		return svc.Settings.FaceDetector
	}

	if name == EyeDetectorName {
		return svc.Settings.EyeDetector
	}

	lgr.Logger.Warn("unknown detector requested", slog.String("name", name))
	return DetectorParameters{}
}

func (svc *settingsService) GetAlarmThreshold() int {
	return svc.Settings.AlarmThreshold
}

func (svc *settingsService) GetAlerterParameters() AlerterParameters {
	return svc.Settings.Alerter
}

func (svc *settingsService) GetWindowName() string {
	return svc.Settings.WindowName
}

// GetQuitKey returns the key code compared against the low byte of WaitKey.
func (svc *settingsService) GetQuitKey() int {
	r := []rune(svc.Settings.QuitKey)
	if len(r) == 0 {
		return 'q'
	}
	return int(r[0]) & 0xFF
}

func (svc *settingsService) GetKeyPollDelay() int {
	return svc.Settings.KeyPollDelay
}

func (svc *settingsService) GetDataStore() string {
	return svc.Settings.DataStore
}

func (svc *settingsService) GetSqlitePath() string {
	if svc.Settings.SqlitePath == "" {
		return filepath.Join(svc.GetInputFolder(), "drowsy.db")
	}
	return svc.Settings.SqlitePath
}
