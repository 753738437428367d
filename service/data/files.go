package data

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/xerrors"

	"github.com/khaledhikmat/drowsy-go/model"
	"github.com/khaledhikmat/drowsy-go/service/config"
)

type filesDBService struct {
	CfgSvc config.IService
}

// NewFilesDB stores every entity kind as a JSON array in the input folder.
func NewFilesDB(cfgsvc config.IService) (IService, error) {
	if err := os.MkdirAll(cfgsvc.GetInputFolder(), 0755); err != nil {
		return nil, xerrors.Errorf("creating input folder %s: %w", cfgsvc.GetInputFolder(), err)
	}

	return &filesDBService{
		CfgSvc: cfgsvc,
	}, nil
}

func (svc *filesDBService) NewError(err interface{}) error {
	return newEntity(toErrorRecord(err, time.Now().Unix()), "errors", svc.CfgSvc)
}

func (svc *filesDBService) RetrieveErrors() ([]ErrorRecord, error) {
	return retrieveEntites[ErrorRecord]("errors", svc.CfgSvc)
}

func (svc *filesDBService) NewAlert(alert model.AlertEvent) error {
	if alert.Timestamp == 0 {
		alert.Timestamp = time.Now().Unix()
	}
	return newEntity(alert, "alerts", svc.CfgSvc)
}

func (svc *filesDBService) RetrieveAlerts(sessionID string) ([]model.AlertEvent, error) {
	alerts, err := retrieveEntites[model.AlertEvent]("alerts", svc.CfgSvc)
	if err != nil {
		return nil, err
	}

	if sessionID == "" {
		return alerts, nil
	}

	var result []model.AlertEvent
	for _, alert := range alerts {
		if alert.SessionID == sessionID {
			result = append(result, alert)
		}
	}

	return result, nil
}

func (svc *filesDBService) NewAlerterStats(stats model.AlerterStats) error {
	stats.Timestamp = time.Now().Unix()
	return newEntity(stats, "alerter-stats", svc.CfgSvc)
}

func (svc *filesDBService) NewSessionStats(stats model.SessionStats) error {
	stats.Timestamp = time.Now().Unix()
	return newEntity(stats, "session-stats", svc.CfgSvc)
}

func (svc *filesDBService) RetrieveSessionStats() ([]model.SessionStats, error) {
	return retrieveEntites[model.SessionStats]("session-stats", svc.CfgSvc)
}

func (svc *filesDBService) Finalize() error {
	return nil
}

func entityFile(filename string, cfgsvc config.IService) string {
	return fmt.Sprintf("%s/%s.json", cfgsvc.GetInputFolder(), filename)
}

func newEntity[T any](entity T, filename string, cfgsvc config.IService) error {
	entities, err := retrieveEntites[T](filename, cfgsvc)
	if err != nil {
		return err
	}

	entities = append(entities, entity)

	data, err := json.MarshalIndent(entities, "", "  ")
	if err != nil {
		return xerrors.Errorf("marshalling %s: %w", filename, err)
	}

	// Rewrite the whole file (with truncation)
	err = os.WriteFile(entityFile(filename, cfgsvc), data, 0644)
	if err != nil {
		return xerrors.Errorf("writing %s: %w", filename, err)
	}

	return nil
}

func retrieveEntites[T any](filename string, cfgsvc config.IService) ([]T, error) {
	entities := []T{}

	data, err := os.ReadFile(entityFile(filename, cfgsvc))
	if os.IsNotExist(err) {
		// WARNING: File not found, return empty slice
		return entities, nil
	}
	if err != nil {
		return nil, xerrors.Errorf("reading %s: %w", filename, err)
	}

	if len(data) == 0 {
		return entities, nil
	}

	err = json.Unmarshal(data, &entities)
	if err != nil {
		return nil, xerrors.Errorf("unmarshalling %s: %w", filename, err)
	}

	return entities, nil
}
