package data

import "github.com/khaledhikmat/drowsy-go/model"

type ErrorRecord struct {
	Timestamp  int64                  `json:"timestamp"`
	Processor  string                 `json:"processor"`
	Inner      string                 `json:"innerError"`
	Message    string                 `json:"message"`
	StackTrace string                 `json:"stackTrace"`
	Misc       map[string]interface{} `json:"misc"`
}

type IService interface {
	NewError(err interface{}) error
	RetrieveErrors() ([]ErrorRecord, error)

	NewAlert(alert model.AlertEvent) error
	RetrieveAlerts(sessionID string) ([]model.AlertEvent, error)

	NewAlerterStats(stats model.AlerterStats) error
	NewSessionStats(stats model.SessionStats) error
	RetrieveSessionStats() ([]model.SessionStats, error)

	Finalize() error
}

// toErrorRecord flattens any error, custom or not, into a record that can be
// persisted.
func toErrorRecord(err interface{}, now int64) ErrorRecord {
	rec := ErrorRecord{
		Timestamp:  now,
		Processor:  "N/A",
		StackTrace: "N/A",
	}

	switch e := err.(type) {
	case model.CustomError:
		rec.Processor = e.Processor
		rec.Message = e.Message
		rec.StackTrace = e.StackTrace
		rec.Misc = e.Misc
		if e.Inner != nil {
			rec.Inner = e.Inner.Error()
		}
	case error:
		rec.Inner = e.Error()
		rec.Message = e.Error()
	default:
		rec.Message = "unknown error"
		rec.Misc = map[string]interface{}{"value": e}
	}

	return rec
}
