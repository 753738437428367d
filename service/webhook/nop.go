package webhook

import (
	"context"
	"log/slog"

	"github.com/khaledhikmat/drowsy-go/service/config"
	"github.com/khaledhikmat/drowsy-go/service/lgr"
)

type nopService struct {
	CfgSvc config.IService
}

// NewNop returns a service that drops every payload. It is used when no
// webhook URL is configured.
func NewNop(cfgsvc config.IService) IService {
	return &nopService{
		CfgSvc: cfgsvc,
	}
}

func (svc *nopService) Post(_ context.Context, payload map[string]interface{}) error {
	lgr.Logger.Debug(
		"webhook disabled, payload dropped",
		slog.Any("id", payload["id"]),
	)
	return nil
}
