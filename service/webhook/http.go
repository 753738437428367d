package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"golang.org/x/xerrors"

	"github.com/khaledhikmat/drowsy-go/service/config"
)

type httpService struct {
	CfgSvc config.IService
	client *http.Client
	url    string
}

func NewHTTP(cfgsvc config.IService) IService {
	params := cfgsvc.GetAlerterParameters()
	return &httpService{
		CfgSvc: cfgsvc,
		client: &http.Client{Timeout: time.Duration(params.WebhookTimeout) * time.Second},
		url:    params.WebhookURL,
	}
}

func (svc *httpService) Post(ctx context.Context, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return xerrors.Errorf("marshalling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.url, bytes.NewReader(body))
	if err != nil {
		return xerrors.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := svc.client.Do(req)
	if err != nil {
		return xerrors.Errorf("posting webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return xerrors.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
