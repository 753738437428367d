package webhook

import (
	"context"
	"sync"

	"github.com/khaledhikmat/drowsy-go/service/config"
)

// FakeService records payloads instead of sending them.
type FakeService struct {
	CfgSvc   config.IService
	mu       sync.Mutex
	Payloads []map[string]interface{}
}

func NewFake(cfgsvc config.IService) *FakeService {
	return &FakeService{
		CfgSvc: cfgsvc,
	}
}

func (svc *FakeService) Post(_ context.Context, payload map[string]interface{}) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.Payloads = append(svc.Payloads, payload)
	return nil
}
