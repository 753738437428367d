package mode

import (
	"context"

	"github.com/khaledhikmat/drowsy-go/pipeline"
)

// Headless runs without a window, for machines with no display. Alerts are
// still logged and dispatched; a termination signal stops it.
func Headless(canxCtx context.Context, svcs pipeline.ServicesFactory) error {
	return run(canxCtx, svcs, "headless", pipeline.NewHeadlessRenderer(svcs.CfgSvc.GetKeyPollDelay()))
}
