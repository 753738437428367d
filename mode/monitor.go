package mode

import (
	"context"

	"github.com/khaledhikmat/drowsy-go/pipeline"
)

// Monitor shows the annotated feed in a window. The quit key or a
// termination signal stops it.
func Monitor(canxCtx context.Context, svcs pipeline.ServicesFactory) error {
	renderer := pipeline.NewWindowRenderer(svcs.CfgSvc.GetWindowName(), svcs.CfgSvc.GetKeyPollDelay())
	return run(canxCtx, svcs, "monitor", renderer)
}
