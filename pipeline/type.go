package pipeline

import (
	"time"

	"github.com/benbjohnson/clock"
	"go.opentelemetry.io/otel/trace"
	"gocv.io/x/gocv"

	"github.com/khaledhikmat/drowsy-go/drowsiness"
	"github.com/khaledhikmat/drowsy-go/model"
	"github.com/khaledhikmat/drowsy-go/service/config"
	"github.com/khaledhikmat/drowsy-go/service/data"
	"github.com/khaledhikmat/drowsy-go/service/webhook"
)

type ServicesFactory struct {
	CfgSvc     config.IService
	DataSvc    data.IService
	WebhookSvc webhook.IService
	Tracer     trace.Tracer
	Clock      clock.Clock
}

type FrameData struct {
	Mat       gocv.Mat
	Timestamp time.Time
}

type AlertData struct {
	Mat       *gocv.Mat // Frame that triggered the alert, may be nil in headless tests
	SessionID string
	Source    string
	Decision  drowsiness.Decision
	Detection model.FrameDetections
	Timestamp time.Time
}
