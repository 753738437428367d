package mode

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khaledhikmat/drowsy-go/pipeline"
	"github.com/khaledhikmat/drowsy-go/service/config"
	"github.com/khaledhikmat/drowsy-go/service/data"
	"github.com/khaledhikmat/drowsy-go/service/webhook"
)

func TestHeadlessFailsWithoutCascades(t *testing.T) {
	dir := t.TempDir()
	s := config.Defaults()
	s.InputFolder = filepath.Join(dir, "settings")
	s.CascadesFolder = filepath.Join(dir, "cascades")
	s.FaceDetector.Model = "missing_face.xml"

	cfgSvc, err := config.New(s)
	require.NoError(t, err)
	dataSvc, err := data.NewFilesDB(cfgSvc)
	require.NoError(t, err)

	err = Headless(context.Background(), pipeline.ServicesFactory{
		CfgSvc:     cfgSvc,
		DataSvc:    dataSvc,
		WebhookSvc: webhook.NewFake(cfgSvc),
		Clock:      clock.NewMock(),
	})
	assert.ErrorContains(t, err, "missing_face.xml")

	// Nothing ran, so no session was recorded
	sessions, err := dataSvc.RetrieveSessionStats()
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
