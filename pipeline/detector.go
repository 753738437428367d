package pipeline

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mdobak/go-xerrors"
	"gocv.io/x/gocv"

	"github.com/khaledhikmat/drowsy-go/service/config"
	"github.com/khaledhikmat/drowsy-go/service/lgr"
)

// Detector finds axis-aligned boxes of one object class in a grayscale image.
// An empty result is a normal outcome.
type Detector interface {
	Detect(gray gocv.Mat) []image.Rectangle
	Close() error
}

type cascadeDetector struct {
	name       string
	classifier gocv.CascadeClassifier
	params     config.DetectorParameters
}

// LoadCascade loads a Haar cascade by path or by built-in name.
func LoadCascade(name string, params config.DetectorParameters, cascadesFolder string) (Detector, error) {
	path, err := ResolveCascadePath(params.Model, cascadesFolder)
	if err != nil {
		return nil, err
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, xerrors.New(fmt.Sprintf("error loading %s cascade %s", name, path))
	}

	lgr.Logger.Info(
		"cascade loaded",
		slog.String("detector", name),
		slog.String("path", path),
		slog.Float64("scaleFactor", params.ScaleFactor),
		slog.Int("minNeighbors", params.MinNeighbors),
		slog.Int("minSize", params.MinSize),
	)

	return &cascadeDetector{
		name:       name,
		classifier: classifier,
		params:     params,
	}, nil
}

func (d *cascadeDetector) Detect(gray gocv.Mat) []image.Rectangle {
	if gray.Empty() {
		return nil
	}
	return d.classifier.DetectMultiScaleWithParams(gray,
		d.params.ScaleFactor,
		d.params.MinNeighbors,
		0,
		image.Pt(d.params.MinSize, d.params.MinSize),
		image.Pt(0, 0))
}

func (d *cascadeDetector) Close() error {
	return d.classifier.Close()
}

// ResolveCascadePath returns model when it names an existing file, otherwise
// the same name inside the cascades folder.
func ResolveCascadePath(model, cascadesFolder string) (string, error) {
	if model == "" {
		return "", xerrors.New("no cascade model configured")
	}

	candidates := []string{model}
	if !filepath.IsAbs(model) && cascadesFolder != "" {
		candidates = append(candidates, filepath.Join(cascadesFolder, model))
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}

	return "", xerrors.New(fmt.Sprintf("cascade %s not found (looked in %v)", model, candidates))
}
