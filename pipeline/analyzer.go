package pipeline

import (
	"image"
	"time"

	"github.com/samber/lo"
	"gocv.io/x/gocv"

	"github.com/khaledhikmat/drowsy-go/model"
)

// Analyzer runs the face detector on the whole frame and the eye detector
// inside each face.
type Analyzer struct {
	faces      Detector
	eyes       Detector
	preprocess func(frame gocv.Mat, gray *gocv.Mat) error
}

func NewAnalyzer(faces, eyes Detector) *Analyzer {
	return &Analyzer{faces: faces, eyes: eyes, preprocess: Preprocess}
}

// Prepare fills gray with the detector input for frame.
func (a *Analyzer) Prepare(frame gocv.Mat, gray *gocv.Mat) error {
	return a.preprocess(frame, gray)
}

// Preprocess converts a BGR frame to an equalised grayscale image in gray.
func Preprocess(frame gocv.Mat, gray *gocv.Mat) error {
	if err := gocv.CvtColor(frame, gray, gocv.ColorBGRToGray); err != nil {
		return err
	}
	// Contrast normalisation helps the cascades under poor lighting
	gocv.EqualizeHist(*gray, gray)
	return nil
}

// Analyze returns the faces found in gray along with the eyes found in each
// face. Eye rectangles are translated to frame coordinates.
func (a *Analyzer) Analyze(gray gocv.Mat, ts time.Time) model.FrameDetections {
	faces := a.faces.Detect(gray)
	bounds := image.Rect(0, 0, gray.Cols(), gray.Rows())

	regions := lo.Map(faces, func(face image.Rectangle, _ int) model.FaceRegion {
		roi := face.Intersect(bounds)
		if roi.Empty() {
			return model.FaceRegion{Face: face}
		}

		region := gray.Region(roi)
		defer region.Close()

		eyes := lo.Map(a.eyes.Detect(region), func(eye image.Rectangle, _ int) image.Rectangle {
			return eye.Add(roi.Min)
		})
		return model.FaceRegion{Face: face, Eyes: eyes}
	})

	return model.FrameDetections{
		Faces:     regions,
		Timestamp: ts,
	}
}
