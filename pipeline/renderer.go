package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"

	"github.com/khaledhikmat/drowsy-go/drowsiness"
	"github.com/khaledhikmat/drowsy-go/model"
)

const alertText = "!!! DROWSINESS ALERT !!!"

var (
	faceColor   = color.RGBA{0, 255, 0, 0}
	eyeColor    = color.RGBA{0, 0, 255, 0}
	alertColor  = color.RGBA{255, 0, 0, 0}
	statusColor = color.RGBA{255, 255, 255, 0}
)

// Renderer shows annotated frames and reports the key pressed, if any.
type Renderer interface {
	// Show displays the frame and polls the keyboard. It returns -1 when no
	// key was pressed.
	Show(frame gocv.Mat) int
	Close() error
}

// Annotate draws the detections, the counter and, when alerting, the alert
// banner onto frame.
func Annotate(frame *gocv.Mat, dets model.FrameDetections, d drowsiness.Decision, threshold int) {
	for _, f := range dets.Faces {
		gocv.Rectangle(frame, f.Face, faceColor, 2)
		for _, e := range f.Eyes {
			gocv.Rectangle(frame, e, eyeColor, 2)
		}
	}

	status := fmt.Sprintf("faces: %d  eyes closed: %d/%d", d.Faces, d.Counter, threshold)
	gocv.PutText(frame, status, image.Pt(10, frame.Rows()-10), gocv.FontHersheySimplex, 0.5, statusColor, 1)

	if d.Alert {
		gocv.PutText(frame, alertText, image.Pt(50, 50), gocv.FontHersheySimplex, 1, alertColor, 3)
	}
}

type windowRenderer struct {
	window *gocv.Window
	delay  int
}

func NewWindowRenderer(name string, pollDelay int) Renderer {
	return &windowRenderer{
		window: gocv.NewWindow(name),
		delay:  pollDelay,
	}
}

func (r *windowRenderer) Show(frame gocv.Mat) int {
	r.window.IMShow(frame)
	key := r.window.WaitKey(r.delay)
	if key < 0 {
		return -1
	}
	return key & 0xFF
}

func (r *windowRenderer) Close() error {
	return r.window.Close()
}

// headlessRenderer displays nothing; quitting is left to the context.
type headlessRenderer struct {
	delay time.Duration
}

func NewHeadlessRenderer(pollDelay int) Renderer {
	return headlessRenderer{delay: time.Duration(pollDelay) * time.Millisecond}
}

// Show only sleeps for the poll delay to avoid spinning on file sources.
func (r headlessRenderer) Show(gocv.Mat) int {
	time.Sleep(r.delay)
	return -1
}

func (headlessRenderer) Close() error {
	return nil
}
