// Package overlay draws mapped skeletons and hand states onto an image for
// the live preview stream.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"gocv.io/x/gocv"

	"github.com/ayusman/kathak/internal/pipeline"
	"github.com/ayusman/kathak/internal/skeleton"
	"github.com/ayusman/kathak/internal/spatial"
)

// bones are the joint pairs connected in the drawing.
var bones = [][2]skeleton.JointType{
	{skeleton.Head, skeleton.Neck},
	{skeleton.Neck, skeleton.SpineShoulder},
	{skeleton.SpineShoulder, skeleton.SpineMid},
	{skeleton.SpineMid, skeleton.SpineBase},
	{skeleton.SpineShoulder, skeleton.ShoulderRight},
	{skeleton.SpineShoulder, skeleton.ShoulderLeft},
	{skeleton.SpineBase, skeleton.HipRight},
	{skeleton.SpineBase, skeleton.HipLeft},

	{skeleton.ShoulderRight, skeleton.ElbowRight},
	{skeleton.ElbowRight, skeleton.WristRight},
	{skeleton.WristRight, skeleton.HandRight},
	{skeleton.HandRight, skeleton.HandTipRight},
	{skeleton.WristRight, skeleton.ThumbRight},

	{skeleton.ShoulderLeft, skeleton.ElbowLeft},
	{skeleton.ElbowLeft, skeleton.WristLeft},
	{skeleton.WristLeft, skeleton.HandLeft},
	{skeleton.HandLeft, skeleton.HandTipLeft},
	{skeleton.WristLeft, skeleton.ThumbLeft},

	{skeleton.HipRight, skeleton.KneeRight},
	{skeleton.KneeRight, skeleton.AnkleRight},
	{skeleton.AnkleRight, skeleton.FootRight},

	{skeleton.HipLeft, skeleton.KneeLeft},
	{skeleton.KneeLeft, skeleton.AnkleLeft},
	{skeleton.AnkleLeft, skeleton.FootLeft},
}

var (
	background  = gocv.NewScalar(24, 24, 24, 0)
	boneColor   = color.RGBA{R: 200, G: 200, B: 200, A: 0}
	driverColor = color.RGBA{R: 255, G: 200, B: 0, A: 0}
	jointColor  = color.RGBA{R: 120, G: 160, B: 255, A: 0}
	textColor   = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	activeColor = color.RGBA{R: 0, G: 220, B: 0, A: 0}
	idleColor   = color.RGBA{R: 160, G: 160, B: 160, A: 0}
)

// HandColor returns the marker color for a hand state, and false for states
// that are not drawn.
func HandColor(state skeleton.HandState) (color.RGBA, bool) {
	switch state {
	case skeleton.HandClosed:
		return color.RGBA{R: 255, A: 0}, true
	case skeleton.HandOpen:
		return color.RGBA{G: 255, A: 0}, true
	case skeleton.HandLasso:
		return color.RGBA{B: 255, A: 0}, true
	}
	return color.RGBA{}, false
}

// Renderer draws frame results on a canvas the size of the display space.
type Renderer struct {
	width  int
	height int
}

// NewRenderer creates a Renderer for a display of the given size.
func NewRenderer(width, height int) *Renderer {
	return &Renderer{width: width, height: height}
}

// Size returns the canvas width and height.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// Render draws res onto a new image. The caller must Close it.
func (r *Renderer) Render(res pipeline.Result) gocv.Mat {
	img := gocv.NewMatWithSizeFromScalar(background, r.height, r.width, gocv.MatTypeCV8UC3)

	bodies := make([]pipeline.BodySnapshot, len(res.Bodies))
	copy(bodies, res.Bodies)
	// Driver on top.
	sort.SliceStable(bodies, func(i, j int) bool { return !bodies[i].Driver && bodies[j].Driver })

	for _, b := range bodies {
		r.drawBody(&img, b)
	}

	status, statusColor := "inactive", idleColor
	if res.Active {
		status, statusColor = "active", activeColor
	}
	gocv.PutText(&img, status, image.Pt(8, 20), gocv.FontHersheySimplex, 0.6, statusColor, 2)

	return img
}

// Encode renders res and returns it as JPEG bytes.
func (r *Renderer) Encode(res pipeline.Result) ([]byte, error) {
	img := r.Render(res)
	defer img.Close()

	buf, err := gocv.IMEncode(".jpg", img)
	if err != nil {
		return nil, fmt.Errorf("encode overlay: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

func (r *Renderer) drawBody(img *gocv.Mat, b pipeline.BodySnapshot) {
	lineColor := boneColor
	if b.Driver {
		lineColor = driverColor
	}

	for _, bone := range bones {
		p1, ok1 := b.Joints[bone[0]]
		p2, ok2 := b.Joints[bone[1]]
		if !ok1 || !ok2 {
			continue
		}
		gocv.Line(img, pt(p1), pt(p2), lineColor, 2)
	}

	for _, p := range b.Joints {
		gocv.Circle(img, pt(p), 3, jointColor, -1)
	}

	r.drawHand(img, b.Joints, skeleton.HandLeft, b.HandLeft)
	r.drawHand(img, b.Joints, skeleton.HandRight, b.HandRight)

	if head, ok := b.Joints[skeleton.Head]; ok {
		gocv.PutText(img, fmt.Sprintf("%d", b.ID), pt(head).Add(image.Pt(8, -8)),
			gocv.FontHersheySimplex, 0.4, textColor, 1)
	}
}

func (r *Renderer) drawHand(img *gocv.Mat, joints map[skeleton.JointType]spatial.Point2D, t skeleton.JointType, state skeleton.HandState) {
	p, ok := joints[t]
	if !ok {
		return
	}
	c, ok := HandColor(state)
	if !ok {
		return
	}
	gocv.Circle(img, pt(p), 14, c, 2)
}

func pt(p spatial.Point2D) image.Point {
	return image.Pt(int(p.X), int(p.Y))
}
