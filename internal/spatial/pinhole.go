package spatial

import "github.com/ayusman/kathak/internal/skeleton"

// Intrinsics describe a pinhole camera model.
type Intrinsics struct {
	FX     float64 `yaml:"fx"`
	FY     float64 `yaml:"fy"`
	CX     float64 `yaml:"cx"`
	CY     float64 `yaml:"cy"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
}

// DefaultIntrinsics returns the nominal Kinect v2 depth camera intrinsics
// for its 512x424 depth image.
func DefaultIntrinsics() Intrinsics {
	return Intrinsics{
		FX:     365.456,
		FY:     365.456,
		CX:     254.878,
		CY:     205.395,
		Width:  512,
		Height: 424,
	}
}

// Pinhole projects camera-space points onto the depth image plane.
type Pinhole struct {
	in Intrinsics
}

// NewPinhole creates a pinhole projector.
func NewPinhole(in Intrinsics) *Pinhole {
	return &Pinhole{in: in}
}

// Intrinsics returns the projector's camera model.
func (p *Pinhole) Intrinsics() Intrinsics {
	return p.in
}

// Project maps p onto the image plane. Camera Y is up, display Y is down.
// Z must be positive; callers go through Mapper, which clamps negative depth.
func (p *Pinhole) Project(pt skeleton.Point3D) Point2D {
	return Point2D{
		X: p.in.CX + p.in.FX*pt.X/pt.Z,
		Y: p.in.CY - p.in.FY*pt.Y/pt.Z,
	}
}
