// Package renderer draws the box field.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boxfield/camera"
	"github.com/pthm-cable/boxfield/config"
	"github.com/pthm-cable/boxfield/systems"
)

// Line width changes only take effect when the batch is flushed, so boxes are
// grouped into a few width buckets and each bucket is drawn in its own pass.
const lineBuckets = 4

// BoxRenderer draws the field as wireframe cubes.
//
// Scene space has y pointing down the screen and z toward the viewer. The
// raylib camera sits on the -z side with up = -y, so a scene point
// (x, y, z) is drawn at (x, y, -z).
type BoxRenderer struct {
	color    rl.Color
	edge     float32
	widthMin float32
	widthMax float32

	buckets [lineBuckets][]systems.Renderable
}

// NewBoxRenderer creates a renderer using the configured colour and sizes.
func NewBoxRenderer(cfg *config.Config) *BoxRenderer {
	r := &BoxRenderer{}
	r.SetConfig(cfg)
	return r
}

// SetConfig updates colour, edge length and stroke range.
func (r *BoxRenderer) SetConfig(cfg *config.Config) {
	c := cfg.Render.StrokeColor
	r.color = rl.Color{R: c.R, G: c.G, B: c.B, A: 255}
	r.edge = float32(cfg.Box.Size * cfg.Render.DrawScale)
	r.widthMin = float32(cfg.Render.StrokeWidthMin)
	r.widthMax = float32(cfg.Render.StrokeWidthMax)
}

// Camera3D builds the raylib camera matching the viewport model.
func Camera3D(cam *camera.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   rl.NewVector3(0, 0, -cam.EyeZ()),
		Target:     rl.NewVector3(0, 0, 0),
		Up:         rl.NewVector3(0, -1, 0),
		Fovy:       cam.FovY,
		Projection: rl.CameraPerspective,
	}
}

// Draw renders the boxes. Call between BeginDrawing and EndDrawing.
func (r *BoxRenderer) Draw(cam *camera.Camera, items []systems.Renderable) {
	for i := range r.buckets {
		r.buckets[i] = r.buckets[i][:0]
	}
	for _, it := range items {
		i := bucketFor(it.StrokeWidth, r.widthMin, r.widthMax)
		r.buckets[i] = append(r.buckets[i], it)
	}

	cam3d := Camera3D(cam)
	for i, bucket := range r.buckets {
		if len(bucket) == 0 {
			continue
		}
		rl.BeginMode3D(cam3d)
		rl.SetLineWidth(bucketWidth(i, r.widthMin, r.widthMax))
		for _, it := range bucket {
			col := r.color
			col.A = it.Alpha
			rl.DrawCubeWires(rl.NewVector3(it.X, it.Y, -it.Z), r.edge, r.edge, r.edge, col)
		}
		rl.EndMode3D()
	}
	rl.SetLineWidth(1)
}

// bucketFor returns the width bucket for w in [lo, hi].
func bucketFor(w, lo, hi float32) int {
	if hi <= lo {
		return 0
	}
	i := int((w - lo) / (hi - lo) * lineBuckets)
	return max(0, min(lineBuckets-1, i))
}

// bucketWidth returns the line width drawn for bucket i: its midpoint.
func bucketWidth(i int, lo, hi float32) float32 {
	step := (hi - lo) / lineBuckets
	return lo + step*(float32(i)+0.5)
}
