package viz

import (
	"math"
	"sort"

	"github.com/san-kum/gaslab/internal/gas"
)

// Camera projects world space onto the canvas: axis rotations, a zoom
// factor, then a perspective divide against a fixed viewing distance.
type Camera struct {
	Distance         float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 5, Zoom: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Rotate applies the camera's axis rotations to a world point.
func (c *Camera) Rotate(p gas.Vec3) gas.Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project maps a world point to pixel coordinates on a sw x sh pixel
// screen. depth orders draws back to front; ok reports whether the
// point lands on screen.
func (c *Camera) Project(p gas.Vec3, sw, sh int) (x, y int, depth float64, ok bool) {
	rot := c.Rotate(p).Scale(c.Zoom)
	if rot.Z >= c.Distance-0.1 {
		return 0, 0, 0, false
	}
	persp := c.Distance / (c.Distance - rot.Z)
	minDim := float64(sh)
	if float64(sw) < minDim {
		minDim = float64(sw)
	}
	scale := persp * minDim / 3.0
	x = int(rot.X*scale) + sw/2
	y = int(-rot.Y*scale) + sh/2
	return x, y, rot.Z, x >= 0 && x < sw && y >= 0 && y < sh
}

// Edge is a line segment in world space; a degenerate edge with
// Start == End renders as a single point.
type Edge struct {
	Start, End gas.Vec3
}

type Wireframe struct {
	Edges []Edge
}

func NewWireframe() *Wireframe             { return &Wireframe{} }
func (w *Wireframe) AddEdge(s, e gas.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) AddPoint(p gas.Vec3)   { w.Edges = append(w.Edges, Edge{p, p}) }
func (w *Wireframe) Clear()                { w.Edges = w.Edges[:0] }

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render3D projects a wireframe and draws it back to front with a
// painter's sort.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	sw, sh := c.Width*2, c.Height*4

	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, ok1 := cam.Project(e.Start, sw, sh)
		x2, y2, d2, ok2 := cam.Project(e.End, sw, sh)
		if ok1 || ok2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })

	for _, e := range proj {
		if e.x1 == e.x2 && e.y1 == e.y2 {
			c.Set(e.x1, e.y1)
		} else {
			c.DrawLine(e.x1, e.y1, e.x2, e.y2)
		}
	}
}

// CreateCubeWireframe builds a cube of the given side length centered
// at the origin, the render-space shape of the simulation box.
func CreateCubeWireframe(size float64) *Wireframe {
	w, s := NewWireframe(), size/2
	v := []gas.Vec3{
		{X: -s, Y: -s, Z: -s}, {X: s, Y: -s, Z: -s}, {X: s, Y: s, Z: -s}, {X: -s, Y: s, Z: -s},
		{X: -s, Y: -s, Z: s}, {X: s, Y: -s, Z: s}, {X: s, Y: s, Z: s}, {X: -s, Y: s, Z: s},
	}
	edges := [][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	for _, e := range edges {
		w.AddEdge(v[e[0]], v[e[1]])
	}
	return w
}
