package rasterrenderer

import (
	"image"
	"image/draw"
	"math"

	"github.com/tdewolff/canvas"
	"golang.org/x/image/vector"

	"github.com/ByLCY/glyphcast/layout"
)

// operator 是填充时的合成方式。
type operator int

const (
	// opOver draws the source over the destination.
	opOver operator = iota
	// opSource replaces the destination where the path covers it and
	// blends only at partially covered edges.
	opSource
)

// premul is a premultiplied color with channels in [0, 1].
type premul struct{ r, g, b, a float64 }

// paint 返回设备像素中心处的源颜色。
type paint interface {
	at(x, y float64) premul
}

// solid is a single-color paint.
type solid premul

func solidColor(c layout.Color) solid {
	return solid(premultiply(straight(c)))
}

func (s solid) at(_, _ float64) premul { return premul(s) }

// straightColor 是未预乘的颜色。
type straightColor struct{ r, g, b, a float64 }

func straight(c layout.Color) straightColor {
	return straightColor{
		r: float64(c.R()) / 255,
		g: float64(c.G()) / 255,
		b: float64(c.B()) / 255,
		a: float64(c.A()) / 255,
	}
}

func premultiply(c straightColor) premul {
	return premul{c.r * c.a, c.g * c.a, c.b * c.a, c.a}
}

// linearGradient is a vertical gradient from top at y0 to bottom at y1, in
// layout coordinates. Outside [y0, y1] it is transparent. Colors are
// interpolated unpremultiplied.
type linearGradient struct {
	y0, y1      float64
	top, bottom straightColor
	// toLayout 把设备坐标映射回版面坐标。
	toLayout canvas.Matrix
}

func newLinearGradient(y0, y1 float64, top, bottom layout.Color, toLayout canvas.Matrix) *linearGradient {
	return &linearGradient{y0: y0, y1: y1, top: straight(top), bottom: straight(bottom), toLayout: toLayout}
}

func (g *linearGradient) at(x, y float64) premul {
	p := g.toLayout.Dot(canvas.Point{X: x, Y: y})
	if g.y1 <= g.y0 {
		return premul{}
	}
	t := (p.Y - g.y0) / (g.y1 - g.y0)
	if t < 0 || t > 1 {
		return premul{}
	}
	return premultiply(straightColor{
		r: g.top.r + (g.bottom.r-g.top.r)*t,
		g: g.top.g + (g.bottom.g-g.top.g)*t,
		b: g.top.b + (g.bottom.b-g.top.b)*t,
		a: g.top.a + (g.bottom.a-g.top.a)*t,
	})
}

// surface is a premultiplied RGBA target. Paths are given in layout
// coordinates and mapped to device pixels through the current transform.
type surface struct {
	img  *image.RGBA
	ctm  canvas.Matrix
	inv  canvas.Matrix
	rast *vector.Rasterizer
}

func newSurface(width, height int) *surface {
	return &surface{
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
		ctm:  canvas.Identity,
		inv:  canvas.Identity,
		rast: vector.NewRasterizer(1, 1),
	}
}

// setTransform 设置版面坐标到设备坐标的仿射变换。
func (s *surface) setTransform(m canvas.Matrix) {
	s.ctm = m
	s.inv = m.Inv()
}

// toLayout returns the device-to-layout transform.
func (s *surface) toLayout() canvas.Matrix { return s.inv }

// fill rasterizes p with the nonzero rule and composites paint through the
// coverage mask using op. Only the path's bounding box is touched.
func (s *surface) fill(p *canvas.Path, pt paint, op operator) {
	if p.Empty() {
		return
	}
	// Transform 会原地修改路径，先复制；圆弧交给 vector 前需转成三次曲线。
	dp := p.Copy().Transform(s.ctm).ReplaceArcs()
	bounds := dp.Bounds()
	box := image.Rect(
		int(math.Floor(bounds.X0)), int(math.Floor(bounds.Y0)),
		int(math.Ceil(bounds.X1)), int(math.Ceil(bounds.Y1)),
	).Intersect(s.img.Bounds())
	if box.Empty() {
		return
	}

	s.rast.Reset(box.Dx(), box.Dy())
	s.rast.DrawOp = draw.Src
	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	pos := func(q canvas.Point) (float32, float32) { return float32(q.X - ox), float32(q.Y - oy) }
	open := false
	for sc := dp.Scanner(); sc.Scan(); {
		switch sc.Cmd() {
		case canvas.MoveToCmd:
			if open {
				s.rast.ClosePath()
			}
			x, y := pos(sc.End())
			s.rast.MoveTo(x, y)
			open = true
		case canvas.LineToCmd:
			x, y := pos(sc.End())
			s.rast.LineTo(x, y)
		case canvas.QuadToCmd:
			cx, cy := pos(sc.CP1())
			x, y := pos(sc.End())
			s.rast.QuadTo(cx, cy, x, y)
		case canvas.CubeToCmd:
			c1x, c1y := pos(sc.CP1())
			c2x, c2y := pos(sc.CP2())
			x, y := pos(sc.End())
			s.rast.CubeTo(c1x, c1y, c2x, c2y, x, y)
		case canvas.CloseCmd:
			s.rast.ClosePath()
			open = false
		}
	}
	if open {
		s.rast.ClosePath()
	}
	mask := image.NewAlpha(image.Rect(0, 0, box.Dx(), box.Dy()))
	s.rast.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	for my := 0; my < mask.Rect.Dy(); my++ {
		py := box.Min.Y + my
		for mx := 0; mx < mask.Rect.Dx(); mx++ {
			cov := mask.Pix[my*mask.Stride+mx]
			if cov == 0 {
				continue
			}
			px := box.Min.X + mx
			src := pt.at(float64(px)+0.5, float64(py)+0.5)
			s.composite(px, py, src, float64(cov)/255, op)
		}
	}
}

// composite 按覆盖率 m 把 src 合成到 (x, y)。
func (s *surface) composite(x, y int, src premul, m float64, op operator) {
	i := s.img.PixOffset(x, y)
	d := s.img.Pix[i : i+4 : i+4]
	dst := premul{float64(d[0]) / 255, float64(d[1]) / 255, float64(d[2]) / 255, float64(d[3]) / 255}
	var keep float64
	switch op {
	case opSource:
		keep = 1 - m
	default:
		keep = 1 - src.a*m
	}
	d[0] = toByte(src.r*m + dst.r*keep)
	d[1] = toByte(src.g*m + dst.g*keep)
	d[2] = toByte(src.b*m + dst.b*keep)
	d[3] = toByte(src.a*m + dst.a*keep)
}

func toByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
