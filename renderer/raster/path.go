package rasterrenderer

import (
	"github.com/tdewolff/canvas"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// pathFromSegments converts sfnt glyph segments, already scaled to pixels,
// into a canvas path. Every contour is closed.
func pathFromSegments(segs sfnt.Segments) *canvas.Path {
	p := &canvas.Path{}
	for _, s := range segs {
		a := s.Args
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			p.Close()
			p.MoveTo(fromFixed(a[0].X), fromFixed(a[0].Y))
		case sfnt.SegmentOpLineTo:
			p.LineTo(fromFixed(a[0].X), fromFixed(a[0].Y))
		case sfnt.SegmentOpQuadTo:
			p.QuadTo(fromFixed(a[0].X), fromFixed(a[0].Y), fromFixed(a[1].X), fromFixed(a[1].Y))
		case sfnt.SegmentOpCubeTo:
			p.CubeTo(fromFixed(a[0].X), fromFixed(a[0].Y), fromFixed(a[1].X), fromFixed(a[1].Y), fromFixed(a[2].X), fromFixed(a[2].Y))
		}
	}
	p.Close()
	return p
}

// rect returns an axis-aligned rectangle whose signed area is positive when
// positive is set, so it can be made to agree with the glyph contours it
// overlaps.
func rect(x, y, w, h float64, positive bool) *canvas.Path {
	r := canvas.Rectangle(w, h).Translate(x, y)
	if positive != (signedArea(r) > 0) {
		r = r.Reverse()
	}
	return r
}

// signedArea 以各段端点计算鞋带公式面积，符号即路径的主要绕向。
func signedArea(p *canvas.Path) float64 {
	var area float64
	for sc := p.Scanner(); sc.Scan(); {
		if sc.Cmd() == canvas.MoveToCmd {
			continue
		}
		a, b := sc.Start(), sc.End()
		area += a.X*b.Y - b.X*a.Y
	}
	return area / 2
}

// strokeOutline returns a fill path covering every point within radius of
// p's outline: a round-joined stroke of width 2*radius.
func strokeOutline(p *canvas.Path, radius float64) *canvas.Path {
	if radius <= 0 || p.Empty() {
		return &canvas.Path{}
	}
	return p.Stroke(2*radius, canvas.RoundCap, canvas.RoundJoin, canvas.PixelTolerance)
}

// verticalTransform 把版面坐标旋转到竖排画布：设备 (u, v) = (width - y, x)。
func verticalTransform(width int) canvas.Matrix {
	return canvas.Identity.Translate(float64(width), 0).Rotate(90)
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
