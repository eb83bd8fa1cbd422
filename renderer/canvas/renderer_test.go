package canvasrenderer

import (
	"bytes"
	"math"
	"testing"

	"github.com/ByLCY/glyphcast/fonts"
	"github.com/ByLCY/glyphcast/layout"
)

func proofStyle(text string) layout.Style {
	s := layout.DefaultStyle()
	s.Name = "proof"
	s.FontFace = "Go"
	s.Text = text
	return s
}

func TestRenderProducesPDF(t *testing.T) {
	r := NewRenderer()
	style := proofStyle("Hello\nproof")
	style.Outline = true
	style.Shadow = true
	style.FontFlags = layout.FontUnderline

	out, err := r.Render(style)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("expected PDF header, got %q", out[:min(len(out), 8)])
	}

	style.Orientation = layout.Vertical
	if _, err := r.Render(style); err != nil {
		t.Fatalf("竖排样式也应能输出版面: %v", err)
	}
}

func TestRenderRejectsEmpty(t *testing.T) {
	if _, err := NewRenderer().Render(proofStyle("")); err == nil {
		t.Fatalf("空文本应报错")
	}
}

// canvas 自带的字宽测量应与 HarfBuzz 排版结果基本一致。
func TestMeasureWidthAgreesWithShaper(t *testing.T) {
	reg := fonts.NewRegistry(nil)
	font, err := reg.Resolve("Go", false, false)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	r := NewRendererWithOptions(Options{Fonts: reg})
	face, err := r.FontFace(font, 32)
	if err != nil {
		t.Fatalf("font face: %v", err)
	}

	block, err := layout.NewShaper().Typeset("Hello world", layout.Face{Font: font, Size: 32}, layout.AlignLeft)
	if err != nil {
		t.Fatalf("typeset: %v", err)
	}
	shaped := block.Lines[0].Width
	measured := MeasureWidth(face, "Hello world")
	if shaped <= 0 || math.Abs(measured-shaped)/shaped > 0.05 {
		t.Fatalf("width mismatch: canvas=%.2fpx shaper=%.2fpx", measured, shaped)
	}
	if MeasureWidth(face, "") != 0 {
		t.Fatalf("empty string should measure 0")
	}
}

func TestLayoutSizeUnrotates(t *testing.T) {
	m := &layout.Measurement{Style: layout.Style{Orientation: layout.Vertical}, Width: 40, Height: 100}
	if w, h := layoutSize(m); w != 100 || h != 40 {
		t.Fatalf("layoutSize = %gx%g, want 100x40", w, h)
	}
}
