package layout

import (
	"fmt"
	"math"
)

// CanvasSize returns the pixel size of the canvas for content of the given
// size. The outline extends outline pixels on every side and the shadow is
// offset by shadow pixels right and down, so each axis grows by
// outline + max(outline, shadow). Vertical text swaps the axes.
func CanvasSize(contentW, contentH float64, outline, shadow int, orientation Orientation) (int, int) {
	pad := outline + max(outline, shadow)
	w := int(math.Ceil(contentW)) + pad
	h := int(math.Ceil(contentH)) + pad
	if orientation == Vertical {
		w, h = h, w
	}
	return w, h
}

// Measurement is a typeset style plus the canvas it needs.
type Measurement struct {
	Style  Style  `json:"style"`
	Block  *Block `json:"block"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	// Offset 是所有绘制坐标的平移量，等于描边宽度。
	Offset float64 `json:"offset"`
}

// Empty reports whether there is nothing to draw.
func (m *Measurement) Empty() bool {
	return m == nil || m.Block == nil || m.Width <= 0 || m.Height <= 0
}

// Measure resolves the style's font, typesets its text and sizes the canvas.
// A style with empty text or no font face yields an empty measurement and no
// error.
func Measure(style Style, ts Typesetter, fr FontResolver) (*Measurement, error) {
	if !style.Renderable() {
		return &Measurement{Style: style}, nil
	}
	if ts == nil || fr == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端或字体解析器")
	}
	font, err := fr.Resolve(style.FontFace, style.FontFlags.Has(FontBold), style.FontFlags.Has(FontItalic))
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", style.FontFace, err)
	}
	block, err := ts.Typeset(style.Text, Face{Font: font, Size: style.FontSize, Flags: style.FontFlags}, style.Align)
	if err != nil {
		return nil, fmt.Errorf("排版失败: %w", err)
	}
	outline := style.OutlineExtent()
	w, h := CanvasSize(block.Width, block.Height, outline, style.ShadowExtent(), style.Orientation)
	return &Measurement{
		Style:  style,
		Block:  block,
		Width:  w,
		Height: h,
		Offset: float64(outline),
	}, nil
}
