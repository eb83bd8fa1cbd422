package layout

import (
	"testing"

	"github.com/ByLCY/glyphcast/fonts"
)

func TestCanvasSizePadding(t *testing.T) {
	tests := []struct {
		name            string
		outline, shadow int
		orientation     Orientation
		wantW, wantH    int
	}{
		{"plain", 0, 0, Horizontal, 100, 40},
		{"outline only", 2, 0, Horizontal, 104, 44},
		{"shadow only", 0, 4, Horizontal, 104, 44},
		{"outline and shadow", 2, 4, Horizontal, 106, 46},
		{"shadow inside outline", 5, 3, Horizontal, 110, 50},
		{"vertical", 2, 4, Vertical, 46, 106},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := CanvasSize(99.2, 40, tt.outline, tt.shadow, tt.orientation)
			if w != tt.wantW || h != tt.wantH {
				t.Fatalf("CanvasSize = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCanvasSizeMonotonic(t *testing.T) {
	for outline := 0; outline <= 12; outline++ {
		for shadow := 0; shadow <= 12; shadow++ {
			w, h := CanvasSize(50, 20, outline, shadow, Horizontal)
			w1, h1 := CanvasSize(50, 20, outline+1, shadow, Horizontal)
			w2, h2 := CanvasSize(50, 20, outline, shadow+1, Horizontal)
			if w1 < w || h1 < h || w2 < w || h2 < h {
				t.Fatalf("尺寸应随描边/阴影单调不减: W=%d D=%d", outline, shadow)
			}
		}
	}
}

func TestMeasure(t *testing.T) {
	reg := fonts.NewRegistry(nil)
	ts := NewShaper()

	style := DefaultStyle()
	style.FontFace = "Go"
	style.Text = "Hi"

	plain, err := Measure(style, ts, reg)
	if err != nil {
		t.Fatalf("测量失败: %v", err)
	}
	if plain.Empty() {
		t.Fatalf("测量结果不应为空")
	}
	if plain.Width != int(plain.Block.Width) || plain.Height != int(plain.Block.Height) || plain.Offset != 0 {
		t.Fatalf("无描边无阴影时不应有填充: %dx%d vs %+v", plain.Width, plain.Height, plain.Block)
	}

	style.Outline = true
	style.OutlineWidth = 2
	style.Shadow = true
	style.ShadowOffset = 4
	padded, err := Measure(style, ts, reg)
	if err != nil {
		t.Fatalf("测量失败: %v", err)
	}
	if padded.Width != plain.Width+6 || padded.Height != plain.Height+6 || padded.Offset != 2 {
		t.Fatalf("描边 2 + 阴影 4 应各增加 6 像素: %dx%d vs %dx%d", padded.Width, padded.Height, plain.Width, plain.Height)
	}

	style.Orientation = Vertical
	vertical, err := Measure(style, ts, reg)
	if err != nil {
		t.Fatalf("测量失败: %v", err)
	}
	if vertical.Width != padded.Height || vertical.Height != padded.Width {
		t.Fatalf("竖排应交换宽高: %dx%d vs %dx%d", vertical.Width, vertical.Height, padded.Width, padded.Height)
	}
}

func TestMeasureNotRenderable(t *testing.T) {
	for _, style := range []Style{
		{FontFace: "Go", FontSize: 32},
		{Text: "Hi", FontSize: 32},
	} {
		m, err := Measure(style, nil, nil)
		if err != nil {
			t.Fatalf("不可渲染的样式不应报错: %v", err)
		}
		if !m.Empty() || m.Width != 0 || m.Height != 0 {
			t.Fatalf("应返回 0x0: %+v", m)
		}
	}
}
