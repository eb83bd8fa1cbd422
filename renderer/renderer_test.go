package renderer

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestArtifactRGBASwapsChannels(t *testing.T) {
	a := &Artifact{Width: 2, Height: 1, Stride: 8, Pix: []byte{
		10, 20, 30, 255,
		0, 0, 64, 128,
	}}
	img := a.RGBA()
	if got := img.Pix[:8]; got[0] != 30 || got[1] != 20 || got[2] != 10 || got[3] != 255 || got[4] != 64 || got[7] != 128 {
		t.Fatalf("通道转换错误: %v", got)
	}
	if !(&Artifact{}).Empty() || (*Artifact)(nil).RGBA().Rect.Dx() != 0 {
		t.Fatalf("空 Artifact 处理错误")
	}
}

func TestWritePNG(t *testing.T) {
	a := &Artifact{Width: 1, Height: 1, Stride: 4, Pix: []byte{0, 0, 255, 255}}
	path := filepath.Join(t.TempDir(), "nested", "out.png")
	if err := WritePNG(a, path); err != nil {
		t.Fatalf("写出失败: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("打开失败: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if r, g, b, al := img.At(0, 0).RGBA(); r != 0xffff || g != 0 || b != 0 || al != 0xffff {
		t.Fatalf("像素应为红色: %x %x %x %x", r, g, b, al)
	}

	if err := WritePNG(&Artifact{}, path); err == nil {
		t.Fatalf("空 Artifact 应报错")
	}
}
