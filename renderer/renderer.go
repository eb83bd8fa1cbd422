package renderer

import (
	"errors"
	"image"

	"github.com/ByLCY/glyphcast/graphics"
	"github.com/ByLCY/glyphcast/layout"
)

// ErrCanvasTooLarge 表示画布超过了允许的最大纹理尺寸。
var ErrCanvasTooLarge = errors.New("renderer: canvas too large")

// Renderer 将样式渲染为像素缓冲。
// 空文本或未设置字体时返回 0x0 的 Artifact 且不报错。
type Renderer interface {
	Render(style layout.Style) (*Artifact, error)
}

// Artifact is a rendered pixel buffer. The caller owns Pix.
type Artifact struct {
	Width  int
	Height int
	// Stride 是每行字节数，等于 Width*4，没有行填充。
	Stride int
	Format graphics.Format
	Pix    []byte
}

// Empty reports whether there is nothing to draw.
func (a *Artifact) Empty() bool {
	return a == nil || a.Width <= 0 || a.Height <= 0
}

// RGBA converts the BGRA premultiplied buffer back to an image.RGBA, which
// uses the same premultiplied convention.
func (a *Artifact) RGBA() *image.RGBA {
	if a.Empty() {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	img := image.NewRGBA(image.Rect(0, 0, a.Width, a.Height))
	for y := 0; y < a.Height; y++ {
		src := a.Pix[y*a.Stride : y*a.Stride+a.Width*4]
		dst := img.Pix[y*img.Stride : y*img.Stride+a.Width*4]
		for i := 0; i < len(src); i += 4 {
			dst[i+0] = src[i+2]
			dst[i+1] = src[i+1]
			dst[i+2] = src[i+0]
			dst[i+3] = src[i+3]
		}
	}
	return img
}

// FromTexture wraps the pixels of a memory texture without copying them.
func FromTexture(tex *graphics.MemoryTexture) *Artifact {
	if tex == nil {
		return &Artifact{}
	}
	return &Artifact{
		Width:  tex.Width(),
		Height: tex.Height(),
		Stride: tex.Width() * tex.Format().BytesPerPixel(),
		Format: tex.Format(),
		Pix:    tex.Pix(),
	}
}
