package rasterrenderer

import (
	"image"

	"github.com/ByLCY/glyphcast/graphics"
	"github.com/ByLCY/glyphcast/renderer"
)

const bgraFormat = graphics.FormatBGRA

// extractBGRA 把预乘 RGBA 图像转为紧密排列的预乘 BGRA 缓冲。
func extractBGRA(img *image.RGBA) *renderer.Artifact {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	stride := w * 4
	pix := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+stride]
		dst := pix[y*stride : (y+1)*stride]
		for i := 0; i < stride; i += 4 {
			dst[i+0] = src[i+2]
			dst[i+1] = src[i+1]
			dst[i+2] = src[i+0]
			dst[i+3] = src[i+3]
		}
	}
	return &renderer.Artifact{
		Width:  w,
		Height: h,
		Stride: stride,
		Format: bgraFormat,
		Pix:    pix,
	}
}
