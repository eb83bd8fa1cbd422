package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/glyphcast/fonts"
	"github.com/ByLCY/glyphcast/layout"
)

const (
	pageMargin  = 8.0  // mm
	hairline    = 0.15 // mm
	labelSizePt = 6.0
	labelLineMM = 3.2
	labelFont   = "Go-Mono"
)

var (
	canvasColor   = canvas.Hex("#9e9e9e")
	contentColor  = canvas.Hex("#1e88e5")
	lineBoxColor  = canvas.Hex("#d0d0d0")
	baselineColor = canvas.Hex("#e53935")
	textColor     = canvas.Hex("#1e1e1e")
)

// Renderer draws a layout proof of a style as a one-page PDF via
// github.com/tdewolff/canvas: canvas bounds, the content frame inside the
// outline padding, line boxes, baselines and the text itself, all at 96 DPI.
// Vertical styles are drawn in their unrotated layout space.
type Renderer struct {
	fonts  layout.FontResolver
	ts     layout.Typesetter
	author string

	fontMu   sync.Mutex
	families map[*fonts.Font]*canvas.FontFamily
	labels   *canvas.FontFamily
}

// Options configures the canvas renderer.
type Options struct {
	Fonts      layout.FontResolver
	Typesetter layout.Typesetter
	Author     string
}

// NewRenderer creates a proof renderer over the embedded fonts.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a proof renderer.
func NewRendererWithOptions(opts Options) *Renderer {
	if opts.Fonts == nil {
		opts.Fonts = fonts.NewRegistry(nil)
	}
	if opts.Typesetter == nil {
		opts.Typesetter = layout.NewShaper()
	}
	return &Renderer{
		fonts:    opts.Fonts,
		ts:       opts.Typesetter,
		author:   opts.Author,
		families: map[*fonts.Font]*canvas.FontFamily{},
	}
}

// Render measures style and renders the proof into a PDF byte slice.
func (r *Renderer) Render(style layout.Style) ([]byte, error) {
	m, err := layout.Measure(style, r.ts, r.fonts)
	if err != nil {
		return nil, err
	}
	return r.RenderMeasurement(m)
}

// RenderMeasurement renders an existing measurement.
func (r *Renderer) RenderMeasurement(m *layout.Measurement) ([]byte, error) {
	if m.Empty() {
		return nil, fmt.Errorf("缺少可渲染的内容")
	}
	cw, ch := layoutSize(m)
	pageW := toMm(cw) + 2*pageMargin
	pageH := toMm(ch) + 2*pageMargin + float64(len(m.Block.Lines)+2)*labelLineMM

	var buf bytes.Buffer
	writer := pdf.New(&buf, pageW, pageH, nil)
	r.applyMeta(writer, m)

	c := canvas.New(pageW, pageH)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	if err := r.drawProof(ctx, m, cw, ch); err != nil {
		return nil, err
	}
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, m *layout.Measurement) {
	subject := fmt.Sprintf("%dx%d px, %s", m.Width, m.Height, m.Style.Orientation)
	keywords := fmt.Sprintf("%s, %gpx", m.Block.FontName, m.Block.Size)
	writer.SetInfo("glyphcast proof: "+m.Style.Name, subject, keywords, r.author, "glyphcast")
}

// layoutSize 返回未旋转的画布尺寸（像素）。
func layoutSize(m *layout.Measurement) (float64, float64) {
	if m.Style.Orientation == layout.Vertical {
		return float64(m.Height), float64(m.Width)
	}
	return float64(m.Width), float64(m.Height)
}

func (r *Renderer) drawProof(ctx *canvas.Context, m *layout.Measurement, cw, ch float64) error {
	block := m.Block
	origin := pageMargin + toMm(m.Offset)

	// 画布边界与描边留白内的内容框
	strokeRect(ctx, pageMargin, pageMargin, toMm(cw), toMm(ch), canvasColor)
	strokeRect(ctx, origin, origin, toMm(block.Width), toMm(block.Height), contentColor)

	face, err := r.fontFace(block.Font, toPt(block.Size), textColor)
	if err != nil {
		return err
	}
	for _, line := range block.Lines {
		strokeRect(ctx, origin, origin+toMm(line.Top), toMm(block.Width), toMm(line.Bottom-line.Top), lineBoxColor)

		ctx.SetStrokeColor(baselineColor)
		ctx.SetStrokeWidth(hairline)
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(toMm(block.Width), 0)
		ctx.DrawPath(origin, origin+toMm(line.Baseline), p)

		x := origin + toMm(line.X)
		baseline := origin + toMm(line.Baseline)
		if line.Text != "" {
			ctx.DrawText(x, baseline, canvas.NewTextLine(face, line.Text, canvas.Left))
		}
		ctx.SetFillColor(textColor)
		ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
		for _, d := range line.Decorations {
			ctx.DrawPath(x+toMm(d.X), baseline+toMm(d.Y), canvas.Rectangle(toMm(d.Width), toMm(d.Height)))
		}
	}
	return r.drawLabels(ctx, m, face, pageMargin+toMm(ch)+labelLineMM)
}

// drawLabels 在画布下方逐行写出尺寸信息，并用 canvas 自身的字宽做对照。
func (r *Renderer) drawLabels(ctx *canvas.Context, m *layout.Measurement, face *canvas.FontFace, y float64) error {
	labels, err := r.labelFace()
	if err != nil {
		return err
	}
	style := m.Style
	header := fmt.Sprintf("%s  canvas %dx%d px  %s %gpx  outline %d  shadow %d",
		style.Name, m.Width, m.Height, m.Block.FontName, m.Block.Size, style.OutlineExtent(), style.ShadowExtent())
	ctx.DrawText(pageMargin, y, canvas.NewTextLine(labels, header, canvas.Left))
	for i, line := range m.Block.Lines {
		y += labelLineMM
		text := fmt.Sprintf("#%d  x %.0f  baseline %.0f  width %.1fpx (canvas %.1fpx)",
			i+1, line.X, line.Baseline, line.Width, MeasureWidth(face, line.Text))
		ctx.DrawText(pageMargin, y, canvas.NewTextLine(labels, text, canvas.Left))
	}
	return nil
}

// MeasureWidth returns the advance width of s in pixels as tdewolff/canvas
// measures it with face.
func MeasureWidth(face *canvas.FontFace, s string) float64 {
	if s == "" {
		return 0
	}
	return face.TextWidth(s) / layout.PxToMm
}

// FontFace returns a canvas face for font at size pixels.
func (r *Renderer) FontFace(font *fonts.Font, size float64) (*canvas.FontFace, error) {
	return r.fontFace(font, toPt(size), textColor)
}

func (r *Renderer) fontFace(font *fonts.Font, sizePt float64, col color.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(sizePt, col, style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font *fonts.Font) (*canvas.FontFamily, canvas.FontStyle, error) {
	if font == nil {
		return nil, canvas.FontRegular, fmt.Errorf("缺少字体: %w", fonts.ErrNoFont)
	}
	style := fontStyle(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.families[font]; ok {
		return family, style, nil
	}
	family := canvas.NewFontFamily(font.Family)
	if err := family.LoadFont(font.Data(), 0, style); err != nil {
		return nil, canvas.FontRegular, fmt.Errorf("加载字体 %s 失败: %w", font, err)
	}
	r.families[font] = family
	return family, style, nil
}

func (r *Renderer) labelFace() (*canvas.FontFace, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if r.labels == nil {
		data, err := fonts.Load(labelFont)
		if err != nil {
			return nil, err
		}
		family := canvas.NewFontFamily("glyphcast-labels")
		if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
			return nil, err
		}
		r.labels = family
	}
	return r.labels.Face(labelSizePt, textColor, canvas.FontRegular, canvas.FontNormal), nil
}

func fontStyle(font *fonts.Font) canvas.FontStyle {
	style := canvas.FontRegular
	if font.Bold {
		style = canvas.FontBold
	}
	if font.Italic {
		style |= canvas.FontItalic
	}
	return style
}

func strokeRect(ctx *canvas.Context, x, y, w, h float64, col color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeColor(col)
	ctx.SetStrokeWidth(hairline)
	ctx.DrawPath(x, y, canvas.Rectangle(w, h))
}

// toMm 将像素转换为毫米。
func toMm(px float64) float64 { return px * layout.PxToMm }

// toPt 将像素转换为点(pt)。
func toPt(px float64) float64 { return px * layout.PxToPt }
