// Package rasterrenderer draws styled text into a premultiplied BGRA pixel
// buffer: drop shadow, round-joined outline and a per-line vertical gradient
// fill, optionally rotated for vertical text.
package rasterrenderer

import (
	"fmt"
	"log/slog"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/glyphcast/fonts"
	"github.com/ByLCY/glyphcast/layout"
	"github.com/ByLCY/glyphcast/logging"
	"github.com/ByLCY/glyphcast/renderer"
)

// DefaultMaxTextureSize 是默认允许的最大画布边长。
const DefaultMaxTextureSize = 16384

// Options configures a Renderer.
type Options struct {
	// Fonts resolves font faces. Defaults to a registry of the embedded fonts.
	Fonts layout.FontResolver
	// Typesetter defaults to layout.NewShaper().
	Typesetter layout.Typesetter
	// MaxTextureSize limits canvas width and height; 0 means
	// DefaultMaxTextureSize, a negative value disables the check.
	MaxTextureSize int
	Logger         *slog.Logger
}

// Renderer implements renderer.Renderer on the CPU.
type Renderer struct {
	fonts   layout.FontResolver
	ts      layout.Typesetter
	maxSize int
	logger  *slog.Logger
}

var _ renderer.Renderer = (*Renderer)(nil)

// New creates a Renderer with default options.
func New() *Renderer {
	return NewWithOptions(Options{})
}

// NewWithOptions creates a Renderer.
func NewWithOptions(opts Options) *Renderer {
	logger := logging.OrNop(opts.Logger)
	if opts.Fonts == nil {
		opts.Fonts = fonts.NewRegistry(logger)
	}
	if opts.Typesetter == nil {
		opts.Typesetter = layout.NewShaper()
	}
	if opts.MaxTextureSize == 0 {
		opts.MaxTextureSize = DefaultMaxTextureSize
	}
	return &Renderer{
		fonts:   opts.Fonts,
		ts:      opts.Typesetter,
		maxSize: opts.MaxTextureSize,
		logger:  logger,
	}
}

// Render measures style and rasterizes it. A style that is not renderable
// produces an empty artifact and no error.
func (r *Renderer) Render(style layout.Style) (*renderer.Artifact, error) {
	m, err := layout.Measure(style, r.ts, r.fonts)
	if err != nil {
		return nil, err
	}
	if m.Empty() {
		return &renderer.Artifact{Format: bgraFormat}, nil
	}
	if r.maxSize > 0 && (m.Width > r.maxSize || m.Height > r.maxSize) {
		return nil, fmt.Errorf("%w: %dx%d 超过上限 %d", renderer.ErrCanvasTooLarge, m.Width, m.Height, r.maxSize)
	}
	surf, err := r.rasterize(m)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("渲染完成", "style", style.Name, "width", m.Width, "height", m.Height, "lines", len(m.Block.Lines))
	return extractBGRA(surf.img), nil
}

// rasterize 按行依次绘制阴影、描边与渐变填充。
func (r *Renderer) rasterize(m *layout.Measurement) (*surface, error) {
	style := m.Style
	surf := newSurface(m.Width, m.Height)
	if style.Orientation == layout.Vertical {
		surf.setTransform(verticalTransform(m.Width))
	}

	glyphs := newGlyphCache(m.Block.Font, m.Block.Size)
	outline := float64(style.OutlineExtent())
	shadow := float64(style.ShadowExtent())
	top, bottom := style.Colors()

	for _, line := range m.Block.Lines {
		path, err := linePath(line, glyphs, m.Offset+line.X, m.Offset+line.Baseline)
		if err != nil {
			return nil, err
		}
		if path.Empty() {
			continue
		}

		if shadow > 0 {
			surf.fill(path.Copy().Translate(shadow, shadow), solidColor(style.ShadowColor), opOver)
		}
		// 开启描边时字形以 source 方式覆盖描边，否则叠加。
		fillOp := opOver
		if outline > 0 {
			surf.fill(strokeOutline(path, outline), solidColor(style.OutlineColor), opSource)
			fillOp = opSource
		}
		grad := newLinearGradient(m.Offset+line.Top, m.Offset+line.Bottom, top, bottom, surf.toLayout())
		surf.fill(path, grad, fillOp)
	}
	return surf, nil
}

// linePath 组合一行中所有字形轮廓与装饰线，原点为 (x, baseline)。
func linePath(line layout.Line, glyphs *glyphCache, x, baseline float64) (*canvas.Path, error) {
	path := &canvas.Path{}
	for _, g := range line.Glyphs {
		outline, err := glyphs.get(g.ID)
		if err != nil {
			return nil, err
		}
		path = path.Append(outline.Copy().Translate(x+g.X, baseline+g.Y))
	}
	if len(line.Decorations) == 0 {
		return path, nil
	}
	// 装饰线须与字形外轮廓同向，重叠处才不会相互抵消。
	positive := signedArea(path) > 0
	for _, d := range line.Decorations {
		if d.Width <= 0 || d.Height <= 0 {
			continue
		}
		path = path.Append(rect(x+d.X, baseline+d.Y, d.Width, d.Height, positive))
	}
	return path, nil
}

// glyphCache 缓存单次渲染中按字形 ID 转换好的轮廓，取出后须先 Copy 再变换。
type glyphCache struct {
	font  *fonts.Font
	size  float64
	paths map[uint16]*canvas.Path
}

func newGlyphCache(font *fonts.Font, size float64) *glyphCache {
	return &glyphCache{font: font, size: size, paths: make(map[uint16]*canvas.Path)}
}

func (c *glyphCache) get(gid uint16) (*canvas.Path, error) {
	if p, ok := c.paths[gid]; ok {
		return p, nil
	}
	segs, err := c.font.Outline(gid, c.size)
	if err != nil {
		return nil, err
	}
	p := pathFromSegments(segs)
	c.paths[gid] = p
	return p, nil
}
