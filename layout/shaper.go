package layout

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/glyphcast/fonts"
)

// tabWidth 是制表位宽度（按空格数计）。
const tabWidth = 8

// Shaper is the HarfBuzz-backed Typesetter. Lines are split on '\n' only;
// there is no wrapping. Each line is ascent+descent tall, with metrics
// rounded up to whole pixels so baselines land on pixel rows.
//
// Shaper is safe for concurrent use.
type Shaper struct {
	pool sync.Pool
}

// NewShaper creates a Shaper.
func NewShaper() *Shaper {
	return &Shaper{pool: sync.Pool{New: func() any { return &shaping.HarfbuzzShaper{} }}}
}

// Typeset implements Typesetter.
func (s *Shaper) Typeset(text string, face Face, align Align) (*Block, error) {
	if face.Font == nil {
		return nil, fmt.Errorf("排版缺少字体: %w", fonts.ErrNoFont)
	}
	if face.Size <= 0 {
		return nil, fmt.Errorf("字号必须大于 0，实际 %g", face.Size)
	}
	metrics, err := face.Font.Metrics(face.Size)
	if err != nil {
		return nil, err
	}
	ascent := math.Ceil(metrics.Ascent)
	descent := math.Ceil(metrics.Descent)
	lineHeight := ascent + descent

	block := &Block{
		LineHeight: lineHeight,
		Size:       face.Size,
		Metrics:    metrics,
		FontName:   face.Font.String(),
		Font:       face.Font,
	}

	rows := strings.Split(normalizeNewlines(text), "\n")
	shapingFace := gtfont.NewFace(face.Font.Shaping())
	for i, row := range rows {
		row = expandTabs(row)
		glyphs, width := s.shapeLine(row, shapingFace, face.Size)
		top := float64(i) * lineHeight
		line := Line{
			Text:     row,
			Baseline: top + ascent,
			Top:      top,
			Bottom:   top + lineHeight,
			Width:    width,
			Glyphs:   glyphs,
		}
		line.Decorations = decorations(face, metrics, width)
		block.Lines = append(block.Lines, line)
		block.Width = math.Max(block.Width, width)
	}
	block.Width = math.Ceil(block.Width)
	block.Height = float64(len(rows)) * lineHeight

	for i := range block.Lines {
		block.Lines[i].X = math.Floor(alignOffset(block.Width, block.Lines[i].Width, align))
	}
	return block, nil
}

func (s *Shaper) shapeLine(row string, face *gtfont.Face, size float64) ([]Glyph, float64) {
	runes := []rune(row)
	if len(runes) == 0 {
		return nil, 0
	}
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      face,
		Size:      fixed.Int26_6(size*64 + 0.5),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}
	hb := s.pool.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(input)
	s.pool.Put(hb)

	glyphs := make([]Glyph, 0, len(out.Glyphs))
	x := 0.0
	for _, g := range out.Glyphs {
		glyphs = append(glyphs, Glyph{
			ID: uint16(g.GlyphID),
			X:  x + fromFixed(g.XOffset),
			// HarfBuzz 的 y 轴向上。
			Y: -fromFixed(g.YOffset),
		})
		x += fromFixed(g.Advance)
	}
	return glyphs, x
}

// decorations 生成下划线与删除线矩形，位置相对于行起点与基线。
func decorations(face Face, m fonts.Metrics, width float64) []Decoration {
	if width <= 0 || !(face.Flags.Has(FontUnderline) || face.Flags.Has(FontStrikeout)) {
		return nil
	}
	thickness := math.Round(fonts.UnderlineThickness(face.Size))
	var out []Decoration
	if face.Flags.Has(FontUnderline) {
		out = append(out, Decoration{
			Y:      math.Max(1, math.Round(face.Size*0.1)),
			Width:  width,
			Height: thickness,
		})
	}
	if face.Flags.Has(FontStrikeout) {
		xHeight := m.XHeight
		if xHeight <= 0 {
			xHeight = m.Ascent / 2
		}
		out = append(out, Decoration{
			Y:      -math.Round(xHeight/2 + thickness/2),
			Width:  width,
			Height: thickness,
		})
	}
	return out
}

func alignOffset(container, width float64, align Align) float64 {
	if container <= width {
		return 0
	}
	switch align {
	case AlignCenter:
		return (container - width) / 2
	case AlignRight:
		return container - width
	default:
		return 0
	}
}

// normalizeNewlines 统一换行符为 '\n'。
func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// expandTabs 把制表符展开为空格，制表位间隔 tabWidth 列。
func expandTabs(row string) string {
	if !strings.Contains(row, "\t") {
		return row
	}
	var b strings.Builder
	col := 0
	for _, r := range row {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

// detectScript 返回第一个非空白字符的书写系统。
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
