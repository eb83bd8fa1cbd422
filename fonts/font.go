// Package fonts loads font files and resolves family names to faces.
package fonts

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	gtfont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ErrNoFont 表示没有可用的字体。
var ErrNoFont = errors.New("fonts: no font")

// Metrics are vertical font metrics in pixels at a given size. Descent is
// positive below the baseline.
type Metrics struct {
	Ascent    float64 `json:"ascent"`
	Descent   float64 `json:"descent"`
	Height    float64 `json:"height"`
	XHeight   float64 `json:"xHeight"`
	CapHeight float64 `json:"capHeight"`
}

// Font is one parsed font file. It serves metrics and glyph outlines from
// x/image/sfnt and a go-text font for shaping. A Font is safe for
// concurrent use.
type Font struct {
	Family    string
	Subfamily string
	Bold      bool
	Italic    bool

	data    []byte
	sf      *sfnt.Font
	shaping *gtfont.Font

	mu  sync.Mutex
	buf sfnt.Buffer
}

// Parse 解析 TTF/OTF 字体数据。字体集合 (.ttc) 不支持。
func Parse(data []byte) (*Font, error) {
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体失败: %w", err)
	}
	face, err := gtfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解析字体 (shaping) 失败: %w", err)
	}

	f := &Font{data: data, sf: sf, shaping: face.Font}
	f.Family = f.name(sfnt.NameIDTypographicFamily, sfnt.NameIDFamily)
	f.Subfamily = f.name(sfnt.NameIDTypographicSubfamily, sfnt.NameIDSubfamily)
	if f.Family == "" {
		return nil, fmt.Errorf("字体缺少 family 名称")
	}
	sub := strings.ToLower(f.Subfamily)
	f.Bold = strings.Contains(sub, "bold") || strings.Contains(sub, "black") || strings.Contains(sub, "heavy")
	f.Italic = strings.Contains(sub, "italic") || strings.Contains(sub, "oblique")
	return f, nil
}

// name 依次尝试多个 name ID，返回第一个存在的值。
func (f *Font) name(ids ...sfnt.NameID) string {
	for _, id := range ids {
		if v, err := f.sf.Name(&f.buf, id); err == nil && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Data returns the raw font file bytes.
func (f *Font) Data() []byte { return f.data }

// Shaping returns the go-text font used by the HarfBuzz shaper.
func (f *Font) Shaping() *gtfont.Font { return f.shaping }

// String returns "Family Subfamily".
func (f *Font) String() string {
	if f.Subfamily == "" {
		return f.Family
	}
	return f.Family + " " + f.Subfamily
}

// Metrics returns the vertical metrics at size pixels per em.
func (f *Font) Metrics(size float64) (Metrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.sf.Metrics(&f.buf, toFixed(size), font.HintingNone)
	if err != nil {
		return Metrics{}, fmt.Errorf("读取字体度量失败: %w", err)
	}
	return Metrics{
		Ascent:    fromFixed(m.Ascent),
		Descent:   fromFixed(m.Descent),
		Height:    fromFixed(m.Height),
		XHeight:   fromFixed(m.XHeight),
		CapHeight: fromFixed(m.CapHeight),
	}, nil
}

// Outline returns the outline of glyph gid at size pixels per em. Segment
// coordinates are in pixels, relative to the glyph origin, y pointing down.
// The returned slice is a copy owned by the caller.
func (f *Font) Outline(gid uint16, size float64) (sfnt.Segments, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	segs, err := f.sf.LoadGlyph(&f.buf, sfnt.GlyphIndex(gid), toFixed(size), nil)
	if err != nil {
		return nil, fmt.Errorf("读取字形 %d 失败: %w", gid, err)
	}
	out := make(sfnt.Segments, len(segs))
	copy(out, segs)
	return out, nil
}

// UnderlineThickness 返回装饰线（下划线、删除线）的粗细，至少 1 像素。
func UnderlineThickness(size float64) float64 {
	t := size / 16
	if t < 1 {
		return 1
	}
	return t
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v*64 + 0.5)
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
