package layout

import (
	"fmt"
	"image/color"
	"runtime"
	"strconv"
	"strings"

	"github.com/ByLCY/glyphcast/fonts"
)

// 该文件定义样式配置与排版结果，供样式构建、渲染与调试 JSON 共用。

// Color 是 32 位 ARGB 颜色（0xAARRGGBB）。
type Color uint32

func (c Color) A() uint8 { return uint8(c >> 24) }
func (c Color) R() uint8 { return uint8(c >> 16) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c) }

// NRGBA returns the color with straight alpha.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: c.A()}
}

// String formats the color as #RRGGBBAA.
func (c Color) String() string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R(), c.G(), c.B(), c.A())
}

// MarshalText implements encoding.TextMarshaler for debug JSON.
func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// ParseColor 解析 #RGB、#RGBA、#RRGGBB、#RRGGBBAA，返回 ARGB 颜色。
func ParseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(hex) {
	case 3, 4:
		var b strings.Builder
		for _, r := range hex {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		hex = b.String()
	case 6, 8:
	default:
		return 0, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	if len(hex) == 6 {
		hex += "FF"
	}
	rgba, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	return Color(uint32(rgba)>>8 | uint32(rgba)<<24), nil
}

// Align 是多行文本的水平对齐方式。
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

func (a Align) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// ParseAlign accepts left/start, center/middle and right/end.
func ParseAlign(value string) (Align, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "left", "start":
		return AlignLeft, nil
	case "center", "middle":
		return AlignCenter, nil
	case "right", "end":
		return AlignRight, nil
	default:
		return AlignLeft, fmt.Errorf("未知的对齐方式 %s", value)
	}
}

// Orientation 是文本方向。
type Orientation int

const (
	Horizontal Orientation = iota
	// Vertical 逻辑上按横排排版，再整体顺时针旋转 90°。
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

func (o Orientation) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// FontFlags 是字体样式标记。
type FontFlags uint8

const (
	FontBold FontFlags = 1 << iota
	FontItalic
	FontUnderline
	FontStrikeout
)

// Has reports whether all bits of f are set.
func (ff FontFlags) Has(f FontFlags) bool { return ff&f == f }

func (ff FontFlags) String() string {
	var parts []string
	for _, item := range []struct {
		flag FontFlags
		name string
	}{{FontBold, "bold"}, {FontItalic, "italic"}, {FontUnderline, "underline"}, {FontStrikeout, "strikeout"}} {
		if ff.Has(item.flag) {
			parts = append(parts, item.name)
		}
	}
	return strings.Join(parts, " ")
}

func (ff FontFlags) MarshalText() ([]byte, error) { return []byte(ff.String()), nil }

// ParseFontFlag maps a flag keyword to its bit.
func ParseFontFlag(value string) (FontFlags, bool) {
	switch strings.ToLower(value) {
	case "bold":
		return FontBold, true
	case "italic", "oblique":
		return FontItalic, true
	case "underline":
		return FontUnderline, true
	case "strikeout", "strikethrough", "line-through":
		return FontStrikeout, true
	default:
		return 0, false
	}
}

// 属性取值范围。
const (
	MinOutlineWidth = 1
	MaxOutlineWidth = 256
	MinShadowOffset = 1
	MaxShadowOffset = 256
	MinLogLines     = 1
	MaxLogLines     = 1000
)

// Style is the complete configuration of one text render.
type Style struct {
	Name        string      `json:"name"`
	Text        string      `json:"text"`
	FontFace    string      `json:"fontFace"`
	FontSize    float64     `json:"fontSize"` // 像素 (ppem)
	FontFlags   FontFlags   `json:"fontFlags"`
	Orientation Orientation `json:"orientation"`
	Align       Align       `json:"align"`

	Color1   Color `json:"color1"`
	Color2   Color `json:"color2"`
	Gradient bool  `json:"gradient"`

	Outline      bool  `json:"outline"`
	OutlineWidth int   `json:"outlineWidth"`
	OutlineColor Color `json:"outlineColor"`

	Shadow       bool  `json:"shadow"`
	ShadowOffset int   `json:"shadowOffset"`
	ShadowColor  Color `json:"shadowColor"`

	FromFile bool   `json:"fromFile"`
	File     string `json:"file,omitempty"`
	LogMode  bool   `json:"logMode"`
	LogLines int    `json:"logLines"`
}

// DefaultFace 返回当前平台的默认字体名。
func DefaultFace() string {
	switch runtime.GOOS {
	case "windows":
		return "Arial"
	case "darwin":
		return "Helvetica"
	case "linux":
		return "DejaVu Sans"
	default:
		return "Sans Serif"
	}
}

// DefaultStyle returns the defaults every style starts from.
func DefaultStyle() Style {
	return Style{
		FontFace:     DefaultFace(),
		FontSize:     32,
		Color1:       0xFFFFFFFF,
		Color2:       0xFFFFFFFF,
		OutlineWidth: 2,
		OutlineColor: 0xFF000000,
		ShadowOffset: 4,
		ShadowColor:  0xFF000000,
		LogLines:     6,
	}
}

// Renderable reports whether the style has something to draw.
func (s Style) Renderable() bool {
	return s.Text != "" && strings.TrimSpace(s.FontFace) != "" && s.FontSize > 0
}

// OutlineExtent is the outline width, or 0 when the outline is off.
func (s Style) OutlineExtent() int {
	if !s.Outline || s.OutlineWidth <= 0 {
		return 0
	}
	return s.OutlineWidth
}

// ShadowExtent is the shadow offset, or 0 when the shadow is off.
func (s Style) ShadowExtent() int {
	if !s.Shadow || s.ShadowOffset <= 0 {
		return 0
	}
	return s.ShadowOffset
}

// Colors returns the gradient end points; both are Color1 when the gradient
// is off.
func (s Style) Colors() (top, bottom Color) {
	if !s.Gradient {
		return s.Color1, s.Color1
	}
	return s.Color1, s.Color2
}

// TailLines is the line count handed to the tail reader: the log line count
// in log mode, otherwise 0 (whole file).
func (s Style) TailLines() int {
	if !s.LogMode {
		return 0
	}
	return s.LogLines
}

// Validate checks value ranges.
func (s Style) Validate() error {
	if s.FontSize < 0 {
		return fmt.Errorf("style %s: 字号不能为负数", s.Name)
	}
	if s.Outline && (s.OutlineWidth < MinOutlineWidth || s.OutlineWidth > MaxOutlineWidth) {
		return fmt.Errorf("style %s: 描边宽度 %d 超出范围 %d-%d", s.Name, s.OutlineWidth, MinOutlineWidth, MaxOutlineWidth)
	}
	if s.Shadow && (s.ShadowOffset < MinShadowOffset || s.ShadowOffset > MaxShadowOffset) {
		return fmt.Errorf("style %s: 阴影偏移 %d 超出范围 %d-%d", s.Name, s.ShadowOffset, MinShadowOffset, MaxShadowOffset)
	}
	if s.LogMode && (s.LogLines < MinLogLines || s.LogLines > MaxLogLines) {
		return fmt.Errorf("style %s: 日志行数 %d 超出范围 %d-%d", s.Name, s.LogLines, MinLogLines, MaxLogLines)
	}
	if s.FromFile && strings.TrimSpace(s.File) == "" {
		return fmt.Errorf("style %s: 启用了文件来源但未指定路径", s.Name)
	}
	return nil
}

// Glyph is one shaped glyph, positioned relative to the line origin
// (line start, baseline). Y grows downwards.
type Glyph struct {
	ID uint16  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Decoration is an underline or strikeout rectangle relative to the line
// origin.
type Decoration struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Line 是一行排版结果，坐标以文本块左上角为原点。
type Line struct {
	Text        string       `json:"text"`
	X           float64      `json:"x"`
	Baseline    float64      `json:"baseline"`
	Top         float64      `json:"top"`
	Bottom      float64      `json:"bottom"`
	Width       float64      `json:"width"`
	Glyphs      []Glyph      `json:"glyphs"`
	Decorations []Decoration `json:"decorations,omitempty"`
}

// Block 是整段文本的排版结果。
type Block struct {
	Lines      []Line        `json:"lines"`
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	LineHeight float64       `json:"lineHeight"`
	Size       float64       `json:"size"`
	Metrics    fonts.Metrics `json:"metrics"`
	FontName   string        `json:"font"`
	Font       *fonts.Font   `json:"-"`
}
