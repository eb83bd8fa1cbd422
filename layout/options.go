package layout

import "github.com/ByLCY/glyphcast/fonts"

// BuildOptions 配置样式构建阶段，例如绑定数据与默认字体。
type BuildOptions struct {
	// Data 用于展开文本中的 ${path} 占位符，通常来自 JSON。
	Data any
	// DefaultFace 覆盖平台默认字体，空字符串表示使用 DefaultFace()。
	DefaultFace string
}

// Face is a resolved font at a size, plus the flags that affect layout.
type Face struct {
	Font  *fonts.Font
	Size  float64
	Flags FontFlags
}

// Typesetter 负责把文本拆成行并给出每行的字形、基线与垂直范围。
type Typesetter interface {
	Typeset(text string, face Face, align Align) (*Block, error)
}

// FontResolver maps a family name and weight/slant to a font.
type FontResolver interface {
	Resolve(family string, bold, italic bool) (*fonts.Font, error)
}
