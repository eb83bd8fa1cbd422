package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ByLCY/glyphcast/binding"
	"github.com/ByLCY/glyphcast/dsl"
)

// styleDecl 是一个 style 段落的原始声明。
type styleDecl struct {
	name    string
	extends string
	props   []*dsl.Property
	text    []string
}

// BuildStyles 根据样式表 AST 生成样式列表，顺序与文件中声明的顺序一致。
// 每个样式从 DefaultStyle 开始，依次应用 defaults、继承链上的父样式与自身属性。
func BuildStyles(sheet *dsl.Sheet, opts BuildOptions) ([]Style, error) {
	if sheet == nil {
		return nil, fmt.Errorf("样式表为空")
	}

	defaults := &styleDecl{name: "defaults"}
	decls := map[string]*styleDecl{}
	var order []string
	for _, section := range sheet.Sections {
		switch {
		case section.Defaults != nil:
			collectBlock(defaults, section.Defaults.Block)
		case section.Style != nil:
			name := section.Style.Name
			if _, dup := decls[name]; dup {
				return nil, fmt.Errorf("%s: style %s 重复定义", section.Style.Pos, name)
			}
			decl := &styleDecl{name: name, extends: section.Style.Extends}
			collectBlock(decl, section.Style.Block)
			decls[name] = decl
			order = append(order, name)
		}
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("样式表 %s 没有定义任何 style", sheet.Name)
	}

	chains, err := resolveStyles(decls)
	if err != nil {
		return nil, err
	}

	styles := make([]Style, 0, len(order))
	for _, name := range order {
		style := DefaultStyle()
		if opts.DefaultFace != "" {
			style.FontFace = opts.DefaultFace
		}
		style.Name = name
		for _, decl := range append([]*styleDecl{defaults}, chains[name]...) {
			if err := applyDecl(&style, decl); err != nil {
				return nil, fmt.Errorf("style %s: %w", name, err)
			}
		}
		style.Text = binding.Interpolate(style.Text, opts.Data)
		if err := style.Validate(); err != nil {
			return nil, err
		}
		styles = append(styles, style)
	}
	return styles, nil
}

// FindStyle returns the style called name, or the first style when name is
// empty.
func FindStyle(styles []Style, name string) (Style, error) {
	if len(styles) == 0 {
		return Style{}, fmt.Errorf("没有可用的 style")
	}
	if name == "" {
		return styles[0], nil
	}
	for _, s := range styles {
		if s.Name == name {
			return s, nil
		}
	}
	return Style{}, fmt.Errorf("style %s 未定义", name)
}

func collectBlock(decl *styleDecl, block *dsl.Block) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		switch {
		case stmt.Property != nil:
			decl.props = append(decl.props, stmt.Property)
		case stmt.Text != nil:
			decl.text = append(decl.text, string(stmt.Text.Value))
		}
	}
}

// resolveStyles 展开继承关系，返回每个样式从根到自身的声明链。
func resolveStyles(decls map[string]*styleDecl) (map[string][]*styleDecl, error) {
	resolved := map[string][]*styleDecl{}
	visiting := map[string]bool{}

	var dfs func(name string) ([]*styleDecl, error)
	dfs = func(name string) ([]*styleDecl, error) {
		if chain, ok := resolved[name]; ok {
			return chain, nil
		}
		decl, ok := decls[name]
		if !ok {
			return nil, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return nil, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		var chain []*styleDecl
		if decl.extends != "" {
			parent, err := dfs(decl.extends)
			if err != nil {
				return nil, err
			}
			chain = append(chain, parent...)
		}
		chain = append(chain, decl)
		resolved[name] = chain
		delete(visiting, name)
		return chain, nil
	}

	for name := range decls {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func applyDecl(style *Style, decl *styleDecl) error {
	for _, prop := range decl.props {
		if err := applyProperty(style, prop); err != nil {
			return fmt.Errorf("%s: 属性 %s: %w", prop.Pos, prop.Key, err)
		}
	}
	if len(decl.text) > 0 {
		style.Text = strings.Join(decl.text, "\n")
	}
	return nil
}

func applyProperty(style *Style, prop *dsl.Property) error {
	values := prop.Values
	first := values[0]
	switch strings.ToLower(prop.Key) {
	case "text":
		parts := make([]string, 0, len(values))
		for _, v := range values {
			parts = append(parts, v.Value)
		}
		style.Text = strings.Join(parts, "\n")

	case "font":
		return applyFont(style, values)

	case "face", "family":
		style.FontFace = joinValues(values)

	case "size":
		size, err := ParseRawLengthStr(first.Value)
		if err != nil {
			return err
		}
		style.FontSize = size.ToPX()

	case "flags":
		style.FontFlags = 0
		for _, v := range values {
			if isOff(v.Value) || strings.EqualFold(v.Value, "normal") {
				continue
			}
			flag, ok := ParseFontFlag(v.Value)
			if !ok {
				return fmt.Errorf("未知的字体标记 %s", v.Value)
			}
			style.FontFlags |= flag
		}

	case "color", "color1":
		c, err := ParseColor(first.Value)
		if err != nil {
			return err
		}
		style.Color1 = c

	case "color2":
		c, err := ParseColor(first.Value)
		if err != nil {
			return err
		}
		style.Color2 = c

	case "gradient":
		if isOff(first.Value) {
			style.Gradient = false
			return nil
		}
		colors := make([]Color, 0, 2)
		for _, v := range values {
			c, err := ParseColor(v.Value)
			if err != nil {
				return err
			}
			colors = append(colors, c)
		}
		switch len(colors) {
		case 1:
			style.Color2 = colors[0]
		case 2:
			style.Color1, style.Color2 = colors[0], colors[1]
		default:
			return fmt.Errorf("渐变最多两个颜色")
		}
		style.Gradient = true

	case "align":
		a, err := ParseAlign(first.Value)
		if err != nil {
			return err
		}
		style.Align = a

	case "vertical":
		on, err := parseBool(first.Value)
		if err != nil {
			return err
		}
		style.Orientation = Horizontal
		if on {
			style.Orientation = Vertical
		}

	case "orientation":
		switch strings.ToLower(first.Value) {
		case "horizontal":
			style.Orientation = Horizontal
		case "vertical":
			style.Orientation = Vertical
		default:
			return fmt.Errorf("未知的方向 %s", first.Value)
		}

	case "outline":
		return applyEffect(values, &style.Outline, &style.OutlineWidth, &style.OutlineColor)

	case "outline-width":
		w, err := ParsePixels(first.Value)
		if err != nil {
			return err
		}
		style.OutlineWidth = w

	case "outline-color":
		c, err := ParseColor(first.Value)
		if err != nil {
			return err
		}
		style.OutlineColor = c

	case "shadow":
		return applyEffect(values, &style.Shadow, &style.ShadowOffset, &style.ShadowColor)

	case "shadow-offset":
		d, err := ParsePixels(first.Value)
		if err != nil {
			return err
		}
		style.ShadowOffset = d

	case "shadow-color":
		c, err := ParseColor(first.Value)
		if err != nil {
			return err
		}
		style.ShadowColor = c

	case "file":
		if isOff(first.Value) {
			style.FromFile = false
			style.File = ""
			return nil
		}
		style.FromFile = true
		style.File = expandPath(first.Value)

	case "log":
		if n, err := strconv.Atoi(first.Value); err == nil {
			style.LogMode = true
			style.LogLines = n
			return nil
		}
		on, err := parseBool(first.Value)
		if err != nil {
			return err
		}
		style.LogMode = on

	case "lines", "log-lines":
		n, err := strconv.Atoi(first.Value)
		if err != nil {
			return fmt.Errorf("行数 %s 无法解析", first.Value)
		}
		style.LogLines = n

	default:
		return fmt.Errorf("未知属性")
	}
	return nil
}

// applyFont 解析 `font: "Family" 32px bold italic`，字体标记整体替换。
func applyFont(style *Style, values []*dsl.Lexeme) error {
	var family []string
	var flags FontFlags
	for _, v := range values {
		switch v.Type {
		case "String":
			family = append(family, v.Value)
		case "Number":
			size, err := ParseRawLengthStr(v.Value)
			if err != nil {
				return err
			}
			style.FontSize = size.ToPX()
		default:
			if flag, ok := ParseFontFlag(v.Value); ok {
				flags |= flag
				continue
			}
			if strings.EqualFold(v.Value, "normal") {
				continue
			}
			family = append(family, v.Value)
		}
	}
	if len(family) > 0 {
		style.FontFace = strings.Join(family, " ")
	}
	style.FontFlags = flags
	return nil
}

// applyEffect 解析 `<宽度> [颜色]`、`on` 或 `none`，用于描边与阴影。
func applyEffect(values []*dsl.Lexeme, enabled *bool, size *int, color *Color) error {
	if isOff(values[0].Value) {
		*enabled = false
		return nil
	}
	*enabled = true
	for _, v := range values {
		switch {
		case v.Type == "Number":
			px, err := ParsePixels(v.Value)
			if err != nil {
				return err
			}
			*size = px
		case v.Type == "Color":
			c, err := ParseColor(v.Value)
			if err != nil {
				return err
			}
			*color = c
		case isOn(v.Value):
		default:
			return fmt.Errorf("无法识别的取值 %s", v.Raw)
		}
	}
	return nil
}

func joinValues(values []*dsl.Lexeme) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, v.Value)
	}
	return strings.Join(parts, " ")
}

func isOff(v string) bool {
	switch strings.ToLower(v) {
	case "none", "off", "false", "no":
		return true
	}
	return false
}

func isOn(v string) bool {
	switch strings.ToLower(v) {
	case "on", "true", "yes":
		return true
	}
	return false
}

func parseBool(v string) (bool, error) {
	switch {
	case isOn(v):
		return true, nil
	case isOff(v):
		return false, nil
	default:
		return false, fmt.Errorf("%s 不是布尔值", v)
	}
}

// expandPath 展开以 ~ 开头的路径。
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
