package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FallbackFamily 是内置字体族，找不到请求的字体时使用。
const FallbackFamily = "Go"

var builtin = map[string][]byte{
	"Go-Regular.ttf":    goregular.TTF,
	"Go-Bold.ttf":       gobold.TTF,
	"Go-Italic.ttf":     goitalic.TTF,
	"Go-BoldItalic.ttf": gobolditalic.TTF,
	"Go-Mono.ttf":       gomono.TTF,
	"Go-Mono-Bold.ttf":  gomonobold.TTF,
}

// builtinOrder 保证注册顺序稳定。
var builtinOrder = []string{
	"Go-Regular.ttf",
	"Go-Bold.ttf",
	"Go-Italic.ttf",
	"Go-BoldItalic.ttf",
	"Go-Mono.ttf",
	"Go-Mono-Bold.ttf",
}

// Load 返回内置字体的字节数据，name 可写为 "embed:Go-Regular.ttf" 或直接 "Go-Regular.ttf"。
func Load(name string) ([]byte, error) {
	clean := strings.TrimPrefix(name, "embed:")
	data, ok := builtin[clean]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: %w", clean, ErrNoFont)
	}
	return data, nil
}
