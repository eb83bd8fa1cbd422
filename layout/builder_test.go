package layout

import (
	"strings"
	"testing"

	"github.com/ByLCY/glyphcast/dsl"
)

// buildSheet 是测试辅助：解析样式表文本并构建样式列表。
func buildSheet(t *testing.T, text string, opts BuildOptions) []Style {
	t.Helper()
	sheet, err := dsl.ParseString(text)
	if err != nil {
		t.Fatalf("解析样式表失败: %v", err)
	}
	styles, err := BuildStyles(sheet, opts)
	if err != nil {
		t.Fatalf("构建样式失败: %v", err)
	}
	return styles
}

func TestBuildStylesDefaultsAndInheritance(t *testing.T) {
	styles := buildSheet(t, `
sheet Overlay v1 {
  defaults {
    font: "Go" 24pt bold
    color: #FF0000
  }
  style title {
    "Now playing:"
    "${track.name|nothing}"
    gradient: #0000FF80
    outline: 3px #00FF00
    shadow: on
    align: center
  }
  style chat extends title {
    file: "/tmp/chat.log"
    log: 12
    vertical: true
    shadow: none
    flags: italic underline
  }
}
`, BuildOptions{Data: map[string]any{"track": map[string]any{"name": "Song"}}})

	if len(styles) != 2 {
		t.Fatalf("期望 2 个样式，实际 %d", len(styles))
	}
	title, chat := styles[0], styles[1]

	if title.Name != "title" || title.FontFace != "Go" || title.FontSize != 32 {
		t.Fatalf("defaults 未生效: %+v", title)
	}
	if !title.FontFlags.Has(FontBold) {
		t.Fatalf("应继承 bold 标记")
	}
	if title.Text != "Now playing:\nSong" {
		t.Fatalf("文本未正确拼接/绑定: %q", title.Text)
	}
	if title.Color1 != 0xFFFF0000 || title.Color2 != 0x800000FF || !title.Gradient {
		t.Fatalf("颜色解析错误: %s %s %v", title.Color1, title.Color2, title.Gradient)
	}
	if !title.Outline || title.OutlineWidth != 3 || title.OutlineColor != 0xFF00FF00 {
		t.Fatalf("描边解析错误: %+v", title)
	}
	if !title.Shadow || title.ShadowOffset != 4 || title.ShadowColor != 0xFF000000 {
		t.Fatalf("阴影应沿用默认偏移与颜色: %+v", title)
	}
	if title.Align != AlignCenter || title.Orientation != Horizontal {
		t.Fatalf("对齐/方向错误: %v %v", title.Align, title.Orientation)
	}

	if chat.Text != title.Text || chat.Align != AlignCenter || !chat.Outline {
		t.Fatalf("chat 应继承 title: %+v", chat)
	}
	if chat.Shadow {
		t.Fatalf("chat 关闭了阴影")
	}
	if !chat.FromFile || chat.File != "/tmp/chat.log" || !chat.LogMode || chat.LogLines != 12 {
		t.Fatalf("文件来源解析错误: %+v", chat)
	}
	if chat.TailLines() != 12 {
		t.Fatalf("日志模式下 TailLines 应为 12，实际 %d", chat.TailLines())
	}
	if chat.Orientation != Vertical {
		t.Fatalf("应为竖排")
	}
	if chat.FontFlags != FontItalic|FontUnderline {
		t.Fatalf("flags 应整体替换，实际 %s", chat.FontFlags)
	}
}

func TestBuildStylesUsesPlatformDefaults(t *testing.T) {
	styles := buildSheet(t, "sheet S v1 {\n style a { \"x\" }\n}\n", BuildOptions{})
	want := DefaultStyle()
	want.Name = "a"
	want.Text = "x"
	if styles[0] != want {
		t.Fatalf("默认样式不一致:\n got %+v\nwant %+v", styles[0], want)
	}
	if styles[0].Outline || styles[0].Shadow || styles[0].Gradient {
		t.Fatalf("描边、阴影、渐变默认关闭")
	}

	styles = buildSheet(t, "sheet S v1 {\n style a { \"x\" }\n}\n", BuildOptions{DefaultFace: "Go Mono"})
	if styles[0].FontFace != "Go Mono" {
		t.Fatalf("DefaultFace 未生效: %s", styles[0].FontFace)
	}
}

func TestBuildStylesErrors(t *testing.T) {
	cases := map[string]string{
		"cycle":         "sheet S v1 {\n style a extends b { \"x\" }\n style b extends a { \"y\" }\n}\n",
		"missing base":  "sheet S v1 {\n style a extends nope { \"x\" }\n}\n",
		"duplicate":     "sheet S v1 {\n style a { \"x\" }\n style a { \"y\" }\n}\n",
		"unknown prop":  "sheet S v1 {\n style a { colour: #fff }\n}\n",
		"bad color":     "sheet S v1 {\n style a { color: red }\n}\n",
		"outline range": "sheet S v1 {\n style a { outline: 300px }\n}\n",
		"log range":     "sheet S v1 {\n style a { log: 5000 }\n}\n",
		"no styles":     "sheet S v1 {\n defaults { color: #fff }\n}\n",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			sheet, err := dsl.ParseString(text)
			if err != nil {
				t.Fatalf("解析失败: %v", err)
			}
			if _, err := BuildStyles(sheet, BuildOptions{}); err == nil {
				t.Fatalf("期望构建失败")
			}
		})
	}
}

func TestFindStyle(t *testing.T) {
	styles := []Style{{Name: "a"}, {Name: "b"}}
	if s, err := FindStyle(styles, ""); err != nil || s.Name != "a" {
		t.Fatalf("空名字应返回第一个样式")
	}
	if s, err := FindStyle(styles, "b"); err != nil || s.Name != "b" {
		t.Fatalf("应找到 b")
	}
	if _, err := FindStyle(styles, "c"); err == nil || !strings.Contains(err.Error(), "c") {
		t.Fatalf("不存在的样式应报错, got %v", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := map[string]Color{
		"#fff":      0xFFFFFFFF,
		"#f008":     0x88FF0000,
		"#102030":   0xFF102030,
		"#10203040": 0x40102030,
	}
	for in, want := range tests {
		got, err := ParseColor(in)
		if err != nil {
			t.Fatalf("解析 %s 失败: %v", in, err)
		}
		if got != want {
			t.Fatalf("解析 %s 得到 %s，期望 %s", in, got, want)
		}
	}
	for _, bad := range []string{"", "#12", "#12345", "#GGHHII"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("%q 应解析失败", bad)
		}
	}
}
