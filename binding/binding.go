// Package binding expands ${path} placeholders in style text from JSON data.
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 占位符可写成 ${path|默认值}；路径不存在时使用默认值，没有默认值则保留原占位符。
// 数组下标支持负数，-1 表示最后一个元素。
func Interpolate(text string, data any) string {
	if !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path, fallback, hasFallback := splitExpr(match[2 : len(match)-1])
		if path != "" && data != nil {
			if val, ok := resolvePath(data, path); ok && val != nil {
				return format(val)
			}
		}
		if hasFallback {
			return fallback
		}
		return match
	})
}

// Fields returns the placeholder paths used in text, in order of appearance.
func Fields(text string) []string {
	var out []string
	for _, groups := range exprPattern.FindAllStringSubmatch(text, -1) {
		path, _, _ := splitExpr(groups[1])
		if path != "" {
			out = append(out, path)
		}
	}
	return out
}

func splitExpr(expr string) (path, fallback string, ok bool) {
	path, fallback, ok = strings.Cut(expr, "|")
	return strings.TrimSpace(path), strings.TrimSpace(fallback), ok
}

// format 输出 JSON 值；整数形式的浮点数不带小数点。
func format(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(strings.TrimSpace(idxStr))
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

// parseSegment 拆分 "items[0][1]" 为字段名与下标列表。
func parseSegment(segment string) (string, []string) {
	name, rest, found := strings.Cut(strings.TrimSpace(segment), "[")
	if !found {
		return name, nil
	}
	rest = "[" + rest
	var indexes []string
	for strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			break
		}
		indexes = append(indexes, rest[1:end])
		rest = rest[end+1:]
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	c, ok := current.(map[string]any)
	if !ok {
		return nil, false
	}
	val, ok := c[key]
	return val, ok
}

func descendArray(current any, idx int) (any, bool) {
	c, ok := current.([]any)
	if !ok {
		return nil, false
	}
	if idx < 0 {
		idx += len(c)
	}
	if idx < 0 || idx >= len(c) {
		return nil, false
	}
	return c[idx], true
}
