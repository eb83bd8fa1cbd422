package fonts

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ByLCY/glyphcast/logging"
)

// Registry maps family names to parsed fonts. The embedded Go family is
// always present and serves as the fallback. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	families map[string][]*Font
	names    map[string]string
	fallback string
	logger   *slog.Logger
}

// NewRegistry creates a registry holding the embedded fonts.
func NewRegistry(logger *slog.Logger) *Registry {
	r := &Registry{
		families: map[string][]*Font{},
		names:    map[string]string{},
		fallback: FallbackFamily,
		logger:   logging.OrNop(logger),
	}
	for _, name := range builtinOrder {
		if _, err := r.Add(builtin[name]); err != nil {
			// 内置字体必须可以解析。
			panic(fmt.Sprintf("fonts: 内置字体 %s 无法解析: %v", name, err))
		}
	}
	return r
}

// Add parses data and registers it under its family name.
func (r *Registry) Add(data []byte) (*Font, error) {
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	key := strings.ToLower(f.Family)
	r.mu.Lock()
	r.families[key] = append(r.families[key], f)
	if _, ok := r.names[key]; !ok {
		r.names[key] = f.Family
	}
	r.mu.Unlock()
	return f, nil
}

// AddFile reads and registers one font file.
func (r *Registry) AddFile(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体文件 %s 失败: %w", path, err)
	}
	f, err := r.Add(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ScanDir registers every .ttf and .otf file below dir. Files that fail to
// parse are skipped. It returns the number of fonts added.
func (r *Registry) ScanDir(dir string) (int, error) {
	added := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			r.logger.Debug("skip font path", "path", path, "err", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ttf", ".otf":
		default:
			return nil
		}
		f, err := r.AddFile(path)
		if err != nil {
			r.logger.Debug("skip font file", "path", path, "err", err)
			return nil
		}
		r.logger.Debug("font registered", "family", f.Family, "subfamily", f.Subfamily, "path", path)
		added++
		return nil
	})
	if err != nil {
		return added, fmt.Errorf("扫描字体目录 %s 失败: %w", dir, err)
	}
	return added, nil
}

// SetFallback selects the family used when a requested family is missing.
func (r *Registry) SetFallback(family string) error {
	key := strings.ToLower(strings.TrimSpace(family))
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.families[key]; !ok {
		return fmt.Errorf("字体 %s 未注册: %w", family, ErrNoFont)
	}
	r.fallback = family
	return nil
}

// Has reports whether a family is registered.
func (r *Registry) Has(family string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.families[strings.ToLower(strings.TrimSpace(family))]
	return ok
}

// Families returns the registered family names, sorted.
func (r *Registry) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the face of family closest to the requested weight and
// slant. Unknown families resolve through the fallback family. An empty
// family name is an error.
func (r *Registry) Resolve(family string, bold, italic bool) (*Font, error) {
	name := strings.TrimSpace(family)
	if name == "" {
		return nil, fmt.Errorf("未指定字体: %w", ErrNoFont)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	faces := r.families[strings.ToLower(name)]
	if len(faces) == 0 {
		faces = r.families[strings.ToLower(r.fallback)]
		if len(faces) == 0 {
			return nil, fmt.Errorf("字体 %s 未注册且无回退字体: %w", name, ErrNoFont)
		}
		r.logger.Debug("font family not found, using fallback", "family", name, "fallback", r.fallback)
	}
	return closest(faces, bold, italic), nil
}

// closest 选出粗细/倾斜不匹配项最少的字体；相同时取先注册的。
func closest(faces []*Font, bold, italic bool) *Font {
	best := faces[0]
	bestScore := 3
	for _, f := range faces {
		score := 0
		if f.Bold != bold {
			score++
		}
		if f.Italic != italic {
			score++
		}
		if score < bestScore {
			best, bestScore = f, score
		}
	}
	return best
}
