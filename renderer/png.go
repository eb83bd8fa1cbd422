package renderer

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
)

// WritePNG encodes the artifact as PNG at path, creating parent directories.
func WritePNG(a *Artifact, path string) error {
	if a.Empty() {
		return fmt.Errorf("没有可写出的像素")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建目录失败: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建文件失败: %w", err)
	}
	if err := png.Encode(f, a.RGBA()); err != nil {
		f.Close()
		return fmt.Errorf("写入 PNG 失败: %w", err)
	}
	return f.Close()
}

// WriteRaw writes the BGRA bytes as they are.
func WriteRaw(a *Artifact, path string) error {
	if a.Empty() {
		return fmt.Errorf("没有可写出的像素")
	}
	return os.WriteFile(path, a.Pix, 0o644)
}
