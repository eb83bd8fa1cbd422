package source

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ByLCY/glyphcast/graphics"
	"github.com/ByLCY/glyphcast/layout"
	"github.com/ByLCY/glyphcast/tail"
)

// countingDevice 记录 Enter 调用次数。
type countingDevice struct {
	*graphics.Memory
	enters int
}

func (d *countingDevice) Enter() {
	d.enters++
	d.Memory.Enter()
}

func newDevice(maxSize int) *countingDevice {
	return &countingDevice{Memory: graphics.NewMemory(maxSize)}
}

func textStyle(text string) layout.Style {
	s := layout.DefaultStyle()
	s.Name = "test"
	s.FontFace = "Go"
	s.Text = text
	return s
}

func newSource(t *testing.T, opts Options) *Source {
	t.Helper()
	s, err := New(opts)
	if err != nil {
		t.Fatalf("创建 Source 失败: %v", err)
	}
	return s
}

func TestNewRequiresDevice(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("缺少设备应报错")
	}
}

func TestUpdateEmptyMakesNoDeviceCall(t *testing.T) {
	dev := newDevice(0)
	s := newSource(t, Options{Device: dev})
	s.Update(textStyle(""))
	if dev.enters != 0 {
		t.Fatalf("空文本不应调用设备，Enter 调用了 %d 次", dev.enters)
	}
	if s.Texture() != nil || s.Width() != 0 || s.Height() != 0 {
		t.Fatalf("空文本不应有纹理")
	}
}

func TestUpdateReplacesTexture(t *testing.T) {
	dev := newDevice(0)
	s := newSource(t, Options{Device: dev})

	s.Update(textStyle("Hi"))
	first := s.Texture()
	if first == nil || s.Width() == 0 || s.Height() == 0 {
		t.Fatalf("应创建纹理")
	}
	if first.Width() != s.Width() || first.Height() != s.Height() {
		t.Fatalf("纹理尺寸与 Source 不一致")
	}
	mem, ok := dev.Lookup(first.ID())
	if !ok || mem.Format() != graphics.FormatBGRA || len(mem.Pix()) != s.Width()*s.Height()*4 {
		t.Fatalf("上传的像素不正确")
	}

	s.Update(textStyle("Hello"))
	if live, created, destroyed := dev.Stats(); live != 1 || created != 2 || destroyed != 1 {
		t.Fatalf("旧纹理应先销毁: live=%d created=%d destroyed=%d", live, created, destroyed)
	}
	if s.Texture().ID() == first.ID() {
		t.Fatalf("应替换为新纹理")
	}

	s.Update(textStyle(""))
	if live, _, _ := dev.Stats(); live != 0 || s.Texture() != nil {
		t.Fatalf("改为空文本后应释放纹理")
	}
	if s.Renders() != 3 {
		t.Fatalf("期望 3 次渲染，实际 %d", s.Renders())
	}
}

func TestTextureCreationFailure(t *testing.T) {
	dev := newDevice(0)
	dev.Fail = errors.New("out of memory")
	s := newSource(t, Options{Device: dev})
	s.Update(textStyle("Hi"))
	if s.Texture() != nil || s.Width() != 0 {
		t.Fatalf("创建失败时不应有纹理")
	}

	dev.Fail = nil
	small := newDevice(8)
	s = newSource(t, Options{Device: small})
	s.Update(textStyle("Hi"))
	if s.Texture() != nil {
		t.Fatalf("超过设备上限时不应有纹理")
	}
}

func TestDestroy(t *testing.T) {
	dev := newDevice(0)
	s := newSource(t, Options{Device: dev})
	s.Update(textStyle("Hi"))
	s.Destroy()
	if live, _, destroyed := dev.Stats(); live != 0 || destroyed != 1 {
		t.Fatalf("Destroy 应释放纹理")
	}
	s.Destroy()
	if s.Texture() != nil || s.Width() != 0 {
		t.Fatalf("Destroy 后状态应清空")
	}
}

func TestFileSourceAndWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chat.log")
	if err := os.WriteFile(path, []byte("one\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatalf("写入失败: %v", err)
	}

	dev := newDevice(0)
	s := newSource(t, Options{Device: dev, CheckInterval: time.Second})
	style := textStyle("inline")
	style.FromFile = true
	style.File = path
	style.LogMode = true
	style.LogLines = 2
	s.Update(style)
	if s.Text() != "two\nthree\n" {
		t.Fatalf("日志模式应只读最后 2 行: %q", s.Text())
	}
	if s.Texture() == nil {
		t.Fatalf("应创建纹理")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat 失败: %v", err)
	}
	if got := s.Watch().ModTime; !got.Equal(info.ModTime()) {
		t.Fatalf("更新时应记录文件修改时间: %v, want %v", got, info.ModTime())
	}

	// 文件未变化时，检查不应重新读取或重建纹理。
	s.Tick(0.5)
	s.Tick(0.5)
	s.Tick(1)
	if s.Renders() != 1 {
		t.Fatalf("文件未变化不应重新渲染，实际渲染 %d 次", s.Renders())
	}
	if _, created, destroyed := dev.Stats(); created != 1 || destroyed != 0 {
		t.Fatalf("文件未变化不应重建纹理: created=%d destroyed=%d", created, destroyed)
	}

	if err := os.WriteFile(path, []byte("one\ntwo\nthree\nfour\n"), 0o644); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("修改时间失败: %v", err)
	}
	s.Tick(1)
	if s.Text() != "three\nfour\n" || s.Renders() != 2 {
		t.Fatalf("文件变化后应重新渲染: %q (%d)", s.Text(), s.Renders())
	}
	s.Tick(1)
	if s.Renders() != 2 {
		t.Fatalf("文件未变化不应重新渲染")
	}

	style.LogMode = false
	s.Update(style)
	if s.Text() != "one\ntwo\nthree\nfour\n" {
		t.Fatalf("关闭日志模式应读取整个文件: %q", s.Text())
	}
}

func TestFileSourceFallsBackToInlineText(t *testing.T) {
	missing := func(string, int) (string, error) {
		return "", tail.ErrUnreadable
	}
	stat := func(string) (fs.FileInfo, error) { return nil, fs.ErrNotExist }
	s := newSource(t, Options{Device: newDevice(0), Read: missing, Stat: stat})
	style := textStyle("inline")
	style.FromFile = true
	style.File = "/nope"
	s.Update(style)
	if s.Text() != "inline" || s.Texture() == nil {
		t.Fatalf("读取失败应回退到内联文本: %q", s.Text())
	}
	s.Tick(5)
	if s.Text() != "inline" || s.Renders() != 1 {
		t.Fatalf("stat 失败不应重新渲染")
	}
}

func TestFailedUpdateReadRetriesOnFirstCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.log")
	if err := os.WriteFile(path, []byte("ready\n"), 0o644); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	reads := 0
	flaky := func(p string, n int) (string, error) {
		reads++
		if reads == 1 {
			return "", tail.ErrUnreadable
		}
		return tail.Read(p, n)
	}
	s := newSource(t, Options{Device: newDevice(0), Read: flaky, CheckInterval: time.Second})
	style := textStyle("inline")
	style.FromFile = true
	style.File = path
	s.Update(style)
	if s.Text() != "inline" || !s.Watch().ModTime.IsZero() {
		t.Fatalf("读取失败时不应记录修改时间: %q %v", s.Text(), s.Watch().ModTime)
	}
	s.Tick(1)
	if s.Text() != "ready\n" || s.Renders() != 2 {
		t.Fatalf("第一次检查应重新读取文件: %q (%d)", s.Text(), s.Renders())
	}
}
