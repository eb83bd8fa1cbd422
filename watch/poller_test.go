package watch

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ByLCY/glyphcast/tail"
)

type fakeInfo struct {
	fs.FileInfo
	mod time.Time
}

func (f fakeInfo) ModTime() time.Time { return f.mod }

// fakeFS 记录 stat/read 调用次数，并允许测试修改返回值。
type fakeFS struct {
	mod     time.Time
	statErr error
	text    string
	readErr error
	stats   int
	reads   int
}

func (f *fakeFS) stat(string) (fs.FileInfo, error) {
	f.stats++
	if f.statErr != nil {
		return nil, f.statErr
	}
	return fakeInfo{mod: f.mod}, nil
}

func (f *fakeFS) read(string, int) (string, error) {
	f.reads++
	return f.text, f.readErr
}

func newFakePoller(f *fakeFS) *Poller {
	return NewPoller(Options{Stat: f.stat, Read: f.read})
}

func TestTickBeforeIntervalDoesNoIO(t *testing.T) {
	f := &fakeFS{mod: time.Unix(100, 0), text: "hello\n"}
	p := newFakePoller(f)
	p.Reset("chat.log", 6, time.Time{})

	for i := 0; i < 59; i++ {
		if _, changed := p.Tick(1.0 / 60); changed {
			t.Fatalf("间隔未到不应触发变更")
		}
	}
	if f.stats != 0 || f.reads != 0 {
		t.Fatalf("间隔未到不应访问文件, stats=%d reads=%d", f.stats, f.reads)
	}
}

func TestTickChecksOnceAndResetsAccumulator(t *testing.T) {
	f := &fakeFS{mod: time.Unix(100, 0), text: "hello\n"}
	p := newFakePoller(f)
	p.Reset("chat.log", 6, time.Time{})

	p.Tick(0.6)
	text, changed := p.Tick(0.6)
	if !changed || text != "hello\n" {
		t.Fatalf("到达间隔后应读取新内容, got %q %v", text, changed)
	}
	if f.stats != 1 || f.reads != 1 {
		t.Fatalf("应恰好检查一次, stats=%d reads=%d", f.stats, f.reads)
	}

	// 累计器已清零：再过 0.9 秒不应检查。
	p.Tick(0.9)
	if f.stats != 1 {
		t.Fatalf("累计器未清零, stats=%d", f.stats)
	}
	p.Tick(0.2)
	if f.stats != 2 {
		t.Fatalf("第二个间隔应检查一次, stats=%d", f.stats)
	}
	if f.reads != 1 {
		t.Fatalf("修改时间未变化时不应读取, reads=%d", f.reads)
	}
}

func TestTickLargeDeltaChecksOnce(t *testing.T) {
	f := &fakeFS{mod: time.Unix(100, 0)}
	p := newFakePoller(f)
	p.Reset("chat.log", 6, time.Time{})

	p.Tick(5)
	if f.stats != 1 {
		t.Fatalf("单个长 tick 只应检查一次, stats=%d", f.stats)
	}
	p.Tick(0.5)
	if f.stats != 1 {
		t.Fatalf("长 tick 之后累计器应清零, stats=%d", f.stats)
	}
}

func TestModTimeChangeTriggersRead(t *testing.T) {
	f := &fakeFS{mod: time.Unix(100, 0), text: "a\n"}
	p := newFakePoller(f)
	p.Reset("chat.log", 6, time.Unix(100, 0))

	if _, changed := p.Tick(1); changed {
		t.Fatalf("修改时间相同不应触发")
	}
	f.mod = time.Unix(101, 0)
	f.text = "a\nb\n"
	text, changed := p.Tick(1)
	if !changed || text != "a\nb\n" {
		t.Fatalf("修改时间变化应触发读取, got %q %v", text, changed)
	}
	if !p.State().ModTime.Equal(f.mod) {
		t.Fatalf("应记录新的修改时间, got %v", p.State().ModTime)
	}
}

func TestReadFailureRetriesNextInterval(t *testing.T) {
	f := &fakeFS{mod: time.Unix(100, 0), readErr: tail.ErrUnreadable}
	p := newFakePoller(f)
	p.Reset("chat.log", 6, time.Time{})

	if _, changed := p.Tick(1); changed {
		t.Fatalf("读取失败不应报告变更")
	}
	if p.State().Checked() {
		t.Fatalf("读取失败时不应记录修改时间")
	}

	f.readErr = nil
	f.text = "recovered\n"
	text, changed := p.Tick(1)
	if !changed || text != "recovered\n" {
		t.Fatalf("下一个间隔应重试, got %q %v", text, changed)
	}
	if f.reads != 2 {
		t.Fatalf("期望两次读取, got %d", f.reads)
	}
}

func TestStatFailureSkipsRead(t *testing.T) {
	f := &fakeFS{statErr: errors.New("gone")}
	p := newFakePoller(f)
	p.Reset("chat.log", 6, time.Time{})

	p.Tick(1)
	if f.stats != 1 || f.reads != 0 {
		t.Fatalf("stat 失败时不应读取, stats=%d reads=%d", f.stats, f.reads)
	}
}

func TestResetClearsState(t *testing.T) {
	f := &fakeFS{mod: time.Unix(100, 0), text: "x\n"}
	p := newFakePoller(f)
	p.Reset("a.log", 6, time.Time{})
	p.Tick(0.8)
	p.Reset("b.log", 3, time.Time{})

	if p.State().Path != "b.log" || p.State().Lines != 3 || p.State().Checked() {
		t.Fatalf("Reset 后状态不正确: %+v", p.State())
	}
	p.Tick(0.8)
	if f.stats != 0 {
		t.Fatalf("Reset 应清零累计器, stats=%d", f.stats)
	}
}

func TestIdleWithoutPath(t *testing.T) {
	f := &fakeFS{}
	p := newFakePoller(f)
	p.Tick(10)
	if f.stats != 0 {
		t.Fatalf("未设置文件时不应检查")
	}
}

func TestPollerWithRealFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")
	if err := os.WriteFile(path, []byte("one\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	p := NewPoller(Options{Interval: 500 * time.Millisecond})
	p.Reset(path, 2, time.Time{})

	text, changed := p.Tick(0.5)
	if !changed || text != "two\nthree\n" {
		t.Fatalf("应读取最后两行, got %q %v", text, changed)
	}

	later := p.State().ModTime.Add(2 * time.Second)
	if err := os.WriteFile(path, []byte("one\ntwo\nthree\nfour\n"), 0o644); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("修改时间设置失败: %v", err)
	}
	text, changed = p.Tick(0.5)
	if !changed || text != "three\nfour\n" {
		t.Fatalf("追加后应读取新尾部, got %q %v", text, changed)
	}
}
