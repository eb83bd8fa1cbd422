// Package watch polls a text file for changes from a host-driven tick.
package watch

import (
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/ByLCY/glyphcast/logging"
	"github.com/ByLCY/glyphcast/tail"
)

// DefaultInterval 是两次文件检查之间的最小间隔。
const DefaultInterval = time.Second

// StatFunc returns file information for a path (os.Stat by default).
type StatFunc func(path string) (fs.FileInfo, error)

// ReadFunc returns the last n lines of a file (tail.Read by default).
type ReadFunc func(path string, n int) (string, error)

// State is what the poller remembers about the watched file.
type State struct {
	Path    string
	ModTime time.Time
	Lines   int
}

// Checked reports whether a modification time has been recorded.
func (s State) Checked() bool { return !s.ModTime.IsZero() }

// Options configures a Poller. Zero values select the defaults.
type Options struct {
	Interval time.Duration
	Stat     StatFunc
	Read     ReadFunc
	Logger   *slog.Logger
}

// Poller accumulates tick time and checks the watched file at most once per
// interval. A tail read happens only when the modification time moved.
//
// Poller is driven from a single goroutine and is not safe for concurrent use.
type Poller struct {
	interval float64
	stat     StatFunc
	read     ReadFunc
	logger   *slog.Logger

	elapsed float64
	state   State
	checks  int
}

// NewPoller creates a poller that watches nothing until Reset is called.
func NewPoller(opts Options) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	stat := opts.Stat
	if stat == nil {
		stat = os.Stat
	}
	read := opts.Read
	if read == nil {
		read = tail.Read
	}
	return &Poller{
		interval: interval.Seconds(),
		stat:     stat,
		read:     read,
		logger:   logging.OrNop(opts.Logger),
	}
}

// Reset 切换到新的文件（或清空），丢弃已记录的修改时间与累计时间。
// modTime 非零时表示调用方已读过该版本的文件。
func (p *Poller) Reset(path string, lines int, modTime time.Time) {
	p.state = State{Path: path, Lines: lines, ModTime: modTime}
	p.elapsed = 0
}

// State returns a copy of the current watch state.
func (p *Poller) State() State { return p.state }

// Checks returns how many stat checks have run since creation.
func (p *Poller) Checks() int { return p.checks }

// Tick advances the accumulator by seconds. When a check is due and the file
// changed, it returns the new tail text and true.
func (p *Poller) Tick(seconds float64) (string, bool) {
	if p.state.Path == "" {
		return "", false
	}
	if seconds > 0 {
		p.elapsed += seconds
	}
	if p.elapsed < p.interval {
		return "", false
	}
	p.elapsed = 0
	return p.check()
}

func (p *Poller) check() (string, bool) {
	p.checks++
	info, err := p.stat(p.state.Path)
	if err != nil {
		p.logger.Debug("stat watched file failed", "path", p.state.Path, "err", err)
		return "", false
	}
	mod := info.ModTime()
	if mod.Equal(p.state.ModTime) {
		return "", false
	}

	text, err := p.read(p.state.Path, p.state.Lines)
	if err != nil {
		// 不记录修改时间，下一个间隔会重试。
		p.logger.Warn("read watched file failed", "path", p.state.Path, "err", err)
		return "", false
	}
	p.state.ModTime = mod
	p.logger.Debug("watched file changed", "path", p.state.Path, "mod_time", mod, "bytes", len(text))
	return text, true
}
