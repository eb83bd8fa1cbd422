// Package source ties a style, its text source and the rendered texture
// together. A host calls Update when the style changes and Tick once per
// frame; both run on the host's goroutine.
package source

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/ByLCY/glyphcast/graphics"
	"github.com/ByLCY/glyphcast/layout"
	"github.com/ByLCY/glyphcast/logging"
	"github.com/ByLCY/glyphcast/renderer"
	rasterrenderer "github.com/ByLCY/glyphcast/renderer/raster"
	"github.com/ByLCY/glyphcast/tail"
	"github.com/ByLCY/glyphcast/watch"
)

// Options configures a Source.
type Options struct {
	// Device receives the rendered pixels. Required.
	Device graphics.Device
	// Renderer defaults to the CPU raster renderer.
	Renderer renderer.Renderer
	// CheckInterval 是文件检查间隔，默认 watch.DefaultInterval。
	CheckInterval time.Duration
	Stat          watch.StatFunc
	Read          watch.ReadFunc
	Logger        *slog.Logger
}

// Source is one rendered text instance. It owns at most one device texture.
//
// Source is not safe for concurrent use; Update, Tick and Destroy must not
// overlap.
type Source struct {
	device   graphics.Device
	renderer renderer.Renderer
	poller   *watch.Poller
	stat     watch.StatFunc
	read     watch.ReadFunc
	logger   *slog.Logger

	style   layout.Style
	text    string
	texture graphics.Texture
	width   int
	height  int
	renders int
}

// New creates an empty Source. Call Update to give it a style.
func New(opts Options) (*Source, error) {
	if opts.Device == nil {
		return nil, errors.New("source: 缺少图形设备")
	}
	logger := logging.OrNop(opts.Logger)
	if opts.Renderer == nil {
		opts.Renderer = rasterrenderer.NewWithOptions(rasterrenderer.Options{Logger: logger})
	}
	if opts.Stat == nil {
		opts.Stat = os.Stat
	}
	if opts.Read == nil {
		opts.Read = tail.Read
	}
	return &Source{
		device:   opts.Device,
		renderer: opts.Renderer,
		stat:     opts.Stat,
		read:     opts.Read,
		logger:   logger,
		poller: watch.NewPoller(watch.Options{
			Interval: opts.CheckInterval,
			Stat:     opts.Stat,
			Read:     opts.Read,
			Logger:   logger,
		}),
	}, nil
}

// Update replaces the style and renders it. With a file source the file is
// read immediately and its modification time recorded, so the watcher only
// re-reads it once it changes. If the read fails the inline text is used
// until the watcher picks the file up.
func (s *Source) Update(style layout.Style) {
	s.style = style
	text := style.Text
	path := ""
	var modTime time.Time
	if style.FromFile && style.File != "" {
		path = style.File
		if t, err := s.read(path, style.TailLines()); err != nil {
			s.logger.Warn("读取文本文件失败，使用内联文本", "path", path, "err", err)
		} else {
			text = t
			modTime = s.modTime(path)
		}
	}
	s.poller.Reset(path, style.TailLines(), modTime)
	s.render(text)
}

// modTime 返回文件当前的修改时间，stat 失败时返回零值，交给下一次检查重读。
func (s *Source) modTime(path string) time.Time {
	info, err := s.stat(path)
	if err != nil {
		s.logger.Debug("读取文件修改时间失败", "path", path, "err", err)
		return time.Time{}
	}
	return info.ModTime()
}

// Tick advances the file watcher by seconds and re-renders when the watched
// file changed.
func (s *Source) Tick(seconds float64) {
	if text, ok := s.poller.Tick(seconds); ok {
		s.render(text)
	}
}

// render 渲染 text 并替换纹理。
func (s *Source) render(text string) {
	s.text = text
	style := s.style
	style.Text = text

	art, err := s.renderer.Render(style)
	if err != nil {
		s.logger.Error("渲染失败", "style", style.Name, "err", err)
		art = nil
	}
	s.renders++
	s.replaceTexture(art)
}

// replaceTexture 在 Enter/Leave 内先销毁旧纹理再创建新纹理。
func (s *Source) replaceTexture(art *renderer.Artifact) {
	if art.Empty() && s.texture == nil {
		s.width, s.height = 0, 0
		return
	}
	s.device.Enter()
	defer s.device.Leave()

	if s.texture != nil {
		s.device.DestroyTexture(s.texture)
		s.texture = nil
	}
	s.width, s.height = 0, 0
	if art.Empty() {
		return
	}
	tex, err := s.device.CreateTexture(art.Width, art.Height, art.Format, art.Pix)
	if err != nil {
		s.logger.Error("创建纹理失败", "width", art.Width, "height", art.Height, "err", err)
		return
	}
	s.texture = tex
	s.width, s.height = art.Width, art.Height
}

// Destroy releases the texture.
func (s *Source) Destroy() {
	if s.texture == nil {
		return
	}
	s.device.Enter()
	s.device.DestroyTexture(s.texture)
	s.device.Leave()
	s.texture = nil
	s.width, s.height = 0, 0
}

// Width is the texture width, 0 without a texture.
func (s *Source) Width() int { return s.width }

// Height is the texture height, 0 without a texture.
func (s *Source) Height() int { return s.height }

// Texture returns the current texture, or nil.
func (s *Source) Texture() graphics.Texture { return s.texture }

// Text returns the text of the last render.
func (s *Source) Text() string { return s.text }

// Style returns the current style.
func (s *Source) Style() layout.Style { return s.style }

// Renders counts completed render passes, failed ones included.
func (s *Source) Renders() int { return s.renders }

// Watch returns the file watch state.
func (s *Source) Watch() watch.State { return s.poller.State() }
