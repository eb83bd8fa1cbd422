package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ByLCY/glyphcast/config"
	"github.com/ByLCY/glyphcast/dsl"
	"github.com/ByLCY/glyphcast/fonts"
	"github.com/ByLCY/glyphcast/graphics"
	"github.com/ByLCY/glyphcast/layout"
	"github.com/ByLCY/glyphcast/logging"
	"github.com/ByLCY/glyphcast/renderer"
	canvasrenderer "github.com/ByLCY/glyphcast/renderer/canvas"
	rasterrenderer "github.com/ByLCY/glyphcast/renderer/raster"
	"github.com/ByLCY/glyphcast/source"
	"github.com/ByLCY/glyphcast/tui"
)

// options 汇总命令行参数。
type options struct {
	stylePath  string
	styleName  string
	configPath string
	outPath    string
	rawPath    string
	proofPath  string
	debugPath  string
	data       any
	watch      bool
}

func main() {
	stylePath := flag.String("style", "examples/overlay.gcs", "样式表文件路径")
	styleName := flag.String("name", "", "要渲染的样式名，默认第一个")
	configPath := flag.String("config", "", "配置文件路径，默认 ~/.config/glyphcast/config.toml")
	outPath := flag.String("out", "output/overlay.png", "PNG 输出路径")
	rawPath := flag.String("raw", "", "BGRA 原始像素输出路径")
	proofPath := flag.String("proof", "", "PDF 版面校样输出路径")
	debugPath := flag.String("debug", "", "排版调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到样式文本的 JSON 数据")
	watch := flag.Bool("watch", false, "打开终端预览并监视文本文件")
	flag.Parse()

	opts := options{
		stylePath:  *stylePath,
		styleName:  *styleName,
		configPath: *configPath,
		outPath:    *outPath,
		rawPath:    *rawPath,
		proofPath:  *proofPath,
		debugPath:  *debugPath,
		watch:      *watch,
	}
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &opts.data); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	if err := run(opts); err != nil {
		log.Fatalf("glyphcast: %v", err)
	}
}

// run 串联配置、样式解析、渲染与输出。
func run(opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	logOut := io.Writer(os.Stderr)
	if opts.watch {
		// 预览界面占用终端时日志写入文件。
		f, err := openLogFile(cfg.LogPath())
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: logging.ParseLevel(cfg.LogLevel)}))

	registry := fonts.NewRegistry(logger)
	for _, dir := range cfg.FontDirs {
		n, err := registry.ScanDir(dir)
		if err != nil {
			logger.Warn("扫描字体目录失败", "dir", dir, "err", err)
			continue
		}
		logger.Debug("已加载字体目录", "dir", dir, "fonts", n)
	}

	style, err := loadStyle(opts.stylePath, opts.styleName, layout.BuildOptions{
		Data:        opts.data,
		DefaultFace: cfg.DefaultFace,
	})
	if err != nil {
		return err
	}

	raster := rasterrenderer.NewWithOptions(rasterrenderer.Options{
		Fonts:          registry,
		MaxTextureSize: cfg.MaxTextureSize,
		Logger:         logger,
	})
	device := graphics.NewMemory(cfg.MaxTextureSize)
	src, err := source.New(source.Options{
		Device:        device,
		Renderer:      raster,
		CheckInterval: cfg.CheckInterval,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	defer src.Destroy()
	src.Update(style)

	if opts.watch {
		return tui.Run(tui.Options{
			Source:        src,
			Device:        device,
			FrameInterval: cfg.FrameInterval(),
			SnapshotPath:  cfg.SnapshotPath,
			Title:         "glyphcast · " + style.Name,
		})
	}

	// 输出与文件来源一致的文本。
	style.Text = src.Text()
	if err := writeOutputs(opts, style, registry, device, src); err != nil {
		return err
	}
	fmt.Printf("已渲染 %s：%dx%d\n", style.Name, src.Width(), src.Height())
	return nil
}

func loadStyle(path, name string, buildOpts layout.BuildOptions) (layout.Style, error) {
	file, err := os.Open(path)
	if err != nil {
		return layout.Style{}, fmt.Errorf("无法打开样式表 %s: %w", path, err)
	}
	defer file.Close()

	sheet, err := dsl.Parse(path, file)
	if err != nil {
		return layout.Style{}, fmt.Errorf("解析样式表失败: %w", err)
	}
	styles, err := layout.BuildStyles(sheet, buildOpts)
	if err != nil {
		return layout.Style{}, fmt.Errorf("构建样式失败: %w", err)
	}
	return layout.FindStyle(styles, name)
}

func writeOutputs(opts options, style layout.Style, registry *fonts.Registry, device *graphics.Memory, src *source.Source) error {
	if opts.debugPath != "" {
		m, err := layout.Measure(style, layout.NewShaper(), registry)
		if err != nil {
			return fmt.Errorf("排版失败: %w", err)
		}
		if err := ensureDir(opts.debugPath); err != nil {
			return err
		}
		if err := layout.WriteDebugJSON(m, opts.debugPath); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}

	if opts.proofPath != "" {
		pdfBytes, err := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{Fonts: registry}).Render(style)
		if err != nil {
			return fmt.Errorf("渲染 PDF 校样失败: %w", err)
		}
		if err := ensureDir(opts.proofPath); err != nil {
			return err
		}
		if err := os.WriteFile(opts.proofPath, pdfBytes, 0o644); err != nil {
			return fmt.Errorf("写入 PDF 文件失败: %w", err)
		}
	}

	tex := src.Texture()
	if tex == nil {
		return fmt.Errorf("样式 %s 没有生成纹理（文本为空或渲染失败，详见日志）", style.Name)
	}
	mem, ok := device.Lookup(tex.ID())
	if !ok {
		return fmt.Errorf("纹理 %d 不存在", tex.ID())
	}
	art := renderer.FromTexture(mem)
	if opts.outPath != "" {
		if err := renderer.WritePNG(art, opts.outPath); err != nil {
			return err
		}
	}
	if opts.rawPath != "" {
		if err := ensureDir(opts.rawPath); err != nil {
			return err
		}
		if err := renderer.WriteRaw(art, opts.rawPath); err != nil {
			return fmt.Errorf("写入原始像素失败: %w", err)
		}
	}
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	return f, nil
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	return nil
}
