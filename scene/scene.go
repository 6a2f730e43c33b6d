// Package scene composes full game-screen samples: a background, character
// sprites and the message, name and option panels drawn by a renderer.
package scene

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/ByLCY/rubybox/layout"
	"github.com/ByLCY/rubybox/renderer"
)

// PanelRenderer 绘制带底板的文本框，并能按真实字体拟合字号。
// canvasrenderer.Renderer 即为其实现。
type PanelRenderer interface {
	renderer.Renderer
	RenderPanel(tb *layout.TextBox) (*renderer.Output, error)
	FitFontSize(tb *layout.TextBox, lo, hi int, rubyRatio float64) (int, bool, error)
}

// Sample 为一个样本的文本输入；Name、Options 为空时不绘制对应的框。
type Sample struct {
	Message string
	Name    string
	Options []string
}

// Output 为一个合成样本。各文本字段为实际排出的带标记文本。
type Output struct {
	Image       *image.NRGBA
	Text        string
	NameText    string
	OptionTexts []string
	Debug       []layout.DebugRecord
}

// Generator 持有缩放好的背景与立绘，可被多个 goroutine 同时调用 Generate。
type Generator struct {
	cfg        *Config
	r          PanelRenderer
	background *image.NRGBA
	characters []placedImage
}

type placedImage struct {
	img *image.NRGBA
	at  image.Point
}

// NewGenerator 加载背景与立绘图片（相对路径基于 baseDir），并缩放到画布尺寸。
func NewGenerator(cfg *Config, baseDir string, r PanelRenderer) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("renderer 不能为空")
	}
	g := &Generator{cfg: cfg, r: r}

	if cfg.Background.Path != "" {
		img, err := imaging.Open(resolve(baseDir, cfg.Background.Path))
		if err != nil {
			return nil, fmt.Errorf("读取背景 %s 失败: %w", cfg.Background.Path, err)
		}
		g.background = imaging.Resize(img, cfg.Width, cfg.Height, imaging.Lanczos)
	} else {
		fill := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		if c := cfg.Background.Color; c != nil {
			fill = color.NRGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 255}
		}
		g.background = imaging.New(cfg.Width, cfg.Height, fill)
	}

	for _, ch := range cfg.Characters {
		img, err := imaging.Open(resolve(baseDir, ch.Path))
		if err != nil {
			return nil, fmt.Errorf("读取立绘 %s 失败: %w", ch.Path, err)
		}
		g.characters = append(g.characters, placedImage{
			img: imaging.Resize(img, 0, cfg.Height, imaging.Lanczos),
			at:  image.Pt(ch.TL.X, ch.TL.Y),
		})
	}
	return g, nil
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// Generate 合成一个样本。注音越界等排版错误原样返回（可用 errors.Is 判断）。
func (g *Generator) Generate(s Sample) (*Output, error) {
	img := imaging.Clone(g.background)
	for _, ch := range g.characters {
		img = imaging.Overlay(img, ch.img, ch.at, 1.0)
	}
	out := &Output{}

	msg := *g.cfg.Message
	msg.Text = s.Message
	if fit := g.cfg.AutoFit; fit != nil {
		size, ok, err := g.r.FitFontSize(&msg, fit.Min, fit.Max, fit.RubyRatio)
		if err != nil {
			return nil, fmt.Errorf("消息框: %w", err)
		}
		if !ok {
			renderer.Logger().Debug("message does not fit at minimum size", "size", size)
		}
		msg.Font = msg.Font.WithSize(float64(size))
		msg.RubyFont = msg.RubyFont.WithSize(layout.RubySize(float64(size), fit.RubyRatio))
	}
	img, text, err := g.paste(img, &msg, out)
	if err != nil {
		return nil, fmt.Errorf("消息框: %w", err)
	}
	out.Text = text

	if g.cfg.Name != nil && s.Name != "" {
		name := *g.cfg.Name
		name.Text = s.Name
		if img, text, err = g.paste(img, &name, out); err != nil {
			return nil, fmt.Errorf("名字框: %w", err)
		}
		out.NameText = text
	}

	if g.cfg.Options != nil && len(s.Options) > 0 {
		req := *g.cfg.Options
		req.Texts = s.Options
		boxes, err := layout.FitTiles(req)
		if err != nil {
			return nil, fmt.Errorf("选项框: %w", err)
		}
		for i := range boxes {
			if img, text, err = g.paste(img, &boxes[i], out); err != nil {
				return nil, fmt.Errorf("选项框 %d: %w", i, err)
			}
			out.OptionTexts = append(out.OptionTexts, text)
		}
	}

	out.Image = img
	return out, nil
}

// paste 渲染文本框并贴到画布上，返回新画布与实际排出的文本。
func (g *Generator) paste(img *image.NRGBA, tb *layout.TextBox, out *Output) (*image.NRGBA, string, error) {
	panel, err := g.r.RenderPanel(tb)
	if err != nil {
		return nil, "", err
	}
	if panel.Truncated {
		renderer.Logger().Debug("text box truncated", "text", tb.Text, "rendered", panel.Text)
	}
	box := *tb
	out.Debug = append(out.Debug, layout.DebugRecord{Box: &box, Result: panel.Layout})
	return imaging.Overlay(img, panel.Image, image.Pt(tb.TL.X, tb.TL.Y), 1.0), panel.Text, nil
}

// IsRubyOverflow 判断错误是否为注音越界，调用方通常跳过此类样本。
func IsRubyOverflow(err error) bool {
	return errors.Is(err, layout.ErrRubyOverflowLeft) || errors.Is(err, layout.ErrRubyOverflowRight)
}
