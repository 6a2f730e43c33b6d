package canvasrenderer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/ByLCY/rubybox/fonts"
	"github.com/ByLCY/rubybox/glyph"
	"github.com/ByLCY/rubybox/layout"
	"github.com/ByLCY/rubybox/markup"
	"github.com/ByLCY/rubybox/renderer"
)

// Renderer 使用 golang.org/x/image 绘制文字，使用 github.com/tdewolff/canvas 绘制底板。
// 字体解析结果在 Library 中共享；每次 Render 都新建字体面，因此可被多个 goroutine 同时调用。
type Renderer struct {
	lib *fonts.Library
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Library *fonts.Library // 为空时按 BaseDir 新建
}

// NewRenderer creates a renderer resolving font paths relative to baseDir.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with an optional shared font library.
func NewRendererWithOptions(opts Options) *Renderer {
	lib := opts.Library
	if lib == nil {
		lib = fonts.NewLibrary(opts.BaseDir)
	}
	return &Renderer{lib: lib}
}

// Library 返回渲染器使用的字体库。
func (r *Renderer) Library() *fonts.Library { return r.lib }

// faceSet 持有一次渲染所用的正文与注音字体对。
type faceSet struct {
	body *glyph.Pair
	ruby *glyph.Pair // 文本不含注音时为空
}

func (fs *faceSet) fonts() layout.FontSet {
	set := layout.FontSet{Primary: fs.body.Primary, Fallback: fs.body.Fallback}
	if fs.ruby != nil {
		set.Ruby, set.RubyFallback = fs.ruby.Primary, fs.ruby.Fallback
	}
	return set
}

func (fs *faceSet) pick(g layout.Glyph) *glyph.Face {
	pair := fs.body
	if g.Ruby && fs.ruby != nil {
		pair = fs.ruby
	}
	if g.Fallback {
		return pair.Fallback
	}
	return pair.Primary
}

func (fs *faceSet) Close() {
	fs.body.Close()
	if fs.ruby != nil {
		fs.ruby.Close()
	}
}

// rubyFontPair 返回注音字体：未指定来源时沿用正文字体，未指定字号时按默认比例推算。
func rubyFontPair(tb *layout.TextBox) layout.FontPair {
	fp := tb.RubyFont
	if fp.Src == "" {
		fp.Src, fp.FallbackSrc = tb.Font.Src, tb.Font.FallbackSrc
	}
	if fp.Size <= 0 {
		fp.Size = math.Max(1, layout.RubySize(tb.Font.Size, 0))
	}
	return fp
}

func (r *Renderer) openFaces(tb *layout.TextBox) (*faceSet, error) {
	body, err := r.lib.Pair(tb.Font)
	if err != nil {
		return nil, err
	}
	fs := &faceSet{body: body}
	if markup.HasRuby(tb.Text) {
		ruby, err := r.lib.Pair(rubyFontPair(tb))
		if err != nil {
			body.Close()
			return nil, err
		}
		fs.ruby = ruby
	}
	return fs, nil
}

// Render 排版并把文字绘制到与文本框同尺寸的透明图像上。
// Centering 为真时整体右移，使已排内容在可用宽度内水平居中。
func (r *Renderer) Render(tb *layout.TextBox) (*renderer.Output, error) {
	if tb == nil {
		return nil, fmt.Errorf("文本框为空")
	}
	if err := tb.Validate(); err != nil {
		return nil, err
	}
	faces, err := r.openFaces(tb)
	if err != nil {
		return nil, err
	}
	defer faces.Close()

	res, err := layout.Layout(tb, faces.fonts())
	if err != nil {
		return nil, err
	}

	shift := 0.0
	if tb.Centering {
		shift = res.CenterOffset(tb)
	}
	img := image.NewRGBA(image.Rect(0, 0, tb.Width(), tb.Height()))
	body, ruby := toRGBA(tb.FontColor, 255), toRGBA(tb.RubyFill(), 255)
	for _, g := range res.Glyphs {
		c := body
		if g.Ruby {
			c = ruby
		}
		faces.pick(g).DrawGlyph(img, g.X+shift, g.Y, g.R, c)
	}

	renderer.Logger().Debug("text box rendered",
		"glyphs", len(res.Glyphs),
		"lines", res.Lines,
		"truncated", res.Truncated,
		"size", tb.Font.Size)

	return &renderer.Output{
		Image:      img,
		Text:       res.Text,
		RightmostX: res.RightmostX + shift,
		Lines:      res.Lines,
		Truncated:  res.Truncated,
		Layout:     res,
	}, nil
}

// FitFontSize 用真实字体二分查找 [lo, hi] 内能完整排下文本的最大正文字号。
// 试排时注音字号按 rubyRatio 随正文缩放。返回值含义同 layout.SearchFontSize。
func (r *Renderer) FitFontSize(tb *layout.TextBox, lo, hi int, rubyRatio float64) (int, bool, error) {
	if err := tb.Validate(); err != nil {
		return 0, false, err
	}
	faces, err := r.openFaces(tb)
	if err != nil {
		return 0, false, err
	}
	defer faces.Close()

	build := func(size float64) (layout.FontSet, error) {
		if err := faces.body.SetSize(size); err != nil {
			return layout.FontSet{}, err
		}
		if faces.ruby != nil {
			if err := faces.ruby.SetSize(math.Max(1, layout.RubySize(size, rubyRatio))); err != nil {
				return layout.FontSet{}, err
			}
		}
		return faces.fonts(), nil
	}
	return layout.SearchFontSize(tb, lo, hi, build)
}

func toRGBA(c layout.Color, alpha int) color.RGBA {
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: uint8(alpha)}
}
