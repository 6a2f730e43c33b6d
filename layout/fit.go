package layout

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/ByLCY/rubybox/markup"
)

const (
	defaultMaxRows   = 4
	defaultRubyRatio = 0.4
	minRubyRatio     = 0.25
	maxRubyRatio     = 0.5
	// 估算时注音字号取正文的一半。
	rubySizeFactor = 0.5
)

// FitParams 为字号估算所需的文本框参数。估算假定每个字宽与字号相同（全角字），
// 行高为字号乘以 LineHeightRatio。
type FitParams struct {
	Margin          Margin
	Spacing         Spacing
	HasRuby         bool
	LineHeightRatio float64 // <=0 时取 1
	MaxRows         int     // <=0 时取 4
}

func (p FitParams) ratio() float64 {
	if p.LineHeightRatio <= 0 {
		return 1
	}
	return p.LineHeightRatio
}

func (p FitParams) maxRows() int {
	if p.MaxRows <= 0 {
		return defaultMaxRows
	}
	return p.MaxRows
}

// TextLength 返回去掉注音后的正文字符数。
func TextLength(text string) int {
	return utf8.RuneCountInString(markup.RemoveRubyTags(text))
}

// MaxFontSize 以闭式计算单行（有注音时加注音预留高度）在给定高度内可用的最大字号。
func MaxFontSize(boxHeight int, margin Margin, hasRuby bool, rubyLineSpacing float64) int {
	usable := float64(boxHeight - margin.Top - margin.Bottom)
	if hasRuby {
		usable = (usable - rubyLineSpacing) / (1 + rubySizeFactor)
	}
	if usable <= 0 {
		return 0
	}
	return int(math.Floor(usable))
}

// MaxFontSizeWholeText 在 1..MaxRows 行中选出能容纳全部字符且字号最大的行数。
// 每个行数下的字号取宽度约束与高度约束的较小者，最终取所有行数中的最大值；
// 字号相同时取较少的行数。
func MaxFontSizeWholeText(chars, width, height int, p FitParams) (size, rows int) {
	if chars <= 0 {
		chars = 1
	}
	usableW := float64(width - p.Margin.Left - p.Margin.Right)
	usableH := float64(height - p.Margin.Top - p.Margin.Bottom)
	ratio := p.ratio()

	best := 0.0
	rows = 1
	for n := 1; n <= p.maxRows(); n++ {
		perRow := (chars + n - 1) / n
		byWidth := (usableW - p.Spacing.Character*float64(perRow)) / float64(perRow)

		lineFactor := ratio
		rubyExtra := 0.0
		if p.HasRuby {
			lineFactor += ratio * rubySizeFactor
			rubyExtra = p.Spacing.RubyLine
		}
		byHeight := (usableH - float64(n-1)*p.Spacing.Line - float64(n)*rubyExtra) / (float64(n) * lineFactor)

		candidate := math.Min(byWidth, byHeight)
		if candidate > best {
			best = candidate
			rows = n
		}
	}
	if best <= 0 {
		return 0, rows
	}
	return int(math.Floor(best)), rows
}

// Rect 为画布上的矩形区域。
type Rect struct {
	TL Point `json:"tl"`
	BR Point `json:"br"`
}

// Width 为矩形宽度。
func (r Rect) Width() int { return r.BR.X - r.TL.X }

// Height 为矩形高度。
func (r Rect) Height() int { return r.BR.Y - r.TL.Y }

// Tile 将 outer 平均划分为 cols 列的网格，放置 n 个文本框，框与框之间至少留 gap 像素。
func Tile(outer Rect, n, cols, gap int) ([]Rect, error) {
	if n <= 0 {
		return nil, nil
	}
	if cols <= 0 {
		cols = 1
	}
	if cols > n {
		cols = n
	}
	rows := (n + cols - 1) / cols
	cellW := (outer.Width() - (cols-1)*gap) / cols
	cellH := (outer.Height() - (rows-1)*gap) / rows
	if cellW <= 0 || cellH <= 0 {
		return nil, fmt.Errorf("%w: 区域 %+v 放不下 %d×%d 个文本框", ErrInvalidBox, outer, rows, cols)
	}

	rects := make([]Rect, 0, n)
	for i := 0; i < n; i++ {
		col, row := i%cols, i/cols
		tl := Point{
			X: outer.TL.X + col*(cellW+gap),
			Y: outer.TL.Y + row*(cellH+gap),
		}
		rects = append(rects, Rect{TL: tl, BR: Point{X: tl.X + cellW, Y: tl.Y + cellH}})
	}
	return rects, nil
}

// TileRequest 描述一组平铺文本框（例如选项框）的字号拟合请求。
type TileRequest struct {
	Area            Rect     `json:"area"`
	Cols            int      `json:"cols"`
	Gap             int      `json:"gap"`
	Texts           []string `json:"texts"`
	Template        TextBox  `json:"template"` // 边距、间距、配色与字体来源，几何与字号会被覆盖
	NoWrap          bool     `json:"noWrap,omitempty"`
	FloorSize       int      `json:"floorSize,omitempty"`
	RubyRatio       float64  `json:"rubyRatio,omitempty"`
	LineHeightRatio float64  `json:"lineHeightRatio,omitempty"`
}

// FitTiles 划分区域并为所有文本框求一个共享字号：
// 各框分别做整段拟合，下限为 FloorSize、上限为单行闭式上限，取各框中最小者共享；
// 注音字号为正文字号乘以 RubyRatio，并限制在正文字号的 1/4 到 1/2 之间。
// NoWrap 时只按单行拟合，并把框高收缩为单行所需高度（在原格子内垂直居中）。
func FitTiles(req TileRequest) ([]TextBox, error) {
	rects, err := Tile(req.Area, len(req.Texts), req.Cols, req.Gap)
	if err != nil {
		return nil, err
	}
	if len(rects) == 0 {
		return nil, nil
	}

	tpl := req.Template
	shared := math.MaxInt
	for i, text := range req.Texts {
		hasRuby := markup.HasRuby(text)
		params := FitParams{
			Margin:          tpl.Margin,
			Spacing:         tpl.Spacing,
			HasRuby:         hasRuby,
			LineHeightRatio: req.LineHeightRatio,
		}
		if req.NoWrap {
			params.MaxRows = 1
		}
		size, _ := MaxFontSizeWholeText(TextLength(text), rects[i].Width(), rects[i].Height(), params)
		limit := MaxFontSize(rects[i].Height(), tpl.Margin, hasRuby, tpl.Spacing.RubyLine)
		size = max(min(size, limit), req.FloorSize)
		shared = min(shared, size)
	}
	if shared <= 0 {
		return nil, fmt.Errorf("%w: 区域 %+v 无法容纳文本", ErrInvalidBox, req.Area)
	}

	rubySize := RubySize(float64(shared), req.RubyRatio)
	boxes := make([]TextBox, 0, len(rects))
	for i, rect := range rects {
		box := tpl
		box.TL, box.BR = rect.TL, rect.BR
		box.Text = req.Texts[i]
		box.Font = tpl.Font.WithSize(float64(shared))
		box.RubyFont = tpl.RubyFont.WithSize(rubySize)
		if req.NoWrap {
			shrinkToSingleLine(&box, markup.HasRuby(box.Text), req.LineHeightRatio)
		}
		boxes = append(boxes, box)
	}
	return boxes, nil
}

// RubySize 按比例求注音字号，并夹在正文字号的 [1/4, 1/2] 区间内。
func RubySize(size, ratio float64) float64 {
	if ratio <= 0 {
		ratio = defaultRubyRatio
	}
	ratio = math.Min(math.Max(ratio, minRubyRatio), maxRubyRatio)
	return math.Floor(size * ratio)
}

func shrinkToSingleLine(box *TextBox, hasRuby bool, lineHeightRatio float64) {
	if lineHeightRatio <= 0 {
		lineHeightRatio = 1
	}
	need := box.Margin.Top + box.Margin.Bottom + int(math.Ceil(box.Font.Size*lineHeightRatio))
	if hasRuby {
		need += int(math.Ceil(box.RubyFont.Size*lineHeightRatio + box.Spacing.RubyLine))
	}
	h := box.Height()
	if need >= h {
		return
	}
	box.TL.Y += (h - need) / 2
	box.BR.Y = box.TL.Y + need
}

// FontSetBuilder 按字号构建一组字体；SearchFontSize 每次试排前调用。
type FontSetBuilder func(size float64) (FontSet, error)

// SearchFontSize 用真实排版二分查找 [lo, hi] 内能完整排下文本的最大字号。
// 依赖“字号越大排下的文本越少”的单调性；注音越界视为排不下，标记非法直接返回错误。
// 连 lo 都排不下时返回 lo 与 ok=false。
func SearchFontSize(tb *TextBox, lo, hi int, build FontSetBuilder) (size int, ok bool, err error) {
	if lo <= 0 {
		lo = 1
	}
	floor := lo
	fits := func(s int) (bool, error) {
		fonts, err := build(float64(s))
		if err != nil {
			return false, err
		}
		trial := *tb
		trial.Font = tb.Font.WithSize(float64(s))
		res, err := Layout(&trial, fonts)
		switch {
		case errors.Is(err, ErrRubyOverflowLeft), errors.Is(err, ErrRubyOverflowRight):
			return false, nil
		case err != nil:
			return false, err
		}
		return !res.Truncated, nil
	}

	best := 0
	for lo <= hi {
		mid := lo + (hi-lo)/2
		fit, err := fits(mid)
		if err != nil {
			return 0, false, err
		}
		if fit {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if best == 0 {
		return floor, false, nil
	}
	return best, true, nil
}
