package layout

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/ByLCY/rubybox/markup"
)

// cursor 是一次排版过程中的可变状态，只属于单次 Layout 调用。
type cursor struct {
	x, y      float64
	maxHeight int  // 当前行已出现的最大字高
	lineEmpty bool // 当前行尚未绘制正文字符
	lines     int

	inRuby      bool
	rubyTarget  string
	rubyReading string
	rubyLeft    float64
	rubyRight   float64
	rubyChecked bool // 当前注音对象是否已做过整体换行预判
}

// engine 持有一次排版的只读参数与结果。
type engine struct {
	box     *TextBox
	fonts   FontSet
	hasRuby bool

	left     float64
	right    float64 // 可用区域右端：宽度减右边距
	bottom   float64 // 可用区域下端：高度减下边距
	headroom float64 // 每行为注音预留的高度

	cur    cursor
	result Result
	end    int // 已排出的原文字节数
}

// Layout 对文本框做逐字排版：解析注音标记、决定换行、放置注音，
// 并返回实际排出的文本。纵向放不下时正常返回已排出的前缀（Truncated），不视为错误；
// 标记非法或注音越界时返回错误。
func Layout(tb *TextBox, fonts FontSet) (*Result, error) {
	if err := tb.Validate(); err != nil {
		return nil, err
	}
	if fonts.Primary == nil {
		return nil, fmt.Errorf("layout: 缺少正文字体")
	}
	tokens, err := markup.Scan(tb.Text)
	if err != nil {
		return nil, err
	}

	e := newEngine(tb, fonts, tokens)
	return e.run(tokens)
}

func newEngine(tb *TextBox, fonts FontSet, tokens []markup.Token) *engine {
	e := &engine{
		box:    tb,
		fonts:  fonts,
		left:   float64(tb.Margin.Left),
		right:  float64(tb.Width() - tb.Margin.Right),
		bottom: float64(tb.Height() - tb.Margin.Bottom),
	}
	for _, tok := range tokens {
		if tok.Kind == markup.RubyOpen {
			e.hasRuby = true
			break
		}
	}
	if e.hasRuby {
		e.headroom = float64(fonts.rubyLineHeight()) + tb.Spacing.RubyLine
	}

	e.cur = cursor{
		x:         e.left,
		y:         float64(tb.Margin.Top) + e.headroom,
		lineEmpty: true,
	}
	e.result.RightmostX = e.left
	if len(tokens) > 0 {
		e.cur.lines = 1
	}
	return e
}

func (e *engine) run(tokens []markup.Token) (*Result, error) {
	for _, tok := range tokens {
		switch tok.Kind {
		case markup.RubyOpen:
			e.cur.inRuby = true
			e.cur.rubyTarget = tok.Text
			e.cur.rubyLeft = e.cur.x
			e.cur.rubyChecked = false

		case markup.RubyReading:
			e.cur.rubyReading = tok.Text
			e.cur.rubyRight = e.cur.x - e.box.Spacing.Character

		case markup.RubyClose:
			if err := e.closeRuby(); err != nil {
				return nil, err
			}
			e.end = tok.End

		case markup.Char:
			if !e.placeChar(tok) {
				return e.finish(true), nil
			}
		}
	}
	return e.finish(false), nil
}

// placeChar 排一个正文字符，换行后高度不足时返回 false。
func (e *engine) placeChar(tok markup.Token) bool {
	r, _ := utf8.DecodeRuneInString(tok.Text)
	face, fallback := e.fonts.body(r)
	advance := face.Advance(r)
	spacing := e.box.Spacing.Character

	newline := false
	if e.cur.inRuby {
		// 注音对象不在中间断行：在其第一个字符前预判整个对象是否放得下。
		if !e.cur.rubyChecked {
			newline = !e.cur.lineEmpty && e.cur.x+e.targetWidth(e.cur.rubyTarget) > e.right
			e.cur.rubyChecked = true
		}
	} else {
		newline = !e.cur.lineEmpty && e.cur.x+advance+spacing > e.right
	}

	if newline {
		if !e.newLine(face.LineHeight()) {
			return false
		}
		if e.cur.inRuby {
			e.cur.rubyLeft = e.cur.x
		}
	}

	e.cur.maxHeight = max(e.cur.maxHeight, face.LineHeight())
	e.result.Glyphs = append(e.result.Glyphs, Glyph{
		R:        r,
		X:        e.cur.x,
		Y:        e.cur.y,
		Width:    advance,
		Fallback: fallback,
	})
	e.result.RightmostX = math.Max(e.result.RightmostX, e.cur.x+advance)
	e.end = tok.End
	e.cur.x += advance + spacing
	e.cur.lineEmpty = false
	return true
}

// newLine 换行：纵向前进本行最大字高与行间距（有注音时再加注音预留高度），
// 新行底部超出可用高度时返回 false。
func (e *engine) newLine(lineHeight int) bool {
	e.cur.y += float64(e.cur.maxHeight) + e.box.Spacing.Line + e.headroom
	e.cur.x = e.left
	e.cur.maxHeight = 0
	e.cur.lineEmpty = true
	if e.cur.y+float64(lineHeight) > e.bottom {
		return false
	}
	e.cur.lines++
	return true
}

func (e *engine) targetWidth(target string) float64 {
	width := 0.0
	for _, r := range target {
		face, _ := e.fonts.body(r)
		width += face.Advance(r) + e.box.Spacing.Character
	}
	return width
}

func (e *engine) closeRuby() error {
	glyphs, err := PlaceRuby(RubySpan{
		Left:    e.cur.rubyLeft,
		Right:   e.cur.rubyRight,
		LineTop: e.cur.y,
		Reading: e.cur.rubyReading,
	}, e.fonts, e.box.Spacing, float64(e.box.Width()))
	if err != nil {
		return err
	}
	e.result.Glyphs = append(e.result.Glyphs, glyphs...)
	if len(glyphs) > 0 {
		e.result.RightmostX = math.Max(e.result.RightmostX, rubyExtent(glyphs))
	}

	e.cur.inRuby = false
	e.cur.rubyTarget = ""
	e.cur.rubyReading = ""
	e.cur.rubyLeft, e.cur.rubyRight = -1, -1
	return nil
}

func (e *engine) finish(truncated bool) *Result {
	e.result.Lines = e.cur.lines
	e.result.Truncated = truncated
	if truncated {
		e.result.Text = e.box.Text[:e.end]
	} else {
		e.result.Text = e.box.Text
	}
	res := e.result
	return &res
}

// CenterOffset 返回整体水平居中所需的右移量：
// 已排内容（左边距到 RightmostX）在可用宽度内居中。
func (r *Result) CenterOffset(tb *TextBox) float64 {
	content := r.RightmostX - float64(tb.Margin.Left)
	offset := (float64(tb.UsableWidth()) - content) / 2
	if offset < 0 {
		return 0
	}
	return offset
}
