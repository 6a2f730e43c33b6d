package layout

// 该文件定义文本框参数与排版结果，供排版、渲染与调试 JSON 共用。单位均为像素。

import (
	"fmt"
	"strconv"
	"strings"
)

// Point 为画布上的整数像素坐标。
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Margin 为文本框四边的内边距（像素）。
type Margin struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// ParseColor 解析 #rgb、#rrggbb 与 #rrggbbaa（忽略 alpha）形式的十六进制颜色。
func ParseColor(value string) (Color, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(value) {
	case 3:
		value = strings.Repeat(value[0:1], 2) + strings.Repeat(value[1:2], 2) + strings.Repeat(value[2:3], 2)
	case 6, 8:
	default:
		return Color{}, fmt.Errorf("颜色值 #%s 无法解析", value)
	}
	var c [3]int
	for i := range c {
		v, err := strconv.ParseUint(value[i*2:i*2+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("颜色值 #%s 无法解析: %w", value, err)
		}
		c[i] = int(v)
	}
	return Color{R: c[0], G: c[1], B: c[2]}, nil
}

// UnmarshalText 允许在 JSON 中直接写 "#ffffff"。
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalText 输出 #rrggbb。
func (c Color) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)), nil
}

// FontPair 描述主字体与回退字体。两者只有一个共享字号，因此不会各自漂移。
type FontPair struct {
	Src         string  `json:"src"`
	FallbackSrc string  `json:"fallbackSrc,omitempty"`
	Size        float64 `json:"size"`
}

// WithSize 返回同一字体对在新字号下的副本。
func (f FontPair) WithSize(size float64) FontPair {
	f.Size = size
	return f
}

// Spacing 汇总行间距与字间距（像素，可为负数，例如让注音更贴近正文）。
type Spacing struct {
	Line          float64 `json:"line"`
	Character     float64 `json:"character"`
	RubyLine      float64 `json:"rubyLine"`
	RubyCharacter float64 `json:"rubyCharacter"`
}

// TextBox 描述一个待排版的对话框：几何、边距、配色、字体、间距与带注音标记的文本。
type TextBox struct {
	TL              Point    `json:"tl"`
	BR              Point    `json:"br"`
	Margin          Margin   `json:"margin"`
	Background      Color    `json:"background"`
	BackgroundAlpha int      `json:"backgroundAlpha"`
	CornerRadius    float64  `json:"cornerRadius,omitempty"`
	FontColor       Color    `json:"fontColor"`
	RubyColor       *Color   `json:"rubyColor,omitempty"` // 为空时沿用 FontColor
	Font            FontPair `json:"font"`
	RubyFont        FontPair `json:"rubyFont"`
	Spacing         Spacing  `json:"spacing"`
	Centering       bool     `json:"centering,omitempty"`
	Text            string   `json:"text"`
}

// Width 为文本框宽度。
func (tb *TextBox) Width() int { return tb.BR.X - tb.TL.X }

// Height 为文本框高度。
func (tb *TextBox) Height() int { return tb.BR.Y - tb.TL.Y }

// UsableWidth 为扣除左右边距后的宽度。
func (tb *TextBox) UsableWidth() int { return tb.Width() - tb.Margin.Left - tb.Margin.Right }

// UsableHeight 为扣除上下边距后的高度。
func (tb *TextBox) UsableHeight() int { return tb.Height() - tb.Margin.Top - tb.Margin.Bottom }

// RubyFill 返回注音颜色。
func (tb *TextBox) RubyFill() Color {
	if tb.RubyColor != nil {
		return *tb.RubyColor
	}
	return tb.FontColor
}

// Validate 检查几何不变式：右下角必须严格大于左上角。
func (tb *TextBox) Validate() error {
	if tb == nil {
		return fmt.Errorf("%w: 文本框为空", ErrInvalidBox)
	}
	if tb.BR.X <= tb.TL.X || tb.BR.Y <= tb.TL.Y {
		return fmt.Errorf("%w: 右下角 %+v 必须大于左上角 %+v", ErrInvalidBox, tb.BR, tb.TL)
	}
	if tb.Font.Size <= 0 {
		return fmt.Errorf("%w: 字号必须为正数，实际 %g", ErrInvalidBox, tb.Font.Size)
	}
	return nil
}

// Glyph 是排版后一个字符的位置，Y 为该字符行框的顶部。
type Glyph struct {
	R        rune    `json:"r"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Ruby     bool    `json:"ruby,omitempty"`
	Fallback bool    `json:"fallback,omitempty"`
}

// Result 为一次排版的结果。Text 是实际排出的原文前缀（含注音标记），
// 发生纵向溢出时短于输入，并置 Truncated。
type Result struct {
	Glyphs     []Glyph `json:"glyphs"`
	Text       string  `json:"text"`
	RightmostX float64 `json:"rightmostX"`
	Lines      int     `json:"lines"`
	Truncated  bool    `json:"truncated"`
}
