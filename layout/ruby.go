package layout

import "math"

// RubySpan 描述一段注音：注音对象在行内的左右端 x、所在行的顶部 y 以及注音文本。
type RubySpan struct {
	Left    float64
	Right   float64
	LineTop float64
	Reading string
}

// PlaceRuby 计算注音各字的位置。
//
// 注音对象宽于注音自然宽度（字宽之和加 n+1 个字间距）且注音多于一个字时，
// 在对象宽度内均匀分布（两端对齐）；否则以对象中心为轴、按固定字间距居中排列。
// 起点 x 为负时返回 ErrRubyOverflowLeft，任一字右端超过 boxWidth 时返回 ErrRubyOverflowRight。
func PlaceRuby(span RubySpan, fonts FontSet, spacing Spacing, boxWidth float64) ([]Glyph, error) {
	runes := []rune(span.Reading)
	n := len(runes)
	if n == 0 {
		return nil, nil
	}

	widths := make([]float64, n)
	fallback := make([]bool, n)
	sum := 0.0
	maxHeight := 0
	for i, r := range runes {
		face, fb := fonts.ruby(r)
		widths[i] = face.Advance(r)
		fallback[i] = fb
		sum += widths[i]
		if h := face.LineHeight(); h > maxHeight {
			maxHeight = h
		}
	}

	targetWidth := span.Right - span.Left
	centerX := (span.Left + span.Right) / 2
	natural := sum + spacing.RubyCharacter*float64(n+1)

	var x, gap float64
	if targetWidth > natural && n > 1 {
		gap = (targetWidth - sum) / float64(n+1)
		x = span.Left + gap
	} else {
		gap = spacing.RubyCharacter
		x = centerX - natural/2
	}
	if x < 0 {
		return nil, &RubyOverflowError{Reading: span.Reading, X: x, Limit: 0, err: ErrRubyOverflowLeft}
	}

	y := span.LineTop - (float64(maxHeight) + spacing.RubyLine)
	glyphs := make([]Glyph, 0, n)
	for i, r := range runes {
		if right := x + widths[i]; right > boxWidth {
			return nil, &RubyOverflowError{Reading: span.Reading, X: right, Limit: boxWidth, err: ErrRubyOverflowRight}
		}
		glyphs = append(glyphs, Glyph{
			R:        r,
			X:        x,
			Y:        y,
			Width:    widths[i],
			Ruby:     true,
			Fallback: fallback[i],
		})
		x += widths[i] + gap
	}
	return glyphs, nil
}

// rubyExtent 返回一组注音字形的最右端。
func rubyExtent(glyphs []Glyph) float64 {
	right := math.Inf(-1)
	for _, g := range glyphs {
		right = math.Max(right, g.X+g.Width)
	}
	return right
}
