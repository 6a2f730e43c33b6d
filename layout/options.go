package layout

// Face 是排版所需的字形度量能力：字宽、行高与是否含有该字形。
// glyph.Face 为真实实现，测试中使用固定宽度的桩实现。
type Face interface {
	Advance(r rune) float64
	LineHeight() int
	HasGlyph(r rune) bool
}

// FontSet 汇总正文与注音各自的主字体/回退字体。回退字体为空时缺字仍用主字体绘制。
type FontSet struct {
	Primary      Face
	Fallback     Face
	Ruby         Face
	RubyFallback Face
}

// pick 选择绘制 r 所用的字体：主字体缺字时使用回退字体。
func pick(primary, fallback Face, r rune) (Face, bool) {
	if fallback == nil || primary.HasGlyph(r) {
		return primary, false
	}
	return fallback, true
}

func (fs FontSet) body(r rune) (Face, bool) { return pick(fs.Primary, fs.Fallback, r) }

func (fs FontSet) ruby(r rune) (Face, bool) {
	primary := fs.Ruby
	if primary == nil {
		primary = fs.Primary
	}
	return pick(primary, fs.RubyFallback, r)
}

func (fs FontSet) rubyLineHeight() int {
	if fs.Ruby != nil {
		return fs.Ruby.LineHeight()
	}
	return fs.Primary.LineHeight()
}
