package layout

import (
	"errors"
	"fmt"

	"github.com/ByLCY/rubybox/markup"
)

var (
	// ErrInvalidMarkup 与 markup.ErrInvalidMarkup 相同，便于调用方只依赖 layout 包。
	ErrInvalidMarkup = markup.ErrInvalidMarkup
	// ErrRubyOverflowLeft 表示注音从文本框左侧溢出。
	ErrRubyOverflowLeft = errors.New("ruby overflowed from the left of the text area")
	// ErrRubyOverflowRight 表示注音从文本框右侧溢出。
	ErrRubyOverflowRight = errors.New("ruby overflowed from the right of the text area")
	// ErrInvalidBox 表示文本框几何或字号非法。
	ErrInvalidBox = errors.New("invalid text box")
)

// RubyOverflowError 记录无法放下的注音及越界坐标。
type RubyOverflowError struct {
	Reading string
	X       float64
	Limit   float64
	err     error
}

func (e *RubyOverflowError) Error() string {
	return fmt.Sprintf("%v: 注音 %q 坐标 %g 超出边界 %g", e.err, e.Reading, e.X, e.Limit)
}

func (e *RubyOverflowError) Unwrap() error { return e.err }
