package renderer

import (
	"image"

	"github.com/ByLCY/rubybox/layout"
)

// Output 是一个文本框的渲染结果。Image 与文本框同尺寸，原点为文本框左上角。
// Text 为实际排出的带标记文本（纵向截断时为前缀）。
type Output struct {
	Image      image.Image
	Text       string
	RightmostX float64
	Lines      int
	Truncated  bool
	Layout     *layout.Result
}

// Renderer 将文本框排版并绘制为图像。
type Renderer interface {
	Render(tb *layout.TextBox) (*Output, error)
}
