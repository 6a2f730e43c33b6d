package canvasrenderer

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/rubybox/layout"
	"github.com/ByLCY/rubybox/renderer"
)

// RenderPanel 在文字层下方叠加文本框底板（背景色、透明度与圆角），返回完整的对话框图像。
func (r *Renderer) RenderPanel(tb *layout.TextBox) (*renderer.Output, error) {
	out, err := r.Render(tb)
	if err != nil {
		return nil, err
	}
	out.Image = imaging.Overlay(drawPanel(tb), out.Image, image.Pt(0, 0), 1.0)
	return out, nil
}

// drawPanel 以 1px = 1mm 的分辨率栅格化底板。
func drawPanel(tb *layout.TextBox) *image.RGBA {
	w, h := float64(tb.Width()), float64(tb.Height())
	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)

	if tb.BackgroundAlpha > 0 {
		alpha := min(tb.BackgroundAlpha, 255)
		bg := tb.Background
		ctx.SetFillColor(canvas.RGBA(float64(bg.R)/255.0, float64(bg.G)/255.0, float64(bg.B)/255.0, float64(alpha)/255.0))
		ctx.SetStrokeColor(canvas.Transparent)

		shape := canvas.Rectangle(w, h)
		if tb.CornerRadius > 0 {
			shape = canvas.RoundedRectangle(w, h, tb.CornerRadius)
		}
		ctx.DrawPath(0, 0, shape)
	}
	return rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)
}
