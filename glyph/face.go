// Package glyph wraps parsed font programs and exposes the per-rune metrics the
// layout engine consumes: advance width, line height and glyph presence.
//
// A Source is heavyweight and shared; a Face is a Source at one pixel size and
// owns a scratch buffer, so a Face must not be used by two renders at once.
package glyph

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Source is a parsed font program. It is safe for concurrent use.
type Source struct {
	name string
	font *sfnt.Font
}

// ParseSource parses TTF/OTF data.
func ParseSource(data []byte) (*Source, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("glyph: failed to parse font: %w", err)
	}
	name, err := f.Name(nil, sfnt.NameIDFamily)
	if err != nil {
		name = ""
	}
	return &Source{name: name, font: f}, nil
}

// Name returns the family name, or "" when the font has none.
func (s *Source) Name() string { return s.name }

// Face creates a face at size pixels per em.
func (s *Source) Face(size float64) (*Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("glyph: invalid face size %g", size)
	}
	ff, err := opentype.NewFace(s.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("glyph: failed to create face: %w", err)
	}
	return &Face{
		src:     s,
		size:    size,
		face:    ff,
		metrics: ff.Metrics(),
	}, nil
}

// Face is a Source at a fixed size.
type Face struct {
	src     *Source
	size    float64
	face    font.Face
	metrics font.Metrics
	buf     sfnt.Buffer
}

// Size returns the pixel size the face was built with.
func (f *Face) Size() float64 { return f.size }

// Advance returns the horizontal advance of r in pixels. Runes the font lacks
// advance by the width of its .notdef glyph, matching what DrawGlyph paints.
func (f *Face) Advance(r rune) float64 {
	adv, _ := f.face.GlyphAdvance(r)
	return fixedToFloat64(adv)
}

// LineHeight is ascent plus descent, rounded up.
func (f *Face) LineHeight() int {
	return (f.metrics.Ascent + f.metrics.Descent).Ceil()
}

// Ascent is the distance from the line top to the baseline.
func (f *Face) Ascent() float64 {
	return fixedToFloat64(f.metrics.Ascent)
}

// HasGlyph reports whether the face can paint r.
//
// A glyph whose rasterised bounds have zero height is treated as absent. That
// verdict is cross-checked against the cmap and glyf/CFF tables: a mapped glyph
// with outlines is present after all. Blank glyphs such as spaces have no
// outlines and stay absent, so they are painted by the fallback face.
func (f *Face) HasGlyph(r rune) bool {
	bounds, _, ok := f.face.GlyphBounds(r)
	if ok && bounds.Max.Y-bounds.Min.Y > 0 {
		return true
	}
	present, checked := f.tableHasOutline(r)
	if !checked {
		return false
	}
	return present
}

// tableHasOutline looks r up directly in the font tables. checked is false when
// the tables could not be read.
func (f *Face) tableHasOutline(r rune) (present, checked bool) {
	idx, err := f.src.font.GlyphIndex(&f.buf, r)
	if err != nil {
		return false, false
	}
	if idx == 0 {
		return false, true
	}
	segs, err := f.src.font.LoadGlyph(&f.buf, idx, floatToFixed(f.size), nil)
	if err != nil {
		return false, false
	}
	return len(segs) > 0, true
}

// DrawGlyph paints r with its line box's top-left corner at (x, top).
func (f *Face) DrawGlyph(dst draw.Image, x, top float64, r rune, c color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: f.face,
		Dot: fixed.Point26_6{
			X: floatToFixed(x),
			Y: floatToFixed(top + f.Ascent()),
		},
	}
	d.DrawString(string(r))
}

// Close releases the underlying face.
func (f *Face) Close() error {
	return f.face.Close()
}

func fixedToFloat64(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
