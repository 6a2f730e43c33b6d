package glyph

import "fmt"

// Pair is a primary face plus the fallback face used for runes the primary
// lacks. Both faces always share one size: SetSize rebuilds them together.
type Pair struct {
	primary  *Source
	fallback *Source
	size     float64

	Primary  *Face
	Fallback *Face
}

// NewPair builds both faces at size. A nil fallback reuses the primary source.
func NewPair(primary, fallback *Source, size float64) (*Pair, error) {
	if primary == nil {
		return nil, fmt.Errorf("glyph: pair needs a primary source")
	}
	if fallback == nil {
		fallback = primary
	}
	p := &Pair{primary: primary, fallback: fallback}
	if err := p.SetSize(size); err != nil {
		return nil, err
	}
	return p, nil
}

// Size returns the shared pixel size.
func (p *Pair) Size() float64 { return p.size }

// SetSize resizes primary and fallback at once. On error the pair keeps its
// previous faces.
func (p *Pair) SetSize(size float64) error {
	primary, err := p.primary.Face(size)
	if err != nil {
		return err
	}
	fallback, err := p.fallback.Face(size)
	if err != nil {
		primary.Close()
		return err
	}
	p.Close()
	p.Primary, p.Fallback, p.size = primary, fallback, size
	return nil
}

// FaceFor returns the face that paints r and whether it is the fallback.
func (p *Pair) FaceFor(r rune) (*Face, bool) {
	if p.Primary.HasGlyph(r) {
		return p.Primary, false
	}
	return p.Fallback, true
}

// Close releases both faces.
func (p *Pair) Close() error {
	if p.Primary != nil {
		p.Primary.Close()
	}
	if p.Fallback != nil {
		p.Fallback.Close()
	}
	return nil
}
