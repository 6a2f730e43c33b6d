package layout

import (
	"errors"
	"testing"
)

func TestMaxFontSize(t *testing.T) {
	m := Margin{Top: 10, Right: 10, Bottom: 10, Left: 10}
	if got := MaxFontSize(100, m, false, 0); got != 80 {
		t.Fatalf("无注音时期望 80，实际 %d", got)
	}
	if got := MaxFontSize(100, m, true, 5); got != 50 {
		t.Fatalf("有注音时期望 50，实际 %d", got)
	}
	if got := MaxFontSize(15, m, false, 0); got != 0 {
		t.Fatalf("高度不足时期望 0，实际 %d", got)
	}
}

func TestMaxFontSizeWholeTextPicksBestRowCount(t *testing.T) {
	p := FitParams{Margin: Margin{Top: 10, Right: 10, Bottom: 10, Left: 10}}
	// 可用 400×100：一行 40，两行 50，三行 33，四行 25。
	size, rows := MaxFontSizeWholeText(10, 420, 120, p)
	if size != 50 || rows != 2 {
		t.Fatalf("期望 50px 两行，实际 %dpx %d 行", size, rows)
	}

	p.MaxRows = 1
	size, rows = MaxFontSizeWholeText(10, 420, 120, p)
	if size != 40 || rows != 1 {
		t.Fatalf("限制单行时期望 40px，实际 %dpx %d 行", size, rows)
	}
}

func TestTile(t *testing.T) {
	outer := Rect{BR: Point{X: 300, Y: 100}}
	rects, err := Tile(outer, 3, 3, 10)
	if err != nil {
		t.Fatalf("Tile 失败: %v", err)
	}
	if len(rects) != 3 {
		t.Fatalf("期望 3 个格子，实际 %d", len(rects))
	}
	for i, r := range rects {
		if r.Width() != 93 || r.Height() != 100 {
			t.Fatalf("格子 %d 尺寸错误: %+v", i, r)
		}
		if i > 0 && r.TL.X-rects[i-1].BR.X < 10 {
			t.Fatalf("格子间距不足: %+v %+v", rects[i-1], r)
		}
	}

	rects, err = Tile(outer, 4, 2, 0)
	if err != nil {
		t.Fatalf("Tile 失败: %v", err)
	}
	if rects[3].TL != (Point{X: 150, Y: 50}) {
		t.Fatalf("2×2 网格第四格位置错误: %+v", rects[3])
	}

	if _, err := Tile(Rect{BR: Point{X: 10, Y: 10}}, 3, 3, 10); !errors.Is(err, ErrInvalidBox) {
		t.Fatalf("区域过小应返回 ErrInvalidBox，实际 %v", err)
	}
}

func tileRequest() TileRequest {
	return TileRequest{
		Area:  Rect{BR: Point{X: 600, Y: 100}},
		Cols:  3,
		Texts: []string{"ABC", "ABCDEFGHIJ", "<ruby>漢<rt>かん</rt></ruby>字"},
		Template: TextBox{
			Margin:   Margin{Top: 5, Right: 5, Bottom: 5, Left: 5},
			Font:     FontPair{Src: "builtin:goregular"},
			RubyFont: FontPair{Src: "builtin:goregular"},
		},
	}
}

func TestFitTilesSharesSmallestSize(t *testing.T) {
	boxes, err := FitTiles(tileRequest())
	if err != nil {
		t.Fatalf("FitTiles 失败: %v", err)
	}
	if len(boxes) != 3 {
		t.Fatalf("期望 3 个文本框，实际 %d", len(boxes))
	}
	for i, b := range boxes {
		if b.Font.Size != 38 {
			t.Fatalf("文本框 %d 应共享字号 38，实际 %g", i, b.Font.Size)
		}
		if b.RubyFont.Size != 15 {
			t.Fatalf("文本框 %d 注音字号应为 15，实际 %g", i, b.RubyFont.Size)
		}
		if b.TL.X != i*200 || b.Width() != 200 {
			t.Fatalf("文本框 %d 几何错误: %+v %+v", i, b.TL, b.BR)
		}
		if b.Margin.Left != 5 {
			t.Fatalf("应继承模板边距")
		}
	}
	if boxes[2].Text != "<ruby>漢<rt>かん</rt></ruby>字" {
		t.Fatalf("文本顺序错误: %q", boxes[2].Text)
	}
}

func TestFitTilesFloorSize(t *testing.T) {
	req := tileRequest()
	req.FloorSize = 40
	boxes, err := FitTiles(req)
	if err != nil {
		t.Fatalf("FitTiles 失败: %v", err)
	}
	if boxes[0].Font.Size != 40 {
		t.Fatalf("字号下限未生效: %g", boxes[0].Font.Size)
	}
}

func TestFitTilesNoWrapShrinksBoxes(t *testing.T) {
	req := tileRequest()
	req.NoWrap = true
	boxes, err := FitTiles(req)
	if err != nil {
		t.Fatalf("FitTiles 失败: %v", err)
	}
	if boxes[0].Font.Size != 19 {
		t.Fatalf("单行拟合字号错误: %g", boxes[0].Font.Size)
	}
	if boxes[0].TL.Y != 35 || boxes[0].Height() != 29 {
		t.Fatalf("无注音框应收缩为单行并居中: %+v %+v", boxes[0].TL, boxes[0].BR)
	}
	// 注音字号 floor(19×0.4)=7，框高多出注音行。
	if boxes[2].Height() != 36 || boxes[2].TL.Y != 32 {
		t.Fatalf("有注音框高度错误: %+v %+v", boxes[2].TL, boxes[2].BR)
	}
}

func TestRubySizeClamp(t *testing.T) {
	cases := []struct {
		ratio float64
		want  float64
	}{
		{0, 16},
		{0.1, 10},
		{0.3, 12},
		{0.9, 20},
	}
	for _, c := range cases {
		if got := RubySize(40, c.ratio); got != c.want {
			t.Fatalf("ratio=%g 期望 %g，实际 %g", c.ratio, c.want, got)
		}
	}
}

func stubBuilder(size float64) (FontSet, error) {
	return FontSet{
		Primary: stubFace{advance: size, height: int(size)},
		Ruby:    stubFace{advance: size / 2, height: int(size / 2)},
	}, nil
}

func TestSearchFontSize(t *testing.T) {
	tb := newBox(400, 100, 10, "ABCDEFGHIJ")
	tb.Font.Size = 12

	size, ok, err := SearchFontSize(tb, 1, 100, stubBuilder)
	if err != nil {
		t.Fatalf("SearchFontSize 失败: %v", err)
	}
	// 40px 时一行 9 字、第二行底部恰好等于可用高度。
	if !ok || size != 40 {
		t.Fatalf("期望 40，实际 %d ok=%v", size, ok)
	}
	if tb.Font.Size != 12 {
		t.Fatalf("不应修改传入的文本框")
	}

	size, ok, err = SearchFontSize(tb, 95, 100, stubBuilder)
	if err != nil || ok || size != 95 {
		t.Fatalf("全部放不下时应返回下限: size=%d ok=%v err=%v", size, ok, err)
	}
}

func TestSearchFontSizePropagatesErrors(t *testing.T) {
	tb := newBox(400, 100, 10, "<bad>")
	if _, _, err := SearchFontSize(tb, 1, 50, stubBuilder); !errors.Is(err, ErrInvalidMarkup) {
		t.Fatalf("期望 ErrInvalidMarkup，实际 %v", err)
	}

	boom := errors.New("boom")
	failing := func(float64) (FontSet, error) { return FontSet{}, boom }
	if _, _, err := SearchFontSize(newBox(400, 100, 10, "A"), 1, 50, failing); !errors.Is(err, boom) {
		t.Fatalf("字体构建错误应原样返回，实际 %v", err)
	}
}

func TestPlaceRubySingleCharStaysCentered(t *testing.T) {
	fonts := FontSet{Primary: stubFace{advance: 20, height: 20}}
	glyphs, err := PlaceRuby(RubySpan{Left: 10, Right: 110, LineTop: 50, Reading: "あ"},
		fonts, Spacing{RubyCharacter: 4, RubyLine: 3}, 400)
	if err != nil {
		t.Fatalf("PlaceRuby 失败: %v", err)
	}
	if len(glyphs) != 1 {
		t.Fatalf("期望 1 个注音字，实际 %d", len(glyphs))
	}
	if g := glyphs[0]; !near(g.X, 46) || !near(g.Y, 27) || !g.Ruby {
		t.Fatalf("单字注音应居中: %+v", g)
	}

	glyphs, err = PlaceRuby(RubySpan{Left: 10, Right: 110, Reading: ""}, fonts, Spacing{}, 400)
	if err != nil || glyphs != nil {
		t.Fatalf("空注音应返回 nil: %v %v", glyphs, err)
	}
}
