package fonts

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/rubybox/layout"
)

func TestLoadBuiltin(t *testing.T) {
	for _, src := range []string{"builtin:goregular", "built-in:goregular"} {
		data, err := Load(src, "")
		if err != nil {
			t.Fatalf("加载 %s 失败: %v", src, err)
		}
		if !bytes.Equal(data, goregular.TTF) {
			t.Fatalf("%s 返回的数据不是 goregular", src)
		}
	}
	if _, err := Load("builtin:nope", ""); err == nil {
		t.Fatalf("未知内置字体应报错")
	}
	if _, err := Load("", ""); err == nil {
		t.Fatalf("空 src 应报错")
	}
}

func TestLoadPath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mono.ttf"), gomono.TTF, 0o644); err != nil {
		t.Fatalf("写入字体失败: %v", err)
	}

	data, err := Load("mono.ttf", dir)
	if err != nil {
		t.Fatalf("按相对路径加载失败: %v", err)
	}
	if !bytes.Equal(data, gomono.TTF) {
		t.Fatalf("读取内容不一致")
	}
	if _, err := Load("mono.ttf", ""); err == nil {
		t.Fatalf("未指定资源目录时相对路径应报错")
	}
	if _, err := Load(filepath.Join(dir, "mono.ttf"), ""); err != nil {
		t.Fatalf("绝对路径应可直接加载: %v", err)
	}
}

func TestLibraryCachesSources(t *testing.T) {
	lib := NewLibrary("")
	a, err := lib.Source("builtin:goregular")
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	b, err := lib.Source("builtin:goregular")
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if a != b {
		t.Fatalf("同一 src 应返回缓存的字体")
	}
}

func TestLibraryPair(t *testing.T) {
	lib := NewLibrary("")
	pair, err := lib.Pair(layout.FontPair{Src: "builtin:goregular", FallbackSrc: "builtin:gomono", Size: 24})
	if err != nil {
		t.Fatalf("创建字体对失败: %v", err)
	}
	defer pair.Close()

	if pair.Size() != 24 || pair.Primary.Size() != 24 || pair.Fallback.Size() != 24 {
		t.Fatalf("主字体与回退字体字号应一致")
	}
	// gomono 等宽，与 goregular 的 i 宽度不同。
	if pair.Primary.Advance('i') == pair.Fallback.Advance('i') {
		t.Fatalf("回退字体应来自 gomono")
	}

	if _, err := lib.Pair(layout.FontPair{Src: "builtin:goregular", Size: 0}); err == nil {
		t.Fatalf("字号为 0 应报错")
	}
}
