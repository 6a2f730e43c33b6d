package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
)

// builtin 为随程序分发的 Go 字体，可写作 "builtin:goregular" 或 "built-in:goregular"。
var builtin = map[string][]byte{
	"goregular":    goregular.TTF,
	"gobold":       gobold.TTF,
	"goitalic":     goitalic.TTF,
	"gobolditalic": gobolditalic.TTF,
	"gomedium":     gomedium.TTF,
	"gomono":       gomono.TTF,
	"gomonobold":   gomonobold.TTF,
	"gosmallcaps":  gosmallcaps.TTF,
}

// Builtin 返回所有内置字体名，按字母序排列。
func Builtin() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func builtinName(src string) (string, bool) {
	for _, prefix := range []string{"builtin:", "built-in:"} {
		if strings.HasPrefix(src, prefix) {
			return strings.TrimPrefix(src, prefix), true
		}
	}
	return "", false
}

// Load 返回字体数据。src 为内置字体名（builtin:goregular）或字体文件路径；
// 相对路径基于 baseDir 解析，未指定 baseDir 时只接受绝对路径。
func Load(src, baseDir string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("字体 src 为空")
	}
	if name, ok := builtinName(src); ok {
		data, ok := builtin[name]
		if !ok {
			return nil, fmt.Errorf("找不到内置字体 %s（可用：%s）", src, strings.Join(Builtin(), ", "))
		}
		return data, nil
	}

	path := src
	if !filepath.IsAbs(path) {
		if baseDir == "" {
			return nil, fmt.Errorf("未指定资源目录时不允许使用相对字体路径：%s（请改用 builtin:）", src)
		}
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}
