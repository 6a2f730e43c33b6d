package fonts

import (
	"fmt"
	"sync"

	"github.com/ByLCY/rubybox/glyph"
	"github.com/ByLCY/rubybox/layout"
)

// Library 按 src 缓存已解析的字体，可被多个渲染 goroutine 共享。
// 字体面（glyph.Face）不共享，每次 Pair 都会新建。
type Library struct {
	baseDir string

	mu      sync.Mutex
	sources map[string]*glyph.Source
}

// NewLibrary 创建以 baseDir 解析相对路径的字体库。
func NewLibrary(baseDir string) *Library {
	return &Library{
		baseDir: baseDir,
		sources: map[string]*glyph.Source{},
	}
}

// Source 返回 src 对应的字体，首次使用时加载并解析。
func (l *Library) Source(src string) (*glyph.Source, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if s, ok := l.sources[src]; ok {
		return s, nil
	}
	data, err := Load(src, l.baseDir)
	if err != nil {
		return nil, err
	}
	s, err := glyph.ParseSource(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", src, err)
	}
	l.sources[src] = s
	return s, nil
}

// Pair 按 FontPair 构建主字体与回退字体；未配置回退字体时主字体兼任回退。
func (l *Library) Pair(fp layout.FontPair) (*glyph.Pair, error) {
	primary, err := l.Source(fp.Src)
	if err != nil {
		return nil, err
	}
	var fallback *glyph.Source
	if fp.FallbackSrc != "" {
		if fallback, err = l.Source(fp.FallbackSrc); err != nil {
			return nil, err
		}
	}
	pair, err := glyph.NewPair(primary, fallback, fp.Size)
	if err != nil {
		return nil, fmt.Errorf("创建字体 %s（%gpx）失败: %w", fp.Src, fp.Size, err)
	}
	return pair, nil
}
