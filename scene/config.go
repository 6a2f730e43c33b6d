package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ByLCY/rubybox/layout"
)

// ErrInvalidConfig 表示场景配置不完整或取值非法。
var ErrInvalidConfig = errors.New("invalid scene config")

// Background 为画布背景：优先使用图片，未配置图片时填充纯色（默认白色）。
type Background struct {
	Path  string        `json:"path,omitempty"`
	Color *layout.Color `json:"color,omitempty"`
}

// Character 为叠加在背景上的立绘，按画布高度等比缩放后贴在 TL 处。
type Character struct {
	Path string       `json:"path"`
	TL   layout.Point `json:"tl"`
}

// AutoFit 为消息框开启按真实字体拟合字号，字号在 [Min, Max] 内二分查找。
type AutoFit struct {
	Min       int     `json:"min"`
	Max       int     `json:"max"`
	RubyRatio float64 `json:"rubyRatio,omitempty"`
}

// Config 描述一个游戏画面样本的构图：背景、立绘、消息框、名字框与选项框。
// 文本框中的 Text 字段由每个样本的 Sample 覆盖。
type Config struct {
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Background Background          `json:"background"`
	Characters []Character         `json:"characters,omitempty"`
	Message    *layout.TextBox     `json:"message"`
	AutoFit    *AutoFit            `json:"autoFit,omitempty"`
	Name       *layout.TextBox     `json:"name,omitempty"`
	Options    *layout.TileRequest `json:"options,omitempty"`
}

// LoadConfig 读取 JSON 场景配置并校验。
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取场景配置 %s 失败: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析场景配置 %s 失败: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查画布尺寸与各文本框几何。
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: 画布尺寸 %dx%d 非法", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Message == nil {
		return fmt.Errorf("%w: 缺少消息框", ErrInvalidConfig)
	}
	if err := c.checkBox("消息框", c.Message); err != nil {
		return err
	}
	if c.Name != nil {
		if err := c.checkBox("名字框", c.Name); err != nil {
			return err
		}
	}
	if c.AutoFit != nil && (c.AutoFit.Min <= 0 || c.AutoFit.Max < c.AutoFit.Min) {
		return fmt.Errorf("%w: 自动字号范围 [%d, %d] 非法", ErrInvalidConfig, c.AutoFit.Min, c.AutoFit.Max)
	}
	if c.Options != nil {
		a := c.Options.Area
		if a.Width() <= 0 || a.Height() <= 0 || a.BR.X > c.Width || a.BR.Y > c.Height {
			return fmt.Errorf("%w: 选项区域 %+v 非法", ErrInvalidConfig, a)
		}
	}
	return nil
}

func (c *Config) checkBox(name string, tb *layout.TextBox) error {
	if err := tb.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
	}
	if tb.TL.X < 0 || tb.TL.Y < 0 || tb.BR.X > c.Width || tb.BR.Y > c.Height {
		return fmt.Errorf("%w: %s %+v-%+v 超出画布", ErrInvalidConfig, name, tb.TL, tb.BR)
	}
	return nil
}
