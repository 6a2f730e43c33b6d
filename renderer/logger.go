package renderer

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler 丢弃所有日志；Enabled 返回 false，调用方不会格式化消息。
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger 设置渲染器及 scene 包共用的日志器，默认不输出。传入 nil 恢复静默。
// 可与日志调用并发执行。
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger 返回当前日志器。
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
