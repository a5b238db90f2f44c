package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Component is a named child of the process logger. A package declares
// one as a variable; it resolves the installed logger on every call, so it
// follows Setup and Reset.
type Component string

// Components of the render pipeline.
const (
	Octree    Component = "octree"
	MeshIndex Component = "meshindex"
	Render    Component = "render"
	Stream    Component = "stream"
	Record    Component = "record"
	Session   Component = "session"
	Window    Component = "window"
)

// Logger returns the component's logger, for callers that need a plain
// *zap.Logger.
func (c Component) Logger() *zap.Logger {
	return L().Named(string(c))
}

// Enabled reports whether entries at lvl would be written. Hot paths
// check it before building fields.
func (c Component) Enabled(lvl zapcore.Level) bool {
	return L().Core().Enabled(lvl)
}

func (c Component) Debug(msg string, fields ...zap.Field) {
	current.Load().component(c).Debug(msg, fields...)
}

func (c Component) Info(msg string, fields ...zap.Field) {
	current.Load().component(c).Info(msg, fields...)
}

func (c Component) Warn(msg string, fields ...zap.Field) {
	current.Load().component(c).Warn(msg, fields...)
}

func (c Component) Error(msg string, fields ...zap.Field) {
	current.Load().component(c).Error(msg, fields...)
}
