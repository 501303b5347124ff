package utils

import "go.uber.org/zap"

// Logger is a thin key/value wrapper over zap shared by all packages.
type Logger struct {
	s *zap.SugaredLogger
}

func NewLogger() *Logger {
	z, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return &Logger{s: z.Sugar()}
}

// NewNopLogger discards everything (used in tests).
func NewNopLogger() *Logger { return &Logger{s: zap.NewNop().Sugar()} }

func (lg *Logger) Info(msg string, kv ...any)  { lg.s.Infow(msg, kv...) }
func (lg *Logger) Warn(msg string, kv ...any)  { lg.s.Warnw(msg, kv...) }
func (lg *Logger) Error(msg string, kv ...any) { lg.s.Errorw(msg, kv...) }

func (lg *Logger) Sync() { _ = lg.s.Sync() }
