// Package log provides the structured logger used across minichain's
// subsystems. It is a small, dependency-light stand-in for the logger
// the teacher repo threads through every package, built on the same
// caller-frame library (go-stack/stack) rather than a bespoke stack
// walker.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-stack/stack"
)

// Level is the severity of a log record.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Record is a single emitted log line.
type Record struct {
	Time    time.Time
	Level   Level
	Module  string
	Msg     string
	Ctx     []interface{}
	Call    stack.Call
}

// Logger emits records scoped to a module name (e.g. "vm", "consensus").
type Logger struct {
	module string
}

// New returns a Logger scoped to module.
func New(module string) *Logger {
	return &Logger{module: module}
}

func (l *Logger) log(level Level, msg string, ctx ...interface{}) {
	if level < threshold() {
		return
	}
	rec := Record{
		Time:   time.Now(),
		Level:  level,
		Module: l.module,
		Msg:    msg,
		Ctx:    ctx,
	}
	if callers := stack.Callers(); len(callers) > 2 {
		rec.Call = callers[2]
	}
	write(rec)
}

func (l *Logger) Debug(msg string, ctx ...interface{}) { l.log(LevelDebug, msg, ctx...) }
func (l *Logger) Info(msg string, ctx ...interface{})  { l.log(LevelInfo, msg, ctx...) }
func (l *Logger) Warn(msg string, ctx ...interface{})  { l.log(LevelWarn, msg, ctx...) }
func (l *Logger) Error(msg string, ctx ...interface{}) { l.log(LevelError, msg, ctx...) }

var (
	mu         sync.Mutex
	out        io.Writer = os.Stderr
	minLevel   Level     = LevelInfo
)

// SetOutput redirects where formatted records are written. Tests use this
// to capture log output instead of polluting stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// SetLevel sets the minimum level that will be written.
func SetLevel(lvl Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = lvl
}

func threshold() Level {
	mu.Lock()
	defer mu.Unlock()
	return minLevel
}

func write(rec Record) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "%s [%-5s] %-10s %s", rec.Time.Format("15:04:05.000"), rec.Level, rec.Module, rec.Msg)
	for i := 0; i+1 < len(rec.Ctx); i += 2 {
		fmt.Fprintf(out, " %v=%v", rec.Ctx[i], rec.Ctx[i+1])
	}
	if rec.Call != (stack.Call{}) {
		fmt.Fprintf(out, " caller=%+v", rec.Call)
	}
	fmt.Fprintln(out)
}
