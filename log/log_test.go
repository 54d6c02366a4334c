package log

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerRespectsLevelThreshold(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetLevel(LevelWarn)
	defer SetLevel(LevelInfo)

	l := New("vm")
	l.Debug("should not appear")
	l.Info("also should not appear")
	assert.Empty(t, buf.String())

	l.Warn("heads up", "height", 3)
	out := buf.String()
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "vm")
	assert.Contains(t, out, "heads up")
	assert.Contains(t, out, "height=3")
}

func TestLoggerIncludesModuleAndContextPairs(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetLevel(LevelDebug)
	defer SetLevel(LevelInfo)

	New("chainmgr").Error("import failed", "err", "bad state root")
	out := buf.String()
	assert.True(t, strings.Contains(out, "ERROR"))
	assert.True(t, strings.Contains(out, "chainmgr"))
	assert.True(t, strings.Contains(out, "err=bad state root"))
}

func TestLevelStringUnknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", Level(99).String())
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
}
