package logger

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	logger := New()
	assert.NotNil(t, logger)
	assert.NotNil(t, logger.info)
	assert.NotNil(t, logger.error)
	assert.NotNil(t, logger.warn)
}

func TestLogger_Formatting(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{
		info:  log.New(&buf, "INFO  ", 0),
		warn:  log.New(&buf, "WARN  ", 0),
		error: log.New(&buf, "ERROR ", 0),
	}

	logger.Info("[PLAYBACK] user %s requested video %s", "u-1", "v-1")
	logger.Warn("quota %d/%d", 2, 2)
	logger.Error("failed to presign %q: %v", "teacher/a.mp4", "timeout")

	out := buf.String()
	assert.Contains(t, out, "INFO  [PLAYBACK] user u-1 requested video v-1")
	assert.Contains(t, out, "WARN  quota 2/2")
	assert.Contains(t, out, `ERROR failed to presign "teacher/a.mp4": timeout`)
}

func TestLogger_NoArgs(t *testing.T) {
	logger := New()

	// Messages without verbs must not panic
	logger.Info("Info 1")
	logger.Warn("Warn 1")
	logger.Error("Error 1")
}
