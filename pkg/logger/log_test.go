package logger_test

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/hbomb79/Siphon/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		expected logger.LogStatus
		wantErr  bool
	}{
		{"verbose", logger.VERBOSE, false},
		{"DEBUG", logger.DEBUG, false},
		{" Warning ", logger.WARNING, false},
		{"fatal", logger.FATAL, false},
		{"loud", logger.INFO, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			level, err := logger.ParseLevel(test.name)
			if test.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, test.expected, level)
		})
	}
}

func Test_Emit_RespectsMinimumLevel(t *testing.T) {
	color.NoColor = true
	buf := &bytes.Buffer{}
	logger.SetOutput(buf)
	logger.SetMinLoggingLevel(logger.WARNING.Level())
	t.Cleanup(func() {
		logger.SetOutput(color.Output)
		logger.SetMinLoggingLevel(logger.INFO.Level())
	})

	log := logger.Get("Test")
	log.Emit(logger.INFO, "hidden %d\n", 1)
	log.Emit(logger.ERROR, "shown %d\n", 2)

	out := buf.String()
	require.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[Test]")
	assert.Contains(t, out, "(!!) shown 2")
}
