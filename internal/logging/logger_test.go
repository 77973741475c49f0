// internal/logging/logger_test.go
package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Levels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, build("debug", "text", &bytes.Buffer{}).GetLevel())
	assert.Equal(t, logrus.WarnLevel, build("WARN", "text", &bytes.Buffer{}).GetLevel())
	assert.Equal(t, logrus.InfoLevel, build("chatty", "text", &bytes.Buffer{}).GetLevel())
}

func TestBuild_OffDiscards(t *testing.T) {
	var buf bytes.Buffer
	log := build("off", "text", &buf)

	log.Error("nobody hears this")

	assert.Zero(t, buf.Len())
}

func TestBuild_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := build("info", "json", &buf)

	log.WithField("line", "line3").Info("link up")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "link up", entry["msg"])
	assert.Equal(t, "line3", entry["line"])
	assert.Equal(t, "info", entry["level"])
}

func TestBuild_TextHasFields(t *testing.T) {
	var buf bytes.Buffer
	log := build("info", "", &buf)

	log.WithField("fuel", 42).Info("frame")

	assert.Contains(t, buf.String(), "fuel=42")
	assert.Contains(t, buf.String(), "msg=frame")
}
