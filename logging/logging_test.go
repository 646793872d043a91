package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesServiceField(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "coinvest-api", "debug")

	log.WithField("deposit_id", "abc").Info("deposit approved")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "coinvest-api", entry["service"])
	assert.Equal(t, "deposit approved", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "abc", entry["deposit_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewLoggerLevels(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"":      logrus.InfoLevel,
		"bogus": logrus.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, newLogger(&bytes.Buffer{}, "svc", in).GetLevel(), in)
	}
}
