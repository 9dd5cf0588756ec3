package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseLevel("verbose")
	require.Error(t, err)
}

func TestFromCoreCarriesStructuredAttributes(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromCore(core, "redpacket", "api")

	logger.Info("packet claimed",
		"event", "packet_claimed",
		"module", "finance-core/packet-service",
		"amount", 42,
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "packet claimed", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "packet_claimed", fields["event"])
	assert.Equal(t, "redpacket", fields["service"])
	assert.Equal(t, "api", fields["process"])
	assert.EqualValues(t, 42, fields["amount"])
}
