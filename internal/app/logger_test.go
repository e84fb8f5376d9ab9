package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigureLogging(t *testing.T) {
	require.NoError(t, ConfigureLogging(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, ConfigureLogging(LogConfig{}))
	require.NoError(t, ConfigureLogging(LogConfig{Level: "loud"}))
}
