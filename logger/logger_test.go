package logger_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/pagenote/logger"
)

func TestLog(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	templogger, err := logger.New().FromBuffer(buff).Make()
	require.NoError(t, err)
	require.NotNil(t, templogger)
	require.Equal(t, 0, buff.Len())

	templogger.Logger.Info().Msg("Test")
	require.Contains(t, buff.String(), "Test")
	require.NoError(t, templogger.Close())
}

func TestLevel(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	templogger, err := logger.New().FromBuffer(buff).Level("warn").Make()
	require.NoError(t, err)

	templogger.Logger.Info().Msg("hidden")
	require.Equal(t, 0, buff.Len())
	templogger.Logger.Warn().Msg("shown")
	require.Contains(t, buff.String(), "shown")

	// Unknown names keep the default.
	buff.Reset()
	templogger, err = logger.New().FromBuffer(buff).Level("loud").Make()
	require.NoError(t, err)
	templogger.Logger.Info().Msg("info")
	require.Contains(t, buff.String(), "info")
}

func TestFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagenote.log")
	templogger, err := logger.New().FromPath(path).Make()
	require.NoError(t, err)
	require.NotNil(t, templogger.LogFile)

	templogger.Logger.Error().Str("page", "1").Msg("written")
	require.NoError(t, templogger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"page":"1"`)

	_, err = logger.New().FromPath(filepath.Join(t.TempDir(), "missing", "x.log")).Make()
	require.Error(t, err)
}
