package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{"DEVICE_TZ": "UTC"}))
	require.NoError(t, err)

	assert.Equal(t, DeviceModeZK, cfg.DeviceMode)
	assert.Equal(t, "10.10.1.127:4370", cfg.DeviceAddress())
	assert.Equal(t, "uFace800-Main", cfg.DeviceID)
	assert.Equal(t, 15*time.Second, cfg.DeviceTimeout)
	assert.Equal(t, "day-positional", cfg.Strategy)
	assert.Equal(t, []string{SinkJSON}, cfg.Sinks)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), cfg.StartDate)
	assert.Equal(t, "5000", cfg.Port)
}

func TestFromEnv_ViteDeviceIPFallback(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{"VITE_DEVICE_IP": "192.168.1.20", "DEVICE_TZ": "UTC"}))
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.20", cfg.DeviceIP)
}

func TestFromEnv_RejectsUnknownStrategy(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{"STRATEGY": "coin-flip", "DEVICE_TZ": "UTC"}))
	require.Error(t, err)
}

func TestFromEnv_RejectsUnknownSink(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{"SINKS": "json,ftp", "DEVICE_TZ": "UTC"}))
	require.Error(t, err)
}

func TestFromEnv_DocstoreNeedsMongoURI(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{"SINKS": "json,docstore", "DEVICE_TZ": "UTC"}))
	require.Error(t, err)

	cfg, err := FromEnv(envOf(map[string]string{
		"SINKS":     "json,docstore",
		"MONGO_URI": "mongodb://localhost:27017",
		"DEVICE_TZ": "UTC",
	}))
	require.NoError(t, err)
	assert.True(t, cfg.HasSink(SinkDocstore))
}

func TestFromEnv_CSVModeNeedsFixture(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{"DEVICE_MODE": "csv", "DEVICE_TZ": "UTC"}))
	require.Error(t, err)

	cfg, err := FromEnv(envOf(map[string]string{"DEVICE_MODE": "csv", "DEVICE_CSV": "punches.csv", "DEVICE_TZ": "UTC"}))
	require.NoError(t, err)
	assert.Equal(t, "punches.csv", cfg.DeviceCSV)
}

func TestFromEnv_BadTimeout(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{"DEVICE_TIMEOUT": "soon", "DEVICE_TZ": "UTC"}))
	require.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"json", "csv"}, SplitList(" JSON, csv,,json "))
	assert.Nil(t, SplitList(""))
}
