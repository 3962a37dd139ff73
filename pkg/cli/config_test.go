package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/ecgprobe/pkg/ecgheader"
	"github.com/carverauto/ecgprobe/pkg/logger"
	"github.com/carverauto/ecgprobe/pkg/natsutil"
)

func TestLoadProbeConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	cfg, err := LoadProbeConfig(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, ecgheader.DefaultHeaderFile, cfg.HeaderFile)
	assert.Equal(t, "century", cfg.Layout)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, natsutil.DefaultSubject, cfg.Events.Subject)
	assert.Nil(t, cfg.Logging)
}

func TestLoadProbeConfigFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	path := filepath.Join(t.TempDir(), "ecgprobe.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"header_file": "/media/recorder/ECG.BIN",
		"layout": "offset2000",
		"events": {"enabled": true, "nats_url": "nats://127.0.0.1:4222", "stream": "ECGPROBE"}
	}`), 0o600))

	cfg, err := LoadProbeConfig(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/media/recorder/ECG.BIN", cfg.HeaderFile)
	assert.Equal(t, "offset2000", cfg.Layout)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, "ECGPROBE", cfg.Events.Stream)
	assert.Equal(t, natsutil.DefaultSubject, cfg.Events.Subject, "unset fields keep their defaults")
}

func TestProbeConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultProbeConfig()
	require.NoError(t, cfg.Validate())

	cfg.HeaderFile = " "
	cfg.Layout = "bcd"
	cfg.Logging = &logger.Config{Level: "chatty"}
	cfg.Events.Enabled = true

	err := cfg.Validate()
	require.ErrorIs(t, err, errHeaderFileRequired)
	require.ErrorIs(t, err, ecgheader.ErrUnknownLayout)
	require.ErrorContains(t, err, "chatty")
	require.ErrorContains(t, err, "nats_url")
}

func TestProbeConfigOverrides(t *testing.T) {
	t.Parallel()

	cfg := DefaultProbeConfig()
	cfg.applyOverrides(&CmdConfig{})
	assert.Equal(t, DefaultProbeConfig(), cfg)

	cfg.applyOverrides(&CmdConfig{
		HeaderFile: "other.bin",
		Layout:     "offset2000",
		NATSURL:    "nats://10.0.0.1:4222",
		Subject:    "ecgprobe.lab",
	})
	assert.Equal(t, "other.bin", cfg.HeaderFile)
	assert.Equal(t, "offset2000", cfg.Layout)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, "nats://10.0.0.1:4222", cfg.Events.NATSURL)
	assert.Equal(t, "ecgprobe.lab", cfg.Events.Subject)
}
