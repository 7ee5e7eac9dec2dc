// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfa-convert/pkg/types"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("PDFA_CONVERT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func TestDecodeConfigDefaults(t *testing.T) {
	c, err := decodeConfig(newTestViper())
	require.NoError(t, err)

	assert.Equal(t, types.DefaultOptions(), c.Conversion.Options)
	assert.Equal(t, ".pdfa-convert", c.Ledger.StateDir)
	assert.Equal(t, "verapdf/cli:latest", c.Validator.Image)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, int64(50<<20), c.Server.MaxUploadBytes)
	assert.Equal(t, 10*time.Second, c.Server.ShutdownTimeout)
	assert.Equal(t, "info", c.LogLevel)
}

func TestDecodeConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdfa-convert.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`conversion:
  pdf_version: 1.7
  part: "3"
  conformance: U
  sync_info: true
server:
  addr: ":9090"
  allowed_origins:
    - http://localhost:5173
  shutdown_timeout: 3s
`), 0o644))
	t.Setenv("PDFA_CONVERT_LEDGER_STATE_DIR", "/var/lib/pdfa")

	v := newTestViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	c, err := decodeConfig(v)
	require.NoError(t, err)
	assert.Equal(t, types.Options{PDFVersion: 1.7, Part: "3", Conformance: "U"}, c.Conversion.Options)
	assert.True(t, c.Conversion.SyncInfo)
	assert.Equal(t, ":9090", c.Server.Addr)
	assert.Equal(t, []string{"http://localhost:5173"}, c.Server.AllowedOrigins)
	assert.Equal(t, 3*time.Second, c.Server.ShutdownTimeout)
	assert.Equal(t, "/var/lib/pdfa", c.Ledger.StateDir)
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"", "debug", "INFO", "warn", "error"} {
		_, err := newLogger(level)
		assert.NoError(t, err, level)
	}
	_, err := newLogger("chatty")
	assert.Error(t, err)
}

func TestWriteFormatted(t *testing.T) {
	v := map[string]string{"version": "1.7"}

	var buf bytes.Buffer
	done, err := writeFormatted(&buf, "json", v)
	require.NoError(t, err)
	assert.True(t, done)
	assert.JSONEq(t, `{"version":"1.7"}`, buf.String())

	buf.Reset()
	done, err = writeFormatted(&buf, "yaml", v)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, "version: \"1.7\"\n", buf.String())

	done, err = writeFormatted(&buf, "text", v)
	assert.NoError(t, err)
	assert.False(t, done)

	_, err = writeFormatted(&buf, "xml", v)
	assert.Error(t, err)
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	writeHistory(&buf, nil)
	assert.Contains(t, buf.String(), "No conversions recorded.")

	buf.Reset()
	writeHistory(&buf, []types.ConversionRecord{{
		InputPath:   "in/doc.pdf",
		InputHash:   "0123456789abcdef0123",
		Options:     types.Options{PDFVersion: 1.7, Part: "2", Conformance: "B"},
		Status:      types.ConversionFailed,
		Error:       "parse failure",
		ConvertedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}})
	out := buf.String()
	assert.Contains(t, out, "PDF/A-2B")
	assert.Contains(t, out, "0123456789ab")
	assert.NotContains(t, out, "0123456789abc")
	assert.Contains(t, out, "parse failure")
	assert.Contains(t, out, "1 records")
}
