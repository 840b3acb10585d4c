package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks defaulting and format validations for the settings.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Empty settings pick up every default.
	cfg := new(Config)

	require.NoError(t, Validate(cfg))
	require.NotEmpty(t, cfg.WorkDir)
	require.Equal(t, filepath.Join(cfg.WorkDir, DefaultJournalFilename), cfg.JournalFile)
	require.Equal(t, DefaultInstallerURL, cfg.InstallerURL)

	// Bad URL.
	cfg = &Config{
		InstallerURL: "not a url",
	}

	require.Error(t, Validate(cfg))

	// Bad checksum.
	cfg = &Config{
		InstallerChecksum: "***",
	}

	require.Error(t, Validate(cfg))

	// Valid checksum decodes back.
	sum := base64.StdEncoding.EncodeToString([]byte{0xde, 0xad, 0xbe, 0xef})
	cfg = &Config{
		InstallerChecksum: sum,
	}

	require.NoError(t, Validate(cfg))
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, cfg.Checksum())

	// No checksum configured.
	require.Nil(t, Default().Checksum())
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		WorkDir:      filepath.Join(dir, "work"),
		InstallerURL: "https://updates.local/agent-setup.exe",
		Quiet:        true,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.WorkDir, loaded.WorkDir)
	require.Equal(t, cfg.InstallerURL, loaded.InstallerURL)
	require.True(t, loaded.Quiet)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}
