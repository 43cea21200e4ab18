package configpaths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigCandidatePathsRoutesUserPathByExtension(t *testing.T) {
	jsonPaths, yamlPaths, tomlPaths := ConfigCandidatePaths("/tmp/my.toml")
	require.Equal(t, "/tmp/my.toml", tomlPaths[0])
	require.NotContains(t, jsonPaths, "/tmp/my.toml")
	require.NotContains(t, yamlPaths, "/tmp/my.toml")

	jsonPaths, _, _ = ConfigCandidatePaths("/tmp/noext")
	require.Equal(t, "/tmp/noext", jsonPaths[0])
}

func TestDefaultConfigPathExtension(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	p, err := DefaultConfigPath("yaml")
	require.NoError(t, err)
	require.Equal(t, "config.yaml", filepath.Base(p))

	p, err = DefaultConfigPath("unknown")
	require.NoError(t, err)
	require.Equal(t, "config.json", filepath.Base(p))
}
