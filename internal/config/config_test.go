package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/boxjoint/internal/config"
)

func TestDefaults(t *testing.T) {
	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Development)
	assert.Equal(t, 200, cfg.Mesh.Cells)
	assert.Equal(t, ".", cfg.Output.Dir)
	assert.Equal(t, 5*time.Second, cfg.Eval.Timeout)
}

func TestFileEnvAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boxjoint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
mesh:
  cells: 64
eval:
  timeout: 2s
`), 0o644))
	t.Setenv("BOXJOINT_OUTPUT_DIR", "/tmp/stl")

	v := config.New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, config.BindFlags(v, fs))
	require.NoError(t, fs.Parse([]string{"--mesh-cells", "96"}))

	cfg, err := config.Load(v, path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 96, cfg.Mesh.Cells, "flag beats file")
	assert.Equal(t, "/tmp/stl", cfg.Output.Dir, "env beats default")
	assert.Equal(t, 2*time.Second, cfg.Eval.Timeout)
}

func TestLoadErrors(t *testing.T) {
	_, err := config.Load(config.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	v := config.New()
	v.Set("mesh.cells", 2)
	v.Set("eval.timeout", "0s")
	_, err = config.Load(v, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mesh.cells")
	assert.Contains(t, err.Error(), "eval.timeout")
}
