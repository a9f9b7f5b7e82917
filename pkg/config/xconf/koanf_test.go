package xconf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cacheSection struct {
	TTL           time.Duration `koanf:"ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	Capacity      int           `koanf:"capacity"`
}

const testYAML = `
cache:
  ttl: 30s
  sweep_interval: 5s
  capacity: 64
log:
  level: debug
`

const testJSON = `{"cache": {"ttl": "1m", "sweep_interval": "10s", "capacity": 8}}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNew_YAML(t *testing.T) {
	path := writeFile(t, "xttl.yaml", testYAML)

	cfg, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, FormatYAML, cfg.Format())
	assert.Equal(t, "debug", cfg.Client().String("log.level"))

	var section cacheSection
	require.NoError(t, cfg.Unmarshal("cache", &section))
	assert.Equal(t, 30*time.Second, section.TTL)
	assert.Equal(t, 5*time.Second, section.SweepInterval)
	assert.Equal(t, 64, section.Capacity)
}

func TestNewFromBytes_JSON(t *testing.T) {
	cfg, err := NewFromBytes([]byte(testJSON), FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, cfg.Path())

	var section cacheSection
	cfg.MustUnmarshal("cache", &section)
	assert.Equal(t, time.Minute, section.TTL)
	assert.Equal(t, 8, section.Capacity)

	assert.ErrorIs(t, cfg.Reload(), ErrReloadUnsupported)
}

func TestNewFromBytes_Empty(t *testing.T) {
	cfg, err := NewFromBytes(nil, FormatYAML)
	require.NoError(t, err)

	var section cacheSection
	require.NoError(t, cfg.Unmarshal("cache", &section))
	assert.Zero(t, section)
}

func TestNew_Errors(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = New("config.toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrLoadFailed)

	_, err = New(writeFile(t, "bad.json", "{not json"))
	assert.ErrorIs(t, err, ErrParseFailed)

	_, err = NewFromBytes([]byte("a: 1"), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestUnmarshal_Error(t *testing.T) {
	cfg, err := NewFromBytes([]byte("cache:\n  capacity: many\n"), FormatYAML)
	require.NoError(t, err)

	var section cacheSection
	assert.ErrorIs(t, cfg.Unmarshal("cache", &section), ErrUnmarshalFailed)
	assert.Panics(t, func() { cfg.MustUnmarshal("cache", &section) })
}

func TestReload(t *testing.T) {
	path := writeFile(t, "xttl.yml", testYAML)
	cfg, err := New(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("cache:\n  capacity: 3\n"), 0o600))
	require.NoError(t, cfg.Reload())
	assert.Equal(t, 3, cfg.Client().Int("cache.capacity"))

	require.NoError(t, os.Remove(path))
	assert.ErrorIs(t, cfg.Reload(), ErrLoadFailed)
	// 失败的 Reload 保留旧配置
	assert.Equal(t, 3, cfg.Client().Int("cache.capacity"))
}

func TestOptions(t *testing.T) {
	cfg, err := NewFromBytes([]byte(`{"cache": {"cap": 9}}`), FormatJSON, WithDelim("/"), WithTag("json"), nil)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Client().Int("cache/cap"))

	var section struct {
		Cap int `json:"cap"`
	}
	require.NoError(t, cfg.Unmarshal("cache", &section))
	assert.Equal(t, 9, section.Cap)
}
