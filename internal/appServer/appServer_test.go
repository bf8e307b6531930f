package appServer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uu4k/promotimg-back/config"
)

func TestClosersCloseInReverseOrder(t *testing.T) {
	var order []string
	var c closers
	c.add(func() error { order = append(order, "uploader"); return nil })
	c.add(func() error { order = append(order, "db"); return errors.New("already closed") })
	c.add(func() error { order = append(order, "producer"); return nil })

	c.closeAll()

	assert.Equal(t, []string{"producer", "db", "uploader"}, order)
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "0", Timeout: time.Second, Env: "test"},
		App:    config.AppConfig{WorkDir: t.TempDir(), RecordsDir: t.TempDir()},
		Render: config.RenderConfig{Engine: "native"},
		Storage: config.StorageConfig{
			Driver:    "local",
			LocalPath: t.TempDir(),
			BaseURL:   "http://localhost:8080",
		},
		Cache: config.CacheConfig{Enabled: true, TTL: time.Minute},
	}
}

func TestNewServerReturnsBuildError(t *testing.T) {
	cfg := testConfig(t)
	cfg.Render.Engine = "imagick"

	err := NewServer(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown render engine")
}

func TestNewServerReturnsListenError(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Port = "not-a-port"

	err := NewServer(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "running http server")
}

func TestBuildHandlerRegistersResources(t *testing.T) {
	var resources closers

	handler, filesDir, err := buildHandler(t.Context(), testConfig(t), &resources)

	require.NoError(t, err)
	assert.NotNil(t, handler)
	assert.NotEmpty(t, filesDir)
	// uploader and kafka producer
	assert.Len(t, resources, 2)
	resources.closeAll()
}
