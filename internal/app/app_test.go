package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkelsall/piefolio/internal/common"
	"github.com/dkelsall/piefolio/internal/services/portfolio"
)

func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	dbPath := filepath.Join(dir, "test.db")
	content := `
[storage]
path = "` + dbPath + `"

[logging]
level = "error"
format = "json"
`
	path := filepath.Join(dir, "piefolio.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewAppWiresServices(t *testing.T) {
	a, err := NewApp(writeTestConfig(t, t.TempDir()))
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Store)
	assert.NotNil(t, a.MarketClient)
	assert.NotNil(t, a.PortfolioService)
	assert.IsType(t, &portfolio.Service{}, a.PortfolioService)
}

func TestSchedulerDisabledWithoutFallbackKey(t *testing.T) {
	a, err := NewApp(writeTestConfig(t, t.TempDir()))
	require.NoError(t, err)
	defer a.Close()

	a.StartCatalogueScheduler()
	assert.Nil(t, a.scheduler, "no fallback broker key configured")
}

func TestSchedulerRejectsInvalidCronSpec(t *testing.T) {
	_, err := newScheduler("not a cron spec", nil, common.NewSilentLogger())
	assert.Error(t, err)
}
