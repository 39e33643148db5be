package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://store.internal:3000")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://store.internal:3000", cfg.Backend.BaseURL)
	assert.Equal(t, "/api", cfg.Backend.APIPrefix)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "Sales!A:H", cfg.Sheets.ReportRange)
	assert.Equal(t, "0 20 * * *", cfg.Reporting.CronSchedule)
	assert.Equal(t, "America/Argentina/Buenos_Aires", cfg.Reporting.Timezone)
	assert.Equal(t, 10*time.Second, cfg.Scanner.Timeout)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "posgate", cfg.MongoDB.DBName)
	assert.False(t, cfg.SheetsEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://store.internal:3000/")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("BACKEND_TIMEOUT", "3s")
	t.Setenv("SCANNER_DEVICES", "lane-1, lane-2 ,,lane-3")
	t.Setenv("SCANNER_TIMEOUT", "45s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, []string{"lane-1", "lane-2", "lane-3"}, cfg.Scanner.Devices)
	assert.Equal(t, 45*time.Second, cfg.Scanner.Timeout)
}

func TestLoadMissingBackendURL(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BACKEND_BASE_URL")
}

func TestLoadInvalidTimeout(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://store.internal:3000")
	t.Setenv("BACKEND_TIMEOUT", "soon")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BACKEND_TIMEOUT")
}

func TestLoadPartialSheetsConfigRejected(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://store.internal:3000")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "/etc/posgate/creds.json")
	t.Setenv("GOOGLE_SHEET_REPORT_ID", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_SHEET_REPORT_ID")
}

func TestLoadCompleteSheetsConfigEnablesPush(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://store.internal:3000")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "/etc/posgate/creds.json")
	t.Setenv("GOOGLE_SHEET_REPORT_ID", "sheet-123")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.SheetsEnabled())
}

func TestValidateAPIPrefixShape(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://store.internal:3000")
	t.Setenv("BACKEND_API_PREFIX", "api")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BACKEND_API_PREFIX")
}
