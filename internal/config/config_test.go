package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORTAL_CONFIG_FILE", "")
	t.Setenv("CRM_ACCESS_TOKEN", "")
	t.Setenv("HUBSPOT_ACCESS_TOKEN", "")
	t.Setenv("PORT", "")
	t.Setenv("PAYMENT_PAGE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.PaymentPageURL)
	assert.Empty(t, cfg.CRMAccessToken)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, DefaultDealProperties(), cfg.Properties)
}

func TestLoadTokenFallsBackToHubSpotVariable(t *testing.T) {
	t.Setenv("PORTAL_CONFIG_FILE", "")
	t.Setenv("CRM_ACCESS_TOKEN", "")
	t.Setenv("HUBSPOT_ACCESS_TOKEN", "pat-123")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "pat-123", cfg.CRMAccessToken)

	t.Setenv("CRM_ACCESS_TOKEN", "pat-456")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "pat-456", cfg.CRMAccessToken)
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portal.yaml")
	data := `
portal_title: Acme Coaching
payment_page_url: https://pay.acme.test/
rate_limit_per_min: 10
deal_properties:
  fee: acme_fee
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	t.Setenv("PORTAL_CONFIG_FILE", path)
	t.Setenv("RATE_LIMIT_PER_MIN", "25")
	t.Setenv("CRM_REQUEST_TIMEOUT", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Acme Coaching", cfg.PortalTitle)
	assert.Equal(t, "https://pay.acme.test/", cfg.PaymentPageURL)
	assert.Equal(t, 25, cfg.RateLimitPerMin)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "acme_fee", cfg.Properties.Fee)
	assert.Equal(t, "dealname", cfg.Properties.Name)
	assert.Len(t, cfg.Properties.Payments, 5)
}

func TestLoadFileRejectsShortPaymentList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("deal_properties:\n  payments: [p1, p2]\n"), 0o600))
	t.Setenv("PORTAL_CONFIG_FILE", path)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs 5 entries")
}

func TestGetEnvDurationIgnoresGarbage(t *testing.T) {
	t.Setenv("X_TIMEOUT", "soon")
	assert.Equal(t, 7*time.Second, getEnvDuration("X_TIMEOUT", 7*time.Second))
}
