package signing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Souley97/wolof-sign-back/internal/models"
)

func TestValidatePlacementDefaultsSize(t *testing.T) {
	p, err := validatePlacement(0, 100, 100, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 200.0, p.Width)
	assert.Equal(t, 100.0, p.Height)
}

func TestValidatePlacementKeepsExplicitSize(t *testing.T) {
	p, err := validatePlacement(2, 10, 20, 150, 60)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 150.0, p.Width)
	assert.Equal(t, 60.0, p.Height)
}

func TestValidatePlacementRejectsNegativePage(t *testing.T) {
	_, err := validatePlacement(-1, 0, 0, 200, 100)
	assert.Error(t, err)
}

func TestValidatePlacementRejectsNegativePosition(t *testing.T) {
	_, err := validatePlacement(0, -5, 10, 200, 100)
	assert.Error(t, err)

	_, err = validatePlacement(0, 5, -10, 200, 100)
	assert.Error(t, err)
}

func TestValidatePlacementRejectsNegativeSize(t *testing.T) {
	_, err := validatePlacement(0, 0, 0, -200, 100)
	assert.Error(t, err)

	_, err = validatePlacement(0, 0, 0, 200, -1)
	assert.Error(t, err)
}

func cert(status models.CertificateStatus, validUntil time.Time) *models.Certificate {
	return &models.Certificate{Status: status, ValidUntil: validUntil}
}

func TestCertificateProblemActive(t *testing.T) {
	now := time.Now()
	assert.Empty(t, certificateProblem(cert(models.CertificateActive, now.Add(time.Hour)), now))
}

func TestCertificateProblemRevoked(t *testing.T) {
	now := time.Now()
	c := cert(models.CertificateRevoked, now.Add(time.Hour))
	assert.Contains(t, certificateProblem(c, now), "révoqué")

	c.RevocationReason = "clé compromise"
	assert.Contains(t, certificateProblem(c, now), "clé compromise")
}

func TestCertificateProblemExpired(t *testing.T) {
	now := time.Now()
	assert.Contains(t, certificateProblem(cert(models.CertificateActive, now.Add(-time.Hour)), now), "expiré")
	assert.Contains(t, certificateProblem(cert(models.CertificateExpired, now.Add(time.Hour)), now), "expiré")
}

func TestCertificateProblemRevokedBeatsExpired(t *testing.T) {
	// A revoked certificate stays revoked even past its validity window.
	now := time.Now()
	assert.Contains(t, certificateProblem(cert(models.CertificateRevoked, now.Add(-time.Hour)), now), "révoqué")
}
