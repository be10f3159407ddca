package quota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Souley97/wolof-sign-back/internal/apperr"
	"github.com/Souley97/wolof-sign-back/internal/models"
)

func sub(planType models.PlanType, used, max int, periodEnd *time.Time) *models.Subscription {
	return &models.Subscription{
		Plan:                models.Plan{PlanType: planType},
		Status:              models.SubscriptionActive,
		SignaturesUsed:      used,
		CustomMaxSignatures: max,
		CurrentPeriodEnd:    periodEnd,
	}
}

func TestEvaluateWithinQuota(t *testing.T) {
	end := time.Now().Add(24 * time.Hour)
	assert.NoError(t, evaluate(sub(models.PlanProfessionnel, 3, 50, &end), time.Now()))
}

func TestEvaluateQuotaExhausted(t *testing.T) {
	end := time.Now().Add(24 * time.Hour)
	err := evaluate(sub(models.PlanProfessionnel, 50, 50, &end), time.Now())
	assert.ErrorIs(t, err, apperr.ErrQuotaExceeded)
}

func TestEvaluateUnlimitedIgnoresUsage(t *testing.T) {
	end := time.Now().Add(24 * time.Hour)
	assert.NoError(t, evaluate(sub(models.PlanEntreprise, 100000, 0, &end), time.Now()))
}

func TestEvaluateExpiredPaidPeriod(t *testing.T) {
	end := time.Now().Add(-time.Hour)
	err := evaluate(sub(models.PlanProfessionnel, 3, 50, &end), time.Now())
	assert.ErrorIs(t, err, apperr.ErrSubscriptionExpired)
}

func TestEvaluateQuotaBeatsExpiry(t *testing.T) {
	// Both problems at once must surface the quota, not the period.
	end := time.Now().Add(-time.Hour)
	err := evaluate(sub(models.PlanProfessionnel, 50, 50, &end), time.Now())
	assert.ErrorIs(t, err, apperr.ErrQuotaExceeded)
}

func TestEvaluateFreePlanExpiredPeriod(t *testing.T) {
	// The free plan expires like any other; the renewal sweep is what
	// rolls its period forward and resets the counter.
	end := time.Now().Add(-time.Hour)
	err := evaluate(sub(models.PlanDecouverte, 2, 5, &end), time.Now())
	assert.ErrorIs(t, err, apperr.ErrSubscriptionExpired)
}

func TestEvaluateFreePlanCurrentPeriod(t *testing.T) {
	end := time.Now().Add(24 * time.Hour)
	assert.NoError(t, evaluate(sub(models.PlanDecouverte, 2, 5, &end), time.Now()))
}

func TestEvaluateNilPeriodEnd(t *testing.T) {
	assert.NoError(t, evaluate(sub(models.PlanProfessionnel, 0, 50, nil), time.Now()))
}
