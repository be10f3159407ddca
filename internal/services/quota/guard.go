// Package quota enforces subscription signature quotas. Authorization is a
// read-only pre-check; the actual charge happens inside the signing
// transaction so a signature is only ever counted once it exists.
package quota

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Souley97/wolof-sign-back/internal/apperr"
	"github.com/Souley97/wolof-sign-back/internal/models"
)

type Guard struct {
	db *gorm.DB
	lg *zap.SugaredLogger
}

func New(db *gorm.DB, lg *zap.SugaredLogger) *Guard {
	return &Guard{db: db, lg: lg}
}

// Authorize returns the subscription that would be charged for one more
// signature by userID, or the reason none can be.
func (g *Guard) Authorize(ctx context.Context, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := g.db.WithContext(ctx).Preload("Plan").
		Where("user_id = ? AND status IN ?", userID,
			[]models.SubscriptionStatus{models.SubscriptionActive, models.SubscriptionTrialing}).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, apperr.ErrNoActiveSubscription
	}

	target := &sub
	if sub.Plan.PlanType == models.PlanDecouverte {
		// The free allowance is granted once per account, on the first
		// subscription ever created, so re-subscribing to the free plan
		// does not reset the counter.
		var first models.Subscription
		err := g.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Order("created_at ASC").
			First(&first).Error
		if err == nil {
			target = &first
		}
	}

	if err := evaluate(target, time.Now()); err != nil {
		return nil, err
	}
	return target, nil
}

// evaluate applies the quota rules to one subscription row. Expiry and
// quota bind every plan alike; the free plan gets its period rolled
// forward by the renewal sweep, not a pass here.
func evaluate(sub *models.Subscription, now time.Time) error {
	if !sub.HasUnlimitedSignatures() && sub.SignaturesUsed >= sub.CustomMaxSignatures {
		return apperr.ErrQuotaExceeded
	}
	if sub.CurrentPeriodEnd != nil && !sub.CurrentPeriodEnd.After(now) {
		return apperr.ErrSubscriptionExpired
	}
	return nil
}

// Consume charges one signature against subID. The guard in the WHERE
// clause makes the increment atomic; losing the race after Authorize
// surfaces as ErrQuotaExceeded and rolls back the caller's transaction.
func (g *Guard) Consume(tx *gorm.DB, subID string) error {
	res := tx.Model(&models.Subscription{}).
		Where("id = ? AND (custom_max_signatures <= 0 OR signatures_used < custom_max_signatures)", subID).
		UpdateColumn("signatures_used", gorm.Expr("signatures_used + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrQuotaExceeded
	}
	return nil
}

// CheckSignerLimit enforces the plan's per-document invited-signer cap.
func (g *Guard) CheckSignerLimit(ctx context.Context, userID, documentID string) error {
	var sub models.Subscription
	err := g.db.WithContext(ctx).Preload("Plan").
		Where("user_id = ? AND status IN ?", userID,
			[]models.SubscriptionStatus{models.SubscriptionActive, models.SubscriptionTrialing}).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return apperr.ErrNoActiveSubscription
	}
	if sub.Plan.MaxSigners <= 0 {
		return nil
	}

	var count int64
	if err := g.db.WithContext(ctx).Model(&models.DocumentSigner{}).
		Where("document_id = ?", documentID).Count(&count).Error; err != nil {
		return err
	}
	if count >= int64(sub.Plan.MaxSigners) {
		return apperr.Validation("plan allows at most %d signers per document", sub.Plan.MaxSigners)
	}
	return nil
}

// RenewFreePeriods rolls expired free-plan periods forward by a month and
// is run from the daily cron. Paid plans renew through payment, never here.
func (g *Guard) RenewFreePeriods(ctx context.Context) {
	now := time.Now()
	res := g.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("status = ? AND current_period_end IS NOT NULL AND current_period_end <= ?",
			models.SubscriptionActive, now).
		Where("plan_id IN (?)", g.db.Model(&models.Plan{}).Select("id").
			Where("plan_type = ?", models.PlanDecouverte)).
		Updates(map[string]any{
			"current_period_end": now.AddDate(0, 1, 0),
			"signatures_used":    0,
		})
	if res.Error != nil {
		g.lg.Errorw("free plan renewal sweep failed", "error", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		g.lg.Infow("renewed free plan periods", "count", res.RowsAffected)
	}
}
