package handlers

import (
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Souley97/wolof-sign-back/internal/auth"
	"github.com/Souley97/wolof-sign-back/internal/models"
)

func ListPlans(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var plans []models.Plan
		if err := db.Where("is_active").Order("price_monthly ASC").Find(&plans).Error; err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, plans)
	}
}

func MySubscription(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub models.Subscription
		err := db.Preload("Plan").
			Where("user_id = ? AND status IN ?", auth.Subject(r.Context()),
				[]models.SubscriptionStatus{models.SubscriptionActive, models.SubscriptionTrialing}).
			Order("created_at DESC").First(&sub).Error
		if err != nil {
			http.Error(w, "no active subscription", http.StatusNotFound)
			return
		}
		respondJSON(w, map[string]any{
			"subscription":         sub,
			"signatures_remaining": sub.RemainingSignatures(),
		})
	}
}

func MyPayments(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payments []models.PaymentHistory
		err := db.Joins("JOIN subscriptions ON subscriptions.id = payment_histories.subscription_id").
			Where("subscriptions.user_id = ?", auth.Subject(r.Context())).
			Order("payment_date DESC").
			Find(&payments).Error
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, payments)
	}
}
