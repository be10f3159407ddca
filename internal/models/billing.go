package models

import "time"

type PlanType string

const (
	PlanDecouverte    PlanType = "decouverte"
	PlanProfessionnel PlanType = "professionnel"
	PlanEntreprise    PlanType = "entreprise"
	PlanGouvernement  PlanType = "gouvernement"
)

type Plan struct {
	ID            int      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string   `gorm:"size:100;not null" json:"name"`
	PlanType      PlanType `gorm:"size:20;uniqueIndex;not null" json:"plan_type"`
	Description   string   `json:"description"`
	PriceMonthly  int64    `gorm:"not null;default:0" json:"price_monthly"`
	PriceAnnually int64    `gorm:"not null;default:0" json:"price_annually"`
	// Quotas; <= 0 means unlimited.
	MaxSignatures int   `gorm:"not null;default:0" json:"max_signatures"`
	MaxSigners    int   `gorm:"not null;default:1" json:"max_signers"`
	StorageLimit  int64 `gorm:"not null;default:104857600" json:"storage_limit"`
	RetentionDays int   `gorm:"not null;default:30" json:"retention_days"`
	HasAPIAccess  bool  `gorm:"not null;default:false" json:"has_api_access"`

	SupportLevel string    `gorm:"size:50;default:email" json:"support_level"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionUnpaid   SubscriptionStatus = "unpaid"
)

type Subscription struct {
	ID     string `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID string `gorm:"type:uuid;index;not null" json:"user_id"`
	PlanID int    `gorm:"not null" json:"plan_id"`
	Plan   Plan   `json:"plan"`

	Status       SubscriptionStatus `gorm:"size:20;not null;default:active" json:"status"`
	BillingCycle string             `gorm:"size:10;not null;default:monthly" json:"billing_cycle"`

	StartDate        time.Time  `json:"start_date"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	CanceledAt       *time.Time `json:"canceled_at,omitempty"`

	SignaturesUsed int   `gorm:"not null;default:0" json:"signatures_used"`
	StorageUsed    int64 `gorm:"not null;default:0" json:"storage_used"`

	// Per-subscription overrides; <= 0 means unlimited.
	CustomMaxSignatures int    `gorm:"not null;default:5" json:"custom_max_signatures"`
	CustomStorageLimit  *int64 `json:"custom_storage_limit,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RemainingSignatures returns -1 when the subscription is unlimited.
func (s *Subscription) RemainingSignatures() int {
	if s.HasUnlimitedSignatures() {
		return -1
	}
	if r := s.CustomMaxSignatures - s.SignaturesUsed; r > 0 {
		return r
	}
	return 0
}

func (s *Subscription) HasUnlimitedSignatures() bool {
	return s.CustomMaxSignatures <= 0
}

func (s *Subscription) IsCurrent(now time.Time) bool {
	if s.Status != SubscriptionActive && s.Status != SubscriptionTrialing {
		return false
	}
	return s.CurrentPeriodEnd == nil || s.CurrentPeriodEnd.After(now)
}

type PaymentHistory struct {
	ID             string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SubscriptionID string    `gorm:"type:uuid;index;not null" json:"subscription_id"`
	PaymentDate    time.Time `json:"payment_date"`
	Amount         int64     `gorm:"not null" json:"amount"`
	Status         string    `gorm:"size:20;not null;default:pending" json:"status"`
	PaymentMethod  string    `gorm:"size:50;not null;default:card" json:"payment_method"`
	CreatedAt      time.Time `json:"created_at"`
}
