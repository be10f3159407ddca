// Package vault stores a user's reusable signature images, encrypted at
// rest, and maintains the single-default invariant.
package vault

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Souley97/wolof-sign-back/internal/apperr"
	"github.com/Souley97/wolof-sign-back/internal/models"
	"github.com/Souley97/wolof-sign-back/internal/services/sigcrypto"
)

type Vault struct {
	db  *gorm.DB
	enc *sigcrypto.Encryptor
	lg  *zap.SugaredLogger
}

func New(db *gorm.DB, enc *sigcrypto.Encryptor, lg *zap.SugaredLogger) *Vault {
	return &Vault{db: db, enc: enc, lg: lg}
}

// Save encrypts and stores a named signature image. The first signature a
// user saves becomes the default; an explicit default demotes its siblings
// inside the same transaction. Sibling rows are locked for the duration so
// two concurrent writers cannot both end up default.
func (v *Vault) Save(ctx context.Context, userID, name, imageData string, isDefault bool) (*models.SavedSignature, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("signature name is required")
	}
	if strings.TrimSpace(imageData) == "" {
		return nil, apperr.Validation("signature data is required")
	}

	encrypted, err := v.enc.Encrypt(imageData)
	if err != nil {
		return nil, err
	}

	sig := &models.SavedSignature{
		UserID:        userID,
		Name:          name,
		SignatureData: encrypted,
		IsDefault:     isDefault,
		CreatedAt:     time.Now(),
	}

	err = v.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var siblings []models.SavedSignature
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).Find(&siblings).Error; err != nil {
			return err
		}
		for _, s := range siblings {
			if s.Name == name {
				return apperr.Validation("a signature named %q already exists", name)
			}
		}
		if len(siblings) == 0 {
			sig.IsDefault = true
		}
		if sig.IsDefault {
			if err := tx.Model(&models.SavedSignature{}).
				Where("user_id = ? AND is_default", userID).
				UpdateColumn("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(sig).Error
	})
	if err != nil {
		return nil, err
	}
	return sig, nil
}

// SetDefault promotes one signature and demotes all others of the same
// owner transactionally.
func (v *Vault) SetDefault(ctx context.Context, userID, id string) error {
	return v.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sig models.SavedSignature
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&sig, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return apperr.ErrNotFound
		}
		if err := tx.Model(&models.SavedSignature{}).
			Where("user_id = ? AND is_default AND id <> ?", userID, id).
			UpdateColumn("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&sig).UpdateColumn("is_default", true).Error
	})
}

// GetDecrypted returns the plaintext image of an owned signature and stamps
// its last-used time. Legacy rows stored before encryption decrypt to
// themselves.
func (v *Vault) GetDecrypted(ctx context.Context, userID, id string) (string, *models.SavedSignature, error) {
	var sig models.SavedSignature
	if err := v.db.WithContext(ctx).First(&sig, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return "", nil, apperr.ErrNotFound
	}

	plaintext, err := v.enc.Decrypt(sig.SignatureData)
	if err != nil {
		v.lg.Errorw("saved signature decryption failed", "signature_id", id, "error", err)
		return "", nil, err
	}

	now := time.Now()
	if err := v.db.WithContext(ctx).Model(&sig).UpdateColumn("last_used_at", now).Error; err != nil {
		v.lg.Warnw("could not mark signature as used", "signature_id", id, "error", err)
	}
	sig.LastUsedAt = &now
	return plaintext, &sig, nil
}

// List orders by default first, then most recently used, then newest.
func (v *Vault) List(ctx context.Context, userID string) ([]models.SavedSignature, error) {
	var sigs []models.SavedSignature
	err := v.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, last_used_at DESC NULLS LAST, created_at DESC").
		Find(&sigs).Error
	return sigs, err
}

func (v *Vault) Delete(ctx context.Context, userID, id string) error {
	res := v.db.WithContext(ctx).Delete(&models.SavedSignature{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
