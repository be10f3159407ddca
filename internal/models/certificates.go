package models

import "time"

type CertificateStatus string

const (
	CertificateActive  CertificateStatus = "active"
	CertificateRevoked CertificateStatus = "revoked"
	CertificateExpired CertificateStatus = "expired"
)

// Certificate is an RSA keypair attributing signatures to a user.
// Keys are stored PEM encoded: PKCS8 private, PKIX (SubjectPublicKeyInfo) public.
type Certificate struct {
	ID               string            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID           string            `gorm:"type:uuid;index;not null" json:"user_id"`
	PublicKey        string            `gorm:"not null" json:"public_key"`
	PrivateKey       string            `gorm:"not null" json:"-"`
	ValidFrom        time.Time         `gorm:"autoCreateTime" json:"valid_from"`
	ValidUntil       time.Time         `gorm:"not null" json:"valid_until"`
	Status           CertificateStatus `gorm:"size:20;not null;default:active" json:"status"`
	RevocationReason string            `json:"revocation_reason,omitempty"`
}

func (c *Certificate) IsExpired(now time.Time) bool {
	return !c.ValidUntil.IsZero() && c.ValidUntil.Before(now)
}
