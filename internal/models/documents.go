package models

import "time"

type DocumentStatus string

const (
	DocumentPending DocumentStatus = "pending"
	DocumentSigned  DocumentStatus = "signed"
)

type Document struct {
	ID         string         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title      string         `gorm:"not null" json:"title"`
	FilePath   string         `gorm:"not null" json:"file_path"`
	UploadedBy string         `gorm:"type:uuid;index;not null" json:"uploaded_by"`
	Status     DocumentStatus `gorm:"size:20;not null;default:pending" json:"status"`
	// SHA-256 over the uploaded bytes, computed once at upload and immutable after.
	Hash      string    `gorm:"size:64;uniqueIndex;not null" json:"hash"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Signature rows are append-only audit records of one signing event.
type Signature struct {
	ID         string  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DocumentID string  `gorm:"type:uuid;index;not null" json:"document_id"`
	SignerID   *string `gorm:"type:uuid;index" json:"signer_id,omitempty"`

	CertificateID *string `gorm:"type:uuid" json:"certificate_id,omitempty"`

	// Cryptographic signature (hex) or the drawn-signature placeholder text.
	SignatureData  string `gorm:"not null" json:"signature_data"`
	DrawnSignature string `json:"drawn_signature,omitempty"`

	PositionX float64 `json:"signature_position_x"`
	PositionY float64 `json:"signature_position_y"`
	Page      int     `json:"signature_page"`

	SavedSignatureID *string   `gorm:"type:uuid" json:"saved_signature_id,omitempty"`
	Timestamp        time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

type SavedSignature struct {
	ID     string `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_saved_signatures_owner_name" json:"user_id"`
	Name   string `gorm:"size:100;not null;uniqueIndex:idx_saved_signatures_owner_name" json:"name"`

	// Fernet-encrypted image payload.
	SignatureData string `gorm:"not null" json:"-"`

	IsDefault  bool       `gorm:"not null;default:false" json:"is_default"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

type SignerStatus string

const (
	SignerPending  SignerStatus = "pending"
	SignerSigned   SignerStatus = "signed"
	SignerRejected SignerStatus = "rejected"
	SignerExpired  SignerStatus = "expired"
)

// DocumentSigner is an invited third party asked to sign a document through
// a tokenized link. The token is the sole credential for the guest flow.
type DocumentSigner struct {
	ID         string  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DocumentID string  `gorm:"type:uuid;not null;uniqueIndex:idx_document_signers_doc_email" json:"document_id"`
	UserID     *string `gorm:"type:uuid" json:"user_id,omitempty"`
	Email      string  `gorm:"not null;uniqueIndex:idx_document_signers_doc_email" json:"email"`
	FullName   string  `gorm:"not null" json:"full_name"`

	Token  string       `gorm:"type:uuid;uniqueIndex;not null" json:"-"`
	Status SignerStatus `gorm:"size:20;not null;default:pending" json:"status"`

	InvitationSentAt    time.Time  `json:"invitation_sent_at"`
	InvitationExpiresAt time.Time  `json:"invitation_expires_at"`
	SignedAt            *time.Time `json:"signed_at,omitempty"`
	ReminderSentAt      *time.Time `json:"reminder_sent_at,omitempty"`
	ReminderCount       int        `gorm:"not null;default:0" json:"reminder_count"`

	PositionX float64 `json:"signature_position_x"`
	PositionY float64 `json:"signature_position_y"`
	Page      int     `gorm:"not null;default:1" json:"signature_page"`

	Message string `json:"message,omitempty"`
	Notes   string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *DocumentSigner) IsExpired(now time.Time) bool {
	return !s.InvitationExpiresAt.IsZero() && s.InvitationExpiresAt.Before(now)
}
