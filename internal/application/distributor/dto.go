package distributor

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/distributor"
	"github.com/grocer/backend/internal/infrastructure/storage"
)

// ProfileRequest carries a distributor's business details
type ProfileRequest struct {
	BusinessName      string `json:"business_name" binding:"required,max=200"`
	ContactName       string `json:"contact_name" binding:"required,max=100"`
	Email             string `json:"email" binding:"required,email"`
	Phone             string `json:"phone" binding:"max=20"`
	GSTIN             string `json:"gstin" binding:"omitempty,len=15"`
	PAN               string `json:"pan" binding:"omitempty,len=10"`
	Address           string `json:"address"`
	City              string `json:"city" binding:"max=100"`
	State             string `json:"state" binding:"max=100"`
	Pincode           string `json:"pincode" binding:"omitempty,len=6,numeric"`
	BankAccountHolder string `json:"bank_account_holder" binding:"max=200"`
	BankAccountNumber string `json:"bank_account_number" binding:"max=34"`
	BankIFSC          string `json:"bank_ifsc" binding:"omitempty,len=11"`
}

func (r ProfileRequest) toDomain() distributor.Profile {
	return distributor.Profile{
		BusinessName:      r.BusinessName,
		ContactName:       r.ContactName,
		Email:             r.Email,
		Phone:             r.Phone,
		GSTIN:             r.GSTIN,
		PAN:               r.PAN,
		Address:           r.Address,
		City:              r.City,
		State:             r.State,
		Pincode:           r.Pincode,
		BankAccountHolder: r.BankAccountHolder,
		BankAccountNumber: r.BankAccountNumber,
		BankIFSC:          r.BankIFSC,
	}
}

// DocumentUploadRequest asks for a presigned upload URL
type DocumentUploadRequest struct {
	Type        string `json:"type" binding:"required,oneof=GST_CERTIFICATE PAN_CARD CANCELLED_CHEQUE TRADE_LICENSE FSSAI_LICENSE"`
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
}

// RejectKYCRequest carries the rejection reason
type RejectKYCRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// DistributorListFilter narrows distributor listings
type DistributorListFilter struct {
	Search    string `form:"search"`
	KYCStatus string `form:"kyc_status" binding:"omitempty,oneof=DRAFT SUBMITTED UNDER_REVIEW APPROVED REJECTED"`
	City      string `form:"city"`
	IsActive  *bool  `form:"is_active"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Caller identifies who is acting on a distributor record
type Caller struct {
	UserID uuid.UUID
	Role   string
	Email  string
}

// DocumentResponse represents a KYC document
type DocumentResponse struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	Status      string     `json:"status"`
	UploadedAt  *time.Time `json:"uploaded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// DocumentUploadResponse pairs a pending document with its upload URL
type DocumentUploadResponse struct {
	Document DocumentResponse     `json:"document"`
	Upload   storage.PresignedURL `json:"upload"`
}

// DistributorResponse represents a distributor in API responses.
// The bank account number is masked.
type DistributorResponse struct {
	ID                uuid.UUID          `json:"id"`
	BusinessName      string             `json:"business_name"`
	ContactName       string             `json:"contact_name"`
	Email             string             `json:"email"`
	Phone             string             `json:"phone,omitempty"`
	GSTIN             string             `json:"gstin,omitempty"`
	PAN               string             `json:"pan,omitempty"`
	Address           string             `json:"address,omitempty"`
	City              string             `json:"city,omitempty"`
	State             string             `json:"state,omitempty"`
	Pincode           string             `json:"pincode,omitempty"`
	BankAccountHolder string             `json:"bank_account_holder,omitempty"`
	BankAccountNumber string             `json:"bank_account_number,omitempty"`
	BankIFSC          string             `json:"bank_ifsc,omitempty"`
	KYCStatus         string             `json:"kyc_status"`
	Documents         []DocumentResponse `json:"documents"`
	MissingDocuments  []string           `json:"missing_documents,omitempty"`
	RejectionReason   string             `json:"rejection_reason,omitempty"`
	ReviewedBy        *uuid.UUID         `json:"reviewed_by,omitempty"`
	SubmittedAt       *time.Time         `json:"submitted_at,omitempty"`
	ReviewedAt        *time.Time         `json:"reviewed_at,omitempty"`
	ApprovedAt        *time.Time         `json:"approved_at,omitempty"`
	IsActive          bool               `json:"is_active"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// ToDocumentResponse converts a domain document
func ToDocumentResponse(doc *distributor.Document) DocumentResponse {
	return DocumentResponse{
		ID:          doc.ID,
		Type:        string(doc.Type),
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		Status:      string(doc.Status),
		UploadedAt:  doc.UploadedAt,
		CreatedAt:   doc.CreatedAt,
	}
}

// ToDistributorResponse converts a domain distributor to a response DTO
func ToDistributorResponse(d *distributor.Distributor) DistributorResponse {
	docs := make([]DocumentResponse, len(d.Documents))
	for i := range d.Documents {
		docs[i] = ToDocumentResponse(&d.Documents[i])
	}
	var missing []string
	for _, t := range d.MissingDocuments() {
		missing = append(missing, string(t))
	}
	return DistributorResponse{
		ID:                d.ID,
		BusinessName:      d.BusinessName,
		ContactName:       d.ContactName,
		Email:             d.Email,
		Phone:             d.Phone,
		GSTIN:             d.GSTIN,
		PAN:               d.PAN,
		Address:           d.Address,
		City:              d.City,
		State:             d.State,
		Pincode:           d.Pincode,
		BankAccountHolder: d.BankAccountHolder,
		BankAccountNumber: maskAccount(d.BankAccountNumber),
		BankIFSC:          d.BankIFSC,
		KYCStatus:         string(d.KYCStatus),
		Documents:         docs,
		MissingDocuments:  missing,
		RejectionReason:   d.RejectionReason,
		ReviewedBy:        d.ReviewedBy,
		SubmittedAt:       d.SubmittedAt,
		ReviewedAt:        d.ReviewedAt,
		ApprovedAt:        d.ApprovedAt,
		IsActive:          d.IsActive,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

// ToDistributorResponses converts a slice of distributors
func ToDistributorResponses(ds []distributor.Distributor) []DistributorResponse {
	out := make([]DistributorResponse, len(ds))
	for i := range ds {
		out[i] = ToDistributorResponse(&ds[i])
	}
	return out
}

func maskAccount(n string) string {
	if len(n) <= 4 {
		return n
	}
	masked := make([]byte, len(n))
	for i := range masked {
		if i < len(n)-4 {
			masked[i] = 'X'
		} else {
			masked[i] = n[i]
		}
	}
	return string(masked)
}
