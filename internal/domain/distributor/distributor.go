package distributor

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/shared/valueobject"
)

// KYCStatus is the verification state of a distributor
type KYCStatus string

const (
	KYCStatusDraft       KYCStatus = "DRAFT"
	KYCStatusSubmitted   KYCStatus = "SUBMITTED"
	KYCStatusUnderReview KYCStatus = "UNDER_REVIEW"
	KYCStatusApproved    KYCStatus = "APPROVED"
	KYCStatusRejected    KYCStatus = "REJECTED"
)

// IsValid checks if the status is known
func (s KYCStatus) IsValid() bool {
	switch s {
	case KYCStatusDraft, KYCStatusSubmitted, KYCStatusUnderReview, KYCStatusApproved, KYCStatusRejected:
		return true
	}
	return false
}

// IsEditable reports whether the profile may still change
func (s KYCStatus) IsEditable() bool {
	return s == KYCStatusDraft || s == KYCStatusRejected
}

// Profile holds the business details a distributor provides
type Profile struct {
	BusinessName      string
	ContactName       string
	Email             string
	Phone             string
	GSTIN             string
	PAN               string
	Address           string
	City              string
	State             string
	Pincode           string
	BankAccountHolder string
	BankAccountNumber string
	BankIFSC          string
}

// Distributor supplies products to stores after passing KYC
type Distributor struct {
	shared.BaseAggregateRoot
	BusinessName      string     `gorm:"type:varchar(200);not null"`
	ContactName       string     `gorm:"type:varchar(100);not null"`
	Email             string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	Phone             string     `gorm:"type:varchar(20)"`
	GSTIN             string     `gorm:"column:gstin;type:varchar(15)"`
	PAN               string     `gorm:"column:pan;type:varchar(10)"`
	Address           string     `gorm:"type:text"`
	City              string     `gorm:"type:varchar(100);index"`
	State             string     `gorm:"type:varchar(100)"`
	Pincode           string     `gorm:"type:varchar(6)"`
	BankAccountHolder string     `gorm:"type:varchar(200)"`
	BankAccountNumber string     `gorm:"type:varchar(34)"`
	BankIFSC          string     `gorm:"column:bank_ifsc;type:varchar(11)"`
	KYCStatus         KYCStatus  `gorm:"column:kyc_status;type:varchar(20);not null;default:'DRAFT';index"`
	Documents         []Document `gorm:"foreignKey:DistributorID;constraint:OnDelete:CASCADE"`
	RejectionReason   string     `gorm:"type:text"`
	ReviewedBy        *uuid.UUID `gorm:"type:uuid"`
	SubmittedAt       *time.Time
	ReviewedAt        *time.Time
	ApprovedAt        *time.Time
	IsActive          bool `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Distributor) TableName() string {
	return "distributors"
}

// NewDistributor registers a distributor in DRAFT
func NewDistributor(p Profile) (*Distributor, error) {
	d := &Distributor{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		KYCStatus:         KYCStatusDraft,
		IsActive:          true,
	}
	if err := d.applyProfile(p); err != nil {
		return nil, err
	}
	d.AddDomainEvent(NewDistributorRegisteredEvent(d))
	return d, nil
}

// UpdateProfile changes business details while KYC is not in flight
func (d *Distributor) UpdateProfile(p Profile) error {
	if !d.KYCStatus.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", "Profile can only be edited in DRAFT or REJECTED status")
	}
	if err := d.applyProfile(p); err != nil {
		return err
	}
	d.touch()
	return nil
}

// RecordDocument adds a pending upload, replacing any earlier document of the same type
func (d *Distributor) RecordDocument(docType DocumentType, fileName, contentType string) (*Document, error) {
	if !d.KYCStatus.IsEditable() {
		return nil, shared.NewDomainError("INVALID_STATE", "Documents can only be uploaded in DRAFT or REJECTED status")
	}
	doc, err := NewDocument(d.ID, docType, fileName, contentType)
	if err != nil {
		return nil, err
	}
	kept := d.Documents[:0]
	for _, existing := range d.Documents {
		if existing.Type != docType {
			kept = append(kept, existing)
		}
	}
	d.Documents = append(kept, *doc)
	d.touch()
	return &d.Documents[len(d.Documents)-1], nil
}

// Document returns the document with the given ID
func (d *Distributor) Document(id uuid.UUID) (*Document, error) {
	for i := range d.Documents {
		if d.Documents[i].ID == id {
			return &d.Documents[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

// MissingDocuments lists required document types not yet uploaded
func (d *Distributor) MissingDocuments() []DocumentType {
	uploaded := make(map[DocumentType]bool, len(d.Documents))
	for _, doc := range d.Documents {
		if doc.IsUploaded() {
			uploaded[doc.Type] = true
		}
	}
	var missing []DocumentType
	for _, t := range RequiredDocuments {
		if !uploaded[t] {
			missing = append(missing, t)
		}
	}
	return missing
}

// Submit sends the KYC for review
func (d *Distributor) Submit() error {
	if !d.KYCStatus.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot submit KYC in %s status", d.KYCStatus))
	}
	if d.GSTIN == "" || d.PAN == "" || d.BankAccountNumber == "" || d.BankIFSC == "" {
		return shared.NewDomainError("KYC_INCOMPLETE", "GSTIN, PAN and bank details are required before submission")
	}
	if missing := d.MissingDocuments(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, m := range missing {
			names[i] = string(m)
		}
		return shared.NewDomainError("KYC_DOCUMENTS_MISSING", "Missing documents: "+strings.Join(names, ", "))
	}
	now := time.Now()
	d.SubmittedAt = &now
	d.RejectionReason = ""
	return d.transition(KYCStatusSubmitted, nil)
}

// StartReview picks up a submitted KYC
func (d *Distributor) StartReview(reviewerID uuid.UUID) error {
	if d.KYCStatus != KYCStatusSubmitted {
		return shared.NewDomainError("INVALID_STATE", "Only submitted KYC can be reviewed")
	}
	return d.transition(KYCStatusUnderReview, &reviewerID)
}

// Approve completes KYC
func (d *Distributor) Approve(reviewerID uuid.UUID) error {
	if d.KYCStatus != KYCStatusUnderReview {
		return shared.NewDomainError("INVALID_STATE", "Only KYC under review can be approved")
	}
	now := time.Now()
	d.ApprovedAt = &now
	d.IsActive = true
	return d.transition(KYCStatusApproved, &reviewerID)
}

// Reject returns KYC to the distributor with a reason
func (d *Distributor) Reject(reviewerID uuid.UUID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}
	if d.KYCStatus != KYCStatusUnderReview && d.KYCStatus != KYCStatusSubmitted {
		return shared.NewDomainError("INVALID_STATE", "Only submitted KYC can be rejected")
	}
	d.RejectionReason = reason
	return d.transition(KYCStatusRejected, &reviewerID)
}

// Suspend deactivates an approved distributor
func (d *Distributor) Suspend() error {
	if d.KYCStatus != KYCStatusApproved {
		return shared.NewDomainError("INVALID_STATE", "Only approved distributors can be suspended")
	}
	if !d.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Distributor is already suspended")
	}
	d.IsActive = false
	d.touch()
	d.AddDomainEvent(NewDistributorActivationChangedEvent(d))
	return nil
}

// Reinstate reactivates a suspended distributor
func (d *Distributor) Reinstate() error {
	if d.KYCStatus != KYCStatusApproved {
		return shared.NewDomainError("INVALID_STATE", "Only approved distributors can be reinstated")
	}
	if d.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Distributor is already active")
	}
	d.IsActive = true
	d.touch()
	d.AddDomainEvent(NewDistributorActivationChangedEvent(d))
	return nil
}

// CanSupply reports whether the distributor may be linked to products
func (d *Distributor) CanSupply() bool {
	return d.KYCStatus == KYCStatusApproved && d.IsActive
}

func (d *Distributor) transition(target KYCStatus, reviewerID *uuid.UUID) error {
	old := d.KYCStatus
	d.KYCStatus = target
	if reviewerID != nil {
		now := time.Now()
		d.ReviewedBy = reviewerID
		d.ReviewedAt = &now
	}
	d.touch()
	d.AddDomainEvent(NewKYCStatusChangedEvent(d, old))
	return nil
}

func (d *Distributor) touch() {
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
}

func (d *Distributor) applyProfile(p Profile) error {
	p.BusinessName = strings.TrimSpace(p.BusinessName)
	p.ContactName = strings.TrimSpace(p.ContactName)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.GSTIN = strings.ToUpper(strings.TrimSpace(p.GSTIN))
	p.PAN = strings.ToUpper(strings.TrimSpace(p.PAN))
	p.BankIFSC = strings.ToUpper(strings.TrimSpace(p.BankIFSC))
	p.Pincode = strings.TrimSpace(p.Pincode)

	if p.BusinessName == "" {
		return shared.NewDomainError("INVALID_NAME", "Business name cannot be empty")
	}
	if len(p.BusinessName) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Business name cannot exceed 200 characters")
	}
	if p.ContactName == "" {
		return shared.NewDomainError("INVALID_NAME", "Contact name cannot be empty")
	}
	if _, err := mail.ParseAddress(p.Email); err != nil {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
	}
	if p.GSTIN != "" && !valueobject.IsValidGSTIN(p.GSTIN) {
		return shared.NewDomainError("INVALID_GSTIN", "GSTIN must be 15 characters in the standard format")
	}
	if p.PAN != "" && !valueobject.IsValidPAN(p.PAN) {
		return shared.NewDomainError("INVALID_PAN", "PAN must be 10 characters in the standard format")
	}
	if p.GSTIN != "" && p.PAN != "" && p.GSTIN[2:12] != p.PAN {
		return shared.NewDomainError("INVALID_GSTIN", "GSTIN does not match PAN")
	}
	if p.BankIFSC != "" && !valueobject.IsValidIFSC(p.BankIFSC) {
		return shared.NewDomainError("INVALID_IFSC", "IFSC must be 11 characters in the standard format")
	}
	if p.Pincode != "" && !valueobject.IsValidPincode(p.Pincode) {
		return shared.NewDomainError("INVALID_PINCODE", "Pincode must be 6 digits")
	}

	d.BusinessName = p.BusinessName
	d.ContactName = p.ContactName
	d.Email = p.Email
	d.Phone = strings.TrimSpace(p.Phone)
	d.GSTIN = p.GSTIN
	d.PAN = p.PAN
	d.Address = strings.TrimSpace(p.Address)
	d.City = strings.TrimSpace(p.City)
	d.State = strings.TrimSpace(p.State)
	d.Pincode = p.Pincode
	d.BankAccountHolder = strings.TrimSpace(p.BankAccountHolder)
	d.BankAccountNumber = strings.TrimSpace(p.BankAccountNumber)
	d.BankIFSC = p.BankIFSC
	return nil
}
