package distributor

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
)

// DocumentType is a KYC document category
type DocumentType string

const (
	DocumentTypeGSTCertificate  DocumentType = "GST_CERTIFICATE"
	DocumentTypePANCard         DocumentType = "PAN_CARD"
	DocumentTypeCancelledCheque DocumentType = "CANCELLED_CHEQUE"
	DocumentTypeTradeLicense    DocumentType = "TRADE_LICENSE"
	DocumentTypeFSSAILicense    DocumentType = "FSSAI_LICENSE"
)

// RequiredDocuments must be uploaded before KYC submission
var RequiredDocuments = []DocumentType{
	DocumentTypeGSTCertificate,
	DocumentTypePANCard,
	DocumentTypeCancelledCheque,
}

// IsValid checks if the document type is known
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeGSTCertificate, DocumentTypePANCard, DocumentTypeCancelledCheque,
		DocumentTypeTradeLicense, DocumentTypeFSSAILicense:
		return true
	}
	return false
}

var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// DocumentStatus tracks the upload
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "PENDING"
	DocumentStatusUploaded DocumentStatus = "UPLOADED"
)

// Document is a KYC file held in object storage
type Document struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	DistributorID uuid.UUID      `gorm:"type:uuid;not null;index"`
	Type          DocumentType   `gorm:"type:varchar(30);not null"`
	FileName      string         `gorm:"type:varchar(255);not null"`
	ContentType   string         `gorm:"type:varchar(100);not null"`
	ObjectKey     string         `gorm:"type:varchar(500);not null"`
	Status        DocumentStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	UploadedAt    *time.Time
	CreatedAt     time.Time
}

// TableName returns the table name for GORM
func (Document) TableName() string {
	return "distributor_documents"
}

// NewDocument creates a pending document with its object key
func NewDocument(distributorID uuid.UUID, docType DocumentType, fileName, contentType string) (*Document, error) {
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_TYPE", fmt.Sprintf("Unknown document type %q", docType))
	}
	fileName = path.Base(strings.TrimSpace(fileName))
	if fileName == "" || fileName == "." || fileName == "/" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if !allowedContentTypes[contentType] {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Only PDF, JPEG and PNG documents are accepted")
	}
	id := uuid.New()
	return &Document{
		ID:            id,
		DistributorID: distributorID,
		Type:          docType,
		FileName:      fileName,
		ContentType:   contentType,
		ObjectKey:     fmt.Sprintf("kyc/%s/%s/%s%s", distributorID, strings.ToLower(string(docType)), id, path.Ext(fileName)),
		Status:        DocumentStatusPending,
		CreatedAt:     time.Now(),
	}, nil
}

// MarkUploaded confirms the object exists in storage
func (doc *Document) MarkUploaded() {
	now := time.Now()
	doc.Status = DocumentStatusUploaded
	doc.UploadedAt = &now
}

// IsUploaded reports whether the file has been confirmed
func (doc *Document) IsUploaded() bool {
	return doc.Status == DocumentStatusUploaded
}
