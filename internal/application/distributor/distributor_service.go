package distributor

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/distributor"
	"github.com/grocer/backend/internal/domain/identity"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// DistributorService handles distributor onboarding and KYC review
type DistributorService struct {
	distributorRepo distributor.DistributorRepository
	storage         storage.ObjectStorage
	events          shared.EventPublisher
	logger          *zap.Logger
}

// NewDistributorService creates a new DistributorService
func NewDistributorService(
	distributorRepo distributor.DistributorRepository,
	objects storage.ObjectStorage,
	events shared.EventPublisher,
	logger *zap.Logger,
) *DistributorService {
	return &DistributorService{
		distributorRepo: distributorRepo,
		storage:         objects,
		events:          events,
		logger:          logger,
	}
}

// Register creates a distributor in DRAFT
func (s *DistributorService) Register(ctx context.Context, req ProfileRequest) (*DistributorResponse, error) {
	exists, err := s.distributorRepo.ExistsByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A distributor with this email already exists")
	}

	d, err := distributor.NewDistributor(req.toDomain())
	if err != nil {
		return nil, err
	}
	if err := s.distributorRepo.Save(ctx, d); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, d.PullDomainEvents())

	s.logger.Info("Distributor registered",
		zap.String("distributor_id", d.ID.String()),
		zap.String("business_name", d.BusinessName),
	)
	resp := ToDistributorResponse(d)
	return &resp, nil
}

// GetByID returns a distributor the caller may see
func (s *DistributorService) GetByID(ctx context.Context, caller Caller, id uuid.UUID) (*DistributorResponse, error) {
	d, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	resp := ToDistributorResponse(d)
	return &resp, nil
}

// List lists distributors
func (s *DistributorService) List(ctx context.Context, f DistributorListFilter) (shared.Paginated[DistributorResponse], error) {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		Search:   f.Search,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}.Normalize()
	if f.KYCStatus != "" {
		filter = filter.With("kyc_status", f.KYCStatus)
	}
	if f.City != "" {
		filter = filter.With("city", f.City)
	}
	if f.IsActive != nil {
		filter = filter.With("is_active", *f.IsActive)
	}

	ds, err := s.distributorRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[DistributorResponse]{}, err
	}
	total, err := s.distributorRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[DistributorResponse]{}, err
	}
	return shared.NewPaginated(ToDistributorResponses(ds), total, filter.Page, filter.PageSize), nil
}

// UpdateProfile changes business details while KYC is editable
func (s *DistributorService) UpdateProfile(ctx context.Context, caller Caller, id uuid.UUID, req ProfileRequest) (*DistributorResponse, error) {
	d, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != d.Email {
		exists, err := s.distributorRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A distributor with this email already exists")
		}
	}
	if err := d.UpdateProfile(req.toDomain()); err != nil {
		return nil, err
	}
	if err := s.distributorRepo.Save(ctx, d); err != nil {
		return nil, err
	}
	resp := ToDistributorResponse(d)
	return &resp, nil
}

// RequestDocumentUpload records a pending document and returns a presigned PUT URL
func (s *DistributorService) RequestDocumentUpload(ctx context.Context, caller Caller, id uuid.UUID, req DocumentUploadRequest) (*DocumentUploadResponse, error) {
	d, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	doc, err := d.RecordDocument(distributor.DocumentType(req.Type), req.FileName, req.ContentType)
	if err != nil {
		return nil, err
	}
	upload, err := s.storage.PresignUpload(ctx, doc.ObjectKey, doc.ContentType)
	if err != nil {
		s.logger.Error("Failed to presign document upload",
			zap.String("distributor_id", d.ID.String()),
			zap.String("object_key", doc.ObjectKey),
			zap.Error(err),
		)
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Document storage is unavailable")
	}
	if err := s.distributorRepo.Save(ctx, d); err != nil {
		return nil, err
	}

	return &DocumentUploadResponse{
		Document: ToDocumentResponse(doc),
		Upload:   *upload,
	}, nil
}

// ConfirmDocument marks a document uploaded once the object is in storage
func (s *DistributorService) ConfirmDocument(ctx context.Context, caller Caller, id, documentID uuid.UUID) (*DocumentResponse, error) {
	d, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	doc, err := d.Document(documentID)
	if err != nil {
		return nil, err
	}
	if doc.IsUploaded() {
		resp := ToDocumentResponse(doc)
		return &resp, nil
	}

	ok, err := s.storage.ObjectExists(ctx, doc.ObjectKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.NewDomainError("DOCUMENT_NOT_UPLOADED", "The file has not been uploaded yet")
	}
	doc.MarkUploaded()
	if err := s.distributorRepo.Save(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("KYC document uploaded",
		zap.String("distributor_id", d.ID.String()),
		zap.String("type", string(doc.Type)),
	)
	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// DocumentDownloadURL returns a presigned GET URL for an uploaded document
func (s *DistributorService) DocumentDownloadURL(ctx context.Context, caller Caller, id, documentID uuid.UUID) (*storage.PresignedURL, error) {
	d, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	doc, err := d.Document(documentID)
	if err != nil {
		return nil, err
	}
	if !doc.IsUploaded() {
		return nil, shared.NewDomainError("DOCUMENT_NOT_UPLOADED", "The file has not been uploaded yet")
	}
	return s.storage.PresignDownload(ctx, doc.ObjectKey)
}

// Submit sends KYC for review
func (s *DistributorService) Submit(ctx context.Context, caller Caller, id uuid.UUID) (*DistributorResponse, error) {
	d, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, d, d.Submit())
}

// StartReview assigns the reviewer to a submitted KYC
func (s *DistributorService) StartReview(ctx context.Context, reviewerID, id uuid.UUID) (*DistributorResponse, error) {
	return s.transition(ctx, id, func(d *distributor.Distributor) error {
		return d.StartReview(reviewerID)
	})
}

// Approve completes KYC
func (s *DistributorService) Approve(ctx context.Context, reviewerID, id uuid.UUID) (*DistributorResponse, error) {
	return s.transition(ctx, id, func(d *distributor.Distributor) error {
		return d.Approve(reviewerID)
	})
}

// Reject returns KYC to the distributor
func (s *DistributorService) Reject(ctx context.Context, reviewerID, id uuid.UUID, req RejectKYCRequest) (*DistributorResponse, error) {
	return s.transition(ctx, id, func(d *distributor.Distributor) error {
		return d.Reject(reviewerID, req.Reason)
	})
}

// Suspend deactivates an approved distributor
func (s *DistributorService) Suspend(ctx context.Context, id uuid.UUID) (*DistributorResponse, error) {
	return s.transition(ctx, id, (*distributor.Distributor).Suspend)
}

// Reinstate reactivates a suspended distributor
func (s *DistributorService) Reinstate(ctx context.Context, id uuid.UUID) (*DistributorResponse, error) {
	return s.transition(ctx, id, (*distributor.Distributor).Reinstate)
}

func (s *DistributorService) transition(ctx context.Context, id uuid.UUID, apply func(*distributor.Distributor) error) (*DistributorResponse, error) {
	d, err := s.distributorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, d, apply(d))
}

func (s *DistributorService) save(ctx context.Context, d *distributor.Distributor, applyErr error) (*DistributorResponse, error) {
	if applyErr != nil {
		return nil, applyErr
	}
	if err := s.distributorRepo.Save(ctx, d); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, d.PullDomainEvents())

	s.logger.Info("Distributor KYC updated",
		zap.String("distributor_id", d.ID.String()),
		zap.String("kyc_status", string(d.KYCStatus)),
		zap.Bool("active", d.IsActive),
	)
	resp := ToDistributorResponse(d)
	return &resp, nil
}

// load returns the distributor when the caller is staff or the distributor
// account registered under the same email.
func (s *DistributorService) load(ctx context.Context, caller Caller, id uuid.UUID) (*distributor.Distributor, error) {
	d, err := s.distributorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch identity.Role(caller.Role) {
	case identity.RoleAdmin, identity.RoleStoreManager:
		return d, nil
	case identity.RoleDistributor:
		if strings.EqualFold(caller.Email, d.Email) {
			return d, nil
		}
	}
	return nil, shared.ErrNotFound
}

func publish(ctx context.Context, events shared.EventPublisher, logger *zap.Logger, pending []shared.DomainEvent) {
	if events == nil || len(pending) == 0 {
		return
	}
	if err := events.Publish(ctx, pending...); err != nil {
		logger.Error("Failed to publish domain events", zap.Error(err))
	}
}
