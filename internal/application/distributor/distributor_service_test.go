package distributor

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/distributor"
	"github.com/grocer/backend/internal/domain/identity"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validProfile() ProfileRequest {
	return ProfileRequest{
		BusinessName:      "Fresh Farms Pvt Ltd",
		ContactName:       "Anita Rao",
		Email:             "ops@freshfarms.in",
		GSTIN:             "29ABCDE1234F1Z5",
		PAN:               "ABCDE1234F",
		City:              "Bengaluru",
		Pincode:           "560001",
		BankAccountHolder: "Fresh Farms Pvt Ltd",
		BankAccountNumber: "50100012345678",
		BankIFSC:          "HDFC0001234",
	}
}

var admin = Caller{UserID: uuid.New(), Role: string(identity.RoleAdmin)}

func newDistributor(t *testing.T) *distributor.Distributor {
	t.Helper()
	d, err := distributor.NewDistributor(validProfile().toDomain())
	require.NoError(t, err)
	d.PullDomainEvents()
	return d
}

func TestDistributorService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates draft", func(t *testing.T) {
		repo := new(MockDistributorRepository)
		events := &recordingPublisher{}
		repo.On("ExistsByEmail", ctx, "ops@freshfarms.in").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*distributor.Distributor")).Return(nil)

		req := validProfile()
		req.Email = " Ops@FreshFarms.in "
		resp, err := NewDistributorService(repo, storage.NewMemoryStorage(""), events, zap.NewNop()).Register(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "DRAFT", resp.KYCStatus)
		assert.Equal(t, "XXXXXXXXXX5678", resp.BankAccountNumber)
		assert.ElementsMatch(t, []string{"GST_CERTIFICATE", "PAN_CARD", "CANCELLED_CHEQUE"}, resp.MissingDocuments)
		assert.Equal(t, []string{distributor.EventTypeDistributorRegistered}, events.types())
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(MockDistributorRepository)
		repo.On("ExistsByEmail", ctx, "ops@freshfarms.in").Return(true, nil)

		_, err := NewDistributorService(repo, storage.NewMemoryStorage(""), nil, zap.NewNop()).Register(ctx, validProfile())
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestDistributorService_DocumentsAndSubmit(t *testing.T) {
	ctx := context.Background()
	repo := new(MockDistributorRepository)
	objects := storage.NewMemoryStorage("http://minio.local/kyc")
	events := &recordingPublisher{}
	svc := NewDistributorService(repo, objects, events, zap.NewNop())
	d := newDistributor(t)
	owner := Caller{UserID: uuid.New(), Role: string(identity.RoleDistributor), Email: "OPS@freshfarms.in"}

	repo.On("FindByID", ctx, d.ID).Return(d, nil)
	repo.On("Save", ctx, d).Return(nil)

	_, err := svc.Submit(ctx, owner, d.ID)
	assert.Equal(t, "KYC_DOCUMENTS_MISSING", shared.ErrorCode(err))

	for _, dt := range []string{"GST_CERTIFICATE", "PAN_CARD", "CANCELLED_CHEQUE"} {
		up, err := svc.RequestDocumentUpload(ctx, owner, d.ID, DocumentUploadRequest{Type: dt, FileName: "scan.pdf", ContentType: "application/pdf"})
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, up.Upload.Method)
		assert.True(t, strings.HasPrefix(up.Upload.URL, "http://minio.local/kyc/kyc/"))
		assert.Equal(t, "PENDING", up.Document.Status)

		doc, err := svc.ConfirmDocument(ctx, owner, d.ID, up.Document.ID)
		require.NoError(t, err)
		assert.Equal(t, "UPLOADED", doc.Status)
	}

	download, err := svc.DocumentDownloadURL(ctx, owner, d.ID, d.Documents[0].ID)
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, download.Method)

	resp, err := svc.Submit(ctx, owner, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "SUBMITTED", resp.KYCStatus)
	assert.Empty(t, resp.MissingDocuments)
	assert.Equal(t, []string{distributor.EventTypeKYCStatusChanged}, events.types())
}

func TestDistributorService_ConfirmDocument_NotUploaded(t *testing.T) {
	ctx := context.Background()
	repo := new(MockDistributorRepository)
	d := newDistributor(t)
	doc, err := d.RecordDocument(distributor.DocumentTypePANCard, "pan.png", "image/png")
	require.NoError(t, err)
	repo.On("FindByID", ctx, d.ID).Return(d, nil)

	// a fresh backend has never seen the upload
	_, err = NewDistributorService(repo, storage.NewMemoryStorage(""), nil, zap.NewNop()).
		ConfirmDocument(ctx, admin, d.ID, doc.ID)
	assert.Equal(t, "DOCUMENT_NOT_UPLOADED", shared.ErrorCode(err))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestDistributorService_OtherDistributorCannotSee(t *testing.T) {
	ctx := context.Background()
	repo := new(MockDistributorRepository)
	d := newDistributor(t)
	repo.On("FindByID", ctx, d.ID).Return(d, nil)

	stranger := Caller{UserID: uuid.New(), Role: string(identity.RoleDistributor), Email: "sales@otherfarm.in"}
	_, err := NewDistributorService(repo, storage.NewMemoryStorage(""), nil, zap.NewNop()).GetByID(ctx, stranger, d.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDistributorService_ReviewFlow(t *testing.T) {
	ctx := context.Background()
	reviewer := uuid.New()

	newSubmitted := func(t *testing.T) *distributor.Distributor {
		d := newDistributor(t)
		for _, dt := range distributor.RequiredDocuments {
			doc, err := d.RecordDocument(dt, "scan.pdf", "application/pdf")
			require.NoError(t, err)
			doc.MarkUploaded()
		}
		require.NoError(t, d.Submit())
		d.PullDomainEvents()
		return d
	}

	t.Run("approve then suspend and reinstate", func(t *testing.T) {
		repo := new(MockDistributorRepository)
		d := newSubmitted(t)
		repo.On("FindByID", ctx, d.ID).Return(d, nil)
		repo.On("Save", ctx, d).Return(nil)
		svc := NewDistributorService(repo, storage.NewMemoryStorage(""), nil, zap.NewNop())

		_, err := svc.Approve(ctx, reviewer, d.ID)
		assert.Equal(t, "INVALID_STATE", shared.ErrorCode(err), "review must start first")

		_, err = svc.StartReview(ctx, reviewer, d.ID)
		require.NoError(t, err)
		resp, err := svc.Approve(ctx, reviewer, d.ID)
		require.NoError(t, err)
		assert.Equal(t, "APPROVED", resp.KYCStatus)
		require.NotNil(t, resp.ReviewedBy)
		assert.Equal(t, reviewer, *resp.ReviewedBy)

		resp, err = svc.Suspend(ctx, d.ID)
		require.NoError(t, err)
		assert.False(t, resp.IsActive)
		resp, err = svc.Reinstate(ctx, d.ID)
		require.NoError(t, err)
		assert.True(t, resp.IsActive)
	})

	t.Run("reject allows profile edits", func(t *testing.T) {
		repo := new(MockDistributorRepository)
		d := newSubmitted(t)
		repo.On("FindByID", ctx, d.ID).Return(d, nil)
		repo.On("Save", ctx, d).Return(nil)
		svc := NewDistributorService(repo, storage.NewMemoryStorage(""), nil, zap.NewNop())

		_, err := svc.UpdateProfile(ctx, admin, d.ID, validProfile())
		assert.Equal(t, "INVALID_STATE", shared.ErrorCode(err))

		resp, err := svc.Reject(ctx, reviewer, d.ID, RejectKYCRequest{Reason: "Cheque is unreadable"})
		require.NoError(t, err)
		assert.Equal(t, "REJECTED", resp.KYCStatus)
		assert.Equal(t, "Cheque is unreadable", resp.RejectionReason)

		req := validProfile()
		req.Phone = "9123456789"
		resp, err = svc.UpdateProfile(ctx, admin, d.ID, req)
		require.NoError(t, err)
		assert.Equal(t, "9123456789", resp.Phone)
	})
}
