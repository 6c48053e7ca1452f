package distributor

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() Profile {
	return Profile{
		BusinessName:      "Fresh Farms Pvt Ltd",
		ContactName:       "Anita Rao",
		Email:             "Ops@FreshFarms.in",
		Phone:             "9876543210",
		GSTIN:             "29abcde1234f1z5",
		PAN:               "ABCDE1234F",
		City:              "Bengaluru",
		Pincode:           "560001",
		BankAccountHolder: "Fresh Farms Pvt Ltd",
		BankAccountNumber: "50100012345678",
		BankIFSC:          "hdfc0001234",
	}
}

func uploadAll(t *testing.T, d *Distributor, types ...DocumentType) {
	t.Helper()
	for _, dt := range types {
		doc, err := d.RecordDocument(dt, "scan.pdf", "application/pdf")
		require.NoError(t, err)
		doc.MarkUploaded()
	}
}

func TestNewDistributor(t *testing.T) {
	d, err := NewDistributor(validProfile())
	require.NoError(t, err)
	assert.Equal(t, KYCStatusDraft, d.KYCStatus)
	assert.Equal(t, "ops@freshfarms.in", d.Email)
	assert.Equal(t, "29ABCDE1234F1Z5", d.GSTIN)
	assert.Equal(t, "HDFC0001234", d.BankIFSC)
	assert.True(t, d.IsActive)
	assert.False(t, d.CanSupply())
}

func TestNewDistributor_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Profile)
		code   string
	}{
		{"empty business name", func(p *Profile) { p.BusinessName = " " }, "INVALID_NAME"},
		{"bad email", func(p *Profile) { p.Email = "nope" }, "INVALID_EMAIL"},
		{"bad gstin", func(p *Profile) { p.GSTIN = "29ABC" }, "INVALID_GSTIN"},
		{"gstin pan mismatch", func(p *Profile) { p.PAN = "ZZZZZ9999Z" }, "INVALID_GSTIN"},
		{"bad pan", func(p *Profile) { p.GSTIN = ""; p.PAN = "1234" }, "INVALID_PAN"},
		{"bad ifsc", func(p *Profile) { p.BankIFSC = "HDFC1234" }, "INVALID_IFSC"},
		{"bad pincode", func(p *Profile) { p.Pincode = "012345" }, "INVALID_PINCODE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(&p)
			_, err := NewDistributor(p)
			require.Error(t, err)
			assert.Equal(t, tt.code, shared.ErrorCode(err))
		})
	}
}

func TestDistributor_RecordDocumentReplacesSameType(t *testing.T) {
	d, err := NewDistributor(validProfile())
	require.NoError(t, err)

	first, err := d.RecordDocument(DocumentTypePANCard, "pan.png", "image/png")
	require.NoError(t, err)
	firstID := first.ID
	assert.True(t, strings.HasPrefix(first.ObjectKey, "kyc/"+d.ID.String()+"/pan_card/"))
	assert.True(t, strings.HasSuffix(first.ObjectKey, ".png"))

	_, err = d.RecordDocument(DocumentTypePANCard, "pan2.pdf", "application/pdf")
	require.NoError(t, err)
	require.Len(t, d.Documents, 1)
	assert.NotEqual(t, firstID, d.Documents[0].ID)

	_, err = d.RecordDocument(DocumentType("SELFIE"), "me.png", "image/png")
	assert.Error(t, err)
	_, err = d.RecordDocument(DocumentTypeTradeLicense, "x.exe", "application/octet-stream")
	assert.Error(t, err)
}

func TestDistributor_SubmitRequiresDocuments(t *testing.T) {
	d, err := NewDistributor(validProfile())
	require.NoError(t, err)

	uploadAll(t, d, DocumentTypeGSTCertificate)
	_, err = d.RecordDocument(DocumentTypePANCard, "pan.pdf", "application/pdf")
	require.NoError(t, err)

	err = d.Submit()
	require.Error(t, err)
	assert.Equal(t, "KYC_DOCUMENTS_MISSING", shared.ErrorCode(err))
	assert.ElementsMatch(t, []DocumentType{DocumentTypePANCard, DocumentTypeCancelledCheque}, d.MissingDocuments())

	uploadAll(t, d, DocumentTypePANCard, DocumentTypeCancelledCheque)
	require.NoError(t, d.Submit())
	assert.Equal(t, KYCStatusSubmitted, d.KYCStatus)
	assert.NotNil(t, d.SubmittedAt)

	assert.Error(t, d.UpdateProfile(validProfile()))
}

func TestDistributor_KYCFlow(t *testing.T) {
	d, err := NewDistributor(validProfile())
	require.NoError(t, err)
	uploadAll(t, d, RequiredDocuments...)
	require.NoError(t, d.Submit())

	reviewer := uuid.New()
	assert.Error(t, d.Approve(reviewer))
	require.NoError(t, d.StartReview(reviewer))
	assert.Error(t, d.Reject(reviewer, ""))
	require.NoError(t, d.Reject(reviewer, "blurry PAN scan"))
	assert.Equal(t, KYCStatusRejected, d.KYCStatus)
	assert.Equal(t, &reviewer, d.ReviewedBy)

	// resubmission after rejection
	require.NoError(t, d.UpdateProfile(validProfile()))
	require.NoError(t, d.Submit())
	assert.Empty(t, d.RejectionReason)
	require.NoError(t, d.StartReview(reviewer))
	require.NoError(t, d.Approve(reviewer))
	assert.Equal(t, KYCStatusApproved, d.KYCStatus)
	assert.True(t, d.CanSupply())
}

func TestDistributor_SuspendReinstate(t *testing.T) {
	d, err := NewDistributor(validProfile())
	require.NoError(t, err)
	assert.Error(t, d.Suspend())

	uploadAll(t, d, RequiredDocuments...)
	require.NoError(t, d.Submit())
	require.NoError(t, d.StartReview(uuid.New()))
	require.NoError(t, d.Approve(uuid.New()))

	require.NoError(t, d.Suspend())
	assert.False(t, d.CanSupply())
	assert.Error(t, d.Suspend())
	require.NoError(t, d.Reinstate())
	assert.True(t, d.CanSupply())
	assert.Error(t, d.Reinstate())
}
