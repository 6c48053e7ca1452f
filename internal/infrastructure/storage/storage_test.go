package storage

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/grocer/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func validS3Config() config.StorageConfig {
	return config.StorageConfig{
		Enabled:      true,
		Endpoint:     "localhost:9000",
		Bucket:       "grocer-kyc",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		UsePathStyle: true,
	}
}

func TestNewS3Storage_Validation(t *testing.T) {
	t.Run("missing bucket", func(t *testing.T) {
		cfg := validS3Config()
		cfg.Bucket = ""
		_, err := NewS3Storage(cfg)
		assert.ErrorContains(t, err, "bucket is required")
	})

	t.Run("missing credentials", func(t *testing.T) {
		cfg := validS3Config()
		cfg.SecretKey = ""
		_, err := NewS3Storage(cfg)
		assert.ErrorContains(t, err, "credentials are required")
	})

	t.Run("default presign expiration", func(t *testing.T) {
		s, err := NewS3Storage(validS3Config(), WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, defaultPresignExpiration, s.presignExpiration)
		assert.Equal(t, "grocer-kyc", s.Bucket())
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in     string
		ssl    bool
		want   string
		hasErr bool
	}{
		{in: "", want: ""},
		{in: "localhost:9000", want: "http://localhost:9000"},
		{in: "minio.internal:9000", ssl: true, want: "https://minio.internal:9000"},
		{in: "https://s3.example.com/", want: "https://s3.example.com"},
		{in: "http://", hasErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := normalizeEndpoint(tt.in, tt.ssl)
			if tt.hasErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestS3Storage_Presign(t *testing.T) {
	cfg := validS3Config()
	cfg.PresignExpiration = 5 * time.Minute
	s, err := NewS3Storage(cfg)
	require.NoError(t, err)
	ctx := context.Background()
	key := "kyc/d1/gst_certificate/doc.pdf"

	up, err := s.PresignUpload(ctx, key, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, up.Method)
	assert.True(t, strings.HasPrefix(up.URL, "http://localhost:9000/grocer-kyc/"+key))
	assert.Contains(t, up.URL, "X-Amz-Signature")
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), up.ExpiresAt, 5*time.Second)

	down, err := s.PresignDownload(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, down.Method)
	assert.Contains(t, down.URL, key)

	_, err = s.PresignUpload(ctx, "", "application/pdf")
	assert.ErrorIs(t, err, ErrKeyRequired)
	_, err = s.PresignDownload(ctx, "")
	assert.ErrorIs(t, err, ErrKeyRequired)
	_, err = s.ObjectExists(ctx, "")
	assert.ErrorIs(t, err, ErrKeyRequired)
	assert.ErrorIs(t, s.DeleteObject(ctx, ""), ErrKeyRequired)
	assert.ErrorIs(t, s.Upload(ctx, "", nil, "text/plain"), ErrKeyRequired)
}

func TestMemoryStorage(t *testing.T) {
	m := NewMemoryStorage("")
	ctx := context.Background()
	key := "kyc/d1/pan_card/x.png"

	exists, err := m.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	up, err := m.PresignUpload(ctx, key, "image/png")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, up.Method)
	assert.Contains(t, up.URL, "http://localhost:9000/kyc/"+key)

	exists, err = m.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	down, err := m.PresignDownload(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, down.Method)

	require.NoError(t, m.DeleteObject(ctx, key))
	exists, err = m.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = m.PresignUpload(ctx, "", "image/png")
	assert.ErrorIs(t, err, ErrKeyRequired)
}
