package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/grocer/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addressRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Pincode string `json:"pincode" binding:"required,len=6,numeric"`
	Count   int    `json:"count" binding:"min=1"`
}

func bindRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func TestHandleValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	bindRouter().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test",
		strings.NewReader(`{"email":"nope","pincode":"5600","count":0}`)))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)

	messages := map[string]string{}
	for _, d := range resp.Error.Details {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, "Invalid email format", messages["email"])
	assert.Equal(t, "Must be exactly 6 characters", messages["pincode"])
	assert.Equal(t, "Must be at least 1", messages["count"])
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	w := httptest.NewRecorder()
	bindRouter().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"email":`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, errorCode(t, w))
}
