package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adolfohrq/designali-hub-google/internal/middleware"
	"github.com/adolfohrq/designali-hub-google/internal/services"
	"github.com/adolfohrq/designali-hub-google/pkg/dto"
	"github.com/adolfohrq/designali-hub-google/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSuggestHandler_SuggestTools_Success(t *testing.T) {
	mockSuggestService := new(testutil.MockSuggestService)
	handler := NewSuggestHandler(mockSuggestService)
	jwtSvc := newTestJWTService()

	userID := uuid.New()
	suggested := []services.SuggestedTool{
		{Name: "Figma", URL: "https://figma.com", Category: "Design", Description: "Collaborative design"},
	}

	mockSuggestService.On("SuggestTools", mock.Anything, "icon design", 3).Return(suggested, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/suggest/tools", handler.SuggestTools)

	body := dto.SuggestToolsRequest{Topic: "icon design", Count: 3}
	jsonBody, _ := json.Marshal(body)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodPost, "/suggest/tools", bytes.NewReader(jsonBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []dto.SuggestedToolResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Len(t, response, 1)
	assert.Equal(t, "Figma", response[0].Name)

	mockSuggestService.AssertExpectations(t)
}

func TestSuggestHandler_SuggestTools_MissingTopic(t *testing.T) {
	mockSuggestService := new(testutil.MockSuggestService)
	handler := NewSuggestHandler(mockSuggestService)
	jwtSvc := newTestJWTService()

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/suggest/tools", handler.SuggestTools)

	token := generateTestToken(t, jwtSvc, uuid.New(), "test@example.com")
	req := httptest.NewRequest(http.MethodPost, "/suggest/tools", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "topic is required")
}

func TestSuggestHandler_SuggestTools_NotConfigured(t *testing.T) {
	mockSuggestService := new(testutil.MockSuggestService)
	handler := NewSuggestHandler(mockSuggestService)
	jwtSvc := newTestJWTService()

	userID := uuid.New()

	mockSuggestService.On("SuggestTools", mock.Anything, "icon design", 0).
		Return(nil, services.ErrSuggestionsDisabled)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/suggest/tools", handler.SuggestTools)

	body := dto.SuggestToolsRequest{Topic: "icon design"}
	jsonBody, _ := json.Marshal(body)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodPost, "/suggest/tools", bytes.NewReader(jsonBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "suggestions are not configured")

	mockSuggestService.AssertExpectations(t)
}
