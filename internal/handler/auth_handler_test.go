package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saberes-app/gradebook-api/internal/models"
	appErrors "github.com/saberes-app/gradebook-api/pkg/errors"
	"github.com/saberes-app/gradebook-api/pkg/response"
)

type authServiceMock struct {
	loginResp *models.LoginResponse
	loginErr  error
	meResp    *models.UserInfo
	meErr     error

	lastUserID string
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	return m.loginResp, m.loginErr
}

func (m *authServiceMock) Me(ctx context.Context, userID string) (*models.UserInfo, error) {
	m.lastUserID = userID
	return m.meResp, m.meErr
}

func TestAuthHandlerLogin(t *testing.T) {
	mockSvc := &authServiceMock{loginResp: &models.LoginResponse{AccessToken: "signed-token"}}
	h := NewAuthHandler(mockSvc)

	c, w := teacherContext(t, http.MethodPost, "/auth/login", models.LoginRequest{
		Email:    "teacher@school.test",
		Password: "secret123",
	})
	h.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "signed-token", env.Data.AccessToken)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	mockSvc := &authServiceMock{loginErr: appErrors.ErrInvalidCredentials}
	h := NewAuthHandler(mockSvc)

	c, w := teacherContext(t, http.MethodPost, "/auth/login", models.LoginRequest{
		Email:    "teacher@school.test",
		Password: "wrong",
	})
	h.Login(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, env.Error.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	mockSvc := &authServiceMock{meResp: &models.UserInfo{ID: "tch-1", Role: models.RoleTeacher}}
	h := NewAuthHandler(mockSvc)

	c, w := teacherContext(t, http.MethodGet, "/auth/me", nil)
	h.Me(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tch-1", mockSvc.lastUserID)
}
