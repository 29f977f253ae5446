package handlers

import (
	"context"
	"net/http"

	"account_service/internal/models"
	"account_service/internal/service"
	"account_service/internal/validation"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	loginToken string
	loginErr   error
	parseID    string
	parseErr   error

	lastLoginUsername string
	lastLoginPassword string
	lastParseToken    string
}

func (m *mockAuth) Login(_ context.Context, username, password string) (string, error) {
	m.lastLoginUsername = username
	m.lastLoginPassword = password
	return m.loginToken, m.loginErr
}

func (m *mockAuth) ParseToken(token string) (string, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockUsers struct {
	user    *models.User
	list    []models.User
	err     error
	lastID  string
	lastReg validation.Registration
	lastPat models.UserPatch
	lastPwd validation.PasswordChange
	calls   int
}

func (m *mockUsers) CreateUser(_ context.Context, in validation.Registration) (*models.User, error) {
	m.calls++
	m.lastReg = in
	return m.user, m.err
}

func (m *mockUsers) ListUsers(context.Context) ([]models.User, error) {
	m.calls++
	return m.list, m.err
}

func (m *mockUsers) GetUser(_ context.Context, id string) (*models.User, error) {
	m.calls++
	m.lastID = id
	return m.user, m.err
}

func (m *mockUsers) UpdateUser(_ context.Context, id string, patch models.UserPatch) (*models.User, error) {
	m.calls++
	m.lastID = id
	m.lastPat = patch
	return m.user, m.err
}

func (m *mockUsers) DeleteUser(_ context.Context, id string) error {
	m.calls++
	m.lastID = id
	return m.err
}

func (m *mockUsers) ChangePassword(_ context.Context, userID string, in validation.PasswordChange) error {
	m.calls++
	m.lastID = userID
	m.lastPwd = in
	return m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, Options{})
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
