package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"learnflix/pkg/middleware"
	"learnflix/services/auth/internal/entity"
	"learnflix/services/auth/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) Register(ctx context.Context, reg entity.Registration) (*entity.User, string, error) {
	args := m.Called(ctx, reg)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*entity.User), args.String(1), args.Error(2)
}

func (m *MockAuthUseCase) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*entity.User), args.String(1), args.Error(2)
}

func (m *MockAuthUseCase) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockAuthUseCase) ValidateInviteCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

var _ usecase.AuthUseCase = (*MockAuthUseCase)(nil)

func setupTestRouter(handler *AuthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/register", handler.Register)
	r.POST("/login", handler.Login)
	r.POST("/invite-codes/validate", handler.ValidateInviteCode)
	r.GET("/me", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "user-123")
		handler.Me(c)
	})
	return r
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.1:1234"
	router.ServeHTTP(w, req)
	return w
}

func TestRegister_Teacher(t *testing.T) {
	mockUseCase := new(MockAuthUseCase)
	router := setupTestRouter(NewAuthHandler(mockUseCase))

	reg := entity.Registration{
		Email:      "teacher@example.com",
		Username:   "teacher",
		Password:   "secret123",
		Role:       entity.RoleTeacher,
		InviteCode: "WELCOME-2026",
		IP:         "192.0.2.1",
	}
	mockUseCase.On("Register", mock.Anything, reg).
		Return(&entity.User{ID: "user-1", Email: reg.Email, Role: entity.RoleTeacher}, "token-1", nil)

	w := postJSON(router, "/register", map[string]string{
		"email":       reg.Email,
		"username":    reg.Username,
		"password":    reg.Password,
		"role":        "teacher",
		"invite_code": reg.InviteCode,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "token-1", response["token"])
	mockUseCase.AssertExpectations(t)
}

func TestRegister_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"duplicate email", entity.ErrEmailTaken, http.StatusConflict},
		{"duplicate username", entity.ErrUsernameTaken, http.StatusConflict},
		{"bad invite", entity.ErrInvalidInviteCode, http.StatusForbidden},
		{"admin", entity.ErrAdminRegistration, http.StatusBadRequest},
		{"network limit", entity.ErrIPLimitReached, http.StatusForbidden},
		{"unexpected", errors.New("failed to create user"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockUseCase := new(MockAuthUseCase)
			router := setupTestRouter(NewAuthHandler(mockUseCase))
			mockUseCase.On("Register", mock.Anything, mock.Anything).Return(nil, "", tc.err)

			w := postJSON(router, "/register", map[string]string{
				"email":    "a@example.com",
				"username": "alice",
				"password": "secret123",
			})

			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRegister_RejectsUnknownRole(t *testing.T) {
	mockUseCase := new(MockAuthUseCase)
	router := setupTestRouter(NewAuthHandler(mockUseCase))

	w := postJSON(router, "/register", map[string]string{
		"email":    "a@example.com",
		"username": "alice",
		"password": "secret123",
		"role":     "superuser",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestLogin_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{entity.ErrAccountBanned, http.StatusForbidden},
		{entity.ErrAccountDeactivated, http.StatusForbidden},
		{entity.ErrInvalidCredentials, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		mockUseCase := new(MockAuthUseCase)
		router := setupTestRouter(NewAuthHandler(mockUseCase))
		mockUseCase.On("Login", mock.Anything, "a@example.com", "secret123").Return(nil, "", tc.err)

		w := postJSON(router, "/login", map[string]string{"email": "a@example.com", "password": "secret123"})

		assert.Equal(t, tc.want, w.Code, tc.err.Error())
		var response map[string]string
		json.Unmarshal(w.Body.Bytes(), &response)
		assert.Equal(t, tc.err.Error(), response["error"])
	}
}

func TestMe(t *testing.T) {
	mockUseCase := new(MockAuthUseCase)
	router := setupTestRouter(NewAuthHandler(mockUseCase))
	mockUseCase.On("GetUser", mock.Anything, "user-123").Return(&entity.User{ID: "user-123", Username: "alice"}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/me", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestValidateInviteCode(t *testing.T) {
	mockUseCase := new(MockAuthUseCase)
	router := setupTestRouter(NewAuthHandler(mockUseCase))
	mockUseCase.On("ValidateInviteCode", mock.Anything, "WELCOME-2026").Return(true, nil)

	w := postJSON(router, "/invite-codes/validate", map[string]string{"code": "WELCOME-2026"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true}`, w.Body.String())
}
