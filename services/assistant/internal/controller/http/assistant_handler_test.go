package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"learnflix/pkg/logger"
	"learnflix/pkg/middleware"
	"learnflix/services/assistant/internal/entity"
	"learnflix/services/assistant/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAssistantUseCase struct {
	mock.Mock
}

func (m *MockAssistantUseCase) Ask(ctx context.Context, userID string, messages []entity.Message) (*entity.Answer, error) {
	args := m.Called(ctx, userID, messages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Answer), args.Error(1)
}

func (m *MockAssistantUseCase) GetUsage(ctx context.Context, userID string) (*entity.Usage, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Usage), args.Error(1)
}

var _ usecase.AssistantUseCase = (*MockAssistantUseCase)(nil)

func setupTestRouter(handler *AssistantHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "user-1")
		c.Next()
	})
	router.POST("/assistant/questions", handler.Ask)
	router.GET("/assistant/usage", handler.GetUsage)
	return router
}

const askBody = `{"messages":[{"role":"user","content":"What is a derivative?"}]}`

func postAsk(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/assistant/questions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestAsk_Success(t *testing.T) {
	mockUseCase := new(MockAssistantUseCase)
	router := setupTestRouter(NewAssistantHandler(mockUseCase, logger.New()))

	limit := 10
	mockUseCase.On("Ask", mock.Anything, "user-1", []entity.Message{{Role: entity.RoleUser, Content: "What is a derivative?"}}).
		Return(&entity.Answer{Reply: "A rate of change.", QuestionCount: 3, Limit: &limit}, nil)

	w := postAsk(router, askBody)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reply":"A rate of change.","question_count":3,"limit":10}`, w.Body.String())
}

func TestAsk_DailyLimitPayload(t *testing.T) {
	mockUseCase := new(MockAssistantUseCase)
	router := setupTestRouter(NewAssistantHandler(mockUseCase, logger.New()))

	mockUseCase.On("Ask", mock.Anything, "user-1", mock.Anything).Return(nil, &entity.QuotaError{Count: 10, Limit: 10})

	w := postAsk(router, askBody)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	var body LimitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "AI_DAILY_LIMIT", body.Reason)
	assert.Equal(t, 10, body.CurrentCount)
	assert.Equal(t, 10, body.Limit)
}

func TestAsk_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid", entity.ErrInvalidMessages, http.StatusBadRequest},
		{"gateway rate limit", entity.ErrAIRateLimited, http.StatusTooManyRequests},
		{"credits", entity.ErrAICredits, http.StatusPaymentRequired},
		{"gateway", fmt.Errorf("%w: status 500", entity.ErrAIGateway), http.StatusBadGateway},
		{"not configured", entity.ErrAINotConfigured, http.StatusBadGateway},
		{"store", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockUseCase := new(MockAssistantUseCase)
			router := setupTestRouter(NewAssistantHandler(mockUseCase, logger.New()))
			mockUseCase.On("Ask", mock.Anything, "user-1", mock.Anything).Return(nil, tc.err)

			assert.Equal(t, tc.want, postAsk(router, askBody).Code)
		})
	}
}

func TestAsk_MessagesMustBeArray(t *testing.T) {
	mockUseCase := new(MockAssistantUseCase)
	router := setupTestRouter(NewAssistantHandler(mockUseCase, logger.New()))

	w := postAsk(router, `{"messages":"hello"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetUsage(t *testing.T) {
	mockUseCase := new(MockAssistantUseCase)
	router := setupTestRouter(NewAssistantHandler(mockUseCase, logger.New()))
	mockUseCase.On("GetUsage", mock.Anything, "user-1").Return(&entity.Usage{QuestionCount: 7, Premium: true}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/assistant/usage", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"question_count":7,"premium":true}`, w.Body.String())
}
