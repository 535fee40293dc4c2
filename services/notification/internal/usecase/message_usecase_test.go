package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"learnflix/pkg/logger"
	"learnflix/pkg/queue"
	"learnflix/services/notification/internal/entity"
	"learnflix/services/notification/internal/repo/persistent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	teacherUID = "1f9e0d64-6c7b-4a83-8d1e-5b2f0c4e9a02"
	studentUID = "7b0c1f1e-2f43-4d0a-9a57-0c3c1d6f7a01"
	messageUID = "3e1d2c4b-5a69-4788-9a0b-c1d2e3f4a5b6"
)

var (
	teacher = entity.Reader{ID: teacherUID, Role: "teacher"}
	student = entity.Reader{ID: studentUID, Role: "student"}
)

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, messages []*entity.Message) error {
	args := m.Called(ctx, messages)
	for i, msg := range messages {
		msg.ID = "msg-" + string(rune('a'+i))
	}
	return args.Error(0)
}

func (m *MockMessageRepository) UserRole(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockMessageRepository) ActiveUserIDsByRole(ctx context.Context, role string) ([]string, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockMessageRepository) Inbox(ctx context.Context, reader entity.Reader, limit, offset int) ([]entity.Message, int64, error) {
	args := m.Called(ctx, reader, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.Message), args.Get(1).(int64), args.Error(2)
}

func (m *MockMessageRepository) UnreadCount(ctx context.Context, reader entity.Reader) (int64, error) {
	args := m.Called(ctx, reader)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepository) MarkRead(ctx context.Context, reader entity.Reader, messageID string, at time.Time) (bool, error) {
	args := m.Called(ctx, reader, messageID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockMessageRepository) Sent(ctx context.Context, senderID string, limit, offset int) ([]entity.Message, int64, error) {
	args := m.Called(ctx, senderID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.Message), args.Get(1).(int64), args.Error(2)
}

func (m *MockMessageRepository) All(ctx context.Context, limit, offset int) ([]entity.Message, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.Message), args.Get(1).(int64), args.Error(2)
}

func (m *MockMessageRepository) Delete(ctx context.Context, messageID string) (bool, error) {
	args := m.Called(ctx, messageID)
	return args.Bool(0), args.Error(1)
}

var _ persistent.MessageRepository = (*MockMessageRepository)(nil)

type recordingPublisher struct {
	mu    sync.Mutex
	tasks []map[string]interface{}
	err   error
}

func (p *recordingPublisher) PublishNotificationTask(task map[string]interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, task)
	return p.err
}

var messageNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newMessageUseCase(repo *MockMessageRepository, publisher TaskPublisher) *messageUseCase {
	uc := NewMessageUseCase(repo, publisher, logger.New()).(*messageUseCase)
	uc.now = func() time.Time { return messageNow }
	return uc
}

func TestSend_TeacherBroadcast(t *testing.T) {
	repo := new(MockMessageRepository)
	publisher := &recordingPublisher{}
	uc := newMessageUseCase(repo, publisher)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(messages []*entity.Message) bool {
		return len(messages) == 1 &&
			messages[0].IsBroadcast &&
			messages[0].RecipientID == nil &&
			messages[0].Title == "Exam moved" &&
			messages[0].Content == "Now on Monday."
	})).Return(nil)

	messages, err := uc.Send(context.Background(), teacher, entity.Draft{Title: "  Exam moved ", Content: "Now on Monday.\n"})
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Empty(t, publisher.tasks)
	repo.AssertExpectations(t)
}

func TestSend_TeacherToStudent(t *testing.T) {
	repo := new(MockMessageRepository)
	publisher := &recordingPublisher{}
	uc := newMessageUseCase(repo, publisher)

	repo.On("UserRole", mock.Anything, studentUID).Return("student", nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(messages []*entity.Message) bool {
		return len(messages) == 1 && !messages[0].IsBroadcast && *messages[0].RecipientID == studentUID
	})).Return(nil)

	messages, err := uc.Send(context.Background(), teacher, entity.Draft{Title: "Feedback", Content: "Nice essay", RecipientID: studentUID})
	require.NoError(t, err)
	require.Len(t, messages, 1)

	require.Len(t, publisher.tasks, 1)
	task := publisher.tasks[0]
	assert.Equal(t, queue.TaskMessageReceived, task["type"])
	assert.Equal(t, studentUID, task["user_id"])
	assert.Equal(t, teacherUID, task["sender_id"])
	assert.Equal(t, messages[0].ID, task["message_id"])
}

func TestSend_TeacherRecipientChecks(t *testing.T) {
	otherTeacher := "0a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d"
	missing := "00000000-0000-4000-8000-000000000000"

	repo := new(MockMessageRepository)
	uc := newMessageUseCase(repo, nil)
	repo.On("UserRole", mock.Anything, otherTeacher).Return("teacher", nil)
	repo.On("UserRole", mock.Anything, missing).Return("", nil)

	tests := []struct {
		name      string
		recipient string
		want      error
	}{
		{"another teacher", otherTeacher, entity.ErrInvalidRecipient},
		{"unknown user", missing, entity.ErrRecipientNotFound},
		{"malformed id", "bob", entity.ErrRecipientNotFound},
		{"self", teacherUID, entity.ErrRecipientNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Send(context.Background(), teacher, entity.Draft{Title: "Hi", Content: "Hello", RecipientID: tc.recipient})
			assert.ErrorIs(t, err, tc.want)
		})
	}
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSend_StudentReachesEveryTeacher(t *testing.T) {
	teachers := []string{"t-1", "t-2", "t-3"}
	repo := new(MockMessageRepository)
	publisher := &recordingPublisher{}
	uc := newMessageUseCase(repo, publisher)

	repo.On("ActiveUserIDsByRole", mock.Anything, "teacher").Return(teachers, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(messages []*entity.Message) bool {
		if len(messages) != len(teachers) {
			return false
		}
		for i, m := range messages {
			if m.IsBroadcast || *m.RecipientID != teachers[i] || m.SenderID != studentUID {
				return false
			}
		}
		return true
	})).Return(nil)

	messages, err := uc.Send(context.Background(), student, entity.Draft{Title: "Question", Content: "What is on the test?"})
	require.NoError(t, err)
	assert.Len(t, messages, 3)
	assert.Len(t, publisher.tasks, 3)
}

func TestSend_StudentRules(t *testing.T) {
	repo := new(MockMessageRepository)
	uc := newMessageUseCase(repo, nil)

	_, err := uc.Send(context.Background(), student, entity.Draft{Title: "Hi", Content: "Hello", RecipientID: teacherUID})
	assert.ErrorIs(t, err, entity.ErrInvalidRecipient)

	repo.On("ActiveUserIDsByRole", mock.Anything, "teacher").Return([]string{}, nil)
	_, err = uc.Send(context.Background(), student, entity.Draft{Title: "Hi", Content: "Hello"})
	assert.ErrorIs(t, err, entity.ErrNoRecipients)
}

func TestSend_Validation(t *testing.T) {
	uc := newMessageUseCase(new(MockMessageRepository), nil)
	ctx := context.Background()

	_, err := uc.Send(ctx, teacher, entity.Draft{Title: "   ", Content: "body"})
	assert.ErrorIs(t, err, entity.ErrEmptyMessage)

	_, err = uc.Send(ctx, teacher, entity.Draft{Title: "title", Content: strings.Repeat("x", entity.MaxMessageContent+1)})
	assert.ErrorIs(t, err, entity.ErrMessageTooLong)

	_, err = uc.Send(ctx, entity.Reader{ID: "admin-1", Role: "admin"}, entity.Draft{Title: "title", Content: "body"})
	assert.ErrorIs(t, err, entity.ErrSendForbidden)
}

func TestSend_PublishFailureDoesNotFailSend(t *testing.T) {
	repo := new(MockMessageRepository)
	uc := newMessageUseCase(repo, &recordingPublisher{err: errors.New("channel closed")})

	repo.On("UserRole", mock.Anything, studentUID).Return("student", nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := uc.Send(context.Background(), teacher, entity.Draft{Title: "Hi", Content: "Hello", RecipientID: studentUID})
	assert.NoError(t, err)
}

func TestMarkRead(t *testing.T) {
	repo := new(MockMessageRepository)
	uc := newMessageUseCase(repo, nil)
	ctx := context.Background()

	repo.On("MarkRead", ctx, student, messageUID, messageNow).Return(true, nil).Once()
	require.NoError(t, uc.MarkRead(ctx, student, messageUID))

	repo.On("MarkRead", ctx, teacher, messageUID, messageNow).Return(false, nil).Once()
	assert.ErrorIs(t, uc.MarkRead(ctx, teacher, messageUID), entity.ErrMessageNotFound)

	assert.ErrorIs(t, uc.MarkRead(ctx, student, "not-a-uuid"), entity.ErrMessageNotFound)
	repo.AssertExpectations(t)
}

func TestDelete(t *testing.T) {
	repo := new(MockMessageRepository)
	uc := newMessageUseCase(repo, nil)
	ctx := context.Background()

	repo.On("Delete", ctx, messageUID).Return(true, nil).Once()
	require.NoError(t, uc.Delete(ctx, messageUID))

	repo.On("Delete", ctx, messageUID).Return(false, nil).Once()
	assert.ErrorIs(t, uc.Delete(ctx, messageUID), entity.ErrMessageNotFound)
}
