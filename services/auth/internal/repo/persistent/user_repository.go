package persistent

import (
	"context"
	"errors"
	"strings"

	"learnflix/pkg/database"
	"learnflix/pkg/models"
	"learnflix/services/auth/internal/entity"
	"learnflix/services/auth/internal/model"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	IsBanned(ctx context.Context, userID string) (bool, error)
	IsActiveInviteCode(ctx context.Context, code string) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return createUser(r.db.WithContext(ctx), user)
}

// createUser maps a lost race on the unique email/username indexes to the matching entity error.
func createUser(db *gorm.DB, user *entity.User) error {
	userModel := ToUserModel(user)
	if err := db.Create(userModel).Error; err != nil {
		if database.IsUniqueViolation(err) {
			if strings.Contains(database.ConstraintName(err), "username") {
				return entity.ErrUsernameTaken
			}
			return entity.ErrEmailTaken
		}
		return err
	}
	*user = *ToUserEntity(userModel)
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *userRepository) findOne(ctx context.Context, query string, arg interface{}) (*entity.User, error) {
	var userModel model.UserModel
	err := r.db.WithContext(ctx).Where(query, arg).First(&userModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return ToUserEntity(&userModel), nil
}

func (r *userRepository) IsBanned(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BannedUserModel{}).Where("user_id = ?", userID).Count(&count).Error
	return count > 0, err
}

// IsActiveInviteCode compares digests only; plaintext codes are never stored.
func (r *userRepository) IsActiveInviteCode(ctx context.Context, code string) (bool, error) {
	if strings.TrimSpace(code) == "" {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.InviteCodeModel{}).
		Where("code_hash = ? AND is_active = ?", models.HashInviteCode(code), true).
		Count(&count).Error
	return count > 0, err
}
