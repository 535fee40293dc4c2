package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"learnflix/pkg/jwt"
	"learnflix/pkg/logger"
	"learnflix/services/auth/internal/entity"
	"learnflix/services/auth/internal/repo/persistent"

	"golang.org/x/crypto/bcrypt"
)

type AuthUseCase interface {
	Register(ctx context.Context, reg entity.Registration) (*entity.User, string, error)
	Login(ctx context.Context, email, password string) (*entity.User, string, error)
	GetUser(ctx context.Context, userID string) (*entity.User, error)
	ValidateInviteCode(ctx context.Context, code string) (bool, error)
}

type authUseCase struct {
	userRepo   persistent.UserRepository
	ipRepo     persistent.IPRegistrationRepository
	ipLimit    int
	jwtService *jwt.Service
	logger     *logger.Logger
}

// NewAuthUseCase disables the per-network account limit when ipLimit is not positive.
func NewAuthUseCase(
	userRepo persistent.UserRepository,
	ipRepo persistent.IPRegistrationRepository,
	ipLimit int,
	jwtService *jwt.Service,
	logger *logger.Logger,
) AuthUseCase {
	return &authUseCase{
		userRepo:   userRepo,
		ipRepo:     ipRepo,
		ipLimit:    ipLimit,
		jwtService: jwtService,
		logger:     logger,
	}
}

func (uc *authUseCase) Register(ctx context.Context, reg entity.Registration) (*entity.User, string, error) {
	role := reg.Role
	if role == "" {
		role = entity.RoleStudent
	}
	switch role {
	case entity.RoleStudent:
	case entity.RoleTeacher:
		valid, err := uc.userRepo.IsActiveInviteCode(ctx, reg.InviteCode)
		if err != nil {
			uc.logger.Error("Failed to check invite code: %v", err)
			return nil, "", fmt.Errorf("failed to process registration")
		}
		if !valid {
			uc.logger.Warn("[AUTH] teacher registration with invalid invite code for %s", reg.Email)
			return nil, "", entity.ErrInvalidInviteCode
		}
	case entity.RoleAdmin:
		return nil, "", entity.ErrAdminRegistration
	default:
		return nil, "", entity.ErrInvalidRole
	}

	limited := uc.ipLimit > 0 && reg.IP != ""
	if limited {
		allowed, err := uc.ipRepo.CanRegister(ctx, reg.IP, role, uc.ipLimit)
		if err != nil {
			uc.logger.Error("Failed to check registration limit for %s: %v", reg.IP, err)
			return nil, "", fmt.Errorf("failed to process registration")
		}
		if !allowed {
			uc.logger.Warn("[AUTH] %s registration refused for %s: network limit of %d reached", role, reg.IP, uc.ipLimit)
			return nil, "", entity.ErrIPLimitReached
		}
	}

	email := strings.ToLower(strings.TrimSpace(reg.Email))

	if _, err := uc.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, "", entity.ErrEmailTaken
	} else if !errors.Is(err, entity.ErrUserNotFound) {
		uc.logger.Error("Failed to look up email: %v", err)
		return nil, "", fmt.Errorf("failed to process registration")
	}

	if _, err := uc.userRepo.GetByUsername(ctx, reg.Username); err == nil {
		return nil, "", entity.ErrUsernameTaken
	} else if !errors.Is(err, entity.ErrUserNotFound) {
		uc.logger.Error("Failed to look up username: %v", err)
		return nil, "", fmt.Errorf("failed to process registration")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		uc.logger.Error("Failed to hash password: %v", err)
		return nil, "", fmt.Errorf("failed to process registration")
	}

	user := &entity.User{
		Email:    email,
		Username: reg.Username,
		Password: string(hashedPassword),
		Role:     role,
		IsActive: true,
	}

	if limited {
		err = uc.ipRepo.CreateUser(ctx, user, reg.IP, uc.ipLimit)
	} else {
		err = uc.userRepo.Create(ctx, user)
	}
	if err != nil {
		if errors.Is(err, entity.ErrEmailTaken) || errors.Is(err, entity.ErrUsernameTaken) || errors.Is(err, entity.ErrIPLimitReached) {
			return nil, "", err
		}
		uc.logger.Error("Failed to create user: %v", err)
		return nil, "", fmt.Errorf("failed to create user")
	}

	token, err := uc.jwtService.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		uc.logger.Error("Failed to generate token: %v", err)
		return nil, "", fmt.Errorf("failed to generate token")
	}

	uc.logger.Info("[AUTH] registered %s user %s", user.Role, user.ID)
	user.Password = ""
	return user, token, nil
}

func (uc *authUseCase) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if !errors.Is(err, entity.ErrUserNotFound) {
			uc.logger.Error("Failed to look up user: %v", err)
		}
		return nil, "", entity.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", entity.ErrInvalidCredentials
	}

	banned, err := uc.userRepo.IsBanned(ctx, user.ID)
	if err != nil {
		uc.logger.Error("Failed to check ban for %s: %v", user.ID, err)
		return nil, "", fmt.Errorf("failed to check account status")
	}
	if banned {
		return nil, "", entity.ErrAccountBanned
	}

	if !user.IsActive {
		return nil, "", entity.ErrAccountDeactivated
	}

	token, err := uc.jwtService.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		uc.logger.Error("Failed to generate token: %v", err)
		return nil, "", fmt.Errorf("failed to generate token")
	}

	user.Password = ""
	return user, token, nil
}

func (uc *authUseCase) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

func (uc *authUseCase) ValidateInviteCode(ctx context.Context, code string) (bool, error) {
	return uc.userRepo.IsActiveInviteCode(ctx, code)
}
