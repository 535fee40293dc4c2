package usecase

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"learnflix/pkg/logger"
	"learnflix/services/auth/internal/entity"
	"learnflix/services/auth/internal/repo/persistent"

	"github.com/google/uuid"
)

const defaultBypassReason = "No reason provided"

// IPLimitUseCase lets a blocked network ask for one more account and lets admins decide.
type IPLimitUseCase interface {
	CanRegister(ctx context.Context, ip string, role entity.UserRole) (bool, error)
	RequestBypass(ctx context.Context, ip string, role entity.UserRole, reason string) (*entity.BypassRequest, error)
	ListBypassRequests(ctx context.Context, status entity.BypassStatus) ([]*entity.BypassRequest, error)
	ReviewBypassRequest(ctx context.Context, id, reviewerID string, approve bool) (*entity.BypassRequest, error)
}

type ipLimitUseCase struct {
	ipRepo persistent.IPRegistrationRepository
	limit  int
	logger *logger.Logger
	now    func() time.Time
}

func NewIPLimitUseCase(ipRepo persistent.IPRegistrationRepository, limit int, logger *logger.Logger) IPLimitUseCase {
	return &ipLimitUseCase{
		ipRepo: ipRepo,
		limit:  limit,
		logger: logger,
		now:    time.Now,
	}
}

func selfRegistrable(role entity.UserRole) (entity.UserRole, error) {
	switch role {
	case "":
		return entity.RoleStudent, nil
	case entity.RoleStudent, entity.RoleTeacher:
		return role, nil
	case entity.RoleAdmin:
		return "", entity.ErrAdminRegistration
	default:
		return "", entity.ErrInvalidRole
	}
}

func (uc *ipLimitUseCase) CanRegister(ctx context.Context, ip string, role entity.UserRole) (bool, error) {
	role, err := selfRegistrable(role)
	if err != nil {
		return false, err
	}
	if uc.limit <= 0 {
		return true, nil
	}
	if ip == "" {
		return false, entity.ErrUnknownClientIP
	}
	return uc.ipRepo.CanRegister(ctx, ip, role, uc.limit)
}

func (uc *ipLimitUseCase) RequestBypass(ctx context.Context, ip string, role entity.UserRole, reason string) (*entity.BypassRequest, error) {
	role, err := selfRegistrable(role)
	if err != nil {
		return nil, err
	}
	if ip == "" {
		return nil, entity.ErrUnknownClientIP
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultBypassReason
	}
	if utf8.RuneCountInString(reason) > entity.MaxBypassReason {
		reason = string([]rune(reason)[:entity.MaxBypassReason])
	}

	req := &entity.BypassRequest{IPAddress: ip, RequestedRole: role, Reason: reason}
	if err := uc.ipRepo.CreateBypassRequest(ctx, req); err != nil {
		return nil, err
	}

	uc.logger.Info("[AUTH] bypass request %s created for %s (%s)", req.ID, ip, role)
	return req, nil
}

func (uc *ipLimitUseCase) ListBypassRequests(ctx context.Context, status entity.BypassStatus) ([]*entity.BypassRequest, error) {
	if status == "" {
		status = entity.BypassPending
	}
	if !status.Valid() {
		return nil, entity.ErrInvalidBypassState
	}
	return uc.ipRepo.ListBypassRequests(ctx, status)
}

func (uc *ipLimitUseCase) ReviewBypassRequest(ctx context.Context, id, reviewerID string, approve bool) (*entity.BypassRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, entity.ErrBypassNotFound
	}

	status := entity.BypassRejected
	if approve {
		status = entity.BypassApproved
	}

	req, err := uc.ipRepo.ReviewBypassRequest(ctx, id, status, reviewerID, uc.now().UTC())
	if err != nil {
		return nil, err
	}

	uc.logger.Info("[AUTH] admin %s %s bypass request %s for %s", reviewerID, status, id, req.IPAddress)
	return req, nil
}
