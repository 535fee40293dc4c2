package persistent

import (
	"context"
	"errors"
	"time"

	"learnflix/pkg/database"
	"learnflix/services/auth/internal/entity"
	"learnflix/services/auth/internal/model"

	"gorm.io/gorm"
)

// IPRegistrationRepository enforces the per-network account limit through the
// can_ip_register and register_ip_account database functions.
type IPRegistrationRepository interface {
	CanRegister(ctx context.Context, ip string, role entity.UserRole, limit int) (bool, error)
	// CreateUser inserts user and records its address in one transaction, returning
	// entity.ErrIPLimitReached (and inserting nothing) when the network is full.
	CreateUser(ctx context.Context, user *entity.User, ip string, limit int) error
	CreateBypassRequest(ctx context.Context, req *entity.BypassRequest) error
	ListBypassRequests(ctx context.Context, status entity.BypassStatus) ([]*entity.BypassRequest, error)
	ReviewBypassRequest(ctx context.Context, id string, status entity.BypassStatus, reviewerID string, at time.Time) (*entity.BypassRequest, error)
}

type ipRegistrationRepository struct {
	db *gorm.DB
}

func NewIPRegistrationRepository(db *gorm.DB) IPRegistrationRepository {
	return &ipRegistrationRepository{db: db}
}

func (r *ipRegistrationRepository) CanRegister(ctx context.Context, ip string, role entity.UserRole, limit int) (bool, error) {
	var allowed bool
	err := r.db.WithContext(ctx).Raw("SELECT can_ip_register(?, ?, ?)", ip, string(role), limit).Scan(&allowed).Error
	return allowed, err
}

func (r *ipRegistrationRepository) CreateUser(ctx context.Context, user *entity.User, ip string, limit int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createUser(tx, user); err != nil {
			return err
		}

		var registered bool
		err := tx.Raw("SELECT register_ip_account(?, ?, ?, ?)", ip, user.ID, string(user.Role), limit).Scan(&registered).Error
		if err != nil {
			return err
		}
		if !registered {
			return entity.ErrIPLimitReached
		}
		return nil
	})
}

func (r *ipRegistrationRepository) CreateBypassRequest(ctx context.Context, req *entity.BypassRequest) error {
	reqModel := &model.BypassRequestModel{
		IPAddress:     req.IPAddress,
		RequestedRole: string(req.RequestedRole),
		Reason:        req.Reason,
		Status:        string(entity.BypassPending),
	}
	if err := r.db.WithContext(ctx).Create(reqModel).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return entity.ErrBypassPending
		}
		return err
	}
	*req = *ToBypassRequestEntity(reqModel)
	return nil
}

func (r *ipRegistrationRepository) ListBypassRequests(ctx context.Context, status entity.BypassStatus) ([]*entity.BypassRequest, error) {
	var reqModels []model.BypassRequestModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at DESC").
		Find(&reqModels).Error
	if err != nil {
		return nil, err
	}

	reqs := make([]*entity.BypassRequest, len(reqModels))
	for i := range reqModels {
		reqs[i] = ToBypassRequestEntity(&reqModels[i])
	}
	return reqs, nil
}

// ReviewBypassRequest only moves pending requests.
func (r *ipRegistrationRepository) ReviewBypassRequest(ctx context.Context, id string, status entity.BypassStatus, reviewerID string, at time.Time) (*entity.BypassRequest, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&model.BypassRequestModel{}).
		Where("id = ? AND status = ?", id, string(entity.BypassPending)).
		Updates(map[string]interface{}{
			"status":      string(status),
			"reviewed_at": at,
			"reviewed_by": reviewerID,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	var reqModel model.BypassRequestModel
	err := db.Where("id = ?", id).First(&reqModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrBypassNotFound
	}
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, entity.ErrBypassReviewed
	}
	return ToBypassRequestEntity(&reqModel), nil
}
