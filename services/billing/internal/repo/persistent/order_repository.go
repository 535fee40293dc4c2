package persistent

import (
	"context"
	"errors"

	"learnflix/services/billing/internal/entity"
	"learnflix/services/billing/internal/model"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, userID string, order *entity.Order) error
	// Owner returns "", nil when orderID was never issued by this service.
	Owner(ctx context.Context, orderID string) (string, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, userID string, order *entity.Order) error {
	return r.db.WithContext(ctx).Create(&model.PaymentOrderModel{
		OrderID:  order.ID,
		UserID:   userID,
		Amount:   order.Amount,
		Currency: order.Currency,
	}).Error
}

func (r *orderRepository) Owner(ctx context.Context, orderID string) (string, error) {
	var orderModel model.PaymentOrderModel
	err := r.db.WithContext(ctx).Select("user_id").Where("order_id = ?", orderID).First(&orderModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return orderModel.UserID, nil
}
