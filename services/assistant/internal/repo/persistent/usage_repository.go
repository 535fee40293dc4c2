package persistent

import (
	"context"
	"fmt"
	"time"

	"learnflix/services/assistant/internal/entity"
	"learnflix/services/assistant/internal/model"

	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// UsageRepository owns the per (user, UTC day) question counters.
type UsageRepository interface {
	ConsumeQuestion(ctx context.Context, userID string, day time.Time, limit int, unlimited bool) (*entity.ConsumeResult, error)
	CountForDay(ctx context.Context, userID string, day time.Time) (int, error)
	PurgeBefore(ctx context.Context, day time.Time) (int64, error)
}

type usageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

type consumeRow struct {
	Outcome      string
	CurrentCount int
}

func (r *usageRepository) ConsumeQuestion(ctx context.Context, userID string, day time.Time, limit int, unlimited bool) (*entity.ConsumeResult, error) {
	var row consumeRow
	err := r.db.WithContext(ctx).
		Raw("SELECT outcome, current_count FROM consume_ai_question(?, ?::date, ?, ?)", userID, day.UTC().Format(dateLayout), limit, unlimited).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("consume_ai_question: %w", err)
	}

	outcome := entity.ConsumeOutcome(row.Outcome)
	switch outcome {
	case entity.OutcomeCreated, entity.OutcomeIncremented, entity.OutcomeRejected:
	default:
		return nil, fmt.Errorf("consume_ai_question: unexpected outcome %q", row.Outcome)
	}

	return &entity.ConsumeResult{Outcome: outcome, Count: row.CurrentCount}, nil
}

func (r *usageRepository) CountForDay(ctx context.Context, userID string, day time.Time) (int, error) {
	var counts []int
	err := r.db.WithContext(ctx).
		Model(&model.AIUsageModel{}).
		Where("user_id = ? AND usage_date = ?::date", userID, day.UTC().Format(dateLayout)).
		Pluck("question_count", &counts).Error
	if err != nil {
		return 0, err
	}
	if len(counts) == 0 {
		return 0, nil
	}
	return counts[0], nil
}

// PurgeBefore deletes counters for days strictly before day.
func (r *usageRepository) PurgeBefore(ctx context.Context, day time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("usage_date < ?::date", day.UTC().Format(dateLayout)).
		Delete(&model.AIUsageModel{})
	return result.RowsAffected, result.Error
}
