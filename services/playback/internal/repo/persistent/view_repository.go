package persistent

import (
	"context"
	"fmt"

	"learnflix/pkg/database"
	"learnflix/services/playback/internal/entity"

	"gorm.io/gorm"
)

// Postgres default name of video_views.user_id REFERENCES users.
const viewsUserForeignKey = "video_views_user_id_fkey"

// ViewRepository owns the per (user, video) view counters.
type ViewRepository interface {
	// ConsumeView creates or increments the (user, video) row in one statement unless the
	// row is already at limit and unlimited is false, in which case it reports rejected.
	ConsumeView(ctx context.Context, userID, videoID string, limit int, unlimited bool) (*entity.ConsumeResult, error)
}

type viewRepository struct {
	db *gorm.DB
}

func NewViewRepository(db *gorm.DB) ViewRepository {
	return &viewRepository{db: db}
}

type consumeRow struct {
	Outcome      string
	CurrentCount int
}

func (r *viewRepository) ConsumeView(ctx context.Context, userID, videoID string, limit int, unlimited bool) (*entity.ConsumeResult, error) {
	var row consumeRow
	err := r.db.WithContext(ctx).
		Raw("SELECT outcome, current_count FROM consume_view(?, ?, ?, ?)", userID, videoID, limit, unlimited).
		Scan(&row).Error
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			if database.ConstraintName(err) == viewsUserForeignKey {
				return nil, entity.ErrUserNotFound
			}
			return nil, entity.ErrVideoNotFound
		}
		return nil, fmt.Errorf("consume_view: %w", err)
	}

	outcome := entity.ConsumeOutcome(row.Outcome)
	switch outcome {
	case entity.OutcomeCreated, entity.OutcomeIncremented, entity.OutcomeRejected:
	default:
		return nil, fmt.Errorf("consume_view: unexpected outcome %q", row.Outcome)
	}

	return &entity.ConsumeResult{Outcome: outcome, Count: row.CurrentCount}, nil
}
