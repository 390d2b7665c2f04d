package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"jan-server/services/conversation-api/internal/domain/conversation"
	"jan-server/services/conversation-api/internal/infrastructure/database/entities"
)

// PostgresQueue implements TitleQueue on the conversations table.
type PostgresQueue struct {
	db          *gorm.DB
	claimWindow time.Duration
	log         zerolog.Logger
}

// NewPostgresQueue creates a PostgreSQL-backed title queue. claimWindow is
// how long a claimed conversation stays invisible to other workers; a
// worker that dies mid-derivation loses its claim after the window and the
// row becomes eligible again.
func NewPostgresQueue(db *gorm.DB, claimWindow time.Duration, log zerolog.Logger) *PostgresQueue {
	if claimWindow <= 0 {
		claimWindow = 2 * time.Minute
	}
	return &PostgresQueue{
		db:          db,
		claimWindow: claimWindow,
		log:         log.With().Str("component", "title-queue").Logger(),
	}
}

const dequeueSQL = `
UPDATE conversation_api.conversations
SET title_attempted_at = NOW()
WHERE id = (
	SELECT id FROM conversation_api.conversations
	WHERE title_status = 'pending'
	  AND (title_attempted_at IS NULL OR title_attempted_at < NOW() - make_interval(secs => ?))
	ORDER BY updated_at ASC
	LIMIT 1
	FOR UPDATE SKIP LOCKED
)
RETURNING *`

// Dequeue claims the oldest pending conversation by stamping its attempt
// time, using FOR UPDATE SKIP LOCKED so concurrent workers never pick the
// same row.
func (q *PostgresQueue) Dequeue(ctx context.Context) (*conversation.Conversation, error) {
	var entity entities.Conversation

	err := q.db.WithContext(ctx).
		Raw(dequeueSQL, q.claimWindow.Seconds()).
		Scan(&entity).Error
	if err != nil {
		return nil, fmt.Errorf("dequeue conversation: %w", err)
	}

	if entity.ID == 0 {
		return nil, nil // nothing pending
	}

	return entity.EtoD(), nil
}

// Depth returns the number of conversations still awaiting a title.
func (q *PostgresQueue) Depth(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("title_status = ?", conversation.TitleStatusPending).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("title queue depth: %w", err)
	}
	return count, nil
}
