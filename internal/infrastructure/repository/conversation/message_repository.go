package conversation

import (
	"context"

	"gorm.io/gorm"

	domain "jan-server/services/conversation-api/internal/domain/conversation"
	"jan-server/services/conversation-api/internal/infrastructure/database/entities"
	"jan-server/services/conversation-api/internal/infrastructure/metrics"
	"jan-server/services/conversation-api/internal/utils/platformerrors"
)

// MessageRepository persists conversation messages.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository builds a message repository.
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Insert stores a single message. A sequence collision surfaces as a
// conflict so the caller can pick a fresh sequence number; a missing parent
// conversation surfaces as not found.
func (r *MessageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	entity := entities.NewSchemaMessage(msg)

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		if isUniqueViolation(err) {
			metrics.RecordSequenceConflict()
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeConflict,
				"message sequence already taken",
				err,
				"3b113cae-fbd5-4fd2-9a3b-c46258790031",
			)
		}
		if isForeignKeyViolation(err) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"conversation no longer exists",
				err,
				"2b4a6ca3-e7e0-49a6-8c56-1728514514c9",
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to insert message",
			err,
			"0bbbd72a-b73a-49c2-8ea9-2e36139588d9",
		)
	}

	msg.ID = entity.ID
	msg.CreatedAt = entity.CreatedAt
	return nil
}

// BulkInsert stores a batch of messages in one statement.
func (r *MessageRepository) BulkInsert(ctx context.Context, msgs []*domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	rows := make([]*entities.ConversationMessage, len(msgs))
	for i, msg := range msgs {
		rows[i] = entities.NewSchemaMessage(msg)
	}

	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		if isUniqueViolation(err) {
			metrics.RecordSequenceConflict()
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeConflict,
				"message sequence already taken",
				err,
				"06ef45e8-2506-4f5c-a959-7fd58c329160",
			)
		}
		if isForeignKeyViolation(err) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"conversation no longer exists",
				err,
				"be1062c5-45ee-4217-8c08-4f7fed2ed47e",
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to bulk insert messages",
			err,
			"195d7c83-5b1f-407e-835c-ff0500b73f51",
		)
	}

	for i, entity := range rows {
		msgs[i].ID = entity.ID
		msgs[i].CreatedAt = entity.CreatedAt
	}
	return nil
}

// ListByConversation returns all messages of a conversation in sequence
// order.
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID uint) ([]*domain.Message, error) {
	var rows []entities.ConversationMessage
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sequence ASC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list messages",
			err,
			"5c3d4adb-6d21-4d28-80eb-7970bc11a038",
		)
	}

	result := make([]*domain.Message, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	return result, nil
}

// NextSequence returns the sequence number the next message should claim.
// The value is only a candidate: the unique index on
// (conversation_id, sequence) is what actually arbitrates concurrent
// appends.
func (r *MessageRepository) NextSequence(ctx context.Context, conversationID uint) (int, error) {
	var next int
	if err := r.db.WithContext(ctx).
		Model(&entities.ConversationMessage{}).
		Select("COALESCE(MAX(sequence) + 1, 0)").
		Where("conversation_id = ?", conversationID).
		Scan(&next).Error; err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to compute next sequence",
			err,
			"b9cdd243-3fa5-4617-a7b5-ac4e945e4f29",
		)
	}
	return next, nil
}
