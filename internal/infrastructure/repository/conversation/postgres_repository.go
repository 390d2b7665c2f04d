package conversation

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "jan-server/services/conversation-api/internal/domain/conversation"
	"jan-server/services/conversation-api/internal/infrastructure/database/entities"
	"jan-server/services/conversation-api/internal/utils/platformerrors"
)

// Repository persists conversation records.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a conversation repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the conversation record.
func (r *Repository) Create(ctx context.Context, conv *domain.Conversation) error {
	entity := entities.NewSchemaConversation(conv)

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create conversation",
			err,
			"c7079882-5682-4e64-8b39-d880c3b9fdfa",
		)
	}

	conv.ID = entity.ID
	conv.CreatedAt = entity.CreatedAt
	conv.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindByPublicID fetches a conversation by its public ID within the user's
// partition. A record owned by another user is reported as missing.
func (r *Repository) FindByPublicID(ctx context.Context, publicID, userID string) (*domain.Conversation, error) {
	var entity entities.Conversation
	if err := r.db.WithContext(ctx).
		Where("public_id = ? AND user_id = ?", publicID, userID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("conversation not found: %s", publicID),
				nil,
				"112dc099-42f7-47f3-a717-17af39848920",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch conversation",
			err,
			"0b8c38ec-c69e-4584-92be-2c13a551499b",
		)
	}

	return entity.EtoD(), nil
}

// FindByUserID lists the user's conversations, most recently active first.
func (r *Repository) FindByUserID(ctx context.Context, userID string, pagination *domain.Pagination) ([]*domain.Conversation, error) {
	query := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("user_id = ?", userID).
		Order("updated_at DESC")

	if pagination != nil {
		if pagination.Offset > 0 {
			query = query.Offset(pagination.Offset)
		}
		if pagination.Limit > 0 {
			query = query.Limit(pagination.Limit)
		}
	}

	var rows []entities.Conversation
	if err := query.Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list conversations",
			err,
			"e53f6fe6-2bfd-4665-aafd-e887bc32ba31",
		)
	}

	result := make([]*domain.Conversation, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	return result, nil
}

// CountByUserID returns the number of conversations in the user's partition.
func (r *Repository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count conversations",
			err,
			"c988910d-2dd5-47b2-b68c-1314c1e71a3d",
		)
	}
	return count, nil
}

// Update saves the full conversation record.
func (r *Repository) Update(ctx context.Context, conv *domain.Conversation) error {
	entity := entities.NewSchemaConversation(conv)
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update conversation",
			err,
			"78213f0e-8360-424f-bf0a-9a998ef62734",
		)
	}
	conv.UpdatedAt = entity.UpdatedAt
	return nil
}

// UpdateTitle writes the title column and marks the conversation titled,
// leaving every other column untouched.
func (r *Repository) UpdateTitle(ctx context.Context, id uint, title string) (*domain.Conversation, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":        title,
			"title_status": domain.TitleStatusTitled,
		})
	if result.Error != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update conversation title",
			result.Error,
			"31b54713-9e44-4513-8a50-73bbd863d672",
		)
	}
	if result.RowsAffected == 0 {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("conversation not found: %d", id),
			nil,
			"da8ce252-2d03-4943-8773-52209d2ac486",
		)
	}

	var entity entities.Conversation
	if err := r.db.WithContext(ctx).First(&entity, id).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to reload conversation",
			err,
			"896b8269-1dac-4fa4-849e-746491f35b11",
		)
	}
	return entity.EtoD(), nil
}

// IncrementMessageCount bumps the message counter atomically.
func (r *Repository) IncrementMessageCount(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", id).
		Update("message_count", gorm.Expr("message_count + 1"))
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to increment message count",
			result.Error,
			"1c0c3181-fbc9-4807-998c-0816c0cd46f8",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("conversation not found: %d", id),
			nil,
			"53d22dda-7223-4e03-8d37-efec9d09396c",
		)
	}
	return nil
}

// titlePendingUpdates arms the pipeline and clears any claim stamp left by
// an earlier failed derivation, so the fresh pending row is immediately
// eligible for dequeue.
func titlePendingUpdates() map[string]interface{} {
	return map[string]interface{}{
		"title_status":       domain.TitleStatusPending,
		"title_attempted_at": nil,
	}
}

// titleFailedUpdates releases a pending conversation back to untitled,
// dropping the claim stamp alongside the status.
func titleFailedUpdates() map[string]interface{} {
	return map[string]interface{}{
		"title_status":       domain.TitleStatusUntitled,
		"title_attempted_at": nil,
	}
}

// MarkTitlePending arms the title pipeline. The transition only applies to
// untitled conversations; the returned bool reports whether it did.
func (r *Repository) MarkTitlePending(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ? AND title_status = ?", id, domain.TitleStatusUntitled).
		Updates(titlePendingUpdates())
	if result.Error != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to mark title pending",
			result.Error,
			"aec3005e-c52a-4758-962d-7db0af70716a",
		)
	}
	return result.RowsAffected > 0, nil
}

// MarkTitleCompleted stores a derived title for a still pending conversation.
// A false return means the pending state was resolved elsewhere and the
// derived title must be discarded.
func (r *Repository) MarkTitleCompleted(ctx context.Context, id uint, title string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ? AND title_status = ?", id, domain.TitleStatusPending).
		Updates(map[string]interface{}{
			"title":        title,
			"title_status": domain.TitleStatusTitled,
		})
	if result.Error != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to mark title completed",
			result.Error,
			"ad145575-93f9-43d9-a33d-5bd5c08b70d6",
		)
	}
	return result.RowsAffected > 0, nil
}

// MarkTitleFailed returns a pending conversation to untitled so a later
// append can arm the pipeline again.
func (r *Repository) MarkTitleFailed(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ? AND title_status = ?", id, domain.TitleStatusPending).
		Updates(titleFailedUpdates())
	if result.Error != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to mark title failed",
			result.Error,
			"4e7a8792-6f27-4b32-9c58-c2f82ffb46dc",
		)
	}
	return result.RowsAffected > 0, nil
}

// DeleteCascade removes the conversation's messages and then the
// conversation itself. The message phase is scoped through an ownership
// subquery so a mismatched user deletes nothing. When the message phase
// fails the conversation row is left in place and the whole operation can
// be retried.
func (r *Repository) DeleteCascade(ctx context.Context, id uint, userID string) error {
	owned := r.db.
		Model(&entities.Conversation{}).
		Select("id").
		Where("id = ? AND user_id = ?", id, userID)

	if err := r.db.WithContext(ctx).
		Where("conversation_id IN (?)", owned).
		Delete(&entities.ConversationMessage{}).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypePartialFailure,
			"failed to delete conversation messages",
			err,
			"46a600d7-9313-450a-b620-654d24818313",
		)
	}

	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&entities.Conversation{})
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete conversation",
			result.Error,
			"94bfc636-1b92-4d28-9d57-ce3b404b6e16",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("conversation not found: %d", id),
			nil,
			"ef0f4d7a-520c-4836-8c9e-b4453a8e1608",
		)
	}
	return nil
}
