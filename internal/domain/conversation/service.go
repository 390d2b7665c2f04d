package conversation

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"jan-server/services/conversation-api/internal/utils/idgen"
	"jan-server/services/conversation-api/internal/utils/platformerrors"
	"jan-server/services/conversation-api/internal/utils/stringutils"
)

// sequenceRetryLimit bounds how often a message append re-assigns its
// sequence number after losing a conditional write to a concurrent append.
const sequenceRetryLimit = 3

// ConversationService handles the conversation lifecycle and message
// operations on top of the partition-scoped repositories, plus the
// best-effort title pipeline.
type ConversationService struct {
	conversations Repository
	messages      MessageRepository
	generator     TitleGenerator
	validator     *Validator
	titleTimeout  time.Duration
	log           zerolog.Logger
}

// NewConversationService creates a conversation service. generator may be
// nil, which disables title derivation.
func NewConversationService(conversations Repository, messages MessageRepository, generator TitleGenerator, titleTimeout time.Duration, log zerolog.Logger) *ConversationService {
	if titleTimeout <= 0 {
		titleTimeout = defaultTitleTimeout
	}
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		generator:     generator,
		validator:     NewValidator(nil),
		titleTimeout:  titleTimeout,
		log:           log,
	}
}

// ===============================================
// Conversation Lifecycle Operations
// ===============================================

// CreateConversationInput represents the input for creating a conversation.
type CreateConversationInput struct {
	UserID       string
	Title        *string
	SeedMessages []string
}

// CreateConversation creates a conversation for the user, optionally seeded
// with user-role messages persisted in the given order. The title starts as
// an explicit caller title, a heuristic derived from the first seed when no
// generator is configured, or the placeholder. With a generator configured
// and seeds present the conversation is queued for derivation; that step
// never changes this call's outcome.
func (s *ConversationService) CreateConversation(ctx context.Context, input CreateConversationInput) (*Conversation, error) {
	if err := s.validator.ValidateUserID(input.UserID); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid user ID", err, "f2a7c430-5d18-4e26-9b3a-7c1f08d4e5a2")
	}
	if input.Title != nil {
		if err := s.validator.ValidateTitle(*input.Title); err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid title", err, "0b9e6d51-2c84-4f37-8a5d-913ce7f2b6a4")
		}
	}
	if err := s.validator.ValidateSeedMessages(input.SeedMessages); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid seed messages", err, "1c8f7e62-3d95-4a48-9b6e-a24df803c7b5")
	}

	publicID, err := idgen.GenerateSecureID("conv", 16)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate conversation ID")
	}

	title := DefaultTitle
	status := TitleStatusUntitled
	switch {
	case input.Title != nil:
		title = strings.TrimSpace(*input.Title)
		status = TitleStatusTitled
	case s.generator != nil && len(input.SeedMessages) > 0:
		status = TitleStatusPending
	case len(input.SeedMessages) > 0:
		if derived := stringutils.GenerateTitle(input.SeedMessages[0], derivedTitleMaxLength); derived != "" {
			title = derived
			status = TitleStatusTitled
		}
	}

	conv := NewConversation(publicID, input.UserID, &title, status)
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create conversation")
	}

	if len(input.SeedMessages) > 0 {
		if err := s.seedMessages(ctx, conv, input.SeedMessages); err != nil {
			return nil, err
		}
	}

	return conv, nil
}

// seedMessages persists the creation-time batch. The conversation is not yet
// visible to any other caller so sequences are assigned directly.
func (s *ConversationService) seedMessages(ctx context.Context, conv *Conversation, seeds []string) error {
	msgs := make([]*Message, len(seeds))
	for i, content := range seeds {
		publicID, err := idgen.GenerateSecureID("msg", 16)
		if err != nil {
			return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate message ID")
		}
		msgs[i] = NewMessage(publicID, conv.ID, conv.UserID, RoleUser, content, i)
	}

	// The conversation row already exists at this point, so a failed seed
	// leaves partial state behind; the caller can retry the message adds.
	if err := s.messages.BulkInsert(ctx, msgs); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypePartialFailure, "conversation created but seeding messages failed", err, "b89ce883-3d06-44a8-9bfe-a247f8091c05")
	}

	conv.MessageCount = int64(len(msgs))
	if err := s.conversations.Update(ctx, conv); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypePartialFailure, "conversation seeded but count update failed", err, "c9adf994-4e17-45b9-8c0f-b358091a2d16")
	}
	return nil
}

// GetConversation retrieves a conversation by public ID within the user's
// partition. A conversation owned by a different user reports not found,
// indistinguishable from absence.
func (s *ConversationService) GetConversation(ctx context.Context, publicID, userID string) (*Conversation, error) {
	if err := s.validator.ValidateConversationID(publicID); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid conversation ID", err, "2d9a8f73-4ea6-4b59-8c7f-b35e0914d8c6")
	}
	if err := s.validator.ValidateUserID(userID); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid user ID", err, "3eab9084-5fb7-4c6a-9d80-c46f1a25e9d7")
	}

	conv, err := s.conversations.FindByPublicID(ctx, publicID, userID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}
	return conv, nil
}

// ListConversations returns the user's conversations most recently active
// first, plus the total count for pagination cues.
func (s *ConversationService) ListConversations(ctx context.Context, userID string, pagination *Pagination) ([]*Conversation, int64, error) {
	if err := s.validator.ValidateUserID(userID); err != nil {
		return nil, 0, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid user ID", err, "4fbc1a95-60c8-4d7b-ae91-d57a2b36fae8")
	}

	convs, err := s.conversations.FindByUserID(ctx, userID, pagination)
	if err != nil {
		return nil, 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list conversations")
	}

	total, err := s.conversations.CountByUserID(ctx, userID)
	if err != nil {
		return nil, 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to count conversations")
	}

	return convs, total, nil
}

// GetMessages returns the conversation's messages in their stable total
// order. An absent conversation, including one owned by a different user or
// already deleted, yields an empty result rather than an error so no message
// is ever independently retrievable.
func (s *ConversationService) GetMessages(ctx context.Context, publicID, userID string) ([]*Message, error) {
	if err := s.validator.ValidateConversationID(publicID); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid conversation ID", err, "50cd2ba6-71d9-4e8c-bfa2-e68b3c47ab09")
	}
	if err := s.validator.ValidateUserID(userID); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid user ID", err, "61de3cb7-82ea-4f9d-80b3-f79c4d58bc1a")
	}

	conv, err := s.conversations.FindByPublicID(ctx, publicID, userID)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return []*Message{}, nil
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load conversation")
	}

	msgs, err := s.messages.ListByConversation(ctx, conv.ID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list messages")
	}
	return msgs, nil
}

// RenameConversation overwrites the title and finalizes the title status.
// The previous title is left untouched when validation fails.
func (s *ConversationService) RenameConversation(ctx context.Context, publicID, userID, newTitle string) (*Conversation, error) {
	if err := s.validator.ValidateConversationID(publicID); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid conversation ID", err, "72ef4dc8-93fb-4a0e-91c4-08ad5e69cd2b")
	}
	if err := s.validator.ValidateUserID(userID); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid user ID", err, "83f05ed9-a40c-4b1f-a2d5-19be6f7ade3c")
	}
	if err := s.validator.ValidateTitle(newTitle); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid title", err, "9401600a-b51d-4c20-b3e6-2acf708bef4d")
	}

	conv, err := s.conversations.FindByPublicID(ctx, publicID, userID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}

	renamed, err := s.conversations.UpdateTitle(ctx, conv.ID, strings.TrimSpace(newTitle))
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to rename conversation")
	}

	return renamed, nil
}

// DeleteConversation removes the conversation and all of its messages. The
// cascade must complete before success is reported; a partial cascade keeps
// the conversation record and surfaces a retryable error.
func (s *ConversationService) DeleteConversation(ctx context.Context, publicID, userID string) error {
	if err := s.validator.ValidateConversationID(publicID); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid conversation ID", err, "a512711b-c62e-4d31-84f7-3bd081903f5e")
	}
	if err := s.validator.ValidateUserID(userID); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid user ID", err, "b623822c-d73f-4e42-95a8-4ce192a14a6f")
	}

	conv, err := s.conversations.FindByPublicID(ctx, publicID, userID)
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}

	if err := s.conversations.DeleteCascade(ctx, conv.ID, userID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete conversation")
	}
	return nil
}

// ===============================================
// Message Operations
// ===============================================

// AddMessageInput represents the input for appending a message.
type AddMessageInput struct {
	ConversationID string
	UserID         string
	Role           Role
	Content        string
	Annotations    json.RawMessage
}

// AddMessage appends a message to the conversation, assigning the next
// sequence number, and bumps the conversation's message count and updated_at.
// A qualifying add re-arms title derivation. Input is validated before
// anything touches the store.
func (s *ConversationService) AddMessage(ctx context.Context, input AddMessageInput) (*Message, error) {
	if err := s.validator.ValidateConversationID(input.ConversationID); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid conversation ID", err, "c734933d-e840-4f53-a6b9-5df2a3b25b70")
	}
	if err := s.validator.ValidateUserID(input.UserID); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid user ID", err, "d845a44e-f951-4064-b7ca-6e03b4c36c81")
	}
	if err := s.validator.ValidateRole(input.Role); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid role", err, "e956b55f-0a62-4175-88db-7f14c5d47d92")
	}
	if err := s.validator.ValidateContent(input.Content); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid content", err, "fa67c660-1b73-4286-99ec-8025d6e58ea3")
	}

	conv, err := s.conversations.FindByPublicID(ctx, input.ConversationID, input.UserID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}

	msg, err := s.appendMessage(ctx, conv, input.Role, input.Content, input.Annotations)
	if err != nil {
		return nil, err
	}

	if err := s.conversations.IncrementMessageCount(ctx, conv.ID); err != nil {
		// The message is already durable; failing the call here would
		// report a lost append. The cached count drifts until the next
		// successful increment, sequence assignment reads the messages
		// table directly and is unaffected.
		s.log.Warn().
			Err(err).
			Str("conversation_id", conv.PublicID).
			Msg("failed to update message count after append")
	}

	if s.shouldQueueTitle(conv) {
		if _, err := s.conversations.MarkTitlePending(ctx, conv.ID); err != nil {
			// Advisory pipeline only; the append already succeeded.
			s.log.Warn().
				Err(err).
				Str("conversation_id", conv.PublicID).
				Msg("failed to queue title derivation")
		}
	}

	return msg, nil
}

// appendMessage inserts a message with the next free sequence number. The
// unique (conversation, sequence) index turns concurrent appends into
// conflicts; losing writers re-read the sequence and retry, bounded, so no
// message is ever silently dropped.
func (s *ConversationService) appendMessage(ctx context.Context, conv *Conversation, role Role, content string, annotations json.RawMessage) (*Message, error) {
	publicID, err := idgen.GenerateSecureID("msg", 16)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate message ID")
	}

	var lastErr error
	for attempt := 0; attempt < sequenceRetryLimit; attempt++ {
		seq, err := s.messages.NextSequence(ctx, conv.ID)
		if err != nil {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to assign message sequence")
		}

		msg := NewMessage(publicID, conv.ID, conv.UserID, role, content, seq)
		msg.Annotations = annotations

		err = s.messages.Insert(ctx, msg)
		if err == nil {
			return msg, nil
		}
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict) {
			lastErr = err
			continue
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to append message")
	}

	return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDatabaseError, "message sequence assignment exhausted retries", lastErr, "0b78d771-2c84-4397-8afd-9136e7f69fb4")
}
