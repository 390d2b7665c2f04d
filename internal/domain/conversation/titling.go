package conversation

import (
	"context"
	"time"

	"jan-server/services/conversation-api/internal/utils/platformerrors"
	"jan-server/services/conversation-api/internal/utils/stringutils"
)

// ===============================================
// Title Derivation
// ===============================================

// TitleGenerator is the optional capability that turns early message texts
// into a short conversation title. A nil generator disables derivation
// entirely; failures are advisory and never surface to lifecycle callers.
type TitleGenerator interface {
	SuggestTitle(ctx context.Context, texts []string) (string, error)
}

const (
	// DefaultTitle is the placeholder before any derivation or rename.
	DefaultTitle = "New Chat"

	// titleSourceMessageLimit caps how many early user messages feed the
	// generator prompt.
	titleSourceMessageLimit = 4

	// derivedTitleMaxLength bounds heuristic and generated titles.
	derivedTitleMaxLength = 50

	defaultTitleTimeout = 10 * time.Second
)

// shouldQueueTitle reports whether a message add should re-arm derivation.
// Only untitled conversations qualify; pending means a derivation is already
// in flight and titled is final until an explicit rename.
func (s *ConversationService) shouldQueueTitle(conv *Conversation) bool {
	return s.generator != nil && conv.TitleStatus == TitleStatusUntitled
}

// titleSourceTexts picks the generator inputs: the earliest user messages,
// capped, falling back to the very first message when the user never spoke.
func titleSourceTexts(msgs []*Message) []string {
	texts := make([]string, 0, titleSourceMessageLimit)
	for _, msg := range msgs {
		if msg.Role != RoleUser {
			continue
		}
		texts = append(texts, msg.Content)
		if len(texts) == titleSourceMessageLimit {
			break
		}
	}
	if len(texts) == 0 && len(msgs) > 0 {
		texts = append(texts, msgs[0].Content)
	}
	return texts
}

// DeriveTitle runs one best-effort derivation attempt for a conversation in
// the pending title state. On generator failure or timeout the status drops
// back to untitled; on success the title is persisted unless a rename
// already landed. The returned error is for worker logging only and never
// reaches lifecycle callers.
func (s *ConversationService) DeriveTitle(ctx context.Context, conv *Conversation) error {
	if s.generator == nil {
		if _, err := s.conversations.MarkTitleFailed(ctx, conv.ID); err != nil {
			return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to release title derivation")
		}
		return nil
	}

	msgs, err := s.messages.ListByConversation(ctx, conv.ID)
	if err != nil {
		s.markTitleFailed(ctx, conv)
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load title source messages")
	}

	texts := titleSourceTexts(msgs)
	if len(texts) == 0 {
		s.markTitleFailed(ctx, conv)
		return nil
	}

	genCtx, cancel := context.WithTimeout(ctx, s.titleTimeout)
	defer cancel()

	raw, err := s.generator.SuggestTitle(genCtx, texts)
	if err != nil {
		s.markTitleFailed(ctx, conv)
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "title generation failed", err, "7c2e4f8a-9b31-4d6e-a5c8-2f0d1e3b5a79")
	}

	title := stringutils.GenerateTitle(raw, derivedTitleMaxLength)
	if title == "" {
		s.markTitleFailed(ctx, conv)
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "title generation produced no usable text", nil, "8d3f5a9b-0c42-4e7f-b6d9-3a1e2f4c6b80")
	}

	applied, err := s.conversations.MarkTitleCompleted(ctx, conv.ID, title)
	if err != nil {
		// Drop back to untitled so the next append can re-arm derivation
		// instead of the row sitting in pending until the claim expires.
		s.markTitleFailed(ctx, conv)
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to persist derived title")
	}
	if !applied {
		s.log.Debug().
			Str("conversation_id", conv.PublicID).
			Msg("derived title discarded, conversation no longer pending")
		return nil
	}

	s.log.Info().
		Str("conversation_id", conv.PublicID).
		Str("title", title).
		Msg("conversation title derived")
	return nil
}

// markTitleFailed resets pending back to untitled, logging rather than
// propagating any store error since the whole pipeline is advisory.
func (s *ConversationService) markTitleFailed(ctx context.Context, conv *Conversation) {
	if _, err := s.conversations.MarkTitleFailed(ctx, conv.ID); err != nil {
		s.log.Warn().
			Err(err).
			Str("conversation_id", conv.PublicID).
			Msg("failed to reset title status after derivation failure")
	}
}
