package queue

import (
	"context"

	"jan-server/services/conversation-api/internal/domain/conversation"
)

// TitleQueue hands pending conversations to the title workers. Pending rows
// in the conversations table are the queue; completion and failure are
// written back through the conversation repository, not here.
type TitleQueue interface {
	// Dequeue claims the next conversation awaiting a title, or returns
	// nil when there is none.
	Dequeue(ctx context.Context) (*conversation.Conversation, error)

	// Depth returns the number of conversations awaiting a title.
	Depth(ctx context.Context) (int64, error)
}
