package usecase

import (
	"sort"

	"zabibufresh/internal/domain/entity"
)

type conversationKey struct {
	counterpartyID string
	productID      string
}

// AggregateConversations folds a viewer's raw sent and received messages
// into one summary per (counterparty, product) pair, previewed by the
// most recent message in that pair. It is a pure function over its input.
//
// The representative message is the one with the maximum timestamp; equal
// timestamps are broken by the larger message id, so the result is
// deterministic across runs on the same input. Summaries are returned
// sorted by representative timestamp descending.
func AggregateConversations(viewerID string, messages []*entity.Message) []*entity.ConversationSummary {
	latest := make(map[conversationKey]*entity.Message)

	for _, message := range messages {
		if message.SenderID != viewerID && message.ReceiverID != viewerID {
			continue
		}

		key := conversationKey{
			counterpartyID: message.CounterpartyOf(viewerID),
			productID:      message.ProductID,
		}

		current, ok := latest[key]
		if !ok || newerMessage(message, current) {
			latest[key] = message
		}
	}

	summaries := make([]*entity.ConversationSummary, 0, len(latest))
	for key, message := range latest {
		summaries = append(summaries, &entity.ConversationSummary{
			CounterpartyID: key.counterpartyID,
			ProductID:      key.productID,
			LastMessageID:  message.ID,
			LastMessage:    message.Content,
			LastMessageAt:  message.CreatedAt,
			LastSenderID:   message.SenderID,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].LastMessageAt.Equal(summaries[j].LastMessageAt) {
			return summaries[i].LastMessageID > summaries[j].LastMessageID
		}
		return summaries[i].LastMessageAt.After(summaries[j].LastMessageAt)
	})

	return summaries
}

func newerMessage(candidate, current *entity.Message) bool {
	if candidate.CreatedAt.Equal(current.CreatedAt) {
		return candidate.ID > current.ID
	}
	return candidate.CreatedAt.After(current.CreatedAt)
}
