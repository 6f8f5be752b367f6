package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zabibufresh/internal/domain/entity"
)

func msg(id, sender, receiver, product, content string, at time.Time) *entity.Message {
	return &entity.Message{
		ID:         id,
		SenderID:   sender,
		ReceiverID: receiver,
		ProductID:  product,
		Content:    content,
		CreatedAt:  at,
	}
}

func TestAggregateConversationsGroupsByCounterpartyAndProduct(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// u1 talks to u2 about products A and B, and to u3 about A. Three
	// distinct threads, regardless of how many messages each holds.
	messages := []*entity.Message{
		msg("m1", "u1", "u2", "A", "hi about A", base),
		msg("m2", "u2", "u1", "A", "hello back", base.Add(1*time.Minute)),
		msg("m3", "u1", "u2", "B", "about B now", base.Add(2*time.Minute)),
		msg("m4", "u3", "u1", "A", "is A available?", base.Add(3*time.Minute)),
		msg("m5", "u1", "u2", "A", "still there?", base.Add(4*time.Minute)),
	}

	summaries := AggregateConversations("u1", messages)

	require.Len(t, summaries, 3)

	// Newest representative first: (u2, A) at +4m, (u3, A) at +3m, (u2, B) at +2m.
	assert.Equal(t, "u2", summaries[0].CounterpartyID)
	assert.Equal(t, "A", summaries[0].ProductID)
	assert.Equal(t, "m5", summaries[0].LastMessageID)
	assert.Equal(t, "still there?", summaries[0].LastMessage)

	assert.Equal(t, "u3", summaries[1].CounterpartyID)
	assert.Equal(t, "A", summaries[1].ProductID)
	assert.Equal(t, "m4", summaries[1].LastMessageID)

	assert.Equal(t, "u2", summaries[2].CounterpartyID)
	assert.Equal(t, "B", summaries[2].ProductID)
	assert.Equal(t, "m3", summaries[2].LastMessageID)
}

func TestAggregateConversationsSameCounterpartyDifferentProducts(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	messages := []*entity.Message{
		msg("m1", "u1", "u2", "A", "about A", base),
		msg("m2", "u1", "u2", "B", "about B", base.Add(time.Minute)),
	}

	summaries := AggregateConversations("u1", messages)

	require.Len(t, summaries, 2)
	assert.NotEqual(t, summaries[0].ProductID, summaries[1].ProductID)
	assert.Equal(t, "u2", summaries[0].CounterpartyID)
	assert.Equal(t, "u2", summaries[1].CounterpartyID)
}

func TestAggregateConversationsRepresentativeIsNewestMessage(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Deliberately out of order on input: the representative must still be
	// the message with the maximum timestamp.
	messages := []*entity.Message{
		msg("m3", "u2", "u1", "A", "newest", base.Add(2*time.Minute)),
		msg("m1", "u1", "u2", "A", "oldest", base),
		msg("m2", "u1", "u2", "A", "middle", base.Add(time.Minute)),
	}

	summaries := AggregateConversations("u1", messages)

	require.Len(t, summaries, 1)
	assert.Equal(t, "m3", summaries[0].LastMessageID)
	assert.Equal(t, "newest", summaries[0].LastMessage)
	assert.Equal(t, "u2", summaries[0].LastSenderID)
}

func TestAggregateConversationsEqualTimestampTieBreak(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	messages := []*entity.Message{
		msg("m-aaa", "u1", "u2", "A", "first write", at),
		msg("m-bbb", "u2", "u1", "A", "second write", at),
	}

	// Same input in both orders must produce the same representative: the
	// larger message id wins on equal timestamps.
	forward := AggregateConversations("u1", messages)
	reversed := AggregateConversations("u1", []*entity.Message{messages[1], messages[0]})

	require.Len(t, forward, 1)
	require.Len(t, reversed, 1)
	assert.Equal(t, "m-bbb", forward[0].LastMessageID)
	assert.Equal(t, forward[0].LastMessageID, reversed[0].LastMessageID)
}

func TestAggregateConversationsSortedByRecency(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	messages := []*entity.Message{
		msg("m1", "u1", "u2", "A", "old thread", base),
		msg("m2", "u1", "u3", "A", "mid thread", base.Add(time.Hour)),
		msg("m3", "u1", "u4", "A", "new thread", base.Add(2*time.Hour)),
	}

	summaries := AggregateConversations("u1", messages)

	require.Len(t, summaries, 3)
	for i := 1; i < len(summaries); i++ {
		assert.False(t, summaries[i].LastMessageAt.After(summaries[i-1].LastMessageAt))
	}
	assert.Equal(t, "u4", summaries[0].CounterpartyID)
}

func TestAggregateConversationsIgnoresForeignMessages(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	messages := []*entity.Message{
		msg("m1", "u1", "u2", "A", "mine", base),
		msg("m2", "u5", "u6", "A", "not mine", base.Add(time.Minute)),
	}

	summaries := AggregateConversations("u1", messages)

	require.Len(t, summaries, 1)
	assert.Equal(t, "u2", summaries[0].CounterpartyID)
}

func TestAggregateConversationsTwoCounterparties(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	messages := []*entity.Message{
		msg("m1", "u1", "u2", "A", "first", base.Add(1*time.Minute)),
		msg("m2", "u2", "u1", "A", "reply", base.Add(2*time.Minute)),
		msg("m3", "u1", "u3", "B", "other thread", base.Add(3*time.Minute)),
	}

	summaries := AggregateConversations("u1", messages)

	require.Len(t, summaries, 2)
	assert.Equal(t, "u3", summaries[0].CounterpartyID)
	assert.Equal(t, "B", summaries[0].ProductID)
	assert.Equal(t, "m3", summaries[0].LastMessageID)
	assert.Equal(t, "u2", summaries[1].CounterpartyID)
	assert.Equal(t, "A", summaries[1].ProductID)
	assert.Equal(t, "m2", summaries[1].LastMessageID)
}

func TestAggregateConversationsEmptyInput(t *testing.T) {
	summaries := AggregateConversations("u1", nil)
	assert.Empty(t, summaries)
	assert.NotNil(t, summaries)
}
