package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zabibufresh/internal/domain/entity"
	ws "zabibufresh/internal/infrastructure/websocket"
	"zabibufresh/pkg/errors"
)

func newChatFixture(t *testing.T) (*ChatUseCase, *fakeMessageRepo, *fakeUserRepo, *fakeProductRepo) {
	t.Helper()

	userRepo := newFakeUserRepo(
		&entity.User{ID: "seller-1", FullName: "Asha Mwalimu", Role: entity.RoleSeller},
		&entity.User{ID: "buyer-1", FullName: "Juma Hassan", Role: entity.RoleBuyer},
	)
	productRepo := newFakeProductRepo(
		&entity.Product{ID: "grapes-1", SellerID: "seller-1", Title: "Sweet Red Grapes", ImageURL: "https://cdn.example/grapes-1.jpg"},
	)
	messageRepo := newFakeMessageRepo()

	uc := NewChatUseCase(messageRepo, userRepo, productRepo, ws.NewManager())
	return uc, messageRepo, userRepo, productRepo
}

func TestSendMessageStoresAndReturnsMessage(t *testing.T) {
	uc, messageRepo, _, _ := newChatFixture(t)

	resp, err := uc.SendMessage(context.Background(), "buyer-1", SendMessageInput{
		ReceiverID: "seller-1",
		ProductID:  "grapes-1",
		Content:    "Bei gani kwa kilo?",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Message.ID)
	assert.Equal(t, "buyer-1", resp.Message.SenderID)
	assert.Equal(t, "seller-1", resp.Message.ReceiverID)
	assert.Equal(t, "grapes-1", resp.Message.ProductID)
	assert.Equal(t, "Juma Hassan", resp.Sender.FullName)
	assert.Equal(t, 1, messageRepo.createN)
}

func TestSendMessageEmptyContentFailsBeforeAnyWrite(t *testing.T) {
	uc, messageRepo, _, _ := newChatFixture(t)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := uc.SendMessage(context.Background(), "buyer-1", SendMessageInput{
			ReceiverID: "seller-1",
			ProductID:  "grapes-1",
			Content:    content,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, "VALIDATION_FAILED"))
	}

	assert.Equal(t, 0, messageRepo.createN)
}

func TestSendMessageTooLongFailsBeforeAnyWrite(t *testing.T) {
	uc, messageRepo, _, _ := newChatFixture(t)

	// 500 code points is the limit; multi-byte runes count once.
	ok := strings.Repeat("ä", MaxMessageLength)
	tooLong := strings.Repeat("ä", MaxMessageLength+1)

	_, err := uc.SendMessage(context.Background(), "buyer-1", SendMessageInput{
		ReceiverID: "seller-1",
		ProductID:  "grapes-1",
		Content:    tooLong,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_FAILED"))
	assert.Equal(t, 0, messageRepo.createN)

	_, err = uc.SendMessage(context.Background(), "buyer-1", SendMessageInput{
		ReceiverID: "seller-1",
		ProductID:  "grapes-1",
		Content:    ok,
	})
	require.NoError(t, err)
}

func TestSendMessageToSelfRejected(t *testing.T) {
	uc, messageRepo, _, _ := newChatFixture(t)

	_, err := uc.SendMessage(context.Background(), "buyer-1", SendMessageInput{
		ReceiverID: "buyer-1",
		ProductID:  "grapes-1",
		Content:    "talking to myself",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_FAILED"))
	assert.Equal(t, 0, messageRepo.createN)
}

func TestSendMessageUnknownProduct(t *testing.T) {
	uc, messageRepo, _, _ := newChatFixture(t)

	_, err := uc.SendMessage(context.Background(), "buyer-1", SendMessageInput{
		ReceiverID: "seller-1",
		ProductID:  "nope",
		Content:    "hello",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
	assert.Equal(t, 0, messageRepo.createN)
}

func TestListConversationsRequiresViewer(t *testing.T) {
	uc, _, _, _ := newChatFixture(t)

	_, err := uc.ListConversations(context.Background(), "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, "UNAUTHENTICATED"))
}

func TestListConversationsPropagatesFetchFailure(t *testing.T) {
	uc, messageRepo, _, _ := newChatFixture(t)
	messageRepo.listErr = errors.RemoteFetchFailed("Failed to fetch messages", nil)

	summaries, err := uc.ListConversations(context.Background(), "buyer-1")

	// A backend failure must surface as an error, never as an empty list.
	require.Error(t, err)
	assert.True(t, errors.Is(err, "REMOTE_FETCH_FAILED"))
	assert.Nil(t, summaries)
}

func TestListConversationsEnrichesSummaries(t *testing.T) {
	uc, messageRepo, _, _ := newChatFixture(t)

	messageRepo.messages = []*entity.Message{
		{ID: "m1", SenderID: "buyer-1", ReceiverID: "seller-1", ProductID: "grapes-1", Content: "Mzigo upo?", CreatedAt: time.Now()},
	}

	summaries, err := uc.ListConversations(context.Background(), "buyer-1")

	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Asha Mwalimu", summaries[0].CounterpartyName)
	assert.Equal(t, "Sweet Red Grapes", summaries[0].ProductTitle)
	assert.Equal(t, "https://cdn.example/grapes-1.jpg", summaries[0].ProductImage)
	assert.Equal(t, "Mzigo upo?", summaries[0].LastMessage)
}

func TestGetThreadMessagesDeletedProduct(t *testing.T) {
	uc, messageRepo, _, productRepo := newChatFixture(t)

	messageRepo.messages = []*entity.Message{
		{ID: "m1", SenderID: "buyer-1", ReceiverID: "seller-1", ProductID: "grapes-1", Content: "hi", CreatedAt: time.Now()},
	}
	require.NoError(t, productRepo.Delete(context.Background(), "grapes-1"))

	_, err := uc.GetThreadMessages(context.Background(), "buyer-1", "seller-1", "grapes-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestGetThreadMessagesAttachesSenders(t *testing.T) {
	uc, messageRepo, _, _ := newChatFixture(t)

	now := time.Now()
	messageRepo.messages = []*entity.Message{
		{ID: "m1", SenderID: "buyer-1", ReceiverID: "seller-1", ProductID: "grapes-1", Content: "hi", CreatedAt: now},
		{ID: "m2", SenderID: "seller-1", ReceiverID: "buyer-1", ProductID: "grapes-1", Content: "karibu", CreatedAt: now.Add(time.Minute)},
	}

	responses, err := uc.GetThreadMessages(context.Background(), "buyer-1", "seller-1", "grapes-1")

	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Equal(t, "Juma Hassan", responses[0].Sender.FullName)
	assert.Equal(t, "Asha Mwalimu", responses[1].Sender.FullName)
}
