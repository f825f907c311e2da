package messaging

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/accordfamily/accord-backend/internal/infrastructure/notification"
	"github.com/accordfamily/accord-backend/internal/usecase/moderation"
	"github.com/accordfamily/accord-backend/pkg/config"
)

type fakeMessageRepo struct {
	mu            sync.Mutex
	conversations map[uuid.UUID]*entities.Conversation
	messages      []*entities.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{conversations: make(map[uuid.UUID]*entities.Conversation)}
}

func (r *fakeMessageRepo) CreateConversation(_ context.Context, c *entities.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.conversations[c.ID] = c
	return nil
}

func (r *fakeMessageRepo) FindConversationByID(_ context.Context, id uuid.UUID) (*entities.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conversations[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMessageRepo) ListConversations(_ context.Context) ([]*entities.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entities.Conversation, 0, len(r.conversations))
	for _, c := range r.conversations {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeMessageRepo) CreateWithVariants(_ context.Context, m *entities.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.messages = append(r.messages, m)
	return nil
}

func (r *fakeMessageRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMessageRepo) ListByConversation(_ context.Context, conversationID uuid.UUID, _, _ int) ([]*entities.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, id uuid.UUID, readerEmail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			m.IsRead = true
			m.ReadBy = &readerEmail
		}
	}
	return nil
}

func (r *fakeMessageRepo) CountUnread(_ context.Context, conversationID uuid.UUID, role entities.ParentalRole) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, m := range r.messages {
		if m.ConversationID == conversationID && m.RecipientRole == role && !m.IsRead {
			count++
		}
	}
	return count, nil
}

type fakeUserRepo struct {
	byEmail map[string]*entities.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *entities.User) error {
	r.byEmail[u.Email] = u
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, _ *entities.User) error { return nil }
func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID) error { return nil }

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []*entities.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *entities.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, n)
	return nil
}

func (r *fakeNotificationRepo) ListFor(_ context.Context, _ string, _, _ int) ([]*entities.Notification, error) {
	return nil, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, _ uuid.UUID) error { return nil }

type fakeNormalizer struct {
	result *moderation.Result
	err    error
}

func (n *fakeNormalizer) Normalize(_ context.Context, _, _, _, _, _, _ string) (*moderation.Result, error) {
	return n.result, n.err
}

type fixedOrders string

func (o fixedOrders) ActiveOrders(_ context.Context) (string, error) { return string(o), nil }

func testUsers() (*entities.User, *entities.User) {
	motherEmail := "mother@example.com"
	fatherEmail := "father@example.com"
	father := &entities.User{
		ID:               uuid.New(),
		Email:            fatherEmail,
		Name:             "David",
		ParentalRole:     entities.ParentalRoleFather,
		Language:         "en",
		OtherParentEmail: &motherEmail,
	}
	mother := &entities.User{
		ID:               uuid.New(),
		Email:            motherEmail,
		Name:             "Mei",
		ParentalRole:     entities.ParentalRoleMother,
		Language:         "zh",
		OtherParentEmail: &fatherEmail,
	}
	return father, mother
}

func newTestService(msgRepo *fakeMessageRepo, userRepo *fakeUserRepo, normalizer Normalizer, notifRepo *fakeNotificationRepo) *Service {
	logger := zap.NewNop()
	dispatcher := notification.NewDispatcher(&config.NotificationConfig{Enabled: true}, notifRepo, logger)
	return NewService(msgRepo, userRepo, normalizer, fixedOrders("no contact after 9pm"), dispatcher, logger)
}

func TestSend_CompliantCrossLanguage(t *testing.T) {
	father, mother := testUsers()
	msgRepo := newFakeMessageRepo()
	userRepo := &fakeUserRepo{byEmail: map[string]*entities.User{mother.Email: mother}}
	notifRepo := &fakeNotificationRepo{}
	normalizer := &fakeNormalizer{result: &moderation.Result{
		NeedsRewrite:     false,
		SenderVersion:    "pickup at five",
		RecipientVersion: "五点接孩子",
	}}

	svc := newTestService(msgRepo, userRepo, normalizer, notifRepo)
	conv, err := svc.CreateConversation(context.Background(), "Pickups")
	require.NoError(t, err)

	message, err := svc.Send(context.Background(), SendInput{
		ConversationID: conv.ID,
		Sender:         father,
		Text:           "pickup at five",
	})
	require.NoError(t, err)

	assert.False(t, message.NeedsRewrite)
	assert.Equal(t, "pickup at five", message.OriginalText)
	assert.Equal(t, entities.ParentalRoleMother, message.RecipientRole)
	assert.Equal(t, "zh", message.RecipientLanguage)
	require.Len(t, message.Variants, 2)
	assert.Equal(t, "五点接孩子", message.TextFor("zh"))
	assert.NotEmpty(t, message.MessageHash)

	require.Len(t, notifRepo.created, 1)
	assert.Equal(t, mother.Email, notifRepo.created[0].RecipientEmail)
	assert.Equal(t, entities.NotificationNewMessage, notifRepo.created[0].Type)
}

func TestSend_SameLanguageStoresSingleVariant(t *testing.T) {
	father, mother := testUsers()
	mother.Language = "en"
	msgRepo := newFakeMessageRepo()
	userRepo := &fakeUserRepo{byEmail: map[string]*entities.User{mother.Email: mother}}
	normalizer := &fakeNormalizer{result: &moderation.Result{
		SenderVersion:    "thanks",
		RecipientVersion: "thanks",
	}}

	svc := newTestService(msgRepo, userRepo, normalizer, &fakeNotificationRepo{})
	conv, err := svc.CreateConversation(context.Background(), "General")
	require.NoError(t, err)

	message, err := svc.Send(context.Background(), SendInput{
		ConversationID: conv.ID,
		Sender:         father,
		Text:           "thanks",
	})
	require.NoError(t, err)

	require.Len(t, message.Variants, 1)
	assert.Equal(t, "thanks", message.TextFor("en"))
	assert.Equal(t, "thanks", message.TextFor("zh"), "falls back to the only variant")
}

func TestSend_RewrittenMessageKeepsOriginalForSender(t *testing.T) {
	father, mother := testUsers()
	msgRepo := newFakeMessageRepo()
	userRepo := &fakeUserRepo{byEmail: map[string]*entities.User{mother.Email: mother}}
	normalizer := &fakeNormalizer{result: &moderation.Result{
		NeedsRewrite:     true,
		SenderVersion:    "Could we please talk about the schedule?",
		RecipientVersion: "我们能谈谈日程安排吗？",
	}}

	svc := newTestService(msgRepo, userRepo, normalizer, &fakeNotificationRepo{})
	conv, err := svc.CreateConversation(context.Background(), "Schedule")
	require.NoError(t, err)

	message, err := svc.Send(context.Background(), SendInput{
		ConversationID: conv.ID,
		Sender:         father,
		Text:           "answer me about the schedule NOW",
	})
	require.NoError(t, err)

	assert.True(t, message.NeedsRewrite)
	assert.Equal(t, "answer me about the schedule NOW", message.OriginalText)

	senderViews, err := svc.List(context.Background(), conv.ID, father, 0, 0)
	require.NoError(t, err)
	require.Len(t, senderViews, 1)
	assert.Equal(t, "Could we please talk about the schedule?", senderViews[0].Text)
	assert.Equal(t, "answer me about the schedule NOW", senderViews[0].OriginalText)

	recipientViews, err := svc.List(context.Background(), conv.ID, mother, 0, 0)
	require.NoError(t, err)
	require.Len(t, recipientViews, 1)
	assert.Equal(t, "我们能谈谈日程安排吗？", recipientViews[0].Text)
	assert.Empty(t, recipientViews[0].OriginalText, "recipient never sees the original wording")
}

func TestSend_EmptyTextRejected(t *testing.T) {
	father, mother := testUsers()
	svc := newTestService(newFakeMessageRepo(),
		&fakeUserRepo{byEmail: map[string]*entities.User{mother.Email: mother}},
		&fakeNormalizer{}, &fakeNotificationRepo{})

	_, err := svc.Send(context.Background(), SendInput{
		ConversationID: uuid.New(),
		Sender:         father,
		Text:           "   ",
	})
	require.Error(t, err)
}

func TestSend_UnknownConversationRejected(t *testing.T) {
	father, mother := testUsers()
	svc := newTestService(newFakeMessageRepo(),
		&fakeUserRepo{byEmail: map[string]*entities.User{mother.Email: mother}},
		&fakeNormalizer{result: &moderation.Result{}}, &fakeNotificationRepo{})

	_, err := svc.Send(context.Background(), SendInput{
		ConversationID: uuid.New(),
		Sender:         father,
		Text:           "hello",
	})
	require.Error(t, err)
}

func TestMarkRead_SenderCannotReadOwnMessage(t *testing.T) {
	father, mother := testUsers()
	msgRepo := newFakeMessageRepo()
	userRepo := &fakeUserRepo{byEmail: map[string]*entities.User{mother.Email: mother}}
	normalizer := &fakeNormalizer{result: &moderation.Result{
		SenderVersion: "hi", RecipientVersion: "hi",
	}}

	svc := newTestService(msgRepo, userRepo, normalizer, &fakeNotificationRepo{})
	conv, err := svc.CreateConversation(context.Background(), "General")
	require.NoError(t, err)

	message, err := svc.Send(context.Background(), SendInput{
		ConversationID: conv.ID,
		Sender:         father,
		Text:           "hi",
	})
	require.NoError(t, err)

	require.Error(t, svc.MarkRead(context.Background(), message.ID, father))
	require.NoError(t, svc.MarkRead(context.Background(), message.ID, mother))

	count, err := svc.CountUnread(context.Background(), conv.ID, mother)
	require.NoError(t, err)
	assert.Zero(t, count)
}
