package policy

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/accordfamily/accord-backend/errors"
	"github.com/accordfamily/accord-backend/internal/domain/entities"
)

type fakePolicyRepo struct {
	policies []*entities.Policy
}

func (r *fakePolicyRepo) Create(_ context.Context, policy *entities.Policy) error {
	for _, existing := range r.policies {
		existing.IsActive = false
	}
	if policy.ID == uuid.Nil {
		policy.ID = uuid.New()
	}
	policy.IsActive = true
	r.policies = append(r.policies, policy)
	return nil
}

func (r *fakePolicyRepo) FindActive(_ context.Context) (*entities.Policy, error) {
	for i := len(r.policies) - 1; i >= 0; i-- {
		if r.policies[i].IsActive {
			return r.policies[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeStore struct {
	objects   map[string]string
	uploadErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string]string)}
}

func (s *fakeStore) UploadText(_ context.Context, objectName, content string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.objects[objectName] = content
	return nil
}

func (s *fakeStore) GetDocumentURL(_ context.Context, objectName string, _ time.Duration) (string, error) {
	if _, ok := s.objects[objectName]; !ok {
		return "", errors.New("no such object")
	}
	return "https://storage.local/" + objectName, nil
}

type fakeCache struct {
	text        string
	has         bool
	sets        int
	invalidates int
}

func (c *fakeCache) Get(_ context.Context) (string, bool, error) {
	return c.text, c.has, nil
}

func (c *fakeCache) Set(_ context.Context, text string) error {
	c.text = text
	c.has = true
	c.sets++
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context) error {
	c.has = false
	c.invalidates++
	return nil
}

func newTestService(repo *fakePolicyRepo, store *fakeStore, cache *fakeCache) *Service {
	return NewService(repo, store, cache, zap.NewNop())
}

func TestUpload_ArchivesAndReplacesActiveOrder(t *testing.T) {
	repo := &fakePolicyRepo{}
	store := newFakeStore()
	cache := &fakeCache{}
	service := newTestService(repo, store, cache)

	uploader := uuid.New()
	first, err := service.Upload(context.Background(), UploadInput{
		OrdersText:      "  No contact between 9pm and 7am.  ",
		UploadedByID:    uploader,
		UploadedByEmail: "father@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "No contact between 9pm and 7am.", first.OrdersText)
	require.NotNil(t, first.ObjectKey)
	assert.True(t, strings.HasPrefix(*first.ObjectKey, "orders/"))
	assert.Equal(t, first.OrdersText, store.objects[*first.ObjectKey])
	assert.Equal(t, 1, cache.invalidates)

	second, err := service.Upload(context.Background(), UploadInput{
		OrdersText:      "Exchange through school only.",
		UploadedByID:    uploader,
		UploadedByEmail: "father@example.com",
	})
	require.NoError(t, err)

	active, err := repo.FindActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.False(t, first.IsActive)
}

func TestUpload_EmptyTextRejected(t *testing.T) {
	service := newTestService(&fakePolicyRepo{}, newFakeStore(), &fakeCache{})

	_, err := service.Upload(context.Background(), UploadInput{OrdersText: "   "})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorCode_VALIDATION_FAILED, apperrors.CodeOf(err))
}

func TestUpload_StorageFailureAborts(t *testing.T) {
	repo := &fakePolicyRepo{}
	store := newFakeStore()
	store.uploadErr = errors.New("bucket unavailable")
	service := newTestService(repo, store, &fakeCache{})

	_, err := service.Upload(context.Background(), UploadInput{OrdersText: "orders"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorCode_INTEGRATION_STORAGE_FAILED, apperrors.CodeOf(err))
	assert.Empty(t, repo.policies, "nothing persisted when archival fails")
}

func TestActiveOrders_ReadThroughCache(t *testing.T) {
	repo := &fakePolicyRepo{}
	cache := &fakeCache{}
	service := newTestService(repo, newFakeStore(), cache)

	key := "orders/2025/01/doc.txt"
	require.NoError(t, repo.Create(context.Background(), &entities.Policy{
		OrdersText: "supervised handover",
		ObjectKey:  &key,
	}))

	text, err := service.ActiveOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "supervised handover", text)
	assert.Equal(t, 1, cache.sets)

	// Second read is served from cache.
	text, err = service.ActiveOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "supervised handover", text)
	assert.Equal(t, 1, cache.sets)
}

func TestActiveOrders_NoOrderUploadedYet(t *testing.T) {
	service := newTestService(&fakePolicyRepo{}, newFakeStore(), &fakeCache{})

	text, err := service.ActiveOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestActiveDocumentURL(t *testing.T) {
	repo := &fakePolicyRepo{}
	store := newFakeStore()
	service := newTestService(repo, store, &fakeCache{})

	_, err := service.ActiveDocumentURL(context.Background(), time.Minute)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorCode_NOT_FOUND, apperrors.CodeOf(err))

	uploaded, err := service.Upload(context.Background(), UploadInput{
		OrdersText:      "orders",
		UploadedByID:    uuid.New(),
		UploadedByEmail: "mother@example.com",
	})
	require.NoError(t, err)

	url, err := service.ActiveDocumentURL(context.Background(), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://storage.local/"+*uploaded.ObjectKey, url)
}
