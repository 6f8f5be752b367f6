package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"zabibufresh/internal/domain/entity"
	"zabibufresh/pkg/errors"
)

// In-memory doubles for the repository and infrastructure interfaces. Each
// fake records call counts and can be told to fail, so tests can assert both
// outcomes and side effects.

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[string]*entity.User
	createErr error
	getErr    error
	createN   int
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createN++
	if r.createErr != nil {
		return r.createErr
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func (r *fakeUserRepo) GetByPhone(ctx context.Context, phone string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return errors.NotFound("User", nil)
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*entity.Product
	nextID   int
	createN  int
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[string]*entity.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) Create(ctx context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createN++
	r.nextID++
	if product.ID == "" {
		product.ID = fmt.Sprintf("product-%d", r.nextID)
	}
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return nil, errors.NotFound("Product", nil)
	}
	return product, nil
}

func (r *fakeProductRepo) List(ctx context.Context, filter map[string]interface{}, sort string, limit, offset int) ([]*entity.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.products {
		if loc, ok := filter["location"]; ok && p.Location != loc {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; !ok {
		return errors.NotFound("Product", nil)
	}
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return errors.NotFound("Product", nil)
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) SearchByTitle(ctx context.Context, query string, filter map[string]interface{}, limit, offset int) ([]*entity.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.products {
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) ListBySellerID(ctx context.Context, sellerID string, limit, offset int) ([]*entity.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.products {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

type fakeMessageRepo struct {
	mu        sync.Mutex
	messages  []*entity.Message
	nextID    int
	createN   int
	createErr error
	listErr   error
}

func newFakeMessageRepo(messages ...*entity.Message) *fakeMessageRepo {
	return &fakeMessageRepo{messages: messages}
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createN++
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	if message.ID == "" {
		message.ID = fmt.Sprintf("msg-%03d", r.nextID)
	}
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeMessageRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*entity.Message
	for _, m := range r.messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) ListThread(ctx context.Context, userA, userB, productID string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*entity.Message
	for _, m := range r.messages {
		if m.ProductID != productID {
			continue
		}
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeFileMetadataRepo struct {
	mu      sync.Mutex
	byURL   map[string]*entity.FileMetadata
	deleted []string
}

func newFakeFileMetadataRepo() *fakeFileMetadataRepo {
	return &fakeFileMetadataRepo{byURL: make(map[string]*entity.FileMetadata)}
}

func (r *fakeFileMetadataRepo) Create(ctx context.Context, metadata *entity.FileMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byURL[metadata.URL] = metadata
	return nil
}

func (r *fakeFileMetadataRepo) GetByID(ctx context.Context, id string) (*entity.FileMetadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.byURL {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, errors.NotFound("File metadata", nil)
}

func (r *fakeFileMetadataRepo) GetByURL(ctx context.Context, url string) (*entity.FileMetadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byURL[url]
	if !ok {
		return nil, errors.NotFound("File metadata", nil)
	}
	return m, nil
}

func (r *fakeFileMetadataRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
	for url, m := range r.byURL {
		if m.ID == id {
			delete(r.byURL, url)
			return nil
		}
	}
	return errors.NotFound("File metadata", nil)
}

type fakeFileStorage struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (s *fakeFileStorage) DeleteFile(ctx context.Context, fileURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, fileURL)
	return nil
}

type fakeAuthClient struct {
	mu          sync.Mutex
	nextUID     string
	createErr   error
	signInErr   error
	deleteErr   error
	deletedUIDs []string
	tokenUIDs   map[string]string
}

func newFakeAuthClient(uid string) *fakeAuthClient {
	return &fakeAuthClient{
		nextUID:   uid,
		tokenUIDs: map[string]string{"id-token-" + uid: uid},
	}
}

func (a *fakeAuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	if a.createErr != nil {
		return "", a.createErr
	}
	return a.nextUID, nil
}

func (a *fakeAuthClient) DeleteUser(ctx context.Context, uid string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.deleteErr != nil {
		return a.deleteErr
	}
	a.deletedUIDs = append(a.deletedUIDs, uid)
	return nil
}

func (a *fakeAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	uid, ok := a.tokenUIDs[token]
	if !ok {
		return "", errors.Unauthenticated("Invalid token", nil)
	}
	return uid, nil
}

func (a *fakeAuthClient) SignInWithEmailPassword(email, password string) (string, string, error) {
	if a.signInErr != nil {
		return "", "", a.signInErr
	}
	return "id-token-" + a.nextUID, "refresh-token-" + a.nextUID, nil
}

func (a *fakeAuthClient) RefreshIdToken(refreshToken string) (string, string, error) {
	return "id-token-" + a.nextUID, "refresh-token-" + a.nextUID, nil
}
