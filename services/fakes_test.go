package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"storefront/models"
	"storefront/repositories"
)

// memCartStore round-trips snapshots through JSON like the real stores do.
type memCartStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	saves   int
	saveErr error
	loadErr error

	// when set, the first Save signals started and waits for release
	started chan struct{}
	release chan struct{}
	blocked bool
}

func newMemCartStore() *memCartStore {
	return &memCartStore{blobs: make(map[string][]byte)}
}

func (s *memCartStore) Load(ctx context.Context, sessionID string) (*models.CartSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	data, ok := s.blobs[sessionID]
	if !ok {
		return nil, nil
	}
	var snap models.CartSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", repositories.ErrCorruptCart, err)
	}
	return &snap, nil
}

func (s *memCartStore) Save(ctx context.Context, sessionID string, snapshot models.CartSnapshot) error {
	s.mu.Lock()
	if s.release != nil && !s.blocked {
		s.blocked = true
		s.mu.Unlock()
		close(s.started)
		<-s.release
		s.mu.Lock()
	}
	defer s.mu.Unlock()

	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	s.blobs[sessionID] = data
	return nil
}

func (s *memCartStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, sessionID)
	return nil
}

func (s *memCartStore) put(sessionID string, snapshot models.CartSnapshot) {
	data, _ := json.Marshal(snapshot)
	s.mu.Lock()
	s.blobs[sessionID] = data
	s.mu.Unlock()
}

func (s *memCartStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// memReviewStore gives each InTx a private copy of the data and publishes it
// only when fn succeeds, serializing transactions with a mutex.
type memReviewStore struct {
	mu       sync.Mutex
	products map[int]models.RatingSummary
	reviews  []models.Review
	calls    int
	abortErr error
}

func newMemReviewStore(productIDs ...int) *memReviewStore {
	s := &memReviewStore{products: make(map[int]models.RatingSummary)}
	for _, id := range productIDs {
		s.products[id] = models.RatingSummary{}
	}
	return s
}

func (s *memReviewStore) InTx(ctx context.Context, fn func(ctx context.Context, tx repositories.ReviewTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.abortErr != nil {
		return s.abortErr
	}

	tx := &memReviewTx{products: make(map[int]models.RatingSummary), reviews: append([]models.Review{}, s.reviews...)}
	for id, sum := range s.products {
		tx.products[id] = sum
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.products = tx.products
	s.reviews = tx.reviews
	return nil
}

func (s *memReviewStore) ListByProduct(ctx context.Context, productID int) ([]models.Review, models.RatingSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, ok := s.products[productID]
	if !ok {
		return nil, sum, repositories.ErrNotFound
	}
	var out []models.Review
	for _, r := range s.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, sum, nil
}

func (s *memReviewStore) summary(productID int) models.RatingSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID]
}

func (s *memReviewStore) seed(productID int, ratings ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range ratings {
		s.reviews = append(s.reviews, models.Review{ProductID: productID, AuthorID: 1000 + i, Rating: r})
	}
	all := []int{}
	for _, r := range s.reviews {
		if r.ProductID == productID {
			all = append(all, r.Rating)
		}
	}
	s.products[productID] = ComputeSummary(all)
}

type memReviewTx struct {
	products map[int]models.RatingSummary
	reviews  []models.Review
}

func (t *memReviewTx) LockProduct(ctx context.Context, productID int) error {
	if _, ok := t.products[productID]; !ok {
		return repositories.ErrNotFound
	}
	return nil
}

func (t *memReviewTx) HasReview(ctx context.Context, productID, authorID int) (bool, error) {
	for _, r := range t.reviews {
		if r.ProductID == productID && r.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (t *memReviewTx) InsertReview(ctx context.Context, review *models.Review) error {
	t.reviews = append(t.reviews, *review)
	return nil
}

func (t *memReviewTx) Ratings(ctx context.Context, productID int) ([]int, error) {
	var out []int
	for _, r := range t.reviews {
		if r.ProductID == productID {
			out = append(out, r.Rating)
		}
	}
	return out, nil
}

func (t *memReviewTx) SetRatingSummary(ctx context.Context, productID int, summary models.RatingSummary) error {
	t.products[productID] = summary
	return nil
}

type publishedEvent struct {
	topic   string
	key     string
	payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, key: key, payload: payload})
	return p.err
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.topic
	}
	return out
}

type memOrderStore struct {
	mu       sync.Mutex
	placed   []models.Order
	placeErr error
	statuses map[int]string
	// runs inside PlaceOrder before the order is recorded
	onPlace func()
}

func (s *memOrderStore) PlaceOrder(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.placeErr != nil {
		return s.placeErr
	}
	if s.onPlace != nil {
		s.onPlace()
	}
	order.ID = len(s.placed) + 1
	s.placed = append(s.placed, *order)
	return nil
}

func (s *memOrderStore) GetByUser(ctx context.Context, userID, limit, offset int) ([]models.Order, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.placed {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, len(out), nil
}

func (s *memOrderStore) GetAll(ctx context.Context, status string, limit, offset int) ([]models.Order, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.placed, len(s.placed), nil
}

func (s *memOrderStore) UpdateStatus(ctx context.Context, id int, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || id > len(s.placed) {
		return repositories.ErrNotFound
	}
	s.placed[id-1].Status = status
	return nil
}

type recordingMailer struct {
	sent []string
	err  error
}

func (m *recordingMailer) SendOrderConfirmation(order *models.Order) error {
	m.sent = append(m.sent, order.OrderNumber)
	return m.err
}

type memProductStore struct {
	products   map[int]*models.Product
	categories []models.Category
	getAll     int
	createErr  error
}

func newMemProductStore(products ...*models.Product) *memProductStore {
	s := &memProductStore{products: make(map[int]*models.Product)}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *memProductStore) GetAll(ctx context.Context, limit, offset int) ([]models.Product, int, error) {
	s.getAll++
	ids := make([]int, 0, len(s.products))
	for id, p := range s.products {
		if p.IsActive {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	var out []models.Product
	for i, id := range ids {
		if i >= offset && len(out) < limit {
			out = append(out, *s.products[id])
		}
	}
	return out, len(ids), nil
}

func (s *memProductStore) GetByID(ctx context.Context, id int) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memProductStore) Create(ctx context.Context, product *models.Product) error {
	if s.createErr != nil {
		return s.createErr
	}
	product.ID = len(s.products) + 1
	cp := *product
	s.products[product.ID] = &cp
	return nil
}

func (s *memProductStore) Update(ctx context.Context, product *models.Product) error {
	if _, ok := s.products[product.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *product
	s.products[product.ID] = &cp
	return nil
}

func (s *memProductStore) Delete(ctx context.Context, id int) error {
	p, ok := s.products[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p.IsActive = false
	return nil
}

func (s *memProductStore) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories, nil
}

func (s *memProductStore) CreateCategory(ctx context.Context, cat *models.Category) error {
	for _, c := range s.categories {
		if c.Name == cat.Name {
			return repositories.ErrDuplicate
		}
	}
	cat.ID = len(s.categories) + 1
	cat.IsActive = true
	s.categories = append(s.categories, *cat)
	return nil
}

func (s *memProductStore) DeleteCategory(ctx context.Context, id int) error {
	return repositories.ErrNotFound
}

type memListCache struct {
	pages       map[[2]int][]byte
	invalidated int
}

func newMemListCache() *memListCache {
	return &memListCache{pages: make(map[[2]int][]byte)}
}

func (c *memListCache) Get(ctx context.Context, page, limit int) ([]byte, bool) {
	data, ok := c.pages[[2]int{page, limit}]
	return data, ok
}

func (c *memListCache) Set(ctx context.Context, page, limit int, data []byte) {
	c.pages[[2]int{page, limit}] = data
}

func (c *memListCache) Invalidate(ctx context.Context) {
	c.invalidated++
	c.pages = make(map[[2]int][]byte)
}

type memImageStore struct {
	uploaded []string
	deleted  []string
}

func (s *memImageStore) Upload(ctx context.Context, file io.Reader, filename string) (string, string, error) {
	if _, err := io.ReadAll(file); err != nil {
		return "", "", err
	}
	id := "products/" + filename
	s.uploaded = append(s.uploaded, id)
	return "https://img.example.com/" + id, id, nil
}

func (s *memImageStore) Delete(ctx context.Context, publicID string) error {
	s.deleted = append(s.deleted, publicID)
	return nil
}

type memUserStore struct {
	users []models.User
}

func (s *memUserStore) Create(ctx context.Context, user *models.User) error {
	for _, u := range s.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	user.ID = len(s.users) + 1
	s.users = append(s.users, *user)
	return nil
}

func (s *memUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *memUserStore) FindByID(ctx context.Context, id int) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

var errStoreDown = errors.New("store down")
