package catalog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemStore keeps products in a mutex-guarded map. The id counter only moves
// forward, so listing by ascending id equals insertion order.
type MemStore struct {
	mu     sync.RWMutex
	m      map[int64]Product
	nextID int64
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[int64]Product{}}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Create(ctx context.Context, fields ProductFields) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	p := Product{
		ID:          s.nextID,
		Name:        fields.Name,
		Description: fields.Description,
		Price:       fields.Price,
		InStock:     fields.InStock,
		CreatedAt:   time.Now().UTC(),
	}
	s.m[p.ID] = p
	return p, nil
}

func (s *MemStore) Get(ctx context.Context, id int64) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (s *MemStore) Update(ctx context.Context, id int64, patch ProductPatch) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.m[id]
	if !ok {
		return Product{}, ErrNotFound
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.InStock != nil {
		p.InStock = *patch.InStock
	}

	s.m[id] = p
	return p, nil
}

func (s *MemStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[id]; !ok {
		return ErrNotFound
	}
	delete(s.m, id)
	return nil
}

func (s *MemStore) List(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) SetImage(ctx context.Context, id int64, url string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.m[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	p.ImageURL = &url
	s.m[id] = p
	return p, nil
}

// SeedDemo loads the canonical demo inventory. Existing ids are preserved
// and the allocator advances past the highest seeded id.
func (s *MemStore) SeedDemo() {
	seeded := time.Date(2025, time.December, 14, 10, 0, 0, 0, time.UTC)

	demo := []Product{
		{ID: 1, Name: "Wireless Mouse", Description: strptr("Ergonomic wireless mouse with USB receiver"), Price: 29.99, InStock: true, CreatedAt: seeded},
		{ID: 2, Name: "Mechanical Keyboard", Description: strptr("RGB mechanical keyboard with blue switches"), Price: 89.99, InStock: true, CreatedAt: seeded},
		{ID: 3, Name: "USB-C Hub", Description: strptr("7-in-1 USB-C hub with HDMI and SD card reader"), Price: 45.50, InStock: false, CreatedAt: seeded},
		{ID: 4, Name: "Laptop Stand", Description: strptr("Adjustable aluminum laptop stand"), Price: 39.99, InStock: true, CreatedAt: seeded},
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range demo {
		s.m[p.ID] = p
		if p.ID > s.nextID {
			s.nextID = p.ID
		}
	}
}

func strptr(v string) *string { return &v }
