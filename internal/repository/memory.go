package repository

import (
	"context"
	"sync"

	"catalog/internal/domain"
)

// MemoryStore in-memory каталог: упорядоченный список и монотонный счётчик id
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	products []domain.Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// Ensure interfaces
var _ ProductRepository = (*MemoryStore)(nil)

func (m *MemoryStore) Create(_ context.Context, p domain.Product) domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextID
	m.nextID++
	m.products = append(m.products, p)
	return p
}

func (m *MemoryStore) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	// return copy
	cp := m.products[i]
	return &cp, nil
}

// Update заменяет запись целиком, id сохраняется
func (m *MemoryStore) Update(_ context.Context, p domain.Product) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(p.ID)
	if i < 0 {
		return nil, ErrNotFound
	}
	m.products[i] = domain.Product{ID: p.ID, Name: p.Name, Description: p.Description, Price: p.Price}
	cp := m.products[i]
	return &cp, nil
}

func (m *MemoryStore) Delete(_ context.Context, id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return
	}
	m.products = append(m.products[:i], m.products[i+1:]...)
}

// List возвращает снимок в порядке добавления
func (m *MemoryStore) List(_ context.Context) []domain.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Product, len(m.products))
	copy(out, m.products)
	return out
}

// NextID id, который получит следующий созданный товар
func (m *MemoryStore) NextID() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nextID
}

func (m *MemoryStore) indexOf(id int64) int {
	for i, p := range m.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
