package repository

import (
	"context"
	"errors"

	"catalog/internal/domain"
	"catalog/internal/metrics"
)

// InstrumentedStore считает операции каталога и держит gauge количества товаров
type InstrumentedStore struct {
	next    ProductRepository
	metrics *metrics.Metrics
}

func NewInstrumentedStore(next ProductRepository, m *metrics.Metrics) *InstrumentedStore {
	return &InstrumentedStore{next: next, metrics: m}
}

var _ ProductRepository = (*InstrumentedStore)(nil)

func (s *InstrumentedStore) Create(ctx context.Context, p domain.Product) domain.Product {
	created := s.next.Create(ctx, p)
	s.observe("create", "success")
	s.metrics.CatalogProducts.Inc()
	return created
}

func (s *InstrumentedStore) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.next.GetByID(ctx, id)
	s.observe("get", statusOf(err))
	return p, err
}

func (s *InstrumentedStore) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	updated, err := s.next.Update(ctx, p)
	s.observe("update", statusOf(err))
	return updated, err
}

func (s *InstrumentedStore) Delete(ctx context.Context, id int64) {
	// Delete не сообщает о промахе, поэтому смотрим на изменение размера
	before := len(s.next.List(ctx))
	s.next.Delete(ctx, id)
	if len(s.next.List(ctx)) < before {
		s.observe("delete", "success")
		s.metrics.CatalogProducts.Dec()
		return
	}
	s.observe("delete", "not_found")
}

func (s *InstrumentedStore) List(ctx context.Context) []domain.Product {
	list := s.next.List(ctx)
	s.observe("list", "success")
	return list
}

// Forget снимает товары сессии с gauge, когда сессия уничтожается
func (s *InstrumentedStore) Forget(ctx context.Context) {
	s.metrics.CatalogProducts.Sub(float64(len(s.next.List(ctx))))
}

func (s *InstrumentedStore) observe(op, status string) {
	s.metrics.CatalogOperations.WithLabelValues(op, status).Inc()
}

func statusOf(err error) string {
	if errors.Is(err, ErrNotFound) {
		return "not_found"
	}
	if err != nil {
		return "failed"
	}
	return "success"
}
