package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"catalog/internal/dom"
	"catalog/internal/domain"
	"catalog/internal/metrics"
	"catalog/internal/repository"
	"catalog/internal/service"
	"catalog/internal/view"
	"catalog/internal/web"
)

// Поля формы, значения которых клиент присылает вместе с событием
var formFields = map[string]bool{
	"product-id":  true,
	"name":        true,
	"description": true,
	"price":       true,
}

// Event событие, пересланное браузером
type Event struct {
	Type   string
	Path   []int
	Fields map[string]string
}

// Session документ, каталог и контроллер одной вкладки браузера.
// Все события сессии выполняются по одному.
type Session struct {
	ID string

	mu       sync.Mutex
	doc      *dom.Document
	view     *view.View
	manager  *service.ProductManager
	products *repository.InstrumentedStore
	lastSeen time.Time
	closed   bool
}

// New собирает сессию на свежей копии страницы и рисует пустой список
func New(ctx context.Context, id string, m *metrics.Metrics) (*Session, error) {
	doc, err := web.NewDocument()
	if err != nil {
		return nil, err
	}
	v, err := view.New(doc)
	if err != nil {
		return nil, fmt.Errorf("bind view: %w", err)
	}
	products := repository.NewInstrumentedStore(repository.NewMemoryStore(), m)
	manager := service.NewProductManager(products, v, doc)
	if err := manager.Init(ctx); err != nil {
		return nil, fmt.Errorf("init manager: %w", err)
	}
	return &Session{
		ID:       id,
		doc:      doc,
		view:     v,
		manager:  manager,
		products: products,
		lastSeen: time.Now(),
	}, nil
}

// Dispatch переносит значения полей формы в документ и доставляет событие
// элементу по адресу. false, если адрес не указывает на элемент.
// Закрытая сессия отвечает ErrNotFound.
func (s *Session) Dispatch(ctx context.Context, ev Event) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrNotFound
	}
	s.lastSeen = time.Now()

	for id, value := range ev.Fields {
		if !formFields[id] {
			continue
		}
		if el := s.doc.ElementByID(id); el != nil {
			el.SetValue(value)
		}
	}
	target := s.doc.ElementAt(ev.Path)
	if target == nil {
		return false, nil
	}
	s.doc.Dispatch(ctx, target, ev.Type)
	return true, nil
}

// Do выполняет fn под блокировкой сессии; для закрытой сессии fn не вызывается
func (s *Session) Do(fn func(doc *dom.Document, v *view.View, m *service.ProductManager)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotFound
	}
	s.lastSeen = time.Now()
	fn(s.doc, s.view, s.manager)
	return nil
}

// Seed добавляет товары через тот же путь, что и пользователь: кнопка,
// поля формы, отправка.
func (s *Session) Seed(ctx context.Context, products []domain.Product) error {
	return s.Do(func(doc *dom.Document, v *view.View, _ *service.ProductManager) {
		for _, p := range products {
			v.AddButton().Click(ctx)
			doc.ElementByID("name").SetValue(p.Name)
			doc.ElementByID("description").SetValue(p.Description)
			doc.ElementByID("price").SetValue(p.Price.FormValue())
			v.ProductForm().Submit(ctx)
		}
	})
}

// Document полная разметка страницы
func (s *Session) Document() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.String()
}

// Body разметка содержимого body, которую клиент подставляет на место старой
func (s *Session) Body() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if body := s.doc.Body(); body != nil {
		return body.InnerHTML()
	}
	return ""
}

func (s *Session) Products(ctx context.Context) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products.List(ctx)
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// close снимает товары сессии с gauge; после этого сессия не принимает событий
func (s *Session) close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.products.Forget(ctx)
}
