package repository

import (
	"context"
	"errors"

	"catalog/internal/domain"
)

// ErrNotFound возвращается, когда товар с таким id отсутствует
var ErrNotFound = errors.New("not found")

// ProductRepository интерфейс каталога товаров.
// Create никогда не падает: проверка данных лежит на вызывающей стороне.
// Delete отсутствующего id ничего не делает и ошибкой не считается.
type ProductRepository interface {
	Create(ctx context.Context, p domain.Product) domain.Product
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id int64)
	List(ctx context.Context) []domain.Product
}
