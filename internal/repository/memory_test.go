package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"catalog/internal/domain"
	"catalog/internal/metrics"
)

func TestMemoryStore_ProductCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	p := store.Create(ctx, domain.Product{Name: "Widget", Price: 9.99})
	if p.ID != 1 {
		t.Fatalf("expected id 1, got %d", p.ID)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil || got.Name != "Widget" || got.Price != 9.99 {
		t.Fatalf("get: %+v %v", got, err)
	}

	upd, err := store.Update(ctx, domain.Product{ID: p.ID, Name: "Gadget", Description: "new", Price: 12})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.ID != p.ID {
		t.Fatalf("update changed id: %d", upd.ID)
	}
	got, _ = store.GetByID(ctx, p.ID)
	if got.Name != "Gadget" || got.Description != "new" || got.Price != 12 {
		t.Fatalf("update not applied: %+v", got)
	}

	store.Delete(ctx, p.ID)
	if _, err := store.GetByID(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStore_IDsMonotonic(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var last int64
	for i := 0; i < 10; i++ {
		p := store.Create(ctx, domain.Product{Name: "p", Price: 1})
		if p.ID <= last {
			t.Fatalf("id %d not greater than %d", p.ID, last)
		}
		last = p.ID
		if i%3 == 0 {
			store.Delete(ctx, p.ID)
		}
	}
	if store.NextID() != last+1 {
		t.Fatalf("next id %d, last issued %d", store.NextID(), last)
	}
}

func TestMemoryStore_DeleteMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Create(ctx, domain.Product{Name: "A", Price: 1})

	store.Delete(ctx, 42)
	if n := len(store.List(ctx)); n != 1 {
		t.Fatalf("expected 1 product, got %d", n)
	}
}

func TestMemoryStore_UpdateMissing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Create(ctx, domain.Product{Name: "A", Price: 1})

	p, err := store.Update(ctx, domain.Product{ID: 7, Name: "B", Price: 2})
	if !errors.Is(err, ErrNotFound) || p != nil {
		t.Fatalf("expected not found, got %+v %v", p, err)
	}
	list := store.List(ctx)
	if len(list) != 1 || list[0].Name != "A" {
		t.Fatalf("state changed: %+v", list)
	}
}

func TestMemoryStore_DeleteFirstKeepsSecond(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	first := store.Create(ctx, domain.Product{Name: "A", Price: 1})
	second := store.Create(ctx, domain.Product{Name: "B", Price: 2})

	store.Delete(ctx, first.ID)

	list := store.List(ctx)
	if len(list) != 1 || list[0] != second {
		t.Fatalf("expected only second, got %+v", list)
	}
	if _, err := store.GetByID(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStore_ListIsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Create(ctx, domain.Product{Name: "A", Price: 1})
	store.Create(ctx, domain.Product{Name: "B", Price: 2})

	list := store.List(ctx)
	list[0].Name = "mutated"
	list[1] = domain.Product{}

	again := store.List(ctx)
	if len(again) != 2 || again[0].Name != "A" || again[1].Name != "B" {
		t.Fatalf("internal state leaked: %+v", again)
	}
}

func TestMemoryStore_AcceptsNonPositivePrice(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	zero := store.Create(ctx, domain.Product{Name: "free", Price: 0})
	neg := store.Create(ctx, domain.Product{Name: "refund", Price: -5})
	if zero.Price != 0 || neg.Price != -5 {
		t.Fatalf("prices rewritten: %v %v", zero.Price, neg.Price)
	}
	if n := len(store.List(ctx)); n != 2 {
		t.Fatalf("expected 2 products, got %d", n)
	}
}

func TestInstrumentedStore_CountsOperations(t *testing.T) {
	ctx := context.Background()
	m := metrics.New()
	store := NewInstrumentedStore(NewMemoryStore(), m)

	p := store.Create(ctx, domain.Product{Name: "A", Price: 1})
	store.Create(ctx, domain.Product{Name: "B", Price: 2})
	if _, err := store.GetByID(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	store.Delete(ctx, p.ID)
	store.Delete(ctx, p.ID)

	if v := testutil.ToFloat64(m.CatalogOperations.WithLabelValues("create", "success")); v != 2 {
		t.Fatalf("create count %v", v)
	}
	if v := testutil.ToFloat64(m.CatalogOperations.WithLabelValues("get", "not_found")); v != 1 {
		t.Fatalf("get miss count %v", v)
	}
	if v := testutil.ToFloat64(m.CatalogOperations.WithLabelValues("delete", "not_found")); v != 1 {
		t.Fatalf("delete miss count %v", v)
	}
	if v := testutil.ToFloat64(m.CatalogProducts); v != 1 {
		t.Fatalf("products gauge %v", v)
	}

	store.Forget(ctx)
	if v := testutil.ToFloat64(m.CatalogProducts); v != 0 {
		t.Fatalf("products gauge after forget %v", v)
	}
}
