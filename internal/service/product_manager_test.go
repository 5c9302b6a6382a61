package service

import (
	"context"
	"errors"
	"testing"

	"catalog/internal/dom"
	"catalog/internal/domain"
	"catalog/internal/repository"
	"catalog/internal/validator"
	"catalog/internal/view"
	"catalog/internal/web"
)

type fixture struct {
	ctx   context.Context
	doc   *dom.Document
	view  *view.View
	store *repository.MemoryStore
	m     *ProductManager
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	doc, err := web.NewDocument()
	if err != nil {
		t.Fatal(err)
	}
	v, err := view.New(doc)
	if err != nil {
		t.Fatal(err)
	}
	store := repository.NewMemoryStore()
	m := NewProductManager(store, v, doc)
	if err := m.Init(ctx); err != nil {
		t.Fatal(err)
	}
	return &fixture{ctx: ctx, doc: doc, view: v, store: store, m: m}
}

func (f *fixture) byID(t *testing.T, id string) *dom.Element {
	t.Helper()
	el := f.doc.ElementByID(id)
	if el == nil {
		t.Fatalf("no #%s", id)
	}
	return el
}

func (f *fixture) fill(t *testing.T, name, description, price string) {
	t.Helper()
	f.byID(t, "name").SetValue(name)
	f.byID(t, "description").SetValue(description)
	f.byID(t, "price").SetValue(price)
}

func (f *fixture) submit(t *testing.T) *dom.Event {
	t.Helper()
	return f.byID(t, "product-form").Submit(f.ctx)
}

func (f *fixture) create(t *testing.T, name, price string) {
	t.Helper()
	f.byID(t, "add-button").Click(f.ctx)
	f.fill(t, name, "", price)
	f.submit(t)
}

func TestAddClick_OpensEmptyForm(t *testing.T) {
	f := setup(t)
	f.fill(t, "stale", "stale", "1")
	f.view.ShowErrors(map[string]string{"name": "x"})

	f.byID(t, "add-button").Click(f.ctx)

	if f.view.Title() != TitleAdd || !f.view.ModalOpen() {
		t.Fatalf("title %q open %v", f.view.Title(), f.view.ModalOpen())
	}
	if got := f.view.ReadFormFields(); got != (view.FormFields{}) {
		t.Fatalf("form not reset: %+v", got)
	}
	if len(f.view.Errors()) != 0 {
		t.Fatal("errors not cleared")
	}
	if f.m.Session() != Idle() {
		t.Fatalf("session %v", f.m.Session())
	}
}

func TestSubmit_CreatesProduct(t *testing.T) {
	f := setup(t)
	f.byID(t, "add-button").Click(f.ctx)
	f.fill(t, "Widget", "", "9.99")

	ev := f.submit(t)

	if !ev.DefaultPrevented() {
		t.Fatal("submit not prevented")
	}
	list := f.store.List(f.ctx)
	if len(list) != 1 || list[0].ID != 1 || list[0].Price != 9.99 || list[0].Name != "Widget" {
		t.Fatalf("catalog %+v", list)
	}
	rows := f.view.Rows()
	if len(rows) != 1 || rows[0].Price != "9.99" {
		t.Fatalf("rows %+v", rows)
	}
	if f.view.ModalOpen() {
		t.Fatal("modal still open")
	}
	if got := f.view.ReadFormFields(); got != (view.FormFields{}) {
		t.Fatalf("form not reset: %+v", got)
	}
}

func TestSubmit_InvalidPriceKeepsModalOpen(t *testing.T) {
	f := setup(t)
	f.byID(t, "add-button").Click(f.ctx)
	f.fill(t, "A", "", "abc")

	f.submit(t)

	errs := f.view.Errors()
	if len(errs) != 1 || errs[validator.FieldPrice] != validator.MsgPriceNumber {
		t.Fatalf("errors %v", errs)
	}
	if len(f.store.List(f.ctx)) != 0 {
		t.Fatal("catalog changed")
	}
	if !f.view.ModalOpen() {
		t.Fatal("modal closed")
	}
	// typed text stays in the field
	if got := f.byID(t, "price").Value(); got != "abc" {
		t.Fatalf("price field %q", got)
	}

	// a second attempt is not blocked
	f.byID(t, "price").SetValue("5")
	f.submit(t)
	if len(f.store.List(f.ctx)) != 1 || len(f.view.Errors()) != 0 {
		t.Fatal("resubmission failed")
	}
}

func TestSubmit_BothFieldsInvalid(t *testing.T) {
	f := setup(t)
	f.byID(t, "add-button").Click(f.ctx)
	f.fill(t, "", "", "-10")

	f.submit(t)

	errs := f.view.Errors()
	if errs[validator.FieldName] != validator.MsgNameRequired || errs[validator.FieldPrice] != validator.MsgPricePositive {
		t.Fatalf("errors %v", errs)
	}
}

func TestEdit_PopulatesAndUpdates(t *testing.T) {
	f := setup(t)
	f.create(t, "Lamp", "10")
	f.create(t, "Desk", "99.5")

	f.view.EditButton(2).Click(f.ctx)

	if f.view.Title() != TitleEdit || !f.view.ModalOpen() {
		t.Fatalf("title %q open %v", f.view.Title(), f.view.ModalOpen())
	}
	if f.m.Session() != Editing(2) {
		t.Fatalf("session %v", f.m.Session())
	}
	form := f.view.ReadFormFields()
	if form != (view.FormFields{ID: 2, HasID: true, Name: "Desk", Price: "99.5"}) {
		t.Fatalf("form %+v", form)
	}

	f.fill(t, "Standing desk", "oak", "120")
	f.submit(t)

	got, err := f.store.GetByID(f.ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if *got != (domain.Product{ID: 2, Name: "Standing desk", Description: "oak", Price: 120}) {
		t.Fatalf("updated %+v", got)
	}
	if len(f.store.List(f.ctx)) != 2 {
		t.Fatal("update created a product")
	}
	// submit leaves the session alone
	if f.m.Session() != Editing(2) {
		t.Fatalf("session %v", f.m.Session())
	}
	if f.view.Rows()[1].Name != "Standing desk" {
		t.Fatalf("rows %+v", f.view.Rows())
	}
}

func TestEdit_MissingIsNoop(t *testing.T) {
	f := setup(t)
	f.m.HandleEditClick(f.ctx, 42)
	if f.view.ModalOpen() || f.m.Session() != Idle() {
		t.Fatal("edit of missing product changed state")
	}
}

func TestSubmit_UpdateOfVanishedProduct(t *testing.T) {
	f := setup(t)
	f.create(t, "A", "1")
	f.view.EditButton(1).Click(f.ctx)
	f.store.Delete(f.ctx, 1)

	f.submit(t)

	if len(f.store.List(f.ctx)) != 0 {
		t.Fatal("vanished product was recreated")
	}
	if f.view.ModalOpen() {
		t.Fatal("modal left open")
	}
}

func TestSubmit_HiddenIDEdgeCases(t *testing.T) {
	f := setup(t)

	// id 0 is no id: the form creates
	f.byID(t, "add-button").Click(f.ctx)
	f.fill(t, "Zero", "", "1")
	f.byID(t, "product-id").SetValue("0")
	f.submit(t)
	if list := f.store.List(f.ctx); len(list) != 1 || list[0].Name != "Zero" {
		t.Fatalf("id 0 did not create: %+v", list)
	}

	// an id past int64 is still an id: the update misses, nothing is created
	f.byID(t, "add-button").Click(f.ctx)
	f.fill(t, "Huge", "", "1")
	f.byID(t, "product-id").SetValue("99999999999999999999")
	f.submit(t)
	if list := f.store.List(f.ctx); len(list) != 1 {
		t.Fatalf("overflowing id created a product: %+v", list)
	}
	if f.view.ModalOpen() {
		t.Fatal("modal left open")
	}
}

func TestDelete_ConfirmFlow(t *testing.T) {
	f := setup(t)
	f.create(t, "A", "1")
	f.create(t, "B", "2")

	f.view.DeleteButton(1).Click(f.ctx)
	if !f.view.DeleteModalOpen() || f.m.Session() != ConfirmingDelete(1) {
		t.Fatalf("open %v session %v", f.view.DeleteModalOpen(), f.m.Session())
	}
	if len(f.store.List(f.ctx)) != 2 {
		t.Fatal("deleted before confirmation")
	}

	f.byID(t, "confirm-delete").Click(f.ctx)

	list := f.store.List(f.ctx)
	if len(list) != 1 || list[0].Name != "B" {
		t.Fatalf("catalog %+v", list)
	}
	if _, err := f.store.GetByID(f.ctx, 1); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if f.view.DeleteModalOpen() || f.m.Session() != Idle() {
		t.Fatalf("open %v session %v", f.view.DeleteModalOpen(), f.m.Session())
	}
	if rows := f.view.Rows(); len(rows) != 1 || rows[0].ID != 2 {
		t.Fatalf("rows %+v", rows)
	}
}

func TestDelete_CancelKeepsTarget(t *testing.T) {
	f := setup(t)
	f.create(t, "A", "1")

	f.view.DeleteButton(1).Click(f.ctx)
	f.byID(t, "cancel-delete").Click(f.ctx)

	if f.view.DeleteModalOpen() {
		t.Fatal("delete modal still open")
	}
	if f.m.Session() != ConfirmingDelete(1) {
		t.Fatalf("session %v", f.m.Session())
	}
	if len(f.store.List(f.ctx)) != 1 {
		t.Fatal("cancel deleted the product")
	}
}

func TestConfirmDelete_IdleIsNoop(t *testing.T) {
	f := setup(t)
	f.create(t, "A", "1")

	f.byID(t, "confirm-delete").Click(f.ctx)

	if len(f.store.List(f.ctx)) != 1 {
		t.Fatal("confirm without target deleted")
	}
}

func TestCloseCrosses(t *testing.T) {
	f := setup(t)
	f.create(t, "A", "1")
	closes := f.view.CloseButtons()
	if len(closes) != 2 {
		t.Fatalf("expected 2 close crosses, got %d", len(closes))
	}

	f.view.EditButton(1).Click(f.ctx)
	f.view.ShowErrors(map[string]string{"name": "x"})
	closes[0].Click(f.ctx)
	if f.view.ModalOpen() || len(f.view.Errors()) != 0 || f.view.ReadFormFields() != (view.FormFields{}) {
		t.Fatal("modal close incomplete")
	}
	if f.m.Session() != Editing(1) {
		t.Fatalf("modal close touched session: %v", f.m.Session())
	}

	f.view.DeleteButton(1).Click(f.ctx)
	closes[1].Click(f.ctx)
	if f.view.DeleteModalOpen() || f.m.Session() != Idle() {
		t.Fatalf("delete close: open %v session %v", f.view.DeleteModalOpen(), f.m.Session())
	}
}

func TestBackdropClicks(t *testing.T) {
	f := setup(t)
	f.create(t, "A", "1")

	f.byID(t, "add-button").Click(f.ctx)
	f.fill(t, "typed", "", "")
	// clicks inside the content do not close
	f.byID(t, "modal-title").Click(f.ctx)
	if !f.view.ModalOpen() {
		t.Fatal("content click closed the modal")
	}
	f.view.Modal().Click(f.ctx)
	if f.view.ModalOpen() || f.view.ReadFormFields().Name != "" {
		t.Fatal("backdrop click did not close and reset")
	}

	f.view.DeleteButton(1).Click(f.ctx)
	f.view.DeleteModal().Click(f.ctx)
	if f.view.DeleteModalOpen() || f.m.Session() != Idle() {
		t.Fatal("delete backdrop click did not close")
	}
}

func TestRender_NoListenerAccumulation(t *testing.T) {
	f := setup(t)
	f.create(t, "A", "1")
	for i := 0; i < 3; i++ {
		if err := f.m.RenderProducts(f.ctx); err != nil {
			t.Fatal(err)
		}
	}
	btn := f.view.EditButton(1)
	if n := f.doc.ListenerCount(btn, "click"); n != 1 {
		t.Fatalf("edit button has %d listeners", n)
	}
	if f.view.BoundRows() != 1 {
		t.Fatalf("bound rows %d", f.view.BoundRows())
	}
}

func TestIDsNotReusedThroughUI(t *testing.T) {
	f := setup(t)
	f.create(t, "A", "1")
	f.view.DeleteButton(1).Click(f.ctx)
	f.byID(t, "confirm-delete").Click(f.ctx)
	f.create(t, "B", "2")

	rows := f.view.Rows()
	if len(rows) != 1 || rows[0].ID != 2 {
		t.Fatalf("rows %+v", rows)
	}
}

func TestEditSession(t *testing.T) {
	if _, ok := Idle().Target(); ok {
		t.Fatal("idle has a target")
	}
	if id, ok := Editing(4).Target(); !ok || id != 4 {
		t.Fatal("editing target")
	}
	if id, ok := ConfirmingDelete(9).Target(); !ok || id != 9 {
		t.Fatal("delete target")
	}
	if ConfirmingDelete(9).String() != "confirming_delete(9)" || Idle().String() != "idle" {
		t.Fatalf("strings %s %s", ConfirmingDelete(9), Idle())
	}
}
