package service

import (
	"context"
	"errors"

	"catalog/internal/dom"
	"catalog/internal/domain"
	"catalog/internal/logging"
	"catalog/internal/repository"
	"catalog/internal/validator"
	"catalog/internal/view"
)

// Заголовки окна формы
const (
	TitleAdd  = "Add product"
	TitleEdit = "Edit product"
)

// Window цель, до которой всплывают события всех элементов документа
type Window interface {
	AddEventListener(typ string, fn dom.Listener) dom.ListenerID
}

// ProductManager контроллер редактора: принимает события интерфейса,
// проверяет ввод, меняет каталог и перерисовывает список.
type ProductManager struct {
	products repository.ProductRepository
	view     *view.View
	window   Window
	session  EditSession
}

func NewProductManager(products repository.ProductRepository, v *view.View, window Window) *ProductManager {
	return &ProductManager{products: products, view: v, window: window}
}

// Init вешает обработчики на статические элементы и рисует начальный список
func (m *ProductManager) Init(ctx context.Context) error {
	m.view.AddButton().AddEventListener("click", func(ev *dom.Event) {
		m.HandleAddClick(ev.Context())
	})
	m.view.ProductForm().AddEventListener("submit", m.HandleFormSubmit)

	for _, btn := range m.view.CloseButtons() {
		btn := btn
		btn.AddEventListener("click", func(ev *dom.Event) {
			// close the modal the cross belongs to
			if btn.Closest("modal").Is(m.view.DeleteModal()) {
				m.HandleDeleteModalClose(ev.Context())
			} else {
				m.HandleModalClose(ev.Context())
			}
		})
	}
	m.view.ConfirmDeleteButton().AddEventListener("click", func(ev *dom.Event) {
		m.HandleConfirmDelete(ev.Context())
	})
	m.view.CancelDeleteButton().AddEventListener("click", func(ev *dom.Event) {
		m.HandleCancelDelete(ev.Context())
	})

	// backdrop clicks land on the modal element itself
	m.window.AddEventListener("click", func(ev *dom.Event) {
		switch {
		case ev.Target.Is(m.view.Modal()):
			m.HandleModalClose(ev.Context())
		case ev.Target.Is(m.view.DeleteModal()):
			m.HandleDeleteModalClose(ev.Context())
		}
	})

	return m.RenderProducts(ctx)
}

// Session текущая сессия редактирования
func (m *ProductManager) Session() EditSession { return m.session }

func (m *ProductManager) HandleAddClick(ctx context.Context) {
	m.session = Idle()
	m.view.SetTitle(TitleAdd)
	m.view.ResetForm()
	m.view.ClearErrors()
	m.view.OpenModal()
	logging.FromContext(ctx).Debug("add modal opened")
}

// HandleEditClick открывает форму с данными товара. Отсутствующий id игнорируется.
func (m *ProductManager) HandleEditClick(ctx context.Context, id int64) {
	p, err := m.products.GetByID(ctx, id)
	if err != nil {
		logging.FromContext(ctx).WithField("product_id", id).Debug("edit target not found")
		return
	}

	m.session = Editing(id)
	m.view.SetTitle(TitleEdit)
	m.view.SetFormFields(p.ID, p.Name, p.Description, p.Price)
	m.view.ClearErrors()
	m.view.OpenModal()
	logging.FromContext(ctx).WithField("product_id", id).Debug("edit modal opened")
}

// HandleFormSubmit проверяет форму и сохраняет товар. При ошибках окно
// остаётся открытым, каталог не меняется. Сессия этим путём не меняется.
func (m *ProductManager) HandleFormSubmit(ev *dom.Event) {
	ev.PreventDefault()
	ctx := ev.Context()
	log := logging.FromContext(ctx)

	form := m.view.ReadFormFields()
	if errs := validator.Validate(form.Name, form.Price); len(errs) > 0 {
		m.view.ShowErrors(errs)
		log.WithField("fields", len(errs)).Debug("form rejected")
		return
	}

	price, _ := validator.ParsePrice(form.Price)
	p := domain.Product{Name: form.Name, Description: form.Description, Price: domain.Price(price)}
	if form.HasID {
		p.ID = form.ID
		if _, err := m.products.Update(ctx, p); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				log.WithField("product_id", p.ID).Debug("update target not found")
			} else {
				log.WithError(err).Error("update product")
			}
		}
	} else {
		p = m.products.Create(ctx, p)
		log.WithField("product_id", p.ID).Debug("product created")
	}

	m.rerender(ctx)
	m.HandleModalClose(ctx)
}

func (m *ProductManager) HandleDeleteClick(ctx context.Context, id int64) {
	m.session = ConfirmingDelete(id)
	m.view.OpenDeleteModal()
	logging.FromContext(ctx).WithField("product_id", id).Debug("delete confirmation opened")
}

// HandleConfirmDelete удаляет цель сессии. Без цели ничего не делает.
func (m *ProductManager) HandleConfirmDelete(ctx context.Context) {
	id, ok := m.session.Target()
	if !ok {
		return
	}
	m.products.Delete(ctx, id)
	m.rerender(ctx)
	m.HandleDeleteModalClose(ctx)
	logging.FromContext(ctx).WithField("product_id", id).Debug("product deleted")
}

// HandleCancelDelete только закрывает окно подтверждения, цель сессии остаётся
func (m *ProductManager) HandleCancelDelete(ctx context.Context) {
	m.view.CloseDeleteModal()
}

// HandleModalClose закрывает окно формы; сессию не трогает
func (m *ProductManager) HandleModalClose(ctx context.Context) {
	m.view.CloseModal()
	m.view.ResetForm()
	m.view.ClearErrors()
}

func (m *ProductManager) HandleDeleteModalClose(ctx context.Context) {
	m.view.CloseDeleteModal()
	m.session = Idle()
}

// RenderProducts перерисовывает список и заново вешает обработчики строк
func (m *ProductManager) RenderProducts(ctx context.Context) error {
	if err := m.view.Render(m.products.List(ctx)); err != nil {
		return err
	}
	m.view.BindRowActions(m.HandleEditClick, m.HandleDeleteClick)
	return nil
}

func (m *ProductManager) rerender(ctx context.Context) {
	if err := m.RenderProducts(ctx); err != nil {
		logging.FromContext(ctx).WithError(err).Error("render products")
	}
}
