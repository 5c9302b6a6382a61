// Package view owns every read and write of the editor document: the product
// rows, both modals, the form fields, validation error slots and the per-row
// edit/delete listeners.
package view

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"catalog/internal/dom"
	"catalog/internal/domain"
	"catalog/internal/validator"
)

// ErrMissingElement документ не содержит обязательного элемента
var ErrMissingElement = errors.New("missing element")

// Surface то, что View нужно от документа
type Surface interface {
	ElementByID(id string) *dom.Element
	ElementsByClass(class string) []*dom.Element
	CreateElement(tag string) *dom.Element
	RemoveEventListener(id dom.ListenerID) bool
}

const (
	classItem    = "product-item"
	classEdit    = "edit-btn"
	classDelete  = "delete-btn"
	classError   = "error-message"
	classClose   = "close"
	classVisible = "show"
)

const rowTemplate = `<div class="product-name">%s</div>` +
	`<div class="product-description">%s</div>` +
	`<div class="product-price">%s</div>` +
	`<div class="product-actions">` +
	`<button class="edit-btn" data-id="%d">✎</button>` +
	`<button class="delete-btn" data-id="%d">×</button>` +
	`</div>`

// errorSlots field key -> error element id, in display order
var errorSlots = []struct{ field, id string }{
	{validator.FieldName, "name-error"},
	{validator.FieldPrice, "price-error"},
}

// FormFields значения формы в текстовом виде. HasID == false означает режим создания.
type FormFields struct {
	ID          int64
	HasID       bool
	Name        string
	Description string
	Price       string
}

// Row строка списка в том виде, в каком она отрисована
type Row struct {
	ID          int64
	Name        string
	Description string
	Price       string
}

type rowListeners struct {
	edit []dom.ListenerID
	del  []dom.ListenerID
}

type View struct {
	surface Surface

	addButton           *dom.Element
	productList         *dom.Element
	modal               *dom.Element
	deleteModal         *dom.Element
	productForm         *dom.Element
	productIDInput      *dom.Element
	nameInput           *dom.Element
	descriptionInput    *dom.Element
	priceInput          *dom.Element
	modalTitle          *dom.Element
	confirmDeleteButton *dom.Element
	cancelDeleteButton  *dom.Element
	closeButtons        []*dom.Element

	// bound row listeners keyed by product id
	rows map[int64]*rowListeners
}

// New находит все элементы разметки редактора в surface
func New(surface Surface) (*View, error) {
	v := &View{surface: surface, rows: make(map[int64]*rowListeners)}
	lookups := []struct {
		id  string
		dst **dom.Element
	}{
		{"add-button", &v.addButton},
		{"product-list", &v.productList},
		{"modal", &v.modal},
		{"delete-modal", &v.deleteModal},
		{"product-form", &v.productForm},
		{"product-id", &v.productIDInput},
		{"name", &v.nameInput},
		{"description", &v.descriptionInput},
		{"price", &v.priceInput},
		{"modal-title", &v.modalTitle},
		{"confirm-delete", &v.confirmDeleteButton},
		{"cancel-delete", &v.cancelDeleteButton},
		{"name-error", new(*dom.Element)},
		{"price-error", new(*dom.Element)},
	}
	for _, l := range lookups {
		el := surface.ElementByID(l.id)
		if el == nil {
			return nil, fmt.Errorf("%w: #%s", ErrMissingElement, l.id)
		}
		*l.dst = el
	}
	v.closeButtons = surface.ElementsByClass(classClose)
	return v, nil
}

func (v *View) AddButton() *dom.Element           { return v.addButton }
func (v *View) ProductForm() *dom.Element         { return v.productForm }
func (v *View) Modal() *dom.Element               { return v.modal }
func (v *View) DeleteModal() *dom.Element         { return v.deleteModal }
func (v *View) ConfirmDeleteButton() *dom.Element { return v.confirmDeleteButton }
func (v *View) CancelDeleteButton() *dom.Element  { return v.cancelDeleteButton }
func (v *View) CloseButtons() []*dom.Element      { return v.closeButtons }

// Render перестраивает список целиком. Название и описание экранируются,
// цена выводится с двумя знаками.
func (v *View) Render(products []domain.Product) error {
	if err := v.productList.SetInnerHTML(""); err != nil {
		return err
	}
	for _, p := range products {
		item := v.surface.CreateElement("div")
		item.AddClass(classItem)
		item.SetAttribute("data-id", strconv.FormatInt(p.ID, 10))
		markup := fmt.Sprintf(rowTemplate, Escape(p.Name), Escape(p.Description), p.Price.Fixed(), p.ID, p.ID)
		if err := item.SetInnerHTML(markup); err != nil {
			return fmt.Errorf("render product %d: %w", p.ID, err)
		}
		v.productList.AppendChild(item)
	}
	return nil
}

// BindRowActions снимает прежние обработчики строк и вешает новые на
// каждую кнопку редактирования и удаления.
func (v *View) BindRowActions(onEdit, onDelete func(ctx context.Context, id int64)) {
	v.UnbindRowActions()

	for _, btn := range v.surface.ElementsByClass(classEdit) {
		id, ok := parseLeadingInt(btn.GetAttribute("data-id"))
		if !ok {
			continue
		}
		r := v.row(id)
		r.edit = append(r.edit, btn.AddEventListener("click", func(ev *dom.Event) { onEdit(ev.Context(), id) }))
	}
	for _, btn := range v.surface.ElementsByClass(classDelete) {
		id, ok := parseLeadingInt(btn.GetAttribute("data-id"))
		if !ok {
			continue
		}
		r := v.row(id)
		r.del = append(r.del, btn.AddEventListener("click", func(ev *dom.Event) { onDelete(ev.Context(), id) }))
	}
}

// UnbindRowActions снимает все обработчики строк. Можно вызывать повторно.
func (v *View) UnbindRowActions() {
	for id, r := range v.rows {
		for _, l := range r.edit {
			v.surface.RemoveEventListener(l)
		}
		for _, l := range r.del {
			v.surface.RemoveEventListener(l)
		}
		delete(v.rows, id)
	}
}

// BoundRows number of rows that currently carry listeners
func (v *View) BoundRows() int {
	return len(v.rows)
}

func (v *View) row(id int64) *rowListeners {
	r, ok := v.rows[id]
	if !ok {
		r = &rowListeners{}
		v.rows[id] = r
	}
	return r
}

// ShowErrors показывает ошибки известных полей, предварительно очистив старые
func (v *View) ShowErrors(errs map[string]string) {
	v.ClearErrors()
	for _, slot := range errorSlots {
		if msg, ok := errs[slot.field]; ok {
			v.showError(slot.id, msg)
		}
	}
}

func (v *View) showError(elementID, message string) {
	el := v.surface.ElementByID(elementID)
	if el == nil {
		return
	}
	el.AddClass(classVisible)
	el.SetTextContent(message)
}

func (v *View) ClearErrors() {
	for _, el := range v.surface.ElementsByClass(classError) {
		el.SetTextContent("")
		el.RemoveClass(classVisible)
	}
}

// Errors видимые сейчас ошибки по полям
func (v *View) Errors() map[string]string {
	out := make(map[string]string)
	for _, slot := range errorSlots {
		el := v.surface.ElementByID(slot.id)
		if el != nil && el.HasClass(classVisible) {
			out[slot.field] = el.TextContent()
		}
	}
	return out
}

func (v *View) ResetForm() {
	v.productIDInput.SetValue("")
	v.nameInput.SetValue("")
	v.descriptionInput.SetValue("")
	v.priceInput.SetValue("")
	v.ClearErrors()
}

func (v *View) SetFormFields(id int64, name, description string, price domain.Price) {
	v.productIDInput.SetValue(strconv.FormatInt(id, 10))
	v.nameInput.SetValue(name)
	v.descriptionInput.SetValue(description)
	v.priceInput.SetValue(price.FormValue())
}

// ReadFormFields читает форму; текстовые поля обрезаются по краям
func (v *View) ReadFormFields() FormFields {
	f := FormFields{
		Name:        strings.TrimSpace(v.nameInput.Value()),
		Description: strings.TrimSpace(v.descriptionInput.Value()),
		Price:       strings.TrimSpace(v.priceInput.Value()),
	}
	// 0 counts as no id, like a falsy integer prefix
	if id, ok := parseLeadingInt(v.productIDInput.Value()); ok && id != 0 {
		f.ID, f.HasID = id, true
	}
	return f
}

func (v *View) SetTitle(text string) { v.modalTitle.SetTextContent(text) }

func (v *View) Title() string { return v.modalTitle.TextContent() }

func (v *View) OpenModal()  { v.modal.SetStyle("display", "block") }
func (v *View) CloseModal() { v.modal.SetStyle("display", "none") }

func (v *View) OpenDeleteModal()  { v.deleteModal.SetStyle("display", "block") }
func (v *View) CloseDeleteModal() { v.deleteModal.SetStyle("display", "none") }

func (v *View) ModalOpen() bool       { return v.modal.Style("display") == "block" }
func (v *View) DeleteModalOpen() bool { return v.deleteModal.Style("display") == "block" }

// Rows читает отрисованный список обратно
func (v *View) Rows() []Row {
	var out []Row
	for _, item := range v.productList.ElementsByClass(classItem) {
		id, _ := parseLeadingInt(item.GetAttribute("data-id"))
		r := Row{ID: id}
		if el := first(item.ElementsByClass("product-name")); el != nil {
			r.Name = el.TextContent()
		}
		if el := first(item.ElementsByClass("product-description")); el != nil {
			r.Description = el.TextContent()
		}
		if el := first(item.ElementsByClass("product-price")); el != nil {
			r.Price = el.TextContent()
		}
		out = append(out, r)
	}
	return out
}

// EditButton и DeleteButton находят кнопку строки по id товара
func (v *View) EditButton(id int64) *dom.Element {
	return v.rowButton(classEdit, id)
}

func (v *View) DeleteButton(id int64) *dom.Element {
	return v.rowButton(classDelete, id)
}

func (v *View) rowButton(class string, id int64) *dom.Element {
	want := strconv.FormatInt(id, 10)
	for _, btn := range v.productList.ElementsByClass(class) {
		if btn.GetAttribute("data-id") == want {
			return btn
		}
	}
	return nil
}

// Escape кодирует &, <, >, ' и " в HTML-сущности
func Escape(text string) string {
	return html.EscapeString(text)
}

// parseLeadingInt reads an optional sign and leading digits, ignoring the rest.
// Values outside int64 saturate.
func parseLeadingInt(s string) (int64, bool) {
	s = strings.TrimLeft(s, " \t\n\r\f\v")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return n, true
}

func first(els []*dom.Element) *dom.Element {
	if len(els) == 0 {
		return nil
	}
	return els[0]
}
