package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"catalog/internal/dom"
	"catalog/internal/service"
	"catalog/internal/session"
	"catalog/internal/view"
)

// Поля формы, которые можно заполнить командой set
var settable = map[string]bool{
	"product-id":  true,
	"name":        true,
	"description": true,
	"price":       true,
}

// Shell построчный драйвер редактора: каждая команда превращается в событие документа
type Shell struct {
	session *session.Session
	out     io.Writer
}

func New(sess *session.Session, out io.Writer) *Shell {
	return &Shell{session: sess, out: out}
}

// Run читает команды до конца ввода или отмены ctx
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		s.processCommand(ctx, input)
	}
	return scanner.Err()
}

func (s *Shell) processCommand(ctx context.Context, input string) {
	parts := strings.Fields(input)
	command := parts[0]

	err := s.session.Do(func(doc *dom.Document, v *view.View, m *service.ProductManager) {
		switch command {
		case "add":
			v.AddButton().Click(ctx)
		case "edit":
			s.handleRowButton(ctx, parts, "edit", v.EditButton)
		case "delete":
			s.handleRowButton(ctx, parts, "delete", v.DeleteButton)
		case "set":
			s.handleSet(doc, input)
		case "submit":
			v.ProductForm().Submit(ctx)
			s.printErrors(v)
		case "confirm":
			v.ConfirmDeleteButton().Click(ctx)
		case "cancel":
			v.CancelDeleteButton().Click(ctx)
		case "close":
			s.clickClose(ctx, v, v.Modal())
		case "close-delete":
			s.clickClose(ctx, v, v.DeleteModal())
		case "backdrop":
			v.Modal().Click(ctx)
		case "backdrop-delete":
			v.DeleteModal().Click(ctx)
		case "list":
			s.printRows(v)
		case "state":
			s.printState(v, m)
		case "help":
			s.printHelp()
		default:
			fmt.Fprintf(s.out, "Unknown command: %s\n", command)
		}
	})
	if err != nil {
		fmt.Fprintf(s.out, "Error: %s\n", err)
	}
}

func (s *Shell) handleRowButton(ctx context.Context, parts []string, name string, button func(int64) *dom.Element) {
	if len(parts) != 2 {
		fmt.Fprintf(s.out, "Usage: %s <id>\n", name)
		return
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		fmt.Fprintln(s.out, "Invalid id")
		return
	}
	btn := button(id)
	if btn == nil {
		fmt.Fprintf(s.out, "No row for product %d\n", id)
		return
	}
	btn.Click(ctx)
}

// set <field> <value>; значение берётся до конца строки, пустое допустимо
func (s *Shell) handleSet(doc *dom.Document, input string) {
	rest := strings.TrimSpace(strings.TrimPrefix(input, "set"))
	field, value, _ := strings.Cut(rest, " ")
	if !settable[field] {
		fmt.Fprintln(s.out, "Usage: set <product-id|name|description|price> <value>")
		return
	}
	doc.ElementByID(field).SetValue(value)
}

func (s *Shell) clickClose(ctx context.Context, v *view.View, modal *dom.Element) {
	for _, btn := range v.CloseButtons() {
		if btn.Closest("modal").Is(modal) {
			btn.Click(ctx)
			return
		}
	}
}

func (s *Shell) printErrors(v *view.View) {
	errs := v.Errors()
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(s.out, "%s: %s\n", field, errs[field])
	}
}

func (s *Shell) printRows(v *view.View) {
	rows := v.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(s.out, "No products")
		return
	}
	fmt.Fprintln(s.out, "ID\tName\tPrice\tDescription")
	for _, r := range rows {
		fmt.Fprintf(s.out, "%d\t%s\t%s\t%s\n", r.ID, r.Name, r.Price, r.Description)
	}
}

func (s *Shell) printState(v *view.View, m *service.ProductManager) {
	fmt.Fprintf(s.out, "session: %s\n", m.Session())
	if v.ModalOpen() {
		fmt.Fprintf(s.out, "form: open (%s)\n", v.Title())
	} else {
		fmt.Fprintln(s.out, "form: closed")
	}
	if v.DeleteModalOpen() {
		fmt.Fprintln(s.out, "delete: open")
	} else {
		fmt.Fprintln(s.out, "delete: closed")
	}
}

func (s *Shell) printHelp() {
	fmt.Fprint(s.out, `Commands:
  add                   open the add form
  edit <id>             open the edit form for a product
  delete <id>           ask to delete a product
  set <field> <value>   fill product-id, name, description or price
  submit                submit the form
  confirm | cancel      answer the delete dialog
  close | close-delete  click the close cross of a dialog
  backdrop | backdrop-delete
                        click outside a dialog
  list                  show the product list
  state                 show dialogs and the edit session
`)
}
