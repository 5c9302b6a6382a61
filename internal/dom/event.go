package dom

import (
	"context"
	"strings"
)

// Event событие в процессе доставки
type Event struct {
	Type          string
	Target        *Element
	CurrentTarget *Element

	ctx              context.Context
	defaultPrevented bool
	stopped          bool
}

// Context контекст, с которым было отправлено событие
func (ev *Event) Context() context.Context {
	if ev.ctx == nil {
		return context.Background()
	}
	return ev.ctx
}

func (ev *Event) PreventDefault() { ev.defaultPrevented = true }

func (ev *Event) DefaultPrevented() bool { return ev.defaultPrevented }

// StopPropagation stops bubbling after the current node's listeners
func (ev *Event) StopPropagation() { ev.stopped = true }

type declaration struct {
	prop  string
	value string
}

func parseStyle(s string) []declaration {
	var out []declaration
	for _, part := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		out = append(out, declaration{prop: prop, value: strings.TrimSpace(value)})
	}
	return out
}

func formatStyle(decls []declaration) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.prop + ": " + d.value + ";"
	}
	return strings.Join(parts, " ")
}
