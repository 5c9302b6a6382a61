package service

import "fmt"

// Mode режим сессии редактирования
type Mode int

const (
	ModeIdle Mode = iota
	ModeEditing
	ModeConfirmingDelete
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeEditing:
		return "editing"
	case ModeConfirmingDelete:
		return "confirming_delete"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// EditSession какой товар является целью открытого окна.
// В режиме Idle id отсутствует.
type EditSession struct {
	mode Mode
	id   int64
}

func Idle() EditSession { return EditSession{} }

func Editing(id int64) EditSession { return EditSession{mode: ModeEditing, id: id} }

func ConfirmingDelete(id int64) EditSession {
	return EditSession{mode: ModeConfirmingDelete, id: id}
}

func (s EditSession) Mode() Mode { return s.mode }

// Target id цели; ok == false в режиме Idle
func (s EditSession) Target() (int64, bool) {
	if s.mode == ModeIdle {
		return 0, false
	}
	return s.id, true
}

func (s EditSession) String() string {
	if s.mode == ModeIdle {
		return s.mode.String()
	}
	return fmt.Sprintf("%s(%d)", s.mode, s.id)
}
