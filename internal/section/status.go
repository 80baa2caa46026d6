package section

import "github.com/pribylovaa/go-blog-comments/internal/models"

// Op — вид операции, для которой ведётся статус.
type Op int

const (
	OpLoad Op = iota + 1
	OpCreate
	OpReply
	OpEdit
	OpDelete
	OpLike
	OpReport
)

func (o Op) String() string {
	switch o {
	case OpLoad:
		return "load"
	case OpCreate:
		return "create"
	case OpReply:
		return "reply"
	case OpEdit:
		return "edit"
	case OpDelete:
		return "delete"
	case OpLike:
		return "like"
	case OpReport:
		return "report"
	default:
		return "unknown"
	}
}

// Status — состояние операции над комментарием.
type Status int

const (
	Idle Status = iota
	Pending
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// key — операция над конкретным комментарием. Для OpLoad и OpCreate ID пуст.
type key struct {
	id models.ID
	op Op
}

// statuses — карта статусов; отсутствие ключа означает Idle.
type statuses map[key]Status

func (m statuses) get(id models.ID, op Op) Status { return m[key{id, op}] }

// begin переводит операцию в Pending. false — операция уже выполняется.
func (m statuses) begin(id models.ID, op Op) bool {
	k := key{id, op}
	if m[k] == Pending {
		return false
	}

	m[k] = Pending
	return true
}

func (m statuses) finish(id models.ID, op Op, err error) {
	if err != nil {
		m[key{id, op}] = Failed
		return
	}

	delete(m, key{id, op})
}

// forget убирает все статусы комментария (после удаления).
func (m statuses) forget(id models.ID) {
	for k := range m {
		if k.id == id {
			delete(m, k)
		}
	}
}
