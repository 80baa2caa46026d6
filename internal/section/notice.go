package section

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Level — важность уведомления.
type Level int

const (
	Info Level = iota
	Error
)

// Notice — временное закрываемое уведомление.
type Notice struct {
	ID    int
	Level Level
	Text  string
	Op    Op
}

// DefaultNoticeTTL — время жизни уведомления по умолчанию.
const DefaultNoticeTTL = 6 * time.Second

// Notices возвращает активные уведомления, старые первыми.
func (s *Section) Notices() []Notice {
	out := make([]Notice, len(s.notices))
	copy(out, s.notices)
	return out
}

// Dismiss закрывает уведомление. Неизвестный id игнорируется.
func (s *Section) Dismiss(id int) {
	for i, n := range s.notices {
		if n.ID == id {
			s.notices = append(s.notices[:i:i], s.notices[i+1:]...)
			return
		}
	}
}

// notify добавляет уведомление и, если задан TTL, команду его истечения.
func (s *Section) notify(level Level, op Op, text string) tea.Cmd {
	s.nextNotice++
	n := Notice{ID: s.nextNotice, Level: level, Text: text, Op: op}
	s.notices = append(s.notices, n)

	if s.noticeTTL <= 0 {
		return nil
	}

	owner := s.owner
	return tea.Tick(s.noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{owner: owner, id: n.ID}
	})
}
