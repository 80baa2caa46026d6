package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pribylovaa/go-blog-comments/internal/markdown"
	"github.com/pribylovaa/go-blog-comments/internal/models"
)

const timeLayout = "2006-01-02 15:04"

// renderMarkdown превращает AST текста в строку с терминальными стилями.
// Текст вне разметки выводится как есть: терминал не интерпретирует HTML.
func renderMarkdown(nodes []markdown.Node) string {
	var b strings.Builder

	for _, n := range nodes {
		switch n.Kind {
		case markdown.KindBold:
			b.WriteString(boldStyle.Render(n.Text))
		case markdown.KindItalic:
			b.WriteString(italicStyle.Render(n.Text))
		case markdown.KindLink:
			b.WriteString(linkStyle.Render(n.Text))
			if n.URL != n.Text {
				b.WriteString(urlStyle.Render(" (" + n.URL + ")"))
			}
		case markdown.KindMention:
			b.WriteString(mentionStyle.Render("@" + n.Text))
		default:
			b.WriteString(n.Text)
		}
	}

	return b.String()
}

// header — строка "автор · время · ♥ N".
func header(c models.Comment) string {
	parts := []string{authorStyle.Render(c.User.DisplayName())}

	if !c.CreatedAt.IsZero() {
		ts := c.CreatedAt.Local().Format(timeLayout)
		if !c.UpdatedAt.IsZero() && c.UpdatedAt.After(c.CreatedAt) {
			ts += " (edited)"
		}
		parts = append(parts, timeStyle.Render(ts))
	}

	if c.UserLiked {
		parts = append(parts, likedStyle.Render(fmt.Sprintf("♥ %d", c.LikesCount)))
	} else {
		parts = append(parts, likesStyle.Render(fmt.Sprintf("♡ %d", c.LikesCount)))
	}

	return strings.Join(parts, timeStyle.Render(" · "))
}

// moderation — строка с жалобами (только в контексте модерации).
func moderation(c models.Comment) string {
	if c.ReportsCount == 0 {
		return ""
	}

	labels := make([]string, 0, len(c.ReportReasons))
	for _, r := range c.ReportReasons {
		labels = append(labels, models.ReportReason(r).Label())
	}

	line := fmt.Sprintf("⚑ %d report(s)", c.ReportsCount)
	if len(labels) > 0 {
		line += ": " + strings.Join(labels, ", ")
	}

	return flagStyle.Render(line)
}

// block оборачивает содержимое комментария рамкой с учётом уровня и выделения.
func block(body string, level int, selected bool, width int) string {
	st := commentStyle
	if selected {
		st = selectedStyle
	}

	indent := level * replyIndent
	if w := width - indent - 2; w > 10 {
		st = st.Width(w)
	}

	return lipgloss.NewStyle().MarginLeft(indent).Render(st.Render(body))
}

// window подбирает диапазон блоков [start, end), чтобы выбранный блок
// поместился в height строк.
func window(blocks []string, cursor, height int) (int, int) {
	if len(blocks) == 0 {
		return 0, 0
	}

	if height <= 0 {
		return 0, len(blocks)
	}

	if cursor >= len(blocks) {
		cursor = len(blocks) - 1
	}

	start, used := cursor, lipgloss.Height(blocks[cursor])
	for start > 0 {
		h := lipgloss.Height(blocks[start-1])
		if used+h > height {
			break
		}
		used += h
		start--
	}

	end := cursor + 1
	for end < len(blocks) {
		h := lipgloss.Height(blocks[end])
		if used+h > height {
			break
		}
		used += h
		end++
	}

	return start, end
}
