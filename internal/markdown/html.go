package markdown

import (
	"html"
	"strings"
)

// RenderHTML отдаёт безопасный HTML: весь текст экранируется, создаются только
// <strong>, <em>, <a> и <span class="mention">. Переводы строк — <br>.
func RenderHTML(nodes []Node) string {
	var b strings.Builder

	for _, n := range nodes {
		text := escape(n.Text)

		switch n.Kind {
		case KindBold:
			b.WriteString("<strong>" + text + "</strong>")
		case KindItalic:
			b.WriteString("<em>" + text + "</em>")
		case KindLink:
			b.WriteString(`<a href="` + html.EscapeString(n.URL) + `" rel="nofollow noopener noreferrer" target="_blank">` + text + "</a>")
		case KindMention:
			b.WriteString(`<span class="mention">@` + text + "</span>")
		default:
			b.WriteString(text)
		}
	}

	return b.String()
}

// ToHTML — Parse + RenderHTML.
func ToHTML(src string) string {
	return RenderHTML(Parse(src))
}

func escape(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>")
}
