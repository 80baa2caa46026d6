// markdown — ограниченный inline-разборщик текста комментариев.
//
// Поддерживаются ровно четыре конструкции: **bold**, *italic*, [text](url) и @mention.
// Результат — типизированная последовательность узлов; сырой HTML никогда не
// пропускается, любые символы вне этих конструкций остаются текстом.
package markdown

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind — тип inline-узла.
type Kind int

const (
	KindText Kind = iota
	KindBold
	KindItalic
	KindLink
	KindMention
)

func (k Kind) String() string {
	switch k {
	case KindBold:
		return "bold"
	case KindItalic:
		return "italic"
	case KindLink:
		return "link"
	case KindMention:
		return "mention"
	default:
		return "text"
	}
}

// Node — элемент inline-AST.
//   - Text: Text — произвольный текст;
//   - Bold/Italic: Text — содержимое без маркеров;
//   - Link: Text — подпись, URL — проверенный адрес;
//   - Mention: Text — имя пользователя без '@'.
type Node struct {
	Kind Kind
	Text string
	URL  string
}

// maxMentionLen — максимальная длина имени в @mention.
const maxMentionLen = 32

// Parse разбирает текст комментария в последовательность узлов.
// Незакрытые маркеры и ссылки с недопустимой схемой остаются текстом.
func Parse(src string) []Node {
	p := parser{src: src}
	p.run()
	return p.out
}

type parser struct {
	src string
	out []Node
	buf strings.Builder
}

func (p *parser) run() {
	i := 0
	for i < len(p.src) {
		switch p.src[i] {
		case '*':
			if n, ok := p.emphasis(i); ok {
				i = n
				continue
			}
		case '[':
			if n, ok := p.link(i); ok {
				i = n
				continue
			}
		case '@':
			if n, ok := p.mention(i); ok {
				i = n
				continue
			}
		}

		r, size := utf8.DecodeRuneInString(p.src[i:])
		p.buf.WriteRune(r)
		i += size
	}

	p.flush()
}

// flush переносит накопленный текст в отдельный узел.
func (p *parser) flush() {
	if p.buf.Len() == 0 {
		return
	}

	p.out = append(p.out, Node{Kind: KindText, Text: p.buf.String()})
	p.buf.Reset()
}

func (p *parser) emit(n Node) {
	p.flush()
	p.out = append(p.out, n)
}

// emphasis обрабатывает **bold** и *italic* начиная с позиции i.
func (p *parser) emphasis(i int) (int, bool) {
	if strings.HasPrefix(p.src[i:], "**") {
		start := i + 2
		end := strings.Index(p.src[start:], "**")
		if end <= 0 {
			return 0, false
		}

		inner := p.src[start : start+end]
		if !trimmedEdges(inner) {
			return 0, false
		}

		p.emit(Node{Kind: KindBold, Text: inner})
		return start + end + 2, true
	}

	start := i + 1
	end := strings.IndexByte(p.src[start:], '*')
	if end <= 0 {
		return 0, false
	}

	inner := p.src[start : start+end]
	if !trimmedEdges(inner) {
		return 0, false
	}

	p.emit(Node{Kind: KindItalic, Text: inner})
	return start + end + 1, true
}

// link обрабатывает [text](url) начиная с позиции i.
func (p *parser) link(i int) (int, bool) {
	closeText := strings.Index(p.src[i:], "](")
	if closeText <= 1 {
		return 0, false
	}

	text := p.src[i+1 : i+closeText]
	if strings.ContainsAny(text, "[]\n") {
		return 0, false
	}

	urlStart := i + closeText + 2
	closeURL := strings.IndexByte(p.src[urlStart:], ')')
	if closeURL <= 0 {
		return 0, false
	}

	raw := strings.TrimSpace(p.src[urlStart : urlStart+closeURL])
	href, ok := safeURL(raw)
	if !ok {
		return 0, false
	}

	p.emit(Node{Kind: KindLink, Text: text, URL: href})
	return urlStart + closeURL + 1, true
}

// mention обрабатывает @username: '@' в начале текста или после не-словесного символа.
func (p *parser) mention(i int) (int, bool) {
	if i > 0 {
		prev, _ := utf8.DecodeLastRuneInString(p.src[:i])
		if isNameRune(prev) {
			return 0, false
		}
	}

	// Имя начинается с буквы, цифры или "_": "@.foo" и "@-bar" остаются текстом.
	if first, _ := utf8.DecodeRuneInString(p.src[i+1:]); !isNameRune(first) {
		return 0, false
	}

	j := i + 1
	for j < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[j:])
		if !isNameRune(r) && r != '.' && r != '-' {
			break
		}
		j += size
	}

	// Точка/дефис в конце — пунктуация предложения, а не часть имени.
	name := strings.TrimRight(p.src[i+1:j], ".-")
	if name == "" || utf8.RuneCountInString(name) > maxMentionLen {
		return 0, false
	}

	p.emit(Node{Kind: KindMention, Text: name})
	return i + 1 + len(name), true
}

func isNameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// trimmedEdges — содержимое выделения не пустое и не начинается/не заканчивается пробелом.
func trimmedEdges(s string) bool {
	return s != "" && strings.TrimSpace(s) == s && !strings.Contains(s, "\n")
}

// safeURL пропускает только http/https/mailto и относительные пути от корня.
func safeURL(raw string) (string, bool) {
	if raw == "" || strings.ContainsAny(raw, " \t\n\"'<>`") {
		return "", false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return "", false
		}
		return u.String(), true
	case "mailto":
		return u.String(), true
	case "":
		if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
			return u.String(), true
		}
	}

	return "", false
}

// PlainText склеивает узлы обратно в текст без разметки.
func PlainText(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		if n.Kind == KindMention {
			b.WriteByte('@')
		}
		b.WriteString(n.Text)
	}

	return b.String()
}
