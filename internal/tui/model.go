// Package tui — терминальный интерфейс ленты комментариев на bubbletea.
//
// Model только отображает состояние section.Section и переводит нажатия
// клавиш в вызовы элементов и секции. Сетевых вызовов здесь нет: все команды
// возвращает секция, результаты приходят обратно через Update.
package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pribylovaa/go-blog-comments/internal/api"
	"github.com/pribylovaa/go-blog-comments/internal/item"
	"github.com/pribylovaa/go-blog-comments/internal/markdown"
	"github.com/pribylovaa/go-blog-comments/internal/models"
	"github.com/pribylovaa/go-blog-comments/internal/report"
	"github.com/pribylovaa/go-blog-comments/internal/section"
	"github.com/pribylovaa/go-blog-comments/internal/tree"
)

type mode int

const (
	modeBrowse mode = iota
	modeCompose
	modeEdit
	modeReply
	modeConfirmDelete
	modeReport
)

const (
	signInText    = "Sign in to join the discussion."
	forbiddenText = "This action is not available for this comment."
	busyText      = "Finish editing first."
	emptyText     = "No comments yet. Be the first!"
	defaultWidth  = 80
)

// Options — параметры интерфейса.
type Options struct {
	Title string
	// Width/Height — размер до первого tea.WindowSizeMsg (0 — без ограничения высоты).
	Width  int
	Height int
}

type row struct {
	comment models.Comment
	level   int
}

// Model — bubbletea-модель ленты.
type Model struct {
	sec   *section.Section
	title string

	keys keyMap
	help help.Model
	spin spinner.Model

	editor  textarea.Model
	details textarea.Model

	mode     mode
	target   models.ID
	selected models.ID
	cursor   int
	awaiting bool
	hint     string

	width  int
	height int
}

// New собирает модель поверх секции. Секцией после этого владеет модель.
func New(sec *section.Section, opts Options) Model {
	title := opts.Title
	if title == "" {
		title = "Comments"
	}

	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}

	m := Model{
		sec:     sec,
		title:   title,
		keys:    defaultKeys(),
		help:    help.New(),
		spin:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		editor:  newEditor("Write a comment…", 0),
		details: newEditor("Details (optional)", report.MaxDetailsLength),
		height:  opts.Height,
	}
	m.resize(width)

	return m
}

func newEditor(placeholder string, limit int) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	// Лимит длины проверяет валидация, а не поле ввода.
	ta.CharLimit = limit
	ta.SetHeight(3)
	ta.Cursor.SetMode(cursor.CursorStatic)
	return ta
}

func (m *Model) resize(width int) {
	m.width = width
	m.help.Width = width

	w := width - replyIndent - 4
	if w < 20 {
		w = 20
	}
	m.editor.SetWidth(w)
	m.details.SetWidth(w)
}

// Section — секция под моделью.
func (m Model) Section() *section.Section { return m.sec }

// Init загружает первую страницу и запускает спиннер.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.sec.Init(), m.spin.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.resize(msg.Width)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		m.hint = ""
		next, cmd := m.handleKey(msg)
		next.reconcile()
		return next, cmd
	}

	cmd := m.sec.Update(msg)
	m.reconcile()
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	switch m.mode {
	case modeCompose, modeEdit, modeReply:
		return m.editorKey(msg)
	case modeConfirmDelete:
		return m.confirmKey(msg)
	case modeReport:
		return m.reportKey(msg)
	}

	return m.browseKey(msg)
}

func (m Model) quit() (Model, tea.Cmd) {
	m.sec.Close()
	return m, tea.Quit
}

func (m Model) browseKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.LoadMore):
		return m, m.sec.LoadMore()
	case key.Matches(msg, m.keys.Reload):
		return m, m.sec.Reload()
	case key.Matches(msg, m.keys.Dismiss):
		if ns := m.sec.Notices(); len(ns) > 0 {
			m.sec.Dismiss(ns[0].ID)
		}
	case key.Matches(msg, m.keys.New):
		return m.startCompose()
	case key.Matches(msg, m.keys.Edit):
		return m.startEdit()
	case key.Matches(msg, m.keys.Reply):
		return m.startReply()
	case key.Matches(msg, m.keys.Delete):
		return m.askDelete()
	case key.Matches(msg, m.keys.Like):
		return m.like()
	case key.Matches(msg, m.keys.Report):
		return m.startReport()
	}

	return m, nil
}

func (m *Model) move(step int) {
	rows := flatten(m.sec.Comments())
	if len(rows) == 0 {
		return
	}

	m.cursor = max(0, min(len(rows)-1, m.cursor+step))
	m.selected = rows[m.cursor].comment.ID
}

func (m Model) current() (*item.Item, bool) {
	if m.selected.IsZero() {
		return nil, false
	}

	return m.sec.Item(m.selected)
}

// denied — текст подсказки для отклонённого элементом действия.
func (m Model) denied(err error) string {
	switch {
	case !m.sec.Viewer().Authenticated:
		return signInText
	case errors.Is(err, item.ErrBusy):
		return busyText
	default:
		return forbiddenText
	}
}

func (m Model) startCompose() (Model, tea.Cmd) {
	if !m.sec.Viewer().Authenticated {
		m.hint = signInText
		return m, nil
	}

	m.mode = modeCompose
	m.editor.SetValue(m.sec.Draft())
	return m, m.editor.Focus()
}

func (m Model) startEdit() (Model, tea.Cmd) {
	it, ok := m.current()
	if !ok {
		return m, nil
	}

	if err := it.StartEdit(); err != nil {
		m.hint = m.denied(err)
		return m, nil
	}

	m.mode, m.target = modeEdit, it.ID()
	m.editor.SetValue(it.Draft())
	return m, m.editor.Focus()
}

func (m Model) startReply() (Model, tea.Cmd) {
	it, ok := m.current()
	if !ok {
		return m, nil
	}

	if !it.ReplyOpen() {
		if err := it.ToggleReply(); err != nil {
			m.hint = m.denied(err)
			return m, nil
		}
	}

	m.mode, m.target = modeReply, it.ID()
	m.editor.SetValue(it.ReplyDraft())
	return m, m.editor.Focus()
}

func (m Model) askDelete() (Model, tea.Cmd) {
	it, ok := m.current()
	if !ok {
		return m, nil
	}

	if _, err := it.Delete(); err != nil {
		m.hint = m.denied(err)
		return m, nil
	}

	m.mode, m.target = modeConfirmDelete, it.ID()
	return m, nil
}

func (m Model) like() (Model, tea.Cmd) {
	it, ok := m.current()
	if !ok {
		return m, nil
	}

	in, err := it.Like()
	if err != nil {
		m.hint = m.denied(err)
		return m, nil
	}

	return m, m.sec.Dispatch(in)
}

func (m Model) startReport() (Model, tea.Cmd) {
	it, ok := m.current()
	if !ok {
		return m, nil
	}

	in, err := it.Report()
	if err != nil {
		m.hint = m.denied(err)
		return m, nil
	}

	cmd := m.sec.Dispatch(in)

	d := m.sec.Dialog()
	if !d.IsOpen() {
		return m, cmd
	}

	m.mode, m.target = modeReport, in.ID
	m.details.SetValue(d.Details())
	return m, tea.Batch(cmd, m.details.Focus())
}

func (m Model) editorKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closeEditor()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m.submitEditor()
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.syncDraft()
	return m, cmd
}

// syncDraft переносит текст редактора во владельца черновика.
func (m *Model) syncDraft() {
	text := m.editor.Value()

	switch m.mode {
	case modeCompose:
		m.sec.SetDraft(text)
	case modeEdit:
		if it, ok := m.sec.Item(m.target); ok {
			it.SetDraft(text)
		}
	case modeReply:
		if it, ok := m.sec.Item(m.target); ok {
			it.SetReplyDraft(text)
		}
	}
}

// closeEditor закрывает редактор без отправки. Черновик нового комментария
// и текст ответа сохраняются, правка отменяется.
func (m *Model) closeEditor() {
	switch m.mode {
	case modeEdit:
		if it, ok := m.sec.Item(m.target); ok {
			it.CancelEdit()
		}
	case modeReply:
		if it, ok := m.sec.Item(m.target); ok && it.ReplyOpen() {
			_ = it.ToggleReply()
		}
	}

	m.leave()
}

func (m Model) submitEditor() (Model, tea.Cmd) {
	switch m.mode {
	case modeCompose:
		cmd := m.sec.Submit()
		m.awaiting = m.sec.Submitting()
		return m, cmd

	case modeEdit:
		it, ok := m.sec.Item(m.target)
		if !ok {
			return m, nil
		}

		in, err := it.SaveEdit()
		if err != nil {
			return m, nil
		}

		return m, m.sec.Dispatch(in)

	case modeReply:
		it, ok := m.sec.Item(m.target)
		if !ok {
			return m, nil
		}

		in, err := it.SubmitReply()
		if err != nil {
			return m, nil
		}

		return m, m.sec.Dispatch(in)
	}

	return m, nil
}

func (m Model) confirmKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	target := m.target
	m.leave()

	if !key.Matches(msg, m.keys.Confirm) {
		return m, nil
	}

	it, ok := m.sec.Item(target)
	if !ok {
		return m, nil
	}

	in, err := it.Delete()
	if err != nil {
		m.hint = m.denied(err)
		return m, nil
	}

	return m, m.sec.Dispatch(in)
}

func (m Model) reportKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	d := m.sec.Dialog()

	switch {
	case key.Matches(msg, m.keys.Cancel):
		d.Cancel()
		m.leave()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m, m.sec.SubmitReport()
	case key.Matches(msg, m.keys.Next):
		cycleReason(d, 1)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		cycleReason(d, -1)
		return m, nil
	}

	var cmd tea.Cmd
	m.details, cmd = m.details.Update(msg)
	d.SetDetails(m.details.Value())
	return m, cmd
}

func cycleReason(d *report.Dialog, step int) {
	reasons := models.ReportReasons()
	n := len(reasons)

	i := slices.Index(reasons, d.Reason())
	if i < 0 && step < 0 {
		i = 0
	}

	_ = d.Select(reasons[((i+step)%n+n)%n])
}

// reconcile приводит курсор и режим в соответствие с состоянием секции
// после любого изменения.
func (m *Model) reconcile() {
	rows := flatten(m.sec.Comments())

	idx := slices.IndexFunc(rows, func(r row) bool { return r.comment.ID == m.selected })
	switch {
	case len(rows) == 0:
		m.cursor, m.selected = 0, ""
	case idx >= 0:
		m.cursor = idx
	default:
		m.cursor = max(0, min(len(rows)-1, m.cursor))
		m.selected = rows[m.cursor].comment.ID
	}

	switch m.mode {
	case modeCompose:
		if m.awaiting && !m.sec.Submitting() {
			m.awaiting = false
			if m.sec.Draft() == "" {
				m.leave()
			}
		}
	case modeEdit:
		if it, ok := m.sec.Item(m.target); !ok || it.Mode() != item.Editing {
			m.leave()
		}
	case modeReply:
		if it, ok := m.sec.Item(m.target); !ok || !it.ReplyOpen() {
			m.leave()
		}
	case modeConfirmDelete:
		if !tree.Contains(m.sec.Comments(), m.target) {
			m.leave()
		}
	case modeReport:
		if !m.sec.Dialog().IsOpen() {
			m.leave()
		}
	}
}

func (m *Model) leave() {
	m.mode = modeBrowse
	m.target = ""
	m.awaiting = false

	m.editor.Blur()
	m.editor.Reset()
	m.details.Blur()
	m.details.Reset()
}

func flatten(list []models.Comment) []row {
	out := make([]row, 0, tree.Count(list))
	for _, c := range list {
		out = append(out, row{comment: c, level: 0})
		for _, r := range c.Replies {
			out = append(out, row{comment: r, level: 1})
		}
	}

	return out
}

func (m Model) View() string {
	top := m.viewTop()
	bottom := m.viewBottom()

	if m.mode == modeReport {
		return lipgloss.JoinVertical(lipgloss.Left, top, m.viewReport(), bottom)
	}

	avail := 0
	if m.height > 0 {
		avail = max(1, m.height-lipgloss.Height(top)-lipgloss.Height(bottom))
	}

	return lipgloss.JoinVertical(lipgloss.Left, top, m.viewList(avail), bottom)
}

func (m Model) viewTop() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%d)", m.title, m.sec.Total())))
	if m.sec.Loading() {
		b.WriteString(" " + m.spin.View())
	}

	if v := m.sec.Viewer(); v.Authenticated {
		b.WriteString(timeStyle.Render("  signed in as " + v.User.DisplayName()))
	}
	b.WriteString("\n\n")

	switch {
	case !m.sec.Viewer().Authenticated:
		b.WriteString(signInStyle.Render(signInText))
	case m.mode == modeCompose:
		b.WriteString(m.editor.View())
		if err := m.sec.DraftError(); err != nil {
			b.WriteString("\n" + errorStyle.Render(api.UserMessage(err)))
		}
		if m.sec.Submitting() {
			b.WriteString("\n" + m.spin.View() + mutedStyle.Render(" Posting…"))
		}
	case m.sec.Draft() != "":
		b.WriteString(mutedStyle.Render("Draft saved. Press n to continue writing."))
	default:
		b.WriteString(mutedStyle.Render("Press n to write a comment."))
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewList(height int) string {
	rows := flatten(m.sec.Comments())

	if len(rows) == 0 {
		if !m.sec.Loaded() {
			return m.spin.View() + mutedStyle.Render(" Loading comments…")
		}
		return mutedStyle.Render(emptyText)
	}

	blocks := make([]string, len(rows))
	for i, r := range rows {
		blocks[i] = m.viewComment(r, i == m.cursor)
	}

	var footer string
	switch {
	case m.sec.HasMore() && m.sec.Loading():
		footer = m.spin.View() + mutedStyle.Render(" Loading more…")
	case m.sec.HasMore():
		footer = mutedStyle.Render("Press m to load more.")
	}

	if footer != "" && height > 0 {
		height = max(1, height-1)
	}

	start, end := window(blocks, m.cursor, height)
	out := strings.Join(blocks[start:end], "\n")
	if footer != "" {
		out += "\n" + footer
	}

	return out
}

func (m Model) viewComment(r row, selected bool) string {
	c := r.comment

	var b strings.Builder
	b.WriteString(header(c))
	b.WriteString(m.pending(c.ID))
	b.WriteString("\n")

	editing := m.mode == modeEdit && m.target == c.ID
	if editing {
		b.WriteString(m.editor.View())
		if it, ok := m.sec.Item(c.ID); ok && it.EditError() != nil {
			b.WriteString("\n" + errorStyle.Render(api.UserMessage(it.EditError())))
		}
	} else {
		b.WriteString(renderMarkdown(markdown.Parse(c.Content)))
	}

	if line := moderation(c); line != "" {
		b.WriteString("\n" + line)
	}

	if m.mode == modeConfirmDelete && m.target == c.ID {
		b.WriteString("\n" + errorStyle.Render("Delete this comment? y/N"))
	}

	if m.mode == modeReply && m.target == c.ID {
		b.WriteString("\n" + m.editor.View())
		if it, ok := m.sec.Item(c.ID); ok && it.ReplyError() != nil {
			b.WriteString("\n" + errorStyle.Render(api.UserMessage(it.ReplyError())))
		}
	}

	return block(b.String(), r.level, selected, m.width)
}

// pending — пометки незавершённых операций над комментарием.
func (m Model) pending(id models.ID) string {
	labels := []struct {
		op   section.Op
		text string
	}{
		{section.OpEdit, "saving"},
		{section.OpDelete, "deleting"},
		{section.OpReply, "replying"},
		{section.OpReport, "reporting"},
	}

	var out []string
	for _, l := range labels {
		if m.sec.Status(id, l.op) == section.Pending {
			out = append(out, l.text+"…")
		}
	}

	if len(out) == 0 {
		return ""
	}

	return " " + mutedStyle.Render(strings.Join(out, " "))
}

func (m Model) viewReport() string {
	d := m.sec.Dialog()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Report comment"))
	b.WriteString("\n\n")

	for _, r := range models.ReportReasons() {
		mark := "( )"
		if r == d.Reason() {
			mark = "(•)"
		}
		b.WriteString(mark + " " + r.Label() + "\n")
	}

	b.WriteString("\n" + m.details.View())

	if err := d.Err(); err != nil {
		b.WriteString("\n" + errorStyle.Render(reportError(err)))
	}

	if d.Submitting() {
		b.WriteString("\n" + m.spin.View() + mutedStyle.Render(" Sending…"))
	}

	return dialogStyle.Render(b.String())
}

func reportError(err error) string {
	if errors.Is(err, report.ErrNoReason) {
		return "Please choose a reason."
	}

	return api.UserMessage(err)
}

func (m Model) viewBottom() string {
	var lines []string

	for _, n := range m.sec.Notices() {
		if n.Level == section.Error {
			lines = append(lines, errorStyle.Render("✗ "+n.Text))
		} else {
			lines = append(lines, infoStyle.Render("✓ "+n.Text))
		}
	}

	if m.hint != "" {
		lines = append(lines, signInStyle.Render(m.hint))
	}

	switch m.mode {
	case modeBrowse:
		lines = append(lines, m.help.View(m.keys))
	case modeConfirmDelete:
	default:
		lines = append(lines, m.help.View(editorHelp{keys: m.keys, report: m.mode == modeReport}))
	}

	return "\n" + strings.Join(lines, "\n")
}
