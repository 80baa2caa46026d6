package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap — привязки клавиш ленты и редакторов.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	New      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Like     key.Binding
	Reply    key.Binding
	Report   key.Binding
	LoadMore key.Binding
	Reload   key.Binding
	Dismiss  key.Binding
	Help     key.Binding
	Quit     key.Binding

	Submit  key.Binding
	Cancel  key.Binding
	Confirm key.Binding
	Next    key.Binding
	Prev    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new comment")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Like:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "like")),
		Reply:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reply")),
		Report:   key.NewBinding(key.WithKeys("!"), key.WithHelp("!", "report")),
		LoadMore: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "load more")),
		Reload:   key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
		Dismiss:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss notice")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Submit:  key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "send")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Confirm: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next reason")),
		Prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev reason")),
	}
}

// ShortHelp реализует help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.New, k.Like, k.Reply, k.Help, k.Quit}
}

// FullHelp реализует help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.LoadMore, k.Reload},
		{k.New, k.Edit, k.Delete, k.Reply},
		{k.Like, k.Report, k.Dismiss},
		{k.Help, k.Quit},
	}
}

// editorHelp — подсказка внутри редакторов.
type editorHelp struct {
	keys   keyMap
	report bool
}

func (e editorHelp) ShortHelp() []key.Binding {
	if e.report {
		return []key.Binding{e.keys.Next, e.keys.Prev, e.keys.Submit, e.keys.Cancel}
	}

	return []key.Binding{e.keys.Submit, e.keys.Cancel}
}

func (e editorHelp) FullHelp() [][]key.Binding { return [][]key.Binding{e.ShortHelp()} }
