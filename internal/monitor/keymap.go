package monitor

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings
type KeyMap struct {
	Up            key.Binding
	Down          key.Binding
	Left          key.Binding
	Right         key.Binding
	Tab           key.Binding
	Snapshot      key.Binding
	Trace         key.Binding
	Quit          key.Binding
	SelectProcess key.Binding
	Enter         key.Binding
	Escape        key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Snapshot, k.Trace, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Tab, k.Snapshot, k.Trace, k.SelectProcess, k.Quit},
	}
}

var keys = KeyMap{
	Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:          key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:         key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
	Tab:           key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch view")),
	Snapshot:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "heap snapshot")),
	Trace:         key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "cpu trace")),
	Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	SelectProcess: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "select process")),
	Enter:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Escape:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	PageUp:        key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
	PageDown:      key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdown", "page down")),
}
