package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	focus   key.Binding
	next    key.Binding
	prev    key.Binding
	filters key.Binding
	toggle  key.Binding
	clear   key.Binding
	save    key.Binding
	plan    key.Binding
	retry   key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "search/results")),
		next:    key.NewBinding(key.WithKeys("right", "l", "ctrl+n"), key.WithHelp("→/l", "next page")),
		prev:    key.NewBinding(key.WithKeys("left", "h", "ctrl+p"), key.WithHelp("←/h", "prev page")),
		filters: key.NewBinding(key.WithKeys("f", "ctrl+f"), key.WithHelp("f", "filters")),
		toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "include/exclude")),
		clear:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear filters")),
		save:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		plan:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add to plan")),
		retry:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.focus},
		{k.next, k.prev, k.filters, k.toggle, k.clear},
		{k.save, k.plan, k.retry, k.back, k.quit},
	}
}
