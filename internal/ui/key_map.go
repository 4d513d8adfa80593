package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up         key.Binding
	down       key.Binding
	enter      key.Binding
	back       key.Binding
	yes        key.Binding
	no         key.Binding
	search     key.Binding
	sort       key.Binding
	order      key.Binding
	grade      key.Binding
	department key.Binding
	country    key.Binding
	reset      key.Binding
	add        key.Binding
	edit       key.Binding
	remove     key.Binding
	grades     key.Binding
	data       key.Binding
	next       key.Binding
	prev       key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
		search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		order:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "order")),
		grade:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "grade")),
		department: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "department")),
		country:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "country")),
		reset:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		remove:     key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		grades:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "grades")),
		data:       key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "data")),
		next:       key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		prev:       key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.search, k.sort, k.order, k.reset},
		{k.grade, k.department, k.country},
		{k.add, k.edit, k.remove, k.yes, k.no},
		{k.grades, k.data, k.quit},
	}
}
