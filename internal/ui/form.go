package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// field describes one labelled input of a [form].
type field struct {
	key      string
	label    string
	required bool
}

// form collects values for a fixed list of fields with one [textinput.Model] each.
type form struct {
	title  string
	fields []field
	inputs []textinput.Model
	focus  int
	err    error
	keys   keyMap
}

func newForm(title string, fields []field, values map[string]string) form {
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		in.Placeholder = f.label
		in.SetValue(values[f.key])
		inputs[i] = in
	}
	if len(inputs) > 0 {
		inputs[0].Focus()
	}
	return form{title: title, fields: fields, inputs: inputs, keys: newKeyMap()}
}

// Values returns the current input of every field keyed by field key.
func (f form) Values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for i, fd := range f.fields {
		out[fd.key] = f.inputs[i].Value()
	}
	return out
}

func (f *form) setFocus(i int) tea.Cmd {
	n := len(f.inputs)
	if n == 0 {
		return nil
	}
	f.inputs[f.focus].Blur()
	f.focus = (i%n + n) % n
	return f.inputs[f.focus].Focus()
}

// missing lists required fields left blank.
func (f form) missing() []string {
	var out []string
	for i, fd := range f.fields {
		if fd.required && strings.TrimSpace(f.inputs[i].Value()) == "" {
			out = append(out, strings.ToLower(fd.label))
		}
	}
	return out
}

func (f form) Update(msg tea.Msg) (form, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case msg.String() == "ctrl+c":
			return f, tea.Quit
		case key.Matches(msg, f.keys.back):
			return f, func() tea.Msg { return formCancelledMsg{} }
		case key.Matches(msg, f.keys.prev):
			return f, f.setFocus(f.focus - 1)
		case key.Matches(msg, f.keys.next):
			return f, f.setFocus(f.focus + 1)
		case key.Matches(msg, f.keys.enter):
			if f.focus < len(f.inputs)-1 {
				return f, f.setFocus(f.focus + 1)
			}
			if missing := f.missing(); len(missing) > 0 {
				f.err = fmt.Errorf("%s required", strings.Join(missing, ", "))
				return f, nil
			}
			values := f.Values()
			return f, func() tea.Msg { return formSubmittedMsg{values: values} }
		}
	}

	if len(f.inputs) == 0 {
		return f, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f form) View() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(f.title))
	b.WriteString("\n")
	for i, fd := range f.fields {
		label := fd.label
		if fd.required {
			label += " *"
		}
		style := styles.label
		if i == f.focus {
			style = style.Inherit(styles.active)
		}
		fmt.Fprintf(&b, "%s %s\n", style.Render(label), f.inputs[i].View())
	}
	if f.err != nil {
		fmt.Fprintf(&b, "\n%s\n", styles.err.Render(f.err.Error()))
	}
	return b.String()
}
