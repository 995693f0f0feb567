package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// field is one labelled text input.
type field struct {
	label       string
	value       string
	placeholder string
	secret      bool
	// hint is live feedback shown under the field while typing.
	hint string
}

// form is an ordered set of fields with one focused.
type form struct {
	fields []field
	focus  int
}

func newForm(fields ...field) form {
	return form{fields: fields}
}

func (f form) value(i int) string {
	return f.fields[i].value
}

func (f *form) set(i int, v string) {
	f.fields[i].value = v
}

func (f *form) setHint(i int, hint string) {
	f.fields[i].hint = hint
}

func (f form) last() bool {
	return f.focus == len(f.fields)-1
}

func (f *form) next() {
	f.focus = (f.focus + 1) % len(f.fields)
}

func (f *form) prev() {
	f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields)
}

func (f *form) reset() {
	for i := range f.fields {
		f.fields[i].value = ""
		f.fields[i].hint = ""
	}
	f.focus = 0
}

// handleKey moves focus or edits the focused field. It reports whether the
// key changed the focused field's text.
func (f *form) handleKey(msg tea.KeyMsg) (edited bool) {
	switch msg.String() {
	case "tab", "down":
		f.next()
		return false
	case "shift+tab", "up":
		f.prev()
		return false
	}
	cur := &f.fields[f.focus]
	before := cur.value
	cur.value = editKey(cur.value, msg)
	return cur.value != before
}

func (f form) view(style func(string) string) string {
	if style == nil {
		style = func(s string) string { return s }
	}
	var b strings.Builder
	for i, fl := range f.fields {
		cursor := " "
		label := metaStyle.Render(fl.label)
		if i == f.focus {
			cursor = accentStyle.Render(">")
			label = selectedStyle.Render(fl.label)
		}
		val := fl.value
		if fl.secret {
			val = masked(val)
		}
		switch {
		case val == "" && i != f.focus:
			val = inputPlaceholderStyle.Render(fl.placeholder)
		case i == f.focus:
			val = style(val) + accentStyle.Render("█")
		default:
			val = style(val)
		}
		fmt.Fprintf(&b, "%s %s: %s\n", cursor, label, val)
		if fl.hint != "" {
			fmt.Fprintf(&b, "    %s\n", hintStyle.Render(fl.hint))
		}
	}
	return b.String()
}
