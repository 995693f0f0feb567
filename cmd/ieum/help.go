package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

func printHelp(out io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F5A524")).
		Bold(true).
		Render("I E U M")

	sub := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("일반 모드와 시니어 모드, 두 가지 방법으로 로그인합니다.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"ieum", "Choose a mode and sign in"},
		{"ieum login", "Open the normal-mode login"},
		{"ieum senior", "Open the senior login (phone code)"},
		{"ieum status", "Show the saved normal-mode session"},
		{"ieum logout", "Clear the saved normal-mode session"},
		{"ieum --version", "Show version"},
		{"ieum help", "You are here"},
	}

	fmt.Fprintf(out, "\n  %s\n\n  %s\n\n  Commands:\n", title, sub) //nolint:errcheck
	for _, c := range commands {
		fmt.Fprintf(out, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-16s", c.cmd)), descStyle.Render(c.desc)) //nolint:errcheck
	}
	note := descStyle.Render("Senior sessions end when ieum exits.")
	fmt.Fprintf(out, "\n  %s\n\n", note) //nolint:errcheck
}
