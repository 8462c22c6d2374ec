package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const wrapWidth = 80

// Palette for the two themes
var (
	lightMuted   = lipgloss.Color("#5c6773")
	lightPrimary = lipgloss.Color("#101F38")
	darkMuted    = lipgloss.Color("#8a94a6")
	darkPrimary  = lipgloss.Color("#8BC34A")
)

// styles holds the lipgloss styles for one theme
type styles struct {
	Status lipgloss.Style
	Prompt lipgloss.Style
}

func newStyles(dark bool) styles {
	muted, primary := lightMuted, lightPrimary
	if dark {
		muted, primary = darkMuted, darkPrimary
	}
	return styles{
		Status: lipgloss.NewStyle().Foreground(muted).Italic(true),
		Prompt: lipgloss.NewStyle().Foreground(primary).Bold(true),
	}
}

// styled applies a style unless output is plain
func styled(style lipgloss.Style, text string) string {
	if plain {
		return text
	}
	return style.Render(text)
}

// renderMarkdown renders text for the terminal in the dark or light style.
// Rendering errors fall back to the raw text.
func renderMarkdown(text string, dark bool) string {
	style := "light"
	if dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return out
}

// printAssistant writes an assistant message. Valuations are markdown; the
// short conversational replies are printed as they are.
func printAssistant(w io.Writer, text string, dark bool) {
	if !plain && looksLikeMarkdown(text) {
		fmt.Fprint(w, renderMarkdown(text, dark))
		return
	}
	fmt.Fprintf(w, "\n%s\n\n", text)
}

func looksLikeMarkdown(text string) bool {
	return strings.Contains(text, "# ") || strings.Contains(text, "**") || strings.Contains(text, "\n- ")
}
