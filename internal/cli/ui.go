package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives command output. Tests replace it.
var stdout io.Writer = os.Stdout

// =============================================================================
// Styles
// =============================================================================

var (
	colorAccent  = lipgloss.Color("36")  // teal: names, headings
	colorOK      = lipgloss.Color("35")  // green: success, installed
	colorWarn    = lipgloss.Color("220") // amber
	colorFail    = lipgloss.Color("167") // soft red
	colorLink    = lipgloss.Color("75")  // light blue
	colorValue   = lipgloss.Color("255") // bright white
	colorLabel   = lipgloss.Color("245") // gray
	colorSubdued = lipgloss.Color("240") // dim gray
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleLink      = lipgloss.NewStyle().Foreground(colorLink).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorSubdued)
	StyleValue     = lipgloss.NewStyle().Foreground(colorValue)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)

	styleLabel       = lipgloss.NewStyle().Foreground(colorLabel).Width(12)
	styleInstalled   = lipgloss.NewStyle().Foreground(colorOK)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
)

// status line prefixes
var (
	markSuccess = lipgloss.NewStyle().Foreground(colorOK).Render("✓")
	markError   = lipgloss.NewStyle().Foreground(colorFail).Render("✗")
	markWarning = lipgloss.NewStyle().Foreground(colorWarn).Render("!")
	markInfo    = lipgloss.NewStyle().Foreground(colorLabel).Render("•")
)

const iconArrow = "→"

// =============================================================================
// Status Lines
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Fprintln(stdout, markSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintln(stdout, markError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(stdout, markWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(stdout, markInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// =============================================================================
// Package Output
// =============================================================================

// printTitle prints a bold heading.
func printTitle(s string) {
	fmt.Fprintln(stdout, StyleTitle.Render(s))
}

// printKeyValue prints a labeled value. Empty values are skipped so callers
// can print optional metadata unconditionally.
func printKeyValue(key, value string) {
	if value != "" {
		fmt.Fprintln(stdout, styleLabel.Render(key)+" "+StyleValue.Render(value))
	}
}

// printKeyLink is printKeyValue for URLs.
func printKeyLink(key, url string) {
	if url != "" {
		fmt.Fprintln(stdout, styleLabel.Render(key)+" "+StyleLink.Render(url))
	}
}

// printVersionLine prints one "name version" row. source names where the
// version comes from when that is not obvious; installed versions are marked.
func printVersionLine(name, version, source string, installed bool) {
	var b strings.Builder
	b.WriteString("  " + StyleHighlight.Render(name) + " " + StyleValue.Render(version))
	if source != "" {
		b.WriteString(" " + StyleDim.Render(iconArrow+" "+source))
	}
	if installed {
		b.WriteString(" " + styleInstalled.Render("installed"))
	}
	fmt.Fprintln(stdout, b.String())
}

func joinList(items []string) string {
	return strings.Join(items, ", ")
}
