package core

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"golang.org/x/term"
)

var out io.Writer = os.Stdout

// SetOutput redirects progress output and returns a function restoring the
// previous writer.
func SetOutput(w io.Writer) func() {
	previous := out
	out = w
	return func() { out = previous }
}

// IsQuiet is true when a structured output format was requested; progress
// lines are then suppressed so stdout only carries the document.
func IsQuiet() bool {
	return outputFormat == "json" || outputFormat == "yaml"
}

// GetHuhTheme returns the Dracula based theme used by prompts.
func GetHuhTheme() *huh.Theme {
	t := huh.ThemeBase()
	var (
		background = lipgloss.AdaptiveColor{Dark: "#282a36"}
		selection  = lipgloss.AdaptiveColor{Dark: "#44475a"}
		foreground = lipgloss.AdaptiveColor{Dark: "#f8f8f2"}
		comment    = lipgloss.AdaptiveColor{Dark: "#6272a4"}
		orange     = lipgloss.AdaptiveColor{Dark: "#fd7b35"}
		red        = lipgloss.AdaptiveColor{Dark: "#ff5555"}
		yellow     = lipgloss.AdaptiveColor{Dark: "#f1fa8c"}
	)

	t.Focused.Base = t.Focused.Base.BorderForeground(selection)
	t.Focused.Title = t.Focused.Title.Foreground(orange)
	t.Focused.Description = t.Focused.Description.Foreground(comment)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(red)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(red)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Foreground(yellow).Background(orange).Bold(true)
	t.Focused.BlurredButton = t.Focused.BlurredButton.Foreground(foreground).Background(background)

	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(yellow)
	t.Focused.TextInput.Placeholder = t.Focused.TextInput.Placeholder.Foreground(comment)
	t.Focused.TextInput.Prompt = t.Focused.TextInput.Prompt.Foreground(yellow)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderForeground(comment)
	t.Blurred.TextInput.Prompt = t.Blurred.TextInput.Prompt.Foreground(comment)
	t.Blurred.TextInput.Text = t.Blurred.TextInput.Text.Foreground(foreground)

	return t
}

// PrintBanner prints a boxed title.
func PrintBanner(title string) {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#d35400", Dark: "#fd7b35"}).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "#7f8c8d", Dark: "#6272a4"}).
		Padding(0, 2)
	Print(style.Render(title) + "\n")
}

// PrintSection prints a section heading.
func PrintSection(title string) {
	Print("\n" + color.New(color.Bold, color.Underline).Sprint(title))
}

// PrintError prints a formatted error message with colors. Errors are
// shown even in quiet mode, on stderr.
func PrintError(operation string, err error) {
	w := out
	if IsQuiet() {
		w = os.Stderr
	}
	fmt.Fprintf(w, "%s %s\n",
		color.New(color.FgRed, color.Bold).Sprint("✗"),
		color.New(color.FgRed, color.Bold).Sprintf("%s failed", operation))
	fmt.Fprintf(w, "%s %s\n",
		color.New(color.FgRed).Sprint("Reason:"),
		color.New(color.FgWhite).Sprint(err.Error()))
}

// PrintWarning prints a formatted warning message with colors. Warnings go
// to stderr in quiet mode.
func PrintWarning(message string) {
	line := fmt.Sprintf("%s %s",
		color.New(color.FgYellow, color.Bold).Sprint("⚠"),
		color.New(color.FgYellow).Sprint(message))
	if IsQuiet() {
		fmt.Fprintln(os.Stderr, line)
		return
	}
	Print(line)
}

// PrintSuccess prints a formatted success message with colors
func PrintSuccess(message string) {
	Print(fmt.Sprintf("%s %s\n",
		color.New(color.FgGreen, color.Bold).Sprint("✓"),
		color.New(color.FgGreen).Sprint(message)))
}

func PrintInfo(message string) {
	Print(fmt.Sprintf("%s %s\n",
		color.New(color.FgBlue, color.Bold).Sprint("ℹ"),
		color.New(color.FgBlue).Sprint(message)))
}

func Print(message string) {
	if IsQuiet() {
		return
	}
	message = strings.TrimSuffix(message, "\n")
	fmt.Fprintln(out, message)
}

// RunWithSpinner runs action behind a spinner when stdout is a terminal and
// output is pretty; otherwise it just runs it.
func RunWithSpinner(title string, action func() error) error {
	if IsQuiet() || out != os.Stdout || !term.IsTerminal(int(os.Stdout.Fd())) {
		return action()
	}
	var actionErr error
	err := spinner.New().
		Title(" " + title).
		Action(func() {
			actionErr = action()
		}).
		Run()
	if err != nil {
		return err
	}
	return actionErr
}
