package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// SecretPrompter asks the user for a secret without echoing it.
type SecretPrompter interface {
	PromptSecret(title string) (string, error)
}

// TerminalPrompter uses a masked huh input on a terminal and reads one line
// from In otherwise, so a secret can be piped in.
type TerminalPrompter struct {
	In  *os.File
	Out io.Writer
}

func (p TerminalPrompter) PromptSecret(title string) (string, error) {
	if term.IsTerminal(int(p.In.Fd())) {
		var value string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title(title).
					EchoMode(huh.EchoModePassword).
					Value(&value),
			),
		)
		form.WithTheme(GetHuhTheme())
		if err := form.Run(); err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}
		return value, nil
	}

	fmt.Fprint(p.Out, title+" ")
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var prompter SecretPrompter = TerminalPrompter{In: os.Stdin, Out: os.Stderr}

// SetSecretPrompter replaces the prompter and returns a function restoring
// the previous one.
func SetSecretPrompter(p SecretPrompter) func() {
	previous := prompter
	prompter = p
	return func() { prompter = previous }
}

// PromptSecret asks for a secret with the current prompter. An empty
// answer is an error.
func PromptSecret(title string) (string, error) {
	value, err := prompter.PromptSecret(title)
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", errors.New("no secret entered")
	}
	return value, nil
}
