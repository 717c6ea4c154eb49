package main

import (
	"errors"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// askConfirm shows a yes/no prompt defaulting to no. Ctrl+C counts as
// a decline so callers fall through to their cancel path.
func askConfirm(message string) (bool, error) {
	var yes bool
	err := survey.AskOne(&survey.Confirm{Message: message, Default: false}, &yes)
	if err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return false, nil
		}
		return false, err
	}
	return yes, nil
}

// askSelect shows a single-choice menu. Ctrl+C surfaces as
// terminal.InterruptErr so menu loops can unwind.
func askSelect(message string, options []string) (string, error) {
	var choice string
	err := survey.AskOne(&survey.Select{Message: message, Options: options, PageSize: 12}, &choice)
	if err != nil {
		return "", err
	}
	return choice, nil
}

// askText reads a free-form line. Ctrl+C surfaces as
// terminal.InterruptErr.
func askText(message string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Input{Message: message}, &answer)
	if err != nil {
		return "", err
	}
	return answer, nil
}

// interactiveTerminal reports whether stdin is attached to a terminal.
// Prompt-driven commands fall back to plain output without one.
func interactiveTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
