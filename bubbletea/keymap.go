package bubbletea

import "github.com/charmbracelet/bubbles/key"

// ConfirmKeyMap defines the key bindings for the override prompt.
type ConfirmKeyMap struct {
	Accept    key.Binding
	Reject    key.Binding
	Interrupt key.Binding
}

// DefaultConfirmKeyMap returns the default yes/no bindings.
func DefaultConfirmKeyMap() ConfirmKeyMap {
	return ConfirmKeyMap{
		Accept: key.NewBinding(
			key.WithKeys("y", "Y", "enter"),
			key.WithHelp("y", "fail the test"),
		),
		Reject: key.NewBinding(
			key.WithKeys("n", "N"),
			key.WithHelp("n", "override to passing"),
		),
		Interrupt: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "abort (failure stands)"),
		),
	}
}
