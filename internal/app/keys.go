package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings that work everywhere, regardless of which
// page is active. SelectFirmware only fires while the sidebar has
// focus, so pages keep the letter for their own shortcuts.
type KeyMap struct {
	ToggleFocus    key.Binding
	SelectFirmware key.Binding
	Help           key.Binding
	Quit           key.Binding
}

var GlobalKeys = KeyMap{
	ToggleFocus: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "toggle focus"),
	),
	SelectFirmware: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pick firmware"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
