package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// PageID identifies each page in the application.
type PageID int

const (
	FirmwarePage PageID = iota
	FlashPage
	DevicesPage
	HistoryPage
	SettingsPage
)

var PageOrder = []PageID{
	FirmwarePage,
	FlashPage,
	DevicesPage,
	HistoryPage,
	SettingsPage,
}

// Page is the interface every page in the application implements.
type Page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Page, tea.Cmd)
	View() string
	Name() string
	ShortHelp() []key.Binding
	SetSize(width, height int)
}

// InputCapturer is an optional interface for pages with text inputs.
// When InputCaptured returns true, the app forwards all keys directly
// to the page instead of processing shortcuts like q, ?, left, etc.
type InputCapturer interface {
	InputCaptured() bool
}

// FirmwareSelectedMsg is broadcast to all pages when a firmware asset is
// selected.
type FirmwareSelectedMsg struct {
	Name   string
	Source string
	Repo   string
	Tag    string
}
