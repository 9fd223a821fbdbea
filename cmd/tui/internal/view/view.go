package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

// View is the interface implemented by every TUI screen: the account
// browser, the use/cancel runner and the transaction lookup.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views.
type CommonModel struct{}

// BackMsg signals a return to the main menu.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
