package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/moon-three/account/internal/account"
)

type accountsState int

const (
	accountsStateUser accountsState = iota
	accountsStateBrowse
	accountsStateOpen
)

type AccountsModel struct {
	CommonModel
	accountService *account.Service

	state accountsState
	table table.Model
	form  *huh.Form

	userID   int64
	accounts []*account.Account
	loading  bool
	err      error
	status   string

	// Form field bindings
	formUserID  string
	formBalance string
}

type loadAccountsMsg struct {
	accounts []*account.Account
	err      error
}

type accountSavedMsg struct {
	err error
}

func NewAccountsModel(accountSvc *account.Service) AccountsModel {
	columns := []table.Column{
		{Title: "Number", Width: 14},
		{Title: "Status", Width: 8},
		{Title: "Balance", Width: 14},
		{Title: "Registered", Width: 20},
		{Title: "Closed", Width: 20},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m := AccountsModel{
		accountService: accountSvc,
		table:          t,
	}
	m.form = m.newUserForm()

	return m
}

func (m AccountsModel) Title() string { return "Accounts" }

func (m AccountsModel) ShortHelp() string {
	switch m.state {
	case accountsStateUser:
		return "Enter: select user | Esc: back"
	case accountsStateBrowse:
		return "Esc: back | o: open account | c: close selected | r: refresh"
	case accountsStateOpen:
		return "Navigate form | Esc: cancel"
	}

	return ""
}

func (m AccountsModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m AccountsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadAccountsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.accounts = msg.accounts
		m.refreshTable()

		return m, nil

	case accountSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = "Saved"
		}

		m.state = accountsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadAccountsCmd()
	}

	switch m.state {
	case accountsStateUser:
		return m.updateUserForm(msg)
	case accountsStateBrowse:
		return m.updateBrowse(msg)
	case accountsStateOpen:
		return m.updateOpenForm(msg)
	}

	return m, nil
}

func (m AccountsModel) updateUserForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	userID, _ := strconv.ParseInt(strings.TrimSpace(m.form.GetString("user_id")), 10, 64)
	m.userID = userID
	m.state = accountsStateBrowse
	m.form = nil
	m.loading = true
	m.table.Focus()

	return m, m.loadAccountsCmd()
}

func (m AccountsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadAccountsCmd()
		case "o":
			return m.enterOpenForm()
		case "c":
			return m, m.closeSelectedCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m AccountsModel) enterOpenForm() (tea.Model, tea.Cmd) {
	m.formBalance = "0"
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("initial_balance").
				Title("Initial balance").
				Value(&m.formBalance).
				Validate(validateAmountString),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = accountsStateOpen
	m.table.Blur()

	return m, m.form.Init()
}

func (m AccountsModel) updateOpenForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = accountsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	balance, _ := strconv.ParseInt(strings.TrimSpace(m.form.GetString("initial_balance")), 10, 64)

	return m, m.openAccountCmd(balance)
}

func (m AccountsModel) loadAccountsCmd() tea.Cmd {
	userID := m.userID
	svc := m.accountService

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		accounts, err := svc.ListByUser(ctx, userID)

		return loadAccountsMsg{accounts: accounts, err: err}
	}
}

func (m AccountsModel) openAccountCmd(initialBalance int64) tea.Cmd {
	userID := m.userID
	svc := m.accountService

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		_, err := svc.Open(ctx, userID, initialBalance)

		return accountSavedMsg{err: err}
	}
}

func (m AccountsModel) closeSelectedCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.accounts) {
		return nil
	}

	userID := m.userID
	number := m.accounts[idx].Number
	svc := m.accountService

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		_, err := svc.Close(ctx, userID, number)

		return accountSavedMsg{err: err}
	}
}

func (m *AccountsModel) refreshTable() {
	rows := make([]table.Row, len(m.accounts))

	for i, a := range m.accounts {
		closed := ""
		if a.ClosedAt != nil {
			closed = FormatTime(*a.ClosedAt)
		}

		rows[i] = table.Row{
			a.Number,
			string(a.Status),
			FormatAmount(a.Balance),
			FormatTime(a.RegisteredAt),
			closed,
		}
	}

	m.table.SetRows(rows)
}

func (m AccountsModel) newUserForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("user_id").
				Title("User ID").
				Value(&m.formUserID).
				Validate(validateIDString),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m AccountsModel) View() string {
	if m.state == accountsStateUser && m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			"Accounts\n\n" + m.form.View(),
		)
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading accounts...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf("Accounts for user %d", m.userID)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.status != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.status)
	}

	if m.state == accountsStateOpen && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("Open Account\n\n" + m.form.View())

		content = lipgloss.JoinVertical(lipgloss.Left, content, panel)
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func validateIDString(s string) error {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 1 {
		return fmt.Errorf("must be a positive number")
	}

	return nil
}

func validateAmountString(s string) error {
	amount, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || amount < 0 {
		return fmt.Errorf("must be a non-negative number")
	}

	return nil
}
