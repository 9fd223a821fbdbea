package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/moon-three/account/internal/transaction"
)

type queryState int

const (
	queryStateForm queryState = iota
	queryStateDone
)

type QueryModel struct {
	CommonModel
	txService *transaction.Service

	state  queryState
	form   *huh.Form
	result *transaction.Transaction
	err    error

	formTxID string
}

type queryResultMsg struct {
	tx  *transaction.Transaction
	err error
}

func NewQueryModel(txSvc *transaction.Service) QueryModel {
	m := QueryModel{txService: txSvc}
	m.form = m.newForm()

	return m
}

func (m QueryModel) Title() string { return "Query Transaction" }

func (m QueryModel) ShortHelp() string {
	if m.state == queryStateForm {
		return "Enter: query | Esc: back"
	}

	return "Esc: back | n: new query"
}

func (m QueryModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m QueryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(queryResultMsg); ok {
		m.state = queryStateDone
		m.result = msg.tx
		m.err = msg.err

		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == queryStateDone && keyMsg.String() == "n" {
			m.state = queryStateForm
			m.result = nil
			m.err = nil
			m.form = m.newForm()

			return m, m.form.Init()
		}
	}

	if m.state != queryStateForm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	txID := strings.TrimSpace(m.form.GetString("transaction_id"))

	return m, m.queryCmd(txID)
}

func (m QueryModel) queryCmd(txID string) tea.Cmd {
	svc := m.txService

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		tx, err := svc.Query(ctx, txID)

		return queryResultMsg{tx: tx, err: err}
	}
}

func (m QueryModel) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("transaction_id").
				Title("Transaction ID").
				Value(&m.formTxID).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("transaction id cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m QueryModel) View() string {
	if m.state == queryStateForm {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			"Query Transaction\n\n" + m.form.View(),
		)
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("Query failed: %v\n\nn: new query | Esc: back", m.err),
		)
	}

	body := fmt.Sprintf(
		"Account:     %s\nKind:        %s\nOutcome:     %s\nTransaction: %s\nAmount:      %s\nSnapshot:    %s\nAt:          %s",
		m.result.AccountNumber,
		m.result.Kind,
		m.result.Outcome,
		m.result.TxID,
		FormatAmount(m.result.Amount),
		FormatAmount(m.result.BalanceSnapshot),
		FormatTime(m.result.TransactedAt),
	)

	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Render(body + "\n\nn: new query | Esc: back")
}
