package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/moon-three/account/internal/account"
	"github.com/moon-three/account/internal/lock"
	"github.com/moon-three/account/internal/transaction"
	"github.com/moon-three/account/internal/user"
)

type operateState int

const (
	operateStateForm operateState = iota
	operateStateRunning
	operateStateDone
)

// OperateModel drives debit (use) and credit (cancel) operations. It is an
// orchestrating caller: it takes the account lock before running the engine
// and records a failure transaction when a domain rejection happens after
// the lock grant.
type OperateModel struct {
	CommonModel
	txService *transaction.Service
	locks     *lock.Coordinator

	state operateState
	form  *huh.Form

	result *transaction.Transaction
	err    error

	// Form field bindings
	formAction string
	formUser   string
	formTxID   string
	formNumber string
	formAmount string
}

type operateResultMsg struct {
	tx  *transaction.Transaction
	err error
}

func NewOperateModel(txSvc *transaction.Service, locks *lock.Coordinator) OperateModel {
	m := OperateModel{
		txService:  txSvc,
		locks:      locks,
		formAction: "use",
	}
	m.form = m.newForm()

	return m
}

func (m OperateModel) Title() string { return "Use / Cancel Balance" }

func (m OperateModel) ShortHelp() string {
	if m.state == operateStateForm {
		return "Navigate form | Esc: back"
	}

	return "Esc: back | n: new operation"
}

func (m OperateModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m OperateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(operateResultMsg); ok {
		m.state = operateStateDone
		m.result = msg.tx
		m.err = msg.err

		return m, nil
	}

	switch m.state {
	case operateStateForm:
		return m.updateForm(msg)
	case operateStateDone:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				return m, Back
			case "n":
				m.state = operateStateForm
				m.result = nil
				m.err = nil
				m.form = m.newForm()

				return m, m.form.Init()
			}
		}
	}

	return m, nil
}

func (m OperateModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
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

	action := m.form.GetString("action")
	userID, _ := strconv.ParseInt(strings.TrimSpace(m.form.GetString("user_id")), 10, 64)
	txID := strings.TrimSpace(m.form.GetString("transaction_id"))
	number := strings.TrimSpace(m.form.GetString("account_number"))
	amount, _ := strconv.ParseInt(strings.TrimSpace(m.form.GetString("amount")), 10, 64)

	m.state = operateStateRunning

	return m, m.operateCmd(action, userID, txID, number, amount)
}

func (m OperateModel) operateCmd(action string, userID int64, txID, number string, amount int64) tea.Cmd {
	svc := m.txService
	locks := m.locks

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		lease, err := locks.Acquire(ctx, number)
		if err != nil {
			return operateResultMsg{err: err}
		}
		defer lease.Release(ctx)

		var tx *transaction.Transaction

		if action == "use" {
			tx, err = svc.Use(ctx, userID, number, amount)
		} else {
			tx, err = svc.Cancel(ctx, txID, number, amount)
		}

		if err != nil && isDomainError(err) {
			recordFailed(ctx, svc, action, number, amount)
		}

		return operateResultMsg{tx: tx, err: err}
	}
}

func recordFailed(ctx context.Context, svc *transaction.Service, action, number string, amount int64) {
	var err error

	if action == "use" {
		err = svc.RecordFailedUse(ctx, number, amount)
	} else {
		err = svc.RecordFailedCancel(ctx, number, amount)
	}

	if err != nil {
		slog.Error("failed to record failed operation", "account_number", number, "error", err)
	}
}

func isDomainError(err error) bool {
	return errors.Is(err, user.ErrNotFound) ||
		errors.Is(err, account.ErrNotFound) ||
		errors.Is(err, account.ErrOwnerMismatch) ||
		errors.Is(err, account.ErrClosed) ||
		errors.Is(err, account.ErrInsufficientBalance) ||
		errors.Is(err, account.ErrInvalidAmount) ||
		errors.Is(err, transaction.ErrNotFound) ||
		errors.Is(err, transaction.ErrPartialCancel) ||
		errors.Is(err, transaction.ErrAccountMismatch)
}

func (m OperateModel) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("action").
				Title("Operation").
				Options(
					huh.NewOption("Use balance (debit)", "use"),
					huh.NewOption("Cancel transaction (credit)", "cancel"),
				).
				Value(&m.formAction),

			huh.NewInput().
				Key("user_id").
				Title("User ID (use only)").
				Value(&m.formUser),

			huh.NewInput().
				Key("transaction_id").
				Title("Transaction ID (cancel only)").
				Value(&m.formTxID),

			huh.NewInput().
				Key("account_number").
				Title("Account number").
				Value(&m.formNumber).
				Validate(func(s string) error {
					if len(strings.TrimSpace(s)) != 10 {
						return fmt.Errorf("must be 10 digits")
					}
					return nil
				}),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Value(&m.formAmount).
				Validate(validateAmountString),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m OperateModel) View() string {
	switch m.state {
	case operateStateForm:
		return lipgloss.NewStyle().Padding(1, 2).Render(
			"Use / Cancel Balance\n\n" + m.form.View(),
		)

	case operateStateRunning:
		return lipgloss.NewStyle().Padding(2).Render("Running operation...")

	case operateStateDone:
		if m.err != nil {
			return lipgloss.NewStyle().Padding(2).Render(
				fmt.Sprintf("Operation failed: %v\n\nn: new operation | Esc: back", m.err),
			)
		}

		body := fmt.Sprintf(
			"Operation succeeded\n\nAccount:     %s\nKind:        %s\nTransaction: %s\nAmount:      %s\nBalance:     %s\nAt:          %s",
			m.result.AccountNumber,
			m.result.Kind,
			m.result.TxID,
			FormatAmount(m.result.Amount),
			FormatAmount(m.result.BalanceSnapshot),
			FormatTime(m.result.TransactedAt),
		)

		return lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Render(body + "\n\nn: new operation | Esc: back")
	}

	return ""
}
