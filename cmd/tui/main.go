package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/moon-three/account/cmd/tui/internal/view"
	"github.com/moon-three/account/internal/account"
	accountStore "github.com/moon-three/account/internal/account/store"
	"github.com/moon-three/account/internal/config"
	"github.com/moon-three/account/internal/database"
	"github.com/moon-three/account/internal/lock"
	"github.com/moon-three/account/internal/redis"
	"github.com/moon-three/account/internal/transaction"
	txStore "github.com/moon-three/account/internal/transaction/store"
)

type model struct {
	accountService *account.Service
	txService      *transaction.Service
	locks          *lock.Coordinator

	currentView View

	accountsView view.AccountsModel
	operateView  view.OperateModel
	queryView    view.QueryModel
}

type View int

const (
	ViewMenu     View = 0
	ViewAccounts View = 1
	ViewOperate  View = 2
	ViewQuery    View = 3
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	locks := lock.NewCoordinator(redisClient, cfg.Lock.WaitBudget, cfg.Lock.Lease)
	accountSvc := account.NewService(accountStore.New(db))
	txSvc := transaction.NewService(txStore.New(db))

	return model{
		accountService: accountSvc,
		txService:      txSvc,
		locks:          locks,
		currentView:    ViewMenu,
		accountsView:   view.NewAccountsModel(accountSvc),
		operateView:    view.NewOperateModel(txSvc, locks),
		queryView:      view.NewQueryModel(txSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewAccounts
				m.accountsView = view.NewAccountsModel(m.accountService)

				return m, m.accountsView.Init()
			case "2":
				m.currentView = ViewOperate
				m.operateView = view.NewOperateModel(m.txService, m.locks)

				return m, m.operateView.Init()
			case "3":
				m.currentView = ViewQuery
				m.queryView = view.NewQueryModel(m.txService)

				return m, m.queryView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewAccounts:
		var newModel tea.Model
		newModel, cmd = m.accountsView.Update(msg)
		m.accountsView = newModel.(view.AccountsModel)
	case ViewOperate:
		var newModel tea.Model
		newModel, cmd = m.operateView.Update(msg)
		m.operateView = newModel.(view.OperateModel)
	case ViewQuery:
		var newModel tea.Model
		newModel, cmd = m.queryView.Update(msg)
		m.queryView = newModel.(view.QueryModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Account Service TUI\n\n" +
				"1. Accounts\n" +
				"2. Use / Cancel Balance\n" +
				"3. Query Transaction\n\n" +
				"q. Quit",
		)
	case ViewAccounts:
		return m.accountsView.View()
	case ViewOperate:
		return m.operateView.View()
	case ViewQuery:
		return m.queryView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
