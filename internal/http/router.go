package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/moon-three/account/internal/http/account"
	"github.com/moon-three/account/internal/http/statement"
	"github.com/moon-three/account/internal/http/transaction"
)

func New(
	accountsV1 *account.Handler,
	transactionsV1 *transaction.Handler,
	statementsV1 *statement.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Route("/account", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		accountsV1.Routes(r)
	})

	router.Route("/transaction", func(r chi.Router) {
		transactionsV1.Routes(r)
	})

	router.Route("/statement", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		statementsV1.Routes(r)
	})

	return router
}
