package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/vesmirov/fundhub/internal/api/auth"
	"github.com/vesmirov/fundhub/internal/api/budget"
	"github.com/vesmirov/fundhub/internal/api/currency"
	"github.com/vesmirov/fundhub/internal/api/fund"
	"github.com/vesmirov/fundhub/internal/api/profile"
	"github.com/vesmirov/fundhub/internal/api/transaction"
	"github.com/vesmirov/fundhub/internal/api/user"
)

// Config carries the handlers and middleware needed to assemble the router.
// Server-wide middleware (request ID, logging, recoverer, metrics) are applied
// before mounting this router in main.go.
type Config struct {
	AuthHandler        auth.Handler
	UserHandler        user.Handler
	ProfileHandler     profile.Handler
	CurrencyHandler    currency.Handler
	FundHandler        fund.Handler
	TransactionHandler transaction.Handler
	BudgetHandler      budget.Handler

	Authenticate      func(http.Handler) http.Handler
	RequireAdmin      func(http.Handler) http.Handler
	RequireRegistered func(http.Handler) http.Handler
}

// SetupRouter wires all API routes. Public routes come first, then
// authenticated routes split into registered-user and admin groups. The
// role middleware rejects before any handler data access, so a denied
// request always gets the same 403 regardless of the target resource.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Public routes, no token required.
		r.Group(func(r chi.Router) {
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/auth/refresh", cfg.AuthHandler.Refresh)
			r.Post("/users/sign-up", cfg.UserHandler.SignUp)
		})

		// Authenticated routes.
		r.Group(func(r chi.Router) {
			r.Use(cfg.Authenticate)

			r.Post("/auth/logout", cfg.AuthHandler.Logout)

			// Registered users and admins.
			r.Group(func(r chi.Router) {
				r.Use(cfg.RequireRegistered)

				r.Get("/users/account", cfg.UserHandler.GetAccount)
				r.Put("/users/account", cfg.UserHandler.UpdateAccount)
				r.Patch("/users/account", cfg.UserHandler.UpdateAccount)

				r.Get("/profile", cfg.ProfileHandler.GetProfile)
				r.Post("/profile", cfg.ProfileHandler.CreateProfile)
				r.Put("/profile", cfg.ProfileHandler.UpdateProfile)
				r.Patch("/profile", cfg.ProfileHandler.UpdateProfile)
				r.Get("/profile/budget/{period}", cfg.BudgetHandler.GetUserBudget)
				r.Put("/profile/budget/{period}", cfg.BudgetHandler.UpsertUserBudget)

				r.Get("/currencies", cfg.CurrencyHandler.ListCurrencies)
				r.Get("/currencies/{currencyID}", cfg.CurrencyHandler.GetCurrency)

				r.Get("/funds", cfg.FundHandler.ListFunds)
				r.Post("/funds", cfg.FundHandler.CreateFund)
				r.Get("/funds/{fundID}", cfg.FundHandler.GetFund)
				r.Put("/funds/{fundID}", cfg.FundHandler.UpdateFund)
				r.Patch("/funds/{fundID}", cfg.FundHandler.UpdateFund)
				r.Delete("/funds/{fundID}", cfg.FundHandler.DeleteFund)
				r.Get("/funds/{fundID}/budget/{period}", cfg.BudgetHandler.GetFundBudget)
				r.Put("/funds/{fundID}/budget/{period}", cfg.BudgetHandler.UpsertFundBudget)

				r.Get("/funds/{fundID}/transactions", cfg.TransactionHandler.ListTransactions)
				r.Post("/funds/{fundID}/transactions", cfg.TransactionHandler.CreateTransaction)
				r.Get("/transactions/{transactionID}", cfg.TransactionHandler.GetTransaction)
				r.Delete("/transactions/{transactionID}", cfg.TransactionHandler.DeleteTransaction)
			})

			// Admin only.
			r.Group(func(r chi.Router) {
				r.Use(cfg.RequireAdmin)

				r.Get("/users", cfg.UserHandler.ListUsers)
				r.Post("/users", cfg.UserHandler.CreateUser)
				r.Get("/users/{userID}", cfg.UserHandler.GetUser)
				r.Put("/users/{userID}", cfg.UserHandler.UpdateUser)
				r.Patch("/users/{userID}", cfg.UserHandler.UpdateUser)
				r.Delete("/users/{userID}", cfg.UserHandler.DeleteUser)

				r.Post("/currencies", cfg.CurrencyHandler.CreateCurrency)
				r.Put("/currencies/{currencyID}", cfg.CurrencyHandler.UpdateCurrency)
				r.Delete("/currencies/{currencyID}", cfg.CurrencyHandler.DeleteCurrency)
			})
		})
	})

	return r
}
