package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/jonnatanMerchan/LoanManagement/docs"
	"github.com/jonnatanMerchan/LoanManagement/internal/api/handler"
	mw "github.com/jonnatanMerchan/LoanManagement/internal/api/middleware"
	"github.com/jonnatanMerchan/LoanManagement/internal/config"
	"github.com/jonnatanMerchan/LoanManagement/internal/domain/customer"
	"github.com/jonnatanMerchan/LoanManagement/internal/domain/loan"
	"github.com/jonnatanMerchan/LoanManagement/internal/domain/payment"
)

func SetupRouter(loanService loan.Service, paymentService payment.Service, customerService customer.Service, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupCustomerRoutes(router, cfg, customerService, loanService, logger)
	setupLoanRoutes(router, cfg, loanService, paymentService, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupLoanRoutes(router *chi.Mux, cfg *config.Config, loanService loan.Service, paymentService payment.Service, logger *slog.Logger) {
	loanHandler := handler.NewLoanHandler(loanService, logger)
	paymentHandler := handler.NewPaymentHandler(paymentService, logger)
	authHandler := handler.NewAuthHandler(*cfg, logger)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})

	router.Route("/loans", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", loanHandler.CreateLoan)
		r.Route("/{loanID}", func(r chi.Router) {
			r.Get("/", loanHandler.GetLoan)
			r.Post("/approve", loanHandler.ApproveLoan)
			r.Post("/reject", loanHandler.RejectLoan)
			r.Post("/activate", loanHandler.ActivateLoan)
			r.Get("/balance", paymentHandler.GetBalance)
			r.Post("/payments", paymentHandler.CreatePayment)
			r.Get("/payments", paymentHandler.ListPayments)
			r.Get("/payments/total", paymentHandler.GetTotalPaid)
		})
	})

	router.Route("/payments", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Get("/{paymentID}", paymentHandler.GetPayment)
	})
}

func setupCustomerRoutes(router chi.Router, cfg *config.Config, svc customer.Service, loanService loan.Service, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc, logger)
	loanHandler := handler.NewLoanHandler(loanService, logger)

	router.Route("/customers", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.CreateCustomer)
		r.Get("/", h.ListCustomers)
		r.Route("/{customerID}", func(r chi.Router) {
			r.Get("/", h.GetCustomer)
			r.Delete("/", h.DeactivateCustomer)
			r.Get("/loans", loanHandler.ListLoansByCustomer)
		})
	})
}
