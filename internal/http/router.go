package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"ledgerpro/internal/auth"
	"ledgerpro/internal/config"
	"ledgerpro/internal/http/handler"
	mw "ledgerpro/internal/http/middleware"
	"ledgerpro/internal/ledger"
	"ledgerpro/internal/reminder"
)

func NewRouter(cfg config.Config, svc *ledger.Service, disp *reminder.Dispatcher, jwtSvc *auth.JWT, log *logrus.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{Ledger: svc, JWT: jwtSvc, Log: log}
	ch := &handler.ContributionHandler{Ledger: svc, Log: log}
	rh := &handler.ReceiptHandler{Ledger: svc, Log: log}
	eh := &handler.ExpenseHandler{Ledger: svc, Log: log}
	uh := &handler.UserHandler{Ledger: svc, Log: log}
	reph := &handler.ReportHandler{Ledger: svc, Log: log}
	arch := &handler.ArchiveHandler{Ledger: svc, Log: log}
	conh := &handler.ContributorsHandler{Ledger: svc, Log: log}
	pch := &handler.PastContributionsHandler{Ledger: svc, Log: log}
	remh := &handler.ReminderHandler{Dispatcher: disp, Log: log}

	admin := auth.RequireAdmin(jwtSvc)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/token", ah.Token)

		r.Route("/contributions", func(r chi.Router) {
			r.Get("/", ch.List)
			r.With(admin).Post("/", ch.Create)
			r.Get("/{id}", ch.Get)
			r.With(admin).Put("/{id}", ch.Update)
			r.With(admin).Patch("/{id}", ch.Toggle)
		})
		r.With(admin).Post("/cash-contributions", ch.RecordCash)

		r.Route("/receipts", func(r chi.Router) {
			r.Get("/", rh.List)
			r.Post("/", rh.Create)
			r.With(admin).Patch("/{id}", rh.Review)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", eh.List)
			r.With(admin).Post("/", eh.Create)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", uh.List)
			r.Get("/profile", uh.Profile)
			r.Post("/profile", uh.UpsertProfile)
			r.Get("/{id}", uh.Get)
		})

		r.Get("/contributors", conh.List)
		r.Get("/past-contributions", pch.List)

		r.With(admin).Post("/archive-expired", arch.Run)

		r.Route("/send-reminders", func(r chi.Router) {
			r.With(admin).Post("/", remh.Broadcast)
			r.Get("/", remh.BroadcastStatus)
		})
		r.Route("/scheduled-reminders", func(r chi.Router) {
			r.With(admin).Post("/", remh.RunScheduled)
			r.Get("/", remh.ScheduledStatus)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/dashboard", reph.Dashboard)
			r.Get("/export", reph.Export)
		})
	})

	return r
}
