package handler

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"ledgerpro/internal/ledger"
)

type ArchiveHandler struct {
	Ledger *ledger.Service
	Log    *logrus.Logger
}

// Run triggers the archival sweep. Admin button or cron; there is no internal
// timer.
func (h *ArchiveHandler) Run(w http.ResponseWriter, r *http.Request) {
	res, err := h.Ledger.ArchiveExpired(r.Context(), time.Now())
	if err != nil {
		serverError(h.Log, w, err, "archive: sweep")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Expired contributions processed successfully",
		"archived": res.Archived,
		"deleted":  res.Deleted,
		"total":    res.Total,
	})
}

type ContributorsHandler struct {
	Ledger *ledger.Service
	Log    *logrus.Logger
}

func (h *ContributorsHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.Ledger.Contributors(r.Context())
	if err != nil {
		serverError(h.Log, w, err, "contributors: list")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type PastContributionsHandler struct {
	Ledger *ledger.Service
	Log    *logrus.Logger
}

func (h *PastContributionsHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.Ledger.PastContributions(r.Context())
	if err != nil {
		serverError(h.Log, w, err, "past contributions: list")
		return
	}
	writeJSON(w, http.StatusOK, out)
}
