package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ledgerpro/internal/ledger"
)

type ReportHandler struct {
	Ledger *ledger.Service
	Log    *logrus.Logger
}

// Dashboard serves both views: ?admin=1 returns the group-wide aggregates,
// otherwise ?firebaseUid= returns that member's balance.
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("admin") != "" {
		stats, err := h.Ledger.DashboardStats(r.Context())
		if err != nil {
			serverError(h.Log, w, err, "reports: admin dashboard")
			return
		}
		writeJSON(w, http.StatusOK, stats)
		return
	}

	uid := strings.TrimSpace(r.URL.Query().Get("firebaseUid"))
	if uid == "" {
		writeMessage(w, http.StatusBadRequest, "Missing firebaseUid")
		return
	}

	u, err := h.Ledger.ResolveUser(r.Context(), uid)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		serverError(h.Log, w, err, "reports: resolve user")
		return
	}

	bal, err := h.Ledger.UserBalance(r.Context(), u.ID)
	if err != nil {
		serverError(h.Log, w, err, "reports: user balance")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"totalPaid":         bal.TotalPaid,
		"pendingAmount":     bal.PendingAmount,
		"receiptsSubmitted": bal.ReceiptsSubmitted,
		"receiptsApproved":  bal.ReceiptsApproved,
	})
}

// Export streams the receipts report as a CSV attachment.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period := q.Get("period")
	if period == "" {
		period = "monthly"
	}

	rng, err := ledger.ResolveExportRange(period, q.Get("startDate"), q.Get("endDate"), time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rows, err := h.Ledger.ReceiptsForExport(r.Context(), rng)
	if err != nil {
		serverError(h.Log, w, err, "reports: export")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "receipts_report_"+period+".csv"))
	if err := ledger.WriteReceiptsCSV(w, rows); err != nil {
		h.Log.WithError(err).Error("reports: csv write")
	}
}
