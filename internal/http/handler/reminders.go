package handler

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"ledgerpro/internal/reminder"
)

type ReminderHandler struct {
	Dispatcher *reminder.Dispatcher
	Log        *logrus.Logger
}

// Broadcast is the manual "send reminders now" button.
func (h *ReminderHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Dispatcher.Broadcast(r.Context())
	if err != nil {
		if errors.Is(err, reminder.ErrMailerNotReady) {
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		serverError(h.Log, w, err, "reminders: broadcast")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Reminder emails sent successfully",
		"totalUsers": rep.Total,
		"sent":       rep.Sent,
		"failed":     rep.Failed,
		"skipped":    rep.Skipped,
		"results":    rep.Results,
	})
}

// BroadcastStatus reports transport readiness for the admin page.
func (h *ReminderHandler) BroadcastStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.Dispatcher.MailerStatus(r.Context())
	if err != nil {
		if errors.Is(err, reminder.ErrMailerNotReady) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"status":  "error",
				"message": "Email service not configured",
			})
			return
		}
		serverError(h.Log, w, err, "reminders: status")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// RunScheduled is the cron entry point with the cooldown filter applied.
func (h *ReminderHandler) RunScheduled(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Dispatcher.RunScheduled(r.Context())
	if err != nil {
		if errors.Is(err, reminder.ErrMailerNotReady) {
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		serverError(h.Log, w, err, "reminders: scheduled run")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Scheduled reminders processed successfully",
		"sent":    rep.Sent,
		"skipped": rep.Skipped,
		"failed":  rep.Failed,
		"total":   rep.Total,
		"results": rep.Results,
	})
}

// ScheduledStatus answers "who would the next run mail" without sending.
func (h *ReminderHandler) ScheduledStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.Dispatcher.Status(r.Context())
	if err != nil {
		serverError(h.Log, w, err, "reminders: scheduled status")
		return
	}
	writeJSON(w, http.StatusOK, st)
}
