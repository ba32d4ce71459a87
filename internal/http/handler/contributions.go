package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"ledgerpro/internal/ledger"
)

type ContributionHandler struct {
	Ledger *ledger.Service
	Log    *logrus.Logger
}

// List applies the visibility rule: with a resolvable firebaseUid the result
// narrows to global-or-targeted rows; without one (or with an unknown UID)
// every active contribution comes back.
func (h *ContributionHandler) List(w http.ResponseWriter, r *http.Request) {
	var userID *string
	if uid := strings.TrimSpace(r.URL.Query().Get("firebaseUid")); uid != "" {
		if u, err := h.Ledger.ResolveUser(r.Context(), uid); err == nil {
			userID = &u.ID
		}
	}

	contributions, err := h.Ledger.VisibleContributions(r.Context(), userID)
	if err != nil {
		serverError(h.Log, w, err, "contributions: list")
		return
	}
	writeJSON(w, http.StatusOK, contributions)
}

type contributionReq struct {
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount" validate:"required"`
	DueDate     string      `json:"dueDate" validate:"required"`
}

func (h *ContributionHandler) decode(w http.ResponseWriter, r *http.Request) (*ledger.CreateContributionInput, bool) {
	var req contributionReq
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return nil, false
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Missing required fields")
		return nil, false
	}

	amount, err := parseAmount(req.Amount)
	if err != nil || !amount.IsPositive() {
		writeMessage(w, http.StatusBadRequest, "Invalid amount")
		return nil, false
	}
	dueDate, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		// Date-only input from the admin form.
		dueDate, err = time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid dueDate")
			return nil, false
		}
	}

	return &ledger.CreateContributionInput{
		Title:       req.Title,
		Description: req.Description,
		Amount:      amount,
		DueDate:     dueDate,
	}, true
}

func (h *ContributionHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	c, err := h.Ledger.CreateContribution(r.Context(), *in)
	if err != nil {
		serverError(h.Log, w, err, "contributions: create")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *ContributionHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Ledger.GetContribution(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		serverError(h.Log, w, err, "contributions: get")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ContributionHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	c, err := h.Ledger.UpdateContribution(r.Context(), chi.URLParam(r, "id"), *in)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		serverError(h.Log, w, err, "contributions: update")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type toggleReq struct {
	IsActive *bool `json:"isActive"`
}

func (h *ContributionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req toggleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsActive == nil {
		writeMessage(w, http.StatusBadRequest, "isActive field is required")
		return
	}
	c, err := h.Ledger.SetContributionActive(r.Context(), chi.URLParam(r, "id"), *req.IsActive)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		serverError(h.Log, w, err, "contributions: toggle")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type cashContributionReq struct {
	UserID      string      `json:"userId" validate:"required"`
	Amount      json.Number `json:"amount" validate:"required"`
	Description string      `json:"description"`
}

// RecordCash handles the admin shortcut for money handed over in person.
func (h *ContributionHandler) RecordCash(w http.ResponseWriter, r *http.Request) {
	var req cashContributionReq
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Missing required fields: userId and amount")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil || !amount.IsPositive() {
		writeMessage(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	c, receipt, err := h.Ledger.RecordCashContribution(r.Context(), ledger.CashContributionInput{
		UserID:      req.UserID,
		Amount:      amount,
		Description: req.Description,
	})
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		serverError(h.Log, w, err, "contributions: record cash")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":      "Cash contribution recorded successfully",
		"contribution": c,
		"receipt":      receipt,
	})
}
