package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ledgerpro/internal/ledger"
)

type ExpenseHandler struct {
	Ledger *ledger.Service
	Log    *logrus.Logger
}

func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.Ledger.ListExpenses(r.Context())
	if err != nil {
		serverError(h.Log, w, err, "expenses: list")
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

type createExpenseReq struct {
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description" validate:"required"`
	Amount      json.Number `json:"amount" validate:"required"`
	Category    string      `json:"category" validate:"required"`
	Date        string      `json:"date" validate:"required"`
	CreatedBy   string      `json:"createdBy" validate:"required"`
}

func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createExpenseReq
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)
	req.CreatedBy = strings.TrimSpace(req.CreatedBy)
	if err := validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "All fields (title, description, amount, category, date, createdBy) are required and must be valid")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil || !amount.IsPositive() {
		writeMessage(w, http.StatusBadRequest, "Invalid amount")
		return
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid date")
			return
		}
	}

	expense, err := h.Ledger.CreateExpense(r.Context(), ledger.CreateExpenseInput{
		Title:       req.Title,
		Description: req.Description,
		Amount:      amount,
		Category:    req.Category,
		Date:        date,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		serverError(h.Log, w, err, "expenses: create")
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}
