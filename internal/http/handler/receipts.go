package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ledgerpro/internal/ledger"
)

type ReceiptHandler struct {
	Ledger *ledger.Service
	Log    *logrus.Logger
}

// receiptDTO is the list shape: the receipt plus the partial user and
// contribution rows the admin review table displays.
type receiptDTO struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	ContributionID string          `json:"contributionId"`
	Amount         decimal.Decimal `json:"amount"`
	ImageURL       string          `json:"imageUrl"`
	Description    string          `json:"description"`
	Status         string          `json:"status"`
	AdminNotes     string          `json:"adminNotes"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`

	User         *receiptUserDTO         `json:"user,omitempty"`
	Contribution *receiptContributionDTO `json:"contribution,omitempty"`
}

type receiptUserDTO struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	StateCode   string `json:"stateCode"`
}

type receiptContributionDTO struct {
	Title  string          `json:"title"`
	Amount decimal.Decimal `json:"amount"`
}

func toReceiptDTO(r *ledger.Receipt) receiptDTO {
	dto := receiptDTO{
		ID:             r.ID,
		UserID:         r.UserID,
		ContributionID: r.ContributionID,
		Amount:         r.Amount,
		ImageURL:       r.ImageURL,
		Description:    r.Description,
		Status:         string(r.Status),
		AdminNotes:     r.AdminNotes,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.User != nil {
		dto.User = &receiptUserDTO{
			Username:    r.User.Username,
			DisplayName: r.User.DisplayName,
			StateCode:   r.User.StateCode,
		}
	}
	if r.Contribution != nil {
		dto.Contribution = &receiptContributionDTO{
			Title:  r.Contribution.Title,
			Amount: r.Contribution.Amount,
		}
	}
	return dto
}

// List filters by owner (via firebaseUid) and/or status. An unknown
// firebaseUid simply leaves the owner filter off, matching the visibility
// rule's no-error degradation.
func (h *ReceiptHandler) List(w http.ResponseWriter, r *http.Request) {
	var f ledger.ReceiptFilter
	if uid := strings.TrimSpace(r.URL.Query().Get("firebaseUid")); uid != "" {
		if u, err := h.Ledger.ResolveUser(r.Context(), uid); err == nil {
			f.UserID = &u.ID
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status := ledger.ReceiptStatus(strings.ToUpper(raw))
		if !status.Valid() {
			writeMessage(w, http.StatusBadRequest, "Invalid status")
			return
		}
		f.Status = &status
	}

	receipts, err := h.Ledger.ListReceipts(r.Context(), f)
	if err != nil {
		serverError(h.Log, w, err, "receipts: list")
		return
	}

	out := make([]receiptDTO, 0, len(receipts))
	for i := range receipts {
		out = append(out, toReceiptDTO(&receipts[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

type createReceiptReq struct {
	UserID         string      `json:"userId" validate:"required"`
	ContributionID string      `json:"contributionId" validate:"required"`
	Amount         json.Number `json:"amount" validate:"required"`
	ImageURL       string      `json:"imageUrl" validate:"required"`
	Description    string      `json:"description"`
}

func (h *ReceiptHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReceiptReq
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil || !amount.IsPositive() {
		writeMessage(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	receipt, err := h.Ledger.CreateReceipt(r.Context(), ledger.CreateReceiptInput{
		UserID:         req.UserID,
		ContributionID: req.ContributionID,
		Amount:         amount,
		ImageURL:       req.ImageURL,
		Description:    req.Description,
	})
	if err != nil {
		serverError(h.Log, w, err, "receipts: create")
		return
	}
	writeJSON(w, http.StatusCreated, toReceiptDTO(receipt))
}

type reviewReceiptReq struct {
	Status     string `json:"status" validate:"required"`
	AdminNotes string `json:"adminNotes"`
}

// Review applies the admin decision on a pending receipt.
func (h *ReceiptHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req reviewReceiptReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid status")
		return
	}

	receipt, err := h.Ledger.ReviewReceipt(r.Context(), chi.URLParam(r, "id"), ledger.ReceiptStatus(req.Status), req.AdminNotes)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		serverError(h.Log, w, err, "receipts: review")
		return
	}
	writeJSON(w, http.StatusOK, toReceiptDTO(receipt))
}
