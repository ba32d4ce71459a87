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

type UserHandler struct {
	Ledger *ledger.Service
	Log    *logrus.Logger
}

type userDTO struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	StateCode   string    `json:"stateCode"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`

	Receipts []userReceiptDTO `json:"receipts,omitempty"`
}

type userReceiptDTO struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	Description string          `json:"description"`
	ImageURL    string          `json:"imageUrl"`

	Contribution *struct {
		Title string `json:"title"`
	} `json:"contribution,omitempty"`
}

func toUserDTO(u *ledger.User, withReceipts bool) userDTO {
	dto := userDTO{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		StateCode:   u.StateCode,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
	if !withReceipts {
		return dto
	}
	dto.Receipts = make([]userReceiptDTO, 0, len(u.Receipts))
	for i := range u.Receipts {
		r := &u.Receipts[i]
		rd := userReceiptDTO{
			ID:          r.ID,
			Amount:      r.Amount,
			Status:      string(r.Status),
			CreatedAt:   r.CreatedAt,
			Description: r.Description,
			ImageURL:    r.ImageURL,
		}
		if r.Contribution != nil {
			rd.Contribution = &struct {
				Title string `json:"title"`
			}{Title: r.Contribution.Title}
		}
		dto.Receipts = append(dto.Receipts, rd)
	}
	return dto
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	f := ledger.UserFilter{
		StateCode:       strings.TrimSpace(r.URL.Query().Get("stateCode")),
		IncludeReceipts: r.URL.Query().Get("include") == "receipts",
	}

	users, err := h.Ledger.ListUsers(r.Context(), f)
	if err != nil {
		serverError(h.Log, w, err, "users: list")
		return
	}

	out := make([]userDTO, 0, len(users))
	for i := range users {
		out = append(out, toUserDTO(&users[i], f.IncludeReceipts))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.Ledger.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		serverError(h.Log, w, err, "users: get")
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u, true))
}

// Profile returns the full user row for the given firebaseUid; the member
// dashboard bootstraps from it.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	uid := strings.TrimSpace(r.URL.Query().Get("firebaseUid"))
	if uid == "" {
		writeMessage(w, http.StatusBadRequest, "Firebase UID is required")
		return
	}

	u, err := h.Ledger.ResolveUser(r.Context(), uid)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		serverError(h.Log, w, err, "users: profile")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type profileReq struct {
	FirebaseUID string `json:"firebaseUid" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Username    string `json:"username" validate:"required"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
	StateCode   string `json:"stateCode" validate:"required"`
}

// UpsertProfile completes or edits the caller's own profile.
func (h *UserHandler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	var req profileReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}
	req.FirebaseUID = strings.TrimSpace(req.FirebaseUID)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if err := validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	u, err := h.Ledger.UpsertProfile(r.Context(), ledger.ProfileInput{
		FirebaseUID: req.FirebaseUID,
		Email:       req.Email,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		StateCode:   req.StateCode,
	})
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		serverError(h.Log, w, err, "users: upsert profile")
		return
	}
	writeJSON(w, http.StatusOK, u)
}
