package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"ledgerpro/internal/auth"
	"ledgerpro/internal/ledger"
)

// AuthHandler exchanges an externally-authenticated Firebase UID for a
// service bearer token. Identity proofing itself happens outside this
// service; this endpoint only resolves the UID to a known member.
type AuthHandler struct {
	Ledger *ledger.Service
	JWT    *auth.JWT
	Log    *logrus.Logger
}

type tokenReq struct {
	FirebaseUID string `json:"firebaseUid" validate:"required"`
}

func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req tokenReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}
	req.FirebaseUID = strings.TrimSpace(req.FirebaseUID)
	if err := validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "firebaseUid is required")
		return
	}

	u, err := h.Ledger.ResolveUser(r.Context(), req.FirebaseUID)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		serverError(h.Log, w, err, "auth: resolve user")
		return
	}
	if !u.IsActive {
		writeMessage(w, http.StatusForbidden, "account is inactive")
		return
	}

	token, err := h.JWT.Sign(u.ID, u.IsAdmin)
	if err != nil {
		serverError(h.Log, w, err, "auth: sign token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"isAdmin": u.IsAdmin,
	})
}
