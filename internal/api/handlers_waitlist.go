// internal/api/handlers_waitlist.go
package api

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/hei08285744/KnotulusTest-2/internal/sanitize"
	"github.com/hei08285744/KnotulusTest-2/pkg/auth"
)

func (a *App) joinWaitlist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondText(w, http.StatusBadRequest, "Please send a POST request")
		return
	}
	var body struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Email == "" || body.Name == "" {
		respondError(w, http.StatusBadRequest, "The function must be called with 'name' and 'email' arguments.")
		return
	}

	id, existed, err := a.store.UpsertWaitlistUser(r.Context(), body.Name, body.Email, clientIP(r), r.UserAgent())
	if err != nil {
		a.log.Errorw("waitlist upsert failed", "email", body.Email, "err", err)
		respondError(w, http.StatusInternalServerError, "Error adding user to waitlist.")
		return
	}
	if existed {
		a.log.Infow("waitlist user updated", "userId", id)
		writeJSON(w, map[string]any{
			"success": true,
			"exists":  true,
			"userId":  id,
			"message": "Welcome again, " + body.Name + "!",
		}, http.StatusOK)
		return
	}
	a.log.Infow("waitlist user created", "userId", id)
	writeJSON(w, map[string]any{"success": true, "userId": id}, http.StatusOK)
}

func (a *App) listUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondText(w, http.StatusBadRequest, "Please send a GET request")
		return
	}
	p, _ := auth.PrincipalFrom(r.Context())

	users, err := a.store.ListUsers(r.Context())
	if err != nil {
		a.log.Errorw("list users failed", "err", err)
		respondError(w, http.StatusInternalServerError, "Error getting users.")
		return
	}
	sanitized := sanitize.SanitizeList(users, a.sec.SensitiveFields, a.sec.AdminOnlyFields, p.Admin)
	writeJSON(w, map[string]any{"success": true, "users": sanitized}, http.StatusOK)
}

func (a *App) deleteUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondText(w, http.StatusBadRequest, "Please send a POST request")
		return
	}
	var body struct {
		UserID string `json:"userId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.UserID == "" {
		respondError(w, http.StatusBadRequest, "The function must be called with one argument 'userId'.")
		return
	}
	if err := a.store.DeleteUser(r.Context(), body.UserID); err != nil {
		a.log.Errorw("delete user failed", "userId", body.UserID, "err", err)
		respondError(w, http.StatusInternalServerError, "Error deleting user.")
		return
	}
	writeJSON(w, map[string]any{"success": true}, http.StatusOK)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
