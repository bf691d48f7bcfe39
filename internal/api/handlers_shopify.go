// internal/api/handlers_shopify.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hei08285744/KnotulusTest-2/internal/shopify"
	"github.com/hei08285744/KnotulusTest-2/internal/store"
	"github.com/hei08285744/KnotulusTest-2/pkg/auth"
)

func (a *App) saveShopCredential(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondText(w, http.StatusBadRequest, "Please send a POST request")
		return
	}
	var body struct {
		ShopName    string `json:"shopName"`
		AccessToken string `json:"accessToken"`
		UserID      string `json:"userId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.ShopName == "" || body.AccessToken == "" || body.UserID == "" {
		respondError(w, http.StatusBadRequest, "Missing required parameters: shopName, accessToken, userId")
		return
	}

	p, _ := auth.PrincipalFrom(r.Context())
	if !auth.IsOwner(p, body.UserID) {
		respondError(w, http.StatusForbidden, "You can only save credentials for your own account")
		return
	}

	if err := a.store.SaveShopCredential(r.Context(), body.UserID, body.ShopName, body.AccessToken); err != nil {
		a.log.Errorw("save shop credential failed", "userId", body.UserID, "shop", body.ShopName, "err", err)
		respondError(w, http.StatusInternalServerError, "Error saving Shopify credentials.")
		return
	}
	a.log.Infow("shop credential saved", "userId", body.UserID, "shop", body.ShopName)
	writeJSON(w, map[string]any{"success": true}, http.StatusOK)
}

func (a *App) fetchFinancialSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondText(w, http.StatusBadRequest, "Please send a POST request")
		return
	}
	var body struct {
		UserID   string  `json:"userId"`
		ShopName string  `json:"shopName"`
		Period   float64 `json:"period"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.UserID == "" || body.ShopName == "" || body.Period <= 0 {
		respondError(w, http.StatusBadRequest, "Missing or invalid required parameters: userId, shopName, period")
		return
	}

	p, _ := auth.PrincipalFrom(r.Context())
	if !auth.IsOwner(p, body.UserID) {
		respondError(w, http.StatusForbidden, "You can only access your own financial data")
		return
	}

	cred, err := a.store.GetShopCredential(r.Context(), body.UserID, body.ShopName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "Shop not found for this user. Please add your shop credentials.")
			return
		}
		a.log.Errorw("credential lookup failed", "userId", body.UserID, "shop", body.ShopName, "err", err)
		respondError(w, http.StatusInternalServerError, "Internal server error while fetching financial summary.")
		return
	}
	if cred.AccessToken == "" {
		respondError(w, http.StatusUnauthorized, "Access token not found. Please add your shop credentials again.")
		return
	}

	summary, err := a.shopify.Summarize(r.Context(), body.ShopName, cred.AccessToken, int(body.Period))
	if err != nil {
		var ue *shopify.UpstreamError
		if errors.As(err, &ue) && ue.TokenInvalid() {
			respondError(w, http.StatusUnauthorized, "Shopify token is invalid. Please check your credentials.")
			return
		}
		a.log.Errorw("financial summary failed", "userId", body.UserID, "shop", body.ShopName, "err", err)
		respondError(w, http.StatusInternalServerError, "Internal server error while fetching financial summary.")
		return
	}
	writeJSON(w, map[string]any{"success": true, "data": summary}, http.StatusOK)
}
