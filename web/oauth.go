package web

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/jyothri/ipodphotos/collect"
	"github.com/jyothri/ipodphotos/constants"
	"github.com/jyothri/ipodphotos/db"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

func oauth(r *mux.Router) {
	oauthRouter := r.PathPrefix("/api/").Subrouter()
	oauthRouter.Use(RequestSizeLimitMiddleware(OAuthCallbackMaxBodySize))
	oauthRouter.HandleFunc("/glink", GoogleAccountLinkingHandler).Methods("GET")
}

func GoogleAccountLinkingHandler(w http.ResponseWriter, r *http.Request) {
	// Retrieve authZ code from query params.
	err := r.ParseForm()
	if handleMaxBytesError(w, r, err, OAuthCallbackMaxBodySize) {
		return
	}
	if err != nil {
		slog.Error("Failed to parse OAuth form", "error", err)
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	redirectUri := r.FormValue("redirectUri")
	if redirectUri == "" {
		http.Error(w, "redirectUri not found in request", http.StatusBadRequest)
		return
	}
	u, err := url.Parse(redirectUri)
	if err != nil {
		slog.Error("Failed to parse redirect URI",
			"redirect_uri", redirectUri,
			"error", err)
		http.Error(w, "Invalid redirect URI", http.StatusBadRequest)
		return
	}
	code := r.FormValue("code")
	if code == "" {
		http.Error(w, "code not found in request", http.StatusBadRequest)
		return
	}

	config := &oauth2.Config{
		ClientID:     constants.OauthClientId,
		ClientSecret: constants.OauthClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectUri,
		Scopes:       []string{drive.DriveReadonlyScope},
	}
	// Exchange authZ for refresh token.
	t, err := config.Exchange(r.Context(), code)
	if err != nil {
		slog.Warn("Could not exchange authorization code", "error", err)
		http.Error(w, "Failed to exchange authorization code", http.StatusBadRequest)
		return
	}
	if t.AccessToken == "" || t.RefreshToken == "" {
		slog.Warn("Access or refresh token could not be obtained", "token_type", t.TokenType)
		http.Error(w, "Access or Refresh token could not be obtained", http.StatusBadRequest)
		return
	}

	client_key := generateRandomString(12)

	email, err := collect.GetIdentity(t.RefreshToken)
	if err != nil {
		slog.Error("Failed to get user identity",
			"error", err)
		http.Error(w, "Failed to verify account", http.StatusInternalServerError)
		return
	}

	display_name := getDisplayName(email, client_key)
	scope, _ := t.Extra("scope").(string)

	err = db.SaveOAuthToken(t.AccessToken, t.RefreshToken, display_name, client_key, scope, expiresInSec(t.Expiry), t.TokenType)
	if err != nil {
		slog.Error("Failed to save OAuth token",
			"client_key", client_key,
			"error", err)
		http.Error(w, "Failed to save account information", http.StatusInternalServerError)
		return
	}

	returnUrl := u.Scheme + "://" + u.Host + "/request"
	w.Header().Set("Location", returnUrl)
	w.WriteHeader(http.StatusFound)
}

func expiresInSec(expiry time.Time) int16 {
	if expiry.IsZero() {
		return 0
	}
	sec := time.Until(expiry).Seconds()
	switch {
	case sec <= 0:
		return 0
	case sec > 32767:
		return 32767
	}
	return int16(sec)
}

func getDisplayName(email string, client_key string) string {
	username := ""
	if email == "" || !strings.Contains(email, "@") {
		return client_key
	} else {
		username = email[0:strings.Index(email, "@")]
		if len(username) < 6 {
			return client_key
		} else {
			return username[0:3] + "****" + username[len(username)-2:] + email[strings.Index(email, "@"):]
		}
	}
}

func generateRandomString(length int) string {
	var chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ1234567890-"
	ll := len(chars)
	b := make([]byte, length)
	rand.Read(b) // generates len(b) random bytes
	for i := 0; i < length; i++ {
		b[i] = chars[int(b[i])%ll]
	}
	return string(b)
}
