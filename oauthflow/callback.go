package oauthflow

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

const contentTypeHTML = "text/html; charset=utf-8"

const callbackPage = `<!doctype html>
<html><head><title>%[1]s</title></head>
<body><h3>%[1]s</h3><p>You can close this window and return to the app.</p></body></html>`

// CallbackHandler serves the redirect target. The exchange uses the request
// context; the sign-in uses ctx so it is cancelled with the screen rather
// than with the browser connection.
func (h *Handler) CallbackHandler(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Parse form to support both GET (query params) and POST (form_post response mode)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid redirect parameters", http.StatusBadRequest)
			return
		}

		resp := h.Complete(r.Context(), r.Form)
		if err := h.HandleResponse(ctx, resp); err != nil {
			resp = errorResponse(err)
		}

		title := "Signed in"
		status := http.StatusOK
		switch resp.Type {
		case ResponseCancel:
			title = "Sign-in cancelled"
		case ResponseError:
			title = "Sign-in failed"
			status = http.StatusBadRequest
		}
		w.Header().Set("Content-Type", contentTypeHTML)
		w.WriteHeader(status)
		fmt.Fprintf(w, callbackPage, title)
	}
}

// NewCallbackServer builds a loopback server that routes the path of
// redirectURL to handler.
func NewCallbackServer(addr, redirectURL string, handler http.Handler) (*http.Server, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return nil, fmt.Errorf("parse redirect url: %w", err)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	log.Debug().Str("addr", addr).Str("path", path).Msg("redirect listener configured")

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}
