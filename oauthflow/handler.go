package oauthflow

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-signin-client/identity"
	autherrors "github.com/jrsteele09/go-signin-client/internal/errors"
	"github.com/jrsteele09/go-signin-client/ui"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const stateLength = 32

// ErrNotReady is returned by BeginFlow before Init has completed.
var ErrNotReady = errors.New("oauth request not initialised")

// Handler runs the browser based Google consent flow and signs the resulting
// id_token in with the identity provider.
type Handler struct {
	cfg     Config
	signIn  identity.CredentialAuthenticator
	alerts  ui.Alerter
	browser Browser
	flows   Repo
	nowTime func() time.Time

	// set by Init, read once ready is true
	initMu   sync.Mutex
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
	ready    atomic.Bool

	skipDiscovery bool
	endpoint      oauth2.Endpoint
}

type Option func(*Handler)

func WithRepo(repo Repo) Option {
	return func(h *Handler) {
		h.flows = repo
	}
}

func WithNowTime(now func() time.Time) Option {
	return func(h *Handler) {
		h.nowTime = now
	}
}

// WithStaticEndpoint skips discovery and uses endpoint as is. The id_token is
// then passed to the identity provider without local verification.
func WithStaticEndpoint(endpoint oauth2.Endpoint) Option {
	return func(h *Handler) {
		h.skipDiscovery = true
		h.endpoint = endpoint
	}
}

// GoogleEndpoint is the static Google endpoint for use with WithStaticEndpoint.
var GoogleEndpoint = endpoints.Google

func New(cfg Config, signIn identity.CredentialAuthenticator, alerts ui.Alerter, browser Browser, options ...Option) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "[oauthflow.New] invalid config")
	}
	if signIn == nil {
		return nil, errors.New("[oauthflow.New] signIn is required")
	}
	if alerts == nil {
		return nil, errors.New("[oauthflow.New] alerts is required")
	}
	if browser == nil {
		return nil, errors.New("[oauthflow.New] browser is required")
	}

	h := &Handler{
		cfg:     cfg,
		signIn:  signIn,
		alerts:  alerts,
		browser: browser,
		flows:   NewInMemoryRepo(),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(h)
	}
	return h, nil
}

// Init prepares the authorization request. Until it succeeds BeginFlow is disabled.
func (h *Handler) Init(ctx context.Context) error {
	h.initMu.Lock()
	defer h.initMu.Unlock()
	if h.ready.Load() {
		return nil
	}
	clientID := h.cfg.ClientID()

	endpoint := h.endpoint
	var verifier *oidc.IDTokenVerifier
	if !h.skipDiscovery {
		provider, err := oidc.NewProvider(ctx, h.cfg.Issuer)
		if err != nil {
			return errors.Wrap(err, "[Handler.Init] oidc.NewProvider")
		}
		endpoint = provider.Endpoint()
		if endpoint.AuthStyle == oauth2.AuthStyleAutoDetect {
			// Public PKCE clients send client_id in the body.
			endpoint.AuthStyle = oauth2.AuthStyleInParams
		}
		verifier = provider.Verifier(&oidc.Config{ClientID: clientID})
	}

	h.oauth = &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: h.cfg.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  h.cfg.RedirectURL,
		Scopes:       append([]string{oidc.ScopeOpenID}, h.cfg.Scopes...),
	}
	h.verifier = verifier
	h.ready.Store(true)

	log.Debug().Str("client_id", clientID).Strs("scopes", h.oauth.Scopes).Msg("oauth request initialised")
	return nil
}

// Ready reports whether BeginFlow can be used.
func (h *Handler) Ready() bool {
	return h.ready.Load()
}

// BeginFlow opens the consent page and returns its URL. The result arrives
// later through Complete, usually via the redirect listener.
func (h *Handler) BeginFlow(ctx context.Context) (string, error) {
	if !h.Ready() {
		return "", ErrNotReady
	}

	now := h.nowTime()
	if n := h.flows.DeleteExpired(now.Add(-h.cfg.flowTimeout())); n > 0 {
		log.Debug().Int("count", n).Msg("dropped abandoned oauth flows")
	}

	state, err := generateRandomString(stateLength)
	if err != nil {
		return "", errors.Wrap(err, "[Handler.BeginFlow] generateRandomString")
	}
	flow := &FlowState{
		CodeVerifier: oauth2.GenerateVerifier(),
		Nonce:        uuid.New().String(),
		CreatedAt:    now,
	}
	if err := h.flows.Upsert(state, flow); err != nil {
		return "", errors.Wrap(err, "[Handler.BeginFlow] flows.Upsert")
	}

	authURL := h.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.S256ChallengeOption(flow.CodeVerifier),
		oidc.Nonce(flow.Nonce),
	)
	if err := h.browser.Open(ctx, authURL); err != nil {
		_ = h.flows.Delete(state)
		return "", errors.Wrap(err, "[Handler.BeginFlow] browser.Open")
	}
	return authURL, nil
}

// Complete turns the redirect parameters into a Response, exchanging the
// authorization code for tokens on success.
func (h *Handler) Complete(ctx context.Context, params map[string][]string) Response {
	get := func(key string) string {
		if v := params[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	state := get("state")

	if e := get("error"); e != "" {
		if state != "" {
			_ = h.flows.Delete(state)
		}
		if e == "access_denied" {
			return Response{Type: ResponseCancel}
		}
		return errorResponse(fmt.Errorf("authorization failed: %s %s", e, get("error_description")))
	}

	code := get("code")
	if code == "" || state == "" {
		return errorResponse(errors.Wrap(autherrors.ErrInvalidState, "missing code or state"))
	}
	if !h.Ready() {
		return errorResponse(ErrNotReady)
	}

	flow, err := h.flows.Take(state)
	if err != nil {
		return errorResponse(errors.Wrap(autherrors.ErrInvalidState, err.Error()))
	}
	if h.nowTime().Sub(flow.CreatedAt) > h.cfg.flowTimeout() {
		return errorResponse(autherrors.ErrFlowExpired)
	}

	token, err := h.oauth.Exchange(ctx, code, oauth2.VerifierOption(flow.CodeVerifier))
	if err != nil {
		return errorResponse(errors.Wrap(err, "token exchange"))
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return errorResponse(errors.Wrap(autherrors.ErrInvalidIDToken, "no id_token in token response"))
	}

	if h.verifier != nil {
		idToken, err := h.verifier.Verify(ctx, rawIDToken)
		if err != nil {
			return errorResponse(errors.Wrap(autherrors.ErrInvalidIDToken, err.Error()))
		}
		if idToken.Nonce != flow.Nonce {
			return errorResponse(errors.Wrap(autherrors.ErrInvalidIDToken, "nonce mismatch"))
		}
	}

	resp := Response{
		Type:   ResponseSuccess,
		Params: map[string]string{"id_token": rawIDToken},
	}
	if token.AccessToken != "" {
		resp.Params["access_token"] = token.AccessToken
	}
	return resp
}

// HandleResponse acts on a completed flow. Only success does anything: the
// id_token is exchanged for a Google credential and signed in. A failed
// sign-in shows a generic alert and is not retried.
func (h *Handler) HandleResponse(ctx context.Context, resp Response) error {
	if resp.Type != ResponseSuccess {
		log.Debug().Str("type", string(resp.Type)).AnErr("reason", resp.Err).Msg("oauth response ignored")
		return nil
	}

	credential := identity.GoogleCredential(resp.Params["id_token"])
	if _, err := h.signIn.SignInWithCredential(ctx, credential); err != nil {
		log.Err(err).Msg("google sign-in failed")
		if ctx.Err() == nil {
			h.alerts.Alert(ui.TitleError, ui.MsgGoogleFailed)
		}
		return errors.Wrap(err, "[Handler.HandleResponse] SignInWithCredential")
	}
	return nil
}

// generateRandomString creates a random base64url string
func generateRandomString(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
