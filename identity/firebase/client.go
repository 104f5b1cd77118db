package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-signin-client/identity"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var _ identity.Provider = (*Client)(nil)

const (
	DefaultBaseURL = "https://identitytoolkit.googleapis.com/v1"

	pathSignInWithPassword = "/accounts:signInWithPassword"
	pathSignUp             = "/accounts:signUp"
	pathSignInWithIdp      = "/accounts:signInWithIdp"

	defaultRequestURI = "http://localhost"
	maxErrorBody      = 64 << 10
)

// Client talks to the Identity Toolkit REST API. The signed in user is held in
// memory only; sign out is local and needs no network call.
type Client struct {
	*identity.Notifier

	apiKey     string
	baseURL    string
	requestURI string
	httpClient *http.Client
	nowTime    func() time.Time
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRequestURI sets the URI reported to the provider as the origin of a
// federated sign-in. It must be an authorised domain of the project.
func WithRequestURI(uri string) Option {
	return func(c *Client) {
		c.requestURI = uri
	}
}

func WithNowTime(now func() time.Time) Option {
	return func(c *Client) {
		c.nowTime = now
	}
}

func New(apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("[firebase.New] apiKey is required")
	}
	c := &Client{
		Notifier:   identity.NewNotifier(),
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		requestURI: defaultRequestURI,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		nowTime:    time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type idpRequest struct {
	PostBody            string `json:"postBody"`
	RequestURI          string `json:"requestUri"`
	ReturnIdpCredential bool   `json:"returnIdpCredential"`
	ReturnSecureToken   bool   `json:"returnSecureToken"`
}

// authResponse is the common subset of the signIn/signUp response bodies.
type authResponse struct {
	LocalID       string `json:"localId"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	IDToken       string `json:"idToken"`
	RefreshToken  string `json:"refreshToken"`
	ExpiresIn     string `json:"expiresIn"`
	ProviderID    string `json:"providerId"`
	EmailVerified bool   `json:"emailVerified"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) SignInWithEmailAndPassword(ctx context.Context, email, password string) (*identity.User, error) {
	var resp authResponse
	if err := c.post(ctx, pathSignInWithPassword, passwordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &resp); err != nil {
		return nil, errors.Wrap(err, "[Client.SignInWithEmailAndPassword] signInWithPassword")
	}
	if resp.ProviderID == "" {
		resp.ProviderID = identity.ProviderPassword
	}
	return c.signIn(resp), nil
}

func (c *Client) CreateUserWithEmailAndPassword(ctx context.Context, email, password string) (*identity.User, error) {
	var resp authResponse
	if err := c.post(ctx, pathSignUp, passwordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &resp); err != nil {
		return nil, errors.Wrap(err, "[Client.CreateUserWithEmailAndPassword] signUp")
	}
	if resp.ProviderID == "" {
		resp.ProviderID = identity.ProviderPassword
	}
	return c.signIn(resp), nil
}

func (c *Client) SignInWithCredential(ctx context.Context, credential identity.Credential) (*identity.User, error) {
	if credential.ProviderID == "" || (credential.IDToken == "" && credential.AccessToken == "") {
		return nil, errors.New("[Client.SignInWithCredential] credential has no token")
	}
	form := url.Values{}
	form.Set("providerId", credential.ProviderID)
	if credential.IDToken != "" {
		form.Set("id_token", credential.IDToken)
	}
	if credential.AccessToken != "" {
		form.Set("access_token", credential.AccessToken)
	}

	var resp authResponse
	if err := c.post(ctx, pathSignInWithIdp, idpRequest{
		PostBody:            form.Encode(),
		RequestURI:          c.requestURI,
		ReturnIdpCredential: true,
		ReturnSecureToken:   true,
	}, &resp); err != nil {
		return nil, errors.Wrap(err, "[Client.SignInWithCredential] signInWithIdp")
	}
	if resp.ProviderID == "" {
		resp.ProviderID = credential.ProviderID
	}
	return c.signIn(resp), nil
}

func (c *Client) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "[Client.SignOut]")
	}
	c.SetUser(nil)
	return nil
}

func (c *Client) signIn(resp authResponse) *identity.User {
	user := &identity.User{
		UID:           resp.LocalID,
		Email:         resp.Email,
		DisplayName:   resp.DisplayName,
		ProviderID:    resp.ProviderID,
		EmailVerified: resp.EmailVerified,
		SignedInAt:    c.nowTime(),
		IDToken:       resp.IDToken,
		RefreshToken:  resp.RefreshToken,
	}
	c.SetUser(user)
	return user
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + path + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return decodeError(res)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(res *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err != nil || er.Error.Message == "" {
		log.Debug().Int("status", res.StatusCode).Bytes("body", raw).Msg("unrecognised identity provider error")
		return fmt.Errorf("identity provider returned status %d", res.StatusCode)
	}
	return identity.NewProviderError(er.Error.Message)
}
