package oauthflow_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testKeyID    = "test-key"
	testSubject  = "g-123"
	testUserMail = "john.doe@example.com"
)

type grant struct {
	challenge string
	nonce     string
}

// testIssuer is a minimal OpenID Connect provider: discovery, JWKS and a
// token endpoint that enforces PKCE.
type testIssuer struct {
	server   *httptest.Server
	key      *rsa.PrivateKey
	clientID string

	mu            sync.Mutex
	grants        map[string]grant
	nextCode      int
	nonceOverride string
	omitIDToken   bool
	tokenCalls    int
	basicAuth     int
}

func newTestIssuer(t *testing.T, clientID string) *testIssuer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	iss := &testIssuer{key: key, clientID: clientID, grants: make(map[string]grant)}
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", iss.discovery)
	mux.HandleFunc("/jwks", iss.jwks)
	mux.HandleFunc("/token", iss.token)
	iss.server = httptest.NewServer(mux)
	t.Cleanup(iss.server.Close)
	return iss
}

func (iss *testIssuer) URL() string {
	return iss.server.URL
}

func (iss *testIssuer) discovery(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"issuer":                                iss.URL(),
		"authorization_endpoint":                iss.URL() + "/auth",
		"token_endpoint":                        iss.URL() + "/token",
		"jwks_uri":                              iss.URL() + "/jwks",
		"id_token_signing_alg_values_supported": []string{"RS256"},
	})
}

func (iss *testIssuer) jwks(w http.ResponseWriter, _ *http.Request) {
	pub := iss.key.PublicKey
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": testKeyID,
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	})
}

// consent plays the user approving the request behind authURL and returns
// the redirect parameters the browser would deliver.
func (iss *testIssuer) consent(t *testing.T, authURL string) url.Values {
	t.Helper()
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()

	iss.mu.Lock()
	defer iss.mu.Unlock()
	iss.nextCode++
	code := "code-" + big.NewInt(int64(iss.nextCode)).String()
	iss.grants[code] = grant{challenge: q.Get("code_challenge"), nonce: q.Get("nonce")}

	return url.Values{"code": {code}, "state": {q.Get("state")}}
}

func (iss *testIssuer) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	iss.mu.Lock()
	iss.tokenCalls++
	if _, _, ok := r.BasicAuth(); ok {
		iss.basicAuth++
	}
	g, ok := iss.grants[r.PostForm.Get("code")]
	delete(iss.grants, r.PostForm.Get("code"))
	nonce := g.nonce
	if iss.nonceOverride != "" {
		nonce = iss.nonceOverride
	}
	omitIDToken := iss.omitIDToken
	iss.mu.Unlock()

	sum := sha256.Sum256([]byte(r.PostForm.Get("code_verifier")))
	if !ok || base64.RawURLEncoding.EncodeToString(sum[:]) != g.challenge {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
		return
	}

	body := map[string]any{
		"access_token": "access-token",
		"token_type":   "Bearer",
		"expires_in":   3600,
	}
	if !omitIDToken {
		body["id_token"] = iss.idToken(nonce)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func (iss *testIssuer) idToken(nonce string) string {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":            iss.URL(),
		"aud":            iss.clientID,
		"sub":            testSubject,
		"email":          testUserMail,
		"email_verified": true,
		"nonce":          nonce,
		"iat":            now.Unix(),
		"exp":            now.Add(time.Hour).Unix(),
	})
	tok.Header["kid"] = testKeyID
	raw, err := tok.SignedString(iss.key)
	if err != nil {
		panic(err)
	}
	return raw
}

func (iss *testIssuer) setNonceOverride(nonce string) {
	iss.mu.Lock()
	defer iss.mu.Unlock()
	iss.nonceOverride = nonce
}

func (iss *testIssuer) setOmitIDToken(omit bool) {
	iss.mu.Lock()
	defer iss.mu.Unlock()
	iss.omitIDToken = omit
}

func (iss *testIssuer) tokenRequests() int {
	iss.mu.Lock()
	defer iss.mu.Unlock()
	return iss.tokenCalls
}

func (iss *testIssuer) basicAuthRequests() int {
	iss.mu.Lock()
	defer iss.mu.Unlock()
	return iss.basicAuth
}
