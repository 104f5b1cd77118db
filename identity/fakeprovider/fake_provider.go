package fakeprovider

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-signin-client/identity"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var _ identity.Provider = (*FakeProvider)(nil)

// Op names passed to the call hook.
const (
	OpSignIn         = "signIn"
	OpSignUp         = "signUp"
	OpSignInWithIdP  = "signInWithIdp"
	OpSignOut        = "signOut"
	minPasswordChars = 6
)

type account struct {
	user         identity.User
	passwordHash string
	disabled     bool
}

// FakeProvider is an in-memory identity provider. It keeps accounts keyed by
// email, hashes passwords with bcrypt and accepts Google id_tokens without
// checking their signature.
type FakeProvider struct {
	*identity.Notifier

	lock     sync.RWMutex
	accounts map[string]*account // email -> account
	uids     map[string]string   // google subject -> email

	beforeCall func(ctx context.Context, op string) error
	nowTime    func() time.Time
}

type Option func(*FakeProvider)

// WithBeforeCall runs hook at the start of every provider call. A non-nil
// error fails the call; blocking in the hook simulates a slow network.
func WithBeforeCall(hook func(ctx context.Context, op string) error) Option {
	return func(p *FakeProvider) {
		p.beforeCall = hook
	}
}

func WithNowTime(now func() time.Time) Option {
	return func(p *FakeProvider) {
		p.nowTime = now
	}
}

func New(options ...Option) *FakeProvider {
	p := &FakeProvider{
		Notifier: identity.NewNotifier(),
		accounts: make(map[string]*account),
		uids:     make(map[string]string),
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// AddAccount seeds an email/password account.
func (p *FakeProvider) AddAccount(email, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return errors.Wrap(err, "[FakeProvider.AddAccount] hashPassword")
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	p.accounts[normalise(email)] = &account{
		user: identity.User{
			UID:        uuid.New().String(),
			Email:      normalise(email),
			ProviderID: identity.ProviderPassword,
		},
		passwordHash: hash,
	}
	return nil
}

// SetDisabled blocks or unblocks an account.
func (p *FakeProvider) SetDisabled(email string, disabled bool) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	acc, ok := p.accounts[normalise(email)]
	if !ok {
		return errors.New("not found")
	}
	acc.disabled = disabled
	return nil
}

func (p *FakeProvider) SignInWithEmailAndPassword(ctx context.Context, email, password string) (*identity.User, error) {
	if err := p.enter(ctx, OpSignIn); err != nil {
		return nil, err
	}

	p.lock.RLock()
	acc, ok := p.accounts[normalise(email)]
	p.lock.RUnlock()
	if !ok || acc.passwordHash == "" || !checkPasswordHash(password, acc.passwordHash) {
		return nil, identity.NewProviderError("INVALID_LOGIN_CREDENTIALS")
	}
	if acc.disabled {
		return nil, identity.NewProviderError("USER_DISABLED")
	}
	return p.signIn(acc.user), nil
}

func (p *FakeProvider) CreateUserWithEmailAndPassword(ctx context.Context, email, password string) (*identity.User, error) {
	if err := p.enter(ctx, OpSignUp); err != nil {
		return nil, err
	}
	email = normalise(email)
	if !strings.Contains(email, "@") {
		return nil, identity.NewProviderError("INVALID_EMAIL")
	}
	if len([]rune(password)) < minPasswordChars {
		return nil, identity.NewProviderError("WEAK_PASSWORD : Password should be at least 6 characters")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "[FakeProvider.CreateUserWithEmailAndPassword] hashPassword")
	}

	p.lock.Lock()
	if _, exists := p.accounts[email]; exists {
		p.lock.Unlock()
		return nil, identity.NewProviderError("EMAIL_EXISTS")
	}
	acc := &account{
		user: identity.User{
			UID:        uuid.New().String(),
			Email:      email,
			ProviderID: identity.ProviderPassword,
		},
		passwordHash: hash,
	}
	p.accounts[email] = acc
	p.lock.Unlock()

	return p.signIn(acc.user), nil
}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	jwt.RegisteredClaims
}

func (p *FakeProvider) SignInWithCredential(ctx context.Context, credential identity.Credential) (*identity.User, error) {
	if err := p.enter(ctx, OpSignInWithIdP); err != nil {
		return nil, err
	}
	if credential.ProviderID != identity.ProviderGoogle {
		return nil, identity.NewProviderError("INVALID_PROVIDER_ID")
	}

	var claims googleClaims
	if _, _, err := jwt.NewParser().ParseUnverified(credential.IDToken, &claims); err != nil {
		return nil, identity.NewProviderError("INVALID_IDP_RESPONSE")
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, identity.NewProviderError("INVALID_IDP_RESPONSE")
	}

	p.lock.Lock()
	email := normalise(claims.Email)
	if linked, ok := p.uids[claims.Subject]; ok {
		email = linked
	}
	acc, ok := p.accounts[email]
	if !ok {
		acc = &account{
			user: identity.User{
				UID:   uuid.New().String(),
				Email: email,
			},
		}
		p.accounts[email] = acc
	}
	acc.user.ProviderID = identity.ProviderGoogle
	acc.user.DisplayName = claims.Name
	acc.user.EmailVerified = claims.EmailVerified
	p.uids[claims.Subject] = email
	disabled := acc.disabled
	user := acc.user
	p.lock.Unlock()

	if disabled {
		return nil, identity.NewProviderError("USER_DISABLED")
	}
	return p.signIn(user), nil
}

func (p *FakeProvider) SignOut(ctx context.Context) error {
	if err := p.enter(ctx, OpSignOut); err != nil {
		return err
	}
	p.SetUser(nil)
	return nil
}

func (p *FakeProvider) enter(ctx context.Context, op string) error {
	if p.beforeCall != nil {
		if err := p.beforeCall(ctx, op); err != nil {
			return err
		}
	}
	return ctx.Err()
}

func (p *FakeProvider) signIn(user identity.User) *identity.User {
	user.SignedInAt = p.nowTime()
	user.IDToken = uuid.New().String()
	p.SetUser(&user)
	return &user
}

func normalise(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
