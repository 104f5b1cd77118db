package form

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-signin-client/identity"
	autherrors "github.com/jrsteele09/go-signin-client/internal/errors"
	"github.com/jrsteele09/go-signin-client/ui"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Mode selects whether the form signs a new user up or logs an existing one in.
type Mode int

const (
	ModeSignUp Mode = iota
	ModeLogIn
)

func (m Mode) String() string {
	if m == ModeLogIn {
		return "log-in"
	}
	return "sign-up"
}

var (
	ErrInvalidForm      = errors.New("form is not valid")
	ErrBusy             = errors.New("a submission is already in progress")
	ErrTermsNotAccepted = errors.New("terms must be accepted")
)

// Validate applies the submit rules for mode. Both fields are required; in
// sign-up mode the terms must be accepted and the password must be strong.
func Validate(mode Mode, email, password string, termsAccepted bool) error {
	if email == "" || password == "" {
		return autherrors.ErrMissingCredentials
	}
	if mode != ModeSignUp {
		return nil
	}
	if !termsAccepted {
		return ErrTermsNotAccepted
	}
	return ValidatePasswordStrength(password)
}

// Snapshot is a copy of the form state at one instant.
type Snapshot struct {
	Mode          Mode
	Email         string
	Password      string
	TermsAccepted bool
	ShowPassword  bool
	Loading       bool
	Valid         bool
}

// CanSubmit reports whether the submit action is enabled.
func (s Snapshot) CanSubmit() bool {
	return s.Valid && !s.Loading
}

// Form holds the transient credentials typed by the user and drives the
// provider's email/password calls. It never writes session state; the
// session observer picks up sign-in changes from the provider.
type Form struct {
	provider identity.PasswordAuthenticator
	alerts   ui.Alerter

	mu            sync.Mutex
	mode          Mode
	email         string
	password      string
	termsAccepted bool
	showPassword  bool
	loading       bool
}

type Option func(*Form)

// WithMode sets the initial mode. Forms start in sign-up mode by default.
func WithMode(mode Mode) Option {
	return func(f *Form) {
		f.mode = mode
	}
}

func New(provider identity.PasswordAuthenticator, alerts ui.Alerter, options ...Option) (*Form, error) {
	if provider == nil {
		return nil, errors.New("[form.New] provider is required")
	}
	if alerts == nil {
		return nil, errors.New("[form.New] alerts is required")
	}
	f := &Form{
		provider: provider,
		alerts:   alerts,
		mode:     ModeSignUp,
	}
	for _, opt := range options {
		opt(f)
	}
	return f, nil
}

func (f *Form) SetEmail(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email = email
}

func (f *Form) SetPassword(password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.password = password
}

func (f *Form) SetTermsAccepted(accepted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.termsAccepted = accepted
}

func (f *Form) ToggleTerms() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.termsAccepted = !f.termsAccepted
}

func (f *Form) ToggleShowPassword() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.showPassword = !f.showPassword
}

// ToggleMode switches between sign-up and log-in and clears the credentials
// and terms acceptance.
func (f *Form) ToggleMode() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode == ModeSignUp {
		f.mode = ModeLogIn
	} else {
		f.mode = ModeSignUp
	}
	f.email = ""
	f.password = ""
	f.termsAccepted = false
}

func (f *Form) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

func (f *Form) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		Mode:          f.mode,
		Email:         f.email,
		Password:      f.password,
		TermsAccepted: f.termsAccepted,
		ShowPassword:  f.showPassword,
		Loading:       f.loading,
		Valid:         Validate(f.mode, f.email, f.password, f.termsAccepted) == nil,
	}
}

func (f *Form) IsValid() bool {
	return f.Snapshot().Valid
}

func (f *Form) CanSubmit() bool {
	return f.Snapshot().CanSubmit()
}

// Submit validates the form and runs SubmitSignUp or SubmitLogin for the
// current mode. An invalid form raises an alert and makes no provider call.
func (f *Form) Submit(ctx context.Context) error {
	snap := f.Snapshot()
	if snap.Loading {
		return ErrBusy
	}
	if err := Validate(snap.Mode, snap.Email, snap.Password, snap.TermsAccepted); err != nil {
		f.alerts.Alert(ui.TitleError, ui.MsgInvalidForm)
		return fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}
	if snap.Mode == ModeSignUp {
		return f.SubmitSignUp(ctx, snap.Email, snap.Password)
	}
	return f.SubmitLogin(ctx, snap.Email, snap.Password)
}

// SubmitLogin signs an existing user in. The loading flag is set for the
// duration of the provider call and always cleared afterwards.
func (f *Form) SubmitLogin(ctx context.Context, email, password string) error {
	return f.submit(ctx, email, password, submitKind{
		name:       "SubmitLogin",
		errTitle:   ui.TitleLoginError,
		successMsg: ui.MsgLoginSucceeded,
		call:       f.provider.SignInWithEmailAndPassword,
	})
}

// SubmitSignUp creates a new account. The loading flag is set for the
// duration of the provider call and always cleared afterwards.
func (f *Form) SubmitSignUp(ctx context.Context, email, password string) error {
	return f.submit(ctx, email, password, submitKind{
		name:       "SubmitSignUp",
		errTitle:   ui.TitleSignUpError,
		successMsg: ui.MsgSignUpSucceeded,
		call:       f.provider.CreateUserWithEmailAndPassword,
	})
}

type submitKind struct {
	name       string
	errTitle   string
	successMsg string
	call       func(ctx context.Context, email, password string) (*identity.User, error)
}

func (f *Form) submit(ctx context.Context, email, password string, kind submitKind) error {
	if email == "" || password == "" {
		f.alerts.Alert(ui.TitleError, ui.MsgMissingCredentials)
		return autherrors.ErrMissingCredentials
	}
	if !f.begin() {
		return ErrBusy
	}
	defer f.end()

	_, err := kind.call(ctx, email, password)
	if ctx.Err() != nil {
		// The screen went away while the call was in flight.
		log.Debug().Str("op", kind.name).Msg("submission abandoned")
		if err == nil {
			err = ctx.Err()
		}
		return errors.Wrapf(err, "[Form.%s]", kind.name)
	}
	if err != nil {
		f.alerts.Alert(kind.errTitle, providerMessage(err))
		return errors.Wrapf(err, "[Form.%s]", kind.name)
	}
	f.alerts.Alert(ui.TitleSuccess, kind.successMsg)
	return nil
}

// Logout signs the user out and clears the typed credentials. Failures are
// logged and returned but never shown to the user.
func (f *Form) Logout(ctx context.Context) error {
	if err := f.provider.SignOut(ctx); err != nil {
		log.Err(err).Msg("sign out failed")
		return errors.Wrap(err, "[Form.Logout] SignOut")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email = ""
	f.password = ""
	return nil
}

func (f *Form) begin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loading {
		return false
	}
	f.loading = true
	return true
}

func (f *Form) end() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
}

func providerMessage(err error) string {
	var perr *identity.ProviderError
	if autherrors.As(err, &perr) {
		return perr.Error()
	}
	return errors.Cause(err).Error()
}
