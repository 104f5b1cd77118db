package screen

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/jrsteele09/go-signin-client/form"
	"github.com/jrsteele09/go-signin-client/identity"
	"github.com/jrsteele09/go-signin-client/internal/utils"
	"github.com/jrsteele09/go-signin-client/oauthflow"
	"github.com/jrsteele09/go-signin-client/session"
	"github.com/jrsteele09/go-signin-client/splash"
	"github.com/jrsteele09/go-signin-client/ui"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Social login buttons.
const (
	SocialGoogle  = "google"
	SocialTwitter = "x-twitter"
)

var (
	ErrNotMounted   = errors.New("screen is not mounted")
	ErrUnmounted    = errors.New("screen has been unmounted")
	ErrSplashing    = errors.New("screen is still showing the splash")
	ErrOAuthMissing = errors.New("google sign-in is not configured")
)

// Config holds what differs between app builds of the screen.
type Config struct {
	Splash splash.Config
	Mode   form.Mode
}

// Screen is the sign-in screen: a splash gate in front of a credential form,
// with the session observer deciding what is shown once the gate opens.
type Screen struct {
	provider identity.Provider
	alerts   ui.Alerter
	oauth    *oauthflow.Handler

	gate     *splash.Gate
	observer *session.Observer
	form     *form.Form

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	unmounted bool
}

type Option func(*Screen)

// WithOAuth enables the Google button. Without it the button stays disabled.
func WithOAuth(handler *oauthflow.Handler) Option {
	return func(s *Screen) {
		s.oauth = handler
	}
}

func New(cfg Config, provider identity.Provider, alerts ui.Alerter, options ...Option) (*Screen, error) {
	if provider == nil {
		return nil, errors.New("[screen.New] provider is required")
	}
	if alerts == nil {
		return nil, errors.New("[screen.New] alerts is required")
	}

	f, err := form.New(provider, alerts, form.WithMode(cfg.Mode))
	if err != nil {
		return nil, errors.Wrap(err, "[screen.New] form.New")
	}

	s := &Screen{
		provider: provider,
		alerts:   alerts,
		gate:     splash.New(cfg.Splash),
		observer: session.NewObserver(provider),
		form:     f,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Mount starts the splash gate and the session observer and initialises the
// OAuth request in the background. Everything started here is bound to ctx
// and stopped by Unmount.
func (s *Screen) Mount(ctx context.Context) error {
	s.mu.Lock()
	if s.unmounted {
		s.mu.Unlock()
		return ErrUnmounted
	}
	if s.ctx != nil {
		s.mu.Unlock()
		return errors.New("[Screen.Mount] already mounted")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	mountCtx := s.ctx
	s.mu.Unlock()

	s.gate.Start(mountCtx)
	if err := s.observer.Start(); err != nil {
		return errors.Wrap(err, "[Screen.Mount] observer.Start")
	}

	if s.oauth != nil {
		go func() {
			if err := s.oauth.Init(mountCtx); err != nil && mountCtx.Err() == nil {
				log.Err(err).Msg("oauth request could not be initialised, google sign-in disabled")
			}
		}()
	}
	log.Debug().Msg("screen mounted")
	return nil
}

// Unmount cancels in-flight work, stops the splash timer and deregisters the
// session listener. Results of cancelled calls are not shown.
func (s *Screen) Unmount() {
	s.mu.Lock()
	if s.unmounted {
		s.mu.Unlock()
		return
	}
	s.unmounted = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.gate.Stop()
	s.observer.Stop()
	log.Debug().Msg("screen unmounted")
}

// Ready reports whether the splash has been dismissed.
func (s *Screen) Ready() bool {
	return s.gate.Ready()
}

// WaitReady blocks until the splash is dismissed.
func (s *Screen) WaitReady(ctx context.Context) error {
	return s.gate.Wait(ctx)
}

func (s *Screen) Form() *form.Form {
	return s.form
}

func (s *Screen) Session() *session.Observer {
	return s.observer
}

// Submit runs the form's submit action for the current mode.
func (s *Screen) Submit() error {
	ctx, err := s.active()
	if err != nil {
		return err
	}
	return s.form.Submit(ctx)
}

// Logout signs the current user out. The observer clears the session once
// the provider reports the change.
func (s *Screen) Logout() error {
	ctx, err := s.active()
	if err != nil {
		return err
	}
	return s.form.Logout(ctx)
}

// SocialLogin handles a press on one of the social buttons.
func (s *Screen) SocialLogin(name string) error {
	ctx, err := s.active()
	if err != nil {
		return err
	}

	switch name {
	case SocialGoogle:
		if s.oauth == nil {
			return ErrOAuthMissing
		}
		if _, err := s.oauth.BeginFlow(ctx); err != nil {
			return errors.Wrap(err, "[Screen.SocialLogin] BeginFlow")
		}
		return nil
	case SocialTwitter:
		s.alerts.Alert(fmt.Sprintf(ui.MsgNotImplemented, "Twitter"), "")
		return nil
	default:
		s.alerts.Alert(fmt.Sprintf(ui.MsgNotImplemented, providerLabel(name)), "")
		return nil
	}
}

// RedirectHandler serves the OAuth redirect target. Sign-ins it starts are
// cancelled with the screen.
func (s *Screen) RedirectHandler() (http.Handler, error) {
	if s.oauth == nil {
		return nil, ErrOAuthMissing
	}
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		return nil, ErrNotMounted
	}
	return s.oauth.CallbackHandler(ctx), nil
}

// View is everything needed to draw the screen at one instant.
type View struct {
	Ready     bool
	SignedIn  bool
	UserEmail string

	Mode          form.Mode
	Title         string
	SubmitLabel   string
	Email         string
	Password      string
	TermsVisible  bool
	TermsAccepted bool
	SubmitEnabled bool
	Loading       bool

	GoogleEnabled bool
	AltCaption    string
	TogglePrompt  string
	ToggleAction  string
}

func (s *Screen) View() View {
	v := View{Ready: s.Ready()}
	if !v.Ready {
		return v
	}

	state := s.observer.Current()
	v.SignedIn = state.SignedIn()
	v.UserEmail = utils.Value(state.User).Email

	snap := s.form.Snapshot()
	v.Mode = snap.Mode
	v.Email = snap.Email
	v.Password = snap.Password
	if !snap.ShowPassword {
		v.Password = strings.Repeat("•", len([]rune(snap.Password)))
	}
	v.TermsAccepted = snap.TermsAccepted
	v.SubmitEnabled = snap.CanSubmit()
	v.Loading = snap.Loading
	v.GoogleEnabled = s.oauth != nil && s.oauth.Ready()

	if snap.Mode == form.ModeSignUp {
		v.Title = "Sign up"
		v.SubmitLabel = "Sign up"
		v.TermsVisible = true
		v.AltCaption = "Or register with"
		v.TogglePrompt = "Already have an account?"
		v.ToggleAction = "Log in"
	} else {
		v.Title = "Log in"
		v.SubmitLabel = "Log in"
		v.AltCaption = "Or log in with"
		v.TogglePrompt = "Don't have an account?"
		v.ToggleAction = "Sign up"
	}
	return v
}

// active returns the screen context once the screen is mounted and the
// splash has gone.
func (s *Screen) active() (context.Context, error) {
	s.mu.Lock()
	ctx, unmounted := s.ctx, s.unmounted
	s.mu.Unlock()

	switch {
	case unmounted:
		return nil, ErrUnmounted
	case ctx == nil:
		return nil, ErrNotMounted
	case !s.Ready():
		return nil, ErrSplashing
	}
	return ctx, nil
}

func providerLabel(name string) string {
	if name == "" {
		return "Unknown"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
