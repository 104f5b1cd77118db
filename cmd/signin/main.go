package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-signin-client/identity"
	"github.com/jrsteele09/go-signin-client/identity/fakeprovider"
	"github.com/jrsteele09/go-signin-client/identity/firebase"
	"github.com/jrsteele09/go-signin-client/internal/config"
	"github.com/jrsteele09/go-signin-client/oauthflow"
	"github.com/jrsteele09/go-signin-client/screen"
	"github.com/jrsteele09/go-signin-client/splash"
	"github.com/jrsteele09/go-signin-client/ui"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var errQuit = errors.New("quit")

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("error running sign-in client")
	}
	log.Info().Msg("sign-in client stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	configureLogging(c)
	displayAppname(c.GetAppName())

	provider, err := newProvider(c)
	if err != nil {
		return err
	}
	alerts := ui.NewTerminalAlerter(os.Stdout, true)

	oauthHandler, err := oauthflow.New(oauthflow.Config{
		ClientIDs: oauthflow.ClientIDs{
			Web:     c.GetGoogleClientID(),
			IOS:     c.GetIOSClientID(),
			Android: c.GetAndroidClientID(),
		},
		Platform:     c.GetPlatform(),
		ClientSecret: c.GetGoogleClientSecret(),
		Issuer:       c.GetOAuthIssuer(),
		Scopes:       c.GetOAuthScopes(),
		RedirectURL:  c.GetRedirectURL(),
		FlowTimeout:  c.GetFlowTimeout(),
	}, provider, alerts, oauthflow.BrowserFunc(printConsentURL))
	if err != nil {
		log.Warn().Err(err).Msg("google sign-in not configured")
	}

	var options []screen.Option
	if oauthHandler != nil {
		options = append(options, screen.WithOAuth(oauthHandler))
	}
	scr, err := screen.New(screen.Config{
		Splash: splash.Config{
			Delay: c.GetSplashDelay(),
			Hide:  func() { fmt.Println(ui.Gray + "splash hidden, type 'help' for commands" + ui.ResetColor) },
		},
	}, provider, alerts, options...)
	if err != nil {
		return fmt.Errorf("screen.New: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := scr.Mount(ctx); err != nil {
		return fmt.Errorf("screen.Mount: %w", err)
	}
	defer scr.Unmount()

	g, gctx := errgroup.WithContext(ctx)
	if oauthHandler != nil {
		redirect, err := scr.RedirectHandler()
		if err != nil {
			return fmt.Errorf("screen.RedirectHandler: %w", err)
		}
		server, err := oauthflow.NewCallbackServer(c.GetCallbackAddr(), c.GetRedirectURL(), redirect)
		if err != nil {
			return err
		}
		g.Go(func() error { return listenAndServe(server) })
		g.Go(func() error {
			<-gctx.Done()
			return shutdown(server)
		})
	}
	g.Go(func() error { return commandLoop(gctx, scr, os.Stdin, os.Stdout) })

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}

func configureLogging(c config.EnvConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.GetLogLevel()))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func newProvider(c config.IdentityConfig) (identity.Provider, error) {
	if c.GetIdentityAPIKey() == "" {
		log.Warn().Msg("IDENTITY_API_KEY not set, using in-memory accounts")
		return fakeprovider.New(), nil
	}
	client, err := firebase.New(c.GetIdentityAPIKey(), firebase.WithBaseURL(c.GetIdentityBaseURL()))
	if err != nil {
		return nil, fmt.Errorf("firebase.New: %w", err)
	}
	return client, nil
}

func printConsentURL(_ context.Context, url string) error {
	fmt.Printf("Open this page to continue with Google:\n%s%s%s\n", ui.Cyan, url, ui.ResetColor)
	return nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("redirect listener started")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

// commandLoop reads one command per line until quit, end of input or ctx is done.
func commandLoop(ctx context.Context, scr *screen.Screen, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return errQuit
			}
			if err := runCommand(scr, out, line); err != nil {
				return err
			}
		}
	}
}

func runCommand(scr *screen.Screen, out io.Writer, line string) error {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	frm := scr.Form()

	var err error
	switch strings.ToLower(name) {
	case "":
		return nil
	case "quit", "exit":
		return errQuit
	case "help":
		printHelp(out)
		return nil
	case "status":
	case "email":
		frm.SetEmail(strings.TrimSpace(arg))
	case "password":
		frm.SetPassword(arg)
	case "terms":
		frm.ToggleTerms()
	case "show":
		frm.ToggleShowPassword()
	case "toggle":
		frm.ToggleMode()
	case "submit":
		err = scr.Submit()
	case "google":
		err = scr.SocialLogin(screen.SocialGoogle)
	case "twitter":
		err = scr.SocialLogin(screen.SocialTwitter)
	case "logout":
		err = scr.Logout()
	default:
		fmt.Fprintf(out, "%sunknown command %q%s\n", ui.Yellow, name, ui.ResetColor)
		return nil
	}

	if err != nil {
		// Alerts have already been shown for anything the user needs to see.
		log.Debug().Err(err).Str("command", name).Msg("command failed")
		if errors.Is(err, screen.ErrSplashing) {
			fmt.Fprintln(out, ui.Gray+"still loading..."+ui.ResetColor)
			return nil
		}
	}
	render(out, scr.View())
	return nil
}

func render(out io.Writer, v screen.View) {
	if !v.Ready {
		fmt.Fprintln(out, ui.Gray+"loading..."+ui.ResetColor)
		return
	}
	if v.SignedIn {
		fmt.Fprintf(out, "%sSigned in as %s%s\n", ui.Green, v.UserEmail, ui.ResetColor)
	}

	fmt.Fprintf(out, "== %s ==\n", v.Title)
	fmt.Fprintf(out, "  email:    %s\n", v.Email)
	fmt.Fprintf(out, "  password: %s\n", v.Password)
	if v.TermsVisible {
		mark := " "
		if v.TermsAccepted {
			mark = "x"
		}
		fmt.Fprintf(out, "  [%s] I accept the terms and conditions\n", mark)
	}

	submit := v.SubmitLabel
	switch {
	case v.Loading:
		submit = "..."
	case !v.SubmitEnabled:
		submit = ui.Gray + submit + ui.ResetColor
	}
	fmt.Fprintf(out, "  <%s>\n", submit)

	google := "google"
	if !v.GoogleEnabled {
		google = ui.Gray + google + ui.ResetColor
	}
	fmt.Fprintf(out, "  %s: <%s> <twitter>\n", v.AltCaption, google)
	fmt.Fprintf(out, "  %s %s\n", v.TogglePrompt, v.ToggleAction)
	if v.SignedIn {
		fmt.Fprintln(out, "  type 'logout' to sign out")
	}
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, `commands:
  email <address>     set the email field
  password <secret>   set the password field
  terms               toggle terms acceptance (sign up)
  show                toggle password visibility
  toggle              switch between sign up and log in
  submit              sign up or log in
  google | twitter    social login
  logout              sign out
  status              redraw the screen
  quit                exit`)
}
