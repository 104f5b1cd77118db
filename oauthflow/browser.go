package oauthflow

import "context"

// Browser shows the consent page to the user.
type Browser interface {
	Open(ctx context.Context, url string) error
}

type BrowserFunc func(ctx context.Context, url string) error

func (f BrowserFunc) Open(ctx context.Context, url string) error {
	return f(ctx, url)
}
