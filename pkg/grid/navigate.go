package grid

import (
	"time"

	"go.uber.org/zap"
)

// postLoginSettle bounds the extra quiescence wait after login completes.
const postLoginSettle = 30 * time.Second

// Navigator drives the browser to the portal and handles the interactive
// login gate. Both operations report success as a boolean; nothing from the
// driver escapes.
type Navigator struct {
	page             Page
	entryURL         string
	postLoginPattern string
	passwordInput    string
	pageLoadTimeout  time.Duration
	loginTimeout     time.Duration
	log              *zap.Logger
}

// NewNavigator builds a navigator for the portal described by opts.
func NewNavigator(page Page, opts Options, log *zap.Logger) *Navigator {
	return &Navigator{
		page:             page,
		entryURL:         opts.EntryURL,
		postLoginPattern: opts.PostLoginPattern,
		passwordInput:    opts.Selectors.PasswordInput,
		pageLoadTimeout:  opts.PageLoadTimeout,
		loginTimeout:     opts.LoginTimeout,
		log:              log,
	}
}

// Navigate loads the portal entry URL and waits for network quiescence.
// Returns false on any timeout or navigation error.
func (n *Navigator) Navigate() bool {
	n.log.Info("navigating to portal", zap.String("url", n.entryURL))

	if err := n.page.Goto(n.entryURL, n.pageLoadTimeout); err != nil {
		n.log.Error("navigation failed", zap.String("url", n.entryURL), zap.Error(err))
		return false
	}
	if err := n.page.WaitQuiescent(n.pageLoadTimeout); err != nil {
		n.log.Error("page never became quiescent", zap.Error(err))
		return false
	}

	n.log.Info("portal loaded")
	return true
}

// WaitForLogin detects the login gate and, if present, blocks until a human
// completes authentication out-of-band (signalled by the URL matching the
// post-login pattern) or the login timeout elapses. Returns true immediately
// when no password input is on the page.
func (n *Navigator) WaitForLogin() bool {
	count, err := n.page.Locator(n.passwordInput).Count()
	if err != nil {
		n.log.Error("failed to probe for login gate", zap.Error(err))
		return false
	}
	if count == 0 {
		n.log.Info("no login gate detected")
		return true
	}

	n.log.Info("login gate detected, waiting for interactive authentication",
		zap.Duration("timeout", n.loginTimeout))

	if err := n.page.WaitForURL(n.postLoginPattern, n.loginTimeout); err != nil {
		n.log.Error("login was not completed in time", zap.Error(err))
		return false
	}
	if err := n.page.WaitQuiescent(postLoginSettle); err != nil {
		n.log.Warn("post-login page did not settle", zap.Error(err))
	}

	n.log.Info("login completed")
	return true
}
