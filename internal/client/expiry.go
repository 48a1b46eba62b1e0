package client

import "sync"

// LoginPath is where an expired session is sent.
const LoginPath = "/auth/"

const expiredNotice = "Your session has expired. Please sign in again."

// ExpiryGuard fires the expiry notice and redirect exactly once no matter how
// many requests fail with 401 concurrently. Reset re-arms it after login.
type ExpiryGuard struct {
	mu       sync.Mutex
	shown    bool
	notify   func(msg string)
	redirect func(path string)
}

func NewExpiryGuard(notify func(msg string), redirect func(path string)) *ExpiryGuard {
	return &ExpiryGuard{notify: notify, redirect: redirect}
}

// Trigger reports whether this call fired the notice.
func (g *ExpiryGuard) Trigger() bool {
	g.mu.Lock()
	if g.shown {
		g.mu.Unlock()
		return false
	}
	g.shown = true
	g.mu.Unlock()

	if g.notify != nil {
		g.notify(expiredNotice)
	}
	if g.redirect != nil {
		g.redirect(LoginPath)
	}
	return true
}

func (g *ExpiryGuard) Reset() {
	g.mu.Lock()
	g.shown = false
	g.mu.Unlock()
}

func (g *ExpiryGuard) Shown() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.shown
}
