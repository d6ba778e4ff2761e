package cli

import (
	"github.com/kmaguire/cadence/internal/auth"
	"github.com/kmaguire/cadence/internal/storage"
	"github.com/kmaguire/cadence/internal/tracker"
)

// Context carries the wired services into command Run methods.
type Context struct {
	Store   storage.Provider
	Auth    *auth.Service
	Tracker *tracker.Tracker
}

// Bootstrap loads the store, the account registry, and scopes the tracker
// to the resumed session (if any).
func (c *Context) Bootstrap() error {
	if err := c.Store.Load(); err != nil {
		return err
	}
	if err := c.Auth.Load(); err != nil {
		return err
	}
	if user := c.Auth.Current(); user != nil {
		return c.Tracker.SetUser(user.ID)
	}
	return nil
}
