package usecase

import (
	"sync"

	"zabibufresh/internal/domain/entity"
)

// ProfileContext is the shared identity state for one authenticated
// session: many readers, one writer (the auth-state resolution path).
// Role checks answer false until the profile has resolved, so no
// role-gated action can fire early.
type ProfileContext struct {
	mu       sync.RWMutex
	user     *entity.User
	resolved bool
}

func NewProfileContext() *ProfileContext {
	return &ProfileContext{}
}

// Set is called by the auth-state-change handler; it is the only writer.
func (pc *ProfileContext) Set(user *entity.User) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.user = user
	pc.resolved = true
}

// Clear resets the context on logout or session expiry.
func (pc *ProfileContext) Clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.user = nil
	pc.resolved = false
}

// CurrentUser returns the resolved profile, or nil before resolution.
func (pc *ProfileContext) CurrentUser() *entity.User {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.user
}

func (pc *ProfileContext) Resolved() bool {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.resolved
}

func (pc *ProfileContext) IsSeller() bool {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.user.IsSeller()
}

func (pc *ProfileContext) IsBuyer() bool {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.user.IsBuyer()
}
