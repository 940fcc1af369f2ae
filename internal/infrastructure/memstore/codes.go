package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rarepair-api/internal/domain"
)

// sweepEvery is how often the background sweep scans for expired codes.
const sweepEvery = 5 * time.Minute

// CodeStore is an in-process verification-code store keyed by identity.
// Expiry classification (Expired vs Mismatch vs consumed) is the verification
// service's job; the store only holds entries. A background sweep bounds
// memory growth from abandoned issuances — entries it removes surface as
// NotFound on a later verify instead of Expired.
type CodeStore struct {
	mu    sync.Mutex
	codes map[string]domain.VerificationCode
	now   func() time.Time
}

func New() *CodeStore {
	cs := NewWithClock(time.Now)
	go cs.sweepLoop()
	return cs
}

// NewWithClock creates a store with an injected clock and no background
// sweep. Used by tests to control expiry without real-time delays.
func NewWithClock(now func() time.Time) *CodeStore {
	return &CodeStore{
		codes: make(map[string]domain.VerificationCode),
		now:   now,
	}
}

// Put stores v, overwriting any previous code for the same identity.
func (cs *CodeStore) Put(_ context.Context, v *domain.VerificationCode) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.codes[v.Identity] = *v
	return nil
}

// Get returns the stored code for identity, or domain.ErrNotFound. Expired
// entries are still returned until swept, so callers can report Expired.
func (cs *CodeStore) Get(_ context.Context, identity string) (*domain.VerificationCode, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	v, ok := cs.codes[identity]
	if !ok {
		return nil, fmt.Errorf("no code for identity: %w", domain.ErrNotFound)
	}
	return &v, nil
}

// Delete removes the code for identity. Deleting an absent identity is a no-op.
func (cs *CodeStore) Delete(_ context.Context, identity string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.codes, identity)
	return nil
}

func (cs *CodeStore) sweepLoop() {
	for {
		time.Sleep(sweepEvery)
		cs.sweepExpired()
	}
}

// sweepExpired removes every entry whose expiry has passed.
func (cs *CodeStore) sweepExpired() {
	nowUnix := cs.now().Unix()
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for identity, v := range cs.codes {
		if nowUnix > v.ExpiresAt {
			delete(cs.codes, identity)
		}
	}
}
