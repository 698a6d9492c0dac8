package selection

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"catalog-cost/internal/errors"
)

// Intent is one pending disable awaiting confirmation.
type Intent struct {
	// Token identifies the intent for Confirm and Cancel
	Token string `json:"token"`

	// Alias is the device scope losing the entry
	Alias string `json:"alias"`

	// ID is the role or bundle being disabled
	ID string `json:"id"`

	// Impact describes what the disable removes
	Impact string `json:"impact"`
}

// GuardConfig configures confirmation behavior.
type GuardConfig struct {
	// JustDisabledFor is how long a confirmed disable keeps its
	// cosmetic marker
	JustDisabledFor time.Duration

	// Now supplies the time, overridable in tests
	Now func() time.Time
}

// DefaultGuardConfig returns the default configuration.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		JustDisabledFor: 4 * time.Second,
		Now:             time.Now,
	}
}

type pairKey struct {
	alias string
	id    string
}

// Guard holds every operator-initiated disable behind an explicit
// confirmation. Nothing reaches the store until Confirm; Cancel or
// abandonment leave the enabled state untouched. Confirmed rows carry
// a time-boxed cosmetic marker that is not part of selection state.
type Guard struct {
	store  *Store
	config GuardConfig

	mu           sync.Mutex
	pending      map[string]Intent
	tokens       map[pairKey]string
	justDisabled map[pairKey]time.Time
}

// NewGuard creates a guard over the given store.
func NewGuard(store *Store, config GuardConfig) *Guard {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.JustDisabledFor <= 0 {
		config.JustDisabledFor = DefaultGuardConfig().JustDisabledFor
	}
	return &Guard{
		store:        store,
		config:       config,
		pending:      make(map[string]Intent),
		tokens:       make(map[pairKey]string),
		justDisabled: make(map[pairKey]time.Time),
	}
}

// RequestDisable opens a pending confirmation for disabling an entry
// and describes the impact. The store is not touched. A second
// request for the same pair returns the already-pending intent.
func (g *Guard) RequestDisable(alias, id string) (Intent, error) {
	alias = strings.TrimSpace(alias)
	id = strings.TrimSpace(id)

	if !g.store.Enabled(alias, id) {
		return Intent{}, errors.Newf(errors.TypeSelection, "'%s' is not enabled for alias '%s'", id, alias)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	pair := pairKey{alias: alias, id: id}
	if token, ok := g.tokens[pair]; ok {
		return g.pending[token], nil
	}

	intent := Intent{
		Token:  uuid.NewString(),
		Alias:  alias,
		ID:     id,
		Impact: g.impact(alias, id),
	}
	g.pending[intent.Token] = intent
	g.tokens[pair] = intent.Token
	return intent, nil
}

// Confirm commits a pending disable to the store and marks the row
// just-disabled for the configured duration.
func (g *Guard) Confirm(token string) error {
	g.mu.Lock()
	intent, ok := g.pending[token]
	if !ok {
		g.mu.Unlock()
		return errors.NotFound("pending disable", token)
	}
	pair := pairKey{alias: intent.Alias, id: intent.ID}
	delete(g.pending, token)
	delete(g.tokens, pair)
	g.justDisabled[pair] = g.config.Now().Add(g.config.JustDisabledFor)
	g.mu.Unlock()

	g.store.Disable(intent.Alias, intent.ID)
	return nil
}

// Cancel drops a pending disable without touching the store. Unknown
// tokens are ignored so an abandoned confirmation can be dismissed
// more than once.
func (g *Guard) Cancel(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent, ok := g.pending[token]
	if !ok {
		return
	}
	delete(g.pending, token)
	delete(g.tokens, pairKey{alias: intent.Alias, id: intent.ID})
}

// Pending returns the open intent for a pair, if any.
func (g *Guard) Pending(alias, id string) (Intent, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	pair := pairKey{alias: strings.TrimSpace(alias), id: strings.TrimSpace(id)}
	token, ok := g.tokens[pair]
	if !ok {
		return Intent{}, false
	}
	return g.pending[token], true
}

// JustDisabled reports whether a row was disabled within the marker
// window. The marker is presentation metadata only and self-clears;
// its absence says nothing about selection state.
func (g *Guard) JustDisabled(alias, id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	pair := pairKey{alias: strings.TrimSpace(alias), id: strings.TrimSpace(id)}
	expiry, ok := g.justDisabled[pair]
	if !ok {
		return false
	}
	if !g.config.Now().Before(expiry) {
		delete(g.justDisabled, pair)
		return false
	}
	return true
}

// impact describes what a confirmed disable would remove.
func (g *Guard) impact(alias, id string) string {
	if members, isBundle := g.store.bundleRoles(id); isBundle {
		msg := fmt.Sprintf("Disabling bundle '%s' for alias '%s' removes the bundle selection from this device.", id, alias)
		if selected := g.store.SelectedCount(alias, id); selected > 0 {
			msg += fmt.Sprintf(" %d of %d member roles stay individually enabled.", selected, len(members))
		}
		return msg
	}

	msg := fmt.Sprintf("Disabling '%s' for alias '%s' removes this role from the device.", id, alias)
	if affected := g.affectedBundles(alias, id); len(affected) > 0 {
		msg += fmt.Sprintf(" Enabled bundles lose a member: %s.", strings.Join(affected, ", "))
	}
	return msg
}

// affectedBundles lists the alias's enabled bundles containing the
// role, in state order.
func (g *Guard) affectedBundles(alias, roleID string) []string {
	state := g.store.GetState(alias)

	var affected []string
	for _, bundleID := range state.EnabledBundleIDs {
		members, ok := g.store.bundleRoles(bundleID)
		if !ok {
			continue
		}
		if containsString(members, roleID) {
			affected = append(affected, bundleID)
		}
	}
	return affected
}
