// Package selection tracks which catalog entries are enabled on which
// aliases.
//
// The Store is the single mutation path for selection state: callers
// invoke the named operations and never edit returned collections.
// Disables initiated by an operator go through the Guard, which holds
// them behind an explicit confirmation before they reach the store.
package selection

import (
	"sort"
	"strings"
	"sync"

	"catalog-cost/internal/errors"
)

// Catalog is the read-only slice of catalog data the store consults:
// the plans a role offers and the member roles of a bundle. A nil
// Catalog treats every ID as a role without plan options.
type Catalog interface {
	// PlanIDs lists a role's plan IDs in document order, empty for
	// roles without explicit pricing
	PlanIDs(roleID string) []string

	// BundleRoles lists a bundle's member role IDs. The second
	// return reports whether the ID names a bundle at all.
	BundleRoles(bundleID string) ([]string, bool)
}

// State is a deep copy of one alias's selections.
type State struct {
	// EnabledRoleIDs lists the enabled roles, sorted
	EnabledRoleIDs []string `json:"enabled_role_ids"`

	// PlanByRole maps enabled roles to their selected plan, empty
	// for roles without plan options
	PlanByRole map[string]string `json:"plan_by_role"`

	// EnabledBundleIDs lists the enabled bundles, sorted
	EnabledBundleIDs []string `json:"enabled_bundle_ids"`
}

type aliasState struct {
	roles   map[string]string
	bundles map[string]struct{}
}

// Store holds per-alias enablement. Mutations are atomic to callers;
// reads return copies. Bundle counters are derived from per-role
// truth on every call, never cached, so they cannot drift.
type Store struct {
	mu      sync.RWMutex
	catalog Catalog
	aliases map[string]*aliasState
}

// NewStore creates an empty store over the given catalog view.
func NewStore(catalog Catalog) *Store {
	return &Store{
		catalog: catalog,
		aliases: make(map[string]*aliasState),
	}
}

// Enable turns an entry on for an alias. Enabling an already-enabled
// entry with the same plan is a no-op; a different plan overwrites
// the plan in place without a disable. An empty planID on a role with
// plan options selects the first available plan. Bundles toggle
// independently of their member roles and take no plan.
func (s *Store) Enable(alias, id, planID string) error {
	alias = strings.TrimSpace(alias)
	id = strings.TrimSpace(id)
	planID = strings.TrimSpace(planID)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enable(alias, id, planID)
}

// enable applies the transition. Callers must hold the write lock.
func (s *Store) enable(alias, id, planID string) error {
	if _, isBundle := s.bundleRoles(id); isBundle {
		if planID != "" {
			return errors.Newf(errors.TypeSelection, "plan '%s' is not offered by '%s'", planID, id)
		}
		s.state(alias).bundles[id] = struct{}{}
		return nil
	}

	plans := s.planIDs(id)
	if planID != "" && !containsString(plans, planID) {
		return errors.Newf(errors.TypeSelection, "plan '%s' is not offered by '%s'", planID, id)
	}
	if planID == "" && len(plans) > 0 {
		planID = plans[0]
	}
	s.state(alias).roles[id] = planID
	return nil
}

// Disable turns an entry off for an alias. Operator-initiated
// disables go through the Guard; this is the post-confirmation path.
// Disabling a disabled entry is a no-op.
func (s *Store) Disable(alias, id string) {
	alias = strings.TrimSpace(alias)
	id = strings.TrimSpace(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.aliases[alias]
	if !ok {
		return
	}
	delete(st.roles, id)
	delete(st.bundles, id)
}

// ToggleForAlias flips an entry for one alias and reports the new
// enabled state. Other aliases are never touched. Enabling defaults
// the plan the way Enable does.
func (s *Store) ToggleForAlias(alias, id string) bool {
	alias = strings.TrimSpace(alias)
	id = strings.TrimSpace(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.aliases[alias]; ok && stateHolds(st, id) {
		delete(st.roles, id)
		delete(st.bundles, id)
		return false
	}
	// Empty plan never fails enablement.
	_ = s.enable(alias, id, "")
	return true
}

// Enabled reports whether an entry is enabled for an alias.
func (s *Store) Enabled(alias, id string) bool {
	alias = strings.TrimSpace(alias)
	id = strings.TrimSpace(id)

	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.aliases[alias]
	return ok && stateHolds(st, id)
}

// Plan returns the plan selected for an enabled role, empty when the
// role has no plan options. The second return reports enablement.
func (s *Store) Plan(alias, roleID string) (string, bool) {
	alias = strings.TrimSpace(alias)
	roleID = strings.TrimSpace(roleID)

	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.aliases[alias]
	if !ok {
		return "", false
	}
	planID, ok := st.roles[roleID]
	return planID, ok
}

// GetState returns a deep copy of one alias's selections. Mutating
// the returned collections never affects the store.
func (s *Store) GetState(alias string) State {
	alias = strings.TrimSpace(alias)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := State{
		EnabledRoleIDs:   []string{},
		PlanByRole:       make(map[string]string),
		EnabledBundleIDs: []string{},
	}
	st, ok := s.aliases[alias]
	if !ok {
		return out
	}
	for roleID, planID := range st.roles {
		out.EnabledRoleIDs = append(out.EnabledRoleIDs, roleID)
		out.PlanByRole[roleID] = planID
	}
	for bundleID := range st.bundles {
		out.EnabledBundleIDs = append(out.EnabledBundleIDs, bundleID)
	}
	sort.Strings(out.EnabledRoleIDs)
	sort.Strings(out.EnabledBundleIDs)
	return out
}

// Aliases lists every alias the store has seen a selection for,
// sorted. Aliases whose selections were all disabled still appear.
func (s *Store) Aliases() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.aliases))
	for alias := range s.aliases {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}

// EnabledAliases lists the aliases an entry is enabled for, sorted.
func (s *Store) EnabledAliases(id string) []string {
	id = strings.TrimSpace(id)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for alias, st := range s.aliases {
		if stateHolds(st, id) {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

// SelectedCount reports how many of a bundle's member roles are
// enabled for an alias. Recomputed from per-role truth on every call.
func (s *Store) SelectedCount(alias, bundleID string) int {
	alias = strings.TrimSpace(alias)

	s.mu.RLock()
	defer s.mu.RUnlock()

	members, ok := s.bundleRoles(bundleID)
	if !ok {
		return 0
	}
	st, ok := s.aliases[alias]
	if !ok {
		return 0
	}
	count := 0
	for _, roleID := range members {
		if _, enabled := st.roles[roleID]; enabled {
			count++
		}
	}
	return count
}

// TotalCount reports how many member roles a bundle has.
func (s *Store) TotalCount(bundleID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members, ok := s.bundleRoles(bundleID)
	if !ok {
		return 0
	}
	return len(members)
}

// state returns the alias bucket, creating it on first write.
func (s *Store) state(alias string) *aliasState {
	st, ok := s.aliases[alias]
	if !ok {
		st = &aliasState{
			roles:   make(map[string]string),
			bundles: make(map[string]struct{}),
		}
		s.aliases[alias] = st
	}
	return st
}

func (s *Store) planIDs(id string) []string {
	if s.catalog == nil {
		return nil
	}
	return s.catalog.PlanIDs(id)
}

func (s *Store) bundleRoles(id string) ([]string, bool) {
	if s.catalog == nil {
		return nil, false
	}
	return s.catalog.BundleRoles(strings.TrimSpace(id))
}

func stateHolds(st *aliasState, id string) bool {
	if _, ok := st.roles[id]; ok {
		return true
	}
	_, ok := st.bundles[id]
	return ok
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
