package selection

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"catalog-cost/internal/errors"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func testGuard(t *testing.T) (*Guard, *Store, *fakeClock) {
	t.Helper()
	store := NewStore(testCatalogView())
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	guard := NewGuard(store, GuardConfig{
		JustDisabledFor: 4 * time.Second,
		Now:             clock.Now,
	})
	return guard, store, clock
}

func TestGuardBlocksSilentDisable(t *testing.T) {
	guard, store, _ := testGuard(t)

	if err := store.Enable("db1", "web-app-files", "pro"); err != nil {
		t.Fatalf("Enable() error = %v", err)
	}
	before := store.GetState("db1")

	intent, err := guard.RequestDisable("db1", "web-app-files")
	if err != nil {
		t.Fatalf("RequestDisable() error = %v", err)
	}
	if intent.Token == "" || intent.Impact == "" {
		t.Errorf("intent = %+v, want a token and an impact description", intent)
	}
	if !reflect.DeepEqual(store.GetState("db1"), before) {
		t.Error("expected the request alone to leave the store untouched")
	}

	if err := guard.Confirm(intent.Token); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if store.Enabled("db1", "web-app-files") {
		t.Error("expected the confirm to commit the disable")
	}
	if _, ok := guard.Pending("db1", "web-app-files"); ok {
		t.Error("expected the intent to be consumed by the confirm")
	}
}

func TestGuardCancelPreservesState(t *testing.T) {
	guard, store, _ := testGuard(t)

	if err := store.Enable("db1", "web-app-files", "pro"); err != nil {
		t.Fatalf("Enable() error = %v", err)
	}
	before := store.GetState("db1")

	intent, err := guard.RequestDisable("db1", "web-app-files")
	if err != nil {
		t.Fatalf("RequestDisable() error = %v", err)
	}
	guard.Cancel(intent.Token)
	guard.Cancel(intent.Token)

	if !reflect.DeepEqual(store.GetState("db1"), before) {
		t.Error("expected cancel to leave state exactly as before the intent")
	}
	if _, ok := guard.Pending("db1", "web-app-files"); ok {
		t.Error("expected no pending intent after cancel")
	}
	if err := guard.Confirm(intent.Token); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("Confirm() after cancel error = %v, want not found", err)
	}
}

func TestGuardReturnsExistingIntent(t *testing.T) {
	guard, store, _ := testGuard(t)

	if err := store.Enable("db1", "web-app-files", ""); err != nil {
		t.Fatalf("Enable() error = %v", err)
	}

	first, err := guard.RequestDisable("db1", "web-app-files")
	if err != nil {
		t.Fatalf("RequestDisable() error = %v", err)
	}
	second, err := guard.RequestDisable("db1", "web-app-files")
	if err != nil {
		t.Fatalf("RequestDisable() error = %v", err)
	}
	if first.Token != second.Token {
		t.Errorf("tokens %q and %q, want the pending intent reused", first.Token, second.Token)
	}
}

func TestGuardRejectsDisabledEntry(t *testing.T) {
	guard, _, _ := testGuard(t)

	_, err := guard.RequestDisable("db1", "web-app-files")
	if !errors.IsType(err, errors.TypeSelection) {
		t.Errorf("RequestDisable() error = %v, want a selection error", err)
	}
}

func TestGuardJustDisabledExpires(t *testing.T) {
	guard, store, clock := testGuard(t)

	if err := store.Enable("db1", "web-app-files", ""); err != nil {
		t.Fatalf("Enable() error = %v", err)
	}
	intent, err := guard.RequestDisable("db1", "web-app-files")
	if err != nil {
		t.Fatalf("RequestDisable() error = %v", err)
	}
	if err := guard.Confirm(intent.Token); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}

	if !guard.JustDisabled("db1", "web-app-files") {
		t.Error("expected the marker right after the confirm")
	}
	clock.advance(3 * time.Second)
	if !guard.JustDisabled("db1", "web-app-files") {
		t.Error("expected the marker to persist within the window")
	}
	clock.advance(2 * time.Second)
	if guard.JustDisabled("db1", "web-app-files") {
		t.Error("expected the marker to self-clear after the window")
	}
	if guard.JustDisabled("db1", "web-app-files") {
		t.Error("expected the cleared marker to stay cleared")
	}
}

func TestGuardImpactDescriptions(t *testing.T) {
	guard, store, _ := testGuard(t)

	for _, id := range []string{"web-app-files", "server/collab-suite"} {
		if err := store.Enable("db1", id, ""); err != nil {
			t.Fatalf("Enable(%s) error = %v", id, err)
		}
	}

	role, err := guard.RequestDisable("db1", "web-app-files")
	if err != nil {
		t.Fatalf("RequestDisable() error = %v", err)
	}
	if !strings.Contains(role.Impact, "'web-app-files'") || !strings.Contains(role.Impact, "'db1'") {
		t.Errorf("impact = %q, want the role and alias named", role.Impact)
	}
	if !strings.Contains(role.Impact, "server/collab-suite") {
		t.Errorf("impact = %q, want the enabled bundle losing a member named", role.Impact)
	}

	bundle, err := guard.RequestDisable("db1", "server/collab-suite")
	if err != nil {
		t.Fatalf("RequestDisable() error = %v", err)
	}
	if !strings.Contains(bundle.Impact, "bundle 'server/collab-suite'") {
		t.Errorf("impact = %q, want the bundle named", bundle.Impact)
	}
	if !strings.Contains(bundle.Impact, "1 of 5 member roles") {
		t.Errorf("impact = %q, want the member count surfaced", bundle.Impact)
	}
}
