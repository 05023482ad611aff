package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/harishkotra/SketchStack/pkg/diagram"
	"github.com/harishkotra/SketchStack/pkg/plan"
)

func sample(id string) *Session {
	s := New("a web app", plan.ProviderAWS, time.Hour)
	s.ID = id
	s.ArchitecturePlan = plan.ArchitecturePlan{
		Components:        []plan.Component{{ID: "web", Name: "Web", Type: plan.ComponentFrontend}},
		ArchitectureStyle: plan.StyleMonolith,
	}
	s.DiagramPlan = diagram.Derive(s.ArchitecturePlan)
	s.Document = "<mxfile/>"
	s.Scene = []byte(`{"type":"excalidraw"}`)
	return s
}

// storeContract exercises the behaviour every backend shares.
func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	got, err := store.Get(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("Get(missing) = %v, %v; want nil, nil", got, err)
	}

	want := sample("s1")
	if err := store.Set(ctx, want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err = store.Get(ctx, "s1")
	if err != nil || got == nil {
		t.Fatalf("Get(s1) = %v, %v", got, err)
	}
	if got.Description != want.Description || got.CloudProvider != plan.ProviderAWS || got.Document != "<mxfile/>" {
		t.Errorf("Get(s1) = %+v", got)
	}
	if len(got.DiagramPlan.Nodes) != 1 || got.DiagramPlan.Nodes[0].Layer != diagram.LayerApplication {
		t.Errorf("DiagramPlan = %+v", got.DiagramPlan)
	}
	if string(got.Scene) != `{"type":"excalidraw"}` {
		t.Errorf("Scene = %s", got.Scene)
	}

	got.Document = "<mxfile>v2</mxfile>"
	if err := store.Set(ctx, got); err != nil {
		t.Fatalf("Set(update): %v", err)
	}
	again, _ := store.Get(ctx, "s1")
	if again == nil || again.Document != "<mxfile>v2</mxfile>" {
		t.Errorf("update not persisted: %+v", again)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Get(ctx, "s1"); got != nil {
		t.Error("session present after Delete")
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Errorf("Delete(missing) = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore(time.Hour, 10))
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	storeContract(t, store)
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, 10)
	s := sample("s1")
	_ = store.Set(ctx, s)
	s.Document = "mutated"

	got, _ := store.Get(ctx, "s1")
	got.ArchitecturePlan.Components[0].Name = "changed"
	again, _ := store.Get(ctx, "s1")

	if again.Document != "<mxfile/>" || again.ArchitecturePlan.Components[0].Name != "Web" {
		t.Errorf("store shares state with callers: %+v", again)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute, 10)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_ = store.Set(ctx, sample("a"))
	now = now.Add(30 * time.Second)
	if got, _ := store.Get(ctx, "a"); got == nil {
		t.Fatal("session expired early")
	}
	now = now.Add(time.Minute)
	if got, _ := store.Get(ctx, "a"); got != nil {
		t.Error("expired session returned")
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after expired Get", store.Len())
	}
}

func TestMemoryStoreHonoursSessionExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(24*time.Hour, 10)
	now := time.Now()
	store.now = func() time.Time { return now }

	s := sample("short")
	s.ExpiresAt = now.Add(time.Minute)
	_ = store.Set(ctx, s)
	now = now.Add(2 * time.Minute)
	if got, _ := store.Get(ctx, "short"); got != nil {
		t.Error("session outlived its own ExpiresAt")
	}
}

func TestMemoryStoreCap(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, 3)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_ = store.Set(ctx, sample(fmt.Sprintf("s%d", i)))
		now = now.Add(time.Second)
	}
	// Refresh s0 so s1 becomes the least recently updated.
	_ = store.Set(ctx, sample("s0"))
	now = now.Add(time.Second)
	_ = store.Set(ctx, sample("s3"))

	if store.Len() != 3 {
		t.Errorf("Len() = %d, want 3", store.Len())
	}
	if got, _ := store.Get(ctx, "s1"); got != nil {
		t.Error("least recently updated session not evicted")
	}
	for _, id := range []string{"s0", "s2", "s3"} {
		if got, _ := store.Get(ctx, id); got == nil {
			t.Errorf("%s evicted", id)
		}
	}
}

func TestMemoryStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute, 10)
	now := time.Now()
	store.now = func() time.Time { return now }

	_ = store.Set(ctx, sample("old"))
	now = now.Add(45 * time.Second)
	_ = store.Set(ctx, sample("new"))
	now = now.Add(30 * time.Second)

	n, err := store.Cleanup(ctx)
	if err != nil || n != 1 {
		t.Errorf("Cleanup() = %d, %v; want 1", n, err)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestFileStoreExpiryAndCleanup(t *testing.T) {
	ctx := context.Background()
	store, _ := NewFileStore(t.TempDir())

	expired := sample("expired")
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	_ = store.Set(ctx, expired)
	_ = store.Set(ctx, sample("live"))
	if err := os.WriteFile(filepath.Join(store.Path(), "junk.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}

	n, err := store.Cleanup(ctx)
	if err != nil || n != 2 {
		t.Errorf("Cleanup() = %d, %v; want 2", n, err)
	}
	if got, _ := store.Get(ctx, "live"); got == nil {
		t.Error("live session removed")
	}

	_ = store.Set(ctx, expired)
	if got, _ := store.Get(ctx, "expired"); got != nil {
		t.Error("expired session returned")
	}
	if _, err := os.Stat(store.sessionPath("expired")); !os.IsNotExist(err) {
		t.Error("expired session file not removed on Get")
	}
}

func TestFileStorePathTraversal(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewFileStore(filepath.Join(dir, "sessions"))
	if p := store.sessionPath("../escape"); filepath.Dir(p) != store.Path() {
		t.Errorf("sessionPath escaped base dir: %s", p)
	}
}

func TestMustGet(t *testing.T) {
	store := NewMemoryStore(time.Hour, 10)
	if _, err := MustGet(context.Background(), store, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MustGet(missing) = %v, want %v", err, ErrNotFound)
	}
}

func TestNewAndTouch(t *testing.T) {
	a := New("x", plan.ProviderNeutral, time.Hour)
	b := New("x", plan.ProviderNeutral, time.Hour)
	if a.ID == b.ID || len(a.ID) != 36 {
		t.Errorf("ids = %q, %q; want distinct uuids", a.ID, b.ID)
	}
	if a.IsExpired() {
		t.Error("new session expired")
	}
	created := a.CreatedAt
	time.Sleep(time.Millisecond)
	a.Touch(2 * time.Hour)
	if !a.UpdatedAt.After(created) || a.CreatedAt != created {
		t.Errorf("Touch() times = %v / %v", a.CreatedAt, a.UpdatedAt)
	}
	if d := a.ExpiresAt.Sub(a.UpdatedAt); d != 2*time.Hour {
		t.Errorf("expiry window = %v, want 2h", d)
	}
}

func TestLocks(t *testing.T) {
	locks := NewLocks()
	var (
		mu      sync.Mutex
		active  = map[string]int{}
		overlap bool
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("s%d", i%2)
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(id)
			defer unlock()

			mu.Lock()
			active[id]++
			if active[id] > 1 {
				overlap = true
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active[id]--
			mu.Unlock()
		}()
	}
	wg.Wait()
	if overlap {
		t.Error("two holders of the same session lock")
	}
	if locks.size() != 0 {
		t.Errorf("lock table size = %d, want 0", locks.size())
	}
}

func TestLocksIndependentKeys(t *testing.T) {
	locks := NewLocks()
	unlockA := locks.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := locks.Lock("b")
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked by a")
	}
}
