package cart

import (
	"context"
	"errors"
	"testing"
)

var (
	productA = Item{ProductID: 1, Name: "Bleu Nuit", Price: 5999, Category: "hombre"}
	productB = Item{ProductID: 2, Name: "Fleur d'Oranger", Price: 2000, Category: "mujer"}
)

func newStore(t *testing.T) (*Store, *MemoryPersister) {
	t.Helper()
	p := NewMemoryPersister()
	return Open(context.Background(), p, Identity{ID: "u1"}), p
}

func TestCheckoutScenarioTotals(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	if err := s.Add(ctx, productA, 2); err != nil {
		t.Fatalf("add A: %v", err)
	}
	if err := s.Add(ctx, productB, 1); err != nil {
		t.Fatalf("add B: %v", err)
	}
	if got := s.Count(); got != 3 {
		t.Errorf("count = %d, want 3", got)
	}
	if got := s.Subtotal(); got != 13998 {
		t.Errorf("subtotal = %d, want 13998", got)
	}

	if !s.SetQuantity(ctx, LineKey(1, ""), 11) {
		t.Fatal("SetQuantity reported missing line")
	}
	l, _ := s.Line("1")
	if l.Quantity != 10 {
		t.Errorf("quantity = %d, want 10", l.Quantity)
	}
	if got := s.Subtotal(); got != 61990 {
		t.Errorf("subtotal = %d, want 61990", got)
	}
}

func TestAddRejectsExplicitOutOfRange(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	for _, qty := range []int{0, -1, 11, 100} {
		if err := s.Add(ctx, productA, qty); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("Add(qty=%d) err = %v, want ErrInvalidQuantity", qty, err)
		}
	}
	if s.Len() != 0 {
		t.Fatalf("rejected adds must not create lines, got %d", s.Len())
	}
}

func TestAddRejectsInvalidItem(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	cases := []Item{
		{ProductID: 0, Price: 100},
		{ProductID: 3, Price: "abc"},
		{ProductID: 3, Price: -5},
	}
	for _, it := range cases {
		if err := s.Add(ctx, it, 1); !errors.Is(err, ErrInvalidItem) {
			t.Errorf("Add(%+v) err = %v, want ErrInvalidItem", it, err)
		}
	}
}

func TestQuantityAlwaysInRange(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	key := LineKey(productA.ProductID, "")

	ops := []struct {
		add bool
		qty int
	}{
		{true, 5}, {true, 10}, {false, 0}, {true, 7}, {false, -4}, {false, 42}, {true, 1}, {false, 3}, {true, 9},
	}
	for i, op := range ops {
		if op.add {
			_ = s.Add(ctx, productA, op.qty)
		} else {
			s.SetQuantity(ctx, key, op.qty)
		}
		l, ok := s.Line(key)
		if !ok {
			t.Fatalf("step %d: line missing", i)
		}
		if l.Quantity < 1 || l.Quantity > 10 {
			t.Fatalf("step %d: quantity %d out of [1,10]", i, l.Quantity)
		}
	}
}

func TestVariantsAreDistinctLines(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	small := productA
	small.Variant = "50ml"
	big := productA
	big.Variant = "100ml"
	def := productA
	def.Variant = "default"

	_ = s.Add(ctx, small, 1)
	_ = s.Add(ctx, big, 1)
	_ = s.Add(ctx, def, 1)
	_ = s.Add(ctx, productA, 1)

	if s.Len() != 3 {
		t.Fatalf("lines = %d, want 3", s.Len())
	}
	if l, _ := s.Line("1"); l.Quantity != 2 {
		t.Errorf("default variant quantity = %d, want 2", l.Quantity)
	}
	if _, ok := s.Line("1:50ml"); !ok {
		t.Error("missing 1:50ml line")
	}
}

func TestAddRemoveRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	_ = s.Add(ctx, productA, 3)

	before := s.Items()
	_ = s.Add(ctx, productB, 2)
	s.Remove(ctx, LineKey(productB.ProductID, ""))
	after := s.Items()

	if len(before) != len(after) {
		t.Fatalf("len before %d after %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("line %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, p := newStore(t)
	_ = s.Add(ctx, productA, 2)
	_ = s.Add(ctx, productB, 1)

	s.Clear(ctx)
	s.Clear(ctx)
	if s.Len() != 0 || s.Count() != 0 || s.Subtotal() != 0 {
		t.Fatalf("cart not empty after clear: %+v", s.Items())
	}
	data, _ := p.Load(ctx, Identity{ID: "u1"})
	if string(data) != "[]" {
		t.Errorf("persisted = %s, want []", data)
	}
	s.Remove(ctx, "missing")
}

func TestSetQuantityMissingKeyIsNoop(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	_ = s.Add(ctx, productA, 1)
	if s.SetQuantity(ctx, "99", 4) {
		t.Error("SetQuantity on missing key reported success")
	}
	if s.Len() != 1 {
		t.Errorf("lines = %d, want 1", s.Len())
	}
}

func TestSubtotalMatchesPersistedCopy(t *testing.T) {
	ctx := context.Background()
	s, p := newStore(t)
	_ = s.Add(ctx, productA, 4)
	_ = s.Add(ctx, Item{ProductID: 7, Name: "Oud", Price: "79,99", Variant: "edp"}, 3)
	_ = s.Add(ctx, productB, 1)
	s.SetQuantity(ctx, "7:edp", 9)

	data, err := p.Load(ctx, Identity{ID: "u1"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	reloaded := Decode(data)
	if got, want := subtotal(reloaded), s.Subtotal(); got != want {
		t.Errorf("persisted subtotal %d, live %d", got, want)
	}
	if got, want := count(reloaded), s.Count(); got != want {
		t.Errorf("persisted count %d, live %d", got, want)
	}
}

type failingPersister struct {
	*MemoryPersister
	saves int
}

func (f *failingPersister) Save(context.Context, Identity, []byte) error {
	f.saves++
	return errors.New("quota exceeded")
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	p := &failingPersister{MemoryPersister: NewMemoryPersister()}
	s := Open(ctx, p, Identity{ID: "g1", Guest: true})

	if err := s.Add(ctx, productA, 2); err != nil {
		t.Fatalf("add must not fail on persistence error: %v", err)
	}
	if p.saves != 1 {
		t.Errorf("saves = %d, want 1", p.saves)
	}
	if s.Count() != 2 {
		t.Errorf("count = %d, want 2", s.Count())
	}
}

type brokenLoad struct{ *MemoryPersister }

func (brokenLoad) Load(context.Context, Identity) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func TestReloadFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	p := brokenLoad{NewMemoryPersister()}
	s := Open(ctx, p, Identity{ID: "u1"})
	_ = s.Add(ctx, productA, 1)
	s.Reload(ctx)
	if s.Len() != 1 {
		t.Fatalf("lines = %d, want 1", s.Len())
	}
}

func TestIdentitiesNeverMerge(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(NewMemoryPersister())
	guest := Identity{ID: "g1", Guest: true}
	user := Identity{ID: "u1"}

	_ = sessions.Get(ctx, user).Add(ctx, productB, 1)
	if n := sessions.Get(ctx, guest).Len(); n != 0 {
		t.Fatalf("guest cart should start empty, got %d lines", n)
	}
	_ = sessions.Get(ctx, guest).Add(ctx, productA, 2)

	// connexion : le panier utilisateur est relu tel quel
	items := sessions.Get(ctx, user).Items()
	if len(items) != 1 || items[0].ProductID != productB.ProductID {
		t.Fatalf("user cart = %+v, want only product B", items)
	}
	// déconnexion : le panier invité est intact
	if c := sessions.Get(ctx, guest).Count(); c != 2 {
		t.Errorf("guest count = %d, want 2", c)
	}
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	_ = s.Add(ctx, productA, 2)

	snap := s.Snapshot()
	_ = s.Add(ctx, productB, 1)

	if len(snap.Items) != 1 || snap.Subtotal != 11998 || snap.Count != 2 {
		t.Fatalf("snapshot changed after mutation: %+v", snap)
	}
	if snap.Display != "$119.98" {
		t.Errorf("display = %q", snap.Display)
	}
	if snap.Owner != "user:u1" {
		t.Errorf("owner = %q", snap.Owner)
	}
}
