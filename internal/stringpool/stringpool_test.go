package stringpool

import "testing"

func TestPoolDeduplicates(t *testing.T) {
	p := NewPool()

	first := p.Pool("alpha")
	second := p.Pool("alpha")
	if first != second {
		t.Errorf("pooling the same content twice returned handles %d and %d", first, second)
	}

	other := p.Pool("beta")
	if other == first {
		t.Error("distinct contents share a handle")
	}

	if got, ok := p.Get(first); !ok || got != "alpha" {
		t.Errorf("Get(%d) = %q, %v; want alpha, true", first, got, ok)
	}
}

func TestPoolFastAllowsDuplicates(t *testing.T) {
	p := NewPool()

	first := p.PoolFast("alpha")
	second := p.PoolFast("alpha")
	if first == second {
		t.Error("PoolFast deduplicated; it must always allocate")
	}

	// Pool resolves to the first pooled occurrence.
	if got := p.Pool("alpha"); got != first {
		t.Errorf("Pool resolved duplicate content to handle %d, want %d", got, first)
	}
}

func TestPoolFastDestructiveTakesOwnership(t *testing.T) {
	p := NewPool()

	s := "gamma"
	h := p.PoolFastDestructive(&s)
	if s != "" {
		t.Errorf("caller's string is %q after destructive pooling, want empty", s)
	}
	if got, _ := p.Get(h); got != "gamma" {
		t.Errorf("pooled content is %q, want gamma", got)
	}
}

func TestPoolAtRejectsConflicts(t *testing.T) {
	p := NewPool()

	if err := p.PoolAt(42, "delta"); err != nil {
		t.Fatalf("assigning a fresh handle failed: %v", err)
	}
	if err := p.PoolAt(42, "delta"); err != nil {
		t.Errorf("re-assigning identical content failed: %v", err)
	}
	if err := p.PoolAt(42, "other"); err == nil {
		t.Error("replacing pooled content with a different value must fail")
	}

	// Subsequent allocations must not collide with the assigned handle.
	h := p.PoolFast("next")
	if h == 42 {
		t.Error("allocation counter was not advanced past an assigned handle")
	}
}

func TestGarbageCollect(t *testing.T) {
	p := NewPool()

	keep := p.Pool("keep")
	drop := p.Pool("drop")

	p.GarbageCollect(map[Handle]struct{}{keep: {}})

	if _, ok := p.Get(keep); !ok {
		t.Error("live handle was collected")
	}
	if _, ok := p.Get(drop); ok {
		t.Error("dead handle survived collection")
	}

	// Handles stay stable: re-pooling dropped content allocates fresh.
	if h := p.Pool("drop"); h == drop {
		t.Error("collected handle was reissued for identical content")
	}
}
