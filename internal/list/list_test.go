package list

import "testing"

func TestPushBackPopFrontFIFO(t *testing.T) {
	t.Parallel()

	l := New[int]()

	l.PushBack(1)
	l.PushBack(2)
	l.PushBack(3)

	if l.Len() != 3 {
		t.Fatalf("len: want 3, got %d", l.Len())
	}

	for _, want := range []int{1, 2, 3} {
		got, ok := l.PopFront()
		if !ok {
			t.Fatalf("want a value, got none")
		}

		if got != want {
			t.Errorf("want %d, got %d", want, got)
		}
	}

	if !l.Empty() {
		t.Errorf("want empty list")
	}

	if _, ok := l.PopFront(); ok {
		t.Errorf("want no value from empty list")
	}
}

func TestRemoveMiddle(t *testing.T) {
	t.Parallel()

	l := New[string]()

	ha := l.PushBack("a")
	hb := l.PushBack("b")
	hc := l.PushBack("c")

	v, ok := l.Remove(hb)
	if !ok || v != "b" {
		t.Fatalf("remove: want b, got %q, %v", v, ok)
	}

	if l.Len() != 2 {
		t.Fatalf("len: want 2, got %d", l.Len())
	}

	var order []string
	l.Each(func(_ Handle, v string) bool {
		order = append(order, v)
		return true
	})

	if len(order) != 2 || order[0] != "a" || order[1] != "c" {
		t.Errorf("order: want [a c], got %v", order)
	}

	// Handles are reused after removal but remain valid for the nodes
	// still present.
	if _, ok := l.At(ha); !ok {
		t.Errorf("handle for a should still resolve")
	}

	if _, ok := l.At(hc); !ok {
		t.Errorf("handle for c should still resolve")
	}
}

func TestRemoveStaleHandleIsNoop(t *testing.T) {
	t.Parallel()

	l := New[int]()
	h := l.PushBack(42)

	if _, ok := l.Remove(h); !ok {
		t.Fatal("first remove should succeed")
	}

	if _, ok := l.Remove(h); ok {
		t.Error("second remove of the same handle should fail")
	}
}

func TestNoneHandleNeverResolves(t *testing.T) {
	t.Parallel()

	l := New[int]()
	l.PushBack(1)

	if _, ok := l.At(None); ok {
		t.Error("None handle should never resolve")
	}
}
