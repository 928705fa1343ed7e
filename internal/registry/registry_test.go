package registry

import (
	"reflect"
	"testing"
)

func TestPushFront_OrdersHeadFirst(t *testing.T) {
	l := New[string]()
	l.PushFront("a")
	l.PushFront("b")
	l.PushFront("c")

	if got, want := l.Values(), []string{"c", "b", "a"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Values() = %v, want %v", got, want)
	}
	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}
	if l.Front().Value != "c" || l.Back().Value != "a" {
		t.Fatalf("front/back = %q/%q, want c/a", l.Front().Value, l.Back().Value)
	}
}

func TestRemove_NotFound(t *testing.T) {
	l := New[int]()
	l.PushFront(1)

	if l.Remove(2) {
		t.Fatalf("Remove(2) = true for non-member")
	}
	if l.Len() != 1 {
		t.Fatalf("Len() = %d after failed remove, want 1", l.Len())
	}

	var empty List[int]
	if empty.Remove(1) {
		t.Fatalf("Remove on zero-value list = true")
	}
}

func TestRemove_FixesLinks(t *testing.T) {
	tests := []struct {
		name   string
		remove int
		want   []int
	}{
		{"head", 3, []int{2, 1}},
		{"middle", 2, []int{3, 1}},
		{"tail", 1, []int{3, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New[int]()
			for _, v := range []int{1, 2, 3} {
				l.PushFront(v)
			}
			if !l.Remove(tt.remove) {
				t.Fatalf("Remove(%d) = false", tt.remove)
			}
			if got := l.Values(); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Values() = %v, want %v", got, tt.want)
			}

			// Walk backwards to make sure prev pointers agree.
			var back []int
			for e := l.Back(); e != nil; e = e.Prev() {
				back = append(back, e.Value)
			}
			if len(back) != 2 || back[0] != tt.want[1] || back[1] != tt.want[0] {
				t.Fatalf("reverse walk = %v, want reverse of %v", back, tt.want)
			}
		})
	}
}

func TestRoundTrip_AnyRemovalOrderEmptiesList(t *testing.T) {
	orders := [][]int{
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 3, 0, 4, 2},
	}

	for _, order := range orders {
		l := New[int]()
		for i := 0; i < 5; i++ {
			l.PushFront(i)
		}
		for _, v := range order {
			if !l.Remove(v) {
				t.Fatalf("order %v: Remove(%d) = false", order, v)
			}
		}
		if l.Len() != 0 || l.Front() != nil || l.Back() != nil {
			t.Fatalf("order %v: list not empty (len=%d)", order, l.Len())
		}
	}
}

func TestMoveToFront(t *testing.T) {
	l := New[string]()
	l.PushFront("a")
	l.PushFront("b")
	l.PushFront("c")

	if !l.MoveToFront("b") {
		t.Fatalf("MoveToFront(b) = false")
	}
	if got, want := l.Values(), []string{"b", "c", "a"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Values() = %v, want %v", got, want)
	}
	if l.MoveToFront("z") {
		t.Fatalf("MoveToFront(z) = true for non-member")
	}
	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}
}

func TestAfter_Wraps(t *testing.T) {
	l := New[string]()
	l.PushFront("a")
	l.PushFront("b")
	l.PushFront("c")

	tests := []struct {
		from string
		want string
	}{
		{"c", "b"},
		{"b", "a"},
		{"a", "c"},
	}
	for _, tt := range tests {
		got, ok := l.After(tt.from)
		if !ok || got != tt.want {
			t.Errorf("After(%q) = %q, %v; want %q, true", tt.from, got, ok, tt.want)
		}
	}
	if _, ok := l.After("missing"); ok {
		t.Errorf("After(missing) reported ok")
	}
}

func TestAll_StopsEarly(t *testing.T) {
	l := New[int]()
	for i := 0; i < 4; i++ {
		l.PushFront(i)
	}
	var seen []int
	for v := range l.All() {
		seen = append(seen, v)
		if len(seen) == 2 {
			break
		}
	}
	if !reflect.DeepEqual(seen, []int{3, 2}) {
		t.Fatalf("seen = %v, want [3 2]", seen)
	}
}
