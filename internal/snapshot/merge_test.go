package snapshot

import (
	"reflect"
	"testing"
)

type record struct {
	ID   int
	Name string
}

type local struct {
	Editing bool
	Live    int
}

func recordKey(r record) int { return r.ID }

func ids(list []*Entity[record, local]) []int {
	return Keys(list, recordKey)
}

func TestMerge_DropsVanishedAndAppendsNew(t *testing.T) {
	current := Merge[int, record, local](nil, []record{{ID: 1}, {ID: 2}}, recordKey, nil)
	two := current[1]
	two.Local.Editing = true

	got := Merge(current, []record{{ID: 2, Name: "two"}, {ID: 3, Name: "three"}}, recordKey, nil)

	if want := []int{2, 3}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("ids = %v, want %v", ids(got), want)
	}
	if got[0] != two {
		t.Fatal("entity 2 was replaced, want the same pointer")
	}
	if !got[0].Local.Editing {
		t.Fatal("entity 2 lost its local state")
	}
	if got[0].Remote.Name != "two" {
		t.Fatalf("entity 2 remote = %#v, want refreshed name", got[0].Remote)
	}
	if got[1].Local != (local{}) {
		t.Fatalf("new entity 3 local = %#v, want zero value", got[1].Local)
	}
}

func TestMerge_IsIdempotentForRepeatedFresh(t *testing.T) {
	fresh := []record{{ID: 5, Name: "a"}, {ID: 6, Name: "b"}}
	first := Merge[int, record, local](nil, fresh, recordKey, nil)
	first[0].Local.Live = 42

	second := Merge(first, fresh, recordKey, nil)

	if len(second) != len(first) {
		t.Fatalf("len = %d, want %d", len(second), len(first))
	}
	for i := range first {
		if second[i] != first[i] {
			t.Fatalf("entity %d identity changed", i)
		}
		if second[i].Remote != fresh[i] {
			t.Fatalf("entity %d remote = %#v, want %#v", i, second[i].Remote, fresh[i])
		}
	}
	if second[0].Local.Live != 42 {
		t.Fatalf("local Live = %d, want 42", second[0].Local.Live)
	}
}

func TestMerge_FollowsFreshOrder(t *testing.T) {
	current := Merge[int, record, local](nil, []record{{ID: 1}, {ID: 2}, {ID: 3}}, recordKey, nil)
	got := Merge(current, []record{{ID: 3}, {ID: 1}, {ID: 2}}, recordKey, nil)
	if want := []int{3, 1, 2}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("ids = %v, want %v", ids(got), want)
	}
}

func TestMerge_SeedsNewEntitiesOnly(t *testing.T) {
	seeded := 0
	seed := func(r record) local {
		seeded++
		return local{Live: r.ID * 10}
	}
	current := Merge[int, record, local](nil, []record{{ID: 1}}, recordKey, seed)
	current[0].Local.Live = 7

	got := Merge(current, []record{{ID: 1}, {ID: 4}}, recordKey, seed)
	if seeded != 2 {
		t.Fatalf("seed called %d times, want 2", seeded)
	}
	if got[0].Local.Live != 7 {
		t.Fatalf("existing local overwritten: %d", got[0].Local.Live)
	}
	if got[1].Local.Live != 40 {
		t.Fatalf("new entity seeded with %d, want 40", got[1].Local.Live)
	}
}

func TestMerge_DuplicateKeysKeepFirst(t *testing.T) {
	got := Merge[int, record, local](nil, []record{{ID: 1, Name: "first"}, {ID: 1, Name: "second"}}, recordKey, nil)
	if len(got) != 1 || got[0].Remote.Name != "first" {
		t.Fatalf("got %#v, want one entity named first", got)
	}
}

func TestMerge_EmptyFreshClearsList(t *testing.T) {
	current := Merge[int, record, local](nil, []record{{ID: 1}}, recordKey, nil)
	got := Merge(current, nil, recordKey, nil)
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestFind(t *testing.T) {
	list := Merge[int, record, local](nil, []record{{ID: 1}, {ID: 2}}, recordKey, nil)
	if e := Find(list, recordKey, 2); e == nil || e != list[1] {
		t.Fatalf("Find(2) = %v", e)
	}
	if e := Find(list, recordKey, 9); e != nil {
		t.Fatalf("Find(9) = %v, want nil", e)
	}
}
