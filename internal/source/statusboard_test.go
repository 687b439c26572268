package source

import (
	"errors"
	"testing"
)

func TestStatusBoardMarks(t *testing.T) {
	b := NewStatusBoard("coingecko", "coinmarketcap")

	st, ok := b.Get("coingecko")
	if !ok {
		t.Fatalf("expected coingecko entry")
	}
	if st.Active || st.LastUpdate != nil || st.Error != nil {
		t.Fatalf("expected inactive zero status, got %+v", st)
	}

	b.MarkSuccess("coingecko")
	st, _ = b.Get("coingecko")
	if !st.Active || st.LastUpdate == nil || st.Error != nil {
		t.Fatalf("after success: %+v", st)
	}

	b.MarkFailure("coingecko", errors.New("boom"))
	st, _ = b.Get("coingecko")
	if st.Active || st.Error == nil || *st.Error != "boom" {
		t.Fatalf("after failure: %+v", st)
	}

	// Failure on one source leaves the other untouched.
	other, _ := b.Get("coinmarketcap")
	if other.Active || other.Error != nil {
		t.Fatalf("unrelated source mutated: %+v", other)
	}
}

func TestStatusBoardOnChange(t *testing.T) {
	b := NewStatusBoard("social")

	var gotName string
	var gotStatus Status
	b.OnChange(func(name string, st Status) {
		gotName = name
		gotStatus = st
	})

	b.MarkFailure("social", errors.New("rate limited"))
	if gotName != "social" {
		t.Fatalf("listener name = %q", gotName)
	}
	if gotStatus.Active || gotStatus.Error == nil {
		t.Fatalf("listener status = %+v", gotStatus)
	}
}

func TestStatusBoardSnapshotIsCopy(t *testing.T) {
	b := NewStatusBoard("a", "b")
	b.MarkSuccess("a")

	snap := b.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot size = %d", len(snap))
	}
	snap["a"] = Status{Active: false}

	st, _ := b.Get("a")
	if !st.Active {
		t.Fatalf("snapshot mutation leaked into board")
	}
}
