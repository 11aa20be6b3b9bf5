package models

import (
	"testing"
)

func TestParseAccounts(t *testing.T) {
	t.Run("even list", func(t *testing.T) {
		got := ParseAccounts([]string{"u1", "p1", "u2", "p2"})
		if len(got) != 2 {
			t.Fatalf("expected 2 accounts, got %d", len(got))
		}
		if got[1].Index != 1 || got[1].Username != "u2" || got[1].Password != "p2" {
			t.Errorf("unexpected account %+v", got[1])
		}
		if !got[0].Complete() || !got[1].Complete() {
			t.Error("expected complete accounts")
		}
	})

	t.Run("odd list leaves trailing username incomplete", func(t *testing.T) {
		got := ParseAccounts([]string{"u1", "p1", "u2"})
		if len(got) != 2 {
			t.Fatalf("expected 2 accounts, got %d", len(got))
		}
		if got[1].Complete() {
			t.Error("trailing account should be incomplete")
		}
	})

	t.Run("empty entries are incomplete", func(t *testing.T) {
		got := ParseAccounts([]string{"", "p1", "u2", ""})
		for _, acc := range got {
			if acc.Complete() {
				t.Errorf("account %d should be incomplete", acc.Index)
			}
		}
	})

	t.Run("empty list", func(t *testing.T) {
		if got := ParseAccounts(nil); len(got) != 0 {
			t.Errorf("expected no accounts, got %d", len(got))
		}
	})
}

func TestAccountBatching(t *testing.T) {
	tc := []struct {
		index  int
		batch  int
		leader bool
		closes bool
	}{
		{0, 0, true, false},
		{1, 0, false, false},
		{19, 0, false, true},
		{20, 1, true, false},
		{39, 1, false, true},
		{45, 2, false, false},
	}
	for _, tt := range tc {
		acc := Account{Index: tt.index}
		if acc.Batch() != tt.batch || acc.IsLeader() != tt.leader || acc.ClosesBatch() != tt.closes {
			t.Errorf("index %d: got batch=%d leader=%v closes=%v", tt.index, acc.Batch(), acc.IsLeader(), acc.ClosesBatch())
		}
	}
}

func TestAccountDisplay(t *testing.T) {
	acc := Account{Username: "U1234567X"}
	if got := acc.Display(); got != "U12****7X" {
		t.Errorf("Display() = %q", got)
	}
}

func TestFamilyIDFor(t *testing.T) {
	ids := []string{"a", "b"}
	if got := FamilyIDFor(ids, 1); got != "b" {
		t.Errorf("expected b, got %q", got)
	}
	if got := FamilyIDFor(ids, 2); got != "" {
		t.Errorf("expected empty id past the end, got %q", got)
	}
	if got := FamilyIDFor(nil, 0); got != "" {
		t.Errorf("expected empty id for nil list, got %q", got)
	}
}

func TestAggregate(t *testing.T) {
	tc := []struct {
		name     string
		outcomes []SignInOutcome
		want     int64
	}{
		{
			name:     "one bonus among signed",
			outcomes: []SignInOutcome{{AlreadySigned: true}, {AlreadySigned: true}, {Bonus: 50}},
			want:     50,
		},
		{
			name:     "all already signed",
			outcomes: []SignInOutcome{{AlreadySigned: true}, {AlreadySigned: true}},
			want:     0,
		},
		{
			name:     "signed attempts ignore reported bonus",
			outcomes: []SignInOutcome{{AlreadySigned: true, Bonus: 99}, {Bonus: 10}, {Bonus: 20}},
			want:     30,
		},
		{name: "no attempts", outcomes: nil, want: 0},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Aggregate(tt.outcomes); got != tt.want {
				t.Errorf("Aggregate() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSelectFamily(t *testing.T) {
	families := []Family{{ID: "1"}, {ID: "2"}}

	if f, ok := SelectFamily(families, "2"); !ok || f.ID != "2" {
		t.Errorf("expected match on id 2, got %+v", f)
	}
	if f, ok := SelectFamily(families, "missing"); !ok || f.ID != "1" {
		t.Errorf("expected fallback to first entry, got %+v", f)
	}
	if _, ok := SelectFamily(nil, "1"); ok {
		t.Error("expected no family for empty list")
	}
}

func TestCapacitySnapshotSub(t *testing.T) {
	base := CapacitySnapshot{PersonalTotal: 100, FamilyTotal: 1000}
	final := CapacitySnapshot{PersonalTotal: 150, FamilyTotal: 900}
	got := final.Sub(base)
	if got.PersonalTotal != 50 || got.FamilyTotal != -100 {
		t.Errorf("unexpected delta %+v", got)
	}
}
