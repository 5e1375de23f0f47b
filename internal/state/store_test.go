package state

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrack/internal/model"
)

func record(name, price string) model.Record {
	return model.Record{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		Currency:      model.USD,
		Period:        model.Monthly,
		FirstBillDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestAddAssignsIncreasingIDs(t *testing.T) {
	s := New()
	a, err := s.Add(record("A", "1"))
	if err != nil {
		t.Fatalf("Add A: %v", err)
	}
	b, err := s.Add(record("B", "2"))
	if err != nil {
		t.Fatalf("Add B: %v", err)
	}
	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("ids = %d, %d, want 1, 2", a.ID, b.ID)
	}
}

func TestAddRejectsInvalid(t *testing.T) {
	s := New()
	_, err := s.Add(record("", "1"))
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("Add err = %v, want validation error", err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}
	if s.NextID() != 1 {
		t.Fatalf("NextID = %d, want 1 (rejected add must not consume an id)", s.NextID())
	}
}

func TestAddRemoveNeverReusesIDs(t *testing.T) {
	s := New()
	if _, err := s.Add(record("Keep", "5")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	before := s.Records()

	tmp, err := s.Add(record("Temp", "7"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !s.Remove(tmp.ID) {
		t.Fatal("Remove = false, want true")
	}

	after := s.Records()
	if len(after) != len(before) || !after[0].Equal(before[0]) {
		t.Fatalf("records after add+remove = %v, want %v", after, before)
	}

	next, err := s.Add(record("Next", "3"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if next.ID == tmp.ID {
		t.Fatalf("id %d reused after removal", next.ID)
	}
}

func TestEdit(t *testing.T) {
	s := New()
	sub, _ := s.Add(record("A", "1"))

	got, err := s.Edit(sub.ID, record("A+", "4"))
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if got.ID != sub.ID || got.Name != "A+" {
		t.Fatalf("Edit = %+v, want id %d name A+", got, sub.ID)
	}

	if _, err := s.Edit(99, record("X", "1")); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Edit unknown err = %v, want ErrNotFound", err)
	}
	if _, err := s.Edit(sub.ID, record("A", "0")); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("Edit invalid err = %v, want validation error", err)
	}
	if cur, _ := s.Get(sub.ID); cur.Name != "A+" {
		t.Fatalf("after failed edits name = %s, want A+", cur.Name)
	}
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	s := New()
	_, _ = s.Add(record("A", "1"))
	if s.Remove(42) {
		t.Fatal("Remove(42) = true, want false")
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
}

func TestReplaceAll(t *testing.T) {
	s := New()
	old, _ := s.Add(record("Old", "1"))

	if err := s.ReplaceAll([]model.Record{record("X", "1"), record("Y", "2")}); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	list := s.List()
	if len(list) != 2 || list[0].Name != "X" || list[1].Name != "Y" {
		t.Fatalf("List = %v, want [X Y]", list)
	}
	for _, sub := range list {
		if sub.ID == old.ID {
			t.Fatalf("id %d reused by ReplaceAll", sub.ID)
		}
	}
	if list[0].ID == list[1].ID {
		t.Fatal("ReplaceAll assigned duplicate ids")
	}
}

func TestReplaceAllRejectsWholeBatch(t *testing.T) {
	s := New()
	_, _ = s.Add(record("Keep", "1"))

	err := s.ReplaceAll([]model.Record{record("Fine", "1"), record("Bad", "-1")})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("ReplaceAll err = %v, want validation error", err)
	}
	if list := s.List(); len(list) != 1 || list[0].Name != "Keep" {
		t.Fatalf("List = %v, want [Keep]", list)
	}
}

func TestRestoreResumesCounter(t *testing.T) {
	s := Restore([]model.Subscription{{ID: 7, Record: record("A", "1")}}, 3)
	sub, err := s.Add(record("B", "1"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if sub.ID != 8 {
		t.Fatalf("id = %d, want 8", sub.ID)
	}

	s = Restore(nil, 12)
	if s.NextID() != 12 {
		t.Fatalf("NextID = %d, want 12", s.NextID())
	}
}

func TestListIsACopy(t *testing.T) {
	s := New()
	_, _ = s.Add(record("A", "1"))
	list := s.List()
	list[0].Name = "mutated"
	if got, _ := s.Get(list[0].ID); got.Name != "A" {
		t.Fatalf("store mutated through List copy: %s", got.Name)
	}
}
