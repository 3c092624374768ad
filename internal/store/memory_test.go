package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryCreateAnimal(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	img := ImageRef{Path: "/uploads/1700000000000-ab12cd34.png", ContentType: "image/png"}
	id, err := m.CreateAnimal(ctx, "Lion", img)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty id")
	}

	animals, err := m.ListAnimals(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(animals) != 1 {
		t.Fatalf("expected 1 animal, got %d", len(animals))
	}
	got := animals[0]
	if got.Name != "Lion" || got.Image != img {
		t.Errorf("stored record does not match input: %+v", got)
	}
	if got.ID.Hex() != id {
		t.Errorf("listed id %s does not match returned id %s", got.ID.Hex(), id)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected a server-assigned creation timestamp")
	}
}

func TestMemoryCreateAnimalValidation(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.CreateAnimal(ctx, "", ImageRef{Path: "/uploads/x.png", ContentType: "image/png"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	animals, _ := m.ListAnimals(ctx)
	if len(animals) != 0 {
		t.Errorf("expected nothing persisted, got %d records", len(animals))
	}
}

func TestMemoryCategoryUniqueness(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.CreateCategory(ctx, "Mammal"); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := m.CreateCategory(ctx, "Mammal")
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Uniqueness is case-sensitive exact match.
	if _, err := m.CreateCategory(ctx, "mammal"); err != nil {
		t.Fatalf("differently-cased name should be accepted: %v", err)
	}

	cats, _ := m.ListCategories(ctx)
	if len(cats) != 2 {
		t.Errorf("expected 2 categories, got %d", len(cats))
	}
}

func TestMemoryListEmpty(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	animals, err := m.ListAnimals(ctx)
	if err != nil || len(animals) != 0 {
		t.Errorf("empty store should list zero animals without error, got %d, %v", len(animals), err)
	}
	cats, err := m.ListCategories(ctx)
	if err != nil || len(cats) != 0 {
		t.Errorf("empty store should list zero categories without error, got %d, %v", len(cats), err)
	}
}
