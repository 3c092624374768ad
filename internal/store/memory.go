package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Memory is an in-process Store with the same semantics as the Mongo
// Manager. The mutex serializes category creation, so the check-then-insert
// race the real store closes with its unique index cannot happen here.
type Memory struct {
	mu         sync.Mutex
	animals    []Animal
	categories []Category
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) ListAnimals(_ context.Context) ([]Animal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Animal, len(m.animals))
	copy(out, m.animals)
	return out, nil
}

func (m *Memory) CreateAnimal(_ context.Context, name string, image ImageRef) (string, error) {
	if !validAnimal(name, image) {
		return "", fmt.Errorf("%w: animal needs name and image", ErrValidation)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	a := Animal{
		ID:        bson.NewObjectID(),
		Name:      name,
		Image:     image,
		CreatedAt: time.Now().UTC(),
	}
	m.animals = append(m.animals, a)
	return a.ID.Hex(), nil
}

func (m *Memory) ListCategories(_ context.Context) ([]Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Category, len(m.categories))
	copy(out, m.categories)
	return out, nil
}

func (m *Memory) CreateCategory(_ context.Context, name string) (string, error) {
	if !validCategoryName(name) {
		return "", fmt.Errorf("%w: category needs a name", ErrValidation)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.categories {
		if c.Name == name {
			return "", fmt.Errorf("%w: category %q", ErrDuplicate, name)
		}
	}

	c := Category{
		ID:        bson.NewObjectID(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	m.categories = append(m.categories, c)
	return c.ID.Hex(), nil
}
