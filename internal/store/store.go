package store

import "context"

// Store is the data-access surface the HTTP layer depends on. The Mongo
// Manager is the production implementation; Memory backs the tests.
type Store interface {
	ListAnimals(ctx context.Context) ([]Animal, error)
	CreateAnimal(ctx context.Context, name string, image ImageRef) (string, error)
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, name string) (string, error)
}
