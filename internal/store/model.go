package store

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ImageRef points at an image persisted in the asset store.
type ImageRef struct {
	Path        string `bson:"path" json:"path"`
	ContentType string `bson:"contentType" json:"contentType"`
}

// Animal is a registered animal with its uploaded image.
type Animal struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string        `bson:"name" json:"name"`
	Image     ImageRef      `bson:"image" json:"image"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}

// Category groups animals under a unique name.
type Category struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string        `bson:"name" json:"name"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}

func validAnimal(name string, image ImageRef) bool {
	return strings.TrimSpace(name) != "" &&
		strings.TrimSpace(image.Path) != "" &&
		strings.TrimSpace(image.ContentType) != ""
}

func validCategoryName(name string) bool {
	return strings.TrimSpace(name) != ""
}
