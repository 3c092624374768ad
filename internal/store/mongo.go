package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"golang.org/x/sync/singleflight"
)

const (
	animalsCollection    = "animals"
	categoriesCollection = "categories"

	connectTimeout = 10 * time.Second
	pingTimeout    = 2 * time.Second
	opTimeout      = 5 * time.Second
)

var connectAttempts = promauto.NewCounter(prometheus.CounterOpts{
	Name: "registry_store_connect_attempts_total",
	Help: "Total number of MongoDB connection attempts",
})

// conn is one established session against the document store. The
// indirection keeps the Manager's caching logic testable without a live
// server.
type conn interface {
	Ping(ctx context.Context) error
	Database() *mongo.Database
	Disconnect(ctx context.Context) error
}

type mongoConn struct {
	client *mongo.Client
	db     *mongo.Database
}

func (c *mongoConn) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *mongoConn) Database() *mongo.Database { return c.db }

func (c *mongoConn) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Manager owns the process-wide connection to the document store. The
// first acquire dials; later acquires reuse the cached handle after a
// cheap ping. A handle that fails its ping is replaced, and concurrent
// callers converge on a single dial through the singleflight group.
type Manager struct {
	dial func(ctx context.Context) (conn, error)

	mu  sync.RWMutex
	cur conn

	connecting singleflight.Group
	attempts   atomic.Int64
}

// NewManager builds a Manager for the given connection string and logical
// database. No network traffic happens until the first operation.
func NewManager(uri, dbName string) *Manager {
	return &Manager{dial: mongoDialer(uri, dbName)}
}

func mongoDialer(uri, dbName string) func(ctx context.Context) (conn, error) {
	return func(ctx context.Context) (conn, error) {
		serverAPI := options.ServerAPI(options.ServerAPIVersion1).
			SetStrict(true).
			SetDeprecationErrors(true)

		client, err := mongo.Connect(options.Client().
			ApplyURI(uri).
			SetServerAPIOptions(serverAPI).
			SetConnectTimeout(connectTimeout))
		if err != nil {
			return nil, err
		}

		// Constructing the client does not prove connectivity.
		pctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		if err := client.Ping(pctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}

		db := client.Database(dbName)
		if err := ensureIndexes(pctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}

		return &mongoConn{client: client, db: db}, nil
	}
}

// ensureIndexes creates the unique index on categories.name. The index is
// the authoritative duplicate guard; the pre-insert lookup in
// CreateCategory only exists for the friendlier error message.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(categoriesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create category name index: %w", err)
	}
	return nil
}

// acquire returns a database handle that passed a liveness probe. The
// cached handle is trusted only after a short ping; anything else goes
// through a single shared reconnect.
func (m *Manager) acquire(ctx context.Context) (*mongo.Database, error) {
	m.mu.RLock()
	cur := m.cur
	m.mu.RUnlock()

	if cur != nil {
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := cur.Ping(pctx)
		cancel()
		if err == nil {
			return cur.Database(), nil
		}
	}

	v, err, _ := m.connecting.Do("connect", func() (any, error) {
		// Another flight may have replaced the handle while this caller
		// waited on the read lock.
		m.mu.RLock()
		replaced := m.cur
		m.mu.RUnlock()
		if replaced != nil && replaced != cur {
			pctx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := replaced.Ping(pctx)
			cancel()
			if err == nil {
				return replaced, nil
			}
		}

		m.attempts.Add(1)
		connectAttempts.Inc()

		// The dial must not die with the first caller's request.
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), connectTimeout)
		defer cancel()

		next, err := m.dial(dctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConnection, err)
		}

		m.mu.Lock()
		old := m.cur
		m.cur = next
		m.mu.Unlock()

		if old != nil {
			// The old handle already failed its ping; close it out of band.
			go func() {
				dctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
				defer cancel()
				_ = old.Disconnect(dctx)
			}()
		}

		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(conn).Database(), nil
}

// Ping reports whether the store is reachable, connecting first if needed.
func (m *Manager) Ping(ctx context.Context) error {
	_, err := m.acquire(ctx)
	return err
}

// ConnectAttempts returns how many dials this Manager has performed.
func (m *Manager) ConnectAttempts() int64 {
	return m.attempts.Load()
}

// Close tears down the cached connection, if any.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	cur := m.cur
	m.cur = nil
	m.mu.Unlock()
	if cur == nil {
		return nil
	}
	return cur.Disconnect(ctx)
}

// Collection accessors. Re-derived per operation on purpose: the database
// handle may have been replaced by a reconnect since the last call.
func animals(db *mongo.Database) *mongo.Collection {
	return db.Collection(animalsCollection)
}

func categories(db *mongo.Database) *mongo.Collection {
	return db.Collection(categoriesCollection)
}

// ListAnimals returns every animal document in store order, fully
// materialized.
func (m *Manager) ListAnimals(ctx context.Context) ([]Animal, error) {
	db, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}

	octx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cur, err := animals(db).Find(octx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("%w: find animals: %v", ErrFetch, err)
	}
	out := []Animal{}
	if err := cur.All(octx, &out); err != nil {
		return nil, fmt.Errorf("%w: decode animals: %v", ErrFetch, err)
	}
	return out, nil
}

// CreateAnimal validates the inputs, then inserts a new animal document
// with a server-assigned creation timestamp. Returns the new id as hex.
func (m *Manager) CreateAnimal(ctx context.Context, name string, image ImageRef) (string, error) {
	if !validAnimal(name, image) {
		return "", fmt.Errorf("%w: animal needs name and image", ErrValidation)
	}

	db, err := m.acquire(ctx)
	if err != nil {
		return "", err
	}

	octx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := animals(db).InsertOne(octx, Animal{
		Name:      name,
		Image:     image,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: insert animal: %v", ErrInsert, err)
	}
	return objectIDHex(res.InsertedID)
}

// ListCategories returns every category document in store order.
func (m *Manager) ListCategories(ctx context.Context) ([]Category, error) {
	db, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}

	octx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cur, err := categories(db).Find(octx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("%w: find categories: %v", ErrFetch, err)
	}
	out := []Category{}
	if err := cur.All(octx, &out); err != nil {
		return nil, fmt.Errorf("%w: decode categories: %v", ErrFetch, err)
	}
	return out, nil
}

// CreateCategory inserts a category if the name is not already taken.
// The lookup is a fast-path check only; two racing creates are settled by
// the unique index, whose duplicate-key error also maps to ErrDuplicate.
func (m *Manager) CreateCategory(ctx context.Context, name string) (string, error) {
	if !validCategoryName(name) {
		return "", fmt.Errorf("%w: category needs a name", ErrValidation)
	}

	db, err := m.acquire(ctx)
	if err != nil {
		return "", err
	}

	octx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err = categories(db).FindOne(octx, bson.D{{Key: "name", Value: name}}).Err()
	switch {
	case err == nil:
		return "", fmt.Errorf("%w: category %q", ErrDuplicate, name)
	case !errors.Is(err, mongo.ErrNoDocuments):
		return "", fmt.Errorf("%w: lookup category: %v", ErrInsert, err)
	}

	res, err := categories(db).InsertOne(octx, Category{
		Name:      name,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%w: category %q", ErrDuplicate, name)
		}
		return "", fmt.Errorf("%w: insert category: %v", ErrInsert, err)
	}
	return objectIDHex(res.InsertedID)
}

func objectIDHex(id any) (string, error) {
	oid, ok := id.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("%w: unexpected inserted id type %T", ErrInsert, id)
	}
	return oid.Hex(), nil
}
