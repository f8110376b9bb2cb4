package repositories

import (
	"context"
	"fmt"
	"log"

	"healthtracker/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Options selects and configures a storage backend.
type Options struct {
	Driver        string
	DSN           string // GORM drivers: connection string or file path
	LogLevel      logger.LogLevel
	MongoURI      string
	MongoDatabase string
}

// Store bundles the repositories of one backend with its teardown.
type Store struct {
	Users  UserRepository
	Tracks TrackRepository

	closeFn func(ctx context.Context) error
}

// Close releases the underlying connections.
func (s *Store) Close(ctx context.Context) error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn(ctx)
}

// Open connects to the backend named in opts and prepares its schema or indexes.
func Open(ctx context.Context, opts Options) (*Store, error) {
	switch opts.Driver {
	case DriverPostgres, DriverSQLite:
		db, err := OpenGORM(opts.Driver, opts.DSN, opts.LogLevel)
		if err != nil {
			return nil, err
		}
		return NewGORMStore(db)
	case DriverMongo:
		return OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}

// OpenGORM opens a GORM connection for the postgres or sqlite driver and
// migrates the schema. Unique violations are translated to gorm.ErrDuplicatedKey.
func OpenGORM(driver, dsn string, level logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown gorm driver %q", driver)
	}
	if level == 0 {
		level = logger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Printf("Connected to %s database", driver)
	return db, nil
}

// Migrate creates or updates the users and tracks tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Track{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// NewGORMStore wraps an open GORM connection.
func NewGORMStore(db *gorm.DB) (*Store, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return &Store{
		Users:   NewGORMUserRepository(db),
		Tracks:  NewGORMTrackRepository(db),
		closeFn: func(context.Context) error { return sqlDB.Close() },
	}, nil
}

// OpenMongo connects to MongoDB and ensures the unique indexes exist.
func OpenMongo(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	users := NewMongoUserRepository(db.Collection("users"))
	tracks := NewMongoTrackRepository(db.Collection("tracks"))
	if err := users.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	if err := tracks.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log.Printf("Connected to MongoDB database %s", database)

	return &Store{
		Users:   users,
		Tracks:  tracks,
		closeFn: client.Disconnect,
	}, nil
}

// NewMemoryStore returns a store backed by the in-memory repositories.
func NewMemoryStore() *Store {
	return &Store{
		Users:  NewMockUserRepository(),
		Tracks: NewMockTrackRepository(),
	}
}
