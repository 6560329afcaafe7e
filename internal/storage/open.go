package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"canvasdoc/internal/domain"
)

// Backends accepted by OpenProjectStore in addition to the SQL drivers.
const (
	BackendRedis = "redis"
	BackendMongo = "mongodb"
	BackendFile  = "file"
)

// Options selects and configures a project store backend.
type Options struct {
	Backend  string // sqlite (default), postgres, mysql, redis, mongodb, file
	DSN      string // SQL DSN or MongoDB URI
	Addr     string // Redis address
	Password string // Redis password
	RedisDB  int
	Database string // MongoDB database
	DataDir  string
	Logger   *zap.Logger
}

// Stores is the result of OpenProjectStore. History is nil for backends
// that cannot keep page history.
type Stores struct {
	Projects domain.ProjectStore
	History  domain.HistoryStore
	Files    *FileStore // set for the file backend
}

// OpenProjectStore opens the configured backend.
func OpenProjectStore(ctx context.Context, opts Options) (*Stores, error) {
	switch opts.Backend {
	case "", DriverSQLite:
		dsn := opts.DSN
		if dsn == "" {
			dsn = filepath.Join(opts.DataDir, "canvasdoc.db")
		}
		db, err := New(dsn, opts.DataDir)
		if err != nil {
			return nil, err
		}
		return &Stores{Projects: NewProjectStore(db), History: NewHistoryStore(db)}, nil
	case DriverPostgres, DriverMySQL:
		db, err := Open(opts.Backend, opts.DSN, opts.DataDir)
		if err != nil {
			return nil, err
		}
		return &Stores{Projects: NewProjectStore(db), History: NewHistoryStore(db)}, nil
	case BackendRedis:
		rs, err := NewRedisStore(ctx, opts.Addr, opts.Password, opts.RedisDB)
		if err != nil {
			return nil, err
		}
		return &Stores{Projects: rs}, nil
	case BackendMongo:
		ms, err := NewMongoStore(ctx, opts.DSN, opts.Database)
		if err != nil {
			return nil, err
		}
		return &Stores{Projects: ms}, nil
	case BackendFile:
		fs, err := NewFileStore(filepath.Join(opts.DataDir, "projects"), opts.Logger)
		if err != nil {
			return nil, err
		}
		return &Stores{Projects: fs, Files: fs}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
