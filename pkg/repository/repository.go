// Package repository owns a reversion repository's on-disk layout (spec
// §6): the "version" format marker, config.json, the GORM-managed
// manifest.db relational catalog, and the blobs/ block store directory.
package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/reversion-fs/reversion/pkg/blockstore"
	"github.com/reversion-fs/reversion/pkg/repoconfig"
	"github.com/reversion-fs/reversion/pkg/repository/models"
)

// FormatVersion is the only repository format id this binary understands.
// It is a 128-bit identifier in hex, matching spec §6's "version — a UTF-8
// textual form of a 128-bit identifier".
const FormatVersion = "9f4c9b6a2e3d4f5c8a1b2c3d4e5f6a7b"

const (
	versionFileName = "version"
	configFileName  = "config.json"
	dbFileName      = "manifest.db"
	blobsDirName    = "blobs"
)

// Repository is an open reversion repository: its configuration, its
// manifest database, and its block store.
type Repository struct {
	Path   string
	Config *repoconfig.Config
	db     *gorm.DB
	Blocks *blockstore.Store
}

// Check is a cheap predicate inspecting only the version marker, without
// opening the database (spec §4.3's check(path)).
func Check(path string) error {
	data, err := os.ReadFile(filepath.Join(path, versionFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotARepository
		}
		return fmt.Errorf("repository: reading version marker: %w", err)
	}
	if strings.TrimSpace(string(data)) != FormatVersion {
		return ErrIncompatibleRepository
	}
	return nil
}

// Create initializes a new repository at path. It fails if path already
// exists; it creates blobs/, the schema, and config.json, and writes the
// version marker last so a crash mid-create leaves behind something Check
// reports as "not a repository" rather than a partially-initialized one
// reported as compatible.
func Create(path string, cfg *repoconfig.Config) (*Repository, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, ErrAlreadyExists
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("repository: checking %s: %w", path, err)
	}

	if cfg == nil {
		cfg = repoconfig.Default()
	}

	if err := os.MkdirAll(filepath.Join(path, blobsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("repository: creating layout: %w", err)
	}

	db, err := openDatabase(filepath.Join(path, dbFileName))
	if err != nil {
		return nil, err
	}

	if err := repoconfig.Save(filepath.Join(path, configFileName), cfg); err != nil {
		return nil, fmt.Errorf("repository: writing config.json: %w", err)
	}

	if err := os.WriteFile(filepath.Join(path, versionFileName), []byte(FormatVersion), 0o644); err != nil {
		return nil, fmt.Errorf("repository: writing version marker: %w", err)
	}

	return newRepository(path, cfg, db), nil
}

// Open opens an existing repository at path. Any failure — an incompatible
// or missing version marker, an unreadable config.json, or a manifest.db
// that fails to open or migrate — returns a nil *Repository alongside the
// error. There is no repair path for an Open failure itself: pkg/integrity
// repairs catalogued blocks whose on-disk bytes no longer match, which
// requires a successfully opened repository to query in the first place.
func Open(path string) (*Repository, error) {
	if err := Check(path); err != nil {
		return nil, err
	}

	cfg, err := repoconfig.Load(filepath.Join(path, configFileName))
	if err != nil {
		return nil, fmt.Errorf("repository: loading config.json: %w", err)
	}

	db, err := openDatabase(filepath.Join(path, dbFileName))
	if err != nil {
		return nil, err
	}

	return newRepository(path, cfg, db), nil
}

func newRepository(path string, cfg *repoconfig.Config, db *gorm.DB) *Repository {
	repo := &Repository{Path: path, Config: cfg, db: db}

	var opts []blockstore.Option
	if cfg.MaxDiskUsage != nil {
		opts = append(opts, blockstore.WithMaxDiskUsage(cfg.MaxDiskUsage.Int64()))
	}
	repo.Blocks = blockstore.New(filepath.Join(path, blobsDirName), (*catalog)(repo), opts...)
	return repo
}

func openDatabase(dbPath string) (*gorm.DB, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: opening manifest.db: %w", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return nil, fmt.Errorf("repository: migrating schema: %w", err)
	}
	return db, nil
}

// DB returns the underlying GORM handle, for collaborating packages
// (pkg/timeline, pkg/cleanup, pkg/integrity) that need direct query access.
func (r *Repository) DB() *gorm.DB { return r.db }

// Close releases the repository's database connection and block store.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
	return r.Blocks.Close()
}

// TimelineIDs returns every timeline id in the repository. It is the
// collaborator hook the watch daemon uses to discover which timelines need
// a periodic Timeline.Clean call (spec §4.8's "long-running Repository.jobs
// associated with the repository"), without repository importing
// pkg/timeline or pkg/cleanup.
func (r *Repository) TimelineIDs() ([]string, error) {
	var ids []string
	if err := r.db.Model(&models.Timeline{}).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("repository: listing timelines: %w", err)
	}
	return ids, nil
}

// IsUniqueConstraintError reports whether err is a unique-constraint
// violation from the underlying SQLite driver.
func IsUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
