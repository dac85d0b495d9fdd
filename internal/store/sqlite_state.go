package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

const sqliteFileName = "state.sqlite"

// stateRow is one persisted key. Values are JSON documents.
type stateRow struct {
	Key       string `gorm:"column:k;primaryKey"`
	Value     string `gorm:"column:v;not null"`
	UpdatedAt int64  `gorm:"column:updated_at_unixms;not null"`
}

func (stateRow) TableName() string { return "state_kv" }

// PersistenceError reports a failed read or write of the state table.
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

// openGorm opens the state database through the pure-Go modernc driver.
func (s Store) openGorm(ctx context.Context) (*gorm.DB, func(), error) {
	if err := s.Ensure(); err != nil {
		return nil, nil, err
	}
	dsn := s.sqlitePath() + "?_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	closeFn := func() { _ = sqlDB.Close() }

	gdb, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("connect sqlite: %w", err)
	}
	gdb = gdb.WithContext(ctx)
	if err := gdb.AutoMigrate(&stateRow{}); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return gdb, closeFn, nil
}

// LoadKeys returns the raw JSON value for every requested key that exists.
func (s Store) LoadKeys(ctx context.Context, keys []string) (map[string]json.RawMessage, error) {
	gdb, closeFn, err := s.openGorm(ctx)
	if err != nil {
		return nil, PersistenceError{Op: "load", Err: err}
	}
	defer closeFn()

	var rows []stateRow
	if err := gdb.Where("k IN ?", keys).Find(&rows).Error; err != nil {
		return nil, PersistenceError{Op: "load", Err: err}
	}
	out := make(map[string]json.RawMessage, len(rows))
	for _, r := range rows {
		out[r.Key] = json.RawMessage(r.Value)
	}
	return out, nil
}

// SaveKeys writes a partial state in one transaction.
func (s Store) SaveKeys(ctx context.Context, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	nowMs := time.Now().UTC().UnixMilli()
	rows := make([]stateRow, 0, len(values))
	for k, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return PersistenceError{Op: "save", Err: fmt.Errorf("encode %s: %w", k, err)}
		}
		rows = append(rows, stateRow{Key: k, Value: string(raw), UpdatedAt: nowMs})
	}

	gdb, closeFn, err := s.openGorm(ctx)
	if err != nil {
		return PersistenceError{Op: "save", Err: err}
	}
	defer closeFn()

	err = gdb.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "k"}},
			DoUpdates: clause.AssignmentColumns([]string{"v", "updated_at_unixms"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// LoadSQLite loads every key, applies defaults and load migrations, and seeds a
// brand-new store.
func (s Store) LoadSQLite(ctx context.Context) (*DB, error) {
	raw, err := s.LoadKeys(ctx, AllKeys())
	if err != nil {
		return nil, err
	}
	now := time.Now()

	if len(raw) == 0 {
		db := Seed(now)
		if err := s.SaveSQLite(ctx, db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db := Empty()
	for k, v := range raw {
		if err := db.assign(k, v); err != nil {
			return nil, PersistenceError{Op: "load", Err: fmt.Errorf("decode %s: %w", k, err)}
		}
	}
	db.normalize()
	Migrate(db, now)
	return db, nil
}

func (s Store) SaveSQLite(ctx context.Context, db *DB) error {
	if db == nil {
		return PersistenceError{Op: "save", Err: errors.New("nil db")}
	}
	db.normalize()
	return s.SaveKeys(ctx, db.values())
}
