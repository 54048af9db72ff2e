package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/samber/oops"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// record is a single key/value row.
type record struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (record) TableName() string { return "wprefs_records" }

// SQL persists records in a Postgres table through gorm.
type SQL struct {
	gorm *gorm.DB
	sql  *sql.DB
}

// OpenSQL connects to the database at dsn and ensures the records table exists.
func OpenSQL(ctx context.Context, dsn string) (*SQL, error) {
	if dsn == "" {
		return nil, oops.In("store").Errorf("missing DSN")
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, oops.In("store").Wrapf(err, "opening database")
	}
	sdb, err := gdb.DB()
	if err != nil {
		return nil, oops.In("store").Wrapf(err, "getting sql handle")
	}
	sdb.SetConnMaxLifetime(30 * time.Minute)
	sdb.SetMaxOpenConns(4)
	sdb.SetMaxIdleConns(2)
	if err := sdb.PingContext(ctx); err != nil {
		sdb.Close()
		return nil, oops.In("store").Wrapf(err, "pinging database")
	}

	if err := gdb.WithContext(ctx).AutoMigrate(&record{}); err != nil {
		sdb.Close()
		return nil, oops.In("store").Wrapf(err, "migrating %s", record{}.TableName())
	}

	return &SQL{gorm: gdb, sql: sdb}, nil
}

// Get reads the JSON document stored under key into v.
func (s *SQL) Get(ctx context.Context, key string, v any) error {
	var row record
	err := s.gorm.WithContext(ctx).Where("key = ?", key).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return oops.In("store").With("key", key).Wrapf(err, "reading record")
	}

	if err := json.Unmarshal([]byte(row.Value), v); err != nil {
		return oops.In("store").With("key", key).Wrapf(err, "decoding record")
	}
	return nil
}

// Set upserts the record stored under key.
func (s *SQL) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return oops.In("store").With("key", key).Wrapf(err, "encoding value")
	}

	row := record{Key: key, Value: string(data), UpdatedAt: time.Now()}
	err = s.gorm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return oops.In("store").With("key", key).Wrapf(err, "writing record")
	}
	return nil
}

// Delete removes the record stored under key.
func (s *SQL) Delete(ctx context.Context, key string) error {
	res := s.gorm.WithContext(ctx).Where("key = ?", key).Delete(&record{})
	if res.Error != nil {
		return oops.In("store").With("key", key).Wrapf(res.Error, "removing record")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *SQL) Close() error {
	return s.sql.Close()
}
