package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ErrNotFound возвращается, когда запись не найдена
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate нарушение уникального индекса, требует TranslateError в gorm.Config
var ErrDuplicate = gorm.ErrDuplicatedKey

const maxTxAttempts = 3

type Database struct {
	db        *gorm.DB
	txOptions *sql.TxOptions
}

func NewDatabase(db *gorm.DB) *Database {
	d := &Database{db: db}
	if isPostgres(db) {
		d.txOptions = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}
	return d
}

func (d *Database) DB() *gorm.DB {
	return d.db
}

// Atomic выполняет fn в одной транзакции. Все изменения внутри fn
// применяются целиком или не применяются совсем. На postgres транзакция
// serializable и повторяется при конфликте сериализации.
func (d *Database) Atomic(ctx context.Context, fn func(tx *Database) error) error {
	var opts []*sql.TxOptions
	if d.txOptions != nil {
		opts = append(opts, d.txOptions)
	}

	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&Database{db: tx, txOptions: d.txOptions})
		}, opts...)
		if err == nil || !isSerializationFailure(err) {
			return err
		}
		log.Debug().Err(err).Int("attempt", attempt).Msg("retrying serializable transaction")
	}
	return err
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isPostgres(db *gorm.DB) bool {
	return db.Dialector != nil && db.Dialector.Name() == "postgres"
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	// serialization_failure, deadlock_detected
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
