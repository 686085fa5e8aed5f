// Package mock provides the shared in-memory database used by the feature
// tests.
package mock

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var once sync.Once
var shared *Db

// Db wraps an in-memory SQLite connection migrated with the reconciliation
// and billing models. One instance is shared across scenarios; ClearDB wipes
// it between them.
type Db struct {
	DbConn *gorm.DB
	models map[string]any
	schema string
}

// NewDb opens (once) the shared in-memory database and migrates the given
// models, keyed by table name.
func NewDb(schema string, models map[string]any) *Db {
	once.Do(func() {
		shared = open(schema, models)
	})
	return shared
}

func open(schema string, models map[string]any) *Db {
	// A pooled in-memory SQLite database is one database per connection;
	// pin the pool to a single shared connection so every scenario and the
	// server under test see the same tables.
	conn, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		panic(err)
	}
	conn.SetMaxOpenConns(1)

	gormDB, err := gorm.Open(sqlite.Dialector{Conn: conn}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic("failed to open test database: " + err.Error())
	}

	db := &Db{
		DbConn: gormDB,
		schema: schema,
		models: models,
	}
	if err := db.migrate(); err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %s", err))
	}
	return db
}

func (d *Db) migrate() error {
	models := make([]any, 0, len(d.models))
	for _, model := range d.models {
		models = append(models, model)
	}
	if err := d.DbConn.AutoMigrate(models...); err != nil {
		return err
	}
	for _, model := range models {
		if !d.DbConn.Migrator().HasTable(model) {
			return fmt.Errorf("table for model %T was not created", model)
		}
	}
	return nil
}

// ClearDB deletes every row from every migrated table.
func (d *Db) ClearDB() error {
	for _, model := range d.models {
		err := d.DbConn.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// GetModel returns the model registered for a table name.
func (d *Db) GetModel(table string) (any, bool) {
	model, ok := d.models[table]
	return model, ok
}
