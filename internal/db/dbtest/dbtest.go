// Package dbtest — SQLite в памяти для тестов пакетов поверх БД.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"fleetdash/internal/db"

	"gorm.io/gorm"
)

// Open — отдельная in-memory БД на тест с уже созданными таблицами.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
	d, err := db.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := d.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// одно соединение: in-memory БД живёт, пока оно открыто
	sqlDB.SetMaxOpenConns(1)
	if err := db.Migrate(d); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(d) })
	return d
}
