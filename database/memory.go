package database

import (
	"fmt"
	"strings"
	"sync/atomic"

	"gorm.io/gorm"

	"github.com/yeremiapane/garcom-app/config"
)

var memorySeq atomic.Int64

// OpenInMemory opens a private, fully migrated in-memory SQLite store. Each
// call gets its own database even when names repeat.
func OpenInMemory(name string) (*gorm.DB, error) {
	name = strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(name)
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, memorySeq.Add(1))

	db, err := Open(config.Config{DBDriver: "sqlite", DatabaseDSN: dsn})
	if err != nil {
		return nil, err
	}
	if _, err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
