// Package database is the gorm-backed record store. SQLite is the default;
// PostgreSQL is selected with the "postgres" driver.
package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"              // SQLite driver

	"homebase/internal/apperr"
	"homebase/internal/models"
	"homebase/internal/store"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Store implements store.RecordStore on a gorm connection
type Store struct {
	db *gorm.DB
}

var _ store.RecordStore = (*Store)(nil)

// Open connects, migrates the schema and, when seed is set, fills empty
// tables with the default household.
func Open(driver, url string, seed bool) (*Store, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one connection keeps ":memory:" databases shared and serialises writers
		db.DB().SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	if seed {
		if err := s.Seed(context.Background()); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) migrate() error {
	return s.db.AutoMigrate(
		&models.Profile{},
		&models.Item{},
		&models.Task{},
		&models.TaskItem{},
		&models.HistoryEntry{},
	).Error
}

// Seed inserts the default household into every empty table
func (s *Store) Seed(ctx context.Context) error {
	return seedDefaultData(s.db, store.DefaultHousehold())
}

// seedDefaultData ensures the demo household exists in the database
func seedDefaultData(db *gorm.DB, h store.Household) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int
		if err := tx.Model(&models.Profile{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			for i := range h.Profiles {
				p := h.Profiles[i]
				p.Position = i
				if err := tx.Create(&p).Error; err != nil {
					return fmt.Errorf("seed profile %s: %w", p.ID, err)
				}
			}
			log.Printf("database: seeded %d profiles", len(h.Profiles))
		}

		if err := tx.Model(&models.Item{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			for i := range h.Items {
				it := h.Items[i]
				if err := tx.Create(&it).Error; err != nil {
					return fmt.Errorf("seed item %s: %w", it.ID, err)
				}
			}
			log.Printf("database: seeded %d items", len(h.Items))
		}

		if err := tx.Model(&models.Task{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			for i := range h.Tasks {
				t := h.Tasks[i].Clone()
				if err := tx.Create(&t).Error; err != nil {
					return fmt.Errorf("seed task %s: %w", t.ID, err)
				}
			}
			log.Printf("database: seeded %d tasks", len(h.Tasks))
		}

		if err := tx.Model(&models.HistoryEntry{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			// fixture rows are most-recent-first; sequence them oldest first
			for i := len(h.History) - 1; i >= 0; i-- {
				e := h.History[i]
				e.Seq = uint64(len(h.History) - i)
				if err := tx.Create(&e).Error; err != nil {
					return fmt.Errorf("seed history %s: %w", e.ID, err)
				}
			}
			log.Printf("database: seeded %d history entries", len(h.History))
		}
		return nil
	})
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func notFound(err error, kind, id string) error {
	if gorm.IsRecordNotFoundError(err) {
		return apperr.NotFound(kind, id)
	}
	return fmt.Errorf("load %s %s: %w", kind, id, err)
}

func exists(db *gorm.DB, model interface{}, id string) (bool, error) {
	var count int
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func nextPosition(db *gorm.DB, model interface{}) (int, error) {
	var count int
	if err := db.Model(model).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
