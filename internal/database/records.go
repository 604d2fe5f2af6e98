package database

import (
	"context"
	"fmt"

	"github.com/jinzhu/gorm"

	"homebase/internal/apperr"
	"homebase/internal/models"
	"homebase/internal/store"
)

func (s *Store) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := s.db.Order("position asc").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

func (s *Store) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := s.db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err, "profile", id)
	}
	return &p, nil
}

func (s *Store) CreateProfile(ctx context.Context, p *models.Profile) error {
	if err := store.ValidateProfile(p); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		dup, err := exists(tx, &models.Profile{}, p.ID)
		if err != nil {
			return err
		}
		if dup {
			return &apperr.ValidationError{Field: "id", Msg: "already exists"}
		}
		if p.Position, err = nextPosition(tx, &models.Profile{}); err != nil {
			return err
		}
		return tx.Create(p).Error
	})
}

func (s *Store) ListItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := s.db.Order("position asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (s *Store) GetItem(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := s.db.Where("id = ?", id).First(&item).Error; err != nil {
		return nil, notFound(err, "item", id)
	}
	return &item, nil
}

func (s *Store) CreateItem(ctx context.Context, item *models.Item) error {
	if err := store.ValidateItem(item); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return insertItem(tx, item)
	})
}

func insertItem(tx *gorm.DB, item *models.Item) error {
	dup, err := exists(tx, &models.Item{}, item.ID)
	if err != nil {
		return err
	}
	if dup {
		return &apperr.ValidationError{Field: "id", Msg: "already exists"}
	}
	if item.Position, err = nextPosition(tx, &models.Item{}); err != nil {
		return err
	}
	return tx.Create(item).Error
}

func (s *Store) UpdateItem(ctx context.Context, item *models.Item) error {
	if item == nil {
		return apperr.Required("item")
	}
	if !models.IsItemStatusValid(item.Status) {
		return &apperr.ValidationError{Field: "status", Msg: "must be \"In Place\" or \"Misplaced\""}
	}
	res := s.db.Model(&models.Item{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
		"name":     item.Name,
		"owner":    item.Owner,
		"location": item.Location,
		"status":   string(item.Status),
		"has_tag":  item.HasTag,
	})
	if res.Error != nil {
		return fmt.Errorf("update item %s: %w", item.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		// sqlite reports zero rows when nothing changed, so confirm the row is gone
		ok, err := exists(s.db, &models.Item{}, item.ID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("item", item.ID)
		}
	}
	return nil
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}

func (s *Store) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.db.Preload("Items", orderedItems).Order("position asc").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := s.db.Preload("Items", orderedItems).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, notFound(err, "task", id)
	}
	return &task, nil
}

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	if err := store.ValidateTask(task); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		dup, err := exists(tx, &models.Task{}, task.ID)
		if err != nil {
			return err
		}
		if dup {
			return &apperr.ValidationError{Field: "id", Msg: "already exists"}
		}
		if task.Position, err = nextPosition(tx, &models.Task{}); err != nil {
			return err
		}
		for i := range task.Items {
			task.Items[i].TaskID = task.ID
			task.Items[i].Position = i
		}
		return tx.Create(task).Error
	})
}

// AddTaskItem inserts the item and its task reference in one transaction
func (s *Store) AddTaskItem(ctx context.Context, taskID string, item *models.Item) error {
	if err := store.ValidateItem(item); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := exists(tx, &models.Task{}, taskID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("task", taskID)
		}
		if err := insertItem(tx, item); err != nil {
			return err
		}
		var count int
		if err := tx.Model(&models.TaskItem{}).Where("task_id = ?", taskID).Count(&count).Error; err != nil {
			return err
		}
		ref := models.TaskItem{TaskID: taskID, ItemID: item.ID, Name: item.Name, Position: count}
		return tx.Create(&ref).Error
	})
}

func (s *Store) AppendHistory(ctx context.Context, entry *models.HistoryEntry) error {
	if entry == nil || entry.ID == "" {
		return apperr.Required("history.id")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		dup, err := exists(tx, &models.HistoryEntry{}, entry.ID)
		if err != nil {
			return err
		}
		if dup {
			return &apperr.ValidationError{Field: "history.id", Msg: "already exists"}
		}
		var last models.HistoryEntry
		err = tx.Order("seq desc").First(&last).Error
		if err != nil && !gorm.IsRecordNotFoundError(err) {
			return err
		}
		// sqlite compares timestamps as text, so every row is stored in UTC
		row := *entry
		row.Seq = last.Seq + 1
		row.Timestamp = row.Timestamp.UTC()
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		entry.Seq = row.Seq
		return nil
	})
}

func (s *Store) ListHistory(ctx context.Context, filter models.HistoryFilter) ([]models.HistoryEntry, error) {
	q := s.db.Order("seq desc")
	if filter.User != "" && filter.User != "all" {
		q = q.Where("user_name = ?", filter.User)
	}
	if filter.From != nil {
		q = q.Where("recorded_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("recorded_at <= ?", filter.To.UTC())
	}
	var entries []models.HistoryEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}
