package store

import (
	"context"
	"sort"
	"sync"

	"homebase/internal/apperr"
	"homebase/internal/models"
)

// Memory is an in-process RecordStore. Records keep insertion order, which is
// the order list views and name matching rely on.
type Memory struct {
	mu       sync.RWMutex
	profiles []*models.Profile
	items    []*models.Item
	tasks    []*models.Task
	history  []models.HistoryEntry // most-recent-first
	seq      uint64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// NewSeededMemory creates an in-memory store holding the default household.
func NewSeededMemory() *Memory {
	m := NewMemory()
	h := DefaultHousehold()
	for i := range h.Profiles {
		p := h.Profiles[i]
		m.profiles = append(m.profiles, &p)
	}
	for i := range h.Items {
		it := h.Items[i]
		m.items = append(m.items, &it)
	}
	for i := range h.Tasks {
		t := h.Tasks[i].Clone()
		m.tasks = append(m.tasks, &t)
	}
	// fixture history is oldest-last already; assign sequence numbers bottom-up
	for i := len(h.History) - 1; i >= 0; i-- {
		m.seq++
		e := h.History[i]
		e.Seq = m.seq
		m.history = append([]models.HistoryEntry{e}, m.history...)
	}
	return m
}

func (m *Memory) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Profile, len(m.profiles))
	for i, p := range m.profiles {
		out[i] = copyProfile(*p)
	}
	return out, nil
}

func (m *Memory) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.profiles {
		if p.ID == id {
			c := copyProfile(*p)
			return &c, nil
		}
	}
	return nil, apperr.NotFound("profile", id)
}

func (m *Memory) CreateProfile(ctx context.Context, p *models.Profile) error {
	if err := ValidateProfile(p); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.profiles {
		if existing.ID == p.ID {
			return &apperr.ValidationError{Field: "id", Msg: "already exists"}
		}
	}
	c := copyProfile(*p)
	c.Position = len(m.profiles)
	m.profiles = append(m.profiles, &c)
	return nil
}

func (m *Memory) ListItems(ctx context.Context) ([]models.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Item, len(m.items))
	for i, it := range m.items {
		out[i] = *it
	}
	return out, nil
}

func (m *Memory) GetItem(ctx context.Context, id string) (*models.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if it := m.findItem(id); it != nil {
		c := *it
		return &c, nil
	}
	return nil, apperr.NotFound("item", id)
}

func (m *Memory) CreateItem(ctx context.Context, item *models.Item) error {
	if err := ValidateItem(item); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertItem(item)
}

func (m *Memory) UpdateItem(ctx context.Context, item *models.Item) error {
	if item == nil {
		return apperr.Required("item")
	}
	if !models.IsItemStatusValid(item.Status) {
		return &apperr.ValidationError{Field: "status", Msg: "must be \"In Place\" or \"Misplaced\""}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing := m.findItem(item.ID)
	if existing == nil {
		return apperr.NotFound("item", item.ID)
	}
	pos := existing.Position
	*existing = *item
	existing.Position = pos
	return nil
}

func (m *Memory) ListTasks(ctx context.Context) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Task, len(m.tasks))
	for i, t := range m.tasks {
		out[i] = t.Clone()
	}
	return out, nil
}

func (m *Memory) GetTask(ctx context.Context, id string) (*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t := m.findTask(id); t != nil {
		c := t.Clone()
		return &c, nil
	}
	return nil, apperr.NotFound("task", id)
}

func (m *Memory) CreateTask(ctx context.Context, task *models.Task) error {
	if err := ValidateTask(task); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findTask(task.ID) != nil {
		return &apperr.ValidationError{Field: "id", Msg: "already exists"}
	}
	c := task.Clone()
	c.Position = len(m.tasks)
	m.tasks = append(m.tasks, &c)
	return nil
}

func (m *Memory) AddTaskItem(ctx context.Context, taskID string, item *models.Item) error {
	if err := ValidateItem(item); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	task := m.findTask(taskID)
	if task == nil {
		return apperr.NotFound("task", taskID)
	}
	if err := m.insertItem(item); err != nil {
		return err
	}
	task.Items = append(task.Items, models.TaskItem{
		TaskID:   task.ID,
		ItemID:   item.ID,
		Name:     item.Name,
		Position: len(task.Items),
	})
	return nil
}

func (m *Memory) AppendHistory(ctx context.Context, entry *models.HistoryEntry) error {
	if entry == nil || entry.ID == "" {
		return apperr.Required("history.id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.history {
		if e.ID == entry.ID {
			return &apperr.ValidationError{Field: "history.id", Msg: "already exists"}
		}
	}
	m.seq++
	entry.Seq = m.seq
	m.history = append([]models.HistoryEntry{*entry}, m.history...)
	return nil
}

func (m *Memory) ListHistory(ctx context.Context, filter models.HistoryFilter) ([]models.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.HistoryEntry, 0, len(m.history))
	for _, e := range m.history {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	// prepend order already holds; the stable sort only matters for fixture rows
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq > out[j].Seq })
	return out, nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error { return nil }

func (m *Memory) findItem(id string) *models.Item {
	for _, it := range m.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func (m *Memory) findTask(id string) *models.Task {
	for _, t := range m.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (m *Memory) insertItem(item *models.Item) error {
	if m.findItem(item.ID) != nil {
		return &apperr.ValidationError{Field: "id", Msg: "already exists"}
	}
	c := *item
	c.Position = len(m.items)
	m.items = append(m.items, &c)
	return nil
}

func copyProfile(p models.Profile) models.Profile {
	p.Essentials = append(models.StringSlice(nil), p.Essentials...)
	return p
}
