// Package audit records the mutations the dashboard sent upstream and the
// API accepted. Recording never fails the user's action.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"bizup-dashboard/internal/logger"
	"bizup-dashboard/internal/models"
)

const DefaultListLimit = 100

var timeNow = time.Now

type Entry struct {
	EntityType  string
	EntityID    int64
	Action      models.ActivityAction
	Description string
	Before      any
	After       any
}

type Recorder interface {
	Record(ctx context.Context, e Entry)
}

type Lister interface {
	List(ctx context.Context, entityType string, limit int) ([]models.ActivityLog, error)
}

// Store is a Recorder whose entries can be listed back.
type Store interface {
	Recorder
	Lister
}

func newLog(ctx context.Context, e Entry) models.ActivityLog {
	return models.ActivityLog{
		RequestID:   logger.RequestIDFrom(ctx),
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Action:      e.Action,
		Description: e.Description,
		BeforeData:  encode(e.Before),
		AfterData:   encode(e.After),
	}
}

// encode returns "null" for nil or unencodable values; jsonb rejects "".
func encode(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

type GormRecorder struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGormRecorder(db *gorm.DB, log *logger.Logger) *GormRecorder {
	return &GormRecorder{db: db, log: log.WithComponent("audit")}
}

func (r *GormRecorder) Record(ctx context.Context, e Entry) {
	entry := newLog(ctx, e)
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		r.log.WithRequestID(ctx).Error("activity log not saved",
			"entity_type", e.EntityType,
			"entity_id", e.EntityID,
			"action", e.Action,
			"error", err)
	}
}

func (r *GormRecorder) List(ctx context.Context, entityType string, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	q := r.db.WithContext(ctx).Model(&models.ActivityLog{})
	if entityType != "" {
		q = q.Where("entity_type = ?", entityType)
	}
	var logs []models.ActivityLog
	if err := q.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list activity log: %w", err)
	}
	return logs, nil
}

// MemoryRecorder keeps the most recent entries in process. It backs the
// activity endpoint when no database is configured.
type MemoryRecorder struct {
	mu      sync.Mutex
	entries []models.ActivityLog
	nextID  uint
	max     int
}

func NewMemoryRecorder(max int) *MemoryRecorder {
	if max <= 0 {
		max = DefaultListLimit
	}
	return &MemoryRecorder{max: max}
}

func (r *MemoryRecorder) Record(ctx context.Context, e Entry) {
	entry := newLog(ctx, e)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entry.ID = r.nextID
	entry.CreatedAt = timeNow()
	r.entries = append(r.entries, entry)
	if over := len(r.entries) - r.max; over > 0 {
		r.entries = append([]models.ActivityLog(nil), r.entries[over:]...)
	}
}

// List returns newest first.
func (r *MemoryRecorder) List(ctx context.Context, entityType string, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.ActivityLog{}
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if entityType == "" || r.entries[i].EntityType == entityType {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

var (
	_ Store = (*GormRecorder)(nil)
	_ Store = (*MemoryRecorder)(nil)
)

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Entry) {}

// Discard drops every entry.
var Discard Recorder = nopRecorder{}
