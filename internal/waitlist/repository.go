package waitlist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Repository interface defines the contract for waitlist data operations
type Repository interface {
	CreateEntry(ctx context.Context, entry *WaitlistEntry) error
	GetEntryByID(ctx context.Context, id uuid.UUID) (*WaitlistEntry, error)
	ListEntries(ctx context.Context, eventID uuid.UUID, status EntryStatus) ([]WaitlistEntry, error)

	// GetPendingInOrder returns the event's PENDING entries oldest first.
	// created_at is the queue order's source of truth; queue_position is a
	// derived label.
	GetPendingInOrder(ctx context.Context, eventID uuid.UUID) ([]WaitlistEntry, error)

	// GetEligibleForPromotion returns the entries promote() may admit:
	// PENDING entries plus PROMOTED ones whose deadline already lapsed
	// without a confirmation, oldest first.
	GetEligibleForPromotion(ctx context.Context, eventID uuid.UUID, now time.Time) ([]WaitlistEntry, error)

	// MarkPromoted conditionally promotes an entry. It matches PENDING
	// entries and lapsed unconfirmed promotions; returns false when the
	// entry changed state underneath us.
	MarkPromoted(ctx context.Context, id uuid.UUID, now, deadline time.Time) (bool, error)

	// MarkConfirmed conditionally flips PROMOTED to CONFIRMED exactly once;
	// a replayed link finds zero rows and reports false.
	MarkConfirmed(ctx context.Context, id uuid.UUID, confirmedAt time.Time) (bool, error)

	// ResetToPending returns a lapsed promotion to the queue. created_at is
	// untouched so the entry keeps its original place in line.
	ResetToPending(ctx context.Context, id uuid.UUID, expiredAt time.Time) (bool, error)

	// MarkConverted flips a PENDING or PROMOTED entry to CONFIRMED for the
	// admin move-directly override.
	MarkConverted(ctx context.Context, id uuid.UUID, confirmedAt time.Time) (bool, error)

	MarkCancelled(ctx context.Context, id uuid.UUID, cancelledAt time.Time) (bool, error)
	DeleteEntry(ctx context.Context, id uuid.UUID) error

	// GetLapsedPromotions returns PROMOTED entries whose deadline is behind
	// the given instant, across all events.
	GetLapsedPromotions(ctx context.Context, now time.Time, limit int) ([]WaitlistEntry, error)

	// RecomputePositions relabels the event's pending entries 1..N by
	// creation time and clears the position of everything else.
	RecomputePositions(ctx context.Context, eventID uuid.UUID) error

	GetStats(ctx context.Context, eventID uuid.UUID) (*StatsResponse, error)

	CreateNotification(ctx context.Context, notification *WaitlistNotification) error
	UpdateNotification(ctx context.Context, notification *WaitlistNotification) error
}

type repository struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewRepository creates a new waitlist repository. redisClient may be nil;
// the position mirror is then skipped.
func NewRepository(db *gorm.DB, redisClient *redis.Client) Repository {
	return &repository{
		db:    db,
		redis: redisClient,
	}
}

func (r *repository) CreateEntry(ctx context.Context, entry *WaitlistEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.ChildrenCount = len(entry.Children)

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create waitlist entry: %w", err)
	}
	return nil
}

func (r *repository) GetEntryByID(ctx context.Context, id uuid.UUID) (*WaitlistEntry, error) {
	var entry WaitlistEntry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) ListEntries(ctx context.Context, eventID uuid.UUID, status EntryStatus) ([]WaitlistEntry, error) {
	db := r.db.WithContext(ctx).Where("event_id = ?", eventID)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	var entries []WaitlistEntry
	if err := db.Order("created_at ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list waitlist entries: %w", err)
	}
	return entries, nil
}

func (r *repository) GetPendingInOrder(ctx context.Context, eventID uuid.UUID) ([]WaitlistEntry, error) {
	var entries []WaitlistEntry
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND status = ?", eventID, StatusPending).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load pending entries: %w", err)
	}
	return entries, nil
}

func (r *repository) GetEligibleForPromotion(ctx context.Context, eventID uuid.UUID, now time.Time) ([]WaitlistEntry, error) {
	var entries []WaitlistEntry
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Where("status = ? OR (status = ? AND confirmation_deadline < ? AND confirmed_at IS NULL)",
			StatusPending, StatusPromoted, now).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load promotion-eligible entries: %w", err)
	}
	return entries, nil
}

func (r *repository) MarkPromoted(ctx context.Context, id uuid.UUID, now, deadline time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&WaitlistEntry{}).
		Where("id = ?", id).
		Where("status = ? OR (status = ? AND confirmation_deadline < ? AND confirmed_at IS NULL)",
			StatusPending, StatusPromoted, now).
		Updates(map[string]interface{}{
			"status":                StatusPromoted,
			"promotion_sent_at":     now,
			"confirmation_deadline": deadline,
			"updated_at":            time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark entry promoted: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) MarkConfirmed(ctx context.Context, id uuid.UUID, confirmedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&WaitlistEntry{}).
		Where("id = ? AND status = ? AND confirmed_at IS NULL", id, StatusPromoted).
		Updates(map[string]interface{}{
			"status":       StatusConfirmed,
			"confirmed_at": confirmedAt,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark entry confirmed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ResetToPending(ctx context.Context, id uuid.UUID, expiredAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&WaitlistEntry{}).
		Where("id = ? AND status = ?", id, StatusPromoted).
		Updates(map[string]interface{}{
			"status":                StatusPending,
			"promotion_sent_at":     nil,
			"confirmation_deadline": nil,
			"expired_at":            expiredAt,
			"updated_at":            time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to reset entry to pending: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) MarkConverted(ctx context.Context, id uuid.UUID, confirmedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&WaitlistEntry{}).
		Where("id = ? AND status IN ? AND confirmed_at IS NULL", id, []EntryStatus{StatusPending, StatusPromoted}).
		Updates(map[string]interface{}{
			"status":       StatusConfirmed,
			"confirmed_at": confirmedAt,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to convert entry: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) MarkCancelled(ctx context.Context, id uuid.UUID, cancelledAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&WaitlistEntry{}).
		Where("id = ? AND status IN ?", id, []EntryStatus{StatusPending, StatusPromoted, StatusExpired}).
		Updates(map[string]interface{}{
			"status":       StatusCancelled,
			"cancelled_at": cancelledAt,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to cancel entry: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&WaitlistEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete waitlist entry: %w", err)
	}
	return nil
}

func (r *repository) GetLapsedPromotions(ctx context.Context, now time.Time, limit int) ([]WaitlistEntry, error) {
	var entries []WaitlistEntry
	err := r.db.WithContext(ctx).
		Where("status = ? AND confirmation_deadline < ?", StatusPromoted, now).
		Order("confirmation_deadline ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load lapsed promotions: %w", err)
	}
	return entries, nil
}

// RecomputePositions relabels pending entries with a window function so the
// numbering stays contiguous no matter which entries left the queue.
func (r *repository) RecomputePositions(ctx context.Context, eventID uuid.UUID) error {
	err := r.db.WithContext(ctx).Exec(`
		UPDATE waitlist_entries
		SET queue_position = numbered.new_position
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY created_at ASC) AS new_position
			FROM waitlist_entries
			WHERE event_id = ? AND status = ?
		) AS numbered
		WHERE waitlist_entries.id = numbered.id`,
		eventID, StatusPending).Error
	if err != nil {
		return fmt.Errorf("failed to recompute queue positions: %w", err)
	}

	err = r.db.WithContext(ctx).
		Model(&WaitlistEntry{}).
		Where("event_id = ? AND status <> ? AND queue_position <> 0", eventID, StatusPending).
		Update("queue_position", 0).Error
	if err != nil {
		return fmt.Errorf("failed to clear stale queue positions: %w", err)
	}

	r.mirrorPositions(ctx, eventID)
	return nil
}

// mirrorPositions keeps a Redis hash of entryID -> position for cheap
// position lookups. Best effort: the database remains authoritative.
func (r *repository) mirrorPositions(ctx context.Context, eventID uuid.UUID) {
	if r.redis == nil {
		return
	}

	entries, err := r.GetPendingInOrder(ctx, eventID)
	if err != nil {
		return
	}

	positionKey := GetPositionKey(eventID)
	pipe := r.redis.Pipeline()
	pipe.Del(ctx, positionKey)
	for _, entry := range entries {
		pipe.HSet(ctx, positionKey, entry.ID.String(), entry.QueuePosition)
	}
	pipe.Expire(ctx, positionKey, 24*time.Hour)
	_, _ = pipe.Exec(ctx)
}

func (r *repository) GetStats(ctx context.Context, eventID uuid.UUID) (*StatsResponse, error) {
	type statusCount struct {
		Status        EntryStatus
		Count         int
		ChildrenTotal int
	}

	var counts []statusCount
	err := r.db.WithContext(ctx).
		Model(&WaitlistEntry{}).
		Select("status, COUNT(*) AS count, SUM(children_count) AS children_total").
		Where("event_id = ?", eventID).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load waitlist stats: %w", err)
	}

	stats := &StatsResponse{EventID: eventID}
	for _, c := range counts {
		stats.TotalEntries += c.Count
		switch c.Status {
		case StatusPending:
			stats.PendingCount = c.Count
			stats.ChildrenWaiting = c.ChildrenTotal
		case StatusPromoted:
			stats.PromotedCount = c.Count
		case StatusConfirmed:
			stats.ConfirmedCount = c.Count
		case StatusExpired:
			stats.ExpiredCount = c.Count
		case StatusCancelled:
			stats.CancelledCount = c.Count
		}
	}
	return stats, nil
}

func (r *repository) CreateNotification(ctx context.Context, notification *WaitlistNotification) error {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification record: %w", err)
	}
	return nil
}

func (r *repository) UpdateNotification(ctx context.Context, notification *WaitlistNotification) error {
	if err := r.db.WithContext(ctx).Save(notification).Error; err != nil {
		return fmt.Errorf("failed to update notification record: %w", err)
	}
	return nil
}
