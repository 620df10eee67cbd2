package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-worldtime-bot/internal/domain"
	"telegram-worldtime-bot/internal/domain/model"
	"telegram-worldtime-bot/internal/domain/ports/repository"
	"telegram-worldtime-bot/internal/infra/metrics"
)

var _ repository.MemberZoneRepository = (*PostgresMemberZoneRepo)(nil)

// PostgresMemberZoneRepo persists zone registrations keyed by (chat, user).
// The activity window and popularity cap bound the listing query only; point
// operations never filter by recency.
type PostgresMemberZoneRepo struct {
	pool         *pgxpool.Pool
	activeWindow time.Duration
	topZones     int
}

func NewPostgresMemberZoneRepo(pool *pgxpool.Pool, activeWindow time.Duration, topZones int) *PostgresMemberZoneRepo {
	if activeWindow <= 0 {
		activeWindow = 30 * 24 * time.Hour
	}
	if topZones <= 0 {
		topZones = 20
	}
	return &PostgresMemberZoneRepo{pool: pool, activeWindow: activeWindow, topZones: topZones}
}

func observe(op string, start time.Time, err error) {
	metrics.ObserveRegistryOp(op, float64(time.Since(start).Milliseconds()), err == nil)
}

// Upsert replaces the registration in a single statement so concurrent
// readers never observe a missing record mid-update.
func (r *PostgresMemberZoneRepo) Upsert(ctx context.Context, tx repository.Tx, record *model.MemberZone) (err error) {
	start := time.Now()
	defer func() { observe("upsert", start, err) }()
	if record == nil {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO member_zones (chat_id, user_id, zone, last_active)
VALUES ($1, $2, $3, $4)
ON CONFLICT (chat_id, user_id) DO UPDATE SET zone = EXCLUDED.zone, last_active = EXCLUDED.last_active;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err = ex.Exec(ctx, q, record.ChatID, record.UserID, record.Zone, record.LastActive); err != nil {
		return fmt.Errorf("upsert member zone: %w", err)
	}
	return nil
}

func (r *PostgresMemberZoneRepo) Delete(ctx context.Context, tx repository.Tx, chatID, userID int64) (err error) {
	start := time.Now()
	defer func() { observe("delete", start, err) }()
	const q = `DELETE FROM member_zones WHERE chat_id = $1 AND user_id = $2;`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err = ex.Exec(ctx, q, chatID, userID); err != nil {
		return fmt.Errorf("delete member zone: %w", err)
	}
	return nil
}

func (r *PostgresMemberZoneRepo) TouchActivity(ctx context.Context, tx repository.Tx, chatID, userID int64) (err error) {
	start := time.Now()
	defer func() { observe("touch", start, err) }()
	const q = `UPDATE member_zones SET last_active = now() WHERE chat_id = $1 AND user_id = $2;`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err = ex.Exec(ctx, q, chatID, userID); err != nil {
		return fmt.Errorf("touch activity: %w", err)
	}
	return nil
}

func (r *PostgresMemberZoneRepo) Find(ctx context.Context, tx repository.Tx, chatID, userID int64) (record *model.MemberZone, err error) {
	start := time.Now()
	defer func() { observe("find", start, err) }()
	const q = `SELECT zone, last_active FROM member_zones WHERE chat_id = $1 AND user_id = $2;`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	record = &model.MemberZone{ChatID: chatID, UserID: userID}
	if err = ex.QueryRow(ctx, q, chatID, userID).Scan(&record.Zone, &record.LastActive); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select member zone: %w", err)
	}
	return record, nil
}

// ListActiveGrouped returns recently active members grouped by zone, limited
// to the most popular zones. Row order is randomized so the same member does
// not always lead a group.
func (r *PostgresMemberZoneRepo) ListActiveGrouped(ctx context.Context, tx repository.Tx, chatID int64) (out map[string][]int64, err error) {
	start := time.Now()
	defer func() { observe("list_active", start, err) }()
	const q = `
SELECT zone, user_id
  FROM member_zones
 WHERE chat_id = $1
   AND last_active >= $2
   AND zone IN (
       SELECT zone
         FROM member_zones
        WHERE chat_id = $1 AND last_active >= $2
        GROUP BY zone
        ORDER BY count(*) DESC
        LIMIT $3
   )
 ORDER BY RANDOM();
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().Add(-r.activeWindow)
	rows, err := ex.Query(ctx, q, chatID, cutoff, r.topZones)
	if err != nil {
		return nil, fmt.Errorf("list active zones: %w", err)
	}
	defer rows.Close()

	out = make(map[string][]int64)
	for rows.Next() {
		var zone string
		var userID int64
		if err = rows.Scan(&zone, &userID); err != nil {
			return nil, fmt.Errorf("scan zone row: %w", err)
		}
		out[zone] = append(out[zone], userID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate zone rows: %w", err)
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (r *PostgresMemberZoneRepo) HasAny(ctx context.Context, tx repository.Tx, chatID int64) (ok bool, err error) {
	start := time.Now()
	defer func() { observe("has_any", start, err) }()
	const q = `SELECT true FROM member_zones WHERE chat_id = $1 LIMIT 1;`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return false, err
	}
	if err = ex.QueryRow(ctx, q, chatID).Scan(&ok); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("probe chat: %w", err)
	}
	return ok, nil
}

func (r *PostgresMemberZoneRepo) ListChats(ctx context.Context, tx repository.Tx) (chats []int64, err error) {
	start := time.Now()
	defer func() { observe("list_chats", start, err) }()
	const q = `SELECT DISTINCT chat_id FROM member_zones;`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan chat id: %w", err)
		}
		chats = append(chats, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat ids: %w", err)
	}
	return chats, nil
}

func (r *PostgresMemberZoneRepo) ListMembers(ctx context.Context, tx repository.Tx, chatID int64) (members []int64, err error) {
	start := time.Now()
	defer func() { observe("list_members", start, err) }()
	const q = `SELECT user_id FROM member_zones WHERE chat_id = $1;`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, chatID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member id: %w", err)
		}
		members = append(members, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate member ids: %w", err)
	}
	return members, nil
}

func (r *PostgresMemberZoneRepo) DistinctZoneCount(ctx context.Context, tx repository.Tx) (n int, err error) {
	start := time.Now()
	defer func() { observe("distinct_zones", start, err) }()
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	if err = ex.QueryRow(ctx, `SELECT COUNT(DISTINCT zone) FROM member_zones;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count distinct zones: %w", err)
	}
	return n, nil
}

func (r *PostgresMemberZoneRepo) CountChats(ctx context.Context, tx repository.Tx) (n int, err error) {
	start := time.Now()
	defer func() { observe("count_chats", start, err) }()
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	if err = ex.QueryRow(ctx, `SELECT COUNT(DISTINCT chat_id) FROM member_zones;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chats: %w", err)
	}
	return n, nil
}
