package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moon-community/fto-queue-service/internal/domain"
)

// QueueRepository encapsulates queue persistence. Every method runs exactly
// one transaction; correctness under concurrent joins comes from row-level
// locking, never from in-process exclusion, so multiple service instances
// can share one database.
type QueueRepository interface {
	// Enroll inserts a new active entry for the actor, or returns
	// domain.ErrAlreadyQueued when an active entry exists. The existence
	// check takes FOR UPDATE locks on the actor's active rows so a second
	// concurrent join cannot slip between check and insert.
	Enroll(ctx context.Context, actorID int64, role domain.Role, displayName string, board domain.BoardRef) (*domain.QueueEntry, error)

	// ClaimOldestWaiting locks the oldest active entry of the given role on
	// the board, skipping rows locked by concurrent claimants, and retires
	// it together with the claimant entry in the same transaction. Returns
	// (nil, nil) when no waiting entry could be claimed.
	ClaimOldestWaiting(ctx context.Context, claimantID int64, role domain.Role, board domain.BoardRef) (*domain.QueueEntry, error)

	// FinishAllActive retires every active entry for the actor and returns
	// the retired entries; an empty slice means the actor was not queued.
	FinishAllActive(ctx context.Context, actorID int64) ([]domain.QueueEntry, error)

	// ListExpired returns active entries older than the TTL, oldest first.
	ListExpired(ctx context.Context, ttl time.Duration) ([]domain.QueueEntry, error)

	// Finish retires a single entry in its own transaction.
	Finish(ctx context.Context, queueID int64) error

	// ListActive returns all active entries for a board, oldest first.
	ListActive(ctx context.Context, board domain.BoardRef) ([]domain.QueueEntry, error)
}

type queueRepository struct {
	pool *pgxpool.Pool
}

// NewQueueRepository instantiates repository.
func NewQueueRepository(pool *pgxpool.Pool) QueueRepository {
	return &queueRepository{pool: pool}
}

const entryColumns = `queue_id, probationary_id, officer_id, display_name, board_channel_id, board_message_id, created_at, finished_at`

func (r *queueRepository) Enroll(ctx context.Context, actorID int64, role domain.Role, displayName string, board domain.BoardRef) (*domain.QueueEntry, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Locking read: holds any existing active row for this actor until
	// commit, serializing concurrent joins by the same identity.
	const lockQuery = `
        SELECT queue_id FROM queue
        WHERE (probationary_id = $1 OR officer_id = $1) AND finished_at IS NULL
        FOR UPDATE`
	rows, err := tx.Query(ctx, lockQuery, actorID)
	if err != nil {
		return nil, err
	}
	existing, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, domain.ErrAlreadyQueued
	}

	column := "probationary_id"
	if role == domain.RoleOfficer {
		column = "officer_id"
	}
	insertQuery := fmt.Sprintf(`
        INSERT INTO queue (%s, display_name, board_channel_id, board_message_id, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING queue_id, created_at`, column)

	entry := &domain.QueueEntry{DisplayName: displayName, Board: board}
	if role == domain.RoleOfficer {
		entry.OfficerID = &actorID
	} else {
		entry.ProbationaryID = &actorID
	}
	if err := tx.QueryRow(ctx, insertQuery, actorID, displayName, board.ChannelID, board.MessageID).
		Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return nil, err
	}

	// Insert-only transaction: commit now to keep the lock window short;
	// the pairing attempt runs in its own transaction.
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *queueRepository) ClaimOldestWaiting(ctx context.Context, claimantID int64, role domain.Role, board domain.BoardRef) (*domain.QueueEntry, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	column := "probationary_id"
	if role == domain.RoleOfficer {
		column = "officer_id"
	}
	// SKIP LOCKED is load-bearing: two simultaneous joins must not queue
	// behind each other's claim and deadlock; a locked candidate is
	// skipped in favor of the next-oldest.
	claimQuery := fmt.Sprintf(`
        SELECT %s FROM queue
        WHERE %s IS NOT NULL AND finished_at IS NULL
          AND board_channel_id = $1 AND board_message_id = $2
        ORDER BY created_at ASC
        LIMIT 1
        FOR UPDATE SKIP LOCKED`, entryColumns, column)

	peer, err := scanEntry(tx.QueryRow(ctx, claimQuery, board.ChannelID, board.MessageID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tx.Commit(ctx)
		}
		return nil, err
	}

	// Both sides transition to finished in the same transaction, or
	// neither does.
	const finishQuery = `UPDATE queue SET finished_at = NOW() WHERE queue_id = ANY($1) AND finished_at IS NULL`
	cmd, err := tx.Exec(ctx, finishQuery, []int64{claimantID, peer.ID})
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() != 2 {
		return nil, fmt.Errorf("pair finish affected %d rows, want 2", cmd.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return peer, nil
}

func (r *queueRepository) FinishAllActive(ctx context.Context, actorID int64) ([]domain.QueueEntry, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	lockQuery := fmt.Sprintf(`
        SELECT %s FROM queue
        WHERE (probationary_id = $1 OR officer_id = $1) AND finished_at IS NULL
        FOR UPDATE`, entryColumns)
	rows, err := tx.Query(ctx, lockQuery, actorID)
	if err != nil {
		return nil, err
	}
	entries, err := collectEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, tx.Commit(ctx)
	}

	ids := make([]int64, len(entries))
	for i := range entries {
		ids[i] = entries[i].ID
	}
	if _, err := tx.Exec(ctx, `UPDATE queue SET finished_at = NOW() WHERE queue_id = ANY($1)`, ids); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *queueRepository) ListExpired(ctx context.Context, ttl time.Duration) ([]domain.QueueEntry, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM queue
        WHERE finished_at IS NULL AND created_at < NOW() - $1::interval
        ORDER BY created_at ASC`, entryColumns)
	rows, err := r.pool.Query(ctx, query, ttl)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

func (r *queueRepository) Finish(ctx context.Context, queueID int64) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE queue SET finished_at = NOW() WHERE queue_id = $1 AND finished_at IS NULL`, queueID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *queueRepository) ListActive(ctx context.Context, board domain.BoardRef) ([]domain.QueueEntry, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM queue
        WHERE finished_at IS NULL AND board_channel_id = $1 AND board_message_id = $2
        ORDER BY created_at ASC`, entryColumns)
	rows, err := r.pool.Query(ctx, query, board.ChannelID, board.MessageID)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

func scanEntry(row pgx.Row) (*domain.QueueEntry, error) {
	var entry domain.QueueEntry
	if err := row.Scan(
		&entry.ID,
		&entry.ProbationaryID,
		&entry.OfficerID,
		&entry.DisplayName,
		&entry.Board.ChannelID,
		&entry.Board.MessageID,
		&entry.CreatedAt,
		&entry.FinishedAt,
	); err != nil {
		return nil, err
	}
	return &entry, nil
}

func collectEntries(rows pgx.Rows) ([]domain.QueueEntry, error) {
	defer rows.Close()
	var result []domain.QueueEntry
	for rows.Next() {
		var entry domain.QueueEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ProbationaryID,
			&entry.OfficerID,
			&entry.DisplayName,
			&entry.Board.ChannelID,
			&entry.Board.MessageID,
			&entry.CreatedAt,
			&entry.FinishedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
