package persist

import (
	"context"
	"fmt"
)

// JournalEntry is one simulation event of a run.
type JournalEntry struct {
	Frame    uint64
	SimTime  float64
	Kind     string // "spawn", "retire", "explosion", "obstacle_destroyed", "projectile"
	Unit     uint64
	Obstacle uint64
	X, Y     float64
	Value    float64 // damage or reward, depending on Kind
}

type JournalRepo struct {
	db *DB
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// AppendJournal atomically writes a batch of entries in a single transaction.
func (r *JournalRepo) AppendJournal(ctx context.Context, runID int64, entries []JournalEntry) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO run_journal (run_id, frame, sim_time, kind, unit, obstacle, x, y, value)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			runID, int64(e.Frame), e.SimTime, e.Kind, int64(e.Unit), int64(e.Obstacle), e.X, e.Y, e.Value,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Count returns the number of journal entries of a kind for a run; an empty
// kind counts every entry.
func (r *JournalRepo) Count(ctx context.Context, runID int64, kind string) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM run_journal WHERE run_id = $1 AND ($2 = '' OR kind = $2)`,
		runID, kind,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count journal: %w", err)
	}
	return n, nil
}
