package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// RunRow is one recorded simulation run.
type RunRow struct {
	ID         int64
	Level      string
	Seed       int64
	Ticks      int64
	SimTime    float64
	Kills      int
	Leaks      int
	Explosions int
	Gold       int
	Digest     string // hex blake2b of the final snapshot
	StartedAt  time.Time
	FinishedAt *time.Time
}

// RunResult is written when a run ends.
type RunResult struct {
	Ticks      int64
	SimTime    float64
	Kills      int
	Leaks      int
	Explosions int
	Gold       int
	Digest     string
}

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Start inserts a run and returns its id.
func (r *RunRepo) Start(ctx context.Context, level string, seed int64) (int64, error) {
	var id int64
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO runs (level, seed) VALUES ($1, $2) RETURNING id`,
		level, seed,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("start run: %w", err)
	}
	return id, nil
}

// Finish stores the outcome of a run.
func (r *RunRepo) Finish(ctx context.Context, id int64, res RunResult) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE runs SET ticks = $2, sim_time = $3, kills = $4, leaks = $5,
		        explosions = $6, gold = $7, digest = $8, finished_at = now()
		 WHERE id = $1`,
		id, res.Ticks, res.SimTime, res.Kills, res.Leaks, res.Explosions, res.Gold, res.Digest,
	)
	if err != nil {
		return fmt.Errorf("finish run %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finish run %d: no such run", id)
	}
	return nil
}

// Load returns a run by id, or nil if it does not exist.
func (r *RunRepo) Load(ctx context.Context, id int64) (*RunRow, error) {
	row := &RunRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, level, seed, ticks, sim_time, kills, leaks, explosions, gold,
		        digest, started_at, finished_at
		 FROM runs WHERE id = $1`, id,
	).Scan(
		&row.ID, &row.Level, &row.Seed, &row.Ticks, &row.SimTime, &row.Kills, &row.Leaks,
		&row.Explosions, &row.Gold, &row.Digest, &row.StartedAt, &row.FinishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// FinishedDigests returns the digests of finished runs of a level and seed,
// newest first. Replays of the same seed must agree.
func (r *RunRepo) FinishedDigests(ctx context.Context, level string, seed int64, limit int) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT digest FROM runs
		 WHERE level = $1 AND seed = $2 AND finished_at IS NOT NULL
		 ORDER BY id DESC LIMIT $3`,
		level, seed, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query digests: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
