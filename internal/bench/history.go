package bench

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// HistoryFile is the benchmark database name inside the data directory.
const HistoryFile = "bench.db"

// History keeps benchmark results across invocations.
type History struct {
	db   *sql.DB
	path string
}

func OpenHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	h := &History{db: db, path: path}
	if err := h.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return h, nil
}

func (h *History) Close() error {
	return h.db.Close()
}

func (h *History) Path() string {
	return h.path
}

func (h *History) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS bench_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		name TEXT NOT NULL,
		strategy TEXT NOT NULL,
		ions INTEGER NOT NULL,
		iterations INTEGER NOT NULL,
		mean REAL NOT NULL,
		min REAL NOT NULL,
		max REAL NOT NULL,
		ions_per_second REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_bench_strategy ON bench_results(strategy, ions);
	`
	_, err := h.db.Exec(schema)
	return err
}

// Append stores one benchmark session and returns its id.
func (h *History) Append(ctx context.Context, results []Result) (string, error) {
	session := uuid.NewString()

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bench_results (session, timestamp, name, strategy, ions, iterations, mean, min, max, ions_per_second)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.ExecContext(ctx, session, r.Timestamp.UnixNano(), r.Name, r.Strategy,
			r.Ions, r.Iterations, r.Mean, r.Min, r.Max, r.IonsPerSecond); err != nil {
			return "", fmt.Errorf("insert %s/%d: %w", r.Strategy, r.Ions, err)
		}
	}
	return session, tx.Commit()
}

// List returns stored results in insertion order, optionally restricted to
// one configuration name.
func (h *History) List(ctx context.Context, name string) ([]Result, error) {
	query := `SELECT timestamp, name, strategy, ions, iterations, mean, min, max, ions_per_second
		FROM bench_results`
	args := []any{}
	if name != "" {
		query += ` WHERE name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY id`

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var r Result
		var ts int64
		if err := rows.Scan(&ts, &r.Name, &r.Strategy, &r.Ions, &r.Iterations,
			&r.Mean, &r.Min, &r.Max, &r.IonsPerSecond); err != nil {
			return nil, err
		}
		r.Timestamp = time.Unix(0, ts)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Series groups results by strategy, averaging repeated measurements of the
// same ion count. Counts are returned in ascending order.
func Series(results []Result) (counts []int, times map[string][]float64) {
	type key struct {
		strategy string
		ions     int
	}
	sum := make(map[key]float64)
	num := make(map[key]int)
	seen := make(map[int]bool)
	strategies := make(map[string]bool)

	for _, r := range results {
		k := key{r.Strategy, r.Ions}
		sum[k] += r.Mean
		num[k]++
		strategies[r.Strategy] = true
		if !seen[r.Ions] {
			seen[r.Ions] = true
			counts = append(counts, r.Ions)
		}
	}
	sort.Ints(counts)

	times = make(map[string][]float64, len(strategies))
	for s := range strategies {
		row := make([]float64, len(counts))
		for i, n := range counts {
			k := key{s, n}
			if num[k] > 0 {
				row[i] = sum[k] / float64(num[k])
			}
		}
		times[s] = row
	}
	return counts, times
}
