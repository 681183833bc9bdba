package session

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/doc-organizer/backend/internal/classify"
	"github.com/doc-organizer/backend/internal/organize"
	"github.com/marcboeker/go-duckdb"
)

// Placement states stored in the ledger.
const (
	PlacementPlanned = "planned"
	PlacementMoved   = "moved"
	PlacementFailed  = "failed"
	PlacementPending = "pending"
)

// PlacementRow is one ledger entry.
type PlacementRow struct {
	Seq         int    `json:"seq" msgpack:"seq"`
	Filename    string `json:"filename" msgpack:"filename"`
	Folder      string `json:"folder" msgpack:"folder"`
	Synopsis    string `json:"synopsis,omitempty" msgpack:"synopsis,omitempty"`
	Status      string `json:"status" msgpack:"status"`
	Destination string `json:"destination,omitempty" msgpack:"destination,omitempty"`
	Error       string `json:"error,omitempty" msgpack:"error,omitempty"`
}

// PlanStore records the placements proposed for each batch in a DuckDB file
// per batch, so a plan can be inspected or exported after the move.
type PlanStore struct {
	dir string
}

// NewPlanStore creates a plan store writing into dir.
func NewPlanStore(dir string) (*PlanStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating plan directory: %w", err)
	}
	return &PlanStore{dir: dir}, nil
}

// Path returns the database file of a batch.
func (ps *PlanStore) Path(batchID string) string {
	return filepath.Join(ps.dir, fmt.Sprintf("batch_%s.duckdb", batchID))
}

func (ps *PlanStore) open(batchID string) (*sql.DB, error) {
	connector, err := duckdb.NewConnector(ps.Path(batchID), func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA threads=1",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}
	return sql.OpenDB(connector), nil
}

// Record replaces the ledger of a batch with the given plan.
func (ps *PlanStore) Record(ctx context.Context, batchID string, plan []classify.Placement) error {
	if err := ps.Remove(batchID); err != nil {
		return fmt.Errorf("failed to replace plan: %w", err)
	}

	db, err := ps.open(batchID)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `
		CREATE TABLE placements (
			seq         INTEGER PRIMARY KEY,
			filename    VARCHAR NOT NULL,
			folder      VARCHAR NOT NULL,
			synopsis    VARCHAR,
			status      VARCHAR NOT NULL,
			destination VARCHAR,
			error       VARCHAR
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", "placements")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		for i, p := range plan {
			if err := appender.AppendRow(int32(i), p.Filename, p.Folder, p.Synopsis, PlacementPlanned, "", ""); err != nil {
				return fmt.Errorf("failed to append placement %d: %w", i, err)
			}
		}
		return appender.Flush()
	})
	if err != nil {
		return fmt.Errorf("appender error: %w", err)
	}

	fmt.Printf("[PlanStore %s] Recorded %d placements\n", shortID(batchID), len(plan))
	return nil
}

// MarkOutcomes stores the result of a reorganization run.
func (ps *PlanStore) MarkOutcomes(ctx context.Context, batchID string, report *organize.Report) error {
	if _, err := os.Stat(ps.Path(batchID)); err != nil {
		return fmt.Errorf("no plan recorded for batch %s: %w", batchID, err)
	}

	db, err := ps.open(batchID)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const update = `UPDATE placements SET status = ?, destination = ?, error = ? WHERE filename = ? AND folder = ?`

	mark := func(status string, o organize.Outcome) error {
		_, err := tx.ExecContext(ctx, update, status, o.Destination, o.Error, o.Filename, o.Folder)
		return err
	}
	for _, o := range report.Moved {
		if err := mark(PlacementMoved, o); err != nil {
			return fmt.Errorf("failed to mark moved placement: %w", err)
		}
	}
	for _, o := range report.Failed {
		if err := mark(PlacementFailed, o); err != nil {
			return fmt.Errorf("failed to mark failed placement: %w", err)
		}
	}
	for _, p := range report.Pending {
		if err := mark(PlacementPending, organize.Outcome{Placement: p}); err != nil {
			return fmt.Errorf("failed to mark pending placement: %w", err)
		}
	}

	return tx.Commit()
}

// Placements returns the ledger of a batch in plan order.
func (ps *PlanStore) Placements(ctx context.Context, batchID string) ([]PlacementRow, error) {
	if _, err := os.Stat(ps.Path(batchID)); err != nil {
		return nil, fmt.Errorf("no plan recorded for batch %s: %w", batchID, err)
	}

	db, err := ps.open(batchID)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT seq, filename, folder, COALESCE(synopsis, ''), status,
		       COALESCE(destination, ''), COALESCE(error, '')
		FROM placements
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query placements: %w", err)
	}
	defer rows.Close()

	out := make([]PlacementRow, 0)
	for rows.Next() {
		var r PlacementRow
		if err := rows.Scan(&r.Seq, &r.Filename, &r.Folder, &r.Synopsis, &r.Status, &r.Destination, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan placement: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Remove deletes the ledger of a batch, including DuckDB's write-ahead log.
func (ps *PlanStore) Remove(batchID string) error {
	path := ps.Path(batchID)
	os.Remove(path + ".wal")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove plan: %w", err)
	}
	return nil
}

// Batches lists the batch IDs that have a ledger on disk.
func (ps *PlanStore) Batches() ([]string, error) {
	entries, err := os.ReadDir(ps.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan plan directory: %w", err)
	}

	ids := make([]string, 0)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "batch_") || filepath.Ext(name) != ".duckdb" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, "batch_"), ".duckdb"))
	}
	return ids, nil
}
