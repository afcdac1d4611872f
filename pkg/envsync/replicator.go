// Package envsync copies the full content dataset from one environment's
// database into another in a single transaction on the target. Either every
// table lands or none do, which makes it the correctness baseline the
// per-request relation replacement deliberately trades away.
package envsync

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
)

// Tables lists every content table in FK dependency order. Repopulation runs
// in this order; the clearing pass runs in reverse so no delete ever hits a
// RESTRICT constraint.
var Tables = []string{
	"publishers",
	"creators",
	"games",
	"products",
	"labels",
	"host_references",
	"product_creators",
	"game_creators",
	"product_labels",
	"game_labels",
	"game_based_on",
}

// ErrSameStore is returned when source and target resolve to the same
// database. Running the sync against itself would clear the only copy.
var ErrSameStore = errors.New("source and target resolve to the same database")

// SameStore reports whether two postgres URLs point at the same database. It
// compares hostname, port and database name without dialing either side. An
// omitted port means the postgres default, so a DSN spelling the port out and
// one leaving it off still match. Only URL-form DSNs are accepted; keyword
// DSNs would parse without error and defeat the comparison.
func SameStore(sourceDSN, targetDSN string) (bool, error) {
	src, err := parsePostgresURL("source", sourceDSN)
	if err != nil {
		return false, err
	}
	tgt, err := parsePostgresURL("target", targetDSN)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(src.Hostname(), tgt.Hostname()) &&
		portOrDefault(src) == portOrDefault(tgt) &&
		src.Path == tgt.Path, nil
}

func parsePostgresURL(side, dsn string) (*url.URL, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s dsn: %w", side, err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return nil, fmt.Errorf("%s dsn must be a postgres:// url", side)
	}
	return u, nil
}

func portOrDefault(u *url.URL) string {
	if port := u.Port(); port != "" {
		return port
	}
	return "5432"
}

// TableResult reports how many rows one table received.
type TableResult struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}

// Report summarizes a completed sync.
type Report struct {
	Tables []TableResult `json:"tables"`
}

// Replicator copies content tables between two databases.
type Replicator struct {
	source *sqlx.DB
	target *sqlx.DB
	logger ectologger.Logger
}

// NewReplicator opens both sides from their DSNs. It refuses to construct
// when the DSNs resolve to the same database; that check runs before any
// connection is made. Each side is capped at a single connection.
func NewReplicator(sourceDSN, targetDSN string, logger ectologger.Logger) (*Replicator, error) {
	same, err := SameStore(sourceDSN, targetDSN)
	if err != nil {
		return nil, err
	}
	if same {
		return nil, ErrSameStore
	}

	source, err := sqlx.Open("postgres", sourceDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open source database: %w", err)
	}
	source.SetMaxOpenConns(1)

	target, err := sqlx.Open("postgres", targetDSN)
	if err != nil {
		source.Close()
		return nil, fmt.Errorf("failed to open target database: %w", err)
	}
	target.SetMaxOpenConns(1)

	return &Replicator{source: source, target: target, logger: logger}, nil
}

// Close closes both connections.
func (r *Replicator) Close() error {
	serr := r.source.Close()
	terr := r.target.Close()
	if serr != nil {
		return serr
	}
	return terr
}

// Run clears and repopulates every content table on the target inside one
// transaction. Any failure rolls the whole sync back, leaving the target
// exactly as it was.
func (r *Replicator) Run(ctx context.Context) (*Report, error) {
	ctx, span := tracing.StartSpan(ctx, "envsync.Replicator.Run")
	defer span.End()

	tx, err := r.target.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin target transaction: %w", err)
	}
	defer tx.Rollback()

	// Triggers on the target would reject reference rows mid-copy and
	// double-delete on the clearing pass; the session disables them and the
	// final state is a verbatim copy of a consistent source.
	if _, err := tx.ExecContext(ctx, "SET session_replication_role = replica"); err != nil {
		return nil, fmt.Errorf("failed to disable target triggers: %w", err)
	}

	for i := len(Tables) - 1; i >= 0; i-- {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+Tables[i]); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithField("table", Tables[i]).Error("failed to clear target table")
			return nil, fmt.Errorf("failed to clear %s: %w", Tables[i], err)
		}
	}

	report := &Report{}
	for _, table := range Tables {
		rows, err := r.copyTable(ctx, tx, table)
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).WithField("table", table).Error("failed to copy table")
			return nil, fmt.Errorf("failed to copy %s: %w", table, err)
		}
		report.Tables = append(report.Tables, TableResult{Table: table, Rows: rows})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sync: %w", err)
	}

	for _, t := range report.Tables {
		r.logger.WithContext(ctx).WithFields(map[string]any{
			"table": t.Table,
			"rows":  t.Rows,
		}).Info("synced table")
	}
	return report, nil
}

func (r *Replicator) copyTable(ctx context.Context, tx *sqlx.Tx, table string) (int, error) {
	rows, err := r.source.QueryxContext(ctx, "SELECT * FROM "+table)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return 0, err
	}

	count := 0
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return count, err
		}

		sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
		sb.InsertInto(table)
		sb.Cols(columns...)
		sb.Values(values...)

		query, args := sb.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return count, err
		}
		count++
	}
	return count, rows.Err()
}
