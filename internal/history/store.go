package history

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/quotagraph/internal/contract"
	"github.com/huangsam/quotagraph/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for the sample history.
const (
	readingsTable   = "quotagraph_readings"
	rollupsTable    = "quotagraph_rollups"
	migrationsTable = "schema_migrations"
)

// SampleStoreImpl persists readings and rollups using various database backends.
type SampleStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
	connStr    string
}

var _ contract.SampleStore = &SampleStoreImpl{} // Compile-time check

// NewSampleStore initializes and returns a new SampleStore based on the backend type.
func NewSampleStore(backend schema.DatabaseBackend, connStr string) (*SampleStoreImpl, error) {
	var db *sql.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetHistoryDBFilePath()
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite history at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		driverName = "mysql"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL history: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL history: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled history
		return &SampleStoreImpl{backend: backend, connStr: connStr}, nil

	default:
		return nil, fmt.Errorf("unsupported history backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	if err := ensureSchema(db, backend); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SampleStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
		connStr:    connStr,
	}, nil
}

// ensureSchema applies every embedded up-migration for the backend. Each one
// is written with IF NOT EXISTS, so this is safe on an already migrated database.
func ensureSchema(db *sql.DB, backend schema.DatabaseBackend) error {
	dir := migrationsDir(backend)
	files, err := fs.Glob(migrationsFS, dir+"/*.up.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(files)
	for _, name := range files {
		body, err := migrationsFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(body)); err != nil {
			return fmt.Errorf("failed to apply %s: %w", name, err)
		}
	}
	return nil
}

// disabled reports whether the store is a no-op.
func (ss *SampleStoreImpl) disabled() bool {
	return ss.backend == schema.NoneBackend || ss.db == nil
}

// placeholders returns n comma-separated parameter placeholders starting at index from.
func (ss *SampleStoreImpl) placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		if ss.backend == schema.PostgreSQLBackend {
			parts[i] = fmt.Sprintf("$%d", from+i)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

// rangeClause builds a half-open filter on column; zero bounds are left open.
func (ss *SampleStoreImpl) rangeClause(column string, from int, startMs, endMs int64) (string, []any) {
	var conds []string
	var args []any
	if startMs != 0 {
		conds = append(conds, fmt.Sprintf("%s >= %s", column, ss.placeholders(from+len(args), 1)))
		args = append(args, startMs)
	}
	if endMs != 0 {
		conds = append(conds, fmt.Sprintf("%s < %s", column, ss.placeholders(from+len(args), 1)))
		args = append(args, endMs)
	}
	return strings.Join(conds, " AND "), args
}

// InsertReadings stores readings in one transaction, skipping known timestamps.
func (ss *SampleStoreImpl) InsertReadings(ctx context.Context, readings []schema.Reading) (int, error) {
	if ss.disabled() || len(readings) == 0 {
		return 0, nil
	}

	cols := "ts, five_hour_util, five_hour_resets_at, seven_day_util, seven_day_resets_at"
	var query string
	switch ss.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf("INSERT IGNORE INTO %s (%s) VALUES (%s)", readingsTable, cols, ss.placeholders(1, 5))
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (ts) DO NOTHING", readingsTable, cols, ss.placeholders(1, 5))
	default: // SQLite
		query = fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) VALUES (%s)", readingsTable, cols, ss.placeholders(1, 5))
	}

	tx, err := ss.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, r := range readings {
		res, err := stmt.ExecContext(ctx, r.Timestamp,
			nullFloat(r.FiveHourUtil), nullInt(r.FiveHourResetsAt),
			nullFloat(r.SevenDayUtil), nullInt(r.SevenDayResetsAt))
		if err != nil {
			return inserted, fmt.Errorf("failed to insert reading at %d: %w", r.Timestamp, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit readings: %w", err)
	}
	return inserted, nil
}

// ListReadings returns readings in [startMs, endMs) ordered by timestamp.
func (ss *SampleStoreImpl) ListReadings(ctx context.Context, startMs, endMs int64) ([]schema.Reading, error) {
	if ss.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT ts, five_hour_util, five_hour_resets_at, seven_day_util, seven_day_resets_at FROM %s", readingsTable)
	where, args := ss.rangeClause("ts", 1, startMs, endMs)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY ts"

	rows, err := ss.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.Reading
	for rows.Next() {
		var r schema.Reading
		var fiveUtil, sevenUtil sql.NullFloat64
		var fiveReset, sevenReset sql.NullInt64
		if err := rows.Scan(&r.Timestamp, &fiveUtil, &fiveReset, &sevenUtil, &sevenReset); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		r.FiveHourUtil = floatPtr(fiveUtil)
		r.FiveHourResetsAt = intPtr(fiveReset)
		r.SevenDayUtil = floatPtr(sevenUtil)
		r.SevenDayResetsAt = intPtr(sevenReset)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating readings: %w", err)
	}
	return results, nil
}

// UpsertRollups inserts or replaces rollups keyed by resolution and period start.
func (ss *SampleStoreImpl) UpsertRollups(ctx context.Context, rollups []schema.Rollup) error {
	if ss.disabled() || len(rollups) == 0 {
		return nil
	}

	cols := "resolution, period_start, period_end, five_hour_peak, five_hour_min, five_hour_avg, " +
		"seven_day_peak, seven_day_min, seven_day_avg, reset_count, sample_count"
	values := ss.placeholders(1, 11)
	var query string
	switch ss.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) AS new
			ON DUPLICATE KEY UPDATE period_end = new.period_end,
			five_hour_peak = new.five_hour_peak, five_hour_min = new.five_hour_min, five_hour_avg = new.five_hour_avg,
			seven_day_peak = new.seven_day_peak, seven_day_min = new.seven_day_min, seven_day_avg = new.seven_day_avg,
			reset_count = new.reset_count, sample_count = new.sample_count`, rollupsTable, cols, values)
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
			ON CONFLICT (resolution, period_start) DO UPDATE SET period_end = EXCLUDED.period_end,
			five_hour_peak = EXCLUDED.five_hour_peak, five_hour_min = EXCLUDED.five_hour_min, five_hour_avg = EXCLUDED.five_hour_avg,
			seven_day_peak = EXCLUDED.seven_day_peak, seven_day_min = EXCLUDED.seven_day_min, seven_day_avg = EXCLUDED.seven_day_avg,
			reset_count = EXCLUDED.reset_count, sample_count = EXCLUDED.sample_count`, rollupsTable, cols, values)
	default: // SQLite
		query = fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)", rollupsTable, cols, values)
	}

	tx, err := ss.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range rollups {
		if _, err := tx.ExecContext(ctx, query, string(r.Resolution), r.PeriodStart, r.PeriodEnd,
			nullFloat(r.FiveHourPeak), nullFloat(r.FiveHourMin), nullFloat(r.FiveHourAvg),
			nullFloat(r.SevenDayPeak), nullFloat(r.SevenDayMin), nullFloat(r.SevenDayAvg),
			r.ResetCount, r.SampleCount); err != nil {
			return fmt.Errorf("failed to upsert %s rollup at %d: %w", r.Resolution, r.PeriodStart, err)
		}
	}
	return tx.Commit()
}

// ListRollups returns rollups of one resolution whose period starts in [startMs, endMs).
func (ss *SampleStoreImpl) ListRollups(ctx context.Context, res schema.Resolution, startMs, endMs int64) ([]schema.Rollup, error) {
	if ss.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT period_start, period_end, five_hour_peak, five_hour_min, five_hour_avg,
		seven_day_peak, seven_day_min, seven_day_avg, reset_count, sample_count
		FROM %s WHERE resolution = %s`, rollupsTable, ss.placeholders(1, 1))
	args := []any{string(res)}
	where, rangeArgs := ss.rangeClause("period_start", 2, startMs, endMs)
	if where != "" {
		query += " AND " + where
		args = append(args, rangeArgs...)
	}
	query += " ORDER BY period_start"

	rows, err := ss.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rollups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.Rollup
	for rows.Next() {
		r := schema.Rollup{Resolution: res}
		var fp, fm, fa, sp, sm, sa sql.NullFloat64
		if err := rows.Scan(&r.PeriodStart, &r.PeriodEnd, &fp, &fm, &fa, &sp, &sm, &sa, &r.ResetCount, &r.SampleCount); err != nil {
			return nil, fmt.Errorf("failed to scan rollup: %w", err)
		}
		r.FiveHourPeak, r.FiveHourMin, r.FiveHourAvg = floatPtr(fp), floatPtr(fm), floatPtr(fa)
		r.SevenDayPeak, r.SevenDayMin, r.SevenDayAvg = floatPtr(sp), floatPtr(sm), floatPtr(sa)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rollups: %w", err)
	}
	return results, nil
}

// DeleteReadingsBefore removes raw readings older than cutoffMs.
func (ss *SampleStoreImpl) DeleteReadingsBefore(ctx context.Context, cutoffMs int64) (int64, error) {
	if ss.disabled() {
		return 0, nil
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE ts < %s", readingsTable, ss.placeholders(1, 1))
	res, err := ss.db.ExecContext(ctx, query, cutoffMs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete readings: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying DB connection.
func (ss *SampleStoreImpl) Close() error {
	if ss.db != nil {
		return ss.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (ss *SampleStoreImpl) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:      string(ss.backend),
		Connected:    ss.db != nil,
		RollupCounts: make(map[schema.Resolution]int),
	}
	if ss.disabled() {
		return status, nil
	}

	row := ss.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*), MIN(ts), MAX(ts) FROM %s", readingsTable))
	var oldest, latest sql.NullInt64
	if err := row.Scan(&status.TotalReadings, &oldest, &latest); err != nil {
		return status, fmt.Errorf("failed to get reading counts: %w", err)
	}
	if oldest.Valid {
		status.OldestReading = time.UnixMilli(oldest.Int64)
	}
	if latest.Valid {
		status.LatestReading = time.UnixMilli(latest.Int64)
	}

	rows, err := ss.db.QueryContext(ctx, fmt.Sprintf("SELECT resolution, COUNT(*) FROM %s GROUP BY resolution", rollupsTable))
	if err != nil {
		return status, fmt.Errorf("failed to get rollup counts: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var res string
		var count int
		if err := rows.Scan(&res, &count); err != nil {
			return status, fmt.Errorf("failed to scan rollup count: %w", err)
		}
		status.RollupCounts[schema.Resolution(res)] = count
	}
	if err := rows.Err(); err != nil {
		return status, fmt.Errorf("error iterating rollup counts: %w", err)
	}

	// Stores that were never migrated have no version table; report version 0.
	var version sql.NullInt64
	var dirty sql.NullBool
	versionQuery := fmt.Sprintf("SELECT version, dirty FROM %s LIMIT 1", migrationsTable)
	if err := ss.db.QueryRowContext(ctx, versionQuery).Scan(&version, &dirty); err == nil {
		status.SchemaVersion = uint(version.Int64)
		status.SchemaIsDirty = dirty.Bool
	}

	status.TableSizeBytes = ss.tableSizeBytes(ctx, status.TotalReadings)
	return status, nil
}

// tableSizeBytes estimates the on-disk size of the history tables.
func (ss *SampleStoreImpl) tableSizeBytes(ctx context.Context, totalReadings int) int64 {
	estimate := int64(totalReadings) * 64 // rough row width
	var size int64
	switch ss.backend {
	case schema.SQLiteBackend:
		row := ss.db.QueryRowContext(ctx, "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		if err := row.Scan(&size); err != nil {
			return 0
		}
		return size
	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(ss.connStr)
		if err != nil || cfg.DBName == "" {
			return estimate
		}
		query := "SELECT COALESCE(SUM(data_length + index_length), 0) FROM information_schema.tables WHERE table_schema = ? AND table_name IN (?, ?)"
		if err := ss.db.QueryRowContext(ctx, query, cfg.DBName, readingsTable, rollupsTable).Scan(&size); err != nil {
			return estimate
		}
		return size
	case schema.PostgreSQLBackend:
		query := "SELECT pg_total_relation_size($1) + pg_total_relation_size($2)"
		if err := ss.db.QueryRowContext(ctx, query, readingsTable, rollupsTable).Scan(&size); err != nil {
			return estimate
		}
		return size
	case schema.NoneBackend:
		return 0
	}
	return estimate
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	i := v.Int64
	return &i
}
