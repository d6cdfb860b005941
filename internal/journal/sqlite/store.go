// Package sqlite provides a SQLite-backed roll journal implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/Taroc0/draw-steel/internal/journal"
	"github.com/Taroc0/draw-steel/internal/journal/sqlite/migrations"
	"github.com/Taroc0/draw-steel/internal/platform/storage/sqlitemigrate"
	"github.com/Taroc0/draw-steel/internal/rules/powerroll"
)

// Store persists roll records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite roll journal and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendRoll inserts one roll record.
func (s *Store) AppendRoll(ctx context.Context, record journal.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(record.ID)
	if id == "" {
		return fmt.Errorf("record id is required")
	}
	userID := strings.TrimSpace(record.UserID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(record.Formula) == "" {
		return fmt.Errorf("formula is required")
	}
	rolledAt := record.RolledAt.UTC()
	if rolledAt.IsZero() {
		rolledAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO rolls (
		   id,
		   user_id,
		   roll_type,
		   formula,
		   flavor,
		   total,
		   tier,
		   net_boon,
		   critical,
		   nat20,
		   private,
		   rolled_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		userID,
		int32(record.Type),
		record.Formula,
		record.Flavor,
		record.Total,
		int32(record.Tier),
		record.NetBoon,
		boolToNullInt(record.Critical),
		boolToNullInt(record.Nat20),
		boolToInt(record.Private),
		toMillis(rolledAt),
	)
	if err != nil {
		if isRollUniqueViolation(err) {
			return journal.ErrAlreadyExists
		}
		return fmt.Errorf("append roll: %w", err)
	}
	return nil
}

// GetRoll returns one roll record by id.
func (s *Store) GetRoll(ctx context.Context, id string) (journal.Record, error) {
	if err := ctx.Err(); err != nil {
		return journal.Record{}, err
	}
	if s == nil || s.sqlDB == nil {
		return journal.Record{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return journal.Record{}, fmt.Errorf("record id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, user_id, roll_type, formula, flavor,
		        total, tier, net_boon, critical, nat20, private, rolled_at
		   FROM rolls
		  WHERE id = ?`,
		id,
	)
	record, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return journal.Record{}, journal.ErrNotFound
		}
		return journal.Record{}, fmt.Errorf("get roll: %w", err)
	}
	return record, nil
}

// ListRolls returns one page of a user's roll records, newest first. The
// page token is the id of the last record on the previous page.
func (s *Store) ListRolls(ctx context.Context, userID string, pageSize int, pageToken string) (journal.Page, error) {
	if err := ctx.Err(); err != nil {
		return journal.Page{}, err
	}
	if s == nil || s.sqlDB == nil {
		return journal.Page{}, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return journal.Page{}, fmt.Errorf("user id is required")
	}
	if pageSize <= 0 {
		return journal.Page{}, fmt.Errorf("page size must be greater than zero")
	}
	pageToken = strings.TrimSpace(pageToken)

	page := journal.Page{
		Records: make([]journal.Record, 0, pageSize),
	}

	var (
		rows *sql.Rows
		err  error
	)
	if pageToken == "" {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, user_id, roll_type, formula, flavor,
			        total, tier, net_boon, critical, nat20, private, rolled_at
			   FROM rolls
			  WHERE user_id = ?
			  ORDER BY rolled_at DESC, id DESC
			  LIMIT ?`,
			userID,
			pageSize+1,
		)
	} else {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, user_id, roll_type, formula, flavor,
			        total, tier, net_boon, critical, nat20, private, rolled_at
			   FROM rolls
			  WHERE user_id = ?
			    AND (rolled_at, id) < (
			          SELECT rolled_at, id FROM rolls WHERE id = ?
			        )
			  ORDER BY rolled_at DESC, id DESC
			  LIMIT ?`,
			userID,
			pageToken,
			pageSize+1,
		)
	}
	if err != nil {
		return journal.Page{}, fmt.Errorf("list rolls: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return journal.Page{}, fmt.Errorf("list rolls: %w", err)
		}
		page.Records = append(page.Records, record)
	}
	if err := rows.Err(); err != nil {
		return journal.Page{}, fmt.Errorf("list rolls: %w", err)
	}
	if len(page.Records) > pageSize {
		page.NextPageToken = page.Records[pageSize-1].ID
		page.Records = page.Records[:pageSize]
	}

	return page, nil
}

func scanRecord(scan func(dest ...any) error) (journal.Record, error) {
	var record journal.Record
	var rollType int32
	var tier int32
	var critical sql.NullInt64
	var nat20 sql.NullInt64
	var private int64
	var rolledAt int64
	err := scan(
		&record.ID,
		&record.UserID,
		&rollType,
		&record.Formula,
		&record.Flavor,
		&record.Total,
		&tier,
		&record.NetBoon,
		&critical,
		&nat20,
		&private,
		&rolledAt,
	)
	if err != nil {
		return journal.Record{}, err
	}
	record.Type = powerroll.Type(rollType)
	record.Tier = powerroll.Tier(tier)
	record.Critical = nullIntToBool(critical)
	record.Nat20 = nullIntToBool(nat20)
	record.Private = private != 0
	record.RolledAt = fromMillis(rolledAt)
	return record, nil
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}

func boolToNullInt(value *bool) any {
	if value == nil {
		return nil
	}
	return boolToInt(*value)
}

func nullIntToBool(value sql.NullInt64) *bool {
	if !value.Valid {
		return nil
	}
	result := value.Int64 != 0
	return &result
}

func isRollUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "rolls.id")
}

var _ journal.Store = (*Store)(nil)
