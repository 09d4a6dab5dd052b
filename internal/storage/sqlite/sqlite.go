//go:build sqlite

package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	sqlitedriver "modernc.org/sqlite" // CGO-less SQLite driver

	"leadsearch/internal/domain"
	"leadsearch/internal/storage"
)

// foldFunc lower-cases text with Unicode rules. SQLite's own LIKE and
// lower() only fold ASCII, which would make "ÉMILE" miss "Émile".
const foldFunc = "unicode_lower"

func init() {
	sqlitedriver.MustRegisterDeterministicScalarFunction(foldFunc, 1, func(_ *sqlitedriver.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case string:
			return strings.ToLower(v), nil
		case []byte:
			return strings.ToLower(string(v)), nil
		default:
			return v, nil
		}
	})
}

// Store reads leads from a SQLite database.
type Store struct {
	db *sqlx.DB
}

var (
	_ storage.Store      = (*Store)(nil)
	_ storage.LeadWriter = (*Store)(nil)
)

// New opens dsn, applies pending migrations and returns the store.
func New(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000; PRAGMA foreign_keys=ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// DB returns the underlying connection for stores sharing the database
// (audit log, sessions).
func (s *Store) DB() *sql.DB {
	return s.db.DB
}

// Status returns schema_migrations and schema_info summary for the given DSN without creating a Store.
func Status(dsn string) (string, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return "", err
	}
	defer db.Close()
	var latest, count int
	_ = db.QueryRow(`SELECT COALESCE(MAX(version),0), COUNT(1) FROM schema_migrations`).Scan(&latest, &count)
	var schemaVersion, minSupported int
	var appVersion, appliedAt string
	_ = db.QueryRow(`SELECT schema_version, min_supported_schema, app_version, applied_at FROM schema_info WHERE id=1`).Scan(&schemaVersion, &minSupported, &appVersion, &appliedAt)
	pending := 0
	if files, err := listMigrations(migrationsFS()); err == nil {
		for _, f := range files {
			var one int
			if db.QueryRow(`SELECT 1 FROM schema_migrations WHERE version=?`, f.version).Scan(&one) != nil {
				pending++
			}
		}
	}
	return fmt.Sprintf("schema_version=%d applied=%d latest=%d pending=%d app_version=%s applied_at=%s min_supported=%d", schemaVersion, count, latest, pending, appVersion, appliedAt, minSupported), nil
}

// leadRow mirrors the leads table for sqlx scanning.
type leadRow struct {
	ID              int64     `db:"lead_id"`
	OwnerID         int64     `db:"owner_id"`
	FirstName       string    `db:"fname"`
	LastName        string    `db:"lname"`
	FullName        string    `db:"full_name"`
	MainPhoneArea   string    `db:"main_phone_area"`
	MainPhone       string    `db:"main_phone"`
	SecondPhoneArea string    `db:"second_phone_area"`
	SecondPhone     string    `db:"second_phone"`
	Email           string    `db:"email"`
	Sex             string    `db:"sex"`
	City            string    `db:"city"`
	State           string    `db:"state"`
	CurrentStatus   string    `db:"current_status"`
	Office          string    `db:"name"`
	CRMID           string    `db:"crm_id"`
	MarketingID     string    `db:"mkt_id"`
	CompanyName     string    `db:"company_name"`
	RealDate        time.Time `db:"real_date"`
}

func (r leadRow) lead() domain.Lead {
	return domain.Lead{
		ID:              r.ID,
		OwnerID:         r.OwnerID,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		FullName:        r.FullName,
		MainPhoneArea:   r.MainPhoneArea,
		MainPhone:       r.MainPhone,
		SecondPhoneArea: r.SecondPhoneArea,
		SecondPhone:     r.SecondPhone,
		Email:           r.Email,
		Sex:             r.Sex,
		City:            r.City,
		State:           r.State,
		CurrentStatus:   r.CurrentStatus,
		Office:          r.Office,
		CRMID:           r.CRMID,
		MarketingID:     r.MarketingID,
		CompanyName:     r.CompanyName,
		RealDate:        r.RealDate.UTC(),
	}
}

func rowFromLead(l domain.Lead) leadRow {
	return leadRow{
		ID:              l.ID,
		OwnerID:         l.OwnerID,
		FirstName:       l.FirstName,
		LastName:        l.LastName,
		FullName:        l.FullName,
		MainPhoneArea:   l.MainPhoneArea,
		MainPhone:       l.MainPhone,
		SecondPhoneArea: l.SecondPhoneArea,
		SecondPhone:     l.SecondPhone,
		Email:           l.Email,
		Sex:             l.Sex,
		City:            l.City,
		State:           l.State,
		CurrentStatus:   l.CurrentStatus,
		Office:          l.Office,
		CRMID:           l.CRMID,
		MarketingID:     l.MarketingID,
		CompanyName:     l.CompanyName,
		RealDate:        l.RealDate.UTC(),
	}
}

// where builds the filter shared by the count and select statements.
// The column has already been checked against the whitelist.
func where(q storage.LeadQuery) (string, []any) {
	if q.Match == domain.MatchExact {
		return fmt.Sprintf(`WHERE owner_id = ? AND %s = ?`, q.Column), []any{q.OwnerID, q.Text}
	}
	return fmt.Sprintf(`WHERE owner_id = ? AND %s(%s) LIKE %s(?) ESCAPE '\'`, foldFunc, storage.SubstringExpr(q.Column), foldFunc), []any{q.OwnerID, q.Pattern()}
}

func (s *Store) CountLeads(ctx context.Context, q storage.LeadQuery) (int, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	clause, args := where(q)
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM leads `+clause, args...); err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return n, nil
}

func (s *Store) QueryLeads(ctx context.Context, q storage.LeadQuery) ([]domain.Lead, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	clause, args := where(q)
	query := `SELECT ` + storage.LeadColumns + ` FROM leads ` + clause + ` ` + storage.LeadOrder
	if q.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, q.Limit, q.Offset)
	}
	var rows []leadRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	out := make([]domain.Lead, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.lead())
	}
	return out, nil
}

const insertLead = `INSERT INTO leads (owner_id, fname, lname, full_name, main_phone_area, main_phone,
second_phone_area, second_phone, email, sex, city, state, current_status, name,
crm_id, mkt_id, company_name, real_date)
VALUES (:owner_id, :fname, :lname, :full_name, :main_phone_area, :main_phone,
:second_phone_area, :second_phone, :email, :sex, :city, :state, :current_status, :name,
:crm_id, :mkt_id, :company_name, :real_date)`

// InsertLeads writes leads in one transaction and returns them with their new IDs.
func (s *Store) InsertLeads(ctx context.Context, leads ...domain.Lead) ([]domain.Lead, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	out := make([]domain.Lead, 0, len(leads))
	for _, l := range leads {
		res, err := tx.NamedExecContext(ctx, insertLead, rowFromLead(l))
		if err != nil {
			return nil, fmt.Errorf("insert lead: %w", storage.WrapIfConflict(err))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		l.ID = id
		out = append(out, l)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
