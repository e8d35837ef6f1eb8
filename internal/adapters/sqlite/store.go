// Package sqlite implements the history repository on an embedded database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"geotrace/internal/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is the append-only analyses log. A single connection serializes
// concurrent writers.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and runs pending
// migrations.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := goose.Up(db, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Save(ctx context.Context, res domain.AnalysisResult) (int64, error) {
	reasons, err := json.Marshal(res.Threat.Reasons)
	if err != nil {
		return 0, fmt.Errorf("marshal reasons: %w", err)
	}

	out, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (domain, ip, country, region, city, lat, lon, isp, org, asn,
		                      threat_level, threat_score, threat_reasons, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		res.Domain, res.IP,
		res.Geo.Country, res.Geo.Region, res.Geo.City,
		nullable(res.Geo.Lat), nullable(res.Geo.Lon),
		res.Geo.ISP, res.Geo.Org, res.Geo.ASN,
		string(res.Threat.Level), res.Threat.Score, string(reasons),
		res.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert analysis: %w", err)
	}
	return out.LastInsertId()
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]domain.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, domain, ip, country, region, city, lat, lon, isp, org, asn,
		       threat_level, threat_score, threat_reasons, created_at
		FROM analyses
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var out []domain.HistoryRecord
	for rows.Next() {
		var (
			rec      domain.HistoryRecord
			lat, lon sql.NullFloat64
			level    string
			reasons  string
			created  string
		)
		if err := rows.Scan(
			&rec.ID, &rec.Domain, &rec.IP,
			&rec.Geo.Country, &rec.Geo.Region, &rec.Geo.City,
			&lat, &lon,
			&rec.Geo.ISP, &rec.Geo.Org, &rec.Geo.ASN,
			&level, &rec.Threat.Score, &reasons, &created,
		); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		if lat.Valid {
			v := lat.Float64
			rec.Geo.Lat = &v
		}
		if lon.Valid {
			v := lon.Float64
			rec.Geo.Lon = &v
		}
		rec.Threat.Level = domain.ThreatLevel(level)
		if err := json.Unmarshal([]byte(reasons), &rec.Threat.Reasons); err != nil {
			return nil, fmt.Errorf("unmarshal reasons: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			rec.CreatedAt = ts
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM analyses`)
	if err != nil {
		return fmt.Errorf("clear analyses: %w", err)
	}
	return nil
}

func nullable(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
