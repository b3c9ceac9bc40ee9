package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/radieske/odds-cache-service/internal/odds-service/model"
)

// Postgres implementa Store sobre database/sql + lib/pq
// OnQuery (opcional) é chamado uma vez por consulta enviada ao banco
type Postgres struct {
	DB      *sql.DB
	OnQuery func(op string)
}

// NewPostgres retorna uma instância do repositório de odds
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{DB: db} }

const oddsColumns = `o.id, o.sport, o.home_team, o.away_team, o.home_odds, o.draw_odds, o.away_odds,
		o.match_date, o.active, o.created_by, o.created_at, o.updated_at`

func (p *Postgres) query(op string) {
	if p.OnQuery != nil {
		p.OnQuery(op)
	}
}

func (p *Postgres) GetByID(ctx context.Context, id int64) (model.OddsRecord, error) {
	const q = `SELECT ` + oddsColumns + ` FROM odds o WHERE o.id = $1`

	p.query(OpGetByID)
	var rec model.OddsRecord
	var createdBy sql.NullInt64
	err := p.DB.QueryRowContext(ctx, q, id).Scan(
		&rec.ID, &rec.Sport, &rec.HomeTeam, &rec.AwayTeam,
		&rec.HomeOdds, &rec.DrawOdds, &rec.AwayOdds,
		&rec.MatchDate, &rec.Active, &createdBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.OddsRecord{}, ErrNotFound
	}
	if err != nil {
		return model.OddsRecord{}, fmt.Errorf("get odds %d: %w", id, err)
	}
	rec.CreatedBy = createdBy.Int64
	return rec, nil
}

func (p *Postgres) Create(ctx context.Context, rec model.OddsRecord) (model.OddsRecord, error) {
	const q = `
		INSERT INTO odds
		  (sport, home_team, away_team, home_odds, draw_odds, away_odds, match_date, active, created_by, created_at, updated_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id
	`
	p.query(OpCreate)
	err := p.DB.QueryRowContext(ctx, q,
		rec.Sport, rec.HomeTeam, rec.AwayTeam,
		rec.HomeOdds, rec.DrawOdds, rec.AwayOdds,
		rec.MatchDate, rec.Active, nullableID(rec.CreatedBy), rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return model.OddsRecord{}, fmt.Errorf("create odds: %w", err)
	}
	return rec, nil
}

func (p *Postgres) Update(ctx context.Context, rec model.OddsRecord) error {
	const q = `
		UPDATE odds SET
		  sport      = $2,
		  home_team  = $3,
		  away_team  = $4,
		  home_odds  = $5,
		  draw_odds  = $6,
		  away_odds  = $7,
		  match_date = $8,
		  active     = $9,
		  updated_at = $10
		WHERE id = $1
	`
	p.query(OpUpdate)
	res, err := p.DB.ExecContext(ctx, q,
		rec.ID, rec.Sport, rec.HomeTeam, rec.AwayTeam,
		rec.HomeOdds, rec.DrawOdds, rec.AwayOdds,
		rec.MatchDate, rec.Active, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update odds %d: %w", rec.ID, err)
	}
	return expectOneRow(res)
}

func (p *Postgres) SetActive(ctx context.Context, id int64, active bool, updatedAt time.Time) error {
	const q = `UPDATE odds SET active = $2, updated_at = $3 WHERE id = $1`

	p.query(OpSetActive)
	res, err := p.DB.ExecContext(ctx, q, id, active, updatedAt)
	if err != nil {
		return fmt.Errorf("set active odds %d: %w", id, err)
	}
	return expectOneRow(res)
}

func (p *Postgres) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM odds WHERE id = $1`

	p.query(OpDelete)
	res, err := p.DB.ExecContext(ctx, q, id)
	if err != nil {
		return false, fmt.Errorf("delete odds %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete odds %d: %w", id, err)
	}
	return n > 0, nil
}

// ListWithCreators resolve o criador no mesmo SELECT (LEFT JOIN users),
// nunca com uma consulta extra por linha
func (p *Postgres) ListWithCreators(ctx context.Context, f model.Filter) ([]model.OddsRecord, error) {
	q, args := listWithCreatorsQuery(f)

	p.query(OpListWithCreators)
	rows, err := p.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list odds with creators: %w", err)
	}
	defer rows.Close()

	out := []model.OddsRecord{}
	for rows.Next() {
		var rec model.OddsRecord
		var createdBy, userID sql.NullInt64
		var username, role sql.NullString
		if err := rows.Scan(
			&rec.ID, &rec.Sport, &rec.HomeTeam, &rec.AwayTeam,
			&rec.HomeOdds, &rec.DrawOdds, &rec.AwayOdds,
			&rec.MatchDate, &rec.Active, &createdBy, &rec.CreatedAt, &rec.UpdatedAt,
			&userID, &username, &role,
		); err != nil {
			return nil, fmt.Errorf("scan odds: %w", err)
		}
		rec.CreatedBy = createdBy.Int64
		if userID.Valid {
			rec.Creator = &model.Creator{ID: userID.Int64, Username: username.String, Role: model.Role(role.String)}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func listWithCreatorsQuery(f model.Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Sport != "" {
		where = append(where, "o.sport = "+arg(f.Sport))
	}
	if f.Active != nil {
		where = append(where, "o.active = "+arg(*f.Active))
	}
	if f.From != nil {
		where = append(where, "o.match_date >= "+arg(*f.From))
	}
	if f.To != nil {
		where = append(where, "o.match_date <= "+arg(*f.To))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + oddsColumns + `, u.id, u.username, u.role
		FROM odds o
		LEFT JOIN users u ON u.id = o.created_by`)
	if len(where) > 0 {
		b.WriteString("\n\t\tWHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString("\n\t\tORDER BY o.match_date, o.id")
	return b.String(), args
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
