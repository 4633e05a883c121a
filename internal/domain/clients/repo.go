package clients

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrEmptyName = errors.New("clients: empty name")

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Create returns the existing client when the name is taken.
func (r *Repo) Create(ctx context.Context, name string) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO clients (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING
		RETURNING id, name, active, created_at
	`, name)
	var c Client
	err := row.Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.GetByName(ctx, name)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Client, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, active, created_at
		FROM clients WHERE id = $1
	`, id)
	return scanOne(row)
}

func (r *Repo) GetByName(ctx context.Context, name string) (*Client, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, active, created_at
		FROM clients WHERE name = $1
	`, name)
	return scanOne(row)
}

func (r *Repo) List(ctx context.Context, onlyActive bool) ([]Client, error) {
	q := `SELECT id, name, active, created_at FROM clients`
	if onlyActive {
		q += ` WHERE active = TRUE`
	}
	q += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) Rename(ctx context.Context, id int64, name string) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE clients SET name=$2 WHERE id=$1
		RETURNING id, name, active, created_at
	`, id, name)
	return scanOne(row)
}

func (r *Repo) SetActive(ctx context.Context, id int64, active bool) (*Client, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE clients SET active=$2 WHERE id=$1
		RETURNING id, name, active, created_at
	`, id, active)
	return scanOne(row)
}

// scanOne returns nil, nil when no row matched.
func scanOne(row pgx.Row) (*Client, error) {
	var c Client
	if err := row.Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
