// internal/store/postgres.go
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgStore implements Store backed by PostgreSQL.
type pgStore struct {
	dbPool *pgxpool.Pool
	log    *zap.SugaredLogger
}

func NewPostgres(dbPool *pgxpool.Pool, log *zap.SugaredLogger) Store {
	return &pgStore{dbPool: dbPool, log: log}
}

// EnsureSchema creates the document tables if they do not already exist.
// Safe to call repeatedly (idempotent).
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS users (
  id uuid PRIMARY KEY,
  email text UNIQUE NOT NULL,
  name text NOT NULL,
  ip_address text,
  user_agent text,
  created_at timestamptz NOT NULL DEFAULT NOW(),
  last_login timestamptz
);
CREATE TABLE IF NOT EXISTS shop_credentials (
  owner_id text NOT NULL,
  shop text NOT NULL,
  access_token text NOT NULL,
  created_at timestamptz NOT NULL DEFAULT NOW(),
  PRIMARY KEY (owner_id, shop)
);
`)
	return err
}

func (p *pgStore) UpsertWaitlistUser(ctx context.Context, name, email, ip, userAgent string) (string, bool, error) {
	var id string
	err := p.dbPool.QueryRow(ctx, `SELECT id FROM users WHERE email=$1`, email).Scan(&id)
	if err == nil {
		if _, err := p.dbPool.Exec(ctx, `UPDATE users SET name=$1 WHERE id=$2`, name, id); err != nil {
			return "", false, err
		}
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", false, err
	}
	id = uuid.NewString()
	_, err = p.dbPool.Exec(ctx,
		`INSERT INTO users(id, email, name, ip_address, user_agent) VALUES ($1,$2,$3,NULLIF($4,''),NULLIF($5,''))`,
		id, email, name, ip, userAgent)
	if err != nil {
		return "", false, err
	}
	return id, false, nil
}

func (p *pgStore) ListUsers(ctx context.Context) ([]Record, error) {
	rows, err := p.dbPool.Query(ctx, `
		SELECT id, email, name, COALESCE(ip_address,''), COALESCE(user_agent,''), created_at, last_login
		FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Record{}
	for rows.Next() {
		var id, email, name, ip, ua string
		var createdAt time.Time
		var lastLogin *time.Time
		if err := rows.Scan(&id, &email, &name, &ip, &ua, &createdAt, &lastLogin); err != nil {
			return nil, err
		}
		rec := userRecord(id, name, email, ip, ua, createdAt)
		if lastLogin != nil {
			rec["lastLogin"] = lastLogin.UTC().Format(time.RFC3339)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *pgStore) DeleteUser(ctx context.Context, id string) error {
	_, err := p.dbPool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	return err
}

func (p *pgStore) SaveShopCredential(ctx context.Context, ownerID, shop, accessToken string) error {
	_, err := p.dbPool.Exec(ctx, `
		INSERT INTO shop_credentials(owner_id, shop, access_token) VALUES ($1,$2,$3)
		ON CONFLICT (owner_id, shop) DO UPDATE SET access_token=EXCLUDED.access_token, created_at=NOW()`,
		ownerID, shop, accessToken)
	return err
}

func (p *pgStore) GetShopCredential(ctx context.Context, ownerID, shop string) (ShopCredential, error) {
	var c ShopCredential
	err := p.dbPool.QueryRow(ctx,
		`SELECT owner_id, shop, access_token, created_at FROM shop_credentials WHERE owner_id=$1 AND shop=$2`,
		ownerID, shop).Scan(&c.OwnerID, &c.Shop, &c.AccessToken, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ShopCredential{}, ErrNotFound
	}
	if err != nil {
		return ShopCredential{}, err
	}
	return c, nil
}
