// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL 驱动

	"github.com/wfunc/partyserver/models"
)

const pingTimeout = 5 * time.Second

// PostgreSQL 数据库实现
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(dsn string) (*PostgreSQL, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables creates the archive table. The layout matches the gorm model so
// both drivers can share one database.
func initTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS game_records (
            id BIGSERIAL PRIMARY KEY,
            created_at TIMESTAMPTZ,
            updated_at TIMESTAMPTZ,
            deleted_at TIMESTAMPTZ,
            room_code VARCHAR(16) NOT NULL,
            variant VARCHAR(32) NOT NULL,
            winner TEXT NOT NULL,
            reason VARCHAR(64) NOT NULL,
            players JSONB NOT NULL,
            reveal JSONB
        )
    `)
	if err != nil {
		return fmt.Errorf("creating game_records: %w", err)
	}

	// 创建索引以提高查询性能
	_, err = db.ExecContext(ctx, `
        CREATE INDEX IF NOT EXISTS idx_game_records_room_code ON game_records(room_code);
        CREATE INDEX IF NOT EXISTS idx_game_records_variant ON game_records(variant);
        CREATE INDEX IF NOT EXISTS idx_game_records_deleted_at ON game_records(deleted_at);
    `)
	return err
}

// SaveGameRecord 保存游戏记录
func (p *PostgreSQL) SaveGameRecord(ctx context.Context, record *models.GameRecord) error {
	if record == nil {
		return ErrNilRecord
	}
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}
	reveal, err := json.Marshal(record.Reveal)
	if err != nil {
		return err
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
        INSERT INTO game_records (created_at, updated_at, room_code, variant, winner, reason, players, reveal)
        VALUES ($1, $1, $2, $3, $4, $5, $6, $7)
    `
	_, err = p.db.ExecContext(ctx, query,
		createdAt, record.RoomCode, record.Variant, record.Winner, record.Reason, players, reveal)
	return err
}

const selectRecord = `
        SELECT id, room_code, variant, winner, reason, players, reveal, created_at
        FROM game_records
        WHERE deleted_at IS NULL
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.GameRecord, error) {
	var (
		r       models.GameRecord
		players []byte
		reveal  []byte
	)
	if err := row.Scan(&r.ID, &r.RoomCode, &r.Variant, &r.Winner, &r.Reason, &players, &reveal, &r.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(players, &r.Players); err != nil {
		return nil, err
	}
	if len(reveal) > 0 {
		if err := json.Unmarshal(reveal, &r.Reveal); err != nil {
			return nil, err
		}
	}
	return &r, nil
}

func (p *PostgreSQL) RecentGames(ctx context.Context, limit int) ([]*models.GameRecord, error) {
	query := selectRecord + ` ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.GameRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadGameRecord 按 id 读取一条记录
func (p *PostgreSQL) LoadGameRecord(ctx context.Context, id uint) (*models.GameRecord, error) {
	r, err := scanRecord(p.db.QueryRowContext(ctx, selectRecord+` AND id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	return r, err
}

func (p *PostgreSQL) GameStats(ctx context.Context, variant string) (*models.GameStats, error) {
	rows, err := p.db.QueryContext(ctx, `
        SELECT reason, COUNT(*)
        FROM game_records
        WHERE deleted_at IS NULL AND ($1 = '' OR variant = $1)
        GROUP BY reason
    `, variant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := newStats(variant)
	for rows.Next() {
		var (
			reason string
			total  int
		)
		if err := rows.Scan(&reason, &total); err != nil {
			return nil, err
		}
		stats.ByReason[reason] = total
		stats.TotalGames += int64(total)
	}
	return stats, rows.Err()
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
