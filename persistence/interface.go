// persistence/interface.go
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/wfunc/partyserver/config"
	"github.com/wfunc/partyserver/models"
)

// Archive 已结束对局的存档接口
type Archive interface {
	SaveGameRecord(ctx context.Context, record *models.GameRecord) error
	// RecentGames returns up to limit records, newest first.
	RecentGames(ctx context.Context, limit int) ([]*models.GameRecord, error)
	// GameStats aggregates one variant, or all variants when variant is empty.
	GameStats(ctx context.Context, variant string) (*models.GameStats, error)
	// LoadGameRecord returns ErrRecordNotFound for unknown ids.
	LoadGameRecord(ctx context.Context, id uint) (*models.GameRecord, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrNilRecord      = errors.New("nil game record")
)

// New opens the archive selected by cfg.Driver.
func New(cfg config.DatabaseConfig) (Archive, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return NewMemoryArchive(), nil
	case config.DriverGorm:
		return NewGormPostgreSQL(cfg.Postgres.DSN())
	case config.DriverPostgres:
		return NewPostgreSQL(cfg.Postgres.DSN())
	default:
		return nil, fmt.Errorf("unknown archive driver %q", cfg.Driver)
	}
}

func newStats(variant string) *models.GameStats {
	return &models.GameStats{Variant: variant, ByReason: make(map[string]int)}
}
