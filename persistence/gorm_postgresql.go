// persistence/gorm_postgresql.go
package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wfunc/partyserver/logger"
	"github.com/wfunc/partyserver/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// zapWriter routes gorm's logger through the application logger.
type zapWriter struct{}

func (zapWriter) Printf(format string, args ...interface{}) {
	logger.Log.Infof(format, args...)
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(dsn string) (*GormPostgreSQL, error) {
	gormLogger := gormlogger.New(
		zapWriter{},
		gormlogger.Config{
			SlowThreshold:             time.Second, // 慢SQL阈值
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening gorm postgres: %w", err)
	}

	// 获取通用数据库对象 sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := db.AutoMigrate(&models.GormGameRecord{}); err != nil {
		return nil, fmt.Errorf("migrating game records: %w", err)
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveGameRecord 保存游戏记录
func (p *GormPostgreSQL) SaveGameRecord(ctx context.Context, record *models.GameRecord) error {
	if record == nil {
		return ErrNilRecord
	}
	row, err := models.NewGormGameRecord(record)
	if err != nil {
		return err
	}
	if !record.CreatedAt.IsZero() {
		row.CreatedAt = record.CreatedAt
	}
	return p.db.WithContext(ctx).Create(row).Error
}

func (p *GormPostgreSQL) RecentGames(ctx context.Context, limit int) ([]*models.GameRecord, error) {
	var rows []models.GormGameRecord
	q := p.db.WithContext(ctx).Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*models.GameRecord, 0, len(rows))
	for i := range rows {
		r, err := rows[i].ToRecord()
		if err != nil {
			return nil, fmt.Errorf("decoding record %d: %w", rows[i].ID, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// LoadGameRecord loads one record by primary key.
func (p *GormPostgreSQL) LoadGameRecord(ctx context.Context, id uint) (*models.GameRecord, error) {
	var row models.GormGameRecord
	if err := p.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return row.ToRecord()
}

func (p *GormPostgreSQL) GameStats(ctx context.Context, variant string) (*models.GameStats, error) {
	var rows []struct {
		Reason string
		Total  int
	}
	q := p.db.WithContext(ctx).Model(&models.GormGameRecord{})
	if variant != "" {
		q = q.Where("variant = ?", variant)
	}
	if err := q.Select("reason, count(*) as total").Group("reason").Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := newStats(variant)
	for _, row := range rows {
		stats.ByReason[row.Reason] = row.Total
		stats.TotalGames += int64(row.Total)
	}
	return stats, nil
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
