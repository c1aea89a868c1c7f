// models/gorm_models.go
package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

// GormGameRecord 游戏记录模型
type GormGameRecord struct {
	gorm.Model
	RoomCode string `gorm:"index;size:16;not null"`
	Variant  string `gorm:"index;size:32;not null"`
	Winner   string `gorm:"not null"`
	Reason   string `gorm:"size:64;not null"`
	Players  []byte `gorm:"type:jsonb;not null"`
	Reveal   []byte `gorm:"type:jsonb"`
}

func (GormGameRecord) TableName() string {
	return "game_records"
}

// NewGormGameRecord converts a record for storage.
func NewGormGameRecord(r *GameRecord) (*GormGameRecord, error) {
	players, err := json.Marshal(r.Players)
	if err != nil {
		return nil, err
	}
	reveal, err := json.Marshal(r.Reveal)
	if err != nil {
		return nil, err
	}
	return &GormGameRecord{
		RoomCode: r.RoomCode,
		Variant:  r.Variant,
		Winner:   r.Winner,
		Reason:   r.Reason,
		Players:  players,
		Reveal:   reveal,
	}, nil
}

// ToRecord converts back to the domain record.
func (g *GormGameRecord) ToRecord() (*GameRecord, error) {
	r := &GameRecord{
		ID:        g.ID,
		RoomCode:  g.RoomCode,
		Variant:   g.Variant,
		Winner:    g.Winner,
		Reason:    g.Reason,
		CreatedAt: g.CreatedAt,
	}
	if err := json.Unmarshal(g.Players, &r.Players); err != nil {
		return nil, err
	}
	if len(g.Reveal) > 0 {
		if err := json.Unmarshal(g.Reveal, &r.Reveal); err != nil {
			return nil, err
		}
	}
	return r, nil
}
