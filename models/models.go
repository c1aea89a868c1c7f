// models/models.go
package models

import (
	"time"
)

// Outcome values for PlayerInfo.
const (
	OutcomeWin  = "win"
	OutcomeLose = "lose"
)

// GameRecord 游戏记录模型
type GameRecord struct {
	ID        uint              `json:"id"`
	RoomCode  string            `json:"room_code"`
	Variant   string            `json:"variant"`
	Winner    string            `json:"winner"`
	Reason    string            `json:"reason"`
	Players   []PlayerInfo      `json:"players"`
	Reveal    map[string]string `json:"reveal,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// PlayerInfo 玩家信息（用于游戏记录）
type PlayerInfo struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
	Outcome  string `json:"outcome"` // win/lose
}

// GameStats aggregates archived games of one variant.
type GameStats struct {
	Variant    string         `json:"variant"`
	TotalGames int64          `json:"total_games"`
	ByReason   map[string]int `json:"by_reason"`
}
