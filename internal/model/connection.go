package model

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Connection holds per-service integration config (openai, ollama, tailscale).
type Connection struct {
	ID        int64          `db:"id" json:"id"`
	Service   string         `db:"service" json:"service"`
	Enabled   bool           `db:"enabled" json:"enabled"`
	Config    sql.NullString `db:"config" json:"-"`
	Status    string         `db:"status" json:"status"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

const (
	ServiceOpenAI    = "openai"
	ServiceOllama    = "ollama"
	ServiceTailscale = "tailscale"
)

// DecodeConfig unmarshals the JSON config blob into dst. A missing config is
// not an error; dst is left untouched.
func (c *Connection) DecodeConfig(dst interface{}) error {
	if !c.Config.Valid || c.Config.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(c.Config.String), dst)
}
