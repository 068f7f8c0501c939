package health

import (
	"context"
	"database/sql"
	"time"
)

const pingTimeout = 2 * time.Second

// Service reports process and dependency health.
type Service struct {
	DB          *sql.DB
	LLMProvider string
}

// NewService constructs a health service. db may be nil when repositories are in memory.
func NewService(db *sql.DB, llmProvider string) *Service {
	return &Service{DB: db, LLMProvider: llmProvider}
}

// Report is the health payload.
type Report struct {
	OK          bool   `json:"ok"`
	Database    string `json:"database"`
	LLMProvider string `json:"llmProvider"`
}

// Status pings the database when configured. OK is false only when a configured
// database is unreachable; an unconfigured LLM provider degrades features, not health.
func (s *Service) Status(ctx context.Context) Report {
	r := Report{OK: true, Database: "memory", LLMProvider: s.LLMProvider}
	if r.LLMProvider == "" {
		r.LLMProvider = "none"
	}
	if s.DB == nil {
		return r
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		r.OK = false
		r.Database = "down"
		return r
	}
	r.Database = "up"
	return r
}
