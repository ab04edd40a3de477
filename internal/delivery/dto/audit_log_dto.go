package dto

import (
	"time"

	"healthsure/internal/domain/entity"
)

// Response DTOs

type AuditLogResponse struct {
	ID        int64       `json:"id"`
	Action    string      `json:"action"`
	Entity    string      `json:"entity"`
	EntityID  string      `json:"entity_id"`
	Metadata  entity.JSON `json:"metadata"`
	CreatedAt time.Time   `json:"created_at"`
}
