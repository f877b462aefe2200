// Package events publishes plate domain events to RabbitMQ.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const PlateRegisteredQueue = "plate.registered"

type PlateRegistered struct {
	PlateID      uuid.UUID `json:"plate_id"`
	UserID       string    `json:"user_id"`
	RegionID     string    `json:"region_id"`
	Serial       string    `json:"serial"`
	Points       int       `json:"points"`
	GlobalClaim  bool      `json:"global_claim"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Noop drops every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) PublishPlateRegistered(context.Context, PlateRegistered) error {
	return nil
}
