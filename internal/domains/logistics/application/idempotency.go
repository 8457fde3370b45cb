package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/shroombros/shroom-api/internal/domains/logistics/ports"
)

type normalizedCreateRoute struct {
	Name          string      `json:"name"`
	DriverID      uuid.UUID   `json:"driverId"`
	ScheduledDate string      `json:"scheduledDate,omitempty"`
	OrderIDs      []uuid.UUID `json:"orderIds"`
	Notes         string      `json:"notes,omitempty"`
}

// FingerprintCreateRoute builds a deterministic hash of a route request, excluding its idempotency key.
// Order ids keep their order because it decides stop positions.
func FingerprintCreateRoute(input ports.CreateRouteInput) (string, error) {
	normalized := normalizedCreateRoute{
		Name:     strings.TrimSpace(input.Name),
		DriverID: input.DriverID,
		OrderIDs: input.OrderIDs,
		Notes:    strings.TrimSpace(input.Notes),
	}
	if !input.ScheduledDate.IsZero() {
		normalized.ScheduledDate = input.ScheduledDate.Format("2006-01-02")
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
