package api

import (
	"github.com/starford/tempus/internal/models"
)

// ValueRecord is the wire form of every temporal value (aliased from the models layer).
type ValueRecord = models.ValueRecord

// ArithmeticRequest is the body of /add and /subtract.
type ArithmeticRequest = models.ArithmeticRequest

// DifferenceRequest is the body of /until and /since.
type DifferenceRequest = models.DifferenceRequest

// RoundRequest is the body of /round.
type RoundRequest = models.RoundRequest

// DurationRoundRequest is the body of /duration/round.
type DurationRoundRequest = models.DurationRoundRequest

// DurationTotalRequest is the body of /duration/total.
type DurationTotalRequest = models.DurationTotalRequest

// DurationPairRequest is the body of /duration/add and /duration/compare.
type DurationPairRequest = models.DurationPairRequest

// ResolveRequest is the body of /resolve.
type ResolveRequest = models.ResolveRequest

// WithRequest is the body of /with.
type WithRequest = models.WithRequest

// ZoneListResponse wraps catalog zones.
type ZoneListResponse struct {
	Zones []models.ZoneInfo `json:"zones" validate:"required"`
}

// OptionsResponse lists accepted option values and the registered calendars.
type OptionsResponse struct {
	Options   map[string][]string `json:"options" validate:"required"`
	Calendars []string            `json:"calendars" example:"gregory,iso8601" validate:"required"`
}
