package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	salesdomain "github.com/shroombros/shroom-api/internal/domains/sales/domain"
)

const (
	// MinutesPerStop is the naive per-delivery estimate used for suggestions.
	MinutesPerStop = 20
	// FallbackRegion groups orders whose customer has neither neighborhood nor city.
	FallbackRegion = "Other"
)

// OrderRef is the logistics read model of a sales order joined with its customer.
type OrderRef struct {
	ID            uuid.UUID
	CustomerID    uuid.UUID
	CustomerName  string
	Neighborhood  string
	City          string
	Status        salesdomain.Status
	Total         decimal.Decimal
	RequestedDate time.Time
}

// Region is the grouping key: neighborhood, else city, else FallbackRegion.
func (o OrderRef) Region() string {
	if n := strings.TrimSpace(o.Neighborhood); n != "" {
		return n
	}
	if c := strings.TrimSpace(o.City); c != "" {
		return c
	}
	return FallbackRegion
}

// Suggestion is a draft route covering every eligible order of one region.
type Suggestion struct {
	Name             string
	Region           string
	Orders           []OrderRef
	TotalOrders      int
	EstimatedMinutes int
}

// EligibleOrders keeps the orders that may be put on a route, preserving input order.
func EligibleOrders(orders []OrderRef) []OrderRef {
	out := make([]OrderRef, 0, len(orders))
	for _, order := range orders {
		if order.Status.Routable() {
			out = append(out, order)
		}
	}
	return out
}

// SuggestRoutes groups eligible orders by region. Regions appear in order of first appearance.
func SuggestRoutes(orders []OrderRef) []Suggestion {
	eligible := EligibleOrders(orders)
	suggestions := []Suggestion{}
	index := map[string]int{}
	for _, order := range eligible {
		region := order.Region()
		i, ok := index[region]
		if !ok {
			i = len(suggestions)
			index[region] = i
			suggestions = append(suggestions, Suggestion{Name: "Route " + region, Region: region})
		}
		suggestions[i].Orders = append(suggestions[i].Orders, order)
	}
	for i := range suggestions {
		suggestions[i].TotalOrders = len(suggestions[i].Orders)
		suggestions[i].EstimatedMinutes = suggestions[i].TotalOrders * MinutesPerStop
	}
	return suggestions
}
