package domain

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	salesdomain "github.com/shroombros/shroom-api/internal/domains/sales/domain"
)

func ref(status salesdomain.Status, neighborhood, city string) OrderRef {
	return OrderRef{ID: uuid.New(), CustomerID: uuid.New(), Status: status, Neighborhood: neighborhood, City: city}
}

func TestOrderRef_Region(t *testing.T) {
	assert.Equal(t, "Batel", ref(salesdomain.StatusReady, "Batel", "Curitiba").Region())
	assert.Equal(t, "Curitiba", ref(salesdomain.StatusReady, "  ", "Curitiba").Region())
	assert.Equal(t, FallbackRegion, ref(salesdomain.StatusReady, "", "").Region())
}

func TestEligibleOrders_KeepsReadyAndConfirmed(t *testing.T) {
	orders := []OrderRef{
		ref(salesdomain.StatusPending, "A", ""),
		ref(salesdomain.StatusConfirmed, "A", ""),
		ref(salesdomain.StatusPreparing, "A", ""),
		ref(salesdomain.StatusReady, "A", ""),
		ref(salesdomain.StatusInRoute, "A", ""),
		ref(salesdomain.StatusDelivered, "A", ""),
		ref(salesdomain.StatusCancelled, "A", ""),
	}

	eligible := EligibleOrders(orders)
	require.Len(t, eligible, 2)
	assert.Equal(t, orders[1].ID, eligible[0].ID)
	assert.Equal(t, orders[3].ID, eligible[1].ID)
}

func TestSuggestRoutes_GroupsByRegionInFirstSeenOrder(t *testing.T) {
	a1 := ref(salesdomain.StatusReady, "Batel", "Curitiba")
	b1 := ref(salesdomain.StatusConfirmed, "", "Pinhais")
	skipped := ref(salesdomain.StatusPending, "Batel", "Curitiba")
	a2 := ref(salesdomain.StatusConfirmed, "Batel", "Curitiba")
	other := ref(salesdomain.StatusReady, "", "")

	got := SuggestRoutes([]OrderRef{a1, b1, skipped, a2, other})

	want := []Suggestion{
		{Name: "Route Batel", Region: "Batel", Orders: []OrderRef{a1, a2}, TotalOrders: 2, EstimatedMinutes: 40},
		{Name: "Route Pinhais", Region: "Pinhais", Orders: []OrderRef{b1}, TotalOrders: 1, EstimatedMinutes: 20},
		{Name: "Route Other", Region: "Other", Orders: []OrderRef{other}, TotalOrders: 1, EstimatedMinutes: 20},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestSuggestRoutes_EmptyInputYieldsEmptyList(t *testing.T) {
	got := SuggestRoutes(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = SuggestRoutes([]OrderRef{ref(salesdomain.StatusDelivered, "A", "")})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSuggestRoutes_CoversEveryEligibleOrderOnce(t *testing.T) {
	regions := []string{"Batel", "Centro", "", "Água Verde"}
	statuses := []salesdomain.Status{salesdomain.StatusReady, salesdomain.StatusConfirmed, salesdomain.StatusPending}
	var orders []OrderRef
	for i := 0; i < 60; i++ {
		orders = append(orders, ref(statuses[i%len(statuses)], regions[i%len(regions)], fmt.Sprintf("City %d", i%3)))
	}

	seen := map[uuid.UUID]int{}
	for _, suggestion := range SuggestRoutes(orders) {
		assert.Equal(t, len(suggestion.Orders), suggestion.TotalOrders)
		assert.Equal(t, suggestion.TotalOrders*MinutesPerStop, suggestion.EstimatedMinutes)
		for _, order := range suggestion.Orders {
			assert.Equal(t, suggestion.Region, order.Region())
			seen[order.ID]++
		}
	}
	eligible := EligibleOrders(orders)
	require.Len(t, seen, len(eligible))
	for _, order := range eligible {
		assert.Equal(t, 1, seen[order.ID])
	}
}
