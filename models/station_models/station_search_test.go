package station_models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapcharge/backend/models/shared_models"
)

func TestDistanceKm(t *testing.T) {
	// Pune city center to Shivajinagar, roughly 2 km.
	d := DistanceKm(18.5204, 73.8567, 18.5308, 73.8470)
	assert.InDelta(t, 1.5, d, 1.0)

	// Same point is zero.
	assert.InDelta(t, 0, DistanceKm(18.5204, 73.8567, 18.5204, 73.8567), 1e-9)

	// Pune to Mumbai, roughly 120 km great-circle.
	d = DistanceKm(18.5204, 73.8567, 19.0760, 72.8777)
	assert.InDelta(t, 120, d, 15)
}

func TestParsePowerKW(t *testing.T) {
	assert.Equal(t, 22.0, ParsePowerKW("22kW"))
	assert.Equal(t, 7.4, ParsePowerKW("7.4 kW"))
	assert.Equal(t, 50.0, ParsePowerKW("DC 50kW fast"))
	assert.Equal(t, 0.0, ParsePowerKW("unknown"))
	assert.Equal(t, 0.0, ParsePowerKW(""))
}

func testStation() Station {
	return Station{
		Title:                 "Green Charge Hub",
		Location:              "Baner Road",
		HostName:              "Asha",
		ConnectorType:         "Type 2",
		PowerOutput:           "22kW",
		PricePerHour:          150,
		Status:                shared_models.StationStatusAvailable,
		SupportedVehicleTypes: []string{"2W", "4W"},
		Lat:                   18.55,
		Lng:                   73.78,
	}
}

func TestSearchFilterMatches(t *testing.T) {
	s := testStation()

	assert.True(t, SearchFilter{}.Matches(&s))
	assert.True(t, SearchFilter{Status: "AVAILABLE"}.Matches(&s))
	assert.False(t, SearchFilter{Status: "OFFLINE"}.Matches(&s))

	assert.True(t, SearchFilter{VehicleType: "2W"}.Matches(&s))
	s2 := s
	s2.SupportedVehicleTypes = []string{"4W"}
	assert.False(t, SearchFilter{VehicleType: "2W"}.Matches(&s2))

	assert.True(t, SearchFilter{Query: "green"}.Matches(&s))
	assert.True(t, SearchFilter{Query: "baner"}.Matches(&s))
	assert.True(t, SearchFilter{Query: "asha"}.Matches(&s))
	assert.False(t, SearchFilter{Query: "warehouse"}.Matches(&s))
}

func TestSearchFilterTags(t *testing.T) {
	s := testStation()

	assert.True(t, SearchFilter{Tags: []string{TagFastCharge}}.Matches(&s))
	slow := s
	slow.PowerOutput = "7.4kW"
	assert.False(t, SearchFilter{Tags: []string{TagFastCharge}}.Matches(&slow))

	assert.True(t, SearchFilter{Tags: []string{TagType2}}.Matches(&s))
	ccs := s
	ccs.ConnectorType = "CCS2"
	assert.False(t, SearchFilter{Tags: []string{TagType2}}.Matches(&ccs))

	assert.True(t, SearchFilter{Tags: []string{TagUnder200}}.Matches(&s))
	pricey := s
	pricey.PricePerHour = 250
	assert.False(t, SearchFilter{Tags: []string{TagUnder200}}.Matches(&pricey))

	assert.False(t, SearchFilter{Tags: []string{"no_such_tag"}}.Matches(&s))
}

func TestGridCoordinates(t *testing.T) {
	c := GridCoordinates(18.5204, 73.8567)
	assert.Equal(t, 85, c.X)
	assert.Equal(t, 38, c.Y)

	c = GridCoordinates(-18.5204, -73.8567)
	assert.Equal(t, 85, c.X)
	assert.Equal(t, 38, c.Y)
}

func TestProjectMergesUnavailableSlots(t *testing.T) {
	s := testStation()
	s.BlockedTimeSlots = []string{"1:00 PM", "2:00 PM"}

	out := Project(s, SearchFilter{}, []string{"2:00 PM", "3:00 PM", "4:00 PM"})

	assert.ElementsMatch(t, []string{"2:00 PM", "3:00 PM", "4:00 PM"}, out.BookedTimeSlots)
	assert.Equal(t, []string{"1:00 PM", "2:00 PM", "3:00 PM", "4:00 PM"}, out.UnavailableTimeSlots)
	assert.Equal(t, 22.0, out.PowerKW)
	assert.Empty(t, out.Distance)
}

func TestProjectDistance(t *testing.T) {
	s := testStation()
	f := SearchFilter{Lat: 18.5204, Lng: 73.8567, HasOrigin: true}

	out := Project(s, f, nil)

	assert.NotEmpty(t, out.Distance)
	assert.Regexp(t, `^\d+\.\d km$`, out.Distance)
	assert.Greater(t, out.DistanceKm, 0.0)
	assert.NotNil(t, out.BookedTimeSlots)
	assert.Empty(t, out.BookedTimeSlots)
}

func TestSortByDistance(t *testing.T) {
	far := StationOut{DistanceKm: 12.5}
	near := StationOut{DistanceKm: 0.8}
	mid := StationOut{DistanceKm: 4.2}

	list := []StationOut{far, near, mid}
	SortByDistance(list)

	assert.Equal(t, 0.8, list[0].DistanceKm)
	assert.Equal(t, 4.2, list[1].DistanceKm)
	assert.Equal(t, 12.5, list[2].DistanceKm)
}

func TestStationUpdateIsEmpty(t *testing.T) {
	assert.True(t, StationUpdate{}.IsEmpty())

	title := "New Title"
	assert.False(t, StationUpdate{Title: &title}.IsEmpty())

	status := shared_models.StationStatusOffline
	assert.False(t, StationUpdate{Status: &status}.IsEmpty())
}

func TestStationUpdateSetClauses(t *testing.T) {
	title := "New Title"
	price := 180
	status := shared_models.StationStatusBusy
	blocked := []string{"9:00 AM"}

	sets, args := StationUpdate{
		Title:            &title,
		PricePerHour:     &price,
		Status:           &status,
		BlockedTimeSlots: &blocked,
	}.setClauses()

	require.Len(t, sets, 4)
	require.Len(t, args, 4)
	assert.Equal(t, "title = $1", sets[0])
	assert.Equal(t, "price_per_hour = $2", sets[1])
	assert.Equal(t, "blocked_time_slots = $3", sets[2])
	assert.Equal(t, "status = $4", sets[3])
	assert.Equal(t, title, args[0])
	assert.Equal(t, price, args[1])
	assert.Equal(t, blocked, args[2])
	assert.Equal(t, status, args[3])
}

func TestIsBookable(t *testing.T) {
	s := testStation()
	assert.True(t, IsBookable(&s))

	s.Status = shared_models.StationStatusBusy
	assert.True(t, IsBookable(&s))

	s.Status = shared_models.StationStatusOffline
	assert.False(t, IsBookable(&s))
}
