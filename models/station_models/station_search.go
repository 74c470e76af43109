package station_models

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/snapcharge/backend/models/shared_models"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two coordinates.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

var powerPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// ParsePowerKW extracts the numeric kW figure out of a free-text power
// description like "22kW" or "7.4 kW". Unparseable input counts as 0.
func ParsePowerKW(powerOutput string) float64 {
	match := powerPattern.FindString(powerOutput)
	if match == "" {
		return 0
	}
	kw, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return kw
}

// SearchFilter holds the driver-side station search parameters. Zero values
// mean "no constraint".
type SearchFilter struct {
	Query       string
	Status      string
	VehicleType string
	Tags        []string
	Lat         float64
	Lng         float64
	HasOrigin   bool
}

// Search filter tags.
const (
	TagFastCharge = "fast_charge"
	TagType2      = "type_2"
	TagUnder200   = "under_200"

	fastChargeMinKW  = 11.0
	under200MaxPrice = 200
)

// Matches reports whether a station passes every constraint in the filter.
func (f SearchFilter) Matches(s *Station) bool {
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if f.VehicleType != "" && !containsString(s.SupportedVehicleTypes, f.VehicleType) {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(s.Title), q) &&
			!strings.Contains(strings.ToLower(s.Location), q) &&
			!strings.Contains(strings.ToLower(s.HostName), q) {
			return false
		}
	}
	for _, tag := range f.Tags {
		switch tag {
		case TagFastCharge:
			if ParsePowerKW(s.PowerOutput) < fastChargeMinKW {
				return false
			}
		case TagType2:
			if !strings.Contains(strings.ToLower(s.ConnectorType), "type 2") &&
				!strings.Contains(strings.ToLower(s.ConnectorType), "type2") {
				return false
			}
		case TagUnder200:
			if s.PricePerHour > under200MaxPrice {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

// Coordinates is a synthetic map-grid position derived from the latitude and
// longitude, for clients that render stations on a fixed grid.
type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GridCoordinates maps real coordinates onto a 0-99 grid cell.
func GridCoordinates(lat, lng float64) Coordinates {
	return Coordinates{
		X: int(math.Abs(lat*10)) % 100,
		Y: int(math.Abs(lng*10)) % 100,
	}
}

// StationOut is the driver-facing search projection: the station plus
// derived presentation fields and the merged set of slots a driver cannot
// book for the requested date.
type StationOut struct {
	Station
	Coordinates          Coordinates `json:"coordinates"`
	Distance             string      `json:"distance"`
	DistanceKm           float64     `json:"distanceKm"`
	PowerKW              float64     `json:"powerKw"`
	BookedTimeSlots      []string    `json:"bookedTimeSlots"`
	UnavailableTimeSlots []string    `json:"unavailableTimeSlots"`
}

// Project builds the search projection for one station. booked holds the
// labels with an ACTIVE booking on the requested date; the unavailable set
// is the union of those with the host's blocked labels, deduplicated and
// sorted for stable output.
func Project(s Station, f SearchFilter, booked []string) StationOut {
	out := StationOut{
		Station:         s,
		Coordinates:     GridCoordinates(s.Lat, s.Lng),
		PowerKW:         ParsePowerKW(s.PowerOutput),
		BookedTimeSlots: booked,
	}
	if out.BookedTimeSlots == nil {
		out.BookedTimeSlots = []string{}
	}

	if f.HasOrigin {
		out.DistanceKm = DistanceKm(f.Lat, f.Lng, s.Lat, s.Lng)
		out.Distance = fmt.Sprintf("%.1f km", out.DistanceKm)
	}

	seen := make(map[string]bool, len(booked)+len(s.BlockedTimeSlots))
	merged := make([]string, 0, len(booked)+len(s.BlockedTimeSlots))
	for _, label := range booked {
		if !seen[label] {
			seen[label] = true
			merged = append(merged, label)
		}
	}
	for _, label := range s.BlockedTimeSlots {
		if !seen[label] {
			seen[label] = true
			merged = append(merged, label)
		}
	}
	sort.Strings(merged)
	out.UnavailableTimeSlots = merged
	return out
}

// SortByDistance orders projections nearest first. Without an origin the
// incoming order (newest station first) is preserved.
func SortByDistance(stations []StationOut) {
	sort.SliceStable(stations, func(i, j int) bool {
		return stations[i].DistanceKm < stations[j].DistanceKm
	})
}

// IsBookable reports whether a station accepts new bookings at all.
func IsBookable(s *Station) bool {
	return s.Status != shared_models.StationStatusOffline
}
