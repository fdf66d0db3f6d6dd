package utils

import (
	"math"
	"sort"
)

// RankedCandidate is one entry of a proximity ranking: the index of the
// candidate in the input slice and its great-circle distance from the origin.
type RankedCandidate struct {
	Index      int     `json:"index"`
	DistanceKM float64 `json:"distance_km"`
}

func CalculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	return haversineDistance(lat1, lon1, lat2, lon2)
}

func haversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	// Convert to radians
	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	// Differences
	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	// Haversine formula
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	// Distance in kilometers
	return EarthRadiusKM * c
}

// RankByDistance orders candidates nearest-first from origin, capped to limit.
// The sort is stable: candidates at equal distance keep their input order.
// Inputs are never mutated. Any invalid coordinate rejects the whole call.
func RankByDistance(origin Point, candidates []Point, limit int) ([]RankedCandidate, error) {
	if !IsValidCoordinates(origin.Lat, origin.Lng) {
		return nil, ErrInvalidCoordinate
	}

	ranked := make([]RankedCandidate, 0, len(candidates))
	for i, c := range candidates {
		if !IsValidCoordinates(c.Lat, c.Lng) {
			return nil, ErrInvalidCoordinate
		}
		ranked = append(ranked, RankedCandidate{
			Index:      i,
			DistanceKM: haversineDistance(origin.Lat, origin.Lng, c.Lat, c.Lng),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKM < ranked[j].DistanceKM
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked, nil
}

func IsWithinRadius(centerLat, centerLon, pointLat, pointLon, radiusKM float64) bool {
	return CalculateDistance(centerLat, centerLon, pointLat, pointLon) <= radiusKM
}

func EstimateETAMinutes(distanceKM float64, averageSpeedKMH float64) int {
	if averageSpeedKMH <= 0 {
		averageSpeedKMH = AmbulanceAverageSpeedKMH
	}

	timeHours := distanceKM / averageSpeedKMH
	timeMinutes := timeHours * 60

	return int(math.Ceil(timeMinutes))
}
