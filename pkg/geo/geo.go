// Package geo matches vendor coordinates against marketplace activity
// locations using great-circle distance.
package geo

import (
	"math"
	"strconv"

	"go.uber.org/zap"
)

const (
	// earthRadiusKm is the mean Earth radius used by the Haversine formula.
	earthRadiusKm = 6371

	// coordTolerance is the per-axis tolerance, in degrees, under which two
	// coordinates are treated as the same location.
	coordTolerance = 1e-6
)

// Candidate is a location candidate as it arrives from the marketplace API.
// Coordinates stay strings at this layer; the feed occasionally carries
// malformed values and those are skipped, not fatal.
type Candidate struct {
	ID        string
	Title     string
	Latitude  string
	Longitude string
}

// Distance returns the Haversine great-circle distance in kilometers.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1, lon1 = lat1*math.Pi/180, lon1*math.Pi/180
	lat2, lon2 = lat2*math.Pi/180, lon2*math.Pi/180

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// Nearest returns the candidate closest to the given vendor coordinate.
// Candidates with unparsable coordinates are skipped with a warning. The
// second return is false when no usable candidate exists. Ties keep the
// first-encountered candidate.
func Nearest(vendorLat, vendorLon float64, candidates []Candidate, logger *zap.Logger) (Candidate, bool) {
	var (
		closest Candidate
		found   bool
		minDist = math.Inf(1)
	)

	for _, c := range candidates {
		lat, latErr := strconv.ParseFloat(c.Latitude, 64)
		lon, lonErr := strconv.ParseFloat(c.Longitude, 64)
		if latErr != nil || lonErr != nil {
			logger.Warn("skipping candidate with unparsable coordinates",
				zap.String("activity_id", c.ID),
				zap.String("latitude", c.Latitude),
				zap.String("longitude", c.Longitude),
			)
			continue
		}

		if d := Distance(vendorLat, vendorLon, lat, lon); d < minDist {
			minDist = d
			closest = c
			found = true
		}
	}

	return closest, found
}

// SameLocation reports whether two coordinates coincide within tolerance on
// both axes. Used when checking whether a vendor-known location matches an
// externally supplied event location exactly.
func SameLocation(aLat, aLon, bLat, bLon float64) bool {
	return math.Abs(aLat-bLat) < coordTolerance && math.Abs(aLon-bLon) < coordTolerance
}

// ExactMatch returns the first candidate located at the given point within
// tolerance. Candidates with unparsable coordinates are skipped quietly; in
// exact mode they can never match anyway.
func ExactMatch(lat, lon float64, candidates []Candidate) (Candidate, bool) {
	for _, c := range candidates {
		clat, latErr := strconv.ParseFloat(c.Latitude, 64)
		clon, lonErr := strconv.ParseFloat(c.Longitude, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		if SameLocation(lat, lon, clat, clon) {
			return c, true
		}
	}
	return Candidate{}, false
}
