package polycanyon

import (
	"math"
	"sort"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/golang/geo/s2"
)

// earthRadiusMeters converts unit-sphere angles to meters.
const earthRadiusMeters = 6371010

// bucketPrecision determines the granularity of the geohash bucket index
// used by PointsWithin. Seven characters is roughly a 153m x 152m cell.
// Lower precision would make buckets too coarse to prune anything in a
// dataset this dense; higher precision would require scanning more than the
// immediate neighbors.
const bucketPrecision = 7

// maxBucketRadiusMeters is the largest radius the bucket index can answer
// from one bucket plus its eight neighbors: anything within half a cell of
// the query is guaranteed to land in that ring. Larger radii fall back to a
// full scan.
const maxBucketRadiusMeters = 70

// DistanceMeters returns the great-circle distance between two coordinates.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lng1)
	b := s2.LatLngFromDegrees(lat2, lng2)
	return a.Distance(b).Radians() * earthRadiusMeters
}

// NearestPoint returns the map point closest to the coordinate, with its
// distance in meters. The scan preserves dataset order: when two points are
// equidistant the first-encountered one wins. Returns ok=false for an empty
// dataset or a NaN/Inf coordinate.
func (c *Canyon) NearestPoint(lat, lng float64) (MapPoint, float64, bool) {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return MapPoint{}, 0, false
	}
	if len(c.Points) == 0 {
		return MapPoint{}, 0, false
	}

	query := s2.LatLngFromDegrees(lat, lng)
	best := -1
	bestDist := math.Inf(1)
	for i, p := range c.Points {
		d := query.Distance(s2.LatLngFromDegrees(p.Latitude, p.Longitude)).Radians()
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return c.Points[best], bestDist * earthRadiusMeters, true
}

// NearestStructure resolves the coordinate to the structure owning the
// nearest map point. Returns ok=false when the nearest point is a plain
// trail point or the dataset is empty.
func (c *Canyon) NearestStructure(lat, lng float64) (Structure, float64, bool) {
	p, dist, ok := c.NearestPoint(lat, lng)
	if !ok || p.Structure == 0 {
		return Structure{}, dist, false
	}
	s, ok := c.StructureByNumber(p.Structure)
	if !ok {
		return Structure{}, dist, false
	}
	return s, dist, true
}

// PointsWithin returns all map points within radiusMeters of the coordinate,
// in dataset order. Small radii are served from the geohash bucket index;
// radii beyond what one bucket ring covers fall back to a linear scan.
func (c *Canyon) PointsWithin(lat, lng, radiusMeters float64) []MapPoint {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return nil
	}
	if radiusMeters < 0 {
		return nil
	}

	query := s2.LatLngFromDegrees(lat, lng)
	maxAngle := radiusMeters / earthRadiusMeters

	if radiusMeters > maxBucketRadiusMeters {
		var out []MapPoint
		for _, p := range c.Points {
			if query.Distance(s2.LatLngFromDegrees(p.Latitude, p.Longitude)).Radians() <= maxAngle {
				out = append(out, p)
			}
		}
		return out
	}

	center := geohash.EncodeWithPrecision(lat, lng, bucketPrecision)
	cells := append([]string{center}, geohash.CalculateAllAdjacent(center)...)

	var indices []int
	seen := make(map[int]bool)
	for _, cell := range cells {
		for _, i := range c.buckets[cell] {
			if !seen[i] {
				seen[i] = true
				indices = append(indices, i)
			}
		}
	}
	// Bucket traversal visits cells in an arbitrary order; restore dataset
	// order so callers see the same ordering as a linear scan.
	sort.Ints(indices)

	var out []MapPoint
	for _, i := range indices {
		p := c.Points[i]
		if query.Distance(s2.LatLngFromDegrees(p.Latitude, p.Longitude)).Radians() <= maxAngle {
			out = append(out, p)
		}
	}
	return out
}
