package geo

import "github.com/ukydev/fleet-tracking/internal/models"

// InsideCircle reports whether p lies within radiusMeters of center.
// The boundary is inclusive.
func InsideCircle(p models.Point, center models.Point, radiusMeters float64) bool {
	radiusKm := radiusMeters / 1000
	return Distance(p.Lat, p.Lng, center.Lat, center.Lng) <= radiusKm
}

// InsidePolygon reports whether p lies within the closed ring described by
// points, using the ray casting algorithm with longitude as x and latitude
// as y. The ring is implicitly closed (last point connects to first). The
// result is well-defined only for simple polygons; fewer than 3 points is
// never inside.
func InsidePolygon(p models.Point, points []models.Point) bool {
	if len(points) < 3 {
		return false
	}
	x, y := p.Lng, p.Lat
	inside := false
	for i, j := 0, len(points)-1; i < len(points); j, i = i, i+1 {
		xi, yi := points[i].Lng, points[i].Lat
		xj, yj := points[j].Lng, points[j].Lat
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// InsideRectangle reports whether p lies within the axis-aligned bounds,
// boundary inclusive. Rectangles spanning the ±180° meridian are not
// handled.
func InsideRectangle(p models.Point, southWest, northEast models.Point) bool {
	return p.Lat >= southWest.Lat && p.Lat <= northEast.Lat &&
		p.Lng >= southWest.Lng && p.Lng <= northEast.Lng
}

// Inside dispatches to the containment test matching the geofence type.
// An unknown type, or coordinates missing the fields the type requires,
// yields false rather than an error.
func Inside(p models.Point, g models.Geofence) bool {
	c := g.Coordinates
	switch {
	case g.Type == models.GeofenceCircle && c.Center != nil && c.Radius > 0:
		return InsideCircle(p, *c.Center, c.Radius)
	case g.Type == models.GeofencePolygon && len(c.Points) > 0:
		return InsidePolygon(p, c.Points)
	case g.Type == models.GeofenceRectangle && c.Bounds != nil:
		return InsideRectangle(p, c.Bounds.SouthWest, c.Bounds.NorthEast)
	default:
		return false
	}
}
