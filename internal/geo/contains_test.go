package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ukydev/fleet-tracking/internal/models"
)

func TestInsideCircle_CenterIsAlwaysInside(t *testing.T) {
	center := models.Point{Lat: -23.55, Lng: -46.63}
	assert.True(t, InsideCircle(center, center, 1))
	assert.True(t, InsideCircle(center, center, 500))
}

func TestInsideCircle_PointBeyondRadius(t *testing.T) {
	// ~1.1 km from the center, radius 500 m
	center := models.Point{Lat: -23.55, Lng: -46.63}
	point := models.Point{Lat: -23.56, Lng: -46.63}
	assert.False(t, InsideCircle(point, center, 500))
}

func TestInsideCircle_PointWithinRadius(t *testing.T) {
	center := models.Point{Lat: -23.55, Lng: -46.63}
	point := models.Point{Lat: -23.553, Lng: -46.63} // ~330 m away
	assert.True(t, InsideCircle(point, center, 500))
}

func TestInsidePolygon_ConvexSquare(t *testing.T) {
	square := []models.Point{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 2},
		{Lat: 2, Lng: 2},
		{Lat: 2, Lng: 0},
	}

	assert.True(t, InsidePolygon(models.Point{Lat: 1, Lng: 1}, square))
	assert.False(t, InsidePolygon(models.Point{Lat: 5, Lng: 5}, square))
	assert.False(t, InsidePolygon(models.Point{Lat: -1, Lng: 1}, square))
}

func TestInsidePolygon_Triangle(t *testing.T) {
	triangle := []models.Point{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 4},
		{Lat: 4, Lng: 2},
	}

	assert.True(t, InsidePolygon(models.Point{Lat: 1, Lng: 2}, triangle))
	assert.False(t, InsidePolygon(models.Point{Lat: 3, Lng: 0.5}, triangle))
}

func TestInsidePolygon_TooFewPoints(t *testing.T) {
	assert.False(t, InsidePolygon(models.Point{Lat: 0, Lng: 0}, nil))
	assert.False(t, InsidePolygon(models.Point{Lat: 0, Lng: 0}, []models.Point{{Lat: 0, Lng: 0}}))
	assert.False(t, InsidePolygon(models.Point{Lat: 0, Lng: 0}, []models.Point{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}}))
}

func TestInsideRectangle_BoundaryInclusive(t *testing.T) {
	sw := models.Point{Lat: 0, Lng: 0}
	ne := models.Point{Lat: 1, Lng: 1}

	assert.True(t, InsideRectangle(models.Point{Lat: 0.5, Lng: 0.5}, sw, ne))
	assert.True(t, InsideRectangle(sw, sw, ne))
	assert.True(t, InsideRectangle(ne, sw, ne))
}

func TestInsideRectangle_Outside(t *testing.T) {
	sw := models.Point{Lat: 0, Lng: 0}
	ne := models.Point{Lat: 1, Lng: 1}

	assert.False(t, InsideRectangle(models.Point{Lat: 1.5, Lng: 0.5}, sw, ne))
	assert.False(t, InsideRectangle(models.Point{Lat: -1, Lng: 0.5}, sw, ne))
	assert.False(t, InsideRectangle(models.Point{Lat: 0.5, Lng: 2}, sw, ne))
}

func TestInside_DispatchesByType(t *testing.T) {
	point := models.Point{Lat: 0.5, Lng: 0.5}

	circle := models.Geofence{
		Type: models.GeofenceCircle,
		Coordinates: models.Coordinates{
			Center: &models.Point{Lat: 0.5, Lng: 0.5},
			Radius: 1000,
		},
	}
	polygon := models.Geofence{
		Type: models.GeofencePolygon,
		Coordinates: models.Coordinates{
			Points: []models.Point{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}, {Lat: 1, Lng: 0}},
		},
	}
	rectangle := models.Geofence{
		Type: models.GeofenceRectangle,
		Coordinates: models.Coordinates{
			Bounds: &models.Bounds{
				SouthWest: models.Point{Lat: 0, Lng: 0},
				NorthEast: models.Point{Lat: 1, Lng: 1},
			},
		},
	}

	assert.True(t, Inside(point, circle))
	assert.True(t, Inside(point, polygon))
	assert.True(t, Inside(point, rectangle))
}

func TestInside_MalformedGeometryIsNotInside(t *testing.T) {
	point := models.Point{Lat: 0.5, Lng: 0.5}

	// Circle without a center
	assert.False(t, Inside(point, models.Geofence{
		Type:        models.GeofenceCircle,
		Coordinates: models.Coordinates{Radius: 1000},
	}))

	// Polygon without points
	assert.False(t, Inside(point, models.Geofence{
		Type: models.GeofencePolygon,
	}))

	// Rectangle without bounds
	assert.False(t, Inside(point, models.Geofence{
		Type: models.GeofenceRectangle,
	}))

	// Unknown type
	assert.False(t, Inside(point, models.Geofence{
		Type: "hexagon",
		Coordinates: models.Coordinates{
			Center: &models.Point{Lat: 0.5, Lng: 0.5},
			Radius: 1000,
		},
	}))
}
