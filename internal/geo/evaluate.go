package geo

import "github.com/ukydev/fleet-tracking/internal/models"

// Violations returns the geofences the point is NOT inside, in input order.
// Geofences model permitted zones, so being outside one is the violation.
// The function is pure; raising alerts for the returned geofences is the
// caller's job.
func Violations(p models.Point, geofences []models.Geofence) []models.Geofence {
	violations := []models.Geofence{}
	for _, g := range geofences {
		if !Inside(p, g) {
			violations = append(violations, g)
		}
	}
	return violations
}
