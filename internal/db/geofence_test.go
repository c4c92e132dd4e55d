package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-tracking/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testGeofence(name string) models.Geofence {
	return models.Geofence{
		Name: name,
		Type: models.GeofenceCircle,
		Coordinates: models.Coordinates{
			Center: &models.Point{Lat: -23.55, Lng: -46.63},
			Radius: 500,
		},
	}
}

func TestMongoGeofenceCollection_InsertAndFind(t *testing.T) {
	client, err := ConnectMongo()
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}
	defer client.Disconnect(context.Background())

	collection := client.Database("test_fleet").Collection("geofences")
	collection.Drop(context.Background())

	geofences := &MongoGeofenceCollection{Collection: collection}

	id, err := geofences.InsertGeofence(context.Background(), testGeofence("Depot"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	found, err := geofences.FindGeofenceByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, "Depot", found.Name)
	assert.Equal(t, models.GeofenceCircle, found.Type)
	require.NotNil(t, found.Coordinates.Center)
	assert.Equal(t, -23.55, found.Coordinates.Center.Lat)
	assert.Equal(t, 500.0, found.Coordinates.Radius)
	assert.NotZero(t, found.CreatedAt)

	_, err = geofences.FindGeofenceByID(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = geofences.FindGeofenceByID(context.Background(), "invalid-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoGeofenceCollection_VehicleAssignment(t *testing.T) {
	client, err := ConnectMongo()
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}
	defer client.Disconnect(context.Background())

	collection := client.Database("test_fleet").Collection("geofences")
	collection.Drop(context.Background())

	geofences := &MongoGeofenceCollection{Collection: collection}

	id, err := geofences.InsertGeofence(context.Background(), testGeofence("Depot"))
	require.NoError(t, err)

	vehicleID := primitive.NewObjectID().Hex()

	// Assigning twice must not duplicate the entry
	require.NoError(t, geofences.AssignVehicle(context.Background(), id, vehicleID))
	require.NoError(t, geofences.AssignVehicle(context.Background(), id, vehicleID))

	found, err := geofences.FindGeofenceByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{vehicleID}, found.VehicleIDs)

	// Lookup by vehicle
	byVehicle, err := geofences.FindGeofencesByVehicleID(context.Background(), vehicleID)
	require.NoError(t, err)
	require.Len(t, byVehicle, 1)
	assert.Equal(t, "Depot", byVehicle[0].Name)

	// Unassign
	require.NoError(t, geofences.UnassignVehicle(context.Background(), id, vehicleID))
	byVehicle, err = geofences.FindGeofencesByVehicleID(context.Background(), vehicleID)
	require.NoError(t, err)
	assert.Empty(t, byVehicle)

	// Assignment against an unknown geofence
	err = geofences.AssignVehicle(context.Background(), primitive.NewObjectID().Hex(), vehicleID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoGeofenceCollection_RemoveVehicleAssignments(t *testing.T) {
	client, err := ConnectMongo()
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}
	defer client.Disconnect(context.Background())

	collection := client.Database("test_fleet").Collection("geofences")
	collection.Drop(context.Background())

	geofences := &MongoGeofenceCollection{Collection: collection}

	firstID, err := geofences.InsertGeofence(context.Background(), testGeofence("Depot"))
	require.NoError(t, err)
	secondID, err := geofences.InsertGeofence(context.Background(), testGeofence("Harbor"))
	require.NoError(t, err)

	vehicleID := primitive.NewObjectID().Hex()
	otherVehicleID := primitive.NewObjectID().Hex()

	require.NoError(t, geofences.AssignVehicle(context.Background(), firstID, vehicleID))
	require.NoError(t, geofences.AssignVehicle(context.Background(), secondID, vehicleID))
	require.NoError(t, geofences.AssignVehicle(context.Background(), secondID, otherVehicleID))

	// Deleting a vehicle pulls it from every geofence, other vehicles stay
	require.NoError(t, geofences.RemoveVehicleAssignments(context.Background(), vehicleID))

	byVehicle, err := geofences.FindGeofencesByVehicleID(context.Background(), vehicleID)
	require.NoError(t, err)
	assert.Empty(t, byVehicle)

	byOther, err := geofences.FindGeofencesByVehicleID(context.Background(), otherVehicleID)
	require.NoError(t, err)
	require.Len(t, byOther, 1)
	assert.Equal(t, "Harbor", byOther[0].Name)
}

func TestMongoGeofenceCollection_UpdatePreservesAssignments(t *testing.T) {
	client, err := ConnectMongo()
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}
	defer client.Disconnect(context.Background())

	collection := client.Database("test_fleet").Collection("geofences")
	collection.Drop(context.Background())

	geofences := &MongoGeofenceCollection{Collection: collection}

	id, err := geofences.InsertGeofence(context.Background(), testGeofence("Depot"))
	require.NoError(t, err)

	vehicleID := primitive.NewObjectID().Hex()
	require.NoError(t, geofences.AssignVehicle(context.Background(), id, vehicleID))

	existing, err := geofences.FindGeofenceByID(context.Background(), id)
	require.NoError(t, err)

	updated := *existing
	updated.Name = "Depot North"
	require.NoError(t, geofences.UpdateGeofence(context.Background(), id, updated))

	found, err := geofences.FindGeofenceByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Depot North", found.Name)
	assert.Equal(t, []string{vehicleID}, found.VehicleIDs)
}
