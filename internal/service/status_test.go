package service

import (
	"context"
	"testing"

	"thermostat_automation/internal/models"
	"thermostat_automation/internal/netatmo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }
func floatPtr(f float64) *float64 { return &f }

func statusMappings() *fakeMappings {
	return &fakeMappings{rows: []models.RoomMapping{
		{ID: 1, OwnerID: "owner-a", RoomID: 101, HomeID: "home-a", ModuleID: "mod-1", ExternalRoomID: strPtr("vr-1")},
		{ID: 2, OwnerID: "owner-a", RoomID: 102, HomeID: "home-a", ModuleID: "mod-2", ExternalRoomID: strPtr("vr-2")},
		{ID: 3, OwnerID: "owner-b", RoomID: 201, HomeID: "home-b", ModuleID: "mod-3", ExternalRoomID: strPtr("vr-3")},
	}}
}

func TestAggregate_OneCallPerHomeAndMerge(t *testing.T) {
	vendor := &fakeVendor{statusByHome: map[string]netatmo.HomeStatus{
		"home-a": {
			ID: "home-a",
			Rooms: []netatmo.RoomStatus{
				{ID: "vr-1", Reachable: boolPtr(true), ThermMeasuredTemperature: floatPtr(19.5), ThermSetpointTemperature: floatPtr(21)},
			},
			Modules: []netatmo.ModuleStatus{
				{ID: "mod-2", Reachable: boolPtr(false), BatteryState: strPtr("low")},
			},
		},
		"home-b": {ID: "home-b"},
	}}
	tokens := &fakeTokens{}
	agg := NewStatusAggregator(statusMappings(), tokens, vendor, 4, nil)

	items, err := agg.Aggregate(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, 1, vendor.statusCalls["home-a"])
	assert.Equal(t, 1, vendor.statusCalls["home-b"])
	assert.EqualValues(t, 2, tokens.calls.Load())

	assert.Equal(t, []int64{1, 2, 3}, []int64{items[0].MappingID, items[1].MappingID, items[2].MappingID})

	first := items[0]
	require.NotNil(t, first.MeasuredTempC)
	assert.Equal(t, 19.5, *first.MeasuredTempC)
	assert.Equal(t, 21.0, *first.SetpointTempC)
	assert.True(t, *first.Reachable)
	assert.Nil(t, first.ModuleReachable)
	assert.Empty(t, first.Error)

	second := items[1]
	assert.Nil(t, second.MeasuredTempC, "room not reported by vendor stays nil")
	assert.Nil(t, second.Reachable)
	require.NotNil(t, second.ModuleReachable)
	assert.False(t, *second.ModuleReachable)
	assert.Equal(t, "low", *second.BatteryState)

	assert.Nil(t, items[2].MeasuredTempC)
	assert.Empty(t, items[2].Error)
}

func TestAggregate_HomeFailureMarksItsRoomsOnly(t *testing.T) {
	vendor := &fakeVendor{
		statusByHome: map[string]netatmo.HomeStatus{
			"home-b": {ID: "home-b", Rooms: []netatmo.RoomStatus{{ID: "vr-3", ThermMeasuredTemperature: floatPtr(17)}}},
		},
		failHome: map[string]error{"home-a": &netatmo.UpstreamError{Status: 503, Body: "down"}},
	}
	agg := NewStatusAggregator(statusMappings(), &fakeTokens{}, vendor, 1, nil)

	items, err := agg.Aggregate(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, vendor.statusCalls["home-a"])
	assert.Contains(t, items[0].Error, "503")
	assert.Contains(t, items[1].Error, "503")
	assert.Nil(t, items[0].MeasuredTempC)
	assert.Empty(t, items[2].Error)
	assert.Equal(t, 17.0, *items[2].MeasuredTempC)
}

func TestAggregate_TokenFailureMarksGroup(t *testing.T) {
	vendor := &fakeVendor{}
	tokens := &fakeTokens{failFor: map[string]error{"owner-b": ErrTokenMissing}}
	agg := NewStatusAggregator(statusMappings(), tokens, vendor, 2, nil)

	items, err := agg.Aggregate(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, items[0].Error)
	assert.Contains(t, items[2].Error, ErrTokenMissing.Error())
	assert.Zero(t, vendor.statusCalls["home-b"])
}

func TestAggregate_OwnerScope(t *testing.T) {
	vendor := &fakeVendor{}
	agg := NewStatusAggregator(statusMappings(), &fakeTokens{}, vendor, 2, nil)

	items, err := agg.Aggregate(context.Background(), "owner-b")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), items[0].MappingID)
	assert.Equal(t, "access-owner-b", vendor.lastToken)
	assert.Zero(t, vendor.statusCalls["home-a"])
}

func TestAggregate_MappingError(t *testing.T) {
	agg := NewStatusAggregator(&fakeMappings{listErr: errBoom}, &fakeTokens{}, &fakeVendor{}, 1, nil)
	_, err := agg.Aggregate(context.Background(), "")
	assert.ErrorIs(t, err, errBoom)
}
