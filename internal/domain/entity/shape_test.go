package entity

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "stenosis-api/pkg/errors"
)

func TestAssignSidesOrdersByCentroid(t *testing.T) {
	shapes := []Shape{
		{Area: 300, CentroidX: 120},
		{Area: 150, CentroidX: 40},
	}
	areas, err := AssignSides(shapes, AssignOptions{Strict: true})
	require.NoError(t, err)
	require.Equal(t, SideAreas{Left: 150, Right: 300}, areas)
}

func TestAssignSidesSingleAndNone(t *testing.T) {
	areas, err := AssignSides([]Shape{{Area: 75, CentroidX: 200}}, AssignOptions{Strict: true})
	require.NoError(t, err)
	require.Equal(t, SideAreas{Left: 75}, areas)

	areas, err = AssignSides(nil, AssignOptions{Strict: true})
	require.NoError(t, err)
	require.Equal(t, SideAreas{}, areas)
}

func TestAssignSidesDropsNoise(t *testing.T) {
	shapes := []Shape{
		{Area: 3, CentroidX: 5},
		{Area: 200, CentroidX: 180},
		{Area: 220, CentroidX: 60},
		{Area: 0, CentroidX: 10},
	}
	areas, err := AssignSides(shapes, AssignOptions{MinArea: 10, Strict: true})
	require.NoError(t, err)
	require.Equal(t, SideAreas{Left: 220, Right: 200}, areas)
}

func TestAssignSidesAmbiguous(t *testing.T) {
	shapes := []Shape{
		{Area: 100, CentroidX: 10},
		{Area: 100, CentroidX: 90},
		{Area: 100, CentroidX: 50},
	}

	_, err := AssignSides(shapes, AssignOptions{Strict: true})
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrorTypeAmbiguousSegmentation))

	areas, err := AssignSides([]Shape{
		{Area: 10, CentroidX: 10},
		{Area: 90, CentroidX: 90},
		{Area: 50, CentroidX: 50},
	}, AssignOptions{})
	require.NoError(t, err)
	require.Equal(t, SideAreas{Left: 10, Right: 50}, areas)
}

func TestSortByCentroidStable(t *testing.T) {
	in := []Shape{
		{Area: 1, CentroidX: 30},
		{Area: 2, CentroidX: 10},
		{Area: 3, CentroidX: 30},
	}
	out := SortByCentroid(in)
	require.Equal(t, []Shape{{Area: 2, CentroidX: 10}, {Area: 1, CentroidX: 30}, {Area: 3, CentroidX: 30}}, out)
	require.Equal(t, 1.0, in[0].Area)
}
