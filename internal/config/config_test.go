package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFleetPanels(t *testing.T) {
	panels, err := ParseFleetPanels("roof-a:28.6:30:180, roof-b:52.2:35:170")
	require.NoError(t, err)
	require.Len(t, panels, 2)

	assert.Equal(t, "roof-a", panels[0].ID)
	assert.Equal(t, 28.6, panels[0].LatitudeDeg)
	assert.Equal(t, 30.0, panels[0].Orientation.TiltDeg)
	assert.Equal(t, 180.0, panels[0].Orientation.AzimuthDeg)
	assert.False(t, panels[0].InstalledAt.IsZero())

	assert.Equal(t, "roof-b", panels[1].ID)
}

func TestParseFleetPanels_Empty(t *testing.T) {
	panels, err := ParseFleetPanels("")
	require.NoError(t, err)
	assert.Empty(t, panels)
}

func TestParseFleetPanels_Malformed(t *testing.T) {
	_, err := ParseFleetPanels("roof-a:28.6:30")
	assert.Error(t, err)

	_, err = ParseFleetPanels("roof-a:not-a-number:30:180")
	assert.Error(t, err)
}
