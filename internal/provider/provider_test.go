package provider

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromID(t *testing.T) {
	require.Equal(t, MapTiler, FromID("maptiler"))
	require.Equal(t, Mapbox, FromID("Mapbox"))
	require.Equal(t, Tracestrack, FromID("tracestrack"))
	require.Equal(t, Provider("swisstopo"), FromID("swisstopo"))
	require.Equal(t, None, FromID(""))
}

func TestFromStyleName(t *testing.T) {
	require.Equal(t, MapTiler, FromStyleName("maptiler-outdoor"))
	require.Equal(t, Mapbox, FromStyleName("mapbox-outdoors"))
	require.Equal(t, Tracestrack, FromStyleName("tracestrack-topo"))
	require.Equal(t, Provider("opentopomap"), FromStyleName("opentopomap"))
}

func TestSpoofHeaders(t *testing.T) {
	h := MapTiler.SpoofHeaders()
	require.Equal(t, "https://www.maptiler.com/", h["Referer"])
	require.Equal(t, "https://www.maptiler.com", h["Origin"])

	h = Tracestrack.SpoofHeaders()
	require.Equal(t, "https://console.tracestrack.com/", h["Referer"])

	require.Nil(t, None.SpoofHeaders())
	require.Nil(t, Provider("swisstopo").SpoofHeaders())
}

func TestProviderString(t *testing.T) {
	require.Equal(t, "maptiler", MapTiler.String())
	require.Equal(t, "none", None.String())
}
