package upstream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildTileURL_SubstitutesCoordinates(t *testing.T) {
	url, err := BuildTileURL("https://tiles.example.com/{z}/{x}/{y}.pbf", 5, 10, 12, nil)
	require.NoError(t, err)
	require.Equal(t, "https://tiles.example.com/5/10/12.pbf", url)
}

func TestBuildTileURL_MergesAuthIntoQuery(t *testing.T) {
	url, err := BuildTileURL("https://tiles.example.com/{z}/{x}/{y}.pbf", 1, 2, 3,
		map[string]string{"key": "abc123"})
	require.NoError(t, err)
	require.Equal(t, "https://tiles.example.com/1/2/3.pbf?key=abc123", url)
}

func TestBuildTileURL_AuthWinsOnCollision(t *testing.T) {
	url, err := BuildTileURL("https://tiles.example.com/{z}/{x}/{y}.pbf?key=template", 1, 2, 3,
		map[string]string{"key": "auth"})
	require.NoError(t, err)
	require.Equal(t, "https://tiles.example.com/1/2/3.pbf?key=auth", url)
}

func TestBuildTileURL_PreservesTemplateParams(t *testing.T) {
	url, err := BuildTileURL("https://tiles.example.com/{z}/{x}/{y}.png?style=topo", 1, 2, 3,
		map[string]string{"key": "abc"})
	require.NoError(t, err)
	require.Equal(t, "https://tiles.example.com/1/2/3.png?key=abc&style=topo", url)
}

func TestBuildTileURL_Idempotent(t *testing.T) {
	template := "https://tiles.example.com/{z}/{x}/{y}.pbf?b=2&a=1"
	auth := map[string]string{"key": "k", "token": "t"}

	first, err := BuildTileURL(template, 7, 42, 99, auth)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := BuildTileURL(template, 7, 42, 99, auth)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestBuildTileURL_NoAuthLeavesURLUntouched(t *testing.T) {
	template := "https://tiles.example.com/{z}/{x}/{y}.png?apikey=embedded"
	url, err := BuildTileURL(template, 1, 2, 3, map[string]string{})
	require.NoError(t, err)
	require.Equal(t, "https://tiles.example.com/1/2/3.png?apikey=embedded", url)
}

func TestMergeAuth_NoPlaceholders(t *testing.T) {
	url, err := MergeAuth("https://assets.example.com/sprite.json", map[string]string{"key": "k"})
	require.NoError(t, err)
	require.Equal(t, "https://assets.example.com/sprite.json?key=k", url)
}
