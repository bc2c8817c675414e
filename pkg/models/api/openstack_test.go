package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageRef_UnmarshalJSON(t *testing.T) {
	var s Server

	// Image-backed servers report the image as an object.
	require.NoError(t, json.Unmarshal([]byte(`{"id": "srv-1", "image": {"id": "img-1"}}`), &s))
	assert.Equal(t, "img-1", s.Image.ID)

	// Volume-backed servers report an empty string instead.
	require.NoError(t, json.Unmarshal([]byte(`{"id": "srv-2", "image": ""}`), &s))
	assert.Equal(t, "", s.Image.ID)
}

func TestServer_ExtensionFields(t *testing.T) {
	payload := `{
		"id": "srv-1",
		"OS-EXT-AZ:availability_zone": "nova",
		"os-extended-volumes:volumes_attached": [{"id": "vol-1"}]
	}`

	var s Server
	require.NoError(t, json.Unmarshal([]byte(payload), &s))
	require.NotNil(t, s.Zone)
	assert.Equal(t, "nova", *s.Zone)
	require.Len(t, s.AttachedVolumes, 1)
	assert.Equal(t, "vol-1", s.AttachedVolumes[0].ID)
}
