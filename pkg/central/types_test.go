package central_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/sophos-central/pkg/central"
)

func TestPageInfo_HasNextPage(t *testing.T) {
	t.Parallel()

	assert.True(t, central.PageInfo{NextKey: "K2"}.HasNextPage())
	assert.False(t, central.PageInfo{}.HasNextPage())
	assert.False(t, central.PageInfo{FromKey: "K1"}.HasNextPage())
}

func TestListResponse_Decode(t *testing.T) {
	t.Parallel()

	payload := `{
		"items": [
			{"id": "ep-1", "hostname": "web-01", "health": {"overall": "good"}},
			{"id": "ep-2", "hostname": "db-01", "health": {"overall": "bad"}}
		],
		"pages": {
			"fromKey": "K1",
			"nextKey": "K2",
			"size": 2,
			"maxSize": 500
		}
	}`

	var list central.EndpointList

	require.NoError(t, json.Unmarshal([]byte(payload), &list))
	require.Len(t, list.Items, 2)
	assert.Equal(t, "ep-1", list.Items[0].ID)
	assert.Equal(t, "web-01", list.Items[0].Hostname)
	assert.Equal(t, central.HealthStatusGood, list.Items[0].Health.Overall)
	assert.Equal(t, "K1", list.Pages.FromKey)
	assert.Equal(t, "K2", list.Pages.NextKey)
	assert.Equal(t, 2, list.Pages.Size)
	assert.Equal(t, 500, list.Pages.MaxSize)
	assert.True(t, list.Pages.HasNextPage())
}

func TestListResponse_DecodeFinalPage(t *testing.T) {
	t.Parallel()

	payload := `{"items": [{"id": "ep-9"}], "pages": {"size": 1}}`

	var list central.EndpointList

	require.NoError(t, json.Unmarshal([]byte(payload), &list))
	require.Len(t, list.Items, 1)
	assert.False(t, list.Pages.HasNextPage())
}

func TestWhoAmI_Decode(t *testing.T) {
	t.Parallel()

	payload := `{
		"id": "57ca9a6b-885f-4e36-95ec-290548c26059",
		"idType": "tenant",
		"apiHosts": {
			"global": "https://api.central.sophos.com",
			"dataRegion": "https://api-us03.central.sophos.com"
		}
	}`

	var whoami central.WhoAmI

	require.NoError(t, json.Unmarshal([]byte(payload), &whoami))
	assert.Equal(t, "57ca9a6b-885f-4e36-95ec-290548c26059", whoami.ID)
	assert.Equal(t, central.IDTypeTenant, whoami.IDType)
	assert.Equal(t, "https://api.central.sophos.com", whoami.APIHosts.Global)
	assert.Equal(t, "https://api-us03.central.sophos.com", whoami.APIHosts.DataRegion)
}
