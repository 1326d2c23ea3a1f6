package central_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fivetwenty-io/sophos-central/pkg/central"
)

//nolint:funlen // Test functions can be longer for detailed testing
func TestQueryParams_ToValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		params   *central.QueryParams
		expected url.Values
	}{
		{
			name:     "empty params",
			params:   central.NewQueryParams(),
			expected: url.Values{},
		},
		{
			name: "with cursor pagination",
			params: &central.QueryParams{
				PageSize:    50,
				PageFromKey: "K2",
			},
			expected: url.Values{
				"pageSize":    []string{"50"},
				"pageFromKey": []string{"K2"},
			},
		},
		{
			name: "with page totals",
			params: &central.QueryParams{
				PageSize:  25,
				PageTotal: true,
				Page:      3,
			},
			expected: url.Values{
				"pageSize":  []string{"25"},
				"pageTotal": []string{"true"},
				"page":      []string{"3"},
			},
		},
		{
			name: "with sorting",
			params: &central.QueryParams{
				Sort: []string{"hostname", "severity:desc"},
			},
			expected: url.Values{
				"sort": []string{"hostname,severity:desc"},
			},
		},
		{
			name: "with search",
			params: &central.QueryParams{
				Search:       "laptop",
				SearchFields: []string{"hostname", "ipAddresses"},
			},
			expected: url.Values{
				"search":       []string{"laptop"},
				"searchFields": []string{"hostname,ipAddresses"},
			},
		},
		{
			name: "with projection",
			params: &central.QueryParams{
				View:   "summary",
				Fields: []string{"id", "hostname", "health"},
			},
			expected: url.Values{
				"view":   []string{"summary"},
				"fields": []string{"id,hostname,health"},
			},
		},
		{
			name: "with ids",
			params: &central.QueryParams{
				IDs: []string{"ep-1", "ep-2"},
			},
			expected: url.Values{
				"ids": []string{"ep-1,ep-2"},
			},
		},
		{
			name: "with filters",
			params: &central.QueryParams{
				Filters: map[string][]string{
					"healthStatus": {"bad", "suspicious"},
					"type":         {"computer"},
				},
			},
			expected: url.Values{
				"healthStatus": []string{"bad,suspicious"},
				"type":         []string{"computer"},
			},
		},
		{
			name: "with all options",
			params: &central.QueryParams{
				PageSize:    100,
				PageFromKey: "K9",
				Sort:        []string{"hostname"},
				Search:      "build",
				View:        "full",
				Filters: map[string][]string{
					"tamperProtectionEnabled": {"true"},
				},
			},
			expected: url.Values{
				"pageSize":                []string{"100"},
				"pageFromKey":             []string{"K9"},
				"sort":                    []string{"hostname"},
				"search":                  []string{"build"},
				"view":                    []string{"full"},
				"tamperProtectionEnabled": []string{"true"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := tt.params.ToValues()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestQueryParams_Builders(t *testing.T) {
	t.Parallel()

	t.Run("chaining methods", func(t *testing.T) {
		t.Parallel()

		params := central.NewQueryParams().
			WithPageSize(100).
			WithPageFromKey("K5").
			WithPageTotal().
			WithSort("hostname", "lastSeenAt:desc").
			WithSearch("web").
			WithSearchFields("hostname").
			WithView("full").
			WithFields("id", "hostname").
			WithIDs("ep-1").
			WithFilter("healthStatus", "bad").
			WithFilter("healthStatus", "suspicious")

		assert.Equal(t, 100, params.PageSize)
		assert.Equal(t, "K5", params.PageFromKey)
		assert.True(t, params.PageTotal)
		assert.Equal(t, []string{"hostname", "lastSeenAt:desc"}, params.Sort)
		assert.Equal(t, "web", params.Search)
		assert.Equal(t, []string{"hostname"}, params.SearchFields)
		assert.Equal(t, "full", params.View)
		assert.Equal(t, []string{"id", "hostname"}, params.Fields)
		assert.Equal(t, []string{"ep-1"}, params.IDs)
		assert.Equal(t, []string{"bad", "suspicious"}, params.Filters["healthStatus"])
	})

	t.Run("filter on zero value allocates the map", func(t *testing.T) {
		t.Parallel()

		params := (&central.QueryParams{}).WithFilter("type", "server")
		assert.Equal(t, []string{"server"}, params.Filters["type"])
	})
}

func TestQueryParams_Clone(t *testing.T) {
	t.Parallel()

	t.Run("mutating the clone leaves the original alone", func(t *testing.T) {
		t.Parallel()

		original := central.NewQueryParams().
			WithPageSize(10).
			WithSort("hostname").
			WithFilter("healthStatus", "good")

		clone := original.Clone()
		clone.PageSize = 99
		clone.PageFromKey = "K7"
		clone.Sort[0] = "mutated"
		clone.Filters["healthStatus"][0] = "mutated"
		clone.WithFilter("type", "computer")

		assert.Equal(t, 10, original.PageSize)
		assert.Empty(t, original.PageFromKey)
		assert.Equal(t, []string{"hostname"}, original.Sort)
		assert.Equal(t, []string{"good"}, original.Filters["healthStatus"])
		assert.NotContains(t, original.Filters, "type")
	})

	t.Run("nil receiver yields fresh params", func(t *testing.T) {
		t.Parallel()

		var params *central.QueryParams

		clone := params.Clone()
		assert.NotNil(t, clone)
		assert.Equal(t, url.Values{}, clone.ToValues())
	})
}
