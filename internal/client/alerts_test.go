package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/sophos-central/pkg/central"
)

func TestAlertsClient_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/common/v1/alerts", r.URL.Path)
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "high", r.URL.Query().Get("severity"))

		list := central.AlertList{
			Items: []central.Alert{
				{
					ID:             "alert-1",
					Category:       "malware",
					Description:    "Malware detected on finance-dc-01",
					Product:        "endpoint",
					Severity:       central.AlertSeverityHigh,
					AllowedActions: []string{central.AlertActionAcknowledge, central.AlertActionCleanVirus},
					ManagedAgent:   &central.ManagedAgent{ID: "winserver-1", Type: "server"},
				},
			},
			Pages: central.PageInfo{Size: 1},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	params := central.NewQueryParams().WithFilter("severity", "high")
	list, err := client.Alerts().List(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "alert-1", list.Items[0].ID)
	assert.Equal(t, central.AlertSeverityHigh, list.Items[0].Severity)
	assert.Contains(t, list.Items[0].AllowedActions, central.AlertActionAcknowledge)
	assert.Equal(t, "winserver-1", list.Items[0].ManagedAgent.ID)
	assert.False(t, list.Pages.HasNextPage())
}

func TestAlertsClient_Get(t *testing.T) {
	tests := []TestGetOperation[central.Alert]{
		{
			Name:         "found",
			ID:           "alert-1",
			ExpectedPath: "/common/v1/alerts/alert-1",
			StatusCode:   http.StatusOK,
			Response: &central.Alert{
				ID:       "alert-1",
				Category: "runtimeDetections",
				Severity: central.AlertSeverityMedium,
			},
		},
		{
			Name:         "not found",
			ID:           "missing",
			ExpectedPath: "/common/v1/alerts/missing",
			StatusCode:   http.StatusNotFound,
			WantErr:      true,
			ErrMessage:   "getting alert",
		},
	}

	RunGetTests(t, tests, func(c *Client) func(context.Context, string) (*central.Alert, error) {
		return c.Alerts().Get
	})
}

func TestAlertsClient_Action(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/common/v1/alerts/alert-1/actions", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		var request central.AlertActionRequest

		err := json.NewDecoder(r.Body).Decode(&request)
		assert.NoError(t, err)
		assert.Equal(t, central.AlertActionAcknowledge, request.Action)
		assert.Equal(t, "investigated, benign", request.Message)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(central.AlertActionResponse{
			ID:      "action-1",
			AlertID: "alert-1",
			Action:  central.AlertActionAcknowledge,
			Status:  "completed",
		})
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	request := &central.AlertActionRequest{
		Action:  central.AlertActionAcknowledge,
		Message: "investigated, benign",
	}
	action, err := client.Alerts().Action(context.Background(), "alert-1", request)
	require.NoError(t, err)
	assert.Equal(t, "action-1", action.ID)
	assert.Equal(t, "alert-1", action.AlertID)
	assert.Equal(t, "completed", action.Status)
}

func TestAlertsClient_Action_InvalidAction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "badRequest", "message": "action not allowed for this alert"}`))
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	request := &central.AlertActionRequest{Action: "wipeDisk"}
	_, err := client.Alerts().Action(context.Background(), "alert-1", request)
	require.Error(t, err)

	var validationErr *central.ValidationError

	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "action not allowed for this alert", validationErr.Message)
}

func TestAlertsClient_Paginator(t *testing.T) {
	pages := []string{
		`{"items": [{"id": "alert-1", "severity": "high"}], "pages": {"size": 1, "nextKey": "cursor-b"}}`,
		`{"items": [{"id": "alert-2", "severity": "low"}], "pages": {"size": 1}}`,
	}

	server, requests := newListServer(t, "/common/v1/alerts", pages)
	defer server.Close()

	client := NewTestClient(server.URL)

	paginator, err := client.Alerts().Paginator(central.NewQueryParams().WithPageSize(1), 0)
	require.NoError(t, err)

	alerts, err := paginator.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "alert-1", alerts[0].ID)
	assert.Equal(t, "alert-2", alerts[1].ID)
	assert.Equal(t, 2, *requests)
}

func TestAlertsClient_Paginator_MaxPages(t *testing.T) {
	pages := []string{
		`{"items": [{"id": "alert-1"}], "pages": {"nextKey": "cursor-b"}}`,
	}

	server, requests := newListServer(t, "/common/v1/alerts", pages)
	defer server.Close()

	client := NewTestClient(server.URL)

	paginator, err := client.Alerts().Paginator(nil, 1)
	require.NoError(t, err)

	alerts, err := paginator.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, 1, *requests)
	assert.False(t, paginator.HasMore())
}
