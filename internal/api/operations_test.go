package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workflowpro/qaharness/internal/api"
	mock_api "github.com/workflowpro/qaharness/tests/mock/api"
)

func TestCreateProject(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/projects", r.URL.Path)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "Website Redesign", payload["name"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(api.Project{ID: 7, Name: "Website Redesign", Status: "active"})
	}))
	defer server.Close()

	tokens := mock_api.NewMockTokenSource(ctrl)
	tokens.EXPECT().Token(gomock.Any(), "company1").Return("T1", nil)

	client := newTestClient(t, server.URL, tokens)
	project, err := client.CreateProject(context.Background(), "company1", map[string]interface{}{
		"name": "Website Redesign",
	})
	require.NoError(t, err)

	assert.Equal(t, 7, project.ID)
	assert.Equal(t, "active", project.Status)
}

func TestListProjects(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/projects", r.URL.Path)
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "10", r.URL.Query().Get("limit"))

		json.NewEncoder(w).Encode(api.ProjectList{
			Projects: []api.Project{{ID: 1, Name: "One"}, {ID: 2, Name: "Two"}},
			Page:     2,
			Limit:    10,
			Total:    12,
		})
	}))
	defer server.Close()

	tokens := mock_api.NewMockTokenSource(ctrl)
	tokens.EXPECT().Token(gomock.Any(), "company1").Return("T1", nil)

	client := newTestClient(t, server.URL, tokens)
	list, err := client.ListProjects(context.Background(), "company1", 2, 10)
	require.NoError(t, err)

	assert.Len(t, list.Projects, 2)
	assert.Equal(t, 12, list.Total)
}

func TestDeleteProject(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/projects/42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	tokens := mock_api.NewMockTokenSource(ctrl)
	tokens.EXPECT().Token(gomock.Any(), "company1").Return("T1", nil)

	client := newTestClient(t, server.URL, tokens)
	assert.NoError(t, client.DeleteProject(context.Background(), "company1", 42))
}

func TestAddTeamMember(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/projects/7/members", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "dev@company1.com", body["email"])

		json.NewEncoder(w).Encode(api.TeamMember{Email: "dev@company1.com", Role: "employee"})
	}))
	defer server.Close()

	tokens := mock_api.NewMockTokenSource(ctrl)
	tokens.EXPECT().Token(gomock.Any(), "company1").Return("T1", nil)

	client := newTestClient(t, server.URL, tokens)
	member, err := client.AddTeamMember(context.Background(), "company1", 7, "dev@company1.com")
	require.NoError(t, err)
	assert.Equal(t, "employee", member.Role)
}

func TestHealthCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("healthy", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/health", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, mock_api.NewMockTokenSource(ctrl))
		assert.True(t, client.HealthCheck(context.Background()))
	})

	t.Run("unhealthy status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, mock_api.NewMockTokenSource(ctrl))
		assert.False(t, client.HealthCheck(context.Background()))
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := newTestClient(t, server.URL, mock_api.NewMockTokenSource(ctrl))
		assert.False(t, client.HealthCheck(context.Background()))
	})
}
