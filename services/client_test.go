package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retail-admin/models"
)

func TestListSendsQueryAndToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "ann", q.Get("search"))
		assert.Equal(t, "1", q.Get("status"))
		assert.False(t, q.Has("roleId"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"status":200,"message":"ok","data":{"items":[{"id":"a"},{"id":"b"}],"totalCount":12}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "tok", nil)
	resp, err := c.Users().List(context.Background(), ListParams{
		Page: 2, Limit: 10, Search: "ann",
		Filters: map[string]string{"status": "1", "roleId": ""},
	})
	require.NoError(t, err)
	assert.True(t, resp.OK())

	items, total, err := resp.List()
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 12, total)
}

func TestHandledErrorIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body models.CreateRoleRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Staff", body.Name)

		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"status":409,"message":"Role already exists","typeError":"ALREADY_EXIST"}`)
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, "", nil).Roles().Create(context.Background(), models.CreateRoleRequest{Name: "Staff"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, "ALREADY_EXIST", resp.TypeError)
	assert.Equal(t, "", resp.RecordID())
	assert.False(t, resp.HasData())
}

func TestTransportFailureIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "", nil).Users().Delete(context.Background(), "x")
	require.Error(t, err)
}

func TestUndecodableBodyIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", nil).Users().Get(context.Background(), "x")
	require.Error(t, err)
}

func TestDeleteManySendsIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/users/delete-many", r.URL.Path)
		var body models.DeleteUsersRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"a", "b"}, body.UserIDs)
		io.WriteString(w, `{"status":200,"data":{"deletedCount":2}}`)
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, "", nil).Users().DeleteMany(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, resp.HasData())
}

func TestRecordID(t *testing.T) {
	assert.Equal(t, "abc", Response{Data: json.RawMessage(`{"id":"abc"}`)}.RecordID())
	assert.Equal(t, "m1", Response{Data: json.RawMessage(`{"_id":"m1"}`)}.RecordID())
	assert.Equal(t, "", Response{Data: json.RawMessage(`{"id":""}`)}.RecordID())
	assert.Equal(t, "", Response{Data: json.RawMessage(`[]`)}.RecordID())
	assert.Equal(t, "", Response{Data: json.RawMessage(`null`)}.RecordID())
}

func TestListRejectsNonPages(t *testing.T) {
	_, _, err := Response{Data: json.RawMessage(`{"id":"x"}`)}.List()
	require.ErrorIs(t, err, ErrNoList)

	_, _, err = Response{}.List()
	require.ErrorIs(t, err, ErrNoList)

	items, total, err := Response{Data: json.RawMessage(`{"items":null,"totalCount":0}`)}.List()
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
}

func TestAuthEndpoints(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.URL.Path == "/auth/change-password" {
			var body models.ChangePasswordRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "old-secret", body.CurrentPassword)
		}
		io.WriteString(w, `{"status":200,"data":{"id":"u1","email":"ann@shop.test"}}`)
	}))
	defer srv.Close()

	auth := NewClient(srv.URL, "tok", nil).Auth()
	ctx := context.Background()

	resp, err := auth.UpdateMe(ctx, models.UpdateMeRequest{City: "Hue"})
	require.NoError(t, err)
	assert.Equal(t, "ann@shop.test", resp.Email())

	_, err = auth.ChangePassword(ctx, models.ChangePasswordRequest{CurrentPassword: "old-secret", NewPassword: "new-secret"})
	require.NoError(t, err)
	_, err = auth.Me(ctx)
	require.NoError(t, err)
	_, err = auth.Register(ctx, models.CreateUserRequest{Email: "ann@shop.test", Password: "secret123"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"PUT /auth/me",
		"PATCH /auth/change-password",
		"GET /auth/me",
		"POST /auth/signup",
	}, calls)
	assert.Empty(t, Response{Data: json.RawMessage(`null`)}.Email())
}
