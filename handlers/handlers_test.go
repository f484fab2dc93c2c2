package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"retail-admin/menu"
	"retail-admin/middleware"
	"retail-admin/models"
	"retail-admin/permission"
	"retail-admin/utils"
)

func newTestHandler() *Handler {
	return NewHandler(nil, "test-db", permission.DefaultCatalog(), menu.DefaultTree(), nil, nil)
}

func withHeld(r *http.Request, codes ...string) *http.Request {
	return r.WithContext(middleware.WithHeld(r.Context(), permission.NewHeldSet(codes)))
}

type envelope[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var out envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestMyPermissions(t *testing.T) {
	h := newTestHandler()
	req := withHeld(httptest.NewRequest(http.MethodGet, "/auth/me/permissions?key=SYSTEM.USER&actions=view,create", nil), "SYSTEM.USER.VIEW")
	rec := httptest.NewRecorder()
	h.MyPermissions(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[models.ResolvedPermissionsResponse](t, rec)
	assert.Equal(t, "SYSTEM.USER", body.Data.Key)
	assert.Equal(t, permission.ResolvedActionSet{View: true}, body.Data.Actions)
}

func TestMyPermissionsAdminGetsAllActions(t *testing.T) {
	h := newTestHandler()
	req := withHeld(httptest.NewRequest(http.MethodGet, "/auth/me/permissions?key=NOT.A.PATH", nil), permission.Admin)
	rec := httptest.NewRecorder()
	h.MyPermissions(rec, req)

	body := decodeBody[models.ResolvedPermissionsResponse](t, rec)
	assert.Equal(t, permission.ResolvedActionSet{Create: true, View: true, Update: true, Delete: true}, body.Data.Actions)
}

func TestMyPermissionsBadQuery(t *testing.T) {
	h := newTestHandler()
	for _, target := range []string{"/auth/me/permissions", "/auth/me/permissions?key=SYSTEM.USER&actions=EXPORT"} {
		rec := httptest.NewRecorder()
		h.MyPermissions(rec, withHeld(httptest.NewRequest(http.MethodGet, target, nil)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), `"typeError":"INVALID"`)
	}
}

func TestMyMenuTracksActivePath(t *testing.T) {
	h := newTestHandler()
	req := withHeld(httptest.NewRequest(http.MethodGet, "/auth/me/menu?path=/system/user", nil), "SYSTEM.USER.VIEW")
	rec := httptest.NewRecorder()
	h.MyMenu(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[models.MenuResponse](t, rec)
	assert.Equal(t, menu.OpenState{"1": true}, body.Data.Open)
	require.Len(t, body.Data.Items, 2)
	assert.Equal(t, "System", body.Data.Items[0].Title)
	assert.True(t, body.Data.Items[0].Highlighted)
	assert.Equal(t, "User", body.Data.Items[1].Title)
	assert.True(t, body.Data.Items[1].Active)
	assert.Equal(t, 2, body.Data.Items[1].Depth)
	require.Len(t, body.Data.Tree, 1)
	assert.Len(t, body.Data.Tree[0].Children, 1)
}

func TestMyMenuManualOpenAndEmpty(t *testing.T) {
	h := newTestHandler()
	req := withHeld(httptest.NewRequest(http.MethodGet, "/auth/me/menu?open=3", nil), "SETTING.CITY.VIEW")
	rec := httptest.NewRecorder()
	h.MyMenu(rec, req)
	body := decodeBody[models.MenuResponse](t, rec)
	assert.Equal(t, menu.OpenState{"3": true}, body.Data.Open)
	assert.Len(t, body.Data.Items, 2)

	rec = httptest.NewRecorder()
	h.MyMenu(rec, withHeld(httptest.NewRequest(http.MethodGet, "/auth/me/menu", nil)))
	assert.Contains(t, rec.Body.String(), `"items":[]`)
	assert.Contains(t, rec.Body.String(), `"tree":[]`)
}

func TestMyMenuBasicHolder(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()
	h.MyMenu(rec, withHeld(httptest.NewRequest(http.MethodGet, "/auth/me/menu?path=/dashboard", nil), permission.Basic))

	body := decodeBody[models.MenuResponse](t, rec)
	require.Len(t, body.Data.Items, 1)
	assert.Equal(t, "Dashboard", body.Data.Items[0].Title)
	assert.True(t, body.Data.Items[0].Active)
}

func TestListPermissionCodesExcludesSentinels(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()
	h.ListPermissionCodes(rec, httptest.NewRequest(http.MethodGet, "/permissions", nil))

	body := decodeBody[models.PermissionCodesResponse](t, rec)
	assert.NotContains(t, body.Data.Codes, permission.Admin)
	assert.NotContains(t, body.Data.Codes, permission.Basic)
	assert.Contains(t, body.Data.Codes, "SYSTEM.USER.VIEW")
}

func TestCreateRoleRejectsBeforeTouchingTheDatabase(t *testing.T) {
	h := newTestHandler()
	cases := map[string]string{
		"malformed":     `{"name":`,
		"short name":    `{"name":"a"}`,
		"unknown code":  `{"name":"Staff","permissions":["SYSTEM.USER.EXPORT"]}`,
		"admin granted": `{"name":"Staff","permissions":["ADMIN.GRANTED"]}`,
	}
	for name, body := range cases {
		rec := httptest.NewRecorder()
		h.CreateRole(rec, httptest.NewRequest(http.MethodPost, "/roles", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)

		var resp utils.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), name)
		assert.Equal(t, models.TypeInvalid, resp.TypeError, name)
	}
}

func TestPaginatedShape(t *testing.T) {
	rec := httptest.NewRecorder()
	NewResponseHandler().Paginated(rec, "ok", []string{"a", "b"}, 2, 2, 5)

	var resp struct {
		Data ListData `json:"data"`
		Meta PageMeta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Data.TotalCount)
	assert.Equal(t, []interface{}{"a", "b"}, resp.Data.Items)
	assert.Equal(t, PageMeta{Page: 2, Limit: 2, TotalPages: 3}, resp.Meta)

	rec = httptest.NewRecorder()
	NewResponseHandler().Paginated(rec, "ok", nil, 1, 10, 0)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestPaginationAndSortOrder(t *testing.T) {
	page, limit := pagination(httptest.NewRequest(http.MethodGet, "/?page=3&limit=500", nil), 10)
	assert.Equal(t, 3, page)
	assert.Equal(t, 100, limit)

	page, limit = pagination(httptest.NewRequest(http.MethodGet, "/?page=-1&limit=x", nil), 10)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)

	fallback := bson.D{{Key: "createdAt", Value: -1}}
	assert.Equal(t, bson.D{{Key: "email", Value: -1}}, sortOrder("email DESC", userSortFields, fallback))
	assert.Equal(t, bson.D{{Key: "name", Value: 1}}, sortOrder("name", roleSortFields, fallback))
	assert.Equal(t, fallback, sortOrder("password asc", userSortFields, fallback))
}

func TestRegexAnyEscapesInput(t *testing.T) {
	clauses := regexAny("a.b(", "name")
	require.Len(t, clauses, 1)
	re, ok := clauses[0]["name"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, `a\.b\(`, re.Pattern)
	assert.Equal(t, "i", re.Options)
}

func withCaller(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.WithClaims(r.Context(), &utils.Claims{UserID: userID}))
}

func TestSelfServiceNeedsCaller(t *testing.T) {
	h := newTestHandler()
	for name, call := range map[string]http.HandlerFunc{"update me": h.UpdateMe, "change password": h.ChangePassword} {
		rec := httptest.NewRecorder()
		call(rec, httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)

		rec = httptest.NewRecorder()
		call(rec, withCaller(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{}`)), "not-hex"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}

func TestUpdateMeRejectsEmptyAndInvalidProfiles(t *testing.T) {
	h := newTestHandler()
	for name, body := range map[string]string{
		"nothing to update": `{}`,
		"short phone":       `{"phoneNumber":"123"}`,
		"not json":          `{`,
	} {
		rec := httptest.NewRecorder()
		h.UpdateMe(rec, withCaller(httptest.NewRequest(http.MethodPut, "/auth/me", strings.NewReader(body)), "65f000000000000000000001"))
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		assert.Contains(t, rec.Body.String(), `"typeError":"INVALID"`, name)
	}
}

func TestChangePasswordValidation(t *testing.T) {
	h := newTestHandler()
	for name, body := range map[string]string{
		"missing current": `{"newPassword":"secret123"}`,
		"too short":       `{"currentPassword":"secret123","newPassword":"abc"}`,
		"unchanged":       `{"currentPassword":"secret123","newPassword":"secret123"}`,
	} {
		rec := httptest.NewRecorder()
		h.ChangePassword(rec, withCaller(httptest.NewRequest(http.MethodPatch, "/auth/change-password", strings.NewReader(body)), "65f000000000000000000001"))
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)

		var resp utils.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), name)
		assert.Equal(t, models.TypeInvalid, resp.TypeError, name)
	}
}

type recordingRoles struct {
	users []string
}

func (r *recordingRoles) Permissions(context.Context, string) ([]string, error) { return nil, nil }

func (r *recordingRoles) Invalidate(context.Context, string) {}

func (r *recordingRoles) InvalidateUsers(_ context.Context, ids ...string) {
	r.users = append(r.users, ids...)
}

func TestInvalidateUsersDropsCachedAccess(t *testing.T) {
	rec := &recordingRoles{}
	h := NewHandler(nil, "test-db", permission.DefaultCatalog(), menu.DefaultTree(), rec, nil)
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	h.invalidateUsers(context.Background(), a, b)
	h.invalidateUsers(context.Background())
	assert.Equal(t, []string{a.Hex(), b.Hex()}, rec.users)

	newTestHandler().invalidateUsers(context.Background(), a)
}
