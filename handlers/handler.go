package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"retail-admin/menu"
	"retail-admin/permission"
	"retail-admin/utils"
)

// RoleCache is the access lookup shared with the guard
type RoleCache interface {
	Permissions(ctx context.Context, roleID string) ([]string, error)
	Invalidate(ctx context.Context, roleID string)
	InvalidateUsers(ctx context.Context, userIDs ...string)
}

// Handler struct contains the database client, the permission model and
// the response helpers
type Handler struct {
	DB       *mongo.Client
	Database string

	Catalog   *permission.Catalog
	Menu      []menu.Node
	Roles     RoleCache
	BasicRole primitive.ObjectID

	JWTSecret string
	JWTTTL    time.Duration

	Logger       *zap.Logger
	ErrorHdlr    *utils.ErrorHandler
	ResponseHdlr *ResponseHandler
	Validate     *validator.Validate
}

// NewHandler wires a handler. The menu is given positional ids so it can
// be tracked by key.
func NewHandler(db *mongo.Client, database string, catalog *permission.Catalog, tree []menu.Node, roles RoleCache, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		DB:           db,
		Database:     database,
		Catalog:      catalog,
		Menu:         menu.AssignIDs(tree),
		Roles:        roles,
		JWTTTL:       24 * time.Hour,
		Logger:       logger,
		ErrorHdlr:    utils.NewErrorHandler(),
		ResponseHdlr: NewResponseHandler(),
		Validate:     validator.New(),
	}
}

func (h *Handler) collection(name string) *mongo.Collection {
	return h.DB.Database(h.Database).Collection(name)
}

// decode reads the JSON body into dst and validates it. It writes the
// error response and returns false on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.ErrorHdlr.HandleBadRequest(w, "Invalid request body")
		return false
	}
	if err := h.Validate.Struct(dst); err != nil {
		h.ErrorHdlr.HandleValidationError(w, utils.ValidationDetails(err))
		return false
	}
	return true
}

// pathID parses the {id} route variable.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, what string) (primitive.ObjectID, bool) {
	objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		h.ErrorHdlr.HandleBadRequest(w, "Invalid "+what+" ID")
		return primitive.NilObjectID, false
	}
	return objID, true
}

// pagination reads page and limit with the given default limit.
func pagination(r *http.Request, defaultLimit int) (page, limit int) {
	page, limit = 1, defaultLimit
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// sortOrder parses order=`field asc|desc`. Fields outside allowed fall back
// to the default sort.
func sortOrder(order string, allowed map[string]string, fallback bson.D) bson.D {
	parts := strings.Fields(order)
	if len(parts) == 0 {
		return fallback
	}
	field, ok := allowed[parts[0]]
	if !ok {
		return fallback
	}
	dir := 1
	if len(parts) > 1 && strings.EqualFold(parts[1], "desc") {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}}
}

// regexAny matches search against any of fields, case-insensitive.
func regexAny(search string, fields ...string) []bson.M {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	out := make([]bson.M, 0, len(fields))
	for _, f := range fields {
		out = append(out, bson.M{f: pattern})
	}
	return out
}

// language picks the name order for responses from Accept-Language.
func language(r *http.Request) string {
	lang := strings.ToLower(r.Header.Get("Accept-Language"))
	if strings.HasPrefix(lang, "vi") {
		return "vi"
	}
	return "en"
}
