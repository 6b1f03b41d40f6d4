package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiwiz-app/kiwiz-backend/internal/platform/apierr"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/ctxutil"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
)

type stubAuth struct {
	admin  bool
	userID uuid.UUID
}

func (s stubAuth) SetContextFromToken(ctx context.Context, raw string) (context.Context, error) {
	if raw != "good" {
		return ctx, apierr.New(http.StatusUnauthorized, "unauthorized", context.Canceled)
	}
	prev := ctxutil.GetRequestData(ctx)
	rd := &ctxutil.RequestData{
		Identity: &ctxutil.Identity{Subject: "kp_1"},
		UserID:   s.userID,
		IsAdmin:  s.admin,
	}
	if prev != nil {
		rd.ClientKey = prev.ClientKey
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

type seen struct {
	rd *ctxutil.RequestData
}

func engine(am *AuthMiddleware, s *seen, chain ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachRequestContext())
	handlers := append(chain, func(c *gin.Context) {
		s.rd = ctxutil.GetRequestData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	r.GET("/x", handlers...)
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestOptionalAuth(t *testing.T) {
	am := NewAuthMiddleware(logger.Nop(), stubAuth{userID: uuid.New()})
	var s seen
	r := engine(am, &s, am.OptionalAuth())

	rec := get(r, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, s.rd)
	assert.Nil(t, s.rd.Identity)
	assert.NotEmpty(t, s.rd.ClientKey)

	rec = get(r, "bad")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, s.rd.Identity)

	rec = get(r, "good")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, s.rd.Identity)
	assert.Equal(t, "kp_1", s.rd.Identity.Subject)
	assert.NotEmpty(t, s.rd.ClientKey)
}

func TestRequireAuthAndAdmin(t *testing.T) {
	member := NewAuthMiddleware(logger.Nop(), stubAuth{})
	var s seen
	r := engine(member, &s, member.RequireAuth(), member.RequireAdmin())

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "bad").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "good").Code)

	admin := NewAuthMiddleware(logger.Nop(), stubAuth{admin: true})
	r = engine(admin, &s, admin.RequireAuth(), admin.RequireAdmin())
	assert.Equal(t, http.StatusNoContent, get(r, "good").Code)
	assert.True(t, s.rd.IsAdmin)
}
