package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/models"
	"storefront/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/", func(c *gin.Context) {
		id := CurrentIdentity(c)
		userID := 0
		if id != nil {
			userID = id.UserID
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "session": CartSessionID(c)})
	})
	return r
}

func issue(t *testing.T, tokens *utils.TokenIssuer, role string) string {
	t.Helper()
	token, err := tokens.Issue(models.Identity{UserID: 4, Email: "a@b.co", Role: role, Name: "A"})
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware(t *testing.T) {
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	r := newRouter(AuthMiddleware(tokens))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + issue(t, tokens, models.RoleCustomer), want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	r := newRouter(AuthMiddleware(tokens), AdminMiddleware())

	for role, want := range map[string]int{models.RoleCustomer: http.StatusForbidden, models.RoleAdmin: http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, tokens, role))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, role)
	}
}

func TestCartSessionForGuestsAndUsers(t *testing.T) {
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	r := newRouter(OptionalAuthMiddleware(tokens), CartSessionMiddleware())

	// fresh guest
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	issued := w.Header().Get(CartSessionHeader)
	_, err := uuid.Parse(issued)
	require.NoError(t, err)
	assert.Contains(t, w.Body.String(), `"session":"guest:`+issued+`"`)

	// returning guest keeps the id
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CartSessionHeader, issued)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, issued, w.Header().Get(CartSessionHeader))

	// garbage ids are replaced
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CartSessionHeader, "../../etc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "../../etc", w.Header().Get(CartSessionHeader))

	// signed in shoppers use their account cart, a bad token falls back to guest
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, tokens, models.RoleCustomer))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"session":"user:4"`)
	assert.Empty(t, w.Header().Get(CartSessionHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"user_id":0`)
}
