package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/shoplist/internal/mockstorage"
	"github.com/patric-chuzhbe/shoplist/internal/user"
)

const (
	testCookieName = "auth"
	testSecret     = "0123456789abcdef"
)

func protectedHandler(t *testing.T, wantUserID int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, wantUserID, userID)
		w.WriteHeader(http.StatusNoContent)
	})
}

func issueToken(t *testing.T, a *Auth, userID int64) (string, *http.Cookie) {
	t.Helper()

	recorder := httptest.NewRecorder()
	require.NoError(t, a.LogIn(recorder, userID))

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	return recorder.Header().Get("Authorization"), cookies[0]
}

func TestAuthenticateUser(t *testing.T) {
	db := &mockstorage.StorageMock{}
	db.On("GetUser", mock.Anything, int64(5)).Return(&user.User{ID: 5}, true, nil)
	db.On("GetUser", mock.Anything, int64(6)).Return(nil, false, nil)
	db.On("GetUser", mock.Anything, int64(7)).Return(nil, false, errors.New("db is down"))

	a := New(db, testCookieName, []byte(testSecret), time.Hour)
	token, cookie := issueToken(t, a, 5)
	assert.Equal(t, token, cookie.Value)

	forged := New(db, testCookieName, []byte("another-secret-key!"), time.Hour)
	forgedToken, _ := issueToken(t, forged, 5)
	goneUserToken, _ := issueToken(t, a, 6)
	brokenStoreToken, _ := issueToken(t, a, 7)

	expired, err := a.buildJWTString(&Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
		UserID:           5,
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		prepare func(r *http.Request)
		code    int
	}{
		{"cookie", func(r *http.Request) { r.AddCookie(cookie) }, http.StatusNoContent},
		{"header", func(r *http.Request) { r.Header.Set("Authorization", token) }, http.StatusNoContent},
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusNoContent},
		{"no token", func(r *http.Request) {}, http.StatusUnauthorized},
		{"garbage token", func(r *http.Request) { r.Header.Set("Authorization", "garbage") }, http.StatusUnauthorized},
		{"foreign signature", func(r *http.Request) { r.Header.Set("Authorization", forgedToken) }, http.StatusUnauthorized},
		{"expired token", func(r *http.Request) { r.Header.Set("Authorization", expired) }, http.StatusUnauthorized},
		{"deleted user", func(r *http.Request) { r.Header.Set("Authorization", goneUserToken) }, http.StatusUnauthorized},
		{"store failure", func(r *http.Request) { r.Header.Set("Authorization", brokenStoreToken) }, http.StatusInternalServerError},
	}

	handler := a.AuthenticateUser(protectedHandler(t, 5))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/api/lists", nil)
			tt.prepare(request)
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.code, recorder.Code)
			if tt.code == http.StatusUnauthorized {
				assert.JSONEq(t, `{"message":"authentication required"}`, recorder.Body.String())
			}
		})
	}
}

func TestLogOutExpiresCookie(t *testing.T) {
	a := New(&mockstorage.StorageMock{}, testCookieName, []byte(testSecret), time.Hour)

	recorder := httptest.NewRecorder()
	a.LogOut(recorder)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestUserIDFromContext(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := UserIDFromContext(request.Context())
	assert.False(t, ok)

	userID, ok := UserIDFromContext(WithUserID(request.Context(), 42))
	assert.True(t, ok)
	assert.Equal(t, int64(42), userID)
}
