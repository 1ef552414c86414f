package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "opsboard_session", "session-secret", time.Hour, false), mr
}

func TestSessionRoundTripKeepsValuesAndFlash(t *testing.T) {
	sm, mr := newManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.NoError(t, err)
	assert.True(t, sess.IsNew())
	sess.Set(CSRFSessionKey, "nonce.mac")
	sess.AddFlash(FlashMessage{Kind: "success", Message: "Data refreshed"})

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "opsboard_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, strings.HasPrefix(cookies[0].Value, sess.ID+"."), "cookie carries the signed id")
	assert.True(t, mr.Exists("opsboard:session:"+sess.ID))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookies[0])
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	assert.False(t, loaded.IsNew())
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, "nonce.mac", loaded.Get(CSRFSessionKey))

	flash := loaded.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "Data refreshed", flash.Message)
	assert.Nil(t, loaded.PopFlash())
}

func TestSessionLoadIgnoresForgedCookie(t *testing.T) {
	sm, _ := newManager(t)
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "opsboard_session", Value: "../../etc"})

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, sess.IsNew())
	assert.NotEqual(t, "../../etc", sess.ID)
}

func TestSessionLoadRejectsUnsignedOrResignedCookie(t *testing.T) {
	sm, _ := newManager(t)
	ctx := context.Background()

	victim, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	victim.AddFlash(FlashMessage{Kind: "success", Message: "Data refreshed"})
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), victim))

	other := NewSessionManager(nil, "opsboard_session", "other-secret", time.Hour, false)
	for _, value := range []string{
		victim.ID,
		victim.ID + ".",
		victim.ID + ".bm90LWEtbWFj",
		other.signedValue(victim.ID),
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "opsboard_session", Value: value})
		sess, err := sm.Load(ctx, req)
		require.NoError(t, err, value)
		assert.True(t, sess.IsNew(), value)
		assert.NotEqual(t, victim.ID, sess.ID, value)
		assert.Nil(t, sess.PopFlash(), value)
	}
}

func TestSessionExpiresAfterTTL(t *testing.T) {
	sm, mr := newManager(t)
	ctx := context.Background()
	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))

	mr.FastForward(2 * time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	assert.True(t, loaded.IsNew())
	assert.Equal(t, sess.ID, loaded.ID)
}

func TestCSRFTokenBoundToSession(t *testing.T) {
	csrf := NewCSRFManager("csrf-secret")
	a := newSession("6f1c8f0e-3c1b-4c36-9b0a-3d1f2a4b5c6d")
	b := newSession("0b7d2c94-58e1-4f8e-a1a2-7c3e9d4f6a10")

	token, err := csrf.EnsureToken(a)
	require.NoError(t, err)
	again, err := csrf.EnsureToken(a)
	require.NoError(t, err)
	assert.Equal(t, token, again)
	assert.NoError(t, csrf.VerifyToken(a, token))

	b.Set(CSRFSessionKey, token)
	assert.ErrorIs(t, csrf.VerifyToken(b, token), ErrCSRFTokenMismatch)
	assert.ErrorIs(t, csrf.VerifyToken(a, "forged.token"), ErrCSRFTokenMismatch)
	assert.ErrorIs(t, csrf.VerifyToken(a, ""), ErrCSRFTokenMissing)
	assert.ErrorIs(t, csrf.VerifyToken(nil, token), ErrCSRFTokenMissing)

	_, err = csrf.EnsureToken(nil)
	assert.ErrorIs(t, err, ErrSessionMissing)
}

func TestContextCarriesSessionAndToken(t *testing.T) {
	sess := newSession("6f1c8f0e-3c1b-4c36-9b0a-3d1f2a4b5c6d")
	ctx := ContextWithCSRFToken(ContextWithSession(context.Background(), sess), "tok")
	assert.Same(t, sess, SessionFromContext(ctx))
	assert.Equal(t, "tok", CSRFTokenFromContext(ctx))
	assert.Nil(t, SessionFromContext(context.Background()))
}
