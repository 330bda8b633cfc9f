package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/arnavshah/vetclinic-scheduler-api/pkg/database"
)

func newTestAuth() *Authenticator {
	a := NewAuthenticator("jwt-secret", "master-secret")
	a.BcryptCost = bcrypt.MinCost
	return a
}

func TestPasswordHash(t *testing.T) {
	a := newTestAuth()
	hash, err := a.HashPassword("hunter2")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("hunter2", hash))
	assert.False(t, CheckPasswordHash("hunter3", hash))
}

func TestToken(t *testing.T) {
	a := newTestAuth()
	token, err := a.CreateToken("admin")
	require.NoError(t, err)

	claims, err := a.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	other := NewAuthenticator("different", "master-secret")
	_, err = other.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := newTestAuth()
	expired.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	old, err := expired.CreateToken("admin")
	require.NoError(t, err)
	_, err = a.VerifyToken(old)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHMACKey(t *testing.T) {
	a := newTestAuth()
	key := a.GenerateHMACKey("riverside.vets")

	clinic, err := a.VerifyHMACKey(key)
	require.NoError(t, err)
	assert.Equal(t, "riverside.vets", clinic)

	_, err = a.VerifyHMACKey("riverside.vets.deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = NewAuthenticator("jwt", "other-master").VerifyHMACKey(key)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	for _, bad := range []string{"", "nodot", ".sig", "clinic."} {
		_, err = a.VerifyHMACKey(bad)
		assert.ErrorIs(t, err, ErrInvalidKeyFormat, bad)
	}
}

func TestKeyPreview(t *testing.T) {
	assert.Equal(t, "****", KeyPreview("short"))
	assert.Equal(t, "cli...cdef", KeyPreview("clinic.0123456789abcdef"))
}

func TestEnsureAdminExists(t *testing.T) {
	db, err := database.Open("", "file:auth_admin?mode=memory&cache=shared")
	require.NoError(t, err)
	a := newTestAuth()

	require.NoError(t, a.EnsureAdminExists(db, "admin", "admin123", nil))
	require.NoError(t, a.EnsureAdminExists(db, "someone", "else", nil))

	var users []database.MasterUser
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
	assert.True(t, CheckPasswordHash("admin123", users[0].PasswordHash))
}
