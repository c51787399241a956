package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestStaffTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("secret", "", time.Hour)

	token, err := manager.IssueStaff(7, "admin@example.com", "ADMIN")
	require.NoError(t, err)

	identity, err := manager.Verify(token, TokenTypeStaff)
	require.NoError(t, err)
	require.Equal(t, uint(7), identity.UserID)
	require.Equal(t, "ADMIN", identity.Role)
	require.Equal(t, "admin@example.com", identity.Email)
}

func TestStudentTokenRejectedAsStaff(t *testing.T) {
	manager := NewTokenManager("secret", "", time.Hour)

	token, err := manager.IssueStudent(3, "ali")
	require.NoError(t, err)

	_, err = manager.Verify(token, TokenTypeStaff)
	require.ErrorIs(t, err, ErrWrongTokenType)

	identity, err := manager.Verify(token, TokenTypeStudent)
	require.NoError(t, err)
	require.Equal(t, uint(3), identity.StudentID)
	require.Equal(t, "ali", identity.Login)
}

func TestStaffTokenRejectedAsStudent(t *testing.T) {
	manager := NewTokenManager("secret", "other", time.Hour)

	token, err := manager.IssueStaff(1, "a@example.com", "MANAGER")
	require.NoError(t, err)

	_, err = manager.Verify(token, TokenTypeStudent)
	require.ErrorIs(t, err, ErrWrongTokenType)
}

func TestTokenWithoutDiscriminatorRejected(t *testing.T) {
	manager := NewTokenManager("secret", "", time.Hour)

	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"studentId": 3,
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	token, err := raw.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = manager.Verify(token, TokenTypeStudent)
	require.ErrorIs(t, err, ErrWrongTokenType)
}

func TestExpiredTokenRejected(t *testing.T) {
	manager := NewTokenManager("secret", "", time.Minute)
	manager.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := manager.IssueStudent(3, "ali")
	require.NoError(t, err)

	manager.now = time.Now
	_, err = manager.Verify(token, TokenTypeStudent)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTamperedSignatureRejected(t *testing.T) {
	issuer := NewTokenManager("secret", "", time.Hour)
	verifier := NewTokenManager("different", "", time.Hour)

	token, err := issuer.IssueStaff(1, "a@example.com", "ADMIN")
	require.NoError(t, err)

	_, err = verifier.Verify(token, TokenTypeStaff)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)
	require.NoError(t, ComparePassword(hash, "s3cret"))
	require.ErrorIs(t, ComparePassword(hash, "wrong"), ErrPasswordMismatch)
	require.ErrorIs(t, ComparePassword("", "s3cret"), ErrPasswordMismatch)
}
