// Package auth issues and verifies the bearer tokens used by staff and students.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token namespaces carried in the "type" claim.
const (
	TokenTypeStaff   = "staff"
	TokenTypeStudent = "student"
)

// DefaultTokenTTL matches the session length of the admin panel and the cabinet.
const DefaultTokenTTL = 7 * 24 * time.Hour

var (
	// ErrInvalidToken indicates a malformed, expired or wrongly signed token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWrongTokenType indicates a token from the other namespace.
	ErrWrongTokenType = errors.New("wrong token type")
)

// StaffClaims identify a staff user.
type StaffClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// StudentClaims identify a student of the cabinet.
type StudentClaims struct {
	StudentID uint   `json:"student_id"`
	Login     string `json:"login"`
	Type      string `json:"type"`
	jwt.RegisteredClaims
}

// Identity is the verified content of either token kind.
type Identity struct {
	Type      string
	UserID    uint
	Email     string
	Role      string
	StudentID uint
	Login     string
}

// TokenManager signs and verifies HS256 tokens for both namespaces.
type TokenManager struct {
	staffSecret   []byte
	studentSecret []byte
	ttl           time.Duration
	now           func() time.Time
}

// NewTokenManager builds a token manager. An empty student secret reuses the staff secret.
func NewTokenManager(staffSecret, studentSecret string, ttl time.Duration) *TokenManager {
	if studentSecret == "" {
		studentSecret = staffSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{
		staffSecret:   []byte(staffSecret),
		studentSecret: []byte(studentSecret),
		ttl:           ttl,
		now:           time.Now,
	}
}

// IssueStaff signs a staff token.
func (m *TokenManager) IssueStaff(userID uint, email, role string) (string, error) {
	now := m.now()
	claims := StaffClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Type:   TokenTypeStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.staffSecret)
}

// IssueStudent signs a student token.
func (m *TokenManager) IssueStudent(studentID uint, login string) (string, error) {
	now := m.now()
	claims := StudentClaims{
		StudentID: studentID,
		Login:     login,
		Type:      TokenTypeStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(studentID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.studentSecret)
}

// Verify checks the token and requires the given namespace. The discriminator
// is read first (unverified) to pick the key, then the token is fully verified
// against that namespace's key.
func (m *TokenManager) Verify(tokenString, expectedType string) (Identity, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return Identity{}, ErrInvalidToken
	}

	var probe jwt.MapClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &probe); err != nil {
		return Identity{}, ErrInvalidToken
	}
	tokenType, _ := probe["type"].(string)
	if tokenType == "" || tokenType != expectedType {
		return Identity{}, ErrWrongTokenType
	}

	switch tokenType {
	case TokenTypeStaff:
		var claims StaffClaims
		if err := m.parse(tokenString, &claims, m.staffSecret); err != nil {
			return Identity{}, err
		}
		if claims.UserID == 0 {
			return Identity{}, ErrInvalidToken
		}
		return Identity{Type: TokenTypeStaff, UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
	case TokenTypeStudent:
		var claims StudentClaims
		if err := m.parse(tokenString, &claims, m.studentSecret); err != nil {
			return Identity{}, err
		}
		if claims.StudentID == 0 {
			return Identity{}, ErrInvalidToken
		}
		return Identity{Type: TokenTypeStudent, StudentID: claims.StudentID, Login: claims.Login}, nil
	default:
		return Identity{}, ErrWrongTokenType
	}
}

func (m *TokenManager) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
