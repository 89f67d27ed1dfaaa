package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/danielotaviano/miniprova-api/internal/app/models"
)

func newTestJWTService(exp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  exp,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "miniprova.test",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	user := &models.User{ID: 42, Email: "teacher@example.com"}
	roles := []models.RoleType{models.RoleTeacher, models.RoleMonitor}

	accessToken, refreshToken, expiresIn, err := svc.GenerateTokenPair(user, roles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accessToken == "" || refreshToken == "" {
		t.Fatalf("expected non-empty tokens")
	}
	if expiresIn != 3600 {
		t.Fatalf("expected expiresIn 3600, got %d", expiresIn)
	}

	claims, err := svc.ValidateAndExtractClaims(accessToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "teacher@example.com" {
		t.Fatalf("claims do not match user: %+v", claims)
	}
	if !claims.HasRole(models.RoleTeacher) || !claims.HasRole(models.RoleMonitor) {
		t.Fatalf("expected teacher and monitor roles, got %v", claims.Roles)
	}
	if claims.HasRole(models.RoleAdmin) {
		t.Fatalf("unexpected admin role")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	user := &models.User{ID: 1, Email: "user@example.com"}

	accessToken, _, _, err := svc.GenerateTokenPair(user, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := NewJWTService(JWTConfig{
		SecretKey:       "different-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "miniprova.test",
	})
	if _, err := other.ValidateToken(accessToken); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	svc := newTestJWTService(-time.Minute)
	user := &models.User{ID: 1, Email: "user@example.com"}

	accessToken, _, _, err := svc.GenerateTokenPair(user, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.ValidateToken(accessToken); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateAndExtractClaimsEmpty(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	if _, err := svc.ValidateAndExtractClaims(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer prefix", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "raw token", header: "abc.def.ghi", want: "abc.def.ghi"},
		{name: "empty header", header: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tc.header)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidFormat) {
					t.Fatalf("expected ErrInvalidFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
