package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestCodec(t *testing.T, opts ...CodecOption) *Codec {
	t.Helper()
	c, err := NewCodec([]byte("test-secret"), "pixelsmith", opts...)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestCodecRoundTrip(t *testing.T) {
	c := newTestCodec(t)

	token, expiresAt, err := c.Issue("user-42", []Role{RoleGuest, RoleMember})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}

	claims, err := c.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "user-42" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	roles := NormalizeRoles(claims.Roles)
	if !HasRole(roles, RoleMember) || !HasRole(roles, RoleGuest) {
		t.Fatalf("roles not preserved: %v", claims.Roles)
	}
	if HasRole(roles, RoleAdmin) {
		t.Fatalf("unexpected admin role: %v", claims.Roles)
	}
}

func TestCodecRejectsExpiredToken(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)
	issuing := newTestCodec(t, WithTokenTTL(time.Hour), WithClock(func() time.Time { return past }))

	token, _, err := issuing.Issue("user-42", []Role{RoleMember})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Same secret, current clock: signature is fine, expiry is not.
	verifying := newTestCodec(t)
	if _, err := verifying.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestCodecRejectsForeignSecret(t *testing.T) {
	c := newTestCodec(t)
	other, err := NewCodec([]byte("rotated-secret"), "pixelsmith")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	token, _, err := c.Issue("user-42", []Role{RoleMember})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after secret rotation, got %v", err)
	}
}

func TestCodecTotalOverGarbage(t *testing.T) {
	c := newTestCodec(t)

	valid, _, err := c.Issue("user-42", []Role{RoleMember})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	inputs := []string{
		"",
		"   ",
		"not-a-token",
		"a.b",
		"a.b.c",
		"....",
		strings.Repeat("A", 4096),
		valid[:len(valid)-2],
		valid + "x",
		strings.ToUpper(valid),
		"eyJhbGciOiJub25lIn0.eyJzdWIiOiJ1c2VyLTQyIn0.",
	}
	// Flip one byte in the signature segment.
	if i := strings.LastIndex(valid, "."); i > 0 && i+1 < len(valid) {
		b := []byte(valid)
		b[i+1] ^= 0x01
		inputs = append(inputs, string(b))
	}

	for _, in := range inputs {
		if _, err := c.Verify(in); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify(%.24q) = %v, want ErrInvalidToken", in, err)
		}
	}
}

func TestCodecRequiresSecret(t *testing.T) {
	if _, err := NewCodec(nil, "pixelsmith"); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestRoleClaimsDecodeOnly(t *testing.T) {
	c := newTestCodec(t)
	token, _, err := c.Issue("user-42", []Role{RoleMember, RoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	roles, ok := c.RoleClaims(token)
	if !ok {
		t.Fatal("expected role claims from valid token")
	}
	if !HasRole(roles, RoleAdmin) || !HasRole(roles, RoleMember) {
		t.Fatalf("unexpected role claims: %v", roles)
	}
	if _, ok := c.RoleClaims("garbage"); ok {
		t.Fatal("expected no role claims from garbage")
	}
}
