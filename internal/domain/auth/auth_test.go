package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	claims := Claims{UserID: "u1", TenantID: "t1", RoleID: "r1", RoleName: RoleHOD}
	token, err := GenerateToken("test-secret", claims, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parsed, err := ParseToken("test-secret", token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.UserID != "u1" || parsed.TenantID != "t1" || parsed.RoleName != RoleHOD {
		t.Fatalf("unexpected claims: %+v", parsed)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", Claims{UserID: "u1"}, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseToken("secret-b", token); err == nil {
		t.Fatal("expected parse failure with the wrong secret")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("S3curePassword!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckPassword(hash, "S3curePassword!"); err != nil {
		t.Fatalf("expected password to verify: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch for wrong password")
	}
}

func TestEveryRoleHasPermissions(t *testing.T) {
	for _, role := range []string{RoleEmployee, RoleSupervisor, RoleHOD, RolePeer, RoleBranchSupervisor, RoleHR, RoleSystemAdmin} {
		perms, ok := RolePermissions[role]
		if !ok || len(perms) == 0 {
			t.Fatalf("role %s has no permissions", role)
		}
		for _, perm := range perms {
			found := false
			for _, known := range DefaultPermissions {
				if perm == known {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("role %s grants unknown permission %s", role, perm)
			}
		}
	}
}
