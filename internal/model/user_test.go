package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRole_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		role Role
		want bool
	}{
		{"user", RoleUser, true},
		{"admin", RoleAdmin, true},
		{"empty", Role(""), false},
		{"lowercase", Role("user"), false},
		{"unknown", Role("SUPERUSER"), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.role.IsValid(); got != tt.want {
				t.Errorf("Role(%q).IsValid() = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestUser_PasswordHashNotSerialized(t *testing.T) {
	t.Parallel()

	user := User{
		ID:           "01HZXK3V8N",
		Email:        "a@b.com",
		PasswordHash: "$argon2id$v=19$secret",
		Role:         RoleUser,
	}

	data, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal user: %v", err)
	}

	if strings.Contains(string(data), "argon2id") {
		t.Errorf("serialized user must not contain the password hash: %s", data)
	}
}

func TestUser_Principal(t *testing.T) {
	t.Parallel()

	user := User{
		ID:           "u1",
		Email:        "a@b.com",
		PasswordHash: "hash",
		FirstName:    "Test",
		Role:         RoleAdmin,
	}

	p := user.Principal()
	if p.ID != user.ID || p.Email != user.Email || p.Role != user.Role {
		t.Errorf("Principal() = %+v, want fields from %+v", p, user)
	}
}
