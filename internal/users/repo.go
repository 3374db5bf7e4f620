package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type UpsertUser struct {
	FirebaseUID string
	Email       string
	DisplayName string
	// Promote grants the admin role for this login. The admin email list is
	// authoritative, so a stored admin without Promote is demoted.
	Promote bool
}

type User struct {
	ID          string `json:"id"`
	FirebaseUID string `json:"firebase_uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// EnsureUser creates or refreshes the caller's row and returns the stored record.
func (r *Repo) EnsureUser(ctx context.Context, u UpsertUser) (*User, error) {
	if strings.TrimSpace(u.FirebaseUID) == "" {
		return nil, fmt.Errorf("firebase_uid required")
	}

	role := RoleUser
	if u.Promote {
		role = RoleAdmin
	}

	const q = `
insert into users (firebase_uid, email, display_name, role, last_login_at, updated_at)
values ($1, nullif($2,''), nullif($3,''), $4, now(), now())
on conflict (firebase_uid) do update
set
  email = coalesce(excluded.email, users.email),
  display_name = coalesce(excluded.display_name, users.display_name),
  role = excluded.role,
  last_login_at = now(),
  updated_at = now()
returning id::text, firebase_uid, coalesce(email, ''), coalesce(display_name, ''), role;
`
	var out User
	err := r.db.QueryRow(ctx, q, u.FirebaseUID, u.Email, u.DisplayName, role).
		Scan(&out.ID, &out.FirebaseUID, &out.Email, &out.DisplayName, &out.Role)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return &out, nil
}
