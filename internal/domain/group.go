package domain

import (
	"time"

	"github.com/google/uuid"
)

type GroupRole string

const (
	RoleOwner  GroupRole = "OWNER"
	RoleAdmin  GroupRole = "ADMIN"
	RoleMember GroupRole = "MEMBER"
)

func (r GroupRole) Valid() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleMember
}

// CanModerate reports whether the role may approve, reject and kick.
func (r GroupRole) CanModerate() bool {
	return r == RoleOwner || r == RoleAdmin
}

type MembershipStatus string

const (
	StatusActive  MembershipStatus = "ACTIVE"
	StatusPending MembershipStatus = "PENDING"
)

type Group struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	IsPublic    bool      `db:"is_public" json:"is_public"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type GroupMembership struct {
	ID       uuid.UUID        `db:"id" json:"id"`
	GroupID  uuid.UUID        `db:"group_id" json:"group_id"`
	UserID   uuid.UUID        `db:"user_id" json:"user_id"`
	Role     GroupRole        `db:"role" json:"role"`
	Status   MembershipStatus `db:"status" json:"status"`
	Username string           `json:"username,omitempty"`
	Group    *Group           `json:"group,omitempty"`
	JoinedAt time.Time        `db:"joined_at" json:"joined_at"`
}

type GroupMessage struct {
	ID        uuid.UUID `db:"id" json:"id"`
	GroupID   uuid.UUID `db:"group_id" json:"group_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
