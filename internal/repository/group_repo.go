package repository

import (
	"context"

	"github.com/google/uuid"

	"habitquest/internal/domain"
)

const groupSelect = `SELECT g.id, g.name, g.description, g.is_public, g.created_at, g.updated_at,
	(SELECT count(*) FROM group_memberships m WHERE m.group_id = g.id AND m.status = 'ACTIVE')
	FROM groups g`

func scanGroup(row rowScanner) (*domain.Group, error) {
	var g domain.Group
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &g.IsPublic, &g.CreatedAt, &g.UpdatedAt, &g.MemberCount); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *Tx) CreateGroup(ctx context.Context, g *domain.Group) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	_, err := r.tx.Exec(ctx,
		`INSERT INTO groups (id, name, description, is_public, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		g.ID, g.Name, g.Description, g.IsPublic, g.CreatedAt, g.UpdatedAt,
	)
	return translate(err, "group")
}

func (r *Tx) GetGroup(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	g, err := scanGroup(r.tx.QueryRow(ctx, groupSelect+` WHERE g.id = $1`, id))
	if err != nil {
		return nil, translate(err, "group")
	}
	return g, nil
}

func (r *Tx) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	rows, err := r.tx.Query(ctx, groupSelect+` ORDER BY g.created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanGroup)
}

func (r *Tx) UpdateGroup(ctx context.Context, g *domain.Group) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE groups SET name = $2, description = $3, is_public = $4, updated_at = $5 WHERE id = $1`,
		g.ID, g.Name, g.Description, g.IsPublic, g.UpdatedAt,
	)
	return expectOne(tag, err, "group")
}

func (r *Tx) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	return expectOne(tag, err, "group")
}

const membershipSelect = `SELECT m.id, m.group_id, m.user_id, m.role, m.status, m.joined_at, u.username
	FROM group_memberships m
	JOIN users u ON u.id = m.user_id`

func scanMembership(row rowScanner) (*domain.GroupMembership, error) {
	var m domain.GroupMembership
	if err := row.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Role, &m.Status, &m.JoinedAt, &m.Username); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Tx) CreateMembership(ctx context.Context, m *domain.GroupMembership) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := r.tx.Exec(ctx,
		`INSERT INTO group_memberships (id, group_id, user_id, role, status, joined_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.GroupID, m.UserID, m.Role, m.Status, m.JoinedAt,
	)
	return translate(err, "membership")
}

func (r *Tx) GetMembership(ctx context.Context, groupID, userID uuid.UUID) (*domain.GroupMembership, error) {
	m, err := scanMembership(r.tx.QueryRow(ctx,
		membershipSelect+` WHERE m.group_id = $1 AND m.user_id = $2 FOR UPDATE OF m`, groupID, userID))
	if err != nil {
		return nil, translate(err, "membership")
	}
	return m, nil
}

func (r *Tx) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*domain.GroupMembership, error) {
	rows, err := r.tx.Query(ctx, membershipSelect+` WHERE m.group_id = $1 ORDER BY m.joined_at`, groupID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMembership)
}

func (r *Tx) ListUserGroups(ctx context.Context, userID uuid.UUID) ([]*domain.GroupMembership, error) {
	rows, err := r.tx.Query(ctx,
		membershipSelect+` WHERE m.user_id = $1 AND m.status = 'ACTIVE' ORDER BY m.joined_at`, userID)
	if err != nil {
		return nil, err
	}
	memberships, err := collect(rows, scanMembership)
	if err != nil {
		return nil, err
	}
	for _, m := range memberships {
		if m.Group, err = r.GetGroup(ctx, m.GroupID); err != nil {
			return nil, err
		}
	}
	return memberships, nil
}

func (r *Tx) UpdateMembership(ctx context.Context, m *domain.GroupMembership) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE group_memberships SET role = $2, status = $3 WHERE id = $1`, m.ID, m.Role, m.Status)
	return expectOne(tag, err, "membership")
}

func (r *Tx) DeleteMembership(ctx context.Context, id uuid.UUID) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM group_memberships WHERE id = $1`, id)
	return expectOne(tag, err, "membership")
}

func (r *Tx) CreateGroupMessage(ctx context.Context, m *domain.GroupMessage) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := r.tx.Exec(ctx,
		`INSERT INTO group_messages (id, group_id, user_id, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.GroupID, m.UserID, m.Content, m.CreatedAt,
	)
	return translate(err, "message")
}

func (r *Tx) ListGroupMessages(ctx context.Context, groupID uuid.UUID) ([]*domain.GroupMessage, error) {
	rows, err := r.tx.Query(ctx,
		`SELECT gm.id, gm.group_id, gm.user_id, u.username, gm.content, gm.created_at
		 FROM group_messages gm
		 JOIN users u ON u.id = gm.user_id
		 WHERE gm.group_id = $1
		 ORDER BY gm.created_at`, groupID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row rowScanner) (*domain.GroupMessage, error) {
		var m domain.GroupMessage
		if err := row.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Username, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		return &m, nil
	})
}
