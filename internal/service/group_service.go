package service

import (
	"context"
	"unicode/utf8"

	"github.com/google/uuid"

	"habitquest/internal/domain"
	"habitquest/internal/logger"
	"habitquest/internal/store"
)

const maxMessageLength = 1000

// MessageBroadcaster fans committed chat messages out to live listeners.
type MessageBroadcaster interface {
	BroadcastGroupMessage(msg *domain.GroupMessage)
}

type GroupService struct {
	*Deps
	broadcaster MessageBroadcaster
}

// NewGroupService builds the service; b may be nil when nobody listens live.
func NewGroupService(d *Deps, b MessageBroadcaster) *GroupService {
	return &GroupService{Deps: d, broadcaster: b}
}

type GroupInput struct {
	Name        string
	Description *string
	IsPublic    bool
}

type GroupPatch struct {
	Name        *string
	Description *string
	IsPublic    *bool
}

type GroupDetail struct {
	*domain.Group
	Members []*domain.GroupMembership `json:"members"`
}

// member returns userID's ACTIVE membership in groupID or Forbidden.
func (s *GroupService) member(ctx context.Context, tx store.Tx, groupID, userID uuid.UUID) (*domain.GroupMembership, error) {
	if _, err := tx.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	m, err := tx.GetMembership(ctx, groupID, userID)
	if domain.IsKind(err, domain.KindNotFound) || (err == nil && m.Status != domain.StatusActive) {
		return nil, domain.Forbidden("you are not an active member of this group")
	}
	return m, err
}

func (s *GroupService) moderator(ctx context.Context, tx store.Tx, groupID, userID uuid.UUID) (*domain.GroupMembership, error) {
	m, err := s.member(ctx, tx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !m.Role.CanModerate() {
		return nil, domain.Forbidden("only the owner or an admin can do this")
	}
	return m, nil
}

func (s *GroupService) owner(ctx context.Context, tx store.Tx, groupID, userID uuid.UUID) (*domain.GroupMembership, error) {
	m, err := s.member(ctx, tx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if m.Role != domain.RoleOwner {
		return nil, domain.Forbidden("only the group owner can do this")
	}
	return m, nil
}

// Create charges the creation fee and makes the creator the owner.
func (s *GroupService) Create(ctx context.Context, userID uuid.UUID, in GroupInput) (*domain.Group, error) {
	name, err := requireText("name", in.Name)
	if err != nil {
		return nil, err
	}
	var g *domain.Group
	err = s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		now := s.Clock.Now()
		g = &domain.Group{ID: uuid.New(), Name: name, Description: in.Description, IsPublic: in.IsPublic, CreatedAt: now, UpdatedAt: now}
		if _, err := s.Balance.Debit(ctx, tx, userID, domain.CurrencyGold, s.rules().GroupCreateCost, domain.TxGroupCreate, map[string]interface{}{
			"group_id": g.ID.String(),
			"name":     name,
		}); err != nil {
			return err
		}
		if err := tx.CreateGroup(ctx, g); err != nil {
			return err
		}
		g.MemberCount = 1
		return tx.CreateMembership(ctx, &domain.GroupMembership{
			GroupID:  g.ID,
			UserID:   userID,
			Role:     domain.RoleOwner,
			Status:   domain.StatusActive,
			JoinedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GroupService) List(ctx context.Context) ([]*domain.Group, error) {
	var out []*domain.Group
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.ListGroups(ctx)
		return err
	})
	return out, err
}

func (s *GroupService) Get(ctx context.Context, id uuid.UUID) (*GroupDetail, error) {
	var d *GroupDetail
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		g, err := tx.GetGroup(ctx, id)
		if err != nil {
			return err
		}
		members, err := tx.ListMembers(ctx, id)
		if err != nil {
			return err
		}
		d = &GroupDetail{Group: g, Members: members}
		return nil
	})
	return d, err
}

// Mine lists the groups userID actively belongs to.
func (s *GroupService) Mine(ctx context.Context, userID uuid.UUID) ([]*domain.GroupMembership, error) {
	var out []*domain.GroupMembership
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.ListUserGroups(ctx, userID)
		return err
	})
	return out, err
}

// Update edits the group for the edit fee. Owner only.
func (s *GroupService) Update(ctx context.Context, groupID, userID uuid.UUID, patch GroupPatch) (*domain.Group, error) {
	var g *domain.Group
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := s.owner(ctx, tx, groupID, userID); err != nil {
			return err
		}
		var err error
		if g, err = tx.GetGroup(ctx, groupID); err != nil {
			return err
		}
		if patch.Name != nil {
			if g.Name, err = requireText("name", *patch.Name); err != nil {
				return err
			}
		}
		if patch.Description != nil {
			g.Description = patch.Description
		}
		if patch.IsPublic != nil {
			g.IsPublic = *patch.IsPublic
		}
		if _, err := s.Balance.Debit(ctx, tx, userID, domain.CurrencyGold, s.rules().GroupEditCost, domain.TxGroupEdit, map[string]interface{}{
			"group_id": groupID.String(),
		}); err != nil {
			return err
		}
		g.UpdatedAt = s.Clock.Now()
		return tx.UpdateGroup(ctx, g)
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Delete removes the group with its members and messages for the delete fee.
func (s *GroupService) Delete(ctx context.Context, groupID, userID uuid.UUID) error {
	return s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := s.owner(ctx, tx, groupID, userID); err != nil {
			return err
		}
		g, err := tx.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if _, err := s.Balance.Debit(ctx, tx, userID, domain.CurrencyGold, s.rules().GroupDeleteCost, domain.TxGroupDelete, map[string]interface{}{
			"group_id": groupID.String(),
			"name":     g.Name,
		}); err != nil {
			return err
		}
		if err := tx.DeleteGroup(ctx, groupID); err != nil {
			return err
		}
		return s.Audit.LogGroup(ctx, tx, userID, domain.AuditActionGroupDelete, groupID, uuid.Nil, map[string]interface{}{"name": g.Name})
	})
}

// Join adds userID to the group: immediately for public groups, pending
// approval for private ones.
func (s *GroupService) Join(ctx context.Context, groupID, userID uuid.UUID) (*domain.GroupMembership, error) {
	var m *domain.GroupMembership
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		g, err := tx.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		existing, err := tx.GetMembership(ctx, groupID, userID)
		switch {
		case err == nil && existing.Status == domain.StatusPending:
			return domain.Conflict("your request to join is already pending")
		case err == nil:
			return domain.Conflict("you are already a member of this group")
		case !domain.IsKind(err, domain.KindNotFound):
			return err
		}

		status := domain.StatusActive
		if !g.IsPublic {
			status = domain.StatusPending
		}
		m = &domain.GroupMembership{
			GroupID:  groupID,
			UserID:   userID,
			Role:     domain.RoleMember,
			Status:   status,
			JoinedAt: s.Clock.Now(),
		}
		return tx.CreateMembership(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Leave drops userID's membership. The owner has to hand ownership over first.
func (s *GroupService) Leave(ctx context.Context, groupID, userID uuid.UUID) error {
	return s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		m, err := tx.GetMembership(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if m.Role == domain.RoleOwner {
			return domain.Forbidden("the owner cannot leave; transfer ownership first")
		}
		return tx.DeleteMembership(ctx, m.ID)
	})
}

// pending loads target's membership and requires it to await approval.
func (s *GroupService) pending(ctx context.Context, tx store.Tx, groupID, target uuid.UUID) (*domain.GroupMembership, error) {
	m, err := tx.GetMembership(ctx, groupID, target)
	if err != nil {
		return nil, err
	}
	if m.Status != domain.StatusPending {
		return nil, domain.NotFound("no pending request from this user")
	}
	return m, nil
}

func (s *GroupService) Approve(ctx context.Context, groupID, actorID, target uuid.UUID) (*domain.GroupMembership, error) {
	var m *domain.GroupMembership
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := s.moderator(ctx, tx, groupID, actorID); err != nil {
			return err
		}
		var err error
		if m, err = s.pending(ctx, tx, groupID, target); err != nil {
			return err
		}
		m.Status = domain.StatusActive
		if err := tx.UpdateMembership(ctx, m); err != nil {
			return err
		}
		return s.Audit.LogGroup(ctx, tx, actorID, domain.AuditActionGroupApprove, groupID, target, nil)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *GroupService) Reject(ctx context.Context, groupID, actorID, target uuid.UUID) error {
	return s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := s.moderator(ctx, tx, groupID, actorID); err != nil {
			return err
		}
		m, err := s.pending(ctx, tx, groupID, target)
		if err != nil {
			return err
		}
		if err := tx.DeleteMembership(ctx, m.ID); err != nil {
			return err
		}
		return s.Audit.LogGroup(ctx, tx, actorID, domain.AuditActionGroupReject, groupID, target, nil)
	})
}

// ManageRole changes target's role. Only the owner may do it. Assigning
// OWNER hands the group over to an active admin and demotes the previous
// owner to admin in the same unit of work.
func (s *GroupService) ManageRole(ctx context.Context, groupID, actorID, target uuid.UUID, role domain.GroupRole) (*domain.GroupMembership, error) {
	if !role.Valid() {
		return nil, domain.BadRequest("unknown role %q", role)
	}
	if actorID == target {
		return nil, domain.BadRequest("you cannot change your own role")
	}
	var m *domain.GroupMembership
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		owner, err := s.owner(ctx, tx, groupID, actorID)
		if err != nil {
			return err
		}
		if m, err = tx.GetMembership(ctx, groupID, target); err != nil {
			return err
		}
		if m.Status != domain.StatusActive {
			return domain.BadRequest("the user is not an active member")
		}
		if m.Role == role {
			return domain.Conflict("the user is already %s", role)
		}

		if role == domain.RoleOwner {
			if m.Role != domain.RoleAdmin {
				return domain.BadRequest("ownership can only be transferred to an admin")
			}
			owner.Role = domain.RoleAdmin
			if err := tx.UpdateMembership(ctx, owner); err != nil {
				return err
			}
			m.Role = domain.RoleOwner
			if err := tx.UpdateMembership(ctx, m); err != nil {
				return err
			}
			return s.Audit.LogGroup(ctx, tx, actorID, domain.AuditActionGroupOwnerHandoff, groupID, target, nil)
		}

		from := m.Role
		m.Role = role
		if err := tx.UpdateMembership(ctx, m); err != nil {
			return err
		}
		return s.Audit.LogGroup(ctx, tx, actorID, domain.AuditActionGroupRoleChange, groupID, target, map[string]interface{}{
			"from": string(from),
			"to":   string(role),
		})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Kick removes target. Owners may kick admins and members; admins only members.
func (s *GroupService) Kick(ctx context.Context, groupID, actorID, target uuid.UUID) error {
	if actorID == target {
		return domain.Forbidden("you cannot kick yourself")
	}
	return s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		actor, err := s.moderator(ctx, tx, groupID, actorID)
		if err != nil {
			return err
		}
		m, err := tx.GetMembership(ctx, groupID, target)
		if err != nil {
			return err
		}
		switch {
		case m.Role == domain.RoleOwner:
			return domain.Forbidden("the owner cannot be kicked")
		case m.Role == domain.RoleAdmin && actor.Role != domain.RoleOwner:
			return domain.Forbidden("admins can only kick members")
		}
		if err := tx.DeleteMembership(ctx, m.ID); err != nil {
			return err
		}
		return s.Audit.LogGroup(ctx, tx, actorID, domain.AuditActionGroupKick, groupID, target, map[string]interface{}{
			"role": string(m.Role),
		})
	})
}

// PostMessage stores a chat message and, once committed, broadcasts it.
func (s *GroupService) PostMessage(ctx context.Context, groupID, userID uuid.UUID, content string) (*domain.GroupMessage, error) {
	content, err := requireText("content", content)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, domain.BadRequest("message is longer than %d characters", maxMessageLength)
	}

	var msg *domain.GroupMessage
	err = s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		m, err := s.member(ctx, tx, groupID, userID)
		if err != nil {
			return err
		}
		msg = &domain.GroupMessage{
			GroupID:   groupID,
			UserID:    userID,
			Username:  m.Username,
			Content:   content,
			CreatedAt: s.Clock.Now(),
		}
		return tx.CreateGroupMessage(ctx, msg)
	})
	if err != nil {
		return nil, err
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastGroupMessage(msg)
	} else {
		logger.Debug("group message stored without live listeners", "group_id", groupID)
	}
	return msg, nil
}

// Messages returns the chat history oldest first. Active members only.
func (s *GroupService) Messages(ctx context.Context, groupID, userID uuid.UUID) ([]*domain.GroupMessage, error) {
	var out []*domain.GroupMessage
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := s.member(ctx, tx, groupID, userID); err != nil {
			return err
		}
		var err error
		out, err = tx.ListGroupMessages(ctx, groupID)
		return err
	})
	return out, err
}

// CanListen reports whether userID may subscribe to the group's live chat.
func (s *GroupService) CanListen(ctx context.Context, groupID, userID uuid.UUID) error {
	return s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := s.member(ctx, tx, groupID, userID)
		return err
	})
}
