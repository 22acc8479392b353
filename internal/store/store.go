// Package store defines the persistence contract shared by the Postgres
// repository and the in-memory implementation.
package store

import (
	"context"

	"github.com/google/uuid"

	"habitquest/internal/domain"
)

// Store runs units of work. Everything fn writes through tx commits together
// or not at all; concurrent units of work behave as if run one after another.
// A missing row is reported as a domain NotFound error.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Ping(ctx context.Context) error
}

type Tx interface {
	Users
	Pets
	Items
	Tasks
	Rewards
	Groups
	Challenges
	Ledger
}

type Users interface {
	CreateUser(ctx context.Context, u *domain.User) error
	// GetUser loads the user and locks the row for the rest of the unit of work.
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// AdjustBalance adds the deltas and returns the updated user.
	// A result below zero fails with domain.ErrInsufficientFunds.
	AdjustBalance(ctx context.Context, userID uuid.UUID, goldDelta, gemsDelta int64) (*domain.User, error)
}

type Pets interface {
	CreatePet(ctx context.Context, p *domain.Pet) error
	// GetPetByUser returns the pet with its equipped items.
	GetPetByUser(ctx context.Context, userID uuid.UUID) (*domain.Pet, error)
	UpdatePet(ctx context.Context, p *domain.Pet) error
	// Equip puts itemID into slot, replacing whatever was there.
	Equip(ctx context.Context, petID uuid.UUID, slot domain.EquipmentSlot, itemID uuid.UUID) error
	Unequip(ctx context.Context, petID uuid.UUID, slot domain.EquipmentSlot) error
}

type Items interface {
	CreatePetItem(ctx context.Context, item *domain.PetItem) error
	GetPetItem(ctx context.Context, id uuid.UUID) (*domain.PetItem, error)
	// ListPetItems returns the catalog ordered by cost.
	ListPetItems(ctx context.Context) ([]*domain.PetItem, error)

	GetInventoryItem(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error)
	FindInventoryItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.InventoryItem, error)
	ListInventory(ctx context.Context, userID uuid.UUID) ([]*domain.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, inv *domain.InventoryItem) error
	SetInventoryQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	DeleteInventoryItem(ctx context.Context, id uuid.UUID) error
}

type Tasks interface {
	CreateTask(ctx context.Context, t domain.Task) error
	GetTask(ctx context.Context, kind domain.TaskKind, id uuid.UUID) (domain.Task, error)
	// ListTasks returns the user's tasks of kind, newest first.
	ListTasks(ctx context.Context, kind domain.TaskKind, userID uuid.UUID) ([]domain.Task, error)
	UpdateTask(ctx context.Context, t domain.Task) error
	// DeleteTask removes the task and its logs.
	DeleteTask(ctx context.Context, kind domain.TaskKind, id uuid.UUID) error

	CreateTaskLog(ctx context.Context, l *domain.TaskLog) error
	// LatestTaskLog returns nil, nil when the task has never been logged.
	LatestTaskLog(ctx context.Context, kind domain.TaskKind, taskID uuid.UUID) (*domain.TaskLog, error)
	// ListTaskLogs returns logs newest first.
	ListTaskLogs(ctx context.Context, kind domain.TaskKind, taskID uuid.UUID) ([]*domain.TaskLog, error)
}

type Rewards interface {
	CreateReward(ctx context.Context, r *domain.Reward) error
	GetReward(ctx context.Context, id uuid.UUID) (*domain.Reward, error)
	ListRewards(ctx context.Context, userID uuid.UUID) ([]*domain.Reward, error)
	UpdateReward(ctx context.Context, r *domain.Reward) error
	DeleteReward(ctx context.Context, id uuid.UUID) error
}

type Groups interface {
	// CreateGroup fails with Conflict when the name is taken.
	CreateGroup(ctx context.Context, g *domain.Group) error
	GetGroup(ctx context.Context, id uuid.UUID) (*domain.Group, error)
	// ListGroups returns every group with its active member count.
	ListGroups(ctx context.Context) ([]*domain.Group, error)
	UpdateGroup(ctx context.Context, g *domain.Group) error
	// DeleteGroup removes the group with its memberships and messages.
	DeleteGroup(ctx context.Context, id uuid.UUID) error

	CreateMembership(ctx context.Context, m *domain.GroupMembership) error
	GetMembership(ctx context.Context, groupID, userID uuid.UUID) (*domain.GroupMembership, error)
	// ListMembers returns memberships of any status with usernames, oldest first.
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]*domain.GroupMembership, error)
	// ListUserGroups returns the user's active memberships with their groups.
	ListUserGroups(ctx context.Context, userID uuid.UUID) ([]*domain.GroupMembership, error)
	UpdateMembership(ctx context.Context, m *domain.GroupMembership) error
	DeleteMembership(ctx context.Context, id uuid.UUID) error

	CreateGroupMessage(ctx context.Context, m *domain.GroupMessage) error
	// ListGroupMessages returns messages oldest first with usernames.
	ListGroupMessages(ctx context.Context, groupID uuid.UUID) ([]*domain.GroupMessage, error)
}

type Challenges interface {
	CreateChallenge(ctx context.Context, c *domain.Challenge) error
	GetChallenge(ctx context.Context, id uuid.UUID) (*domain.Challenge, error)
	// ListChallenges returns every challenge with its active participant count, newest first.
	ListChallenges(ctx context.Context) ([]*domain.Challenge, error)
	UpdateChallenge(ctx context.Context, c *domain.Challenge) error
	DeleteChallenge(ctx context.Context, id uuid.UUID) error

	CreateParticipation(ctx context.Context, p *domain.Participation) error
	GetParticipation(ctx context.Context, id uuid.UUID) (*domain.Participation, error)
	FindParticipation(ctx context.Context, challengeID, userID uuid.UUID) (*domain.Participation, error)
	ListParticipants(ctx context.Context, challengeID uuid.UUID) ([]*domain.Participation, error)
	ListUserParticipations(ctx context.Context, userID uuid.UUID) ([]*domain.Participation, error)
	// ListFinishers returns completed participations by ascending completion
	// time, ties broken by join order.
	ListFinishers(ctx context.Context, challengeID uuid.UUID, limit int) ([]*domain.Participation, error)
	UpdateParticipation(ctx context.Context, p *domain.Participation) error
	DeleteParticipation(ctx context.Context, id uuid.UUID) error
}

type Ledger interface {
	CreateTransaction(ctx context.Context, t *domain.Transaction) error
	// ListTransactions returns the user's newest entries first.
	ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Transaction, error)
	CreateAuditLog(ctx context.Context, l *domain.AuditLog) error
	ListAuditLogs(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.AuditLog, error)
}
