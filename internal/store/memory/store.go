// Package memory is a process-local store.Store. Each unit of work runs
// against a private copy of the data that replaces the shared state only
// when the work succeeds.
package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"habitquest/internal/domain"
	"habitquest/internal/store"
)

type equipKey struct {
	petID uuid.UUID
	slot  domain.EquipmentSlot
}

type state struct {
	seq int64
	// order remembers insertion position so equal timestamps sort stably.
	order map[uuid.UUID]int64

	users     map[uuid.UUID]domain.User
	pets      map[uuid.UUID]domain.Pet
	equipped  map[equipKey]domain.EquippedItem
	items     map[uuid.UUID]domain.PetItem
	inventory map[uuid.UUID]domain.InventoryItem

	habits  map[uuid.UUID]domain.Habit
	dailies map[uuid.UUID]domain.Daily
	todos   map[uuid.UUID]domain.Todo
	logs    map[uuid.UUID]domain.TaskLog
	rewards map[uuid.UUID]domain.Reward

	groups         map[uuid.UUID]domain.Group
	memberships    map[uuid.UUID]domain.GroupMembership
	messages       map[uuid.UUID]domain.GroupMessage
	challenges     map[uuid.UUID]domain.Challenge
	participations map[uuid.UUID]domain.Participation

	transactions []domain.Transaction
	audits       []domain.AuditLog
}

func newState() *state {
	return &state{
		order:          make(map[uuid.UUID]int64),
		users:          make(map[uuid.UUID]domain.User),
		pets:           make(map[uuid.UUID]domain.Pet),
		equipped:       make(map[equipKey]domain.EquippedItem),
		items:          make(map[uuid.UUID]domain.PetItem),
		inventory:      make(map[uuid.UUID]domain.InventoryItem),
		habits:         make(map[uuid.UUID]domain.Habit),
		dailies:        make(map[uuid.UUID]domain.Daily),
		todos:          make(map[uuid.UUID]domain.Todo),
		logs:           make(map[uuid.UUID]domain.TaskLog),
		rewards:        make(map[uuid.UUID]domain.Reward),
		groups:         make(map[uuid.UUID]domain.Group),
		memberships:    make(map[uuid.UUID]domain.GroupMembership),
		messages:       make(map[uuid.UUID]domain.GroupMessage),
		challenges:     make(map[uuid.UUID]domain.Challenge),
		participations: make(map[uuid.UUID]domain.Participation),
	}
}

func (s *state) clone() *state {
	return &state{
		seq:            s.seq,
		order:          maps.Clone(s.order),
		users:          maps.Clone(s.users),
		pets:           maps.Clone(s.pets),
		equipped:       maps.Clone(s.equipped),
		items:          maps.Clone(s.items),
		inventory:      maps.Clone(s.inventory),
		habits:         maps.Clone(s.habits),
		dailies:        maps.Clone(s.dailies),
		todos:          maps.Clone(s.todos),
		logs:           maps.Clone(s.logs),
		rewards:        maps.Clone(s.rewards),
		groups:         maps.Clone(s.groups),
		memberships:    maps.Clone(s.memberships),
		messages:       maps.Clone(s.messages),
		challenges:     maps.Clone(s.challenges),
		participations: maps.Clone(s.participations),
		transactions:   slices.Clone(s.transactions),
		audits:         slices.Clone(s.audits),
	}
}

// track assigns an id if missing and records insertion order.
func (s *state) track(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	if _, ok := s.order[*id]; !ok {
		s.seq++
		s.order[*id] = s.seq
	}
}

// before orders by timestamp, then by insertion.
func (s *state) before(a, b time.Time, ida, idb uuid.UUID) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return s.order[ida] < s.order[idb]
}

type Store struct {
	mu   sync.Mutex
	data *state
}

func New() *Store {
	return &Store{data: newState()}
}

var _ store.Store = (*Store)(nil)

// RunInTx holds the store lock for the whole unit of work, so units of
// work are serial.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(ctx, &tx{st: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

type tx struct {
	st *state
}

var _ store.Tx = (*tx)(nil)

func sortNewestFirst[T any](st *state, items []*T, at func(*T) (time.Time, uuid.UUID)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, idi := at(items[i])
		tj, idj := at(items[j])
		return st.before(tj, ti, idj, idi)
	})
}

func sortOldestFirst[T any](st *state, items []*T, at func(*T) (time.Time, uuid.UUID)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, idi := at(items[i])
		tj, idj := at(items[j])
		return st.before(ti, tj, idi, idj)
	})
}
