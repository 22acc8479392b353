package service

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitquest/internal/clock"
	"habitquest/internal/domain"
	"habitquest/internal/store/memory"
)

type recordingBroadcaster struct {
	mu   sync.Mutex
	msgs []*domain.GroupMessage
}

func (b *recordingBroadcaster) BroadcastGroupMessage(msg *domain.GroupMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, msg)
}

func (f *fixture) newGroup(owner uuid.UUID, name string, public bool) *domain.Group {
	f.t.Helper()
	f.adjust(owner, 150)
	g, err := f.groups.Create(f.ctx, owner, GroupInput{Name: name, IsPublic: public})
	require.NoError(f.t, err)
	return g
}

func (f *fixture) roles(groupID uuid.UUID) map[uuid.UUID]domain.GroupRole {
	f.t.Helper()
	d, err := f.groups.Get(f.ctx, groupID)
	require.NoError(f.t, err)
	out := make(map[uuid.UUID]domain.GroupRole, len(d.Members))
	for _, m := range d.Members {
		out[m.UserID] = m.Role
	}
	return out
}

func TestGroupCreateCharges(t *testing.T) {
	f := newFixture(t)
	owner := f.register("ada")

	_, err := f.groups.Create(f.ctx, owner.ID, GroupInput{Name: "Runners", IsPublic: true})
	requireKind(t, err, domain.KindConflict)
	groups, err := f.groups.List(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, groups)
	assert.EqualValues(t, 100, f.gold(owner.ID))

	g := f.newGroup(owner.ID, "Runners", true)
	assert.EqualValues(t, 100, f.gold(owner.ID))
	assert.Equal(t, domain.RoleOwner, f.roles(g.ID)[owner.ID])

	f.adjust(owner.ID, 100)
	_, err = f.groups.Create(f.ctx, owner.ID, GroupInput{Name: "runners"})
	requireKind(t, err, domain.KindConflict)
	assert.EqualValues(t, 200, f.gold(owner.ID))
}

func TestGroupJoinFlow(t *testing.T) {
	f := newFixture(t)
	owner := f.register("ada")
	bob := f.register("bob")
	cat := f.register("cat")

	public := f.newGroup(owner.ID, "Open", true)
	private := f.newGroup(owner.ID, "Closed", false)

	m, err := f.groups.Join(f.ctx, public.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, m.Status)
	assert.Equal(t, domain.RoleMember, m.Role)

	_, err = f.groups.Join(f.ctx, public.ID, bob.ID)
	requireKind(t, err, domain.KindConflict)

	m, err = f.groups.Join(f.ctx, private.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, m.Status)

	_, err = f.groups.Messages(f.ctx, private.ID, bob.ID)
	requireKind(t, err, domain.KindForbidden)

	_, err = f.groups.Approve(f.ctx, private.ID, cat.ID, bob.ID)
	requireKind(t, err, domain.KindForbidden)

	m, err = f.groups.Approve(f.ctx, private.ID, owner.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, m.Status)

	_, err = f.groups.Approve(f.ctx, private.ID, owner.ID, bob.ID)
	requireKind(t, err, domain.KindNotFound)

	_, err = f.groups.Join(f.ctx, private.ID, cat.ID)
	require.NoError(t, err)
	require.NoError(t, f.groups.Reject(f.ctx, private.ID, owner.ID, cat.ID))
	_, hasCat := f.roles(private.ID)[cat.ID]
	assert.False(t, hasCat)

	mine, err := f.groups.Mine(f.ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	activity, err := f.auth.Activity(f.ctx, owner.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.AuditActionGroupReject, activity[0].Action)
	assert.Equal(t, domain.AuditActionGroupApprove, activity[1].Action)
}

func TestGroupOwnerCannotLeave(t *testing.T) {
	f := newFixture(t)
	owner := f.register("ada")
	bob := f.register("bob")
	g := f.newGroup(owner.ID, "Readers", true)

	err := f.groups.Leave(f.ctx, g.ID, owner.ID)
	requireKind(t, err, domain.KindForbidden)

	_, err = f.groups.Join(f.ctx, g.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, f.groups.Leave(f.ctx, g.ID, bob.ID))

	err = f.groups.Leave(f.ctx, g.ID, bob.ID)
	requireKind(t, err, domain.KindNotFound)
}

func TestGroupOwnershipTransfer(t *testing.T) {
	f := newFixture(t)
	owner := f.register("ada")
	bob := f.register("bob")
	g := f.newGroup(owner.ID, "Lifters", true)
	_, err := f.groups.Join(f.ctx, g.ID, bob.ID)
	require.NoError(t, err)

	_, err = f.groups.ManageRole(f.ctx, g.ID, owner.ID, bob.ID, domain.RoleOwner)
	requireKind(t, err, domain.KindBadRequest)

	_, err = f.groups.ManageRole(f.ctx, g.ID, owner.ID, bob.ID, domain.RoleAdmin)
	require.NoError(t, err)

	_, err = f.groups.ManageRole(f.ctx, g.ID, bob.ID, owner.ID, domain.RoleMember)
	requireKind(t, err, domain.KindForbidden)

	_, err = f.groups.ManageRole(f.ctx, g.ID, owner.ID, bob.ID, domain.RoleOwner)
	require.NoError(t, err)

	roles := f.roles(g.ID)
	owners := 0
	for _, r := range roles {
		if r == domain.RoleOwner {
			owners++
		}
	}
	assert.Equal(t, 1, owners)
	assert.Equal(t, domain.RoleOwner, roles[bob.ID])
	assert.Equal(t, domain.RoleAdmin, roles[owner.ID])

	require.NoError(t, f.groups.Leave(f.ctx, g.ID, owner.ID))
	err = f.groups.Leave(f.ctx, g.ID, bob.ID)
	requireKind(t, err, domain.KindForbidden)
}

func TestGroupKickRules(t *testing.T) {
	f := newFixture(t)
	owner := f.register("ada")
	admin1 := f.register("bob")
	admin2 := f.register("cat")
	member := f.register("dan")
	g := f.newGroup(owner.ID, "Climbers", true)
	for _, u := range []*domain.User{admin1, admin2, member} {
		_, err := f.groups.Join(f.ctx, g.ID, u.ID)
		require.NoError(t, err)
	}
	for _, u := range []*domain.User{admin1, admin2} {
		_, err := f.groups.ManageRole(f.ctx, g.ID, owner.ID, u.ID, domain.RoleAdmin)
		require.NoError(t, err)
	}

	requireKind(t, f.groups.Kick(f.ctx, g.ID, admin1.ID, admin2.ID), domain.KindForbidden)
	requireKind(t, f.groups.Kick(f.ctx, g.ID, admin1.ID, owner.ID), domain.KindForbidden)
	requireKind(t, f.groups.Kick(f.ctx, g.ID, member.ID, admin1.ID), domain.KindForbidden)
	requireKind(t, f.groups.Kick(f.ctx, g.ID, owner.ID, owner.ID), domain.KindForbidden)

	_, err := f.groups.ManageRole(f.ctx, g.ID, admin1.ID, member.ID, domain.RoleAdmin)
	requireKind(t, err, domain.KindForbidden)

	require.NoError(t, f.groups.Kick(f.ctx, g.ID, admin1.ID, member.ID))
	require.NoError(t, f.groups.Kick(f.ctx, g.ID, owner.ID, admin2.ID))

	roles := f.roles(g.ID)
	assert.Len(t, roles, 2)
	assert.Equal(t, domain.RoleOwner, roles[owner.ID])
	assert.Equal(t, domain.RoleAdmin, roles[admin1.ID])
}

func TestGroupEditAndDelete(t *testing.T) {
	f := newFixture(t)
	owner := f.register("ada")
	bob := f.register("bob")
	g := f.newGroup(owner.ID, "Cyclists", true)
	_, err := f.groups.Join(f.ctx, g.ID, bob.ID)
	require.NoError(t, err)

	_, err = f.groups.Update(f.ctx, g.ID, bob.ID, GroupPatch{Name: ptr("Bob's")})
	requireKind(t, err, domain.KindForbidden)

	// admins moderate members but cannot edit the group
	_, err = f.groups.ManageRole(f.ctx, g.ID, owner.ID, bob.ID, domain.RoleAdmin)
	require.NoError(t, err)
	f.adjust(bob.ID, 300)
	_, err = f.groups.Update(f.ctx, g.ID, bob.ID, GroupPatch{IsPublic: ptr(false)})
	requireKind(t, err, domain.KindForbidden)
	assert.EqualValues(t, 400, f.gold(bob.ID))

	_, err = f.groups.Update(f.ctx, g.ID, owner.ID, GroupPatch{Name: ptr("Fast Cyclists")})
	requireKind(t, err, domain.KindConflict)

	f.adjust(owner.ID, 700)
	updated, err := f.groups.Update(f.ctx, g.ID, owner.ID, GroupPatch{Name: ptr("Fast Cyclists"), IsPublic: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "Fast Cyclists", updated.Name)
	assert.False(t, updated.IsPublic)
	assert.EqualValues(t, 500, f.gold(owner.ID))

	requireKind(t, f.groups.Delete(f.ctx, g.ID, bob.ID), domain.KindForbidden)
	require.NoError(t, f.groups.Delete(f.ctx, g.ID, owner.ID))
	assert.EqualValues(t, 0, f.gold(owner.ID))

	_, err = f.groups.Get(f.ctx, g.ID)
	requireKind(t, err, domain.KindNotFound)
	mine, err := f.groups.Mine(f.ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestGroupMessages(t *testing.T) {
	b := &recordingBroadcaster{}
	f := newFixtureWith(t, memory.New(), clock.NewFakeClock(testStart), b)
	owner := f.register("ada")
	bob := f.register("bob")
	g := f.newGroup(owner.ID, "Chatters", false)

	_, err := f.groups.PostMessage(f.ctx, g.ID, bob.ID, "hi")
	requireKind(t, err, domain.KindForbidden)

	_, err = f.groups.PostMessage(f.ctx, g.ID, owner.ID, "  ")
	requireKind(t, err, domain.KindBadRequest)

	first, err := f.groups.PostMessage(f.ctx, g.ID, owner.ID, "welcome")
	require.NoError(t, err)
	assert.Equal(t, "ada", first.Username)
	f.clock.Advance(time.Minute)
	_, err = f.groups.PostMessage(f.ctx, g.ID, owner.ID, "anyone here?")
	require.NoError(t, err)

	msgs, err := f.groups.Messages(f.ctx, g.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "welcome", msgs[0].Content)
	assert.Equal(t, "anyone here?", msgs[1].Content)

	require.Len(t, b.msgs, 2)
	assert.Equal(t, first.ID, b.msgs[0].ID)

	requireKind(t, f.groups.CanListen(f.ctx, g.ID, bob.ID), domain.KindForbidden)
	require.NoError(t, f.groups.CanListen(f.ctx, g.ID, owner.ID))
}
