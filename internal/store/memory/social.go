package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"habitquest/internal/domain"
)

func (t *tx) groupNameTaken(name string, except uuid.UUID) bool {
	for _, g := range t.st.groups {
		if g.ID != except && strings.EqualFold(g.Name, name) {
			return true
		}
	}
	return false
}

func (t *tx) CreateGroup(ctx context.Context, g *domain.Group) error {
	if t.groupNameTaken(g.Name, uuid.Nil) {
		return domain.Conflict("group name %q is taken", g.Name)
	}
	t.st.track(&g.ID)
	t.st.groups[g.ID] = *g
	return nil
}

func (t *tx) activeMembers(groupID uuid.UUID) int {
	n := 0
	for _, m := range t.st.memberships {
		if m.GroupID == groupID && m.Status == domain.StatusActive {
			n++
		}
	}
	return n
}

func (t *tx) GetGroup(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	g, ok := t.st.groups[id]
	if !ok {
		return nil, domain.NotFound("group not found")
	}
	g.MemberCount = t.activeMembers(id)
	return &g, nil
}

func (t *tx) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	out := make([]*domain.Group, 0, len(t.st.groups))
	for _, g := range t.st.groups {
		g.MemberCount = t.activeMembers(g.ID)
		out = append(out, &g)
	}
	sortNewestFirst(t.st, out, func(g *domain.Group) (time.Time, uuid.UUID) { return g.CreatedAt, g.ID })
	return out, nil
}

func (t *tx) UpdateGroup(ctx context.Context, g *domain.Group) error {
	if _, ok := t.st.groups[g.ID]; !ok {
		return domain.NotFound("group not found")
	}
	if t.groupNameTaken(g.Name, g.ID) {
		return domain.Conflict("group name %q is taken", g.Name)
	}
	t.st.groups[g.ID] = *g
	return nil
}

func (t *tx) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	if _, ok := t.st.groups[id]; !ok {
		return domain.NotFound("group not found")
	}
	delete(t.st.groups, id)
	for mid, m := range t.st.memberships {
		if m.GroupID == id {
			delete(t.st.memberships, mid)
		}
	}
	for mid, m := range t.st.messages {
		if m.GroupID == id {
			delete(t.st.messages, mid)
		}
	}
	return nil
}

func (t *tx) username(id uuid.UUID) string {
	return t.st.users[id].Username
}

func (t *tx) CreateMembership(ctx context.Context, m *domain.GroupMembership) error {
	for _, existing := range t.st.memberships {
		if existing.GroupID == m.GroupID && existing.UserID == m.UserID {
			return domain.Conflict("membership already exists")
		}
	}
	t.st.track(&m.ID)
	stored := *m
	stored.Group = nil
	t.st.memberships[m.ID] = stored
	return nil
}

func (t *tx) GetMembership(ctx context.Context, groupID, userID uuid.UUID) (*domain.GroupMembership, error) {
	for _, m := range t.st.memberships {
		if m.GroupID == groupID && m.UserID == userID {
			m.Username = t.username(userID)
			return &m, nil
		}
	}
	return nil, domain.NotFound("membership not found")
}

func (t *tx) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*domain.GroupMembership, error) {
	var out []*domain.GroupMembership
	for _, m := range t.st.memberships {
		if m.GroupID == groupID {
			m.Username = t.username(m.UserID)
			out = append(out, &m)
		}
	}
	sortOldestFirst(t.st, out, func(m *domain.GroupMembership) (time.Time, uuid.UUID) { return m.JoinedAt, m.ID })
	return out, nil
}

func (t *tx) ListUserGroups(ctx context.Context, userID uuid.UUID) ([]*domain.GroupMembership, error) {
	var out []*domain.GroupMembership
	for _, m := range t.st.memberships {
		if m.UserID != userID || m.Status != domain.StatusActive {
			continue
		}
		g, err := t.GetGroup(ctx, m.GroupID)
		if err != nil {
			return nil, err
		}
		m.Group = g
		out = append(out, &m)
	}
	sortOldestFirst(t.st, out, func(m *domain.GroupMembership) (time.Time, uuid.UUID) { return m.JoinedAt, m.ID })
	return out, nil
}

func (t *tx) UpdateMembership(ctx context.Context, m *domain.GroupMembership) error {
	if _, ok := t.st.memberships[m.ID]; !ok {
		return domain.NotFound("membership not found")
	}
	stored := *m
	stored.Group = nil
	t.st.memberships[m.ID] = stored
	return nil
}

func (t *tx) DeleteMembership(ctx context.Context, id uuid.UUID) error {
	if _, ok := t.st.memberships[id]; !ok {
		return domain.NotFound("membership not found")
	}
	delete(t.st.memberships, id)
	return nil
}

func (t *tx) CreateGroupMessage(ctx context.Context, m *domain.GroupMessage) error {
	t.st.track(&m.ID)
	t.st.messages[m.ID] = *m
	return nil
}

func (t *tx) ListGroupMessages(ctx context.Context, groupID uuid.UUID) ([]*domain.GroupMessage, error) {
	var out []*domain.GroupMessage
	for _, m := range t.st.messages {
		if m.GroupID == groupID {
			m.Username = t.username(m.UserID)
			out = append(out, &m)
		}
	}
	sortOldestFirst(t.st, out, func(m *domain.GroupMessage) (time.Time, uuid.UUID) { return m.CreatedAt, m.ID })
	return out, nil
}

func (t *tx) activeParticipants(challengeID uuid.UUID) int {
	n := 0
	for _, p := range t.st.participations {
		if p.ChallengeID == challengeID && p.Status == domain.StatusActive {
			n++
		}
	}
	return n
}

func (t *tx) CreateChallenge(ctx context.Context, c *domain.Challenge) error {
	t.st.track(&c.ID)
	t.st.challenges[c.ID] = *c
	return nil
}

func (t *tx) GetChallenge(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	c, ok := t.st.challenges[id]
	if !ok {
		return nil, domain.NotFound("challenge not found")
	}
	c.ParticipantCount = t.activeParticipants(id)
	return &c, nil
}

func (t *tx) ListChallenges(ctx context.Context) ([]*domain.Challenge, error) {
	out := make([]*domain.Challenge, 0, len(t.st.challenges))
	for _, c := range t.st.challenges {
		c.ParticipantCount = t.activeParticipants(c.ID)
		out = append(out, &c)
	}
	sortNewestFirst(t.st, out, func(c *domain.Challenge) (time.Time, uuid.UUID) { return c.CreatedAt, c.ID })
	return out, nil
}

func (t *tx) UpdateChallenge(ctx context.Context, c *domain.Challenge) error {
	if _, ok := t.st.challenges[c.ID]; !ok {
		return domain.NotFound("challenge not found")
	}
	t.st.challenges[c.ID] = *c
	return nil
}

func (t *tx) DeleteChallenge(ctx context.Context, id uuid.UUID) error {
	if _, ok := t.st.challenges[id]; !ok {
		return domain.NotFound("challenge not found")
	}
	delete(t.st.challenges, id)
	for pid, p := range t.st.participations {
		if p.ChallengeID == id {
			delete(t.st.participations, pid)
		}
	}
	return nil
}

func (t *tx) CreateParticipation(ctx context.Context, p *domain.Participation) error {
	for _, existing := range t.st.participations {
		if existing.ChallengeID == p.ChallengeID && existing.UserID == p.UserID {
			return domain.Conflict("already participating in this challenge")
		}
	}
	t.st.track(&p.ID)
	stored := *p
	stored.Challenge = nil
	t.st.participations[p.ID] = stored
	return nil
}

func (t *tx) GetParticipation(ctx context.Context, id uuid.UUID) (*domain.Participation, error) {
	p, ok := t.st.participations[id]
	if !ok {
		return nil, domain.NotFound("participation not found")
	}
	p.Username = t.username(p.UserID)
	return &p, nil
}

func (t *tx) FindParticipation(ctx context.Context, challengeID, userID uuid.UUID) (*domain.Participation, error) {
	for _, p := range t.st.participations {
		if p.ChallengeID == challengeID && p.UserID == userID {
			p.Username = t.username(userID)
			return &p, nil
		}
	}
	return nil, domain.NotFound("participation not found")
}

func (t *tx) ListParticipants(ctx context.Context, challengeID uuid.UUID) ([]*domain.Participation, error) {
	var out []*domain.Participation
	for _, p := range t.st.participations {
		if p.ChallengeID == challengeID {
			p.Username = t.username(p.UserID)
			out = append(out, &p)
		}
	}
	sortOldestFirst(t.st, out, func(p *domain.Participation) (time.Time, uuid.UUID) { return p.JoinedAt, p.ID })
	return out, nil
}

func (t *tx) ListUserParticipations(ctx context.Context, userID uuid.UUID) ([]*domain.Participation, error) {
	var out []*domain.Participation
	for _, p := range t.st.participations {
		if p.UserID != userID {
			continue
		}
		c, err := t.GetChallenge(ctx, p.ChallengeID)
		if err != nil {
			return nil, err
		}
		p.Challenge = c
		out = append(out, &p)
	}
	sortNewestFirst(t.st, out, func(p *domain.Participation) (time.Time, uuid.UUID) { return p.JoinedAt, p.ID })
	return out, nil
}

func (t *tx) ListFinishers(ctx context.Context, challengeID uuid.UUID, limit int) ([]*domain.Participation, error) {
	all, err := t.ListParticipants(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	var out []*domain.Participation
	for _, p := range all {
		if p.Completed && p.CompletionTime != nil {
			out = append(out, p)
		}
	}
	// all is already in join order; a stable sort keeps it for ties.
	sortStable(out, func(a, b *domain.Participation) bool { return *a.CompletionTime < *b.CompletionTime })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (t *tx) UpdateParticipation(ctx context.Context, p *domain.Participation) error {
	if _, ok := t.st.participations[p.ID]; !ok {
		return domain.NotFound("participation not found")
	}
	stored := *p
	stored.Challenge = nil
	t.st.participations[p.ID] = stored
	return nil
}

func (t *tx) DeleteParticipation(ctx context.Context, id uuid.UUID) error {
	if _, ok := t.st.participations[id]; !ok {
		return domain.NotFound("participation not found")
	}
	delete(t.st.participations, id)
	return nil
}
