package repository

import (
	"context"

	"github.com/google/uuid"

	"habitquest/internal/domain"
)

const challengeSelect = `SELECT c.id, c.creator_id, c.title, c.description, c.goal, c.is_private, c.status,
	c.start_time, c.created_at, c.updated_at,
	(SELECT count(*) FROM challenge_participations p WHERE p.challenge_id = c.id AND p.status = 'ACTIVE')
	FROM challenges c`

func scanChallenge(row rowScanner) (*domain.Challenge, error) {
	var c domain.Challenge
	if err := row.Scan(&c.ID, &c.CreatorID, &c.Title, &c.Description, &c.Goal, &c.IsPrivate, &c.Status,
		&c.StartTime, &c.CreatedAt, &c.UpdatedAt, &c.ParticipantCount); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Tx) CreateChallenge(ctx context.Context, c *domain.Challenge) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.tx.Exec(ctx,
		`INSERT INTO challenges (id, creator_id, title, description, goal, is_private, status, start_time, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.CreatorID, c.Title, c.Description, c.Goal, c.IsPrivate, c.Status, c.StartTime, c.CreatedAt, c.UpdatedAt,
	)
	return translate(err, "challenge")
}

// GetChallenge locks the challenge so status transitions are serialized.
func (r *Tx) GetChallenge(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	c, err := scanChallenge(r.tx.QueryRow(ctx, challengeSelect+` WHERE c.id = $1 FOR UPDATE OF c`, id))
	if err != nil {
		return nil, translate(err, "challenge")
	}
	return c, nil
}

func (r *Tx) ListChallenges(ctx context.Context) ([]*domain.Challenge, error) {
	rows, err := r.tx.Query(ctx, challengeSelect+` ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanChallenge)
}

func (r *Tx) UpdateChallenge(ctx context.Context, c *domain.Challenge) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE challenges SET title = $2, description = $3, goal = $4, is_private = $5, status = $6,
		        start_time = $7, updated_at = $8
		 WHERE id = $1`,
		c.ID, c.Title, c.Description, c.Goal, c.IsPrivate, c.Status, c.StartTime, c.UpdatedAt,
	)
	return expectOne(tag, err, "challenge")
}

func (r *Tx) DeleteChallenge(ctx context.Context, id uuid.UUID) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM challenges WHERE id = $1`, id)
	return expectOne(tag, err, "challenge")
}

const participationSelect = `SELECT p.id, p.challenge_id, p.user_id, p.status, p.progress, p.completed,
	p.completion_time, p.joined_at, u.username
	FROM challenge_participations p
	JOIN users u ON u.id = p.user_id`

func scanParticipation(row rowScanner) (*domain.Participation, error) {
	var p domain.Participation
	if err := row.Scan(&p.ID, &p.ChallengeID, &p.UserID, &p.Status, &p.Progress, &p.Completed,
		&p.CompletionTime, &p.JoinedAt, &p.Username); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Tx) CreateParticipation(ctx context.Context, p *domain.Participation) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.tx.Exec(ctx,
		`INSERT INTO challenge_participations (id, challenge_id, user_id, status, progress, completed, completion_time, joined_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.ChallengeID, p.UserID, p.Status, p.Progress, p.Completed, p.CompletionTime, p.JoinedAt,
	)
	return translate(err, "participation")
}

func (r *Tx) GetParticipation(ctx context.Context, id uuid.UUID) (*domain.Participation, error) {
	p, err := scanParticipation(r.tx.QueryRow(ctx, participationSelect+` WHERE p.id = $1 FOR UPDATE OF p`, id))
	if err != nil {
		return nil, translate(err, "participation")
	}
	return p, nil
}

func (r *Tx) FindParticipation(ctx context.Context, challengeID, userID uuid.UUID) (*domain.Participation, error) {
	p, err := scanParticipation(r.tx.QueryRow(ctx,
		participationSelect+` WHERE p.challenge_id = $1 AND p.user_id = $2 FOR UPDATE OF p`, challengeID, userID))
	if err != nil {
		return nil, translate(err, "participation")
	}
	return p, nil
}

func (r *Tx) ListParticipants(ctx context.Context, challengeID uuid.UUID) ([]*domain.Participation, error) {
	rows, err := r.tx.Query(ctx, participationSelect+` WHERE p.challenge_id = $1 ORDER BY p.joined_at`, challengeID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanParticipation)
}

func (r *Tx) ListUserParticipations(ctx context.Context, userID uuid.UUID) ([]*domain.Participation, error) {
	rows, err := r.tx.Query(ctx, participationSelect+` WHERE p.user_id = $1 ORDER BY p.joined_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	parts, err := collect(rows, scanParticipation)
	if err != nil {
		return nil, err
	}
	for _, p := range parts {
		c, err := scanChallenge(r.tx.QueryRow(ctx, challengeSelect+` WHERE c.id = $1`, p.ChallengeID))
		if err != nil {
			return nil, translate(err, "challenge")
		}
		p.Challenge = c
	}
	return parts, nil
}

func (r *Tx) ListFinishers(ctx context.Context, challengeID uuid.UUID, limit int) ([]*domain.Participation, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.tx.Query(ctx,
		participationSelect+` WHERE p.challenge_id = $1 AND p.completed AND p.completion_time IS NOT NULL
		 ORDER BY p.completion_time, p.joined_at
		 LIMIT $2`, challengeID, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanParticipation)
}

func (r *Tx) UpdateParticipation(ctx context.Context, p *domain.Participation) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE challenge_participations SET status = $2, progress = $3, completed = $4, completion_time = $5
		 WHERE id = $1`,
		p.ID, p.Status, p.Progress, p.Completed, p.CompletionTime,
	)
	return expectOne(tag, err, "participation")
}

func (r *Tx) DeleteParticipation(ctx context.Context, id uuid.UUID) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM challenge_participations WHERE id = $1`, id)
	return expectOne(tag, err, "participation")
}
