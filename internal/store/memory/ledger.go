package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"habitquest/internal/domain"
)

func sortStable[T any](items []T, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

func (t *tx) CreateTransaction(ctx context.Context, tr *domain.Transaction) error {
	t.st.track(&tr.ID)
	t.st.transactions = append(t.st.transactions, *tr)
	return nil
}

func (t *tx) ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, tr := range t.st.transactions {
		if tr.UserID == userID {
			out = append(out, &tr)
		}
	}
	sortNewestFirst(t.st, out, func(tr *domain.Transaction) (time.Time, uuid.UUID) { return tr.CreatedAt, tr.ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (t *tx) CreateAuditLog(ctx context.Context, l *domain.AuditLog) error {
	t.st.track(&l.ID)
	t.st.audits = append(t.st.audits, *l)
	return nil
}

func (t *tx) ListAuditLogs(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.AuditLog, error) {
	var out []*domain.AuditLog
	for _, l := range t.st.audits {
		if l.UserID == userID {
			out = append(out, &l)
		}
	}
	sortNewestFirst(t.st, out, func(l *domain.AuditLog) (time.Time, uuid.UUID) { return l.CreatedAt, l.ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
