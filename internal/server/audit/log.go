// Package audit records security relevant actions. Writes are synchronous
// but never fail the operation being audited.
package audit

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/server/metrics"
	"github.com/dmitrijs2005/credvault/internal/server/models"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/auditlog"
	"github.com/google/uuid"
)

// maxClientAgent bounds free-form client input stored with each entry.
const maxClientAgent = 512

// writeTimeout bounds an audit write once it is detached from the request.
const writeTimeout = 5 * time.Second

type Log struct {
	repo   auditlog.Repository
	logger logging.Logger
	now    func() time.Time
	newID  func() (uuid.UUID, error)
}

func NewLog(repo auditlog.Repository, logger logging.Logger) *Log {
	return &Log{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewV7,
	}
}

// Record stores e, filling in ID and CreatedAt when unset. A storage
// failure is logged and counted, and otherwise swallowed.
func (l *Log) Record(ctx context.Context, e models.AuditEntry) {
	if e.ID == "" {
		id, err := l.newID()
		if err != nil {
			id = uuid.New()
		}
		e.ID = id.String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = l.now()
	}
	e.CreatedAt = e.CreatedAt.UTC()
	e.ClientAgent = truncate(e.ClientAgent, maxClientAgent)
	e.Details = strings.TrimSpace(e.Details)

	// the entry must outlive a cancelled or timed out request
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := l.repo.Insert(wctx, &e); err != nil {
		metrics.AuditWriteFailuresTotal.Inc()
		l.logger.Error(ctx, "audit write failed",
			"error", err,
			"username", e.Username,
			"action", string(e.Action),
			"status", string(e.Status),
		)
	}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return strings.ToValidUTF8(s[:n], "")
}

// QueryByUser returns the most recent entries of username. A limit outside
// 1..common.MaxAuditQueryLimit is clamped to the maximum.
func (l *Log) QueryByUser(ctx context.Context, username string, limit int) ([]*models.AuditEntry, error) {
	if limit <= 0 || limit > common.MaxAuditQueryLimit {
		limit = common.MaxAuditQueryLimit
	}
	return l.repo.ListByUser(ctx, username, limit)
}
