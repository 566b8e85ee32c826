// Package audit implements the append-only audit log over sqlite, the
// retention sweeper, and the decorators that record mutating service calls.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
	"github.com/Edgame2/castiel/snowflake"
	"github.com/Edgame2/castiel/sqlite"
	"go.uber.org/zap"
)

var _ castiel.AuditService = (*Service)(nil)

// Service implements the audit service over the shared sqlite store.
type Service struct {
	store       *sqlite.SqlStore
	log         *zap.Logger
	idGenerator platform.IDGenerator
}

// NewService constructs an audit service.
func NewService(logger *zap.Logger, store *sqlite.SqlStore) *Service {
	return &Service{
		store:       store,
		log:         logger,
		idGenerator: snowflake.NewIDGenerator(),
	}
}

// auditRow is the flat sqlite representation of an entry. IDs are stored as
// their 16-char hex encoding, times as RFC3339Nano text, detail as JSON.
type auditRow struct {
	ID            string         `db:"id"`
	TenantID      string         `db:"tenant_id"`
	ActorID       sql.NullString `db:"actor_id"`
	Action        string         `db:"action"`
	ResourceType  string         `db:"resource_type"`
	ResourceID    sql.NullString `db:"resource_id"`
	CorrelationID sql.NullString `db:"correlation_id"`
	Detail        sql.NullString `db:"detail"`
	Time          string         `db:"time"`
}

func (r auditRow) toEntry() (*castiel.AuditLogEntry, error) {
	e := &castiel.AuditLogEntry{
		Action:        r.Action,
		ResourceType:  castiel.ResourceType(r.ResourceType),
		CorrelationID: r.CorrelationID.String,
	}

	if err := e.ID.DecodeFromString(r.ID); err != nil {
		return nil, err
	}
	if err := e.TenantID.DecodeFromString(r.TenantID); err != nil {
		return nil, err
	}
	if r.ActorID.Valid {
		if err := e.Actor.DecodeFromString(r.ActorID.String); err != nil {
			return nil, err
		}
	}
	if r.ResourceID.Valid {
		if err := e.ResourceID.DecodeFromString(r.ResourceID.String); err != nil {
			return nil, err
		}
	}
	if r.Detail.Valid && r.Detail.String != "" {
		if err := json.Unmarshal([]byte(r.Detail.String), &e.Detail); err != nil {
			return nil, err
		}
	}

	t, err := time.Parse(time.RFC3339Nano, r.Time)
	if err != nil {
		return nil, err
	}
	e.Time = t
	return e, nil
}

func nullableID(id platform.ID) interface{} {
	if !id.Valid() {
		return nil
	}
	return id.String()
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// RecordAuditEvent appends an entry to the log and sets e.ID. The time is
// stamped here when the caller left it zero.
func (s *Service) RecordAuditEvent(ctx context.Context, e *castiel.AuditLogEntry) error {
	if err := e.Valid(); err != nil {
		return err
	}

	e.ID = s.idGenerator.ID()
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	var detail interface{}
	if len(e.Detail) > 0 {
		b, err := json.Marshal(e.Detail)
		if err != nil {
			return &errors.Error{Code: errors.EInvalid, Msg: "invalid audit detail", Err: err}
		}
		detail = string(b)
	}

	q := sq.Insert("audit_log").
		Columns("id", "tenant_id", "actor_id", "action", "resource_type", "resource_id", "correlation_id", "detail", "time").
		Values(
			e.ID.String(),
			e.TenantID.String(),
			nullableID(e.Actor),
			e.Action,
			string(e.ResourceType),
			nullableID(e.ResourceID),
			nullableString(e.CorrelationID),
			detail,
			e.Time.Format(time.RFC3339Nano),
		)

	query, args, err := q.ToSql()
	if err != nil {
		return err
	}

	s.store.Mu.Lock()
	defer s.store.Mu.Unlock()

	if _, err := s.store.DB.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return nil
}

func filterConditions(filter castiel.AuditFilter) sq.And {
	conds := sq.And{sq.Eq{"tenant_id": filter.TenantID.String()}}
	if filter.Actor != nil {
		conds = append(conds, sq.Eq{"actor_id": filter.Actor.String()})
	}
	if filter.ResourceType != nil {
		conds = append(conds, sq.Eq{"resource_type": string(*filter.ResourceType)})
	}
	if filter.ResourceID != nil {
		conds = append(conds, sq.Eq{"resource_id": filter.ResourceID.String()})
	}
	if filter.Action != nil {
		conds = append(conds, sq.Eq{"action": *filter.Action})
	}
	if filter.After != nil {
		conds = append(conds, sq.GtOrEq{"time": filter.After.Format(time.RFC3339Nano)})
	}
	if filter.Before != nil {
		conds = append(conds, sq.Lt{"time": filter.Before.Format(time.RFC3339Nano)})
	}
	return conds
}

// FindAuditEvents returns the entries matching filter, newest first, and
// the total count of matching entries.
func (s *Service) FindAuditEvents(ctx context.Context, filter castiel.AuditFilter, opt ...castiel.FindOptions) ([]*castiel.AuditLogEntry, int, error) {
	var o castiel.FindOptions
	if len(opt) > 0 {
		o = opt[0]
	}

	conds := filterConditions(filter)

	countQuery, countArgs, err := sq.Select("COUNT(*)").From("audit_log").Where(conds).ToSql()
	if err != nil {
		return nil, 0, err
	}

	q := sq.Select("id", "tenant_id", "actor_id", "action", "resource_type", "resource_id", "correlation_id", "detail", "time").
		From("audit_log").
		Where(conds).
		OrderBy("time DESC", "id DESC")
	if o.Limit > 0 {
		q = q.Limit(uint64(o.Limit))
	}
	if o.Offset > 0 {
		q = q.Offset(uint64(o.Offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, err
	}

	s.store.Mu.RLock()
	defer s.store.Mu.RUnlock()

	var total int
	if err := s.store.DB.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, err
	}

	var rows []auditRow
	if err := s.store.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}

	entries := make([]*castiel.AuditLogEntry, 0, len(rows))
	for _, r := range rows {
		e, err := r.toEntry()
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, nil
}

// PurgeAuditEvents removes entries older than before and reports how many
// were dropped.
func (s *Service) PurgeAuditEvents(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := sq.Delete("audit_log").
		Where(sq.Lt{"time": before.Format(time.RFC3339Nano)}).
		ToSql()
	if err != nil {
		return 0, err
	}

	s.store.Mu.Lock()
	defer s.store.Mu.Unlock()

	res, err := s.store.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
