// Package insight implements collaborative triage of model and teammate
// findings over sqlite: the insight records themselves plus their comment
// threads.
package insight

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/Edgame2/castiel"
	icontext "github.com/Edgame2/castiel/context"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/snowflake"
	"github.com/Edgame2/castiel/sqlite"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var _ castiel.InsightService = (*Service)(nil)

// Service implements the insight service over the shared sqlite store.
type Service struct {
	store       *sqlite.SqlStore
	log         *zap.Logger
	idGenerator platform.IDGenerator

	// shardService validates the subject shard on create. May be nil, in
	// which case shard existence is not enforced.
	shardService castiel.ShardService
}

// NewService constructs an insight service.
func NewService(logger *zap.Logger, store *sqlite.SqlStore, shardService castiel.ShardService) *Service {
	return &Service{
		store:        store,
		log:          logger,
		idGenerator:  snowflake.NewIDGenerator(),
		shardService: shardService,
	}
}

type insightRow struct {
	ID         string         `db:"id"`
	TenantID   string         `db:"tenant_id"`
	ShardID    string         `db:"shard_id"`
	ModelID    sql.NullString `db:"model_id"`
	Kind       string         `db:"kind"`
	Severity   string         `db:"severity"`
	Title      string         `db:"title"`
	Body       sql.NullString `db:"body"`
	Score      sql.NullString `db:"score"`
	Status     string         `db:"status"`
	AssigneeID sql.NullString `db:"assignee_id"`
	CreatedAt  string         `db:"created_at"`
	UpdatedAt  string         `db:"updated_at"`
}

func decodeNullableID(raw sql.NullString) (*platform.ID, error) {
	if !raw.Valid {
		return nil, nil
	}
	var id platform.ID
	if err := id.DecodeFromString(raw.String); err != nil {
		return nil, err
	}
	return &id, nil
}

func (r insightRow) toInsight() (*castiel.Insight, error) {
	i := &castiel.Insight{
		Kind:     castiel.InsightKind(r.Kind),
		Severity: castiel.InsightSeverity(r.Severity),
		Title:    r.Title,
		Body:     r.Body.String,
		Status:   castiel.InsightStatus(r.Status),
	}

	if err := i.ID.DecodeFromString(r.ID); err != nil {
		return nil, err
	}
	if err := i.TenantID.DecodeFromString(r.TenantID); err != nil {
		return nil, err
	}
	if err := i.ShardID.DecodeFromString(r.ShardID); err != nil {
		return nil, err
	}

	var err error
	if i.ModelID, err = decodeNullableID(r.ModelID); err != nil {
		return nil, err
	}
	if i.AssigneeID, err = decodeNullableID(r.AssigneeID); err != nil {
		return nil, err
	}
	if r.Score.Valid {
		score, err := decimal.NewFromString(r.Score.String)
		if err != nil {
			return nil, err
		}
		i.Score = &score
	}

	createdAt, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	i.SetCreatedAt(createdAt)
	i.SetUpdatedAt(updatedAt)
	return i, nil
}

func nullableIDPtr(id *platform.ID) interface{} {
	if id == nil {
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

func nullableDecimal(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

var insightColumns = []string{"id", "tenant_id", "shard_id", "model_id", "kind", "severity", "title", "body", "score", "status", "assignee_id", "created_at", "updated_at"}

func (s *Service) getInsight(ctx context.Context, tenantID, id platform.ID) (*castiel.Insight, error) {
	query, args, err := sq.Select(insightColumns...).
		From("insights").
		Where(sq.Eq{"id": id.String(), "tenant_id": tenantID.String()}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var r insightRow
	if err := s.store.DB.GetContext(ctx, &r, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInsightNotFound
		}
		return nil, err
	}
	return r.toInsight()
}

func (s *Service) putInsight(ctx context.Context, i *castiel.Insight) error {
	query, args, err := sq.Replace("insights").
		Columns(insightColumns...).
		Values(
			i.ID.String(),
			i.TenantID.String(),
			i.ShardID.String(),
			nullableIDPtr(i.ModelID),
			string(i.Kind),
			string(i.Severity),
			i.Title,
			nullableString(i.Body),
			nullableDecimal(i.Score),
			string(i.Status),
			nullableIDPtr(i.AssigneeID),
			i.CreatedAt.Format(time.RFC3339Nano),
			i.UpdatedAt.Format(time.RFC3339Nano),
		).
		ToSql()
	if err != nil {
		return err
	}

	_, err = s.store.DB.ExecContext(ctx, query, args...)
	return err
}

// FindInsightByID returns a single insight by ID.
func (s *Service) FindInsightByID(ctx context.Context, tenantID, id platform.ID) (*castiel.Insight, error) {
	s.store.Mu.RLock()
	defer s.store.Mu.RUnlock()
	return s.getInsight(ctx, tenantID, id)
}

// FindInsights returns the insights matching filter, newest first, and the
// total count of matching insights.
func (s *Service) FindInsights(ctx context.Context, filter castiel.InsightFilter, opt ...castiel.FindOptions) ([]*castiel.Insight, int, error) {
	var o castiel.FindOptions
	if len(opt) > 0 {
		o = opt[0]
	}

	conds := sq.And{sq.Eq{"tenant_id": filter.TenantID.String()}}
	if filter.ShardID != nil {
		conds = append(conds, sq.Eq{"shard_id": filter.ShardID.String()})
	}
	if filter.Kind != nil {
		conds = append(conds, sq.Eq{"kind": string(*filter.Kind)})
	}
	if filter.Status != nil {
		conds = append(conds, sq.Eq{"status": string(*filter.Status)})
	}
	if filter.Severity != nil {
		conds = append(conds, sq.Eq{"severity": string(*filter.Severity)})
	}
	if filter.AssigneeID != nil {
		conds = append(conds, sq.Eq{"assignee_id": filter.AssigneeID.String()})
	}

	countQuery, countArgs, err := sq.Select("COUNT(*)").From("insights").Where(conds).ToSql()
	if err != nil {
		return nil, 0, err
	}

	q := sq.Select(insightColumns...).
		From("insights").
		Where(conds).
		OrderBy("created_at DESC", "id DESC")
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

	var rows []insightRow
	if err := s.store.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}

	insights := make([]*castiel.Insight, 0, len(rows))
	for _, r := range rows {
		insight, err := r.toInsight()
		if err != nil {
			return nil, 0, err
		}
		insights = append(insights, insight)
	}
	return insights, total, nil
}

// CreateInsight creates a new insight as status new and sets i.ID. The
// subject shard must exist.
func (s *Service) CreateInsight(ctx context.Context, i *castiel.Insight) error {
	i.Status = castiel.InsightNew
	if err := i.Valid(); err != nil {
		return err
	}

	if s.shardService != nil {
		if _, err := s.shardService.FindShardByID(ctx, i.TenantID, i.ShardID); err != nil {
			return ErrShardNotFound
		}
	}

	s.store.Mu.Lock()
	defer s.store.Mu.Unlock()

	i.ID = s.idGenerator.ID()
	now := time.Now().UTC()
	i.SetCreatedAt(now)
	i.SetUpdatedAt(now)
	return s.putInsight(ctx, i)
}

// UpdateInsight applies the changeset, enforcing triage transitions, and
// returns the new state.
func (s *Service) UpdateInsight(ctx context.Context, tenantID, id platform.ID, upd castiel.InsightUpdate) (*castiel.Insight, error) {
	if err := upd.Valid(); err != nil {
		return nil, err
	}

	s.store.Mu.Lock()
	defer s.store.Mu.Unlock()

	i, err := s.getInsight(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if upd.Status != nil && *upd.Status != i.Status {
		if !i.Status.CanTransitionTo(*upd.Status) {
			return nil, ErrInvalidTransition(string(i.Status), string(*upd.Status))
		}
		i.Status = *upd.Status
	}
	if upd.Severity != nil {
		i.Severity = *upd.Severity
	}
	if upd.AssigneeID != nil {
		i.AssigneeID = upd.AssigneeID
	}

	i.SetUpdatedAt(time.Now().UTC())
	if err := s.putInsight(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

// DeleteInsight removes an insight and its comments.
func (s *Service) DeleteInsight(ctx context.Context, tenantID, id platform.ID) error {
	s.store.Mu.Lock()
	defer s.store.Mu.Unlock()

	if _, err := s.getInsight(ctx, tenantID, id); err != nil {
		return err
	}

	for _, del := range []sq.DeleteBuilder{
		sq.Delete("insight_comments").Where(sq.Eq{"insight_id": id.String()}),
		sq.Delete("insights").Where(sq.Eq{"id": id.String()}),
	} {
		query, args, err := del.ToSql()
		if err != nil {
			return err
		}
		if _, err := s.store.DB.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

// AddInsightComment appends a comment to the thread and sets c.ID. The
// author defaults to the calling user.
func (s *Service) AddInsightComment(ctx context.Context, tenantID platform.ID, c *castiel.InsightComment) error {
	if err := c.Valid(); err != nil {
		return err
	}
	if !c.AuthorID.Valid() {
		if userID, err := icontext.GetUserID(ctx); err == nil {
			c.AuthorID = userID
		}
	}

	s.store.Mu.Lock()
	defer s.store.Mu.Unlock()

	if _, err := s.getInsight(ctx, tenantID, c.InsightID); err != nil {
		return err
	}

	c.ID = s.idGenerator.ID()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	var authorID interface{}
	if c.AuthorID.Valid() {
		authorID = c.AuthorID.String()
	}
	query, args, err := sq.Insert("insight_comments").
		Columns("id", "insight_id", "author_id", "body", "created_at").
		Values(c.ID.String(), c.InsightID.String(), authorID, c.Body, c.CreatedAt.Format(time.RFC3339Nano)).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.store.DB.ExecContext(ctx, query, args...)
	return err
}

type commentRow struct {
	ID        string         `db:"id"`
	InsightID string         `db:"insight_id"`
	AuthorID  sql.NullString `db:"author_id"`
	Body      string         `db:"body"`
	CreatedAt string         `db:"created_at"`
}

func (r commentRow) toComment() (*castiel.InsightComment, error) {
	c := &castiel.InsightComment{Body: r.Body}
	if err := c.ID.DecodeFromString(r.ID); err != nil {
		return nil, err
	}
	if err := c.InsightID.DecodeFromString(r.InsightID); err != nil {
		return nil, err
	}
	if r.AuthorID.Valid {
		if err := c.AuthorID.DecodeFromString(r.AuthorID.String); err != nil {
			return nil, err
		}
	}
	var err error
	if c.CreatedAt, err = time.Parse(time.RFC3339Nano, r.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// FindInsightComments returns the thread in chronological order.
func (s *Service) FindInsightComments(ctx context.Context, tenantID, insightID platform.ID) ([]*castiel.InsightComment, error) {
	s.store.Mu.RLock()
	defer s.store.Mu.RUnlock()

	if _, err := s.getInsight(ctx, tenantID, insightID); err != nil {
		return nil, err
	}

	query, args, err := sq.Select("id", "insight_id", "author_id", "body", "created_at").
		From("insight_comments").
		Where(sq.Eq{"insight_id": insightID.String()}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []commentRow
	if err := s.store.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	comments := make([]*castiel.InsightComment, 0, len(rows))
	for _, r := range rows {
		c, err := r.toComment()
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, nil
}

// DeleteInsightComment removes a comment. Only the author or a caller with
// write permission on the tenant's insights may delete.
func (s *Service) DeleteInsightComment(ctx context.Context, tenantID, insightID, commentID platform.ID) error {
	s.store.Mu.Lock()
	defer s.store.Mu.Unlock()

	if _, err := s.getInsight(ctx, tenantID, insightID); err != nil {
		return err
	}

	query, args, err := sq.Select("id", "insight_id", "author_id", "body", "created_at").
		From("insight_comments").
		Where(sq.Eq{"id": commentID.String(), "insight_id": insightID.String()}).
		ToSql()
	if err != nil {
		return err
	}
	var r commentRow
	if err := s.store.DB.GetContext(ctx, &r, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return ErrCommentNotFound
		}
		return err
	}
	c, err := r.toComment()
	if err != nil {
		return err
	}

	if err := s.canDeleteComment(ctx, tenantID, c); err != nil {
		return err
	}

	delQuery, delArgs, err := sq.Delete("insight_comments").
		Where(sq.Eq{"id": commentID.String()}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.store.DB.ExecContext(ctx, delQuery, delArgs...)
	return err
}

func (s *Service) canDeleteComment(ctx context.Context, tenantID platform.ID, c *castiel.InsightComment) error {
	userID, err := icontext.GetUserID(ctx)
	if err == nil && userID == c.AuthorID {
		return nil
	}

	auth, err := icontext.GetAuthorizer(ctx)
	if err != nil {
		return ErrNotCommentAuthor
	}
	ps, err := auth.PermissionSet()
	if err != nil {
		return ErrNotCommentAuthor
	}
	perm, err := castiel.NewPermission(castiel.WriteAction, castiel.InsightsResourceType, tenantID)
	if err != nil {
		return err
	}
	if !ps.Allowed(*perm) {
		return ErrNotCommentAuthor
	}
	return nil
}
