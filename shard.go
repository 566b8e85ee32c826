package castiel

import (
	"context"
	"fmt"
	"time"

	"github.com/Edgame2/castiel/kit/platform"
)

// Ops for shard errors and shard journal events.
const (
	OpFindShardByID   = "FindShardByID"
	OpFindShards      = "FindShards"
	OpCreateShard     = "CreateShard"
	OpUpdateShard     = "UpdateShard"
	OpDeleteShard     = "DeleteShard"
	OpRestoreShard    = "RestoreShard"
	OpHardDeleteShard = "HardDeleteShard"
	OpLinkShards      = "LinkShards"
	OpUnlinkShards    = "UnlinkShards"
	OpLinkExternal    = "LinkExternal"
	OpUnlinkExternal  = "UnlinkExternal"
	OpFindRelated     = "FindRelated"
	OpAssembleContext = "AssembleContext"
)

// ShardStatus defines the lifecycle state of a shard.
type ShardStatus string

const (
	// ShardActive is a live shard.
	ShardActive ShardStatus = "active"
	// ShardDeleted is a soft-deleted shard, hidden from default finds but
	// restorable until it is hard deleted.
	ShardDeleted ShardStatus = "deleted"
)

// Valid checks the status is a member of the ShardStatus enum.
func (s ShardStatus) Valid() error {
	switch s {
	case ShardActive, ShardDeleted:
		return nil
	default:
		return &Error{
			Code: EInvalid,
			Msg:  fmt.Sprintf("invalid shard status %q", s),
		}
	}
}

// ACLAction is a permission granted by a shard ACL entry.
type ACLAction string

const (
	// ACLRead grants read access to a shard.
	ACLRead ACLAction = "read"
	// ACLWrite grants write access to a shard.
	ACLWrite ACLAction = "write"
	// ACLAdmin grants ACL management on a shard. Admin implies read and write.
	ACLAdmin ACLAction = "admin"
)

// Valid checks the action is a member of the ACLAction enum.
func (a ACLAction) Valid() error {
	switch a {
	case ACLRead, ACLWrite, ACLAdmin:
		return nil
	default:
		return &Error{
			Code: EInvalid,
			Msg:  fmt.Sprintf("invalid acl action %q", a),
		}
	}
}

// ACLSubjectType is the kind of principal an ACL entry names.
type ACLSubjectType string

const (
	// ACLSubjectUser grants to a single user.
	ACLSubjectUser ACLSubjectType = "user"
	// ACLSubjectRole grants to every member of a role.
	ACLSubjectRole ACLSubjectType = "role"
)

// Valid checks the subject type is a member of the ACLSubjectType enum.
func (t ACLSubjectType) Valid() error {
	switch t {
	case ACLSubjectUser, ACLSubjectRole:
		return nil
	default:
		return &Error{
			Code: EInvalid,
			Msg:  fmt.Sprintf("invalid acl subject type %q", t),
		}
	}
}

// ACLEntry grants a set of actions on a shard to a user or role.
type ACLEntry struct {
	SubjectType ACLSubjectType `json:"subjectType"`
	SubjectID   platform.ID    `json:"subjectID"`
	Actions     []ACLAction    `json:"actions"`
}

// Valid validates the entry.
func (e ACLEntry) Valid() error {
	if err := e.SubjectType.Valid(); err != nil {
		return err
	}
	if !e.SubjectID.Valid() {
		return &Error{
			Code: EInvalid,
			Msg:  "acl subject id is invalid",
		}
	}
	if len(e.Actions) == 0 {
		return &Error{
			Code: EEmptyValue,
			Msg:  "acl entry must grant at least one action",
		}
	}
	for _, a := range e.Actions {
		if err := a.Valid(); err != nil {
			return err
		}
	}
	return nil
}

// Allows reports whether the entry grants action. Admin entries allow
// everything.
func (e ACLEntry) Allows(action ACLAction) bool {
	for _, a := range e.Actions {
		if a == action || a == ACLAdmin {
			return true
		}
	}
	return false
}

// Relationship is an edge from a shard to another shard in the same tenant.
// Edges live embedded on the parent record and are unique by
// (ShardID, Type); relinking an existing edge merges metadata and keeps the
// original CreatedAt.
type Relationship struct {
	ShardID   platform.ID       `json:"shardID"`
	Type      string            `json:"type"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// ExternalRelationship is an edge from a shard to a record in an outside
// system. (System, ExternalID) is unique within a shard's external list.
type ExternalRelationship struct {
	System     string            `json:"system"`
	ExternalID string            `json:"externalID"`
	Type       string            `json:"type"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// Valid validates the external relationship.
func (r ExternalRelationship) Valid() error {
	if r.System == "" || r.ExternalID == "" {
		return &Error{
			Code: EEmptyValue,
			Msg:  "external relationship requires a system and an external id",
		}
	}
	return nil
}

// Shard is the generic tagged document record everything else in the
// platform hangs off. The structured payload is free-form JSON described by
// the shard type's schema; the unstructured payload is free text.
type Shard struct {
	ID           platform.ID            `json:"id,omitempty"`
	TenantID     platform.ID            `json:"tenantID"`
	TypeID       platform.ID            `json:"typeID"`
	Name         string                 `json:"name"`
	Structured   map[string]interface{} `json:"structured,omitempty"`
	Unstructured string                 `json:"unstructured,omitempty"`
	ACL          []ACLEntry             `json:"acl,omitempty"`
	Internal     []Relationship         `json:"internal,omitempty"`
	External     []ExternalRelationship `json:"external,omitempty"`
	Status       ShardStatus            `json:"status"`
	DeletedAt    *time.Time             `json:"deletedAt,omitempty"`
	CRUDLog
}

// Valid validates the shard record.
func (s Shard) Valid() error {
	if s.Name == "" {
		return &Error{
			Code: EEmptyValue,
			Msg:  "shard name cannot be empty",
		}
	}
	if !s.TenantID.Valid() {
		return &Error{
			Code: EInvalid,
			Msg:  "shard tenant id is invalid",
		}
	}
	if !s.TypeID.Valid() {
		return &Error{
			Code: EInvalid,
			Msg:  "shard type id is invalid",
		}
	}
	for _, e := range s.ACL {
		if err := e.Valid(); err != nil {
			return err
		}
	}
	return nil
}

// ShardSummary is the reduced shard shape returned when expanding
// relationships.
type ShardSummary struct {
	ID       platform.ID `json:"id"`
	TenantID platform.ID `json:"tenantID"`
	TypeID   platform.ID `json:"typeID"`
	Name     string      `json:"name"`
	Status   ShardStatus `json:"status"`
}

// Summary reduces the shard to its summary shape.
func (s *Shard) Summary() ShardSummary {
	return ShardSummary{
		ID:       s.ID,
		TenantID: s.TenantID,
		TypeID:   s.TypeID,
		Name:     s.Name,
		Status:   s.Status,
	}
}

// RelatedShard pairs an expanded internal edge with the shard it points at.
type RelatedShard struct {
	Relationship Relationship `json:"relationship"`
	Shard        ShardSummary `json:"shard"`
}

// OnErrorPolicy controls how bulk operations react to a failing item.
type OnErrorPolicy string

const (
	// OnErrorContinue processes every item and aggregates failures.
	OnErrorContinue OnErrorPolicy = "continue"
	// OnErrorAbort stops at the first failing item.
	OnErrorAbort OnErrorPolicy = "abort"
)

// Valid checks the policy is a member of the OnErrorPolicy enum.
func (p OnErrorPolicy) Valid() error {
	switch p {
	case OnErrorContinue, OnErrorAbort:
		return nil
	default:
		return &Error{
			Code: EInvalid,
			Msg:  fmt.Sprintf("invalid on-error policy %q", p),
		}
	}
}

// BulkOutcome reports the result of one item of a bulk operation.
type BulkOutcome struct {
	ID    platform.ID `json:"id,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Succeeded reports whether the item was applied.
func (o BulkOutcome) Succeeded() bool {
	return o.Error == ""
}

// ShardUpdate is the set of changes to apply to a shard. The structured
// payload merges at the top level; set keys overwrite, explicit nulls
// delete, absent keys are kept. Unstructured replaces the stored text when
// non-nil. Relationship arrays merge by linear scan under the same
// uniqueness rules linking enforces.
type ShardUpdate struct {
	Name         *string                `json:"name,omitempty"`
	TypeID       *platform.ID           `json:"typeID,omitempty"`
	Structured   map[string]interface{} `json:"structured,omitempty"`
	Unstructured *string                `json:"unstructured,omitempty"`
	Internal     []Relationship         `json:"internal,omitempty"`
	External     []ExternalRelationship `json:"external,omitempty"`
}

// Valid reports whether the changeset holds applicable values.
func (upd ShardUpdate) Valid() error {
	if upd.Name != nil && *upd.Name == "" {
		return &Error{
			Code: EEmptyValue,
			Msg:  "shard name cannot be empty",
		}
	}
	if upd.TypeID != nil && !upd.TypeID.Valid() {
		return &Error{
			Code: EInvalid,
			Msg:  "shard type id is invalid",
		}
	}
	return nil
}

// ShardFilter represents a set of filters that restrict the returned results.
type ShardFilter struct {
	TenantID       platform.ID
	TypeID         *platform.ID
	NamePrefix     *string
	Status         *ShardStatus
	IncludeDeleted bool
}

// QueryParams implements PagingFilter.
func (f ShardFilter) QueryParams() map[string][]string {
	qp := map[string][]string{}
	if f.TypeID != nil {
		qp["typeID"] = []string{f.TypeID.String()}
	}
	if f.NamePrefix != nil {
		qp["name"] = []string{*f.NamePrefix}
	}
	if f.Status != nil {
		qp["status"] = []string{string(*f.Status)}
	}
	if f.IncludeDeleted {
		qp["includeDeleted"] = []string{"true"}
	}
	return qp
}

// BulkShardUpdate addresses one shard of a bulk update.
type BulkShardUpdate struct {
	ID     platform.ID `json:"id"`
	Update ShardUpdate `json:"update"`
}

// ShardService represents a service for managing shard records.
type ShardService interface {
	// FindShardByID returns a single shard by ID.
	FindShardByID(ctx context.Context, tenantID, id platform.ID) (*Shard, error)

	// FindShards returns a list of shards that match filter and the total
	// count of matching shards. Soft-deleted shards are excluded unless the
	// filter asks for them.
	FindShards(ctx context.Context, filter ShardFilter, opt ...FindOptions) ([]*Shard, int, error)

	// CreateShard creates a new shard and sets sh.ID with the new identifier.
	CreateShard(ctx context.Context, sh *Shard) error

	// UpdateShard applies the changeset to a single shard and returns the
	// new state.
	UpdateShard(ctx context.Context, tenantID, id platform.ID, upd ShardUpdate) (*Shard, error)

	// DeleteShard soft deletes a shard.
	DeleteShard(ctx context.Context, tenantID, id platform.ID) error

	// RestoreShard reverses a soft delete.
	RestoreShard(ctx context.Context, tenantID, id platform.ID) error

	// HardDeleteShard physically removes a shard. Operator only.
	HardDeleteShard(ctx context.Context, tenantID, id platform.ID) error

	// BulkCreateShards creates shards sequentially, honoring the on-error
	// policy, and reports per-item outcomes.
	BulkCreateShards(ctx context.Context, tenantID platform.ID, shards []*Shard, policy OnErrorPolicy) ([]BulkOutcome, error)

	// BulkUpdateShards applies changesets sequentially, honoring the
	// on-error policy, and reports per-item outcomes.
	BulkUpdateShards(ctx context.Context, tenantID platform.ID, updates []BulkShardUpdate, policy OnErrorPolicy) ([]BulkOutcome, error)

	// BulkDeleteShards soft deletes shards sequentially, honoring the
	// on-error policy, and reports per-item outcomes.
	BulkDeleteShards(ctx context.Context, tenantID platform.ID, ids []platform.ID, policy OnErrorPolicy) ([]BulkOutcome, error)

	// GetShardACL returns the ACL of a shard.
	GetShardACL(ctx context.Context, tenantID, id platform.ID) ([]ACLEntry, error)

	// PutShardACL replaces the ACL of a shard.
	PutShardACL(ctx context.Context, tenantID, id platform.ID, acl []ACLEntry) error
}

// ShardLinkingService manages the relationship arrays embedded on shards.
type ShardLinkingService interface {
	// LinkShards attaches an internal edge from parent to child. Re-linking
	// an existing (child, type) edge merges metadata.
	LinkShards(ctx context.Context, tenantID, parentID, childID platform.ID, relType string, metadata map[string]string) (*Shard, error)

	// UnlinkShards removes the (child, type) edge from parent.
	UnlinkShards(ctx context.Context, tenantID, parentID, childID platform.ID, relType string) (*Shard, error)

	// LinkExternal attaches an edge to an outside system record. Re-linking
	// an existing (system, externalID) pair merges metadata.
	LinkExternal(ctx context.Context, tenantID, parentID platform.ID, rel ExternalRelationship) (*Shard, error)

	// UnlinkExternal removes the (system, externalID) edge from parent.
	UnlinkExternal(ctx context.Context, tenantID, parentID platform.ID, system, externalID string) (*Shard, error)

	// FindRelated expands the internal edges of parent into shard summaries.
	// Edges the caller cannot read and edges pointing at missing shards are
	// skipped, not errored.
	FindRelated(ctx context.Context, tenantID, parentID platform.ID) ([]RelatedShard, error)
}

// ContextAssemblyOptions bound the size of an assembled context bundle.
type ContextAssemblyOptions struct {
	MaxRelated          int  `json:"maxRelated,omitempty"`
	MaxDocuments        int  `json:"maxDocuments,omitempty"`
	MaxInsights         int  `json:"maxInsights,omitempty"`
	IncludeUnstructured bool `json:"includeUnstructured,omitempty"`
}

// ContextBundle is the read-side view the AI features build prompts from:
// one shard plus the related records the caller is allowed to see.
type ContextBundle struct {
	Shard     *Shard         `json:"shard"`
	Related   []RelatedShard `json:"related,omitempty"`
	Documents []*Document    `json:"documents,omitempty"`
	Insights  []*Insight     `json:"insights,omitempty"`
}

// ContextAssemblyService builds context bundles.
type ContextAssemblyService interface {
	// AssembleContext collects the shard, its readable related shards, its
	// published documents and its open insights into one bundle.
	AssembleContext(ctx context.Context, tenantID, shardID platform.ID, opts ContextAssemblyOptions) (*ContextBundle, error)
}
