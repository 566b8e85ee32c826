package shard

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
	"github.com/hashicorp/go-multierror"
)

// Bulk operations process items sequentially. Under the continue policy
// every item runs, per-item failures aggregate into one multierror, and
// the outcome list reports each item; under abort the first failure stops
// the run and the outcomes cover only the items attempted.

func normalizePolicy(policy castiel.OnErrorPolicy) (castiel.OnErrorPolicy, error) {
	if policy == "" {
		return castiel.OnErrorContinue, nil
	}
	if err := policy.Valid(); err != nil {
		return "", err
	}
	return policy, nil
}

// BulkCreateShards creates shards one at a time, honoring the on-error
// policy.
func (s *Service) BulkCreateShards(ctx context.Context, tenantID platform.ID, shards []*castiel.Shard, policy castiel.OnErrorPolicy) ([]castiel.BulkOutcome, error) {
	policy, err := normalizePolicy(policy)
	if err != nil {
		return nil, err
	}

	var errs *multierror.Error
	outcomes := make([]castiel.BulkOutcome, 0, len(shards))
	for _, sh := range shards {
		sh.TenantID = tenantID
		if err := s.CreateShard(ctx, sh); err != nil {
			outcomes = append(outcomes, castiel.BulkOutcome{Error: err.Error()})
			if policy == castiel.OnErrorAbort {
				return outcomes, err
			}
			errs = multierror.Append(errs, err)
			continue
		}
		outcomes = append(outcomes, castiel.BulkOutcome{ID: sh.ID})
	}

	return outcomes, wrapBulkErr(errs)
}

// BulkUpdateShards applies changesets one at a time, honoring the on-error
// policy.
func (s *Service) BulkUpdateShards(ctx context.Context, tenantID platform.ID, updates []castiel.BulkShardUpdate, policy castiel.OnErrorPolicy) ([]castiel.BulkOutcome, error) {
	policy, err := normalizePolicy(policy)
	if err != nil {
		return nil, err
	}

	var errs *multierror.Error
	outcomes := make([]castiel.BulkOutcome, 0, len(updates))
	for _, u := range updates {
		if _, err := s.UpdateShard(ctx, tenantID, u.ID, u.Update); err != nil {
			outcomes = append(outcomes, castiel.BulkOutcome{ID: u.ID, Error: err.Error()})
			if policy == castiel.OnErrorAbort {
				return outcomes, err
			}
			errs = multierror.Append(errs, err)
			continue
		}
		outcomes = append(outcomes, castiel.BulkOutcome{ID: u.ID})
	}

	return outcomes, wrapBulkErr(errs)
}

// BulkDeleteShards soft deletes shards one at a time, honoring the
// on-error policy.
func (s *Service) BulkDeleteShards(ctx context.Context, tenantID platform.ID, ids []platform.ID, policy castiel.OnErrorPolicy) ([]castiel.BulkOutcome, error) {
	policy, err := normalizePolicy(policy)
	if err != nil {
		return nil, err
	}

	var errs *multierror.Error
	outcomes := make([]castiel.BulkOutcome, 0, len(ids))
	for _, id := range ids {
		if err := s.DeleteShard(ctx, tenantID, id); err != nil {
			outcomes = append(outcomes, castiel.BulkOutcome{ID: id, Error: err.Error()})
			if policy == castiel.OnErrorAbort {
				return outcomes, err
			}
			errs = multierror.Append(errs, err)
			continue
		}
		outcomes = append(outcomes, castiel.BulkOutcome{ID: id})
	}

	return outcomes, wrapBulkErr(errs)
}

// wrapBulkErr classifies an aggregated bulk failure as unprocessable so
// the transport reports a 422 with every per-item message, not a bare 500.
func wrapBulkErr(errs *multierror.Error) error {
	if errs == nil || len(errs.Errors) == 0 {
		return nil
	}
	return &errors.Error{
		Code: errors.EUnprocessableEntity,
		Msg:  "one or more bulk items failed",
		Err:  errs.ErrorOrNil(),
	}
}
