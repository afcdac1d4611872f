// Package relations implements the relation consistency engine: replacement
// of a host's dependent collections and the orchestration of host mutations.
//
// Replacement is delete-all-then-insert-all issued as two independent store
// calls with no shared transaction, so a failed insert leaves the kind empty.
// That state is surfaced as ReplaceError{Emptied: true} rather than hidden.
// Concurrent replacements of the same (host, kind) race at the storage layer
// and the last writer wins; there is no version column.
package relations

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/tracing"

	"github.com/Ramsey-B/bramble/pkg/models"
)

// ReferenceStore persists polymorphic reference rows.
type ReferenceStore interface {
	DeleteByHost(ctx context.Context, hostType models.HostType, hostID string) error
	InsertBatch(ctx context.Context, hostType models.HostType, hostID string, rows []models.ReferenceInput) (int, error)
}

// CreatorAssignmentStore persists creator-role rows for products and games.
type CreatorAssignmentStore interface {
	DeleteByHost(ctx context.Context, hostType models.HostType, hostID string) error
	InsertBatch(ctx context.Context, hostType models.HostType, hostID string, rows []models.CreatorAssignmentInput) (int, error)
}

// LabelAssignmentStore persists ordered label rows for products and games.
type LabelAssignmentStore interface {
	DeleteByHost(ctx context.Context, hostType models.HostType, hostID string) error
	InsertBatch(ctx context.Context, hostType models.HostType, hostID string, rows []models.LabelAssignmentInput) (int, error)
}

// BasedOnStore persists based-on links for games.
type BasedOnStore interface {
	DeleteByGame(ctx context.Context, gameID string) error
	InsertBatch(ctx context.Context, gameID string, rows []models.BasedOnInput) (int, error)
}

// Replacer makes the stored set for one (host, kind) equal to a target list.
type Replacer struct {
	references ReferenceStore
	creators   CreatorAssignmentStore
	labels     LabelAssignmentStore
	basedOn    BasedOnStore
	logger     ectologger.Logger
}

// NewReplacer creates a relation replacer over the given stores.
func NewReplacer(
	references ReferenceStore,
	creators CreatorAssignmentStore,
	labels LabelAssignmentStore,
	basedOn BasedOnStore,
	logger ectologger.Logger,
) *Replacer {
	return &Replacer{
		references: references,
		creators:   creators,
		labels:     labels,
		basedOn:    basedOn,
		logger:     logger,
	}
}

// hostSupportsKind reports which relation kinds a host type carries.
func hostSupportsKind(hostType models.HostType, kind models.RelationKind) bool {
	switch kind {
	case models.RelationKindReferences:
		return hostType.Valid()
	case models.RelationKindCreators, models.RelationKindLabels:
		return hostType == models.HostTypeProduct || hostType == models.HostTypeGame
	case models.RelationKindBasedOn:
		return hostType == models.HostTypeGame
	}
	return false
}

// ReplaceReferences replaces all reference rows for a host.
func (r *Replacer) ReplaceReferences(ctx context.Context, hostType models.HostType, hostID string, target []models.ReferenceInput) (*models.ReplaceResult, error) {
	ctx, span := tracing.StartSpan(ctx, "relations.Replacer.ReplaceReferences")
	defer span.End()

	if !hostSupportsKind(hostType, models.RelationKindReferences) {
		return nil, NewValidationErrorf("host type %q cannot carry references", hostType)
	}

	return r.replace(ctx, models.RelationKindReferences, hostType, hostID, len(target),
		func(ctx context.Context) error {
			return r.references.DeleteByHost(ctx, hostType, hostID)
		},
		func(ctx context.Context) (int, error) {
			return r.references.InsertBatch(ctx, hostType, hostID, target)
		})
}

// ReplaceCreators replaces all creator assignments for a product or game.
func (r *Replacer) ReplaceCreators(ctx context.Context, hostType models.HostType, hostID string, target []models.CreatorAssignmentInput) (*models.ReplaceResult, error) {
	ctx, span := tracing.StartSpan(ctx, "relations.Replacer.ReplaceCreators")
	defer span.End()

	if !hostSupportsKind(hostType, models.RelationKindCreators) {
		return nil, NewValidationErrorf("host type %q cannot carry creator assignments", hostType)
	}

	return r.replace(ctx, models.RelationKindCreators, hostType, hostID, len(target),
		func(ctx context.Context) error {
			return r.creators.DeleteByHost(ctx, hostType, hostID)
		},
		func(ctx context.Context) (int, error) {
			return r.creators.InsertBatch(ctx, hostType, hostID, target)
		})
}

// ReplaceLabels replaces all label assignments for a product or game. The
// store assigns each row a position equal to its index in the target list.
func (r *Replacer) ReplaceLabels(ctx context.Context, hostType models.HostType, hostID string, target []models.LabelAssignmentInput) (*models.ReplaceResult, error) {
	ctx, span := tracing.StartSpan(ctx, "relations.Replacer.ReplaceLabels")
	defer span.End()

	if !hostSupportsKind(hostType, models.RelationKindLabels) {
		return nil, NewValidationErrorf("host type %q cannot carry label assignments", hostType)
	}

	return r.replace(ctx, models.RelationKindLabels, hostType, hostID, len(target),
		func(ctx context.Context) error {
			return r.labels.DeleteByHost(ctx, hostType, hostID)
		},
		func(ctx context.Context) (int, error) {
			return r.labels.InsertBatch(ctx, hostType, hostID, target)
		})
}

// ReplaceBasedOn replaces all based-on links for a game. Every input row must
// satisfy the game-id/url XOR.
func (r *Replacer) ReplaceBasedOn(ctx context.Context, hostType models.HostType, hostID string, target []models.BasedOnInput) (*models.ReplaceResult, error) {
	ctx, span := tracing.StartSpan(ctx, "relations.Replacer.ReplaceBasedOn")
	defer span.End()

	if !hostSupportsKind(hostType, models.RelationKindBasedOn) {
		return nil, NewValidationErrorf("host type %q cannot carry based-on links", hostType)
	}
	for i := range target {
		if err := target[i].Validate(); err != nil {
			return nil, NewValidationErrorf("based_on[%d]: %s", i, err.Error())
		}
	}

	return r.replace(ctx, models.RelationKindBasedOn, hostType, hostID, len(target),
		func(ctx context.Context) error {
			return r.basedOn.DeleteByGame(ctx, hostID)
		},
		func(ctx context.Context) (int, error) {
			return r.basedOn.InsertBatch(ctx, hostID, target)
		})
}

// replace runs the two-step replacement. The delete and the insert are
// separate calls on purpose; when the insert fails the kind is left empty and
// the error says so.
func (r *Replacer) replace(
	ctx context.Context,
	kind models.RelationKind,
	hostType models.HostType,
	hostID string,
	targetLen int,
	del func(ctx context.Context) error,
	insert func(ctx context.Context) (int, error),
) (*models.ReplaceResult, error) {
	if err := del(ctx); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"host_type": hostType,
			"host_id":   hostID,
			"kind":      kind,
		}).Error("failed to delete existing relation rows")
		return nil, &ReplaceError{Kind: kind, Stage: StageDelete, Err: err}
	}

	if targetLen == 0 {
		// "remove all" is a valid terminal state
		return &models.ReplaceResult{Kind: kind, Applied: 0}, nil
	}

	applied, err := insert(ctx)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"host_type": hostType,
			"host_id":   hostID,
			"kind":      kind,
		}).Error("failed to insert replacement rows, relation kind left empty")
		return nil, &ReplaceError{Kind: kind, Stage: StageInsert, Emptied: true, Err: err}
	}

	return &models.ReplaceResult{Kind: kind, Applied: applied}, nil
}
