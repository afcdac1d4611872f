package relations

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/google/uuid"

	"github.com/Ramsey-B/bramble/pkg/models"
)

// PublisherStore is the host-row persistence the orchestrator needs.
type PublisherStore interface {
	Upsert(ctx context.Context, id string, payload models.PublisherPayload) (*models.Publisher, error)
	GetByID(ctx context.Context, id string) (*models.Publisher, error)
	Delete(ctx context.Context, id string) error
}

// CreatorStore is the host-row persistence for creators.
type CreatorStore interface {
	Upsert(ctx context.Context, id string, payload models.CreatorPayload) (*models.Creator, error)
	GetByID(ctx context.Context, id string) (*models.Creator, error)
	Delete(ctx context.Context, id string) error
}

// ProductStore is the host-row persistence for products.
type ProductStore interface {
	Upsert(ctx context.Context, id string, payload models.ProductPayload) (*models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

// GameStore is the host-row persistence for games.
type GameStore interface {
	Upsert(ctx context.Context, id string, payload models.GamePayload) (*models.Game, error)
	GetByID(ctx context.Context, id string) (*models.Game, error)
	Delete(ctx context.Context, id string) error
}

// HostEventEmitter publishes host lifecycle events. Emission failures never
// fail a mutation; implementations log and move on.
type HostEventEmitter interface {
	EmitHostMutated(ctx context.Context, hostType models.HostType, hostID string, created bool)
	EmitHostDeleted(ctx context.Context, hostType models.HostType, hostID string)
}

// LineageProjector mirrors games and their based-on links into the graph
// store. Projection failures never fail a mutation.
type LineageProjector interface {
	ProjectGame(ctx context.Context, game *models.Game) error
	ReplaceBasedOn(ctx context.Context, gameID string, links []models.BasedOnInput) error
	RemoveGame(ctx context.Context, gameID string) error
}

// Orchestrator composes a host-row write and the relation replacements present
// in the payload into one logical mutation. The host write happens first;
// relation kinds are applied in models.ReplaceOrder; the first failing kind
// stops the sequence and is reported as a PartialMutationError. Nothing is
// retried and nothing already written is undone.
type Orchestrator struct {
	publishers PublisherStore
	creators   CreatorStore
	products   ProductStore
	games      GameStore

	replacer           *Replacer
	creatorAssignments CreatorAssignmentStore
	labelAssignments   LabelAssignmentStore
	basedOn            BasedOnStore

	emitter HostEventEmitter
	lineage LineageProjector
	logger  ectologger.Logger
}

// NewOrchestrator creates a mutation orchestrator. emitter and lineage may be
// nil when eventing or graph projection is disabled.
func NewOrchestrator(
	publishers PublisherStore,
	creators CreatorStore,
	products ProductStore,
	games GameStore,
	replacer *Replacer,
	creatorAssignments CreatorAssignmentStore,
	labelAssignments LabelAssignmentStore,
	basedOn BasedOnStore,
	emitter HostEventEmitter,
	lineage LineageProjector,
	logger ectologger.Logger,
) *Orchestrator {
	return &Orchestrator{
		publishers:         publishers,
		creators:           creators,
		products:           products,
		games:              games,
		replacer:           replacer,
		creatorAssignments: creatorAssignments,
		labelAssignments:   labelAssignments,
		basedOn:            basedOn,
		emitter:            emitter,
		lineage:            lineage,
		logger:             logger,
	}
}

// validateRelations rejects payload kinds the host type cannot carry and
// malformed based-on rows before anything is written.
func validateRelations(hostType models.HostType, payloads models.RelationPayloads) error {
	for _, kind := range payloads.Kinds() {
		if !hostSupportsKind(hostType, kind) {
			return NewValidationErrorf("host type %q cannot carry relation kind %q", hostType, kind)
		}
	}
	if payloads.BasedOn != nil {
		for i := range *payloads.BasedOn {
			if err := (*payloads.BasedOn)[i].Validate(); err != nil {
				return NewValidationErrorf("based_on[%d]: %s", i, err.Error())
			}
		}
	}
	return nil
}

// applyRelations replaces each kind present in the payload, in fixed order.
// It returns the kinds applied so far and the failing kind's error, if any.
func (o *Orchestrator) applyRelations(ctx context.Context, hostType models.HostType, hostID string, payloads models.RelationPayloads) ([]models.RelationKind, *models.RelationKind, error) {
	applied := []models.RelationKind{}

	for _, kind := range models.ReplaceOrder {
		if !payloads.Has(kind) {
			continue
		}

		var err error
		switch kind {
		case models.RelationKindCreators:
			_, err = o.replacer.ReplaceCreators(ctx, hostType, hostID, *payloads.Creators)
		case models.RelationKindLabels:
			_, err = o.replacer.ReplaceLabels(ctx, hostType, hostID, *payloads.Labels)
		case models.RelationKindReferences:
			_, err = o.replacer.ReplaceReferences(ctx, hostType, hostID, *payloads.References)
		case models.RelationKindBasedOn:
			_, err = o.replacer.ReplaceBasedOn(ctx, hostType, hostID, *payloads.BasedOn)
		}
		if err != nil {
			failed := kind
			return applied, &failed, err
		}
		applied = append(applied, kind)
	}

	return applied, nil, nil
}

// mutationOutcome assembles the result and, for a failed kind, the
// PartialMutationError confirming the host row persisted.
func (o *Orchestrator) mutationOutcome(ctx context.Context, hostType models.HostType, hostID string, created bool, applied []models.RelationKind, failed *models.RelationKind, applyErr error) (*models.MutationResult, error) {
	result := &models.MutationResult{
		HostType:   hostType,
		HostID:     hostID,
		Applied:    applied,
		FailedKind: failed,
	}

	if failed != nil {
		o.logger.WithContext(ctx).WithError(applyErr).WithFields(map[string]any{
			"host_type":   hostType,
			"host_id":     hostID,
			"failed_kind": *failed,
		}).Warn("host mutation applied partially")
		return result, &PartialMutationError{
			HostType:   hostType,
			HostID:     hostID,
			Applied:    applied,
			FailedKind: *failed,
			Err:        applyErr,
		}
	}

	if o.emitter != nil {
		o.emitter.EmitHostMutated(ctx, hostType, hostID, created)
	}
	return result, nil
}

// MutatePublisher creates or fully replaces a publisher and its relations.
// Pass an empty id to create.
func (o *Orchestrator) MutatePublisher(ctx context.Context, id string, req models.MutatePublisherRequest) (*models.Publisher, *models.MutationResult, error) {
	ctx, span := tracing.StartSpan(ctx, "relations.Orchestrator.MutatePublisher")
	defer span.End()

	if err := validateRelations(models.HostTypePublisher, req.Relations); err != nil {
		return nil, nil, err
	}

	created := id == ""
	if created {
		id = uuid.New().String()
	}

	host, err := o.publishers.Upsert(ctx, id, req.PublisherPayload)
	if err != nil {
		return nil, nil, err
	}

	applied, failed, applyErr := o.applyRelations(ctx, models.HostTypePublisher, id, req.Relations)
	result, err := o.mutationOutcome(ctx, models.HostTypePublisher, id, created, applied, failed, applyErr)
	return host, result, err
}

// MutateCreator creates or fully replaces a creator and its relations.
func (o *Orchestrator) MutateCreator(ctx context.Context, id string, req models.MutateCreatorRequest) (*models.Creator, *models.MutationResult, error) {
	ctx, span := tracing.StartSpan(ctx, "relations.Orchestrator.MutateCreator")
	defer span.End()

	if err := validateRelations(models.HostTypeCreator, req.Relations); err != nil {
		return nil, nil, err
	}

	created := id == ""
	if created {
		id = uuid.New().String()
	}

	host, err := o.creators.Upsert(ctx, id, req.CreatorPayload)
	if err != nil {
		return nil, nil, err
	}

	applied, failed, applyErr := o.applyRelations(ctx, models.HostTypeCreator, id, req.Relations)
	result, err := o.mutationOutcome(ctx, models.HostTypeCreator, id, created, applied, failed, applyErr)
	return host, result, err
}

// MutateProduct creates or fully replaces a product and its relations.
func (o *Orchestrator) MutateProduct(ctx context.Context, id string, req models.MutateProductRequest) (*models.Product, *models.MutationResult, error) {
	ctx, span := tracing.StartSpan(ctx, "relations.Orchestrator.MutateProduct")
	defer span.End()

	if err := validateRelations(models.HostTypeProduct, req.Relations); err != nil {
		return nil, nil, err
	}

	created := id == ""
	if created {
		id = uuid.New().String()
	}

	host, err := o.products.Upsert(ctx, id, req.ProductPayload)
	if err != nil {
		return nil, nil, err
	}

	applied, failed, applyErr := o.applyRelations(ctx, models.HostTypeProduct, id, req.Relations)
	result, err := o.mutationOutcome(ctx, models.HostTypeProduct, id, created, applied, failed, applyErr)
	return host, result, err
}

// MutateGame creates or fully replaces a game and its relations. On full
// success the game and its based-on links are mirrored into the lineage graph.
func (o *Orchestrator) MutateGame(ctx context.Context, id string, req models.MutateGameRequest) (*models.Game, *models.MutationResult, error) {
	ctx, span := tracing.StartSpan(ctx, "relations.Orchestrator.MutateGame")
	defer span.End()

	if err := validateRelations(models.HostTypeGame, req.Relations); err != nil {
		return nil, nil, err
	}

	created := id == ""
	if created {
		id = uuid.New().String()
	}

	host, err := o.games.Upsert(ctx, id, req.GamePayload)
	if err != nil {
		return nil, nil, err
	}

	applied, failed, applyErr := o.applyRelations(ctx, models.HostTypeGame, id, req.Relations)
	result, err := o.mutationOutcome(ctx, models.HostTypeGame, id, created, applied, failed, applyErr)

	if err == nil && o.lineage != nil {
		if projErr := o.lineage.ProjectGame(ctx, host); projErr != nil {
			o.logger.WithContext(ctx).WithError(projErr).WithField("game_id", id).Warn("lineage projection failed")
		} else if req.Relations.BasedOn != nil {
			if projErr := o.lineage.ReplaceBasedOn(ctx, id, *req.Relations.BasedOn); projErr != nil {
				o.logger.WithContext(ctx).WithError(projErr).WithField("game_id", id).Warn("lineage based-on projection failed")
			}
		}
	}

	return host, result, err
}

// ReplaceHostRelations replaces exactly one relation kind for an existing
// host. The host must exist; the replacement itself then follows replacer
// semantics.
func (o *Orchestrator) ReplaceHostRelations(ctx context.Context, hostType models.HostType, hostID string, kind models.RelationKind, payloads models.RelationPayloads) (*models.ReplaceResult, error) {
	ctx, span := tracing.StartSpan(ctx, "relations.Orchestrator.ReplaceHostRelations")
	defer span.End()

	if !payloads.Has(kind) {
		return nil, NewValidationErrorf("payload does not carry relation kind %q", kind)
	}
	if err := o.hostExists(ctx, hostType, hostID); err != nil {
		return nil, err
	}

	switch kind {
	case models.RelationKindCreators:
		return o.replacer.ReplaceCreators(ctx, hostType, hostID, *payloads.Creators)
	case models.RelationKindLabels:
		return o.replacer.ReplaceLabels(ctx, hostType, hostID, *payloads.Labels)
	case models.RelationKindReferences:
		return o.replacer.ReplaceReferences(ctx, hostType, hostID, *payloads.References)
	case models.RelationKindBasedOn:
		result, err := o.replacer.ReplaceBasedOn(ctx, hostType, hostID, *payloads.BasedOn)
		if err == nil && o.lineage != nil {
			if projErr := o.lineage.ReplaceBasedOn(ctx, hostID, *payloads.BasedOn); projErr != nil {
				o.logger.WithContext(ctx).WithError(projErr).WithField("game_id", hostID).Warn("lineage based-on projection failed")
			}
		}
		return result, err
	}
	return nil, NewValidationErrorf("unknown relation kind %q", kind)
}

func (o *Orchestrator) hostExists(ctx context.Context, hostType models.HostType, hostID string) error {
	notFound := &NotFoundError{Resource: string(hostType), ID: hostID}
	switch hostType {
	case models.HostTypePublisher:
		host, err := o.publishers.GetByID(ctx, hostID)
		if err != nil {
			return err
		}
		if host == nil {
			return notFound
		}
	case models.HostTypeCreator:
		host, err := o.creators.GetByID(ctx, hostID)
		if err != nil {
			return err
		}
		if host == nil {
			return notFound
		}
	case models.HostTypeProduct:
		host, err := o.products.GetByID(ctx, hostID)
		if err != nil {
			return err
		}
		if host == nil {
			return notFound
		}
	case models.HostTypeGame:
		host, err := o.games.GetByID(ctx, hostID)
		if err != nil {
			return err
		}
		if host == nil {
			return notFound
		}
	default:
		return NewValidationErrorf("unknown host type %q", hostType)
	}
	return nil
}

// DeleteHost deletes a host row. Join rows the orchestrator owns directly are
// deleted best-effort first (failures are logged, not fatal); the host delete
// then runs, and the database-side orphan collector removes references
// regardless. A structural dependency elsewhere surfaces as ConflictError.
func (o *Orchestrator) DeleteHost(ctx context.Context, hostType models.HostType, hostID string) error {
	ctx, span := tracing.StartSpan(ctx, "relations.Orchestrator.DeleteHost")
	defer span.End()

	if err := o.hostExists(ctx, hostType, hostID); err != nil {
		return err
	}

	if hostType == models.HostTypeProduct || hostType == models.HostTypeGame {
		if err := o.creatorAssignments.DeleteByHost(ctx, hostType, hostID); err != nil {
			o.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"host_type": hostType,
				"host_id":   hostID,
			}).Warn("failed to delete creator assignments before host delete")
		}
		if err := o.labelAssignments.DeleteByHost(ctx, hostType, hostID); err != nil {
			o.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"host_type": hostType,
				"host_id":   hostID,
			}).Warn("failed to delete label assignments before host delete")
		}
	}
	if hostType == models.HostTypeGame {
		if err := o.basedOn.DeleteByGame(ctx, hostID); err != nil {
			o.logger.WithContext(ctx).WithError(err).WithField("game_id", hostID).Warn("failed to delete based-on links before host delete")
		}
	}

	var err error
	switch hostType {
	case models.HostTypePublisher:
		err = o.publishers.Delete(ctx, hostID)
	case models.HostTypeCreator:
		err = o.creators.Delete(ctx, hostID)
	case models.HostTypeProduct:
		err = o.products.Delete(ctx, hostID)
	case models.HostTypeGame:
		err = o.games.Delete(ctx, hostID)
	}
	if err != nil {
		return err
	}

	if hostType == models.HostTypeGame && o.lineage != nil {
		if projErr := o.lineage.RemoveGame(ctx, hostID); projErr != nil {
			o.logger.WithContext(ctx).WithError(projErr).WithField("game_id", hostID).Warn("failed to remove game from lineage graph")
		}
	}
	if o.emitter != nil {
		o.emitter.EmitHostDeleted(ctx, hostType, hostID)
	}
	return nil
}
