package relations

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/bramble/pkg/models"
)

type fakeGameStore struct {
	games       map[string]*models.Game
	upsertErr   error
	deleteErr   error
	upsertCalls int
	deleteCalls int
}

func newFakeGameStore() *fakeGameStore {
	return &fakeGameStore{games: map[string]*models.Game{}}
}

func (s *fakeGameStore) Upsert(ctx context.Context, id string, payload models.GamePayload) (*models.Game, error) {
	s.upsertCalls++
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	game := &models.Game{ID: id, Title: payload.Title}
	s.games[id] = game
	return game, nil
}

func (s *fakeGameStore) GetByID(ctx context.Context, id string) (*models.Game, error) {
	return s.games[id], nil
}

func (s *fakeGameStore) Delete(ctx context.Context, id string) error {
	s.deleteCalls++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.games, id)
	return nil
}

type fakePublisherStore struct {
	publishers map[string]*models.Publisher
	deleteErr  error
}

func newFakePublisherStore() *fakePublisherStore {
	return &fakePublisherStore{publishers: map[string]*models.Publisher{}}
}

func (s *fakePublisherStore) Upsert(ctx context.Context, id string, payload models.PublisherPayload) (*models.Publisher, error) {
	pub := &models.Publisher{ID: id, Name: payload.Name}
	s.publishers[id] = pub
	return pub, nil
}

func (s *fakePublisherStore) GetByID(ctx context.Context, id string) (*models.Publisher, error) {
	return s.publishers[id], nil
}

func (s *fakePublisherStore) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.publishers, id)
	return nil
}

type fakeCreatorStore struct {
	creators  map[string]*models.Creator
	deleteErr error
}

func newFakeCreatorStore() *fakeCreatorStore {
	return &fakeCreatorStore{creators: map[string]*models.Creator{}}
}

func (s *fakeCreatorStore) Upsert(ctx context.Context, id string, payload models.CreatorPayload) (*models.Creator, error) {
	c := &models.Creator{ID: id, Name: payload.Name}
	s.creators[id] = c
	return c, nil
}

func (s *fakeCreatorStore) GetByID(ctx context.Context, id string) (*models.Creator, error) {
	return s.creators[id], nil
}

func (s *fakeCreatorStore) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.creators, id)
	return nil
}

type fakeProductStore struct {
	products map[string]*models.Product
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: map[string]*models.Product{}}
}

func (s *fakeProductStore) Upsert(ctx context.Context, id string, payload models.ProductPayload) (*models.Product, error) {
	p := &models.Product{ID: id, Title: payload.Title, PublisherID: payload.PublisherID}
	s.products[id] = p
	return p, nil
}

func (s *fakeProductStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return s.products[id], nil
}

func (s *fakeProductStore) Delete(ctx context.Context, id string) error {
	delete(s.products, id)
	return nil
}

type recordedEvent struct {
	eventType string
	hostType  models.HostType
	hostID    string
	created   bool
}

type fakeEmitter struct {
	events []recordedEvent
}

func (e *fakeEmitter) EmitHostMutated(ctx context.Context, hostType models.HostType, hostID string, created bool) {
	e.events = append(e.events, recordedEvent{eventType: "mutated", hostType: hostType, hostID: hostID, created: created})
}

func (e *fakeEmitter) EmitHostDeleted(ctx context.Context, hostType models.HostType, hostID string) {
	e.events = append(e.events, recordedEvent{eventType: "deleted", hostType: hostType, hostID: hostID})
}

type fakeLineage struct {
	projected []string
	replaced  []string
	removed   []string
	err       error
}

func (l *fakeLineage) ProjectGame(ctx context.Context, game *models.Game) error {
	if l.err != nil {
		return l.err
	}
	l.projected = append(l.projected, game.ID)
	return nil
}

func (l *fakeLineage) ReplaceBasedOn(ctx context.Context, gameID string, links []models.BasedOnInput) error {
	if l.err != nil {
		return l.err
	}
	l.replaced = append(l.replaced, gameID)
	return nil
}

func (l *fakeLineage) RemoveGame(ctx context.Context, gameID string) error {
	if l.err != nil {
		return l.err
	}
	l.removed = append(l.removed, gameID)
	return nil
}

type orchestratorFixture struct {
	orchestrator *Orchestrator
	publishers   *fakePublisherStore
	creators     *fakeCreatorStore
	products     *fakeProductStore
	games        *fakeGameStore
	refs         *fakeReferenceStore
	creatorAsgs  *fakeCreatorAssignmentStore
	labelAsgs    *fakeLabelAssignmentStore
	basedOn      *fakeBasedOnStore
	emitter      *fakeEmitter
	lineage      *fakeLineage
}

func newOrchestratorFixture() *orchestratorFixture {
	f := &orchestratorFixture{
		publishers:  newFakePublisherStore(),
		creators:    newFakeCreatorStore(),
		products:    newFakeProductStore(),
		games:       newFakeGameStore(),
		refs:        newFakeReferenceStore(),
		creatorAsgs: newFakeCreatorAssignmentStore(),
		labelAsgs:   newFakeLabelAssignmentStore(),
		basedOn:     newFakeBasedOnStore(),
		emitter:     &fakeEmitter{},
		lineage:     &fakeLineage{},
	}
	logger := noopLogger()
	replacer := NewReplacer(f.refs, f.creatorAsgs, f.labelAsgs, f.basedOn, logger)
	f.orchestrator = NewOrchestrator(
		f.publishers, f.creators, f.products, f.games,
		replacer, f.creatorAsgs, f.labelAsgs, f.basedOn,
		f.emitter, f.lineage, logger,
	)
	return f
}

func TestMutateGame(t *testing.T) {
	ctx := context.Background()

	creatorsIn := []models.CreatorAssignmentInput{{CreatorID: "c1", Role: "designer"}}
	labelsIn := []models.LabelAssignmentInput{{LabelID: "l1"}}
	refsIn := []models.ReferenceInput{{Kind: models.ReferenceKindOfficial, Label: "site", URL: "https://example.com"}}
	basedOnIn := []models.BasedOnInput{{BasedOnGameID: strPtr("g0"), Label: "remake of"}}

	t.Run("applies every kind in fixed order on full success", func(t *testing.T) {
		f := newOrchestratorFixture()
		req := models.MutateGameRequest{
			GamePayload: models.GamePayload{Title: "Gloom Harbor"},
			Relations: models.RelationPayloads{
				Creators:   &creatorsIn,
				Labels:     &labelsIn,
				References: &refsIn,
				BasedOn:    &basedOnIn,
			},
		}

		game, result, err := f.orchestrator.MutateGame(ctx, "g1", req)
		require.NoError(t, err)
		assert.Equal(t, "g1", game.ID)
		assert.Equal(t, models.ReplaceOrder, result.Applied)
		assert.Nil(t, result.FailedKind)
		assert.False(t, result.Partial())

		require.Len(t, f.emitter.events, 1)
		assert.Equal(t, "mutated", f.emitter.events[0].eventType)
		assert.False(t, f.emitter.events[0].created)

		assert.Equal(t, []string{"g1"}, f.lineage.projected)
		assert.Equal(t, []string{"g1"}, f.lineage.replaced)
	})

	t.Run("generates an id and reports created on empty id", func(t *testing.T) {
		f := newOrchestratorFixture()
		req := models.MutateGameRequest{GamePayload: models.GamePayload{Title: "Gloom Harbor"}}

		game, result, err := f.orchestrator.MutateGame(ctx, "", req)
		require.NoError(t, err)
		assert.NotEmpty(t, game.ID)
		assert.Equal(t, game.ID, result.HostID)
		require.Len(t, f.emitter.events, 1)
		assert.True(t, f.emitter.events[0].created)
	})

	t.Run("keeps the host and stops at the first failing kind", func(t *testing.T) {
		f := newOrchestratorFixture()
		f.creatorAsgs.insertErr = errors.New("creator missing")
		req := models.MutateGameRequest{
			GamePayload: models.GamePayload{Title: "Gloom Harbor"},
			Relations: models.RelationPayloads{
				Creators:   &creatorsIn,
				References: &refsIn,
			},
		}

		game, result, err := f.orchestrator.MutateGame(ctx, "g1", req)

		var partialErr *PartialMutationError
		require.ErrorAs(t, err, &partialErr)
		assert.Equal(t, models.RelationKindCreators, partialErr.FailedKind)
		assert.Empty(t, partialErr.Applied)

		// the host row persisted and the later kind was never attempted
		assert.NotNil(t, game)
		assert.NotNil(t, f.games.games["g1"])
		assert.Equal(t, 0, f.refs.deleteCalls)
		assert.Equal(t, 0, f.refs.insertCalls)

		require.NotNil(t, result)
		require.NotNil(t, result.FailedKind)
		assert.Equal(t, models.RelationKindCreators, *result.FailedKind)
		assert.True(t, result.Partial())

		// no event and no projection for a partial outcome
		assert.Empty(t, f.emitter.events)
		assert.Empty(t, f.lineage.projected)
	})

	t.Run("host write failure is terminal", func(t *testing.T) {
		f := newOrchestratorFixture()
		f.games.upsertErr = errors.New("db down")
		req := models.MutateGameRequest{
			GamePayload: models.GamePayload{Title: "Gloom Harbor"},
			Relations:   models.RelationPayloads{Creators: &creatorsIn},
		}

		_, result, err := f.orchestrator.MutateGame(ctx, "g1", req)
		require.Error(t, err)
		var partialErr *PartialMutationError
		assert.False(t, errors.As(err, &partialErr))
		assert.Nil(t, result)
		assert.Equal(t, 0, f.creatorAsgs.deleteCalls)
	})

	t.Run("lineage failure does not fail the mutation", func(t *testing.T) {
		f := newOrchestratorFixture()
		f.lineage.err = errors.New("graph down")
		req := models.MutateGameRequest{GamePayload: models.GamePayload{Title: "Gloom Harbor"}}

		_, _, err := f.orchestrator.MutateGame(ctx, "g1", req)
		require.NoError(t, err)
	})
}

func TestMutateProductRejectsBasedOn(t *testing.T) {
	f := newOrchestratorFixture()
	basedOnIn := []models.BasedOnInput{{BasedOnGameID: strPtr("g1"), Label: "x"}}
	req := models.MutateProductRequest{
		ProductPayload: models.ProductPayload{Title: "Boxed Edition", PublisherID: "p1"},
		Relations:      models.RelationPayloads{BasedOn: &basedOnIn},
	}

	_, _, err := f.orchestrator.MutateProduct(context.Background(), "pr1", req)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	// rejected before the host row was written
	assert.Empty(t, f.products.products)
}

func TestReplaceHostRelations(t *testing.T) {
	ctx := context.Background()

	t.Run("requires the host to exist", func(t *testing.T) {
		f := newOrchestratorFixture()
		refsIn := []models.ReferenceInput{{Kind: models.ReferenceKindOfficial, Label: "site", URL: "https://example.com"}}

		_, err := f.orchestrator.ReplaceHostRelations(ctx, models.HostTypeGame, "missing", models.RelationKindReferences, models.RelationPayloads{References: &refsIn})
		var notFoundErr *NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, 0, f.refs.deleteCalls)
	})

	t.Run("replaces a single kind and mirrors based-on into the graph", func(t *testing.T) {
		f := newOrchestratorFixture()
		f.games.games["g1"] = &models.Game{ID: "g1", Title: "Gloom Harbor"}
		basedOnIn := []models.BasedOnInput{{BasedOnURL: strPtr("https://example.com/novel"), Label: "adaptation of"}}

		result, err := f.orchestrator.ReplaceHostRelations(ctx, models.HostTypeGame, "g1", models.RelationKindBasedOn, models.RelationPayloads{BasedOn: &basedOnIn})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Applied)
		assert.Equal(t, []string{"g1"}, f.lineage.replaced)
	})

	t.Run("rejects a payload missing the addressed kind", func(t *testing.T) {
		f := newOrchestratorFixture()
		f.games.games["g1"] = &models.Game{ID: "g1"}

		_, err := f.orchestrator.ReplaceHostRelations(ctx, models.HostTypeGame, "g1", models.RelationKindLabels, models.RelationPayloads{})
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestDeleteHost(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes the host, its projection and emits an event", func(t *testing.T) {
		f := newOrchestratorFixture()
		f.games.games["g1"] = &models.Game{ID: "g1"}

		err := f.orchestrator.DeleteHost(ctx, models.HostTypeGame, "g1")
		require.NoError(t, err)
		assert.Nil(t, f.games.games["g1"])
		assert.Equal(t, []string{"g1"}, f.lineage.removed)
		require.Len(t, f.emitter.events, 1)
		assert.Equal(t, "deleted", f.emitter.events[0].eventType)
	})

	t.Run("missing host is not found", func(t *testing.T) {
		f := newOrchestratorFixture()

		err := f.orchestrator.DeleteHost(ctx, models.HostTypeGame, "missing")
		var notFoundErr *NotFoundError
		assert.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("join delete failure does not block the host delete", func(t *testing.T) {
		f := newOrchestratorFixture()
		f.games.games["g1"] = &models.Game{ID: "g1"}
		f.creatorAsgs.deleteErr = errors.New("transient")

		err := f.orchestrator.DeleteHost(ctx, models.HostTypeGame, "g1")
		require.NoError(t, err)
		assert.Equal(t, 1, f.games.deleteCalls)
	})

	t.Run("a blocked delete surfaces the conflict", func(t *testing.T) {
		f := newOrchestratorFixture()
		f.creators.creators["c1"] = &models.Creator{ID: "c1"}
		f.creators.deleteErr = &ConflictError{Message: "delete creator"}

		err := f.orchestrator.DeleteHost(ctx, models.HostTypeCreator, "c1")
		var conflictErr *ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Empty(t, f.emitter.events)
	})
}
