package relations

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/bramble/pkg/models"
)

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type fakeReferenceStore struct {
	rows        map[string][]models.ReferenceInput
	deleteCalls int
	insertCalls int
	deleteErr   error
	insertErr   error
}

func newFakeReferenceStore() *fakeReferenceStore {
	return &fakeReferenceStore{rows: map[string][]models.ReferenceInput{}}
}

func (s *fakeReferenceStore) key(hostType models.HostType, hostID string) string {
	return string(hostType) + "/" + hostID
}

func (s *fakeReferenceStore) DeleteByHost(ctx context.Context, hostType models.HostType, hostID string) error {
	s.deleteCalls++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.rows, s.key(hostType, hostID))
	return nil
}

func (s *fakeReferenceStore) InsertBatch(ctx context.Context, hostType models.HostType, hostID string, rows []models.ReferenceInput) (int, error) {
	s.insertCalls++
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.rows[s.key(hostType, hostID)] = rows
	return len(rows), nil
}

type fakeCreatorAssignmentStore struct {
	rows        map[string][]models.CreatorAssignmentInput
	deleteCalls int
	insertCalls int
	deleteErr   error
	insertErr   error
}

func newFakeCreatorAssignmentStore() *fakeCreatorAssignmentStore {
	return &fakeCreatorAssignmentStore{rows: map[string][]models.CreatorAssignmentInput{}}
}

func (s *fakeCreatorAssignmentStore) DeleteByHost(ctx context.Context, hostType models.HostType, hostID string) error {
	s.deleteCalls++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.rows, string(hostType)+"/"+hostID)
	return nil
}

func (s *fakeCreatorAssignmentStore) InsertBatch(ctx context.Context, hostType models.HostType, hostID string, rows []models.CreatorAssignmentInput) (int, error) {
	s.insertCalls++
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.rows[string(hostType)+"/"+hostID] = rows
	return len(rows), nil
}

type fakeLabelAssignmentStore struct {
	rows        map[string][]models.LabelAssignmentInput
	deleteCalls int
	insertCalls int
	deleteErr   error
	insertErr   error
}

func newFakeLabelAssignmentStore() *fakeLabelAssignmentStore {
	return &fakeLabelAssignmentStore{rows: map[string][]models.LabelAssignmentInput{}}
}

func (s *fakeLabelAssignmentStore) DeleteByHost(ctx context.Context, hostType models.HostType, hostID string) error {
	s.deleteCalls++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.rows, string(hostType)+"/"+hostID)
	return nil
}

func (s *fakeLabelAssignmentStore) InsertBatch(ctx context.Context, hostType models.HostType, hostID string, rows []models.LabelAssignmentInput) (int, error) {
	s.insertCalls++
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.rows[string(hostType)+"/"+hostID] = rows
	return len(rows), nil
}

type fakeBasedOnStore struct {
	rows        map[string][]models.BasedOnInput
	deleteCalls int
	insertCalls int
	deleteErr   error
	insertErr   error
}

func newFakeBasedOnStore() *fakeBasedOnStore {
	return &fakeBasedOnStore{rows: map[string][]models.BasedOnInput{}}
}

func (s *fakeBasedOnStore) DeleteByGame(ctx context.Context, gameID string) error {
	s.deleteCalls++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.rows, gameID)
	return nil
}

func (s *fakeBasedOnStore) InsertBatch(ctx context.Context, gameID string, rows []models.BasedOnInput) (int, error) {
	s.insertCalls++
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.rows[gameID] = rows
	return len(rows), nil
}

func newTestReplacer() (*Replacer, *fakeReferenceStore, *fakeCreatorAssignmentStore, *fakeLabelAssignmentStore, *fakeBasedOnStore) {
	refs := newFakeReferenceStore()
	creators := newFakeCreatorAssignmentStore()
	labels := newFakeLabelAssignmentStore()
	basedOn := newFakeBasedOnStore()
	r := NewReplacer(refs, creators, labels, basedOn, noopLogger())
	return r, refs, creators, labels, basedOn
}

func strPtr(s string) *string {
	return &s
}

func TestReplaceReferences(t *testing.T) {
	ctx := context.Background()
	target := []models.ReferenceInput{
		{Kind: models.ReferenceKindOfficial, URL: "https://example.com/a"},
		{Kind: models.ReferenceKindReview, URL: "https://example.com/b"},
	}

	t.Run("replaces the stored set with the target", func(t *testing.T) {
		r, refs, _, _, _ := newTestReplacer()
		refs.rows["publisher/p1"] = []models.ReferenceInput{{Kind: models.ReferenceKindSocial, URL: "https://old.example.com"}}

		result, err := r.ReplaceReferences(ctx, models.HostTypePublisher, "p1", target)
		require.NoError(t, err)
		assert.Equal(t, models.RelationKindReferences, result.Kind)
		assert.Equal(t, 2, result.Applied)
		assert.Equal(t, target, refs.rows["publisher/p1"])
	})

	t.Run("is idempotent", func(t *testing.T) {
		r, refs, _, _, _ := newTestReplacer()

		first, err := r.ReplaceReferences(ctx, models.HostTypeGame, "g1", target)
		require.NoError(t, err)
		second, err := r.ReplaceReferences(ctx, models.HostTypeGame, "g1", target)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, target, refs.rows["game/g1"])
	})

	t.Run("empty target clears the set without inserting", func(t *testing.T) {
		r, refs, _, _, _ := newTestReplacer()
		refs.rows["product/pr1"] = target

		result, err := r.ReplaceReferences(ctx, models.HostTypeProduct, "pr1", nil)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Applied)
		assert.Equal(t, 0, refs.insertCalls)
		assert.Empty(t, refs.rows["product/pr1"])
	})

	t.Run("delete failure leaves the set unchanged and skips the insert", func(t *testing.T) {
		r, refs, _, _, _ := newTestReplacer()
		refs.rows["game/g1"] = target
		refs.deleteErr = errors.New("connection reset")

		_, err := r.ReplaceReferences(ctx, models.HostTypeGame, "g1", target)
		var replaceErr *ReplaceError
		require.ErrorAs(t, err, &replaceErr)
		assert.Equal(t, StageDelete, replaceErr.Stage)
		assert.False(t, replaceErr.Emptied)
		assert.Equal(t, 0, refs.insertCalls)
		assert.Equal(t, target, refs.rows["game/g1"])
	})

	t.Run("insert failure reports the emptied state", func(t *testing.T) {
		r, refs, _, _, _ := newTestReplacer()
		refs.rows["game/g1"] = target
		refs.insertErr = errors.New("row rejected")

		_, err := r.ReplaceReferences(ctx, models.HostTypeGame, "g1", target)
		var replaceErr *ReplaceError
		require.ErrorAs(t, err, &replaceErr)
		assert.Equal(t, StageInsert, replaceErr.Stage)
		assert.True(t, replaceErr.Emptied)
		assert.Empty(t, refs.rows["game/g1"])
	})
}

func TestReplaceCreators(t *testing.T) {
	ctx := context.Background()
	target := []models.CreatorAssignmentInput{
		{CreatorID: "c1", Role: "author"},
		{CreatorID: "c1", Role: "illustrator"},
	}

	t.Run("replaces assignments on a game", func(t *testing.T) {
		r, _, creators, _, _ := newTestReplacer()

		result, err := r.ReplaceCreators(ctx, models.HostTypeGame, "g1", target)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Applied)
		assert.Equal(t, target, creators.rows["game/g1"])
	})

	t.Run("rejects hosts that cannot carry creators", func(t *testing.T) {
		r, _, creators, _, _ := newTestReplacer()

		_, err := r.ReplaceCreators(ctx, models.HostTypePublisher, "p1", target)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, 0, creators.deleteCalls)
	})
}

func TestReplaceLabels(t *testing.T) {
	ctx := context.Background()

	r, _, _, labels, _ := newTestReplacer()
	target := []models.LabelAssignmentInput{{LabelID: "l1"}, {LabelID: "l2"}}

	result, err := r.ReplaceLabels(ctx, models.HostTypeProduct, "pr1", target)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Applied)
	assert.Equal(t, target, labels.rows["product/pr1"])

	_, err = r.ReplaceLabels(ctx, models.HostTypeCreator, "c1", target)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestReplaceBasedOn(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces links on a game", func(t *testing.T) {
		r, _, _, _, basedOn := newTestReplacer()
		target := []models.BasedOnInput{
			{BasedOnGameID: strPtr("g2"), Label: "sequel to"},
			{BasedOnURL: strPtr("https://example.com/novel"), Label: "adaptation of"},
		}

		result, err := r.ReplaceBasedOn(ctx, models.HostTypeGame, "g1", target)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Applied)
		assert.Equal(t, target, basedOn.rows["g1"])
	})

	t.Run("only games carry based-on links", func(t *testing.T) {
		r, _, _, _, basedOn := newTestReplacer()

		_, err := r.ReplaceBasedOn(ctx, models.HostTypeProduct, "pr1", nil)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, 0, basedOn.deleteCalls)
	})

	t.Run("rejects rows violating the game-or-url rule before deleting", func(t *testing.T) {
		r, _, _, _, basedOn := newTestReplacer()
		bad := []models.BasedOnInput{
			{BasedOnGameID: strPtr("g2"), BasedOnURL: strPtr("https://example.com"), Label: "both set"},
		}

		_, err := r.ReplaceBasedOn(ctx, models.HostTypeGame, "g1", bad)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, 0, basedOn.deleteCalls)
	})
}
