package relations

import (
	"errors"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/bramble/pkg/models"
)

func TestClassifyWrite(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want any
	}{
		{
			name: "foreign key violation is referential",
			err:  &pq.Error{Code: "23503", Message: "missing host"},
			want: &ReferentialViolationError{},
		},
		{
			name: "unique violation is validation",
			err:  &pq.Error{Code: "23505", Message: "duplicate"},
			want: &ValidationError{},
		},
		{
			name: "check violation is validation",
			err:  &pq.Error{Code: "23514", Message: "bad kind"},
			want: &ValidationError{},
		},
		{
			name: "connection failure is a store error",
			err:  &pq.Error{Code: "08006", Message: "connection failure"},
			want: &StoreError{},
		},
		{
			name: "unknown errors are store errors",
			err:  errors.New("boom"),
			want: &StoreError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyWrite("insert references", tt.err)
			require.Error(t, got)
			switch tt.want.(type) {
			case *ReferentialViolationError:
				var target *ReferentialViolationError
				assert.ErrorAs(t, got, &target)
			case *ValidationError:
				var target *ValidationError
				assert.ErrorAs(t, got, &target)
			case *StoreError:
				var target *StoreError
				assert.ErrorAs(t, got, &target)
			}
		})
	}

	assert.NoError(t, ClassifyWrite("noop", nil))
}

func TestClassifyDelete(t *testing.T) {
	var conflictErr *ConflictError
	err := ClassifyDelete("delete creator", &pq.Error{Code: "23503", Message: "still assigned"})
	assert.ErrorAs(t, err, &conflictErr)

	var storeErr *StoreError
	err = ClassifyDelete("delete creator", errors.New("boom"))
	assert.ErrorAs(t, err, &storeErr)

	assert.NoError(t, ClassifyDelete("noop", nil))
}

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", NewValidationErrorf("bad payload"), http.StatusBadRequest},
		{"not found", &NotFoundError{Resource: "game", ID: "g1"}, http.StatusNotFound},
		{"conflict", &ConflictError{Message: "delete creator"}, http.StatusConflict},
		{"referential", &ReferentialViolationError{Message: "insert references"}, http.StatusUnprocessableEntity},
		{"store", &StoreError{Op: "insert references", Err: errors.New("down")}, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := ToHTTPError(tt.err)
			assert.Equal(t, tt.code, httperror.GetStatusCode(httpErr))
		})
	}

	t.Run("partial mutation carries the outcome in meta", func(t *testing.T) {
		partial := &PartialMutationError{
			HostType:   models.HostTypeGame,
			HostID:     "g1",
			Applied:    []models.RelationKind{models.RelationKindCreators},
			FailedKind: models.RelationKindReferences,
			Err:        errors.New("insert failed"),
		}

		httpErr := ToHTTPError(partial)
		assert.Equal(t, http.StatusMultiStatus, httperror.GetStatusCode(httpErr))

		meta := httperror.ToHTTPError(httpErr).Meta
		assert.Equal(t, "g1", meta["host_id"])
		assert.Equal(t, "references", meta["failed_kind"])
		assert.Equal(t, []string{"creators"}, meta["applied_kinds"])
	})
}
