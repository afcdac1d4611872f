package envsync

import (
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestSameStore(t *testing.T) {
	tests := []struct {
		name   string
		source string
		target string
		same   bool
	}{
		{
			name:   "identical urls",
			source: "postgres://user:pw@db.internal:5432/content?sslmode=disable",
			target: "postgres://user:pw@db.internal:5432/content?sslmode=disable",
			same:   true,
		},
		{
			name:   "same database different credentials",
			source: "postgres://alice:a@db.internal:5432/content",
			target: "postgres://bob:b@db.internal:5432/content",
			same:   true,
		},
		{
			name:   "omitted port matches the default",
			source: "postgres://user:pw@db.internal/content",
			target: "postgres://user:pw@db.internal:5432/content",
			same:   true,
		},
		{
			name:   "hostname casing does not differ stores",
			source: "postgres://user:pw@DB.Internal:5432/content",
			target: "postgres://user:pw@db.internal:5432/content",
			same:   true,
		},
		{
			name:   "postgresql scheme is accepted",
			source: "postgresql://user:pw@db.internal:5432/content",
			target: "postgres://user:pw@db.internal:5432/content",
			same:   true,
		},
		{
			name:   "different hosts",
			source: "postgres://user:pw@staging.internal:5432/content",
			target: "postgres://user:pw@prod.internal:5432/content",
			same:   false,
		},
		{
			name:   "same host different database",
			source: "postgres://user:pw@db.internal:5432/content_staging",
			target: "postgres://user:pw@db.internal:5432/content_prod",
			same:   false,
		},
		{
			name:   "different ports",
			source: "postgres://user:pw@db.internal:5432/content",
			target: "postgres://user:pw@db.internal:5433/content",
			same:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			same, err := SameStore(tt.source, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.same, same)
		})
	}
}

func TestSameStoreRejectsKeywordDSNs(t *testing.T) {
	urlDSN := "postgres://user:pw@db.internal:5432/content"
	kvDSN := "host=db.internal port=5432 dbname=content user=user password=pw"

	_, err := SameStore(kvDSN, urlDSN)
	assert.Error(t, err)

	_, err = SameStore(urlDSN, kvDSN)
	assert.Error(t, err)
}

func TestNewReplicatorRefusesSameStore(t *testing.T) {
	dsn := "postgres://user:pw@db.internal:5432/content"

	_, err := NewReplicator(dsn, dsn, noopLogger())
	assert.ErrorIs(t, err, ErrSameStore)

	_, err = NewReplicator("postgres://user:pw@db.internal/content", dsn, noopLogger())
	assert.ErrorIs(t, err, ErrSameStore)
}

func TestTableOrderRespectsDependencies(t *testing.T) {
	pos := make(map[string]int, len(Tables))
	for i, table := range Tables {
		pos[table] = i
	}

	// structural FKs require the referenced table to be populated first
	assert.Less(t, pos["publishers"], pos["products"])
	assert.Less(t, pos["creators"], pos["product_creators"])
	assert.Less(t, pos["creators"], pos["game_creators"])
	assert.Less(t, pos["products"], pos["product_creators"])
	assert.Less(t, pos["games"], pos["game_creators"])
	assert.Less(t, pos["labels"], pos["product_labels"])
	assert.Less(t, pos["labels"], pos["game_labels"])
	assert.Less(t, pos["games"], pos["game_based_on"])
	// references rely on hosts existing when triggers are active
	for _, host := range []string{"publishers", "creators", "games", "products"} {
		assert.Less(t, pos[host], pos["host_references"])
	}
}
