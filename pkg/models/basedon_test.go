package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string {
	return &s
}

func TestBasedOnInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   BasedOnInput
		wantErr bool
	}{
		{"game id only", BasedOnInput{BasedOnGameID: strPtr("g1"), Label: "remake of"}, false},
		{"url only", BasedOnInput{BasedOnURL: strPtr("https://example.com/novel"), Label: "adaptation of"}, false},
		{"both set", BasedOnInput{BasedOnGameID: strPtr("g1"), BasedOnURL: strPtr("https://example.com"), Label: "x"}, true},
		{"neither set", BasedOnInput{Label: "x"}, true},
		{"empty strings count as unset", BasedOnInput{BasedOnGameID: strPtr(""), BasedOnURL: strPtr(""), Label: "x"}, true},
		{"empty game id with url is valid", BasedOnInput{BasedOnGameID: strPtr(""), BasedOnURL: strPtr("https://example.com"), Label: "x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBasedOnSourceType(t *testing.T) {
	game := BasedOnInput{BasedOnGameID: strPtr("g1"), Label: "remake of"}
	assert.Equal(t, BasedOnSourceGame, game.SourceType())

	url := BasedOnInput{BasedOnURL: strPtr("https://example.com"), Label: "adaptation of"}
	assert.Equal(t, BasedOnSourceURL, url.SourceType())

	link := BasedOnLink{BasedOnGameID: strPtr("g1")}
	assert.Equal(t, BasedOnSourceGame, link.SourceType())

	linkURL := BasedOnLink{BasedOnURL: strPtr("https://example.com")}
	assert.Equal(t, BasedOnSourceURL, linkURL.SourceType())
}

func TestRelationPayloads(t *testing.T) {
	empty := []ReferenceInput{}
	p := RelationPayloads{References: &empty}

	assert.True(t, p.Has(RelationKindReferences))
	assert.False(t, p.Has(RelationKindCreators))
	assert.Equal(t, []RelationKind{RelationKindReferences}, p.Kinds())

	kind, ok := ParseRelationKind("based_on")
	assert.True(t, ok)
	assert.Equal(t, RelationKindBasedOn, kind)

	_, ok = ParseRelationKind("bogus")
	assert.False(t, ok)
}
