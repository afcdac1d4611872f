package models

// RelationKind names one of the dependent collections attached to a host.
type RelationKind string

const (
	RelationKindCreators   RelationKind = "creators"
	RelationKindLabels     RelationKind = "labels"
	RelationKindReferences RelationKind = "references"
	RelationKindBasedOn    RelationKind = "based_on"
)

// ReplaceOrder is the fixed order relation kinds are applied in during a host
// mutation. Error messages and partial-failure outcomes depend on it, so it
// never varies per request.
var ReplaceOrder = []RelationKind{
	RelationKindCreators,
	RelationKindLabels,
	RelationKindReferences,
	RelationKindBasedOn,
}

// ParseRelationKind parses a relation kind from a route parameter.
func ParseRelationKind(s string) (RelationKind, bool) {
	switch RelationKind(s) {
	case RelationKindCreators, RelationKindLabels, RelationKindReferences, RelationKindBasedOn:
		return RelationKind(s), true
	}
	return "", false
}

// RelationPayloads carries the relation kinds present in a mutation. A nil
// slice pointer means "leave this kind alone"; an empty non-nil slice means
// "remove all rows of this kind".
type RelationPayloads struct {
	Creators   *[]CreatorAssignmentInput `json:"creators,omitempty"`
	Labels     *[]LabelAssignmentInput   `json:"labels,omitempty"`
	References *[]ReferenceInput         `json:"references,omitempty"`
	BasedOn    *[]BasedOnInput           `json:"based_on,omitempty"`
}

// Kinds returns the kinds present in the payload, in ReplaceOrder.
func (p *RelationPayloads) Kinds() []RelationKind {
	var kinds []RelationKind
	for _, kind := range ReplaceOrder {
		if p.Has(kind) {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// Has reports whether the payload carries the given kind.
func (p *RelationPayloads) Has(kind RelationKind) bool {
	switch kind {
	case RelationKindCreators:
		return p.Creators != nil
	case RelationKindLabels:
		return p.Labels != nil
	case RelationKindReferences:
		return p.References != nil
	case RelationKindBasedOn:
		return p.BasedOn != nil
	}
	return false
}

// ReplaceResult reports a successful relation replacement.
type ReplaceResult struct {
	Kind    RelationKind `json:"kind"`
	Applied int          `json:"applied_count"`
}

// MutationResult describes the outcome of a host mutation. FailedKind is nil
// on total success; when set, the host row and every kind in Applied persist
// and only FailedKind needs to be resubmitted.
type MutationResult struct {
	HostType   HostType       `json:"host_type"`
	HostID     string         `json:"host_id"`
	Applied    []RelationKind `json:"applied_kinds"`
	FailedKind *RelationKind  `json:"failed_kind,omitempty"`
}

// Partial reports whether the mutation saved the host but lost a relation kind.
func (r *MutationResult) Partial() bool {
	return r.FailedKind != nil
}
