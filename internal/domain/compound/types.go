// Package compound implements the compound-feasibility engine: bond
// classification, charge-balanced formula search, user formula validation
// and the likelihood verdict that ties them together.
//
// The engine is a pure function of its inputs. It holds no mutable state
// and may be called from any number of goroutines.
package compound

import (
	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

// ─────────────────────────────────────────────────────────────────────────────
// Likelihood
// ─────────────────────────────────────────────────────────────────────────────

// Likelihood is the three-level verdict.
type Likelihood string

const (
	LikelihoodLikely   Likelihood = "likely"
	LikelihoodPossible Likelihood = "possible-but-unstable"
	LikelihoodUnlikely Likelihood = "unlikely"
)

func (l Likelihood) String() string { return string(l) }

// IsValid reports whether l is one of the three verdicts.
func (l Likelihood) IsValid() bool {
	switch l {
	case LikelihoodLikely, LikelihoodPossible, LikelihoodUnlikely:
		return true
	default:
		return false
	}
}

// rank orders verdicts so that a registry pass can only move upward.
func (l Likelihood) rank() int {
	switch l {
	case LikelihoodLikely:
		return 2
	case LikelihoodPossible:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether l is as strong as other.
func (l Likelihood) AtLeast(other Likelihood) bool {
	return l.rank() >= other.rank()
}

// ─────────────────────────────────────────────────────────────────────────────
// BondType
// ─────────────────────────────────────────────────────────────────────────────

// BondType is the dominant bond character of an element set.
type BondType string

const (
	BondIonic            BondType = "ionic"
	BondPolarCovalent    BondType = "polar-covalent"
	BondNonpolarCovalent BondType = "nonpolar-covalent"
	BondNone             BondType = "none"
	BondUnknown          BondType = "unknown"
	BondMixed            BondType = "mixed"
)

func (b BondType) String() string { return string(b) }

// IsValid reports whether b is one of the six bond types.
func (b BondType) IsValid() bool {
	switch b {
	case BondIonic, BondPolarCovalent, BondNonpolarCovalent, BondNone, BondUnknown, BondMixed:
		return true
	default:
		return false
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Records
// ─────────────────────────────────────────────────────────────────────────────

// OxidationTerm is one element's charge contribution inside a candidate.
type OxidationTerm struct {
	Symbol         string `json:"symbol"`
	OxidationState int    `json:"oxidation_state"`
	Count          int    `json:"count"`
}

// CompoundCandidate is a proposed formula and the oxidation states that
// balance it. The assignment is empty when no balancing was attempted.
type CompoundCandidate struct {
	Formula             string          `json:"formula"`
	OxidationAssignment []OxidationTerm `json:"oxidation_assignment"`
}

// NetCharge returns Σ(oxidation state × count) over the assignment.
func (c CompoundCandidate) NetCharge() int {
	total := 0
	for _, t := range c.OxidationAssignment {
		total += t.OxidationState * t.Count
	}
	return total
}

// ElementCount is an explicit atom count supplied by the caller.
type ElementCount struct {
	Symbol string `json:"symbol"`
	Count  int    `json:"count"`
}

// CompoundAnalysis is the engine's result. Elements are ordered by atomic
// number and at most MaxSurfacedCandidates candidates are returned.
type CompoundAnalysis struct {
	Likelihood                  Likelihood          `json:"likelihood"`
	BondType                    BondType            `json:"bond_type"`
	Candidates                  []CompoundCandidate `json:"candidates"`
	ElectronegativityDifference *float64            `json:"electronegativity_difference,omitempty"`
	Rationale                   string              `json:"rationale"`
	Elements                    []etypes.Element    `json:"elements"`
	UserSpecified               bool                `json:"user_specified"`
	// RegistryMatch is set when a known-compound note was added.
	RegistryMatch bool `json:"registry_match"`
}

// Formulas lists the candidate formulas in order.
func (a CompoundAnalysis) Formulas() []string {
	out := make([]string, len(a.Candidates))
	for i, c := range a.Candidates {
		out[i] = c.Formula
	}
	return out
}
