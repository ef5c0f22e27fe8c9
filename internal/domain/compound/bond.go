package compound

import (
	"fmt"
	"math"
	"strings"

	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

// Pauling-scale thresholds.
const (
	IonicThreshold       = 1.7
	PolarThreshold       = 0.4
	StrongIonicThreshold = 2.0
	MixedThreshold       = 1.5
)

// classifyDelta maps an electronegativity difference onto a bond type.
func classifyDelta(delta float64) BondType {
	switch {
	case delta > IonicThreshold:
		return BondIonic
	case delta > PolarThreshold:
		return BondPolarCovalent
	default:
		return BondNonpolarCovalent
	}
}

// bondResult is the classifier output.
type bondResult struct {
	bondType BondType
	delta    *float64
	// missing names the elements without a Pauling value.
	missing []string
}

// classifyBond computes the maximum pairwise electronegativity difference.
// Sets of three or more whose pairs span both ionic and covalent classes are
// reported as mixed.
func classifyBond(elements []etypes.Element) bondResult {
	var missing []string
	for _, e := range elements {
		if !e.HasElectronegativity() {
			missing = append(missing, e.Name)
		}
	}
	if len(missing) > 0 {
		return bondResult{bondType: BondUnknown, missing: missing}
	}

	maxDelta := 0.0
	sawIonic, sawCovalent := false, false
	for i := 0; i < len(elements); i++ {
		for j := i + 1; j < len(elements); j++ {
			d := math.Abs(*elements[i].Electronegativity - *elements[j].Electronegativity)
			if d > maxDelta {
				maxDelta = d
			}
			if classifyDelta(d) == BondIonic {
				sawIonic = true
			} else {
				sawCovalent = true
			}
		}
	}

	bt := classifyDelta(maxDelta)
	if len(elements) > 2 && sawIonic && sawCovalent {
		bt = BondMixed
	}
	return bondResult{bondType: bt, delta: &maxDelta}
}

// nobleGasRationale names the noble gases in elements, or returns "" when
// there are none.
func nobleGasRationale(elements []etypes.Element) string {
	var names []string
	for _, e := range elements {
		if e.IsNobleGas() {
			names = append(names, e.Name)
		}
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("%s is a noble gas with a complete valence shell and does not readily form compounds.", names[0])
	default:
		return fmt.Sprintf("%s are noble gases with complete valence shells and do not readily form compounds.", joinNames(names))
	}
}

func missingElectronegativityRationale(names []string) string {
	return fmt.Sprintf("Electronegativity data is unavailable for %s, so bond character cannot be determined.", joinNames(names))
}

// bondSentence describes the classified bond for rationales.
func bondSentence(bt BondType, delta float64) string {
	switch bt {
	case BondIonic:
		if delta > StrongIonicThreshold {
			return fmt.Sprintf("Strongly ionic bonding (ΔEN = %.2f): electrons transfer almost completely.", delta)
		}
		return fmt.Sprintf("Ionic bonding (ΔEN = %.2f).", delta)
	case BondPolarCovalent:
		return fmt.Sprintf("Polar covalent bonding (ΔEN = %.2f).", delta)
	case BondNonpolarCovalent:
		return fmt.Sprintf("Nonpolar covalent bonding (ΔEN = %.2f).", delta)
	case BondMixed:
		return fmt.Sprintf("Mixed ionic and covalent bonding (max ΔEN = %.2f).", delta)
	case BondNone, BondUnknown:
		return ""
	default:
		return ""
	}
}

// joinNames renders "A", "A and B", "A, B and C".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
