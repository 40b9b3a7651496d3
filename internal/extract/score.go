package extract

// Confidence scoring lives here so each weight is independently testable.
// Weights are additive bumps with caps and floors; they are heuristics, not
// calibrated probabilities.

const (
	contactBase        = 0.4
	contactRoleWindow  = 0.3
	contactRolePage    = 0.15
	contactNameBonus   = 0.2
	contactObfuscated  = 0.5
	contactTDFloor     = 0.7
	venueBase          = 0.1
	venueKeywordBonus  = 0.3
	venueAddressBonus  = 0.4
	venueMapLink       = 0.5
	compAmountBonus    = 0.4
	compUnitBonus      = 0.2
	compDivisionBonus  = 0.2
	compKeywordBonus   = 0.1
	compFloor          = 0.3
	pdfHintConfidence  = 0.3
	dateRangeConf      = 0.7
	dateSingleConf     = 0.6
	attributeConf      = 0.5
)

func capConfidence(c float64) float64 {
	if c > 1 {
		return 1
	}
	return c
}

// scoreContact starts at 0.4, adds 0.3 for a role keyword in the immediate
// evidence window (0.15 if only the whole-page fallback matched), 0.2 for an
// extracted name, capped at 1.0.
func scoreContact(roleInWindow, roleInPage, hasName bool) float64 {
	c := contactBase
	switch {
	case roleInWindow:
		c += contactRoleWindow
	case roleInPage:
		c += contactRolePage
	}
	if hasName {
		c += contactNameBonus
	}
	return capConfidence(c)
}

// scoreVenue is 0.1 base, +0.3 for a venue keyword, +0.4 for an
// address-shaped substring, capped at 1.0.
func scoreVenue(hasKeyword, hasAddress bool) float64 {
	c := venueBase
	if hasKeyword {
		c += venueKeywordBonus
	}
	if hasAddress {
		c += venueAddressBonus
	}
	return capConfidence(c)
}

// scoreComp is +0.4 amount, +0.2 unit, +0.2 division context, +0.1 generic
// rate keyword, with a 0.3 floor for lines that qualified without scoring.
func scoreComp(hasAmount, hasUnit, hasDivision, hasRateKeyword bool) float64 {
	c := 0.0
	if hasAmount {
		c += compAmountBonus
	}
	if hasUnit {
		c += compUnitBonus
	}
	if hasDivision {
		c += compDivisionBonus
	}
	if hasRateKeyword {
		c += compKeywordBonus
	}
	if c < compFloor {
		c = compFloor
	}
	return capConfidence(c)
}
