package validators

import (
	"fmt"
	"sort"

	"mercator-hq/underwriter/pkg/engine"
)

// builtins maps capability names used in rule catalogs to validators.
var builtins = map[string]engine.Factory{
	"LTVValidator":                func() engine.Validator { return LTV{} },
	"DTIValidator":                func() engine.Validator { return DTI{} },
	"OccupancyValidator":          func() engine.Validator { return Occupancy{} },
	"SecondHomeValidator":         func() engine.Validator { return SecondHome{} },
	"InvestmentValidator":         func() engine.Validator { return Investment{} },
	"CreditScoreValidator":        func() engine.Validator { return CreditScore{} },
	"GiftValidator":               func() engine.Validator { return Gift{} },
	"CashoutSeasoningValidator":   func() engine.Validator { return CashoutSeasoning{} },
	"TitleValidator":              func() engine.Validator { return Title{} },
	"FraudValidator":              func() engine.Validator { return Fraud{} },
	"AppraisalPriorSaleValidator": func() engine.Validator { return AppraisalPriorSale{} },
	"LoanProgramValidator":        func() engine.Validator { return LoanProgram{} },
	"CashbackValidator":           func() engine.Validator { return Cashback{} },
	"HomebuyerProgramValidator":   func() engine.Validator { return HomebuyerProgram{} },
	"HomebuyerLTVValidator":       func() engine.Validator { return HomebuyerLTV{} },
	"IncomeValidator":             func() engine.Validator { return Income{} },
	"LienPayoffValidator":         func() engine.Validator { return LienPayoff{} },
}

// Names returns the built-in validator names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterAll registers every built-in validator with registry.
func RegisterAll(registry *engine.Registry) error {
	for _, name := range Names() {
		if err := registry.Register(name, builtins[name]); err != nil {
			return fmt.Errorf("register built-in validators: %w", err)
		}
	}
	return nil
}

// NewRegistry returns a registry holding every built-in validator.
func NewRegistry() *engine.Registry {
	registry := engine.NewRegistry()
	if err := RegisterAll(registry); err != nil {
		// An empty registry cannot hold duplicates.
		panic(err)
	}
	return registry
}
