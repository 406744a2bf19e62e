package validators

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"mercator-hq/underwriter/pkg/document"
	"mercator-hq/underwriter/pkg/engine"
	"mercator-hq/underwriter/pkg/fields"
	"mercator-hq/underwriter/pkg/rules"
)

var testFields = map[document.Source][]string{
	document.SourceOrigination: {
		"ltv", "cltv", "hcltv", "dti", "property_will_be", "no_units",
		"loan_program_detail", "property_type", "average_representative_credit_score",
		"gift_amount", "liabilities_account_number", "liabilities_name",
		"estimated_closing_date", "amortization_type", "cash_from_borrower",
		"cash_to_borrower", "loan_amount", "homebuyer_education_certificate",
		"total_income", "area_median_income", "liabilities_will_be_paid_off",
		"liabilities_account_type", "urla_lender_subject_street",
		"urla_lender_subject_city", "urla_lender_subject_state", "urla_lender_subject_unit",
	},
	document.SourceTitle:      {"chain_title_date"},
	document.SourceAppraisal:  {"prior_sale_date"},
	document.SourceInspection: {"drive_street", "drive_city", "drive_state", "drive_unit", "fraud_recorded_date"},
}

// testResolver maps every logical field to a top-level key of the same name.
func testResolver(t *testing.T) *fields.Resolver {
	t.Helper()

	var b strings.Builder
	for source, names := range testFields {
		fmt.Fprintf(&b, "%s:\n", source)
		for _, name := range names {
			fmt.Fprintf(&b, "  %s:\n    path: [%s]\n", name, name)
		}
	}

	catalog, err := fields.ParseCatalog([]byte(b.String()))
	if err != nil {
		t.Fatalf("ParseCatalog() error = %v", err)
	}
	return fields.NewResolver(catalog)
}

func mustContext(t *testing.T, payload string) document.Context {
	t.Helper()
	c, err := document.ParseContext([]byte(payload))
	if err != nil {
		t.Fatalf("ParseContext() error = %v", err)
	}
	return c
}

func testRule(params, thresholds rules.Params) *rules.Rule {
	return &rules.Rule{
		ID:               "R",
		Params:           params,
		Thresholds:       thresholds,
		AlertMessage:     "alert",
		ConditionMessage: "condition",
	}
}

type validatorCase struct {
	name       string
	payload    string
	params     rules.Params
	thresholds rules.Params
	want       engine.Status
	wantMsg    string
}

func runCases(t *testing.T, v engine.Validator, cases []validatorCase) {
	t.Helper()
	r := testResolver(t)

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			rule := testRule(tt.params, tt.thresholds)
			got, err := v.Evaluate(rule, mustContext(t, tt.payload), r)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got.Status != tt.want {
				t.Errorf("Status = %s, want %s (details %v)", got.Status, tt.want, got.Details)
			}
			if got.RuleID != "R" {
				t.Errorf("RuleID = %q, want %q", got.RuleID, "R")
			}
			if tt.wantMsg != "" && got.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMsg)
			}
			if got.Status == engine.StatusNotApplicable && (got.Message != "" || len(got.Details) > 0) {
				t.Errorf("not applicable result carries message %q and details %v", got.Message, got.Details)
			}
		})
	}
}

func TestLTV(t *testing.T) {
	limits := rules.Params{"ltv": 95, "cltv": 95, "hcltv": 95}
	runCases(t, LTV{}, []validatorCase{
		{name: "fraction over limit", payload: `{"los": {"ltv": 0.97}}`, thresholds: limits, want: engine.StatusAlert, wantMsg: "alert"},
		{name: "percentage under limit", payload: `{"los": {"ltv": 80, "cltv": 90}}`, thresholds: limits, want: engine.StatusPass},
		{name: "cltv over", payload: `{"los": {"ltv": 80, "cltv": "96"}}`, thresholds: limits, want: engine.StatusAlert},
		{name: "hcltv over", payload: `{"los": {"hcltv": 0.99}}`, thresholds: limits, want: engine.StatusAlert},
		{name: "at limit passes", payload: `{"los": {"ltv": 95}}`, thresholds: limits, want: engine.StatusPass},
		{name: "no thresholds", payload: `{"los": {"ltv": 0.99}}`, want: engine.StatusPass},
		{name: "unparseable ltv ignored", payload: `{"los": {"ltv": "n/a"}}`, thresholds: limits, want: engine.StatusPass},
	})
}

func TestDTI(t *testing.T) {
	runCases(t, DTI{}, []validatorCase{
		{name: "over default", payload: `{"los": {"dti": 51}}`, want: engine.StatusAlert},
		{name: "at default", payload: `{"los": {"dti": 50}}`, want: engine.StatusPass},
		{name: "custom limit", payload: `{"los": {"dti": "46"}}`, params: rules.Params{"dti_limit": 45}, want: engine.StatusAlert},
		{name: "missing", payload: `{}`, want: engine.StatusNotApplicable},
		{name: "not numeric", payload: `{"los": {"dti": "high"}}`, want: engine.StatusNotApplicable},
	})
}

func TestOccupancy(t *testing.T) {
	runCases(t, Occupancy{}, []validatorCase{
		{name: "primary", payload: `{"los": {"property_will_be": " Primary "}}`, want: engine.StatusPass},
		{name: "investment", payload: `{"los": {"property_will_be": "Investment"}}`, want: engine.StatusAlert},
		{name: "missing", payload: `{}`, want: engine.StatusNotApplicable},
		{name: "empty", payload: `{"los": {"property_will_be": ""}}`, want: engine.StatusNotApplicable},
	})
}

func TestSecondHome(t *testing.T) {
	runCases(t, SecondHome{}, []validatorCase{
		{name: "single unit", payload: `{"los": {"no_units": 1}}`, want: engine.StatusPass},
		{name: "single unit text", payload: `{"los": {"no_units": "1"}}`, want: engine.StatusPass},
		{name: "two units", payload: `{"los": {"no_units": 2}}`, want: engine.StatusAlert},
		{name: "fractional number truncates", payload: `{"los": {"no_units": 1.5}}`, want: engine.StatusPass},
		{name: "fractional text", payload: `{"los": {"no_units": "1.5"}}`, want: engine.StatusNotApplicable},
		{name: "unknown", payload: `{"los": {"no_units": "two"}}`, want: engine.StatusNotApplicable},
	})
}

func TestInvestment(t *testing.T) {
	runCases(t, Investment{}, []validatorCase{
		{name: "manufactured program", payload: `{"los": {"loan_program_detail": "Conv Manufactured Home"}}`, want: engine.StatusAlert},
		{name: "manufactured type", payload: `{"los": {"property_type": "MANUFACTURED"}}`, want: engine.StatusAlert},
		{name: "detached", payload: `{"los": {"property_type": "Detached"}}`, want: engine.StatusPass},
		{name: "nothing known", payload: `{}`, want: engine.StatusPass},
	})
}

func TestCreditScore(t *testing.T) {
	runCases(t, CreditScore{}, []validatorCase{
		{name: "at floor", payload: `{"los": {"average_representative_credit_score": 620}}`, want: engine.StatusAlert},
		{name: "above floor", payload: `{"los": {"average_representative_credit_score": "621"}}`, want: engine.StatusPass},
		{name: "custom floor", payload: `{"los": {"average_representative_credit_score": 680}}`, params: rules.Params{"min_score": 680}, want: engine.StatusAlert},
		{name: "missing", payload: `{}`, want: engine.StatusNotApplicable},
	})
}

func TestGift(t *testing.T) {
	runCases(t, Gift{}, []validatorCase{
		{name: "gift present", payload: `{"los": {"gift_amount": 5000}}`, want: engine.StatusAlert, wantMsg: "alert"},
		{name: "zero gift", payload: `{"los": {"gift_amount": 0}}`, want: engine.StatusPass},
		{name: "no gift", payload: `{}`, want: engine.StatusPass},
		{name: "garbage amount", payload: `{"los": {"gift_amount": "none"}}`, want: engine.StatusPass},
	})
}

func TestCashoutSeasoning(t *testing.T) {
	loan := `"liabilities_account_number": "XX-991234", "liabilities_name": "Wells Fargo Home Mortgage", "estimated_closing_date": "06-15-2025"`

	runCases(t, CashoutSeasoning{}, []validatorCase{
		{
			name:    "seasoned mortgage",
			payload: `{"los": {` + loan + `}, "credit_report": {"Tradelines": [{"Creditor Account Number": "5555", "Creditor Name": "Chase"}, {"Creditor Account Number": "00001234", "Creditor Name": "WELLS FARGO", "Date_Opened": "2020-01-10"}]}}`,
			want:    engine.StatusPass,
		},
		{
			name:    "single tradeline mapping",
			payload: `{"los": {` + loan + `}, "credit_report": {"Tradelines": {"Creditor_Account_Number": "1234", "Creditor_Name": "Wells Fargo Mortgage", "Date_Opened": "01/10/2020"}}}`,
			want:    engine.StatusPass,
		},
		{
			name:    "twelve months is not seasoned",
			payload: `{"los": {` + loan + `}, "credit_report": {"Tradelines": [{"Creditor Account Number": "1234", "Creditor Name": "Wells Fargo", "Date_Opened": "06-01-2024"}]}}`,
			want:    engine.StatusAlert,
			wantMsg: MessageSeasoningNotMet,
		},
		{
			name:    "no matching account",
			payload: `{"los": {` + loan + `}, "credit_report": {"Tradelines": [{"Creditor Account Number": "9999", "Creditor Name": "Wells Fargo"}]}}`,
			want:    engine.StatusAlert,
			wantMsg: MessageMortgageNotReported,
		},
		{
			name:    "account matches but creditor differs",
			payload: `{"los": {` + loan + `}, "credit_report": {"Tradelines": [{"Creditor Account Number": "1234", "Creditor Name": "Capital One Auto"}]}}`,
			want:    engine.StatusAlert,
			wantMsg: MessageMortgageNotReported,
		},
		{
			name:    "creditor differs by substitution",
			payload: `{"los": {"liabilities_account_number": "1234", "liabilities_name": "abcdefghij", "estimated_closing_date": "06-15-2025"}, "credit_report": {"Tradelines": [{"Creditor Account Number": "1234", "Creditor Name": "abcdeVWXYZ", "Date_Opened": "2020-01-10"}]}}`,
			want:    engine.StatusAlert,
			wantMsg: MessageMortgageNotReported,
		},
		{
			name:    "servicer name one letter off",
			payload: `{"los": {"liabilities_account_number": "1234", "liabilities_name": "CENLAR", "estimated_closing_date": "06-15-2025"}, "credit_report": {"Tradelines": [{"Creditor Account Number": "1234", "Creditor Name": "CENTRAL", "Date_Opened": "2020-01-10"}]}}`,
			want:    engine.StatusAlert,
			wantMsg: MessageMortgageNotReported,
		},
		{
			name:    "no tradelines",
			payload: `{"los": {` + loan + `}, "credit_report": {}}`,
			want:    engine.StatusNotApplicable,
		},
		{
			name:    "matched without open date",
			payload: `{"los": {` + loan + `}, "credit_report": {"Tradelines": [{"Creditor Account Number": "1234", "Creditor Name": "Wells Fargo"}]}}`,
			want:    engine.StatusNotApplicable,
		},
	})
}

func TestTitle(t *testing.T) {
	runCases(t, Title{}, []validatorCase{
		{name: "recent transfer", payload: `{"los": {"estimated_closing_date": "06-15-2025"}, "title": {"chain_title_date": "2025-02-01"}}`, want: engine.StatusAlert},
		{name: "six months", payload: `{"los": {"estimated_closing_date": "06-15-2025"}, "title": {"chain_title_date": "2024-12-20"}}`, want: engine.StatusPass},
		{name: "custom minimum", payload: `{"los": {"estimated_closing_date": "06-15-2025"}, "title": {"chain_title_date": "2024-12-20"}}`, params: rules.Params{"min_months": 12}, want: engine.StatusAlert},
		{name: "fractional minimum truncates", payload: `{"los": {"estimated_closing_date": "06-15-2025"}, "title": {"chain_title_date": "2024-12-20"}}`, params: rules.Params{"min_months": 6.9}, want: engine.StatusPass},
		{name: "missing date", payload: `{"los": {"estimated_closing_date": "06-15-2025"}}`, want: engine.StatusNotApplicable},
		{name: "bad date", payload: `{"los": {"estimated_closing_date": "soon"}, "title": {"chain_title_date": "2020-01-01"}}`, want: engine.StatusNotApplicable},
	})
}

func TestAppraisalPriorSale(t *testing.T) {
	runCases(t, AppraisalPriorSale{}, []validatorCase{
		{name: "flip", payload: `{"los": {"estimated_closing_date": "2025-06-15"}, "appraisal": {"prior_sale_date": "2025-03-01"}}`, want: engine.StatusAlert},
		{name: "old sale", payload: `{"los": {"estimated_closing_date": "2025-06-15"}, "appraisal": {"prior_sale_date": "2019-03-01"}}`, want: engine.StatusPass},
		{name: "no sale", payload: `{"los": {"estimated_closing_date": "2025-06-15"}}`, want: engine.StatusNotApplicable},
	})
}

func TestFraud(t *testing.T) {
	subject := `"urla_lender_subject_street": "12 Main St.", "urla_lender_subject_city": "Springfield", "urla_lender_subject_state": "IL", "estimated_closing_date": "06-15-2025"`
	drive := `"drive_street": "12 main st", "drive_city": "SPRINGFIELD", "drive_state": "il"`

	runCases(t, Fraud{}, []validatorCase{
		{
			name:    "recent fraud at subject",
			payload: `{"los": {` + subject + `}, "drive_report": {` + drive + `, "fraud_recorded_date": "2025-04-01"}}`,
			want:    engine.StatusAlert,
		},
		{
			name:    "old fraud at subject",
			payload: `{"los": {` + subject + `}, "drive_report": {` + drive + `, "fraud_recorded_date": "2023-04-01"}}`,
			want:    engine.StatusPass,
		},
		{
			name:    "different address",
			payload: `{"los": {` + subject + `}, "drive_report": {"drive_street": "14 Main St", "drive_city": "Springfield", "drive_state": "IL", "fraud_recorded_date": "2025-04-01"}}`,
			want:    engine.StatusNotApplicable,
		},
		{
			name:    "no fraud record",
			payload: `{"los": {` + subject + `}, "drive_report": {` + drive + `}}`,
			want:    engine.StatusNotApplicable,
		},
	})
}

func TestLoanProgram(t *testing.T) {
	runCases(t, LoanProgram{}, []validatorCase{
		{name: "fixed rate", payload: `{"los": {"amortization_type": "Fixed Rate"}}`, want: engine.StatusPass},
		{name: "fixed", payload: `{"los": {"amortization_type": "fixed"}}`, want: engine.StatusPass},
		{name: "arm", payload: `{"los": {"amortization_type": "ARM"}}`, want: engine.StatusAlert},
		{name: "custom allowed", payload: `{"los": {"amortization_type": "ARM"}}`, params: rules.Params{"allowed": []interface{}{"ARM"}}, want: engine.StatusPass},
		{name: "missing", payload: `{}`, want: engine.StatusNotApplicable},
	})
}

func TestCashback(t *testing.T) {
	runCases(t, Cashback{}, []validatorCase{
		{name: "within absolute limit", payload: `{"los": {"loan_amount": 100000, "cash_to_borrower": -1500}}`, want: engine.StatusPass},
		{name: "over absolute limit", payload: `{"los": {"loan_amount": 100000, "cash_to_borrower": -2500}}`, want: engine.StatusAlert},
		{name: "within percent limit", payload: `{"los": {"loan_amount": 400000, "cash_from_borrower": "-3500"}}`, want: engine.StatusPass},
		{name: "no cash back", payload: `{"los": {"loan_amount": 400000, "cash_from_borrower": 12000}}`, want: engine.StatusNotApplicable},
		{name: "no loan amount", payload: `{"los": {"cash_to_borrower": -2500}}`, want: engine.StatusNotApplicable},
		{name: "custom limits", payload: `{"los": {"loan_amount": 100000, "cash_to_borrower": -600}}`, params: rules.Params{"absolute_limit": 500, "percent_limit": 0.005}, want: engine.StatusAlert},
	})
}

func TestHomebuyerProgram(t *testing.T) {
	runCases(t, HomebuyerProgram{}, []validatorCase{
		{name: "certificate", payload: `{"los": {"homebuyer_education_certificate": "Y"}}`, want: engine.StatusPass},
		{name: "boolean certificate", payload: `{"los": {"homebuyer_education_certificate": true}}`, want: engine.StatusPass},
		{name: "no certificate", payload: `{"los": {"homebuyer_education_certificate": "No"}}`, want: engine.StatusCondition, wantMsg: "condition"},
		{name: "missing", payload: `{}`, want: engine.StatusCondition},
	})
}

func TestHomebuyerLTV(t *testing.T) {
	runCases(t, HomebuyerLTV{}, []validatorCase{
		{name: "high ltv without certificate", payload: `{"los": {"ltv": 0.97}}`, want: engine.StatusCondition},
		{name: "high ltv with certificate", payload: `{"los": {"ltv": 97, "homebuyer_education_certificate": "yes"}}`, want: engine.StatusPass},
		{name: "low ltv", payload: `{"los": {"ltv": 0.8}}`, want: engine.StatusPass},
		{name: "missing ltv", payload: `{}`, want: engine.StatusNotApplicable},
	})
}

func TestIncome(t *testing.T) {
	runCases(t, Income{}, []validatorCase{
		{name: "over median", payload: `{"los": {"total_income": 120000, "area_median_income": 100000}}`, want: engine.StatusAlert},
		{name: "under median", payload: `{"los": {"total_income": 80000, "area_median_income": 100000}}`, want: engine.StatusPass},
		{name: "median from params", payload: `{"los": {"total_income": 80000}}`, params: rules.Params{"area_median_income": 75000}, want: engine.StatusAlert},
		{name: "no median", payload: `{"los": {"total_income": 80000}}`, want: engine.StatusNotApplicable},
		{name: "no income", payload: `{"los": {"area_median_income": 100000}}`, want: engine.StatusNotApplicable},
	})
}

func TestLienPayoff(t *testing.T) {
	runCases(t, LienPayoff{}, []validatorCase{
		{name: "single mortgage", payload: `{"los": {"liabilities_will_be_paid_off": "Yes", "liabilities_name": "Wells Fargo", "liabilities_account_type": "Mortgage"}}`, want: engine.StatusPass},
		{name: "several liens", payload: `{"los": {"liabilities_will_be_paid_off": "yes", "liabilities_name": "Wells Fargo, Chase", "liabilities_account_type": "Mortgage"}}`, want: engine.StatusAlert},
		{name: "not a mortgage", payload: `{"los": {"liabilities_will_be_paid_off": "true", "liabilities_name": "Chase", "liabilities_account_type": "Revolving"}}`, want: engine.StatusAlert},
		{name: "nothing paid off", payload: `{"los": {"liabilities_will_be_paid_off": "No", "liabilities_account_type": "Revolving"}}`, want: engine.StatusPass},
	})
}

func TestRegisterAll(t *testing.T) {
	registry := engine.NewRegistry()
	if err := RegisterAll(registry); err != nil {
		t.Fatalf("RegisterAll() error = %v", err)
	}
	if got := registry.Len(); got != 17 {
		t.Errorf("Len() = %d, want 17", got)
	}
	if !registry.Has("CashoutSeasoningValidator") {
		t.Error("CashoutSeasoningValidator not registered")
	}

	err := RegisterAll(registry)
	var dup *engine.DuplicateValidatorError
	if !errors.As(err, &dup) {
		t.Errorf("second RegisterAll() error = %v, want DuplicateValidatorError", err)
	}

	if got, want := NewRegistry().Names(), Names(); !slices.Equal(got, want) {
		t.Errorf("NewRegistry().Names() = %v, want %v", got, want)
	}
}
