package country

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnsupportedCountry indicates the processor has no profile for the country code.
var ErrUnsupportedCountry = errors.New("unsupported country")

// Field names a buyer or address value a country may require.
type Field string

const (
	FieldDNINumber Field = "dni_number"
	FieldEmail     Field = "email"
)

// Profile holds the per-market rules applied to every request for a country.
type Profile struct {
	Code     string
	Currency string
	// Language is the market language, used for texts the adapter composes itself.
	Language            string
	RequiredBuyerFields map[Field]struct{}
	SupportsTaxFields   bool
	SupportsCNPJ        bool
	SupportsBirthDate   bool
	BillingPostalCode   bool
	DefaultAccountID    string
}

// Requires reports whether the field is mandatory for the country.
func (p Profile) Requires(f Field) bool {
	_, ok := p.RequiredBuyerFields[f]
	return ok
}

func fields(fs ...Field) map[Field]struct{} {
	m := make(map[Field]struct{}, len(fs))
	for _, f := range fs {
		m[f] = struct{}{}
	}
	return m
}

var profiles = map[string]Profile{
	"AR": {
		Code:                "AR",
		Currency:            "ARS",
		Language:            "es",
		RequiredBuyerFields: fields(),
		DefaultAccountID:    "512322",
	},
	"BR": {
		Code:                "BR",
		Currency:            "BRL",
		Language:            "pt",
		RequiredBuyerFields: fields(FieldDNINumber, FieldEmail),
		SupportsCNPJ:        true,
		DefaultAccountID:    "512327",
	},
	"CL": {
		Code:                "CL",
		Currency:            "CLP",
		Language:            "es",
		RequiredBuyerFields: fields(FieldEmail),
		DefaultAccountID:    "512325",
	},
	"CO": {
		Code:                "CO",
		Currency:            "COP",
		Language:            "es",
		RequiredBuyerFields: fields(FieldDNINumber),
		SupportsTaxFields:   true,
		DefaultAccountID:    "512321",
	},
	"MX": {
		Code:                "MX",
		Currency:            "MXN",
		Language:            "es",
		RequiredBuyerFields: fields(FieldEmail),
		SupportsBirthDate:   true,
		BillingPostalCode:   true,
		DefaultAccountID:    "512324",
	},
	"PA": {
		Code:                "PA",
		Currency:            "USD",
		Language:            "es",
		RequiredBuyerFields: fields(FieldEmail),
		DefaultAccountID:    "512326",
	},
	"PE": {
		Code:                "PE",
		Currency:            "PEN",
		Language:            "es",
		RequiredBuyerFields: fields(FieldEmail),
		DefaultAccountID:    "512323",
	},
}

// Lookup returns the profile for an ISO 3166 alpha-2 code.
func Lookup(code string) (Profile, error) {
	key := strings.ToUpper(strings.TrimSpace(code))
	p, ok := profiles[key]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnsupportedCountry, code)
	}
	return p, nil
}

// Codes lists every supported country code in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(profiles))
	for code := range profiles {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// processor minimum amounts in minor units, keyed by currency
var minimums = map[string]int64{
	"ARS": 1700,
	"BRL": 600,
	"MXN": 3900,
	"PEN": 500,
}

// MinimumAmount returns the smallest amount the processor accepts for a currency.
func MinimumAmount(currency string) (int64, bool) {
	v, ok := minimums[strings.ToUpper(strings.TrimSpace(currency))]
	return v, ok
}
