package card

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupportedBrand indicates the card number cannot be mapped to a brand the
// processor accepts, or fails the rules of the brand it claims to be.
var ErrUnsupportedBrand = errors.New("unsupported card brand")

// Brand identifies a card network or regional issuer family.
type Brand string

const (
	Visa            Brand = "visa"
	Master          Brand = "master"
	AmericanExpress Brand = "american_express"
	DinersClub      Brand = "diners_club"
	Naranja         Brand = "naranja"
	Cabal           Brand = "cabal"
	Condensa        Brand = "condensa"
	Other           Brand = "other"
)

type checkDigit int

const (
	checkLuhn checkDigit = iota
	// Cabal numbers are validated by the issuer; the network test ranges are
	// not Luhn-valid.
	checkNone
)

type binRange struct {
	digits int
	lo, hi int
}

type rule struct {
	brand     Brand
	processor string
	regional  bool
	lengths   []int
	ranges    []binRange
	check     checkDigit
}

// Regional rules come first so their BIN ranges win over broader network prefixes.
var rules = []rule{
	{
		brand:     Naranja,
		processor: "NARANJA",
		regional:  true,
		lengths:   []int{16},
		ranges:    []binRange{{6, 589562, 589562}},
		check:     checkLuhn,
	},
	{
		brand:     Cabal,
		processor: "CABAL",
		regional:  true,
		lengths:   []int{16},
		ranges: []binRange{
			{8, 60420100, 60440099},
			{8, 58965700, 58965799},
			{8, 60352200, 60352299},
			{8, 65027200, 65027299},
			{8, 65008700, 65160099},
		},
		check: checkNone,
	},
	{
		brand:     Condensa,
		processor: "CODENSA",
		regional:  true,
		lengths:   []int{16},
		ranges:    []binRange{{8, 59071200, 59071299}},
		check:     checkLuhn,
	},
	{
		brand:     Visa,
		processor: "VISA",
		lengths:   []int{13, 16, 19},
		ranges:    []binRange{{1, 4, 4}},
		check:     checkLuhn,
	},
	{
		brand:     Master,
		processor: "MASTERCARD",
		lengths:   []int{16},
		ranges:    []binRange{{2, 51, 55}, {4, 2221, 2720}},
		check:     checkLuhn,
	},
	{
		brand:     AmericanExpress,
		processor: "AMEX",
		lengths:   []int{15},
		ranges:    []binRange{{2, 34, 34}, {2, 37, 37}},
		check:     checkLuhn,
	},
	{
		brand:     DinersClub,
		processor: "DINERS",
		lengths:   []int{14, 16},
		ranges:    []binRange{{3, 300, 305}, {2, 36, 36}, {2, 38, 39}},
		check:     checkLuhn,
	},
}

// ParseBrand normalizes a caller supplied brand name. Unknown names map to Other.
func ParseBrand(s string) Brand {
	b := Brand(strings.ToLower(strings.TrimSpace(s)))
	switch b {
	case "":
		return ""
	case "mastercard":
		return Master
	case "amex":
		return AmericanExpress
	case "diners":
		return DinersClub
	case "codensa":
		return Condensa
	}
	if _, ok := lookup(b); ok {
		return b
	}
	return Other
}

// ProcessorCode returns the payment method name the processor uses for the brand.
func ProcessorCode(b Brand) (string, bool) {
	r, ok := lookup(b)
	if !ok {
		return "", false
	}
	return r.processor, true
}

// IsRegional reports whether the brand is a regional issuer family rather than
// an international network.
func IsRegional(b Brand) bool {
	r, ok := lookup(b)
	return ok && r.regional
}

// Detect returns the brand whose prefix and length rules match the PAN. It does
// not verify check digits.
func Detect(pan string) (Brand, bool) {
	pan = NormalizePAN(pan)
	if !IsDigits(pan) {
		return "", false
	}
	for _, r := range rules {
		if r.matches(pan) {
			return r.brand, true
		}
	}
	return "", false
}

// Resolve validates the PAN against the claimed brand, or detects the brand when
// none (or Other) is claimed. Any mismatch or check-digit failure is reported as
// ErrUnsupportedBrand.
func Resolve(pan string, claimed Brand) (Brand, error) {
	pan = NormalizePAN(pan)
	if pan == "" {
		return "", fmt.Errorf("%w: card number is required", ErrUnsupportedBrand)
	}
	if !IsDigits(pan) {
		return "", fmt.Errorf("%w: card number must contain digits only", ErrUnsupportedBrand)
	}

	var r rule
	if claimed == "" || claimed == Other {
		b, ok := Detect(pan)
		if !ok {
			return "", fmt.Errorf("%w: brand not recognized for %s", ErrUnsupportedBrand, MaskPAN(pan))
		}
		r, _ = lookup(b)
	} else {
		var ok bool
		r, ok = lookup(claimed)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedBrand, claimed)
		}
		if !r.matches(pan) {
			return "", fmt.Errorf("%w: %s does not match %s rules", ErrUnsupportedBrand, MaskPAN(pan), claimed)
		}
	}

	if r.check == checkLuhn && !ValidLuhn(pan) {
		return "", fmt.Errorf("%w: invalid check digit for %s", ErrUnsupportedBrand, r.brand)
	}
	return r.brand, nil
}

func lookup(b Brand) (rule, bool) {
	for _, r := range rules {
		if r.brand == b {
			return r, true
		}
	}
	return rule{}, false
}

func (r rule) matches(pan string) bool {
	lengthOK := false
	for _, l := range r.lengths {
		if len(pan) == l {
			lengthOK = true
			break
		}
	}
	if !lengthOK {
		return false
	}
	for _, br := range r.ranges {
		if len(pan) < br.digits {
			continue
		}
		prefix, err := strconv.Atoi(pan[:br.digits])
		if err != nil {
			continue
		}
		if prefix >= br.lo && prefix <= br.hi {
			return true
		}
	}
	return false
}
