package payu

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/payu_gateway/internal/card"
	"github.com/congo-pay/payu_gateway/internal/country"
)

const (
	defaultInstallments = 1
	// probe amount in minor units when the currency has no processor minimum
	defaultVerifyAmount int64 = 100
)

// buyer fields in the order they are validated, with the processor property
// reported when one is missing
var requiredFieldOrder = []struct {
	field    country.Field
	property string
}{
	{country.FieldDNINumber, "buyer.dniNumber"},
	{country.FieldEmail, "buyer.emailAddress"},
}

// Build assembles the processor request for op. Missing or malformed input is
// reported as *ValidationError, card.ErrUnsupportedBrand or
// country.ErrUnsupportedCountry before anything is sent.
func Build(op Operation, amount int64, c Card, authorization string, opts Options, cfg Config) (*OperationRequest, error) {
	lang := ResolveLanguage(opts, cfg)
	req := &OperationRequest{
		Language:  lang,
		Merchant:  Merchant{APILogin: cfg.APILogin, APIKey: cfg.APIKey},
		Operation: op,
	}

	switch op {
	case OpVerifyCredentials:
		req.Test = boolPtr(cfg.Test)
		req.Command = commandPaymentMethods
		return req, nil
	case OpStore:
		token, err := tokenFor(c, opts, lang)
		if err != nil {
			return nil, err
		}
		req.Command = commandCreateToken
		req.CreditCardToken = token
		req.Reference = token.PayerID
		return req, nil
	case OpPurchase, OpAuthorize, OpVerify, OpCapture, OpRefund, OpVoid:
	default:
		return nil, fmt.Errorf("payu: unknown operation %q", op)
	}

	if err := validateAmount(op, amount, lang); err != nil {
		return nil, err
	}

	req.Test = boolPtr(cfg.Test)
	req.Command = commandSubmit

	profile, err := resolveCountry(opts, cfg)
	if err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(opts.Currency))
	if currency == "" {
		currency = profile.Currency
	}
	req.Country = profile.Code
	req.Currency = currency

	tx := &Transaction{
		PaymentCountry:  profile.Code,
		IPAddress:       opts.IP,
		UserAgent:       opts.UserAgent,
		Cookie:          opts.Cookie,
		DeviceSessionID: opts.DeviceSessionID,
	}
	req.Transaction = tx

	if op.referenced() {
		orderID, parentID, err := splitAuthorization(authorization, lang)
		if err != nil {
			return nil, err
		}
		tx.Type = referenceType(op)
		tx.Order = &Order{ID: orderID}
		tx.ParentTransactionID = parentID
		tx.Reason = referenceReason
		if op != OpVoid && amount > 0 {
			tx.AdditionalValues = map[string]Amount{
				keyTxValue: {Value: formatAmount(amount), Currency: currency},
			}
			req.Amount = amount
		}
		req.Reference = orderID
		return req, nil
	}

	if op == OpPurchase {
		tx.Type = txAuthorizationAndCapture
	} else {
		tx.Type = txAuthorization
	}
	if op == OpVerify {
		amount = verifyAmount(opts, currency)
	}

	if err := validateBuyer(profile, opts, lang); err != nil {
		return nil, err
	}
	if err := applyPaymentMethod(tx, c, opts, lang); err != nil {
		return nil, err
	}

	reference := strings.TrimSpace(opts.OrderID)
	if reference == "" {
		reference = uuid.NewString()
	}
	description := opts.Description
	if description == "" {
		description = localize(msgPurchaseAt, profile.Language, cfg.MerchantID)
	}
	value := formatAmount(amount)
	accountID, err := accountFor(profile, cfg, lang)
	if err != nil {
		return nil, err
	}

	tx.Order = &Order{
		AccountID:        accountID,
		PartnerID:        opts.PartnerID,
		ReferenceCode:    reference,
		Description:      description,
		Language:         lang,
		Signature:        Signature(cfg.APIKey, cfg.MerchantID, reference, value, currency),
		ShippingAddress:  postalAddress(opts.ShippingAddress, true),
		Buyer:            orderBuyer(c, opts, profile),
		AdditionalValues: invoice(value, currency, opts, profile),
	}
	tx.Payer = payer(c, opts, profile)
	tx.ExtraParameters = extraParameters(opts)

	req.Amount = amount
	req.Reference = reference
	return req, nil
}

func boolPtr(v bool) *bool { return &v }

func formatAmount(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

func resolveCountry(opts Options, cfg Config) (country.Profile, error) {
	code := firstNonBlank(opts.PaymentCountry, cfg.PaymentCountry)
	if code == "" && opts.BillingAddress != nil {
		code = strings.TrimSpace(opts.BillingAddress.Country)
	}
	if code == "" {
		return country.Profile{}, fmt.Errorf("%w: payment country is required", country.ErrUnsupportedCountry)
	}
	return country.Lookup(code)
}

// accountFor picks the configured account for the configured country. The
// profile defaults are sandbox accounts and only apply to test gateways.
func accountFor(profile country.Profile, cfg Config, lang string) (string, error) {
	sameCountry := cfg.PaymentCountry == "" || strings.EqualFold(strings.TrimSpace(cfg.PaymentCountry), profile.Code)
	if cfg.AccountID != "" && sameCountry {
		return cfg.AccountID, nil
	}
	if cfg.Test {
		return profile.DefaultAccountID, nil
	}
	return "", &ValidationError{Field: "accountId", Reason: localize(msgMustNotBeNull, lang)}
}

// validateAmount rejects negative amounts. Purchase and authorize need a
// positive amount; capture and refund read 0 as the full authorized amount.
func validateAmount(op Operation, amount int64, lang string) error {
	switch {
	case amount < 0:
		return &ValidationError{Field: keyTxValue, Reason: localize(msgNegativeAmount, lang)}
	case amount == 0 && (op == OpPurchase || op == OpAuthorize):
		return &ValidationError{Field: keyTxValue, Reason: localize(msgAmountRequired, lang)}
	}
	return nil
}

func referenceType(op Operation) string {
	switch op {
	case OpCapture:
		return txCapture
	case OpRefund:
		return txRefund
	default:
		return txVoid
	}
}

// splitAuthorization reads an "orderId|transactionId" token.
func splitAuthorization(authorization, lang string) (string, string, error) {
	orderID, parentID, _ := strings.Cut(strings.TrimSpace(authorization), "|")
	if orderID == "" || parentID == "" {
		return "", "", &ValidationError{Field: "parentTransactionId", Reason: localize(msgMustNotBeNull, lang)}
	}
	return orderID, parentID, nil
}

func verifyAmount(opts Options, currency string) int64 {
	if opts.VerifyAmount > 0 {
		return opts.VerifyAmount
	}
	if minimum, ok := country.MinimumAmount(currency); ok {
		return minimum
	}
	return defaultVerifyAmount
}

func validateBuyer(profile country.Profile, opts Options, lang string) error {
	for _, rf := range requiredFieldOrder {
		if !profile.Requires(rf.field) {
			continue
		}
		if strings.TrimSpace(buyerValue(rf.field, opts)) == "" {
			return &ValidationError{Field: rf.property, Reason: localize(msgMustNotBeNull, lang)}
		}
	}
	return nil
}

func buyerValue(f country.Field, opts Options) string {
	switch f {
	case country.FieldDNINumber:
		if opts.Buyer != nil && opts.Buyer.DNINumber != "" {
			return opts.Buyer.DNINumber
		}
		return opts.DNINumber
	case country.FieldEmail:
		if opts.Buyer != nil && opts.Buyer.Email != "" {
			return opts.Buyer.Email
		}
		return opts.Email
	}
	return ""
}

func applyPaymentMethod(tx *Transaction, c Card, opts Options, lang string) error {
	if c.Token != "" {
		brand, tokenID, _ := strings.Cut(c.Token, "|")
		if brand == "" || tokenID == "" {
			return &ValidationError{Field: "creditCardTokenId", Reason: localize(msgMustNotBeNull, lang)}
		}
		tx.CreditCardTokenID = tokenID
		tx.PaymentMethod = strings.ToUpper(brand)
		tx.CreditCard = &CreditCard{
			SecurityCode:       opts.CVV,
			ProcessWithoutCvv2: opts.CVV == "",
		}
		return nil
	}

	brand, err := card.Resolve(c.Number, card.ParseBrand(string(c.Brand)))
	if err != nil {
		return err
	}
	method, _ := card.ProcessorCode(brand)
	expiry, err := card.ExpirationDate(c.Month, c.Year)
	if err != nil {
		return &ValidationError{Field: "creditCard.expirationDate", Reason: localize(msgInvalidExpiry, lang)}
	}
	securityCode := c.VerificationValue
	if securityCode == "" {
		securityCode = opts.CVV
	}
	tx.PaymentMethod = method
	tx.CreditCard = &CreditCard{
		Number:             card.NormalizePAN(c.Number),
		SecurityCode:       securityCode,
		ExpirationDate:     expiry,
		Name:               c.Name(),
		ProcessWithoutCvv2: securityCode == "",
	}
	return nil
}

func tokenFor(c Card, opts Options, lang string) (*CreditCardToken, error) {
	if strings.TrimSpace(c.Number) == "" {
		return nil, &ValidationError{Field: "creditCardToken.number", Reason: localize(msgMustNotBeNull, lang)}
	}
	brand, err := card.Resolve(c.Number, card.ParseBrand(string(c.Brand)))
	if err != nil {
		return nil, err
	}
	method, _ := card.ProcessorCode(brand)
	expiry, err := card.ExpirationDate(c.Month, c.Year)
	if err != nil {
		return nil, &ValidationError{Field: "creditCardToken.expirationDate", Reason: localize(msgInvalidExpiry, lang)}
	}
	payerID := opts.PayerID
	if payerID == "" {
		payerID = uuid.NewString()
	}
	return &CreditCardToken{
		PayerID:              payerID,
		Name:                 c.Name(),
		IdentificationNumber: buyerValue(country.FieldDNINumber, opts),
		PaymentMethod:        method,
		Number:               card.NormalizePAN(c.Number),
		ExpirationDate:       expiry,
	}, nil
}

func invoice(value, currency string, opts Options, profile country.Profile) map[string]Amount {
	values := map[string]Amount{
		keyTxValue: {Value: value, Currency: currency},
	}
	if profile.SupportsTaxFields {
		values[keyTxTax] = Amount{Value: firstNonBlank(opts.Tax, "0"), Currency: currency}
		values[keyTxTaxReturnBase] = Amount{Value: firstNonBlank(opts.TaxReturnBase, "0"), Currency: currency}
	}
	return values
}

func orderBuyer(c Card, opts Options, profile country.Profile) *OrderBuyer {
	b := &OrderBuyer{
		ContactPhone:    contactPhone(opts),
		ShippingAddress: postalAddress(opts.ShippingAddress, true),
	}
	if nb := opts.Buyer; nb != nil {
		b.FullName = nb.Name
		b.DNINumber = nb.DNINumber
		b.DNIType = nb.DNIType
		b.MerchantBuyerID = nb.MerchantBuyerID
		b.CNPJ = nb.CNPJ
		b.EmailAddress = nb.Email
	} else {
		b.FullName = c.Name()
		b.DNINumber = opts.DNINumber
		b.DNIType = opts.DNIType
		b.MerchantBuyerID = opts.MerchantBuyerID
		b.CNPJ = opts.CNPJ
		b.EmailAddress = opts.Email
	}
	if !profile.SupportsCNPJ {
		b.CNPJ = ""
	}
	return b
}

func payer(c Card, opts Options, profile country.Profile) *Payer {
	p := &Payer{
		FullName:       c.Name(),
		DNINumber:      opts.DNINumber,
		DNIType:        opts.DNIType,
		EmailAddress:   opts.Email,
		BillingAddress: postalAddress(opts.BillingAddress, profile.BillingPostalCode),
	}
	if opts.BillingAddress != nil {
		p.ContactPhone = opts.BillingAddress.Phone
	}
	if profile.SupportsBirthDate {
		p.Birthdate = opts.BirthDate
	}
	return p
}

func contactPhone(opts Options) string {
	if opts.BillingAddress != nil && opts.BillingAddress.Phone != "" {
		return opts.BillingAddress.Phone
	}
	if opts.ShippingAddress != nil {
		return opts.ShippingAddress.Phone
	}
	return ""
}

// postalAddress converts a caller address. A blank country or zip is left out
// of the payload.
func postalAddress(a *Address, withPostalCode bool) *PostalAddress {
	if a == nil {
		return nil
	}
	pa := &PostalAddress{
		Street1: a.Address1,
		Street2: a.Address2,
		City:    a.City,
		State:   a.State,
		Country: strings.TrimSpace(a.Country),
		Phone:   a.Phone,
	}
	if withPostalCode {
		pa.PostalCode = strings.TrimSpace(a.Zip)
	}
	return pa
}

func extraParameters(opts Options) map[string]any {
	installments := opts.InstallmentsNumber
	if installments <= 0 {
		installments = defaultInstallments
	}
	params := map[string]any{"INSTALLMENTS_NUMBER": installments}
	for key, v := range map[string]string{"EXTRA1": opts.Extra1, "EXTRA2": opts.Extra2, "EXTRA3": opts.Extra3} {
		if v != "" {
			params[key] = v
		}
	}
	return params
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
