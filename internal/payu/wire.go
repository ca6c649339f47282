package payu

const (
	commandSubmit         = "SUBMIT_TRANSACTION"
	commandCreateToken    = "CREATE_TOKEN"
	commandPaymentMethods = "GET_PAYMENT_METHODS"

	txAuthorizationAndCapture = "AUTHORIZATION_AND_CAPTURE"
	txAuthorization           = "AUTHORIZATION"
	txCapture                 = "CAPTURE"
	txRefund                  = "REFUND"
	txVoid                    = "VOID"

	keyTxValue         = "TX_VALUE"
	keyTxTax           = "TX_TAX"
	keyTxTaxReturnBase = "TX_TAX_RETURN_BASE"

	referenceReason = "n/a"
)

// OperationRequest is the payload posted to the processor. The fields tagged
// "-" describe the request for callers and logs and are never serialized.
type OperationRequest struct {
	Test            *bool            `json:"test,omitempty"`
	Language        string           `json:"language"`
	Command         string           `json:"command"`
	Merchant        Merchant         `json:"merchant"`
	Transaction     *Transaction     `json:"transaction,omitempty"`
	CreditCardToken *CreditCardToken `json:"creditCardToken,omitempty"`

	Operation Operation `json:"-"`
	Country   string    `json:"-"`
	Amount    int64     `json:"-"`
	Currency  string    `json:"-"`
	Reference string    `json:"-"`
}

type Merchant struct {
	APILogin string `json:"apiLogin"`
	APIKey   string `json:"apiKey"`
}

type Transaction struct {
	Order               *Order            `json:"order,omitempty"`
	Payer               *Payer            `json:"payer,omitempty"`
	CreditCard          *CreditCard       `json:"creditCard,omitempty"`
	CreditCardTokenID   string            `json:"creditCardTokenId,omitempty"`
	ExtraParameters     map[string]any    `json:"extraParameters,omitempty"`
	Type                string            `json:"type"`
	PaymentMethod       string            `json:"paymentMethod,omitempty"`
	PaymentCountry      string            `json:"paymentCountry,omitempty"`
	DeviceSessionID     string            `json:"deviceSessionId,omitempty"`
	IPAddress           string            `json:"ipAddress"`
	Cookie              string            `json:"cookie,omitempty"`
	UserAgent           string            `json:"userAgent,omitempty"`
	ParentTransactionID string            `json:"parentTransactionId,omitempty"`
	Reason              string            `json:"reason,omitempty"`
	AdditionalValues    map[string]Amount `json:"additionalValues,omitempty"`
}

type Order struct {
	ID               string            `json:"id,omitempty"`
	AccountID        string            `json:"accountId,omitempty"`
	PartnerID        string            `json:"partnerId,omitempty"`
	ReferenceCode    string            `json:"referenceCode,omitempty"`
	Description      string            `json:"description,omitempty"`
	Language         string            `json:"language,omitempty"`
	Signature        string            `json:"signature,omitempty"`
	ShippingAddress  *PostalAddress    `json:"shippingAddress,omitempty"`
	Buyer            *OrderBuyer       `json:"buyer,omitempty"`
	AdditionalValues map[string]Amount `json:"additionalValues,omitempty"`
}

// Amount is a decimal value with its currency, as used in additionalValues.
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type OrderBuyer struct {
	FullName        string         `json:"fullName"`
	DNINumber       string         `json:"dniNumber,omitempty"`
	DNIType         string         `json:"dniType,omitempty"`
	MerchantBuyerID string         `json:"merchantBuyerId,omitempty"`
	CNPJ            string         `json:"cnpj,omitempty"`
	EmailAddress    string         `json:"emailAddress,omitempty"`
	ContactPhone    string         `json:"contactPhone"`
	ShippingAddress *PostalAddress `json:"shippingAddress,omitempty"`
}

type Payer struct {
	FullName       string         `json:"fullName"`
	ContactPhone   string         `json:"contactPhone,omitempty"`
	DNINumber      string         `json:"dniNumber,omitempty"`
	DNIType        string         `json:"dniType,omitempty"`
	EmailAddress   string         `json:"emailAddress,omitempty"`
	Birthdate      string         `json:"birthdate,omitempty"`
	BillingAddress *PostalAddress `json:"billingAddress,omitempty"`
}

type PostalAddress struct {
	Street1    string `json:"street1"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

type CreditCard struct {
	Number             string `json:"number,omitempty"`
	SecurityCode       string `json:"securityCode,omitempty"`
	ExpirationDate     string `json:"expirationDate,omitempty"`
	Name               string `json:"name,omitempty"`
	ProcessWithoutCvv2 bool   `json:"processWithoutCvv2,omitempty"`
}

type CreditCardToken struct {
	PayerID              string `json:"payerId"`
	Name                 string `json:"name"`
	IdentificationNumber string `json:"identificationNumber,omitempty"`
	PaymentMethod        string `json:"paymentMethod"`
	Number               string `json:"number"`
	ExpirationDate       string `json:"expirationDate"`
}

// response mirrors the processor reply. Unknown members are ignored.
type response struct {
	Code                string               `json:"code"`
	Error               string               `json:"error"`
	Description         string               `json:"description"`
	TransactionResponse *transactionResponse `json:"transactionResponse"`
	CreditCardToken     *tokenResponse       `json:"creditCardToken"`
}

type transactionResponse struct {
	OrderID                            jsonID `json:"orderId"`
	TransactionID                      string `json:"transactionId"`
	State                              string `json:"state"`
	ResponseCode                       string `json:"responseCode"`
	PendingReason                      string `json:"pendingReason"`
	PaymentNetworkResponseErrorMessage string `json:"paymentNetworkResponseErrorMessage"`
	ResponseMessage                    string `json:"responseMessage"`
	ErrorCode                          string `json:"errorCode"`
	AuthorizationCode                  string `json:"authorizationCode"`
}

type tokenResponse struct {
	CreditCardTokenID string `json:"creditCardTokenId"`
	PaymentMethod     string `json:"paymentMethod"`
	PayerID           string `json:"payerId"`
}
