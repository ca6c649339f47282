package payu

import (
	"strings"
	"time"

	"github.com/congo-pay/payu_gateway/internal/card"
)

const (
	SandboxURL    = "https://sandbox.api.payulatam.com/payments-api/4.0/service.cgi"
	ProductionURL = "https://api.payulatam.com/payments-api/4.0/service.cgi"

	DefaultLanguage = "en"
)

// Operation names a gateway call.
type Operation string

const (
	OpPurchase          Operation = "purchase"
	OpAuthorize         Operation = "authorize"
	OpCapture           Operation = "capture"
	OpRefund            Operation = "refund"
	OpVoid              Operation = "void"
	OpVerify            Operation = "verify"
	OpStore             Operation = "store"
	OpVerifyCredentials Operation = "verify_credentials"
)

func (op Operation) referenced() bool {
	return op == OpCapture || op == OpRefund || op == OpVoid
}

// State is the canonical transaction state reported to callers.
type State string

const (
	StateApproved State = "APPROVED"
	StateDeclined State = "DECLINED"
	StatePending  State = "PENDING"
	StateError    State = "ERROR"
)

// Kind classifies a failed Result.
type Kind string

const (
	KindNone               Kind = ""
	KindValidation         Kind = "validation"
	KindUnsupportedBrand   Kind = "unsupported_brand"
	KindUnsupportedCountry Kind = "unsupported_country"
	KindAuthentication     Kind = "authentication"
	KindDeclined           Kind = "declined"
	KindPending            Kind = "pending"
	KindProcessor          Kind = "processor_error"
)

// Config is the immutable merchant configuration of one Gateway.
type Config struct {
	MerchantID     string
	AccountID      string
	APILogin       string
	APIKey         string
	PaymentCountry string
	Language       string
	Test           bool
	// Endpoint overrides the sandbox or production URL.
	Endpoint string
	Timeout  time.Duration
}

// URL returns the processor endpoint for the configuration.
func (c Config) URL() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	if c.Test {
		return SandboxURL
	}
	return ProductionURL
}

type Address struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
	Zip      string `json:"zip"`
	Phone    string `json:"phone"`
}

// Buyer is the nested buyer identity. When present it replaces the
// top-level identity options for the order buyer block.
type Buyer struct {
	Name            string `json:"name"`
	DNINumber       string `json:"dni_number"`
	DNIType         string `json:"dni_type"`
	MerchantBuyerID string `json:"merchant_buyer_id"`
	CNPJ            string `json:"cnpj"`
	Email           string `json:"email"`
}

// Card carries either raw card data or a stored token of the form BRAND|tokenId.
type Card struct {
	Number            string     `json:"number"`
	Month             int        `json:"month"`
	Year              int        `json:"year"`
	VerificationValue string     `json:"verification_value"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Brand             card.Brand `json:"brand"`
	Token             string     `json:"token"`
}

// Name returns the holder name as printed on the card.
func (c Card) Name() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

// Options are the per-call transaction options.
type Options struct {
	OrderID            string   `json:"order_id"`
	Currency           string   `json:"currency"`
	InstallmentsNumber int      `json:"installments_number"`
	Tax                string   `json:"tax"`
	TaxReturnBase      string   `json:"tax_return_base"`
	DNINumber          string   `json:"dni_number"`
	DNIType            string   `json:"dni_type"`
	MerchantBuyerID    string   `json:"merchant_buyer_id"`
	CNPJ               string   `json:"cnpj"`
	Email              string   `json:"email"`
	Buyer              *Buyer   `json:"buyer"`
	BillingAddress     *Address `json:"billing_address"`
	ShippingAddress    *Address `json:"shipping_address"`
	DeviceSessionID    string   `json:"device_session_id"`
	Cookie             string   `json:"cookie"`
	UserAgent          string   `json:"user_agent"`
	IP                 string   `json:"ip"`
	Language           string   `json:"language"`
	Description        string   `json:"description"`
	VerifyAmount       int64    `json:"verify_amount"`
	PaymentCountry     string   `json:"payment_country"`
	BirthDate          string   `json:"birth_date"`
	CVV                string   `json:"cvv"`
	PayerID            string   `json:"payer_id"`
	PartnerID          string   `json:"partner_id"`
	Extra1             string   `json:"extra_1"`
	Extra2             string   `json:"extra_2"`
	Extra3             string   `json:"extra_3"`
}

// Result is the canonical outcome of an operation.
type Result struct {
	Success       bool           `json:"success"`
	State         State          `json:"state"`
	Message       string         `json:"message"`
	Authorization string         `json:"authorization,omitempty"`
	ErrorCode     string         `json:"error_code,omitempty"`
	Kind          Kind           `json:"kind,omitempty"`
	Params        map[string]any `json:"params,omitempty"`
	Test          bool           `json:"test"`
	// Warning is set by Verify when the compensating void did not succeed.
	Warning string `json:"warning,omitempty"`
}
