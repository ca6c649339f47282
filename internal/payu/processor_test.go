package payu

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fakeProcessor answers like the PayU sandbox for the scenarios the tests use:
// holder name REJECTED is declined, PENDING is held for review, and any
// amount below 5.00 fails with the processor's localized minimum message.
type fakeProcessor struct {
	t         *testing.T
	failVoids bool

	mu       sync.Mutex
	requests []OperationRequest
	orderSeq atomic.Int64
}

var minimumMessages = map[string]string{
	"en": "[The given payment value [%s] is inferior than minimum configured value [5]]",
	"es": "[El valor recibido [%s] es inferior al valor mínimo configurado [5]]",
}

var credentialErrors = map[string]string{
	"en": "Invalid credentials",
	"es": "Credenciales inválidas",
	"pt": "Credenciais inválidas",
}

var nullReasons = map[string]string{
	"en": "must not be null",
	"es": "No puede ser vacio",
	"pt": "Não pode ser vazio",
}

func newFakeProcessor(t *testing.T) (*fakeProcessor, *httptest.Server) {
	t.Helper()
	fp := &fakeProcessor{t: t}
	fp.orderSeq.Store(840434913)
	srv := httptest.NewServer(http.HandlerFunc(fp.serve))
	t.Cleanup(srv.Close)
	return fp, srv
}

func (fp *fakeProcessor) recorded() []OperationRequest {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return append([]OperationRequest(nil), fp.requests...)
}

func (fp *fakeProcessor) serve(w http.ResponseWriter, r *http.Request) {
	var req OperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	fp.mu.Lock()
	fp.requests = append(fp.requests, req)
	fp.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if req.Merchant.APIKey != sandboxAPIKey || req.Merchant.APILogin != sandboxAPILogin {
		writeJSON(w, map[string]any{"code": "ERROR", "error": credentialErrors[req.Language], "transactionResponse": nil})
		return
	}

	switch req.Command {
	case commandPaymentMethods:
		writeJSON(w, map[string]any{"code": "SUCCESS", "paymentMethods": []any{}})
	case commandCreateToken:
		tok := req.CreditCardToken
		writeJSON(w, map[string]any{"code": "SUCCESS", "error": nil, "creditCardToken": map[string]any{
			"creditCardTokenId": uuid.NewString(),
			"paymentMethod":     tok.PaymentMethod,
			"payerId":           tok.PayerID,
		}})
	case commandSubmit:
		fp.transaction(w, req)
	default:
		writeJSON(w, map[string]any{"code": "ERROR", "error": "unknown command"})
	}
}

func (fp *fakeProcessor) transaction(w http.ResponseWriter, req OperationRequest) {
	tx := req.Transaction
	switch tx.Type {
	case txVoid, txRefund, txCapture:
		if tx.ParentTransactionID == "" {
			writeJSON(w, map[string]any{"code": "ERROR", "error": "property: parentTransactionId, message: " + nullReasons[req.Language]})
			return
		}
		switch {
		case tx.Type == txRefund:
			fp.reply(w, "PENDING", "", "PENDING_REVIEW", "")
		case tx.Type == txVoid && fp.failVoids:
			fp.reply(w, "DECLINED", "INTERNAL_PAYMENT_PROVIDER_ERROR", "", "")
		default:
			fp.reply(w, "APPROVED", "APPROVED", "", "")
		}
		return
	}

	order := tx.Order
	value := order.AdditionalValues[keyTxValue]
	want := Signature(sandboxAPIKey, sandboxMerchantID, order.ReferenceCode, value.Value, value.Currency)
	if order.Signature != want {
		writeJSON(w, map[string]any{"code": "ERROR", "error": "Invalid signature"})
		return
	}

	amount, err := decimal.NewFromString(value.Value)
	if err != nil {
		fp.t.Errorf("amount %q: %v", value.Value, err)
	}
	if amount.LessThan(decimal.NewFromInt(5)) {
		shown := value.Value
		if req.Language == "es" {
			shown = strings.Replace(shown, ".", ",", 1)
		}
		template, ok := minimumMessages[req.Language]
		if !ok {
			template = minimumMessages["en"]
		}
		fp.reply(w, "DECLINED", "INVALID_TRANSACTION", "", fmt.Sprintf(template, shown))
		return
	}

	switch tx.Payer.FullName {
	case "REJECTED":
		fp.reply(w, "DECLINED", "ANTIFRAUD_REJECTED", "", "")
	case "PENDING":
		fp.reply(w, "PENDING", "PENDING_TRANSACTION_REVIEW", "PENDING_REVIEW", "")
	default:
		fp.reply(w, "APPROVED", "APPROVED", "", "")
	}
}

func (fp *fakeProcessor) reply(w http.ResponseWriter, state, code, pending, networkMessage string) {
	tr := map[string]any{
		"orderId":                            fp.orderSeq.Add(1),
		"transactionId":                      uuid.NewString(),
		"state":                              state,
		"responseCode":                       nullable(code),
		"pendingReason":                      nullable(pending),
		"paymentNetworkResponseErrorMessage": nullable(networkMessage),
		"authorizationCode":                  "123456",
	}
	writeJSON(w, map[string]any{"code": "SUCCESS", "error": nil, "transactionResponse": tr})
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func writeJSON(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(v)
}
