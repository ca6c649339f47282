package payu

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

const (
	codeSuccess = "SUCCESS"

	messageVerified = "VERIFIED"
	messageFailed   = "FAILED"

	bodySnippetLimit = 256
)

// jsonID accepts an identifier sent either as a JSON number or a string.
type jsonID string

func (id *jsonID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = jsonID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = jsonID(n.String())
	return nil
}

// Parse interprets a processor reply for op. Only an empty or non-JSON body
// is an error (*ProtocolError); every other reply becomes a Result.
func Parse(op Operation, status int, body []byte, lang string, test bool) (Result, error) {
	body = bytes.TrimSpace(bytes.TrimPrefix(body, []byte("\ufeff")))
	if len(body) == 0 {
		return Result{}, &ProtocolError{Op: op, Status: status, Err: errors.New("empty body")}
	}
	if !json.Valid(body) {
		return Result{}, &ProtocolError{Op: op, Status: status, Body: snippet(body), Err: errors.New("body is not JSON")}
	}

	var params map[string]any
	if err := json.Unmarshal(body, &params); err != nil {
		return unexpected(lang, test, nil), nil
	}
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return unexpected(lang, test, params), nil
	}

	if status >= http.StatusBadRequest {
		return httpFailure(status, resp, params, lang, test), nil
	}

	switch op {
	case OpStore:
		return storeResult(resp, params, lang, test), nil
	case OpVerifyCredentials:
		return credentialsResult(resp, params, test), nil
	default:
		return transactionResult(resp, params, lang, test), nil
	}
}

func unexpected(lang string, test bool, params map[string]any) Result {
	return Result{
		State:   StateError,
		Message: localize(msgUnexpectedResponse, lang),
		Kind:    KindProcessor,
		Params:  params,
		Test:    test,
	}
}

func httpFailure(status int, resp response, params map[string]any, lang string, test bool) Result {
	res := Result{
		State:   StateError,
		Message: firstNonBlank(resp.Description, resp.Error, http.StatusText(status), localize(msgUnexpectedResponse, lang)),
		Kind:    KindProcessor,
		Params:  params,
		Test:    test,
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden || isInvalidCredentials(res.Message) {
		res.Kind = KindAuthentication
	}
	return res
}

// errorResult covers replies whose top-level code is not SUCCESS.
func errorResult(resp response, params map[string]any, lang string, test bool) Result {
	res := Result{
		State:   StateError,
		Message: firstNonBlank(resp.Error, resp.Description, messageFailed),
		Kind:    KindProcessor,
		Params:  params,
		Test:    test,
	}
	switch {
	case isInvalidCredentials(res.Message):
		res.Kind = KindAuthentication
	case strings.HasPrefix(res.Message, "property:"):
		res.Kind = KindValidation
	}
	if resp.Code == "" && resp.Error == "" && resp.Description == "" {
		res.Message = localize(msgUnexpectedResponse, lang)
	}
	return res
}

func transactionResult(resp response, params map[string]any, lang string, test bool) Result {
	if resp.Code != codeSuccess {
		return errorResult(resp, params, lang, test)
	}
	tr := resp.TransactionResponse
	if tr == nil {
		return unexpected(lang, test, params)
	}

	res := Result{
		State:  mapState(tr.State),
		Params: params,
		Test:   test,
	}
	res.Success = res.State == StateApproved
	if tr.OrderID != "" && tr.TransactionID != "" {
		res.Authorization = string(tr.OrderID) + "|" + tr.TransactionID
	}

	code := firstNonBlank(tr.ResponseCode, tr.PendingReason)
	if res.Success {
		res.Message = code
		return res
	}

	res.Message = failureMessage(code, tr)
	res.ErrorCode = firstNonBlank(tr.ErrorCode, tr.ResponseCode)
	switch res.State {
	case StatePending:
		res.Kind = KindPending
	case StateDeclined:
		res.Kind = KindDeclined
	default:
		res.Kind = KindProcessor
	}
	return res
}

// failureMessage keeps the processor's code and detail verbatim, joined by " | ".
func failureMessage(code string, tr *transactionResponse) string {
	detail := firstNonBlank(tr.PaymentNetworkResponseErrorMessage, tr.ResponseMessage)
	switch {
	case code != "" && detail != "":
		return code + " | " + detail
	case code != "":
		return code
	case detail != "":
		return detail
	default:
		return messageFailed
	}
}

func mapState(s string) State {
	switch State(strings.ToUpper(strings.TrimSpace(s))) {
	case StateApproved:
		return StateApproved
	case StatePending:
		return StatePending
	case StateError:
		return StateError
	default:
		return StateDeclined
	}
}

func storeResult(resp response, params map[string]any, lang string, test bool) Result {
	if resp.Code != codeSuccess {
		return errorResult(resp, params, lang, test)
	}
	tok := resp.CreditCardToken
	if tok == nil || tok.CreditCardTokenID == "" {
		return unexpected(lang, test, params)
	}
	return Result{
		Success:       true,
		State:         StateApproved,
		Message:       resp.Code,
		Authorization: tok.PaymentMethod + "|" + tok.CreditCardTokenID,
		Params:        params,
		Test:          test,
	}
}

func credentialsResult(resp response, params map[string]any, test bool) Result {
	if resp.Code == codeSuccess {
		return Result{Success: true, State: StateApproved, Message: messageVerified, Params: params, Test: test}
	}
	res := Result{State: StateError, Message: messageFailed, Kind: KindProcessor, Params: params, Test: test}
	if isInvalidCredentials(resp.Error) {
		res.Kind = KindAuthentication
	}
	return res
}

func snippet(body []byte) string {
	if len(body) > bodySnippetLimit {
		return string(body[:bodySnippetLimit])
	}
	return string(body)
}
