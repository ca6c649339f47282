package payu

import (
	"errors"
	"net/http"
	"testing"
)

func TestParseApprovedTransaction(t *testing.T) {
	body := `{"code":"SUCCESS","error":null,"transactionResponse":{"orderId":844001,"transactionId":"a1b2-c3","state":"APPROVED","responseCode":"APPROVED","paymentNetworkResponseErrorMessage":null}}`
	res, err := Parse(OpPurchase, http.StatusOK, []byte(body), "en", true)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !res.Success || res.Authorization != "844001|a1b2-c3" || res.Message != "APPROVED" || !res.Test {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestParseStringOrderID(t *testing.T) {
	body := `{"code":"SUCCESS","transactionResponse":{"orderId":"844002","transactionId":"x","state":"APPROVED","responseCode":"APPROVED"}}`
	res, err := Parse(OpAuthorize, http.StatusOK, []byte("\ufeff"+body), "en", false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Authorization != "844002|x" {
		t.Fatalf("authorization = %q", res.Authorization)
	}
}

func TestParseFailureMessages(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
		kind Kind
	}{
		{
			name: "composite code and detail",
			body: `{"code":"SUCCESS","transactionResponse":{"state":"DECLINED","responseCode":"INVALID_TRANSACTION","paymentNetworkResponseErrorMessage":"[detail]"}}`,
			want: "INVALID_TRANSACTION | [detail]",
			kind: KindDeclined,
		},
		{
			name: "response message detail",
			body: `{"code":"SUCCESS","transactionResponse":{"state":"ERROR","responseCode":"ERROR","responseMessage":"Internal error"}}`,
			want: "ERROR | Internal error",
			kind: KindProcessor,
		},
		{
			name: "unknown state is a decline",
			body: `{"code":"SUCCESS","transactionResponse":{"state":"EXPIRED"}}`,
			want: "FAILED",
			kind: KindDeclined,
		},
		{
			name: "processor validation error",
			body: `{"code":"ERROR","error":"property: parentTransactionId, message: No puede ser vacio","transactionResponse":null}`,
			want: "property: parentTransactionId, message: No puede ser vacio",
			kind: KindValidation,
		},
		{
			name: "invalid credentials",
			body: `{"code":"ERROR","error":"Credenciais inválidas"}`,
			want: "Credenciais inválidas",
			kind: KindAuthentication,
		},
		{
			name: "empty object",
			body: `{}`,
			want: "Unexpected response from processor",
			kind: KindProcessor,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Parse(OpPurchase, http.StatusOK, []byte(tc.body), "en", false)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if res.Success {
				t.Fatal("expected failure")
			}
			if res.Message != tc.want || res.Kind != tc.kind {
				t.Fatalf("got message %q kind %s, want %q %s", res.Message, res.Kind, tc.want, tc.kind)
			}
		})
	}
}

func TestParseHTTPErrors(t *testing.T) {
	res, err := Parse(OpPurchase, http.StatusInternalServerError, []byte(`{"description":"Service unavailable"}`), "en", false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Success || res.Message != "Service unavailable" || res.Kind != KindProcessor {
		t.Fatalf("unexpected result %+v", res)
	}

	res, _ = Parse(OpPurchase, http.StatusUnauthorized, []byte(`{}`), "en", false)
	if res.Kind != KindAuthentication || res.Message != "Unauthorized" {
		t.Fatalf("401 should be an authentication failure: %+v", res)
	}
}

func TestParseUnreadableBodies(t *testing.T) {
	for _, body := range []string{"", "   ", "<xml/>", `{"code":`} {
		_, err := Parse(OpVoid, http.StatusOK, []byte(body), "en", false)
		var pe *ProtocolError
		if !errors.As(err, &pe) {
			t.Fatalf("body %q: expected ProtocolError, got %v", body, err)
		}
		if pe.Op != OpVoid {
			t.Fatalf("op = %s", pe.Op)
		}
	}
}

func TestParseWrongShapes(t *testing.T) {
	for _, body := range []string{`[]`, `"SUCCESS"`, `{"code":"SUCCESS"}`, `{"code":"SUCCESS","transactionResponse":{"orderId":{}}}`} {
		res, err := Parse(OpAuthorize, http.StatusOK, []byte(body), "es", false)
		if err != nil {
			t.Fatalf("body %s: unexpected error %v", body, err)
		}
		if res.Success || res.State != StateError || res.Message != "Respuesta inesperada del procesador" {
			t.Fatalf("body %s: %+v", body, res)
		}
	}
}

func TestParseStore(t *testing.T) {
	res, err := Parse(OpStore, http.StatusOK, []byte(`{"code":"SUCCESS","creditCardToken":{"creditCardTokenId":"tok-1","paymentMethod":"VISA"}}`), "en", true)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !res.Success || res.Message != "SUCCESS" || res.Authorization != "VISA|tok-1" {
		t.Fatalf("unexpected store result %+v", res)
	}

	res, _ = Parse(OpStore, http.StatusOK, []byte(`{"code":"SUCCESS","creditCardToken":null}`), "en", true)
	if res.Success {
		t.Fatal("store without a token id must fail")
	}
}

func TestParseVerifyCredentials(t *testing.T) {
	ok, _ := Parse(OpVerifyCredentials, http.StatusOK, []byte(`{"code":"SUCCESS","paymentMethods":[]}`), "en", true)
	if !ok.Success || ok.Message != "VERIFIED" {
		t.Fatalf("unexpected %+v", ok)
	}
	bad, _ := Parse(OpVerifyCredentials, http.StatusOK, []byte(`{"code":"ERROR","error":"Invalid credentials"}`), "en", true)
	if bad.Success || bad.Message != "FAILED" || bad.Kind != KindAuthentication {
		t.Fatalf("unexpected %+v", bad)
	}
}
