package payments

import "github.com/congo-pay/payu_gateway/internal/payu"

type cardRequest struct {
	Amount  int64        `json:"amount"`
	Card    payu.Card    `json:"card"`
	Options payu.Options `json:"options"`
}

type referenceRequest struct {
	Amount        int64        `json:"amount"`
	Authorization string       `json:"authorization"`
	Options       payu.Options `json:"options"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
