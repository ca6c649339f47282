package payu

import (
	"fmt"
	"strings"
)

type messageKey int

const (
	msgMustNotBeNull messageKey = iota
	msgUnexpectedResponse
	msgUnsupportedBrand
	msgUnsupportedCountry
	msgPurchaseAt
	msgInvalidExpiry
	msgNegativeAmount
	msgAmountRequired
)

var catalog = map[messageKey]map[string]string{
	msgMustNotBeNull: {
		"en": "must not be null",
		"es": "No puede ser vacio",
		"pt": "Não pode ser vazio",
	},
	msgUnexpectedResponse: {
		"en": "Unexpected response from processor",
		"es": "Respuesta inesperada del procesador",
		"pt": "Resposta inesperada do processador",
	},
	msgUnsupportedBrand: {
		"en": "Card brand not supported",
		"es": "Franquicia de tarjeta no soportada",
		"pt": "Bandeira do cartão não suportada",
	},
	msgUnsupportedCountry: {
		"en": "Payment country not supported",
		"es": "País de pago no soportado",
		"pt": "País de pagamento não suportado",
	},
	msgPurchaseAt: {
		"en": "Purchase at %s",
		"es": "Compra en %s",
		"pt": "Compra em %s",
	},
	msgInvalidExpiry: {
		"en": "invalid expiration date",
		"es": "Fecha de expiración inválida",
		"pt": "Data de validade inválida",
	},
	msgNegativeAmount: {
		"en": "must not be negative",
		"es": "No puede ser negativo",
		"pt": "Não pode ser negativo",
	},
	msgAmountRequired: {
		"en": "must be greater than zero",
		"es": "Debe ser mayor que cero",
		"pt": "Deve ser maior que zero",
	},
}

// texts the processor uses for rejected merchant credentials
var invalidCredentialTexts = []string{
	"invalid credentials",
	"credenciales inválidas",
	"credenciais inválidas",
}

func localize(key messageKey, lang string, args ...any) string {
	texts := catalog[key]
	text, ok := texts[lang]
	if !ok {
		text = texts[DefaultLanguage]
	}
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

func supportedLanguage(lang string) bool {
	switch lang {
	case "en", "es", "pt":
		return true
	}
	return false
}

func normalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return lang
}

// ResolveLanguage picks the response language: the call option, then the
// gateway default, then English. Unrecognized codes are skipped.
func ResolveLanguage(opts Options, cfg Config) string {
	for _, candidate := range []string{opts.Language, cfg.Language} {
		if lang := normalizeLanguage(candidate); supportedLanguage(lang) {
			return lang
		}
	}
	return DefaultLanguage
}

func isInvalidCredentials(text string) bool {
	text = strings.ToLower(text)
	for _, t := range invalidCredentialTexts {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
