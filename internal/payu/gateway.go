package payu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/congo-pay/payu_gateway/internal/card"
	"github.com/congo-pay/payu_gateway/internal/country"
)

// Gateway is the entry point for PayU Latam card operations. It holds only
// its immutable Config and is safe for concurrent use.
type Gateway struct {
	cfg       Config
	transport Transport
	logger    *slog.Logger
}

// New constructs a Gateway. A nil transport uses HTTP with cfg.Timeout and a
// nil logger discards output.
func New(cfg Config, transport Transport, logger *slog.Logger) *Gateway {
	if transport == nil {
		transport = NewHTTPTransport(cfg.Timeout)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Gateway{cfg: cfg, transport: transport, logger: logger}
}

// Config returns a copy of the gateway configuration.
func (g *Gateway) Config() Config { return g.cfg }

func (g *Gateway) Purchase(ctx context.Context, amount int64, c Card, opts Options) (Result, error) {
	return g.execute(ctx, OpPurchase, amount, c, "", opts)
}

func (g *Gateway) Authorize(ctx context.Context, amount int64, c Card, opts Options) (Result, error) {
	return g.execute(ctx, OpAuthorize, amount, c, "", opts)
}

// Capture settles a prior authorization. An amount of 0 captures the full
// authorized amount; negative amounts are rejected. The sandbox does not
// support capture.
func (g *Gateway) Capture(ctx context.Context, amount int64, authorization string, opts Options) (Result, error) {
	return g.execute(ctx, OpCapture, amount, Card{}, authorization, opts)
}

// Refund returns funds of a settled transaction. An amount of 0 refunds the
// full amount; negative amounts are rejected.
func (g *Gateway) Refund(ctx context.Context, amount int64, authorization string, opts Options) (Result, error) {
	return g.execute(ctx, OpRefund, amount, Card{}, authorization, opts)
}

func (g *Gateway) Void(ctx context.Context, authorization string, opts Options) (Result, error) {
	return g.execute(ctx, OpVoid, 0, Card{}, authorization, opts)
}

// Verify authorizes a probe amount and voids it. The caller sees the
// authorization outcome; a void that does not go through is reported in
// Result.Warning.
func (g *Gateway) Verify(ctx context.Context, c Card, opts Options) (Result, error) {
	res, err := g.execute(ctx, OpVerify, 0, c, "", opts)
	if err != nil || !res.Success {
		return res, err
	}

	voidRes, err := g.Void(ctx, res.Authorization, opts)
	switch {
	case err != nil:
		res.Warning = fmt.Sprintf("void of verification %s failed: %v", res.Authorization, err)
	case !voidRes.Success:
		res.Warning = fmt.Sprintf("void of verification %s failed: %s", res.Authorization, voidRes.Message)
	}
	if res.Warning != "" {
		g.logger.Warn("verify void failed", "authorization", res.Authorization, "warning", res.Warning)
	} else {
		g.logger.Debug("verify voided", "authorization", res.Authorization)
	}
	return res, nil
}

// Store tokenizes a card. The returned authorization can be passed back as
// Card.Token.
func (g *Gateway) Store(ctx context.Context, c Card, opts Options) (Result, error) {
	return g.execute(ctx, OpStore, 0, c, "", opts)
}

// VerifyCredentials reports whether the processor accepts the configured
// merchant credentials.
func (g *Gateway) VerifyCredentials(ctx context.Context) bool {
	res, err := g.execute(ctx, OpVerifyCredentials, 0, Card{}, "", Options{})
	if err != nil {
		g.logger.Warn("verify credentials failed", "error", err)
		return false
	}
	return res.Success
}

// Scrub redacts secrets from a transcript of this gateway's traffic.
func (g *Gateway) Scrub(transcript string) string {
	return Scrub(transcript, g.cfg.APIKey)
}

func (g *Gateway) execute(ctx context.Context, op Operation, amount int64, c Card, authorization string, opts Options) (Result, error) {
	start := time.Now()
	lang := ResolveLanguage(opts, g.cfg)

	req, err := Build(op, amount, c, authorization, opts, g.cfg)
	if err != nil {
		res := g.rejected(err, lang)
		g.logger.Info("payu request rejected",
			"operation", op,
			"card_number", card.MaskPAN(c.Number),
			"kind", res.Kind,
			"error", err,
		)
		return res, nil
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("encode %s request: %w", op, err)
	}

	raw, err := g.transport.Post(ctx, g.cfg.URL(), payload)
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) {
			te.Op = op
		} else {
			err = &TransportError{Op: op, URL: g.cfg.URL(), Err: err}
		}
		g.logger.Error("payu transport failed", "operation", op, "reference", req.Reference, "error", err)
		return Result{}, err
	}

	res, err := Parse(op, raw.Status, raw.Body, lang, g.cfg.Test)
	if err != nil {
		g.logger.Error("payu response unreadable", "operation", op, "status", raw.Status, "error", err)
		return Result{}, err
	}

	g.logger.Info("payu operation",
		"operation", op,
		"country", req.Country,
		"reference", req.Reference,
		"card_number", card.MaskPAN(c.Number),
		"status", raw.Status,
		"state", res.State,
		"success", res.Success,
		"duration", time.Since(start),
	)
	return res, nil
}

// rejected converts a build error into a failed Result.
func (g *Gateway) rejected(err error, lang string) Result {
	res := Result{State: StateError, Test: g.cfg.Test}
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		res.Kind = KindValidation
		res.Message = ve.Error()
	case errors.Is(err, card.ErrUnsupportedBrand):
		res.State = StateDeclined
		res.Kind = KindUnsupportedBrand
		res.Message = localize(msgUnsupportedBrand, lang)
	case errors.Is(err, country.ErrUnsupportedCountry):
		res.Kind = KindUnsupportedCountry
		res.Message = localize(msgUnsupportedCountry, lang)
	default:
		res.Kind = KindValidation
		res.Message = err.Error()
	}
	return res
}
