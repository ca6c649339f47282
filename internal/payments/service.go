package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/congo-pay/payu_gateway/internal/country"
	"github.com/congo-pay/payu_gateway/internal/notification"
	"github.com/congo-pay/payu_gateway/internal/payu"
)

// Processor is the card operation surface of a payment gateway.
type Processor interface {
	Purchase(ctx context.Context, amount int64, c payu.Card, opts payu.Options) (payu.Result, error)
	Authorize(ctx context.Context, amount int64, c payu.Card, opts payu.Options) (payu.Result, error)
	Capture(ctx context.Context, amount int64, authorization string, opts payu.Options) (payu.Result, error)
	Refund(ctx context.Context, amount int64, authorization string, opts payu.Options) (payu.Result, error)
	Void(ctx context.Context, authorization string, opts payu.Options) (payu.Result, error)
	Verify(ctx context.Context, c payu.Card, opts payu.Options) (payu.Result, error)
	Store(ctx context.Context, c payu.Card, opts payu.Options) (payu.Result, error)
	VerifyCredentials(ctx context.Context) bool
}

// ErrNoProcessor is returned when no processor is configured.
var ErrNoProcessor = errors.New("no payment processor configured")

// Service routes card operations to the processor of the payment country.
type Service struct {
	defaultCountry string
	processors     map[string]Processor
	notifier       notification.Notifier
	logger         *slog.Logger
}

// NewService constructs a payment service. processors is keyed by ISO country
// code and must contain defaultCountry.
func NewService(defaultCountry string, processors map[string]Processor, notifier notification.Notifier, logger *slog.Logger) (*Service, error) {
	if len(processors) == 0 {
		return nil, ErrNoProcessor
	}
	normalized := make(map[string]Processor, len(processors))
	for code, p := range processors {
		normalized[strings.ToUpper(strings.TrimSpace(code))] = p
	}
	defaultCountry = strings.ToUpper(strings.TrimSpace(defaultCountry))
	if _, ok := normalized[defaultCountry]; !ok {
		return nil, fmt.Errorf("%w for default country %q", ErrNoProcessor, defaultCountry)
	}
	return &Service{defaultCountry: defaultCountry, processors: normalized, notifier: notifier, logger: logger}, nil
}

// Countries lists the countries with a configured processor.
func (s *Service) Countries() []string {
	codes := make([]string, 0, len(s.processors))
	for code := range s.processors {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (s *Service) Purchase(ctx context.Context, amount int64, c payu.Card, opts payu.Options) (payu.Result, error) {
	p, err := s.route(opts.PaymentCountry)
	if err != nil {
		return payu.Result{}, err
	}
	return p.Purchase(ctx, amount, c, opts)
}

func (s *Service) Authorize(ctx context.Context, amount int64, c payu.Card, opts payu.Options) (payu.Result, error) {
	p, err := s.route(opts.PaymentCountry)
	if err != nil {
		return payu.Result{}, err
	}
	return p.Authorize(ctx, amount, c, opts)
}

func (s *Service) Capture(ctx context.Context, amount int64, authorization string, opts payu.Options) (payu.Result, error) {
	p, err := s.route(opts.PaymentCountry)
	if err != nil {
		return payu.Result{}, err
	}
	return p.Capture(ctx, amount, authorization, opts)
}

func (s *Service) Refund(ctx context.Context, amount int64, authorization string, opts payu.Options) (payu.Result, error) {
	p, err := s.route(opts.PaymentCountry)
	if err != nil {
		return payu.Result{}, err
	}
	return p.Refund(ctx, amount, authorization, opts)
}

func (s *Service) Void(ctx context.Context, authorization string, opts payu.Options) (payu.Result, error) {
	p, err := s.route(opts.PaymentCountry)
	if err != nil {
		return payu.Result{}, err
	}
	return p.Void(ctx, authorization, opts)
}

// Verify runs a verification and raises a notification when the probe
// authorization could not be voided.
func (s *Service) Verify(ctx context.Context, c payu.Card, opts payu.Options) (payu.Result, error) {
	p, err := s.route(opts.PaymentCountry)
	if err != nil {
		return payu.Result{}, err
	}
	res, err := p.Verify(ctx, c, opts)
	if err != nil || res.Warning == "" {
		return res, err
	}
	if s.notifier != nil {
		msg := notification.Message{
			Kind:        notification.KindVerifyVoidFailed,
			Destination: s.countryOf(opts.PaymentCountry),
			Body:        res.Warning,
		}
		if nerr := s.notifier.Send(ctx, msg); nerr != nil && s.logger != nil {
			s.logger.Error("notify verify void failure", "authorization", res.Authorization, "error", nerr)
		}
	}
	return res, nil
}

func (s *Service) Store(ctx context.Context, c payu.Card, opts payu.Options) (payu.Result, error) {
	p, err := s.route(opts.PaymentCountry)
	if err != nil {
		return payu.Result{}, err
	}
	return p.Store(ctx, c, opts)
}

// VerifyCredentials checks the merchant credentials of one country's processor.
func (s *Service) VerifyCredentials(ctx context.Context, code string) (bool, error) {
	p, err := s.route(code)
	if err != nil {
		return false, err
	}
	return p.VerifyCredentials(ctx), nil
}

func (s *Service) countryOf(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return s.defaultCountry
	}
	return code
}

func (s *Service) route(code string) (Processor, error) {
	code = s.countryOf(code)
	p, ok := s.processors[code]
	if !ok {
		return nil, fmt.Errorf("%w: no processor for %q", country.ErrUnsupportedCountry, code)
	}
	return p, nil
}
