package payments

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/payu_gateway/internal/country"
	"github.com/congo-pay/payu_gateway/internal/payu"
)

// Handler exposes card payment endpoints. Processor outcomes, declines
// included, are returned with 200 and the Result body.
type Handler struct {
	service *Service
}

// NewHandler constructs a payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Purchase(c *fiber.Ctx) error {
	req, err := h.cardRequest(c)
	if err != nil {
		return err
	}
	res, err := h.service.Purchase(c.UserContext(), req.Amount, req.Card, req.Options)
	return respond(c, res, err)
}

func (h *Handler) Authorize(c *fiber.Ctx) error {
	req, err := h.cardRequest(c)
	if err != nil {
		return err
	}
	res, err := h.service.Authorize(c.UserContext(), req.Amount, req.Card, req.Options)
	return respond(c, res, err)
}

func (h *Handler) Verify(c *fiber.Ctx) error {
	req, err := h.cardRequest(c)
	if err != nil {
		return err
	}
	res, err := h.service.Verify(c.UserContext(), req.Card, req.Options)
	return respond(c, res, err)
}

func (h *Handler) Store(c *fiber.Ctx) error {
	req, err := h.cardRequest(c)
	if err != nil {
		return err
	}
	res, err := h.service.Store(c.UserContext(), req.Card, req.Options)
	return respond(c, res, err)
}

func (h *Handler) Capture(c *fiber.Ctx) error {
	req, err := h.referenceRequest(c)
	if err != nil {
		return err
	}
	res, err := h.service.Capture(c.UserContext(), req.Amount, req.Authorization, req.Options)
	return respond(c, res, err)
}

func (h *Handler) Refund(c *fiber.Ctx) error {
	req, err := h.referenceRequest(c)
	if err != nil {
		return err
	}
	res, err := h.service.Refund(c.UserContext(), req.Amount, req.Authorization, req.Options)
	return respond(c, res, err)
}

func (h *Handler) Void(c *fiber.Ctx) error {
	req, err := h.referenceRequest(c)
	if err != nil {
		return err
	}
	res, err := h.service.Void(c.UserContext(), req.Authorization, req.Options)
	return respond(c, res, err)
}

// Credentials reports whether the merchant credentials of ?country= (or the
// default country) are accepted by the processor.
func (h *Handler) Credentials(c *fiber.Ctx) error {
	code := c.Query("country")
	valid, err := h.service.VerifyCredentials(c.UserContext(), code)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"country": h.service.countryOf(code), "valid": valid})
}

// Countries lists the countries this deployment can route to.
func (h *Handler) Countries(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"default": h.service.defaultCountry, "countries": h.service.Countries()})
}

func (h *Handler) cardRequest(c *fiber.Ctx) (cardRequest, error) {
	var req cardRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(http.StatusBadRequest, err.Error())
	}
	fillClient(c, &req.Options)
	return req, nil
}

func (h *Handler) referenceRequest(c *fiber.Ctx) (referenceRequest, error) {
	var req referenceRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(http.StatusBadRequest, err.Error())
	}
	fillClient(c, &req.Options)
	return req, nil
}

// fillClient defaults the fraud-screening fields to the calling client.
func fillClient(c *fiber.Ctx, opts *payu.Options) {
	if opts.IP == "" {
		opts.IP = c.IP()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = c.Get(fiber.HeaderUserAgent)
	}
}

func respond(c *fiber.Ctx, res payu.Result, err error) error {
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(http.StatusOK).JSON(res)
}

func mapError(c *fiber.Ctx, err error) error {
	var (
		te *payu.TransportError
		pe *payu.ProtocolError
	)
	switch {
	case errors.As(err, &te):
		return c.Status(http.StatusBadGateway).JSON(errorResponse{Code: "processor_unreachable", Message: err.Error()})
	case errors.As(err, &pe):
		return c.Status(http.StatusBadGateway).JSON(errorResponse{Code: "processor_protocol_error", Message: err.Error()})
	case errors.Is(err, country.ErrUnsupportedCountry):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
