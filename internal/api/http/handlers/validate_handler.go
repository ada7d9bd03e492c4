package handlers

import (
	"encoding/xml"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eedition-gateway/internal/api/dto"
	"github.com/spec-kit/eedition-gateway/internal/service"
)

// ValidateHandler implements the reader-service validation protocol:
// always HTTP 200 with a text/xml LOGIN document, failures encoded in-body.
type ValidateHandler struct {
	access *service.AccessService
}

// NewValidateHandler constructs handler.
func NewValidateHandler(access *service.AccessService) *ValidateHandler {
	return &ValidateHandler{access: access}
}

// Handle serves POST /newspack-tecnavia/v1/validate-token.
func (h *ValidateHandler) Handle(c *fiber.Ctx) error {
	tokenValue := c.FormValue("token")
	if tokenValue == "" {
		tokenValue = c.Query("token")
	}

	result, err := h.access.ValidateToken(c.Context(), tokenValue)
	if err != nil {
		// Persistence faults are the one case that escapes the XML contract.
		return err
	}

	doc := dto.FailureLoginDocument()
	if result != nil {
		doc = dto.SuccessLoginDocument(
			result.Token.Value,
			result.Reader.Slug,
			result.Reader.Email,
			result.Reader.DisplayName,
		)
	}

	payload, err := xml.Marshal(doc)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/xml")
	return c.Status(http.StatusOK).Send(payload)
}
