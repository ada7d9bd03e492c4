package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eedition-gateway/internal/auth"
	"github.com/spec-kit/eedition-gateway/internal/service"
)

// RedirectHandler serves the browser-facing e-edition endpoint. Every
// request ends in a redirect; no content is ever rendered here.
type RedirectHandler struct {
	access *service.AccessService
}

// NewRedirectHandler constructs handler.
func NewRedirectHandler(access *service.AccessService) *RedirectHandler {
	return &RedirectHandler{access: access}
}

// Handle runs the redirect decision for GET {E_EDITION_ENDPOINT}.
func (h *RedirectHandler) Handle(c *fiber.Ctx) error {
	reader, _ := auth.ReaderFromContext(c)

	redirect, err := h.access.ResolveRedirect(c.Context(), reader, c.OriginalURL())
	if err != nil {
		return err
	}
	return c.Redirect(redirect.Location, redirect.Status)
}
