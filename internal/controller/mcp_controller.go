package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"smart-search-be/internal/dto"
	"smart-search-be/internal/tools"

	"github.com/gofiber/fiber/v2"
)

type IMcpController interface {
	RegisterRoutes(r fiber.Router)
	ListTools(ctx *fiber.Ctx) error
	Invoke(ctx *fiber.Ctx) error
	InvokeStream(ctx *fiber.Ctx) error
}

type mcpController struct {
	registry *tools.Registry
	auth     fiber.Handler
}

func NewMcpController(registry *tools.Registry, auth fiber.Handler) IMcpController {
	return &mcpController{
		registry: registry,
		auth:     auth,
	}
}

func (c *mcpController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/mcp")
	if c.auth != nil {
		h.Use(c.auth)
	}
	h.Get("tools", c.ListTools)
	h.Post("invoke", c.Invoke)
	h.Get("invoke_stream", c.InvokeStream)
}

func (c *mcpController) ListTools(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.ToolListResponse{Tools: c.registry.List()})
}

func toolError(ctx *fiber.Ctx, status int, message string) error {
	return ctx.Status(status).JSON(dto.ToolInvokeResponse{Content: message, IsError: true})
}

func (c *mcpController) Invoke(ctx *fiber.Ctx) error {
	var req dto.ToolInvokeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return toolError(ctx, fiber.StatusBadRequest, "Invalid request body")
	}
	if _, ok := c.registry.Lookup(req.Name); !ok {
		return toolError(ctx, fiber.StatusNotFound, fmt.Sprintf("Tool '%s' not found", req.Name))
	}

	out, err := c.registry.Invoke(ctx.UserContext(), req.Name, req.Arguments, nil)
	if err != nil {
		return toolError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	return ctx.JSON(dto.ToolInvokeResponse{Content: out, IsError: false})
}

func (c *mcpController) InvokeStream(ctx *fiber.Ctx) error {
	name := ctx.Query("name")
	tool, ok := c.registry.Lookup(name)
	if !ok {
		return toolError(ctx, fiber.StatusNotFound, fmt.Sprintf("Tool '%s' not found", name))
	}
	if !tool.Streaming {
		return toolError(ctx, fiber.StatusBadRequest, fmt.Sprintf("Tool '%s' does not support streaming", name))
	}

	args := map[string]interface{}{}
	if raw := ctx.Query("arguments"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return toolError(ctx, fiber.StatusBadRequest, "Invalid arguments: "+err.Error())
		}
	}

	return streamSSE(ctx, func(runCtx context.Context, stream *eventStream) {
		if _, err := c.registry.Invoke(runCtx, name, args, stream); err != nil {
			stream.fail(err)
		}
	})
}
