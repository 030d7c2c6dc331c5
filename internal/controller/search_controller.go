package controller

import (
	"context"

	"smart-search-be/internal/dto"
	"smart-search-be/internal/pkg/serverutils"
	"smart-search-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	SmartSearch(ctx *fiber.Ctx) error
	SmartSearchStream(ctx *fiber.Ctx) error
	GetContext(ctx *fiber.Ctx) error
	ClearContext(ctx *fiber.Ctx) error
	ListTurns(ctx *fiber.Ctx) error
	GetTurn(ctx *fiber.Ctx) error
	ListLogs(ctx *fiber.Ctx) error
}

type searchController struct {
	searchService  service.ISmartSearchService
	contextService service.IContextService
	auth           fiber.Handler
}

func NewSearchController(searchService service.ISmartSearchService, contextService service.IContextService, auth fiber.Handler) ISearchController {
	return &searchController{
		searchService:  searchService,
		contextService: contextService,
		auth:           auth,
	}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/search/v1")
	if c.auth != nil {
		h.Use(c.auth)
	}
	h.Post("smart-search", c.SmartSearch)
	h.Post("smart-search/stream", c.SmartSearchStream)
	h.Get("context/:sessionId", c.GetContext)
	h.Delete("context/:sessionId", c.ClearContext)
	h.Get("context/:sessionId/turns", c.ListTurns)
	h.Get("context/:sessionId/turns/:turnId", c.GetTurn)
	h.Get("logs", c.ListLogs)
}

func (c *searchController) SmartSearch(ctx *fiber.Ctx) error {
	var req dto.SmartSearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.searchService.Search(ctx.UserContext(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success smart search", res))
}

func (c *searchController) SmartSearchStream(ctx *fiber.Ctx) error {
	var req dto.SmartSearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	return streamSSE(ctx, func(runCtx context.Context, stream *eventStream) {
		if _, err := c.searchService.SearchStream(runCtx, req, stream); err != nil {
			stream.fail(err)
		}
	})
}

func (c *searchController) GetContext(ctx *fiber.Ctx) error {
	res, err := c.contextService.GetContext(ctx.UserContext(), ctx.Params("sessionId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get context", res))
}

func (c *searchController) ClearContext(ctx *fiber.Ctx) error {
	res, err := c.contextService.ClearContext(ctx.UserContext(), ctx.Params("sessionId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear context", res))
}

func (c *searchController) ListTurns(ctx *fiber.Ctx) error {
	var q dto.TurnQuery
	if err := ctx.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}

	res, err := c.contextService.ListTurns(ctx.UserContext(), ctx.Params("sessionId"), q)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list turns", res))
}

func (c *searchController) GetTurn(ctx *fiber.Ctx) error {
	turnId, err := uuid.Parse(ctx.Params("turnId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid turn id")
	}

	res, err := c.contextService.GetTurn(ctx.UserContext(), ctx.Params("sessionId"), turnId)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Turn not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get turn", res))
}

func (c *searchController) ListLogs(ctx *fiber.Ctx) error {
	var q dto.LogQuery
	if err := ctx.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}

	res, err := c.contextService.ListLogs(ctx.UserContext(), q)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list logs", res))
}
