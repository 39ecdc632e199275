package controller

import (
	"ai-coverletter-be/internal/dto"
	"ai-coverletter-be/internal/pkg/serverutils"
	"ai-coverletter-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ILetterController interface {
	RegisterRoutes(r fiber.Router)
	Extract(ctx *fiber.Ctx) error
	Background(ctx *fiber.Ctx) error
	Draft(ctx *fiber.Ctx) error
	Refine(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
}

type letterController struct {
	letterService service.ILetterService
}

func NewLetterController(letterService service.ILetterService) ILetterController {
	return &letterController{
		letterService: letterService,
	}
}

func (c *letterController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/letter/v1")
	h.Post("extract", c.Extract)
	h.Post(":sessionId/background", c.Background)
	h.Post(":sessionId/draft", c.Draft)
	h.Post(":sessionId/refine", c.Refine)
	h.Get(":sessionId", c.Show)
	h.Delete(":sessionId", c.Clear)
}

func (c *letterController) Extract(ctx *fiber.Ctx) error {
	var req dto.ExtractRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.letterService.StartExtraction(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success start extraction", res))
}

func (c *letterController) Background(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("sessionId")

	var req dto.BackgroundRequest
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.letterService.RunBackgroundPhase(ctx.Context(), sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success run background phase", res))
}

func (c *letterController) Draft(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("sessionId")

	var req dto.DraftRequest
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.letterService.AdvanceToDraft(ctx.Context(), sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success advance to draft", res))
}

func (c *letterController) Refine(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("sessionId")

	var req dto.RefineRequest
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.letterService.AdvanceToRefinement(ctx.Context(), sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success advance to refinement", res))
}

func (c *letterController) Show(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("sessionId")

	res, err := c.letterService.Show(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *letterController) Clear(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("sessionId")

	if err := c.letterService.Clear(ctx.Context(), sessionId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear session", nil))
}
