package controller

import (
	"github.com/nitishkumarnitc/HealthBot/internal/dto"
	"github.com/nitishkumarnitc/HealthBot/internal/pkg/serverutils"
	"github.com/nitishkumarnitc/HealthBot/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHealthBotController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Quiz(ctx *fiber.Ctx) error
	Answer(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	Session(ctx *fiber.Ctx) error
}

type healthBotController struct {
	workflow service.IWorkflowService
}

func NewHealthBotController(workflow service.IWorkflowService) IHealthBotController {
	return &healthBotController{
		workflow: workflow,
	}
}

func (c *healthBotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/healthbot")
	h.Post("/start", c.Start)
	h.Post("/quiz", c.Quiz)
	h.Post("/answer", c.Answer)
	h.Post("/reset", c.Reset)
	h.Get("/session/:id", c.Session)
}

func (c *healthBotController) Start(ctx *fiber.Ctx) error {
	var req dto.StartTopicRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.workflow.Start(ctx.Context(), req.Topic, req.SessionID)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success start topic", res))
}

func (c *healthBotController) Quiz(ctx *fiber.Ctx) error {
	var req dto.QuizRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.workflow.RequestQuiz(ctx.Context(), req.SessionID)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate quiz", res))
}

func (c *healthBotController) Answer(ctx *fiber.Ctx) error {
	var req dto.AnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.workflow.SubmitAnswer(ctx.Context(), req.SessionID, req.Answer)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success grade answer", res))
}

func (c *healthBotController) Reset(ctx *fiber.Ctx) error {
	var req dto.ResetRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.workflow.Reset(ctx.Context(), req.SessionID)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reset session", res))
}

func (c *healthBotController) Session(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	res, err := c.workflow.GetSession(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}
