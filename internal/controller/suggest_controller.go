package controller

import (
	"github.com/nitishkumarnitc/HealthBot/internal/dto"
	"github.com/nitishkumarnitc/HealthBot/internal/pkg/serverutils"
	"github.com/nitishkumarnitc/HealthBot/pkg/suggest"

	"github.com/gofiber/fiber/v2"
)

const defaultSuggestLimit = 10

type ISuggestController interface {
	RegisterRoutes(r fiber.Router)
	Suggest(ctx *fiber.Ctx) error
}

type suggestController struct {
	ranker *suggest.Ranker
}

func NewSuggestController(ranker *suggest.Ranker) ISuggestController {
	return &suggestController{
		ranker: ranker,
	}
}

func (c *suggestController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/healthbot")
	h.Get("/suggest", c.Suggest)
}

func (c *suggestController) Suggest(ctx *fiber.Ctx) error {
	q := ctx.Query("q", "")
	limit := ctx.QueryInt("limit", defaultSuggestLimit)

	res := dto.SuggestResponse{
		Suggestions: c.ranker.Suggest(q, limit),
	}

	return ctx.JSON(serverutils.SuccessResponse("Success suggest topics", res))
}
