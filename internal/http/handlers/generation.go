package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kiwiz-app/kiwiz-backend/internal/http/response"
	"github.com/kiwiz-app/kiwiz-backend/internal/services"
)

type GenerationHandler struct {
	tracing  services.TracingService
	coloring services.ColoringService
}

func NewGenerationHandler(tracing services.TracingService, coloring services.ColoringService) *GenerationHandler {
	return &GenerationHandler{tracing: tracing, coloring: coloring}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

func bindPrompt(c *gin.Context) (string, bool) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("body must be a JSON object with a prompt"))
		return "", false
	}
	return req.Prompt, true
}

// POST /api/generate-tracing
// body: { "prompt": "Trace number 8" }
func (gh *GenerationHandler) GenerateTracing(c *gin.Context) {
	prompt, ok := bindPrompt(c)
	if !ok {
		return
	}
	res, err := gh.tracing.Generate(c.Request.Context(), prompt)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/generate-coloring
// body: { "prompt": "a happy dinosaur" }
func (gh *GenerationHandler) GenerateColoring(c *gin.Context) {
	prompt, ok := bindPrompt(c)
	if !ok {
		return
	}
	res, err := gh.coloring.Generate(c.Request.Context(), prompt)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}
