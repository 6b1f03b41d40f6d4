package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kiwiz-app/kiwiz-backend/internal/http/response"
	"github.com/kiwiz-app/kiwiz-backend/internal/prompts"
)

const maxPromptCount = 50

type PromptsHandler struct {
	catalog *prompts.Catalog
}

func NewPromptsHandler(catalog *prompts.Catalog) *PromptsHandler {
	return &PromptsHandler{catalog: catalog}
}

// GET /api/prompts/:kind?count=4
func (ph *PromptsHandler) List(c *gin.Context) {
	kind, ok := prompts.ParseKind(c.Param("kind"))
	if !ok {
		response.RespondError(c, http.StatusNotFound, "unknown_prompt_kind", errors.New("unknown prompt kind"))
		return
	}
	count := 0
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPromptCount {
			response.RespondError(c, http.StatusBadRequest, "invalid_count", errors.New("count must be between 1 and 50"))
			return
		}
		count = n
	}
	response.RespondOK(c, gin.H{
		"kind":      kind,
		"prompts":   ph.catalog.Suggestions(kind, count, nil),
		"templates": ph.catalog.TemplatesFor(kind),
	})
}
