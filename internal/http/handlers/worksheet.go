package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kiwiz-app/kiwiz-backend/internal/http/response"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/logger"
	"github.com/kiwiz-app/kiwiz-backend/internal/tracing"
)

type WorksheetHandler struct {
	log       *logger.Logger
	worksheet *tracing.Worksheet
}

func NewWorksheetHandler(log *logger.Logger, worksheet *tracing.Worksheet) *WorksheetHandler {
	return &WorksheetHandler{log: log.With("handler", "WorksheetHandler"), worksheet: worksheet}
}

// GET /api/worksheets/tracing.png?text=B&type=letter&style=cursive
func (wh *WorksheetHandler) TracingPNG(c *gin.Context) {
	d, err := tracing.NewDirective(
		tracing.Kind(strings.TrimSpace(c.Query("type"))),
		strings.TrimSpace(c.Query("text")),
		tracing.Style(strings.TrimSpace(c.DefaultQuery("style", string(tracing.StyleUppercase)))),
	)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_directive", err)
		return
	}

	var buf bytes.Buffer
	if err := wh.worksheet.EncodePNG(&buf, d); err != nil {
		wh.log.Error("render worksheet failed", "type", d.Type, "content", d.Content, "error", err)
		response.RespondAPIError(c, err)
		return
	}
	// Same query, same pixels.
	c.Header("Cache-Control", "public, max-age=86400, immutable")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
