package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hyperon-hyeon/Graphear/internal/service/document"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

type Handlers struct {
	Document *DocumentHandler
}

func NewHandlers(
	documentService document.DocumentProcessor,
	logger logger.Logger,
) *Handlers {
	return &Handlers{
		Document: NewDocumentHandler(documentService, logger),
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
