package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hyperon-hyeon/Graphear/internal/models"
	"github.com/hyperon-hyeon/Graphear/internal/service/document"
	"github.com/hyperon-hyeon/Graphear/pkg/converters"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

type DocumentHandler struct {
	service document.DocumentProcessor
	logger  logger.Logger
}

type UploadResponse struct {
	OK        bool   `json:"ok"`
	PdfID     string `json:"pdf_id"`
	PageCount int    `json:"page_count"`
}

type ConvertRequest struct {
	PdfID string `json:"pdf_id"`
}

type ConvertResponse struct {
	OK        bool                  `json:"ok"`
	PdfID     string                `json:"pdf_id"`
	Meta      models.ConversionMeta `json:"meta"`
	Questions []models.Question     `json:"questions"`
}

type TaskResponse struct {
	OK bool `json:"ok"`
	*models.ConversionTask
}

type QuestionListResponse struct {
	OK bool `json:"ok"`
	*converters.QuestionList
}

type QuestionDetailResponse struct {
	OK bool `json:"ok"`
	*converters.QuestionDetail
}

type TTSRequest struct {
	Text string `json:"text"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewDocumentHandler(service document.DocumentProcessor, logger logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		logger:  logger,
	}
}

// Upload accepts a single multipart "file" field.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.handleError(c, http.StatusBadRequest, "No file uploaded", err)
		return
	}
	defer file.Close()

	doc, err := h.service.Upload(c.Request.Context(), file, header.Filename)
	if err != nil {
		h.handleError(c, statusFor(err), "Upload failed", err)
		return
	}

	c.JSON(http.StatusCreated, UploadResponse{
		OK:        true,
		PdfID:     doc.ID,
		PageCount: doc.PageCount,
	})
}

func (h *DocumentHandler) bindPdfID(c *gin.Context) (string, bool) {
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.PdfID) == "" {
		h.handleError(c, http.StatusBadRequest, "pdf_id is required", err)
		return "", false
	}
	return strings.TrimSpace(req.PdfID), true
}

// Convert runs extraction synchronously.
func (h *DocumentHandler) Convert(c *gin.Context) {
	pdfID, ok := h.bindPdfID(c)
	if !ok {
		return
	}

	result, err := h.service.Convert(c.Request.Context(), pdfID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, models.ErrNotFound) {
			status = http.StatusNotFound
		}
		h.handleError(c, status, "Conversion failed", err)
		return
	}

	c.JSON(http.StatusOK, ConvertResponse{
		OK:        true,
		PdfID:     pdfID,
		Meta:      result.Meta,
		Questions: result.Questions,
	})
}

func (h *DocumentHandler) ConvertAsync(c *gin.Context) {
	pdfID, ok := h.bindPdfID(c)
	if !ok {
		return
	}

	task, err := h.service.ConvertAsync(c.Request.Context(), pdfID)
	if err != nil {
		h.handleError(c, statusFor(err), "Failed to queue conversion", err)
		return
	}
	c.JSON(http.StatusAccepted, TaskResponse{OK: true, ConversionTask: task})
}

func (h *DocumentHandler) GetTask(c *gin.Context) {
	task, err := h.service.GetTaskStatus(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		h.handleError(c, statusFor(err), "Failed to get task status", err)
		return
	}
	c.JSON(http.StatusOK, TaskResponse{OK: true, ConversionTask: task})
}

func (h *DocumentHandler) ListQuestions(c *gin.Context) {
	list, err := h.service.ListQuestions(c.Request.Context(), c.Param("pdfId"))
	if err != nil {
		h.handleError(c, statusFor(err), "Failed to list questions", err)
		return
	}
	c.JSON(http.StatusOK, QuestionListResponse{OK: true, QuestionList: list})
}

func (h *DocumentHandler) questionNumber(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		h.handleError(c, http.StatusBadRequest, "Question number must be an integer", err)
		return 0, false
	}
	return n, true
}

func (h *DocumentHandler) GetQuestion(c *gin.Context) {
	n, ok := h.questionNumber(c)
	if !ok {
		return
	}
	detail, err := h.service.GetQuestion(c.Request.Context(), c.Param("pdfId"), n)
	if err != nil {
		h.handleError(c, statusFor(err), "Failed to get question", err)
		return
	}
	c.JSON(http.StatusOK, QuestionDetailResponse{OK: true, QuestionDetail: detail})
}

func (h *DocumentHandler) QuestionAudio(c *gin.Context) {
	n, ok := h.questionNumber(c)
	if !ok {
		return
	}
	audio, err := h.service.SynthesizeQuestion(c.Request.Context(), c.Param("pdfId"), n)
	if err != nil {
		h.handleError(c, statusFor(err), "Speech synthesis failed", err)
		return
	}
	c.Data(http.StatusOK, "audio/mpeg", audio)
}

func (h *DocumentHandler) TTS(c *gin.Context) {
	var req TTSRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		h.handleError(c, http.StatusBadRequest, "text is required", err)
		return
	}
	audio, err := h.service.Synthesize(c.Request.Context(), req.Text)
	if err != nil {
		h.handleError(c, statusFor(err), "Speech synthesis failed", err)
		return
	}
	c.Data(http.StatusOK, "audio/mpeg", audio)
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrQueueDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *DocumentHandler) handleError(c *gin.Context, status int, message string, err error) {
	errMsg := message
	if err != nil {
		errMsg = err.Error()
	}

	fields := []logger.Field{
		logger.Int("status", status),
		logger.String("path", c.FullPath()),
		logger.String("error", errMsg),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(message, fields...)
	} else {
		h.logger.Warn(message, fields...)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		OK:      false,
		Error:   errMsg,
		Message: message,
	})
}
