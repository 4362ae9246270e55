package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Skufu/GoSintomas/internal/repair"
	"github.com/Skufu/GoSintomas/internal/triage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sourceHeader   = "X-Response-Source"
	strategyHeader = "X-Repair-Strategy"
	attemptsHeader = "X-Model-Attempts"

	detailMissingText = "Você não enviou a requisição com o texto solicitado (mínimo de 5 caracteres)."
	detailBadBody     = "Corpo da requisição inválido."
	detailTooLarge    = "Corpo da requisição excede o tamanho máximo permitido."
	detailInternal    = "Erro interno ao processar a solicitação."
)

type textRequest struct {
	Text string `json:"text"`
}

type diagnosisRequest struct {
	Sintomas []string `json:"sintomas"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type handlers struct {
	svc    Analyzer
	logger *zap.Logger
}

func (h *handlers) symptoms(c *gin.Context) {
	var req textRequest
	if !h.bind(c, &req) {
		return
	}
	out, err := h.svc.ExtractSymptoms(c.Request.Context(), req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	setSourceHeaders(c, out.Strategy, out.Attempts)
	c.JSON(http.StatusOK, out.Record)
}

func (h *handlers) diagnosis(c *gin.Context) {
	var req diagnosisRequest
	if !h.bind(c, &req) {
		return
	}
	out, err := h.svc.Diagnose(c.Request.Context(), req.Sintomas)
	if err != nil {
		h.fail(c, err)
		return
	}
	setSourceHeaders(c, out.Strategy, out.Attempts)
	c.JSON(http.StatusOK, out.Record)
}

func (h *handlers) checklist(c *gin.Context) {
	var req textRequest
	if !h.bind(c, &req) {
		return
	}
	out, err := h.svc.Checklist(c.Request.Context(), req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	setSourceHeaders(c, out.Strategy, out.Attempts)
	c.JSON(http.StatusOK, out.Record)
}

func (h *handlers) bind(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Detail: detailTooLarge})
		return false
	}
	h.logger.Debug("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, errorResponse{Detail: detailBadBody})
	return false
}

// fail maps service errors onto responses. Causes are logged, never returned.
func (h *handlers) fail(c *gin.Context, err error) {
	if errors.Is(err, triage.ErrInvalidRequest) {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: detailMissingText})
		return
	}
	h.logger.Error("request failed",
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, errorResponse{Detail: detailInternal})
}

func setSourceHeaders(c *gin.Context, strategy repair.Strategy, attempts int) {
	source := "model"
	if strategy == repair.StrategyFallback {
		source = "fallback"
	}
	c.Header(sourceHeader, source)
	c.Header(strategyHeader, string(strategy))
	c.Header(attemptsHeader, strconv.Itoa(attempts))
}
