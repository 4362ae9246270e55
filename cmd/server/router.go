package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Skufu/GoSintomas/internal/repair"
	"github.com/Skufu/GoSintomas/internal/triage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Analyzer is the triage surface the HTTP handlers depend on.
type Analyzer interface {
	ExtractSymptoms(ctx context.Context, text string) (triage.Outcome[repair.SymptomsRecord], error)
	Diagnose(ctx context.Context, symptoms []string) (triage.Outcome[repair.DiagnosisRecord], error)
	Checklist(ctx context.Context, text string) (triage.Outcome[triage.Checklist], error)
	Model() string
}

func setupRouter(svc Analyzer, db HealthChecker, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders: []string{sourceHeader, strategyHeader, attemptsHeader, requestIDHeader},
			MaxAge:        12 * time.Hour,
		}),
	)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Envie POST /symptoms com {\"text\": ...} ou POST /diagnosis com {\"sintomas\": [...]}; estado em GET /health.",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "model": svc.Model()})
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
	})

	h := &handlers{svc: svc, logger: logger}
	router.POST("/symptoms", h.symptoms)
	router.POST("/diagnosis", h.diagnosis)
	router.POST("/checklist", h.checklist)
	// The questionnaire is static; POST accepts and ignores a {text} body.
	form := func(c *gin.Context) {
		c.JSON(http.StatusOK, triage.IntakeForm())
	}
	router.GET("/form", form)
	router.POST("/form", form)

	return router
}
