package triage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Skufu/GoSintomas/internal/audit"
	"github.com/Skufu/GoSintomas/internal/model"
	"github.com/Skufu/GoSintomas/internal/repair"
	"go.uber.org/zap"
)

// Route names recorded in the audit log.
const (
	routeSymptoms  = "symptoms"
	routeDiagnosis = "diagnosis"
	routeChecklist = "checklist"
)

// MinTextLength is the shortest symptom description accepted, in characters.
const MinTextLength = 5

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrProcessing     = errors.New("processing failure")
)

type Options struct {
	MaxAttempts      int
	Temperature      float32
	RetryTemperature float32
	MaxTokens        int
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 2
	}
	if o.Temperature <= 0 {
		o.Temperature = 0.7
	}
	if o.RetryTemperature <= 0 || o.RetryTemperature > o.Temperature {
		o.RetryTemperature = o.Temperature / 3
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 512
	}
	return o
}

// Outcome is a normalized record plus how it was obtained.
type Outcome[T any] struct {
	Record   T
	Strategy repair.Strategy
	Attempts int
}

// Fallback reports whether the record was mined from unstructured model text.
func (o Outcome[T]) Fallback() bool {
	return o.Strategy == repair.StrategyFallback
}

// Service turns symptom text into records using a shared Generator.
type Service struct {
	gen      model.Generator
	recorder audit.Recorder
	logger   *zap.Logger
	opts     Options
}

func NewService(gen model.Generator, recorder audit.Recorder, logger *zap.Logger, opts Options) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		gen:      gen,
		recorder: recorder,
		logger:   logger,
		opts:     opts.withDefaults(),
	}
}

// Model is the identifier of the underlying model.
func (s *Service) Model() string {
	return s.gen.Name()
}

func (s *Service) ExtractSymptoms(ctx context.Context, text string) (Outcome[repair.SymptomsRecord], error) {
	return s.extractSymptoms(ctx, routeSymptoms, text)
}

// extractSymptoms reports its outcome to the audit log under route.
func (s *Service) extractSymptoms(ctx context.Context, route, text string) (Outcome[repair.SymptomsRecord], error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinTextLength {
		return Outcome[repair.SymptomsRecord]{}, fmt.Errorf("%w: text must have at least %d characters", ErrInvalidRequest, MinTextLength)
	}

	start := time.Now()
	result, attempts, err := s.generate(ctx, repair.ShapeSymptoms, symptomsPrompt(text))
	if err != nil {
		return Outcome[repair.SymptomsRecord]{}, err
	}
	out := Outcome[repair.SymptomsRecord]{
		Record:   repair.NormalizeSymptoms(result.Fields),
		Strategy: result.Strategy,
		Attempts: attempts,
	}
	s.record(ctx, route, out.Strategy, attempts, start)
	return out, nil
}

// Diagnose asks for a candidate diagnosis. An empty symptom list is replaced
// by the unspecified-symptom sentinel.
func (s *Service) Diagnose(ctx context.Context, symptoms []string) (Outcome[repair.DiagnosisRecord], error) {
	cleaned := make([]string, 0, len(symptoms))
	for _, symptom := range symptoms {
		if symptom = strings.TrimSpace(symptom); symptom != "" {
			cleaned = append(cleaned, symptom)
		}
	}
	if len(cleaned) == 0 {
		cleaned = []string{repair.UnspecifiedSymptom}
	}

	start := time.Now()
	result, attempts, err := s.generate(ctx, repair.ShapeDiagnosis, diagnosisPrompt(cleaned))
	if err != nil {
		return Outcome[repair.DiagnosisRecord]{}, err
	}
	out := Outcome[repair.DiagnosisRecord]{
		Record:   repair.NormalizeDiagnosis(result.Fields),
		Strategy: result.Strategy,
		Attempts: attempts,
	}
	s.record(ctx, routeDiagnosis, out.Strategy, attempts, start)
	return out, nil
}

// generate calls the model until the output parses into an object carrying
// every required field or the attempts run out, in which case the last
// attempt is returned as is. Retries append the corrective instruction and
// lower the temperature. A model error on a retry returns the previous attempt.
func (s *Service) generate(ctx context.Context, shape repair.Shape, prompt string) (repair.Result, int, error) {
	req := model.Request{
		System:      systemPrompt,
		Prompt:      prompt,
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
	}

	var (
		last     repair.Result
		attempts int
	)
	for attempts < s.opts.MaxAttempts {
		attempts++
		raw, err := s.gen.Generate(ctx, req)
		if err != nil {
			if attempts > 1 {
				s.logger.Warn("model retry failed, keeping previous attempt",
					zap.String("shape", shape.String()),
					zap.Int("attempt", attempts),
					zap.Error(err),
				)
				return last, attempts - 1, nil
			}
			s.logger.Error("model call failed",
				zap.String("shape", shape.String()),
				zap.String("model", s.gen.Name()),
				zap.Error(err),
			)
			return repair.Result{}, attempts, fmt.Errorf("%w: generate %s: %w", ErrProcessing, shape, err)
		}

		last = repair.Extract(raw, shape)
		missing := repair.Missing(shape, last.Fields)
		if len(missing) == 0 && !last.Fallback() {
			return last, attempts, nil
		}
		s.logger.Info("model output unusable",
			zap.String("shape", shape.String()),
			zap.Int("attempt", attempts),
			zap.String("strategy", string(last.Strategy)),
			zap.Strings("missing", missing),
		)
		req.Prompt = prompt + "\n\n" + correctiveInstruction
		req.Temperature = s.opts.RetryTemperature
	}
	return last, attempts, nil
}

func (s *Service) record(ctx context.Context, route string, strategy repair.Strategy, attempts int, start time.Time) {
	entry := audit.Entry{
		Route:    route,
		Strategy: string(strategy),
		Attempts: attempts,
		Fallback: strategy == repair.StrategyFallback,
		Model:    s.gen.Name(),
		Latency:  time.Since(start),
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		s.logger.Warn("audit record failed", zap.String("route", route), zap.Error(err))
	}
}
