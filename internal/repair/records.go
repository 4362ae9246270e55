package repair

// Score is the localized severity of a candidate diagnosis.
type Score string

const (
	ScoreHigh   Score = "Alto"
	ScoreMedium Score = "Médio"
	ScoreLow    Score = "Baixo"
)

const (
	UnspecifiedSymptom    = "Sintoma não especificado"
	DefaultTitle          = "Diagnóstico não determinado"
	DefaultDescription    = "Não foi possível determinar um diagnóstico preciso com base nos sintomas informados."
	DefaultRecommendation = "Procure um profissional de saúde para uma avaliação completa."
	DefaultDisclaimer     = "Este resultado é gerado automaticamente, tem caráter apenas informativo e não substitui a avaliação de um profissional de saúde."
)

type SymptomsRecord struct {
	Sintomas []string `json:"sintomas"`
}

type DiagnosisRecord struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Score           Score    `json:"score"`
	Recommendations []string `json:"recommendations"`
	Disclaimer      string   `json:"disclaimer"`
}

// Shape selects which record an extraction is aiming for.
type Shape int

const (
	ShapeSymptoms Shape = iota
	ShapeDiagnosis
)

func (s Shape) String() string {
	switch s {
	case ShapeSymptoms:
		return "symptoms"
	case ShapeDiagnosis:
		return "diagnosis"
	default:
		return "unknown"
	}
}

// Matches reports whether fields carries any canonical or synonym key of the shape.
func (s Shape) Matches(fields map[string]any) bool {
	for key := range fields {
		if _, ok := s.aliases()[normalizeKey(key)]; ok {
			return true
		}
	}
	return false
}

func (s Shape) aliases() map[string]string {
	if s == ShapeDiagnosis {
		return diagnosisAliases
	}
	return symptomAliases
}

// Strategy names the extraction step that produced a Result.
type Strategy string

const (
	StrategyDirect   Strategy = "direct"
	StrategyBalanced Strategy = "balanced"
	StrategyRepaired Strategy = "repaired"
	StrategyFallback Strategy = "fallback"
)

type Result struct {
	Fields   map[string]any
	Strategy Strategy
}

// Fallback is true when the fields were mined from free text rather than parsed.
func (r Result) Fallback() bool {
	return r.Strategy == StrategyFallback
}
