package repair

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDirectObject(t *testing.T) {
	result := Extract(`{"sintomas":["febre","tosse"]}`, ShapeSymptoms)

	assert.Equal(t, StrategyDirect, result.Strategy)
	assert.False(t, result.Fallback())
	assert.Equal(t, []string{"Febre", "Tosse"}, NormalizeSymptoms(result.Fields).Sintomas)
}

func TestExtractStripsCodeFences(t *testing.T) {
	raw := "Claro! Segue o resultado:\n```json\n{\"sintomas\": [\"febre\",\n \"tosse\"]}\n```"
	result := Extract(raw, ShapeSymptoms)

	assert.Equal(t, StrategyDirect, result.Strategy)
	assert.Equal(t, []string{"Febre", "Tosse"}, NormalizeSymptoms(result.Fields).Sintomas)
}

func TestExtractBalancedPrefersShapeMatch(t *testing.T) {
	raw := `Resposta: {"sintomas":["febre"]} e também {"nota": "x", "a": 1, "b": 2}`
	result := Extract(raw, ShapeSymptoms)

	assert.Equal(t, StrategyBalanced, result.Strategy)
	assert.Equal(t, []string{"Febre"}, NormalizeSymptoms(result.Fields).Sintomas)
}

func TestExtractBalancedPicksLargestObject(t *testing.T) {
	raw := `{"title":"Gripe"} depois {"title":"Gripe","description":"Infecção viral"}`
	result := Extract(raw, ShapeDiagnosis)

	assert.Equal(t, StrategyBalanced, result.Strategy)
	assert.Len(t, result.Fields, 2)
	assert.Equal(t, "Infecção viral", NormalizeDiagnosis(result.Fields).Description)
}

func TestExtractRepairsTrailingComma(t *testing.T) {
	result := Extract(`{"title":"X","description":"Y",}`, ShapeDiagnosis)

	require.Equal(t, StrategyRepaired, result.Strategy)
	record := NormalizeDiagnosis(result.Fields)
	assert.Equal(t, "X", record.Title)
	assert.Equal(t, "Y", record.Description)
}

func TestExtractQuotesBareKeys(t *testing.T) {
	result := Extract(`{title: "Gripe", description: "Viral"}`, ShapeDiagnosis)

	require.Equal(t, StrategyRepaired, result.Strategy)
	assert.Equal(t, "Gripe", result.Fields["title"])
	assert.Equal(t, "Viral", result.Fields["description"])
}

func TestExtractRepairLeavesStringValuesAlone(t *testing.T) {
	result := Extract(`{title: "Gripe", description: "Febre, tosse: sintomas leves"}`, ShapeDiagnosis)

	require.Equal(t, StrategyRepaired, result.Strategy)
	record := NormalizeDiagnosis(result.Fields)
	assert.Equal(t, "Gripe", record.Title)
	assert.Equal(t, "Febre, tosse: sintomas leves", record.Description)
}

func TestExtractRepairKeepsCommaInsideString(t *testing.T) {
	result := Extract(`{"title":"Gripe","description":"Viral, }",}`, ShapeDiagnosis)

	require.Equal(t, StrategyRepaired, result.Strategy)
	assert.Equal(t, "Viral, }", NormalizeDiagnosis(result.Fields).Description)
}

func TestRepairTextHonoursEscapedQuotes(t *testing.T) {
	repaired := repairText(`{note: "diz \"a, b: c\", ok", score: "alto",}`)

	assert.Equal(t, `{"note": "diz \"a, b: c\", ok", "score": "alto"}`, repaired)
}

func TestExtractRepairFoldsAccents(t *testing.T) {
	result := Extract(`{titulo: "Gripe", "descrição": "Viral",}`, ShapeDiagnosis)

	require.Equal(t, StrategyRepaired, result.Strategy)
	record := NormalizeDiagnosis(result.Fields)
	assert.Equal(t, "Gripe", record.Title)
	assert.Equal(t, "Viral", record.Description)
}

func TestFallbackMinesListItems(t *testing.T) {
	raw := "Os sintomas são:\n1. Febre alta\n2. Tosse seca\n- dor de cabeça"
	result := Extract(raw, ShapeSymptoms)

	assert.True(t, result.Fallback())
	assert.Equal(t, []string{"Febre alta", "Tosse seca", "Dor de cabeça"}, NormalizeSymptoms(result.Fields).Sintomas)
}

func TestFallbackMinesAtMostFiveItems(t *testing.T) {
	raw := "1. a1\n2. b2\n3. c3\n4. d4\n5. e5\n6. f6\n7. g7"
	result := Extract(raw, ShapeSymptoms)

	assert.Len(t, NormalizeSymptoms(result.Fields).Sintomas, 5)
}

func TestFallbackMinesCapitalizedFragments(t *testing.T) {
	result := Extract("Paciente relata febre. Tosse persistente", ShapeSymptoms)

	assert.True(t, result.Fallback())
	assert.Equal(t, []string{"Paciente relata febre", "Tosse persistente"}, NormalizeSymptoms(result.Fields).Sintomas)
}

func TestFallbackWithoutCandidatesUsesSentinel(t *testing.T) {
	result := Extract("ok", ShapeSymptoms)

	assert.True(t, result.Fallback())
	assert.Equal(t, []string{"sintomas"}, Missing(ShapeSymptoms, result.Fields))
	assert.Equal(t, []string{UnspecifiedSymptom}, NormalizeSymptoms(result.Fields).Sintomas)
}

func TestFallbackMinesLabeledDiagnosis(t *testing.T) {
	raw := "Diagnóstico: Gripe comum.\n" +
		"Descrição: Infecção viral leve das vias aéreas.\n" +
		"Recomendações: repouso; hidratação\n" +
		"Gravidade: moderada"
	result := Extract(raw, ShapeDiagnosis)

	require.True(t, result.Fallback())
	record := NormalizeDiagnosis(result.Fields)
	assert.Equal(t, "Gripe comum", record.Title)
	assert.Equal(t, "Infecção viral leve das vias aéreas.", record.Description)
	assert.Equal(t, []string{"repouso", "hidratação"}, record.Recommendations)
	assert.Equal(t, ScoreMedium, record.Score)
	assert.Equal(t, DefaultDisclaimer, record.Disclaimer)
}

func TestFallbackMinesAdvicePhrases(t *testing.T) {
	raw := "Parece algo grave. Procure um pronto-socorro imediatamente. Evite esforço físico."
	record := NormalizeDiagnosis(Extract(raw, ShapeDiagnosis).Fields)

	assert.Equal(t, []string{"Procure um pronto-socorro imediatamente", "Evite esforço físico"}, record.Recommendations)
	assert.Equal(t, ScoreHigh, record.Score)
	assert.Equal(t, DefaultTitle, record.Title)
}

func TestFallbackTrimsJSONDebrisFromLabels(t *testing.T) {
	raw := "Diagnóstico: \"Gripe\"}\ndescrição: \"Febre e tosse\"},"
	record := NormalizeDiagnosis(mineDiagnosis(raw))

	assert.Equal(t, "Gripe", record.Title)
	assert.Equal(t, "Febre e tosse", record.Description)
}

func TestFallbackSkipsNegatedSeverity(t *testing.T) {
	cases := map[string]Score{
		"Nada grave, apenas um resfriado leve.":    ScoreLow,
		"Não é grave. Quadro de intensidade média": ScoreMedium,
		"Sem risco alto aparente.":                 ScoreLow,
		"Quadro grave, procure atendimento.":       ScoreHigh,
	}
	for raw, want := range cases {
		t.Run(raw, func(t *testing.T) {
			record := NormalizeDiagnosis(Extract(raw, ShapeDiagnosis).Fields)
			assert.Equal(t, want, record.Score)
		})
	}
}

func TestRecommendationsSplitAlikeOnBothPaths(t *testing.T) {
	fromJSON := NormalizeDiagnosis(Extract(`{"title":"Gripe","description":"Viral","recommendations":"Repouso; hidratação"}`, ShapeDiagnosis).Fields)
	mined := NormalizeDiagnosis(Extract("Diagnóstico: Gripe\nRecomendações: Repouso; hidratação", ShapeDiagnosis).Fields)

	assert.Equal(t, []string{"Repouso", "hidratação"}, fromJSON.Recommendations)
	assert.Equal(t, fromJSON.Recommendations, mined.Recommendations)
}

func TestNormalizationIsTotal(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"não sei",
		"}{ ][ ::: ,,,",
		"I am a language model and cannot give medical advice.",
		"{\"unrelated\": true}",
		"null",
	}
	for _, raw := range inputs {
		symptoms := NormalizeSymptoms(Extract(raw, ShapeSymptoms).Fields)
		require.NotEmpty(t, symptoms.Sintomas, "input %q", raw)
		for _, s := range symptoms.Sintomas {
			assert.NotEmpty(t, s, "input %q", raw)
		}

		diagnosis := NormalizeDiagnosis(Extract(raw, ShapeDiagnosis).Fields)
		assert.NotEmpty(t, diagnosis.Title, "input %q", raw)
		assert.NotEmpty(t, diagnosis.Description, "input %q", raw)
		assert.NotEmpty(t, diagnosis.Recommendations, "input %q", raw)
		assert.NotEmpty(t, diagnosis.Disclaimer, "input %q", raw)
		assert.Contains(t, []Score{ScoreHigh, ScoreMedium, ScoreLow}, diagnosis.Score, "input %q", raw)
	}
}

func TestCleanInputRoundTrips(t *testing.T) {
	t.Run("symptoms", func(t *testing.T) {
		raw := `{"sintomas":["Febre","Dor de cabeça"]}`
		record := NormalizeSymptoms(Extract(raw, ShapeSymptoms).Fields)

		out, err := json.Marshal(record)
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(out))
	})

	t.Run("diagnosis", func(t *testing.T) {
		raw := `{"title":"Gripe","description":"Infecção viral.","score":"Médio","recommendations":["Repouso","Beba água."],"disclaimer":"Consulte um médico."}`
		record := NormalizeDiagnosis(Extract(raw, ShapeDiagnosis).Fields)

		out, err := json.Marshal(record)
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(out))
	})
}

func TestNormalizeSymptomsDeduplicates(t *testing.T) {
	fields := map[string]any{"sintomas": []any{"Febre", "febre", "TOSSE", " Febre ", "tosse"}}

	assert.Equal(t, []string{"Febre", "Tosse"}, NormalizeSymptoms(fields).Sintomas)
}

func TestNormalizeSymptomsSplitsStringValue(t *testing.T) {
	fields := map[string]any{"symptoms": "fever, cough"}
	record := NormalizeSymptoms(fields)

	out, err := json.Marshal(record)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sintomas":["Fever","Cough"]}`, string(out))
}

func TestNormalizeDiagnosisMapsSynonyms(t *testing.T) {
	fields := map[string]any{
		"diagnóstico":   "Enxaqueca",
		"descrição":     "Dor de cabeça pulsátil",
		"gravidade":     "high",
		"recomendações": "Descanso em ambiente escuro",
	}
	record := NormalizeDiagnosis(fields)

	assert.Equal(t, "Enxaqueca", record.Title)
	assert.Equal(t, "Dor de cabeça pulsátil", record.Description)
	assert.Equal(t, ScoreHigh, record.Score)
	assert.Equal(t, []string{"Descanso em ambiente escuro"}, record.Recommendations)
	assert.Equal(t, DefaultDisclaimer, record.Disclaimer)
}

func TestNormalizeDiagnosisPrefersCanonicalKey(t *testing.T) {
	fields := map[string]any{"diagnosis": "Resfriado", "title": "Gripe"}

	assert.Equal(t, "Gripe", NormalizeDiagnosis(fields).Title)
}

func TestNormalizeDiagnosisReadsNestedObject(t *testing.T) {
	fields := map[string]any{
		"diagnosis": map[string]any{"title": "Gripe", "description": "Viral"},
	}
	record := NormalizeDiagnosis(fields)

	assert.Equal(t, "Gripe", record.Title)
	assert.Equal(t, "Viral", record.Description)
}

func TestNormalizeDiagnosisDefaults(t *testing.T) {
	record := NormalizeDiagnosis(map[string]any{})

	assert.Equal(t, DiagnosisRecord{
		Title:           DefaultTitle,
		Description:     DefaultDescription,
		Score:           ScoreLow,
		Recommendations: []string{DefaultRecommendation},
		Disclaimer:      DefaultDisclaimer,
	}, record)
}

func TestParseScore(t *testing.T) {
	cases := map[string]Score{
		"High":     ScoreHigh,
		"ALTO":     ScoreHigh,
		"severe":   ScoreHigh,
		"moderate": ScoreMedium,
		"Médio":    ScoreMedium,
		"medium":   ScoreMedium,
		"Low":      ScoreLow,
		"leve":     ScoreLow,
		"banana":   ScoreLow,
		"":         ScoreLow,
	}
	for input, want := range cases {
		assert.Equal(t, want, ParseScore(input), "input %q", input)
	}
}

func TestMissing(t *testing.T) {
	assert.Empty(t, Missing(ShapeDiagnosis, map[string]any{"title": "X", "descricao": "Y"}))
	assert.Equal(t, []string{"description"}, Missing(ShapeDiagnosis, map[string]any{"title": "X"}))
	assert.Equal(t, []string{"title", "description"}, Missing(ShapeDiagnosis, map[string]any{"title": "  "}))
	assert.Empty(t, Missing(ShapeSymptoms, map[string]any{"symptoms": "fever"}))
	assert.Equal(t, []string{"sintomas"}, Missing(ShapeSymptoms, map[string]any{"sintomas": []any{}}))
}

func TestShapeMatches(t *testing.T) {
	assert.True(t, ShapeSymptoms.Matches(map[string]any{"Symptoms": nil}))
	assert.False(t, ShapeSymptoms.Matches(map[string]any{"title": "x"}))
	assert.True(t, ShapeDiagnosis.Matches(map[string]any{"Diagnóstico": "x"}))
}
