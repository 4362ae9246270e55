package repair

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Keys are stored in normalizeKey form.
var symptomAliases = map[string]string{
	"sintomas":               "sintomas",
	"sintoma":                "sintomas",
	"symptoms":               "sintomas",
	"symptom":                "sintomas",
	"lista_sintomas":         "sintomas",
	"lista_de_sintomas":      "sintomas",
	"symptom_list":           "sintomas",
	"sintomas_identificados": "sintomas",
	"identified_symptoms":    "sintomas",
	"checklist":              "sintomas",
}

var diagnosisAliases = map[string]string{
	"title":            "title",
	"titulo":           "title",
	"diagnostico":      "title",
	"diagnosis":        "title",
	"diagnostic":       "title",
	"condition":        "title",
	"condicao":         "title",
	"doenca":           "title",
	"disease":          "title",
	"nome":             "title",
	"name":             "title",
	"description":      "description",
	"descricao":        "description",
	"details":          "description",
	"detalhes":         "description",
	"explanation":      "description",
	"explicacao":       "description",
	"summary":          "description",
	"resumo":           "description",
	"score":            "score",
	"severity":         "score",
	"severidade":       "score",
	"gravidade":        "score",
	"risk":             "score",
	"risco":            "score",
	"nivel":            "score",
	"level":            "score",
	"urgency":          "score",
	"urgencia":         "score",
	"recommendations":  "recommendations",
	"recommendation":   "recommendations",
	"recomendacoes":    "recommendations",
	"recomendacao":     "recommendations",
	"advice":           "recommendations",
	"conselhos":        "recommendations",
	"orientacoes":      "recommendations",
	"next_steps":       "recommendations",
	"proximos_passos":  "recommendations",
	"disclaimer":       "disclaimer",
	"aviso":            "disclaimer",
	"observacao":       "disclaimer",
	"nota":             "disclaimer",
	"aviso_importante": "disclaimer",
}

var severityLevels = map[string]Score{
	"alto":          ScoreHigh,
	"alta":          ScoreHigh,
	"high":          ScoreHigh,
	"grave":         ScoreHigh,
	"severo":        ScoreHigh,
	"severa":        ScoreHigh,
	"severe":        ScoreHigh,
	"critical":      ScoreHigh,
	"critico":       ScoreHigh,
	"critica":       ScoreHigh,
	"urgente":       ScoreHigh,
	"urgent":        ScoreHigh,
	"elevado":       ScoreHigh,
	"elevada":       ScoreHigh,
	"medio":         ScoreMedium,
	"media":         ScoreMedium,
	"medium":        ScoreMedium,
	"moderate":      ScoreMedium,
	"moderado":      ScoreMedium,
	"moderada":      ScoreMedium,
	"intermediate":  ScoreMedium,
	"intermediario": ScoreMedium,
	"baixo":         ScoreLow,
	"baixa":         ScoreLow,
	"low":           ScoreLow,
	"leve":          ScoreLow,
	"mild":          ScoreLow,
}

var requiredFields = map[Shape][]string{
	ShapeSymptoms:  {"sintomas"},
	ShapeDiagnosis: {"title", "description"},
}

// NormalizeSymptoms maps extracted fields onto a SymptomsRecord. The result
// always holds at least one entry.
func NormalizeSymptoms(fields map[string]any) SymptomsRecord {
	canonical := canonicalize(fields, symptomAliases)
	symptoms := dedupe(splitList(canonical["sintomas"], ",;\n"))
	if len(symptoms) == 0 {
		symptoms = []string{UnspecifiedSymptom}
	}
	return SymptomsRecord{Sintomas: symptoms}
}

// NormalizeDiagnosis maps extracted fields onto a DiagnosisRecord with every
// field populated.
func NormalizeDiagnosis(fields map[string]any) DiagnosisRecord {
	canonical := canonicalize(fields, diagnosisAliases)
	record := DiagnosisRecord{
		Title:           firstString(canonical["title"]),
		Description:     firstString(canonical["description"]),
		Score:           ParseScore(firstString(canonical["score"])),
		Recommendations: splitList(canonical["recommendations"], "\n;"),
		Disclaimer:      firstString(canonical["disclaimer"]),
	}
	if record.Title == "" {
		record.Title = DefaultTitle
	}
	if record.Description == "" {
		record.Description = DefaultDescription
	}
	if len(record.Recommendations) == 0 {
		record.Recommendations = []string{DefaultRecommendation}
	}
	if record.Disclaimer == "" {
		record.Disclaimer = DefaultDisclaimer
	}
	return record
}

// ParseScore maps an English or Portuguese severity word onto a Score.
// Anything unrecognized is ScoreLow.
func ParseScore(s string) Score {
	if score, ok := severityLevels[normalizeKey(s)]; ok {
		return score
	}
	return ScoreLow
}

// Missing lists the required fields of shape that fields lacks or leaves empty.
func Missing(shape Shape, fields map[string]any) []string {
	canonical := canonicalize(fields, shape.aliases())
	var missing []string
	for _, key := range requiredFields[shape] {
		value, ok := canonical[key]
		if !ok || len(splitList(value, "")) == 0 {
			missing = append(missing, key)
		}
	}
	return missing
}

// canonicalize renames known keys, descending one level into nested objects.
// Exact canonical keys win over synonyms; synonyms are applied in key order.
func canonicalize(fields map[string]any, aliases map[string]string) map[string]any {
	out := map[string]any{}
	var nested []map[string]any

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ci := aliases[normalizeKey(keys[i])] == normalizeKey(keys[i])
		cj := aliases[normalizeKey(keys[j])] == normalizeKey(keys[j])
		if ci != cj {
			return ci
		}
		return keys[i] < keys[j]
	})

	for _, key := range keys {
		value := fields[key]
		if obj, ok := value.(map[string]any); ok {
			nested = append(nested, obj)
			continue
		}
		target, ok := aliases[normalizeKey(key)]
		if !ok || isEmpty(value) {
			continue
		}
		if _, taken := out[target]; !taken {
			out[target] = value
		}
	}
	for _, obj := range nested {
		for key, value := range canonicalize(obj, aliases) {
			if _, taken := out[key]; !taken {
				out[key] = value
			}
		}
	}
	return out
}

// Fold lowercases s and strips diacritics, so "Vômito" and "vomito" compare equal.
func Fold(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

func normalizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return '_'
		}
		return r
	}, Fold(key))
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

func scalarString(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case map[string]any:
		for _, key := range []string{"name", "nome", "sintoma", "symptom", "text", "texto"} {
			if s, ok := v[key].(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func firstString(value any) string {
	if list, ok := value.([]any); ok {
		for _, item := range list {
			if s := scalarString(item); s != "" {
				return s
			}
		}
		return ""
	}
	return scalarString(value)
}

// splitList coerces value into a list of trimmed, non-empty strings. Plain
// strings are split on any rune of seps.
func splitList(value any, seps string) []string {
	var raw []string
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			raw = append(raw, scalarString(item))
		}
	case []string:
		raw = v
	default:
		s := scalarString(v)
		if seps == "" {
			raw = []string{s}
		} else {
			raw = strings.FieldsFunc(s, func(r rune) bool { return strings.ContainsRune(seps, r) })
		}
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item = trimEntry(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func trimEntry(s string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), "-*•"))
}

func dedupe(items []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = capitalize(item)
		key := strings.ToLower(strings.Join(strings.Fields(item), " "))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func capitalize(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
