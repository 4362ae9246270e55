package repair

import (
	"regexp"
	"strings"
)

const maxMined = 5

var (
	listItem        = regexp.MustCompile(`(?m)^\s*(?:\d+[.)]|[-*•])\s+(.+?)\s*$`)
	capitalFragment = regexp.MustCompile(`\p{Lu}[^.,;:!?\n{}"\[\]]{2,60}`)

	labeledTitle       = regexp.MustCompile(`(?i)(?:diagn[oó]stico(?:\s+prov[aá]vel)?|diagnosis)\s*[:\-]\s*([^\n.]+)`)
	labeledDescription = regexp.MustCompile(`(?i)(?:descri[cç][aã]o|description)\s*[:\-]\s*([^\n]+)`)
	labeledAdvice      = regexp.MustCompile(`(?i)(?:recomenda[cç](?:[aã]o|[oõ]es)|recommendations?)\s*[:\-]\s*([^\n]+)`)
	advicePhrase       = regexp.MustCompile(`(?i)\b(?:recomenda-se|recomendo|sugere-se|sugiro|procure|consulte|evite|mantenha|beba|descanse|repouse)\b[^.\n]*`)
	labeledSeverity    = regexp.MustCompile(`(?i)(?:gravidade|severidade|severity|score|risco)\s*[:\-]\s*(\p{L}+)`)
	severityWord       = regexp.MustCompile(`(?i)\b(grave|severo|severa|severe|alto|alta|high|moderado|moderada|moderate|m[eé]dio|m[eé]dia|medium|leve|baixo|baixa|low|mild)\b`)

	// Matches the end of the text before a keyword that the keyword negates,
	// as in "nada grave" or "não é grave".
	negatedBefore = regexp.MustCompile(`(?i)(?:\bnada|\bn[aã]o|\bsem|\bnot|\bno)\s+(?:\p{L}+\s+)?$`)
)

// mine scrapes whatever it can from free text. Fields it cannot find are left
// out so that normalization supplies the defaults.
func mine(raw string, shape Shape) map[string]any {
	text := codeFence.ReplaceAllString(raw, "")
	if shape == ShapeDiagnosis {
		return mineDiagnosis(text)
	}
	return mineSymptoms(text)
}

func mineSymptoms(text string) map[string]any {
	var found []any
	for _, m := range listItem.FindAllStringSubmatch(text, -1) {
		if len(found) == maxMined {
			break
		}
		if item := trimFragment(m[1]); item != "" {
			found = append(found, item)
		}
	}
	if len(found) == 0 {
		for _, fragment := range capitalFragment.FindAllString(text, maxMined) {
			if item := trimFragment(fragment); item != "" {
				found = append(found, item)
			}
		}
	}
	if len(found) == 0 {
		return map[string]any{}
	}
	return map[string]any{"sintomas": found}
}

func mineDiagnosis(text string) map[string]any {
	fields := map[string]any{}
	if m := labeledTitle.FindStringSubmatch(text); m != nil {
		if title := trimFragment(m[1]); title != "" {
			fields["title"] = title
		}
	}
	if m := labeledDescription.FindStringSubmatch(text); m != nil {
		if description := trimLabeled(m[1]); description != "" {
			fields["description"] = description
		}
	}

	var advice []any
	if m := labeledAdvice.FindStringSubmatch(text); m != nil {
		for _, part := range strings.Split(m[1], ";") {
			if item := trimFragment(part); item != "" {
				advice = append(advice, item)
			}
		}
	}
	for _, phrase := range advicePhrase.FindAllString(text, -1) {
		if len(advice) >= maxMined {
			break
		}
		if item := trimFragment(phrase); item != "" && !containsFold(advice, item) {
			advice = append(advice, item)
		}
	}
	if len(advice) > 0 {
		fields["recommendations"] = advice
	}

	if score, ok := mineSeverity(text); ok {
		fields["score"] = score
	}
	return fields
}

// mineSeverity prefers a labeled severity, then the first keyword that is not
// negated.
func mineSeverity(text string) (string, bool) {
	if m := labeledSeverity.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	for _, loc := range severityWord.FindAllStringSubmatchIndex(text, -1) {
		if negatedBefore.MatchString(text[:loc[0]]) {
			continue
		}
		return text[loc[2]:loc[3]], true
	}
	return "", false
}

func trimFragment(s string) string {
	return strings.Trim(strings.TrimSpace(s), " \t*-•.,;:\"'{}")
}

// trimLabeled strips the JSON debris a labeled value picks up when it was cut
// out of a broken object.
func trimLabeled(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"{},`))
}

func containsFold(items []any, target string) bool {
	for _, item := range items {
		if s, ok := item.(string); ok && strings.EqualFold(s, target) {
			return true
		}
	}
	return false
}
