package repair

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	codeFence       = regexp.MustCompile("```(?:json|JSON)?")
	greedyObject    = regexp.MustCompile(`(?s)\{.*\}`)
	balancedObject  = regexp.MustCompile(`\{(?:[^{}]|\{[^{}]*\})*\}`)
	trailingComma   = regexp.MustCompile(`,\s*([}\]])`)
	bareKey         = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	lineBreakSpaces = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
)

type step struct {
	strategy Strategy
	run      func(text string, shape Shape) (map[string]any, bool)
}

// Each step runs only when every earlier one found nothing parseable.
var chain = []step{
	{StrategyDirect, extractDirect},
	{StrategyBalanced, extractBalanced},
	{StrategyRepaired, extractRepaired},
}

// Extract pulls a JSON object approximating shape out of raw model output.
// It never fails: when no object can be parsed the fields are mined from the
// free text and may be empty.
func Extract(raw string, shape Shape) Result {
	cleaned := clean(raw)
	for _, s := range chain {
		if fields, ok := s.run(cleaned, shape); ok {
			return Result{Fields: fields, Strategy: s.strategy}
		}
	}
	return Result{Fields: mine(raw, shape), Strategy: StrategyFallback}
}

func clean(raw string) string {
	text := codeFence.ReplaceAllString(raw, "")
	return strings.TrimSpace(lineBreakSpaces.Replace(text))
}

func extractDirect(text string, _ Shape) (map[string]any, bool) {
	candidate := greedyObject.FindString(text)
	if candidate == "" {
		return nil, false
	}
	return parseObject(candidate)
}

func extractBalanced(text string, shape Shape) (map[string]any, bool) {
	var best, bestMatching map[string]any
	for _, candidate := range balancedObject.FindAllString(text, -1) {
		fields, ok := parseObject(candidate)
		if !ok {
			continue
		}
		if shape.Matches(fields) && (bestMatching == nil || len(fields) > len(bestMatching)) {
			bestMatching = fields
		}
		if best == nil || len(fields) > len(best) {
			best = fields
		}
	}
	if bestMatching != nil {
		return bestMatching, true
	}
	return best, best != nil
}

func extractRepaired(text string, shape Shape) (map[string]any, bool) {
	repaired := repairText(text)
	if fields, ok := extractDirect(repaired, shape); ok {
		return fields, true
	}
	return extractBalanced(repaired, shape)
}

// repairText folds accents away, drops what is still non-ASCII, strips
// trailing commas and quotes bare keys. String literals are left untouched.
func repairText(text string) string {
	return outsideStrings(asciiOnly(text), func(segment string) string {
		segment = trailingComma.ReplaceAllString(segment, "$1")
		return bareKey.ReplaceAllString(segment, `$1"$2":`)
	})
}

// outsideStrings applies rewrite to every span of text that is not inside a
// double-quoted string. An unterminated string runs to the end of text.
func outsideStrings(text string, rewrite func(string) string) string {
	var b strings.Builder
	b.Grow(len(text) + 16)
	start := 0
	inString, escaped := false, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				b.WriteString(text[start : i+1])
				start = i + 1
			}
			continue
		}
		if c == '"' {
			b.WriteString(rewrite(text[start:i]))
			start = i
			inString = true
		}
	}
	if inString {
		b.WriteString(text[start:])
	} else {
		b.WriteString(rewrite(text[start:]))
	}
	return b.String()
}

func asciiOnly(text string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn))), text)
	if err != nil {
		folded = text
	}
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, folded)
}

func parseObject(candidate string) (map[string]any, bool) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}
