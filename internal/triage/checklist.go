package triage

import (
	"context"
	"strings"

	"github.com/Skufu/GoSintomas/internal/repair"
)

type catalogEntry struct {
	label   string
	aliases []string
}

// catalog is the fixed symptom checklist; aliases are compared folded.
var catalog = []catalogEntry{
	{"fever", []string{"febre", "febril"}},
	{"cough", []string{"tosse"}},
	{"shortness of breath", []string{"falta de ar", "dificuldade para respirar", "dificuldade de respirar", "dispneia"}},
	{"loss of taste", []string{"perda de paladar", "perda do paladar", "sem paladar"}},
	{"loss of smell", []string{"perda de olfato", "perda do olfato", "sem olfato"}},
	{"sore throat", []string{"dor de garganta", "garganta inflamada"}},
	{"fatigue", []string{"fadiga", "cansaco", "exaustao"}},
	{"headache", []string{"dor de cabeca", "cefaleia", "enxaqueca"}},
	{"chills", []string{"calafrio"}},
	{"chest pain", []string{"dor no peito", "dor toracica"}},
	{"diarrhea", []string{"diarreia"}},
	{"muscle aches", []string{"dor muscular", "dores musculares", "mialgia", "dores no corpo", "dor no corpo"}},
	{"runny nose", []string{"coriza", "nariz escorrendo"}},
	{"nausea", []string{"nausea", "enjoo"}},
	{"congestion", []string{"congestao", "nariz entupido"}},
	{"vomiting", []string{"vomito", "vomitando"}},
	{"abdominal pain", []string{"dor abdominal", "dor de barriga", "dor na barriga", "dor no estomago"}},
	{"confusion", []string{"confusao", "desorientacao"}},
}

type ChecklistItem struct {
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type ChecklistOptions struct {
	Model string `json:"model"`
}

type Checklist struct {
	Symptoms     []ChecklistItem  `json:"symptoms"`
	OriginalText string           `json:"original_text"`
	Options      ChecklistOptions `json:"options"`
}

// Checklist extracts symptoms from text and ticks every catalog entry that
// one of them mentions.
func (s *Service) Checklist(ctx context.Context, text string) (Outcome[Checklist], error) {
	extracted, err := s.extractSymptoms(ctx, routeChecklist, text)
	if err != nil {
		return Outcome[Checklist]{}, err
	}
	return Outcome[Checklist]{
		Record: Checklist{
			Symptoms:     matchCatalog(extracted.Record.Sintomas),
			OriginalText: text,
			Options:      ChecklistOptions{Model: s.Model()},
		},
		Strategy: extracted.Strategy,
		Attempts: extracted.Attempts,
	}, nil
}

func matchCatalog(symptoms []string) []ChecklistItem {
	folded := make([]string, 0, len(symptoms))
	for _, symptom := range symptoms {
		folded = append(folded, repair.Fold(symptom))
	}

	items := make([]ChecklistItem, 0, len(catalog))
	for _, entry := range catalog {
		items = append(items, ChecklistItem{Label: entry.label, Selected: mentions(folded, entry)})
	}
	return items
}

func mentions(symptoms []string, entry catalogEntry) bool {
	for _, symptom := range symptoms {
		if strings.Contains(symptom, entry.label) {
			return true
		}
		for _, alias := range entry.aliases {
			if strings.Contains(symptom, alias) {
				return true
			}
		}
	}
	return false
}

type Question struct {
	Question string `json:"question"`
	Type     string `json:"type"`
}

type Form struct {
	Questions []Question `json:"questions"`
}

// IntakeForm is the static questionnaire shown before free-text input.
func IntakeForm() Form {
	return Form{Questions: []Question{
		{Question: "Como você está se sentindo?", Type: "text"},
		{Question: "De 1 a 10, qual a intensidade da sua dor?", Type: "number"},
		{Question: "Descreva seus sintomas", Type: "textarea"},
	}}
}
