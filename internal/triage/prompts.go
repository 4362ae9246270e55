package triage

import (
	"fmt"
	"strings"
)

const systemPrompt = "Você é um assistente médico de triagem. Responda sempre em português " +
	"e exclusivamente com um objeto JSON compacto em uma única linha, sem markdown e sem texto adicional."

const correctiveInstruction = "ATENÇÃO: a resposta anterior não era um JSON válido com todos os campos. " +
	"Responda SOMENTE com o objeto JSON pedido, em uma única linha, usando exatamente as chaves indicadas."

func symptomsPrompt(text string) string {
	return fmt.Sprintf(
		"Extraia os sintomas descritos no relato abaixo. Use frases curtas e não repita sintomas.\n"+
			"Formato: {\"sintomas\": [\"sintoma 1\", \"sintoma 2\"]}\n\n"+
			"Relato: %s", text)
}

func diagnosisPrompt(symptoms []string) string {
	return fmt.Sprintf(
		"Com base nos sintomas abaixo, indique o diagnóstico mais provável.\n"+
			"Formato: {\"title\": \"nome da condição\", \"description\": \"explicação breve\", "+
			"\"score\": \"Alto|Médio|Baixo\", \"recommendations\": [\"recomendação\"], "+
			"\"disclaimer\": \"aviso de que não substitui consulta médica\"}\n\n"+
			"Sintomas: %s", strings.Join(symptoms, "; "))
}
