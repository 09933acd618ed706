package llm

import (
	"strings"
)

const (
	userTurnLabel   = "Material Original:"
	teacherNotesTag = "Observações Adicionais do Professor:"
)

// BuildSystemPrompt composes the system message: specialist framing, the
// content-preservation invariant, the synthesized rules and, only when notes
// is non-blank, a delimited block with the teacher's notes verbatim.
func BuildSystemPrompt(rules []string, notes string) string {
	parts := []string{
		"Você é um especialista em educação inclusiva e adaptação de materiais didáticos.",
		"Seu objetivo é adaptar o material didático abaixo conforme o perfil específico do aluno, mantendo TODAS as informações do original.",
		"IMPORTANTE: Adapte apenas linguagem, estrutura, clareza e acessibilidade. Nunca remova informações ou altere o significado do conteúdo.",
		"Regras de Adaptação:\n" + strings.Join(rules, "\n"),
	}
	if strings.TrimSpace(notes) != "" {
		parts = append(parts, teacherNotesTag+"\n"+notes)
	}
	parts = append(parts, "Gere o material adaptado completo:")
	return strings.Join(parts, "\n\n")
}

// BuildUserPrompt prefixes the extracted text with a neutral label and
// otherwise leaves it untouched.
func BuildUserPrompt(original string) string {
	return userTurnLabel + "\n\n" + original
}
