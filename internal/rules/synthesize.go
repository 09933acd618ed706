package rules

import (
	"github.com/joseph-ayodele/material-adapter/constants"
)

// RuleGroup is the set of directives emitted for one profile dimension.
type RuleGroup struct {
	Dimension  string
	Directives []string
}

var fragmentationRules = map[constants.Fragmentation][]string{
	constants.FragmentacaoBaixa: {
		"- Mantenha o texto em estrutura contínua com parágrafos naturais.",
	},
	constants.FragmentacaoMedia: {
		"- Divida o conteúdo em parágrafos curtos (3-5 linhas). Cada parágrafo deve abordar um conceito específico.",
		"- Adicione títulos e subtítulos para organizar o conteúdo.",
	},
	constants.FragmentacaoAlta: {
		"- Divida cada conceito em um bloco separado.",
		"- Use listas numeradas ou com bullets extensivamente.",
		"- Máximo de 2-3 linhas por bloco.",
		"- Cada seção deve ter um título descritivo.",
	},
}

var abstractionRules = map[constants.Abstraction][]string{
	constants.AbstracaoAlta: {
		"- Inclua analogias contextualizadas e exemplos práticos avançados.",
		"- Permita inferências e pensamento abstrato.",
	},
	constants.AbstracaoMedia: {
		"- Explique conceitos com exemplos simples e diretos.",
		"- Mantenha algum nível de abstração, mas com clareza.",
	},
	constants.AbstracaoBaixa: {
		"- Explicação passo a passo.",
		"- Linguagem direta e literal.",
		"- Sem inferências implícitas.",
		"- Cada conceito deve ser explicitado.",
	},
	constants.AbstracaoNaoAbstrai: {
		"- Mantenha tudo literal e factual.",
		"- Sem analogias, metáforas ou interpretações subjetivas.",
		"- Apenas fatos e definições.",
	},
}

var mediationRules = map[constants.Mediation][]string{
	constants.MediacaoAutonomo: {
		"- O material deve ser autoexplicativo.",
		"- Não inclua instruções adicionais ou perguntas de verificação.",
	},
	constants.MediacaoGuiado: {
		"- Inclua instruções curtas (ex: 'Leia o parágrafo abaixo').",
		"- Adicione exemplos que orientem o aluno.",
		"- Sem excesso de detalhes.",
	},
	constants.MediacaoPassoAPasso: {
		"- Explique cada etapa em detalhe.",
		"- Após cada conceito, inclua uma pergunta de checagem (ex: 'Você entendeu que...?').",
		"- Adicione resumos do que foi aprendido.",
	},
}

// DyslexiaBundle is appended whenever dislexia=sim.
var DyslexiaBundle = []string{
	"- Use fontes legíveis: Arial, Verdana ou OpenDyslexic.",
	"- Espaçamento entre linhas: 1.5 ou superior.",
	"- Frases curtas: máximo 15 palavras por frase.",
	"- Cores neutras: preto sobre branco ou azul claro.",
	"- Alto contraste entre texto e fundo.",
	"- Evite blocos de texto muito densos.",
}

// SansSerifMandate is appended whenever tipoLetra=bastao.
var SansSerifMandate = []string{
	"- Use fonte de letra bastão (sem serifas) em todo o material. Exemplos: Arial, Verdana, Helvetica.",
}

// SynthesizeGroups returns the directives grouped by dimension in the fixed
// order fragmentation, abstraction, mediation, dyslexia, letter style.
// Dimensions that emit nothing (dislexia=nao, tipoLetra=normal) are omitted.
func SynthesizeGroups(vp ValidProfile) []RuleGroup {
	p := vp.p
	groups := []RuleGroup{
		{Dimension: constants.DimFragmentacao, Directives: fragmentationRules[p.Fragmentacao]},
		{Dimension: constants.DimAbstracao, Directives: abstractionRules[p.Abstracao]},
		{Dimension: constants.DimMediacao, Directives: mediationRules[p.Mediacao]},
	}
	if p.Dislexia == constants.DislexiaSim {
		groups = append(groups, RuleGroup{Dimension: constants.DimDislexia, Directives: DyslexiaBundle})
	}
	if p.TipoLetra == constants.TipoLetraBastao {
		groups = append(groups, RuleGroup{Dimension: constants.DimTipoLetra, Directives: SansSerifMandate})
	}

	// callers get their own slices
	for i := range groups {
		groups[i].Directives = append([]string(nil), groups[i].Directives...)
	}
	return groups
}

// Synthesize flattens SynthesizeGroups into the ordered directive list.
func Synthesize(vp ValidProfile) []string {
	var out []string
	for _, g := range SynthesizeGroups(vp) {
		out = append(out, g.Directives...)
	}
	return out
}
