package constants

import (
	"strings"
)

// Fragmentation controls paragraph/block granularity of the adapted text.
type Fragmentation string

const (
	FragmentacaoBaixa Fragmentation = "baixa"
	FragmentacaoMedia Fragmentation = "media"
	FragmentacaoAlta  Fragmentation = "alta"
)

// Abstraction controls tolerance for analogy and inference.
type Abstraction string

const (
	AbstracaoAlta       Abstraction = "alta"
	AbstracaoMedia      Abstraction = "media"
	AbstracaoBaixa      Abstraction = "baixa"
	AbstracaoNaoAbstrai Abstraction = "nao_abstrai"
)

// Mediation controls how much instructional scaffolding is embedded.
type Mediation string

const (
	MediacaoAutonomo    Mediation = "autonomo"
	MediacaoGuiado      Mediation = "guiado"
	MediacaoPassoAPasso Mediation = "passo_a_passo"
)

// Dyslexia toggles dyslexia-specific accommodations.
type Dyslexia string

const (
	DislexiaSim Dyslexia = "sim"
	DislexiaNao Dyslexia = "nao"
)

// LetterStyle selects sans-serif ("bastao") or the default family.
type LetterStyle string

const (
	TipoLetraBastao LetterStyle = "bastao"
	TipoLetraNormal LetterStyle = "normal"
)

var (
	AllFragmentations = []Fragmentation{FragmentacaoBaixa, FragmentacaoMedia, FragmentacaoAlta}
	AllAbstractions   = []Abstraction{AbstracaoAlta, AbstracaoMedia, AbstracaoBaixa, AbstracaoNaoAbstrai}
	AllMediations     = []Mediation{MediacaoAutonomo, MediacaoGuiado, MediacaoPassoAPasso}
	AllDyslexia       = []Dyslexia{DislexiaSim, DislexiaNao}
	AllLetterStyles   = []LetterStyle{TipoLetraBastao, TipoLetraNormal}
)

// Dimension names, as stored in the student_profiles table.
const (
	DimFragmentacao = "fragmentacao"
	DimAbstracao    = "abstracao"
	DimMediacao     = "mediacao"
	DimDislexia     = "dislexia"
	DimTipoLetra    = "tipo_letra"
)

// DimensionValues returns the allowed values for a dimension as strings.
func DimensionValues(dim string) []string {
	switch dim {
	case DimFragmentacao:
		return asStrings(AllFragmentations)
	case DimAbstracao:
		return asStrings(AllAbstractions)
	case DimMediacao:
		return asStrings(AllMediations)
	case DimDislexia:
		return asStrings(AllDyslexia)
	case DimTipoLetra:
		return asStrings(AllLetterStyles)
	}
	return nil
}

// NormalizeDimension lowercases and trims a dimension value coming from user input.
// "passo a passo" and "não abstrai" style spellings are folded to their canonical form.
func NormalizeDimension(v string) string {
	s := strings.ToLower(strings.TrimSpace(v))
	s = strings.NewReplacer("ã", "a", "á", "a", " ", "_", "-", "_").Replace(s)
	return s
}

func asStrings[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}
