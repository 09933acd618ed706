package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-adapter/constants"
)

// StudentProfile is an anonymized accessibility profile owned by a class.
// The five dimensions drive adaptation; a profile missing any of them can
// still be listed but is skipped by the batch orchestrator.
type StudentProfile struct {
	ID           uuid.UUID               `json:"id"`
	ClassID      uuid.UUID               `json:"class_id"`
	ProfileName  string                  `json:"profile_name"`
	Fragmentacao constants.Fragmentation `json:"fragmentacao" validate:"required,oneof=baixa media alta"`
	Abstracao    constants.Abstraction   `json:"abstracao" validate:"required,oneof=alta media baixa nao_abstrai"`
	Mediacao     constants.Mediation     `json:"mediacao" validate:"required,oneof=autonomo guiado passo_a_passo"`
	Dislexia     constants.Dyslexia      `json:"dislexia" validate:"required,oneof=sim nao"`
	TipoLetra    constants.LetterStyle   `json:"tipo_letra" validate:"required,oneof=bastao normal"`
	Observacoes  *string                 `json:"observacoes,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// Notes returns the teacher notes or "" when unset.
func (p *StudentProfile) Notes() string {
	if p.Observacoes == nil {
		return ""
	}
	return *p.Observacoes
}
