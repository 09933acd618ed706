package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/joseph-ayodele/material-adapter/internal/common"
	"github.com/joseph-ayodele/material-adapter/internal/entity"
)

var validate = validator.New()

// ValidProfile is a StudentProfile whose five dimensions are all present and
// inside their enumerations. It can only be obtained through Validate.
type ValidProfile struct {
	p entity.StudentProfile
}

// Profile returns a copy of the underlying profile.
func (v ValidProfile) Profile() entity.StudentProfile {
	return v.p
}

// Validate checks the five-dimension invariant and returns ErrProfileInvalid
// naming every offending dimension.
func Validate(p entity.StudentProfile) (ValidProfile, error) {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return ValidProfile{}, common.NewDomainError(common.ErrProfileInvalid, "validate profile", err)
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s(%s)", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return ValidProfile{}, common.NewDomainError(common.ErrProfileInvalid,
			"profile "+p.ID.String()+" has missing or unknown dimensions: "+strings.Join(fields, ", "), nil)
	}
	return ValidProfile{p: p}, nil
}

// IsValid reports whether all five dimensions are present and known.
func IsValid(p entity.StudentProfile) bool {
	_, err := Validate(p)
	return err == nil
}
