package profile

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/material-adapter/constants"
	"github.com/joseph-ayodele/material-adapter/internal/common"
	"github.com/joseph-ayodele/material-adapter/internal/repository"
	"github.com/joseph-ayodele/material-adapter/internal/rules"
)

func newTestService(t *testing.T) (*Service, *repository.Stores) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stores, err := repository.InitStores(context.Background(), common.DatabaseConfig{InMemory: true}, false, logger)
	if err != nil {
		t.Fatalf("InitStores: %v", err)
	}
	t.Cleanup(func() { stores.Close(logger) })
	return NewService(stores.Classes, stores.Profiles, logger), stores
}

func TestCreateProfileNormalizesDimensions(t *testing.T) {
	svc, stores := newTestService(t)
	ctx := context.Background()
	class, err := stores.Classes.GetOrCreateByName(ctx, "Turma A", nil)
	if err != nil {
		t.Fatalf("GetOrCreateByName: %v", err)
	}

	p, err := svc.CreateProfile(ctx, CreateProfileRequest{
		ClassID:      class.ID.String(),
		ProfileName:  "  Perfil 1 ",
		Fragmentacao: "Alta",
		Abstracao:    "não abstrai",
		Mediacao:     "passo a passo",
		Dislexia:     "SIM",
		TipoLetra:    "bastao",
		Observacoes:  "Gosta de exemplos com futebol.",
	})
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if p.ProfileName != "Perfil 1" || p.Abstracao != constants.AbstracaoNaoAbstrai || p.Mediacao != constants.MediacaoPassoAPasso {
		t.Fatalf("profile: got=%+v", p)
	}
	if !rules.IsValid(*p) || p.Notes() != "Gosta de exemplos com futebol." {
		t.Fatalf("profile: want complete with notes got=%+v", p)
	}
}

func TestCreateProfileValidation(t *testing.T) {
	svc, stores := newTestService(t)
	ctx := context.Background()
	class, _ := stores.Classes.GetOrCreateByName(ctx, "Turma A", nil)

	cases := []struct {
		name string
		req  CreateProfileRequest
		code codes.Code
	}{
		{"bad class id", CreateProfileRequest{ClassID: "nope", ProfileName: "x"}, codes.InvalidArgument},
		{"missing name", CreateProfileRequest{ClassID: class.ID.String()}, codes.InvalidArgument},
		{"unknown value", CreateProfileRequest{ClassID: class.ID.String(), ProfileName: "x", Dislexia: "talvez"}, codes.InvalidArgument},
		{"long name", CreateProfileRequest{ClassID: class.ID.String(), ProfileName: strings.Repeat("a", maxProfileName+1)}, codes.InvalidArgument},
		{"unknown class", CreateProfileRequest{ClassID: uuid.NewString(), ProfileName: "x"}, codes.NotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProfile(ctx, tc.req)
			if got := status.Code(err); got != tc.code {
				t.Fatalf("CreateProfile: want=%s got=%s (%v)", tc.code, got, err)
			}
		})
	}
}

func TestCreateProfileAllowsIncomplete(t *testing.T) {
	svc, stores := newTestService(t)
	ctx := context.Background()
	class, _ := stores.Classes.GetOrCreateByName(ctx, "Turma A", nil)

	p, err := svc.CreateProfile(ctx, CreateProfileRequest{ClassID: class.ID.String(), ProfileName: "Rascunho", Fragmentacao: "media"})
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if rules.IsValid(*p) {
		t.Fatalf("IsValid: want=false for incomplete profile")
	}
	list, err := svc.ListProfiles(ctx, class.ID.String())
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if len(list) != 1 || list[0].ID != p.ID {
		t.Fatalf("ListProfiles: got=%v", list)
	}
}

func TestListProfilesRejectsBadClassID(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.ListProfiles(context.Background(), "123")
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("ListProfiles: want InvalidArgument got=%v", err)
	}
}

const fixture = `
class: Turma A
description: 5o ano
profiles:
  - name: Perfil 1
    fragmentacao: alta
    abstracao: baixa
    mediacao: passo_a_passo
    dislexia: sim
    tipo_letra: bastao
  - name: Perfil 2
    fragmentacao: baixa
    abstracao: alta
    mediacao: autonomo
    dislexia: nao
    tipo_letra: normal
    observacoes: Prefere textos curtos.
`

func TestLoadProfilesYAML(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	class, profiles, err := svc.LoadProfilesYAML(ctx, strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("LoadProfilesYAML: %v", err)
	}
	if class.Name != "Turma A" || class.Description == nil || *class.Description != "5o ano" {
		t.Fatalf("class: got=%+v", class)
	}
	if len(profiles) != 2 {
		t.Fatalf("profiles: want=2 got=%d", len(profiles))
	}
	if profiles[1].Notes() != "Prefere textos curtos." || profiles[0].TipoLetra != constants.TipoLetraBastao {
		t.Fatalf("profiles: got=%+v %+v", profiles[0], profiles[1])
	}

	// loading again reuses the class
	again, _, err := svc.LoadProfilesYAML(ctx, strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("LoadProfilesYAML(2): %v", err)
	}
	if again.ID != class.ID {
		t.Fatalf("class id: want=%s got=%s", class.ID, again.ID)
	}
}

func TestLoadProfilesYAMLRejectsUnknownFields(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, err := svc.LoadProfilesYAML(context.Background(), strings.NewReader("class: A\nturma: B\n"))
	if err == nil {
		t.Fatalf("LoadProfilesYAML: want error for unknown field")
	}
}
