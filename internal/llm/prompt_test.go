package llm

import (
	"strings"
	"testing"
)

func TestBuildSystemPromptOrder(t *testing.T) {
	rules := []string{"regra um", "regra dois"}
	got := BuildSystemPrompt(rules, "Prefere exemplos com futebol.")

	markers := []string{
		"especialista em educação inclusiva",
		"Seu objetivo",
		"IMPORTANTE:",
		"Regras de Adaptação:\nregra um\nregra dois",
		"Observações Adicionais do Professor:\nPrefere exemplos com futebol.",
		"Gere o material adaptado completo:",
	}
	last := -1
	for _, m := range markers {
		idx := strings.Index(got, m)
		if idx < 0 {
			t.Fatalf("marker %q: want present got missing", m)
		}
		if idx <= last {
			t.Fatalf("marker %q: want after offset %d got %d", m, last, idx)
		}
		last = idx
	}
}

func TestBuildSystemPromptOmitsBlankNotes(t *testing.T) {
	for _, notes := range []string{"", "   ", "\n\t"} {
		got := BuildSystemPrompt([]string{"r"}, notes)
		if strings.Contains(got, teacherNotesTag) {
			t.Fatalf("notes=%q: want no notes block", notes)
		}
	}
}

func TestBuildSystemPromptKeepsNotesVerbatim(t *testing.T) {
	notes := "  linha 1\nlinha 2  "
	got := BuildSystemPrompt(nil, notes)
	if !strings.Contains(got, teacherNotesTag+"\n"+notes) {
		t.Fatalf("notes block: want verbatim %q", notes)
	}
}

func TestBuildUserPromptDoesNotTouchText(t *testing.T) {
	original := "Intro.\n\n  Body text here.  "
	got := BuildUserPrompt(original)
	if got != "Material Original:\n\n"+original {
		t.Fatalf("BuildUserPrompt: got=%q", got)
	}
}

func TestValidateEnvelope(t *testing.T) {
	cases := []struct {
		name string
		body string
		ok   bool
	}{
		{"content", `{"choices":[{"message":{"role":"assistant","content":"oi"}}]}`, true},
		{"null content", `{"choices":[{"message":{"content":null}}]}`, true},
		{"absent content", `{"choices":[{"message":{}}]}`, true},
		{"no choices", `{"id":"x"}`, false},
		{"empty choices", `{"choices":[]}`, false},
		{"message not object", `{"choices":[{"message":"oi"}]}`, false},
		{"content not string", `{"choices":[{"message":{"content":42}}]}`, false},
		{"not json", `<html>`, false},
	}
	for _, tc := range cases {
		err := ValidateEnvelope([]byte(tc.body))
		if tc.ok && err != nil {
			t.Fatalf("%s: want=nil got=%v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: want error got=nil", tc.name)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		status int
		want   bool
	}{
		{429, true},
		{500, true},
		{503, true},
		{400, false},
		{401, false},
		{404, false},
	}
	for _, tc := range cases {
		got := IsRetryable(&HTTPError{StatusCode: tc.status})
		if got != tc.want {
			t.Fatalf("IsRetryable(%d): want=%v got=%v", tc.status, tc.want, got)
		}
	}
	if IsRetryable(nil) {
		t.Fatalf("IsRetryable(nil): want=false got=true")
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter("3"); got.Seconds() != 3 {
		t.Fatalf("parseRetryAfter(3): want=3s got=%v", got)
	}
	if got := parseRetryAfter(""); got != 0 {
		t.Fatalf("parseRetryAfter(empty): want=0 got=%v", got)
	}
	if got := parseRetryAfter("soon"); got != 0 {
		t.Fatalf("parseRetryAfter(soon): want=0 got=%v", got)
	}
}
