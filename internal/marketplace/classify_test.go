package marketplace

import (
	"testing"
	"time"

	"marketbot/internal/domain"
)

func TestClassify_CooldownSeconds(t *testing.T) {
	resp, err := ClassifyRaiseResponse([]byte(`{"error": true, "msg": "Подождите 45 секунд"}`))
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if resp.Kind != domain.RaiseCooldown {
		t.Fatalf("expected cooldown, got %s", resp.Kind)
	}
	if resp.Wait != 45*time.Second {
		t.Errorf("expected 45s wait, got %s", resp.Wait)
	}
}

func TestClassify_CooldownHours(t *testing.T) {
	resp, err := ClassifyRaiseResponse([]byte(`{"error": 1, "msg": "Подождите 2 часа."}`))
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if resp.Kind != domain.RaiseCooldown || resp.Wait != 2*time.Hour {
		t.Errorf("expected cooldown 2h, got %s %s", resp.Kind, resp.Wait)
	}
}

func TestClassify_UnknownError(t *testing.T) {
	resp, err := ClassifyRaiseResponse([]byte(`{"error": true, "msg": "Что-то пошло не так"}`))
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if resp.Kind != domain.RaiseError {
		t.Errorf("expected error kind, got %s", resp.Kind)
	}
	if resp.Message == "" {
		t.Error("error message not carried")
	}
}

func TestClassify_AutoRaised(t *testing.T) {
	// Explicit false flag and a missing key are the same transition.
	for _, body := range []string{
		`{"error": false, "msg": null}`,
		`{"msg": "ok"}`,
		`{"error": 0}`,
	} {
		resp, err := ClassifyRaiseResponse([]byte(body))
		if err != nil {
			t.Fatalf("classify %s: %v", body, err)
		}
		if resp.Kind != domain.RaiseAutoRaised {
			t.Errorf("%s: expected auto_raised, got %s", body, resp.Kind)
		}
	}
}

func TestClassify_Modal(t *testing.T) {
	modal := `<div class="checkbox"><label><input type="checkbox" value="41"> Accounts</label></div>` +
		`<div class="checkbox"><label><input type="checkbox" value="52"> Top Up</label></div>`
	resp, err := ClassifyRaiseResponse([]byte(`{"error": false, "modal": ` + quoteJSON(modal) + `}`))
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if resp.Kind != domain.RaiseModal {
		t.Fatalf("expected modal, got %s", resp.Kind)
	}
	if len(resp.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(resp.Entries))
	}
	if resp.Entries[0].ID != 41 || resp.Entries[0].Name != "Accounts" {
		t.Errorf("entry 0: %+v", resp.Entries[0])
	}
	if resp.Entries[1].ID != 52 || resp.Entries[1].Name != "Top Up" {
		t.Errorf("entry 1: %+v", resp.Entries[1])
	}
}

func TestParseCooldown_NoNumberFallsBackToHour(t *testing.T) {
	if got := ParseCooldown("Подождите немного"); got != time.Hour {
		t.Errorf("expected 1h fallback, got %s", got)
	}
}

func TestParseCooldown_Minutes(t *testing.T) {
	if got := ParseCooldown("Подождите 5 минут."); got != 5*time.Minute {
		t.Errorf("expected 5m, got %s", got)
	}
}

func quoteJSON(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			out = append(out, '\\', '"')
		case '\\':
			out = append(out, '\\', '\\')
		default:
			out = append(out, s[i])
		}
	}
	return string(append(out, '"'))
}
