package marketplace

import (
	"testing"

	"marketbot/internal/domain"
)

func TestFindChatNode(t *testing.T) {
	html := `
	<a class="contact-item" data-id="100200">
	  <div class="media-user-name">alice</div>
	</a>
	<a class="contact-item" data-id="100300">
	  <div class="media-user-name">bob</div>
	</a>`

	id, ok := findChatNode(html, "bob")
	if !ok || id != 100300 {
		t.Errorf("expected 100300, got %d ok=%v", id, ok)
	}
	if _, ok := findChatNode(html, "carol"); ok {
		t.Error("expected no match for unknown user")
	}
}

func TestFindGameID(t *testing.T) {
	lotPage := `<div class="col-sm-6"><button data-game="41" class="btn">Raise</button></div>`
	if id, ok := findGameID(lotPage, domain.CategoryLot); !ok || id != 41 {
		t.Errorf("lot page: got %d ok=%v", id, ok)
	}

	currencyPage := `<form><input type="hidden" name="game" value="77"></form>`
	if id, ok := findGameID(currencyPage, domain.CategoryCurrency); !ok || id != 77 {
		t.Errorf("currency page: got %d ok=%v", id, ok)
	}
}

func TestParseFormFields(t *testing.T) {
	html := `
	<input type="hidden" name="csrf_token" value="tok123">
	<input type="text" name="price" value="9.99">
	<input type="checkbox" name="active" value="on">
	<textarea name="fields[desc]">Hand-farmed gold</textarea>
	<select name="node_id"><option value="1">A</option><option selected value="2">B</option></select>`

	fields := parseFormFields(html)
	want := map[string]string{
		"csrf_token":   "tok123",
		"price":        "9.99",
		"active":       "on",
		"fields[desc]": "Hand-farmed gold",
		"node_id":      "2",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("field %s: expected %q, got %q", k, v, fields[k])
		}
	}
}

func TestParseModalEntries_SkipsMalformed(t *testing.T) {
	html := `<div class="checkbox"><input value="abc"> Broken</div>` +
		`<div class="checkbox"><input type="checkbox" value="7"> Valid</div>`
	entries := parseModalEntries(html)
	if len(entries) != 1 || entries[0].ID != 7 {
		t.Errorf("unexpected entries: %+v", entries)
	}
}
