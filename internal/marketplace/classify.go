package marketplace

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"marketbot/internal/domain"
)

// cooldownMarker is the prefix of the marketplace's "wait before raising
// again" message. The marketplace serves it localized; requests pin the
// locale so the marker is stable.
const cooldownMarker = "Подождите"

// rawRaiseReply mirrors the wire shape of a raise response. The error field
// arrives as bool, number, or string depending on the code path; it is kept
// raw and evaluated for truthiness.
type rawRaiseReply struct {
	Error json.RawMessage `json:"error"`
	Msg   string          `json:"msg"`
	Modal string          `json:"modal"`
}

// ClassifyRaiseResponse maps a raw raise reply onto the four response
// variants the workflow understands. The marketplace signals the
// single-category auto-raise both as an explicit false error flag and by
// omitting the error key entirely; both classify as AutoRaised, with a modal
// payload taking precedence when present.
func ClassifyRaiseResponse(body []byte) (domain.RaiseResponse, error) {
	var raw rawRaiseReply
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.RaiseResponse{}, fmt.Errorf("classify raise response: %w", err)
	}

	resp := domain.RaiseResponse{Raw: json.RawMessage(body)}

	if truthy(raw.Error) {
		resp.Message = raw.Msg
		if strings.Contains(raw.Msg, cooldownMarker) {
			resp.Kind = domain.RaiseCooldown
			resp.Wait = ParseCooldown(raw.Msg)
			return resp, nil
		}
		resp.Kind = domain.RaiseError
		return resp, nil
	}

	if strings.TrimSpace(raw.Modal) != "" {
		resp.Kind = domain.RaiseModal
		resp.Entries = parseModalEntries(raw.Modal)
		return resp, nil
	}

	resp.Kind = domain.RaiseAutoRaised
	return resp, nil
}

// truthy evaluates a raw JSON value the way the marketplace's own frontend
// does: absent, null, false, 0, and "" are all "no error".
func truthy(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	switch s {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}

var cooldownNumber = regexp.MustCompile(`(\d+)\s*(\p{L}*)`)

// ParseCooldown extracts a retry delay from a cooldown notice such as
// "Подождите 45 секунд" or "Подождите 2 часа". A message with no
// recognizable duration falls back to one hour, which is the marketplace's
// raise period.
func ParseCooldown(msg string) time.Duration {
	m := cooldownNumber.FindStringSubmatch(msg)
	if m == nil {
		return time.Hour
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Hour
	}

	unit := strings.ToLower(m[2])
	switch {
	case strings.HasPrefix(unit, "сек"):
		return time.Duration(n) * time.Second
	case strings.HasPrefix(unit, "мин"):
		return time.Duration(n) * time.Minute
	case strings.HasPrefix(unit, "час"):
		return time.Duration(n) * time.Hour
	}
	return time.Duration(n) * time.Second
}

var modalCheckbox = regexp.MustCompile(`(?s)<div[^>]*class="[^"]*checkbox[^"]*"[^>]*>.*?<input[^>]*value="(\d+)"[^>]*>\s*([^<]+)`)

// parseModalEntries pulls the selectable (id, name) pairs out of a raise
// modal's HTML fragment. The markup is a flat list of checkbox divs; this is
// deliberately a dumb pattern match so the whole fragile piece stays in one
// replaceable function.
func parseModalEntries(modalHTML string) []domain.ModalEntry {
	var entries []domain.ModalEntry
	for _, m := range modalCheckbox.FindAllStringSubmatch(modalHTML, -1) {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, domain.ModalEntry{
			ID:   id,
			Name: strings.TrimSpace(m[2]),
		})
	}
	return entries
}
