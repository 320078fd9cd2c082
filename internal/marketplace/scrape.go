package marketplace

import (
	"regexp"
	"strconv"
	"strings"

	"marketbot/internal/domain"
)

// The marketplace has no JSON API for most seller pages, so a handful of
// values are scraped out of HTML. Each scraper below is a small, isolated
// pattern match; if the markup shifts, these functions are the only thing
// that needs touching.

var chatItem = regexp.MustCompile(`(?s)<a[^>]*data-id="(\d+)"[^>]*>.*?media-user-name[^>]*>\s*([^<]+?)\s*</`)

// findChatNode locates the conversation node for username in the chat list page.
func findChatNode(html, username string) (int64, bool) {
	for _, m := range chatItem.FindAllStringSubmatch(html, -1) {
		if strings.TrimSpace(m[2]) != username {
			continue
		}
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		return id, true
	}
	return 0, false
}

var (
	lotGameAttr   = regexp.MustCompile(`data-game="(\d+)"`)
	currencyGame  = regexp.MustCompile(`(?s)<input[^>]*name="game"[^>]*value="(\d+)"`)
	currencyGame2 = regexp.MustCompile(`(?s)<input[^>]*value="(\d+)"[^>]*name="game"`)
)

// findGameID extracts the game id from a category's trade page. Lot pages
// carry it as a button attribute, currency pages as a hidden form input.
func findGameID(html string, typ domain.CategoryType) (int64, bool) {
	var m []string
	if typ == domain.CategoryCurrency {
		m = currencyGame.FindStringSubmatch(html)
		if m == nil {
			m = currencyGame2.FindStringSubmatch(html)
		}
	} else {
		m = lotGameAttr.FindStringSubmatch(html)
	}
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

var offerLink = regexp.MustCompile(`(?s)<a[^>]*href="[^"]*/lots/offer\?id=(\d+)"[^>]*>(?:.*?<div[^>]*class="[^"]*tc-desc-text[^"]*"[^>]*>\s*([^<]*))?`)

// parseListings extracts the account's active listing refs from the seller's
// offers page.
func parseListings(html string) []domain.ListingRef {
	var refs []domain.ListingRef
	seen := make(map[int64]struct{})
	for _, m := range offerLink.FindAllStringSubmatch(html, -1) {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		refs = append(refs, domain.ListingRef{ID: id, Title: strings.TrimSpace(m[2])})
	}
	return refs
}

var (
	inputTag    = regexp.MustCompile(`<input[^>]*>`)
	textareaTag = regexp.MustCompile(`(?s)<textarea[^>]*name="([^"]+)"[^>]*>(.*?)</textarea>`)
	selectTag   = regexp.MustCompile(`(?s)<select[^>]*name="([^"]+)"[^>]*>(.*?)</select>`)
	selectedOpt = regexp.MustCompile(`<option[^>]*selected[^>]*value="([^"]*)"|<option[^>]*value="([^"]*)"[^>]*selected`)
	attrName    = regexp.MustCompile(`name="([^"]+)"`)
	attrValue   = regexp.MustCompile(`value="([^"]*)"`)
)

// parseFormFields flattens a listing edit form into name/value pairs so the
// form can be echoed back to the save endpoint.
func parseFormFields(html string) map[string]string {
	fields := make(map[string]string)

	for _, tag := range inputTag.FindAllString(html, -1) {
		name := attrName.FindStringSubmatch(tag)
		if name == nil {
			continue
		}
		value := ""
		if v := attrValue.FindStringSubmatch(tag); v != nil {
			value = v[1]
		}
		fields[name[1]] = value
	}

	for _, m := range textareaTag.FindAllStringSubmatch(html, -1) {
		fields[m[1]] = strings.TrimSpace(m[2])
	}

	for _, m := range selectTag.FindAllStringSubmatch(html, -1) {
		opt := selectedOpt.FindStringSubmatch(m[2])
		if opt == nil {
			continue
		}
		value := opt[1]
		if value == "" {
			value = opt[2]
		}
		fields[m[1]] = value
	}

	return fields
}
