package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"marketbot/internal/domain"
)

// Updates is one batch of observed marketplace changes.
type Updates struct {
	Messages      []domain.MessageEvent
	OrdersChanged bool
	NewOrders     []domain.Order
}

// UpdateWatcher polls the marketplace's runner endpoint the way its own
// frontend does and diffs the result against the previously seen state.
// It is stateful and owned by a single polling goroutine.
type UpdateWatcher struct {
	client *Client
	tag    string

	lastMessageByNode map[int64]string
	seenOrders        map[string]struct{}
	primed            bool
}

func NewUpdateWatcher(client *Client) *UpdateWatcher {
	return &UpdateWatcher{
		client:            client,
		tag:               randTag(),
		lastMessageByNode: make(map[int64]string),
		seenOrders:        make(map[string]struct{}),
	}
}

const tagAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func randTag() string {
	b := make([]byte, 10)
	for i := range b {
		b[i] = tagAlphabet[rand.Intn(len(tagAlphabet))]
	}
	return string(b)
}

type runnerObject struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
	Tag  string          `json:"tag"`
}

// FetchUpdates performs one poll cycle. The first cycle primes the seen
// state and reports nothing, so a restart does not replay history.
func (w *UpdateWatcher) FetchUpdates(ctx context.Context) (Updates, error) {
	objects, err := json.Marshal([]map[string]any{
		{"type": "chat_bookmarks", "id": w.tag, "tag": w.tag, "data": false},
		{"type": "orders_counters", "id": w.tag, "tag": w.tag, "data": false},
	})
	if err != nil {
		return Updates{}, fmt.Errorf("fetch updates: encode: %w", err)
	}

	form := url.Values{
		"objects": {string(objects)},
		"request": {"false"},
	}
	body, err := w.client.postForm(ctx, "fetch updates", "/runner/", form)
	if err != nil {
		return Updates{}, err
	}

	var reply struct {
		Objects []runnerObject `json:"objects"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return Updates{}, fmt.Errorf("fetch updates: decode: %w", err)
	}

	var up Updates
	ordersCounterMoved := false
	for _, obj := range reply.Objects {
		switch obj.Type {
		case "chat_bookmarks":
			up.Messages = append(up.Messages, w.diffChats(obj)...)
		case "orders_counters":
			ordersCounterMoved = true
		}
	}

	if ordersCounterMoved {
		changed, newOrders, err := w.diffOrders(ctx)
		if err != nil {
			return Updates{}, err
		}
		up.OrdersChanged = changed
		up.NewOrders = newOrders
	}

	if !w.primed {
		w.primed = true
		return Updates{}, nil
	}
	return up, nil
}

var chatPreview = regexp.MustCompile(`(?s)<a[^>]*class="[^"]*contact-item[^"]*"[^>]*data-id="(\d+)"[^>]*>.*?media-user-name[^>]*>\s*([^<]+?)\s*<.*?contact-item-message[^>]*>\s*([^<]*)`)

// diffChats extracts chat previews from a chat_bookmarks object and returns
// one MessageEvent per conversation whose visible last message changed.
// Messages the bot itself sent move the preview too; callers that send must
// record the sent text via NoteSent so the next poll does not echo it back.
func (w *UpdateWatcher) diffChats(obj runnerObject) []domain.MessageEvent {
	var data struct {
		HTML string `json:"html"`
	}
	if err := json.Unmarshal(obj.Data, &data); err != nil {
		return nil
	}

	var events []domain.MessageEvent
	now := time.Now()
	for _, m := range chatPreview.FindAllStringSubmatch(data.HTML, -1) {
		node, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		text := strings.TrimSpace(m[3])
		if text == "" || w.lastMessageByNode[node] == text {
			continue
		}
		w.lastMessageByNode[node] = text
		events = append(events, domain.MessageEvent{
			ChannelID:      node,
			Text:           text,
			SenderUsername: strings.TrimSpace(m[2]),
			SentAt:         now,
			Tag:            obj.Tag,
		})
	}
	return events
}

// NoteSent records text as the latest message in node's conversation so the
// poller does not report the bot's own reply as an inbound message.
func (w *UpdateWatcher) NoteSent(node int64, text string) {
	w.lastMessageByNode[node] = strings.TrimSpace(text)
}

func (w *UpdateWatcher) diffOrders(ctx context.Context) (bool, []domain.Order, error) {
	orders, err := w.client.ListOrders(ctx, true, true, true)
	if err != nil {
		return false, nil, err
	}

	changed := false
	var fresh []domain.Order
	for _, o := range orders {
		if _, ok := w.seenOrders[o.ID]; ok {
			continue
		}
		w.seenOrders[o.ID] = struct{}{}
		changed = true
		if !w.primed {
			continue
		}
		if o.Status == domain.OrderOutstanding {
			fresh = append(fresh, o)
		}
	}
	return changed, fresh, nil
}

var orderRow = regexp.MustCompile(`(?s)<a[^>]*class="([^"]*tc-item[^"]*)"[^>]*>(.*?)</a>`)

var (
	orderID    = regexp.MustCompile(`(?s)tc-order[^>]*>\s*([^<]+)`)
	orderTitle = regexp.MustCompile(`(?s)order-desc[^>]*>\s*<div[^>]*>\s*([^<]+)`)
	orderPrice = regexp.MustCompile(`(?s)tc-price[^>]*>\s*([\d.,]+)`)
	orderBuyer = regexp.MustCompile(`(?s)media-user-name[^>]*>\s*<span[^>]*data-href="[^"]*/users/(\d+)/?"[^>]*>\s*([^<]+)`)
)

// ListOrders scrapes the account's sales page. Row CSS classes encode the
// status: "warning" is a refund, "info" is outstanding, anything else is
// completed.
func (c *Client) ListOrders(ctx context.Context, includeOutstanding, includeCompleted, includeRefund bool) ([]domain.Order, error) {
	body, err := c.get(ctx, "list orders", "/orders/trade")
	if err != nil {
		return nil, err
	}

	var orders []domain.Order
	for _, row := range orderRow.FindAllStringSubmatch(string(body), -1) {
		class, inner := row[1], row[2]

		var status domain.OrderStatus
		switch {
		case strings.Contains(class, "warning"):
			if !includeRefund {
				continue
			}
			status = domain.OrderRefund
		case strings.Contains(class, "info"):
			if !includeOutstanding {
				continue
			}
			status = domain.OrderOutstanding
		default:
			if !includeCompleted {
				continue
			}
			status = domain.OrderCompleted
		}

		id := orderID.FindStringSubmatch(inner)
		title := orderTitle.FindStringSubmatch(inner)
		buyer := orderBuyer.FindStringSubmatch(inner)
		if id == nil || title == nil || buyer == nil {
			continue
		}

		price := 0.0
		if p := orderPrice.FindStringSubmatch(inner); p != nil {
			price, _ = strconv.ParseFloat(strings.ReplaceAll(p[1], ",", "."), 64)
		}
		buyerID, _ := strconv.ParseInt(buyer[1], 10, 64)

		orders = append(orders, domain.Order{
			ID:            strings.TrimSpace(id[1]),
			Title:         strings.TrimSpace(title[1]),
			Price:         price,
			BuyerUsername: strings.TrimSpace(buyer[2]),
			BuyerID:       buyerID,
			Status:        status,
		})
	}
	return orders, nil
}
