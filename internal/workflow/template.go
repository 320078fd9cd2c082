package workflow

import (
	"strconv"
	"strings"

	"marketbot/internal/domain"
)

// RenderOrder substitutes order fields into a response template. The
// $product placeholder is left alone; the delivery workflow fills it with
// the popped inventory unit.
func RenderOrder(tpl string, o domain.Order) string {
	return strings.NewReplacer(
		"$order_id", o.ID,
		"$order_title", o.Title,
		"$username", o.BuyerUsername,
		"$price", strconv.FormatFloat(o.Price, 'f', -1, 64),
	).Replace(tpl)
}

// RenderMessage substitutes message fields into a scripted reply or
// notification template.
func RenderMessage(tpl string, m domain.MessageEvent) string {
	return strings.NewReplacer(
		"$username", m.SenderUsername,
		"$message", m.Text,
		"$chat_id", strconv.FormatInt(m.ChannelID, 10),
	).Replace(tpl)
}
