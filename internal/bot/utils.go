package bot

import (
	"fmt"
	"html"
	"strings"
	"time"

	"ration-bot/internal/storage"
)

const displayDate = "02.01.2006"

// FormatOrder renders an order as an HTML summary addressed to the customer.
// User input is escaped.
func FormatOrder(order storage.Order, headline string, loc *time.Location) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s,</b> %s 🎉\n<pre>\n", html.EscapeString(order.FirstName), headline)
	fmt.Fprintf(&sb, "Имя:                  %s %s\n", html.EscapeString(order.FirstName), html.EscapeString(order.LastName))
	fmt.Fprintf(&sb, "Телефон:              %s\n", html.EscapeString(order.Phone))
	fmt.Fprintf(&sb, "Адрес:                %s\n", html.EscapeString(order.Address))
	fmt.Fprintf(&sb, "На сколько дней:      %d\n", order.Duration)
	fmt.Fprintf(&sb, "Когда привезем:       %s\n", formatDay(order.DeliveryDate, loc))
	fmt.Fprintf(&sb, "Дата начала рациона:  %s\n", formatDay(order.EatingDate, loc))
	fmt.Fprintf(&sb, "Комментарии:          %s\n", html.EscapeString(order.Comments))
	sb.WriteString("</pre>")
	return sb.String()
}

func formatDay(day time.Time, loc *time.Location) string {
	return day.In(loc).Format(displayDate)
}
