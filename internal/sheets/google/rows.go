package google

import (
	"strings"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

// headerRow names the columns written by eventRow, in order.
var headerRow = []any{
	"occurred_at", "event_id", "action", "entity", "id", "user_id",
	"date", "description", "category", "kind", "amount",
}

// columnRange is the A1 span covering headerRow.
const columnRange = "A:K"

func eventRow(ev *amqp.LedgerEvent) []any {
	kind := core.KindExpense
	if ev.IsIncome {
		kind = core.KindIncome
	}
	amount := ""
	if ev.Entity != amqp.EntityCategory {
		amount = ev.Amount().String()
	}
	return []any{
		ev.OccurredAt.UTC().Format(time.RFC3339),
		ev.EventID,
		string(ev.Action),
		string(ev.Entity),
		ev.ID,
		ev.UserID,
		ev.Date,
		textCell(ev.Description),
		textCell(ev.CategoryName),
		string(kind),
		amount,
	}
}

// textCell keeps user text from being evaluated as a formula, since rows are
// written with USER_ENTERED.
func textCell(s string) string {
	if s != "" && strings.ContainsAny(s[:1], "=+-@") {
		return "'" + s
	}
	return s
}
