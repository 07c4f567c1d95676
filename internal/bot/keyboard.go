package bot

import (
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	menuPrefix   = "menu:"
	monthPrefix  = "select_month:"
	dayPrefix    = "select_day:"
	answerPrefix = "answer:"
	exportPrefix = "export:"

	menuCreate = menuPrefix + "create"
	menuChange = menuPrefix + "change"
	menuShow   = menuPrefix + "show"

	answerYes = answerPrefix + "yes"
	answerNo  = answerPrefix + "no"

	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"

	daysPerRow = 7
)

var monthNames = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

var exportDays = []struct {
	Offset int
	Label  string
}{
	{0, "Сегодня"},
	{1, "Завтра"},
	{2, "Послезавтра"},
}

func monthName(month time.Time) string {
	return fmt.Sprintf("%s %d", monthNames[month.Month()-1], month.Year())
}

func menuKeyboard() [][]Button {
	return [][]Button{
		{{Text: "🍱 Новый заказ", Data: menuCreate}},
		{{Text: "✏️ Изменить заказ", Data: menuChange}},
		{{Text: "📋 Мой заказ", Data: menuShow}},
	}
}

func yesNoKeyboard() [][]Button {
	return [][]Button{{
		{Text: "Да", Data: answerYes},
		{Text: "Нет", Data: answerNo},
	}}
}

func monthKeyboard(months []time.Time) [][]Button {
	row := make([]Button, 0, len(months))
	for _, m := range months {
		row = append(row, Button{Text: monthName(m), Data: monthPrefix + m.Format(monthLayout)})
	}
	return [][]Button{row}
}

func dayKeyboard(days []time.Time) [][]Button {
	var rows [][]Button
	for i := 0; i < len(days); i += daysPerRow {
		end := min(i+daysPerRow, len(days))
		row := make([]Button, 0, end-i)
		for _, d := range days[i:end] {
			row = append(row, Button{Text: strconv.Itoa(d.Day()), Data: dayPrefix + d.Format(dayLayout)})
		}
		rows = append(rows, row)
	}
	return rows
}

func exportKeyboard() [][]Button {
	row := make([]Button, 0, len(exportDays))
	for _, d := range exportDays {
		row = append(row, Button{Text: d.Label, Data: exportPrefix + strconv.Itoa(d.Offset)})
	}
	return [][]Button{row}
}

func inlineKeyboard(rows [][]Button) tgbotapi.InlineKeyboardMarkup {
	markup := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
		}
		markup = append(markup, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(markup...)
}
