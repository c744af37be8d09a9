package mines

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"
)

// CallbackPrefix is the prefix for all mines callback data.
const CallbackPrefix = "mines_"

// EncodeCallback encodes an action and parameter into callback data.
func EncodeCallback(action string, param string) string {
	if param != "" {
		return fmt.Sprintf("%s%s_%s", CallbackPrefix, action, param)
	}
	return fmt.Sprintf("%s%s", CallbackPrefix, action)
}

// DecodeCallback decodes callback data into action and parameter.
func DecodeCallback(data string) (action string, param string) {
	if !strings.HasPrefix(data, CallbackPrefix) {
		return "", ""
	}

	content := strings.TrimPrefix(data, CallbackPrefix)
	parts := strings.SplitN(content, "_", 2)
	action = parts[0]
	if len(parts) > 1 {
		param = parts[1]
	}
	return action, param
}

// BuildBoard renders the 5x5 grid as an inline keyboard. Revealed cells
// show a gem and dead buttons; hidden cells carry reveal callbacks. A
// cash-out row is appended once something is revealed.
func BuildBoard(session *Session) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	rows := make([][]tele.InlineButton, 0, 6)
	for r := 0; r < 5; r++ {
		row := make([]tele.InlineButton, 0, 5)
		for col := 0; col < 5; col++ {
			cell := r*5 + col
			btn := tele.InlineButton{
				Text: "⬜",
				Data: EncodeCallback("reveal", strconv.Itoa(cell)),
			}
			if session.isRevealed(cell) {
				btn.Text = "💎"
				btn.Data = EncodeCallback("noop", "")
			}
			row = append(row, btn)
		}
		rows = append(rows, row)
	}

	if len(session.Revealed) > 0 {
		rows = append(rows, []tele.InlineButton{{
			Text: "💰 Cash Out",
			Data: EncodeCallback("cashout", ""),
		}})
	}

	markup.InlineKeyboard = rows
	return markup
}

// BuildRevealedBoard renders the final board after a bust, with every mine
// uncovered and no live buttons.
func BuildRevealedBoard(session *Session, hitCell int) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	rows := make([][]tele.InlineButton, 0, 5)
	for r := 0; r < 5; r++ {
		row := make([]tele.InlineButton, 0, 5)
		for col := 0; col < 5; col++ {
			cell := r*5 + col
			text := "⬜"
			switch {
			case cell == hitCell:
				text = "💥"
			case session.Mines[cell]:
				text = "💣"
			case session.isRevealed(cell):
				text = "💎"
			}
			row = append(row, tele.InlineButton{
				Text: text,
				Data: EncodeCallback("noop", ""),
			})
		}
		rows = append(rows, row)
	}

	markup.InlineKeyboard = rows
	return markup
}
