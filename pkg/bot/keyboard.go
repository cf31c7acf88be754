package bot

import (
	tele "gopkg.in/telebot.v3"
)

// Buttons carrying the same step share a unique; the payload tells them apart.
var (
	btnCarsPage   = tele.Btn{Unique: "cars_page"}
	btnCarOpen    = tele.Btn{Unique: "car_open"}
	btnRegField   = tele.Btn{Unique: "reg_field"}
	btnRegYear    = tele.Btn{Unique: "reg_year"}
	btnRegBrand   = tele.Btn{Unique: "reg_brand"}
	btnRegModel   = tele.Btn{Unique: "reg_model"}
	btnRegSeats   = tele.Btn{Unique: "reg_seats"}
	btnRegMotion  = tele.Btn{Unique: "reg_motion"}
	btnRegFuel    = tele.Btn{Unique: "reg_fuel"}
	btnRegParking = tele.Btn{Unique: "reg_parking"}
	btnRegPeriod  = tele.Btn{Unique: "reg_period"}
	btnRegSubmit  = tele.Btn{Unique: "reg_submit"}
	btnRegBack    = tele.Btn{Unique: "reg_back"}
	btnUpPhotos   = tele.Btn{Unique: "up_photos"}
	btnUpDocs     = tele.Btn{Unique: "up_docs"}
	btnRePhotos   = tele.Btn{Unique: "re_photos"}
	btnReDocs     = tele.Btn{Unique: "re_docs"}
	btnPriceStep  = tele.Btn{Unique: "price_step"}
	btnPriceOK    = tele.Btn{Unique: "price_ok"}
)

type choice struct {
	Text string
	Data string
}

// grid lays choices out perColumn buttons per row.
func grid(menu *tele.ReplyMarkup, unique string, choices []choice, perRow int) []tele.Row {
	var rows []tele.Row
	var currentRow []tele.Btn

	for i, ch := range choices {
		currentRow = append(currentRow, menu.Data(ch.Text, unique, ch.Data))
		if (i+1)%perRow == 0 {
			rows = append(rows, menu.Row(currentRow...))
			currentRow = []tele.Btn{}
		}
	}
	if len(currentRow) > 0 {
		rows = append(rows, menu.Row(currentRow...))
	}
	return rows
}
