package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"partnerbot/pkg/models"
	"partnerbot/pkg/registration"
)

// priceSteps are offered as buttons, in multiples of registration.PriceStep.
var priceSteps = []int{-100, -10, -1, 1, 10, 100}

func (b *Bot) showPrice(c tele.Context, sess *models.Session, d *registration.Draft) error {
	r, err := b.Svc.Registration().PriceRange(context.Background(), sess, d)
	if err != nil {
		return b.alertErr(c, err)
	}
	_, price := d.Prices()
	return b.show(c, priceText(r, price), priceMenu(d.ID()))
}

func priceText(r registration.PriceRange, price int) string {
	return fmt.Sprintf(messages["price_title"], formatVND(r.Max), formatVND(price))
}

func priceMenu(carID int64) *tele.ReplyMarkup {
	id := strconv.FormatInt(carID, 10)
	menu := &tele.ReplyMarkup{}

	var steps []choice
	for _, n := range priceSteps {
		steps = append(steps, choice{Text: stepLabel(n), Data: id + "|" + strconv.Itoa(n)})
	}
	rows := grid(menu, btnPriceStep.Unique, steps, 3)
	rows = append(rows, menu.Row(menu.Data(messages["price_confirm"], btnPriceOK.Unique, id)))
	menu.Inline(rows...)
	return menu
}

func stepLabel(steps int) string {
	k := steps * registration.PriceStep / 1000
	if steps > 0 {
		return fmt.Sprintf("+%dk", k)
	}
	return fmt.Sprintf("%dk", k)
}

// parseStep decodes a "carID|steps" payload.
func parseStep(data string) (carID int64, steps int, ok bool) {
	parts := strings.SplitN(data, "|", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	carID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	steps, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return carID, steps, true
}

func (b *Bot) handlePriceStep(c tele.Context) error {
	carID, steps, ok := parseStep(c.Callback().Data)
	if !ok {
		return c.Respond()
	}
	s := b.session(c.Sender().ID)
	d, ok := s.activeDraft(StatePrice, carID)
	if !ok {
		return b.handleStaleCallback(c)
	}
	if d.PriceUpdate.State().Status == registration.RequestPending {
		return b.alert(c, registration.AlertInFlight)
	}

	based, _ := d.Prices()
	r, err := registration.NewPriceRange(based)
	if err != nil {
		return b.alertErr(c, err)
	}

	price, changed := d.StepPrice(r, steps)
	if !changed {
		// Already at a bound; editing with identical content is rejected by Telegram.
		return c.Respond()
	}
	return b.show(c, priceText(r, price), priceMenu(carID))
}

func (b *Bot) handlePriceConfirm(c tele.Context) error {
	s := b.session(c.Sender().ID)
	d, ok := b.draftFor(c, s, StatePrice)
	if !ok {
		return b.handleStaleCallback(c)
	}
	sess, ok := b.partner(c)
	if !ok {
		return nil
	}

	_, price := d.Prices()
	dest, err := b.Svc.Registration().SetPrice(context.Background(), sess, d, price)
	if err != nil {
		return b.alertErr(c, err)
	}
	return b.navigate(c, sess, s, d, dest)
}
