package bot

import (
	"context"
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v3"

	"partnerbot/pkg/logger"
	"partnerbot/pkg/models"
	"partnerbot/pkg/registration"
)

func (b *Bot) handleCars(c tele.Context) error {
	return b.showCars(c, 0)
}

func (b *Bot) handleCarsPage(c tele.Context) error {
	page, err := strconv.Atoi(c.Callback().Data)
	if err != nil || page < 0 {
		return c.Respond()
	}
	return b.showCars(c, page)
}

// showCars renders one page of the partner's cars. Overlapping refreshes
// are sequenced so an older response never replaces a newer one.
func (b *Bot) showCars(c tele.Context, page int) error {
	sess, ok := b.partner(c)
	if !ok {
		return nil
	}

	teleID := c.Sender().ID
	ticket := b.refresh.Issue(teleID)

	cars, err := b.Svc.Registration().Cars(context.Background(), sess, "", page, b.Cfg.CarsPageSize)
	if err != nil {
		return b.alertErr(c, err)
	}
	if !b.refresh.IsLatest(teleID, ticket) {
		b.Log.Debug("dropping stale car list", logger.Int64("telegram_id", teleID))
		return nil
	}

	s := b.session(teleID)
	s.mu.Lock()
	s.Page = page
	s.mu.Unlock()

	if len(cars) == 0 && page == 0 {
		return b.show(c, messages["no_cars"])
	}

	menu := &tele.ReplyMarkup{}
	rows := grid(menu, btnCarOpen.Unique, carChoices(cars), 1)

	var nav []tele.Btn
	if page > 0 {
		nav = append(nav, menu.Data("⬅️", btnCarsPage.Unique, strconv.Itoa(page-1)))
	}
	if len(cars) == b.Cfg.CarsPageSize {
		nav = append(nav, menu.Data("➡️", btnCarsPage.Unique, strconv.Itoa(page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, menu.Row(nav...))
	}
	menu.Inline(rows...)

	return b.show(c, fmt.Sprintf(messages["cars_title"], page+1), menu)
}

func carChoices(cars []*models.Car) []choice {
	out := make([]choice, 0, len(cars))
	for _, car := range cars {
		out = append(out, choice{
			Text: fmt.Sprintf("%s · %s %s · %s", car.LicensePlate, car.CarModel.Brand, car.CarModel.Model, statusLabel(car.Status)),
			Data: strconv.FormatInt(car.ID, 10),
		})
	}
	return out
}

// handleCarOpen sends the partner to wherever the car's status says its
// registration continues.
func (b *Bot) handleCarOpen(c tele.Context) error {
	carID, err := strconv.ParseInt(c.Callback().Data, 10, 64)
	if err != nil {
		return c.Respond()
	}
	sess, ok := b.partner(c)
	if !ok {
		return nil
	}

	dest, car, err := b.Svc.Registration().Resume(context.Background(), sess, carID)
	if err != nil {
		return b.alertErr(c, err)
	}
	if !dest.InWizard() {
		return b.show(c, carDetailText(car))
	}
	return b.navigate(c, sess, b.session(c.Sender().ID), registration.DraftFor(dest), dest)
}

func carDetailText(car *models.Car) string {
	return fmt.Sprintf(messages["car_detail"],
		car.LicensePlate,
		car.CarModel.Brand, car.CarModel.Model, car.CarModel.Year,
		statusLabel(car.Status),
		formatVND(car.Price),
	)
}

// navigate replaces the session's step with dest. The previous draft is
// discarded, so buttons left on older messages no longer match.
func (b *Bot) navigate(c tele.Context, sess *models.Session, s *UserSession, d *registration.Draft, dest registration.Destination) error {
	b.logStep(c, dest)

	s.mu.Lock()
	s.Draft = d
	switch dest.Screen {
	case registration.ScreenPhotos:
		s.State = StatePhotos
	case registration.ScreenDocuments:
		s.State = StateDocuments
	case registration.ScreenPrice:
		s.State = StatePrice
	default:
		s.State = StateIdle
		s.Draft = nil
	}
	s.mu.Unlock()

	switch dest.Screen {
	case registration.ScreenPhotos:
		return b.show(c, slotsText(d.Photos, "photos"), slotsOpts(d.Photos, "photos", d.ID())...)
	case registration.ScreenDocuments:
		return b.show(c, slotsText(d.Documents, "docs"), slotsOpts(d.Documents, "docs", d.ID())...)
	case registration.ScreenPrice:
		return b.showPrice(c, sess, d)
	case registration.ScreenSuccess:
		return b.show(c, messages["success"])
	}
	return nil
}

// draftFor returns the active draft if it belongs to the car in the
// callback payload and the session is in the expected state.
func (b *Bot) draftFor(c tele.Context, s *UserSession, state string) (*registration.Draft, bool) {
	carID, err := strconv.ParseInt(c.Callback().Data, 10, 64)
	if err != nil {
		return nil, false
	}
	return s.activeDraft(state, carID)
}

func (s *UserSession) activeDraft(state string, carID int64) (*registration.Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.State != state || s.Draft == nil || s.Draft.ID() != carID {
		return nil, false
	}
	return s.Draft, true
}
