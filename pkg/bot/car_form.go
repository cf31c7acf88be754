package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"partnerbot/pkg/logger"
	"partnerbot/pkg/models"
	"partnerbot/pkg/registration"
)

const (
	fieldPlate       = "plate"
	fieldDescription = "desc"
)

func (b *Bot) handleRegisterStart(c tele.Context) error {
	sess, ok := b.partner(c)
	if !ok {
		return nil
	}

	md, err := b.Svc.Registration().Metadata(context.Background(), sess)
	if err != nil {
		return b.alertErr(c, err)
	}

	s := b.session(c.Sender().ID)
	s.mu.Lock()
	s.State = StateCarForm
	s.Draft = registration.NewDraft()
	s.Metadata = md
	s.ParkingLots = md.ParkingLot
	s.Degraded = false
	s.mu.Unlock()

	return b.showForm(c, s)
}

// formSnapshot copies what the form screen needs under the session lock.
type formSnapshot struct {
	form     registration.CarForm
	state    registration.RequestState
	md       *models.RegisterMetadata
	lots     []models.Option
	degraded bool
}

func (s *UserSession) formSnapshot() (formSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Draft == nil || s.Metadata == nil || s.Draft.ID() != 0 {
		return formSnapshot{}, false
	}
	return formSnapshot{
		form:     s.Draft.FormSnapshot(),
		state:    s.Draft.Submit.State(),
		md:       s.Metadata,
		lots:     s.ParkingLots,
		degraded: s.Degraded,
	}, true
}

func (b *Bot) showForm(c tele.Context, s *UserSession) error {
	snap, ok := s.formSnapshot()
	if !ok {
		return b.handleStaleCallback(c)
	}
	f := snap.form

	menu := &tele.ReplyMarkup{}
	field := func(label, value, name string) tele.Row {
		if value == "" {
			value = "-"
		}
		return menu.Row(menu.Data(fmt.Sprintf("%s: %s", label, value), btnRegField.Unique, name))
	}

	rows := []tele.Row{
		field(fieldLabels[registration.FieldLicensePlate], f.LicensePlate, fieldPlate),
		field(fieldLabels[registration.FieldYear], intText(f.Year), registration.FieldYear),
		field(fieldLabels[registration.FieldBrand], f.Brand, registration.FieldBrand),
		field(fieldLabels[registration.FieldModel], f.Model, registration.FieldModel),
		field(fieldLabels[registration.FieldSeats], intText(f.Seats), registration.FieldSeats),
		field(fieldLabels[registration.FieldMotion], optionText(snap.md.Motions, f.MotionCode), registration.FieldMotion),
		field(fieldLabels[registration.FieldFuel], optionText(snap.md.Fuels, f.FuelCode), registration.FieldFuel),
		field(fieldLabels[registration.FieldParkingLot], optionText(snap.lots, f.ParkingLot), registration.FieldParkingLot),
		field(fieldLabels[registration.FieldPeriod], periodText(snap.md.Periods, f.PeriodCode), registration.FieldPeriod),
		field("Mô tả", truncate(f.Description, 24), fieldDescription),
	}
	if f.CanSubmit(snap.state) {
		rows = append(rows, menu.Row(menu.Data(messages["submit"], btnRegSubmit.Unique)))
	}
	menu.Inline(rows...)

	txt := messages["form_title"]
	if snap.degraded {
		txt += "\n\n" + messages["parking_note"]
	}
	return b.show(c, txt, menu)
}

func (b *Bot) handleFormField(c tele.Context) error {
	s := b.session(c.Sender().ID)
	snap, ok := s.formSnapshot()
	if !ok {
		return b.handleStaleCallback(c)
	}
	f := snap.form
	catalog := snap.md.Models

	switch name := c.Callback().Data; name {
	case fieldPlate:
		s.setState(StateLicensePlate)
		_ = c.Respond()
		return c.Send(messages["ask_plate"], tele.ModeHTML)
	case fieldDescription:
		s.setState(StateDescription)
		_ = c.Respond()
		return c.Send(messages["ask_desc"])
	case registration.FieldYear:
		var choices []choice
		for _, y := range registration.Years(catalog) {
			choices = append(choices, choice{Text: strconv.Itoa(y), Data: strconv.Itoa(y)})
		}
		return b.showChoices(c, messages["pick_year"], btnRegYear.Unique, choices, 3)
	case registration.FieldBrand:
		if f.Year == 0 {
			return b.alert(c, registration.AlertValidation)
		}
		return b.showChoices(c, messages["pick_brand"], btnRegBrand.Unique, indexChoices(registration.Brands(catalog, f.Year)), 2)
	case registration.FieldModel:
		if f.Brand == "" {
			return b.alert(c, registration.AlertValidation)
		}
		return b.showChoices(c, messages["pick_model"], btnRegModel.Unique, indexChoices(registration.ModelNames(catalog, f.Year, f.Brand)), 2)
	case registration.FieldSeats:
		if f.Model == "" {
			return b.alert(c, registration.AlertValidation)
		}
		var choices []choice
		for _, n := range registration.SeatCounts(catalog, f.Year, f.Brand, f.Model) {
			choices = append(choices, choice{Text: strconv.Itoa(n), Data: strconv.Itoa(n)})
		}
		return b.showChoices(c, messages["pick_seats"], btnRegSeats.Unique, choices, 4)
	case registration.FieldMotion:
		return b.showChoices(c, messages["pick_motion"], btnRegMotion.Unique, optionChoices(snap.md.Motions), 2)
	case registration.FieldFuel:
		return b.showChoices(c, messages["pick_fuel"], btnRegFuel.Unique, optionChoices(snap.md.Fuels), 2)
	case registration.FieldParkingLot:
		return b.showChoices(c, messages["pick_parking"], btnRegParking.Unique, optionChoices(snap.lots), 1)
	case registration.FieldPeriod:
		var choices []choice
		for _, p := range snap.md.Periods {
			choices = append(choices, choice{Text: p.Text, Data: strconv.Itoa(p.Code)})
		}
		return b.showChoices(c, messages["pick_period"], btnRegPeriod.Unique, choices, 2)
	}
	return c.Respond()
}

func (b *Bot) showChoices(c tele.Context, title, unique string, choices []choice, perRow int) error {
	menu := &tele.ReplyMarkup{}
	rows := grid(menu, unique, choices, perRow)
	rows = append(rows, menu.Row(menu.Data(messages["back"], btnRegBack.Unique)))
	menu.Inline(rows...)
	return b.show(c, title, menu)
}

func (b *Bot) handleFormBack(c tele.Context) error {
	return b.showForm(c, b.session(c.Sender().ID))
}

// updateForm applies fn to the staged form and redraws it.
func (b *Bot) updateForm(c tele.Context, fn func(f *registration.CarForm, md *models.RegisterMetadata) bool) error {
	s := b.session(c.Sender().ID)
	s.mu.Lock()
	d, md := s.Draft, s.Metadata
	s.mu.Unlock()
	if d == nil || md == nil || d.ID() != 0 {
		return b.handleStaleCallback(c)
	}

	ok := false
	d.EditForm(func(f *registration.CarForm) { ok = fn(f, md) })
	if !ok {
		return b.handleStaleCallback(c)
	}
	return b.showForm(c, s)
}

func (b *Bot) handleYearSelection(c tele.Context) error {
	year, err := strconv.Atoi(c.Callback().Data)
	if err != nil {
		return c.Respond()
	}
	return b.updateForm(c, func(f *registration.CarForm, md *models.RegisterMetadata) bool {
		f.SelectYear(year)
		return true
	})
}

func (b *Bot) handleBrandSelection(c tele.Context) error {
	idx, err := strconv.Atoi(c.Callback().Data)
	if err != nil {
		return c.Respond()
	}
	return b.updateForm(c, func(f *registration.CarForm, md *models.RegisterMetadata) bool {
		brands := registration.Brands(md.Models, f.Year)
		if idx < 0 || idx >= len(brands) {
			return false
		}
		f.SelectBrand(brands[idx])
		return true
	})
}

func (b *Bot) handleModelSelection(c tele.Context) error {
	idx, err := strconv.Atoi(c.Callback().Data)
	if err != nil {
		return c.Respond()
	}
	return b.updateForm(c, func(f *registration.CarForm, md *models.RegisterMetadata) bool {
		names := registration.ModelNames(md.Models, f.Year, f.Brand)
		if idx < 0 || idx >= len(names) {
			return false
		}
		f.SelectModel(names[idx])
		return true
	})
}

// handleSeatsSelection also reloads the parking options for the seat count.
func (b *Bot) handleSeatsSelection(c tele.Context) error {
	seats, err := strconv.Atoi(c.Callback().Data)
	if err != nil {
		return c.Respond()
	}
	sess, ok := b.partner(c)
	if !ok {
		return nil
	}

	s := b.session(c.Sender().ID)
	snap, ok := s.formSnapshot()
	if !ok {
		return b.handleStaleCallback(c)
	}
	lots, degraded := b.Svc.Registration().ParkingLots(context.Background(), sess, snap.md, seats)

	s.mu.Lock()
	s.ParkingLots = lots
	s.Degraded = degraded
	s.mu.Unlock()

	return b.updateForm(c, func(f *registration.CarForm, md *models.RegisterMetadata) bool {
		f.SelectSeats(seats)
		return true
	})
}

func (b *Bot) handleMotionSelection(c tele.Context) error {
	code := c.Callback().Data
	return b.updateForm(c, func(f *registration.CarForm, md *models.RegisterMetadata) bool {
		f.MotionCode = code
		return true
	})
}

func (b *Bot) handleFuelSelection(c tele.Context) error {
	code := c.Callback().Data
	return b.updateForm(c, func(f *registration.CarForm, md *models.RegisterMetadata) bool {
		f.FuelCode = code
		return true
	})
}

func (b *Bot) handleParkingSelection(c tele.Context) error {
	code := c.Callback().Data
	return b.updateForm(c, func(f *registration.CarForm, md *models.RegisterMetadata) bool {
		f.ParkingLot = code
		return true
	})
}

func (b *Bot) handlePeriodSelection(c tele.Context) error {
	code, err := strconv.Atoi(c.Callback().Data)
	if err != nil {
		return c.Respond()
	}
	return b.updateForm(c, func(f *registration.CarForm, md *models.RegisterMetadata) bool {
		f.PeriodCode = code
		return true
	})
}

func (b *Bot) handleLicensePlateInput(c tele.Context, s *UserSession) error {
	plate := strings.TrimSpace(c.Text())
	if !registration.ValidLicensePlate(plate) {
		return b.alert(c, registration.AlertInvalidPlate)
	}

	s.mu.Lock()
	d := s.Draft
	s.State = StateCarForm
	s.mu.Unlock()
	if d != nil {
		d.EditForm(func(f *registration.CarForm) { f.LicensePlate = registration.NormalizeLicensePlate(plate) })
	}

	return b.showForm(c, s)
}

func (b *Bot) handleDescriptionInput(c tele.Context, s *UserSession) error {
	desc := strings.TrimSpace(c.Text())
	s.mu.Lock()
	d := s.Draft
	s.State = StateCarForm
	s.mu.Unlock()
	if d != nil {
		d.EditForm(func(f *registration.CarForm) { f.Description = desc })
	}

	return b.showForm(c, s)
}

func (b *Bot) handleFormSubmit(c tele.Context) error {
	sess, ok := b.partner(c)
	if !ok {
		return nil
	}

	s := b.session(c.Sender().ID)
	s.mu.Lock()
	d, md := s.Draft, s.Metadata
	s.mu.Unlock()
	if d == nil || md == nil || d.ID() != 0 {
		return b.handleStaleCallback(c)
	}

	dest, err := b.Svc.Registration().SubmitCar(context.Background(), sess, d, md.Models)
	if err != nil {
		kind := registration.Classify(err)
		b.Log.Warning("car registration rejected", logger.String("alert", string(kind)))
		b.alert(c, kind)
		if kind == registration.AlertParkingLotFull {
			return b.showForm(c, s)
		}
		return nil
	}
	return b.navigate(c, sess, s, d, dest)
}

func (s *UserSession) setState(state string) {
	s.mu.Lock()
	s.State = state
	s.mu.Unlock()
}

func indexChoices(names []string) []choice {
	out := make([]choice, 0, len(names))
	for i, n := range names {
		out = append(out, choice{Text: n, Data: strconv.Itoa(i)})
	}
	return out
}

func optionChoices(opts []models.Option) []choice {
	out := make([]choice, 0, len(opts))
	for _, o := range opts {
		out = append(out, choice{Text: o.Text, Data: o.Code})
	}
	return out
}

func optionText(opts []models.Option, code string) string {
	for _, o := range opts {
		if o.Code == code {
			return o.Text
		}
	}
	return code
}

func periodText(periods []models.PeriodOption, code int) string {
	for _, p := range periods {
		if p.Code == code {
			return p.Text
		}
	}
	return intText(code)
}

func intText(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
