package bot

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"

	"partnerbot/config"
	"partnerbot/pkg/logger"
	"partnerbot/pkg/models"
	"partnerbot/pkg/registration"
	"partnerbot/service"
)

// UserSession is the chat-local state of one partner. It only stages input
// that has not been submitted yet; everything else lives on the backend.
type UserSession struct {
	mu sync.Mutex

	State       string
	Draft       *registration.Draft
	Metadata    *models.RegisterMetadata
	ParkingLots []models.Option
	Degraded    bool
	Page        int
}

const (
	StateIdle         = "idle"
	StateCarForm      = "car_form"
	StateLicensePlate = "awaiting_license_plate"
	StateDescription  = "awaiting_description"
	StatePhotos       = "awaiting_photos"
	StateDocuments    = "awaiting_documents"
	StatePrice        = "awaiting_price"
)

// fileSource downloads files users sent to the bot.
type fileSource interface {
	File(file *tele.File) (io.ReadCloser, error)
}

type Bot struct {
	Bot *tele.Bot
	Log logger.ILogger
	Cfg *config.Config
	Svc service.IServiceManager

	files    fileSource
	mu       sync.Mutex
	sessions map[int64]*UserSession
	refresh  *registration.RefreshSequencer
}

func New(cfg *config.Config, svc service.IServiceManager, log logger.ILogger) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.PartnerBotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Error("telegram handler failed", logger.Error(err))
		},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}
	bot := &Bot{
		Bot:      b,
		Log:      log,
		Cfg:      cfg,
		Svc:      svc,
		files:    b,
		sessions: make(map[int64]*UserSession),
		refresh:  registration.NewRefreshSequencer(),
	}
	bot.registerHandlers()
	return bot, nil
}

func (b *Bot) Start() {
	b.Log.Info("🤖 Partner bot started")
	b.Bot.Start()
}

func (b *Bot) Stop() {
	b.Bot.Stop()
}

func (b *Bot) registerHandlers() {
	b.Bot.Handle("/start", b.handleStart)
	b.Bot.Handle("/login", b.handleLogin)
	b.Bot.Handle("/logout", b.handleLogout)
	b.Bot.Handle("/register", b.handleRegisterStart)
	b.Bot.Handle("/cars", b.handleCars)
	b.Bot.Handle(messages["menu_register"], b.handleRegisterStart)
	b.Bot.Handle(messages["menu_cars"], b.handleCars)

	b.Bot.Handle(&btnCarsPage, b.handleCarsPage)
	b.Bot.Handle(&btnCarOpen, b.handleCarOpen)

	b.Bot.Handle(&btnRegField, b.handleFormField)
	b.Bot.Handle(&btnRegYear, b.handleYearSelection)
	b.Bot.Handle(&btnRegBrand, b.handleBrandSelection)
	b.Bot.Handle(&btnRegModel, b.handleModelSelection)
	b.Bot.Handle(&btnRegSeats, b.handleSeatsSelection)
	b.Bot.Handle(&btnRegMotion, b.handleMotionSelection)
	b.Bot.Handle(&btnRegFuel, b.handleFuelSelection)
	b.Bot.Handle(&btnRegParking, b.handleParkingSelection)
	b.Bot.Handle(&btnRegPeriod, b.handlePeriodSelection)
	b.Bot.Handle(&btnRegBack, b.handleFormBack)
	b.Bot.Handle(&btnRegSubmit, b.handleFormSubmit)

	b.Bot.Handle(&btnUpPhotos, b.handleUploadPhotos)
	b.Bot.Handle(&btnUpDocs, b.handleUploadDocuments)
	b.Bot.Handle(&btnRePhotos, b.handleRepickPhotos)
	b.Bot.Handle(&btnReDocs, b.handleRepickDocuments)
	b.Bot.Handle(&btnPriceStep, b.handlePriceStep)
	b.Bot.Handle(&btnPriceOK, b.handlePriceConfirm)

	b.Bot.Handle(tele.OnPhoto, b.handlePhoto)
	b.Bot.Handle(tele.OnText, b.handleText)
	b.Bot.Handle(tele.OnCallback, b.handleStaleCallback)
}

func (b *Bot) session(teleID int64) *UserSession {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[teleID]
	if !ok {
		s = &UserSession{State: StateIdle}
		b.sessions[teleID] = s
	}
	return s
}

func (b *Bot) dropSession(teleID int64) {
	b.mu.Lock()
	delete(b.sessions, teleID)
	b.mu.Unlock()
}

// partner loads the signed-in credential for the sender, replying with the
// login hint when there is none.
func (b *Bot) partner(c tele.Context) (*models.Session, bool) {
	sess, err := b.Svc.Session().Get(context.Background(), c.Sender().ID)
	if err != nil {
		b.Log.Error("failed to load partner session", logger.Error(err))
		b.alert(c, registration.AlertGeneric)
		return nil, false
	}
	if !sess.Authorized() {
		b.alert(c, registration.AlertUnauthorized)
		return nil, false
	}
	return sess, true
}

// alert answers a callback with a popup, or a message otherwise.
func (b *Bot) alert(c tele.Context, kind registration.AlertKind) error {
	txt := alertText(kind)
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: txt, ShowAlert: true})
	}
	return c.Send(txt)
}

func (b *Bot) alertErr(c tele.Context, err error) error {
	kind := registration.Classify(err)
	if kind == registration.AlertGeneric {
		b.Log.Error("request failed", logger.Int64("telegram_id", c.Sender().ID), logger.Error(err))
	}
	return b.alert(c, kind)
}

// show replaces the current bot message when answering a button and sends
// a new one otherwise.
func (b *Bot) show(c tele.Context, what interface{}, opts ...interface{}) error {
	opts = append(opts, tele.ModeHTML)
	if c.Callback() != nil {
		_ = c.Respond()
		return c.Edit(what, opts...)
	}
	return c.Send(what, opts...)
}

func (b *Bot) handleStart(c tele.Context) error {
	sess, err := b.Svc.Session().Get(context.Background(), c.Sender().ID)
	if err != nil {
		return b.alertErr(c, err)
	}
	if !sess.Authorized() {
		return c.Send(messages["welcome"]+"\n\n"+messages["login_hint"], tele.ModeHTML)
	}
	return b.showMenu(c)
}

func (b *Bot) showMenu(c tele.Context) error {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(menu.Row(menu.Text(messages["menu_register"])), menu.Row(menu.Text(messages["menu_cars"])))
	return c.Send(messages["menu"], menu)
}

func (b *Bot) handleLogin(c tele.Context) error {
	args := c.Args()
	// The password should not stay in the chat history.
	if c.Message() != nil {
		_ = c.Delete()
	}
	if len(args) < 2 {
		return c.Send(messages["login_hint"], tele.ModeHTML)
	}

	_, err := b.Svc.Session().SignIn(context.Background(), c.Sender().ID, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return c.Send(messages["login_failed"])
	}
	b.dropSession(c.Sender().ID)
	c.Send(messages["login_ok"])
	return b.showMenu(c)
}

func (b *Bot) handleLogout(c tele.Context) error {
	if err := b.Svc.Session().SignOut(context.Background(), c.Sender().ID); err != nil {
		return b.alertErr(c, err)
	}
	b.dropSession(c.Sender().ID)
	return c.Send(messages["logout_ok"], tele.RemoveKeyboard)
}

func (b *Bot) handleText(c tele.Context) error {
	s := b.session(c.Sender().ID)

	s.mu.Lock()
	state := s.State
	s.mu.Unlock()

	switch state {
	case StateLicensePlate:
		return b.handleLicensePlateInput(c, s)
	case StateDescription:
		return b.handleDescriptionInput(c, s)
	}
	return nil
}

func (b *Bot) handleStaleCallback(c tele.Context) error {
	return c.Respond(&tele.CallbackResponse{Text: messages["stale_step"]})
}

func (b *Bot) logStep(c tele.Context, dest registration.Destination) {
	b.Log.Info(fmt.Sprintf("navigate to %s", dest.Screen),
		logger.Int64("telegram_id", c.Sender().ID), logger.Int64("car_id", dest.CarID))
}
