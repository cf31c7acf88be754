package bot

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	tele "gopkg.in/telebot.v3"

	"partnerbot/pkg/logger"
	"partnerbot/pkg/models"
	"partnerbot/pkg/registration"
)

// handlePhoto fills the next empty slot of whichever upload step is active.
func (b *Bot) handlePhoto(c tele.Context) error {
	s := b.session(c.Sender().ID)

	s.mu.Lock()
	state, d := s.State, s.Draft
	s.mu.Unlock()

	var (
		slots *registration.SlotSet
		guard *registration.RequestGuard
		kind  string
	)
	switch {
	case state == StatePhotos && d != nil:
		slots, guard, kind = d.Photos, &d.PhotoUpload, "photos"
	case state == StateDocuments && d != nil:
		slots, guard, kind = d.Documents, &d.DocumentUpload, "docs"
	default:
		return c.Send(messages["not_in_step"])
	}
	if guard.State().Status == registration.RequestPending {
		return b.alert(c, registration.AlertInFlight)
	}

	idx, empty := slots.NextEmpty()
	if !empty {
		return c.Send(slotsText(slots, kind)+"\n\n"+messages["slots_full"], slotsOpts(slots, kind, d.ID())...)
	}

	photo := c.Message().Photo
	data, err := b.download(&photo.File)
	if err != nil {
		b.Log.Error("failed to download photo", logger.Int64("telegram_id", c.Sender().ID), logger.Error(err))
		return b.alert(c, registration.AlertGeneric)
	}

	name := fmt.Sprintf("%s_%d_%s.jpg", kind, d.ID(), slots.Name(idx))
	slots.Set(idx, models.UploadFile{Name: name, Data: data})

	txt := fmt.Sprintf(messages["photo_saved"], slotLabels[slots.Name(idx)]) + "\n\n" + slotsText(slots, kind)
	return c.Send(txt, slotsOpts(slots, kind, d.ID())...)
}

func (b *Bot) download(f *tele.File) ([]byte, error) {
	rc, err := b.files.File(f)
	if err != nil {
		return nil, errors.Wrap(err, "get telegram file")
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrap(err, "read telegram file")
	}
	return data, nil
}

// slotsText shows progress and names the slot that is expected next.
func slotsText(slots *registration.SlotSet, kind string) string {
	txt := fmt.Sprintf(messages[kind+"_title"], slots.FilledCount(), slots.Len())
	if idx, empty := slots.NextEmpty(); empty {
		txt += "\n" + fmt.Sprintf(messages[kind+"_next"], slotLabels[slots.Name(idx)])
	}
	return txt
}

// slotsOpts offers the upload button once every slot is filled, and a
// re-pick button as soon as any slot is.
func slotsOpts(slots *registration.SlotSet, kind string, carID int64) []interface{} {
	opts := []interface{}{tele.ModeHTML}
	if slots.FilledCount() == 0 {
		return opts
	}

	upload, repick := btnUpPhotos.Unique, btnRePhotos.Unique
	if kind == "docs" {
		upload, repick = btnUpDocs.Unique, btnReDocs.Unique
	}
	id := strconv.FormatInt(carID, 10)

	menu := &tele.ReplyMarkup{}
	var row []tele.Btn
	if slots.Complete() {
		row = append(row, menu.Data(messages["upload"], upload, id))
	}
	row = append(row, menu.Data(messages["repick"], repick, id))
	menu.Inline(menu.Row(row...))
	return append(opts, menu)
}

func (b *Bot) handleUploadPhotos(c tele.Context) error {
	return b.uploadStep(c, StatePhotos, (*registration.Workflow).UploadPhotos)
}

func (b *Bot) handleUploadDocuments(c tele.Context) error {
	return b.uploadStep(c, StateDocuments, (*registration.Workflow).UploadDocuments)
}

type uploadFunc func(*registration.Workflow, context.Context, *models.Session, *registration.Draft) (registration.Destination, error)

func (b *Bot) uploadStep(c tele.Context, state string, upload uploadFunc) error {
	s := b.session(c.Sender().ID)
	d, ok := b.draftFor(c, s, state)
	if !ok {
		return b.handleStaleCallback(c)
	}
	sess, ok := b.partner(c)
	if !ok {
		return nil
	}

	_ = c.Respond(&tele.CallbackResponse{Text: "⏳"})
	dest, err := upload(b.Svc.Registration(), context.Background(), sess, d)
	if err != nil {
		if errors.Is(err, registration.ErrInFlight) || errors.Is(err, registration.ErrAlreadyDone) {
			return b.sendAlert(c, err)
		}
		_ = b.sendAlert(c, err)
		slots, kind := d.Photos, "photos"
		if state == StateDocuments {
			slots, kind = d.Documents, "docs"
		}
		return c.Send(slotsText(slots, kind), slotsOpts(slots, kind, d.ID())...)
	}
	return b.navigate(c, sess, s, d, dest)
}

func (b *Bot) handleRepickPhotos(c tele.Context) error {
	s := b.session(c.Sender().ID)
	d, ok := b.draftFor(c, s, StatePhotos)
	if !ok {
		return b.handleStaleCallback(c)
	}
	return b.repick(c, d.Photos, &d.PhotoUpload, "photos")
}

func (b *Bot) handleRepickDocuments(c tele.Context) error {
	s := b.session(c.Sender().ID)
	d, ok := b.draftFor(c, s, StateDocuments)
	if !ok {
		return b.handleStaleCallback(c)
	}
	return b.repick(c, d.Documents, &d.DocumentUpload, "docs")
}

// repick empties every slot so a rejected batch can be chosen again.
func (b *Bot) repick(c tele.Context, slots *registration.SlotSet, guard *registration.RequestGuard, kind string) error {
	if guard.State().Status == registration.RequestPending {
		return b.alert(c, registration.AlertInFlight)
	}
	slots.Clear()
	return b.show(c, messages["slots_cleared"]+"\n\n"+slotsText(slots, kind))
}

// sendAlert reports err as a message; used once the callback has already
// been answered.
func (b *Bot) sendAlert(c tele.Context, err error) error {
	kind := registration.Classify(err)
	if kind == registration.AlertGeneric {
		b.Log.Error("request failed", logger.Int64("telegram_id", c.Sender().ID), logger.Error(err))
	}
	return c.Send(alertText(kind))
}
