package registration

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"partnerbot/pkg/logger"
	"partnerbot/pkg/models"
)

// Backend is the subset of the partner REST API the workflow drives.
type Backend interface {
	GetRegisterMetadata(ctx context.Context, sess *models.Session) (*models.RegisterMetadata, error)
	GetParkingLots(ctx context.Context, sess *models.Session, seatType int) ([]models.Option, error)
	CreateCar(ctx context.Context, sess *models.Session, car models.NewCar) (*models.Car, error)
	UploadCarDocuments(ctx context.Context, sess *models.Session, carID int64, category models.DocumentCategory, files []models.UploadFile) error
	UpdateCarPrice(ctx context.Context, sess *models.Session, upd models.PriceUpdate) error
	GetCar(ctx context.Context, sess *models.Session, carID int64) (*models.Car, error)
	ListCars(ctx context.Context, sess *models.Session, f models.CarFilter) ([]*models.Car, error)
}

type MetadataCache interface {
	GetMetadata(ctx context.Context) (*models.RegisterMetadata, bool, error)
	SetMetadata(ctx context.Context, md *models.RegisterMetadata, ttl time.Duration) error
}

// Draft is the locally staged state of one car going through the wizard.
// Chat handlers and workflow calls share it, so Form, CarID, BasedPrice and
// Price are read and written under mu through the methods below.
type Draft struct {
	mu         sync.Mutex
	Form       CarForm
	CarID      int64
	BasedPrice int
	Price      int
	Photos     *SlotSet
	Documents  *SlotSet

	Submit         RequestGuard
	PhotoUpload    RequestGuard
	DocumentUpload RequestGuard
	PriceUpdate    RequestGuard
}

func NewDraft() *Draft {
	return &Draft{
		Photos:    NewPhotoSet(),
		Documents: NewDocumentSet(),
	}
}

// FormSnapshot returns a copy of the staged form.
func (d *Draft) FormSnapshot() CarForm {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Form
}

func (d *Draft) EditForm(fn func(f *CarForm)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(&d.Form)
}

// ID is zero until the car record exists.
func (d *Draft) ID() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.CarID
}

func (d *Draft) Prices() (based, selected int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.BasedPrice, d.Price
}

// StepPrice moves the selected price by steps within r.
func (d *Draft) StepPrice(r PriceRange, steps int) (price int, changed bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.Price
	d.Price = r.Adjust(d.Price, steps)
	return d.Price, d.Price != prev
}

func (d *Draft) destination(screen Screen, status models.CarStatus) Destination {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Destination{Screen: screen, CarID: d.CarID, BasedPrice: d.BasedPrice, Status: status}
}

// DraftFor prepares a draft that resumes the wizard at dest.
func DraftFor(dest Destination) *Draft {
	d := NewDraft()
	d.CarID = dest.CarID
	d.BasedPrice = dest.BasedPrice
	d.Price = dest.BasedPrice
	return d
}

type Workflow struct {
	api      Backend
	cache    MetadataCache
	cacheTTL time.Duration
	log      logger.ILogger
}

func NewWorkflow(api Backend, cache MetadataCache, cacheTTL time.Duration, log logger.ILogger) *Workflow {
	return &Workflow{
		api:      api,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// Metadata returns the registration catalogs, from cache when possible.
// Cache failures are logged and never block registration.
func (w *Workflow) Metadata(ctx context.Context, sess *models.Session) (*models.RegisterMetadata, error) {
	if w.cache != nil {
		md, ok, err := w.cache.GetMetadata(ctx)
		if err != nil {
			w.log.Warning("metadata cache read failed", logger.Error(err))
		}
		w.log.Debug("metadata cache lookup", logger.Bool("hit", ok))
		if ok {
			return md, nil
		}
	}

	md, err := w.api.GetRegisterMetadata(ctx, sess)
	if err != nil {
		w.log.Error("failed to load register metadata", logger.Error(err))
		return nil, err
	}

	if w.cache != nil {
		if err := w.cache.SetMetadata(ctx, md, w.cacheTTL); err != nil {
			w.log.Warning("metadata cache write failed", logger.Error(err))
		}
	}
	return md, nil
}

// ParkingLots returns the parking options for a seat count. If the filtered
// lookup fails the unfiltered catalog list is returned with degraded=true.
func (w *Workflow) ParkingLots(ctx context.Context, sess *models.Session, md *models.RegisterMetadata, seats int) (lots []models.Option, degraded bool) {
	lots, err := w.api.GetParkingLots(ctx, sess, seats)
	if err != nil || len(lots) == 0 {
		w.log.Warning("seat-filtered parking lots unavailable, using unfiltered list",
			logger.Int("seats", seats), logger.Any("err", err))
		return md.ParkingLot, true
	}
	return lots, false
}

// Resolve routes a car and records unrecognised statuses.
func (w *Workflow) Resolve(car *models.Car) Destination {
	dest := Route(car)
	if dest.Unknown {
		w.log.Warning("unknown car status, showing car detail",
			logger.Int64("car_id", car.ID), logger.String("status", string(car.Status)))
	}
	return dest
}

// Resume loads a car and returns where its registration continues.
func (w *Workflow) Resume(ctx context.Context, sess *models.Session, carID int64) (Destination, *models.Car, error) {
	car, err := w.api.GetCar(ctx, sess, carID)
	if err != nil {
		return Destination{}, nil, errors.Wrap(err, "get car")
	}
	return w.Resolve(car), car, nil
}

func (w *Workflow) Cars(ctx context.Context, sess *models.Session, status models.CarStatus, page, pageSize int) ([]*models.Car, error) {
	if page < 0 {
		page = 0
	}
	return w.api.ListCars(ctx, sess, models.CarFilter{
		Status: status,
		Offset: page * pageSize,
		Limit:  pageSize,
	})
}

// SubmitCar creates the car record from the first step. The form is left
// untouched on failure, except that a full parking lot forces the
// fallback parking choice.
func (w *Workflow) SubmitCar(ctx context.Context, sess *models.Session, d *Draft, catalog []models.CarModel) (Destination, error) {
	form := d.FormSnapshot()
	body, model, err := form.NewCar(catalog)
	if err != nil {
		return Destination{}, err
	}
	if err := d.Submit.Begin(); err != nil {
		return Destination{}, err
	}

	car, err := w.api.CreateCar(ctx, sess, body)
	if err != nil {
		kind := Classify(err)
		if kind == AlertParkingLotFull {
			d.EditForm(func(f *CarForm) { f.ParkingLot = ParkingLotFallback })
		}
		d.Submit.Fail(string(kind))
		w.log.Error("create car failed", logger.String("plate", body.LicensePlate), logger.Error(err))
		return Destination{}, err
	}

	based := car.CarModel.BasedPrice
	if based == 0 {
		based = model.BasedPrice
	}
	d.mu.Lock()
	d.CarID = car.ID
	d.BasedPrice = based
	d.Price = based
	d.mu.Unlock()
	d.Submit.Succeed()

	w.log.Info("car created", logger.Int64("car_id", car.ID), logger.Int("based_price", based))
	return d.destination(ScreenPhotos, models.CarStatusPendingImages), nil
}

func (w *Workflow) UploadPhotos(ctx context.Context, sess *models.Session, d *Draft) (Destination, error) {
	if err := w.upload(ctx, sess, d, d.Photos, &d.PhotoUpload, models.DocumentCategoryCarImages); err != nil {
		return Destination{}, err
	}
	return d.destination(ScreenDocuments, models.CarStatusPendingCaveat), nil
}

func (w *Workflow) UploadDocuments(ctx context.Context, sess *models.Session, d *Draft) (Destination, error) {
	if err := w.upload(ctx, sess, d, d.Documents, &d.DocumentUpload, models.DocumentCategoryCarCaveat); err != nil {
		return Destination{}, err
	}
	return d.destination(ScreenPrice, models.CarStatusPendingPrice), nil
}

// upload keeps every picked file on failure so the batch can be retried.
func (w *Workflow) upload(ctx context.Context, sess *models.Session, d *Draft, slots *SlotSet, guard *RequestGuard, category models.DocumentCategory) error {
	carID := d.ID()
	if carID == 0 {
		return &ValidationError{Field: "car_id", Reason: "required"}
	}
	if idx, empty := slots.NextEmpty(); empty {
		return &ValidationError{Field: slots.Name(idx), Reason: "required"}
	}
	if err := guard.Begin(); err != nil {
		return err
	}

	files := slots.Files()
	if files == nil {
		// Cleared between the check and Begin.
		guard.Reset()
		return &ValidationError{Field: slots.Name(0), Reason: "required"}
	}
	if err := w.api.UploadCarDocuments(ctx, sess, carID, category, files); err != nil {
		guard.Fail(string(Classify(err)))
		w.log.Error("car document upload failed",
			logger.Int64("car_id", carID), logger.String("category", string(category)), logger.Error(err))
		return err
	}

	guard.Succeed()
	w.log.Info("car documents uploaded",
		logger.Int64("car_id", carID), logger.String("category", string(category)), logger.Int("files", len(files)))
	return nil
}

// PriceRange returns the allowed range for the draft, loading the base
// price from the backend once if it is unknown.
func (w *Workflow) PriceRange(ctx context.Context, sess *models.Session, d *Draft) (PriceRange, error) {
	carID := d.ID()
	based, _ := d.Prices()
	if based <= 0 && carID != 0 {
		car, err := w.api.GetCar(ctx, sess, carID)
		if err != nil {
			return PriceRange{}, errors.Wrap(err, "get car")
		}
		based = car.CarModel.BasedPrice
	}
	r, err := NewPriceRange(based)
	if err != nil {
		return PriceRange{}, err
	}

	d.mu.Lock()
	d.BasedPrice = based
	if d.Price == 0 || !r.Contains(d.Price) {
		d.Price = r.Max
	}
	d.mu.Unlock()
	return r, nil
}

// SetPrice submits the final price. Once it has succeeded every further
// call returns ErrAlreadyDone. The guard is taken first so concurrent
// presses never both reach the backend.
func (w *Workflow) SetPrice(ctx context.Context, sess *models.Session, d *Draft, price int) (Destination, error) {
	if err := d.PriceUpdate.Begin(); err != nil {
		return Destination{}, err
	}

	r, err := w.PriceRange(ctx, sess, d)
	if err != nil {
		d.PriceUpdate.Reset()
		return Destination{}, err
	}
	if !r.Contains(price) {
		d.PriceUpdate.Reset()
		return Destination{}, &ValidationError{Field: FieldPrice, Reason: "out of range"}
	}

	carID := d.ID()
	if err := w.api.UpdateCarPrice(ctx, sess, models.PriceUpdate{CarID: carID, NewPrice: price}); err != nil {
		d.PriceUpdate.Fail(string(Classify(err)))
		w.log.Error("update car price failed", logger.Int64("car_id", carID), logger.Int("price", price), logger.Error(err))
		return Destination{}, err
	}

	d.mu.Lock()
	d.Price = price
	d.mu.Unlock()
	d.PriceUpdate.Succeed()
	w.log.Info("car price set", logger.Int64("car_id", carID), logger.Int("price", price))
	return d.destination(ScreenSuccess, models.CarStatusPendingApproval), nil
}
