package registration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"partnerbot/pkg/logger"
	"partnerbot/pkg/models"
	"partnerbot/pkg/partnerapi"
)

type fakeBackend struct {
	mu sync.Mutex

	md         *models.RegisterMetadata
	mdCalls    int
	lots       []models.Option
	lotsErr    error
	created    *models.Car
	createErr  error
	createReqs []models.NewCar
	uploadErr  error
	uploads    []models.DocumentCategory
	uploadLens []int
	priceErr   error
	prices     []models.PriceUpdate
	car        *models.Car
	carErr     error
	cars       []*models.Car
	filters    []models.CarFilter
}

func (f *fakeBackend) GetRegisterMetadata(ctx context.Context, sess *models.Session) (*models.RegisterMetadata, error) {
	f.mdCalls++
	return f.md, nil
}

func (f *fakeBackend) GetParkingLots(ctx context.Context, sess *models.Session, seatType int) ([]models.Option, error) {
	return f.lots, f.lotsErr
}

func (f *fakeBackend) CreateCar(ctx context.Context, sess *models.Session, car models.NewCar) (*models.Car, error) {
	f.createReqs = append(f.createReqs, car)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeBackend) UploadCarDocuments(ctx context.Context, sess *models.Session, carID int64, category models.DocumentCategory, files []models.UploadFile) error {
	f.uploads = append(f.uploads, category)
	f.uploadLens = append(f.uploadLens, len(files))
	return f.uploadErr
}

func (f *fakeBackend) UpdateCarPrice(ctx context.Context, sess *models.Session, upd models.PriceUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices = append(f.prices, upd)
	return f.priceErr
}

func (f *fakeBackend) GetCar(ctx context.Context, sess *models.Session, carID int64) (*models.Car, error) {
	return f.car, f.carErr
}

func (f *fakeBackend) ListCars(ctx context.Context, sess *models.Session, flt models.CarFilter) ([]*models.Car, error) {
	f.filters = append(f.filters, flt)
	return f.cars, nil
}

type memCache struct {
	md *models.RegisterMetadata
}

func (c *memCache) GetMetadata(ctx context.Context) (*models.RegisterMetadata, bool, error) {
	return c.md, c.md != nil, nil
}

func (c *memCache) SetMetadata(ctx context.Context, md *models.RegisterMetadata, ttl time.Duration) error {
	c.md = md
	return nil
}

var sess = &models.Session{TelegramID: 1, AccessToken: "tok"}

func newTestWorkflow(api *fakeBackend) *Workflow {
	return NewWorkflow(api, &memCache{}, time.Minute, logger.NewNop())
}

func apiErr(code int) error {
	return &partnerapi.APIError{HTTPStatus: 400, Code: code}
}

func fillSlots(s *SlotSet) {
	for i := 0; i < s.Len(); i++ {
		s.Set(i, models.UploadFile{Name: s.Name(i) + ".jpg", Data: []byte(s.Name(i))})
	}
}

func TestWorkflow_Metadata_Cached(t *testing.T) {
	api := &fakeBackend{md: &models.RegisterMetadata{Models: testCatalog}}
	w := newTestWorkflow(api)

	md, err := w.Metadata(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, md.Models, len(testCatalog))

	_, err = w.Metadata(context.Background(), sess)
	require.NoError(t, err)
	require.Equal(t, 1, api.mdCalls)
}

func TestWorkflow_ParkingLots_Fallback(t *testing.T) {
	md := &models.RegisterMetadata{ParkingLot: []models.Option{{Code: "home"}, {Code: "garage"}}}

	api := &fakeBackend{lots: []models.Option{{Code: "garage"}}}
	lots, degraded := newTestWorkflow(api).ParkingLots(context.Background(), sess, md, 7)
	require.False(t, degraded)
	require.Equal(t, []models.Option{{Code: "garage"}}, lots)

	api = &fakeBackend{lotsErr: errors.New("boom")}
	lots, degraded = newTestWorkflow(api).ParkingLots(context.Background(), sess, md, 7)
	require.True(t, degraded)
	require.Equal(t, md.ParkingLot, lots)
}

func TestWorkflow_SubmitCar_Success(t *testing.T) {
	api := &fakeBackend{created: &models.Car{ID: 42, CarModel: models.CarModel{BasedPrice: 900000}}}
	w := newTestWorkflow(api)
	d := NewDraft()
	d.Form = completeForm()

	dest, err := w.SubmitCar(context.Background(), sess, d, testCatalog)
	require.NoError(t, err)
	require.Equal(t, ScreenPhotos, dest.Screen)
	require.Equal(t, int64(42), dest.CarID)
	require.Equal(t, 900000, dest.BasedPrice)
	require.Equal(t, RequestSucceeded, d.Submit.State().Status)

	_, err = w.SubmitCar(context.Background(), sess, d, testCatalog)
	require.ErrorIs(t, err, ErrAlreadyDone)
	require.Len(t, api.createReqs, 1)
}

func TestWorkflow_SubmitCar_InvalidPlateNoNetwork(t *testing.T) {
	api := &fakeBackend{}
	d := NewDraft()
	d.Form = completeForm()
	d.Form.LicensePlate = "ABC"

	_, err := newTestWorkflow(api).SubmitCar(context.Background(), sess, d, testCatalog)
	require.Equal(t, AlertInvalidPlate, Classify(err))
	require.Empty(t, api.createReqs)
	require.Equal(t, RequestIdle, d.Submit.State().Status)
}

func TestWorkflow_SubmitCar_DuplicatePlateKeepsForm(t *testing.T) {
	api := &fakeBackend{createErr: apiErr(partnerapi.CodeDuplicatePlate)}
	d := NewDraft()
	d.Form = completeForm()
	before := d.Form

	_, err := newTestWorkflow(api).SubmitCar(context.Background(), sess, d, testCatalog)
	require.Equal(t, AlertDuplicatePlate, Classify(err))
	require.Equal(t, before, d.Form)
	require.Equal(t, RequestFailed, d.Submit.State().Status)
	require.True(t, d.Form.CanSubmit(d.Submit.State()))
}

func TestWorkflow_SubmitCar_ParkingFullForcesHome(t *testing.T) {
	api := &fakeBackend{createErr: apiErr(partnerapi.CodeParkingLotFull)}
	d := NewDraft()
	d.Form = completeForm()

	_, err := newTestWorkflow(api).SubmitCar(context.Background(), sess, d, testCatalog)
	require.Equal(t, AlertParkingLotFull, Classify(err))
	require.Equal(t, ParkingLotFallback, d.Form.ParkingLot)
	require.Equal(t, "51A12345", d.Form.LicensePlate)
}

func TestWorkflow_SubmitCar_ConcurrentFormEdits(t *testing.T) {
	api := &fakeBackend{createErr: apiErr(partnerapi.CodeParkingLotFull)}
	d := NewDraft()
	d.Form = completeForm()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			d.EditForm(func(f *CarForm) { f.Description = "edited" })
			_ = d.FormSnapshot()
		}
	}()

	_, err := newTestWorkflow(api).SubmitCar(context.Background(), sess, d, testCatalog)
	wg.Wait()

	require.Equal(t, AlertParkingLotFull, Classify(err))
	form := d.FormSnapshot()
	require.Equal(t, ParkingLotFallback, form.ParkingLot)
	require.Equal(t, "edited", form.Description)
}

func TestWorkflow_SubmitCar_BasedPriceFromCatalog(t *testing.T) {
	api := &fakeBackend{created: &models.Car{ID: 5}}
	d := NewDraft()
	d.Form = completeForm()

	dest, err := newTestWorkflow(api).SubmitCar(context.Background(), sess, d, testCatalog)
	require.NoError(t, err)
	require.Equal(t, 900000, dest.BasedPrice)
}

func TestWorkflow_UploadPhotos(t *testing.T) {
	api := &fakeBackend{}
	w := newTestWorkflow(api)
	d := DraftFor(Destination{CarID: 42, BasedPrice: 900000})

	d.Photos.Set(0, models.UploadFile{Name: "main.jpg"})
	_, err := w.UploadPhotos(context.Background(), sess, d)
	require.Equal(t, AlertValidation, Classify(err))
	require.Empty(t, api.uploads)

	fillSlots(d.Photos)
	dest, err := w.UploadPhotos(context.Background(), sess, d)
	require.NoError(t, err)
	require.Equal(t, ScreenDocuments, dest.Screen)
	require.Equal(t, []models.DocumentCategory{models.DocumentCategoryCarImages}, api.uploads)
	require.Equal(t, []int{5}, api.uploadLens)
}

func TestWorkflow_UploadPhotos_TooLargeKeepsSlots(t *testing.T) {
	api := &fakeBackend{uploadErr: apiErr(partnerapi.CodeFileTooLarge)}
	w := newTestWorkflow(api)
	d := DraftFor(Destination{CarID: 42, BasedPrice: 900000})
	fillSlots(d.Photos)

	_, err := w.UploadPhotos(context.Background(), sess, d)
	require.Equal(t, AlertFileTooLarge, Classify(err))
	require.True(t, d.Photos.Complete())
	require.Equal(t, 5, d.Photos.FilledCount())

	api.uploadErr = apiErr(partnerapi.CodeUploadProcessing)
	_, err = w.UploadPhotos(context.Background(), sess, d)
	require.Equal(t, AlertUploadProcessing, Classify(err))

	api.uploadErr = nil
	_, err = w.UploadPhotos(context.Background(), sess, d)
	require.NoError(t, err)
	require.Len(t, api.uploads, 3)
}

func TestWorkflow_UploadDocuments(t *testing.T) {
	api := &fakeBackend{uploadErr: errors.New("network down")}
	w := newTestWorkflow(api)
	d := DraftFor(Destination{CarID: 42, BasedPrice: 900000})
	fillSlots(d.Documents)

	_, err := w.UploadDocuments(context.Background(), sess, d)
	require.Equal(t, AlertGeneric, Classify(err))
	require.Equal(t, RequestFailed, d.DocumentUpload.State().Status)

	api.uploadErr = nil
	dest, err := w.UploadDocuments(context.Background(), sess, d)
	require.NoError(t, err)
	require.Equal(t, ScreenPrice, dest.Screen)
	require.Equal(t, []int{2, 2}, api.uploadLens)
	require.Equal(t, models.DocumentCategoryCarCaveat, api.uploads[1])
}

func TestWorkflow_SetPrice_Bounds(t *testing.T) {
	for _, tc := range []struct {
		price int
		ok    bool
	}{
		{99999, false},
		{100000, true},
		{500000, true},
		{900000, true},
		{901000, false},
		{123457, false},
		{500500, false},
	} {
		api := &fakeBackend{}
		d := DraftFor(Destination{CarID: 42, BasedPrice: 900000})
		dest, err := newTestWorkflow(api).SetPrice(context.Background(), sess, d, tc.price)
		if tc.ok {
			require.NoError(t, err, tc.price)
			require.Equal(t, ScreenSuccess, dest.Screen)
			require.Equal(t, []models.PriceUpdate{{CarID: 42, NewPrice: tc.price}}, api.prices)
		} else {
			require.Equal(t, AlertPriceOutOfRange, Classify(err), tc.price)
			require.Empty(t, api.prices)
		}
	}
}

func TestWorkflow_SetPrice_OffGridBasePrice(t *testing.T) {
	api := &fakeBackend{}
	w := newTestWorkflow(api)

	d := DraftFor(Destination{CarID: 42, BasedPrice: 550500})
	_, err := w.SetPrice(context.Background(), sess, d, 549500)
	require.Equal(t, AlertPriceOutOfRange, Classify(err))

	_, err = w.SetPrice(context.Background(), sess, d, 550500)
	require.NoError(t, err)
	require.Equal(t, []models.PriceUpdate{{CarID: 42, NewPrice: 550500}}, api.prices)
}

func TestWorkflow_SetPrice_DoubleSubmitOnce(t *testing.T) {
	api := &fakeBackend{}
	w := newTestWorkflow(api)
	d := DraftFor(Destination{CarID: 42, BasedPrice: 900000})

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = w.SetPrice(context.Background(), sess, d, 800000)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			require.True(t, errors.Is(err, ErrAlreadyDone) || errors.Is(err, ErrInFlight), err)
		}
	}
	require.Equal(t, 1, successes)
	require.Len(t, api.prices, 1)

	_, err := w.SetPrice(context.Background(), sess, d, 800000)
	require.ErrorIs(t, err, ErrAlreadyDone)
}

func TestWorkflow_SetPrice_RejectedReenables(t *testing.T) {
	api := &fakeBackend{priceErr: apiErr(partnerapi.CodePriceRejected)}
	w := newTestWorkflow(api)
	d := DraftFor(Destination{CarID: 42, BasedPrice: 900000})

	_, err := w.SetPrice(context.Background(), sess, d, 800000)
	require.Equal(t, AlertPriceRejected, Classify(err))
	require.Equal(t, RequestFailed, d.PriceUpdate.State().Status)

	api.priceErr = nil
	_, err = w.SetPrice(context.Background(), sess, d, 800000)
	require.NoError(t, err)
}

func TestWorkflow_PriceRange_LoadsBasePrice(t *testing.T) {
	api := &fakeBackend{car: &models.Car{ID: 42, CarModel: models.CarModel{BasedPrice: 600000}}}
	d := DraftFor(Destination{CarID: 42})

	r, err := newTestWorkflow(api).PriceRange(context.Background(), sess, d)
	require.NoError(t, err)
	require.Equal(t, PriceRange{Min: MinPrice, Max: 600000, Step: PriceStep}, r)
	require.Equal(t, 600000, d.Price)
}

func TestWorkflow_PriceRange_NeverProvided(t *testing.T) {
	api := &fakeBackend{car: &models.Car{ID: 42}}
	d := DraftFor(Destination{CarID: 42})

	_, err := newTestWorkflow(api).PriceRange(context.Background(), sess, d)
	require.ErrorIs(t, err, ErrBasePriceUnavailable)
	require.Equal(t, AlertBasePriceUnavailable, Classify(err))
}

func TestWorkflow_Resume(t *testing.T) {
	api := &fakeBackend{car: &models.Car{ID: 9, Status: models.CarStatusPendingCaveat, CarModel: models.CarModel{BasedPrice: 700000}}}
	dest, car, err := newTestWorkflow(api).Resume(context.Background(), sess, 9)
	require.NoError(t, err)
	require.Equal(t, int64(9), car.ID)
	require.Equal(t, ScreenDocuments, dest.Screen)
	require.Equal(t, 700000, dest.BasedPrice)
}

func TestWorkflow_Cars_Pagination(t *testing.T) {
	api := &fakeBackend{}
	_, err := newTestWorkflow(api).Cars(context.Background(), sess, models.CarStatusActive, 2, 10)
	require.NoError(t, err)
	require.Equal(t, models.CarFilter{Status: models.CarStatusActive, Offset: 20, Limit: 10}, api.filters[0])
}
