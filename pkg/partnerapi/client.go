package partnerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"partnerbot/pkg/models"
)

const defaultBaseURL = "https://minhhungcar.xyz"

type Client struct {
	baseURL string
	httpc   *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpc: &http.Client{
			Timeout: timeout,
		},
	}
}

type envelope struct {
	Message   string          `json:"message"`
	ErrorCode int             `json:"error_code"`
	Data      json.RawMessage `json:"data"`
}

type loginResp struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID          int64  `json:"id"`
		PhoneNumber string `json:"phone_number"`
	} `json:"user"`
}

// Login exchanges partner credentials for an access token. The returned
// session has no TelegramID; callers bind it.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	if creds.Role == "" {
		creds.Role = "partner"
	}
	var r loginResp
	if err := c.doJSON(ctx, nil, http.MethodPost, "/login", nil, creds, &r); err != nil {
		return nil, err
	}
	if r.AccessToken == "" {
		return nil, errors.New("login: empty access token")
	}
	phone := r.User.PhoneNumber
	if phone == "" {
		phone = creds.PhoneNumber
	}
	return &models.Session{
		PartnerID:   r.User.ID,
		PhoneNumber: phone,
		AccessToken: r.AccessToken,
	}, nil
}

func (c *Client) GetRegisterMetadata(ctx context.Context, sess *models.Session) (*models.RegisterMetadata, error) {
	var md models.RegisterMetadata
	if err := c.doJSON(ctx, sess, http.MethodGet, "/register_car_metadata", nil, nil, &md); err != nil {
		return nil, err
	}
	return &md, nil
}

func (c *Client) GetParkingLots(ctx context.Context, sess *models.Session, seatType int) ([]models.Option, error) {
	q := url.Values{}
	q.Set("seat_type", strconv.Itoa(seatType))
	var lots []models.Option
	if err := c.doJSON(ctx, sess, http.MethodGet, "/register_car_metadata/parking_lot", q, nil, &lots); err != nil {
		return nil, err
	}
	return lots, nil
}

type createCarResp struct {
	Car models.Car `json:"car"`
}

func (c *Client) CreateCar(ctx context.Context, sess *models.Session, car models.NewCar) (*models.Car, error) {
	if !sess.Authorized() {
		return nil, ErrUnauthorized
	}
	var r createCarResp
	if err := c.doJSON(ctx, sess, http.MethodPost, "/partner/car", nil, car, &r); err != nil {
		return nil, err
	}
	return &r.Car, nil
}

func (c *Client) UpdateCarPrice(ctx context.Context, sess *models.Session, upd models.PriceUpdate) error {
	if !sess.Authorized() {
		return ErrUnauthorized
	}
	return c.doJSON(ctx, sess, http.MethodPut, "/partner/car/price", nil, upd, nil)
}

func (c *Client) GetCar(ctx context.Context, sess *models.Session, carID int64) (*models.Car, error) {
	if !sess.Authorized() {
		return nil, ErrUnauthorized
	}
	var car models.Car
	if err := c.doJSON(ctx, sess, http.MethodGet, "/partner/car/"+strconv.FormatInt(carID, 10), nil, nil, &car); err != nil {
		return nil, err
	}
	return &car, nil
}

func (c *Client) ListCars(ctx context.Context, sess *models.Session, f models.CarFilter) ([]*models.Car, error) {
	if !sess.Authorized() {
		return nil, ErrUnauthorized
	}
	q := url.Values{}
	q.Set("offset", strconv.Itoa(f.Offset))
	q.Set("limit", strconv.Itoa(f.Limit))
	if f.Status != "" {
		q.Set("car_status", string(f.Status))
	}
	var cars []*models.Car
	if err := c.doJSON(ctx, sess, http.MethodGet, "/partner/cars", q, nil, &cars); err != nil {
		return nil, err
	}
	return cars, nil
}

// UploadCarDocuments sends files as one multipart batch tagged with category.
func (c *Client) UploadCarDocuments(ctx context.Context, sess *models.Session, carID int64, category models.DocumentCategory, files []models.UploadFile) error {
	if !sess.Authorized() {
		return ErrUnauthorized
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("car_id", strconv.FormatInt(carID, 10)); err != nil {
		return errors.Wrap(err, "write car_id")
	}
	if err := mw.WriteField("document_category", string(category)); err != nil {
		return errors.Wrap(err, "write document_category")
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			return errors.Wrap(err, "create form file")
		}
		if _, err := fw.Write(f.Data); err != nil {
			return errors.Wrap(err, "write form file")
		}
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "close multipart")
	}

	req, err := c.newRequest(ctx, sess, http.MethodPost, "/partner/car/document", nil, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, nil)
}

func (c *Client) doJSON(ctx context.Context, sess *models.Session, method, path string, q url.Values, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal body")
		}
		rd = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, sess, method, path, q, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, sess *models.Session, method, path string, q url.Values, body io.Reader) (*http.Request, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	u = u.JoinPath(path)
	if q != nil {
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}
	req.Header.Set("Accept", "application/json")
	if sess.Authorized() {
		req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read body")
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode/100 == 2 {
			return errors.Wrap(err, "decode")
		}
	}

	if resp.StatusCode/100 != 2 || env.ErrorCode != 0 {
		return &APIError{
			HTTPStatus: resp.StatusCode,
			Code:       env.ErrorCode,
			Message:    env.Message,
		}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.Wrap(err, "decode data")
	}
	return nil
}
