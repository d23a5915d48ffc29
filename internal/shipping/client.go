package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrUnavailable = errors.New("carrier unavailable")

// Rate is one shipping option for a destination pincode.
type Rate struct {
	MethodID          string          `json:"methodId"`
	Label             string          `json:"label"`
	Price             decimal.Decimal `json:"price"`
	EstimatedDelivery string          `json:"estimatedDelivery,omitempty"`
	Pincode           string          `json:"pincode"`
}

// Client talks to the carrier's serviceability API. The carrier issues a
// bearer token from an email/password login; tokens are long-lived so the
// client caches one and refreshes on expiry.
type Client struct {
	baseURL  string
	email    string
	password string
	http     *http.Client
	log      *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(baseURL, email, password string, log *zap.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		email:    email,
		password: password,
		http:     &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

func (c *Client) authToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	body, _ := json.Marshal(map[string]string{"email": c.email, "password": c.password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/external/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: login status %d", ErrUnavailable, res.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode login: %v", ErrUnavailable, err)
	}
	if out.Token == "" {
		return "", fmt.Errorf("%w: empty token", ErrUnavailable)
	}

	c.token = out.Token
	// carrier tokens last ten days; refresh well before that
	c.tokenExpiry = time.Now().Add(9 * 24 * time.Hour)
	return c.token, nil
}

// Serviceability returns courier options that deliver to the given pincode.
func (c *Client) Serviceability(ctx context.Context, pincode string, weightKg float64) ([]Rate, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/external/courier/serviceability/?pickup_postcode=%s&delivery_postcode=%s&weight=%s&cod=0",
		c.baseURL, pickupPincode, pincode, strconv.FormatFloat(weightKg, 'f', 2, 64))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		c.log.Warn("carrier serviceability failed",
			zap.Int("status", res.StatusCode),
			zap.String("pincode", pincode))
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, res.StatusCode)
	}

	var out struct {
		Data struct {
			AvailableCourierCompanies []struct {
				CourierCompanyID int     `json:"courier_company_id"`
				CourierName      string  `json:"courier_name"`
				Rate             float64 `json:"rate"`
				ETD              string  `json:"etd"`
			} `json:"available_courier_companies"`
		} `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode serviceability: %v", ErrUnavailable, err)
	}

	rates := make([]Rate, 0, len(out.Data.AvailableCourierCompanies))
	for _, cc := range out.Data.AvailableCourierCompanies {
		rates = append(rates, Rate{
			MethodID:          strconv.Itoa(cc.CourierCompanyID),
			Label:             cc.CourierName,
			Price:             decimal.NewFromFloat(cc.Rate).Round(2),
			EstimatedDelivery: cc.ETD,
			Pincode:           pincode,
		})
	}
	return rates, nil
}

// warehouse origin for rate calculation
const pickupPincode = "110001"
