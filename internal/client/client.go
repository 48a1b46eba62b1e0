package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/Domenick1991/parkinglot/internal/service/auth"
	"github.com/Domenick1991/parkinglot/internal/service/sessions"
	"github.com/Domenick1991/parkinglot/internal/service/spaces"
	"github.com/Domenick1991/parkinglot/internal/service/vehicles"
)

// Client calls the parking REST API. Every 401 goes through the ExpiryGuard
// and surfaces as *AuthExpiredError.
type Client struct {
	baseURL string
	http    *http.Client
	guard   *ExpiryGuard

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func New(baseURL string, guard *ExpiryGuard, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		guard:   guard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Login(ctx context.Context, username, password string) (*auth.LoginResult, error) {
	var result auth.LoginResult
	body := map[string]string{"username": username, "password": password}
	if err := c.send(ctx, http.MethodPost, "/auth/login", body, &result, false); err != nil {
		return nil, err
	}
	c.setToken(result.Token)
	if c.guard != nil {
		c.guard.Reset()
	}
	return &result, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.setToken("")
	return nil
}

func (c *Client) SessionInfo(ctx context.Context) (*auth.SessionInfo, error) {
	return call[auth.SessionInfo](ctx, c, http.MethodGet, "/auth/session-info", nil)
}

func (c *Client) ListSpaces(ctx context.Context, filter domain.SpaceFilter) ([]domain.ParkingSpace, error) {
	q := url.Values{}
	setQuery(q, "state", string(filter.State))
	setQuery(q, "type", string(filter.Type))
	setQuery(q, "section", filter.Section)
	return callList[domain.ParkingSpace](ctx, c, http.MethodGet, withQuery("/api/spaces", q), nil)
}

func (c *Client) SpaceStats(ctx context.Context) (*domain.SpaceStats, error) {
	return call[domain.SpaceStats](ctx, c, http.MethodGet, "/api/spaces/stats", nil)
}

func (c *Client) GetSpace(ctx context.Context, id int64) (*domain.ParkingSpace, error) {
	return call[domain.ParkingSpace](ctx, c, http.MethodGet, fmt.Sprintf("/api/spaces/%d", id), nil)
}

func (c *Client) CreateSpace(ctx context.Context, input spaces.CreateSpaceInput) (*domain.ParkingSpace, error) {
	return call[domain.ParkingSpace](ctx, c, http.MethodPost, "/api/spaces", input)
}

func (c *Client) UpdateSpace(ctx context.Context, id int64, input spaces.UpdateSpaceInput) (*domain.ParkingSpace, error) {
	return call[domain.ParkingSpace](ctx, c, http.MethodPut, fmt.Sprintf("/api/spaces/%d", id), input)
}

func (c *Client) SetSpaceState(ctx context.Context, id int64, state domain.SpaceState) (*domain.ParkingSpace, error) {
	body := map[string]string{"state": string(state)}
	return call[domain.ParkingSpace](ctx, c, http.MethodPatch, fmt.Sprintf("/api/spaces/%d/state", id), body)
}

func (c *Client) DeleteSpace(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/spaces/%d", id), nil, nil)
}

func (c *Client) Enter(ctx context.Context, plate string, vehicleType domain.VehicleType) (*domain.Session, error) {
	body := sessions.EnterInput{Plate: plate, VehicleType: string(vehicleType)}
	return call[domain.Session](ctx, c, http.MethodPost, "/api/sessions/enter", body)
}

func (c *Client) Exit(ctx context.Context, sessionID int64, method domain.PaymentMethod) (*domain.Receipt, error) {
	body := sessions.ExitInput{PaymentMethod: string(method)}
	return call[domain.Receipt](ctx, c, http.MethodPost, fmt.Sprintf("/api/sessions/%d/exit", sessionID), body)
}

func (c *Client) ListActive(ctx context.Context, filter domain.ActiveFilter) ([]domain.ActiveSession, error) {
	q := url.Values{}
	setQuery(q, "vehicle_type", string(filter.VehicleType))
	setQuery(q, "plate", filter.PlateSubstring)
	if filter.MinElapsedHours > 0 {
		q.Set("min_hours", strconv.FormatFloat(filter.MinElapsedHours, 'f', -1, 64))
	}
	if filter.Alert {
		q.Set("alert", "true")
	}
	return callList[domain.ActiveSession](ctx, c, http.MethodGet, withQuery("/api/sessions/active", q), nil)
}

func (c *Client) GetSession(ctx context.Context, id int64) (*domain.Session, error) {
	return call[domain.Session](ctx, c, http.MethodGet, fmt.Sprintf("/api/sessions/%d", id), nil)
}

func (c *Client) ListTransactions(ctx context.Context, since time.Time) ([]domain.TransactionRow, error) {
	q := url.Values{}
	if !since.IsZero() {
		q.Set("since", since.UTC().Format(time.RFC3339))
	}
	return callList[domain.TransactionRow](ctx, c, http.MethodGet, withQuery("/api/transactions", q), nil)
}

func (c *Client) TransactionStats(ctx context.Context) (*domain.TransactionStats, error) {
	return call[domain.TransactionStats](ctx, c, http.MethodGet, "/api/transactions/stats", nil)
}

func (c *Client) ListVehicles(ctx context.Context, filter domain.VehicleFilter) ([]domain.Vehicle, error) {
	q := url.Values{}
	setQuery(q, "category", string(filter.Category))
	setQuery(q, "search", filter.Search)
	return callList[domain.Vehicle](ctx, c, http.MethodGet, withQuery("/api/vehicles", q), nil)
}

func (c *Client) GetVehicle(ctx context.Context, plate string) (*domain.Vehicle, error) {
	return call[domain.Vehicle](ctx, c, http.MethodGet, "/api/vehicles/"+url.PathEscape(plate), nil)
}

func (c *Client) CreateVehicle(ctx context.Context, input vehicles.VehicleInput) (*domain.Vehicle, error) {
	return call[domain.Vehicle](ctx, c, http.MethodPost, "/api/vehicles", input)
}

func (c *Client) UpdateVehicle(ctx context.Context, plate string, input vehicles.VehicleInput) (*domain.Vehicle, error) {
	return call[domain.Vehicle](ctx, c, http.MethodPut, "/api/vehicles/"+url.PathEscape(plate), input)
}

func (c *Client) DeleteVehicle(ctx context.Context, plate string) error {
	return c.do(ctx, http.MethodDelete, "/api/vehicles/"+url.PathEscape(plate), nil, nil)
}

func (c *Client) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	return call[domain.Dashboard](ctx, c, http.MethodGet, "/api/reports/dashboard", nil)
}

func (c *Client) OccupancyByType(ctx context.Context) (map[domain.VehicleType]domain.TypeOccupancy, error) {
	var occupancy map[domain.VehicleType]domain.TypeOccupancy
	if err := c.do(ctx, http.MethodGet, "/api/reports/occupancy", nil, &occupancy); err != nil {
		return nil, err
	}
	return occupancy, nil
}

func (c *Client) RevenueByPeriod(ctx context.Context) (*domain.RevenueByPeriod, error) {
	return call[domain.RevenueByPeriod](ctx, c, http.MethodGet, "/api/reports/revenue", nil)
}

func (c *Client) FrequentVehicles(ctx context.Context, limit int) ([]domain.FrequentVehicle, error) {
	return callList[domain.FrequentVehicle](ctx, c, http.MethodGet, "/api/reports/frequent?limit="+strconv.Itoa(limit), nil)
}

func (c *Client) PaymentMethods(ctx context.Context) ([]domain.PaymentMethodTotals, error) {
	return callList[domain.PaymentMethodTotals](ctx, c, http.MethodGet, "/api/reports/payment-methods", nil)
}

func (c *Client) RecentActivity(ctx context.Context, limit int) ([]domain.Activity, error) {
	return callList[domain.Activity](ctx, c, http.MethodGet, "/api/reports/recent?limit="+strconv.Itoa(limit), nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	return callList[domain.User](ctx, c, http.MethodGet, "/api/users", nil)
}

func (c *Client) CreateUser(ctx context.Context, input auth.CreateUserInput) (*domain.User, error) {
	return call[domain.User](ctx, c, http.MethodPost, "/api/users", input)
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d", id), nil, nil)
}

func (c *Client) ChangePassword(ctx context.Context, id int64, password string) error {
	body := map[string]string{"password": password}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/users/%d/password", id), body, nil)
}

func (c *Client) ChangeRole(ctx context.Context, id int64, role domain.Role) (*domain.User, error) {
	body := map[string]string{"role": string(role)}
	return call[domain.User](ctx, c, http.MethodPut, fmt.Sprintf("/api/users/%d/role", id), body)
}

func call[T any](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	var out T
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func callList[T any](ctx context.Context, c *Client, method, path string, body any) ([]T, error) {
	var out []T
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.send(ctx, method, path, body, out, true)
}

// send performs one request. guard401 is false only for login, where a 401
// means bad credentials rather than an expired session.
func (c *Client) send(ctx context.Context, method, path string, body, out any, guard401 bool) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		msg := errorMessage(data, resp.Status)
		if !guard401 {
			return &APIError{Status: resp.StatusCode, Message: msg}
		}
		if c.guard != nil {
			c.guard.Trigger()
		}
		return &AuthExpiredError{Message: msg}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data, resp.Status)}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func errorMessage(data []byte, fallback string) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return fallback
}

func setQuery(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
