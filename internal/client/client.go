// Package client — HTTP-клиент к /api для view-контроллеров и CLI.
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
	"time"

	"fleetdash/internal/apperr"
	"fleetdash/internal/models"
	"fleetdash/internal/pipeline"
	"fleetdash/internal/views"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	base string
	hc   *http.Client
}

// New — base вида "http://localhost:8080"; hc == nil — клиент с таймаутом по умолчанию.
func New(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{base: strings.TrimRight(base, "/"), hc: hc}
}

// do отправляет запрос и декодирует ответ в out. Ответ не 2xx превращается
// в apperr с тем же видом, что и на сервере, и текстом из {"error": ...}.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return apperr.Data(fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Data(fmt.Errorf("decode %s %s: %w", method, path, err))
	}
	return nil
}

func statusError(resp *http.Response) error {
	var b apperr.Body
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&b)
	msg := b.Error
	if msg == "" {
		msg = resp.Status
	}
	switch resp.StatusCode {
	case http.StatusBadRequest:
		return apperr.Invalid(msg)
	case http.StatusNotFound:
		return apperr.NotFoundf(msg)
	default:
		return apperr.Data(errors.New(msg))
	}
}

func listPath(collection, sel string) string {
	p := "/api/" + collection
	if sel != "" {
		p += "?select=" + url.QueryEscape(sel)
	}
	return p
}

func idPath(collection string, id uint, suffix string) string {
	return "/api/" + collection + "/" + strconv.FormatUint(uint64(id), 10) + suffix
}

func (c *Client) ListDevices(ctx context.Context, sel string) ([]models.Device, error) {
	var out []models.Device
	if err := c.do(ctx, http.MethodGet, listPath("devices", sel), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListModels(ctx context.Context, sel string) ([]models.AIModel, error) {
	var out []models.AIModel
	if err := c.do(ctx, http.MethodGet, listPath("models", sel), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListTasks(ctx context.Context, sel string) ([]models.TaskWithRelations, error) {
	var out []models.TaskWithRelations
	if err := c.do(ctx, http.MethodGet, listPath("tasks", sel), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListTerminals(ctx context.Context) ([]models.Terminal, error) {
	var out []models.Terminal
	if err := c.do(ctx, http.MethodGet, "/api/terminals", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetDevice(ctx context.Context, id uint) (*models.Device, error) {
	var out models.Device
	if err := c.do(ctx, http.MethodGet, idPath("devices", id, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetModel(ctx context.Context, id uint) (*models.AIModel, error) {
	var out models.AIModel
	if err := c.do(ctx, http.MethodGet, idPath("models", id, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTask(ctx context.Context, id uint) (*models.TaskWithRelations, error) {
	var out models.TaskWithRelations
	if err := c.do(ctx, http.MethodGet, idPath("tasks", id, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoadDetail — запись для панели деталей по виду.
func (c *Client) LoadDetail(ctx context.Context, kind pipeline.Kind, id uint) (views.Detail, error) {
	switch kind {
	case pipeline.KindDevice:
		d, err := c.GetDevice(ctx, id)
		if err != nil {
			return nil, err
		}
		return views.DeviceDetail{Device: *d}, nil
	case pipeline.KindModel:
		m, err := c.GetModel(ctx, id)
		if err != nil {
			return nil, err
		}
		return views.ModelDetail{Model: *m}, nil
	case pipeline.KindTask:
		t, err := c.GetTask(ctx, id)
		if err != nil {
			return nil, err
		}
		return views.TaskDetail{Task: *t}, nil
	default:
		return nil, apperr.NotFoundf("unknown record type")
	}
}

// CreateDevice — вставка администратором (seed на удалённый сервер).
func (c *Client) CreateDevice(ctx context.Context, d models.Device) (*models.Device, error) {
	var out models.Device
	if err := c.do(ctx, http.MethodPost, "/api/devices", d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type newTask struct {
	Name     string         `json:"name"`
	DeviceID uint           `json:"device_id"`
	ModelID  uint           `json:"model_id"`
	Config   map[string]any `json:"config"`
}

func (c *Client) CreateTask(ctx context.Context, t models.Task) (*models.Task, error) {
	in := newTask{Name: t.Name, DeviceID: t.DeviceID, ModelID: t.ModelID, Config: t.Config}
	if in.Config == nil {
		in.Config = map[string]any{}
	}
	var out models.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetTaskStatus(ctx context.Context, id uint, status models.TaskStatus) (*models.Task, error) {
	in := struct {
		ID     uint              `json:"id"`
		Status models.TaskStatus `json:"status"`
	}{id, status}
	var out models.Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, idPath("tasks", id, ""), nil, nil)
}

type controlResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Device  *models.Device `json:"device"`
}

func (c *Client) control(ctx context.Context, id uint, action string) (*models.Device, error) {
	var out controlResponse
	if err := c.do(ctx, http.MethodPost, idPath("devices", id, "/"+action), nil, &out); err != nil {
		return nil, err
	}
	if !out.Success || out.Device == nil {
		return nil, apperr.Data(fmt.Errorf("%s device %d: %s", action, id, out.Message))
	}
	return out.Device, nil
}

func (c *Client) RecallDevice(ctx context.Context, id uint) (*models.Device, error) {
	return c.control(ctx, id, "recall")
}

func (c *Client) SyncDevice(ctx context.Context, id uint) (*models.Device, error) {
	return c.control(ctx, id, "sync")
}
