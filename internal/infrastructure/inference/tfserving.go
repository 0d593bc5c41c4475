package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stenosis-api/internal/domain/entity"
	apperrors "stenosis-api/pkg/errors"
)

// ServingClient клиент модели, развёрнутой в TensorFlow Serving (REST API).
type ServingClient struct {
	baseURL string
	model   string
	width   int
	height  int
	client  *http.Client

	version string
}

// NewServingClient создаёт клиента; версия модели заполняется при Ping.
func NewServingClient(baseURL, model string, width, height int, timeout time.Duration) *ServingClient {
	return &ServingClient{
		baseURL: baseURL,
		model:   model,
		width:   width,
		height:  height,
		client:  &http.Client{Timeout: timeout},
	}
}

type modelStatusResponse struct {
	ModelVersionStatus []struct {
		Version string `json:"version"`
		State   string `json:"state"`
	} `json:"model_version_status"`
}

// Ping проверяет, что у модели есть версия в состоянии AVAILABLE.
func (c *ServingClient) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/v1/models/%s", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.WrapExternalError(err, "model server is unreachable").WithContext("url", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewExternalError(fmt.Sprintf("model status request failed with status: %d", resp.StatusCode)).
			WithContext("url", url)
	}

	var status modelStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return apperrors.WrapExternalError(err, "decode model status")
	}

	for _, v := range status.ModelVersionStatus {
		if v.State == "AVAILABLE" {
			c.version = v.Version
			return nil
		}
	}
	return apperrors.NewExternalError(fmt.Sprintf("model %s has no available version", c.model))
}

func (c *ServingClient) Info() entity.ModelInfo {
	return entity.ModelInfo{
		Name:        c.model,
		Backend:     "remote",
		Version:     c.version,
		InputWidth:  c.width,
		InputHeight: c.height,
	}
}

type predictRequest struct {
	Instances [][][][1]float32 `json:"instances"`
}

type predictResponse struct {
	Predictions []any  `json:"predictions"`
	Error       string `json:"error"`
}

// Segment отправляет кадр в формате 1 x H x W x 1 и возвращает карту вероятностей.
func (c *ServingClient) Segment(ctx context.Context, frame entity.Frame) (entity.ProbabilityMap, error) {
	if frame.Width != c.width || frame.Height != c.height {
		return entity.ProbabilityMap{}, apperrors.NewValidationError("frame size does not match model input").
			WithContext("width", frame.Width).
			WithContext("height", frame.Height)
	}

	instance := make([][][1]float32, frame.Height)
	for y := range instance {
		row := make([][1]float32, frame.Width)
		for x := range row {
			row[x][0] = frame.At(x, y)
		}
		instance[y] = row
	}

	body, err := json.Marshal(predictRequest{Instances: [][][][1]float32{instance}})
	if err != nil {
		return entity.ProbabilityMap{}, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/models/%s:predict", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return entity.ProbabilityMap{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return entity.ProbabilityMap{}, apperrors.WrapExternalError(err, "inference request failed")
	}
	defer resp.Body.Close()

	var result predictResponse
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(raw, &result)
		return entity.ProbabilityMap{}, apperrors.NewExternalError(
			fmt.Sprintf("inference failed with status: %d", resp.StatusCode)).
			WithContext("detail", result.Error)
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return entity.ProbabilityMap{}, apperrors.WrapExternalError(err, "decode inference response")
	}
	if len(result.Predictions) == 0 {
		return entity.ProbabilityMap{}, apperrors.NewExternalError("inference response has no predictions")
	}

	pix := make([]float32, 0, frame.Width*frame.Height)
	pix, err = flatten(result.Predictions[0], pix)
	if err != nil {
		return entity.ProbabilityMap{}, apperrors.WrapExternalError(err, "decode inference response")
	}
	if len(pix) != frame.Width*frame.Height {
		return entity.ProbabilityMap{}, apperrors.NewExternalError("unexpected prediction size").
			WithContext("expected", frame.Width*frame.Height).
			WithContext("actual", len(pix))
	}

	return entity.ProbabilityMap{Width: frame.Width, Height: frame.Height, Pix: pix}, nil
}

// flatten разворачивает вложенные массивы чисел (H x W x 1 или H x W).
func flatten(v any, out []float32) ([]float32, error) {
	switch t := v.(type) {
	case float64:
		return append(out, float32(t)), nil
	case []any:
		var err error
		for _, item := range t {
			if out, err = flatten(item, out); err != nil {
				return nil, err
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected prediction element %T", v)
	}
}
