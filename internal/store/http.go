package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

const (
	routeCollection = "/objects/%s"
	routeObject     = "/objects/%s/%s"
)

// StatusCodeError возвращается HTTPStore при неожиданном статусе ответа
// удаленного хранилища.
type StatusCodeError struct {
	StatusCode int
	Body       string
}

func (e *StatusCodeError) Error() string {
	return fmt.Sprintf("unexpected store response status %d: %s", e.StatusCode, e.Body)
}

// HTTPStore - реализация Client поверх HTTP API внешнего объектного
// хранилища. Семантика версий та же: ожидаемая версия передается параметром
// expectedVersion, конфликт приходит статусом 409.
type HTTPStore struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPStore(baseURL string) *HTTPStore {
	return &HTTPStore{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
}

func (s *HTTPStore) Create(ctx context.Context, typ string, data json.RawMessage) (*Record, error) {
	endpoint := s.baseURL + fmt.Sprintf(routeCollection, url.PathEscape(typ))
	return s.writeRequest(ctx, http.MethodPost, endpoint, data)
}

func (s *HTTPStore) Get(ctx context.Context, typ, id string) (*Record, error) {
	endpoint := s.baseURL + fmt.Sprintf(routeObject, url.PathEscape(typ), url.PathEscape(id))

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if reqErr != nil {
		return nil, fmt.Errorf("create request: %s", reqErr.Error())
	}

	return s.do(req)
}

func (s *HTTPStore) Update(
	ctx context.Context, typ, id string, data json.RawMessage, expectedVersion int64,
) (*Record, error) {
	endpoint := s.baseURL + fmt.Sprintf(routeObject, url.PathEscape(typ), url.PathEscape(id)) +
		"?expectedVersion=" + strconv.FormatInt(expectedVersion, 10)
	return s.writeRequest(ctx, http.MethodPut, endpoint, data)
}

func (s *HTTPStore) ListByType(ctx context.Context, typ string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	endpoint := s.baseURL + fmt.Sprintf(routeCollection, url.PathEscape(typ)) +
		"?limit=" + strconv.Itoa(limit)

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if reqErr != nil {
		return nil, fmt.Errorf("create request: %s", reqErr.Error())
	}

	resp, doErr := s.httpClient.Do(req)
	if doErr != nil {
		return nil, fmt.Errorf("do request: %s", doErr.Error())
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, fmt.Errorf("read response body: %s", readErr.Error())
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusCodeError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var response struct {
		Items []Record `json:"items"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("unmarshal list response: %s", err.Error())
	}
	return response.Items, nil
}

func (s *HTTPStore) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

func (s *HTTPStore) writeRequest(ctx context.Context, method, endpoint string, data json.RawMessage) (*Record, error) {
	req, reqErr := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(data))
	if reqErr != nil {
		return nil, fmt.Errorf("create request: %s", reqErr.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	return s.do(req)
}

func (s *HTTPStore) do(req *http.Request) (*Record, error) {
	resp, doErr := s.httpClient.Do(req)
	if doErr != nil {
		return nil, fmt.Errorf("do request: %s", doErr.Error())
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, fmt.Errorf("read response body: %s", readErr.Error())
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusConflict:
		return nil, ErrVersionConflict
	default:
		return nil, &StatusCodeError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var record Record
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("unmarshal record: %s", err.Error())
	}
	return &record, nil
}
