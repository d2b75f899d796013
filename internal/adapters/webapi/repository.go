package webapi

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/kiryu-dev/tic-tac-toe-web/internal/domain"
	"github.com/kiryu-dev/tic-tac-toe-web/internal/engine"
	"github.com/kiryu-dev/tic-tac-toe-web/pkg/utils"
	"github.com/pkg/errors"
)

const (
	clientTimeout       = 5 * time.Second
	selectMoveEndpoint  = "/api/move"
	healthCheckEndpoint = "/health"
)

type HealthCheckResponse struct {
	Status string `json:"status"`
	domain.HubStats
}

type selectMoveRequest struct {
	Board    domain.Board `json:"board"`
	Opponent domain.Cell  `json:"opponent"`
	Other    domain.Cell  `json:"other"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// repository calls the HTTP API of a running server; addr is a base URL such as http://localhost:8080.
type repository struct {
	cli *http.Client
}

func New() repository {
	return repository{
		cli: &http.Client{Timeout: clientTimeout},
	}
}

func (r repository) SelectMove(ctx context.Context, addr string, board domain.Board,
	opponent, other domain.Cell) (engine.Choice, error) {
	body, err := utils.Json.Marshal(selectMoveRequest{Board: board, Opponent: opponent, Other: other})
	if err != nil {
		return engine.Choice{}, errors.WithMessage(err, "marshal json body")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr+selectMoveEndpoint, bytes.NewReader(body))
	if err != nil {
		return engine.Choice{}, errors.WithMessage(err, "new post request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.cli.Do(req)
	if err != nil {
		return engine.Choice{}, errors.WithMessagef(err, "call http endpoint '%s'", selectMoveEndpoint)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		_ = utils.Json.NewDecoder(resp.Body).Decode(&e)
		return engine.Choice{}, errors.Errorf("unexpected response status '%s': %s", resp.Status, e.Error)
	}
	var choice engine.Choice
	if err := utils.Json.NewDecoder(resp.Body).Decode(&choice); err != nil {
		return engine.Choice{}, errors.WithMessage(err, "decode json response body")
	}
	return choice, nil
}

func (r repository) HealthCheck(ctx context.Context, addr string) (*HealthCheckResponse, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, addr+healthCheckEndpoint, nil)
	if err != nil {
		return nil, errors.WithMessage(err, "new get request")
	}
	resp, err := r.cli.Do(request)
	if err != nil {
		return nil, errors.WithMessagef(err, "call http endpoint '%s'", healthCheckEndpoint)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected response status '%s'", resp.Status)
	}
	result := new(HealthCheckResponse)
	if err := utils.Json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, errors.WithMessage(err, "decode json response body")
	}
	return result, nil
}
