package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"github.com/urfave/cli/v3"
)

// rawRequest sends an arbitrary request with the stored session and prints the response.
func (r *Runner) rawRequest(ctx context.Context, cmd *cli.Command, method string, withBody bool) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	var body []byte
	if withBody {
		data := cmd.String("data")
		if data == "" {
			return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
		}
		var jsonTest any
		if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
			return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
		}
		body = []byte(data)
	}

	if _, err := r.ensureSession(ctx); err != nil {
		return err
	}

	r.logger.Info("raw request", "method", method, "path", path)
	resp, err := r.client.Raw(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, cmd.Bool("pretty"))
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// APIGet makes a direct GET request to the backend.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	return r.rawRequest(ctx, cmd, http.MethodGet, false)
}

// APIPost makes a direct POST request with a JSON body.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	return r.rawRequest(ctx, cmd, http.MethodPost, true)
}

// APIPut makes a direct PUT request with a JSON body.
func (r *Runner) APIPut(ctx context.Context, cmd *cli.Command) error {
	return r.rawRequest(ctx, cmd, http.MethodPut, true)
}

// APIDelete makes a direct DELETE request.
func (r *Runner) APIDelete(ctx context.Context, cmd *cli.Command) error {
	return r.rawRequest(ctx, cmd, http.MethodDelete, false)
}

// Health checks that the backend answers.
func (r *Runner) Health(ctx context.Context, cmd *cli.Command) error {
	if err := r.client.Health(ctx); err != nil {
		return err
	}
	r.writePlain("✓ %s is up\n", r.client.BaseURL())
	return nil
}
