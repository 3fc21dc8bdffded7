package net

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GetJSON retrieves the HTTP content and decodes it into the passed target.
func GetJSON[T any](url string, target *T) error {
	resp, err := getResp(url)
	if err != nil {
		return fmt.Errorf("error executing HTTP Get request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("getting %s: %w", url, ErrURLNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status getting %s: %d - %s", url, resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("error decoding content: %w", err)
	}
	return nil
}

// GetBody retrieves the HTTP content as a reader. The caller owns the
// returned closer.
func GetBody(url string) (io.ReadCloser, error) {
	resp, err := getResp(url)
	if err != nil {
		return nil, fmt.Errorf("error executing HTTP Get request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status getting %s: %d - %s", url, resp.StatusCode, resp.Status)
	}

	return resp.Body, nil
}
