package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	flags "github.com/jessevdk/go-flags"
)

const pingTimeout = 5 * time.Second

type pingOptions struct {
	Method string `long:"method" choice:"simple" choice:"200" choice:"json" default:"simple"`
}

type healthcheckResponse struct {
	Version      string `json:"version"`
	Availability bool   `json:"availability"`
	Msg          string `json:"msg"`
}

func pingCommand(args []string) error {
	var opts pingOptions

	args, err := flags.NewParser(&opts, flags.Default).ParseArgs(args)
	if err != nil {
		return fmt.Errorf("parse params error: %w", err)
	}

	if len(args) < 1 {
		return fmt.Errorf("parse params error: URL argument not provided")
	}

	return ping(args[0], opts.Method)
}

func ping(url, method string) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	resp, err := getRequest(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if method == "simple" {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status: %d", resp.StatusCode)
	}

	if method == "200" {
		return nil
	}

	healthCheckResp := healthcheckResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&healthCheckResp); err != nil {
		return fmt.Errorf("error reading server answer: %w", err)
	}

	if !healthCheckResp.Availability {
		return fmt.Errorf("server response: %s", healthCheckResp.Msg)
	}

	return nil
}

func getRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot make request: %w", err)
	}
	req.Header.Add("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot make request: %w", err)
	}

	return resp, nil
}
