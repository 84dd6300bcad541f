// Package deploy triggers storefront builds on an external deploy
// service and extracts the published URL from its streamed build log.
package deploy

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Result is the outcome of one deploy run. URL is empty when the log
// never announced a published address.
type Result struct {
	Log string `json:"log"`
	URL string `json:"url"`
}

// urlPattern matches the first http(s) URL a log line announces.
var urlPattern = regexp.MustCompile(`https?://[^\s"]+`)

// Deployer posts deploy requests and consumes the streamed response.
type Deployer struct {
	Endpoint   string
	HTTPClient *http.Client
}

// New builds a deployer for the configured endpoint. Returns nil when
// no endpoint is configured; callers treat a nil deployer as "deploys
// disabled".
func New(endpoint string) *Deployer {
	if endpoint == "" {
		return nil
	}
	return &Deployer{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Run starts a deploy for the vendor and reads the build log to
// completion. The log streams as plain text lines; the published URL is
// the first URL seen on a line mentioning the deployed site.
func (d *Deployer) Run(ctx context.Context, vendorID uuid.UUID) (*Result, error) {
	body, err := json.Marshal(map[string]string{"vendor_id": vendorID.String()})
	if err != nil {
		return nil, fmt.Errorf("marshal deploy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build deploy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deploy request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("deploy service returned %s", resp.Status)
	}

	result := &Result{}
	var log strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		log.WriteString(line)
		log.WriteByte('\n')
		if result.URL == "" {
			if url := urlPattern.FindString(line); url != "" {
				result.URL = strings.TrimRight(url, ".,)")
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read deploy log: %w", err)
	}

	result.Log = log.String()
	return result, nil
}
