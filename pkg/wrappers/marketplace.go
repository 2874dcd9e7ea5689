package wrappers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/user/vsce-audit/pkg/engine"
	"github.com/user/vsce-audit/pkg/log"
)

// ErrLookupDisabled is recorded on every publisher when running offline.
var ErrLookupDisabled = errors.New("marketplace lookup disabled")

// MarketplaceWrapper queries the VS Marketplace gallery API for publisher
// reputation.
type MarketplaceWrapper struct {
	URL      string
	Client   *http.Client
	Disabled bool
}

// NewMarketplaceWrapper returns a client with its own request timeout.
func NewMarketplaceWrapper(url string, timeout time.Duration) *MarketplaceWrapper {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MarketplaceWrapper{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

type galleryQuery struct {
	Filters []galleryFilter `json:"filters"`
	Flags   int             `json:"flags"`
}

type galleryFilter struct {
	Criteria []galleryCriterion `json:"criteria"`
}

type galleryCriterion struct {
	FilterType int    `json:"filterType"`
	Value      string `json:"value"`
}

// Lookup is best effort. Every failure degrades to an unverified publisher
// with zero installs; the error text is kept on the record.
func (m *MarketplaceWrapper) Lookup(ctx context.Context, publisher string) engine.PublisherInfo {
	if publisher == "" {
		return engine.UnverifiedPublisher("", nil)
	}
	if m.Disabled {
		return engine.UnverifiedPublisher(publisher, ErrLookupDisabled)
	}

	info, err := m.query(ctx, publisher)
	if err != nil {
		log.Debugf("[Marketplace] lookup for %s failed: %v", publisher, err)
		return engine.UnverifiedPublisher(publisher, err)
	}
	return info
}

func (m *MarketplaceWrapper) query(ctx context.Context, publisher string) (engine.PublisherInfo, error) {
	payload, err := json.Marshal(galleryQuery{
		Filters: []galleryFilter{{Criteria: []galleryCriterion{{FilterType: 7, Value: publisher}}}},
		Flags:   131,
	})
	if err != nil {
		return engine.PublisherInfo{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.URL, bytes.NewReader(payload))
	if err != nil {
		return engine.PublisherInfo{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json;api-version=3.0-preview.1")

	client := m.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return engine.PublisherInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return engine.PublisherInfo{}, fmt.Errorf("marketplace returned status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return engine.PublisherInfo{}, err
	}
	return parseGalleryResponse(publisher, body)
}

func parseGalleryResponse(publisher string, body []byte) (engine.PublisherInfo, error) {
	if !gjson.ValidBytes(body) {
		return engine.PublisherInfo{}, errors.New("malformed marketplace response")
	}
	ext := gjson.GetBytes(body, "results.0.extensions.0")
	if !ext.Exists() {
		return engine.UnverifiedPublisher(publisher, nil), nil
	}

	info := engine.PublisherInfo{
		Verified:    ext.Get("publisher.isVerified").Bool(),
		DisplayName: ext.Get("publisher.displayName").String(),
	}
	if info.DisplayName == "" {
		info.DisplayName = publisher
	}
	for _, stat := range ext.Get("statistics").Array() {
		if n, ok := statValue(stat.Get("value")); ok {
			info.Installs = n
			break
		}
	}
	return info, nil
}

// statValue takes the integer part of a numeric statistic, clamped to
// [0, MaxInt64].
func statValue(v gjson.Result) (int64, bool) {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Float()
	case gjson.String:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	switch {
	case math.IsNaN(f):
		return 0, false
	case f <= 0:
		return 0, true
	case f >= math.MaxInt64:
		return math.MaxInt64, true
	}
	return int64(f), true
}
