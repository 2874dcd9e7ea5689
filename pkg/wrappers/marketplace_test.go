package wrappers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/tidwall/gjson"
	"github.com/user/vsce-audit/pkg/engine"
)

func TestMarketplaceLookup(t *testing.T) {
	var gotQuery galleryQuery
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Accept"); got != "application/json;api-version=3.0-preview.1" {
			t.Errorf("Accept = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotQuery); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Write([]byte(`{"results":[{"extensions":[{
			"publisher":{"displayName":"Microsoft","isVerified":true},
			"statistics":[{"statisticName":"install","value":123456.0},{"statisticName":"rating","value":4.5}]
		}]}]}`))
	}))
	defer srv.Close()

	m := NewMarketplaceWrapper(srv.URL, time.Second)
	got := m.Lookup(context.Background(), "ms-python")

	want := engine.PublisherInfo{Verified: true, Installs: 123456, DisplayName: "Microsoft"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lookup() mismatch (-want +got):\n%s", diff)
	}
	wantQuery := galleryQuery{
		Filters: []galleryFilter{{Criteria: []galleryCriterion{{FilterType: 7, Value: "ms-python"}}}},
		Flags:   131,
	}
	if diff := cmp.Diff(wantQuery, gotQuery); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}
}

func TestMarketplaceLookupDegrades(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr bool
	}{
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, r *http.Request) { http.Error(w, "down", http.StatusBadGateway) },
			wantErr: true,
		},
		{
			name:    "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("<html>")) },
			wantErr: true,
		},
		{
			name:    "no results",
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"results":[{"extensions":[]}]}`)) },
		},
		{
			name: "slow server",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(2 * time.Second):
				case <-r.Context().Done():
				}
			},
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			got := NewMarketplaceWrapper(srv.URL, 200*time.Millisecond).Lookup(context.Background(), "pub1")
			if got.Verified || got.Installs != 0 || got.DisplayName != "pub1" {
				t.Errorf("Lookup() = %+v, want unverified default for pub1", got)
			}
			if (got.Error != "") != tc.wantErr {
				t.Errorf("Error = %q, wantErr %v", got.Error, tc.wantErr)
			}
		})
	}
}

func TestMarketplaceLookupWithoutNetwork(t *testing.T) {
	m := &MarketplaceWrapper{URL: "http://127.0.0.1:1", Disabled: true}
	got := m.Lookup(context.Background(), "pub1")
	if got.Error != ErrLookupDisabled.Error() || got.Verified {
		t.Errorf("Lookup() disabled = %+v", got)
	}

	got = m.Lookup(context.Background(), "")
	if diff := cmp.Diff(engine.PublisherInfo{DisplayName: "unknown"}, got); diff != "" {
		t.Errorf("Lookup(\"\") mismatch (-want +got):\n%s", diff)
	}
}

func TestStatValue(t *testing.T) {
	tests := []struct {
		raw    string
		want   int64
		wantOK bool
	}{
		{`123456.9`, 123456, true},
		{`-5`, 0, true},
		{`1e300`, math.MaxInt64, true},
		{`"42"`, 42, true},
		{`"-3"`, 0, true},
		{`"many"`, 0, false},
		{`null`, 0, false},
		{`true`, 0, false},
	}
	for _, tc := range tests {
		got, ok := statValue(gjson.Parse(tc.raw))
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("statValue(%s) = %d, %v; want %d, %v", tc.raw, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestMarketplaceLookupNegativeInstalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"extensions":[{"publisher":{"isVerified":true},"statistics":[{"value":-10}]}]}]}`))
	}))
	defer srv.Close()

	got := NewMarketplaceWrapper(srv.URL, time.Second).Lookup(context.Background(), "pub1")
	if got.Installs != 0 || !got.Verified {
		t.Errorf("Lookup() = %+v, want verified with 0 installs", got)
	}
}
