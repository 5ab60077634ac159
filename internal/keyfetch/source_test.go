package keyfetch

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestParseTrustAnchors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{
			name: "single signing-only key",
			body: `{"keys":[{"keyValue":"AAAA","protocolVersion":"ECv2SigningOnly"}]}`,
			want: 1,
		},
		{
			name: "mixed protocol versions",
			body: `{"keys":[
				{"keyValue":"BBBB","protocolVersion":"ECv2"},
				{"keyValue":"AAAA","protocolVersion":"ECv2SigningOnly"},
				{"keyValue":"CCCC","protocolVersion":"ECv1"}
			]}`,
			want: 1,
		},
		{
			name: "multiple signing-only keys during rotation",
			body: `{"keys":[
				{"keyValue":"AAAA","protocolVersion":"ECv2SigningOnly"},
				{"keyValue":"DDDD","protocolVersion":"ECv2SigningOnly"}
			]}`,
			want: 2,
		},
		{
			name:    "no signing-only keys",
			body:    `{"keys":[{"keyValue":"BBBB","protocolVersion":"ECv2"}]}`,
			wantErr: true,
		},
		{
			name:    "empty keys list",
			body:    `{"keys":[]}`,
			wantErr: true,
		},
		{
			name:    "entry missing keyValue",
			body:    `{"keys":[{"protocolVersion":"ECv2SigningOnly"}]}`,
			wantErr: true,
		},
		{
			name:    "not JSON",
			body:    `<html>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anchors, err := ParseTrustAnchors([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTrustAnchors() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(anchors) != tt.want {
				t.Errorf("ParseTrustAnchors() returned %d anchors, want %d", len(anchors), tt.want)
			}
		})
	}
}

func TestParseTrustAnchorsPreservesOrder(t *testing.T) {
	body := `{"keys":[
		{"keyValue":"FIRST","protocolVersion":"ECv2SigningOnly"},
		{"keyValue":"SECOND","protocolVersion":"ECv2SigningOnly"}
	]}`

	anchors, err := ParseTrustAnchors([]byte(body))
	if err != nil {
		t.Fatalf("ParseTrustAnchors() unexpected error: %v", err)
	}
	if anchors[0].PublicKeyBase64 != "FIRST" || anchors[1].PublicKeyBase64 != "SECOND" {
		t.Errorf("anchors out of publication order: %+v", anchors)
	}
}

func TestHTTPSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.Write([]byte(`{"keys":[{"keyValue":"AAAA","protocolVersion":"ECv2SigningOnly"}]}`))
	}))
	defer srv.Close()

	source, err := NewHTTPSource(srv.URL, 5*time.Second, testLogger())
	if err != nil {
		t.Fatalf("NewHTTPSource() failed: %v", err)
	}

	anchors, err := source.TrustAnchors(context.Background())
	if err != nil {
		t.Fatalf("TrustAnchors() failed: %v", err)
	}
	if len(anchors) != 1 || anchors[0].PublicKeyBase64 != "AAAA" {
		t.Errorf("unexpected anchors: %+v", anchors)
	}
}

func TestHTTPSourceNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	source, err := NewHTTPSource(srv.URL, 5*time.Second, testLogger())
	if err != nil {
		t.Fatalf("NewHTTPSource() failed: %v", err)
	}

	if _, err := source.TrustAnchors(context.Background()); err == nil {
		t.Error("TrustAnchors() expected error for 503 response, got nil")
	}
}

func TestHTTPSourceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // shut down before use

	source, err := NewHTTPSource(srv.URL, time.Second, testLogger())
	if err != nil {
		t.Fatalf("NewHTTPSource() failed: %v", err)
	}

	if _, err := source.TrustAnchors(context.Background()); err == nil {
		t.Error("TrustAnchors() expected error for unreachable endpoint, got nil")
	}
}

func TestNewHTTPSourceValidation(t *testing.T) {
	if _, err := NewHTTPSource("", time.Second, testLogger()); err == nil {
		t.Error("NewHTTPSource() accepted empty URL")
	}
	if _, err := NewHTTPSource("https://example.com/keys", 0, testLogger()); err == nil {
		t.Error("NewHTTPSource() accepted zero timeout")
	}
	if _, err := NewHTTPSource("https://example.com/keys", time.Second, nil); err == nil {
		t.Error("NewHTTPSource() accepted nil logger")
	}
}
