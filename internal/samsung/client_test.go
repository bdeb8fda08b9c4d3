package samsung

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-aircon/internal/aircon"
)

const testDevicesBody = `{
	"Devices": [
		{
			"uuid": "ac-uuid-1",
			"name": "Living Room AC",
			"Operation": {"power": "On"},
			"Temperatures": [{"current": 23.0, "desired": 25.0}],
			"Mode": {"modes": ["Cool"], "options": ["NanoMode", "Autoclean_Off"]},
			"Wind": {"speedLevel": 2}
		},
		{
			"uuid": "ac-uuid-2",
			"name": "Bedroom AC",
			"Operation": {"power": "Off"},
			"Temperatures": [{"current": 20.0, "desired": 22.0}],
			"Mode": {"modes": ["Heat"], "options": []},
			"Wind": {"speedLevel": 0}
		}
	]
}`

// newTestClient points a Client at an httptest TLS server.
func newTestClient(t *testing.T, server *httptest.Server, index int, timeout time.Duration) *Client {
	t.Helper()

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parsing test server URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parsing test server port: %v", err)
	}

	client, err := NewClient(Config{
		Host:               u.Hostname(),
		Port:               port,
		Token:              "test-token",
		InsecureSkipVerify: true,
		Index:              index,
		Timeout:            timeout,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestFetchAll(t *testing.T) {
	var gotAuth string
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/devices" {
			t.Errorf("request = %s %s, want GET /devices", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, testDevicesBody)
	}))
	defer server.Close()

	client := newTestClient(t, server, 0, 5*time.Second)

	states, err := client.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer test-token")
	}

	if len(states) != 2 {
		t.Fatalf("len(states) = %d, want 2", len(states))
	}

	first := states[0]
	if first.UUID != "ac-uuid-1" {
		t.Errorf("UUID = %q, want %q", first.UUID, "ac-uuid-1")
	}
	if first.Power != "On" {
		t.Errorf("Power = %q, want %q", first.Power, "On")
	}
	if first.CurrentTemperature != 23.0 || first.TargetTemperature != 25.0 {
		t.Errorf("temperatures = %v/%v, want 23/25", first.CurrentTemperature, first.TargetTemperature)
	}
	if len(first.Modes) != 1 || first.Modes[0] != "Cool" {
		t.Errorf("Modes = %v, want [Cool]", first.Modes)
	}
	if first.FanSpeed != 2 {
		t.Errorf("FanSpeed = %d, want 2", first.FanSpeed)
	}
}

func TestFetchAll_AuthRejected(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(t, server, 0, 5*time.Second)

	_, err := client.FetchAll(context.Background())
	if !errors.Is(err, aircon.ErrAuth) {
		t.Errorf("FetchAll() error = %v, want ErrAuth", err)
	}
}

func TestFetchAll_MalformedBody(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "{not json")
	}))
	defer server.Close()

	client := newTestClient(t, server, 0, 5*time.Second)

	_, err := client.FetchAll(context.Background())
	if !errors.Is(err, aircon.ErrParse) {
		t.Errorf("FetchAll() error = %v, want ErrParse", err)
	}
}

func TestFetchAll_Timeout(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		io.WriteString(w, testDevicesBody)
	}))
	defer server.Close()

	client := newTestClient(t, server, 0, 50*time.Millisecond)

	_, err := client.FetchAll(context.Background())
	if !errors.Is(err, aircon.ErrTimeout) {
		t.Errorf("FetchAll() error = %v, want ErrTimeout", err)
	}
}

func TestFetchAll_Unreachable(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // connection refused from here on

	client := newTestClient(t, server, 0, time.Second)

	_, err := client.FetchAll(context.Background())
	if !errors.Is(err, aircon.ErrNetwork) {
		t.Errorf("FetchAll() error = %v, want ErrNetwork", err)
	}
}

func TestWrite_PathAndBody(t *testing.T) {
	var gotMethod, gotPath, gotBody, gotContentType string
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(t, server, 1, 5*time.Second)

	err := client.Write(context.Background(), "/temperatures/0", map[string]any{"desired": 24})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if gotMethod != http.MethodPut {
		t.Errorf("method = %q, want PUT", gotMethod)
	}
	if gotPath != "/devices/1/temperatures/0" {
		t.Errorf("path = %q, want %q", gotPath, "/devices/1/temperatures/0")
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotBody != `{"desired":24}` {
		t.Errorf("body = %q, want %q", gotBody, `{"desired":24}`)
	}
}

func TestWrite_RootPathTargetsDevice(t *testing.T) {
	var gotPath string
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server, 0, 5*time.Second)

	err := client.Write(context.Background(), "/", map[string]any{
		"Operation": map[string]any{"power": "On"},
	})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if gotPath != "/devices/0" {
		t.Errorf("path = %q, want %q", gotPath, "/devices/0")
	}
}

func TestWrite_AuthRejected(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server, 0, 5*time.Second)

	err := client.Write(context.Background(), "/mode", map[string]any{"modes": []string{"Cool"}})
	if !errors.Is(err, aircon.ErrAuth) {
		t.Errorf("Write() error = %v, want ErrAuth", err)
	}
}

func TestNewClient_MissingCertificate(t *testing.T) {
	_, err := NewClient(Config{
		Host:     "192.168.1.50",
		Token:    "tok",
		CertFile: "/nonexistent/cert.pem",
		KeyFile:  "/nonexistent/key.pem",
	})
	if err == nil {
		t.Error("NewClient() expected error for missing certificate files")
	}
}
