package samsung

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/gray-logic-aircon/internal/aircon"
)

// Connection constants.
const (
	// defaultPort is the appliance's local API port.
	defaultPort = 2878

	// defaultTimeout bounds every request to the appliance.
	defaultTimeout = 5 * time.Second

	// maxIdleConns keeps a small pool of warm connections; the appliance
	// is a single embedded server and dislikes connection churn.
	maxIdleConns = 2

	// idleConnTimeout is how long idle connections are kept open.
	idleConnTimeout = 90 * time.Second
)

// Config holds appliance connection parameters.
type Config struct {
	// Host is the appliance's network address.
	Host string

	// Port is the local API port. Default: 2878.
	Port int

	// Token is the bearer credential issued during pairing.
	Token string

	// CertFile and KeyFile hold the TLS client certificate. Leave empty
	// to connect without one.
	CertFile string
	KeyFile  string

	// InsecureSkipVerify disables server certificate verification. The
	// appliance ships with a self-signed certificate.
	InsecureSkipVerify bool

	// Index selects the target appliance within the device list. The
	// same value addresses reads and writes.
	Index int

	// Timeout bounds every request. Default: 5 seconds.
	Timeout time.Duration
}

// Client talks to the appliance over a pooled HTTPS connection.
//
// It implements aircon.Transport.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	index   int
}

// NewClient creates a client from the given configuration.
//
// It loads the TLS client certificate when configured and builds a pooled
// HTTPS client with the request timeout applied.
//
// Returns:
//   - *Client: Ready to use; no connection is opened until the first request
//   - error: If the certificate material cannot be loaded
func NewClient(cfg Config) (*Client, error) {
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // self-signed appliance certificate, opt-in via config
	}
	if cfg.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("loading client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return &Client{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: tlsConfig,
				MaxIdleConns:    maxIdleConns,
				IdleConnTimeout: idleConnTimeout,
			},
		},
		baseURL: fmt.Sprintf("https://%s:%d", cfg.Host, port),
		token:   cfg.Token,
		index:   cfg.Index,
	}, nil
}

// devicesResponse mirrors the appliance's GET /devices body.
type devicesResponse struct {
	Devices []deviceEnvelope `json:"Devices"`
}

type deviceEnvelope struct {
	UUID      string `json:"uuid"`
	Name      string `json:"name"`
	Operation struct {
		Power string `json:"power"`
	} `json:"Operation"`
	Temperatures []struct {
		Current float64 `json:"current"`
		Desired float64 `json:"desired"`
	} `json:"Temperatures"`
	Mode struct {
		Modes   []string `json:"modes"`
		Options []string `json:"options"`
	} `json:"Mode"`
	Wind struct {
		SpeedLevel int `json:"speedLevel"`
	} `json:"Wind"`
}

// toState flattens the wire envelope into the core snapshot type.
func (d deviceEnvelope) toState() aircon.DeviceState {
	state := aircon.DeviceState{
		UUID:        d.UUID,
		Name:        d.Name,
		Power:       d.Operation.Power,
		Modes:       d.Mode.Modes,
		ModeOptions: d.Mode.Options,
		FanSpeed:    d.Wind.SpeedLevel,
	}
	if len(d.Temperatures) > 0 {
		state.CurrentTemperature = d.Temperatures[0].Current
		state.TargetTemperature = d.Temperatures[0].Desired
	}
	return state
}

// FetchAll returns the appliance's device list, ordered by device index.
func (c *Client) FetchAll(ctx context.Context) ([]aircon.DeviceState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/devices", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %w", aircon.ErrNetwork, err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	var body devicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding device list: %w", aircon.ErrParse, err)
	}

	states := make([]aircon.DeviceState, len(body.Devices))
	for i, d := range body.Devices {
		states[i] = d.toState()
	}
	return states, nil
}

// Write applies a partial update to a device-relative path. The configured
// device index is inserted into the URL so writes always address the same
// appliance that reads are served for.
func (c *Client) Write(ctx context.Context, path string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encoding payload: %w", aircon.ErrParse, err)
	}

	target := c.baseURL + "/devices/" + strconv.Itoa(c.index)
	if path != "" && path != "/" {
		target += path
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: building request: %w", aircon.ErrNetwork, err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return classify(err)
	}
	defer resp.Body.Close()

	return checkStatus(resp.StatusCode)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
}

// classify maps request errors onto the core taxonomy.
func classify(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", aircon.ErrTimeout, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %w", aircon.ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %w", aircon.ErrNetwork, err)
	}
}

// checkStatus maps HTTP status codes onto the core taxonomy.
func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: device returned status %d", aircon.ErrAuth, code)
	default:
		return fmt.Errorf("%w: device returned status %d", aircon.ErrNetwork, code)
	}
}
