package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniccontrol/sonicctl/device"
	"github.com/soniccontrol/sonicctl/procedure"
	p "github.com/soniccontrol/sonicctl/protocol"
	"github.com/soniccontrol/sonicctl/protocol/registry"
)

type fakeComm struct {
	mu       sync.Mutex
	requests []string
	fail     error
}

func (f *fakeComm) Send(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return "", f.fail
	}
	f.requests = append(f.requests, text)
	switch text {
	case "!ON":
		return "ON", nil
	case "!OFF":
		return "OFF", nil
	case "-":
		return "0#200000#100#none#298150#1000#50#30#on#0", nil
	}
	if i := strings.IndexByte(text, '='); i >= 0 {
		return text[i+1:], nil
	}
	return "ok", nil
}

func (f *fakeComm) Connected() bool { return true }
func (f *fakeComm) Close() error    { return nil }

func testServer(t *testing.T) (*Server, *device.Device, *fakeComm) {
	t.Helper()
	proto, err := registry.Resolve(p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true})
	require.NoError(t, err)
	fc := &fakeComm{}
	dev := device.New(fc, proto, device.NewBus(), device.Info{
		Type:            p.DeviceMvpWorker,
		ProtocolVersion: p.V(1, 0, 0),
		IsRelease:       true,
	})
	return NewServer(dev, procedure.NewController(dev)), dev, fc
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestStatusEndpoint(t *testing.T) {
	srv, dev, _ := testServer(t)
	_, err := dev.GetUpdate(context.Background())
	require.NoError(t, err)

	rec, out := doJSON(t, srv.Router(), http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	st := out["status"].(map[string]any)
	assert.Equal(t, float64(200000), st["frequency"])
	assert.Equal(t, true, st["signal"])
	assert.Equal(t, "ok", out["error"])
}

func TestInfoEndpoint(t *testing.T) {
	srv, _, _ := testServer(t)
	rec, out := doJSON(t, srv.Router(), http.MethodGet, "/info", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["connected"])
	dev := out["device"].(map[string]any)
	assert.Equal(t, "mvp_worker", dev["device_type"])
}

func TestCommandsEndpoint(t *testing.T) {
	srv, _, _ := testServer(t)
	rec, out := doJSON(t, srv.Router(), http.MethodGet, "/commands", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mvp_worker/v1.0.0/release", out["protocol"])
	assert.NotEmpty(t, out["commands"])
}

func TestCommandEndpoint(t *testing.T) {
	srv, _, _ := testServer(t)
	rec, out := doJSON(t, srv.Router(), http.MethodPost, "/command", `{"text":"!freq=200000"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["valid"])
	assert.Equal(t, "200000", out["answer"])
	assert.NotEmpty(t, out["request_id"])
	fields := out["fields"].(map[string]any)
	assert.Equal(t, float64(200000), fields["freq"])
}

func TestCommandEndpointRejectsEmpty(t *testing.T) {
	srv, _, _ := testServer(t)
	rec, _ := doJSON(t, srv.Router(), http.MethodPost, "/command", `{"text":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommandEndpointTransportFailure(t *testing.T) {
	srv, _, fc := testServer(t)
	fc.fail = device.ErrNotConnected
	rec, out := doJSON(t, srv.Router(), http.MethodPost, "/command", `{"text":"?freq"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, out["error"], "not connected")
}

func TestProcedureLifecycle(t *testing.T) {
	srv, dev, _ := testServer(t)
	router := srv.Router()
	events, cancel := dev.Bus().Subscribe(device.TopicProcedure, 8)
	defer cancel()

	body := `{"f_start":100000,"f_stop":5000000,"f_step":100,"hold_on":10000000}`
	rec, _ := doJSON(t, router, http.MethodPost, "/procedure/ramp", body)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec, out := doJSON(t, router, http.MethodGet, "/procedure", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["running"])
	assert.Equal(t, "ramp", out["name"])

	// Second start conflicts.
	rec, _ = doJSON(t, router, http.MethodPost, "/procedure/ramp", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = doJSON(t, router, http.MethodDelete, "/procedure", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Fields["state"] == "stopped" {
				return
			}
		case <-deadline:
			t.Fatal("procedure never stopped")
		}
	}
}

func TestProcedureUnknownName(t *testing.T) {
	srv, _, _ := testServer(t)
	rec, _ := doJSON(t, srv.Router(), http.MethodPost, "/procedure/levitate", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBuildProcedureDefaults(t *testing.T) {
	proc, err := BuildProcedure("duty_cycle", strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "duty_cycle", proc.Name())

	proc, err = BuildProcedure("ramp_remote", strings.NewReader(`{"f_start":100000}`))
	require.NoError(t, err)
	rr, ok := proc.(*procedure.RemoteRamp)
	require.True(t, ok)
	assert.Equal(t, int64(100000), rr.Args.FStart)

	_, err = BuildProcedure("ramp", strings.NewReader("{not json"))
	assert.Error(t, err)
}
