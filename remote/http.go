// Package remote exposes a connected device over HTTP and MQTT for
// dashboards and lab automation.
package remote

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/soniccontrol/sonicctl/device"
	"github.com/soniccontrol/sonicctl/procedure"
	p "github.com/soniccontrol/sonicctl/protocol"
)

// Server serves device state and accepts commands.
type Server struct {
	dev  *device.Device
	ctrl *procedure.Controller
	log  *log.Entry
}

func NewServer(dev *device.Device, ctrl *procedure.Controller) *Server {
	return &Server{
		dev:  dev,
		ctrl: ctrl,
		log:  log.WithField("comp", "http"),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/info", s.handleInfo).Methods(http.MethodGet)
	r.HandleFunc("/commands", s.handleCommands).Methods(http.MethodGet)
	r.HandleFunc("/command", s.handleCommand).Methods(http.MethodPost)
	r.HandleFunc("/procedure", s.handleProcedure).Methods(http.MethodGet)
	r.HandleFunc("/procedure/{name}", s.handleStartProcedure).Methods(http.MethodPost)
	r.HandleFunc("/procedure", s.handleStopProcedure).Methods(http.MethodDelete)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.dev.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": st,
		"error":  p.ErrCodeLabel(st.ErrorCode),
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := s.dev.Info()
	writeJSON(w, http.StatusOK, map[string]any{
		"device":    info,
		"connected": s.dev.Connected(),
	})
}

// handleCommands lists the resolved command set of the connected device.
func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	proto := s.dev.Protocol()
	type cmdInfo struct {
		Code        p.CommandCode  `json:"code"`
		Identifiers []string       `json:"identifiers,omitempty"`
		Tags        []p.CommandTag `json:"tags,omitempty"`
	}
	out := make([]cmdInfo, 0, len(proto.Commands))
	for _, code := range proto.Codes() {
		c := proto.Commands[code].Contract
		ci := cmdInfo{Code: code, Tags: c.Tags}
		if c.Command != nil {
			ci.Identifiers = c.Command.Identifiers
		}
		out = append(out, ci)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"protocol": proto.Type.String(),
		"commands": out,
	})
}

type commandRequest struct {
	Text string `json:"text"`
}

type commandResponse struct {
	RequestID string         `json:"request_id"`
	Answer    string         `json:"answer"`
	Valid     bool           `json:"valid"`
	Code      p.CommandCode  `json:"code"`
	Fields    map[string]any `json:"fields,omitempty"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty command"})
		return
	}
	id := uuid.New().String()
	s.log.WithFields(log.Fields{"request_id": id, "text": req.Text}).Info("remote command")

	start := time.Now()
	ans, err := s.dev.ExecuteRaw(r.Context(), req.Text)
	observeCommand(time.Since(start), err == nil && ans.Valid)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	fields := make(map[string]any, len(ans.Fields))
	for k, v := range ans.Fields {
		fields[string(k)] = v
	}
	writeJSON(w, http.StatusOK, commandResponse{
		RequestID: id,
		Answer:    ans.Message,
		Valid:     ans.Valid,
		Code:      ans.Code,
		Fields:    fields,
	})
}

func (s *Server) handleProcedure(w http.ResponseWriter, r *http.Request) {
	name, running := s.ctrl.Running()
	writeJSON(w, http.StatusOK, map[string]any{"running": running, "name": name})
}

func (s *Server) handleStartProcedure(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	proc, err := BuildProcedure(name, r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.ctrl.Start(proc); err != nil {
		status := http.StatusInternalServerError
		if err == procedure.ErrBusy {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"name": name, "state": "running"})
}

func (s *Server) handleStopProcedure(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Stop()
	writeJSON(w, http.StatusOK, map[string]string{"state": "stopped"})
}
