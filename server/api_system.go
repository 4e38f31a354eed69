package server

import (
	"net/http"

	"go-home.io/x/macs/plugins/common"
)

// Host side state.
type hostState struct {
	Node        string                `json:"node"`
	Loaded      bool                  `json:"loaded"`
	KioskHidden bool                  `json:"kiosk_hidden"`
	Sensors     *common.SensorPayload `json:"sensors"`
}

// Performs quick check whether system is OK.
func (s *MacsServer) ping(writer http.ResponseWriter, _ *http.Request) {
	respondOk(writer)
}

// Responds with diagnostic backlog.
func (s *MacsServer) getDebug(writer http.ResponseWriter, _ *http.Request) {
	respond(writer, s.Settings.Tracer().Backlog())
}

// Responds with host side state.
func (s *MacsServer) getState(writer http.ResponseWriter, _ *http.Request) {
	respond(writer, &hostState{
		Node:        s.Settings.NodeID(),
		Loaded:      s.bridge.Loaded(),
		KioskHidden: s.bridge.KioskHidden(),
		Sensors:     s.bridge.Sensors(),
	})
}

// Responds with current turn log.
func (s *MacsServer) getTurns(writer http.ResponseWriter, _ *http.Request) {
	respond(writer, s.bridge.Turns())
}

// Responds with current presentation.
func (s *MacsServer) getPresentation(writer http.ResponseWriter, _ *http.Request) {
	if nil == s.runtime {
		respondUnavailable(writer, &ErrNoRuntime{})
		return
	}

	respond(writer, s.runtime.Presentation())
}
