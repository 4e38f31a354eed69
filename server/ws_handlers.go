package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/systems/channel"
)

// Frame pushed to display.
type wsFrame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Input received from display.
type wsInput struct {
	Event  string  `json:"event"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Handles display WS upgrade request.
func (s *MacsServer) handleDisplayWS(writer http.ResponseWriter, request *http.Request) {
	if nil == s.runtime {
		respondUnavailable(writer, &ErrNoRuntime{})
		return
	}

	c, err := s.wsSettings.Upgrade(writer, request, nil)
	if err != nil {
		s.Logger.Error("Failed to establish a WS connection", err, common.LogSystemToken, logSystem)
		return
	}

	go s.processDisplayConnection(c)
}

// Pushes presentation frames and turn log into display.
// Socket writes happen only here.
//noinspection GoUnhandledErrorResult
func (s *MacsServer) processDisplayConnection(conn *websocket.Conn) {
	stop := make(chan bool, 1)
	pong := make(chan bool, 1)
	go s.processIncomingDisplayMessages(conn, stop, pong)

	presentationSubID, presentationUpd := s.fanOut.SubscribePresentation()
	defer s.fanOut.UnSubscribePresentation(presentationSubID)

	turnsSubID, turnsUpd := s.fanOut.SubscribeTurns()
	defer s.fanOut.UnSubscribeTurns(turnsSubID)

	conn.WriteJSON(&wsFrame{Type: frameTypePresentation, Data: s.runtime.Presentation()}) // nolint: gosec, errcheck
	conn.WriteJSON(&wsFrame{Type: frameTypeTurns, Data: s.bridge.Turns()})                // nolint: gosec, errcheck

	for {
		select {
		case <-stop:
			return
		case <-pong:
			conn.WriteMessage(websocket.TextMessage, []byte("pong")) // nolint: gosec, errcheck
		case msg, ok := <-presentationUpd:
			if !ok {
				conn.Close() // nolint: gosec, errcheck
				return
			}

			conn.WriteJSON(&wsFrame{Type: frameTypePresentation, Data: msg}) // nolint: gosec, errcheck
		case msg, ok := <-turnsUpd:
			if !ok {
				conn.Close() // nolint: gosec, errcheck
				return
			}

			conn.WriteJSON(&wsFrame{Type: frameTypeTurns, Data: msg}) // nolint: gosec, errcheck
		}
	}
}

// Processes incoming display messages.
//noinspection GoUnhandledErrorResult
func (s *MacsServer) processIncomingDisplayMessages(conn *websocket.Conn, stop chan bool, pong chan bool) {
	defer conn.Close() // nolint: errcheck
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.Logger.Info("Closing display WS connection", common.LogSystemToken, logSystem)
			stop <- true
			return
		}

		// Ping request comes as a un-wrapped string
		if "ping" == string(message) {
			select {
			case pong <- true:
			default:
			}
			continue
		}

		input := &wsInput{}
		err = json.Unmarshal(message, input)
		if err != nil {
			s.Logger.Error("Failed to un-marshal display input", err, common.LogSystemToken, logSystem)
			continue
		}

		if err := s.applyInput(input); err != nil {
			s.Logger.Warn(err.Error(), common.LogSystemToken, logSystem)
		}
	}
}

// Forwards display input into the runtime.
func (s *MacsServer) applyInput(input *wsInput) error {
	switch input.Event {
	case inputActivity:
		s.runtime.Activity()
	case inputPress:
		s.runtime.Press()
	case inputRelease:
		s.runtime.Release()
	case inputResize:
		s.runtime.Resize(input.Width, input.Height)
	default:
		return &ErrUnknownInput{Event: input.Event}
	}

	return nil
}

// Handles remote surface WS upgrade request.
// Surface without origin is accepted only if null origin is allowed.
func (s *MacsServer) handleSurfaceWS(writer http.ResponseWriter, request *http.Request) {
	if "" == request.Header.Get("Origin") && !s.Settings.ServerSettings().AllowNullOrigin {
		s.Logger.Warn("Rejected surface WS connection without origin", common.LogSystemToken, logSystem)
		writer.WriteHeader(http.StatusForbidden)
		return
	}

	c, err := s.wsSettings.Upgrade(writer, request, nil)
	if err != nil {
		s.Logger.Error("Failed to establish a surface WS connection", err, common.LogSystemToken, logSystem)
		return
	}

	// Origin is already verified by the upgrader.
	window := channel.NewWebSocketWindow(c, request.Header.Get("Origin"), s.Logger)
	s.bridge.Attach(window, window, window.Origin())

	go func() {
		window.Run()
		s.bridge.Detach(window)
	}()
}
