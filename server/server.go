// Package server contains macs http server.
package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/providers"
	"go-home.io/x/macs/systems/channel"
)

const (
	// Logger system representation.
	logSystem = "server"

	shutdownTimeout = 5 * time.Second
)

// IBridgeProvider defines host side used by the API.
type IBridgeProvider interface {
	Attach(window channel.IWindow, events channel.IEventSource, origin string)
	Detach(window channel.IWindow)
	Turns() []*common.Turn
	KioskHidden() bool
	Loaded() bool
	Sensors() *common.SensorPayload
}

// IRuntimeProvider defines headless surface used by displays.
type IRuntimeProvider interface {
	Presentation() *common.Presentation
	Activity()
	Press()
	Release()
	Resize(width float64, height float64)
}

// ConstructServer has data required for a new server.
// Runtime is nil when surface is remote.
type ConstructServer struct {
	Settings providers.ISettingsProvider
	FanOut   providers.IFanOutProvider
	Bridge   IBridgeProvider
	Runtime  IRuntimeProvider
}

// MacsServer serves displays and remote surfaces.
type MacsServer struct {
	Settings providers.ISettingsProvider
	Logger   common.ILoggerProvider

	fanOut  providers.IFanOutProvider
	bridge  IBridgeProvider
	runtime IRuntimeProvider

	wsSettings websocket.Upgrader
	srv        *http.Server
	wg         sync.WaitGroup
}

// NewServer constructs a new http server.
func NewServer(ctor *ConstructServer) *MacsServer {
	s := &MacsServer{
		Settings: ctor.Settings,
		Logger:   ctor.Settings.SystemLogger(),
		fanOut:   ctor.FanOut,
		bridge:   ctor.Bridge,
		runtime:  ctor.Runtime,
	}

	s.wsSettings = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	return s
}

// Handler returns complete http handler.
func (s *MacsServer) Handler() http.Handler {
	router := mux.NewRouter()
	s.registerAPI(router)

	out := &logWriter{logger: s.Logger}
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{s.Settings.ServerSettings().SurfaceOrigin}),
		handlers.AllowedMethods([]string{http.MethodGet}),
	)

	return handlers.RecoveryHandler(handlers.RecoveryLogger(out))(handlers.LoggingHandler(out, cors(router)))
}

// Start launches http server.
func (s *MacsServer) Start() {
	port := s.Settings.ServerSettings().Port
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.Handler(),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			s.Logger.Fatal("Failed to start server", err, common.LogSystemToken, logSystem)
		}
	}()

	s.Logger.Info(fmt.Sprintf("Started server on port %d", port), common.LogSystemToken, logSystem)
}

// Stop shuts down http server.
func (s *MacsServer) Stop() {
	if nil == s.srv {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		s.Logger.Error("Failed to stop server", err, common.LogSystemToken, logSystem)
	}

	s.wg.Wait()
}

// All API registration.
func (s *MacsServer) registerAPI(router *mux.Router) {
	publicRouter := router.PathPrefix(routePublic).Subrouter()
	publicRouter.HandleFunc("/ping", s.ping).Methods(http.MethodGet)

	apiRouter := router.PathPrefix(routeAPI).Subrouter()
	apiRouter.HandleFunc("/presentation", s.getPresentation).Methods(http.MethodGet)
	apiRouter.HandleFunc("/turns", s.getTurns).Methods(http.MethodGet)
	apiRouter.HandleFunc("/state", s.getState).Methods(http.MethodGet)
	apiRouter.HandleFunc("/debug", s.getDebug).Methods(http.MethodGet)
	apiRouter.HandleFunc("/ws", s.handleDisplayWS).Methods(http.MethodGet)

	if s.Settings.ServerSettings().RemoteSurface {
		router.HandleFunc(routeSurface, s.handleSurfaceWS).Methods(http.MethodGet)
	}
}

// Websocket origin check.
// Remote surface origin is verified again on every message by the channel.
func (s *MacsServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if "" == origin || origin == s.Settings.ServerSettings().SurfaceOrigin {
		return true
	}

	if channel.NullOrigin == origin {
		return s.Settings.ServerSettings().AllowNullOrigin
	}

	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}
