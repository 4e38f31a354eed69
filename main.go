package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/server"
	"go-home.io/x/macs/settings"
	"go-home.io/x/macs/systems/bridge"
	"go-home.io/x/macs/systems/channel"
	"go-home.io/x/macs/systems/fanout"
	"go-home.io/x/macs/systems/logger"
	"go-home.io/x/macs/systems/platform"
	"go-home.io/x/macs/systems/runtime"
)

func main() {
	options := &settings.StartUpOptions{}
	_, err := flags.Parse(options)
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	s := settings.Load(options)
	s.SystemLogger().Info("Starting macs", common.LogNodeToken, s.NodeID())

	fanOut := fanout.NewFanOut()

	var host *bridge.Bridge
	client := platform.NewClient(&platform.ConstructClient{
		Settings: s.PlatformSettings(),
		Logger:   logger.NewSystemLogger(s.SystemLogger(), "platform"),
		Tracer:   s.Tracer(),
		OnConnected: func() {
			host.Tick()
		},
	})

	host = bridge.NewBridge(&bridge.ConstructBridge{
		Settings: s,
		Platform: client,
		FanOut:   fanOut,
	})
	host.Start()

	var surface *runtime.Runtime
	if !s.ServerSettings().RemoteSurface {
		origin := s.ServerSettings().SurfaceOrigin
		hostWindow := channel.NewMemoryWindow(origin)
		surfaceWindow := channel.NewMemoryWindow(origin)

		query, err := s.RuntimeSettings().Query()
		if err != nil {
			s.SystemLogger().Warn("Ignoring malformed initial query", common.LogSystemToken, "runtime")
		}

		surface = runtime.NewRuntime(&runtime.ConstructRuntime{
			Settings:   s,
			FanOut:     fanOut,
			Host:       hostWindow.From(surfaceWindow),
			Events:     surfaceWindow,
			HostOrigin: origin,
			Query:      query,
		})

		host.Attach(surfaceWindow.From(hostWindow), hostWindow, origin)
		surface.Start()
	}

	ctor := &server.ConstructServer{
		Settings: s,
		FanOut:   fanOut,
		Bridge:   host,
	}
	if nil != surface {
		ctor.Runtime = surface
	}

	srv := server.NewServer(ctor)
	srv.Start()
	client.Start()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	s.SystemLogger().Info("Received stop command, exiting")
	srv.Stop()
	client.Stop()
	if nil != surface {
		surface.Stop()
	}
	host.Stop()
	fanOut.Stop()
	s.Cron().Stop()
	s.SystemLogger().Flush()
}
