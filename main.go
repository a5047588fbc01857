package main

import (
	"flag"
	"time"

	"github.com/joho/godotenv"

	"PiwPew/internal/server"
	"PiwPew/pkg/logger"
)

func main() {
	godotenv.Load()
	logger.Init()

	cfg := server.FromEnv()
	port := flag.Uint("port", uint(cfg.Port), "udp port to listen on")
	mapPath := flag.String("map", cfg.MapPath, "path to the level file")
	maxClients := flag.Int("max-clients", cfg.MaxClients, "maximum concurrent clients")
	tickMS := flag.Int("tick-ms", int(cfg.TickInterval.Milliseconds()), "simulation tick interval in milliseconds")
	debugAddr := flag.String("debug-addr", cfg.DebugAddr, "address for the ops/debug endpoints")
	flag.Parse()

	cfg.Port = uint16(*port)
	cfg.MapPath = *mapPath
	cfg.MaxClients = *maxClients
	cfg.TickInterval = time.Duration(*tickMS) * time.Millisecond
	cfg.DebugAddr = *debugAddr

	if err := server.Run(cfg); err != nil {
		logger.Log.WithError(err).Fatal("server exited")
	}
}
