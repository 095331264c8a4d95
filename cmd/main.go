package main

import (
	"flag"
	"os"

	"github.com/richard-senior/podds/internal/logger"
	"github.com/richard-senior/podds/pkg/server"
	"github.com/richard-senior/podds/pkg/tools"
	"github.com/richard-senior/podds/pkg/transport"
	"github.com/richard-senior/podds/pkg/util/podds"
)

func main() {
	configFile := flag.String("config", "", "YAML file overriding the default model configuration")
	dbPath := flag.String("db", "", "Path of the sqlite results database (overrides the config file)")
	logFile := flag.String("log", logger.DefaultLogFile, "Log file path")
	level := flag.String("level", "info", "Minimum log level (debug, info, warn, error)")
	flag.Parse()

	// stdout carries the protocol so logs go to file
	logger.SetShowDateTime(true)
	logger.SetLogFile(*logFile)
	if err := logger.SetLogOutput('f'); err != nil {
		logger.Warn("Falling back to stderr logging:", err)
	}
	if l, err := logger.ParseLevel(*level); err != nil {
		logger.Warn("Ignoring log level:", err)
	} else {
		logger.SetLevel(l)
	}

	logger.Info("Starting podds MCP server")

	config, err := loadConfig(*configFile, *dbPath)
	if err != nil {
		logger.Fatal("Invalid configuration:", err)
	}
	if err := podds.UpdateConfig(config); err != nil {
		logger.Fatal("Invalid configuration:", err)
	}

	store, err := podds.OpenStore(config.DbPath)
	if err != nil {
		logger.Fatal("Failed to open results database:", err)
	}
	defer store.Close()
	logger.Info("Using results database", store.Path(), "log level", logger.GetLevel().String())

	s := server.NewServer(transport.NewStdioTransport())
	s.RegisterTools(tools.NewPoddsTools(store).Registrations())

	if err := s.Start(); err != nil {
		logger.Error("Server error:", err)
		store.Close()
		os.Exit(1)
	}
	logger.Info("MCP server shutting down")
}

// loadConfig reads the optional config file and applies the db flag on top
func loadConfig(path, dbPath string) (*podds.PoddsConfig, error) {
	config := podds.DefaultPoddsConfig()
	if path != "" {
		var err error
		if config, err = podds.LoadConfigFile(path); err != nil {
			return nil, err
		}
	}
	if dbPath != "" {
		config.DbPath = dbPath
	}
	return config, nil
}
