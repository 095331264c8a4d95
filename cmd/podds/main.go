package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/richard-senior/podds/internal/logger"
	"github.com/richard-senior/podds/internal/processor"
	"github.com/richard-senior/podds/pkg/tools"
	"github.com/richard-senior/podds/pkg/util/podds"
)

/**
* One-shot command line access to the podds tools, e.g.
*   podds podds_record_result competition="Premier League" home_team=Arsenal away_team=Spurs home_goals=2 away_goals=1
*   podds podds_analyse_match home_team=Arsenal away_team=Spurs over_odd=1.95
*   echo '{"tool":"podds_list_teams"}' | podds
 */
func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	configFile := flag.String("config", "", "YAML file overriding the default model configuration")
	dbPath := flag.String("db", "", "Path of the sqlite results database (overrides the config file)")
	inputFile := flag.String("input", "", "JSON request file (if not provided, arguments or stdin are used)")
	outputFile := flag.String("output", "", "Output file path (if not provided, stdout will be used)")
	flag.Parse()

	if err := logger.SetLogOutput('c'); err != nil {
		logger.Warn("Failed to set log output:", err)
	}
	logger.SetLevel(logger.WARN)
	if *debug {
		logger.SetLevel(logger.DEBUG)
		logger.Debug("Debug logging enabled")
	}

	config := podds.DefaultPoddsConfig()
	if *configFile != "" {
		var err error
		if config, err = podds.LoadConfigFile(*configFile); err != nil {
			logger.Fatal("Invalid configuration:", err)
		}
	}
	if *dbPath != "" {
		config.DbPath = *dbPath
	}
	if err := podds.UpdateConfig(config); err != nil {
		logger.Fatal("Invalid configuration:", err)
	}

	store, err := podds.OpenStore(config.DbPath)
	if err != nil {
		logger.Fatal("Failed to open results database:", err)
	}
	defer store.Close()

	p := processor.NewProcessor(tools.NewPoddsTools(store).Registrations())

	var result []byte
	switch {
	case *inputFile != "":
		input, err := os.ReadFile(*inputFile)
		if err != nil {
			logger.Fatal("Failed to read input file", err)
		}
		result, err = p.ProcessRequest(input)
		if err != nil {
			logger.Fatal("Failed to process request", err)
		}
	case flag.NArg() > 0:
		request, err := processor.ParseArgs(flag.Args(), "cli-"+uuid.NewString())
		if err != nil {
			logger.Fatal("Invalid arguments", err)
		}
		result, err = p.Run(request)
		if err != nil {
			logger.Fatal("Failed to process request", err)
		}
	default:
		input, err := io.ReadAll(os.Stdin)
		if err != nil {
			logger.Fatal("Failed to read from stdin", err)
		}
		result, err = p.ProcessRequest(input)
		if err != nil {
			logger.Fatal("Failed to process request", err)
		}
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, result, 0644); err != nil {
			logger.Fatal("Failed to write to output file", err)
		}
		return
	}
	fmt.Println(string(result))
}
