package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/ducklingk58/medical-product-overview-system/internal/models"
	cfgPkg "github.com/ducklingk58/medical-product-overview-system/pkg/config"
	"github.com/ducklingk58/medical-product-overview-system/pkg/pipeline"
	"github.com/ducklingk58/medical-product-overview-system/pkg/reader"
	"github.com/ducklingk58/medical-product-overview-system/server"
)

type Config struct {
	ConfigPath  string
	ProductName string
	OutPath     string
	Serve       bool
	Addr        string
	Inputs      []string
}

func main() {
	config := parseFlags()

	if err := run(config); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() Config {
	var config Config

	flag.StringVar(&config.ConfigPath, "config", "", "Path to config file")
	flag.StringVar(&config.ProductName, "name", "", "Product name (제품명)")
	flag.StringVar(&config.OutPath, "out", "", "Output JSON path (default stdout)")
	flag.BoolVar(&config.Serve, "serve", false, "Run the websocket server instead of a one-shot run")
	flag.StringVar(&config.Addr, "addr", ":8080", "Server listen address")
	flag.Parse()

	config.Inputs = flag.Args()
	return config
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("sections"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(config Config) error {
	cfg, err := cfgPkg.LoadConfig(config.ConfigPath)
	if err != nil {
		return err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %v", e)
		}
		return fmt.Errorf("invalid configuration")
	}
	color.NoColor = !cfg.UI.Color

	if config.Serve {
		srv, err := server.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize server: %v", err)
		}
		color.Cyan("Listening on %s", config.Addr)
		return srv.Start(config.Addr)
	}

	if config.ProductName == "" {
		return fmt.Errorf("a product name is required (-name)")
	}

	docs, err := reader.ReadAll(config.Inputs)
	if err != nil {
		return err
	}
	color.Blue("\nBuilding overview for %s from %d document(s)\n", config.ProductName, len(docs))

	p, err := pipeline.NewWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %v", err)
	}

	bar := getProgressBar(int(models.NumSections), "🔄 Completing missing sections...")
	p.OnSection = func(models.Section) {
		bar.Add(1)
	}

	result, err := p.Run(context.Background(), config.ProductName, docs)
	if err != nil {
		return err
	}
	bar.Finish()

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	if config.OutPath != "" {
		if err := os.WriteFile(config.OutPath, data, 0o644); err != nil {
			return err
		}
		color.Green("\n✓ Wrote %s\n", config.OutPath)
	} else {
		fmt.Println(string(data))
	}

	color.Green("✓ Sections: %d extracted, %d completed, %d empty\n",
		result.Summary.Extracted, result.Summary.Completed, result.Summary.Empty)
	for _, f := range result.Summary.Failures {
		color.Yellow("  completion failure: %s", f)
	}

	return nil
}
