package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"github.com/raglab/deeprag/internal/app"
	cfgPkg "github.com/raglab/deeprag/pkg/config"
	"github.com/raglab/deeprag/pkg/rag"
	"github.com/raglab/deeprag/pkg/scraper"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()

	_ = godotenv.Load()

	config, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if errs := config.Validate(); len(errs) > 0 {
		for _, e := range errs {
			log.Printf("config: %v", e)
		}
		log.Fatal("invalid configuration")
	}

	if err := run(config); err != nil {
		log.Fatal(err)
	}
}

func run(config *cfgPkg.Config) error {
	service, index, err := app.BuildService(config)
	if err != nil {
		return err
	}
	defer index.Close()

	ctx := context.Background()
	if err := service.Initialize(ctx); err != nil {
		return err
	}

	color.Cyan("\nChat with your documents (paste a URL to ingest it, type 'exit' to quit)")

	scanner := bufio.NewScanner(os.Stdin)
	userPrompt := color.New(color.FgGreen).PrintfFunc()
	assistantPrompt := color.New(color.FgCyan).PrintfFunc()
	urlRegex := regexp.MustCompile(`https?://[^\s]+`)

	for {
		userPrompt("\nYou: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.ToLower(input) == "exit" {
			break
		}

		if url := urlRegex.FindString(input); url != "" {
			if err := ingestURL(ctx, service, config, url); err != nil {
				color.Red("Failed to ingest %s: %v\n", url, err)
			}
			if input == url {
				continue
			}
		}

		spinner := getSpinner(" Searching documents...")
		result, err := service.Query(ctx, input)
		spinner.Finish()

		if err != nil {
			color.Red("Error: %v\n", err)
			continue
		}

		assistantPrompt("\nAssistant: %s\n", result.Answer)
		if len(result.Sources) > 0 {
			color.Blue("(%d sources, %dms)\n", len(result.Sources), result.ProcessingTime)
		}
	}

	return nil
}

func ingestURL(ctx context.Context, service *rag.Service, config *cfgPkg.Config, url string) error {
	color.Blue("\nDetected URL: %s", url)

	scrapingBar := getSpinner(" Scraping pages...")
	s, err := scraper.NewWithConfig(scraper.ScraperConfig{
		BaseURL:   url,
		MaxDepth:  config.Scraper.MaxDepth,
		RateLimit: config.Scraper.RateLimit,
		OnProgress: func(string) {
			scrapingBar.Add(1)
		},
	})
	if err != nil {
		return err
	}

	pages, err := s.Scrape(ctx, url)
	scrapingBar.Finish()
	if err != nil {
		return err
	}
	color.Green("✓ Scraped %d pages\n", len(pages))

	ingestBar := getProgressBar(len(pages), " Indexing pages")
	totalChunks := 0
	for _, page := range pages {
		if page.Content == "" {
			ingestBar.Add(1)
			continue
		}
		result, err := service.AddDocument(ctx, page.Content, page.Metadata)
		if err != nil {
			ingestBar.Finish()
			return err
		}
		totalChunks += result.Chunks
		ingestBar.Add(1)
	}
	ingestBar.Finish()
	color.Green("✓ Indexed %d pages as %d chunks\n", len(pages), totalChunks)

	return nil
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
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
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}
