package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/alexivanou/checkout-address/internal/config"
	"github.com/alexivanou/checkout-address/internal/courier"
	"github.com/alexivanou/checkout-address/internal/model"
	"go.uber.org/zap"
)

type row struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	City  int    `json:"city_id"`
	Extra string `json:"extra,omitempty"`
}

func main() {
	var (
		kindFlag = flag.String("kind", "cities", "Lookup: cities, offices, quarters or streets")
		query    = flag.String("query", "", "Search text")
		cityID   = flag.Int("city-id", 0, "Courier city id (offices, quarters, streets)")
		provider = flag.String("provider", "", "Shipping provider id (defaults to SHIPPING_DEFAULT_PROVIDER)")
		format   = flag.String("format", "text", "Output format: text or json")
		timeout  = flag.Duration("timeout", 10*time.Second, "Request timeout")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	kind, ok := model.ParseLocationKind(*kindFlag)
	if !ok {
		logger.Fatal("Unknown lookup kind", zap.String("kind", *kindFlag))
	}
	if kind != model.KindCity && *cityID <= 0 {
		logger.Fatal("-city-id is required", zap.String("kind", string(kind)))
	}
	if *provider == "" {
		*provider = cfg.Backend.DefaultProvider
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := courier.NewClient(cfg.Backend, &http.Client{}, logger)
	rows, err := lookup(ctx, client, kind, *provider, *cityID, *query)
	if err != nil {
		// results are still printed, the lookup failed soft
		logger.Warn("Lookup failed", zap.Error(err))
	}

	switch *format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(rows); err != nil {
			logger.Fatal("Failed to encode results", zap.Error(err))
		}
	case "text":
		printTable(rows)
	default:
		logger.Fatal("Unknown output format", zap.String("format", *format))
	}
}

func lookup(ctx context.Context, client *courier.Client, kind model.LocationKind, provider string, cityID int, query string) ([]row, error) {
	rows := []row{}
	switch kind {
	case model.KindCity:
		cities, err := client.SearchCities(ctx, provider, query)
		for _, c := range cities {
			rows = append(rows, row{ID: c.ID, Label: c.Display(), City: c.Data.CityID, Extra: c.Data.PostalCode})
		}
		return rows, err
	case model.KindOffice:
		offices, err := client.SearchOffices(ctx, provider, cityID, query)
		for _, o := range offices {
			rows = append(rows, row{ID: o.ID, Label: o.Display(), City: o.Data.CityID, Extra: o.Data.Address})
		}
		return rows, err
	case model.KindQuarter:
		quarters, err := client.SearchQuarters(ctx, provider, cityID, query)
		for _, q := range quarters {
			rows = append(rows, row{ID: q.ID, Label: q.Display(), City: q.Data.CityID})
		}
		return rows, err
	default:
		streets, err := client.SearchStreets(ctx, provider, cityID, query)
		for _, s := range streets {
			rows = append(rows, row{ID: s.ID, Label: s.Display(), City: s.Data.CityID})
		}
		return rows, err
	}
}

func printTable(rows []row) {
	if len(rows) == 0 {
		fmt.Println("No results")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCITY\tDETAILS")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.ID, r.Label, r.City, r.Extra)
	}
	w.Flush()
}
