// Package main provides the day-ahead energy planner's entry point and CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devskill-org/dayahead-planner/battery"
	"github.com/devskill-org/dayahead-planner/compare"
	"github.com/devskill-org/dayahead-planner/config"
	"github.com/devskill-org/dayahead-planner/environment"
	"github.com/devskill-org/dayahead-planner/forecast"
	"github.com/devskill-org/dayahead-planner/httpapi"
	"github.com/devskill-org/dayahead-planner/market"
	"github.com/devskill-org/dayahead-planner/milp"
	"github.com/devskill-org/dayahead-planner/planstore"
	"github.com/devskill-org/dayahead-planner/ruleengine"
	"github.com/devskill-org/dayahead-planner/runner"
	"github.com/devskill-org/dayahead-planner/sigenergy"
	"github.com/devskill-org/dayahead-planner/solarforecast"
	"github.com/devskill-org/dayahead-planner/stream"
	"github.com/devskill-org/dayahead-planner/tariff"
	"github.com/devskill-org/dayahead-planner/telemetry"
)

// solarPanelPeakKW is the reference installation's inverter output cap
// (matches environment's own synth model); config does not carry a separate
// panel rating, so the solar forecast adapter is pinned to the same figure.
const solarPanelPeakKW = 8.0

func main() {
	var (
		configFile = flag.String("config", "config.json", "Configuration file path")
		info       = flag.Bool("info", false, "Show plant information")
		help       = flag.Bool("help", false, "Show help message")
		serve      = flag.Bool("serve", false, "Run the HTTP/WebSocket API server")
		mode       = flag.String("mode", "rule", "Planning engine to run once: rule, milp, or compare")
		season     = flag.String("season", "summer", "Season: summer or winter")
		weather    = flag.String("weather", "sunny", "Weather: sunny, partly_cloudy, cloudy, or rainy")
		dayType    = flag.String("day-type", "weekday", "Day type: weekday or weekend")
		month      = flag.Int("month", 6, "Month of year (1-12)")
		seed       = flag.Int64("seed", 1, "Deterministic RNG seed for environment synthesis")
		initialSOC = flag.Float64("initial-soc", 0.5, "Starting battery state of charge, as a fraction")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Println("Error loading configuration:", err)
		cfg = config.DefaultConfig()
	}

	if *info {
		if cfg.PlantModbusAddress == "" {
			fmt.Println("Error: plant_modbus_address is not configured")
			return
		}
		if err := sigenergy.ShowPlantInfo(cfg.PlantModbusAddress); err != nil {
			fmt.Println("Error:", err)
		}
		return
	}

	logger := log.New(os.Stdout, "[PLANNER] ", log.LstdFlags)

	if *serve {
		runServer(cfg, logger)
		return
	}

	envCfg := environment.Config{
		Season:   forecast.Season(*season),
		Weather:  forecast.Weather(*weather),
		DayType:  parseDayType(*dayType),
		Month:    *month,
		Provider: buildForecastProvider(cfg, logger),
		Tariff:   buildTariffProvider(cfg, logger),
	}

	var socSource runner.InitialSOCSource
	if cfg.PlantModbusAddress != "" {
		reader, err := telemetry.NewPlantReader(cfg.PlantModbusAddress, sigenergy.PlantAddress)
		if err != nil {
			logger.Printf("telemetry unavailable, using configured initial SOC: %v", err)
		} else {
			defer reader.Close()
			socSource = reader
		}
	}

	var store *planstore.Store
	if cfg.PostgresConnString != "" {
		store, err = planstore.Open(cfg.PostgresConnString)
		if err != nil {
			logger.Printf("planstore unavailable, results will not be persisted: %v", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	switch *mode {
	case "compare":
		runCompare(envCfg, *seed, *initialSOC, cfg, store, logger)
	case "rule", "milp":
		runOnce(envCfg, *seed, *initialSOC, runner.Mode(*mode), socSource, cfg, store, logger)
	default:
		fmt.Printf("Error: unknown mode %q (want rule, milp, or compare)\n", *mode)
	}
}

func parseDayType(s string) environment.DayType {
	if s == "weekend" {
		return environment.Weekend
	}
	return environment.Weekday
}

// buildTariffProvider constructs the day-ahead price source: the ENTSO-E
// market feed when credentials are configured, the configured static TOU
// table otherwise.
func buildTariffProvider(cfg *config.Config, logger *log.Logger) tariff.Provider {
	if cfg.MarketSecurityToken != "" {
		logger.Printf("using ENTSO-E day-ahead market feed as tariff source")
		return market.New(market.Config{
			SecurityToken: cfg.MarketSecurityToken,
			URLFormat:     cfg.MarketURLFormat,
			ReferenceDate: time.Now().AddDate(0, 0, 1),
		})
	}
	return tariff.NewStaticTable(cfg.PeakPrice, cfg.NightPrice, cfg.NormalPrice, cfg.ExportPrice)
}

// buildForecastProvider constructs the weather-backed solar forecast,
// registered as a process-wide forecast.Singleton, when a site location is
// configured. Returns nil (pure synth fallback) otherwise.
func buildForecastProvider(cfg *config.Config, logger *log.Logger) forecast.Provider {
	if cfg.Latitude == 0 && cfg.Longitude == 0 {
		return nil
	}
	logger.Printf("using MET Norway weather forecast for solar prediction (lat=%.4f lon=%.4f)", cfg.Latitude, cfg.Longitude)
	return forecast.NewSingleton(func() (forecast.Provider, error) {
		return solarforecast.New(solarforecast.Config{
			Latitude:      cfg.Latitude,
			Longitude:     cfg.Longitude,
			UserAgent:     cfg.UserAgent,
			PeakPowerKW:   solarPanelPeakKW,
			ReferenceDate: time.Now().AddDate(0, 0, 1),
		}), nil
	})
}

func batteryParams(cfg *config.Config) battery.Params {
	return battery.Params{
		CapacityKWh:    cfg.BatteryCapacityKWh,
		ChargeEff:      cfg.ChargeEfficiency,
		DischargeEff:   cfg.DischargeEfficiency,
		MinSOC:         cfg.MinSOC,
		MaxSOC:         cfg.MaxSOC,
		MaxChargeKW:    cfg.MaxChargeKW,
		MaxDischargeKW: cfg.MaxDischargeKW,
	}
}

func ruleEngine(cfg *config.Config) ruleengine.Engine {
	return ruleengine.NewWithThresholds(cfg.PeakSOCThreshold, cfg.MinSOCThreshold, cfg.MaxSOCThreshold)
}

func runOnce(envCfg environment.Config, seed int64, initialSOC float64, mode runner.Mode, soc runner.InitialSOCSource, cfg *config.Config, store *planstore.Store, logger *log.Logger) {
	result, err := runner.Run(runner.Request{
		EnvConfig:  envCfg,
		Seed:       seed,
		Mode:       mode,
		InitialSOC: initialSOC,
		SOCSource:  soc,
		MILPOptions: milp.Options{
			TimeLimitSec: cfg.MILPTimeLimit.Seconds(),
			MIPGap:       cfg.MILPMipGap,
		},
		Logger:         logger,
		BatteryParams:  batteryParams(cfg),
		RuleEngine:     ruleEngine(cfg),
		ExportPriceKWh: cfg.ExportPrice,
	})
	if err != nil {
		fmt.Println("Error running simulation:", err)
		return
	}
	printPlan(result)
	persistPlan(store, mode, result, logger)
}

func runCompare(envCfg environment.Config, seed int64, initialSOC float64, cfg *config.Config, store *planstore.Store, logger *log.Logger) {
	result, err := compare.Run(compare.Request{
		EnvConfig:  envCfg,
		Seed:       seed,
		InitialSOC: initialSOC,
		MILPOptions: milp.Options{
			TimeLimitSec: cfg.MILPTimeLimit.Seconds(),
			MIPGap:       cfg.MILPMipGap,
		},
		BatteryParams:  batteryParams(cfg),
		RuleEngine:     ruleEngine(cfg),
		ExportPriceKWh: cfg.ExportPrice,
	})
	if err != nil {
		fmt.Println("Error running comparison:", err)
		return
	}

	fmt.Println("\n========================================")
	fmt.Println("RULE ENGINE")
	fmt.Println("========================================")
	printPlan(result.RuleResult)

	fmt.Println("\n========================================")
	fmt.Println("MILP ENGINE")
	fmt.Println("========================================")
	printPlan(result.MILPResult)

	fmt.Println("\n========================================")
	fmt.Println("COMPARISON")
	fmt.Println("========================================")
	fmt.Printf("Cost savings:        %.2f currency units\n", result.CostSavings)
	fmt.Printf("Improvement:         %.1f%%\n", result.ImprovementPct)
	fmt.Printf("Different decisions: %d/24 hours\n", result.DifferentDecisions)

	persistPlan(store, runner.RuleMode, result.RuleResult, logger)
	persistPlan(store, runner.MILPMode, result.MILPResult, logger)
}

// persistPlan saves a simulation result when a planstore is configured.
// Persistence is a side effect and never blocks reporting the plan: a
// failure is logged and otherwise ignored.
func persistPlan(store *planstore.Store, mode runner.Mode, result runner.SimulationResult, logger *log.Logger) {
	if store == nil {
		return
	}
	if err := store.SavePlan(context.Background(), time.Now().AddDate(0, 0, 1), mode, result); err != nil {
		logger.Printf("planstore: failed to persist plan: %v", err)
	}
}

func printPlan(result runner.SimulationResult) {
	fmt.Println("┌──────┬──────────┬──────────┬──────────┬────────────┬────────────┬──────────────────┬────────────┬──────────┬──────────┐")
	fmt.Println("│ Hour │ Solar kWh│ Load kWh │ Batt SOC │ Grid Imp.  │ Grid Exp.  │ Action            │ Price      │   Cost   │ Savings  │")
	fmt.Println("├──────┼──────────┼──────────┼──────────┼────────────┼────────────┼──────────────────┼────────────┼──────────┼──────────┤")
	for _, h := range result.Hourly {
		fmt.Printf("│ %4d │  %6.2f  │  %6.2f  │  %6.1f%% │   %6.2f   │   %6.2f   │ %-17s │  %7.2f   │ %7.2f  │ %7.2f  │\n",
			h.Hour, h.SolarKWh, h.LoadKWh, h.BatterySOC*100, h.GridImportKWh, h.GridExportKWh, h.Action.String(), h.Price, h.Cost, h.Savings)
	}
	fmt.Println("└──────┴──────────┴──────────┴──────────┴────────────┴────────────┴──────────────────┴────────────┴──────────┴──────────┘")
	fmt.Printf("Total cost: %.2f  Total savings: %.2f  Total solar: %.2f kWh  Total grid import: %.2f kWh\n",
		result.TotalCost, result.TotalSavings, result.TotalSolarKWh, result.TotalGridImportKWh)
	if result.Suboptimal {
		fmt.Println("Note: solver reported a suboptimal solution within the configured time/gap limits.")
	}
}

func runServer(cfg *config.Config, logger *log.Logger) {
	hub := stream.NewHub()
	hub.Start()
	defer hub.Stop()

	server := httpapi.NewServer(cfg, hub)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Printf("HTTP API listening on :%d", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("server error: %v", err)
		}
	}()

	<-sigChan
	logger.Printf("shutdown signal received, draining in-flight requests")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Printf("shutdown error: %v", err)
	}
}

func showHelp() {
	fmt.Println("dayahead-planner - optimize a day's battery schedule against a time-of-use tariff")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Plans 24 hours of battery charge/discharge/grid decisions for a PV + battery")
	fmt.Println("  + grid installation, either with a fast greedy rule engine or a MILP solver")
	fmt.Println("  that optimizes the whole day at once.")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  dayahead-planner [OPTIONS]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Run the rule engine for a sunny summer weekday")
	fmt.Println("  dayahead-planner -mode=rule -season=summer -weather=sunny")
	fmt.Println()
	fmt.Println("  # Compare both engines")
	fmt.Println("  dayahead-planner -mode=compare")
	fmt.Println()
	fmt.Println("  # Show plant information")
	fmt.Println("  dayahead-planner -info")
	fmt.Println()
	fmt.Println("  # Run the HTTP/WebSocket API server")
	fmt.Println("  dayahead-planner -serve")
}
