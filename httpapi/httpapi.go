// Package httpapi exposes the day-ahead planner over HTTP: run a single
// engine, compare both engines, stream progress over WebSocket, and report
// health — following the teacher's WebServer route/handler layout.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/devskill-org/dayahead-planner/battery"
	"github.com/devskill-org/dayahead-planner/compare"
	"github.com/devskill-org/dayahead-planner/config"
	"github.com/devskill-org/dayahead-planner/environment"
	"github.com/devskill-org/dayahead-planner/forecast"
	"github.com/devskill-org/dayahead-planner/market"
	"github.com/devskill-org/dayahead-planner/milp"
	"github.com/devskill-org/dayahead-planner/planstore"
	"github.com/devskill-org/dayahead-planner/ruleengine"
	"github.com/devskill-org/dayahead-planner/runner"
	"github.com/devskill-org/dayahead-planner/solarforecast"
	"github.com/devskill-org/dayahead-planner/stream"
	"github.com/devskill-org/dayahead-planner/tariff"
)

// solarPanelPeakKW mirrors main's constant: the reference installation's
// inverter output cap, used to parameterize the solar forecast adapter.
const solarPanelPeakKW = 8.0

// Server wires the planner's operations behind an HTTP mux.
type Server struct {
	mux       *http.ServeMux
	server    *http.Server
	hub       *stream.Hub
	startTime time.Time

	battParams battery.Params
	engine     ruleengine.Engine
	exportKWh  float64
	tariffP    tariff.Provider
	forecastP  forecast.Provider
	store      *planstore.Store
}

// NewServer constructs a Server listening on cfg.HTTPPort, with the given
// WebSocket hub plugged into /api/stream (hub may be nil to disable
// streaming). It builds the battery/rule-engine/tariff knobs from cfg, and
// registers a market.Provider, solar forecast, and plan persistence store
// when their respective config fields are set.
func NewServer(cfg *config.Config, hub *stream.Hub) *Server {
	mux := http.NewServeMux()
	s := &Server{
		mux:       mux,
		hub:       hub,
		startTime: time.Now(),
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		battParams: battery.Params{
			CapacityKWh:    cfg.BatteryCapacityKWh,
			ChargeEff:      cfg.ChargeEfficiency,
			DischargeEff:   cfg.DischargeEfficiency,
			MinSOC:         cfg.MinSOC,
			MaxSOC:         cfg.MaxSOC,
			MaxChargeKW:    cfg.MaxChargeKW,
			MaxDischargeKW: cfg.MaxDischargeKW,
		},
		engine:    ruleengine.NewWithThresholds(cfg.PeakSOCThreshold, cfg.MinSOCThreshold, cfg.MaxSOCThreshold),
		exportKWh: cfg.ExportPrice,
		tariffP:   buildTariffProvider(cfg),
		forecastP: buildForecastProvider(cfg),
	}

	if cfg.PostgresConnString != "" {
		store, err := planstore.Open(cfg.PostgresConnString)
		if err != nil {
			log.Printf("httpapi: planstore unavailable, results will not be persisted: %v", err)
		} else {
			s.store = store
		}
	}

	mux.HandleFunc("/api/health", s.healthHandler)
	mux.HandleFunc("/api/simulate", s.simulateHandler)
	mux.HandleFunc("/api/compare", s.compareHandler)
	if hub != nil {
		mux.HandleFunc("/api/stream", hub.ServeHTTP)
	}

	return s
}

// buildTariffProvider constructs the day-ahead price source: the ENTSO-E
// market feed when credentials are configured, the configured static TOU
// table otherwise.
func buildTariffProvider(cfg *config.Config) tariff.Provider {
	if cfg.MarketSecurityToken != "" {
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
func buildForecastProvider(cfg *config.Config) forecast.Provider {
	if cfg.Latitude == 0 && cfg.Longitude == 0 {
		return nil
	}
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

// Close releases the server's optional plan store.
func (s *Server) Close() {
	if s.store != nil {
		s.store.Close()
	}
}

// ListenAndServe starts the HTTP server; blocks until it stops.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests before ctx expires, then
// releases the optional plan store.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	s.Close()
	return err
}

// simulateRequest is the body of POST /api/simulate.
type simulateRequest struct {
	Season     forecast.Season  `json:"season"`
	Weather    forecast.Weather `json:"weather"`
	DayType    string           `json:"day_type"`
	Month      int              `json:"month"`
	Seed       int64            `json:"seed"`
	Mode       runner.Mode      `json:"mode"`
	InitialSOC float64          `json:"initial_soc"`
}

func (req simulateRequest) envConfig(s *Server) environment.Config {
	dayType := environment.Weekday
	if req.DayType == "weekend" {
		dayType = environment.Weekend
	}
	return environment.Config{
		Season:   req.Season,
		Weather:  req.Weather,
		DayType:  dayType,
		Month:    req.Month,
		Provider: s.forecastP,
		Tariff:   s.tariffP,
	}
}

func (s *Server) simulateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	result, err := runner.Run(runner.Request{
		EnvConfig:      req.envConfig(s),
		Seed:           req.Seed,
		Mode:           req.Mode,
		InitialSOC:     req.InitialSOC,
		MILPOptions:    milp.DefaultOptions(),
		BatteryParams:  s.battParams,
		RuleEngine:     s.engine,
		ExportPriceKWh: s.exportKWh,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if s.hub != nil {
		for _, hour := range result.Hourly {
			s.hub.PublishHour(hour)
		}
	}

	s.persistPlan(req.Mode, result)

	writeJSON(w, http.StatusOK, result.Round())
}

func (s *Server) compareHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	result, err := compare.Run(compare.Request{
		EnvConfig:      req.envConfig(s),
		Seed:           req.Seed,
		InitialSOC:     req.InitialSOC,
		MILPOptions:    milp.DefaultOptions(),
		BatteryParams:  s.battParams,
		RuleEngine:     s.engine,
		ExportPriceKWh: s.exportKWh,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	s.persistPlan(runner.RuleMode, result.RuleResult)
	s.persistPlan(runner.MILPMode, result.MILPResult)

	writeJSON(w, http.StatusOK, result.Round())
}

// persistPlan saves a simulation result when a planstore is configured. A
// failure is logged and otherwise ignored: persistence is a side effect and
// never blocks the HTTP response.
func (s *Server) persistPlan(mode runner.Mode, result runner.SimulationResult) {
	if s.store == nil {
		return
	}
	if err := s.store.SavePlan(context.Background(), time.Now().AddDate(0, 0, 1), mode, result); err != nil {
		log.Printf("httpapi: failed to persist plan: %v", err)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"uptime":    time.Since(s.startTime).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
