package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salonkit/booking-engine/internal/config"
	"github.com/salonkit/booking-engine/internal/db"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	DaysAhead    int
	AbandonRatio float64 // locks acquired but never converted into a booking
	PostgresDSN  string
}

// Target is a bookable (staff, service) pair within an organization.
type Target struct {
	OrgID     uuid.UUID
	StaffID   uuid.UUID
	ServiceID uuid.UUID
}

type DataPool struct {
	Targets []Target
}

type slotPayload struct {
	StaffID   uuid.UUID `json:"staff_id"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]

	p50Idx := len(latencies) * 50 / 100
	if p50Idx >= len(latencies) {
		p50Idx = len(latencies) - 1
	}
	p50 = latencies[p50Idx]

	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	p95 = latencies[p95Idx]

	return avg, min, max, p50, p95
}

type Metrics struct {
	Slots OperationMetrics
	Lock  OperationMetrics
	Book  OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	metrics Metrics
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	log.Printf("config: duration=%s workers=%d days_ahead=%d abandon=%.2f",
		cfg.Duration, cfg.Workers, cfg.DaysAhead, cfg.AbandonRatio)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pgPool.Close()

	dataPool, err := loadDataPool(ctx, pgPool)
	if err != nil {
		log.Fatalf("load data pool: %v", err)
	}

	log.Printf("loaded: %d bookable staff/service pairs", len(dataPool.Targets))

	sim := &Simulator{
		config: cfg,
		pool:   dataPool,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	baseCfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load base config: %v", err)
	}

	return SimConfig{
		APIBaseURL:   getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		DaysAhead:    getInt("SIM_DAYS_AHEAD", 14),
		AbandonRatio: getFloat("SIM_ABANDON_RATIO", 0.2),
		PostgresDSN:  baseCfg.PostgresDSN,
	}
}

func validateConfig(cfg SimConfig) error {
	if cfg.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required (set in .env or environment)")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.DaysAhead <= 0 {
		return fmt.Errorf("SIM_DAYS_AHEAD must be > 0")
	}
	return nil
}

func loadDataPool(ctx context.Context, pool *pgxpool.Pool) (*DataPool, error) {
	rows, err := pool.Query(ctx, `
		SELECT st.organization_id, ss.staff_id, ss.service_id
		FROM staff_services ss
		JOIN staff st ON st.id = ss.staff_id
		WHERE st.active
	`)
	if err != nil {
		return nil, fmt.Errorf("load staff services: %w", err)
	}
	defer rows.Close()

	dataPool := &DataPool{}
	for rows.Next() {
		var t Target
		if err := rows.Scan(&t.OrgID, &t.StaffID, &t.ServiceID); err != nil {
			return nil, err
		}
		dataPool.Targets = append(dataPool.Targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(dataPool.Targets) == 0 {
		return nil, fmt.Errorf("no bookable staff loaded (run the seeder first)")
	}

	return dataPool, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Printf("starting simulation for %s with %d workers", s.config.Duration, s.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Println("simulation complete")
}

// worker runs the full booking funnel in a loop: browse slots for a random
// staff/date, lock one, then either book it or walk away.
func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			s.bookingFunnel(ctx, rng)
		}
	}
}

func (s *Simulator) bookingFunnel(ctx context.Context, rng *rand.Rand) {
	target := s.pool.Targets[rng.Intn(len(s.pool.Targets))]
	date := time.Now().AddDate(0, 0, 1+rng.Intn(s.config.DaysAhead)).Format("2006-01-02")
	sessionID := uuid.NewString()

	slots, ok := s.fetchSlots(ctx, target, date, sessionID)
	if !ok || len(slots) == 0 {
		return
	}

	slot := slots[rng.Intn(len(slots))]

	if !s.acquireLock(ctx, target, date, slot, sessionID) {
		return
	}

	if rng.Float64() < s.config.AbandonRatio {
		// Abandoned cart: the lock is left to expire on its own.
		return
	}

	s.book(ctx, target, date, slot, sessionID, rng)
}

func (s *Simulator) fetchSlots(ctx context.Context, t Target, date, sessionID string) ([]slotPayload, bool) {
	start := time.Now()

	url := fmt.Sprintf("%s/availability/slots?org_id=%s&date=%s&service_ids=%s&staff_id=%s&session_id=%s",
		s.config.APIBaseURL, t.OrgID, date, t.ServiceID, t.StaffID, sessionID)
	req, _ := http.NewRequestWithContext(ctx, "GET", url, nil)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	if err != nil {
		s.metrics.Slots.Record(latency, false, false)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		s.metrics.Slots.Record(latency, false, false)
		return nil, false
	}

	var slots []slotPayload
	if err := json.NewDecoder(resp.Body).Decode(&slots); err != nil {
		s.metrics.Slots.Record(latency, false, false)
		return nil, false
	}

	s.metrics.Slots.Record(latency, true, false)
	return slots, true
}

func (s *Simulator) acquireLock(ctx context.Context, t Target, date string, slot slotPayload, sessionID string) bool {
	start := time.Now()

	body, _ := json.Marshal(map[string]string{
		"org_id":     t.OrgID.String(),
		"staff_id":   t.StaffID.String(),
		"date":       date,
		"start_time": slot.StartTime,
		"end_time":   slot.EndTime,
		"session_id": sessionID,
	})

	req, _ := http.NewRequestWithContext(ctx, "POST", s.config.APIBaseURL+"/locks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	if err != nil {
		s.metrics.Lock.Record(latency, false, false)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusCreated:
		s.metrics.Lock.Record(latency, true, false)
		return true
	case http.StatusConflict:
		s.metrics.Lock.Record(latency, false, true)
		return false
	default:
		s.metrics.Lock.Record(latency, false, false)
		return false
	}
}

func (s *Simulator) book(ctx context.Context, t Target, date string, slot slotPayload, sessionID string, rng *rand.Rand) {
	start := time.Now()

	body, _ := json.Marshal(map[string]any{
		"org_id":      t.OrgID.String(),
		"staff_id":    t.StaffID.String(),
		"date":        date,
		"start_time":  slot.StartTime,
		"service_ids": []string{t.ServiceID.String()},
		"session_id":  sessionID,
		"customer": map[string]string{
			"name":  fmt.Sprintf("Load Tester %04d", rng.Intn(10000)),
			"phone": fmt.Sprintf("+1555%07d", rng.Intn(10000000)),
		},
	})

	req, _ := http.NewRequestWithContext(ctx, "POST", s.config.APIBaseURL+"/appointments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	if err != nil {
		s.metrics.Book.Record(latency, false, false)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusCreated:
		s.metrics.Book.Record(latency, true, false)
	case http.StatusConflict:
		s.metrics.Book.Record(latency, false, true)
	default:
		s.metrics.Book.Record(latency, false, false)
	}
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Slot search", &s.metrics.Slots)
	printOperationReport("Lock acquire", &s.metrics.Lock)
	printOperationReport("Booking", &s.metrics.Book)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failures := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failures > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failures, float64(failures)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
