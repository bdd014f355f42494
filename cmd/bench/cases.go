// README: Bench cases; booking flow over HTTP, staging keys in Redis, schema in Postgres, and load checks.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"

	sessionHeader = "X-Booking-Session"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
	// session is shared by the flow cases so they build on each other.
	session string
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:     cfg,
		httpc:   &http.Client{Timeout: 10 * time.Second},
		session: uuid.NewString(),
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

var benchItinerary = map[string]any{
	"pickup":      map[string]any{"text": "Paris", "lat": 48.8566, "lon": 2.3522, "geocoded_label": "Paris"},
	"dropoff":     map[string]any{"text": "CDG", "lat": 49.0097, "lon": 2.5479, "geocoded_label": "CDG"},
	"pickup_date": "2030-06-01",
	"pickup_time": "10:00",
	"passengers":  2,
	"travel_type": "none",
}

var benchContact = map[string]any{
	"first_name": "Jean",
	"last_name":  "Dupont",
	"email":      "jean@example.com",
	"phone":      "+33612345678",
}

func (r *Runner) cases() []TestCase {
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "no dsn; catalog overrides and ledger disabled"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusFail, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Migration: apply (optional)",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: statusSkip, Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: statusFail, Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Migration: tables exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
					if !exists {
						return Result{Status: statusFail, Note: "missing table: " + t}
					}
				}
				return Result{Status: statusPass}
			},
		},

		httpCase("API: health", http.MethodGet, "/health", nil, http.StatusOK, nil),
		httpCase("Catalog: vehicles", http.MethodGet, "/api/vehicles", nil, http.StatusOK, func(b map[string]any) string {
			if v, _ := b["vehicles"].([]any); len(v) == 0 {
				return "empty catalog"
			}
			return ""
		}),
		httpCase("Catalog: service types", http.MethodGet, "/api/service-types", nil, http.StatusOK, nil),
		httpCase("Geocode: unknown field -> 400", http.MethodGet, "/api/geocode?field=home&q=Paris", nil, http.StatusBadRequest, nil),
		httpCase("Geocode: short query -> empty", http.MethodGet, "/api/geocode?field=pickup&q=Pa", nil, http.StatusOK, func(b map[string]any) string {
			if s, _ := b["suggestions"].([]any); len(s) != 0 {
				return fmt.Sprintf("got %d suggestions", len(s))
			}
			return ""
		}),

		// Booking flow, one session.
		httpCase("Flow: contact before itinerary redirects", http.MethodGet, "/api/booking/stages/contact", nil, http.StatusOK, expectStage("itinerary", true)),
		httpCase("Flow: incomplete itinerary -> 422", http.MethodPut, "/api/booking/itinerary", map[string]any{"passengers": 0}, http.StatusUnprocessableEntity, nil),
		httpCase("Flow: submit itinerary", http.MethodPut, "/api/booking/itinerary", benchItinerary, http.StatusOK, expectStage("vehicle", false)),
		httpCase("Flow: vehicle quotes", http.MethodGet, "/api/booking/stages/vehicle", nil, http.StatusOK, func(b map[string]any) string {
			v, _ := b["vehicles"].(map[string]any)
			if v == nil {
				return "no vehicles view"
			}
			if q, _ := v["quotes"].([]any); len(q) == 0 {
				return "no quotes"
			}
			return ""
		}),
		httpCase("Flow: unknown vehicle -> 422", http.MethodPost, "/api/booking/vehicle", map[string]any{"vehicle_id": "hovercraft"}, http.StatusUnprocessableEntity, nil),
		httpCase("Flow: select vehicle", http.MethodPost, "/api/booking/vehicle", map[string]any{"vehicle_id": "sedan"}, http.StatusOK, expectStage("contact", false)),
		httpCase("Flow: invalid contact -> 422", http.MethodPost, "/api/booking/contact/validate", map[string]any{"first_name": "Jean"}, http.StatusUnprocessableEntity, nil),
		httpCase("Flow: valid contact", http.MethodPost, "/api/booking/contact/validate", benchContact, http.StatusOK, nil),
		httpCase("Flow: payment request", http.MethodPost, "/api/booking/payment-request", benchContact, http.StatusOK, func(b map[string]any) string {
			amount, _ := b["amount"].(map[string]any)
			if n, _ := amount["amount"].(float64); n <= 0 {
				return fmt.Sprintf("amount=%v", b["amount"])
			}
			return ""
		}),
		{
			Name: "Redis: staged slots expire",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusSkip, Note: "redis not configured"}
				}
				ttl, err := r.redis.TTL(ctx, "booking:"+r.session+":vehicle").Result()
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				if ttl <= 0 {
					return Result{Status: statusFail, Note: fmt.Sprintf("ttl=%s", ttl)}
				}
				return Result{Status: statusPass, Note: fmt.Sprintf("ttl=%s", ttl.Round(time.Second))}
			},
		},
		manualCase("Flow: payment result creates order", "posts a real order to the backend; run against staging with a test payment"),
		manualCase("Flow: order backend down -> 502 with confirmation", "stop the order backend, post a payment result, check unrecorded_payments"),
		httpCase("Flow: reset", http.MethodDelete, "/api/booking", nil, http.StatusOK, expectStage("itinerary", false)),

		{
			Name: "Concurrency: sessions are isolated",
			Run: func(ctx context.Context, r *Runner) Result {
				return isolatedSessions(ctx, r)
			},
		},
		{
			Name: "Perf: vehicle stage throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				session := uuid.NewString()
				if code, _, err := r.call(ctx, session, http.MethodPut, "/api/booking/itinerary", benchItinerary); err != nil || code != http.StatusOK {
					return Result{Status: statusFail, Note: fmt.Sprintf("setup status=%d err=%v", code, err)}
				}
				return perfLoad(ctx, r, session, http.MethodGet, "/api/booking/stages/vehicle")
			},
		},
	}
}

// call sends one JSON request for session and decodes a JSON object reply.
func (r *Runner) call(ctx context.Context, session, method, path string, body any) (int, map[string]any, error) {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(sessionHeader, session)
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out, nil
}

func httpCase(name, method, path string, body any, want int, check func(map[string]any) string) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			start := time.Now()
			code, out, err := r.call(ctx, r.session, method, path, body)
			latency := time.Since(start)
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			if code != want {
				return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d want=%d", code, want)}
			}
			if check != nil {
				if msg := check(out); msg != "" {
					return Result{Status: statusFail, Latency: latency, Note: msg}
				}
			}
			return Result{Status: statusPass, Latency: latency, Note: fmt.Sprintf("status=%d", code)}
		},
	}
}

func expectStage(stage string, redirected bool) func(map[string]any) string {
	return func(b map[string]any) string {
		if b["stage"] != stage {
			return fmt.Sprintf("stage=%v want=%s", b["stage"], stage)
		}
		if redirected && b["redirected"] != true {
			return "expected redirected=true"
		}
		return ""
	}
}

func manualCase(name, note string) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			return Result{Status: statusSkip, Note: note}
		},
	}
}

// isolatedSessions stores a different party size per session in parallel and
// checks every session reads back its own.
func isolatedSessions(ctx context.Context, r *Runner) Result {
	var wg sync.WaitGroup
	var mu sync.Mutex
	mismatches := 0
	errs := 0

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session := uuid.NewString()
			it := make(map[string]any, len(benchItinerary))
			for k, v := range benchItinerary {
				it[k] = v
			}
			passengers := i%7 + 1
			it["passengers"] = passengers

			code, _, err := r.call(ctx, session, http.MethodPut, "/api/booking/itinerary", it)
			if err != nil || code != http.StatusOK {
				mu.Lock()
				errs++
				mu.Unlock()
				return
			}
			_, out, err := r.call(ctx, session, http.MethodGet, "/api/booking", nil)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs++
				return
			}
			booking, _ := out["booking"].(map[string]any)
			itinerary, _ := booking["itinerary"].(map[string]any)
			if got, _ := itinerary["passengers"].(float64); int(got) != passengers {
				mismatches++
			}
		}(i)
	}
	wg.Wait()

	if errs > 0 || mismatches > 0 {
		return Result{Status: statusFail, Note: fmt.Sprintf("errors=%d mismatches=%d", errs, mismatches)}
	}
	return Result{Status: statusPass, Note: fmt.Sprintf("sessions=%d", r.cfg.Concurrency)}
}

func perfLoad(ctx context.Context, r *Runner, session, method, path string) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				code, _, err := r.call(ctx, session, method, path, nil)
				mu.Lock()
				if err != nil || code != http.StatusOK {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

var createTablePattern = regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	matches := createTablePattern.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
