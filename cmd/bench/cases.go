package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Runner struct {
	cfg    Config
	client *http.Client
}

type Result struct {
	Name   string
	Status string // PASS, FAIL, SKIP
	Note   string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	var results []Result
	for _, tc := range r.cases() {
		res := tc.Run(ctx)
		res.Name = tc.Name
		fmt.Printf("[%s] %s", res.Status, res.Name)
		if res.Note != "" {
			fmt.Printf(" — %s", res.Note)
		}
		fmt.Println()
		results = append(results, res)
	}
	return results
}

func (r *Runner) cases() []TestCase {
	return []TestCase{
		{"API: health", r.checkHealth},
		{"API: chat collects fields", r.checkChat},
		{"API: session view", r.checkSessionView},
		{"API: session reset", r.checkSessionReset},
		{"Redis: ping", r.checkRedis},
		{"Postgres: itineraries table", r.checkPostgres},
	}
}

func (r *Runner) checkHealth(ctx context.Context) Result {
	status, _, err := r.get(ctx, "/health")
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	if status != http.StatusOK {
		return Result{Status: "FAIL", Note: fmt.Sprintf("status %d", status)}
	}
	return Result{Status: "PASS"}
}

func (r *Runner) checkChat(ctx context.Context) Result {
	status, body, err := r.post(ctx, "/api/chat", map[string]string{
		"session_id": r.cfg.SessionID,
		"message":    "I want to plan a trip to Goa",
	})
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	if status != http.StatusOK {
		return Result{Status: "FAIL", Note: fmt.Sprintf("status %d", status)}
	}
	var reply struct {
		Messages []string `json:"messages"`
		Stage    string   `json:"stage"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return Result{Status: "FAIL", Note: "bad reply json"}
	}
	if len(reply.Messages) == 0 {
		return Result{Status: "FAIL", Note: "no assistant messages"}
	}
	return Result{Status: "PASS", Note: "stage=" + reply.Stage}
}

func (r *Runner) checkSessionView(ctx context.Context) Result {
	status, body, err := r.get(ctx, "/api/sessions/"+r.cfg.SessionID)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	if status != http.StatusOK {
		return Result{Status: "FAIL", Note: fmt.Sprintf("status %d", status)}
	}
	var view struct {
		Progress int `json:"progress"`
	}
	if err := json.Unmarshal(body, &view); err != nil || view.Progress == 0 {
		return Result{Status: "FAIL", Note: "missing progress"}
	}
	return Result{Status: "PASS"}
}

func (r *Runner) checkSessionReset(ctx context.Context) Result {
	status, _, err := r.post(ctx, "/api/sessions/"+r.cfg.SessionID+"/reset", nil)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	if status != http.StatusOK {
		return Result{Status: "FAIL", Note: fmt.Sprintf("status %d", status)}
	}
	return Result{Status: "PASS"}
}

func (r *Runner) checkRedis(ctx context.Context) Result {
	rdb := redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	return Result{Status: "PASS"}
}

func (r *Runner) checkPostgres(ctx context.Context) Result {
	if r.cfg.DSN == "" {
		return Result{Status: "SKIP", Note: "no DSN configured"}
	}
	db, err := pgxpool.New(ctx, r.cfg.DSN)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	defer db.Close()

	var exists bool
	err = db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'itineraries')").Scan(&exists)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	if !exists {
		return Result{Status: "FAIL", Note: "itineraries table missing; run migrations/0001_init.sql"}
	}
	return Result{Status: "PASS"}
}

func (r *Runner) get(ctx context.Context, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.BaseURL+path, nil)
	if err != nil {
		return 0, nil, err
	}
	return r.do(req)
}

func (r *Runner) post(ctx context.Context, path string, body any) (int, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+path, &buf)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return r.do(req)
}

func (r *Runner) do(req *http.Request) (int, []byte, error) {
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, buf.Bytes(), nil
}
