// Command benchmark drives concurrent streamed inference requests against a
// running gateway and reports latency percentiles. It measures time to first
// frame and total stream time separately, since the admission pipeline and
// the upstream dominate different halves.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
)

type config struct {
	BaseURL     string
	Token       string
	Pool        string
	Estimate    string
	Prompt      string
	Requests    int
	Concurrency int
	Timeout     time.Duration
}

type result struct {
	FirstFrame time.Duration
	Total      time.Duration
	Status     int
	Err        error
}

func main() {
	cfg := parseFlags()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	jobs := make(chan int)
	results := make(chan result, cfg.Requests)
	client := &http.Client{Timeout: cfg.Timeout}

	var wg sync.WaitGroup
	for range cfg.Concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				results <- runOne(ctx, client, cfg)
			}
		}()
	}

	started := time.Now()
	go func() {
		defer close(jobs)
		for i := 0; i < cfg.Requests; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)
	elapsed := time.Since(started)

	report(results, cfg, elapsed)
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.BaseURL, "url", "http://localhost:8080", "Gateway base URL")
	flag.StringVar(&cfg.Token, "token", "", "Bearer access token (required)")
	flag.StringVar(&cfg.Pool, "pool", "general", "Capability pool to request")
	flag.StringVar(&cfg.Estimate, "estimate", "0.01", "Estimated cost per request")
	flag.StringVar(&cfg.Prompt, "prompt", "ping", "Prompt to send")
	flag.IntVar(&cfg.Requests, "n", 100, "Total number of requests")
	flag.IntVar(&cfg.Concurrency, "c", 4, "Concurrent workers")
	flag.DurationVar(&cfg.Timeout, "timeout", 5*time.Minute, "Per-request timeout")
	flag.Parse()

	if cfg.Token == "" {
		fmt.Fprintln(os.Stderr, "-token is required")
		os.Exit(2)
	}
	return cfg
}

func runOne(ctx context.Context, client *http.Client, cfg config) result {
	body, err := json.Marshal(map[string]any{
		"pool":           cfg.Pool,
		"estimated_cost": cfg.Estimate,
		"input":          map[string]any{"prompt": cfg.Prompt},
	})
	if err != nil {
		return result{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(cfg.BaseURL, "/")+"/api/v1/inference", bytes.NewReader(body))
	if err != nil {
		return result{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.Token)
	req.Header.Set("Idempotency-Key", uuid.NewString())

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return result{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	var firstFrame time.Duration
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if firstFrame == 0 && strings.HasPrefix(scanner.Text(), "event:") {
			firstFrame = time.Since(start)
		}
	}

	return result{
		FirstFrame: firstFrame,
		Total:      time.Since(start),
		Status:     resp.StatusCode,
		Err:        scanner.Err(),
	}
}

func report(results <-chan result, cfg config, elapsed time.Duration) {
	var firstFrames, totals []time.Duration
	statuses := map[int]int{}
	errs := 0
	for r := range results {
		if r.Err != nil {
			errs++
			continue
		}
		statuses[r.Status]++
		if r.Status == http.StatusOK {
			firstFrames = append(firstFrames, r.FirstFrame)
			totals = append(totals, r.Total)
		}
	}

	fmt.Printf("requests=%d concurrency=%d elapsed=%s\n", cfg.Requests, cfg.Concurrency, elapsed.Round(time.Millisecond))
	for status, count := range statuses {
		fmt.Printf("  status %d: %d\n", status, count)
	}
	if errs > 0 {
		fmt.Printf("  transport errors: %d\n", errs)
	}
	if len(totals) == 0 {
		return
	}

	fmt.Println("time to first frame:")
	printPercentiles(firstFrames)
	fmt.Println("total stream time:")
	printPercentiles(totals)
	fmt.Printf("throughput: %.1f req/s\n", float64(len(totals))/elapsed.Seconds())
}

func printPercentiles(samples []time.Duration) {
	for _, p := range []float64{50, 90, 99} {
		fmt.Printf("  p%.0f: %s\n", p, Percentile(samples, p).Round(time.Millisecond))
	}
}
