package main

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// loginResp is the token payload returned by /login
type loginResp struct {
	JWTToken string `json:"jwtToken"`
}

// tweetReq is the JSON payload for creating a tweet
type tweetReq struct {
	Tweet string `json:"tweet"`
}

func main() {
	// --- Command-line flags ---
	var server string
	var duration int
	var concurrency int
	var csvFile string
	var trimPercent float64

	flag.StringVar(&server, "server", "https://localhost:8080", "server base URL")
	flag.IntVar(&duration, "duration", 30, "duration in seconds")
	flag.IntVar(&concurrency, "c", 50, "number of concurrent goroutines / users")
	flag.StringVar(&csvFile, "csv", "latencies.csv", "CSV file to save latencies")
	flag.Float64Var(&trimPercent, "trim", 1.0, "percent of latency to trim from top and bottom for trimmed mean")
	flag.Parse()

	// --- Load client certificate for mTLS ---
	cert, err := tls.LoadX509KeyPair("../../certs/cert.pem", "../../certs/key.pem")
	if err != nil {
		panic(fmt.Sprintf("failed to load cert/key: %v", err))
	}

	// Configure HTTP client with TLS
	client := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				Certificates: []tls.Certificate{cert},
			},
		},
		Timeout: 10 * time.Second,
	}

	// --- Register and log in one user per goroutine ---
	fmt.Printf("Registering %d users...\n", concurrency)
	tokens := make([]string, concurrency)
	for i := 0; i < concurrency; i++ {
		username := fmt.Sprintf("load-user-%d-%d", i, time.Now().UnixNano())
		register := map[string]string{
			"username": username,
			"password": "load-test-password",
			"name":     fmt.Sprintf("Load User %d", i),
			"gender":   "other",
		}
		b, _ := json.Marshal(register)

		resp, err := client.Post(server+"/register", "application/json", bytes.NewReader(b))
		if err != nil {
			panic(fmt.Sprintf("failed to register user: %v", err))
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		login := map[string]string{"username": username, "password": "load-test-password"}
		b, _ = json.Marshal(login)
		resp, err = client.Post(server+"/login", "application/json", bytes.NewReader(b))
		if err != nil {
			panic(fmt.Sprintf("failed to log in user: %v", err))
		}
		var lr loginResp
		if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
			resp.Body.Close()
			panic(fmt.Sprintf("failed to decode login response: %v", err))
		}
		resp.Body.Close()
		tokens[i] = lr.JWTToken
	}
	fmt.Println("Users ready.")

	// --- Prepare concurrency test ---
	stopTime := time.Now().Add(time.Duration(duration) * time.Second)
	var wg sync.WaitGroup

	// Atomic counters for thread-safe tracking
	var requests int64
	var successes int64
	var errors4xx int64
	var errors5xx int64

	latencySlices := make([][]float64, concurrency) // each goroutine records latencies

	// --- Start concurrent goroutines for load test ---
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			token := tokens[idx]
			var localLatencies []float64

			// Alternate tweet creation and feed reads until the test duration ends
			for n := 0; time.Now().Before(stopTime); n++ {
				start := time.Now()

				var req *http.Request
				if n%2 == 0 {
					body := tweetReq{Tweet: fmt.Sprintf("load test tweet %d", time.Now().UnixNano())}
					b, _ := json.Marshal(body)
					req, _ = http.NewRequestWithContext(context.Background(), "POST", server+"/user/tweets", bytes.NewReader(b))
					req.Header.Set("Content-Type", "application/json")
				} else {
					req, _ = http.NewRequestWithContext(context.Background(), "GET", server+"/user/tweets/feed", nil)
				}
				req.Header.Set("Authorization", "Bearer "+token)

				resp, err := client.Do(req)
				lat := time.Since(start).Seconds() * 1000 // latency in ms
				localLatencies = append(localLatencies, lat)
				atomic.AddInt64(&requests, 1)

				if err != nil {
					fmt.Printf("Request error: %v\n", err)
					continue
				}

				// Count success/failure by status code
				if resp != nil {
					if resp.StatusCode >= 200 && resp.StatusCode < 300 {
						atomic.AddInt64(&successes, 1)
					} else if resp.StatusCode >= 400 && resp.StatusCode < 500 {
						atomic.AddInt64(&errors4xx, 1)
					} else if resp.StatusCode >= 500 {
						atomic.AddInt64(&errors5xx, 1)
					}

					io.Copy(io.Discard, resp.Body)
					resp.Body.Close()
				}
			}

			latencySlices[idx] = localLatencies
		}(i)
	}

	wg.Wait()

	// --- Merge all latencies ---
	var allLatencies []float64
	for _, slice := range latencySlices {
		allLatencies = append(allLatencies, slice...)
	}
	sort.Float64s(allLatencies)

	// --- Compute statistics ---
	trimmedMeanVal := trimmedMean(allLatencies, trimPercent)
	p50 := percentile(allLatencies, 50)
	p90 := percentile(allLatencies, 90)
	p99 := percentile(allLatencies, 99)

	fmt.Printf("Requests: %d  Successes: %d  4xx: %d  5xx: %d\n", requests, successes, errors4xx, errors5xx)
	fmt.Printf("Latency (ms): trimmed_mean=%.2f p50=%.2f p90=%.2f p99=%.2f\n", trimmedMeanVal, p50, p90, p99)

	// --- Save latencies to CSV ---
	f, err := os.Create(csvFile)
	if err != nil {
		fmt.Printf("Failed to create CSV file: %v\n", err)
		return
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	w.Write([]string{"latency_ms"})
	for _, d := range allLatencies {
		w.Write([]string{fmt.Sprintf("%.3f", d)})
	}
	fmt.Printf("Saved latencies to %s\n", csvFile)
}

// trimmedMean calculates mean latency after trimming top/bottom trimPercent values
func trimmedMean(data []float64, trimPercent float64) float64 {
	if len(data) == 0 {
		return 0
	}
	trim := int(float64(len(data)) * trimPercent / 100.0)
	if trim*2 >= len(data) {
		trim = len(data) / 2
	}
	trimmed := data[trim : len(data)-trim]
	var sum float64
	for _, v := range trimmed {
		sum += v
	}
	return sum / float64(len(trimmed))
}

// percentile calculates the p-th percentile from sorted data
func percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}
	k := (p / 100.0) * float64(len(data)-1)
	f := int(k)
	c := f + 1
	if c >= len(data) {
		return data[len(data)-1]
	}
	d0 := data[f]*(float64(c)-k) + data[c]*(k-float64(f))
	return d0
}
