package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

func prompt(r *bufio.Reader, label string) string {
	fmt.Print(label)
	s, _ := r.ReadString('\n')
	return strings.TrimSpace(s)
}

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:3030"
	}
	key := os.Getenv("API_KEY")
	if key == "" {
		fmt.Println("API_KEY is not set; use one of the server's ADMIN_API_KEYS.")
		return
	}

	reader := bufio.NewReader(os.Stdin)
	name := prompt(reader, "Service name: ")
	raw := prompt(reader, "Health check URL (e.g., https://example.com/health): ")
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		fmt.Println("Invalid URL.")
		return
	}
	interval := int64(30)
	if s := prompt(reader, "Interval in seconds [30]: "); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n <= 0 {
			fmt.Println("Invalid interval.")
			return
		}
		interval = n
	}

	body, _ := json.Marshal(map[string]any{
		"service_name":                 name,
		"healthcheck_url":              raw,
		"healthcheck_duration_seconds": interval,
	})
	req, err := http.NewRequest(http.MethodPost, api+"/api/services", bytes.NewReader(body))
	if err != nil {
		fmt.Println("Error building request:", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", key)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Println("Error contacting API:", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		fmt.Println("Added! Collectors were restarted; see GET /api/metrics/collectors.")
	} else {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		fmt.Println("API returned status:", resp.Status, strings.TrimSpace(string(msg)))
	}
}
