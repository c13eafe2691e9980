package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("Usage: %s <access-token> [server-addr]", os.Args[0])
	}

	accessToken := os.Args[1]
	serverAddr := "http://localhost:8123"
	if len(os.Args) > 2 {
		serverAddr = os.Args[2]
	}

	req, err := http.NewRequest("GET", serverAddr+"/authz/check", nil)
	if err != nil {
		log.Fatalf("Failed to create request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Failed to read response: %v", err)
	}

	if resp.StatusCode == http.StatusOK {
		fmt.Println("✅ Authorization ALLOWED")
		fmt.Println("\nContext headers:")
		for k, v := range resp.Header {
			if strings.HasPrefix(strings.ToLower(k), "x-auth-") {
				fmt.Printf("  %s: %s\n", k, strings.Join(v, ", "))
			}
		}
		fmt.Printf("\nDecision body:\n  %s\n", string(body))
	} else {
		fmt.Printf("❌ Authorization DENIED\n")
		fmt.Printf("Status: %d\n", resp.StatusCode)
		fmt.Printf("Body: %s\n", string(body))
	}
}
