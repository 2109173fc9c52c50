package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:8000"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	color.Cyan("🚀 Starting Chat Service Smoke Test\n")

	// 1. Health Check
	color.Yellow("\n1. Health Check")
	resp, body, err := sendRequest("GET", "/health", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var health map[string]interface{}
	json.Unmarshal(body, &health)
	prettyPrint(health)

	// 2. LLM Status
	color.Yellow("\n2. LLM Status")
	resp, body, err = sendRequest("GET", "/api/llm-status", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var llmStatus map[string]interface{}
	json.Unmarshal(body, &llmStatus)
	prettyPrint(llmStatus)

	// 3. Queue a paper for indexing
	color.Yellow("\n3. Index Sample Paper")
	paperReq := map[string]interface{}{
		"source_file": "smoke_test_paper.pdf",
		"title":       "Smoke Test Paper",
		"pages": []map[string]interface{}{
			{"page": 1, "content": "Aspirin at low doses reduces the risk of recurrent myocardial infarction in adults with established cardiovascular disease."},
		},
	}
	resp, body, err = sendRequest("POST", "/api/papers", paperReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var paperResp map[string]interface{}
	json.Unmarshal(body, &paperResp)
	prettyPrint(paperResp)

	// 4. Invalid paper request should be rejected
	color.Yellow("\n4. Reject Paper Without source_file")
	resp, _, err = sendRequest("POST", "/api/papers", map[string]interface{}{"title": "no source"})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode == http.StatusBadRequest {
		color.Green("Correctly rejected: %s", resp.Status)
	} else {
		color.Red("Expected 400, got: %s", resp.Status)
	}

	color.Cyan("\n✅ Smoke test finished. Use a websocket client against /ws to chat.")
}
