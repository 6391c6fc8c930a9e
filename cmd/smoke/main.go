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

const baseURL = "http://localhost:8000/api"

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

	client := &http.Client{} // No timeout, LLM calls can be slow
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func decode(body []byte) map[string]interface{} {
	var out map[string]interface{}
	json.Unmarshal(body, &out)
	return out
}

func main() {
	color.Cyan("🚀 Starting HealthBot API Smoke Test\n")

	topic := "Diabetes"
	if len(os.Args) > 1 {
		topic = os.Args[1]
	}

	// 1. Suggest topics
	color.Yellow("\n1. Suggest topics for 'diab'")
	resp, body, err := sendRequest("GET", "/healthbot/suggest?q=diab&limit=5", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 2. Start a topic (search + summarize)
	color.Yellow("\n2. Start topic '%s'", topic)
	resp, body, err = sendRequest("POST", "/healthbot/start", map[string]interface{}{
		"topic": topic,
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	startResp := decode(body)
	prettyPrint(startResp)

	data, _ := startResp["data"].(map[string]interface{})
	sessionID, _ := data["session_id"].(string)
	if sessionID == "" {
		color.Red("No session_id in start response, aborting")
		os.Exit(1)
	}

	// 3. Generate a quiz
	color.Yellow("\n3. Generate quiz")
	resp, body, err = sendRequest("POST", "/healthbot/quiz", map[string]interface{}{
		"session_id": sessionID,
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 4. Submit an answer
	color.Yellow("\n4. Submit answer")
	resp, body, err = sendRequest("POST", "/healthbot/answer", map[string]interface{}{
		"session_id": sessionID,
		"answer":     "I am not sure, maybe the pancreas?",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 5. Read the session back
	color.Yellow("\n5. Show session")
	resp, body, err = sendRequest("GET", "/healthbot/session/"+sessionID, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 6. Reset the session
	color.Yellow("\n6. Reset session")
	resp, body, err = sendRequest("POST", "/healthbot/reset", map[string]interface{}{
		"session_id": sessionID,
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 7. Session should now be gone
	color.Yellow("\n7. Show session after reset (expect 404)")
	resp, body, err = sendRequest("GET", "/healthbot/session/"+sessionID, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode == http.StatusNotFound {
		color.Green("Status: %s (as expected)", resp.Status)
	} else {
		color.Red("Status: %s (expected 404)", resp.Status)
	}
	prettyPrint(decode(body))

	color.Cyan("\n✅ Smoke test finished")
}
