package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"habitquest/internal/logger"
)

// Exercises a running server: logs in, opens the group chat socket, posts a
// message over REST and waits to see it arrive on the socket.
func main() {
	base := flag.String("base", "http://127.0.0.1:8080", "server base URL")
	email := flag.String("email", "demo@example.com", "account email")
	password := flag.String("password", "demo-password", "account password")
	group := flag.String("group", "", "group id the account belongs to")
	flag.Parse()

	if *group == "" {
		logger.Fatal("-group is required")
	}

	var login struct {
		Token string `json:"token"`
	}
	if err := post(*base+"/api/v1/auth/login", "", map[string]string{"email": *email, "password": *password}, &login); err != nil {
		logger.Fatal("login", "error", err)
	}

	wsURL := "ws" + (*base)[len("http"):] + "/ws/groups/" + *group + "?token=" + login.Token
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		logger.Fatal("dial", "status", status, "error", err)
	}
	defer conn.Close()

	content := fmt.Sprintf("smoke %d", time.Now().Unix())
	if err := post(*base+"/api/v1/groups/"+*group+"/messages", login.Token, map[string]string{"content": content}, nil); err != nil {
		logger.Fatal("post message", "error", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		var frame struct {
			Type    string `json:"type"`
			Payload struct {
				Content string `json:"content"`
			} `json:"payload"`
		}
		if err := conn.ReadJSON(&frame); err != nil {
			logger.Fatal("read", "error", err)
		}
		logger.Info("frame", "type", frame.Type, "content", frame.Payload.Content)
		if frame.Type == "message" && frame.Payload.Content == content {
			logger.Info("smoke test finished")
			return
		}
	}
	logger.Fatal("message never arrived")
}

func post(url, token string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: status %d", url, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
