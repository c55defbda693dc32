package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"
)

type socketEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type botText struct {
	Id    string `json:"id"`
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

func askCommand() *cli.Command {
	return &cli.Command{
		Name:  "ask",
		Usage: "Interactive chat client for a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "Websocket endpoint of the server",
				Value: "ws://localhost:5000/ws",
			},
			&cli.StringFlag{
				Name:  "session",
				Usage: "Chat session id, answers are stateless without it",
			},
		},
		Action: runAsk,
	}
}

func runAsk(ctx context.Context, c *cli.Command) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.String("url"), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{}, 1)
	go readAnswers(conn, done)

	sessionId := c.String("session")
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			fmt.Print("> ")
			continue
		}
		if text == "exit" || text == "quit" {
			break
		}

		data, err := json.Marshal(map[string]string{"text": text, "sessionId": sessionId})
		if err != nil {
			return err
		}
		msg, err := json.Marshal(socketEnvelope{Event: "ask", Data: data})
		if err != nil {
			return err
		}
		if err = conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return err
		}

		select {
		case _, ok := <-done:
			if !ok {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
		fmt.Print("> ")
	}

	return conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readAnswers prints streamed answer text and signals done after each answer.
func readAnswers(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var env socketEnvelope
		if err = json.Unmarshal(msg, &env); err != nil {
			continue
		}
		var bt botText
		switch env.Event {
		case "bot_text":
			if json.Unmarshal(env.Data, &bt) == nil {
				fmt.Print(bt.Text)
			}
		case "bot_text_end":
			if json.Unmarshal(env.Data, &bt) == nil && bt.Error != "" {
				fmt.Printf("\nerror: %s", bt.Error)
			}
			fmt.Println()
			done <- struct{}{}
		}
	}
}
