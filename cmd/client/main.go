package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/kiryu-dev/tic-tac-toe-web/internal/adapters/webapi"
	"github.com/kiryu-dev/tic-tac-toe-web/internal/domain"
	"github.com/kiryu-dev/tic-tac-toe-web/internal/engine"
	"github.com/kiryu-dev/tic-tac-toe-web/pkg/utils"
	"github.com/pkg/errors"
)

var errQuit = errors.New("quit")

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	key := flag.String("key", "", "client key to resume a session")
	flag.Parse()
	httpAddr := "http://" + *addr
	api := webapi.New()
	stats, err := serverStats(api, httpAddr)
	if err != nil {
		log.Fatal("server unreachable: " + err.Error())
	}
	fmt.Println(stats)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/game"}
	if *key != "" {
		u.RawQuery = url.Values{domain.ClientKeyQuery: {*key}}.Encode()
	}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial: " + err.Error())
	}
	defer func() {
		_ = conn.Close()
	}()
	client := newClient(conn, api, httpAddr)
	go client.readCommands()
	if err := client.handleMessages(); err != nil && !errors.Is(err, errQuit) {
		log.Fatal(err)
	}
}

type advisor interface {
	SelectMove(ctx context.Context, addr string, board domain.Board, opponent, other domain.Cell) (engine.Choice, error)
	HealthCheck(ctx context.Context, addr string) (*webapi.HealthCheckResponse, error)
}

type client struct {
	conn     *websocket.Conn
	scanner  *bufio.Scanner
	errs     chan error
	advisor  advisor
	httpAddr string
	mu       *sync.Mutex
	state    domain.State
}

func newClient(conn *websocket.Conn, api advisor, httpAddr string) *client {
	return &client{
		conn:     conn,
		scanner:  bufio.NewScanner(os.Stdin),
		errs:     make(chan error, 2),
		advisor:  api,
		httpAddr: httpAddr,
		mu:       &sync.Mutex{},
	}
}

func (c *client) handleMessages() error {
	msgs := make(chan domain.Message)
	go func() {
		for {
			msg := new(domain.Message)
			_, data, err := c.conn.ReadMessage()
			if err == nil {
				err = utils.Json.Unmarshal(data, msg)
			}
			if err != nil {
				c.errs <- errors.WithMessage(err, "read json msg")
				return
			}
			msgs <- *msg
		}
	}()
	for {
		select {
		case err := <-c.errs:
			return err
		case msg := <-msgs:
			if err := c.handleMessage(msg); err != nil {
				return err
			}
		}
	}
}

func (c *client) handleMessage(msg domain.Message) error {
	switch msg.Type {
	case domain.Hello:
		v, err := utils.UnmarshalJson[domain.HelloPayload](msg.Payload)
		if err != nil {
			return errors.WithMessage(err, "unmarshal json to 'HelloPayload' type")
		}
		fmt.Printf("client key: %s\n", v.ClientKey)
	case domain.StateUpdate:
		v, err := utils.UnmarshalJson[domain.State](msg.Payload)
		if err != nil {
			return errors.WithMessage(err, "unmarshal json to 'State' type")
		}
		c.mu.Lock()
		c.state = v
		c.mu.Unlock()
		printState(v)
	case domain.Error:
		v, err := utils.UnmarshalJson[domain.ErrorPayload](msg.Payload)
		if err != nil {
			return errors.WithMessage(err, "unmarshal json to 'ErrorPayload' type")
		}
		fmt.Println("error: " + v.Reason)
	}
	return nil
}

// readCommands turns stdin lines into protocol messages: 1-9 marks a cell, r restarts, m <mode> switches mode.
// h asks the server which cell it would pick for the side to move, s prints server load.
func (c *client) readCommands() {
	for c.scanner.Scan() {
		switch strings.TrimSpace(c.scanner.Text()) {
		case "h":
			c.hint()
			continue
		case "s":
			stats, err := serverStats(c.advisor, c.httpAddr)
			if err != nil {
				stats = "stats: " + err.Error()
			}
			fmt.Println(stats)
			continue
		}
		msg, err := parseCommand(c.scanner.Text())
		if errors.Is(err, errQuit) {
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			c.errs <- errQuit
			return
		}
		if err != nil {
			fmt.Println(err)
			continue
		}
		data, err := utils.Json.Marshal(msg)
		if err != nil {
			c.errs <- errors.WithMessage(err, "marshal msg")
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			c.errs <- errors.WithMessage(err, "write json msg")
			return
		}
	}
	c.errs <- errQuit
}

func (c *client) hint() {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	if !state.Active {
		fmt.Println("no game in progress")
		return
	}
	mover := domain.O
	if state.XNext {
		mover = domain.X
	}
	choice, err := c.advisor.SelectMove(context.Background(), c.httpAddr, state.Board, mover, mover.Opposite())
	if err != nil {
		fmt.Println("hint: " + err.Error())
		return
	}
	fmt.Printf("hint: %c should take cell %d\n", mover, choice.Index+1)
}

func serverStats(api advisor, httpAddr string) (string, error) {
	resp, err := api.HealthCheck(context.Background(), httpAddr)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("server %s: %d clients, %d sessions", resp.Status, resp.Clients, resp.Sessions), nil
}

func parseCommand(line string) (domain.Message, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return domain.Message{}, errors.New("empty command")
	}
	switch fields[0] {
	case "q":
		return domain.Message{}, errQuit
	case "r":
		return domain.Message{Type: domain.Restart}, nil
	case "m":
		if len(fields) != 2 {
			return domain.Message{}, errors.New("usage: m single|two")
		}
		return domain.Message{
			Type:    domain.ChangeMode,
			Payload: domain.ChangeModePayload{Mode: domain.Mode(fields[1])},
		}, nil
	}
	pos, err := strconv.ParseUint(fields[0], 10, 8)
	if err != nil || pos < 1 || pos > domain.BoardSize {
		return domain.Message{}, errors.Errorf("unknown command %q", line)
	}
	return domain.Message{
		Type:    domain.Click,
		Payload: domain.ClickPayload{Position: int(pos - 1)},
	}, nil
}

func printState(state domain.State) {
	fmt.Printf("\033[H\033[J")
	fmt.Printf("mode: %s  X: %d  O: %d  ties: %d\n\n", state.Mode, state.Scores.X, state.Scores.O, state.Scores.Tie)
	for i, cell := range state.Board {
		mark := byte(cell)
		if !cell.IsMark() {
			mark = byte('1' + i)
		}
		if (i+1)%3 == 0 {
			fmt.Printf("%c ", mark)
			if i < 6 {
				fmt.Printf("\n——|———|——\n")
			}
		} else {
			fmt.Printf("%c | ", mark)
		}
	}
	fmt.Println()
	fmt.Println(state.Status)
}
