package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

type adminClient struct {
	base  string
	token string
	http  *http.Client
}

func clientFlags(fs *flag.FlagSet) (*string, *string) {
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	token := fs.String("token", os.Getenv("VK_ADMIN_TOKEN"), "admin bearer token (not needed from loopback)")
	return baseURL, token
}

func newAdminClient(baseURL, token string, timeout time.Duration) *adminClient {
	return &adminClient{
		base:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token: strings.TrimSpace(token),
		http:  &http.Client{Timeout: timeout},
	}
}

// do sends the request and returns the body; non-2xx statuses are errors
// carrying the body so the server's message reaches the operator.
func (c *adminClient) do(method, path string, body any) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		return b, fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	return b, nil
}

func emit(b []byte, err error) {
	if len(b) > 0 {
		fmt.Println(strings.TrimRight(string(b), "\n"))
	}
	if err != nil {
		fail(1, "request: %v", err)
	}
}

func getCmd(name, path string, args []string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	baseURL, token := clientFlags(fs)
	_ = fs.Parse(args)

	emit(newAdminClient(*baseURL, *token, 5*time.Second).do(http.MethodGet, path, nil))
}

func snapshotCmd(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	baseURL, token := clientFlags(fs)
	_ = fs.Parse(args)

	emit(newAdminClient(*baseURL, *token, 10*time.Second).do(http.MethodPost, "/admin/v1/snapshot", nil))
}

// balanceCmd reads a balance, or changes it with -op add|remove|set.
func balanceCmd(args []string) {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	baseURL, token := clientFlags(fs)
	name := fs.String("name", "", "player name")
	op := fs.String("op", "", "add, remove or set (empty reads)")
	amount := fs.Int64("amount", 0, "amount for -op")
	_ = fs.Parse(args)

	if strings.TrimSpace(*name) == "" {
		fail(2, "missing -name")
	}
	cl := newAdminClient(*baseURL, *token, 5*time.Second)
	if *op == "" {
		emit(cl.do(http.MethodGet, "/admin/v1/balance?name="+url.QueryEscape(*name), nil))
		return
	}
	emit(cl.do(http.MethodPost, "/admin/v1/balance", map[string]any{
		"name":   *name,
		"op":     *op,
		"amount": *amount,
	}))
}

// configCmd lists variables, or sets/clears one override.
func configCmd(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	baseURL, token := clientFlags(fs)
	key := fs.String("key", "", "variable key")
	value := fs.Int64("value", 0, "new value")
	clearVar := fs.Bool("clear", false, "drop the override and fall back to tuning")
	_ = fs.Parse(args)

	cl := newAdminClient(*baseURL, *token, 5*time.Second)
	if strings.TrimSpace(*key) == "" {
		emit(cl.do(http.MethodGet, "/admin/v1/config", nil))
		return
	}
	body := map[string]any{"key": *key}
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "value" {
			set = true
		}
	})
	switch {
	case *clearVar:
		body["clear"] = true
	case set:
		body["value"] = *value
	}
	emit(cl.do(http.MethodPost, "/admin/v1/config", body))
}
