// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"errors"
	"net"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/ward-ballot/cliparse"
)

func testConfirmation(castAt time.Time) Confirmation {
	return Confirmation{
		VoterID:      "V1",
		Email:        "v1@example.com",
		ElectionName: "Ward 3 Local Election",
		CastAt:       castAt,
		Votes: []Recorded{
			{VoteID: 11, PostName: "Mayor"},
			{VoteID: 12, PostName: "Ward Member"},
			{VoteID: 13, PostName: "Ward Member"},
			{VoteID: 14, PostName: "Ward Member"},
			{VoteID: 15, PostName: "Ward Member"},
		},
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(cliparse.SMTPConfig{}).(LogNotifier); !ok {
		t.Error("New() without host should return LogNotifier")
	}
	if _, ok := New(cliparse.SMTPConfig{Host: "mail.example.com", Port: 587}).(*SMTPNotifier); !ok {
		t.Error("New() with host should return *SMTPNotifier")
	}
}

func TestSummary(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	body := Summary(testConfirmation(now.Add(-3*time.Minute)), now)

	for _, want := range []string{
		"Ward 3 Local Election",
		"ago",
		"Mayor: 1 selection (vote #11)",
		"Ward Member: 4 selections (vote #12, #13, #14 and #15)",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Summary() missing %q in:\n%s", want, body)
		}
	}

	// Mayor comes before Ward Member, as cast
	if strings.Index(body, "Mayor:") > strings.Index(body, "Ward Member:") {
		t.Error("Summary() does not keep post order")
	}
}

func TestSMTPNotifier(t *testing.T) {
	cfg := cliparse.SMTPConfig{
		Host:     "mail.example.com",
		Port:     2525,
		Username: "user",
		Password: "pass",
		From:     "elections@example.com",
	}

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	var gotAuth smtp.Auth

	n := NewSMTPNotifier(cfg)
	n.send = func(_ context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, msg
		return nil
	}

	if err := n.Notify(context.Background(), testConfirmation(time.Now())); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if gotAddr != "mail.example.com:2525" {
		t.Errorf("addr = %q", gotAddr)
	}
	if gotAuth == nil {
		t.Error("expected PLAIN auth when username is set")
	}
	if gotFrom != cfg.From || len(gotTo) != 1 || gotTo[0] != "v1@example.com" {
		t.Errorf("envelope = %q -> %v", gotFrom, gotTo)
	}
	msg := string(gotMsg)
	if !strings.Contains(msg, "Subject: Your vote has been recorded\r\n") {
		t.Errorf("message missing subject:\n%s", msg)
	}
	if !strings.Contains(msg, "\r\n\r\n") {
		t.Error("message missing header/body separator")
	}
}

func TestSMTPNotifierErrors(t *testing.T) {
	n := NewSMTPNotifier(cliparse.SMTPConfig{Host: "mail.example.com", Port: 25})
	sendErr := errors.New("connection refused")
	n.send = func(context.Context, string, smtp.Auth, string, []string, []byte) error { return sendErr }

	c := testConfirmation(time.Now())
	if err := n.Notify(context.Background(), c); !errors.Is(err, sendErr) {
		t.Errorf("Notify() error = %v, want %v", err, sendErr)
	}

	c.Email = ""
	if err := n.Notify(context.Background(), c); !errors.Is(err, ErrNoRecipient) {
		t.Errorf("Notify() error = %v, want %v", err, ErrNoRecipient)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Notify(ctx, testConfirmation(time.Now())); !errors.Is(err, context.Canceled) {
		t.Errorf("Notify() error = %v, want %v", err, context.Canceled)
	}
}

func TestSMTPNotifierTimeout(t *testing.T) {
	n := NewSMTPNotifier(cliparse.SMTPConfig{Host: "mail.example.com", Port: 25})

	// A server that never answers
	release := make(chan struct{})
	defer close(release)
	n.send = func(context.Context, string, smtp.Auth, string, []string, []byte) error {
		<-release
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := n.Notify(ctx, testConfirmation(time.Now()))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Notify() error = %v, want %v", err, context.DeadlineExceeded)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Notify() returned after %v", elapsed)
	}
}

func TestSendMailStalledServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	// Accept and never send the greeting
	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()
	defer func() {
		select {
		case conn := <-accepted:
			conn.Close()
		default:
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = SendMail(ctx, ln.Addr().String(), nil, "elections@example.com", []string{"v1@example.com"}, []byte("hi"))
	if err == nil {
		t.Fatal("SendMail() should fail against a silent server")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("SendMail() returned after %v", elapsed)
	}
}

func TestMessageHeaderInjection(t *testing.T) {
	msg := string(Message("elections@example.com", "v1@example.com\r\nBcc: attacker@example.com",
		"Recorded\nX-Extra: 1", "body"))

	header := msg[:strings.Index(msg, "\r\n\r\n")]
	if strings.Count(header, "\r\n") != 4 {
		t.Errorf("header has extra lines:\n%s", header)
	}
	for _, line := range strings.Split(header, "\r\n") {
		if strings.HasPrefix(line, "Bcc:") || strings.HasPrefix(line, "X-Extra:") {
			t.Errorf("injected header line %q", line)
		}
	}

	n := NewSMTPNotifier(cliparse.SMTPConfig{Host: "mail.example.com", Port: 25})
	n.send = func(context.Context, string, smtp.Auth, string, []string, []byte) error {
		t.Error("send called for an invalid recipient")
		return nil
	}
	c := testConfirmation(time.Now())
	c.Email = "v1@example.com\r\nBcc: attacker@example.com"
	if err := n.Notify(context.Background(), c); !errors.Is(err, ErrInvalidRecipient) {
		t.Errorf("Notify() error = %v, want %v", err, ErrInvalidRecipient)
	}
}

func TestLogNotifier(t *testing.T) {
	if err := (LogNotifier{}).Notify(context.Background(), testConfirmation(time.Now())); err != nil {
		t.Errorf("LogNotifier.Notify() error = %v", err)
	}
}
