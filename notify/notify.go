// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/danielhkuo/ward-ballot/cliparse"
)

var (
	ErrNoRecipient      = errors.New("voter has no email address")
	ErrInvalidRecipient = errors.New("email address contains a line break")
)

// Recorded is one committed vote in a confirmation.
type Recorded struct {
	VoteID   int64
	PostName string
}

// Confirmation is what a voter is told after their ballot commits.
// Candidate choices are deliberately absent.
type Confirmation struct {
	VoterID      string
	Email        string
	ElectionName string
	CastAt       time.Time
	Votes        []Recorded
}

type Notifier interface {
	Notify(ctx context.Context, c Confirmation) error
}

// New returns an SMTP notifier when a host is configured, otherwise one
// that only logs.
func New(cfg cliparse.SMTPConfig) Notifier {
	if cfg.Host == "" {
		return LogNotifier{}
	}
	return NewSMTPNotifier(cfg)
}

// LogNotifier writes confirmations to the structured log
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, c Confirmation) error {
	slog.Info("vote confirmation",
		"voter_id", c.VoterID,
		"election", c.ElectionName,
		"votes", len(c.Votes),
	)
	return nil
}

// SendFunc delivers msg. Implementations must give up once ctx is done.
type SendFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPNotifier struct {
	cfg  cliparse.SMTPConfig
	send SendFunc
	now  func() time.Time
}

func NewSMTPNotifier(cfg cliparse.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, send: SendMail, now: time.Now}
}

func (n *SMTPNotifier) Notify(ctx context.Context, c Confirmation) error {
	if c.Email == "" {
		return ErrNoRecipient
	}
	if strings.ContainsAny(c.Email, "\r\n") {
		return ErrInvalidRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	msg := Message(n.cfg.From, c.Email, "Your vote has been recorded", Summary(c, n.now()))

	// The send goroutine exits on its own once ctx expires
	done := make(chan error, 1)
	go func() {
		done <- n.send(ctx, addr, auth, n.cfg.From, []string{c.Email}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send confirmation: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendMail is smtp.SendMail with the connection bounded by ctx.
func SendMail(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return err
		}
	}

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(a); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// Summary renders the per-post confirmation text
func Summary(c Confirmation, now time.Time) string {
	var order []string
	ids := make(map[string][]string)
	for _, v := range c.Votes {
		if _, ok := ids[v.PostName]; !ok {
			order = append(order, v.PostName)
		}
		ids[v.PostName] = append(ids[v.PostName], "#"+humanize.Comma(v.VoteID))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your ballot in %s was recorded %s.\n\n",
		c.ElectionName, humanize.RelTime(c.CastAt, now, "ago", "from now"))
	for _, post := range order {
		fmt.Fprintf(&b, "%s: %s (vote %s)\n",
			post, english.Plural(len(ids[post]), "selection", ""), english.WordSeries(ids[post], "and"))
	}
	b.WriteString("\nKeep the vote numbers if you want an official to audit your ballot.\n")
	return b.String()
}

// Message builds a plain-text RFC 5322 message. Line breaks in header
// values are removed.
func Message(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + headerValue(from) + "\r\n")
	b.WriteString("To: " + headerValue(to) + "\r\n")
	b.WriteString("Subject: " + headerValue(subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

var headerBreaks = strings.NewReplacer("\r", "", "\n", "")

func headerValue(v string) string {
	return headerBreaks.Replace(v)
}
