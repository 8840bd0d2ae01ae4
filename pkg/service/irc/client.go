package irc

import (
	"context"
	"crypto/tls"

	ircevent "github.com/thoj/go-ircevent"

	"github.com/fuelrats/ratboard/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Sender is the narrow outbound surface handlers use to talk back to the
// network. *Client implements it; tests substitute a recorder.
type Sender interface {
	Privmsg(target, text string)
}

// Message is one inbound channel or private message
type Message struct {
	Sender  string
	Channel string
	Text    string
}

// Handler receives every PRIVMSG the bot can see. Channel is the sender's
// nick for private messages.
type Handler func(ctx context.Context, msg Message)

// Config holds the connection settings for one IRC network
type Config struct {
	Server   string
	Nick     string
	User     string
	Password string `masq:"secret"`
	UseTLS   bool
	Channels []string
}

// Client wraps a go-ircevent connection with context-based lifecycle
// management.
type Client struct {
	cfg     Config
	conn    *ircevent.Connection
	handler Handler
}

// New creates an IRC client. SASL is enabled when a password is set.
func New(cfg Config, handler Handler) *Client {
	user := cfg.User
	if user == "" {
		user = cfg.Nick
	}

	conn := ircevent.IRC(cfg.Nick, user)
	conn.VerboseCallbackHandler = false
	conn.Debug = false
	conn.UseTLS = cfg.UseTLS
	if cfg.UseTLS {
		conn.TLSConfig = &tls.Config{ServerName: serverHost(cfg.Server)}
	}
	if cfg.Password != "" {
		conn.UseSASL = true
		conn.SASLLogin = cfg.Nick
		conn.SASLPassword = cfg.Password
	}

	c := &Client{
		cfg:     cfg,
		conn:    conn,
		handler: handler,
	}

	conn.AddCallback("001", func(e *ircevent.Event) {
		logging.Default().Info("IRC connected", "server", cfg.Server, "nick", cfg.Nick)
		for _, ch := range cfg.Channels {
			conn.Join(ch)
		}
	})
	conn.AddCallback("366", func(e *ircevent.Event) {})
	conn.AddCallback("PRIVMSG", func(e *ircevent.Event) {
		if c.handler == nil {
			return
		}
		msg := Message{
			Sender:  e.Nick,
			Channel: e.Arguments[0],
			Text:    e.Message(),
		}
		// Private messages arrive addressed to our nick
		if msg.Channel == conn.GetNick() {
			msg.Channel = e.Nick
		}
		c.handler(context.Background(), msg)
	})

	return c
}

func serverHost(server string) string {
	for i := 0; i < len(server); i++ {
		if server[i] == ':' {
			return server[:i]
		}
	}
	return server
}

// Privmsg sends a message to a channel or nick
func (c *Client) Privmsg(target, text string) {
	c.conn.Privmsg(target, text)
}

// Run connects and processes events until ctx is cancelled or the
// connection loop exits.
func (c *Client) Run(ctx context.Context) error {
	if err := c.conn.Connect(c.cfg.Server); err != nil {
		return goerr.Wrap(err, "failed to connect to IRC", goerr.V("server", c.cfg.Server))
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.conn.Loop()
	}()

	select {
	case <-ctx.Done():
		logging.Default().Info("IRC client shutting down")
		c.conn.Quit()
		<-done
		return nil
	case <-done:
		return goerr.New("IRC connection loop exited", goerr.V("server", c.cfg.Server))
	}
}
