package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/jmleung/deltamail/internal/config"
	"github.com/jmleung/deltamail/internal/errors"
)

// Status is the terminal state of a dispatched message.
type Status string

const (
	// StatusSent means the transport accepted the message.
	StatusSent Status = "sent"
	// StatusDeferred means the transport failed and the message was
	// persisted as a draft instead.
	StatusDeferred Status = "deferred"
)

// Outcome is the result of dispatching one message.
type Outcome struct {
	Status    Status `json:"status"`
	Reason    string `json:"reason,omitempty"`     // set when deferred
	DraftPath string `json:"draft_path,omitempty"` // set when deferred
}

// Transport attempts live delivery of a built message.
type Transport interface {
	Send(ctx context.Context, msg *mail.Msg) error
}

// SMTPTransport submits messages over SMTP per the configured host/port,
// optionally authenticating and optionally upgrading to TLS before auth.
type SMTPTransport struct {
	cfg config.SMTP
}

// NewSMTPTransport creates a transport from SMTP settings.
func NewSMTPTransport(cfg config.SMTP) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

// Send dials the configured host and submits the message. A missing host is
// reported as an ordinary transport error so the caller falls back to a
// draft, same as a refused connection.
func (t *SMTPTransport) Send(ctx context.Context, msg *mail.Msg) error {
	if t.cfg.Host == "" {
		return fmt.Errorf("smtp host not configured")
	}

	opts := []mail.Option{
		mail.WithPort(t.cfg.Port),
		mail.WithTimeout(time.Duration(t.cfg.TimeoutSeconds) * time.Second),
	}
	if t.cfg.StartTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if t.cfg.Username != "" && t.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.cfg.Username),
			mail.WithPassword(t.cfg.Password),
		)
	}

	client, err := mail.NewClient(t.cfg.Host, opts...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// Dispatcher attempts transport delivery and persists a draft on failure.
type Dispatcher struct {
	transport Transport
	draftsDir string
	now       func() time.Time
}

// NewDispatcher creates a dispatcher writing fallback drafts to draftsDir.
func NewDispatcher(transport Transport, draftsDir string) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		draftsDir: draftsDir,
		now:       time.Now,
	}
}

// Dispatch attempts delivery of msg to recipient. Any transport error is
// recovered by serializing the full message to a uniquely named draft file;
// only a failure of that fallback write is returned as an error. The suffix
// distinguishes batched from per-record drafts in the file name.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *mail.Msg, recipient, suffix string) (Outcome, error) {
	sendErr := d.transport.Send(ctx, msg)
	if sendErr == nil {
		return Outcome{Status: StatusSent}, nil
	}

	path, err := d.saveDraft(msg, recipient, suffix)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Status:    StatusDeferred,
		Reason:    sendErr.Error(),
		DraftPath: path,
	}, nil
}

// saveDraft serializes msg (headers included) to the drafts directory. The
// file name carries a microsecond timestamp plus the sanitized recipient so
// two messages in the same run never collide.
func (d *Dispatcher) saveDraft(msg *mail.Msg, recipient, suffix string) (string, error) {
	if err := os.MkdirAll(d.draftsDir, 0o755); err != nil {
		return "", errors.NewDraftWrite(d.draftsDir, err)
	}

	now := d.now()
	ts := now.Format("20060102_150405") + fmt.Sprintf("_%06d", now.Nanosecond()/1000)
	name := "draft_" + ts + "_" + SanitizeRecipient(recipient)
	if suffix != "" {
		name += "_" + SanitizeRecipient(suffix)
	}
	name += ".eml"
	path := filepath.Join(d.draftsDir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", errors.NewDraftWrite(path, err)
	}
	if _, err := msg.WriteTo(f); err != nil {
		f.Close()
		return "", errors.NewDraftWrite(path, err)
	}
	if err := f.Close(); err != nil {
		return "", errors.NewDraftWrite(path, err)
	}
	return path, nil
}

// SanitizeRecipient turns an address into a filename-safe token: "@" becomes
// "_at_", angle brackets are stripped, path separators become "_". An empty
// address yields "unknown".
func SanitizeRecipient(addr string) string {
	r := strings.NewReplacer(
		"@", "_at_",
		"<", "",
		">", "",
		"/", "_",
		"\\", "_",
	)
	out := r.Replace(addr)
	if out == "" {
		return "unknown"
	}
	return out
}
