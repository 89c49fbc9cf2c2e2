package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer drains the activity queue and appends one line per event to a
// log file.
type Consumer struct {
	URL     string
	Queue   string
	LogPath string
	Logger  *slog.Logger
}

// NewConsumer returns a consumer writing to logs/activity.log.
func NewConsumer(url string, logger *slog.Logger) *Consumer {
	return &Consumer{
		URL:     url,
		Queue:   ActivityQueue,
		LogPath: filepath.Join("logs", "activity.log"),
		Logger:  logger,
	}
}

// Run connects to the broker and consumes until ctx is cancelled. Lost
// connections are re-established with exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Logger.Warn("activity consumer: dial failed", slog.Any("error", err), slog.Duration("retry_in", backoff))
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Logger.Warn("activity consumer: loop ended, reconnecting", slog.Any("error", err))
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Logger.Warn("activity consumer: set QoS failed", slog.Any("error", err))
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.HandleMessage(d.Body); err != nil {
				c.Logger.Error("activity consumer: handle message failed", slog.Any("error", err))
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one event and appends it to the log file.
func (c *Consumer) HandleMessage(body []byte) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" {
		return errors.New("event without type")
	}
	if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatEvent(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatEvent renders ev as a single human-readable line.
func FormatEvent(ev Event) string {
	parts := []string{fmt.Sprintf("[%s] %s", ev.OccurredAt, ev.Type), fmt.Sprintf("user_id=%d", ev.UserID)}
	if ev.PlanID != 0 {
		parts = append(parts, fmt.Sprintf("plan_id=%d", ev.PlanID))
	}
	if ev.TaskID != 0 {
		parts = append(parts, fmt.Sprintf("task_id=%d", ev.TaskID))
	}
	if ev.EntryID != 0 {
		parts = append(parts, fmt.Sprintf("entry_id=%d", ev.EntryID))
	}
	if ev.LogID != 0 {
		parts = append(parts, fmt.Sprintf("log_id=%d", ev.LogID))
	}
	if ev.Title != "" {
		parts = append(parts, fmt.Sprintf("title=%q", ev.Title))
	}
	if ev.Type == EventPlanCompleted || ev.Progress != 0 {
		parts = append(parts, fmt.Sprintf("progress=%.4f", ev.Progress))
	}
	return strings.Join(parts, " | ") + "\n"
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
