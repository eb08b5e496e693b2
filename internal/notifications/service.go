package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storyforge/internal/config"
	"storyforge/internal/stage"
)

const userAgent = "Storyforge/0.1.0"

// Service defines the notification surface exposed to lifecycle components.
type Service interface {
	NotifyStageChanged(ctx context.Context, title string, from, to stage.Stage) error
	NotifyItemCompleted(ctx context.Context, title string) error
	NotifyItemFailed(ctx context.Context, title, reason string) error
	NotifyForcedTransition(ctx context.Context, title string, from, to stage.Stage, reason string) error
	NotifyStuckItems(ctx context.Context, count int, oldest time.Duration) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		prefs:    cfg.Notifications,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	prefs    config.Notifications
}

func (n *ntfyService) NotifyStageChanged(ctx context.Context, title string, from, to stage.Stage) error {
	if !n.prefs.StageChanges {
		return nil
	}
	data := payload{
		title:   "Storyforge - Stage Changed",
		message: fmt.Sprintf("%s: %s → %s", title, from.DisplayName(), to.DisplayName()),
		tags:    []string{"storyforge", "stage", "changed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyItemCompleted(ctx context.Context, title string) error {
	if !n.prefs.Completions {
		return nil
	}
	data := payload{
		title:    "Storyforge - Completed",
		message:  fmt.Sprintf("Video ready: %s", strings.TrimSpace(title)),
		tags:     []string{"storyforge", "item", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyItemFailed(ctx context.Context, title, reason string) error {
	if !n.prefs.Failures {
		return nil
	}
	message := fmt.Sprintf("Failed: %s", strings.TrimSpace(title))
	if reason = strings.TrimSpace(reason); reason != "" {
		message = fmt.Sprintf("%s\nReason: %s", message, reason)
	}
	data := payload{
		title:    "Storyforge - Failed",
		message:  message,
		tags:     []string{"storyforge", "item", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyForcedTransition(ctx context.Context, title string, from, to stage.Stage, reason string) error {
	message := fmt.Sprintf("Forced override on %s: %s → %s", strings.TrimSpace(title), from.DisplayName(), to.DisplayName())
	if reason = strings.TrimSpace(reason); reason != "" {
		message = fmt.Sprintf("%s\nReason: %s", message, reason)
	}
	data := payload{
		title:    "Storyforge - Forced Transition",
		message:  message,
		tags:     []string{"storyforge", "forced", "override"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyStuckItems(ctx context.Context, count int, oldest time.Duration) error {
	if !n.prefs.StuckItems {
		return nil
	}
	oldest = oldest.Round(time.Minute)
	data := payload{
		title:   "Storyforge - Stuck Items",
		message: fmt.Sprintf("%d item(s) stuck in processing, oldest for %s", count, oldest),
		tags:    []string{"storyforge", "stuck", "alert"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Storyforge - Test",
		message:  "Notification system test",
		tags:     []string{"storyforge", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyStageChanged(context.Context, string, stage.Stage, stage.Stage) error {
	return nil
}
func (noopService) NotifyItemCompleted(context.Context, string) error { return nil }
func (noopService) NotifyItemFailed(context.Context, string, string) error {
	return nil
}
func (noopService) NotifyForcedTransition(context.Context, string, stage.Stage, stage.Stage, string) error {
	return nil
}
func (noopService) NotifyStuckItems(context.Context, int, time.Duration) error { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }
