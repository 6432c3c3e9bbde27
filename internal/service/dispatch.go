package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"devlog_notifier/internal/domain"
	"devlog_notifier/internal/markdown"
	"devlog_notifier/internal/notify"
)

// NotificationDispatcher turns a delta into chat messages: one per new
// devlog, plus at most one status transition message per pass.
type NotificationDispatcher struct {
	notifier       Notifier
	publisher      Publisher
	projectBaseURL string
	logger         *slog.Logger
}

func NewNotificationDispatcher(notifier Notifier, publisher Publisher, projectBaseURL string, logger *slog.Logger) *NotificationDispatcher {
	return &NotificationDispatcher{
		notifier:       notifier,
		publisher:      publisher,
		projectBaseURL: strings.TrimRight(projectBaseURL, "/"),
		logger:         logger.With("component", "dispatcher"),
	}
}

func (d *NotificationDispatcher) Dispatch(ctx context.Context, channel string, result *domain.DeltaResult) (int, bool) {
	posted := 0
	for i := range result.NewDevlogs {
		devlog := &result.NewDevlogs[i]
		blocks := d.devlogBlocks(result, devlog)
		err := d.notifier.PostMessage(ctx, channel, blocks, notify.PostOptions{SuppressLinkPreview: true})
		if err != nil {
			d.logger.Error("failed to post devlog",
				"project_id", result.ProjectID,
				"devlog_id", devlog.ID,
				"error", err,
			)
			continue
		}
		posted++
	}

	transitionPosted := false
	if result.Transition != domain.ShipStatusNone {
		blocks := d.transitionBlocks(result)
		err := d.notifier.PostMessage(ctx, channel, blocks, notify.PostOptions{SuppressLinkPreview: true})
		if err != nil {
			d.logger.Error("failed to post status transition",
				"project_id", result.ProjectID,
				"transition", string(result.Transition),
				"error", err,
			)
		} else {
			transitionPosted = true
		}
	}

	if d.publisher != nil && !result.Empty() {
		if err := d.publisher.Publish(ctx, result); err != nil {
			d.logger.Error("failed to publish sync event",
				"project_id", result.ProjectID,
				"error", err,
			)
		}
	}

	return posted, transitionPosted
}

func (d *NotificationDispatcher) projectLink(result *domain.DeltaResult) string {
	return fmt.Sprintf("<%s/projects/%d|%s>", d.projectBaseURL, result.ProjectID, result.ProjectTitle)
}

func (d *NotificationDispatcher) devlogBlocks(result *domain.DeltaResult, devlog *domain.Devlog) []markdown.Block {
	headline := fmt.Sprintf(":shipitparrot: %s got a new devlog posted! :shipitparrot:", d.projectLink(result))
	blocks := []markdown.Block{markdown.SectionBlock{Text: headline}}

	if markdown.ContainsMarkdown(devlog.Body) {
		blocks = append(blocks, markdown.Render(devlog.Body)...)
	} else {
		blocks = append(blocks, markdown.SectionBlock{Text: "> " + devlog.Body})
	}

	return append(blocks,
		markdown.DividerBlock{},
		markdown.ContextBlock{Text: metadataLine(devlog)},
	)
}

func (d *NotificationDispatcher) transitionBlocks(result *domain.DeltaResult) []markdown.Block {
	var text string
	switch result.Transition {
	case domain.ShipStatusPending:
		text = fmt.Sprintf(":ship: %s has been shipped and is waiting for review! :eyes:", d.projectLink(result))
	case domain.ShipStatusSubmitted:
		text = fmt.Sprintf(":tada: %s has been submitted for voting! :tada:", d.projectLink(result))
	}
	return []markdown.Block{markdown.SectionBlock{Text: text}}
}

// metadataLine renders the context line under every devlog message, with the
// creation time linking to a time.cs50.io countdown-style page.
func metadataLine(devlog *domain.Devlog) string {
	createdAt := devlog.CreatedAt.UTC()
	cs50 := createdAt.Format("20060102T1504") + "+0000"
	stamp := createdAt.Format("02/01/2006, 15:04")
	return fmt.Sprintf("Devlog created at <https://time.cs50.io/%s|%s> and took %s.",
		cs50, stamp, formatDuration(devlog.DurationSeconds))
}

// formatDuration decomposes seconds into days, hours and minutes, omitting
// zero units and pluralizing. Sub-minute durations come out empty.
func formatDuration(seconds int) string {
	units := []struct {
		size  int
		wrap  int
		label string
	}{
		{86400, 0, "day"},
		{3600, 24, "hour"},
		{60, 60, "minute"},
	}

	var parts []string
	for _, u := range units {
		val := seconds / u.size
		if u.wrap > 0 {
			val %= u.wrap
		}
		if val == 0 {
			continue
		}
		label := u.label
		if val > 1 {
			label += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", val, label))
	}

	return strings.Join(parts, " ")
}
