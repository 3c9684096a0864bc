// Package insight derives the insight and next-step annotations attached to
// donor reports. The derivation is deterministic per segment; when an
// Anthropic key is configured, a short model-written summary is appended,
// and any model failure falls back silently to the deterministic text so
// reports stay available offline.
package insight

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/sells-group/fundraising-cli/internal/nlq"
)

// ForSegment returns the fixed insight and next-step lines for a classified
// donor segment.
func ForSegment(params nlq.QueryParams) (insights, nextSteps []string) {
	insights = []string{
		fmt.Sprintf("Segment: %s", params.Segment),
		"Prioritize donors with higher lifetime giving and recent engagement.",
	}
	if params.Defaulted {
		insights = append(insights, "No explicit segment matched; defaulted to recent donors.")
	}
	nextSteps = []string{
		"Create follow-up tasks for top 5 donors.",
		"Draft personalized outreach acknowledging specific past gifts.",
	}
	return insights, nextSteps
}

// ForProfile returns the fixed annotations for a single donor profile.
func ForProfile() (insights, nextSteps []string) {
	insights = []string{
		"Consider a stewardship touch highlighting impact of their last gift.",
		"If recency > 12 months, classify as lapsed and propose reactivation.",
	}
	nextSteps = []string{
		"Create a follow-up task for personal outreach.",
		"Prepare suggested ask amounts based on lifetime and most recent gift.",
	}
	return insights, nextSteps
}

// ForProspects returns the fixed annotations for the prospect ranking.
func ForProspects() (insights, nextSteps []string) {
	insights = []string{
		"Upgrade candidates prioritized by lifetime giving and lapse status.",
		"Use personalized asks ~10-20% above last gift for warm leads.",
	}
	nextSteps = []string{
		"Schedule 3 outreach tasks with tailored messaging.",
		"Add top prospects to an upgrade cadence.",
	}
	return insights, nextSteps
}

// Generator optionally enriches deterministic insights with a single short
// Claude completion. A nil Generator is valid and produces no enrichment.
type Generator struct {
	client sdk.Client
	model  string
}

// NewGenerator creates a Generator. Returns nil when no API key is set,
// which disables enrichment entirely.
func NewGenerator(apiKey, model string) *Generator {
	if apiKey == "" {
		return nil
	}
	return &Generator{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Enrich asks the model for one extra insight line summarizing the segment
// result. Failures are logged and swallowed: the returned slice is the
// input insights, extended only on success.
func (g *Generator) Enrich(ctx context.Context, insights []string, segment nlq.Segment, rowCount int) []string {
	if g == nil {
		return insights
	}

	prompt := fmt.Sprintf(
		"A fundraising query for the %q donor segment returned %d records. "+
			"Write one concise insight (a single sentence, no preamble) a development officer could act on.",
		segment, rowCount)

	msg, err := g.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(g.model),
		MaxTokens: 128,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		zap.L().Warn("insight enrichment failed", zap.Error(err))
		return insights
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if line := strings.TrimSpace(sb.String()); line != "" {
		insights = append(insights, line)
	}
	return insights
}
