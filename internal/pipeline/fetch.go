package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/lexivid/lexivid/internal/captions"
	"github.com/lexivid/lexivid/internal/domain"
	"github.com/lexivid/lexivid/internal/store"
)

// Caption source markers recorded in the scratch state.
const (
	captionSourceCaptions = "captions"
	captionSourceASR      = "asr"
	captionSourceNone     = "none"
)

// runMeta loads the material's descriptive fields into the scratch state.
// Every later step depends on this having run.
func (r *Runner) runMeta(ctx context.Context, state *domain.PipelineState) error {
	material, err := r.materials.Get(ctx, state.TargetID)
	if err != nil {
		if store.IsNotFound(err) {
			return fmt.Errorf("material %s not found: %w", state.TargetID, err)
		}
		return err
	}

	state.Title = material.Title
	state.ExternalID = material.ExternalID
	state.ExternalURL = material.ExternalURL
	state.MetaLoaded = true
	return nil
}

// runCaptions fetches the caption track. "No captions" is a typed result
// from the provider, recorded in the state for the asr step; only transport
// failures propagate as errors.
func (r *Runner) runCaptions(ctx context.Context, state *domain.PipelineState) error {
	if !state.MetaLoaded {
		return fmt.Errorf("%w: meta must run before captions", ErrStepOrder)
	}

	result, err := r.captions.FetchCaptions(ctx, state.TargetID, state.ExternalID, state.ExternalURL)
	if err != nil {
		return fmt.Errorf("caption fetch failed: %w", err)
	}

	state.CaptionsFetched = true
	switch result.Status {
	case captions.StatusFetched:
		state.Cues = result.Cues
		state.CaptionSource = captionSourceCaptions
		state.CaptionNote = ""
	default:
		state.Cues = nil
		state.CaptionSource = ""
		state.CaptionNote = result.Reason
		if result.Message != "" {
			state.CaptionNote = result.Reason + ": " + result.Message
		}
		r.logger.Info("captions unavailable",
			"target_id", state.TargetID,
			"reason", result.Reason)
	}
	return nil
}

// runASR is the fallback transcript stage. When the caption step already
// produced cues it does nothing; when captions were unavailable it records
// that no transcript source exists, which lets the rest of the pipeline
// converge on an empty candidate set instead of failing.
func (r *Runner) runASR(ctx context.Context, state *domain.PipelineState) error {
	if !state.CaptionsFetched {
		return fmt.Errorf("%w: captions must run before asr", ErrStepOrder)
	}

	if state.CaptionSource == captionSourceCaptions {
		return nil
	}

	// TODO(asr): wire a speech-to-text provider here once transcripts for
	// caption-less materials are needed.
	state.CaptionSource = captionSourceNone
	return nil
}

// runFormat normalizes raw cues into segments: whitespace collapsed,
// bracketed annotations stripped, empty cues dropped.
func (r *Runner) runFormat(ctx context.Context, state *domain.PipelineState) error {
	if state.CaptionSource == "" {
		return fmt.Errorf("%w: asr must run before format", ErrStepOrder)
	}

	segments := make([]domain.Segment, 0, len(state.Cues))
	for _, cue := range state.Cues {
		text := normalizeCueText(cue.Text)
		if text == "" {
			continue
		}
		segments = append(segments, domain.Segment{
			Index:    len(segments),
			StartSec: cue.StartSec,
			EndSec:   cue.EndSec,
			Text:     text,
		})
	}

	state.Segments = segments
	state.SegmentCount = len(segments)
	state.Formatted = true
	return nil
}

// normalizeCueText collapses whitespace and strips [bracketed] sound
// annotations commonly embedded in caption tracks.
func normalizeCueText(text string) string {
	var b strings.Builder
	depth := 0
	for _, r := range text {
		switch r {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
