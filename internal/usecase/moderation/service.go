package moderation

import (
	"context"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/accordfamily/accord-backend/errors"
	"github.com/accordfamily/accord-backend/pkg/ai"
)

// CompletionClient abstracts the language model used for evaluation,
// rewriting and translation.
type CompletionClient interface {
	Complete(ctx context.Context, req ai.CompletionRequest) (string, error)
}

// Result holds the outcome of normalizing a message in both parties' languages
type Result struct {
	NeedsRewrite     bool
	SenderVersion    string
	RecipientVersion string
}

// Evaluator gates outbound communication against the active court orders
// and the family violence definition
type Evaluator struct {
	client CompletionClient
	logger *zap.Logger
}

// NewEvaluator creates a new compliance evaluator
func NewEvaluator(client CompletionClient, logger *zap.Logger) *Evaluator {
	return &Evaluator{client: client, logger: logger}
}

// Evaluate checks whether a message complies with the orders. Only an exact
// affirmative from the model counts as compliant; anything else, including
// hedged or verbose answers, is treated as non-compliant.
func (e *Evaluator) Evaluate(ctx context.Context, message, orders, senderRole, recipientRole, language string) (bool, error) {
	raw, err := e.client.Complete(ctx, compliancePrompt(message, orders, senderRole, recipientRole, language))
	if err != nil {
		return false, apperrors.ErrModerationUnavailable("evaluate", err)
	}

	verdict := strings.ToLower(strings.TrimSpace(raw))
	compliant := verdict == "yes"

	e.logger.Info("compliance evaluation",
		zap.String("verdict", verdict),
		zap.Bool("compliant", compliant))
	return compliant, nil
}

// Rewrite produces a compliant version of a non-compliant message in the
// given language. Label lines the model sometimes wraps the answer in are
// stripped out.
func (e *Evaluator) Rewrite(ctx context.Context, message, orders, senderRole, recipientRole, language string) (string, error) {
	raw, err := e.client.Complete(ctx, rewritePrompt(message, orders, senderRole, recipientRole, language))
	if err != nil {
		return "", apperrors.ErrModerationUnavailable("rewrite", err)
	}

	rewritten := extractRewritten(raw)
	e.logger.Info("message rewritten", zap.Int("length", len(rewritten)))
	return rewritten, nil
}

// Translate renders a message in the target language. Translation is a
// best-effort convenience, so on failure the original text is returned
// rather than blocking the message.
func (e *Evaluator) Translate(ctx context.Context, message, targetLanguage string) string {
	raw, err := e.client.Complete(ctx, translatePrompt(message, targetLanguage))
	if err != nil {
		e.logger.Warn("translation failed, falling back to original text",
			zap.String("target_language", targetLanguage),
			zap.Error(err))
		return message
	}
	return strings.TrimSpace(raw)
}

// Normalize evaluates a message and produces the versions each party will
// see. A compliant message keeps the sender's original wording; a
// non-compliant one is rewritten independently per language so neither
// party receives the offending text.
func (e *Evaluator) Normalize(ctx context.Context, message, orders, senderRole, recipientRole, senderLanguage, recipientLanguage string) (*Result, error) {
	compliant, err := e.Evaluate(ctx, message, orders, senderRole, recipientRole, senderLanguage)
	if err != nil {
		return nil, err
	}

	result := &Result{NeedsRewrite: !compliant}

	if compliant {
		result.SenderVersion = message
		if senderLanguage == recipientLanguage {
			result.RecipientVersion = message
		} else {
			result.RecipientVersion = e.Translate(ctx, message, recipientLanguage)
		}
		return result, nil
	}

	result.SenderVersion, err = e.Rewrite(ctx, message, orders, senderRole, recipientRole, senderLanguage)
	if err != nil {
		return nil, err
	}

	if senderLanguage == recipientLanguage {
		result.RecipientVersion = result.SenderVersion
	} else {
		result.RecipientVersion, err = e.Rewrite(ctx, message, orders, senderRole, recipientRole, recipientLanguage)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// extractRewritten drops any label line the model echoed back and collapses
// the remainder into a single line.
func extractRewritten(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "rewritten message") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}
