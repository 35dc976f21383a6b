package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/garyjia/purchase-bot/internal/application/idrange"
	"github.com/garyjia/purchase-bot/internal/application/port"
	"github.com/garyjia/purchase-bot/internal/domain/entity"
)

// decisionStyle describes how a decision is announced
type decisionStyle struct {
	verb  string
	color port.Color
	// announce posts the outcome to the purchase channel
	announce bool
}

var decisionStyles = map[entity.Decision]decisionStyle{
	entity.DecisionApprove: {verb: "approved", color: port.ColorGood, announce: true},
	entity.DecisionDeny:    {verb: "denied", color: port.ColorDanger, announce: true},
	entity.DecisionIgnore:  {verb: "ignored"},
}

// batch returns the handler for approve, deny and ignore. Each valid ID is
// resolved independently; per-ID failures are reported and the batch goes on
// unless the store or the gateway is unavailable.
func (r *Router) batch(decision entity.Decision) handlerFunc {
	style := decisionStyles[decision]

	return func(ctx context.Context, userID, text string) error {
		ids := idrange.Parse(text)
		if len(ids.IDs) == 0 {
			msg := ids.ErrorMessage
			if msg == "" {
				msg = fmt.Sprintf("No request IDs given. Example: %s 1 2 3 | %s 1-3", decision, decision)
			}
			if err := r.gateway.SendDirectMessage(ctx, userID, msg); err != nil {
				return err
			}
			return entity.NewValidationError("%s: no valid request IDs in %q", decision, text)
		}

		approverName, err := r.gateway.ResolveDisplayName(ctx, userID)
		if err != nil {
			return fmt.Errorf("resolve approver name: %w", err)
		}

		// only a fatal error stops the batch; the rest are joined and returned at the end
		var errs []error
		for _, id := range ids.IDs {
			if err := r.resolveOne(ctx, decision, style, id, userID, approverName); err != nil {
				if entity.IsFatal(err) {
					return err
				}
				r.logger.Error("Failed to resolve request", "id", id, "decision", decision, "error", err)
				errs = append(errs, fmt.Errorf("request %d: %w", id, err))
			}
		}

		if ids.HasErrors() {
			if err := r.gateway.SendDirectMessage(ctx, userID, ids.ErrorMessage); err != nil {
				if entity.IsFatal(err) {
					return err
				}
				errs = append(errs, fmt.Errorf("report parse errors: %w", err))
			}
		}
		return errors.Join(errs...)
	}
}

func (r *Router) resolveOne(ctx context.Context, decision entity.Decision, style decisionStyle, id int64, userID, approverName string) error {
	req, _, err := r.lifecycle.Resolve(ctx, id, decision, approverName)
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return r.gateway.SendDirectMessage(ctx, userID, fmt.Sprintf("ID: %d not found", id))
	case errors.Is(err, entity.ErrAlreadyResolved):
		return r.gateway.SendDirectMessage(ctx, userID, fmt.Sprintf("ID: %d has already been handled", id))
	case err != nil:
		return err
	}

	if style.announce {
		attachment := &port.Attachment{
			Color: style.color,
			Text: fmt.Sprintf("The purchase request above was %s (request ID %d, approver %s)",
				style.verb, id, approverName),
		}
		quote := fmt.Sprintf("%s: %s", req.RequesterName, req.Text)
		if err := r.gateway.PostChannelMessage(ctx, quote, attachment); err != nil {
			return err
		}
	}

	return r.gateway.SendDirectMessage(ctx, userID, fmt.Sprintf("ID: %d %s", id, style.verb))
}
