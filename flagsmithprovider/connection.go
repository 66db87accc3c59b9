package flagsmithprovider

import (
	"context"
	"fmt"
	"log/slog"

	flagsmith "github.com/Flagsmith/flagsmith-go-client/v4"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	feature "github.com/Flagsmith/flagsmith-go-feature"
)

// connection is a feature.Connection backed by a Flagsmith SDK client.
type connection struct {
	client      *flagsmith.Client
	log         *slog.Logger
	bus         *eventBus
	cancel      context.CancelFunc
	environment string
	// local is set when flags are evaluated against the in-memory environment.
	local bool
}

func (c *connection) On(kind feature.EventKind, handler func(err error)) {
	c.bus.on(kind, handler)
}

// IsEnabled evaluates the flag for the identity named by ec.UserID, or for
// the environment when the context carries no user. SDK failures are
// published as error events and evaluate to false.
func (c *connection) IsEnabled(ctx context.Context, name string, ec feature.EvaluationContext) bool {
	flags, err := c.flags(ctx, ec)
	if err != nil {
		c.bus.publish(feature.EventError, fmt.Errorf("evaluate flag %q: %w", name, err))
		return false
	}

	enabled, err := flags.IsFeatureEnabled(name)
	if err != nil {
		c.log.Debug("flag is not defined", "name", name, "error", err)
		return false
	}
	return enabled
}

func (c *connection) flags(ctx context.Context, ec feature.EvaluationContext) (flagsmith.Flags, error) {
	if ec.UserID == "" {
		return c.client.GetEnvironmentFlags(ctx)
	}
	return c.client.GetIdentityFlags(ctx, ec.UserID, identityTraits(ec, c.environment, c.local))
}

// GetDefinition returns the environment level state of the flag. Flags the
// environment does not define are reported as absent.
func (c *connection) GetDefinition(ctx context.Context, name string) (feature.Definition, bool) {
	flags, err := c.client.GetEnvironmentFlags(ctx)
	if err != nil {
		c.bus.publish(feature.EventError, fmt.Errorf("get flag definition %q: %w", name, err))
		return feature.Definition{}, false
	}

	flag, err := flags.GetFlag(name)
	if err != nil || flag.IsDefault {
		return feature.Definition{}, false
	}
	return feature.Definition{
		ID:      flag.FeatureID,
		Name:    flag.FeatureName,
		Enabled: flag.Enabled,
		Value:   flag.Value,
	}, true
}

// Close stops the SDK's background workers and the event dispatcher.
func (c *connection) Close() error {
	c.cancel()
	c.bus.close()
	c.log.Info("closed")
	return nil
}

// identityTraits maps the evaluation context to SDK traits in key order.
// The user id is the identity itself and is not repeated as a trait.
// Remote identity calls persist their traits, so currentTime is only sent
// when evaluating locally.
func identityTraits(ec feature.EvaluationContext, environment string, local bool) []*flagsmith.Trait {
	values := ec.Traits()
	delete(values, "userId")
	if !local {
		delete(values, "currentTime")
	}
	if environment != "" {
		values["environment"] = environment
	}

	keys := maps.Keys(values)
	slices.Sort(keys)

	traits := make([]*flagsmith.Trait, 0, len(keys))
	for _, k := range keys {
		traits = append(traits, &flagsmith.Trait{TraitKey: k, TraitValue: values[k]})
	}
	return traits
}
