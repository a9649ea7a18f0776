package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yildizm/msgnorm/internal/config"
	"github.com/yildizm/msgnorm/internal/logger"
	"github.com/yildizm/msgnorm/internal/normalize"
	"github.com/yildizm/msgnorm/internal/rollout"
)

// rolloutFlags are shared by every command that normalizes.
type rolloutFlags struct {
	id          string
	assignments []string
}

func (f *rolloutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.id, "id", "", "rollout identifier (default: normalization.rollout_id)")
	cmd.Flags().StringArrayVar(&f.assignments, "rollout", nil, "override a rollout percentage, key=pct (repeatable)")
}

// gateSetup is the rollout chain behind a normalizer. Percentages are
// layered in increasing precedence: config file, rollouts file, flags.
type gateSetup struct {
	gate   *rollout.Gate
	values *rollout.MutableSource
	cache  *rollout.CachedSource
	file   *rollout.FileSource
	log    *logger.Logger
}

func newGateSetup(cfg *config.Config, assignments []string, log *logger.Logger) (*gateSetup, error) {
	overrides := make(map[string]int, len(assignments))
	for _, a := range assignments {
		key, pct, err := rollout.ParseAssignment(a)
		if err != nil {
			return nil, fmt.Errorf("invalid --rollout: %w", err)
		}
		overrides[key] = pct
	}

	s := &gateSetup{
		values: rollout.NewMutableSource(nil),
		log:    log.WithComponent("rollout"),
	}
	s.cache = rollout.NewCachedSource(s.values, cfg.Normalization.CacheSize, cfg.Normalization.CacheTTL)
	s.gate = rollout.NewGate(s.cache)

	var fromFile map[string]int
	if path := cfg.Normalization.RolloutsFile; path != "" {
		file, err := rollout.NewFileSource(path, log)
		if err != nil {
			return nil, fmt.Errorf("failed to load rollouts file: %w", err)
		}
		s.file = file
		fromFile = file.Snapshot()
		file.OnReload(func(values map[string]int) {
			s.apply(cfg.Normalization.Rollouts, values, overrides)
		})
	}

	s.apply(cfg.Normalization.Rollouts, fromFile, overrides)
	return s, nil
}

// apply merges the layers into the live source and drops memoized lookups.
func (s *gateSetup) apply(layers ...map[string]int) {
	merged := make(map[string]int)
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}
	s.values.Replace(merged)
	s.cache.Purge()
	s.log.DebugWithFields("rollouts applied", []logger.Field{logger.Count(len(merged))})
}

// watch follows the rollouts file in the background until ctx is done.
func (s *gateSetup) watch(ctx context.Context) {
	if s.file == nil {
		return
	}
	go func() {
		if err := s.file.Watch(ctx); err != nil {
			s.log.WarnWithFields("stopped watching rollouts", []logger.Field{logger.Path(s.file.Path()), logger.Error(err)})
		}
	}()
}

// buildNormalizer loads the configuration and wires a normalizer to it.
func buildNormalizer(flags rolloutFlags) (*normalize.Normalizer, normalize.Invocation, *gateSetup, error) {
	cfg, err := GetGlobalConfig()
	if err != nil {
		return nil, normalize.Invocation{}, nil, err
	}
	setup, err := newGateSetup(cfg, flags.assignments, newLogger())
	if err != nil {
		return nil, normalize.Invocation{}, nil, err
	}
	inv := normalize.Invocation{ID: flags.id}
	if inv.ID == "" {
		inv.ID = cfg.Normalization.RolloutID
	}
	return normalize.New(setup.gate), inv, setup, nil
}
