// Package engine compiles a loaded config.Config into the state-machine
// graph and runs it: the spawner admits entities, each entity walks the
// compiled States by weighted transition, sampling its emitter's
// dimensions and handing the rendered record to a sink on every visit.
//
// Grounded on the Python source's ieg/core.py (DataDriver construction,
// worker_thread, spawning_thread) and ieg/states.py (State, Transition).
package engine

import (
	"fmt"
	"strings"

	"github.com/implydata/imply-eventgenerator/internal/config"
	"github.com/implydata/imply-eventgenerator/internal/dimensions"
	"github.com/implydata/imply-eventgenerator/internal/distributions"
)

// Transition is one weighted edge out of a State, compiled from
// config.TransitionSpec. Stop marks the literal "stop" target.
type Transition struct {
	NextState string
	Weight    float64
	Stop      bool
}

// State is one compiled node of the state graph: its emitter's dimension
// list (time already prepended), its delay distribution, its per-visit
// variable dimensions, and its outgoing transitions.
type State struct {
	Name        string
	Dimensions  []dimensions.Dimension
	Delay       distributions.Distribution
	Variables   []dimensions.Dimension
	Transitions []Transition
}

// Machine is the compiled state graph: every named state plus which one
// entities start in.
type Machine struct {
	Initial *State
	States  map[string]*State
}

// Clock is the minimal time source Compile needs to thread through to
// distributions/dimensions that consult it (gmm_temporal distributions and
// the implicit time dimension).
type Clock interface {
	distributions.Clock
}

// Compile builds a Machine and the interarrival distribution from a
// validated config.Config. cfg.Validate() must already have succeeded;
// Compile additionally builds every distribution and dimension, which
// surfaces kind/field errors config.Validate can't catch on its own.
func Compile(cfg *config.Config, sampler *distributions.Sampler, clk Clock) (*Machine, distributions.Distribution, error) {
	interarrival, err := distributions.Parse(cfg.Interarrival, clk)
	if err != nil {
		return nil, nil, fmt.Errorf("engine: interarrival: %w", err)
	}

	emitters := make(map[string][]dimensions.Dimension, len(cfg.Emitters))
	timeDim := dimensions.NewTime(clk)
	for _, spec := range cfg.Emitters {
		dims, err := dimensions.ParseList(spec.Dimensions, sampler, clk)
		if err != nil {
			return nil, nil, fmt.Errorf("engine: emitter %q: %w", spec.Name, err)
		}
		emitters[spec.Name] = append([]dimensions.Dimension{timeDim}, dims...)
	}

	machine := &Machine{States: make(map[string]*State, len(cfg.States))}
	for i, spec := range cfg.States {
		delay, err := distributions.Parse(spec.Delay, clk)
		if err != nil {
			return nil, nil, fmt.Errorf("engine: state %q delay: %w", spec.Name, err)
		}
		variables, err := dimensions.ParseList(spec.Variables, sampler, clk)
		if err != nil {
			return nil, nil, fmt.Errorf("engine: state %q variables: %w", spec.Name, err)
		}
		transitions := make([]Transition, 0, len(spec.Transitions))
		for _, t := range spec.Transitions {
			transitions = append(transitions, Transition{
				NextState: t.Next,
				Weight:    t.Probability,
				Stop:      isStop(t.Next),
			})
		}

		state := &State{
			Name:        spec.Name,
			Dimensions:  emitters[spec.Emitter],
			Delay:       delay,
			Variables:   variables,
			Transitions: transitions,
		}
		machine.States[spec.Name] = state
		if i == 0 {
			machine.Initial = state
		}
	}

	return machine, interarrival, nil
}

func isStop(name string) bool {
	return strings.EqualFold(name, "stop")
}

// ChooseNext picks the next transition for state by weighted choice over
// its transitions' (unnormalized) weights, per SPEC_FULL.md §3/§9b.
func (s *State) ChooseNext(sampler *distributions.Sampler) Transition {
	weights := make([]float64, len(s.Transitions))
	for i, t := range s.Transitions {
		weights[i] = t.Weight
	}
	idx := sampler.WeightedChoice(weights)
	return s.Transitions[idx]
}
