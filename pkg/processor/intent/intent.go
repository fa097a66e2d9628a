// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package intent implements the "intent" processor kind: keyword-based
// intent classification for short utterances.
package intent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/NVIDIA/instance-registry/pkg/host"
	"github.com/NVIDIA/instance-registry/pkg/instance"
)

// Kind is the processor kind registered by this package.
const Kind = "intent"

func init() {
	host.MustRegister(Kind, func(opts host.Options) (instance.Processor, error) {
		return New(opts.Settings)
	})
}

// defaultRules is used when the create request carries no "intents" setting.
var defaultRules = map[string][]string{
	"greeting": {"hello", "hi", "hey", "morning"},
	"farewell": {"bye", "goodbye", "later", "night"},
	"help":     {"help", "support", "stuck", "how"},
}

// Processor classifies utterances by counting keyword hits per intent.
type Processor struct {
	rules map[string][]string
}

// New creates an intent processor. The optional "intents" setting maps
// intent names to keyword lists; it defaults to a small built-in ruleset.
func New(settings map[string]any) (*Processor, error) {
	rules := defaultRules
	if raw, ok := settings["intents"]; ok {
		parsed, err := parseRules(raw)
		if err != nil {
			return nil, err
		}
		rules = parsed
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("at least one intent is required")
	}
	return &Processor{rules: rules}, nil
}

func parseRules(raw any) (map[string][]string, error) {
	in, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("setting 'intents' must be a map of intent name to keyword list")
	}

	rules := make(map[string][]string, len(in))
	for name, kws := range in {
		list, ok := kws.([]any)
		if !ok {
			return nil, fmt.Errorf("keywords for intent %q must be a list", name)
		}
		keywords := make([]string, 0, len(list))
		for _, kw := range list {
			s, ok := kw.(string)
			if !ok {
				return nil, fmt.Errorf("keywords for intent %q must be strings", name)
			}
			keywords = append(keywords, strings.ToLower(s))
		}
		rules[name] = keywords
	}
	return rules, nil
}

// Operations implements instance.Processor.
func (p *Processor) Operations() []string {
	return []string{"classify", "intents"}
}

// Invoke implements instance.Processor.
func (p *Processor) Invoke(_ context.Context, operation string, args map[string]any) (any, error) {
	switch operation {
	case "classify":
		raw, ok := args["text"].(string)
		if !ok || raw == "" {
			return nil, fmt.Errorf("argument 'text' is required")
		}
		return p.classify(raw), nil
	case "intents":
		names := make([]string, 0, len(p.rules))
		for name := range p.rules {
			names = append(names, name)
		}
		sort.Strings(names)
		return map[string]any{"intents": names}, nil
	default:
		return nil, fmt.Errorf("unsupported operation %q", operation)
	}
}

func (p *Processor) classify(text string) map[string]any {
	tokens := strings.Fields(strings.ToLower(text))

	best := ""
	bestHits := 0
	for name, keywords := range p.rules {
		hits := 0
		for _, token := range tokens {
			for _, kw := range keywords {
				if token == kw {
					hits++
				}
			}
		}
		// Ties resolve to the lexicographically smaller intent so the
		// result is deterministic across map iteration orders.
		if hits > bestHits || (hits == bestHits && hits > 0 && (best == "" || name < best)) {
			best = name
			bestHits = hits
		}
	}

	if bestHits == 0 {
		return map[string]any{"intent": "unknown", "confidence": 0.0}
	}

	confidence := float64(bestHits) / float64(len(tokens))
	if confidence > 1.0 {
		confidence = 1.0
	}
	return map[string]any{"intent": best, "confidence": confidence}
}
