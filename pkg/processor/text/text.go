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

// Package text implements the "text" processor kind: language-aware text
// normalization operations.
package text

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/NVIDIA/instance-registry/pkg/host"
	"github.com/NVIDIA/instance-registry/pkg/instance"
)

// Kind is the processor kind registered by this package.
const Kind = "text"

func init() {
	host.MustRegister(Kind, func(opts host.Options) (instance.Processor, error) {
		return New(opts.Settings)
	})
}

// Processor normalizes text using language-aware casing rules.
type Processor struct {
	tag   language.Tag
	title cases.Caser
	lower cases.Caser
}

// New creates a text processor. The optional "language" setting selects
// the BCP 47 language tag used for casing; it defaults to English.
func New(settings map[string]any) (*Processor, error) {
	tag := language.English
	if raw, ok := settings["language"].(string); ok && raw != "" {
		parsed, err := language.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid language tag %q: %w", raw, err)
		}
		tag = parsed
	}

	return &Processor{
		tag:   tag,
		title: cases.Title(tag),
		lower: cases.Lower(tag),
	}, nil
}

// Operations implements instance.Processor.
func (p *Processor) Operations() []string {
	return []string{"normalize", "titlecase", "tokenize"}
}

// Invoke implements instance.Processor.
func (p *Processor) Invoke(_ context.Context, operation string, args map[string]any) (any, error) {
	text, err := textArg(args)
	if err != nil {
		return nil, err
	}

	switch operation {
	case "normalize":
		normalized := strings.Join(strings.Fields(p.lower.String(text)), " ")
		return map[string]any{
			"text":     normalized,
			"language": p.tag.String(),
		}, nil
	case "titlecase":
		return map[string]any{
			"text":     p.title.String(text),
			"language": p.tag.String(),
		}, nil
	case "tokenize":
		tokens := strings.Fields(text)
		return map[string]any{
			"tokens": tokens,
			"count":  len(tokens),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported operation %q", operation)
	}
}

func textArg(args map[string]any) (string, error) {
	raw, ok := args["text"]
	if !ok {
		return "", fmt.Errorf("argument 'text' is required")
	}
	text, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("argument 'text' must be a string")
	}
	return text, nil
}
