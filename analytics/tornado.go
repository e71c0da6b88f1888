// Copyright 2026 The Forge Authors.
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

package analytics

import (
	"sort"

	"github.com/mollendorff-ai/forge/model"
	"github.com/mollendorff-ai/forge/modeleval"
)

// TornadoInput is one candidate driver swept low-to-high while every
// other input holds its base value (§4.6 "Tornado: One-at-a-time").
type TornadoInput struct {
	Cell string  `yaml:"cell"`
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// TornadoOptions names the inputs and the single output to observe.
type TornadoOptions struct {
	Inputs []TornadoInput `yaml:"inputs"`
	Output string         `yaml:"output"`
}

// TornadoBar is one input's swing, ordered for the chart.
type TornadoBar struct {
	Cell         string
	LowOutput    float64
	HighOutput   float64
	Swing        float64 // abs(high-low)
}

// TornadoResult lists bars sorted by descending absolute swing, ties
// broken by input declaration order (§4.6).
type TornadoResult struct {
	Bars []TornadoBar
}

// Tornado implements §4.6's one-at-a-time driver.
func Tornado(m *model.Model, opts TornadoOptions, now modeleval.Clock) (*TornadoResult, error) {
	bars := make([]TornadoBar, len(opts.Inputs))
	order := make([]int, len(opts.Inputs))
	for i, in := range opts.Inputs {
		lowV, err := outputNumber(m, []model.Override{literalOverride(in.Cell, in.Low)}, opts.Output, now)
		if err != nil {
			return nil, err
		}
		highV, err := outputNumber(m, []model.Override{literalOverride(in.Cell, in.High)}, opts.Output, now)
		if err != nil {
			return nil, err
		}
		swing := highV - lowV
		if swing < 0 {
			swing = -swing
		}
		bars[i] = TornadoBar{Cell: in.Cell, LowOutput: lowV, HighOutput: highV, Swing: swing}
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if bars[ia].Swing != bars[ib].Swing {
			return bars[ia].Swing > bars[ib].Swing
		}
		return ia < ib
	})
	out := make([]TornadoBar, len(bars))
	for i, idx := range order {
		out[i] = bars[idx]
	}
	return &TornadoResult{Bars: out}, nil
}
