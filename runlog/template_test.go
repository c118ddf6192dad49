// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointTemplateFields(t *testing.T) {
	fields := TemplateFields(CheckpointTemplate)
	count := map[string]int{}
	for _, f := range fields {
		count[f]++
	}
	assert.Equal(t, 1, count["epoch"])
	assert.Equal(t, 1, count["val_acc"])
	assert.Len(t, fields, 2)

	ck := DefaultModelCheckpoint("run", "logs")
	assert.Equal(t, []string{"epoch", "val_acc"}, TemplateFields(ck.Filepath))

	assert.Equal(t, []string{"epoch"}, TemplateFields("model-{{loss}}-{epoch}"))
	assert.Empty(t, TemplateFields("{{loss}}"))
}

func TestFormatTemplate(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		vals map[string]float64
		want string
	}{
		{"default", CheckpointTemplate, map[string]float64{"epoch": 3, "val_acc": 0.912345}, "model-03-0.9123.wts.gz"},
		{"wide epoch", "m-{epoch:02d}", map[string]float64{"epoch": 150}, "m-150"},
		{"no spec int", "e{epoch}", map[string]float64{"epoch": 12}, "e12"},
		{"no spec float", "l{loss}", map[string]float64{"loss": 0.25}, "l0.25"},
		{"exp", "{loss:.2e}", map[string]float64{"loss": 12345}, "1.23e+04"},
		{"padded float", "{acc:08.3f}", map[string]float64{"acc": 3.14159}, "0003.142"},
		{"no fields", "plain.wts", nil, "plain.wts"},
		{"escaped braces", "model-{{epoch}}-{epoch:02d}", map[string]float64{"epoch": 3}, "model-{epoch}-03"},
		{"escape around field", "{{{epoch}}}", map[string]float64{"epoch": 3}, "{3}"},
		{"escaped only", "{{}}", nil, "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatTemplate(tt.tmpl, tt.vals)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatTemplateErrors(t *testing.T) {
	_, err := FormatTemplate("model-{epoch:02d}-{val_acc:.4f}", map[string]float64{"epoch": 1})
	assert.ErrorContains(t, err, "val_acc")

	_, err = FormatTemplate("{epoch:xyz}", map[string]float64{"epoch": 1})
	assert.Error(t, err)

	_, err = FormatTemplate("{epoch:.2d}", map[string]float64{"epoch": 1})
	assert.Error(t, err)
}
