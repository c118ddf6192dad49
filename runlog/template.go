// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Template placeholders are {name} or {name:spec}, where spec is
// [0][width][.prec][verb] and verb is one of d, f, e, g, s.
// e.g., model-{epoch:02d}-{val_acc:.4f}.wts.gz
// {{ and }} stand for literal braces.
var (
	fieldRe = regexp.MustCompile(`\{\{|\}\}|\{([A-Za-z_][A-Za-z0-9_]*)(?::([^{}]*))?\}`)
	specRe  = regexp.MustCompile(`^(0)?([0-9]+)?(?:\.([0-9]+))?([dfegs])?$`)
)

// TemplateFields returns the placeholder names in tmpl, in order of appearance.
func TemplateFields(tmpl string) []string {
	ms := fieldRe.FindAllStringSubmatch(tmpl, -1)
	var nms []string
	for _, m := range ms {
		if m[1] != "" {
			nms = append(nms, m[1])
		}
	}
	return nms
}

// FormatTemplate replaces each placeholder in tmpl with its value from vals.
// It is an error for a placeholder to have no value or a bad spec.
func FormatTemplate(tmpl string, vals map[string]float64) (string, error) {
	var ferr error
	out := fieldRe.ReplaceAllStringFunc(tmpl, func(ph string) string {
		switch {
		case ph == "{{":
			return "{"
		case ph == "}}":
			return "}"
		case ferr != nil:
			return ph
		}
		m := fieldRe.FindStringSubmatch(ph)
		v, ok := vals[m[1]]
		if !ok {
			ferr = fmt.Errorf("runlog: no value for %q in template %q", m[1], tmpl)
			return ph
		}
		s, err := formatValue(v, m[2])
		if err != nil {
			ferr = fmt.Errorf("runlog: template %q: %w", tmpl, err)
			return ph
		}
		return s
	})
	return out, ferr
}

// formatValue formats v according to spec.
func formatValue(v float64, spec string) (string, error) {
	if spec == "" {
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10), nil
		}
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	}
	m := specRe.FindStringSubmatch(spec)
	if m == nil {
		return "", fmt.Errorf("bad format spec %q", spec)
	}
	var sb strings.Builder
	sb.WriteByte('%')
	sb.WriteString(m[1])
	sb.WriteString(m[2])
	verb := m[4]
	if verb == "d" {
		if m[3] != "" {
			return "", fmt.Errorf("precision not allowed in integer spec %q", spec)
		}
		sb.WriteByte('d')
		return fmt.Sprintf(sb.String(), int64(math.Round(v))), nil
	}
	if m[3] != "" {
		sb.WriteByte('.')
		sb.WriteString(m[3])
	}
	switch verb {
	case "", "s":
		sb.WriteByte('v')
	default:
		sb.WriteString(verb)
	}
	return fmt.Sprintf(sb.String(), v), nil
}
