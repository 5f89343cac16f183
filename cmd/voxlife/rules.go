package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parseRuleSet expands a comma-separated list of rule identifiers and
// inclusive ranges ("12", "0-63", "54,90,128-255") into a sorted, deduplicated
// slice. An empty spec means all 256 rules and returns nil.
func parseRuleSet(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}

	seen := make(map[int]bool)
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		lo, hi, err := parseRuleRange(part)
		if err != nil {
			return nil, err
		}
		for id := lo; id <= hi; id++ {
			seen[id] = true
		}
	}

	rules := make([]int, 0, len(seen))
	for id := 0; id < 256; id++ {
		if seen[id] {
			rules = append(rules, id)
		}
	}
	return rules, nil
}

func parseRuleRange(part string) (lo, hi int, err error) {
	if a, b, ok := strings.Cut(part, "-"); ok {
		lo, err = parseRuleID(a)
		if err != nil {
			return 0, 0, err
		}
		hi, err = parseRuleID(b)
		if err != nil {
			return 0, 0, err
		}
		if lo > hi {
			return 0, 0, fmt.Errorf("backwards rule range %q", part)
		}
		return lo, hi, nil
	}
	id, err := parseRuleID(part)
	if err != nil {
		return 0, 0, err
	}
	return id, id, nil
}

func parseRuleID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid rule id %q", s)
	}
	if id < 0 || id > 255 {
		return 0, fmt.Errorf("rule id %d outside 0-255", id)
	}
	return id, nil
}
