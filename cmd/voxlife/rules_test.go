package main

import (
	"reflect"
	"testing"
)

func TestParseRuleSet(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want []int
	}{
		{"empty means all", "", nil},
		{"single", "54", []int{54}},
		{"range", "3-6", []int{3, 4, 5, 6}},
		{"list", "9,3,1", []int{1, 3, 9}},
		{"mixed with overlap", "1-3,2,250-252", []int{1, 2, 3, 250, 251, 252}},
		{"whitespace", " 7 , 10-11 ", []int{7, 10, 11}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRuleSet(tt.spec)
			if err != nil {
				t.Fatalf("parseRuleSet(%q): %v", tt.spec, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseRuleSet(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestParseRuleSetErrors(t *testing.T) {
	for _, spec := range []string{"abc", "256", "-1", "10-5", "1,,3", "300-400"} {
		t.Run(spec, func(t *testing.T) {
			if _, err := parseRuleSet(spec); err == nil {
				t.Errorf("parseRuleSet(%q): expected error", spec)
			}
		})
	}
}
