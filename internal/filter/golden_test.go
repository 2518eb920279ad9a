package filter

import (
	"testing"

	"github.com/goliatone/go-mathfilter/pkg/interfaces"
	"github.com/goliatone/go-mathfilter/pkg/testsupport"
)

type goldenCase struct {
	Name     string   `yaml:"name"`
	Input    string   `yaml:"input"`
	Disabled []string `yaml:"disabled"`
	Want     string   `yaml:"want"`
}

func TestFilter_GoldenCases(t *testing.T) {
	var cases []goldenCase
	if err := testsupport.LoadGolden("testdata/golden.yaml", &cases); err != nil {
		t.Fatalf("LoadGolden: %v", err)
	}
	if len(cases) == 0 {
		t.Fatal("expected golden cases")
	}

	svc := NewService(newTestRegistry(t))
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			got := filterString(t, svc, tc.Input, interfaces.FilterOptions{DisabledFamilies: tc.Disabled})
			if got != tc.Want {
				t.Fatalf("want %s\ngot  %s", tc.Want, got)
			}
		})
	}
}
