package facts

import (
	"reflect"
	"testing"
)

func TestMergeScalarsReplace(t *testing.T) {
	base := WizardFacts{"rent_amount": 1000.0, "tenancy_type": "ast"}
	partial := WizardFacts{"rent_amount": 1200.0}

	got := merge(base, partial)

	if got["rent_amount"] != 1200.0 {
		t.Fatalf("expected rent_amount replaced with 1200, got %v", got["rent_amount"])
	}
	if got["tenancy_type"] != "ast" {
		t.Fatalf("expected untouched key preserved, got %v", got["tenancy_type"])
	}
}

func TestMergeMapsRecursively(t *testing.T) {
	base := WizardFacts{
		"deposit": map[string]any{
			"amount":    1500.0,
			"protected": true,
		},
	}
	partial := WizardFacts{
		"deposit": map[string]any{
			"scheme": "dps",
		},
	}

	got := merge(base, partial)

	want := map[string]any{
		"amount":    1500.0,
		"protected": true,
		"scheme":    "dps",
	}
	if !reflect.DeepEqual(got["deposit"], want) {
		t.Fatalf("expected nested maps merged, got %v", got["deposit"])
	}
}

func TestMergeArraysReplaceWholesale(t *testing.T) {
	base := WizardFacts{"grounds": []any{"ground_8", "ground_10"}}
	partial := WizardFacts{"grounds": []any{"ground_11"}}

	got := merge(base, partial)

	want := []any{"ground_11"}
	if !reflect.DeepEqual(got["grounds"], want) {
		t.Fatalf("expected array replaced wholesale, got %v", got["grounds"])
	}
}

func TestMergeNeverDeletesKeys(t *testing.T) {
	base := WizardFacts{
		"rent_amount": 1000.0,
		"deposit": map[string]any{
			"amount": 1500.0,
		},
	}

	got := merge(base, WizardFacts{"service_method": "post"})

	for _, key := range []string{"rent_amount", "deposit", "service_method"} {
		if _, ok := got[key]; !ok {
			t.Fatalf("expected key %q present after merge", key)
		}
	}
}

func TestMergeExplicitNullKeepsKey(t *testing.T) {
	base := WizardFacts{"rent_amount": 1000.0}

	got := merge(base, WizardFacts{"rent_amount": nil})

	v, ok := got["rent_amount"]
	if !ok {
		t.Fatal("expected key to survive a null merge")
	}
	if v != nil {
		t.Fatalf("expected nil value stored, got %v", v)
	}
}

func TestMergeTypeChangeReplaces(t *testing.T) {
	base := WizardFacts{"deposit": map[string]any{"amount": 1500.0}}
	partial := WizardFacts{"deposit": "none"}

	got := merge(base, partial)

	if got["deposit"] != "none" {
		t.Fatalf("expected scalar to replace map, got %v", got["deposit"])
	}
}

func TestMergeDoesNotAliasInputs(t *testing.T) {
	base := WizardFacts{"deposit": map[string]any{"amount": 1500.0}}
	partial := WizardFacts{"deposit": map[string]any{"scheme": "dps"}}

	got := merge(base, partial)
	got["deposit"].(map[string]any)["amount"] = 0.0

	if base["deposit"].(map[string]any)["amount"] != 1500.0 {
		t.Fatal("merge result aliases base map")
	}
	if _, ok := partial["deposit"].(map[string]any)["amount"]; ok {
		t.Fatal("merge mutated the partial input")
	}
}
