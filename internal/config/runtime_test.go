package config

import (
	"reflect"
	"testing"
)

func TestParseToolRequirements(t *testing.T) {
	tools := parseToolRequirements("train_model:gpu,high-memory; web_search: ;;calc:")
	want := []ToolRequirement{
		{Name: "train_model", Capabilities: []string{"gpu", "high-memory"}},
		{Name: "web_search"},
		{Name: "calc"},
	}
	if !reflect.DeepEqual(tools, want) {
		t.Errorf("got %+v, want %+v", tools, want)
	}

	if tools := parseToolRequirements(""); tools != nil {
		t.Errorf("empty input should yield no tools, got %+v", tools)
	}
}
