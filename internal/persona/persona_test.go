package persona

import "testing"

func TestSelect(t *testing.T) {
	tests := []struct {
		message string
		wantKey string
	}{
		{"what's a good chicken recipe", "warm_grandma"},
		{"is this health advice legit", "warm_grandma"},
		{"I think this email is a scam", "warm_grandma"},
		{"convert 10 feet to meters", "practical_contractor"},
		{"how much concrete for a 12x12 slab", "practical_contractor"},
		{"which tool for drywall", "practical_contractor"},
		{"hello", "helpful_assistant"},
		{"weather today?", "helpful_assistant"},
		{"", "helpful_assistant"},
		{"RECIPE FOR SOUP", "warm_grandma"}, // case-insensitive
	}
	for _, tt := range tests {
		if got := Select(tt.message); got.Key != tt.wantKey {
			t.Errorf("Select(%q) = %s, want %s", tt.message, got.Key, tt.wantKey)
		}
	}
}

func TestSelect_CaringBeatsPractical(t *testing.T) {
	// Both keyword sets match; caring is checked first.
	got := Select("recipe that converts cups to grams")
	if got.Key != "warm_grandma" {
		t.Errorf("Select = %s, want warm_grandma when both sets match", got.Key)
	}
}

func TestSelect_Deterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		if got := Select("hello"); got.Key != "helpful_assistant" {
			t.Fatalf("Select is not deterministic: got %s", got.Key)
		}
	}
}

func TestGet(t *testing.T) {
	for _, p := range All() {
		got, ok := Get(p.Key)
		if !ok || got.Key != p.Key {
			t.Errorf("Get(%q) = %v, %v", p.Key, got.Key, ok)
		}
	}
	if _, ok := Get("nope"); ok {
		t.Error("Get(\"nope\") should not resolve")
	}
}

func TestAll_HaveSystemPrompts(t *testing.T) {
	ps := All()
	if len(ps) != 3 {
		t.Fatalf("registry has %d personas, want 3", len(ps))
	}
	for _, p := range ps {
		if p.SystemPrompt == "" || p.Greeting == "" {
			t.Errorf("persona %s missing prompt or greeting", p.Key)
		}
	}
}
