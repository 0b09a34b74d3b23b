package model

import "testing"

func TestFlattenElements_Basic(t *testing.T) {
	elements := []Element{
		{ID: 1, Role: "app", Title: "App"},
		{ID: 5, Role: "app", Title: "Other"},
	}
	result := FlattenElements(elements)
	if len(result) != 2 {
		t.Fatalf("expected 2 flat elements, got %d", len(result))
	}
	if result[0].Path != "app" {
		t.Errorf("expected path 'app', got %q", result[0].Path)
	}
}

func TestFlattenElements_NestedPath(t *testing.T) {
	elements := []Element{
		{
			ID: 1, Role: "app", Title: "App",
			Children: []Element{
				{
					ID: 2, Role: "window", Title: "Main",
					Children: []Element{
						{ID: 3, Role: "toolbar"},
					},
				},
			},
		},
	}
	result := FlattenElements(elements)
	if len(result) != 3 {
		t.Fatalf("expected 3 flat elements, got %d", len(result))
	}
	want := []string{"app", "app > window", "app > window > toolbar"}
	for i, p := range want {
		if result[i].Path != p {
			t.Errorf("element %d: expected path %q, got %q", i, p, result[i].Path)
		}
	}
}

func TestFlattenElements_NoChildren(t *testing.T) {
	result := FlattenElements(nil)
	if len(result) != 0 {
		t.Errorf("expected 0 elements for nil input, got %d", len(result))
	}
}

func TestFlattenElements_PreservesFields(t *testing.T) {
	elements := []Element{
		{
			ID:         2,
			Role:       "window",
			Subrole:    "AXStandardWindow",
			Title:      "Window 1",
			PID:        100,
			Bounds:     [4]int{10, 20, 300, 40},
			Focused:    true,
			Main:       true,
			Minimized:  true,
			FullScreen: true,
		},
	}
	result := FlattenElements(elements)
	if len(result) != 1 {
		t.Fatalf("expected 1 element, got %d", len(result))
	}
	el := result[0]
	if el.Subrole != "AXStandardWindow" || el.Title != "Window 1" || el.PID != 100 {
		t.Errorf("identity fields not preserved: %+v", el)
	}
	if el.Bounds != [4]int{10, 20, 300, 40} {
		t.Errorf("unexpected bounds: %v", el.Bounds)
	}
	if !el.Focused || !el.Main || !el.Minimized || !el.FullScreen {
		t.Errorf("state flags not preserved: %+v", el)
	}
}

func TestFlattenElements_TraversalOrder(t *testing.T) {
	elements := []Element{
		{
			ID: 1, Role: "app",
			Children: []Element{
				{
					ID: 2, Role: "window",
					Children: []Element{
						{ID: 3, Role: "btn", Title: "A"},
					},
				},
				{ID: 4, Role: "window", Title: "B"},
			},
		},
	}
	result := FlattenElements(elements)
	if len(result) != 4 {
		t.Fatalf("expected 4 elements, got %d", len(result))
	}
	for i, want := range []int{1, 2, 3, 4} {
		if result[i].ID != want {
			t.Errorf("element %d: expected ID %d, got %d", i, want, result[i].ID)
		}
	}
}
