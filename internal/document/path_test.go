package document

import (
	"reflect"
	"strconv"
	"testing"
)

func testTree(t *testing.T) map[string]any {
	t.Helper()
	tree, err := Default().Tree()
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	return tree
}

// shapeOf collects every key path in a tree so tests can assert that an
// update changed a value without changing the document's shape.
func shapeOf(node any, prefix string, into map[string]bool) {
	switch c := node.(type) {
	case map[string]any:
		for k, v := range c {
			into[prefix+"/"+k] = true
			shapeOf(v, prefix+"/"+k, into)
		}
	case []any:
		for _, v := range c {
			shapeOf(v, prefix+"/#", into)
		}
	}
}

func TestSetPathReplacesOnlyTarget(t *testing.T) {
	tree := testTree(t)

	updated, err := SetPath(tree, Path{"components", "home_page", "header_text"}, "Summer Sale")
	if err != nil {
		t.Fatalf("SetPath: %v", err)
	}

	got, err := GetPath(updated, Path{"components", "home_page", "header_text"})
	if err != nil {
		t.Fatalf("GetPath: %v", err)
	}
	if got != "Summer Sale" {
		t.Errorf("value: got %v, want Summer Sale", got)
	}

	// Original is untouched.
	orig, _ := GetPath(tree, Path{"components", "home_page", "header_text"})
	if orig != "" {
		t.Errorf("original mutated: %v", orig)
	}

	// Shape is unchanged.
	before := map[string]bool{}
	after := map[string]bool{}
	shapeOf(tree, "", before)
	shapeOf(updated, "", after)
	if !reflect.DeepEqual(before, after) {
		t.Error("document shape changed by a field update")
	}
}

func TestSetPathIsIdempotent(t *testing.T) {
	tree := testTree(t)
	path := Path{"components", "contact_page", "faqSection", "heading"}

	once, err := SetPath(tree, path, "Questions")
	if err != nil {
		t.Fatalf("SetPath: %v", err)
	}
	twice, err := SetPath(once, path, "Questions")
	if err != nil {
		t.Fatalf("SetPath twice: %v", err)
	}

	if !reflect.DeepEqual(once, twice) {
		t.Error("applying the same update twice is not deep-equal to applying it once")
	}
}

func TestSetPathSharesUnrelatedSubtrees(t *testing.T) {
	tree := testTree(t)

	updated, err := SetPath(tree, Path{"components", "home_page", "button_text"}, "Shop Now")
	if err != nil {
		t.Fatalf("SetPath: %v", err)
	}

	um := updated.(map[string]any)
	// The about page was not on the edit path, so the container is shared.
	aboutBefore := tree["components"].(map[string]any)["about_page"]
	aboutAfter := um["components"].(map[string]any)["about_page"]
	if !sameMap(aboutBefore, aboutAfter) {
		t.Error("unrelated subtree was copied")
	}
}

func sameMap(a, b any) bool {
	am, ok1 := a.(map[string]any)
	bm, ok2 := b.(map[string]any)
	if !ok1 || !ok2 {
		return false
	}
	return reflect.ValueOf(am).Pointer() == reflect.ValueOf(bm).Pointer()
}

func TestSetPathIndexesIntoArrays(t *testing.T) {
	tree := testTree(t)

	updated, err := SetPath(tree, Path{"components", "contact_page", "faqSection", "faqs", "0", "question"}, "Do you ship?")
	if err != nil {
		t.Fatalf("SetPath: %v", err)
	}

	got, _ := GetPath(updated, Path{"components", "contact_page", "faqSection", "faqs", "0", "question"})
	if got != "Do you ship?" {
		t.Errorf("got %v, want Do you ship?", got)
	}
}

func TestSetPathErrors(t *testing.T) {
	tree := testTree(t)

	tests := []struct {
		name string
		path Path
	}{
		{"missing intermediate key", Path{"components", "missing_page", "title"}},
		{"index out of range", Path{"components", "contact_page", "faqSection", "faqs", "9", "question"}},
		{"non-numeric index", Path{"components", "contact_page", "faqSection", "faqs", "first", "question"}},
		{"descend into scalar", Path{"name", "deeper"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SetPath(tree, tt.path, "x"); err == nil {
				t.Errorf("SetPath(%v): expected error", tt.path)
			}
		})
	}
}

func TestDuplicateRowPreservesOrder(t *testing.T) {
	tree := testTree(t)
	faqs := Path{"components", "contact_page", "faqSection", "faqs"}

	// Seed three distinguishable rows.
	var root any = tree
	var err error
	for i, q := range []string{"a", "b", "c"} {
		if i > 0 {
			root, err = AppendRow(root, faqs, map[string]any{"question": "", "answer": ""})
			if err != nil {
				t.Fatalf("AppendRow: %v", err)
			}
		}
		root, err = SetPath(root, append(faqs, strconv.Itoa(i), "question"), q)
		if err != nil {
			t.Fatalf("SetPath: %v", err)
		}
	}

	root, err = DuplicateRow(root, faqs, 1)
	if err != nil {
		t.Fatalf("DuplicateRow: %v", err)
	}

	list, _ := listAt(root, faqs)
	if len(list) != 4 {
		t.Fatalf("len: got %d, want 4", len(list))
	}
	if !reflect.DeepEqual(list[1], list[2]) {
		t.Error("duplicated row is not deep-equal to its source")
	}
	questions := questionsOf(list)
	want := []string{"a", "b", "b", "c"}
	if !reflect.DeepEqual(questions, want) {
		t.Errorf("order: got %v, want %v", questions, want)
	}
}

func TestRemoveRowPreservesOrder(t *testing.T) {
	tree := testTree(t)
	faqs := Path{"components", "contact_page", "faqSection", "faqs"}

	var root any = tree
	var err error
	root, _ = AppendRow(root, faqs, map[string]any{"question": "b", "answer": ""})
	root, _ = AppendRow(root, faqs, map[string]any{"question": "c", "answer": ""})

	root, err = RemoveRow(root, faqs, 1)
	if err != nil {
		t.Fatalf("RemoveRow: %v", err)
	}

	list, _ := listAt(root, faqs)
	questions := questionsOf(list)
	want := []string{"", "c"}
	if !reflect.DeepEqual(questions, want) {
		t.Errorf("order: got %v, want %v", questions, want)
	}
}

func TestRemoveLastRowYieldsEmptyList(t *testing.T) {
	tree := testTree(t)
	faqs := Path{"components", "contact_page", "faqSection", "faqs"}

	root, err := RemoveRow(tree, faqs, 0)
	if err != nil {
		t.Fatalf("RemoveRow: %v", err)
	}
	list, _ := listAt(root, faqs)
	if len(list) != 0 {
		t.Errorf("len: got %d, want 0", len(list))
	}
}

// Scenario from the editor: add two FAQ rows, fill the second, remove
// the first. Exactly one row remains, holding the second row's values.
func TestFAQAddFillRemoveScenario(t *testing.T) {
	tree := testTree(t)
	faqs := Path{"components", "contact_page", "faqSection", "faqs"}

	// The seed document already has one blank row; remove it so the
	// scenario starts from two freshly added rows.
	var root any
	root, err := RemoveRow(tree, faqs, 0)
	if err != nil {
		t.Fatalf("RemoveRow seed: %v", err)
	}

	blank := map[string]any{"question": "", "answer": ""}
	root, _ = AppendRow(root, faqs, blank)
	root, _ = AppendRow(root, faqs, blank)

	root, _ = SetPath(root, append(faqs, "1", "question"), "Is shipping free?")
	root, _ = SetPath(root, append(faqs, "1", "answer"), "Over $50, yes.")

	root, err = RemoveRow(root, faqs, 0)
	if err != nil {
		t.Fatalf("RemoveRow: %v", err)
	}

	list, _ := listAt(root, faqs)
	if len(list) != 1 {
		t.Fatalf("len: got %d, want 1", len(list))
	}
	row := list[0].(map[string]any)
	if row["question"] != "Is shipping free?" || row["answer"] != "Over $50, yes." {
		t.Errorf("remaining row: got %v", row)
	}
}

func questionsOf(list []any) []string {
	var out []string
	for _, v := range list {
		out = append(out, v.(map[string]any)["question"].(string))
	}
	return out
}
