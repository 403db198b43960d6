package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Key", "Accuracy", "Errors"}
	rows := [][]string{
		{"a", "97%", "12"},
		{"<space>", "8%", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines[0] != "Key     Accuracy Errors" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "------- -------- ------" {
		t.Fatalf("unexpected rule line: %q", lines[1])
	}
	if lines[2] != "a            97%     12" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
	if lines[3] != "<space>       8%      3" {
		t.Fatalf("unexpected row line: %q", lines[3])
	}
}

func TestFormatTableWithoutHeaders(t *testing.T) {
	lines := formatTable(nil, [][]string{{"WPM", "..::"}, {"Accuracy", "@@"}}, nil)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "WPM      ..::" {
		t.Fatalf("unexpected line: %q", lines[0])
	}
	if lines[1] != "Accuracy @@  " {
		t.Fatalf("unexpected line: %q", lines[1])
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := formatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected nil, got %v", lines)
	}
}
