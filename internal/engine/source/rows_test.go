package source

import (
	"reflect"
	"testing"
)

func TestFieldsQuotingRoundTrip(t *testing.T) {
	input := "name,note\n\"Alice, A\",\"says \"\"hi\"\"\"\n"
	got, err := Fields([]byte(input))
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	want := [][]string{
		{"name", "note"},
		{"Alice, A", `says "hi"`},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFieldsLineEndingsAndBlanks(t *testing.T) {
	input := "a,b\r\n1,2\r3,4\n\n  ,  \n5,6\n"
	got, err := Fields([]byte(input))
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	want := [][]string{{"a", "b"}, {"1", "2"}, {"3", "4"}, {"5", "6"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFieldsTrimsWhitespace(t *testing.T) {
	input := "name , area \n sushi dan ,\tshibuya \n"
	got, err := Fields([]byte(input))
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	want := [][]string{{"name", "area"}, {"sushi dan", "shibuya"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRowsKeysByHeader(t *testing.T) {
	input := "name,tel\nCafe,03-1234\nShort\n"
	rows, err := Rows([]byte(input))
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0]["name"] != "Cafe" || rows[0]["tel"] != "03-1234" {
		t.Errorf("row 0 = %v", rows[0])
	}
	// Ragged row: missing trailing fields stay absent, no panic.
	if rows[1]["name"] != "Short" || rows[1]["tel"] != "" {
		t.Errorf("row 1 = %v", rows[1])
	}
}

func TestRowsEmptyPayload(t *testing.T) {
	rows, err := Rows(nil)
	if err != nil || rows != nil {
		t.Errorf("empty payload: rows=%v err=%v", rows, err)
	}
}
