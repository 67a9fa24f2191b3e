package date

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestNewNormalizes(t *testing.T) {
	testCases := []struct {
		name string
		in   Date
		want string
	}{
		{"day overflow", New(2024, time.January, 32), "2024-02-01"},
		{"leap day", New(2024, time.February, 29), "2024-02-29"},
		{"non leap day", New(2023, time.February, 29), "2023-03-01"},
		{"month overflow", New(2024, 13, 1), "2025-01-01"},
		{"add across year", New(2024, time.December, 31).Add(1), "2025-01-01"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSub(t *testing.T) {
	from, to := New(2020, time.January, 1), New(2021, time.January, 1)
	if got := to.Sub(from); got != 366 {
		t.Errorf("Sub() = %d, want 366", got)
	}
	if got := from.Sub(to); got != -366 {
		t.Errorf("Sub() = %d, want -366", got)
	}
}

func TestSameMonth(t *testing.T) {
	a := New(2020, time.March, 1)
	if !a.SameMonth(New(2020, time.March, 31)) {
		t.Errorf("SameMonth() = false, want true")
	}
	if a.SameMonth(New(2021, time.March, 1)) {
		t.Errorf("SameMonth() across years = true, want false")
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{"2025-07-01", New(2025, time.July, 1), false},
		{"2025-7-1", New(2025, time.July, 1), false},
		{"01/07/2025", Date{}, true},
		{"", Date{}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestJSONAndText(t *testing.T) {
	d := New(2025, time.July, 1)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if string(b) != `"2025-07-01"` {
		t.Errorf("json.Marshal() = %s, want \"2025-07-01\"", b)
	}
	var got Date
	if err := got.UnmarshalText([]byte("2025-7-1")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if got != d {
		t.Errorf("UnmarshalText() = %v, want %v", got, d)
	}
}

func TestIterate(t *testing.T) {
	a, b := new(History[float64]), new(History[float64])
	a.Append(New(2020, 1, 1), 1).Append(New(2020, 1, 3), 3)
	b.Append(New(2020, 1, 2), 2).Append(New(2020, 1, 3), 3)

	var got []string
	for d := range Iterate(a, b) {
		got = append(got, d.String())
	}
	want := []string{"2020-01-01", "2020-01-02", "2020-01-03"}
	if len(got) != len(want) {
		t.Fatalf("Iterate() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Iterate()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRange(t *testing.T) {
	r := NewRange(New(2020, 2, 27), New(2020, 3, 1))
	if r.Days() != 3 {
		t.Errorf("Days() = %d, want 3", r.Days())
	}
	n := 0
	for range r.Each() {
		n++
	}
	if n != 4 {
		t.Errorf("Each() yielded %d days, want 4", n)
	}
	if !r.Contains(New(2020, 2, 29)) || r.Contains(New(2020, 3, 2)) {
		t.Errorf("Contains() is wrong at the boundaries of %v", r)
	}
	if got := r.String(); got != "2020-02-27..2020-03-01" {
		t.Errorf("String() = %q, want %q", got, "2020-02-27..2020-03-01")
	}
}
