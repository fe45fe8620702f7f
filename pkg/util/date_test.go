package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseDateISO(t *testing.T) {
	got, ok := ParseDate("2017-01-02")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2017, 1, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseDateRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseDate(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseDateMonthFirst(t *testing.T) {
	got, ok := ParseDate("01-31-2017")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Month() != time.January || got.Day() != 31 {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseDateUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseDate(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseDateInvalid(t *testing.T) {
	for _, s := range []string{"", "  ", "yesterday", "2017-13-45", "-5"} {
		if _, ok := ParseDate(s); ok {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2017, 1, 1, 23, 59, 0, 0, time.UTC)
	if !SameDay(a, b) {
		t.Fatalf("expected same day")
	}
	if SameDay(a, b.Add(time.Minute)) {
		t.Fatalf("expected different day")
	}
}
