package game

import "testing"

func TestFormatTime(t *testing.T) {
	cases := map[int]string{
		300: "05:00",
		65:  "01:05",
		5:   "00:05",
		0:   "00:00",
		-3:  "00:00",
		600: "10:00",
	}
	for in, want := range cases {
		if got := FormatTime(in); got != want {
			t.Fatalf("FormatTime(%d): expected %s, got %s", in, want, got)
		}
	}
}
