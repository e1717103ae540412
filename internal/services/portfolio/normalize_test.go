package portfolio

import "testing"

func TestNormalizeTicker(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"AAPL_US_EQ", "AAPL"},
		{"MSFT_US_EQ", "MSFT"},
		{"VODl", "VOD.L"},
		{"VUSAl_EQ", "VUSA.L"},
		{"RR1l_EQ", "RR.L"},  // trailing "1.L" artifact collapses
		{"IWDA_EQ", "IWDA"},
		{"BRK_B_US_EQ", "BRK-B"}, // override table
		{"PRXl_EQ", "PRX.AS"},    // override table
		{"AIRd_EQ", "AIR.DE"},    // override table
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			if got := NormalizeTicker(tc.in); got != tc.want {
				t.Errorf("NormalizeTicker(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
