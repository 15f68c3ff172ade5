package game

import "testing"

func TestGameScore(t *testing.T) {
	tests := []struct {
		name                                   string
		level, used, maxAttempts, elapsed, combo int
		want                                   int
	}{
		{"fast first-guess win", 1, 1, 6, 0, 0, 100 + 250 + 600},
		{"slow, no time bonus", 2, 6, 6, 400, 0, 200},
		{"combo multiplier", 1, 3, 6, 250, 3, (100 + 150 + 100) * 13 / 10},
		{"floor of fractional score", 1, 5, 6, 299, 1, 167},
		{"negative inputs clamp", 0, 9, 6, 1000, -2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GameScore(tt.level, tt.used, tt.maxAttempts, tt.elapsed, tt.combo)
			if got != tt.want {
				t.Errorf("GameScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGameScoreMonotonic(t *testing.T) {
	for level := 1; level <= 4; level++ {
		for used := 1; used <= MaxAttempts; used++ {
			for elapsed := 0; elapsed <= 320; elapsed += 40 {
				for combo := 0; combo <= 4; combo++ {
					s := GameScore(level, used, MaxAttempts, elapsed, combo)
					if s < 0 {
						t.Fatalf("negative score %d", s)
					}
					if GameScore(level, used, MaxAttempts, elapsed+10, combo) > s {
						t.Errorf("score increased with elapsed at level=%d used=%d elapsed=%d combo=%d", level, used, elapsed, combo)
					}
					if used < MaxAttempts && GameScore(level, used+1, MaxAttempts, elapsed, combo) > s {
						t.Errorf("score increased with attempts at level=%d used=%d", level, used)
					}
					if GameScore(level, used, MaxAttempts, elapsed, combo+1) < s {
						t.Errorf("score decreased with combo at level=%d combo=%d", level, combo)
					}
					if GameScore(level+1, used, MaxAttempts, elapsed, combo) < s {
						t.Errorf("score decreased with level at level=%d", level)
					}
				}
			}
		}
	}
}

func TestChallengeScore(t *testing.T) {
	tests := []struct {
		correct, elapsed, want int
	}{
		{5, 0, 1000 + 600 + 500},
		{2, 30, 1000 + 300 + 200},
		{0, 90, 1000},
	}
	for _, tt := range tests {
		if got := ChallengeScore(tt.correct, tt.elapsed); got != tt.want {
			t.Errorf("ChallengeScore(%d, %d) = %d, want %d", tt.correct, tt.elapsed, got, tt.want)
		}
	}
}
