package numerology

import "math"

// CompatibilityResult scores two readings category by category.
type CompatibilityResult struct {
	Overall        int    `json:"overall"`
	LifePath       int    `json:"life_path"`
	Destiny        int    `json:"destiny"`
	SoulUrge       int    `json:"soul_urge"`
	Personality    int    `json:"personality"`
	Interpretation string `json:"interpretation"`
}

// Score maps the distance between two numbers to 100, 90, ... 20, and 10
// for any distance of 9 or more.
func Score(a, b int) int {
	s := 100 - 10*abs(a-b)
	if s < 10 {
		return 10
	}
	return s
}

// Compare scores two readings. The result is symmetric in a and b.
func Compare(a, b Reading) CompatibilityResult {
	r := CompatibilityResult{
		LifePath:    Score(a.LifePath, b.LifePath),
		Destiny:     Score(a.Destiny, b.Destiny),
		SoulUrge:    Score(a.SoulUrge, b.SoulUrge),
		Personality: Score(a.Personality, b.Personality),
	}
	sum := r.LifePath + r.Destiny + r.SoulUrge + r.Personality
	r.Overall = int(math.Round(float64(sum) / 4))
	r.Interpretation = CompatibilityBand(r.Overall)
	return r
}

var bands = []struct {
	min  int
	text string
}{
	{90, "Excellent compatibility with strong potential for a harmonious relationship."},
	{80, "Very good compatibility with good potential for a successful relationship."},
	{70, "Good compatibility with moderate potential for a fulfilling relationship."},
	{60, "Fair compatibility with some challenges but potential for growth."},
	{50, "Moderate compatibility with significant differences to work through."},
}

// CompatibilityBand describes an overall score.
func CompatibilityBand(overall int) string {
	for _, b := range bands {
		if overall >= b.min {
			return b.text
		}
	}
	return "Challenging compatibility requiring significant effort and understanding."
}
