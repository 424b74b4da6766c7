package numerology

import (
	"sort"
	"time"
)

// Accuracy is reported on every reading.
const Accuracy = 100

// Reading is the full result for one profile under one system. Readings
// are values; a recomputation produces a new one.
type Reading struct {
	FullName        string          `json:"full_name"`
	BirthDate       string          `json:"birth_date"`
	System          System          `json:"system"`
	KarmicMode      KarmicMode      `json:"karmic_mode"`
	LifePath        int             `json:"life_path"`
	Destiny         int             `json:"destiny"`
	SoulUrge        int             `json:"soul_urge"`
	Personality     int             `json:"personality"`
	Birthday        int             `json:"birthday"`
	Maturity        int             `json:"maturity"`
	Challenge       int             `json:"challenge"`
	Pinnacles       [4]int          `json:"pinnacles"`
	KarmicDebt      []int           `json:"karmic_debt"`
	MasterNumbers   []int           `json:"master_numbers"`
	Summary         Summary         `json:"summary"`
	Interpretations Interpretations `json:"interpretations"`
	Accuracy        int             `json:"accuracy"`
	ComputedAt      time.Time       `json:"computed_at"`
}

// Interpretations holds one sentence per derived number.
type Interpretations struct {
	LifePath      string    `json:"life_path"`
	Destiny       string    `json:"destiny"`
	SoulUrge      string    `json:"soul_urge"`
	Personality   string    `json:"personality"`
	Birthday      string    `json:"birthday"`
	Maturity      string    `json:"maturity"`
	Challenge     string    `json:"challenge"`
	Pinnacles     [4]string `json:"pinnacles"`
	KarmicDebt    []string  `json:"karmic_debt"`
	MasterNumbers []string  `json:"master_numbers"`
}

// Summary collects the headline numbers of a reading.
type Summary struct {
	Dominant   int   `json:"dominant"`
	Compatible []int `json:"compatible"`
	Lucky      []int `json:"lucky"`
}

func summarize(n Numbers) Summary {
	dominant := n.LifePath
	for _, v := range []int{n.Destiny, n.SoulUrge, n.Personality} {
		if v > dominant {
			dominant = v
		}
	}

	diff := abs(n.LifePath - n.Destiny)
	compatible := []int{n.LifePath, n.Destiny}
	if diff != 0 {
		compatible = append(compatible, diff)
	}

	var lucky []int
	for _, v := range []int{n.LifePath, n.Destiny, n.LifePath + n.Destiny, diff} {
		if v > 0 {
			lucky = append(lucky, v)
		}
	}
	if lucky == nil {
		lucky = []int{}
	}
	return Summary{Dominant: dominant, Compatible: compatible, Lucky: lucky}
}

// assemble builds a reading from computed numbers, consulting interp once
// per interpreted value.
func assemble(p BirthProfile, system System, mode KarmicMode, n Numbers, interp Interpreter, now time.Time) Reading {
	karmic := mode.Detect(n.Trace)
	masters := MasterNumbers(n.Trace)

	r := Reading{
		FullName:      p.FullName,
		BirthDate:     calendarDate(p.BirthDate).Format(DateLayout),
		System:        system,
		KarmicMode:    mode,
		LifePath:      n.LifePath,
		Destiny:       n.Destiny,
		SoulUrge:      n.SoulUrge,
		Personality:   n.Personality,
		Birthday:      n.Birthday,
		Maturity:      n.Maturity,
		Challenge:     n.Challenge,
		Pinnacles:     n.Pinnacles,
		KarmicDebt:    karmic,
		MasterNumbers: masters,
		Summary:       summarize(n),
		Accuracy:      Accuracy,
		ComputedAt:    now,
	}

	in := Interpretations{
		LifePath:      interp.Interpret(CategoryLifePath, n.LifePath),
		Destiny:       interp.Interpret(CategoryDestiny, n.Destiny),
		SoulUrge:      interp.Interpret(CategorySoulUrge, n.SoulUrge),
		Personality:   interp.Interpret(CategoryPersonality, n.Personality),
		Birthday:      interp.Interpret(CategoryBirthday, n.Birthday),
		Maturity:      interp.Interpret(CategoryMaturity, n.Maturity),
		Challenge:     interp.Interpret(CategoryChallenge, n.Challenge),
		KarmicDebt:    make([]string, 0, len(karmic)),
		MasterNumbers: make([]string, 0, len(masters)),
	}
	for i, v := range n.Pinnacles {
		in.Pinnacles[i] = interp.Interpret(CategoryPinnacle, v)
	}
	for _, v := range karmic {
		in.KarmicDebt = append(in.KarmicDebt, interp.Interpret(CategoryKarmicDebt, v))
	}
	for _, v := range masters {
		in.MasterNumbers = append(in.MasterNumbers, interp.Interpret(CategoryMasterNumber, v))
	}
	r.Interpretations = in
	return r
}

// Clone returns a deep copy of r.
func (r Reading) Clone() Reading {
	cp := r
	cp.KarmicDebt = cloneInts(r.KarmicDebt)
	cp.MasterNumbers = cloneInts(r.MasterNumbers)
	cp.Summary.Compatible = cloneInts(r.Summary.Compatible)
	cp.Summary.Lucky = cloneInts(r.Summary.Lucky)
	cp.Interpretations.KarmicDebt = cloneStrings(r.Interpretations.KarmicDebt)
	cp.Interpretations.MasterNumbers = cloneStrings(r.Interpretations.MasterNumbers)
	return cp
}

// HasMaster reports whether n was detected as a master number.
func (r Reading) HasMaster(n int) bool {
	i := sort.SearchInts(r.MasterNumbers, n)
	return i < len(r.MasterNumbers) && r.MasterNumbers[i] == n
}

func cloneInts(in []int) []int {
	if in == nil {
		return nil
	}
	out := make([]int, len(in))
	copy(out, in)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
