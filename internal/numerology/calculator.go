package numerology

import "time"

// Trace keeps the unreduced intermediate values of a calculation. The
// special number detectors work from it.
type Trace struct {
	Letters      string `json:"letters"`
	LetterValues []int  `json:"letter_values"`
	NameSum      int    `json:"name_sum"`
	VowelSum     int    `json:"vowel_sum"`
	ConsonantSum int    `json:"consonant_sum"`
	Day          int    `json:"day"`
	Month        int    `json:"month"`
	Year         int    `json:"year"`
	LifePathSum  int    `json:"life_path_sum"`
}

// Numbers holds every derived number of a reading before interpretation.
type Numbers struct {
	LifePath    int
	Destiny     int
	SoulUrge    int
	Personality int
	Birthday    int
	Maturity    int
	Challenge   int
	Pinnacles   [4]int
	Trace       Trace
}

// LifePath reduces day, month and year independently, sums them and
// reduces the sum.
func LifePath(date time.Time) int {
	return Reduce(lifePathSum(date))
}

func lifePathSum(date time.Time) int {
	y, m, d := date.Date()
	return Reduce(d) + Reduce(int(m)) + Reduce(y)
}

// Birthday is the reduced day of month.
func Birthday(date time.Time) int {
	return Reduce(date.Day())
}

// Destiny is the reduced letter sum of the whole name.
func Destiny(name string, system System) (int, error) {
	t, err := system.table()
	if err != nil {
		return 0, err
	}
	return Reduce(t.sum(splitLetters(name).all)), nil
}

// SoulUrge is the reduced letter sum of the name's vowels.
func SoulUrge(name string, system System) (int, error) {
	t, err := system.table()
	if err != nil {
		return 0, err
	}
	return Reduce(t.sum(splitLetters(name).vowels)), nil
}

// Personality is the reduced letter sum of the name's consonants.
func Personality(name string, system System) (int, error) {
	t, err := system.table()
	if err != nil {
		return 0, err
	}
	return Reduce(t.sum(splitLetters(name).consonants)), nil
}

// Calculate derives all numbers for a profile without validating it.
func Calculate(p BirthProfile, system System) (Numbers, error) {
	t, err := system.table()
	if err != nil {
		return Numbers{}, err
	}
	return calculate(splitLetters(p.FullName), t, p.BirthDate), nil
}

func calculate(letters nameLetters, t *letterTable, date time.Time) Numbers {
	y, m, d := date.Date()
	month := int(m)

	values := make([]int, 0, len(letters.all))
	for _, r := range letters.all {
		values = append(values, t.value(r))
	}

	tr := Trace{
		Letters:      letters.all,
		LetterValues: values,
		NameSum:      t.sum(letters.all),
		VowelSum:     t.sum(letters.vowels),
		ConsonantSum: t.sum(letters.consonants),
		Day:          d,
		Month:        month,
		Year:         y,
		LifePathSum:  Reduce(d) + Reduce(month) + Reduce(y),
	}

	n := Numbers{
		LifePath:    Reduce(tr.LifePathSum),
		Destiny:     Reduce(tr.NameSum),
		SoulUrge:    Reduce(tr.VowelSum),
		Personality: Reduce(tr.ConsonantSum),
		Birthday:    Reduce(d),
		Challenge:   abs(Reduce(d) - Reduce(month)),
		Trace:       tr,
	}
	n.Maturity = Reduce(n.LifePath + n.Destiny)

	first := Reduce(d + month)
	second := Reduce(d + y)
	n.Pinnacles = [4]int{first, second, Reduce(first + second), Reduce(month + y)}
	return n
}

// Cycles are the personal year, month and day numbers for a given day.
type Cycles struct {
	Year  int `json:"personal_year"`
	Month int `json:"personal_month"`
	Day   int `json:"personal_day"`
}

// PersonalCycles computes the cycles of birthDate as of on.
func PersonalCycles(birthDate, on time.Time) Cycles {
	_, m, d := birthDate.Date()
	oy, om, od := on.Date()
	year := Reduce(int(m) + d + oy)
	month := Reduce(year + int(om))
	return Cycles{Year: year, Month: month, Day: Reduce(month + od)}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
