package numerology

// Reduce sums decimal digits until the result is a single digit or a
// master number. Reduce(0) is 0; negative input is treated as 0.
func Reduce(n int) int {
	if n < 0 {
		return 0
	}
	for n > 9 && !IsMaster(n) {
		n = digitSum(n)
	}
	return n
}

// IsMaster reports whether n is 11, 22 or 33.
func IsMaster(n int) bool {
	return n == 11 || n == 22 || n == 33
}

// IsKarmicDebt reports whether n is 13, 14, 16 or 19.
func IsKarmicDebt(n int) bool {
	return n == 13 || n == 14 || n == 16 || n == 19
}

func digitSum(n int) int {
	s := 0
	for n > 0 {
		s += n % 10
		n /= 10
	}
	return s
}

// reductionChain returns n followed by every value Reduce passes through,
// ending with Reduce(n).
func reductionChain(n int) []int {
	if n < 0 {
		return []int{0}
	}
	chain := []int{n}
	for n > 9 && !IsMaster(n) {
		n = digitSum(n)
		chain = append(chain, n)
	}
	return chain
}
