package game

// HintOrder returns the order in which hints reveal positions of word.
// The permutation is a shuffle seeded by the sum of the word's character
// codes, so a reloaded round walks the same order without storing it.
func HintOrder(word string) []int {
	n := len(word)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	seed := 0
	for i := 0; i < n; i++ {
		seed += int(word[i])
	}
	for i := n - 1; i > 0; i-- {
		j := (seed + i*i) % (i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}
