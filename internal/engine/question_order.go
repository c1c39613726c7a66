package engine

import "math/rand/v2"

// QuestionOrder walks a shuffled permutation of the question bank. Every
// question is shown once per pass; a new pass reshuffles.
type QuestionOrder struct {
	perm   []int
	cursor int
	rng    *rand.Rand
}

func NewQuestionOrder(n int, rng *rand.Rand) *QuestionOrder {
	o := &QuestionOrder{perm: make([]int, n), rng: rng}
	o.Reshuffle()
	return o
}

// Current returns the bank index of the live question.
func (o *QuestionOrder) Current() (int, bool) {
	if len(o.perm) == 0 {
		return 0, false
	}
	return o.perm[o.cursor], true
}

func (o *QuestionOrder) Advance() {
	if len(o.perm) == 0 {
		return
	}
	if o.cursor+1 < len(o.perm) {
		o.cursor++
		return
	}
	last := o.perm[o.cursor]
	o.Reshuffle()
	// don't open a pass with the question that just closed the last one
	if len(o.perm) > 1 && o.perm[0] == last {
		j := 1 + o.rng.IntN(len(o.perm)-1)
		o.perm[0], o.perm[j] = o.perm[j], o.perm[0]
	}
}

func (o *QuestionOrder) Reshuffle() {
	for i := range o.perm {
		o.perm[i] = i
	}
	o.rng.Shuffle(len(o.perm), func(i, j int) { o.perm[i], o.perm[j] = o.perm[j], o.perm[i] })
	o.cursor = 0
}

// Position is 1-based within the current pass.
func (o *QuestionOrder) Position() int {
	if len(o.perm) == 0 {
		return 0
	}
	return o.cursor + 1
}

func (o *QuestionOrder) Len() int { return len(o.perm) }
