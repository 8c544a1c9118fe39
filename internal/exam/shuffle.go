package exam

import "math/rand"

// Shuffle returns a copy of e with every question's options permuted and
// its correct indices remapped. e itself is left untouched. Correct indices
// that do not address an option are kept as they are.
func Shuffle(e *Exam, rng *rand.Rand) *Exam {
	out := &Exam{Title: e.Title, Questions: make([]Question, len(e.Questions))}

	for i, q := range e.Questions {
		perm := rng.Perm(len(q.Options))

		// newPos[old] is where option old ends up.
		newPos := make([]int, len(perm))
		options := make([]string, len(q.Options))
		for to, from := range perm {
			options[to] = q.Options[from]
			newPos[from] = to
		}

		correct := make([]int, len(q.Correct))
		for j, c := range q.Correct {
			if c >= 0 && c < len(newPos) {
				correct[j] = newPos[c]
			} else {
				correct[j] = c
			}
		}

		q.Options = options
		q.Correct = correct
		out.Questions[i] = q
	}

	return out
}
