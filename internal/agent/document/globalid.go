package document

import "fmt"

// GlobalIDs issues "{page}-{id}" identifiers that stay unique within one
// conversion, suffixing -2, -3... when the same pair comes up again.
type GlobalIDs map[string]int

func (g GlobalIDs) Issue(page int, id string) string {
	base := fmt.Sprintf("%d-%s", page, id)
	g[base]++
	k := g[base]
	if k == 1 {
		return base
	}
	candidate := fmt.Sprintf("%s-%d", base, k)
	for g[candidate] > 0 {
		k++
		candidate = fmt.Sprintf("%s-%d", base, k)
	}
	g[candidate]++
	return candidate
}
