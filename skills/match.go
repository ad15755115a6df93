// Package skills scores how well a set of skills covers another.
package skills

import (
	"math"
	"sort"
	"strings"
)

func normalize(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// MatchPercentage returns how many of jobSkills are covered by userSkills, as an integer
// percentage in [0, 100]. A job skill is covered when some user skill contains it or is
// contained by it, compared case-insensitively. Blank entries are ignored.
func MatchPercentage(userSkills, jobSkills []string) int {
	user := normalize(userSkills)
	job := normalize(jobSkills)
	if len(user) == 0 || len(job) == 0 {
		return 0
	}

	matched := 0
	for _, js := range job {
		for _, us := range user {
			if strings.Contains(js, us) || strings.Contains(us, js) {
				matched++
				break
			}
		}
	}
	return int(math.Round(float64(matched) / float64(len(job)) * 100))
}

// Candidate is anything that can be scored against a user's skills
type Candidate interface {
	SkillList() []string
}

// Scored pairs a candidate with its match percentage
type Scored[T Candidate] struct {
	Item            T
	MatchPercentage int
}

// Rank scores every candidate against userSkills and orders them best first.
// Candidates with equal scores keep their input order.
func Rank[T Candidate](userSkills []string, candidates []T) []Scored[T] {
	out := make([]Scored[T], len(candidates))
	for i, c := range candidates {
		out[i] = Scored[T]{Item: c, MatchPercentage: MatchPercentage(userSkills, c.SkillList())}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchPercentage > out[j].MatchPercentage
	})
	return out
}
