package quality

import "sort"

// ScoreOf computes the weighted 0-100 score of an evaluation. Each grade
// is normalized by its criterion maximum and weighted by the criterion
// weight. Grades whose criterion id no longer exists are skipped, and an
// evaluation matching no criteria scores 0.
func ScoreOf(evaluation Evaluation, criteria []Criterion) float64 {
	byID := make(map[int]Criterion, len(criteria))
	for _, c := range criteria {
		byID[c.ID] = c
	}

	var weightSum, weighted float64
	for _, note := range evaluation.Notas {
		c, ok := byID[note.CriterioID]
		if !ok {
			continue
		}
		weightSum += c.Peso
		weighted += (note.Nota / c.Max) * c.Peso
	}
	if weightSum == 0 {
		return 0
	}
	return (weighted / weightSum) * 100
}

// RankUnits scores every unit and returns them sorted by score, highest
// first. Only concluded evaluations count; a unit score is the mean of
// its evaluation scores, 0 when it has none. The sort is stable so units
// with equal scores keep their input order.
func RankUnits(units []Unit, evaluations []Evaluation, criteria []Criterion) []UnitScore {
	concluded := make([]Evaluation, 0, len(evaluations))
	for _, e := range evaluations {
		if e.Concluded() {
			concluded = append(concluded, e)
		}
	}

	ranked := make([]UnitScore, 0, len(units))
	for _, u := range units {
		var sum float64
		var count int
		for _, e := range concluded {
			if e.UnidadeID == u.ID {
				sum += ScoreOf(e, criteria)
				count++
			}
		}
		score := 0.0
		if count > 0 {
			score = sum / float64(count)
		}
		ranked = append(ranked, UnitScore{Unit: u, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// CriteriaStats computes grade statistics per criterion over concluded
// evaluations. Criteria with no grades report a zero Count.
func CriteriaStats(criteria []Criterion, evaluations []Evaluation) []CriterionStats {
	stats := make([]CriterionStats, 0, len(criteria))
	for _, c := range criteria {
		s := CriterionStats{Criterion: c}
		for _, e := range evaluations {
			if !e.Concluded() {
				continue
			}
			for _, n := range e.Notas {
				if n.CriterioID != c.ID {
					continue
				}
				if s.Count == 0 || n.Nota < s.Min {
					s.Min = n.Nota
				}
				if s.Count == 0 || n.Nota > s.Max {
					s.Max = n.Nota
				}
				s.Average += n.Nota
				s.Count++
			}
		}
		if s.Count > 0 {
			s.Average /= float64(s.Count)
		}
		stats = append(stats, s)
	}
	return stats
}

// ComarcasStats averages ranked unit scores per comarca, preserving the
// comarca order of first appearance.
func ComarcasStats(ranked []UnitScore) []ComarcaStats {
	order := make([]string, 0)
	byComarca := make(map[string]*ComarcaStats)
	for _, r := range ranked {
		s, ok := byComarca[r.Unit.Comarca]
		if !ok {
			s = &ComarcaStats{Comarca: r.Unit.Comarca}
			byComarca[r.Unit.Comarca] = s
			order = append(order, r.Unit.Comarca)
		}
		s.Units++
		s.Average += r.Score
	}

	stats := make([]ComarcaStats, 0, len(order))
	for _, comarca := range order {
		s := byComarca[comarca]
		if s.Units > 0 {
			s.Average /= float64(s.Units)
		}
		stats = append(stats, *s)
	}
	return stats
}
