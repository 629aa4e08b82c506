package quality

import (
	"strconv"

	"github.com/e-agenda/e-agenda-api/pkg/export"
)

// Report kinds accepted by BuildReport.
const (
	ReportGeral       = "geral"
	ReportRanking     = "ranking"
	ReportCriterios   = "criterios"
	ReportComparativo = "comparativo"
)

// RankingDataset builds the ranking table used by reports and exports.
func RankingDataset(ranked []UnitScore) export.Dataset {
	data := export.Dataset{Headers: []string{"Posicao", "Unidade", "Comarca", "Tipo", "Pontuacao"}}
	for i, r := range ranked {
		data.Rows = append(data.Rows, map[string]string{
			"Posicao":   strconv.Itoa(i + 1),
			"Unidade":   r.Unit.Nome,
			"Comarca":   r.Unit.Comarca,
			"Tipo":      r.Unit.Tipo,
			"Pontuacao": formatScore(r.Score),
		})
	}
	return data
}

// GeralDataset lists every unit with its evaluation count and mean score.
func GeralDataset(ranked []UnitScore, evaluations []Evaluation) export.Dataset {
	data := export.Dataset{Headers: []string{"Unidade", "Comarca", "Tipo", "Avaliacoes", "Media"}}
	for _, r := range ranked {
		count := 0
		for _, e := range evaluations {
			if e.Concluded() && e.UnidadeID == r.Unit.ID {
				count++
			}
		}
		data.Rows = append(data.Rows, map[string]string{
			"Unidade":    r.Unit.Nome,
			"Comarca":    r.Unit.Comarca,
			"Tipo":       r.Unit.Tipo,
			"Avaliacoes": strconv.Itoa(count),
			"Media":      formatScore(r.Score),
		})
	}
	return data
}

// CriteriosDataset reports grade statistics per criterion. Criteria with
// no grades render a dash instead of numbers.
func CriteriosDataset(stats []CriterionStats) export.Dataset {
	data := export.Dataset{Headers: []string{"Criterio", "Peso", "Media", "MenorNota", "MaiorNota"}}
	for _, s := range stats {
		row := map[string]string{
			"Criterio":  s.Criterion.Nome,
			"Peso":      strconv.FormatFloat(s.Criterion.Peso, 'f', -1, 64),
			"Media":     "-",
			"MenorNota": "-",
			"MaiorNota": "-",
		}
		if s.Count > 0 {
			row["Media"] = formatScore(s.Average)
			row["MenorNota"] = strconv.FormatFloat(s.Min, 'f', -1, 64)
			row["MaiorNota"] = strconv.FormatFloat(s.Max, 'f', -1, 64)
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

// ComparativoDataset reports the unit count and mean score per comarca.
func ComparativoDataset(stats []ComarcaStats) export.Dataset {
	data := export.Dataset{Headers: []string{"Comarca", "Unidades", "Media"}}
	for _, s := range stats {
		data.Rows = append(data.Rows, map[string]string{
			"Comarca":  s.Comarca,
			"Unidades": strconv.Itoa(s.Units),
			"Media":    formatScore(s.Average),
		})
	}
	return data
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 1, 64)
}
