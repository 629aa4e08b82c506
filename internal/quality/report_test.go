package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-agenda/e-agenda-api/pkg/export"
)

func TestRankingDatasetHeader(t *testing.T) {
	ranked := []UnitScore{
		{Unit: Unit{ID: 1, Nome: "Vara A", Comarca: "Rio Branco", Tipo: "Vara"}, Score: 87.35},
		{Unit: Unit{ID: 2, Nome: "Vara B", Comarca: "Sena Madureira", Tipo: "Vara"}, Score: 70},
	}

	data := RankingDataset(ranked)
	assert.Equal(t, []string{"Posicao", "Unidade", "Comarca", "Tipo", "Pontuacao"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "1", data.Rows[0]["Posicao"])
	assert.Equal(t, "87.3", data.Rows[0]["Pontuacao"])
	assert.Equal(t, "70.0", data.Rows[1]["Pontuacao"])
}

func TestRankingDatasetRendersCSV(t *testing.T) {
	ranked := []UnitScore{
		{Unit: Unit{ID: 1, Nome: "Vara A", Comarca: "Rio Branco", Tipo: "Vara"}, Score: 80},
	}

	content, err := export.NewCSVExporter().Render(RankingDataset(ranked))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Posicao,Unidade,Comarca,Tipo,Pontuacao", lines[0])
	assert.Equal(t, "1,Vara A,Rio Branco,Vara,80.0", lines[1])
}

func TestCriteriosDatasetDashesWithoutGrades(t *testing.T) {
	stats := []CriterionStats{
		{Criterion: Criterion{Nome: "Produtividade", Peso: 10}, Count: 2, Average: 70, Min: 60, Max: 80},
		{Criterion: Criterion{Nome: "Celeridade", Peso: 9}},
	}

	data := CriteriosDataset(stats)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "70.0", data.Rows[0]["Media"])
	assert.Equal(t, "60", data.Rows[0]["MenorNota"])
	assert.Equal(t, "-", data.Rows[1]["Media"])
	assert.Equal(t, "-", data.Rows[1]["MenorNota"])
}

func TestGeralDatasetCountsConcluded(t *testing.T) {
	ranked := []UnitScore{{Unit: Unit{ID: 1, Nome: "Vara A", Comarca: "Rio Branco", Tipo: "Vara"}, Score: 75}}
	evaluations := []Evaluation{
		{UnidadeID: 1, Status: StatusConcluida},
		{UnidadeID: 1, Status: StatusRascunho},
	}

	data := GeralDataset(ranked, evaluations)
	require.Len(t, data.Rows, 1)
	assert.Equal(t, "1", data.Rows[0]["Avaliacoes"])
	assert.Equal(t, "75.0", data.Rows[0]["Media"])
}

func TestBuildReportUnknownKind(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	svc := NewService(store, nil, nil)

	_, err = svc.BuildReport("inexistente")
	assert.Error(t, err)
}
