package quality

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, Store) {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return NewService(store, nil, nil), store
}

func TestAddUnitAssignsID(t *testing.T) {
	svc, _ := newTestService(t)

	first, err := svc.AddUnit(Unit{Nome: "Vara A", Comarca: "Rio Branco", Tipo: "Vara"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "Ativa", first.Status)

	second, err := svc.AddUnit(Unit{Nome: "Vara B", Comarca: "Rio Branco", Tipo: "Vara"})
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)
}

func TestAddUnitValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddUnit(Unit{Nome: "Sem comarca"})
	assert.Error(t, err)
}

func TestAddCriterionRequiresPositiveWeight(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddCriterion(Criterion{Nome: "X", Peso: 0, Max: 100})
	assert.Error(t, err)

	created, err := svc.AddCriterion(Criterion{Nome: "X", Peso: 5, Max: 100})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
}

func TestDeleteUnitCascadesEvaluations(t *testing.T) {
	svc, store := newTestService(t)

	unit, err := svc.AddUnit(Unit{Nome: "Vara A", Comarca: "Rio Branco", Tipo: "Vara"})
	require.NoError(t, err)
	other, err := svc.AddUnit(Unit{Nome: "Vara B", Comarca: "Rio Branco", Tipo: "Vara"})
	require.NoError(t, err)
	criterion, err := svc.AddCriterion(Criterion{Nome: "Produtividade", Peso: 10, Max: 100})
	require.NoError(t, err)

	_, err = svc.AddEvaluation(Evaluation{UnidadeID: unit.ID, Avaliador: "Comissao", Status: StatusConcluida, Notas: []CriterionNote{{CriterioID: criterion.ID, Nota: 80}}})
	require.NoError(t, err)
	kept, err := svc.AddEvaluation(Evaluation{UnidadeID: other.ID, Avaliador: "Comissao", Status: StatusConcluida, Notas: []CriterionNote{{CriterioID: criterion.ID, Nota: 70}}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUnit(unit.ID))

	evaluations, err := store.Evaluations()
	require.NoError(t, err)
	require.Len(t, evaluations, 1)
	assert.Equal(t, kept.ID, evaluations[0].ID)
}

func TestDeleteCriterionKeepsDanglingNotes(t *testing.T) {
	svc, store := newTestService(t)

	unit, err := svc.AddUnit(Unit{Nome: "Vara A", Comarca: "Rio Branco", Tipo: "Vara"})
	require.NoError(t, err)
	criterion, err := svc.AddCriterion(Criterion{Nome: "Produtividade", Peso: 10, Max: 100})
	require.NoError(t, err)
	_, err = svc.AddEvaluation(Evaluation{UnidadeID: unit.ID, Avaliador: "Comissao", Status: StatusConcluida, Notas: []CriterionNote{{CriterioID: criterion.ID, Nota: 80}}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCriterion(criterion.ID))

	evaluations, err := store.Evaluations()
	require.NoError(t, err)
	require.Len(t, evaluations, 1)
	assert.Equal(t, criterion.ID, evaluations[0].Notas[0].CriterioID)

	// The dangling note no longer contributes to the score.
	ranked, err := svc.Ranking("", "")
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Zero(t, ranked[0].Score)
}

func TestAddEvaluationSequentialIDs(t *testing.T) {
	svc, _ := newTestService(t)

	unit, err := svc.AddUnit(Unit{Nome: "Vara A", Comarca: "Rio Branco", Tipo: "Vara"})
	require.NoError(t, err)
	criterion, err := svc.AddCriterion(Criterion{Nome: "X", Peso: 1, Max: 100})
	require.NoError(t, err)

	first, err := svc.AddEvaluation(Evaluation{UnidadeID: unit.ID, Avaliador: "A", Status: StatusConcluida, Notas: []CriterionNote{{CriterioID: criterion.ID, Nota: 50}}})
	require.NoError(t, err)
	second, err := svc.AddEvaluation(Evaluation{UnidadeID: unit.ID, Avaliador: "B", Status: StatusRascunho, Notas: []CriterionNote{{CriterioID: criterion.ID, Nota: 60}}})
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
}

func TestAddEvaluationUnknownUnit(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddEvaluation(Evaluation{UnidadeID: 42, Avaliador: "A", Status: StatusConcluida, Notas: []CriterionNote{{CriterioID: 1, Nota: 50}}})
	assert.Error(t, err)
}

func TestRankingFilters(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddUnit(Unit{Nome: "Vara RB", Comarca: "Rio Branco", Tipo: "Vara"})
	require.NoError(t, err)
	_, err = svc.AddUnit(Unit{Nome: "Juizado CZS", Comarca: "Cruzeiro do Sul", Tipo: "Juizado"})
	require.NoError(t, err)

	all, err := svc.Ranking("", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	rb, err := svc.Ranking("Rio Branco", "")
	require.NoError(t, err)
	require.Len(t, rb, 1)
	assert.Equal(t, "Vara RB", rb[0].Unit.Nome)

	juizados, err := svc.Ranking("", "Juizado")
	require.NoError(t, err)
	require.Len(t, juizados, 1)
	assert.Equal(t, "Juizado CZS", juizados[0].Unit.Nome)
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, SeedDefaults(store))
	criteria, err := store.Criteria()
	require.NoError(t, err)
	assert.Len(t, criteria, 8)
	units, err := store.Units()
	require.NoError(t, err)
	assert.Len(t, units, 6)

	require.NoError(t, SeedDefaults(store))
	criteria, err = store.Criteria()
	require.NoError(t, err)
	assert.Len(t, criteria, 8)
}

func TestSeedDemoEvaluations(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, SeedDefaults(store))

	rng := rand.New(rand.NewSource(1))
	require.NoError(t, SeedDemoEvaluations(store, rng))

	evaluations, err := store.Evaluations()
	require.NoError(t, err)
	assert.Len(t, evaluations, 6)
	for _, e := range evaluations {
		assert.Equal(t, StatusConcluida, e.Status)
		assert.Len(t, e.Notas, 8)
		for _, n := range e.Notas {
			assert.GreaterOrEqual(t, n.Nota, 65.0)
			assert.Less(t, n.Nota, 95.0)
		}
	}

	assert.Error(t, SeedDemoEvaluations(store, rng))
}
