package quality

import (
	"fmt"
	"math/rand"
)

// SeedDefaults populates the criteria and unit collections when empty.
// Existing data is never overwritten.
func SeedDefaults(store Store) error {
	criteria, err := store.Criteria()
	if err != nil {
		return err
	}
	if len(criteria) == 0 {
		if err := store.SaveCriteria(defaultCriteria()); err != nil {
			return err
		}
	}

	units, err := store.Units()
	if err != nil {
		return err
	}
	if len(units) == 0 {
		if err := store.SaveUnits(defaultUnits()); err != nil {
			return err
		}
	}
	return nil
}

// SeedDemoEvaluations writes one concluded demo evaluation per unit with
// random grades between 65 and 94. It refuses to run over existing
// evaluations.
func SeedDemoEvaluations(store Store, rng *rand.Rand) error {
	existing, err := store.Evaluations()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("evaluations already present, refusing to seed")
	}

	criteria, err := store.Criteria()
	if err != nil {
		return err
	}
	units, err := store.Units()
	if err != nil {
		return err
	}

	evaluations := make([]Evaluation, 0, len(units))
	for i, u := range units {
		notas := make([]CriterionNote, 0, len(criteria))
		for _, c := range criteria {
			notas = append(notas, CriterionNote{CriterioID: c.ID, Nota: float64(rng.Intn(30) + 65)})
		}
		evaluations = append(evaluations, Evaluation{
			ID:          i + 1,
			UnidadeID:   u.ID,
			Avaliador:   "Comissao de Qualidade",
			Data:        "2026-01-15",
			Status:      StatusConcluida,
			Observacoes: "Avaliacao do primeiro ciclo 2026",
			Notas:       notas,
		})
	}

	if err := store.SaveEvaluations(evaluations); err != nil {
		return err
	}
	return store.SetNextEvaluationID(len(evaluations) + 1)
}

func defaultCriteria() []Criterion {
	return []Criterion{
		{ID: 1, Nome: "Produtividade", Descricao: "Volume de processos julgados e despachos proferidos em relacao a meta estabelecida", Peso: 10, Max: 100},
		{ID: 2, Nome: "Celeridade", Descricao: "Tempo medio de tramitacao dos processos e cumprimento de prazos legais", Peso: 9, Max: 100},
		{ID: 3, Nome: "Inovacao e Boas Praticas", Descricao: "Implementacao de solucoes inovadoras e adocao de boas praticas de gestao", Peso: 7, Max: 100},
		{ID: 4, Nome: "Satisfacao do Usuario", Descricao: "Resultado das pesquisas de satisfacao com jurisdicionados e advogados", Peso: 8, Max: 100},
		{ID: 5, Nome: "Gestao de Pessoas", Descricao: "Clima organizacional, capacitacao e desenvolvimento dos servidores", Peso: 7, Max: 100},
		{ID: 6, Nome: "Responsabilidade Socioambiental", Descricao: "Acoes de sustentabilidade e responsabilidade social desenvolvidas", Peso: 5, Max: 100},
		{ID: 7, Nome: "Governanca e Conformidade", Descricao: "Cumprimento das normas, resolucoes do CNJ e transparencia", Peso: 8, Max: 100},
		{ID: 8, Nome: "Tecnologia e Digitalizacao", Descricao: "Nivel de adocao de ferramentas tecnologicas e digitalizacao de processos", Peso: 6, Max: 100},
	}
}

func defaultUnits() []Unit {
	return []Unit{
		{ID: 1, Nome: "1a Vara Civel da Comarca de Rio Branco", Comarca: "Rio Branco", Tipo: "Vara", Responsavel: "Dr. Carlos Mendes", Email: "vara1civel@tjac.jus.br", Telefone: "(68) 3211-0001", Status: "Ativa"},
		{ID: 2, Nome: "2a Vara Criminal da Comarca de Rio Branco", Comarca: "Rio Branco", Tipo: "Vara", Responsavel: "Dra. Ana Paula Lima", Email: "vara2criminal@tjac.jus.br", Telefone: "(68) 3211-0002", Status: "Ativa"},
		{ID: 3, Nome: "Juizado Especial Civel de Cruzeiro do Sul", Comarca: "Cruzeiro do Sul", Tipo: "Juizado", Responsavel: "Dr. Roberto Alves", Email: "jecivel.czs@tjac.jus.br", Telefone: "(68) 3322-0001", Status: "Ativa"},
		{ID: 4, Nome: "Vara Unica da Comarca de Sena Madureira", Comarca: "Sena Madureira", Tipo: "Vara", Responsavel: "Dra. Fernanda Costa", Email: "vara.sena@tjac.jus.br", Telefone: "(68) 3612-0001", Status: "Ativa"},
		{ID: 5, Nome: "Secretaria de Gestao Estrategica", Comarca: "Rio Branco", Tipo: "Secretaria", Responsavel: "Maria Helena Souza", Email: "sge@tjac.jus.br", Telefone: "(68) 3211-0100", Status: "Ativa"},
		{ID: 6, Nome: "Diretoria de Tecnologia da Informacao", Comarca: "Rio Branco", Tipo: "Diretoria", Responsavel: "Joao Pedro Santos", Email: "dti@tjac.jus.br", Telefone: "(68) 3211-0200", Status: "Ativa"},
	}
}
