package quality

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/e-agenda/e-agenda-api/pkg/export"
)

// Service exposes the quality tool use cases on top of a Store.
type Service struct {
	store     Store
	validator *validator.Validate
	logger    *zap.Logger
}

// NewService constructs a Service instance.
func NewService(store Store, validate *validator.Validate, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &Service{store: store, validator: validate, logger: logger}
}

// Criteria returns all criteria.
func (s *Service) Criteria() ([]Criterion, error) {
	return s.store.Criteria()
}

// Units returns all units.
func (s *Service) Units() ([]Unit, error) {
	return s.store.Units()
}

// Evaluations returns all evaluations.
func (s *Service) Evaluations() ([]Evaluation, error) {
	return s.store.Evaluations()
}

// AddUnit validates and appends a unit, assigning the next id.
func (s *Service) AddUnit(unit Unit) (Unit, error) {
	if unit.Status == "" {
		unit.Status = "Ativa"
	}
	if err := s.validator.Struct(unit); err != nil {
		return Unit{}, fmt.Errorf("invalid unit: %w", err)
	}

	units, err := s.store.Units()
	if err != nil {
		return Unit{}, err
	}
	unit.ID = nextID(len(units), func(i int) int { return units[i].ID })
	units = append(units, unit)
	if err := s.store.SaveUnits(units); err != nil {
		return Unit{}, err
	}
	s.logger.Info("unit added", zap.Int("id", unit.ID), zap.String("nome", unit.Nome))
	return unit, nil
}

// DeleteUnit removes a unit and cascades the delete to its evaluations.
func (s *Service) DeleteUnit(id int) error {
	units, err := s.store.Units()
	if err != nil {
		return err
	}
	kept := units[:0]
	found := false
	for _, u := range units {
		if u.ID == id {
			found = true
			continue
		}
		kept = append(kept, u)
	}
	if !found {
		return fmt.Errorf("unit %d not found", id)
	}
	if err := s.store.SaveUnits(kept); err != nil {
		return err
	}

	evaluations, err := s.store.Evaluations()
	if err != nil {
		return err
	}
	remaining := evaluations[:0]
	removed := 0
	for _, e := range evaluations {
		if e.UnidadeID == id {
			removed++
			continue
		}
		remaining = append(remaining, e)
	}
	if removed > 0 {
		if err := s.store.SaveEvaluations(remaining); err != nil {
			return err
		}
	}
	s.logger.Info("unit deleted", zap.Int("id", id), zap.Int("evaluations_removed", removed))
	return nil
}

// AddCriterion validates and appends a criterion, assigning the next id.
func (s *Service) AddCriterion(criterion Criterion) (Criterion, error) {
	if err := s.validator.Struct(criterion); err != nil {
		return Criterion{}, fmt.Errorf("invalid criterion: %w", err)
	}

	criteria, err := s.store.Criteria()
	if err != nil {
		return Criterion{}, err
	}
	criterion.ID = nextID(len(criteria), func(i int) int { return criteria[i].ID })
	criteria = append(criteria, criterion)
	if err := s.store.SaveCriteria(criteria); err != nil {
		return Criterion{}, err
	}
	s.logger.Info("criterion added", zap.Int("id", criterion.ID), zap.String("nome", criterion.Nome))
	return criterion, nil
}

// DeleteCriterion removes a criterion. Grades referencing it stay in
// place and are skipped by scoring from then on.
func (s *Service) DeleteCriterion(id int) error {
	criteria, err := s.store.Criteria()
	if err != nil {
		return err
	}
	kept := criteria[:0]
	found := false
	for _, c := range criteria {
		if c.ID == id {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return fmt.Errorf("criterion %d not found", id)
	}
	if err := s.store.SaveCriteria(kept); err != nil {
		return err
	}
	s.logger.Info("criterion deleted", zap.Int("id", id))
	return nil
}

// AddEvaluation validates and appends an evaluation atomically, drawing
// its id from the persisted counter.
func (s *Service) AddEvaluation(evaluation Evaluation) (Evaluation, error) {
	if err := s.validator.Struct(evaluation); err != nil {
		return Evaluation{}, fmt.Errorf("invalid evaluation: %w", err)
	}

	units, err := s.store.Units()
	if err != nil {
		return Evaluation{}, err
	}
	known := false
	for _, u := range units {
		if u.ID == evaluation.UnidadeID {
			known = true
			break
		}
	}
	if !known {
		return Evaluation{}, fmt.Errorf("unit %d not found", evaluation.UnidadeID)
	}

	next, err := s.store.NextEvaluationID()
	if err != nil {
		return Evaluation{}, err
	}
	evaluation.ID = next

	evaluations, err := s.store.Evaluations()
	if err != nil {
		return Evaluation{}, err
	}
	evaluations = append(evaluations, evaluation)
	if err := s.store.SaveEvaluations(evaluations); err != nil {
		return Evaluation{}, err
	}
	if err := s.store.SetNextEvaluationID(next + 1); err != nil {
		return Evaluation{}, err
	}
	s.logger.Info("evaluation added", zap.Int("id", evaluation.ID), zap.Int("unidade_id", evaluation.UnidadeID))
	return evaluation, nil
}

// DeleteEvaluation removes one evaluation by id.
func (s *Service) DeleteEvaluation(id int) error {
	evaluations, err := s.store.Evaluations()
	if err != nil {
		return err
	}
	kept := evaluations[:0]
	found := false
	for _, e := range evaluations {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return fmt.Errorf("evaluation %d not found", id)
	}
	if err := s.store.SaveEvaluations(kept); err != nil {
		return err
	}
	s.logger.Info("evaluation deleted", zap.Int("id", id))
	return nil
}

// Ranking returns the scored units, optionally filtered by comarca and
// tipo. Filters apply after ranking, matching positions to the filtered
// view.
func (s *Service) Ranking(comarca, tipo string) ([]UnitScore, error) {
	units, err := s.store.Units()
	if err != nil {
		return nil, err
	}
	evaluations, err := s.store.Evaluations()
	if err != nil {
		return nil, err
	}
	criteria, err := s.store.Criteria()
	if err != nil {
		return nil, err
	}

	ranked := RankUnits(units, evaluations, criteria)
	if comarca == "" && tipo == "" {
		return ranked, nil
	}
	filtered := make([]UnitScore, 0, len(ranked))
	for _, r := range ranked {
		if comarca != "" && r.Unit.Comarca != comarca {
			continue
		}
		if tipo != "" && r.Unit.Tipo != tipo {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

// BuildReport assembles the dataset for one of the report kinds.
func (s *Service) BuildReport(kind string) (export.Dataset, error) {
	units, err := s.store.Units()
	if err != nil {
		return export.Dataset{}, err
	}
	evaluations, err := s.store.Evaluations()
	if err != nil {
		return export.Dataset{}, err
	}
	criteria, err := s.store.Criteria()
	if err != nil {
		return export.Dataset{}, err
	}

	ranked := RankUnits(units, evaluations, criteria)
	switch kind {
	case ReportGeral:
		return GeralDataset(ranked, evaluations), nil
	case ReportRanking:
		return RankingDataset(ranked), nil
	case ReportCriterios:
		return CriteriosDataset(CriteriaStats(criteria, evaluations)), nil
	case ReportComparativo:
		return ComparativoDataset(ComarcasStats(ranked)), nil
	default:
		return export.Dataset{}, fmt.Errorf("unknown report kind %q", kind)
	}
}

func nextID(n int, idAt func(int) int) int {
	max := 0
	for i := 0; i < n; i++ {
		if id := idAt(i); id > max {
			max = id
		}
	}
	return max + 1
}
