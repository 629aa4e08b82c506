package quality

// Evaluation statuses.
const (
	StatusConcluida = "Concluida"
	StatusRascunho  = "Rascunho"
)

// Criterion is a weighted scoring dimension.
type Criterion struct {
	ID        int     `json:"id"`
	Nome      string  `json:"nome" validate:"required"`
	Descricao string  `json:"descricao"`
	Peso      float64 `json:"peso" validate:"required,gt=0"`
	Max       float64 `json:"max" validate:"required,gt=0"`
}

// Unit is an organizational unit under evaluation.
type Unit struct {
	ID          int    `json:"id"`
	Nome        string `json:"nome" validate:"required"`
	Comarca     string `json:"comarca" validate:"required"`
	Tipo        string `json:"tipo" validate:"required"`
	Responsavel string `json:"responsavel"`
	Email       string `json:"email" validate:"omitempty,email"`
	Telefone    string `json:"telefone"`
	Status      string `json:"status"`
}

// CriterionNote is a single grade inside an evaluation.
type CriterionNote struct {
	CriterioID int     `json:"criterioId"`
	Nota       float64 `json:"nota" validate:"gte=0"`
}

// Evaluation records one scoring round for a unit. Evaluations are
// created whole and never partially edited.
type Evaluation struct {
	ID          int             `json:"id"`
	UnidadeID   int             `json:"unidadeId" validate:"required"`
	Avaliador   string          `json:"avaliador" validate:"required"`
	Data        string          `json:"data"`
	Status      string          `json:"status" validate:"required,oneof=Concluida Rascunho"`
	Observacoes string          `json:"observacoes"`
	Notas       []CriterionNote `json:"notas" validate:"required,min=1,dive"`
}

// Concluded reports whether the evaluation counts toward rankings.
func (e Evaluation) Concluded() bool {
	return e.Status == StatusConcluida
}

// UnitScore pairs a unit with its aggregate score.
type UnitScore struct {
	Unit  Unit
	Score float64
}

// CriterionStats summarizes grades collected for one criterion.
type CriterionStats struct {
	Criterion Criterion
	Count     int
	Average   float64
	Min       float64
	Max       float64
}

// ComarcaStats aggregates unit scores per comarca.
type ComarcaStats struct {
	Comarca string
	Units   int
	Average float64
}
