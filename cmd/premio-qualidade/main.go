package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/e-agenda/e-agenda-api/internal/quality"
	"github.com/e-agenda/e-agenda-api/pkg/config"
	"github.com/e-agenda/e-agenda-api/pkg/export"
	"github.com/e-agenda/e-agenda-api/pkg/logger"
)

const usage = `premio-qualidade - Premio de Qualidade 2026

Usage:
  premio-qualidade <command> [flags]

Commands:
  seed        seed default criteria and units (-demo also seeds evaluations)
  unidades    list | add | delete organizational units
  criterios   list | add | delete scoring criteria
  avaliacoes  list | add | delete evaluations
  ranking     print the unit ranking (-comarca, -tipo filters)
  relatorio   print a report (-tipo geral|ranking|criterios|comparativo)
  export      write the ranking to a file (-formato csv|pdf, -out path)
`

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	store, err := quality.NewFileStore(cfg.Quality.DataDir)
	if err != nil {
		log.Fatalf("failed to open data store: %v", err)
	}
	svc := quality.NewService(store, nil, logr)

	switch os.Args[1] {
	case "seed":
		runSeed(store, os.Args[2:])
	case "unidades":
		runUnidades(svc, os.Args[2:])
	case "criterios":
		runCriterios(svc, os.Args[2:])
	case "avaliacoes":
		runAvaliacoes(svc, os.Args[2:])
	case "ranking":
		runRanking(svc, os.Args[2:])
	case "relatorio":
		runRelatorio(svc, os.Args[2:])
	case "export":
		runExport(svc, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func runSeed(store quality.Store, args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	demo := fs.Bool("demo", false, "also seed one demo evaluation per unit")
	fs.Parse(args) //nolint:errcheck

	if err := quality.SeedDefaults(store); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	fmt.Println("default criteria and units ready")

	if *demo {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		if err := quality.SeedDemoEvaluations(store, rng); err != nil {
			log.Fatalf("demo seed failed: %v", err)
		}
		fmt.Println("demo evaluations created")
	}
}

func runUnidades(svc *quality.Service, args []string) {
	if len(args) == 0 {
		log.Fatal("usage: premio-qualidade unidades list|add|delete")
	}
	switch args[0] {
	case "list":
		units, err := svc.Units()
		if err != nil {
			log.Fatalf("list failed: %v", err)
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tNome\tComarca\tTipo\tResponsavel\tStatus")
		for _, u := range units {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Nome, u.Comarca, u.Tipo, u.Responsavel, u.Status)
		}
		w.Flush() //nolint:errcheck
	case "add":
		fs := flag.NewFlagSet("unidades add", flag.ExitOnError)
		var u quality.Unit
		fs.StringVar(&u.Nome, "nome", "", "unit name (required)")
		fs.StringVar(&u.Comarca, "comarca", "", "comarca (required)")
		fs.StringVar(&u.Tipo, "tipo", "", "unit type (required)")
		fs.StringVar(&u.Responsavel, "responsavel", "", "person in charge")
		fs.StringVar(&u.Email, "email", "", "contact email")
		fs.StringVar(&u.Telefone, "telefone", "", "contact phone")
		fs.StringVar(&u.Status, "status", "Ativa", "unit status")
		fs.Parse(args[1:]) //nolint:errcheck

		created, err := svc.AddUnit(u)
		if err != nil {
			log.Fatalf("add failed: %v", err)
		}
		fmt.Printf("unit %d created\n", created.ID)
	case "delete":
		fs := flag.NewFlagSet("unidades delete", flag.ExitOnError)
		id := fs.Int("id", 0, "unit id (required)")
		yes := fs.Bool("yes", false, "skip confirmation")
		fs.Parse(args[1:]) //nolint:errcheck

		if !confirm(*yes, fmt.Sprintf("delete unit %d and all its evaluations?", *id)) {
			fmt.Println("aborted")
			return
		}
		if err := svc.DeleteUnit(*id); err != nil {
			log.Fatalf("delete failed: %v", err)
		}
		fmt.Printf("unit %d deleted\n", *id)
	default:
		log.Fatalf("unknown unidades subcommand %q", args[0])
	}
}

func runCriterios(svc *quality.Service, args []string) {
	if len(args) == 0 {
		log.Fatal("usage: premio-qualidade criterios list|add|delete")
	}
	switch args[0] {
	case "list":
		criteria, err := svc.Criteria()
		if err != nil {
			log.Fatalf("list failed: %v", err)
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tNome\tPeso\tMax")
		for _, c := range criteria {
			fmt.Fprintf(w, "%d\t%s\t%g\t%g\n", c.ID, c.Nome, c.Peso, c.Max)
		}
		w.Flush() //nolint:errcheck
	case "add":
		fs := flag.NewFlagSet("criterios add", flag.ExitOnError)
		var c quality.Criterion
		fs.StringVar(&c.Nome, "nome", "", "criterion name (required)")
		fs.StringVar(&c.Descricao, "descricao", "", "description")
		fs.Float64Var(&c.Peso, "peso", 0, "weight, greater than zero (required)")
		fs.Float64Var(&c.Max, "max", 100, "maximum grade")
		fs.Parse(args[1:]) //nolint:errcheck

		created, err := svc.AddCriterion(c)
		if err != nil {
			log.Fatalf("add failed: %v", err)
		}
		fmt.Printf("criterion %d created\n", created.ID)
	case "delete":
		fs := flag.NewFlagSet("criterios delete", flag.ExitOnError)
		id := fs.Int("id", 0, "criterion id (required)")
		yes := fs.Bool("yes", false, "skip confirmation")
		fs.Parse(args[1:]) //nolint:errcheck

		if !confirm(*yes, fmt.Sprintf("delete criterion %d? existing grades for it stop counting", *id)) {
			fmt.Println("aborted")
			return
		}
		if err := svc.DeleteCriterion(*id); err != nil {
			log.Fatalf("delete failed: %v", err)
		}
		fmt.Printf("criterion %d deleted\n", *id)
	default:
		log.Fatalf("unknown criterios subcommand %q", args[0])
	}
}

func runAvaliacoes(svc *quality.Service, args []string) {
	if len(args) == 0 {
		log.Fatal("usage: premio-qualidade avaliacoes list|add|delete")
	}
	switch args[0] {
	case "list":
		evaluations, err := svc.Evaluations()
		if err != nil {
			log.Fatalf("list failed: %v", err)
		}
		criteria, err := svc.Criteria()
		if err != nil {
			log.Fatalf("list failed: %v", err)
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tUnidade\tAvaliador\tData\tStatus\tPontuacao")
		for _, e := range evaluations {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%.1f\n", e.ID, e.UnidadeID, e.Avaliador, e.Data, e.Status, quality.ScoreOf(e, criteria))
		}
		w.Flush() //nolint:errcheck
	case "add":
		fs := flag.NewFlagSet("avaliacoes add", flag.ExitOnError)
		var e quality.Evaluation
		notas := fs.String("notas", "", "grades as criterioId=nota pairs, e.g. 1=80,2=95 (required)")
		fs.IntVar(&e.UnidadeID, "unidade", 0, "unit id (required)")
		fs.StringVar(&e.Avaliador, "avaliador", "", "evaluator name (required)")
		fs.StringVar(&e.Data, "data", time.Now().Format("2006-01-02"), "evaluation date")
		fs.StringVar(&e.Status, "status", quality.StatusConcluida, "Concluida or Rascunho")
		fs.StringVar(&e.Observacoes, "obs", "", "observations")
		fs.Parse(args[1:]) //nolint:errcheck

		parsed, err := parseNotas(*notas)
		if err != nil {
			log.Fatalf("invalid -notas: %v", err)
		}
		e.Notas = parsed

		created, err := svc.AddEvaluation(e)
		if err != nil {
			log.Fatalf("add failed: %v", err)
		}
		fmt.Printf("evaluation %d created\n", created.ID)
	case "delete":
		fs := flag.NewFlagSet("avaliacoes delete", flag.ExitOnError)
		id := fs.Int("id", 0, "evaluation id (required)")
		yes := fs.Bool("yes", false, "skip confirmation")
		fs.Parse(args[1:]) //nolint:errcheck

		if !confirm(*yes, fmt.Sprintf("delete evaluation %d?", *id)) {
			fmt.Println("aborted")
			return
		}
		if err := svc.DeleteEvaluation(*id); err != nil {
			log.Fatalf("delete failed: %v", err)
		}
		fmt.Printf("evaluation %d deleted\n", *id)
	default:
		log.Fatalf("unknown avaliacoes subcommand %q", args[0])
	}
}

func runRanking(svc *quality.Service, args []string) {
	fs := flag.NewFlagSet("ranking", flag.ExitOnError)
	comarca := fs.String("comarca", "", "filter by comarca")
	tipo := fs.String("tipo", "", "filter by unit type")
	fs.Parse(args) //nolint:errcheck

	ranked, err := svc.Ranking(*comarca, *tipo)
	if err != nil {
		log.Fatalf("ranking failed: %v", err)
	}
	printDataset(quality.RankingDataset(ranked))
}

func runRelatorio(svc *quality.Service, args []string) {
	fs := flag.NewFlagSet("relatorio", flag.ExitOnError)
	tipo := fs.String("tipo", quality.ReportGeral, "geral, ranking, criterios or comparativo")
	fs.Parse(args) //nolint:errcheck

	data, err := svc.BuildReport(*tipo)
	if err != nil {
		log.Fatalf("relatorio failed: %v", err)
	}
	printDataset(data)
}

func runExport(svc *quality.Service, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	formato := fs.String("formato", "csv", "csv or pdf")
	out := fs.String("out", "", "output path, defaults to premio_qualidade_2026.<ext>")
	fs.Parse(args) //nolint:errcheck

	data, err := svc.BuildReport(quality.ReportRanking)
	if err != nil {
		log.Fatalf("export failed: %v", err)
	}

	var content []byte
	switch *formato {
	case "csv":
		content, err = export.NewCSVExporter().Render(data)
	case "pdf":
		content, err = export.NewPDFExporter().Render(data, "Premio de Qualidade 2026")
	default:
		log.Fatalf("unknown format %q", *formato)
	}
	if err != nil {
		log.Fatalf("render failed: %v", err)
	}

	path := *out
	if path == "" {
		path = "premio_qualidade_2026." + *formato
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		log.Fatalf("write failed: %v", err)
	}
	fmt.Printf("exported %s\n", path)
}

func parseNotas(raw string) ([]quality.CriterionNote, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("at least one grade is required")
	}
	pairs := strings.Split(raw, ",")
	notas := make([]quality.CriterionNote, 0, len(pairs))
	for _, pair := range pairs {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed pair %q", pair)
		}
		id, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("criterion id %q: %w", parts[0], err)
		}
		nota, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("grade %q: %w", parts[1], err)
		}
		notas = append(notas, quality.CriterionNote{CriterioID: id, Nota: nota})
	}
	return notas, nil
}

func confirm(skip bool, prompt string) bool {
	if skip {
		return true
	}
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func printDataset(data export.Dataset) {
	w := newTable()
	fmt.Fprintln(w, strings.Join(data.Headers, "\t"))
	for _, row := range data.Rows {
		cells := make([]string, len(data.Headers))
		for i, h := range data.Headers {
			cells[i] = row[h]
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush() //nolint:errcheck
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}
