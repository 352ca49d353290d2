// Command textsuite runs the analysis suite from the command line.
//
// Usage:
//
//	textsuite [-config textsuite.yaml] <command> [flags]
//
// Commands:
//
//	topics      discover topics in a document (-file) or stdin
//	sentiment   score the sentiment of -text or stdin
//	paraphrase  rewrite -text through the language model
//	chat        interactive chat with the language model
//	batch       analyse every document of a JSONL file
//	reports     list archived reports, or show one with -id
//	stopwords   suggest corpus stopwords from a JSONL file
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/textsuite/internal/app"
	"github.com/cognicore/textsuite/internal/batch"
	"github.com/cognicore/textsuite/internal/logger"
	"github.com/cognicore/textsuite/pkg/textsuite"
	"github.com/cognicore/textsuite/pkg/textsuite/autotune/stopwords"
	"github.com/cognicore/textsuite/pkg/textsuite/config"
	"github.com/cognicore/textsuite/pkg/textsuite/internalerr"
	"github.com/cognicore/textsuite/pkg/textsuite/report"
)

const usage = `usage: textsuite [-config file] <command> [flags]

commands:
  topics      discover topics in a document (-file) or stdin
  sentiment   score the sentiment of -text or stdin
  paraphrase  rewrite -text through the language model
  chat        interactive chat with the language model
  batch       analyse every document of a JSONL file (-input)
  reports     list archived reports, or show one with -id
  stopwords   suggest corpus stopwords from a JSONL file (-input)
`

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	// The CLI keeps metrics off unless it runs inside the server.
	cfg.Metrics.Enabled = false
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("build suite: %v", err)
	}
	defer a.Close()

	if err := run(ctx, a, flag.Args(), os.Stdin, os.Stdout); err != nil {
		a.Close()
		log.Fatal(err)
	}
}

func run(ctx context.Context, a *app.App, args []string, stdin io.Reader, stdout io.Writer) error {
	suite := a.Suite
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "topics":
		return runTopics(ctx, suite, rest, stdin, stdout)
	case "sentiment":
		return runSentiment(suite, rest, stdin, stdout)
	case "paraphrase":
		return runParaphrase(ctx, suite, rest, stdin, stdout)
	case "chat":
		return runChat(ctx, suite, stdin, stdout)
	case "batch":
		return runBatch(ctx, suite, rest, stdout)
	case "reports":
		return runReports(ctx, suite, rest, stdout)
	case "stopwords":
		return runStopwords(ctx, a, rest, stdout)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func runTopics(ctx context.Context, suite *textsuite.Suite, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("topics", flag.ContinueOnError)
	file := fs.String("file", "", "document to analyse (pdf, txt, docx, html); stdin when empty")
	numTopics := fs.Int("topics", 0, "number of topics (0 uses the configured count)")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		rep report.Report
		err error
	)
	if *file != "" {
		f, openErr := os.Open(*file)
		if openErr != nil {
			return openErr
		}
		defer f.Close()
		rep, err = suite.AnalyzeDocument(ctx, textsuite.Upload{
			Name:      filepath.Base(*file),
			Body:      f,
			NumTopics: *numTopics,
		})
	} else {
		text, readErr := io.ReadAll(stdin)
		if readErr != nil {
			return readErr
		}
		rep, err = suite.AnalyzeText(ctx, "stdin", string(text), *numTopics)
	}
	if err != nil {
		return err
	}

	if *asJSON {
		return printJSON(stdout, rep)
	}
	printReport(stdout, rep)
	return nil
}

func printReport(w io.Writer, rep report.Report) {
	fmt.Fprintf(w, "Report %s (%s)\n", rep.ID, rep.Name)
	fmt.Fprintf(w, "Coherence: %.4f (%s confidence)\n", rep.Result.CoherenceScore, rep.Confidence)
	if len(rep.Result.Topics) == 0 {
		fmt.Fprintln(w, "No topics found.")
		return
	}
	for _, t := range rep.Result.Topics {
		fmt.Fprintf(w, "\n--- Topic %d ---\n", t.ID)
		fmt.Fprintf(w, "  %s\n", t.Summary)
		for _, kw := range t.Keywords {
			fmt.Fprintf(w, "    %-20s %.4f\n", kw.Word, kw.Probability)
		}
	}
	if d := rep.Result.DominantTopic; d != nil {
		fmt.Fprintf(w, "\nDominant topic: %d (p=%.2f)\n", d.TopicID, d.Probability)
	}
}

func textArg(text string, stdin io.Reader) (string, error) {
	if text != "" {
		return text, nil
	}
	data, err := io.ReadAll(stdin)
	return string(data), err
}

func runSentiment(suite *textsuite.Suite, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("sentiment", flag.ContinueOnError)
	text := fs.String("text", "", "text to score; stdin when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	input, err := textArg(*text, stdin)
	if err != nil {
		return err
	}
	return printJSON(stdout, suite.Sentiment(input))
}

func runParaphrase(ctx context.Context, suite *textsuite.Suite, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("paraphrase", flag.ContinueOnError)
	text := fs.String("text", "", "text to paraphrase; stdin when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	input, err := textArg(*text, stdin)
	if err != nil {
		return err
	}
	out, err := suite.Paraphrase(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, out)
	return nil
}

func runChat(ctx context.Context, suite *textsuite.Suite, stdin io.Reader, stdout io.Writer) error {
	fmt.Fprintln(stdout, "Type a message (Ctrl+D to exit):")

	sessionID := ""
	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(stdout, "> ")
		if !scanner.Scan() {
			break
		}
		msg := strings.TrimSpace(scanner.Text())
		if msg == "" {
			continue
		}
		reply, err := suite.Chat(ctx, sessionID, msg)
		if err != nil {
			fmt.Fprintln(stdout, "Error:", err)
			continue
		}
		sessionID = reply.SessionID
		fmt.Fprintln(stdout, reply.Reply)
	}
	fmt.Fprintln(stdout, "\nGoodbye!")
	return scanner.Err()
}

type batchLine struct {
	Name       string  `json:"name"`
	ReportID   string  `json:"report_id,omitempty"`
	Topics     int     `json:"topics"`
	Coherence  float64 `json:"coherence_score"`
	Confidence string  `json:"confidence,omitempty"`
	Error      string  `json:"error,omitempty"`
}

func runBatch(ctx context.Context, suite *textsuite.Suite, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	input := fs.String("input", "", "JSONL file of {name, text, num_topics} objects (required)")
	workers := fs.Int("workers", 4, "documents analysed concurrently")
	keepGoing := fs.Bool("keep-going", true, "report failed documents instead of stopping")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return errors.New("--input required")
	}

	items, err := batch.LoadFromJSONL(*input)
	if err != nil {
		return err
	}

	lines, err := batch.Run(ctx, items, *workers, func(ctx context.Context, item batch.Item) (batchLine, error) {
		rep, err := suite.AnalyzeText(ctx, item.Name, item.Text, item.NumTopics)
		if err != nil {
			if *keepGoing {
				return batchLine{Name: item.Name, Error: err.Error()}, nil
			}
			return batchLine{}, err
		}
		return batchLine{
			Name:       item.Name,
			ReportID:   rep.ID,
			Topics:     len(rep.Result.Topics),
			Coherence:  rep.Result.CoherenceScore,
			Confidence: rep.Confidence,
		}, nil
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	for _, line := range lines {
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

func runReports(ctx context.Context, suite *textsuite.Suite, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("reports", flag.ContinueOnError)
	id := fs.String("id", "", "show one report")
	limit := fs.Int("limit", 0, "maximum reports to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *id != "" {
		rep, err := suite.Report(ctx, *id)
		if err != nil {
			return err
		}
		return printJSON(stdout, rep)
	}

	reports, err := suite.Reports(ctx, *limit)
	if err != nil {
		return err
	}
	for _, rep := range reports {
		fmt.Fprintf(stdout, "%s  %s  %-6s  %.4f  %s\n",
			rep.ID, rep.CreatedAt.Format("2006-01-02 15:04:05"), rep.Confidence, rep.Result.CoherenceScore, rep.Name)
	}
	return nil
}

func runStopwords(ctx context.Context, a *app.App, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("stopwords", flag.ContinueOnError)
	input := fs.String("input", "", "JSONL file of {name, text} objects (required)")
	dfPercent := fs.Float64("df", stopwords.DefaultThresholds().DFPercent, "minimum document frequency in percent")
	pmiMax := fs.Float64("pmi-max", stopwords.DefaultThresholds().PMIMax, "maximum NPMI with any token")
	review := fs.Bool("review", false, "ask the language model to confirm each candidate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return errors.New("--input required")
	}

	items, err := batch.LoadFromJSONL(*input)
	if err != nil {
		return err
	}
	docs := make([][]string, 0, len(items))
	for _, item := range items {
		docs = append(docs, a.Components.Normalizer.Normalize(item.Text))
	}

	th := stopwords.DefaultThresholds()
	th.DFPercent, th.PMIMax = *dfPercent, *pmiMax
	tuner := stopwords.AutoTuner{Manager: a.Components.Stoplist, Thresholds: th}
	if *review {
		if a.LLM == nil {
			return fmt.Errorf("--review needs a language model: %w", internalerr.ErrInvalidConfig)
		}
		tuner.Reviewer = &stopwords.LLMReviewer{Client: a.LLM}
	}

	candidates, err := tuner.Run(ctx, docs)
	if err != nil {
		return err
	}
	if candidates == nil {
		candidates = []stopwords.Candidate{}
	}
	return printJSON(stdout, candidates)
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}
