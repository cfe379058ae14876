// Package engine orchestrates a processing run: extract, classify, match
// against the ledger, rename, and summarize.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sprintpoint/paperchase/internal/common"
	"github.com/sprintpoint/paperchase/internal/ledger"
	"github.com/sprintpoint/paperchase/internal/match"
	"github.com/sprintpoint/paperchase/internal/model"
	"github.com/sprintpoint/paperchase/internal/organize"
)

// Config wires the engine's collaborators.
type Config struct {
	Extractor       Extractor
	Classifier      Classifier
	Ledger          *ledger.Ledger // nil when no spreadsheet was supplied
	ExcludePatterns []string
	DryRun          bool
	// Progress is invoked after each document finishes classification.
	Progress func(done, total int)
}

// Outcome records one document's result for the run summary.
type Outcome struct {
	Path    string
	Message string
	Err     error
	Skipped bool
}

// Summary aggregates a whole run.
type Summary struct {
	Outcomes    []Outcome
	Matches     []*model.MatchResult
	Succeeded   int
	Failed      int
	Skipped     int
	Excluded    int
	RowsUpdated int
	DryRun      bool
}

// Engine sequences a batch of documents through the pipeline. Processing
// is single-threaded; document order is lexicographic by filename, which
// fixes Amazon grouping and collision-suffix assignment.
type Engine struct {
	cfg       Config
	organizer *organize.Organizer
}

// New creates an engine from the given configuration.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:       cfg,
		organizer: organize.NewOrganizer(cfg.DryRun),
	}
}

// Run processes every PDF in folder. A single document's failure never
// aborts the run; only setup errors (unreadable folder) return a non-nil
// error.
func (e *Engine) Run(ctx context.Context, folder string) (*Summary, error) {
	paths, err := listPDFs(folder)
	if err != nil {
		return nil, err
	}

	summary := &Summary{DryRun: e.cfg.DryRun}
	if len(paths) == 0 {
		slog.Info("No PDF files found", "folder", folder)
		return summary, nil
	}
	slog.Info("Processing documents", "count", len(paths), "folder", folder, "dry_run", e.cfg.DryRun)

	// Pass 1: classify everything before any matching, so the Amazon
	// grouping sees the whole batch.
	docs := e.classifyAll(ctx, paths, summary)

	// Pass 2: resolve ledger matches for the batch.
	resultByDoc := make(map[*model.ClassifiedDocument]*model.MatchResult)
	if e.cfg.Ledger != nil {
		e.matchAll(docs, summary, resultByDoc)
	}

	// Pass 3: rename and move in listing order; a filesystem failure
	// discards that document's tentative ledger mutation.
	failedDocs := make(map[*model.ClassifiedDocument]bool)
	for _, path := range paths {
		doc, ok := docs[path]
		if !ok {
			continue
		}
		if outcome := e.place(doc, resultByDoc[doc]); outcome != nil {
			if outcome.Err != nil {
				failedDocs[doc] = true
			}
			summary.record(*outcome)
		}
	}

	e.commit(summary, failedDocs)

	return summary, nil
}

// classifyAll runs extract+classify for each path, recording failures and
// skips, and returns the successfully classified documents keyed by path.
func (e *Engine) classifyAll(ctx context.Context, paths []string, summary *Summary) map[string]*model.ClassifiedDocument {
	docs := make(map[string]*model.ClassifiedDocument)
	for i, path := range paths {
		doc, err := e.classifyOne(ctx, path)
		if e.cfg.Progress != nil {
			e.cfg.Progress(i+1, len(paths))
		}
		if err != nil {
			summary.record(Outcome{Path: path, Err: err})
			continue
		}
		if doc.Type == model.TypeSprintPointInvoice {
			summary.record(Outcome{Path: path, Message: "skipped (SprintPoint invoice)", Skipped: true})
			continue
		}
		docs[path] = doc
	}
	return docs
}

func (e *Engine) classifyOne(ctx context.Context, path string) (*model.ClassifiedDocument, error) {
	text, err := e.cfg.Extractor.Text(path)
	if err != nil {
		return nil, err
	}

	// Rate limits are retried with backoff; malformed results are not.
	var doc model.ClassifiedDocument
	err = common.WithRetry(ctx, func() error {
		var cerr error
		doc, cerr = e.cfg.Classifier.Classify(ctx, text)
		if cerr != nil && !common.IsRetryable(cerr) {
			return &common.RetryableError{Err: cerr, Retryable: false}
		}
		return cerr
	}, common.RetryOptions{MaxAttempts: 3})
	if err != nil {
		return nil, err
	}
	doc.SourcePath = path

	slog.Debug("Classified document", "path", path, "type", doc.Type, "vendor", doc.Vendor)
	return &doc, nil
}

// matchAll resolves invoice and expense matches against the ledger and
// indexes each result by the documents it covers.
func (e *Engine) matchAll(docs map[string]*model.ClassifiedDocument, summary *Summary, resultByDoc map[*model.ClassifiedDocument]*model.MatchResult) {
	matcher, err := match.NewMatcher(e.cfg.Ledger.Rows(), e.cfg.Ledger.HasAmounts(), e.cfg.ExcludePatterns)
	if err != nil {
		slog.Error("Ledger matching disabled", "error", err)
		return
	}
	summary.Excluded = matcher.Excluded()

	var expenses []*model.ClassifiedDocument
	for _, path := range sortedKeys(docs) {
		doc := docs[path]
		switch doc.Type {
		case model.TypeExpense:
			expenses = append(expenses, doc)
		case model.TypeIncomingInvoice:
			result := matcher.MatchInvoice(doc)
			resultByDoc[doc] = result
			summary.Matches = append(summary.Matches, result)
		}
	}

	for _, result := range matcher.MatchExpenses(expenses) {
		for _, doc := range result.Documents {
			resultByDoc[doc] = result
		}
		summary.Matches = append(summary.Matches, result)
	}
}

// place renames/moves one document according to its type and, for
// incoming invoices, its ledger match.
func (e *Engine) place(doc *model.ClassifiedDocument, result *model.MatchResult) *Outcome {
	outcome := &Outcome{Path: doc.SourcePath}

	var newBase, folder string
	switch doc.Type {
	case model.TypeExpense:
		newBase = organize.Filename(doc)
		folder = organize.MonthFolder(doc.Date)
	case model.TypeBankStatement:
		newBase = organize.Filename(doc)
	case model.TypeIncomingInvoice:
		// The destination month comes from the payment, not the invoice.
		if result == nil || !result.Matched() {
			outcome.Message = "no unique ledger match; left in place for manual review"
			return outcome
		}
		folder = organize.MonthFolder(result.Rows[0].Date)
	default:
		return nil
	}

	dest, err := e.organizer.Move(doc.SourcePath, newBase, folder)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	switch {
	case dest == doc.SourcePath:
		outcome.Message = "already correctly named"
	case e.cfg.DryRun:
		outcome.Message = fmt.Sprintf("would move to %s", dest)
	default:
		outcome.Message = fmt.Sprintf("moved to %s", dest)
	}
	return outcome
}

// commit applies "Yes" to the rows of every surviving match and persists
// the ledger. A match survives when at least one of its documents
// completed the filesystem phase; a failed document's tentative mutation
// is discarded.
func (e *Engine) commit(summary *Summary, failedDocs map[*model.ClassifiedDocument]bool) {
	if e.cfg.Ledger == nil {
		return
	}

	committed := make(map[*model.MatchResult]bool)
	for _, result := range summary.Matches {
		if !result.Matched() || committed[result] {
			continue
		}
		survived := false
		for _, doc := range result.Documents {
			if !failedDocs[doc] {
				survived = true
				break
			}
		}
		if !survived {
			continue
		}
		committed[result] = true
		for _, row := range result.Rows {
			row.Uploaded = model.UploadedYes
			summary.RowsUpdated++
		}
	}

	if e.cfg.DryRun {
		slog.Info("Dry run - ledger not modified", "rows_matched", summary.RowsUpdated)
		return
	}

	updated, err := e.cfg.Ledger.Save()
	if err != nil {
		slog.Error("Failed to save ledger", "error", err)
		return
	}
	slog.Info("Ledger saved", "rows_updated", updated)
}

func (s *Summary) record(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch {
	case o.Err != nil:
		s.Failed++
		slog.Warn("Document failed", "path", o.Path, "error", o.Err)
	case o.Skipped:
		s.Skipped++
	default:
		s.Succeeded++
	}
}

// Render produces the end-of-run textual summary.
func (s *Summary) Render() string {
	var b strings.Builder

	for _, o := range s.Outcomes {
		name := filepath.Base(o.Path)
		switch {
		case o.Err != nil:
			fmt.Fprintf(&b, "  %s: FAILED: %v\n", name, o.Err)
		case o.Message != "":
			fmt.Fprintf(&b, "  %s: %s\n", name, o.Message)
		default:
			fmt.Fprintf(&b, "  %s: ok\n", name)
		}
	}

	fmt.Fprintf(&b, "Summary: %d successful, %d failed", s.Succeeded, s.Failed)
	if s.Skipped > 0 {
		fmt.Fprintf(&b, ", %d skipped", s.Skipped)
	}
	b.WriteString("\n")

	if len(s.Matches) > 0 || s.Excluded > 0 {
		fmt.Fprintf(&b, "Ledger: %d rows auto-excluded\n", s.Excluded)
		for _, m := range s.Matches {
			if !m.Matched() {
				continue
			}
			fmt.Fprintf(&b, "  matched %s via %s -> row %d (%s)\n",
				docNames(m.Documents), m.Strategy, m.Rows[0].Index+1, m.Rows[0].Description)
		}
		fmt.Fprintf(&b, "Matched %d ledger row(s)\n", s.RowsUpdated)
	}

	if s.DryRun {
		b.WriteString("(Dry run - no files were renamed and the ledger was not modified)\n")
	}
	return b.String()
}

func docNames(docs []*model.ClassifiedDocument) string {
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = filepath.Base(d.SourcePath)
	}
	return strings.Join(names, ", ")
}

// listPDFs returns the folder's PDF files sorted lexicographically.
func listPDFs(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("cannot read folder %s: %w", folder, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			paths = append(paths, filepath.Join(folder, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func sortedKeys(docs map[string]*model.ClassifiedDocument) []string {
	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
