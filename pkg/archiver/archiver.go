package archiver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/entrhq/plansave/pkg/config"
	"github.com/entrhq/plansave/pkg/discovery"
	"github.com/entrhq/plansave/pkg/fsutil"
	"github.com/entrhq/plansave/pkg/git"
	"github.com/entrhq/plansave/pkg/hook"
	"github.com/entrhq/plansave/pkg/logging"
	"github.com/entrhq/plansave/pkg/plan"
	"github.com/entrhq/plansave/pkg/transcript"
)

const (
	planExt       = ".md"
	transcriptExt = ".transcript.txt"

	// transcriptSearchDepth covers <dir>/*.jsonl and <dir>/<project>/*.jsonl.
	transcriptSearchDepth = 2
)

// Committer records archived files in version control.
type Committer interface {
	CommitFiles(ctx context.Context, message string, paths []string) (string, error)
}

// Options configures an Archiver. Only Config is required.
type Options struct {
	Config *config.Config

	// WorkDir is used when the event carries no cwd; defaults to os.Getwd.
	WorkDir string

	// Committer overrides the git manager rooted at the event's cwd.
	Committer Committer

	Console *Logger
	Log     *logging.Logger

	// Now is the clock used for archive dates and recency checks.
	Now func() time.Time
}

// Entry describes the files produced for one archived session.
type Entry struct {
	BaseName       string
	Slug           string
	PlanPath       string
	TranscriptPath string

	PlanWritten       bool
	TranscriptWritten bool
}

// Written returns the paths that were actually written.
func (e *Entry) Written() []string {
	if e == nil {
		return nil
	}
	var paths []string
	if e.PlanWritten {
		paths = append(paths, e.PlanPath)
	}
	if e.TranscriptWritten {
		paths = append(paths, e.TranscriptPath)
	}
	return paths
}

// Summary reports the outcome of a run.
type Summary struct {
	SessionID      string
	Plan           *plan.Document
	TranscriptPath string

	// Entry is nil when nothing was written.
	Entry      *Entry
	CommitHash string

	// Skipped lists every item the run passed over, with the reason.
	Skipped  []string
	Duration time.Duration
}

// Archiver copies a session's plan and rendered transcript into the
// project and commits them.
type Archiver struct {
	cfg       *config.Config
	workDir   string
	committer Committer
	console   *Logger
	log       *logging.Logger
	now       func() time.Time
	excludes  []string
}

// loadedTranscript keeps the raw text for path scanning next to the parse.
type loadedTranscript struct {
	path   string
	raw    []byte
	parsed *transcript.Transcript
}

// New creates an Archiver, validating the configured discovery patterns.
func New(opts Options) (*Archiver, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	excludes := append([]string{config.ArchivedNamePattern}, cfg.Discovery.ExcludePatterns...)
	if _, err := discovery.NewPatternMatcher(nil, excludes); err != nil {
		return nil, fmt.Errorf("invalid discovery.exclude_patterns: %w", err)
	}

	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		workDir = wd
	}

	a := &Archiver{
		cfg:       cfg,
		workDir:   workDir,
		committer: opts.Committer,
		console:   opts.Console,
		log:       opts.Log,
		now:       opts.Now,
		excludes:  excludes,
	}
	if a.console == nil {
		a.console = NewLogger(ParseLogLevel(cfg.Logging.Verbosity))
	}
	if a.log == nil {
		a.log = logging.Discard()
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a, nil
}

// Run archives the session described by event. Every missing or broken
// input degrades to a skip recorded in the summary; the returned error is
// non-nil only when a write or commit failed outright, and the summary is
// valid either way.
func (a *Archiver) Run(ctx context.Context, event *hook.Event) (summary *Summary, err error) {
	start := a.now()
	ev := hook.Event{}
	if event != nil {
		ev = *event
	}
	ev.Resolve(a.workDir)

	summary = &Summary{SessionID: ev.SessionID}
	defer func() {
		summary.Duration = a.now().Sub(start)
	}()

	a.log.Infof("run: event=%q session=%q cwd=%s", ev.HookEventName, ev.SessionID, ev.CWD)

	if reason := a.gate(&ev); reason != "" {
		a.skip(summary, reason)
		return summary, nil
	}

	session := a.loadTranscript(&ev, summary)

	if a.cfg.RequireExitPlanMode && !exitedPlanMode(&ev, session) {
		a.skip(summary, "no "+transcript.ExitPlanModeTool+" call to archive")
		return summary, nil
	}

	doc := a.discoverPlan(&ev, session, summary)
	if doc == nil {
		a.skip(summary, "no plan found")
		return summary, nil
	}
	summary.Plan = doc

	entry, writeErr := a.write(ev.CWD, doc, session, ev.SessionID, summary)
	if len(entry.Written()) > 0 {
		summary.Entry = entry
	}

	commitErr := a.commit(ctx, ev.CWD, summary.Entry, summary)
	return summary, errors.Join(writeErr, commitErr)
}

// gate returns a reason when the event should not be archived at all.
func (a *Archiver) gate(ev *hook.Event) string {
	if ev.HookEventName == hook.EventSessionEnd && !a.cfg.AllowsSessionEndReason(ev.Reason) {
		return fmt.Sprintf("session end reason %q not configured for archiving", ev.Reason)
	}
	return ""
}

// exitedPlanMode reports whether the event follows a plan exit. Stop fires
// after every assistant turn, so it only counts the turn that just ended.
func exitedPlanMode(ev *hook.Event, session *loadedTranscript) bool {
	if ev.ToolName == hook.ExitPlanModeTool {
		return true
	}
	if session == nil {
		return false
	}
	if ev.HookEventName == hook.EventStop {
		return session.parsed.ExitedPlanModeInLastTurn()
	}
	return session.parsed.HasExitPlanMode()
}

func (a *Archiver) loadTranscript(ev *hook.Event, s *Summary) *loadedTranscript {
	path := a.findTranscriptPath(ev, s)
	if path == "" {
		a.skip(s, "no transcript found")
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		a.fail(s, fmt.Sprintf("failed to read transcript %s: %v", path, err))
		return nil
	}

	parsed, err := transcript.Parse(bytes.NewReader(raw))
	if err != nil {
		// keep whatever was decoded before the read error
		a.fail(s, fmt.Sprintf("transcript %s partially read: %v", path, err))
	}
	if parsed.Malformed > 0 {
		a.fail(s, fmt.Sprintf("skipped %d malformed line(s) in %s", parsed.Malformed, path))
	}

	s.TranscriptPath = path
	a.log.Infof("transcript: %s (%d entries)", path, len(parsed.Entries))
	return &loadedTranscript{path: path, raw: raw, parsed: parsed}
}

func (a *Archiver) findTranscriptPath(ev *hook.Event, s *Summary) string {
	if ev.TranscriptPath != "" {
		if isRegularFile(ev.TranscriptPath) {
			return ev.TranscriptPath
		}
		a.skip(s, fmt.Sprintf("transcript_path %s does not exist", ev.TranscriptPath))
	}

	finder, err := discovery.NewFinder(discovery.Options{
		Dirs:     config.ExpandPaths(a.cfg.Discovery.TranscriptDirs, ev.CWD),
		Include:  []string{"*.jsonl"},
		MaxDepth: transcriptSearchDepth,
		Window:   a.cfg.Discovery.RecencyWindow,
		Now:      a.now,
	})
	if err != nil {
		a.fail(s, err.Error())
		return ""
	}

	candidate, ok := finder.MostRecent()
	if !ok {
		return ""
	}
	a.console.Verbosef("using most recent transcript %s", candidate.Path)
	return candidate.Path
}

// discoverPlan tries each plan source in priority order.
func (a *Archiver) discoverPlan(ev *hook.Event, session *loadedTranscript, s *Summary) *plan.Document {
	planDirs := config.ExpandPaths(a.cfg.Discovery.PlanDirs, ev.CWD)

	if ev.PlanPath != "" {
		if doc := a.explicitPlan(ev.PlanPath, s); doc != nil {
			return doc
		}
	}

	if session != nil {
		if doc := a.referencedPlan(session, planDirs); doc != nil {
			return doc
		}
	}

	if doc := a.recentPlan(planDirs, s); doc != nil {
		return doc
	}

	if session != nil {
		if content, ok := session.parsed.ExitPlanModePlan(); ok {
			a.console.Verbosef("using plan content from %s", transcript.ExitPlanModeTool)
			return plan.FromText(content, plan.SourceExitPlanMode, a.now())
		}
	}
	return nil
}

func (a *Archiver) explicitPlan(path string, s *Summary) *plan.Document {
	if !plan.IsMarkdownPath(path) {
		a.skip(s, fmt.Sprintf("plan path %s is not a Markdown file", path))
		return nil
	}
	doc, err := plan.Load(path, plan.SourceExplicit)
	if err != nil {
		a.skip(s, fmt.Sprintf("plan path %s unusable: %v", path, err))
		return nil
	}
	a.console.Verbosef("using plan from event: %s", path)
	return doc
}

func (a *Archiver) referencedPlan(session *loadedTranscript, planDirs []string) *plan.Document {
	matcher, err := discovery.NewPatternMatcher([]string{"*" + planExt}, a.excludes)
	if err != nil {
		return nil
	}

	refs := transcript.ReferencedPaths(string(session.raw), planDirs)
	for i := len(refs) - 1; i >= 0; i-- {
		if !matcher.Matches(refs[i]) {
			continue
		}
		doc, err := plan.Load(refs[i], plan.SourceTranscript)
		if err != nil {
			a.log.Debugf("referenced plan %s unusable: %v", refs[i], err)
			continue
		}
		a.console.Verbosef("using plan referenced in transcript: %s", refs[i])
		return doc
	}
	return nil
}

func (a *Archiver) recentPlan(planDirs []string, s *Summary) *plan.Document {
	finder, err := discovery.NewFinder(discovery.Options{
		Dirs:    planDirs,
		Include: []string{"*" + planExt},
		Exclude: a.excludes,
		Window:  a.cfg.Discovery.RecencyWindow,
		Now:     a.now,
	})
	if err != nil {
		a.fail(s, err.Error())
		return nil
	}

	for _, candidate := range finder.Candidates() {
		doc, err := plan.Load(candidate.Path, plan.SourceRecentFile)
		if err != nil {
			a.fail(s, fmt.Sprintf("recent plan %s unreadable: %v", candidate.Path, err))
			continue
		}
		a.console.Verbosef("using most recent plan %s", candidate.Path)
		return doc
	}
	return nil
}

// write copies the plan and the rendered transcript under a base name that
// is unused in both output directories.
func (a *Archiver) write(root string, doc *plan.Document, session *loadedTranscript, sessionID string, s *Summary) (*Entry, error) {
	slug := doc.Slug(sessionID)
	plansDir := config.ExpandPath(a.cfg.Output.PlansDir, root)
	transcriptsDir := config.ExpandPath(a.cfg.Output.TranscriptsDir, root)
	for _, dir := range []string{plansDir, transcriptsDir} {
		if !fsutil.IsWithin(root, dir) {
			a.fail(s, fmt.Sprintf("output directory %s is outside %s", dir, root))
			return &Entry{}, fmt.Errorf("output directory %s is outside the project %s", dir, root)
		}
	}

	base := uniqueBaseName(plansDir, transcriptsDir,
		fmt.Sprintf("%s-%s-%s", a.now().Format("2006-01-02"), a.cfg.AgentName, slug))

	entry := &Entry{
		BaseName:       base,
		Slug:           slug,
		PlanPath:       filepath.Join(plansDir, base+planExt),
		TranscriptPath: filepath.Join(transcriptsDir, base+transcriptExt),
	}

	var errs []error
	if err := fsutil.WriteFileAtomic(entry.PlanPath, doc.Content, 0o644); err != nil {
		a.fail(s, fmt.Sprintf("plan not saved: %v", err))
		errs = append(errs, fmt.Errorf("failed to save plan: %w", err))
	} else {
		entry.PlanWritten = true
		a.console.FileWritten(entry.PlanPath)
		a.log.Infof("saved plan (%s) to %s", doc.Source, entry.PlanPath)
	}

	switch rendered := renderTranscript(session); {
	case session == nil:
	case rendered == "":
		a.skip(s, fmt.Sprintf("transcript %s has no conversation turns", session.path))
	default:
		if err := fsutil.WriteFileAtomic(entry.TranscriptPath, []byte(rendered), 0o644); err != nil {
			a.fail(s, fmt.Sprintf("transcript not saved: %v", err))
			errs = append(errs, fmt.Errorf("failed to save transcript: %w", err))
		} else {
			entry.TranscriptWritten = true
			a.console.FileWritten(entry.TranscriptPath)
			a.log.Infof("saved transcript to %s", entry.TranscriptPath)
		}
	}

	return entry, errors.Join(errs...)
}

func renderTranscript(session *loadedTranscript) string {
	if session == nil {
		return ""
	}
	return transcript.Render(session.parsed)
}

// uniqueBaseName appends -2, -3, ... until neither output file exists.
func uniqueBaseName(plansDir, transcriptsDir, base string) string {
	candidate := base
	for n := 2; ; n++ {
		if !fsutil.Exists(filepath.Join(plansDir, candidate+planExt)) &&
			!fsutil.Exists(filepath.Join(transcriptsDir, candidate+transcriptExt)) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

func (a *Archiver) commit(ctx context.Context, root string, entry *Entry, s *Summary) error {
	paths := entry.Written()
	if len(paths) == 0 {
		return nil
	}
	if !a.cfg.Git.AutoCommit {
		a.skip(s, "auto-commit disabled")
		return nil
	}

	committer := a.committer
	if committer == nil {
		committer = git.NewManager(root)
	}

	message := a.cfg.CommitMessage(entry.Slug)
	hash, err := committer.CommitFiles(ctx, message, paths)
	switch {
	case err == nil:
		s.CommitHash = hash
		a.console.GitOperation("committed "+hash, message)
		a.log.Infof("committed %s: %s", hash, message)
		return nil
	case git.IsSkippable(err):
		a.skip(s, fmt.Sprintf("commit skipped: %v", err))
		return nil
	default:
		a.fail(s, fmt.Sprintf("commit failed: %v", err))
		return fmt.Errorf("failed to commit archive: %w", err)
	}
}

// skip records an expected absence; it is only visible in verbose mode.
func (a *Archiver) skip(s *Summary, reason string) {
	s.Skipped = append(s.Skipped, reason)
	a.console.Verbosef("%s", reason)
	a.log.Infof("skip: %s", reason)
}

// fail records a broken input that was passed over.
func (a *Archiver) fail(s *Summary, reason string) {
	s.Skipped = append(s.Skipped, reason)
	a.console.Warningf("%s", reason)
	a.log.Warnf("%s", reason)
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
