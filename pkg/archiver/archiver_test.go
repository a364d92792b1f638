package archiver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/plansave/pkg/config"
	"github.com/entrhq/plansave/pkg/hook"
	"github.com/entrhq/plansave/pkg/plan"
)

var baseTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)

const simpleTranscript = `{"type":"user","message":{"role":"user","content":"hello"}}
{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"hi"}]}}
`

// fixture lays out a project dir plus the agent's plan and transcript dirs.
type fixture struct {
	project       string
	planDir       string
	transcriptDir string
	cfg           *config.Config
	console       *bytes.Buffer
	committer     Committer
	archivedPlans string
	archivedTrans string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		project:       filepath.Join(root, "project"),
		planDir:       filepath.Join(root, "home", "plans"),
		transcriptDir: filepath.Join(root, "home", "projects"),
		console:       &bytes.Buffer{},
	}
	for _, dir := range []string{f.project, f.planDir, f.transcriptDir} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	f.cfg = config.Default()
	// discovery tests run ungated; the plan-exit gate has its own tests
	f.cfg.RequireExitPlanMode = false
	f.cfg.Discovery.PlanDirs = []string{f.planDir}
	f.cfg.Discovery.TranscriptDirs = []string{f.transcriptDir}
	f.archivedPlans = filepath.Join(f.project, config.DefaultPlansDir)
	f.archivedTrans = filepath.Join(f.project, config.DefaultTranscriptsDir)
	return f
}

func (f *fixture) archiver(t *testing.T) *Archiver {
	t.Helper()
	a, err := New(Options{
		Config:    f.cfg,
		WorkDir:   f.project,
		Committer: f.committer,
		Console:   NewLoggerWithWriter(LogLevelDebug, f.console),
		Now:       func() time.Time { return baseTime },
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) run(t *testing.T, event *hook.Event) *Summary {
	t.Helper()
	summary, err := f.archiver(t).Run(context.Background(), event)
	require.NoError(t, err)
	require.NotNil(t, summary)
	return summary
}

func writeAt(t *testing.T, path, content string, modTime time.Time) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, output)
	return strings.TrimSpace(string(output))
}

func initRepo(t *testing.T, dir string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "commit.gpgsign", "false")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Project\n"), 0o644))
	runGit(t, dir, "add", "README.md")
	runGit(t, dir, "commit", "-m", "Initial commit")
}

type fakeCommitter struct {
	calls   int
	paths   []string
	message string
	err     error
}

func (c *fakeCommitter) CommitFiles(_ context.Context, message string, paths []string) (string, error) {
	c.calls++
	c.message = message
	c.paths = paths
	if c.err != nil {
		return "", c.err
	}
	return "abc1234", nil
}

func TestRun_ArchivesAndCommits(t *testing.T) {
	f := newFixture(t)
	initRepo(t, f.project)

	planPath := writeAt(t, filepath.Join(f.planDir, "bold-sun.md"), "# Add Retry Logic\n\nSteps.\n", baseTime.Add(-time.Minute))
	transcriptPath := writeAt(t, filepath.Join(f.transcriptDir, "p", "s.jsonl"), simpleTranscript, baseTime)

	summary := f.run(t, &hook.Event{
		SessionID:      "abc-123",
		TranscriptPath: transcriptPath,
		PlanPath:       planPath,
		CWD:            f.project,
		HookEventName:  hook.EventStop,
	})

	require.NotNil(t, summary.Entry)
	assert.Equal(t, "2026-03-14-claude-add-retry-logic", summary.Entry.BaseName)
	assert.Equal(t, plan.SourceExplicit, summary.Plan.Source)
	assert.Equal(t, transcriptPath, summary.TranscriptPath)

	assert.Equal(t, "# Add Retry Logic\n\nSteps.\n",
		readFile(t, filepath.Join(f.archivedPlans, "2026-03-14-claude-add-retry-logic.md")))
	assert.Equal(t, "User: hello\n\nAssistant: hi\n",
		readFile(t, filepath.Join(f.archivedTrans, "2026-03-14-claude-add-retry-logic.transcript.txt")))
	assert.FileExists(t, planPath, "source plan must be copied, not moved")

	assert.NotEmpty(t, summary.CommitHash)
	assert.Equal(t, "chore: save planning session - claude-add-retry-logic",
		runGit(t, f.project, "log", "-1", "--format=%s"))
	committed := runGit(t, f.project, "show", "--name-only", "--format=", "HEAD")
	assert.ElementsMatch(t, []string{
		"agent_logs/plans/2026-03-14-claude-add-retry-logic.md",
		"agent_logs/transcripts/2026-03-14-claude-add-retry-logic.transcript.txt",
	}, strings.Split(committed, "\n"))
}

func TestRun_SameDayTwiceGetsSuffix(t *testing.T) {
	f := newFixture(t)
	f.committer = &fakeCommitter{}
	planPath := writeAt(t, filepath.Join(f.planDir, "p.md"), "# Same Plan\n", baseTime)
	transcriptPath := writeAt(t, filepath.Join(f.transcriptDir, "s.jsonl"), simpleTranscript, baseTime)
	event := &hook.Event{TranscriptPath: transcriptPath, PlanPath: planPath, CWD: f.project}

	first := f.run(t, event)
	second := f.run(t, event)

	assert.Equal(t, "2026-03-14-claude-same-plan", first.Entry.BaseName)
	assert.Equal(t, "2026-03-14-claude-same-plan-2", second.Entry.BaseName)
	assert.Equal(t, []string{"2026-03-14-claude-same-plan-2.md", "2026-03-14-claude-same-plan.md"}, listDir(t, f.archivedPlans))
	assert.Len(t, listDir(t, f.archivedTrans), 2)
}

func TestRun_SuffixAvoidsTranscriptCollision(t *testing.T) {
	f := newFixture(t)
	f.committer = &fakeCommitter{}
	writeAt(t, filepath.Join(f.archivedTrans, "2026-03-14-claude-x.transcript.txt"), "old", baseTime)
	planPath := writeAt(t, filepath.Join(f.planDir, "p.md"), "# X\n", baseTime)

	summary := f.run(t, &hook.Event{PlanPath: planPath, CWD: f.project})
	assert.Equal(t, "2026-03-14-claude-x-2", summary.Entry.BaseName)
}

func TestRun_NothingDiscoverable(t *testing.T) {
	f := newFixture(t)
	committer := &fakeCommitter{}
	f.committer = committer
	f.cfg.Logging.Verbosity = "normal"

	a, err := New(Options{
		Config:    f.cfg,
		WorkDir:   f.project,
		Committer: committer,
		Console:   NewLoggerWithWriter(LogLevelNormal, f.console),
		Now:       func() time.Time { return baseTime },
	})
	require.NoError(t, err)

	summary, err := a.Run(context.Background(), &hook.Event{})
	require.NoError(t, err)

	assert.Nil(t, summary.Entry)
	assert.Contains(t, summary.Skipped, "no plan found")
	assert.Contains(t, summary.Skipped, "no transcript found")
	assert.NoDirExists(t, filepath.Join(f.project, "agent_logs"))
	assert.Zero(t, committer.calls)
	assert.Empty(t, f.console.String(), "missing inputs are silent at normal verbosity")
}

func TestRun_OutsideRepositoryWritesWithoutCommit(t *testing.T) {
	f := newFixture(t)
	planPath := writeAt(t, filepath.Join(f.planDir, "p.md"), "# Outside\n", baseTime)

	summary := f.run(t, &hook.Event{PlanPath: planPath, CWD: f.project})

	require.NotNil(t, summary.Entry)
	assert.FileExists(t, summary.Entry.PlanPath)
	assert.Empty(t, summary.CommitHash)
	assert.True(t, hasPrefix(summary.Skipped, "commit skipped"), "skipped: %v", summary.Skipped)
}

func TestRun_PlanWithoutTranscript(t *testing.T) {
	f := newFixture(t)
	committer := &fakeCommitter{}
	f.committer = committer
	planPath := writeAt(t, filepath.Join(f.planDir, "p.md"), "# Solo\n", baseTime)

	summary := f.run(t, &hook.Event{PlanPath: planPath, CWD: f.project})

	assert.True(t, summary.Entry.PlanWritten)
	assert.False(t, summary.Entry.TranscriptWritten)
	assert.NoDirExists(t, f.archivedTrans)
	assert.Equal(t, []string{summary.Entry.PlanPath}, committer.paths)
	assert.Equal(t, "chore: save planning session - claude-solo", committer.message)
}

func TestRun_ReferencedPlanBeatsRecentFile(t *testing.T) {
	f := newFixture(t)
	f.committer = &fakeCommitter{}
	referenced := writeAt(t, filepath.Join(f.planDir, "quiet-river.md"), "# Referenced\n", baseTime.Add(-20*time.Minute))
	writeAt(t, filepath.Join(f.planDir, "newer.md"), "# Newer\n", baseTime.Add(-time.Minute))

	content := simpleTranscript + fmt.Sprintf(
		`{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","id":"t1","name":"Write","input":{"file_path":%q}}]}}`+"\n",
		referenced)
	transcriptPath := writeAt(t, filepath.Join(f.transcriptDir, "s.jsonl"), content, baseTime)

	summary := f.run(t, &hook.Event{TranscriptPath: transcriptPath, CWD: f.project})

	require.NotNil(t, summary.Plan)
	assert.Equal(t, plan.SourceTranscript, summary.Plan.Source)
	assert.Equal(t, "2026-03-14-claude-referenced", summary.Entry.BaseName)
}

func TestRun_ReferencedPathOutsidePlanDirIgnored(t *testing.T) {
	f := newFixture(t)
	f.committer = &fakeCommitter{}
	secret := writeAt(t, filepath.Join(filepath.Dir(f.planDir), "secret.md"), "# Secret\n", baseTime)

	content := simpleTranscript + fmt.Sprintf(`{"role":"assistant","content":"see %s/../secret.md"}`+"\n", f.planDir)
	transcriptPath := writeAt(t, filepath.Join(f.transcriptDir, "s.jsonl"), content, baseTime)

	summary := f.run(t, &hook.Event{TranscriptPath: transcriptPath, CWD: f.project})

	assert.Nil(t, summary.Entry)
	assert.Contains(t, summary.Skipped, "no plan found")
	assert.FileExists(t, secret)
	assert.NoDirExists(t, f.archivedPlans)
}

func TestRun_RecentPlanSkipsArchivedNames(t *testing.T) {
	f := newFixture(t)
	f.committer = &fakeCommitter{}
	writeAt(t, filepath.Join(f.planDir, "2026-03-14-claude-done.md"), "# Done\n", baseTime)
	writeAt(t, filepath.Join(f.planDir, "fresh.md"), "# Fresh\n", baseTime.Add(-2*time.Minute))
	writeAt(t, filepath.Join(f.planDir, "stale.md"), "# Stale\n", baseTime.Add(-time.Hour))

	summary := f.run(t, &hook.Event{CWD: f.project})

	require.NotNil(t, summary.Plan)
	assert.Equal(t, plan.SourceRecentFile, summary.Plan.Source)
	assert.Equal(t, "# Fresh\n", string(summary.Plan.Content))
}

func TestRun_NonMarkdownExplicitPathFallsThrough(t *testing.T) {
	f := newFixture(t)
	f.committer = &fakeCommitter{}
	notes := writeAt(t, filepath.Join(f.project, "notes.txt"), "# Not A Plan\n", baseTime)
	writeAt(t, filepath.Join(f.planDir, "real.md"), "# Real Plan\n", baseTime)

	summary := f.run(t, &hook.Event{PlanPath: notes, CWD: f.project})

	assert.Equal(t, plan.SourceRecentFile, summary.Plan.Source)
	assert.Equal(t, "2026-03-14-claude-real-plan", summary.Entry.BaseName)
}

func TestRun_ExitPlanModeInlineContent(t *testing.T) {
	f := newFixture(t)
	f.committer = &fakeCommitter{}
	content := simpleTranscript +
		`{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","id":"t1","name":"ExitPlanMode","input":{"plan":"# Inline Plan\n\n1. Do it\n"}}]}}` + "\n"
	transcriptPath := writeAt(t, filepath.Join(f.transcriptDir, "s.jsonl"), content, baseTime)

	summary := f.run(t, &hook.Event{TranscriptPath: transcriptPath, CWD: f.project})

	require.NotNil(t, summary.Entry)
	assert.Equal(t, plan.SourceExitPlanMode, summary.Plan.Source)
	assert.Equal(t, "2026-03-14-claude-inline-plan", summary.Entry.BaseName)
	assert.Equal(t, "# Inline Plan\n\n1. Do it\n", readFile(t, summary.Entry.PlanPath))
	assert.Contains(t, readFile(t, summary.Entry.TranscriptPath), "[Tool: ExitPlanMode]")
}

func TestRun_RequireExitPlanMode(t *testing.T) {
	f := newFixture(t)
	f.committer = &fakeCommitter{}
	f.cfg.RequireExitPlanMode = true
	planPath := writeAt(t, filepath.Join(f.planDir, "p.md"), "# P\n", baseTime)
	transcriptPath := writeAt(t, filepath.Join(f.transcriptDir, "s.jsonl"), simpleTranscript, baseTime)

	summary := f.run(t, &hook.Event{TranscriptPath: transcriptPath, PlanPath: planPath, CWD: f.project})
	assert.Nil(t, summary.Entry)
	assert.Contains(t, summary.Skipped, "no ExitPlanMode call to archive")

	// the PostToolUse event for the tool itself counts
	summary = f.run(t, &hook.Event{PlanPath: planPath, CWD: f.project, ToolName: hook.ExitPlanModeTool})
	assert.NotNil(t, summary.Entry)
}

const (
	exitPlanTurn = `{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","id":"t9","name":"ExitPlanMode","input":{}}]}}
{"type":"user","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"t9","content":"approved"}]}}
{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"Implementing."}]}}
`
	followUpTurn = `{"type":"user","message":{"role":"user","content":"now add tests"}}
{"type":"assistant","message":{"role":"assistant","content":"Done."}}
`
)

func TestRun_StopWithoutPlanExitArchivesNothing(t *testing.T) {
	f := newFixture(t)
	committer := &fakeCommitter{}
	f.committer = committer
	f.cfg.RequireExitPlanMode = config.Default().RequireExitPlanMode
	writeAt(t, filepath.Join(f.planDir, "draft.md"), "# Draft\n", baseTime.Add(-time.Minute))
	transcriptPath := writeAt(t, filepath.Join(f.transcriptDir, "s.jsonl"), simpleTranscript, baseTime)

	for turn := 1; turn <= 3; turn++ {
		summary := f.run(t, &hook.Event{HookEventName: hook.EventStop, TranscriptPath: transcriptPath, CWD: f.project})
		assert.Nil(t, summary.Entry, "turn %d", turn)
	}

	assert.NoDirExists(t, f.archivedPlans)
	assert.Zero(t, committer.calls)
}

func TestRun_StopArchivesOnlyThePlanExitTurn(t *testing.T) {
	f := newFixture(t)
	committer := &fakeCommitter{}
	f.committer = committer
	f.cfg.RequireExitPlanMode = true
	writeAt(t, filepath.Join(f.planDir, "draft.md"), "# Draft\n", baseTime.Add(-time.Minute))
	transcriptPath := filepath.Join(f.transcriptDir, "s.jsonl")
	stop := &hook.Event{HookEventName: hook.EventStop, TranscriptPath: transcriptPath, CWD: f.project}

	writeAt(t, transcriptPath, simpleTranscript+exitPlanTurn, baseTime)
	summary := f.run(t, stop)
	require.NotNil(t, summary.Entry)
	assert.Equal(t, "2026-03-14-claude-draft", summary.Entry.BaseName)

	writeAt(t, transcriptPath, simpleTranscript+exitPlanTurn+followUpTurn, baseTime)
	summary = f.run(t, stop)
	assert.Nil(t, summary.Entry)

	// a clear after the plan was approved still archives the session
	summary = f.run(t, &hook.Event{HookEventName: hook.EventSessionEnd, Reason: "clear", TranscriptPath: transcriptPath, CWD: f.project})
	assert.NotNil(t, summary.Entry)

	assert.Equal(t, 2, committer.calls)
	assert.Equal(t, []string{"2026-03-14-claude-draft-2.md", "2026-03-14-claude-draft.md"}, listDir(t, f.archivedPlans))
}

func TestRun_SessionEndReasonGate(t *testing.T) {
	f := newFixture(t)
	f.committer = &fakeCommitter{}
	f.cfg.SessionEndReasons = []string{"clear"}
	planPath := writeAt(t, filepath.Join(f.planDir, "p.md"), "# P\n", baseTime)

	summary := f.run(t, &hook.Event{HookEventName: hook.EventSessionEnd, Reason: "logout", PlanPath: planPath, CWD: f.project})
	assert.Nil(t, summary.Entry)
	require.Len(t, summary.Skipped, 1)

	summary = f.run(t, &hook.Event{HookEventName: hook.EventSessionEnd, Reason: "clear", PlanPath: planPath, CWD: f.project})
	assert.NotNil(t, summary.Entry)
}

func TestRun_DiscoversRecentTranscript(t *testing.T) {
	f := newFixture(t)
	f.committer = &fakeCommitter{}
	writeAt(t, filepath.Join(f.planDir, "p.md"), "# P\n", baseTime)
	writeAt(t, filepath.Join(f.transcriptDir, "proj", "old.jsonl"), `{"role":"user","content":"old"}`, baseTime.Add(-time.Hour))
	recent := writeAt(t, filepath.Join(f.transcriptDir, "proj", "new.jsonl"), simpleTranscript, baseTime.Add(-time.Minute))

	summary := f.run(t, &hook.Event{CWD: f.project})

	resolved, err := filepath.EvalSymlinks(recent)
	require.NoError(t, err)
	assert.Equal(t, resolved, summary.TranscriptPath)
	assert.Equal(t, "User: hello\n\nAssistant: hi\n", readFile(t, summary.Entry.TranscriptPath))
}

func TestRun_MalformedTranscriptLines(t *testing.T) {
	f := newFixture(t)
	f.committer = &fakeCommitter{}
	planPath := writeAt(t, filepath.Join(f.planDir, "p.md"), "# P\n", baseTime)
	content := `{"role":"user","content":"hello"}
{not json
{"role":"assistant","content":[{"type":"text","text":"hi"}]}
`
	transcriptPath := writeAt(t, filepath.Join(f.transcriptDir, "s.jsonl"), content, baseTime)

	summary := f.run(t, &hook.Event{PlanPath: planPath, TranscriptPath: transcriptPath, CWD: f.project})

	assert.Equal(t, "User: hello\n\nAssistant: hi\n", readFile(t, summary.Entry.TranscriptPath))
	assert.True(t, hasPrefix(summary.Skipped, "skipped 1 malformed line"), "skipped: %v", summary.Skipped)
	assert.Contains(t, f.console.String(), "Warning")
}

func TestRun_AutoCommitDisabled(t *testing.T) {
	f := newFixture(t)
	committer := &fakeCommitter{}
	f.committer = committer
	f.cfg.Git.AutoCommit = false
	planPath := writeAt(t, filepath.Join(f.planDir, "p.md"), "# P\n", baseTime)

	summary := f.run(t, &hook.Event{PlanPath: planPath, CWD: f.project})

	assert.NotNil(t, summary.Entry)
	assert.Zero(t, committer.calls)
	assert.Contains(t, summary.Skipped, "auto-commit disabled")
}

func TestRun_CommitFailureIsReported(t *testing.T) {
	f := newFixture(t)
	f.committer = &fakeCommitter{err: errors.New("index.lock exists")}
	planPath := writeAt(t, filepath.Join(f.planDir, "p.md"), "# P\n", baseTime)

	summary, err := f.archiver(t).Run(context.Background(), &hook.Event{PlanPath: planPath, CWD: f.project})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "index.lock exists")
	require.NotNil(t, summary.Entry)
	assert.FileExists(t, summary.Entry.PlanPath)
}

func TestRun_UsesWorkDirWhenEventHasNoCWD(t *testing.T) {
	f := newFixture(t)
	f.committer = &fakeCommitter{}
	writeAt(t, filepath.Join(f.planDir, "p.md"), "# From Workdir\n", baseTime)

	summary := f.run(t, nil)

	require.NotNil(t, summary.Entry)
	assert.Equal(t, filepath.Join(f.archivedPlans, "2026-03-14-claude-from-workdir.md"), summary.Entry.PlanPath)
}

func TestRun_CustomAgentAndOutputDirs(t *testing.T) {
	f := newFixture(t)
	committer := &fakeCommitter{}
	f.committer = committer
	f.cfg.AgentName = "gemini"
	f.cfg.Output.PlansDir = "docs/plans"
	planPath := writeAt(t, filepath.Join(f.planDir, "p.md"), "# Custom\n", baseTime)

	summary := f.run(t, &hook.Event{PlanPath: planPath, CWD: f.project})

	assert.Equal(t, filepath.Join(f.project, "docs", "plans", "2026-03-14-gemini-custom.md"), summary.Entry.PlanPath)
	assert.Equal(t, "chore: save planning session - gemini-custom", committer.message)
}

func TestRun_RejectsOutputOutsideProject(t *testing.T) {
	f := newFixture(t)
	committer := &fakeCommitter{}
	f.committer = committer
	f.cfg.Output.PlansDir = "../escaped"
	planPath := writeAt(t, filepath.Join(f.planDir, "p.md"), "# P\n", baseTime)

	summary, err := f.archiver(t).Run(context.Background(), &hook.Event{PlanPath: planPath, CWD: f.project})

	require.Error(t, err)
	assert.Nil(t, summary.Entry)
	assert.NoDirExists(t, filepath.Join(filepath.Dir(f.project), "escaped"))
	assert.Zero(t, committer.calls)
}

func TestNew_InvalidExcludePattern(t *testing.T) {
	cfg := config.Default()
	cfg.Discovery.ExcludePatterns = []string{"[unclosed"}
	_, err := New(Options{Config: cfg, WorkDir: t.TempDir()})
	assert.Error(t, err)
}

func TestUniqueBaseName(t *testing.T) {
	plans := t.TempDir()
	transcripts := t.TempDir()

	assert.Equal(t, "base", uniqueBaseName(plans, transcripts, "base"))

	require.NoError(t, os.WriteFile(filepath.Join(plans, "base.md"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(transcripts, "base-2.transcript.txt"), nil, 0o644))
	assert.Equal(t, "base-3", uniqueBaseName(plans, transcripts, "base"))
}

func hasPrefix(list []string, prefix string) bool {
	for _, s := range list {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
