/*
Package archiver saves an agent's planning session into the project.

A run takes one hook event and:

 1. decides whether the event should be archived at all (SessionEnd reason
    filter, optional ExitPlanMode requirement)
 2. locates the transcript: the event's transcript_path, else the newest
    *.jsonl in the transcript directories within the recency window
 3. locates the plan, first hit wins: the event's plan path, a plan file
    referenced in the transcript, the newest Markdown file in the plan
    directories within the recency window, and finally the plan text
    passed inline to ExitPlanMode
 4. writes <date>-<agent>-<slug>.md and <date>-<agent>-<slug>.transcript.txt
    under the output directories, suffixing -2, -3, ... on collision
 5. commits exactly those files with --no-verify

Missing inputs are expected and only reported in verbose mode. Broken
inputs are skipped with a warning. Neither stops the run. Run returns an
error only when a write or commit failed, and the hook still exits 0.

# Example

	a, err := archiver.New(archiver.Options{Config: cfg})
	if err != nil {
		return err
	}
	summary, err := a.Run(ctx, event)
*/
package archiver
