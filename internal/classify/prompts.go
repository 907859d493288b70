package classify

import (
	"fmt"
	"strings"

	"github.com/devplan/devplan/internal/domain"
)

// buildTypeDetectionPrompt asks whether the task adds new functionality,
// modifies existing functionality, or both, and for search keywords.
func buildTypeDetectionPrompt(taskText string, repoCtx *domain.RepositoryContext) string {
	var b strings.Builder
	b.WriteString("Classify the following work item against the repository described below.\n\n")
	fmt.Fprintf(&b, "Work item: %s\n\n", taskText)
	writeRepoContext(&b, repoCtx)

	b.WriteString("Respond with a single JSON object:\n")
	b.WriteString(`  "task_type": "new" | "update" | "both"` + "\n")
	b.WriteString(`  "keywords": up to 3 short code-search keywords for the touched functionality` + "\n")
	b.WriteString(`  "confidence_score": 0.0 to 1.0` + "\n")
	b.WriteString(`  "reasoning": one sentence` + "\n\n")
	b.WriteString(`"new" means the functionality does not exist yet, "update" means it exists and changes, "both" means some of each.` + "\n")
	b.WriteString("Respond with JSON only, no surrounding prose.\n")
	return b.String()
}

// buildClarityPrompt asks whether the task is specific enough to plan.
// Questions must target business intent; the tech stack is already known
// from analysis and must never be asked about.
func buildClarityPrompt(sess *domain.Session, detection *typeDetection, repoCtx *domain.RepositoryContext) string {
	var b strings.Builder
	b.WriteString("Decide whether the following work item is specific enough to plan, or needs clarification.\n\n")
	fmt.Fprintf(&b, "Work item: %s\n", sess.TaskText)
	fmt.Fprintf(&b, "Task type: %s\n\n", detection.TaskType)
	writeRepoContext(&b, repoCtx)

	if len(sess.Evidence) > 0 {
		b.WriteString("Existing code matching the task keywords:\n")
		for _, ev := range sess.Evidence {
			fmt.Fprintf(&b, "  %s (keyword %q)\n", ev.File, ev.Keyword)
		}
		b.WriteByte('\n')
	}

	b.WriteString("Respond with a single JSON object:\n")
	b.WriteString(`  "status": "clear" | "ambiguous"` + "\n")
	b.WriteString(`  "questions": when ambiguous, 1 or 2 objects with "question", "explanation", "impact", "options"; when clear, an empty list` + "\n")
	b.WriteString(`  "confidence_score": 0.0 to 1.0` + "\n")
	b.WriteString(`  "reasoning": one sentence` + "\n\n")
	b.WriteString("Ask only about business intent and scope. Never ask about languages, frameworks, or libraries.\n")
	b.WriteString("Respond with JSON only, no surrounding prose.\n")
	return b.String()
}

func writeRepoContext(b *strings.Builder, repoCtx *domain.RepositoryContext) {
	if repoCtx == nil {
		return
	}
	fmt.Fprintf(b, "Repository %s: %s\n", repoCtx.Repo.String(), repoCtx.Summary)
	if repoCtx.TechStack.PrimaryLanguage != "" {
		fmt.Fprintf(b, "Primary language: %s\n", repoCtx.TechStack.PrimaryLanguage)
	}
	if len(repoCtx.Modules) > 0 {
		b.WriteString("Modules:\n")
		for _, m := range repoCtx.Modules {
			fmt.Fprintf(b, "  %s: %s\n", m.Name, m.Description)
		}
	}
	if len(repoCtx.APISurface.Endpoints) > 0 {
		fmt.Fprintf(b, "Endpoints: %s\n", strings.Join(repoCtx.APISurface.Endpoints, ", "))
	}
	b.WriteByte('\n')
}
