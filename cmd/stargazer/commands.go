package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/phrazzld/stargazer/internal/app"
	"github.com/phrazzld/stargazer/internal/domain"
	"github.com/phrazzld/stargazer/internal/service"
	"github.com/spf13/cobra"
)

func answerCmd(opts *rootOptions) *cobra.Command {
	var (
		event      domain.AnswerEvent
		tags       []string
		difficulty int
	)

	cmd := &cobra.Command{
		Use:   "answer",
		Short: "Record one answered quiz question",
		Example: `  stargazer answer --question q-seasons-2 --quiz sky-motions-quiz --tags seasons \
    --difficulty 1 --selected distance-from-sun --expected axial-tilt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, t := range tags {
				event.Tags = append(event.Tags, domain.Tag(strings.TrimSpace(t)))
			}
			event.Difficulty = domain.Difficulty(difficulty)

			return withApp(cmd, opts, func(ctx context.Context, a *app.Application) error {
				outcome, err := a.Service.RecordAnswer(ctx, event)
				if err != nil {
					return err
				}
				if opts.asJSON {
					return writeJSON(cmd.OutOrStdout(), outcome)
				}

				out := cmd.OutOrStdout()
				for _, d := range outcome.Deltas {
					fmt.Fprintf(out, "%-18s %.2f -> %.2f (%+.2f), review %s\n",
						d.Tag, d.OldMastery, d.NewMastery, d.Delta, d.NextReviewAt.Format("2006-01-02"))
				}
				for _, det := range outcome.Detections {
					if det.BecameActive {
						fmt.Fprintf(out, "misconception detected: %s\n", det.RuleID)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&event.QuestionID, "question", "q", "", "Question ID")
	cmd.Flags().StringVar(&event.QuizID, "quiz", "", "Quiz ID")
	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "Topic tags of the question")
	cmd.Flags().IntVarP(&difficulty, "difficulty", "d", int(domain.DifficultyMedium), "Difficulty (1 easy, 2 medium, 3 hard)")
	cmd.Flags().BoolVar(&event.IsCorrect, "correct", false, "The answer was correct")
	cmd.Flags().StringVar(&event.SelectedAnswerID, "selected", "", "Answer option the learner chose")
	cmd.Flags().StringVar(&event.CorrectAnswerID, "expected", "", "Answer option that was correct")
	_ = cmd.MarkFlagRequired("question")
	_ = cmd.MarkFlagRequired("tags")

	return cmd
}

func resolveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [rule-id]",
		Short: "Acknowledge an active misconception",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.Application) error {
				resolved, err := a.Service.ResolveMisconception(ctx, args[0])
				if err != nil {
					return err
				}
				if opts.asJSON {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"ruleId": args[0], "resolved": resolved})
				}
				if resolved {
					fmt.Fprintf(cmd.OutOrStdout(), "resolved %s\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s was not active\n", args[0])
				}
				return nil
			})
		},
	}
}

func recommendCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Show what to study next",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.Application) error {
				state, err := a.Service.Recommendations(ctx)
				if err != nil {
					return err
				}
				if opts.asJSON {
					return writeJSON(cmd.OutOrStdout(), state)
				}

				out := cmd.OutOrStdout()
				if len(state.Items) == 0 {
					fmt.Fprintln(out, "Nothing to recommend right now.")
					return nil
				}
				for i, r := range state.Items {
					fmt.Fprintf(out, "%d. [%s] %s\n   %s\n", i+1, r.Type, r.TargetTitle, r.Reason.Details)
				}
				return nil
			})
		},
	}
}

func queueCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "List topics due for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.Application) error {
				queue, err := a.Service.ReviewQueue(ctx)
				if err != nil {
					return err
				}
				if opts.asJSON {
					return writeJSON(cmd.OutOrStdout(), queue)
				}
				if len(queue) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No reviews due.")
					return nil
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TAG\tMASTERY\tDAYS OVERDUE")
				for _, item := range queue {
					fmt.Fprintf(tw, "%s\t%.2f\t%d\n", item.Tag, item.Mastery, item.DaysOverdue)
				}
				return tw.Flush()
			})
		},
	}
}

func weakestCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "weakest",
		Short: "List practiced topics, weakest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.Application) error {
				stats, err := a.Service.WeakestTags(ctx)
				if err != nil {
					return err
				}
				if limit > 0 && len(stats) > limit {
					stats = stats[:limit]
				}
				if opts.asJSON {
					return writeJSON(cmd.OutOrStdout(), stats)
				}
				if len(stats) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No topics practiced yet.")
					return nil
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TAG\tMASTERY\tCORRECT\tSEEN")
				for _, s := range stats {
					fmt.Fprintf(tw, "%s\t%.2f\t%d\t%d\n", s.Tag, s.Mastery, s.Correct, s.Seen)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Maximum topics to list, 0 for all")

	return cmd
}

func statusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize overall progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.Application) error {
				summary, err := a.Service.Summary(ctx)
				if err != nil {
					return err
				}
				if opts.asJSON {
					return writeJSON(cmd.OutOrStdout(), summary)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Stargazer Status")
				fmt.Fprintln(out, strings.Repeat("=", 40))
				fmt.Fprintf(out, "  Overall mastery: %.0f%%\n", summary.OverallMastery*100)
				fmt.Fprintf(out, "  Answers:         %d\n", summary.Attempts)
				fmt.Fprintf(out, "  Reviews due:     %d\n", len(summary.DueReviews))
				fmt.Fprintf(out, "  Unseen topics:   %d\n", len(summary.Unseen))

				if len(summary.Misconceptions) > 0 {
					fmt.Fprintln(out, "\nMisconceptions:")
					for _, m := range summary.Misconceptions {
						fmt.Fprintf(out, "  %-22s %s\n", m.RuleID, m.UserMessage)
					}
				}
				return nil
			})
		},
	}
}

func lessonCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lesson",
		Short: "Record lesson progress",
	}

	progress := func(use, short, verb string, apply func(service.LearningService, context.Context, string) (bool, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " [slug]",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, opts, func(ctx context.Context, a *app.Application) error {
					changed, err := apply(a.Service, ctx, args[0])
					if err != nil {
						return err
					}
					if opts.asJSON {
						return writeJSON(cmd.OutOrStdout(), map[string]any{"slug": args[0], "changed": changed})
					}
					if changed {
						fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, args[0])
					} else {
						fmt.Fprintf(cmd.OutOrStdout(), "%s unchanged\n", args[0])
					}
					return nil
				})
			},
		}
	}

	cmd.AddCommand(progress("start", "Mark a lesson as started", "started", service.LearningService.StartLesson))
	cmd.AddCommand(progress("complete", "Mark a lesson as completed", "completed", service.LearningService.CompleteLesson))

	return cmd
}
