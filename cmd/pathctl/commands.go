package main

import (
	"github.com/spf13/cobra"

	"pathfinder-backend/internal/advisor"
	"pathfinder-backend/internal/colleges"
)

func newStatesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "states",
		Short: "List states, falling back to the bundled list when the API is down",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, cancel, err := opts.app(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			states, degraded := app.Colleges.ResolveStates(ctx)
			return render(cmd.OutOrStdout(), opts.output, map[string]any{
				"states":   states,
				"degraded": degraded,
			})
		},
	}
}

func newDistrictsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "districts <state>",
		Short: "List the districts of a state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, cancel, err := opts.app(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			districts, degraded := app.Colleges.ResolveDistricts(ctx, args[0])
			return render(cmd.OutOrStdout(), opts.output, map[string]any{
				"state":     args[0],
				"districts": districts,
				"degraded":  degraded,
			})
		},
	}
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var req colleges.SearchRequest

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search colleges in a state and city",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, cancel, err := opts.app(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			sess, err := app.Colleges.NewSession(ctx)
			if err != nil {
				return err
			}
			if _, err := app.Colleges.Search(ctx, sess, req); err != nil {
				return err
			}
			view := sess.View()
			return render(cmd.OutOrStdout(), opts.output, map[string]any{
				"state":    view.SelectedState,
				"city":     view.SelectedCity,
				"page":     view.Result,
				"degraded": view.Degraded,
				"message":  view.Message,
			})
		},
	}

	cmd.Flags().StringVar(&req.State, "state", "", "state name (required)")
	cmd.Flags().StringVar(&req.City, "city", "", "city or district (required)")
	cmd.Flags().StringVar(&req.Query, "query", "", "free-text filter")
	cmd.Flags().IntVar(&req.Page, "page", 1, "result page")
	_ = cmd.MarkFlagRequired("state")
	_ = cmd.MarkFlagRequired("city")
	return cmd
}

func newAdviseCmd(opts *rootOptions) *cobra.Command {
	var profile advisor.Profile

	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Generate course recommendations and a career roadmap",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, cancel, err := opts.app(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			sess, err := app.Advisor.NewSession(ctx)
			if err != nil {
				return err
			}
			if err := app.Advisor.UpdateProfile(sess, profile); err != nil {
				return err
			}
			result, err := app.Advisor.Generate(ctx, sess)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, map[string]any{
				"recommendations": result.Recommendations,
				"careerParagraph": result.CareerParagraph,
				"roadmap":         advisor.Project(result.Roadmap),
			})
		},
	}

	cmd.Flags().StringVar(&profile.Interests, "interests", "", "what the student enjoys")
	cmd.Flags().StringVar(&profile.Strengths, "strengths", "", "what the student is good at")
	cmd.Flags().StringVar(&profile.Goals, "goals", "", "what the student wants to become")
	return cmd
}
