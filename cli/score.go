package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"riskengine/ml"
	"riskengine/risk"
)

type scoreOptions struct {
	profile  risk.Profile
	settings risk.Settings
	json     bool
}

func newScoreCommand(root *rootOptions) *cobra.Command {
	opts := &scoreOptions{
		profile:  risk.DefaultProfile(),
		settings: risk.DefaultSettings(),
	}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Assess one patient profile and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.profile.Age, "age", opts.profile.Age, "Age in years (0-100)")
	f.IntVar(&opts.profile.Hypertension, "hypertension", opts.profile.Hypertension, "Hypertension (0 or 1)")
	f.IntVar(&opts.profile.HeartDisease, "heart-disease", opts.profile.HeartDisease, "Heart disease (0 or 1)")
	f.Float64Var(&opts.profile.AvgGlucoseLevel, "glucose", opts.profile.AvgGlucoseLevel, "Average glucose level")
	f.Float64Var(&opts.profile.BMI, "bmi", opts.profile.BMI, "Body mass index")
	f.StringVar(&opts.profile.EverMarried, "ever-married", opts.profile.EverMarried, "Ever married (Yes, No)")
	f.StringVar(&opts.profile.WorkType, "work-type", opts.profile.WorkType, "Work type")
	f.StringVar(&opts.profile.ResidenceType, "residence-type", opts.profile.ResidenceType, "Residence type (Urban, Rural)")
	f.StringVar(&opts.profile.SmokingStatus, "smoking-status", opts.profile.SmokingStatus, "Smoking status")
	f.Float64Var(&opts.settings.Threshold, "threshold", opts.settings.Threshold, "Classification threshold (0-1)")
	f.IntVar(&opts.settings.CostRatio, "cost-ratio", opts.settings.CostRatio, "FN:FP cost ratio (2, 5 or 10)")
	f.BoolVar(&opts.json, "json", false, "Print the assessment as JSON")
	return cmd
}

func runScore(cmd *cobra.Command, root *rootOptions, opts *scoreOptions) error {
	ctx := cmd.Context()
	scorer, cfg, logger, err := root.loadModel(ctx, cmd)
	if err != nil {
		return err
	}
	defer scorer.Close()

	settings := opts.settings
	configured := risk.SettingsFromConfig(cfg.Decision)
	if !cmd.Flags().Changed("threshold") {
		settings.Threshold = configured.Threshold
	}
	if !cmd.Flags().Changed("cost-ratio") {
		settings.CostRatio = configured.CostRatio
	}

	assessor := risk.NewAssessor(scorer, logger)
	a, err := assessor.Assess(ctx, opts.profile, settings)
	if err != nil {
		return err
	}
	report := risk.NewReport(a, risk.NewFormatter(cfg.Display.Locale))

	if opts.json {
		return writeJSON(cmd.OutOrStdout(), a, report)
	}
	writeReport(cmd.OutOrStdout(), scorer.Info(), report)
	return nil
}

func writeReport(w io.Writer, info ml.ModelInfo, r risk.Report) {
	fmt.Fprintln(w, risk.Title)
	fmt.Fprintf(w, "Model: %s %s %s (%s)\n", info.Type, info.Name, info.Version, info.Source)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s: %s\n", risk.ProbabilityLabel, r.Probability)
	fmt.Fprintln(w, r.TierLine)
	fmt.Fprintln(w, r.Banner)
	fmt.Fprintf(w, "%s: %s\n", risk.ThresholdLabel, r.Threshold)
	fmt.Fprintf(w, "%s: %d\n", risk.CostRatioLabel, r.CostRatio)
	fmt.Fprintln(w)
	fmt.Fprintln(w, risk.Disclaimer)
}

type scoreOutput struct {
	Probability float64          `json:"probability"`
	Display     string           `json:"display"`
	Tier        risk.Tier        `json:"tier"`
	Flagged     bool             `json:"flagged"`
	Threshold   float64          `json:"threshold"`
	CostRatio   int              `json:"cost_ratio"`
	Record      ml.FeatureRecord `json:"record"`
}

func writeJSON(w io.Writer, a risk.Assessment, r risk.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(scoreOutput{
		Probability: a.Probability,
		Display:     r.Probability,
		Tier:        a.Tier,
		Flagged:     a.Flagged,
		Threshold:   a.Settings.Threshold,
		CostRatio:   a.Settings.CostRatio,
		Record:      a.Record,
	})
}
