package risk

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	PageTitle          = "Risk Scoring Engine"
	Title              = "Risk Scoring Engine v1"
	Caption            = "Operational Risk Stratification Prototype"
	ProfileHeader      = "Patient Profile"
	SettingsHeader     = "Decision Settings"
	OutputHeader       = "Risk Output"
	ProbabilityLabel   = "Predicted Stroke Risk"
	FlaggedBanner      = "⚠ Patient would be flagged under current threshold."
	NotFlaggedBanner   = "✓ Patient would not be flagged under current threshold."
	Disclaimer         = "This prototype is for demonstration purposes and is not a clinical decision tool."
	ThresholdLabel     = "Classification Threshold"
	CostRatioLabel     = "FN:FP Cost Ratio"
	AgeLabel           = "Age"
	HypertensionLabel  = "Hypertension"
	HeartDiseaseLabel  = "Heart Disease"
	GlucoseLabel       = "Average Glucose Level"
	BMILabel           = "BMI"
	EverMarriedLabel   = "Ever Married"
	WorkTypeLabel      = "Work Type"
	ResidenceTypeLabel = "Residence Type"
	SmokingStatusLabel = "Smoking Status"
)

// Formatter renders numbers for one display locale.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter falls back to English for an unparsable locale tag.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Percent formats p as a percentage with two decimals, e.g. 2.34%.
func (f *Formatter) Percent(p float64) string {
	return f.printer.Sprintf("%.2f%%", p*100)
}

func (f *Formatter) Decimal(v float64) string {
	return f.printer.Sprintf("%.2f", v)
}

// Report is the display copy of an assessment, shared by every front end.
type Report struct {
	Probability string
	Tier        Tier
	TierLine    string
	Flagged     bool
	Banner      string
	Threshold   string
	CostRatio   int
}

func NewReport(a Assessment, f *Formatter) Report {
	banner := NotFlaggedBanner
	if a.Flagged {
		banner = FlaggedBanner
	}
	return Report{
		Probability: f.Percent(a.Probability),
		Tier:        a.Tier,
		TierLine:    "Risk Tier: " + string(a.Tier),
		Flagged:     a.Flagged,
		Banner:      banner,
		Threshold:   f.Decimal(a.Settings.Threshold),
		CostRatio:   a.Settings.CostRatio,
	}
}
