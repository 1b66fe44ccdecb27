package http

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"go.uber.org/zap"

	"riskengine/ml"
	"riskengine/risk"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const scoringFailedMessage = "The model could not score this profile. See the server log for details."

// pageCopy 页面固定文案
type pageCopy struct {
	PageTitle         string
	Title             string
	Caption           string
	ProfileHeader     string
	SettingsHeader    string
	OutputHeader      string
	ProbabilityLabel  string
	Disclaimer        string
	AgeLabel          string
	HypertensionLabel string
	HeartDiseaseLabel string
	GlucoseLabel      string
	BMILabel          string
	EverMarriedLabel  string
	WorkTypeLabel     string
	ResidenceLabel    string
	SmokingLabel      string
	ThresholdLabel    string
	CostRatioLabel    string
}

var defaultCopy = pageCopy{
	PageTitle:         risk.PageTitle,
	Title:             risk.Title,
	Caption:           risk.Caption,
	ProfileHeader:     risk.ProfileHeader,
	SettingsHeader:    risk.SettingsHeader,
	OutputHeader:      risk.OutputHeader,
	ProbabilityLabel:  risk.ProbabilityLabel,
	Disclaimer:        risk.Disclaimer,
	AgeLabel:          risk.AgeLabel,
	HypertensionLabel: risk.HypertensionLabel,
	HeartDiseaseLabel: risk.HeartDiseaseLabel,
	GlucoseLabel:      risk.GlucoseLabel,
	BMILabel:          risk.BMILabel,
	EverMarriedLabel:  risk.EverMarriedLabel,
	WorkTypeLabel:     risk.WorkTypeLabel,
	ResidenceLabel:    risk.ResidenceTypeLabel,
	SmokingLabel:      risk.SmokingStatusLabel,
	ThresholdLabel:    risk.ThresholdLabel,
	CostRatioLabel:    risk.CostRatioLabel,
}

type option struct {
	Value    string
	Selected bool
}

// resultView 输出区域，页面与 websocket 共用
type resultView struct {
	Copy   pageCopy
	Report *risk.Report
	Errors []string
}

type pageView struct {
	Copy      pageCopy
	Profile   risk.Profile
	Settings  risk.Settings
	Threshold string

	Hypertension []option
	HeartDisease []option
	EverMarried  []option
	WorkType     []option
	Residence    []option
	Smoking      []option
	CostRatio    []option

	MinAge, MaxAge int
	ThresholdStep  float64
	Model          ml.ModelInfo
	Result         resultView
}

type pageRenderer struct {
	tmpl *template.Template
}

func newPageRenderer() (*pageRenderer, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &pageRenderer{tmpl: tmpl}, nil
}

func (p *pageRenderer) renderPage(w io.Writer, v pageView) error {
	return p.tmpl.ExecuteTemplate(w, "page.html", v)
}

func (p *pageRenderer) renderResult(w io.Writer, v resultView) error {
	return p.tmpl.ExecuteTemplate(w, "result", v)
}

// evaluate 对一次提交执行完整流程并生成输出区域
func evaluate(ctx context.Context, deps Deps, profile risk.Profile, settings risk.Settings, parseErr error) (resultView, error) {
	view := resultView{Copy: defaultCopy}
	if parseErr != nil {
		view.Errors = errorMessages(parseErr)
		return view, parseErr
	}

	assessment, err := deps.Assessor.Assess(ctx, profile, settings)
	if err != nil {
		var verr risk.ValidationError
		if errors.As(err, &verr) {
			view.Errors = errorMessages(verr)
		} else {
			deps.Logger.Error("scoring failed",
				zap.String("request_id", GetRequestID(ctx)),
				zap.Error(err))
			view.Errors = []string{scoringFailedMessage}
		}
		return view, err
	}

	report := risk.NewReport(assessment, deps.Formatter)
	view.Report = &report
	return view, nil
}

func errorMessages(err error) []string {
	var verr risk.ValidationError
	if errors.As(err, &verr) {
		msgs := make([]string, len(verr))
		for i, fe := range verr {
			msgs[i] = fe.Error()
		}
		return msgs
	}
	return []string{err.Error()}
}

func newPageView(deps Deps, profile risk.Profile, settings risk.Settings, result resultView) pageView {
	return pageView{
		Copy:          defaultCopy,
		Profile:       profile,
		Settings:      settings,
		Threshold:     deps.Formatter.Decimal(settings.Threshold),
		Hypertension:  intOptions(risk.BinaryOptions, profile.Hypertension),
		HeartDisease:  intOptions(risk.BinaryOptions, profile.HeartDisease),
		EverMarried:   stringOptions(risk.MarriedOptions, profile.EverMarried),
		WorkType:      stringOptions(risk.WorkTypes, profile.WorkType),
		Residence:     stringOptions(risk.ResidenceTypes, profile.ResidenceType),
		Smoking:       stringOptions(risk.SmokingStatuses, profile.SmokingStatus),
		CostRatio:     intOptions(risk.CostRatios, settings.CostRatio),
		MinAge:        risk.MinAge,
		MaxAge:        risk.MaxAge,
		ThresholdStep: risk.ThresholdStep,
		Model:         deps.Assessor.ModelInfo(),
		Result:        result,
	}
}

func stringOptions(values []string, selected string) []option {
	opts := make([]option, len(values))
	for i, v := range values {
		opts[i] = option{Value: v, Selected: v == selected}
	}
	return opts
}

func intOptions(values []int, selected int) []option {
	opts := make([]option, len(values))
	for i, v := range values {
		opts[i] = option{Value: strconv.Itoa(v), Selected: v == selected}
	}
	return opts
}
