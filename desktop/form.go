// Package desktop is the fyne front end: one window with the patient and
// decision widgets, re-evaluated on every change.
package desktop

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"riskengine/risk"
)

// AppID identifies the desktop application to fyne preferences storage.
const AppID = "io.riskengine.desktop"

const evaluateTimeout = 10 * time.Second

const scoringFailedMessage = "Scoring failed. Check the model artifact and try again."

// Form owns the window widgets. All callbacks run on the fyne event thread.
type Form struct {
	assessor  *risk.Assessor
	formatter *risk.Formatter
	logger    *zap.Logger

	age          *widget.Slider
	ageValue     *widget.Label
	hypertension *widget.Select
	heartDisease *widget.Select
	glucose      *widget.Entry
	bmi          *widget.Entry
	everMarried  *widget.Select
	workType     *widget.Select
	residence    *widget.Select
	smoking      *widget.Select

	threshold      *widget.Slider
	thresholdValue *widget.Label
	costRatio      *widget.Select

	probability *widget.Label
	tier        *widget.Label
	banner      *widget.Label
	status      *widget.Label

	building bool
	last     *risk.Report
}

// NewForm builds the widgets at their default state and runs the first
// evaluation.
func NewForm(assessor *risk.Assessor, formatter *risk.Formatter, defaults risk.Settings, logger *zap.Logger) *Form {
	f := &Form{
		assessor:  assessor,
		formatter: formatter,
		logger:    logger,
		building:  true,
	}
	profile := risk.DefaultProfile()

	f.ageValue = widget.NewLabel(strconv.Itoa(profile.Age))
	f.age = widget.NewSlider(risk.MinAge, risk.MaxAge)
	f.age.Step = 1
	f.age.SetValue(float64(profile.Age))
	f.age.OnChanged = func(v float64) {
		f.ageValue.SetText(strconv.Itoa(int(v)))
		f.evaluate()
	}

	f.hypertension = f.newSelect(binaryOptions(), strconv.Itoa(profile.Hypertension))
	f.heartDisease = f.newSelect(binaryOptions(), strconv.Itoa(profile.HeartDisease))

	f.glucose = f.newEntry(profile.AvgGlucoseLevel)
	f.bmi = f.newEntry(profile.BMI)

	f.everMarried = f.newSelect(risk.MarriedOptions, profile.EverMarried)
	f.workType = f.newSelect(risk.WorkTypes, profile.WorkType)
	f.residence = f.newSelect(risk.ResidenceTypes, profile.ResidenceType)
	f.smoking = f.newSelect(risk.SmokingStatuses, profile.SmokingStatus)

	f.thresholdValue = widget.NewLabel(formatter.Decimal(defaults.Threshold))
	f.threshold = widget.NewSlider(0, 1)
	f.threshold.Step = risk.ThresholdStep
	f.threshold.SetValue(defaults.Threshold)
	f.threshold.OnChanged = func(v float64) {
		f.thresholdValue.SetText(formatter.Decimal(v))
		f.evaluate()
	}

	ratios := make([]string, len(risk.CostRatios))
	for i, r := range risk.CostRatios {
		ratios[i] = strconv.Itoa(r)
	}
	f.costRatio = f.newSelect(ratios, strconv.Itoa(defaults.CostRatio))

	f.probability = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	f.tier = widget.NewLabel("")
	f.banner = widget.NewLabel("")
	f.banner.Wrapping = fyne.TextWrapWord
	f.status = widget.NewLabel("")
	f.status.Wrapping = fyne.TextWrapWord
	f.status.Importance = widget.DangerImportance
	f.status.Hide()

	f.building = false
	f.evaluate()
	return f
}

func (f *Form) newSelect(options []string, selected string) *widget.Select {
	s := widget.NewSelect(options, func(string) { f.evaluate() })
	s.SetSelected(selected)
	return s
}

func (f *Form) newEntry(v float64) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.FormatFloat(v, 'f', -1, 64))
	e.OnChanged = func(string) { f.evaluate() }
	return e
}

func binaryOptions() []string {
	opts := make([]string, len(risk.BinaryOptions))
	for i, v := range risk.BinaryOptions {
		opts[i] = strconv.Itoa(v)
	}
	return opts
}

// Content lays the widgets out in two columns: inputs on the left, the
// decision settings and the output on the right.
func (f *Form) Content() fyne.CanvasObject {
	profile := widget.NewForm(
		widget.NewFormItem(risk.AgeLabel, container.NewBorder(nil, nil, nil, f.ageValue, f.age)),
		widget.NewFormItem(risk.HypertensionLabel, f.hypertension),
		widget.NewFormItem(risk.HeartDiseaseLabel, f.heartDisease),
		widget.NewFormItem(risk.GlucoseLabel, f.glucose),
		widget.NewFormItem(risk.BMILabel, f.bmi),
		widget.NewFormItem(risk.EverMarriedLabel, f.everMarried),
		widget.NewFormItem(risk.WorkTypeLabel, f.workType),
		widget.NewFormItem(risk.ResidenceTypeLabel, f.residence),
		widget.NewFormItem(risk.SmokingStatusLabel, f.smoking),
	)
	settings := widget.NewForm(
		widget.NewFormItem(risk.ThresholdLabel, container.NewBorder(nil, nil, nil, f.thresholdValue, f.threshold)),
		widget.NewFormItem(risk.CostRatioLabel, f.costRatio),
	)

	left := container.NewVBox(
		widget.NewLabelWithStyle(risk.ProfileHeader, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		profile,
	)
	right := container.NewVBox(
		widget.NewLabelWithStyle(risk.SettingsHeader, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		settings,
		widget.NewSeparator(),
		widget.NewLabelWithStyle(risk.OutputHeader, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel(risk.ProbabilityLabel),
		f.probability,
		f.tier,
		f.banner,
		f.status,
	)

	header := container.NewVBox(
		widget.NewLabelWithStyle(risk.Title, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel(risk.Caption),
	)
	footer := container.NewVBox(widget.NewSeparator(), widget.NewLabel(risk.Disclaimer))
	body := container.NewGridWithColumns(2, container.NewVScroll(left), right)
	return container.NewBorder(header, footer, nil, nil, body)
}

// NewWindow creates the application window holding the form.
func NewWindow(a fyne.App, f *Form) fyne.Window {
	w := a.NewWindow(risk.PageTitle)
	w.SetContent(f.Content())
	w.Resize(fyne.NewSize(960, 640))
	return w
}

// Report returns the last successful report, or nil after a failure.
func (f *Form) Report() *risk.Report {
	return f.last
}

// evaluate re-reads every widget and rescores. Each change is a full
// re-evaluation with no incremental state.
func (f *Form) evaluate() {
	if f.building {
		return
	}

	profile, settings, err := f.read()
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), evaluateTimeout)
		var a risk.Assessment
		a, err = f.assessor.Assess(ctx, profile, settings)
		cancel()
		if err == nil {
			report := risk.NewReport(a, f.formatter)
			f.show(report)
			return
		}
	}
	f.fail(err)
}

func (f *Form) read() (risk.Profile, risk.Settings, error) {
	var errs risk.ValidationError

	profile := risk.Profile{
		Age:           int(math.Round(f.age.Value)),
		EverMarried:   f.everMarried.Selected,
		WorkType:      f.workType.Selected,
		ResidenceType: f.residence.Selected,
		SmokingStatus: f.smoking.Selected,
	}
	profile.Hypertension, errs = parseInt(errs, "hypertension", f.hypertension.Selected)
	profile.HeartDisease, errs = parseInt(errs, "heart_disease", f.heartDisease.Selected)
	profile.AvgGlucoseLevel, errs = parseFloat(errs, "avg_glucose_level", f.glucose.Text)
	profile.BMI, errs = parseFloat(errs, "bmi", f.bmi.Text)

	settings := risk.Settings{Threshold: f.threshold.Value}
	settings.CostRatio, errs = parseInt(errs, "cost_ratio", f.costRatio.Selected)

	if len(errs) > 0 {
		return profile, settings, errs
	}
	return profile, settings, nil
}

func parseInt(errs risk.ValidationError, field, raw string) (int, risk.ValidationError) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, append(errs, risk.FieldError{Field: field, Message: "must be a whole number"})
	}
	return v, errs
}

func parseFloat(errs risk.ValidationError, field, raw string) (float64, risk.ValidationError) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, append(errs, risk.FieldError{Field: field, Message: "must be a number"})
	}
	return v, errs
}

func (f *Form) show(r risk.Report) {
	f.last = &r
	f.status.Hide()

	f.probability.SetText(r.Probability)
	f.tier.SetText(r.TierLine)
	f.banner.Importance = widget.SuccessImportance
	if r.Flagged {
		f.banner.Importance = widget.WarningImportance
	}
	f.banner.SetText(r.Banner)
	f.probability.Show()
	f.tier.Show()
	f.banner.Show()
}

func (f *Form) fail(err error) {
	f.last = nil
	f.probability.Hide()
	f.tier.Hide()
	f.banner.Hide()

	var verr risk.ValidationError
	if errors.As(err, &verr) {
		f.status.SetText(verr.Error())
	} else {
		f.logger.Error("assessment failed", zap.Error(err))
		f.status.SetText(scoringFailedMessage)
	}
	f.status.Show()
}
