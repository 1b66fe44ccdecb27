package http

import (
	"net/url"
	"strconv"
	"strings"

	"riskengine/risk"
)

// 表单字段名，与特征列名一致
const (
	fieldAge           = "age"
	fieldHypertension  = "hypertension"
	fieldHeartDisease  = "heart_disease"
	fieldGlucose       = "avg_glucose_level"
	fieldBMI           = "bmi"
	fieldEverMarried   = "ever_married"
	fieldWorkType      = "work_type"
	fieldResidenceType = "Residence_type"
	fieldSmoking       = "smoking_status"
	fieldThreshold     = "threshold"
	fieldCostRatio     = "cost_ratio"
)

// ParseForm 将表单值转换为画像和决策设置。缺失字段取控件默认值，
// 无法解析的字段以 risk.ValidationError 返回；取值范围由 Assess 校验。
func ParseForm(values url.Values, defaults risk.Settings) (risk.Profile, risk.Settings, error) {
	profile := risk.DefaultProfile()
	settings := defaults
	var errs risk.ValidationError

	parseInt := func(field string, dst *int) {
		raw := strings.TrimSpace(values.Get(field))
		if raw == "" {
			return
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, risk.FieldError{Field: field, Message: "must be a whole number"})
			return
		}
		*dst = v
	}
	parseFloat := func(field string, dst *float64) {
		raw := strings.TrimSpace(values.Get(field))
		if raw == "" {
			return
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, risk.FieldError{Field: field, Message: "must be a number"})
			return
		}
		*dst = v
	}
	parseString := func(field string, dst *string) {
		if values.Has(field) {
			*dst = values.Get(field)
		}
	}

	parseInt(fieldAge, &profile.Age)
	parseInt(fieldHypertension, &profile.Hypertension)
	parseInt(fieldHeartDisease, &profile.HeartDisease)
	parseFloat(fieldGlucose, &profile.AvgGlucoseLevel)
	parseFloat(fieldBMI, &profile.BMI)
	parseString(fieldEverMarried, &profile.EverMarried)
	parseString(fieldWorkType, &profile.WorkType)
	parseString(fieldResidenceType, &profile.ResidenceType)
	parseString(fieldSmoking, &profile.SmokingStatus)
	parseFloat(fieldThreshold, &settings.Threshold)
	parseInt(fieldCostRatio, &settings.CostRatio)

	if len(errs) > 0 {
		return profile, settings, errs
	}
	return profile, settings, nil
}

// formValues 将 websocket 消息中的表单映射转换为 url.Values
func formValues(form map[string]string) url.Values {
	values := make(url.Values, len(form))
	for k, v := range form {
		values.Set(k, v)
	}
	return values
}
