package providers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gordyrad/report-relay/internal/backend"
	"github.com/gordyrad/report-relay/internal/canonical"
)

// feishuFieldTypes maps Feishu's form schema type strings to canonical types.
var feishuFieldTypes = map[string]canonical.FieldType{
	"text":        canonical.FieldRichText,
	"number":      canonical.FieldNumber,
	"dropdown":    canonical.FieldDropdown,
	"multiSelect": canonical.FieldMultiSelect,
	"image":       canonical.FieldImage,
	"attachment":  canonical.FieldAttachment,
	"address":     canonical.FieldAddress,
	"datetime":    canonical.FieldDatetime,
}

// MapFeishuFieldType converts a native Feishu type string to a canonical
// field type. Total: unknown strings map to rich text.
func MapFeishuFieldType(apiType string) canonical.FieldType {
	if t, ok := feishuFieldTypes[apiType]; ok {
		return t
	}
	return canonical.FieldRichText
}

// FeishuAdapter implements the read capabilities against the backend's
// Feishu GraphQL surface. Feishu's open API has no report submission
// endpoint, so the adapter deliberately does not implement Submitter.
type FeishuAdapter struct {
	client *backend.Client
}

// NewFeishuAdapter creates a Feishu adapter over the backend client.
func NewFeishuAdapter(client *backend.Client) *FeishuAdapter {
	return &FeishuAdapter{client: client}
}

// Name implements Adapter.
func (a *FeishuAdapter) Name() string { return "feishu" }

type feishuTemplateStub struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type feishuWireField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type feishuRule struct {
	RuleID     string            `json:"rule_id"`
	Name       string            `json:"name"`
	FormSchema []feishuWireField `json:"form_schema"`
}

type feishuFormContent struct {
	FieldName  string `json:"field_name"`
	FieldValue string `json:"field_value"`
}

type feishuWireReport struct {
	TaskID       string              `json:"task_id"`
	RuleName     string              `json:"rule_name"`
	FromUserName string              `json:"from_user_name"`
	CommitTime   int64               `json:"commit_time"`
	FormContents []feishuFormContent `json:"form_contents"`
}

// ListTemplates returns the visible report rules. The listing carries no
// schema, so each rule gets one detail fetch; failures degrade to the canned
// default fields.
func (a *FeishuAdapter) ListTemplates(ctx context.Context, sess *canonical.Session) ([]canonical.Template, error) {
	const query = `query GetFeishuTemplates {
		feishuTemplates { id name }
	}`

	var data struct {
		Templates []feishuTemplateStub `json:"feishuTemplates"`
	}
	if err := a.client.Query(ctx, query, nil, &data); err != nil {
		return nil, fmt.Errorf("listing feishu templates: %w", err)
	}

	templates := make([]canonical.Template, 0, len(data.Templates))
	for _, stub := range data.Templates {
		detail, err := a.TemplateDetail(ctx, stub.Name, sess)
		if err != nil {
			log.Printf("feishu: warning: detail fetch for rule %q failed, using default fields: %v", stub.Name, err)
			templates = append(templates, defaultFeishuTemplate(stub.ID, stub.Name))
			continue
		}
		templates = append(templates, *detail)
	}

	return templates, nil
}

// TemplateDetail resolves a rule by display name. The upstream rule query is
// name-keyed and may return several rules; the first match wins.
func (a *FeishuAdapter) TemplateDetail(ctx context.Context, name string, sess *canonical.Session) (*canonical.Template, error) {
	const query = `query GetFeishuTemplateDetail($name: String!) {
		feishuTemplateDetail(name: $name) { rule_id name form_schema { name type } }
	}`

	var data struct {
		Rules []feishuRule `json:"feishuTemplateDetail"`
	}
	if err := a.client.Query(ctx, query, map[string]any{"name": name}, &data); err != nil {
		return nil, fmt.Errorf("fetching feishu rule detail: %w", err)
	}

	if len(data.Rules) == 0 {
		return nil, fmt.Errorf("feishu rule %q: %w", name, canonical.ErrNotFound)
	}

	rule := data.Rules[0]
	tpl := &canonical.Template{
		ID:     rule.RuleID,
		Name:   rule.Name,
		Fields: make([]canonical.Field, 0, len(rule.FormSchema)),
	}
	for i, wf := range rule.FormSchema {
		tpl.Fields = append(tpl.Fields, canonical.Field{
			ID:          fmt.Sprintf("field_%s_%d", rule.RuleID, i),
			Label:       wf.Name,
			Type:        MapFeishuFieldType(wf.Type),
			Placeholder: fmt.Sprintf("请输入%s...", wf.Name),
		})
	}

	return tpl, nil
}

// ListReports returns submitted reports for the filter's rule and time range.
// Feishu commit times are second epochs carried as strings.
func (a *FeishuAdapter) ListReports(ctx context.Context, filter canonical.Filter, sess *canonical.Session) ([]canonical.Report, error) {
	const query = `query GetFeishuReports($rule_id: String!, $start_time: String!, $end_time: String!) {
		feishuReports(rule_id: $rule_id, start_time: $start_time, end_time: $end_time) {
			items { task_id rule_name from_user_name commit_time form_contents { field_name field_value } }
		}
	}`

	vars := map[string]any{
		"rule_id":    filter.Template,
		"start_time": epochSecondsString(filter.Start),
		"end_time":   epochSecondsString(filter.End),
	}

	var data struct {
		Reports *struct {
			Items []feishuWireReport `json:"items"`
		} `json:"feishuReports"`
	}
	if err := a.client.Query(ctx, query, vars, &data); err != nil {
		return nil, fmt.Errorf("listing feishu reports: %w", err)
	}

	if data.Reports == nil || data.Reports.Items == nil {
		log.Printf("feishu: warning: report listing missing items envelope, treating as empty")
		return []canonical.Report{}, nil
	}

	reports := make([]canonical.Report, 0, len(data.Reports.Items))
	for _, wr := range data.Reports.Items {
		reports = append(reports, normalizeFeishuReport(wr))
	}
	return reports, nil
}

func normalizeFeishuReport(wr feishuWireReport) canonical.Report {
	committed := time.Unix(wr.CommitTime, 0)
	r := canonical.Report{
		ID:    wr.TaskID,
		Title: fmt.Sprintf("%s - %s (%s)", wr.RuleName, wr.FromUserName, committed.Format("2006-01-02 15:04")),
	}
	for _, content := range wr.FormContents {
		r.Fields = append(r.Fields, canonical.ReportField{
			Name:  content.FieldName,
			Value: content.FieldValue,
			Type:  canonical.FieldRichText,
		})
	}
	return r
}

// defaultFeishuTemplate is the canned fallback for rules whose detail fetch
// failed.
func defaultFeishuTemplate(id, name string) canonical.Template {
	labels := []string{"今日工作", "明日计划", "需要的支持"}
	tpl := canonical.Template{ID: id, Name: name}
	for i, label := range labels {
		tpl.Fields = append(tpl.Fields, canonical.Field{
			ID:          fmt.Sprintf("field_%s_%d", id, i),
			Label:       label,
			Type:        canonical.FieldRichText,
			Placeholder: fmt.Sprintf("请输入%s...", label),
		})
	}
	return tpl
}

// epochSecondsString converts a time to a second-epoch string, with the zero
// time mapping to "0" ("no filter").
func epochSecondsString(t time.Time) string {
	if t.IsZero() {
		return "0"
	}
	return strconv.FormatInt(t.Unix(), 10)
}
