package providers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gordyrad/report-relay/internal/backend"
	"github.com/gordyrad/report-relay/internal/canonical"
)

const (
	// DingTalk caps per image/attachment field.
	dingtalkImageMaxCount      = 99
	dingtalkImageMaxSize       = 20 * 1024 * 1024
	dingtalkAttachmentMaxCount = 9
	dingtalkAttachmentMaxSize  = 50 * 1024 * 1024

	defaultReportPageSize = 20
)

// dingtalkFieldTypes maps DingTalk's numeric field type codes to canonical
// types. Code 16 (table) has no canonical equivalent and falls through to
// rich text like every other unrecognized code.
var dingtalkFieldTypes = map[int]canonical.FieldType{
	1:  canonical.FieldRichText,    // text
	2:  canonical.FieldNumber,      // number
	3:  canonical.FieldDropdown,    // single select
	5:  canonical.FieldDatetime,    // date
	7:  canonical.FieldMultiSelect, // multi select
	8:  canonical.FieldImage,       // image
	9:  canonical.FieldAttachment,  // attachment
	12: canonical.FieldUserPicker,  // customer
}

// MapDingTalkFieldType converts a native DingTalk type code to a canonical
// field type. Total: unknown codes map to rich text.
func MapDingTalkFieldType(code int) canonical.FieldType {
	if t, ok := dingtalkFieldTypes[code]; ok {
		return t
	}
	return canonical.FieldRichText
}

// DingTalkAdapter implements the full capability set, including submission,
// against the backend's DingTalk GraphQL surface.
type DingTalkAdapter struct {
	client *backend.Client
}

// NewDingTalkAdapter creates a DingTalk adapter over the backend client.
func NewDingTalkAdapter(client *backend.Client) *DingTalkAdapter {
	return &DingTalkAdapter{client: client}
}

// Name implements Adapter.
func (a *DingTalkAdapter) Name() string { return "dingtalk" }

type dingtalkTemplateStub struct {
	Name       string `json:"name"`
	ReportCode string `json:"reportCode"`
}

type dingtalkWireField struct {
	FieldName string `json:"fieldName"`
	Type      int    `json:"type"`
}

type dingtalkTemplateDetail struct {
	ID     string              `json:"id"`
	Name   string              `json:"name"`
	Fields []dingtalkWireField `json:"fields"`
}

type dingtalkReportContent struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type dingtalkWireReport struct {
	ReportID     string                  `json:"report_id"`
	TemplateName string                  `json:"template_name"`
	CreatorName  string                  `json:"creator_name"`
	CreateTime   int64                   `json:"create_time"`
	Contents     []dingtalkReportContent `json:"contents"`
}

// ListTemplates returns the user's templates. The DingTalk listing is
// lightweight (name + code only), so each template gets one detail fetch to
// populate its fields; a template whose detail fetch fails keeps its listed
// name but degrades to the canned default field set.
func (a *DingTalkAdapter) ListTemplates(ctx context.Context, sess *canonical.Session) ([]canonical.Template, error) {
	const query = `query GetDingTalkTemplates($userId: String) {
		dingtalkTemplates(userId: $userId) { name reportCode }
	}`

	var data struct {
		Templates []dingtalkTemplateStub `json:"dingtalkTemplates"`
	}
	if err := a.client.Query(ctx, query, map[string]any{"userId": sess.User.ID}, &data); err != nil {
		return nil, fmt.Errorf("listing dingtalk templates: %w", err)
	}

	templates := make([]canonical.Template, 0, len(data.Templates))
	for _, stub := range data.Templates {
		detail, err := a.TemplateDetail(ctx, stub.Name, sess)
		if err != nil {
			log.Printf("dingtalk: warning: detail fetch for template %q failed, using default fields: %v", stub.Name, err)
			templates = append(templates, defaultDingTalkTemplate(stub.ReportCode, stub.Name))
			continue
		}
		templates = append(templates, *detail)
	}

	return templates, nil
}

// TemplateDetail resolves a template by display name. Upstream may return
// several rows for one name; the first match wins.
func (a *DingTalkAdapter) TemplateDetail(ctx context.Context, name string, sess *canonical.Session) (*canonical.Template, error) {
	const query = `query GetDingTalkTemplateDetail($name: String!, $userId: String!) {
		dingtalkTemplates(name: $name) {
			detail(userId: $userId) { id name fields { fieldName type } }
		}
	}`

	var data struct {
		Templates []struct {
			Detail *dingtalkTemplateDetail `json:"detail"`
		} `json:"dingtalkTemplates"`
	}
	vars := map[string]any{"name": name, "userId": sess.User.ID}
	if err := a.client.Query(ctx, query, vars, &data); err != nil {
		return nil, fmt.Errorf("fetching dingtalk template detail: %w", err)
	}

	if len(data.Templates) == 0 || data.Templates[0].Detail == nil {
		return nil, fmt.Errorf("dingtalk template %q: %w", name, canonical.ErrNotFound)
	}

	detail := data.Templates[0].Detail
	tpl := &canonical.Template{
		ID:     detail.ID,
		Name:   detail.Name,
		Fields: make([]canonical.Field, 0, len(detail.Fields)),
	}
	for i, wf := range detail.Fields {
		tpl.Fields = append(tpl.Fields, dingtalkField(detail.ID, i, wf))
	}

	return tpl, nil
}

// dingtalkField normalizes one wire field. The field ID is derived from the
// template ID and index so it stays stable across fetches even when labels
// repeat.
func dingtalkField(templateID string, index int, wf dingtalkWireField) canonical.Field {
	fieldType := MapDingTalkFieldType(wf.Type)
	f := canonical.Field{
		ID:          fmt.Sprintf("field_%s_%d", templateID, index),
		Label:       wf.FieldName,
		Type:        fieldType,
		Placeholder: fmt.Sprintf("请输入%s...", wf.FieldName),
	}

	switch fieldType {
	case canonical.FieldDropdown, canonical.FieldMultiSelect:
		// The detail endpoint does not return options, so selects get
		// placeholder choices the user edits before submitting.
		f.Options = []canonical.Option{
			{Value: "option1", Text: "选项1"},
			{Value: "option2", Text: "选项2"},
		}
	case canonical.FieldImage:
		f.MaxCount = dingtalkImageMaxCount
		f.MaxSizeBytes = dingtalkImageMaxSize
	case canonical.FieldAttachment:
		f.MaxCount = dingtalkAttachmentMaxCount
		f.MaxSizeBytes = dingtalkAttachmentMaxSize
	}

	return f
}

// ListReports returns submitted reports for the filter's template and time
// range. DingTalk timestamps are millisecond epochs.
func (a *DingTalkAdapter) ListReports(ctx context.Context, filter canonical.Filter, sess *canonical.Session) ([]canonical.Report, error) {
	const query = `query GetDingTalkReports($template_name: String!, $start_time: Int!, $end_time: Int!, $cursor: Int, $size: Int) {
		dingtalkReports(template_name: $template_name, start_time: $start_time, end_time: $end_time, cursor: $cursor, size: $size) {
			data_list { report_id template_name creator_name create_time contents { key value } }
		}
	}`

	size := filter.Size
	if size <= 0 {
		size = defaultReportPageSize
	}
	vars := map[string]any{
		"template_name": filter.Template,
		"start_time":    epochMilli(filter.Start),
		"end_time":      epochMilli(filter.End),
		"cursor":        filter.Cursor,
		"size":          size,
	}

	var data struct {
		Reports *struct {
			DataList []dingtalkWireReport `json:"data_list"`
		} `json:"dingtalkReports"`
	}
	if err := a.client.Query(ctx, query, vars, &data); err != nil {
		return nil, fmt.Errorf("listing dingtalk reports: %w", err)
	}

	if data.Reports == nil || data.Reports.DataList == nil {
		log.Printf("dingtalk: warning: report listing missing data_list envelope, treating as empty")
		return []canonical.Report{}, nil
	}

	reports := make([]canonical.Report, 0, len(data.Reports.DataList))
	for _, wr := range data.Reports.DataList {
		reports = append(reports, normalizeDingTalkReport(wr))
	}
	return reports, nil
}

func normalizeDingTalkReport(wr dingtalkWireReport) canonical.Report {
	created := time.UnixMilli(wr.CreateTime)
	r := canonical.Report{
		ID:    wr.ReportID,
		Title: fmt.Sprintf("%s - %s (%s)", wr.TemplateName, wr.CreatorName, created.Format("2006-01-02 15:04")),
	}
	for _, content := range wr.Contents {
		r.Fields = append(r.Fields, canonical.ReportField{
			Name:  content.Key,
			Value: content.Value,
			Type:  canonical.FieldRichText,
		})
	}
	return r
}

// SubmitReport implements Submitter through the createDingtalkReport mutation.
func (a *DingTalkAdapter) SubmitReport(ctx context.Context, draft *canonical.Draft) (*canonical.SubmitResult, error) {
	const mutation = `mutation CreateDingTalkReport($template_name: String!, $template_id: String!, $contents: [ReportContentInput!]!) {
		createDingtalkReport(template_name: $template_name, template_id: $template_id, contents: $contents) { report_id }
	}`

	contents := make([]map[string]string, 0, len(draft.Fields))
	for _, f := range draft.Fields {
		contents = append(contents, map[string]string{"key": f.Key, "value": f.Value})
	}

	var data struct {
		Created *canonical.SubmitResult `json:"createDingtalkReport"`
	}
	vars := map[string]any{
		"template_name": draft.TemplateName,
		"template_id":   draft.TemplateID,
		"contents":      contents,
	}
	if err := a.client.Query(ctx, mutation, vars, &data); err != nil {
		return nil, fmt.Errorf("creating dingtalk report: %w", err)
	}
	if data.Created == nil {
		return nil, fmt.Errorf("create report response missing report_id")
	}

	return data.Created, nil
}

// defaultDingTalkTemplate is the canned fallback used when a template's
// detail fetch fails: a typical daily-report field set, so the user always
// has something usable to select.
func defaultDingTalkTemplate(id, name string) canonical.Template {
	labels := []string{"今日完成工作", "明日工作计划", "需协调与帮助"}
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

// epochMilli converts a time to a millisecond epoch, with the zero time
// mapping to 0 ("no filter").
func epochMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
