package synth

import "fmt"

// fieldInstructions selects a targeted instruction by the target field's
// label. Labels come from the upstream templates, which are Chinese on both
// in-source providers.
var fieldInstructions = map[string]string{
	"本月总结":   "请基于以下日报内容，撰写本月工作总结，突出主要成就和完成的工作",
	"本月工作总结": "请基于以下日报内容，撰写本月工作总结，突出主要成就和完成的工作",
	"主要成就":   "请从以下日报中提取并总结主要成就和亮点",
	"进展同步":   "请基于以下日报，总结项目进展情况",
	"下月计划":   "请基于以下日报中的计划内容，制定下月工作计划",
	"下月工作计划": "请基于以下日报中的计划内容，制定下月工作计划",
	"复盘总结":   "请基于以下日报，进行工作复盘，分析经验教训",
	"遇到的挑战":  "请从以下日报中提取遇到的问题和挑战",
	"团队反馈":   "请基于以下日报，总结团队协作和反馈情况",
}

// buildInstruction returns the per-field instruction, falling back to a
// generic template for labels the table does not know.
func buildInstruction(label string) string {
	if instruction, ok := fieldInstructions[label]; ok {
		return instruction
	}
	return fmt.Sprintf("请基于以下报告内容，为\"%s\"生成合适的内容", label)
}

// buildPrompt produces the full prompt for one target field.
func buildPrompt(label string) string {
	return buildInstruction(label) + `。要求：
1. 内容简洁明了，突出重点
2. 保持专业的工作报告语气
3. 如果是富文本字段，可以使用适当的HTML格式
4. 字数控制在100-300字之间

以下是源报告内容：`
}

// manualPlaceholder is what a field receives when its generation call fails.
func manualPlaceholder(label string) string {
	return fmt.Sprintf("请手动填写 %s", label)
}
