package ai

import "fmt"

// Preset is a named, ready-made processing prompt. The text handed to Process
// is appended after the prompt.
type Preset struct {
	Name        string
	Prompt      string
	Description string
}

// Presets is the built-in prompt catalog, in display order.
var Presets = []Preset{
	{Name: "重构", Prompt: "请重新组织和改进以下文本的结构和表达，使其更加清晰、逻辑性更强：", Description: "重新组织文本结构，提高逻辑性和可读性"},
	{Name: "博客化", Prompt: "请将以下内容改写成适合博客发布的风格，要求有吸引力的标题、清晰的段落结构和引人入胜的表达：", Description: "转换为博客风格，增加吸引力和可读性"},
	{Name: "提取要点", Prompt: "请从以下文本中提取出主要要点，用简洁的条目列出：", Description: "提取并列出文本的核心要点"},
	{Name: "改写", Prompt: "请用不同的表达方式重新表述以下内容，保持原意但改变用词和句式：", Description: "保持原意的情况下重新表述内容"},
	{Name: "缩短", Prompt: "请将以下内容压缩成更简洁的版本，保留核心信息：", Description: "压缩文本长度，保留核心信息"},
	{Name: "扩写", Prompt: "请展开以下内容，添加更多细节、例子或解释，使其更加丰富完整：", Description: "增加细节和例子，丰富内容"},
	{Name: "总结", Prompt: "请对以下内容进行总结，突出主要观点和结论：", Description: "总结主要观点和结论"},
	{Name: "简化", Prompt: "请将以下内容简化，使用更简单易懂的语言表达：", Description: "使用简单易懂的语言重新表达"},
	{Name: "修正拼写", Prompt: "请检查并修正以下文本中的拼写、语法和标点错误：", Description: "检查并修正语法、拼写和标点错误"},
	{Name: "继续写作", Prompt: "请基于以下内容继续写作，保持相同的风格和主题：", Description: "基于现有内容继续写作"},
	{Name: "使用激动语气", Prompt: "请将以下内容改写成充满激情和活力的语调：", Description: "转换为充满激情的语调"},
	{Name: "添加表情", Prompt: "请在以下文本中适当位置添加表情符号，使其更生动有趣：", Description: "添加表情符号，增加趣味性"},
	{Name: "去除表情", Prompt: "请从以下文本中移除所有表情符号，保持正式的文本风格：", Description: "移除表情符号，保持正式风格"},
	{Name: "翻译成瑞典语", Prompt: "Please translate the following text to Swedish:", Description: "翻译为瑞典语"},
	{Name: "翻译成德语", Prompt: "Please translate the following text to German:", Description: "翻译为德语"},
	{Name: "翻译成英文", Prompt: "Please translate the following text to English:", Description: "翻译为英文"},
	{Name: "翻译成老挝语", Prompt: "Please translate the following text to Lao (Laotian):", Description: "翻译为老挝语"},
	{Name: "翻译成中文", Prompt: "Please translate the following text to Chinese (Simplified):", Description: "翻译为中文"},
	{Name: "一句话总结", Prompt: "请用一句话总结以下内容的核心观点：", Description: "用一句话概括核心观点"},
}

// PresetFor returns the catalog entry with the given name.
func PresetFor(name string) (Preset, error) {
	for _, p := range Presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("unknown preset: %q", name)
}
