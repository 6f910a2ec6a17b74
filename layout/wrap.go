package layout

import (
	"strings"
	"unicode/utf8"
)

// estimateFactor 是度量失败时按字符数估算宽度的系数。
const estimateFactor = 0.6

// EstimateWidth 在无法度量时给出 runeCount × fontSize × 0.6 的估算宽度。
func EstimateWidth(s string, fontSize float64) float64 {
	return float64(utf8.RuneCountInString(s)) * fontSize * estimateFactor
}

// measureOr 调用 m 度量 s；失败时返回估算值与错误，调用方决定是否记录。
func measureOr(m Measurer, s string, fontSize float64) (float64, error) {
	w, err := m.MeasureText(s)
	if err != nil {
		return EstimateWidth(s, fontSize), err
	}
	return w, nil
}

// WrapText 以单个空格分词做贪心折行，至少返回一行。
// 单个词本身超过 maxWidth 时独占一行，不做字符级拆分。
// maxWidth <= 0 或空文本时原样返回。
func WrapText(m Measurer, text string, maxWidth, fontSize float64) []string {
	return wrapText(m, text, maxWidth, fontSize, nil)
}

// wrapText 同 WrapText，度量失败时改用估算值并交给 onErr。
func wrapText(m Measurer, text string, maxWidth, fontSize float64, onErr func(error)) []string {
	if text == "" || maxWidth <= 0 {
		return []string{text}
	}
	words := strings.Split(text, " ")
	lines := make([]string, 0, 1)
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		w, err := measureOr(m, candidate, fontSize)
		if err != nil && onErr != nil {
			onErr(err)
		}
		if w <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}
