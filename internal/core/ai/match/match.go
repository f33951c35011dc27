package match

import "strings"

// DefaultThreshold 預設的信心門檻
const DefaultThreshold = 0.5

// Match 在候選名稱中尋找與目標最接近的一個。
// 比對不分大小寫；候選需滿足「目標包含候選」或「候選包含目標」
// 其中之一才有資格，分數為短字串長度除以長字串長度（範圍 (0,1]）。
// 取分數最高者，且分數必須超過 threshold 才視為有信心的匹配；
// 分數相同時保留先出現的候選，因此 candidates 的順序會影響結果，
// 這是刻意保留的行為。threshold 不合法時使用 DefaultThreshold。
func Match(target string, candidates []string, threshold float64) (string, bool) {
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultThreshold
	}

	lowerTarget := strings.ToLower(strings.TrimSpace(target))
	if lowerTarget == "" {
		return "", false
	}

	best := ""
	bestScore := 0.0

	for _, candidate := range candidates {
		lowerCandidate := strings.ToLower(strings.TrimSpace(candidate))
		if lowerCandidate == "" {
			continue
		}
		if !strings.Contains(lowerCandidate, lowerTarget) && !strings.Contains(lowerTarget, lowerCandidate) {
			continue
		}

		score := containmentRatio(lowerTarget, lowerCandidate)
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}

	if best == "" || bestScore <= threshold {
		return "", false
	}
	return best, true
}

// containmentRatio 短字串與長字串的長度比
func containmentRatio(a, b string) float64 {
	la, lb := len(a), len(b)
	if la > lb {
		la, lb = lb, la
	}
	if lb == 0 {
		return 0
	}
	return float64(la) / float64(lb)
}
