package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"grocery-manager/internal/pkg/common"
)

// 推論端點的輸出不保證是合法 JSON，本套件把自由格式的文字
// 轉成結構化記錄：先嘗試擷取第一個括號配對完整的 JSON 片段，
// 失敗才退回逐行解析。兩種路徑都不回傳錯誤，解析不出任何
// 記錄時回傳空切片，由呼叫端套用各階段的預設值。

// Item 收據上的一筆品項
type Item struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Estimate 單一品項的保存期限估計
type Estimate struct {
	Name          string `json:"name"`
	ShelfLifeDays int    `json:"shelf_life_days"`
}

// Items 從生成文字擷取品項列表。
// JSON 路徑成功（非空且形狀正確）時原樣回傳，不再執行逐行解析。
func Items(text string) []Item {
	if fragment, ok := common.ExtractFirstJSON(text); ok {
		var items []Item
		if err := common.ParseJSON(fragment, &items); err == nil && validItems(items) {
			return items
		}
	}
	return itemsFromLines(text)
}

// Estimates 從生成文字擷取保存期限估計列表。
func Estimates(text string) []Estimate {
	if fragment, ok := common.ExtractFirstJSON(text); ok {
		var estimates []Estimate
		if err := common.ParseJSON(fragment, &estimates); err == nil && validEstimates(estimates) {
			return estimates
		}
	}
	return estimatesFromLines(text)
}

func validItems(items []Item) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if strings.TrimSpace(item.Name) == "" || item.Price < 0 {
			return false
		}
	}
	return true
}

func validEstimates(estimates []Estimate) bool {
	if len(estimates) == 0 {
		return false
	}
	for _, est := range estimates {
		if strings.TrimSpace(est.Name) == "" || est.ShelfLifeDays < 0 {
			return false
		}
	}
	return true
}

// itemsFromLines 逐行解析「品名 價格」或「品名: 價格」格式。
// 價格取行尾最後一個以空白分隔的 token，先去除貨幣符號再解析；
// 行尾不是數字的行直接略過，不視為錯誤。
func itemsFromLines(text string) []Item {
	items := make([]Item, 0)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		price, ok := parsePrice(fields[len(fields)-1])
		if !ok {
			continue
		}

		var name string
		if idx := strings.Index(line, ":"); idx >= 0 {
			name = strings.TrimSpace(line[:idx])
		} else {
			name = strings.TrimSpace(strings.Join(fields[:len(fields)-1], " "))
		}
		if name == "" {
			continue
		}

		items = append(items, Item{Name: name, Price: price})
	}

	return items
}

var daysPattern = regexp.MustCompile(`(\d+)`)

// estimatesFromLines 逐行解析「品名: X days」格式，
// 取冒號後第一組數字作為天數。
func estimatesFromLines(text string) []Estimate {
	estimates := make([]Estimate, 0)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		name := strings.TrimSpace(parts[0])
		if name == "" {
			continue
		}

		match := daysPattern.FindString(parts[1])
		if match == "" {
			continue
		}
		days, err := strconv.Atoi(match)
		if err != nil {
			continue
		}

		estimates = append(estimates, Estimate{Name: name, ShelfLifeDays: days})
	}

	return estimates
}

// parsePrice 去除貨幣符號後解析十進位價格
func parsePrice(token string) (float64, bool) {
	token = strings.TrimFunc(token, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.' && r != '-'
	})
	if token == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(token, 64)
	if err != nil || price < 0 {
		return 0, false
	}
	return price, true
}
