package fundamentals

import "strings"

// indicator is one displayable column of the fina_indicator table.
// Percent marks values reported in percent.
type indicator struct {
	Code    string
	ZH, EN  string
	Percent bool
}

// group is a titled set of indicators
type group struct {
	ZH, EN     string
	Indicators []indicator
}

var groups = []group{
	{"每股指标", "Per share", []indicator{
		{"eps", "基本每股收益", "Basic EPS", false},
		{"dt_eps", "稀释每股收益", "Diluted EPS", false},
		{"bps", "每股净资产", "Book value per share", false},
		{"ocfps", "每股经营活动现金流", "Operating cash flow per share", false},
		{"undist_profit_ps", "每股未分配利润", "Undistributed profit per share", false},
	}},
	{"盈利能力", "Profitability", []indicator{
		{"roe", "净资产收益率", "Return on equity", true},
		{"roe_waa", "加权平均净资产收益率", "Weighted ROE", true},
		{"roa", "总资产报酬率", "Return on assets", true},
		{"roic", "投入资本回报率", "Return on invested capital", true},
		{"grossprofit_margin", "销售毛利率", "Gross margin", true},
		{"netprofit_margin", "销售净利率", "Net margin", true},
	}},
	{"成长能力", "Growth", []indicator{
		{"basic_eps_yoy", "基本每股收益同比增长率", "EPS growth (YoY)", true},
		{"netprofit_yoy", "净利润同比增长率", "Net profit growth (YoY)", true},
		{"or_yoy", "营业收入同比增长率", "Revenue growth (YoY)", true},
		{"ocf_yoy", "经营活动现金流同比增长率", "Operating cash flow growth (YoY)", true},
		{"assets_yoy", "总资产同比增长率", "Total assets growth (YoY)", true},
	}},
	{"偿债能力", "Solvency", []indicator{
		{"current_ratio", "流动比率", "Current ratio", false},
		{"quick_ratio", "速动比率", "Quick ratio", false},
		{"cash_ratio", "保守速动比率", "Cash ratio", false},
		{"debt_to_assets", "资产负债率", "Debt to assets", true},
		{"debt_to_eqt", "产权比率", "Debt to equity", false},
	}},
	{"运营能力", "Operations", []indicator{
		{"inv_turn", "存货周转率", "Inventory turnover", false},
		{"ar_turn", "应收账款周转率", "Receivables turnover", false},
		{"assets_turn", "总资产周转率", "Asset turnover", false},
		{"invturn_days", "存货周转天数", "Inventory days", false},
		{"arturn_days", "应收账款周转天数", "Receivable days", false},
	}},
	{"现金流量", "Cash flow", []indicator{
		{"fcff", "企业自由现金流", "Free cash flow to firm", false},
		{"fcfe", "股东自由现金流", "Free cash flow to equity", false},
		{"ocf_to_or", "经营活动现金流/营业收入", "Operating cash flow / revenue", true},
		{"ocf_to_profit", "经营活动现金流/净利润", "Operating cash flow / net profit", false},
	}},
}

// rescaledMarkers match the columns the provider converts from percent to fractions
var rescaledMarkers = []string{"ratio", "rate", "growth", "margin", "yoy", "qoq"}

func rescaled(code string) bool {
	for _, m := range rescaledMarkers {
		if strings.Contains(code, m) {
			return true
		}
	}
	return false
}
