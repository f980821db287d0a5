package report

import "github.com/aristath/finsight/internal/domain"

type phrase struct{ zh, en string }

var phrases = map[string]phrase{
	"title":          {"投资分析报告", "Investment Report"},
	"generated":      {"生成时间", "Generated"},
	"user":           {"一、用户概况", "1. Investor"},
	"name":           {"姓名", "Name"},
	"experience":     {"投资经验", "Experience"},
	"portfolio":      {"二、投资组合分析", "2. Portfolio"},
	"portfolio_name": {"投资组合", "Portfolio"},
	"tolerance":      {"风险承受能力", "Risk tolerance"},
	"goal":           {"投资目标", "Investment goal"},
	"value":          {"组合市值", "Market value"},
	"cost":           {"投入成本", "Cost basis"},
	"profit":         {"组合收益", "Profit"},
	"return":         {"收益率", "Return"},
	"allocation":     {"资产配置", "Allocation"},
	"holdings":       {"持仓明细", "Holdings"},
	"quantity":       {"持仓数量", "Quantity"},
	"cost_price":     {"成本价", "Cost price"},
	"current_price":  {"当前价", "Current price"},
	"market_value":   {"市值", "Market value"},
	"holding_profit": {"盈亏", "Profit"},
	"profit_rate":    {"盈亏率", "Profit rate"},
	"no_holdings":    {"暂无持仓", "No holdings"},
	"risk":           {"三、风险评估", "3. Risk"},
	"risk_score":     {"风险评分", "Risk score"},
	"risk_level":     {"风险等级", "Risk level"},
	"factors":        {"风险因素", "Risk factors"},
	"suggestions":    {"建议", "Suggestions"},
	"strategy":       {"四、投资策略", "4. Strategy"},
	"strategy_type":  {"推荐策略", "Recommended strategy"},
	"suitability":    {"适配度", "Suitability"},
	"expected":       {"预期收益", "Expected return"},
	"market":         {"五、市场环境分析", "5. Market"},
	"sh_index":       {"上证指数", "Shanghai Composite"},
	"sz_index":       {"深证成指", "Shenzhen Component"},
	"cyb_index":      {"创业板指", "ChiNext"},
	"sentiment":      {"市场情绪", "Sentiment"},
	"analysis":       {"六、智能投资分析", "6. Analysis"},
	"fallback_title": {"六、投资建议", "6. Advice"},
	"fallback":       {"（由于技术原因，暂时无法生成智能分析。请稍后重试。）", "(The analysis could not be generated right now. Please try again later.)"},
}

func phraseFor(l domain.Labels, key string) string {
	p := phrases[key]
	if l.Locale() == domain.LocaleEN {
		return p.en
	}
	return p.zh
}
